package main

import (
	"fmt"
	"strings"

	"github.com/midbel/cli"
	"github.com/midbel/xee/xml"
	"github.com/midbel/xee/xpath"
)

var evalCmd = cli.Command{
	Name:    "eval",
	Alias:   []string{"exec"},
	Summary: "evaluate an xpath expression, optionally against an xml document",
	Handler: &EvalCmd{},
}

var checkCmd = cli.Command{
	Name:    "check",
	Summary: "compile an xpath expression and report errors without evaluating it",
	Handler: &CheckCmd{},
}

var debugCmd = cli.Command{
	Name:    "debug",
	Summary: "print the analyzed form of an xpath expression",
	Handler: &DebugCmd{},
}

type EvalCmd struct {
	File string
	Vars []*xpath.GlobalVariable
}

func (c *EvalCmd) Run(args []string) error {
	set := cli.NewFlagSet("eval")
	set.StringVar(&c.File, "f", "", "xml document used as context item")
	set.Func("d", "define a global variable (name=value)", c.defineVariable)
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() == 0 {
		return fmt.Errorf("missing expression")
	}
	env := xpath.DefaultStaticContext()
	for _, v := range c.Vars {
		env.Define(v)
	}
	query, err := xpath.BuildWith(set.Arg(0), env)
	if err != nil {
		return err
	}
	var seq xpath.Sequence
	if c.File != "" {
		doc, err := xml.ParseFile(c.File)
		if err != nil {
			return err
		}
		seq, err = query.Find(doc)
		if err != nil {
			return err
		}
	} else {
		seq, err = query.Eval()
		if err != nil {
			return err
		}
	}
	for _, str := range seq.Strings() {
		fmt.Println(str)
	}
	return nil
}

type CheckCmd struct{}

func (c *CheckCmd) Run(args []string) error {
	set := cli.NewFlagSet("check")
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() == 0 {
		return fmt.Errorf("missing expression")
	}
	if _, err := xpath.Build(set.Arg(0)); err != nil {
		return err
	}
	return nil
}

type DebugCmd struct{}

func (c *DebugCmd) Run(args []string) error {
	set := cli.NewFlagSet("debug")
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() == 0 {
		return fmt.Errorf("missing expression")
	}
	query, err := xpath.Build(set.Arg(0))
	if err != nil {
		return err
	}
	fmt.Print(xpath.Dump(query.Expr()))
	return nil
}

func (c *EvalCmd) defineVariable(str string) error {
	name, value, ok := strings.Cut(str, "=")
	if !ok {
		return fmt.Errorf("%s: expected name=value", str)
	}
	qn, err := xml.ParseName(name)
	if err != nil {
		return err
	}
	c.Vars = append(c.Vars, xpath.NewGlobalVariable(qn, value))
	return nil
}
