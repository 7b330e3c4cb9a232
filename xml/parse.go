package xml

import (
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strings"
)

var ErrRoot = errors.New("document has no root element")

type Parser struct {
	dec *xml.Decoder

	TrimSpace bool
}

func NewParser(r io.Reader) *Parser {
	return &Parser{
		dec:       xml.NewDecoder(r),
		TrimSpace: true,
	}
}

func ParseString(str string) (*Document, error) {
	return NewParser(strings.NewReader(str)).Parse()
}

func ParseFile(file string) (*Document, error) {
	r, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return NewParser(r).Parse()
}

func (p *Parser) Parse() (*Document, error) {
	var (
		doc   Document
		stack []*Element
	)
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			el := NewElement(convertName(tok.Name))
			for _, a := range tok.Attr {
				el.SetAttribute(NewAttribute(convertName(a.Name), a.Value))
			}
			if len(stack) == 0 {
				doc.Append(el)
			} else {
				stack[len(stack)-1].Append(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			str := string(tok)
			if p.TrimSpace {
				str = strings.TrimSpace(str)
			}
			if str == "" {
				continue
			}
			stack[len(stack)-1].Append(NewText(str))
		case xml.Comment:
			if len(stack) == 0 {
				continue
			}
			stack[len(stack)-1].Append(NewComment(string(tok)))
		case xml.ProcInst, xml.Directive:
		}
	}
	if doc.Root() == nil {
		return nil, ErrRoot
	}
	return &doc, nil
}

func convertName(name xml.Name) QName {
	qn := LocalName(name.Local)
	qn.Uri = name.Space
	return qn
}
