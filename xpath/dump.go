package xpath

import (
	"fmt"
	"strings"
)

// Dump renders the shape of a compiled tree, one node per line. The
// output is meant for debugging rewrites: it shows which operators are
// left and where converters were inserted or elided.
func Dump(expr Expression) string {
	var str strings.Builder
	dump(&str, expr, 0)
	return str.String()
}

func dump(str *strings.Builder, expr Expression, depth int) {
	str.WriteString(strings.Repeat("  ", depth))
	str.WriteString(label(expr))
	str.WriteString("\n")
	for _, c := range expr.children() {
		dump(str, c, depth+1)
	}
}

func label(expr Expression) string {
	switch e := expr.(type) {
	case *literal:
		return fmt.Sprintf("literal(%s)", e.seq.Strings())
	case *contextItem:
		return "context-item"
	case *varRef:
		return fmt.Sprintf("variable($%s)", e.name.QualifiedName())
	case *sequenceExpr:
		return "sequence"
	case *ifExpr:
		return "if"
	case *rangeExpr:
		return "range"
	case *negate:
		return "negate"
	case *arithmetic:
		return "arithmetic" + opLabel(e.op)
	case *comparison:
		if e.general() {
			return "general-comparison" + opLabel(e.op)
		}
		return "value-comparison" + opLabel(e.op)
	case *logical:
		return "logical" + opLabel(e.op)
	case *identityExpr:
		return "identity"
	case *setExpr:
		return "set" + opLabel(e.op)
	case *castExpr:
		return fmt.Sprintf("cast(%s)", e.target)
	case *castableExpr:
		return fmt.Sprintf("castable(%s)", e.target)
	case *untypedConverter:
		return fmt.Sprintf("convert-untyped(%s)", e.required)
	case *numericPromoter:
		return fmt.Sprintf("promote(%s)", e.required)
	case *letExpr:
		return fmt.Sprintf("let($%s)", e.Name().QualifiedName())
	case *forExpr:
		return fmt.Sprintf("for($%s)", e.Name().QualifiedName())
	case *iterateExpr:
		return fmt.Sprintf("iterate($%s)", e.Name().QualifiedName())
	case *quantifiedExpr:
		if e.every {
			return fmt.Sprintf("every($%s)", e.Name().QualifiedName())
		}
		return fmt.Sprintf("some($%s)", e.Name().QualifiedName())
	case *breakExpr:
		return "break"
	default:
		return fmt.Sprintf("%T", expr)
	}
}

func opLabel(op rune) string {
	tok := Token{Type: op}
	return tok.String()
}
