package xml

import (
	"fmt"
	"io"
	"strings"
)

type Writer struct {
	writer io.Writer

	Indent string
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{
		writer: w,
		Indent: "  ",
	}
}

func (w *Writer) Write(doc *Document) error {
	for i := range doc.Nodes {
		if err := w.writeNode(doc.Nodes[i], 0); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) WriteNode(node Node) error {
	return w.writeNode(node, 0)
}

func WriteNode(node Node) string {
	var str strings.Builder
	NewWriter(&str).WriteNode(node)
	return str.String()
}

func (w *Writer) writeNode(node Node, depth int) error {
	prefix := strings.Repeat(w.Indent, depth)
	switch node := node.(type) {
	case *Element:
		return w.writeElement(node, depth)
	case *Text:
		_, err := fmt.Fprintf(w.writer, "%s%s\n", prefix, escapeText(node.Content))
		return err
	case *Comment:
		_, err := fmt.Fprintf(w.writer, "%s<!-- %s -->\n", prefix, node.Content)
		return err
	case *Attribute:
		_, err := fmt.Fprintf(w.writer, "%s=%q\n", node.QualifiedName(), node.Datum)
		return err
	default:
		return fmt.Errorf("%s: node can not be written", node.Type())
	}
}

func (w *Writer) writeElement(el *Element, depth int) error {
	prefix := strings.Repeat(w.Indent, depth)
	fmt.Fprintf(w.writer, "%s<%s", prefix, el.QualifiedName())
	for _, a := range el.Attrs {
		fmt.Fprintf(w.writer, " %s=%q", a.QualifiedName(), a.Datum)
	}
	if el.Empty() {
		_, err := fmt.Fprintln(w.writer, "/>")
		return err
	}
	if el.Leaf() {
		_, err := fmt.Fprintf(w.writer, ">%s</%s>\n", escapeText(el.Value()), el.QualifiedName())
		return err
	}
	fmt.Fprintln(w.writer, ">")
	for i := range el.Nodes {
		if err := w.writeNode(el.Nodes[i], depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w.writer, "%s</%s>\n", prefix, el.QualifiedName())
	return err
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(str string) string {
	return textEscaper.Replace(str)
}
