package xml

import (
	"fmt"
	"strconv"
	"strings"
)

type NodeType int8

const (
	TypeDocument NodeType = 1 << iota
	TypeElement
	TypeComment
	TypeAttribute
	TypeText
)

const TypeNode = TypeDocument | TypeElement | TypeAttribute | TypeText

func (n NodeType) String() string {
	switch n {
	default:
		return "<>"
	case TypeDocument:
		return "document"
	case TypeElement:
		return "element"
	case TypeComment:
		return "comment"
	case TypeAttribute:
		return "attribute"
	case TypeText:
		return "text"
	case TypeNode:
		return "node"
	}
}

type Node interface {
	Type() NodeType
	LocalName() string
	QualifiedName() string
	Leaf() bool
	Position() int
	Parent() Node
	Value() string
	Identity() string

	setParent(Node)
	setPosition(int)
	path() []int
}

type QName struct {
	Uri   string
	Space string
	Name  string
}

func ParseName(name string) (QName, error) {
	var (
		qn QName
		ok bool
	)
	qn.Space, qn.Name, ok = strings.Cut(name, ":")
	if !ok {
		qn.Name, qn.Space = qn.Space, ""
	}
	if ok && qn.Space == "" {
		return qn, fmt.Errorf("invalid namespace")
	}
	return qn, nil
}

func LocalName(name string) QName {
	return QName{
		Name: name,
	}
}

func QualifiedName(name, space string) QName {
	return QName{
		Name:  name,
		Space: space,
	}
}

func (q QName) Zero() bool {
	return q.Space == "" && q.Name == ""
}

func (q QName) Equal(other QName) bool {
	return q.Uri == other.Uri && q.Name == other.Name
}

func (q QName) LocalName() string {
	return q.Name
}

func (q QName) QualifiedName() string {
	if q.Space == "" {
		return q.Name
	}
	return fmt.Sprintf("%s:%s", q.Space, q.Name)
}

type Document struct {
	Version  string
	Encoding string

	Nodes []Node
}

func NewDocument(root Node) *Document {
	var doc Document
	if root != nil {
		doc.Append(root)
	}
	return &doc
}

func (d *Document) Root() Node {
	for i := range d.Nodes {
		if d.Nodes[i].Type() == TypeElement {
			return d.Nodes[i]
		}
	}
	return nil
}

func (d *Document) Append(node Node) {
	node.setParent(d)
	node.setPosition(len(d.Nodes))
	d.Nodes = append(d.Nodes, node)
}

func (d *Document) Type() NodeType {
	return TypeDocument
}

func (d *Document) LocalName() string {
	return ""
}

func (d *Document) QualifiedName() string {
	return ""
}

func (d *Document) Leaf() bool {
	return false
}

func (d *Document) Position() int {
	return 0
}

func (d *Document) Parent() Node {
	return nil
}

func (d *Document) Value() string {
	root := d.Root()
	if root == nil {
		return ""
	}
	return root.Value()
}

func (_ *Document) Identity() string {
	return "document"
}

func (_ *Document) path() []int {
	return nil
}

func (_ *Document) setParent(Node) {}

func (_ *Document) setPosition(int) {}

type Element struct {
	QName
	Attrs []Attribute
	Nodes []Node

	parent   Node
	position int
}

func NewElement(name QName) *Element {
	return &Element{
		QName: name,
	}
}

func (e *Element) Append(node Node) {
	if a, ok := node.(*Attribute); ok {
		e.SetAttribute(*a)
		return
	}
	node.setParent(e)
	node.setPosition(len(e.Nodes))
	e.Nodes = append(e.Nodes, node)
}

func (e *Element) SetAttribute(attr Attribute) {
	for i := range e.Attrs {
		if e.Attrs[i].QName.Equal(attr.QName) {
			e.Attrs[i].Datum = attr.Datum
			return
		}
	}
	attr.parent = e
	attr.position = len(e.Attrs)
	e.Attrs = append(e.Attrs, attr)
}

func (e *Element) GetAttribute(name string) (Attribute, bool) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			return e.Attrs[i], true
		}
	}
	var a Attribute
	return a, false
}

func (e *Element) Find(name string) *Element {
	for i := range e.Nodes {
		if el, ok := e.Nodes[i].(*Element); ok && el.LocalName() == name {
			return el
		}
	}
	return nil
}

func (e *Element) FindAll(name string) []Node {
	var nodes []Node
	for i := range e.Nodes {
		if el, ok := e.Nodes[i].(*Element); ok && el.LocalName() == name {
			nodes = append(nodes, el)
		}
	}
	return nodes
}

func (e *Element) Empty() bool {
	return len(e.Nodes) == 0
}

func (e *Element) Leaf() bool {
	if e.Empty() {
		return true
	}
	for i := range e.Nodes {
		if _, ok := e.Nodes[i].(*Text); !ok {
			return false
		}
	}
	return true
}

func (_ *Element) Type() NodeType {
	return TypeElement
}

func (e *Element) Value() string {
	var str strings.Builder
	for _, n := range e.Nodes {
		if n.Type() == TypeComment {
			continue
		}
		str.WriteString(n.Value())
	}
	return str.String()
}

func (e *Element) Position() int {
	return e.position
}

func (e *Element) Parent() Node {
	return e.parent
}

func (e *Element) Identity() string {
	return fmt.Sprintf("node(%s)[%s]", e.QualifiedName(), pathString(e.path()))
}

func (e *Element) path() []int {
	if e.parent == nil {
		return []int{e.position}
	}
	return append(e.parent.path(), e.position)
}

func (e *Element) setParent(node Node) {
	e.parent = node
}

func (e *Element) setPosition(pos int) {
	e.position = pos
}

type Attribute struct {
	QName
	Datum string

	parent   Node
	position int
}

func NewAttribute(name QName, value string) Attribute {
	return Attribute{
		QName: name,
		Datum: value,
	}
}

func (_ *Attribute) Type() NodeType {
	return TypeAttribute
}

func (_ *Attribute) Leaf() bool {
	return true
}

func (a *Attribute) Value() string {
	return a.Datum
}

func (a *Attribute) Position() int {
	return a.position
}

func (a *Attribute) Parent() Node {
	return a.parent
}

func (a *Attribute) Identity() string {
	return fmt.Sprintf("attr(%s)[%s]", a.QualifiedName(), pathString(a.path()))
}

// attrRank keeps attribute vectors apart from child vectors: children
// are numbered from zero, so the marker puts attributes after their
// element and before its first child.
const attrRank = -1

func (a *Attribute) path() []int {
	if a.parent == nil {
		return []int{attrRank, a.position}
	}
	return append(a.parent.path(), attrRank, a.position)
}

func (a *Attribute) setParent(node Node) {
	a.parent = node
}

func (a *Attribute) setPosition(pos int) {
	a.position = pos
}

type Text struct {
	Content string

	parent   Node
	position int
}

func NewText(text string) *Text {
	return &Text{
		Content: text,
	}
}

func (_ *Text) Type() NodeType {
	return TypeText
}

func (_ *Text) LocalName() string {
	return ""
}

func (_ *Text) QualifiedName() string {
	return ""
}

func (_ *Text) Leaf() bool {
	return true
}

func (t *Text) Value() string {
	return t.Content
}

func (t *Text) Position() int {
	return t.position
}

func (t *Text) Parent() Node {
	return t.parent
}

func (t *Text) Identity() string {
	return fmt.Sprintf("text[%s]", pathString(t.path()))
}

func (t *Text) path() []int {
	if t.parent == nil {
		return []int{t.position}
	}
	return append(t.parent.path(), t.position)
}

func (t *Text) setParent(node Node) {
	t.parent = node
}

func (t *Text) setPosition(pos int) {
	t.position = pos
}

type Comment struct {
	Content string

	parent   Node
	position int
}

func NewComment(comment string) *Comment {
	return &Comment{
		Content: comment,
	}
}

func (_ *Comment) Type() NodeType {
	return TypeComment
}

func (_ *Comment) LocalName() string {
	return ""
}

func (_ *Comment) QualifiedName() string {
	return ""
}

func (_ *Comment) Leaf() bool {
	return true
}

func (c *Comment) Value() string {
	return c.Content
}

func (c *Comment) Position() int {
	return c.position
}

func (c *Comment) Parent() Node {
	return c.parent
}

func (c *Comment) Identity() string {
	return fmt.Sprintf("comment[%s]", pathString(c.path()))
}

func (c *Comment) path() []int {
	if c.parent == nil {
		return []int{c.position}
	}
	return append(c.parent.path(), c.position)
}

func (c *Comment) setParent(node Node) {
	c.parent = node
}

func (c *Comment) setPosition(pos int) {
	c.position = pos
}

func pathString(steps []int) string {
	var list []string
	for i := range steps {
		list = append(list, strconv.Itoa(steps[i]))
	}
	return strings.Join(list, "/")
}
