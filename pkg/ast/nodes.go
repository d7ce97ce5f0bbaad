/*
Package ast defines the markdown syntax tree produced by the parser and the
visitor contract consumers use to traverse it.
*/
package ast

import "strings"

// Node is a single element of the syntax tree. The set of implementations in
// this package is closed: new markdown features add new node types together
// with new Visitor methods.
type Node interface {
	// Children returns the ordered child nodes, nil for leaves.
	Children() []Node
	// TextContent returns the concatenated text of all descendant leaves.
	TextContent() string
	// Accept calls the visitor method matching the concrete node type.
	Accept(v Visitor)
}

// Leaf is embedded by nodes that carry raw text and have no children.
type Leaf struct {
	Literal string
}

func (l *Leaf) Children() []Node    { return nil }
func (l *Leaf) TextContent() string { return l.Literal }

// Parent is embedded by nodes that own an ordered child sequence.
type Parent struct {
	Nodes []Node
}

func (p *Parent) Children() []Node { return p.Nodes }

func (p *Parent) TextContent() string {
	var sb strings.Builder
	for _, c := range p.Nodes {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Append adds child nodes.
func (p *Parent) Append(nodes ...Node) {
	p.Nodes = append(p.Nodes, nodes...)
}

// Text is a run of plain text.
type Text struct {
	Leaf
}

// NewText returns a text leaf with the given content.
func NewText(s string) *Text { return &Text{Leaf{Literal: s}} }

// UnparsedContent is raw text that has not been through inline resolution
// yet. It only exists in preliminary trees; a finished parse contains none.
type UnparsedContent struct {
	Leaf
}

// NewUnparsed returns an inline placeholder for the given raw text.
func NewUnparsed(s string) *UnparsedContent { return &UnparsedContent{Leaf{Literal: s}} }

// Paragraph is a default block of inline content.
type Paragraph struct {
	Parent
}

// ListParagraph is a paragraph inside a loose list item.
type ListParagraph struct {
	Parent
}

// Header is an ATX or setext heading. Level is always within 1..6.
type Header struct {
	Parent
	Level int
}

// BlockQuote holds nested block content.
type BlockQuote struct {
	Parent
}

// Code is an inline code span.
type Code struct {
	Leaf
}

// CodeBlock is an indented code block.
type CodeBlock struct {
	Leaf
}

// FencedCodeBlock is a fenced code block with an optional language tag.
type FencedCodeBlock struct {
	Leaf
	Language string
}

// HorizontalRule is a thematic break. It has no content.
type HorizontalRule struct{}

func (h *HorizontalRule) Children() []Node    { return nil }
func (h *HorizontalRule) TextContent() string { return "" }

// Checkbox marks a task-list item.
type Checkbox struct {
	Checked bool
}

// UnorderedList holds UnorderedListItem children.
type UnorderedList struct {
	Parent
}

// OrderedList holds OrderedListItem children. Start is the number of the
// first item, 1 unless the source says otherwise.
type OrderedList struct {
	Parent
	Start int
}

// UnorderedListItem holds block children and an optional task checkbox.
type UnorderedListItem struct {
	Parent
	Checkbox *Checkbox
}

// OrderedListItem holds block children and an optional task checkbox.
type OrderedListItem struct {
	Parent
	Checkbox *Checkbox
}

// Alignment of a table column.
type Alignment int

const (
	AlignNone Alignment = iota // unspecified, rendered as left
	AlignLeft
	AlignRight
	AlignCenter
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	}
	return "none"
}

// Table holds exactly one TableHeader followed by one or more TableRow.
// Every row has exactly ColumnCount cells.
type Table struct {
	Parent
	ColumnCount int
}

// TableHeader is the first row of a table.
type TableHeader struct {
	Parent
}

// TableRow is a body row of a table.
type TableRow struct {
	Parent
}

// TableCell holds inline content, its column index and the column alignment.
type TableCell struct {
	Parent
	Align  Alignment
	Column int
}

// Link holds inline children and a resolved destination.
type Link struct {
	Parent
	URL string
}

// Image is a leaf: alt text is a string, not child nodes.
type Image struct {
	Destination string
	Alt         string
	Title       string
}

func (i *Image) Children() []Node    { return nil }
func (i *Image) TextContent() string { return i.Alt }

// Bold is strong emphasis.
type Bold struct {
	Parent
}

// Italic is emphasis.
type Italic struct {
	Parent
}

// Strikethrough is struck-through inline content.
type Strikethrough struct {
	Parent
}
