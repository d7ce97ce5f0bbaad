package ast

// Visitor has one method per node type. Consumers must implement all of
// them; exhaustiveness is part of the contract, so a new node type breaks
// compilation of every consumer instead of silently skipping content.
type Visitor interface {
	VisitText(n *Text)
	VisitUnparsedContent(n *UnparsedContent)
	VisitParagraph(n *Paragraph)
	VisitListParagraph(n *ListParagraph)
	VisitHeader(n *Header)
	VisitBlockQuote(n *BlockQuote)
	VisitCode(n *Code)
	VisitCodeBlock(n *CodeBlock)
	VisitFencedCodeBlock(n *FencedCodeBlock)
	VisitHorizontalRule(n *HorizontalRule)
	VisitUnorderedList(n *UnorderedList)
	VisitOrderedList(n *OrderedList)
	VisitUnorderedListItem(n *UnorderedListItem)
	VisitOrderedListItem(n *OrderedListItem)
	VisitTable(n *Table)
	VisitTableHeader(n *TableHeader)
	VisitTableRow(n *TableRow)
	VisitTableCell(n *TableCell)
	VisitLink(n *Link)
	VisitImage(n *Image)
	VisitBold(n *Bold)
	VisitItalic(n *Italic)
	VisitStrikethrough(n *Strikethrough)
}

func (n *Text) Accept(v Visitor)              { v.VisitText(n) }
func (n *UnparsedContent) Accept(v Visitor)   { v.VisitUnparsedContent(n) }
func (n *Paragraph) Accept(v Visitor)         { v.VisitParagraph(n) }
func (n *ListParagraph) Accept(v Visitor)     { v.VisitListParagraph(n) }
func (n *Header) Accept(v Visitor)            { v.VisitHeader(n) }
func (n *BlockQuote) Accept(v Visitor)        { v.VisitBlockQuote(n) }
func (n *Code) Accept(v Visitor)              { v.VisitCode(n) }
func (n *CodeBlock) Accept(v Visitor)         { v.VisitCodeBlock(n) }
func (n *FencedCodeBlock) Accept(v Visitor)   { v.VisitFencedCodeBlock(n) }
func (n *HorizontalRule) Accept(v Visitor)    { v.VisitHorizontalRule(n) }
func (n *UnorderedList) Accept(v Visitor)     { v.VisitUnorderedList(n) }
func (n *OrderedList) Accept(v Visitor)       { v.VisitOrderedList(n) }
func (n *UnorderedListItem) Accept(v Visitor) { v.VisitUnorderedListItem(n) }
func (n *OrderedListItem) Accept(v Visitor)   { v.VisitOrderedListItem(n) }
func (n *Table) Accept(v Visitor)             { v.VisitTable(n) }
func (n *TableHeader) Accept(v Visitor)       { v.VisitTableHeader(n) }
func (n *TableRow) Accept(v Visitor)          { v.VisitTableRow(n) }
func (n *TableCell) Accept(v Visitor)         { v.VisitTableCell(n) }
func (n *Link) Accept(v Visitor)              { v.VisitLink(n) }
func (n *Image) Accept(v Visitor)             { v.VisitImage(n) }
func (n *Bold) Accept(v Visitor)              { v.VisitBold(n) }
func (n *Italic) Accept(v Visitor)            { v.VisitItalic(n) }
func (n *Strikethrough) Accept(v Visitor)     { v.VisitStrikethrough(n) }

// Walk dispatches the visitor over each node in order. Traversal into
// children is explicit: visitor methods call WalkChildren (or Walk on a
// node's children) when and where they want to recurse, keeping all
// traversal state inside the visitor.
func Walk(v Visitor, nodes ...Node) {
	for _, n := range nodes {
		n.Accept(v)
	}
}

// WalkChildren dispatches the visitor over the direct children of n.
func WalkChildren(v Visitor, n Node) {
	Walk(v, n.Children()...)
}
