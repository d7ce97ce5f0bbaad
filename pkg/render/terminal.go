/*
Package render contains visitor implementations that turn a parsed tree
into terminal output: an ANSI renderer for reading documents and a plain
structural dump for inspecting the tree.
*/
package render

import (
	"fmt"
	"strings"

	"github.com/flytaly/mdtree/pkg/ast"
	"github.com/gookit/color"
)

const defaultWidth = 80

// Terminal renders a tree as styled text for the terminal. One Terminal
// performs one Render at a time; create separate instances for concurrent
// use.
type Terminal struct {
	colored bool
	width   int

	out       strings.Builder
	buf       *strings.Builder // inline capture target
	prefixes  []string
	marker    string // pending first-line marker of a list item
	ordinals  []int
	listDepth int
	sep       bool
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithoutColor disables ANSI styling.
func WithoutColor() TerminalOption {
	return func(t *Terminal) { t.colored = false }
}

// WithWidth sets the width used for horizontal rules.
func WithWidth(w int) TerminalOption {
	return func(t *Terminal) {
		if w > 0 {
			t.width = w
		}
	}
}

// NewTerminal creates a terminal renderer.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{colored: true, width: defaultWidth}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render walks the nodes and returns the rendered text.
func (t *Terminal) Render(nodes ...ast.Node) string {
	t.out.Reset()
	t.sep = false
	t.renderBlocks(nodes)
	return t.out.String()
}

func (t *Terminal) style(c color.Color, s string) string {
	if !t.colored || s == "" {
		return s
	}
	return c.Sprint(s)
}

// renderBlocks dispatches a child sequence that may mix block nodes with
// bare inline nodes (tight list items do that): runs of inline nodes
// become one text block, block nodes render themselves.
func (t *Terminal) renderBlocks(nodes []ast.Node) {
	var inline []ast.Node
	flush := func() {
		if len(inline) == 0 {
			return
		}
		t.writeBlock(t.captureNodes(inline))
		inline = nil
	}
	for _, n := range nodes {
		if isBlockNode(n) {
			flush()
			n.Accept(t)
			continue
		}
		inline = append(inline, n)
	}
	flush()
}

func isBlockNode(n ast.Node) bool {
	switch n.(type) {
	case *ast.Paragraph, *ast.ListParagraph, *ast.Header, *ast.BlockQuote,
		*ast.CodeBlock, *ast.FencedCodeBlock, *ast.HorizontalRule,
		*ast.UnorderedList, *ast.OrderedList,
		*ast.UnorderedListItem, *ast.OrderedListItem,
		*ast.Table, *ast.TableHeader, *ast.TableRow:
		return true
	}
	return false
}

// captureNodes renders inline nodes into a string instead of the output.
func (t *Terminal) captureNodes(nodes []ast.Node) string {
	prev := t.buf
	t.buf = &strings.Builder{}
	ast.Walk(t, nodes...)
	s := t.buf.String()
	t.buf = prev
	return s
}

func (t *Terminal) captureChildren(n ast.Node) string {
	return t.captureNodes(n.Children())
}

func (t *Terminal) writeBlock(text string) {
	if t.sep {
		t.writeLine("")
	}
	for _, line := range strings.Split(text, "\n") {
		t.writeLine(line)
	}
	t.sep = true
}

func (t *Terminal) writeLine(line string) {
	prefix := strings.Join(t.prefixes, "")
	if t.marker != "" {
		if n := len(t.prefixes); n > 0 {
			prefix = strings.Join(t.prefixes[:n-1], "") + t.marker
		} else {
			prefix = t.marker
		}
		t.marker = ""
	}
	t.out.WriteString(strings.TrimRight(prefix+line, " "))
	t.out.WriteByte('\n')
}

func (t *Terminal) pushPrefix(p string) { t.prefixes = append(t.prefixes, p) }
func (t *Terminal) popPrefix()          { t.prefixes = t.prefixes[:len(t.prefixes)-1] }

// beginItem arranges for the marker to replace the indent on the first
// line of an item and indents the rest of it.
func (t *Terminal) beginItem(marker string) {
	t.pushPrefix(strings.Repeat(" ", len([]rune(marker))))
	t.marker = marker
}

// inline nodes

func (t *Terminal) VisitText(n *ast.Text) { t.buf.WriteString(n.Literal) }

func (t *Terminal) VisitUnparsedContent(n *ast.UnparsedContent) {
	// finished trees carry none; show the raw text when given one anyway
	t.buf.WriteString(n.Literal)
}

func (t *Terminal) VisitBold(n *ast.Bold) {
	t.buf.WriteString(t.style(color.Bold, t.captureChildren(n)))
}

func (t *Terminal) VisitItalic(n *ast.Italic) {
	t.buf.WriteString(t.style(color.OpItalic, t.captureChildren(n)))
}

func (t *Terminal) VisitStrikethrough(n *ast.Strikethrough) {
	t.buf.WriteString(t.style(color.OpStrikethrough, t.captureChildren(n)))
}

func (t *Terminal) VisitCode(n *ast.Code) {
	t.buf.WriteString(t.style(color.Yellow, n.Literal))
}

func (t *Terminal) VisitLink(n *ast.Link) {
	label := t.captureChildren(n)
	if label == "" || label == n.URL {
		t.buf.WriteString(t.style(color.Cyan, n.URL))
		return
	}
	t.buf.WriteString(t.style(color.Cyan, label))
	t.buf.WriteString(t.style(color.Gray, " ("+n.URL+")"))
}

func (t *Terminal) VisitImage(n *ast.Image) {
	alt := n.Alt
	if alt == "" {
		alt = n.Destination
	}
	t.buf.WriteString(t.style(color.Magenta, "["+alt+"]"))
	t.buf.WriteString(t.style(color.Gray, " ("+n.Destination+")"))
}

// block nodes

func (t *Terminal) VisitParagraph(n *ast.Paragraph) {
	t.writeBlock(t.captureChildren(n))
}

func (t *Terminal) VisitListParagraph(n *ast.ListParagraph) {
	t.writeBlock(t.captureChildren(n))
}

func (t *Terminal) VisitHeader(n *ast.Header) {
	text := strings.Repeat("#", n.Level) + " " + t.captureChildren(n)
	t.writeBlock(t.style(color.Bold, t.style(color.Cyan, text)))
}

func (t *Terminal) VisitBlockQuote(n *ast.BlockQuote) {
	if t.sep {
		t.writeLine("")
		t.sep = false
	}
	t.pushPrefix(t.style(color.Green, "│ "))
	t.renderBlocks(n.Children())
	t.popPrefix()
	t.sep = true
}

func (t *Terminal) VisitCodeBlock(n *ast.CodeBlock) {
	t.writeCode(n.Literal)
}

func (t *Terminal) VisitFencedCodeBlock(n *ast.FencedCodeBlock) {
	t.writeCode(n.Literal)
}

func (t *Terminal) writeCode(literal string) {
	lines := strings.Split(strings.TrimRight(literal, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + t.style(color.Yellow, line)
	}
	t.writeBlock(strings.Join(lines, "\n"))
}

func (t *Terminal) VisitHorizontalRule(n *ast.HorizontalRule) {
	t.writeBlock(t.style(color.Gray, strings.Repeat("─", t.width)))
}

func (t *Terminal) VisitUnorderedList(n *ast.UnorderedList) {
	t.beginList()
	for _, item := range n.Children() {
		item.Accept(t)
	}
	t.endList()
}

func (t *Terminal) VisitOrderedList(n *ast.OrderedList) {
	t.beginList()
	t.ordinals = append(t.ordinals, n.Start)
	for _, item := range n.Children() {
		item.Accept(t)
	}
	t.ordinals = t.ordinals[:len(t.ordinals)-1]
	t.endList()
}

// beginList separates a top-level list from the previous block; a list
// nested under an item hugs the item text instead.
func (t *Terminal) beginList() {
	if t.sep && t.listDepth == 0 {
		t.writeLine("")
	}
	t.sep = false
	t.listDepth++
}

func (t *Terminal) endList() {
	t.listDepth--
	t.sep = true
}

func (t *Terminal) VisitUnorderedListItem(n *ast.UnorderedListItem) {
	t.sep = false
	t.beginItem(itemMarker("•", n.Checkbox))
	t.renderBlocks(n.Children())
	t.popPrefix()
	t.sep = false
}

func (t *Terminal) VisitOrderedListItem(n *ast.OrderedListItem) {
	num := 0
	if len(t.ordinals) > 0 {
		num = t.ordinals[len(t.ordinals)-1]
		t.ordinals[len(t.ordinals)-1]++
	}
	t.sep = false
	t.beginItem(itemMarker(fmt.Sprintf("%d.", num), n.Checkbox))
	t.renderBlocks(n.Children())
	t.popPrefix()
	t.sep = false
}

func itemMarker(base string, cb *ast.Checkbox) string {
	if cb == nil {
		return base + " "
	}
	if cb.Checked {
		return base + " [x] "
	}
	return base + " [ ] "
}

func (t *Terminal) VisitTable(n *ast.Table) {
	rows := make([][]string, 0, len(n.Children()))
	aligns := make([]ast.Alignment, n.ColumnCount)

	colored := t.colored
	t.colored = false // pad on display width, not on escape codes
	for _, child := range n.Children() {
		row := make([]string, 0, n.ColumnCount)
		for _, c := range child.Children() {
			cell, ok := c.(*ast.TableCell)
			if !ok {
				continue
			}
			row = append(row, t.captureChildren(cell))
			if cell.Column < len(aligns) {
				aligns[cell.Column] = cell.Align
			}
		}
		rows = append(rows, row)
	}
	t.colored = colored

	widths := make([]int, n.ColumnCount)
	for _, row := range rows {
		for i, cell := range row {
			if w := len([]rune(cell)); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	var lines []string
	for ri, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = padCell(cell, widths[i], aligns[i])
		}
		line := strings.Join(cells, "  ")
		if ri == 0 {
			line = t.style(color.Bold, line)
		}
		lines = append(lines, line)
		if ri == 0 {
			total := 0
			for _, w := range widths {
				total += w + 2
			}
			if total > 2 {
				total -= 2
			}
			lines = append(lines, t.style(color.Gray, strings.Repeat("─", total)))
		}
	}
	t.writeBlock(strings.Join(lines, "\n"))
}

func padCell(s string, width int, align ast.Alignment) string {
	gap := width - len([]rune(s))
	if gap <= 0 {
		return s
	}
	switch align {
	case ast.AlignRight:
		return strings.Repeat(" ", gap) + s
	case ast.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// VisitTableHeader renders a row outside the table layout pass; VisitTable
// does not use it, but a visitor must handle every node.
func (t *Terminal) VisitTableHeader(n *ast.TableHeader) { t.writeBlock(t.rowText(n)) }

func (t *Terminal) VisitTableRow(n *ast.TableRow) { t.writeBlock(t.rowText(n)) }

func (t *Terminal) VisitTableCell(n *ast.TableCell) {
	t.buf.WriteString(t.captureChildren(n))
}

func (t *Terminal) rowText(row ast.Node) string {
	cells := make([]string, 0, len(row.Children()))
	for _, c := range row.Children() {
		cells = append(cells, t.captureChildren(c))
	}
	return strings.Join(cells, " | ")
}
