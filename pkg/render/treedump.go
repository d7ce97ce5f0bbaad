package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flytaly/mdtree/pkg/ast"
)

// TreeDump writes one line per node with indentation showing structure.
// The output is stable for identical trees, which makes it usable both
// for the tree subcommand and for comparing parses.
type TreeDump struct {
	out   strings.Builder
	depth int
}

// NewTreeDump creates a tree dumper.
func NewTreeDump() *TreeDump {
	return &TreeDump{}
}

// Dump walks the nodes and returns the structural listing.
func (d *TreeDump) Dump(nodes ...ast.Node) string {
	d.out.Reset()
	d.depth = 0
	ast.Walk(d, nodes...)
	return d.out.String()
}

func (d *TreeDump) line(kind string, attrs ...string) {
	d.out.WriteString(strings.Repeat("  ", d.depth))
	d.out.WriteString(kind)
	for _, a := range attrs {
		d.out.WriteByte(' ')
		d.out.WriteString(a)
	}
	d.out.WriteByte('\n')
}

func (d *TreeDump) descend(n ast.Node) {
	d.depth++
	ast.WalkChildren(d, n)
	d.depth--
}

func (d *TreeDump) VisitText(n *ast.Text) {
	d.line("Text", strconv.Quote(n.Literal))
}

func (d *TreeDump) VisitUnparsedContent(n *ast.UnparsedContent) {
	d.line("UnparsedContent", strconv.Quote(n.Literal))
}

func (d *TreeDump) VisitParagraph(n *ast.Paragraph) {
	d.line("Paragraph")
	d.descend(n)
}

func (d *TreeDump) VisitListParagraph(n *ast.ListParagraph) {
	d.line("ListParagraph")
	d.descend(n)
}

func (d *TreeDump) VisitHeader(n *ast.Header) {
	d.line("Header", fmt.Sprintf("level=%d", n.Level))
	d.descend(n)
}

func (d *TreeDump) VisitBlockQuote(n *ast.BlockQuote) {
	d.line("BlockQuote")
	d.descend(n)
}

func (d *TreeDump) VisitCode(n *ast.Code) {
	d.line("Code", strconv.Quote(n.Literal))
}

func (d *TreeDump) VisitCodeBlock(n *ast.CodeBlock) {
	d.line("CodeBlock", strconv.Quote(n.Literal))
}

func (d *TreeDump) VisitFencedCodeBlock(n *ast.FencedCodeBlock) {
	attrs := []string{strconv.Quote(n.Literal)}
	if n.Language != "" {
		attrs = append([]string{"lang=" + n.Language}, attrs...)
	}
	d.line("FencedCodeBlock", attrs...)
}

func (d *TreeDump) VisitHorizontalRule(n *ast.HorizontalRule) {
	d.line("HorizontalRule")
}

func (d *TreeDump) VisitUnorderedList(n *ast.UnorderedList) {
	d.line("UnorderedList")
	d.descend(n)
}

func (d *TreeDump) VisitOrderedList(n *ast.OrderedList) {
	d.line("OrderedList", fmt.Sprintf("start=%d", n.Start))
	d.descend(n)
}

func (d *TreeDump) VisitUnorderedListItem(n *ast.UnorderedListItem) {
	d.line("UnorderedListItem", checkboxAttr(n.Checkbox)...)
	d.descend(n)
}

func (d *TreeDump) VisitOrderedListItem(n *ast.OrderedListItem) {
	d.line("OrderedListItem", checkboxAttr(n.Checkbox)...)
	d.descend(n)
}

func checkboxAttr(cb *ast.Checkbox) []string {
	if cb == nil {
		return nil
	}
	return []string{fmt.Sprintf("checked=%t", cb.Checked)}
}

func (d *TreeDump) VisitTable(n *ast.Table) {
	d.line("Table", fmt.Sprintf("columns=%d", n.ColumnCount))
	d.descend(n)
}

func (d *TreeDump) VisitTableHeader(n *ast.TableHeader) {
	d.line("TableHeader")
	d.descend(n)
}

func (d *TreeDump) VisitTableRow(n *ast.TableRow) {
	d.line("TableRow")
	d.descend(n)
}

func (d *TreeDump) VisitTableCell(n *ast.TableCell) {
	d.line("TableCell", fmt.Sprintf("column=%d", n.Column), "align="+n.Align.String())
	d.descend(n)
}

func (d *TreeDump) VisitLink(n *ast.Link) {
	d.line("Link", strconv.Quote(n.URL))
	d.descend(n)
}

func (d *TreeDump) VisitImage(n *ast.Image) {
	attrs := []string{strconv.Quote(n.Destination), "alt=" + strconv.Quote(n.Alt)}
	if n.Title != "" {
		attrs = append(attrs, "title="+strconv.Quote(n.Title))
	}
	d.line("Image", attrs...)
}

func (d *TreeDump) VisitBold(n *ast.Bold) {
	d.line("Bold")
	d.descend(n)
}

func (d *TreeDump) VisitItalic(n *ast.Italic) {
	d.line("Italic")
	d.descend(n)
}

func (d *TreeDump) VisitStrikethrough(n *ast.Strikethrough) {
	d.line("Strikethrough")
	d.descend(n)
}
