package parser

import (
	"regexp"
	"strings"

	"github.com/flytaly/mdtree/pkg/ast"
)

var (
	pipePattern  = regexp.MustCompile(`\|`)
	sepCellShape = regexp.MustCompile(`^:?-+:?$`)
)

// tableRule matches pipe tables. Detection needs look-ahead: a line with
// pipes is only a table header when the NEXT line is a valid separator row
// whose cell count equals the header's, and at least one body row follows.
// Anything else falls through to the paragraph rule untouched.
type tableRule struct{}

func (tableRule) Pattern() *regexp.Regexp         { return pipePattern }
func (tableRule) CanEndBlock(p *BlockParser) bool { return true }

func (tableRule) CanParse(p *BlockParser) bool {
	if !strings.Contains(p.Current(), "|") {
		return false
	}
	sep, ok := p.Peek(1)
	if !ok {
		return false
	}
	aligns := parseAlignments(sep)
	if aligns == nil || len(splitRow(p.Current())) != len(aligns) {
		return false
	}
	row, ok := p.Peek(2)
	return ok && !isBlank(row) && strings.Contains(row, "|")
}

func (t tableRule) Parse(p *BlockParser) (ast.Node, bool) {
	headerCells := splitRow(p.Current())
	sep, ok := p.Peek(1)
	if !ok {
		return nil, false
	}
	aligns := parseAlignments(sep)
	if aligns == nil || len(headerCells) != len(aligns) {
		return nil, false
	}

	// gather body rows by look-ahead, so a refusal leaves the cursor
	// untouched; rows run until a blank line, a pipe-less line or a
	// construct that ends the block
	var rows [][]string
	i := 2
	for {
		line, ok := p.Peek(i)
		if !ok || isBlank(line) || !strings.Contains(line, "|") || t.rowEnds(p, i) {
			break
		}
		rows = append(rows, splitRow(line))
		i++
	}
	if len(rows) == 0 {
		return nil, false
	}

	colCount := len(aligns)
	table := &ast.Table{ColumnCount: colCount}
	header := &ast.TableHeader{}
	header.Append(makeCells(headerCells, aligns)...)
	table.Append(header)

	for _, cells := range rows {
		// long rows lose their extra cells, short rows gain empty ones
		if len(cells) > colCount {
			cells = cells[:colCount]
		}
		row := &ast.TableRow{}
		row.Append(makeCells(cells, aligns)...)
		for col := len(cells); col < colCount; col++ {
			row.Append(&ast.TableCell{Align: ast.AlignNone, Column: col})
		}
		table.Append(row)
	}

	for _, child := range table.Children() {
		if got := len(child.Children()); got != colCount {
			structuralf("table", p.LineNumber(), "row normalized to %d cells, want %d", got, colCount)
		}
	}

	for consumed := 2 + len(rows); consumed > 0; consumed-- {
		p.Advance()
	}
	return table, true
}

// rowEnds reports whether the line at look-ahead offset i starts a
// construct that terminates row consumption. The table rule itself is
// skipped: a row that happens to look like another table header is still a
// row.
func (tableRule) rowEnds(p *BlockParser, i int) bool {
	la := p.lookahead(i)
	for _, r := range la.parser.blockRules {
		if _, self := r.(tableRule); self {
			continue
		}
		if r.CanEndBlock(la) && r.CanParse(la) {
			return true
		}
	}
	return false
}

func makeCells(texts []string, aligns []ast.Alignment) []ast.Node {
	cells := make([]ast.Node, len(texts))
	for i, text := range texts {
		cell := &ast.TableCell{Column: i}
		if i < len(aligns) {
			cell.Align = aligns[i]
		}
		if text != "" {
			cell.Append(ast.NewUnparsed(text))
		}
		cells[i] = cell
	}
	return cells
}

// parseAlignments validates a separator row and derives each column's
// alignment from its colons: both ends center, leading left, trailing
// right, none unspecified. A nil result means the line is not a separator
// row.
func parseAlignments(line string) []ast.Alignment {
	s := strings.TrimSpace(line)
	if s == "" || strings.ContainsAny(s, "\\") {
		return nil
	}
	s = strings.TrimPrefix(s, "|")
	s = strings.TrimSuffix(s, "|")
	parts := strings.Split(s, "|")
	aligns := make([]ast.Alignment, 0, len(parts))
	for _, part := range parts {
		cell := strings.TrimSpace(part)
		if !sepCellShape.MatchString(cell) {
			return nil
		}
		leading := strings.HasPrefix(cell, ":")
		trailing := strings.HasSuffix(cell, ":")
		switch {
		case leading && trailing:
			aligns = append(aligns, ast.AlignCenter)
		case leading:
			aligns = append(aligns, ast.AlignLeft)
		case trailing:
			aligns = append(aligns, ast.AlignRight)
		default:
			aligns = append(aligns, ast.AlignNone)
		}
	}
	return aligns
}

// splitRow splits a table row on unescaped pipes. Leading and trailing
// pipes are decoration and produce no cells. Inside a cell `\|` becomes a
// literal pipe before the inline pass ever sees it; any other backslash
// sequence is kept verbatim for the inline pass, and a row ending in a
// bare backslash keeps it.
func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")

	var cells []string
	var cell strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && s[i+1] == '|':
			cell.WriteByte('|')
			i++
		case c == '\\' && i+1 < len(s):
			cell.WriteByte('\\')
			cell.WriteByte(s[i+1])
			i++
		case c == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(c)
		}
	}
	rest := strings.TrimSpace(cell.String())
	if rest != "" || !strings.HasSuffix(s, "|") {
		cells = append(cells, rest)
	}
	return cells
}
