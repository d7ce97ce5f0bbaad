package parser

import "github.com/flytaly/mdtree/pkg/ast"

// resolveBlocks is the inline-resolution phase. It rebuilds the
// preliminary tree bottom-up, replacing every ast.UnparsedContent
// placeholder with the inline parse of its text. By the time it runs the
// block phase has collected every reference definition in the document,
// which is what makes forward references work. The returned tree shares no
// composite nodes with the input and contains no placeholders.
func (p *Parser) resolveBlocks(st *parseState, nodes []ast.Node) []ast.Node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]ast.Node, 0, len(nodes))
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.UnparsedContent:
			out = append(out, p.parseInline(st, []byte(n.Literal))...)
		case *ast.Paragraph:
			m := &ast.Paragraph{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.ListParagraph:
			m := &ast.ListParagraph{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.Header:
			m := &ast.Header{Level: n.Level}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.BlockQuote:
			m := &ast.BlockQuote{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.UnorderedList:
			m := &ast.UnorderedList{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.OrderedList:
			m := &ast.OrderedList{Start: n.Start}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.UnorderedListItem:
			m := &ast.UnorderedListItem{Checkbox: n.Checkbox}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.OrderedListItem:
			m := &ast.OrderedListItem{Checkbox: n.Checkbox}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.Table:
			m := &ast.Table{ColumnCount: n.ColumnCount}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.TableHeader:
			m := &ast.TableHeader{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.TableRow:
			m := &ast.TableRow{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.TableCell:
			m := &ast.TableCell{Align: n.Align, Column: n.Column}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.Link:
			m := &ast.Link{URL: n.URL}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.Bold:
			m := &ast.Bold{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.Italic:
			m := &ast.Italic{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		case *ast.Strikethrough:
			m := &ast.Strikethrough{}
			m.Append(p.resolveBlocks(st, n.Nodes)...)
			out = append(out, m)
		default:
			// leaves: Text, Code, CodeBlock, FencedCodeBlock,
			// HorizontalRule, Image
			out = append(out, node)
		}
	}
	return out
}
