package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/flytaly/mdtree/pkg/ast"
)

var (
	uliPattern      = regexp.MustCompile(`^( {0,3})([*+-])(?:[ \t]+(.*))?$`)
	oliPattern      = regexp.MustCompile(`^( {0,3})(\d{1,9})([.)])(?:[ \t]+(.*))?$`)
	checkboxPattern = regexp.MustCompile(`^\[([ xX])\][ \t]+`)
)

// listRule matches bullet lists (-, * or +) or ordered lists (1. / 1)),
// one rule value per flavor. Item bodies are block-parsed by a nested
// parser, which is how nested lists, quotes and code inside items work.
type listRule struct {
	ordered bool
}

func (r listRule) Pattern() *regexp.Regexp {
	if r.ordered {
		return oliPattern
	}
	return uliPattern
}

func (r listRule) CanParse(p *BlockParser) bool {
	line := p.Current()
	// "* * *" and friends are horizontal rules, not list items
	if hrPattern.MatchString(line) {
		return false
	}
	return r.Pattern().MatchString(line)
}

func (r listRule) CanEndBlock(p *BlockParser) bool { return true }

// itemSrc is the raw, dedented source of one list item.
type itemSrc struct {
	lines []string
	base  int
}

func (r listRule) Parse(p *BlockParser) (ast.Node, bool) {
	pat := r.Pattern()
	first := pat.FindStringSubmatch(p.Current())
	if first == nil {
		return nil, false
	}
	start := 1
	if r.ordered {
		start, _ = strconv.Atoi(first[2])
	}

	var (
		items         []itemSrc
		loose         bool
		pendingBlank  bool
		contentIndent int
	)

	for !p.AtEnd() {
		line := p.Current()
		switch {
		case isBlank(line):
			next, ok := p.nextNonBlank()
			continues := ok && (indentWidth(next) >= contentIndent ||
				(pat.MatchString(next) && !hrPattern.MatchString(next)))
			if !continues {
				goto done
			}
			pendingBlank = true
			p.Advance()

		case len(items) > 0 && indentWidth(line) >= contentIndent:
			last := &items[len(items)-1]
			if pendingBlank {
				loose = true
				last.lines = append(last.lines, "")
				pendingBlank = false
			}
			last.lines = append(last.lines, stripIndent(line, contentIndent))
			p.Advance()

		case pat.MatchString(line) && !hrPattern.MatchString(line):
			if pendingBlank {
				loose = true
				pendingBlank = false
			}
			m := pat.FindStringSubmatch(line)
			rest, indent := r.markerContent(m, line)
			contentIndent = indent
			items = append(items, itemSrc{lines: []string{rest}, base: p.LineNumber()})
			p.Advance()

		case len(items) > 0 && !pendingBlank && !p.blockEnds():
			// lazy continuation of the item's trailing paragraph
			last := &items[len(items)-1]
			last.lines = append(last.lines, strings.TrimSpace(line))
			p.Advance()

		default:
			goto done
		}
	}
done:
	if len(items) == 0 {
		return nil, false
	}
	return r.build(p, items, start, loose), true
}

// markerContent returns the item text after the marker and the column at
// which item content starts; continuation lines indented to that column
// belong to the item.
func (r listRule) markerContent(m []string, line string) (rest string, contentIndent int) {
	markerLen := 1
	if r.ordered {
		markerLen = len(m[2]) + 1
		rest = m[4]
	} else {
		rest = m[3]
	}
	if rest == "" {
		return "", len(m[1]) + markerLen + 1
	}
	return rest, len(line) - len(rest)
}

func (r listRule) build(p *BlockParser, items []itemSrc, start int, loose bool) ast.Node {
	var list ast.Node
	if r.ordered {
		list = &ast.OrderedList{Start: start}
	} else {
		list = &ast.UnorderedList{}
	}

	for _, it := range items {
		var cb *ast.Checkbox
		if p.parser.extensions&TaskLists != 0 && len(it.lines) > 0 {
			if cm := checkboxPattern.FindStringSubmatch(it.lines[0]); cm != nil {
				cb = &ast.Checkbox{Checked: cm[1] != " "}
				it.lines[0] = it.lines[0][len(cm[0]):]
			}
		}

		children := p.nested("listitem", it.lines, it.base, true)
		if !loose {
			children = unwrapListParagraphs(children)
		}

		if r.ordered {
			li := &ast.OrderedListItem{Checkbox: cb}
			li.Append(children...)
			list.(*ast.OrderedList).Append(li)
		} else {
			li := &ast.UnorderedListItem{Checkbox: cb}
			li.Append(children...)
			list.(*ast.UnorderedList).Append(li)
		}
	}
	return list
}

// unwrapListParagraphs splices paragraph wrappers out of tight list items,
// leaving their inline content as direct item children.
func unwrapListParagraphs(nodes []ast.Node) []ast.Node {
	out := make([]ast.Node, 0, len(nodes))
	for _, n := range nodes {
		if para, ok := n.(*ast.ListParagraph); ok {
			out = append(out, para.Children()...)
			continue
		}
		out = append(out, n)
	}
	return out
}

// nextNonBlank scans past the cursor for the next non-blank line.
func (p *BlockParser) nextNonBlank() (string, bool) {
	for i := 1; ; i++ {
		line, ok := p.Peek(i)
		if !ok {
			return "", false
		}
		if !isBlank(line) {
			return line, true
		}
	}
}
