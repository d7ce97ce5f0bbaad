package parser

import (
	"regexp"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/flytaly/mdtree/pkg/ast"
)

// BlockRule is a single block-level grammar unit. Rules are immutable
// values shared between parses; all mutable state belongs to the
// BlockParser they are handed.
type BlockRule interface {
	// Pattern is the single-line shape of the construct's first line.
	Pattern() *regexp.Regexp

	// CanParse reports whether the rule claims the input at the current
	// cursor. It may look ahead past the current line (tables do) but must
	// not consume anything or have side effects.
	CanParse(p *BlockParser) bool

	// CanEndBlock reports whether this construct, when it begins on the
	// current line, implicitly terminates a block in progress (used by
	// paragraph, list and quote continuation logic).
	CanEndBlock(p *BlockParser) bool

	// Parse consumes one or more lines and returns the constructed node.
	// ok == false is a refusal: the rule changed nothing and the dispatcher
	// moves on to the next rule. ok == true with a nil node means lines
	// were consumed without producing a block (blank lines, reference
	// definitions).
	Parse(p *BlockParser) (node ast.Node, ok bool)
}

// parseState is the state shared by a whole parse call, including the
// nested BlockParsers created for quotes and list items.
type parseState struct {
	refs       map[string]linkRef
	containers *arraystack.Stack // open container blocks, innermost on top
}

type linkRef struct {
	dest  string
	title string
}

func newParseState() *parseState {
	return &parseState{
		refs:       map[string]linkRef{},
		containers: arraystack.New(),
	}
}

// BlockParser owns the per-parse line cursor. One instance is created per
// Parse call plus one per nested container (block quote, list item); they
// all share the same parseState.
type BlockParser struct {
	parser   *Parser
	state    *parseState
	lines    []string
	pos      int
	baseLine int // input line number of lines[0], for diagnostics
	inList   bool
}

// Current returns the line under the cursor.
func (p *BlockParser) Current() string { return p.lines[p.pos] }

// Peek returns the line n positions past the cursor.
func (p *BlockParser) Peek(n int) (string, bool) {
	if p.pos+n >= len(p.lines) {
		return "", false
	}
	return p.lines[p.pos+n], true
}

// Advance moves the cursor to the next line.
func (p *BlockParser) Advance() { p.pos++ }

// AtEnd reports whether all lines are consumed.
func (p *BlockParser) AtEnd() bool { return p.pos >= len(p.lines) }

// LineNumber returns the 1-based input line number of the current line.
func (p *BlockParser) LineNumber() int { return p.baseLine + p.pos }

// InListItem reports whether this parser runs inside a list item, in which
// case paragraphs become ast.ListParagraph.
func (p *BlockParser) InListItem() bool { return p.inList }

// DefineLink records a reference-style link definition. The first
// definition of a name wins.
func (p *BlockParser) DefineLink(name, dest, title string) {
	key := normalizeRefName(name)
	if _, exists := p.state.refs[key]; !exists {
		p.state.refs[key] = linkRef{dest: dest, title: title}
	}
}

func normalizeRefName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// lookahead returns a read-only view of this parser with the cursor moved
// n lines forward, for rules that need CanParse checks past the current
// line. The view shares all state; callers must only call side-effect-free
// methods on it.
func (p *BlockParser) lookahead(n int) *BlockParser {
	shifted := *p
	shifted.pos += n
	return &shifted
}

// blockEnds reports whether the current line begins a construct that
// implicitly terminates a block in progress.
func (p *BlockParser) blockEnds() bool {
	if p.AtEnd() {
		return true
	}
	for _, r := range p.parser.blockRules {
		if r.CanEndBlock(p) && r.CanParse(p) {
			return true
		}
	}
	return false
}

// parseBlocks runs the dispatcher until the input is exhausted. Rules are
// tried in priority order; the first one that claims the line and does not
// refuse wins. There is no backtracking past a committed rule.
func (p *BlockParser) parseBlocks() []ast.Node {
	var blocks []ast.Node
	for !p.AtEnd() {
		matched := false
		for _, r := range p.parser.blockRules {
			if !r.CanParse(p) {
				continue
			}
			node, ok := r.Parse(p)
			if !ok {
				continue
			}
			if node != nil {
				blocks = append(blocks, node)
			}
			matched = true
			break
		}
		if !matched {
			// only reachable with a custom grammar that has no fallback
			blocks = append(blocks, ast.NewUnparsed(p.Current()))
			p.Advance()
		}
	}
	return blocks
}

// nested block-parses inner lines (quote bodies, list items) with a child
// parser sharing this parse's state. Beyond the nesting limit the content
// is kept as raw text instead of recursing further.
func (p *BlockParser) nested(container string, lines []string, baseLine int, inList bool) []ast.Node {
	if p.state.containers.Size() >= p.parser.maxNesting {
		text := strings.Join(lines, "\n")
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []ast.Node{ast.NewUnparsed(text)}
	}
	p.state.containers.Push(container)
	defer p.state.containers.Pop()

	child := &BlockParser{
		parser:   p.parser,
		state:    p.state,
		lines:    lines,
		baseLine: baseLine,
		inList:   inList,
	}
	return child.parseBlocks()
}

func isBlank(line string) bool { return strings.TrimSpace(line) == "" }

// indentWidth counts leading columns, expanding tabs to the next multiple
// of four.
func indentWidth(line string) int {
	w := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			w++
		case '\t':
			w += 4 - w%4
		default:
			return w
		}
	}
	return w
}

// stripIndent removes up to n columns of leading whitespace.
func stripIndent(line string, n int) string {
	col := 0
	for i := 0; i < len(line); i++ {
		if col >= n {
			return line[i:]
		}
		switch line[i] {
		case ' ':
			col++
		case '\t':
			col += 4 - col%4
		default:
			return line[i:]
		}
	}
	return ""
}

// defaultBlockRules returns the built-in grammar in priority order.
func defaultBlockRules(ext Extensions) []BlockRule {
	rules := []BlockRule{
		emptyLineRule{},
		refDefRule{},
		setextHeaderRule{},
		atxHeaderRule{},
		horizontalRuleRule{},
		blockQuoteRule{},
		fencedCodeRule{},
		indentedCodeRule{},
		listRule{ordered: false},
		listRule{ordered: true},
	}
	if ext&Tables != 0 {
		rules = append(rules, tableRule{})
	}
	return append(rules, paragraphRule{})
}
