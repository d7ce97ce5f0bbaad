package parser

import (
	"regexp"
	"strings"

	"github.com/flytaly/mdtree/pkg/ast"
)

var (
	blankPattern    = regexp.MustCompile(`^[ \t]*$`)
	refDefPattern   = regexp.MustCompile(`^ {0,3}\[([^\[\]]+)\]:[ \t]*<?([^\s<>]+)>?(?:[ \t]+(?:"([^"]*)"|'([^']*)'|\(([^)]*)\)))?[ \t]*$`)
	atxPattern      = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))??(?:[ \t]+#+)?[ \t]*$`)
	setextPattern   = regexp.MustCompile(`^ {0,3}(=+|-+)[ \t]*$`)
	hrPattern       = regexp.MustCompile(`^ {0,3}(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	quotePattern    = regexp.MustCompile(`^ {0,3}>[ \t]?`)
	fenceOpen       = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ \t]*(.*)$")
	indentedPattern = regexp.MustCompile(`^(?: {4}|\t)`)
	textPattern     = regexp.MustCompile(`\S`)
)

// emptyLineRule consumes blank lines. It produces no node but terminates
// any block in progress.
type emptyLineRule struct{}

func (emptyLineRule) Pattern() *regexp.Regexp         { return blankPattern }
func (emptyLineRule) CanParse(p *BlockParser) bool    { return isBlank(p.Current()) }
func (emptyLineRule) CanEndBlock(p *BlockParser) bool { return true }

func (emptyLineRule) Parse(p *BlockParser) (ast.Node, bool) {
	p.Advance()
	return nil, true
}

// refDefRule consumes a reference-style link definition, e.g.
//
//	[name]: /destination "title"
//
// into the per-parse definition table. Definitions produce no node; they
// are consulted later by the inline phase, which is what makes references
// usable before the line that defines them.
type refDefRule struct{}

func (refDefRule) Pattern() *regexp.Regexp         { return refDefPattern }
func (refDefRule) CanParse(p *BlockParser) bool    { return refDefPattern.MatchString(p.Current()) }
func (refDefRule) CanEndBlock(p *BlockParser) bool { return true }

func (refDefRule) Parse(p *BlockParser) (ast.Node, bool) {
	m := refDefPattern.FindStringSubmatch(p.Current())
	if m == nil {
		return nil, false
	}
	title := m[3]
	if title == "" {
		title = m[4]
	}
	if title == "" {
		title = m[5]
	}
	p.DefineLink(m[1], m[2], title)
	p.Advance()
	return nil, true
}

// setextHeaderRule matches a paragraph-shaped run of lines followed by an
// underline of = (level 1) or - (level 2). It is tried before the other
// heading and rule patterns so that the underline binds to the text above
// it, the way a trailing --- binds to a paragraph rather than making a
// horizontal rule.
type setextHeaderRule struct{}

func (setextHeaderRule) Pattern() *regexp.Regexp         { return setextPattern }
func (setextHeaderRule) CanParse(p *BlockParser) bool    { return setextUnderlineAt(p) > 0 }
func (setextHeaderRule) CanEndBlock(p *BlockParser) bool { return false }

// setextUnderlineAt returns the look-ahead offset of the underline line,
// or -1 when the cursor does not sit on setext-header text.
func setextUnderlineAt(p *BlockParser) int {
	if p.AtEnd() || isBlank(p.Current()) || p.blockEnds() {
		return -1
	}
	for i := 1; ; i++ {
		line, ok := p.Peek(i)
		if !ok {
			return -1
		}
		if setextPattern.MatchString(line) {
			return i
		}
		if isBlank(line) || p.lookahead(i).blockEnds() {
			return -1
		}
	}
}

func (setextHeaderRule) Parse(p *BlockParser) (ast.Node, bool) {
	n := setextUnderlineAt(p)
	if n <= 0 {
		return nil, false
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, strings.TrimSpace(p.Current()))
		p.Advance()
	}
	level := 2
	if strings.HasPrefix(strings.TrimSpace(p.Current()), "=") {
		level = 1
	}
	p.Advance() // underline
	h := &ast.Header{Level: level}
	h.Append(ast.NewUnparsed(strings.Join(parts, "\n")))
	return h, true
}

// atxHeaderRule matches `#{1,6} text`. The marker depth is the level;
// seven or more hashes do not match and fall through to paragraph.
type atxHeaderRule struct{}

func (atxHeaderRule) Pattern() *regexp.Regexp         { return atxPattern }
func (atxHeaderRule) CanParse(p *BlockParser) bool    { return atxPattern.MatchString(p.Current()) }
func (atxHeaderRule) CanEndBlock(p *BlockParser) bool { return true }

func (atxHeaderRule) Parse(p *BlockParser) (ast.Node, bool) {
	m := atxPattern.FindStringSubmatch(p.Current())
	if m == nil {
		return nil, false
	}
	level := len(m[1])
	if level < 1 || level > 6 {
		// the pattern guarantees the range; reaching this means the rule
		// was rebuilt with a broken pattern
		structuralf("header", p.LineNumber(), "header level %d outside 1..6", level)
	}
	h := &ast.Header{Level: level}
	if text := strings.TrimSpace(m[2]); text != "" {
		h.Append(ast.NewUnparsed(text))
	}
	p.Advance()
	return h, true
}

// horizontalRuleRule matches three or more -, * or _ on a line.
type horizontalRuleRule struct{}

func (horizontalRuleRule) Pattern() *regexp.Regexp         { return hrPattern }
func (horizontalRuleRule) CanParse(p *BlockParser) bool    { return hrPattern.MatchString(p.Current()) }
func (horizontalRuleRule) CanEndBlock(p *BlockParser) bool { return true }

func (horizontalRuleRule) Parse(p *BlockParser) (ast.Node, bool) {
	p.Advance()
	return &ast.HorizontalRule{}, true
}

// blockQuoteRule strips `> ` prefixes and block-parses the quoted lines
// with a nested parser, so quotes contain arbitrary blocks and may nest.
type blockQuoteRule struct{}

func (blockQuoteRule) Pattern() *regexp.Regexp         { return quotePattern }
func (blockQuoteRule) CanParse(p *BlockParser) bool    { return quotePattern.MatchString(p.Current()) }
func (blockQuoteRule) CanEndBlock(p *BlockParser) bool { return true }

func (blockQuoteRule) Parse(p *BlockParser) (ast.Node, bool) {
	if !quotePattern.MatchString(p.Current()) {
		return nil, false
	}
	base := p.LineNumber()
	var inner []string
	for !p.AtEnd() {
		cur := p.Current()
		if loc := quotePattern.FindStringIndex(cur); loc != nil {
			inner = append(inner, cur[loc[1]:])
			p.Advance()
			continue
		}
		// lazy continuation of quoted paragraph text
		if !isBlank(cur) && !p.blockEnds() {
			inner = append(inner, cur)
			p.Advance()
			continue
		}
		break
	}
	q := &ast.BlockQuote{}
	q.Append(p.nested("blockquote", inner, base, false)...)
	return q, true
}

// fencedCodeRule matches ``` or ~~~ fences with an optional info string.
// An unclosed fence runs to the end of the input.
type fencedCodeRule struct{}

func (fencedCodeRule) Pattern() *regexp.Regexp         { return fenceOpen }
func (fencedCodeRule) CanEndBlock(p *BlockParser) bool { return true }

func (fencedCodeRule) CanParse(p *BlockParser) bool {
	m := fenceOpen.FindStringSubmatch(p.Current())
	if m == nil {
		return false
	}
	// backtick fences cannot carry backticks in the info string
	return m[1][0] != '`' || !strings.Contains(m[2], "`")
}

func (fencedCodeRule) Parse(p *BlockParser) (ast.Node, bool) {
	m := fenceOpen.FindStringSubmatch(p.Current())
	if m == nil {
		return nil, false
	}
	marker, info := m[1], strings.TrimSpace(m[2])
	if marker[0] == '`' && strings.Contains(info, "`") {
		return nil, false
	}
	p.Advance()

	var body []string
	for !p.AtEnd() {
		line := p.Current()
		p.Advance()
		if closesFence(line, marker) {
			break
		}
		body = append(body, line)
	}

	node := &ast.FencedCodeBlock{Language: fenceLanguage(info)}
	if len(body) > 0 {
		node.Literal = strings.Join(body, "\n") + "\n"
	}
	return node, true
}

// closesFence reports whether line is a closing fence for the given
// opening marker: the same character, at least as many of them, nothing
// else but whitespace.
func closesFence(line, marker string) bool {
	t := strings.TrimSpace(line)
	if len(t) < len(marker) {
		return false
	}
	for i := 0; i < len(t); i++ {
		if t[i] != marker[0] {
			return false
		}
	}
	return true
}

// fenceLanguage extracts the language tag from an info string. A `{go}`
// style tag is unwrapped.
func fenceLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	lang := fields[0]
	if strings.HasPrefix(lang, "{") {
		lang = strings.TrimSuffix(strings.TrimPrefix(lang, "{"), "}")
	}
	return lang
}

// indentedCodeRule matches lines indented by four spaces or a tab.
// Indented lines never interrupt a paragraph (CanEndBlock is false), which
// gives paragraph continuation lines priority over code.
type indentedCodeRule struct{}

func (indentedCodeRule) Pattern() *regexp.Regexp         { return indentedPattern }
func (indentedCodeRule) CanParse(p *BlockParser) bool    { return indentedPattern.MatchString(p.Current()) }
func (indentedCodeRule) CanEndBlock(p *BlockParser) bool { return false }

func (indentedCodeRule) Parse(p *BlockParser) (ast.Node, bool) {
	var body []string
	for !p.AtEnd() {
		cur := p.Current()
		switch {
		case indentedPattern.MatchString(cur):
			body = append(body, stripIndent(cur, 4))
		case isBlank(cur):
			body = append(body, "")
		default:
			goto done
		}
		p.Advance()
	}
done:
	for len(body) > 0 && body[len(body)-1] == "" {
		body = body[:len(body)-1]
	}
	if len(body) == 0 {
		return nil, false
	}
	return &ast.CodeBlock{Leaf: ast.Leaf{Literal: strings.Join(body, "\n") + "\n"}}, true
}

// paragraphRule is the fallback: it accepts any non-blank line and keeps
// consuming until a blank line or a construct that may end a block. The
// captured text becomes a single placeholder leaf for the inline phase.
type paragraphRule struct{}

func (paragraphRule) Pattern() *regexp.Regexp         { return textPattern }
func (paragraphRule) CanParse(p *BlockParser) bool    { return !isBlank(p.Current()) }
func (paragraphRule) CanEndBlock(p *BlockParser) bool { return false }

func (paragraphRule) Parse(p *BlockParser) (ast.Node, bool) {
	lines := []string{strings.TrimSpace(p.Current())}
	p.Advance()
	for !p.AtEnd() && !isBlank(p.Current()) && !p.blockEnds() {
		lines = append(lines, strings.TrimSpace(p.Current()))
		p.Advance()
	}
	content := ast.NewUnparsed(strings.Join(lines, "\n"))
	if p.InListItem() {
		para := &ast.ListParagraph{}
		para.Append(content)
		return para, true
	}
	para := &ast.Paragraph{}
	para.Append(content)
	return para, true
}
