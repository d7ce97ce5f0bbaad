package parser

import (
	"bytes"
	"regexp"

	"github.com/flytaly/mdtree/pkg/ast"
)

// InlineRule is called when the trigger byte it is registered for shows up
// in a text run. It returns the number of consumed bytes and the node to
// insert; zero consumed bytes means the rule declines and the byte stays
// literal text.
type InlineRule func(p *InlineParser, data []byte, offset int) (int, ast.Node)

// InlineParser is the per-parse state of the inline phase: recursion depth
// and the link-definition table collected by the block phase. Custom rules
// receive it to recurse or to resolve references.
type InlineParser struct {
	parser     *Parser
	state      *parseState
	nesting    int
	insideLink bool
}

func (p *Parser) parseInline(st *parseState, data []byte) []ast.Node {
	in := &InlineParser{parser: p, state: st}
	return in.Parse(data)
}

// Parse runs the inline grammar over a text fragment and returns the
// resolved nodes. Beyond the nesting limit the fragment is kept as plain
// text.
func (in *InlineParser) Parse(data []byte) []ast.Node {
	if len(data) == 0 {
		return nil
	}
	if in.nesting >= in.parser.maxNesting {
		return []ast.Node{ast.NewText(string(data))}
	}
	in.nesting++
	defer func() { in.nesting-- }()

	var nodes []ast.Node
	beg, end := 0, 0
	for end < len(data) {
		handler := in.parser.inlineCallback[data[end]]
		if handler == nil {
			end++
			continue
		}
		consumed, node := handler(in, data, end)
		if consumed == 0 {
			// no action from the callback
			end++
			continue
		}
		if end > beg {
			nodes = append(nodes, ast.NewText(string(data[beg:end])))
		}
		if node != nil {
			nodes = append(nodes, node)
		}
		beg = end + consumed
		end = beg
	}
	if beg < len(data) {
		nodes = append(nodes, ast.NewText(string(data[beg:])))
	}
	return nodes
}

// LookupReference finds a reference-style link definition collected during
// the block phase. Names are case insensitive.
func (in *InlineParser) LookupReference(name string) (dest, title string, ok bool) {
	ref, ok := in.state.refs[normalizeRefName(name)]
	return ref.dest, ref.title, ok
}

func (p *Parser) installDefaultInlines() {
	p.inlineCallback['\\'] = escapeRule
	p.inlineCallback['`'] = codeSpanRule
	p.inlineCallback['*'] = emphasisRule
	p.inlineCallback['_'] = emphasisRule
	p.inlineCallback['['] = linkRule
	p.inlineCallback['!'] = imageRule
	if p.extensions&Strikethrough != 0 {
		p.inlineCallback['~'] = strikethroughRule
	}
	if p.extensions&Autolinks != 0 {
		p.inlineCallback['<'] = autolinkRule
	}
}

var escapeChars = []byte("\\`*_{}[]()#+-.!:|&<>~^")

// '\': a backslash escape turns the next punctuation byte into literal text.
func escapeRule(in *InlineParser, data []byte, offset int) (int, ast.Node) {
	data = data[offset:]
	if len(data) <= 1 {
		return 0, nil
	}
	if bytes.IndexByte(escapeChars, data[1]) < 0 {
		return 0, nil
	}
	return 2, ast.NewText(string(data[1:2]))
}

// '`': a code span delimited by a matching backtick run.
func codeSpanRule(in *InlineParser, data []byte, offset int) (int, ast.Node) {
	data = data[offset:]

	nb := skipByte(data, 0, '`')

	// find the next delimiter of the same length
	i, end := 0, 0
	for end = nb; end < len(data) && i < nb; end++ {
		if data[end] == '`' {
			i++
		} else {
			i = 0
		}
	}
	if i < nb && end >= len(data) {
		return 0, nil
	}

	// trim outside whitespace
	fBegin := nb
	for fBegin < end-nb && data[fBegin] == ' ' {
		fBegin++
	}
	fEnd := end - nb
	for fEnd > fBegin && data[fEnd-1] == ' ' {
		fEnd--
	}
	if fBegin == fEnd {
		return end, nil
	}

	code := &ast.Code{}
	code.Literal = string(data[fBegin:fEnd])
	return end, code
}

// '*' and '_': emphasis. One marker is italic, two are bold, three are
// bold wrapping italic.
func emphasisRule(in *InlineParser, data []byte, offset int) (int, ast.Node) {
	data = data[offset:]
	c := data[0]
	n := len(data)

	if n > 2 && data[1] == c {
		if n > 3 && data[2] == c {
			ret, node := helperTripleEmphasis(in, data[3:], c)
			if ret == 0 {
				return 0, nil
			}
			return ret + 3, node
		}
		ret, node := helperDoubleEmphasis(in, data[2:], c)
		if ret == 0 {
			return 0, nil
		}
		return ret + 2, node
	}

	if n > 1 {
		if isSpaceByte(data[1]) {
			return 0, nil
		}
		ret, node := helperEmphasis(in, data[1:], c)
		if ret == 0 {
			return 0, nil
		}
		return ret + 1, node
	}
	return 0, nil
}

// '~': strikethrough, delimited by ~~ pairs.
func strikethroughRule(in *InlineParser, data []byte, offset int) (int, ast.Node) {
	data = data[offset:]
	if len(data) < 4 || data[1] != '~' {
		return 0, nil
	}
	ret, node := helperDoubleEmphasis(in, data[2:], '~')
	if ret == 0 {
		return 0, nil
	}
	return ret + 2, node
}

// findEmphChar finds the next occurrence of c, skipping escaped bytes.
func findEmphChar(data []byte, c byte) int {
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' {
			i++
			continue
		}
		if data[i] == c {
			return i
		}
	}
	return -1
}

func helperEmphasis(in *InlineParser, data []byte, c byte) (int, ast.Node) {
	i := 0
	for i < len(data) {
		j := findEmphChar(data[i:], c)
		if j < 0 {
			return 0, nil
		}
		i += j
		if i == 0 {
			return 0, nil
		}
		// a doubled marker belongs to a nested strong span
		if i+1 < len(data) && data[i+1] == c {
			i++
			i++
			continue
		}
		if !isSpaceByte(data[i-1]) {
			em := &ast.Italic{}
			em.Append(in.Parse(data[:i])...)
			return i + 1, em
		}
		i++
	}
	return 0, nil
}

func helperDoubleEmphasis(in *InlineParser, data []byte, c byte) (int, ast.Node) {
	i := 0
	for i < len(data) {
		j := findEmphChar(data[i:], c)
		if j < 0 {
			return 0, nil
		}
		i += j
		if i > 0 && i+1 < len(data) && data[i+1] == c && !isSpaceByte(data[i-1]) {
			var node ast.Node
			if c == '~' {
				s := &ast.Strikethrough{}
				s.Append(in.Parse(data[:i])...)
				node = s
			} else {
				b := &ast.Bold{}
				b.Append(in.Parse(data[:i])...)
				node = b
			}
			return i + 2, node
		}
		i++
	}
	return 0, nil
}

func helperTripleEmphasis(in *InlineParser, data []byte, c byte) (int, ast.Node) {
	i := 0
	for i < len(data) {
		j := findEmphChar(data[i:], c)
		if j < 0 {
			return 0, nil
		}
		i += j
		if i == 0 || isSpaceByte(data[i-1]) {
			i++
			continue
		}
		if i+2 < len(data) && data[i+1] == c && data[i+2] == c {
			b := &ast.Bold{}
			em := &ast.Italic{}
			em.Append(in.Parse(data[:i])...)
			b.Append(em)
			return i + 3, b
		}
		return 0, nil
	}
	return 0, nil
}

// '[': a link, either inline, reference style or shortcut reference.
func linkRule(in *InlineParser, data []byte, offset int) (int, ast.Node) {
	return parseLinkOrImage(in, data[offset:], false)
}

// '!': an image; only acts on the `![` sequence.
func imageRule(in *InlineParser, data []byte, offset int) (int, ast.Node) {
	data = data[offset:]
	if len(data) < 2 || data[1] != '[' {
		return 0, nil
	}
	return parseLinkOrImage(in, data, true)
}

func parseLinkOrImage(in *InlineParser, data []byte, isImage bool) (int, ast.Node) {
	// links do not nest inside links; images may
	if in.insideLink && !isImage {
		return 0, nil
	}

	prefix := 0
	if isImage {
		prefix = 1
	}
	d := data[prefix:] // d[0] == '['

	// matching closing bracket, honoring nesting and escapes
	txtE := -1
	for i, level := 1, 1; i < len(d); i++ {
		switch {
		case d[i-1] == '\\':
			continue
		case d[i] == '[':
			level++
		case d[i] == ']':
			level--
			if level == 0 {
				txtE = i
			}
		}
		if txtE >= 0 {
			break
		}
	}
	if txtE <= 0 {
		return 0, nil
	}
	label := d[1:txtE]
	i := txtE + 1

	var dest, title string
	switch {
	case i < len(d) && d[i] == '(':
		// inline destination with optional quoted title
		i++
		i = skipSpaceBytes(d, i)
		destB := i
		depth := 0
	findDestEnd:
		for i < len(d) {
			switch d[i] {
			case '\\':
				i += 2
			case '(':
				depth++
				i++
			case ')':
				if depth == 0 {
					break findDestEnd
				}
				depth--
				i++
			case '"', '\'':
				break findDestEnd
			default:
				i++
			}
		}
		if i >= len(d) {
			return 0, nil
		}
		destE := i
		if d[i] == '"' || d[i] == '\'' {
			quote := d[i]
			i++
			titleB := i
			for i < len(d) && d[i] != quote {
				if d[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(d) {
				return 0, nil
			}
			title = string(d[titleB:i])
			i++
			i = skipSpaceBytes(d, i)
			if i >= len(d) || d[i] != ')' {
				return 0, nil
			}
		}
		for destE > destB && isSpaceByte(d[destE-1]) {
			destE--
		}
		raw := d[destB:destE]
		if len(raw) > 1 && raw[0] == '<' && raw[len(raw)-1] == '>' {
			raw = raw[1 : len(raw)-1]
		}
		dest = unescape(raw)
		i++ // ')'

	case i < len(d) && d[i] == '[':
		// reference style with an explicit id
		i++
		idB := i
		for i < len(d) && d[i] != ']' {
			i++
		}
		if i >= len(d) {
			return 0, nil
		}
		name := string(d[idB:i])
		if name == "" {
			name = string(label)
		}
		i++
		var ok bool
		dest, title, ok = in.LookupReference(name)
		if !ok {
			return resolverFallback(in, isImage, name, prefix+i)
		}

	default:
		// shortcut reference
		name := string(label)
		var ok bool
		dest, title, ok = in.LookupReference(name)
		if !ok {
			return resolverFallback(in, isImage, name, prefix+txtE+1)
		}
		i = txtE + 1
	}

	if isImage {
		return prefix + i, &ast.Image{Destination: dest, Alt: string(label), Title: title}
	}

	link := &ast.Link{URL: dest}
	// no link parsing while resolving the label
	inside := in.insideLink
	in.insideLink = true
	link.Append(in.Parse(label)...)
	in.insideLink = inside
	return prefix + i, link
}

// resolverFallback asks the configured resolver for a node when a
// reference has no definition. Without one the reference stays literal
// text (the rule declines).
func resolverFallback(in *InlineParser, isImage bool, name string, consumed int) (int, ast.Node) {
	resolver := in.parser.linkResolver
	if isImage {
		resolver = in.parser.imageResolver
	}
	if resolver == nil {
		return 0, nil
	}
	node := resolver(name, "")
	if node == nil {
		return 0, nil
	}
	return consumed, node
}

var (
	autolinkPattern = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9+.\-]{1,31}:[^\s<>]+)>`)
	emailPattern    = regexp.MustCompile(`^<([^\s<>@]+@[^\s<>@]+\.[^\s<>@]+)>`)
)

// '<': an autolink like <https://example.com> or <user@example.com>.
func autolinkRule(in *InlineParser, data []byte, offset int) (int, ast.Node) {
	data = data[offset:]
	if m := autolinkPattern.FindSubmatch(data); m != nil {
		url := string(m[1])
		link := &ast.Link{URL: url}
		link.Append(ast.NewText(url))
		return len(m[0]), link
	}
	if m := emailPattern.FindSubmatch(data); m != nil {
		addr := string(m[1])
		link := &ast.Link{URL: "mailto:" + addr}
		link.Append(ast.NewText(addr))
		return len(m[0]), link
	}
	return 0, nil
}

// unescape resolves backslash escapes into the bare characters.
func unescape(src []byte) string {
	var ob bytes.Buffer
	i := 0
	for i < len(src) {
		org := i
		for i < len(src) && src[i] != '\\' {
			i++
		}
		if i > org {
			ob.Write(src[org:i])
		}
		if i+1 >= len(src) {
			if i < len(src) {
				ob.WriteByte(src[i])
			}
			break
		}
		ob.WriteByte(src[i+1])
		i += 2
	}
	return ob.String()
}

func skipByte(data []byte, i int, c byte) int {
	for i < len(data) && data[i] == c {
		i++
	}
	return i
}

func skipSpaceBytes(data []byte, i int) int {
	for i < len(data) && isSpaceByte(data[i]) {
		i++
	}
	return i
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}
