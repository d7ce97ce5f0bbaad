/*
Package parser turns markdown text into the syntax tree defined in pkg/ast.

Parsing is two-phase. The block phase walks the input line by line, trying a
priority-ordered list of block rules; every text region it captures becomes
an ast.UnparsedContent placeholder. The inline phase then rebuilds the tree,
replacing each placeholder with fully resolved inline nodes. Reference link
definitions are collected during the block phase, so a reference may be
defined anywhere in the document, including after its first use.
*/
package parser

import (
	"strings"

	"github.com/flytaly/mdtree/pkg/ast"
)

// Extensions is a bit set of optional grammar features.
type Extensions int

const (
	Tables Extensions = 1 << iota
	Strikethrough
	TaskLists
	Autolinks

	NoExtensions   Extensions = 0
	GitHubFlavored            = Tables | Strikethrough | TaskLists | Autolinks
)

const defaultMaxNesting = 16

// Resolver supplies a node for a reference-style link or image that has no
// matching definition in the document. Returning nil declines, in which case
// the reference is kept as plain text.
type Resolver func(name, title string) ast.Node

// Parser holds the configured grammar. It carries no per-parse state, so a
// single Parser may be used from many goroutines at once; everything mutable
// lives on the per-call BlockParser and inline state.
type Parser struct {
	extensions     Extensions
	blockRules     []BlockRule
	inlineCallback [256]InlineRule
	linkResolver   Resolver
	imageResolver  Resolver
	maxNesting     int

	noDefaults   bool
	customBlock  []BlockRule
	customInline map[byte]InlineRule
}

// Option configures a Parser.
type Option func(*Parser)

// WithExtensions replaces the default extension set (GitHubFlavored).
func WithExtensions(ext Extensions) Option {
	return func(p *Parser) { p.extensions = ext }
}

// WithBlockRules prepends custom block rules. They are tried before the
// default grammar, in registration order.
func WithBlockRules(rules ...BlockRule) Option {
	return func(p *Parser) { p.customBlock = append(p.customBlock, rules...) }
}

// WithInlineRule installs an inline rule for the given trigger byte,
// replacing any default rule on that byte.
func WithInlineRule(trigger byte, rule InlineRule) Option {
	return func(p *Parser) {
		if p.customInline == nil {
			p.customInline = map[byte]InlineRule{}
		}
		p.customInline[trigger] = rule
	}
}

// WithoutDefaultRules drops the built-in grammar entirely; the caller must
// supply rules with WithBlockRules/WithInlineRule.
func WithoutDefaultRules() Option {
	return func(p *Parser) { p.noDefaults = true }
}

// WithLinkResolver sets the fallback for reference links without a
// definition.
func WithLinkResolver(r Resolver) Option {
	return func(p *Parser) { p.linkResolver = r }
}

// WithImageResolver sets the fallback for reference images without a
// definition.
func WithImageResolver(r Resolver) Option {
	return func(p *Parser) { p.imageResolver = r }
}

// WithMaxNesting bounds the depth of nested blocks and inline constructs.
// Content nested deeper is kept as literal text instead of being parsed.
func WithMaxNesting(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxNesting = n
		}
	}
}

// New creates a markdown parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		extensions: GitHubFlavored,
		maxNesting: defaultMaxNesting,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.blockRules = append(p.blockRules, p.customBlock...)
	if !p.noDefaults {
		p.blockRules = append(p.blockRules, defaultBlockRules(p.extensions)...)
		p.installDefaultInlines()
	}
	for b, r := range p.customInline {
		p.inlineCallback[b] = r
	}
	return p
}

// RegisterInline installs an inline rule for a trigger byte and returns the
// previously installed one, so a custom rule may delegate to it.
func (p *Parser) RegisterInline(trigger byte, rule InlineRule) InlineRule {
	prev := p.inlineCallback[trigger]
	p.inlineCallback[trigger] = rule
	return prev
}

// Parse parses a full document. Line endings are normalized first. The
// returned tree never contains ast.UnparsedContent nodes. The error is
// non-nil only for structural violations (a buggy grammar rule); malformed
// input is always recovered into a tree.
func (p *Parser) Parse(src []byte) ([]ast.Node, error) {
	return p.ParseLines(SplitLines(NormalizeNewlines(src)))
}

// ParseLines parses a document already split into lines. Callers are
// expected to have normalized line endings.
func (p *Parser) ParseLines(lines []string) (nodes []ast.Node, err error) {
	defer recoverStructural(&err)
	st := newParseState()
	bp := &BlockParser{parser: p, state: st, lines: lines, baseLine: 1}
	blocks := bp.parseBlocks()
	return p.resolveBlocks(st, blocks), nil
}

// ParseInline parses a single text fragment with the inline grammar only,
// skipping block segmentation. Reference links resolve only through the
// configured resolvers, since no definitions are collected.
func (p *Parser) ParseInline(src []byte) (nodes []ast.Node, err error) {
	defer recoverStructural(&err)
	st := newParseState()
	return p.parseInline(st, NormalizeNewlines(src)), nil
}

func recoverStructural(err *error) {
	if r := recover(); r != nil {
		se, ok := r.(*StructuralError)
		if !ok {
			panic(r)
		}
		*err = se
	}
}

// NormalizeNewlines converts CRLF and CR line endings to LF.
func NormalizeNewlines(d []byte) []byte {
	out := make([]byte, 0, len(d))
	for i := 0; i < len(d); i++ {
		c := d[i]
		if c == '\r' {
			if i+1 < len(d) && d[i+1] == '\n' {
				continue
			}
			c = '\n'
		}
		out = append(out, c)
	}
	return out
}

// SplitLines splits normalized input into lines without their newline
// bytes. A trailing newline does not produce an extra empty line.
func SplitLines(d []byte) []string {
	lines := strings.Split(string(d), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
