package parser

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/flytaly/mdtree/pkg/ast"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, src string, opts ...Option) []ast.Node {
	t.Helper()
	nodes, err := New(opts...).Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %s", src, err)
	}
	return nodes
}

// hasUnparsed reports whether any placeholder leaf survived resolution.
func hasUnparsed(nodes []ast.Node) bool {
	for _, n := range nodes {
		if _, ok := n.(*ast.UnparsedContent); ok {
			return true
		}
		if hasUnparsed(n.Children()) {
			return true
		}
	}
	return false
}

func firstOfType[T ast.Node](nodes []ast.Node) (T, bool) {
	for _, n := range nodes {
		if m, ok := n.(T); ok {
			return m, true
		}
		if m, ok := firstOfType[T](n.Children()); ok {
			return m, true
		}
	}
	var zero T
	return zero, false
}

func TestHeaders(t *testing.T) {
	t.Run("atx levels", func(t *testing.T) {
		for level := 1; level <= 6; level++ {
			src := strings.Repeat("#", level) + " Title"
			nodes := mustParse(t, src)
			h, ok := firstOfType[*ast.Header](nodes)
			if !ok {
				t.Fatalf("no header in %q", src)
			}
			assert.Equal(t, level, h.Level)
			assert.Equal(t, "Title", h.TextContent())
		}
	})

	t.Run("seven hashes is a paragraph", func(t *testing.T) {
		nodes := mustParse(t, "####### nope")
		_, isHeader := nodes[0].(*ast.Header)
		assert.False(t, isHeader)
		_, isPara := nodes[0].(*ast.Paragraph)
		assert.True(t, isPara)
		assert.Equal(t, "####### nope", nodes[0].TextContent())
	})

	t.Run("trailing hashes are trimmed", func(t *testing.T) {
		nodes := mustParse(t, "## Trimmed ##")
		h, _ := firstOfType[*ast.Header](nodes)
		assert.Equal(t, "Trimmed", h.TextContent())
	})

	t.Run("setext", func(t *testing.T) {
		nodes := mustParse(t, "First\n=====\n\nSecond\n---")
		if len(nodes) != 2 {
			t.Fatalf("got %d blocks, want 2", len(nodes))
		}
		h1 := nodes[0].(*ast.Header)
		h2 := nodes[1].(*ast.Header)
		assert.Equal(t, 1, h1.Level)
		assert.Equal(t, "First", h1.TextContent())
		assert.Equal(t, 2, h2.Level)
		assert.Equal(t, "Second", h2.TextContent())
	})

	t.Run("lone dashes are a rule, not setext", func(t *testing.T) {
		nodes := mustParse(t, "---")
		_, isHR := nodes[0].(*ast.HorizontalRule)
		assert.True(t, isHR)
	})
}

func TestParagraphs(t *testing.T) {
	t.Run("blank line splits", func(t *testing.T) {
		nodes := mustParse(t, "one\ntwo\n\nthree")
		if len(nodes) != 2 {
			t.Fatalf("got %d blocks, want 2", len(nodes))
		}
		assert.Equal(t, "one\ntwo", nodes[0].TextContent())
		assert.Equal(t, "three", nodes[1].TextContent())
	})

	t.Run("header interrupts paragraph", func(t *testing.T) {
		nodes := mustParse(t, "text\n# head")
		if len(nodes) != 2 {
			t.Fatalf("got %d blocks, want 2", len(nodes))
		}
		_, isHeader := nodes[1].(*ast.Header)
		assert.True(t, isHeader)
	})
}

func TestBlockQuotes(t *testing.T) {
	t.Run("nested with lazy continuation", func(t *testing.T) {
		nodes := mustParse(t, "> outer\n> > inner\ncontinued")
		q, ok := nodes[0].(*ast.BlockQuote)
		if !ok {
			t.Fatalf("got %T, want BlockQuote", nodes[0])
		}
		inner, ok := firstOfType[*ast.BlockQuote](q.Children())
		if !ok {
			t.Fatal("no nested quote")
		}
		assert.Contains(t, inner.TextContent(), "inner")
		assert.Contains(t, inner.TextContent(), "continued")
	})
}

func TestCodeBlocks(t *testing.T) {
	t.Run("fenced with language", func(t *testing.T) {
		nodes := mustParse(t, "```go\nfmt.Println(1)\n```")
		cb := nodes[0].(*ast.FencedCodeBlock)
		assert.Equal(t, "go", cb.Language)
		assert.Equal(t, "fmt.Println(1)\n", cb.Literal)
	})

	t.Run("unclosed fence runs to the end", func(t *testing.T) {
		nodes := mustParse(t, "```\na\nb")
		cb := nodes[0].(*ast.FencedCodeBlock)
		assert.Equal(t, "a\nb\n", cb.Literal)
	})

	t.Run("no inline parsing inside fences", func(t *testing.T) {
		nodes := mustParse(t, "```\n**not bold**\n```")
		_, hasBold := firstOfType[*ast.Bold](nodes)
		assert.False(t, hasBold)
	})

	t.Run("indented", func(t *testing.T) {
		nodes := mustParse(t, "    indented\n    code")
		cb := nodes[0].(*ast.CodeBlock)
		assert.Equal(t, "indented\ncode\n", cb.Literal)
	})
}

func TestLists(t *testing.T) {
	t.Run("unordered", func(t *testing.T) {
		nodes := mustParse(t, "- a\n- b\n- c")
		list := nodes[0].(*ast.UnorderedList)
		assert.Len(t, list.Children(), 3)
	})

	t.Run("ordered start", func(t *testing.T) {
		nodes := mustParse(t, "3. three\n4. four")
		list := nodes[0].(*ast.OrderedList)
		assert.Equal(t, 3, list.Start)
		assert.Len(t, list.Children(), 2)
	})

	t.Run("nested list", func(t *testing.T) {
		nodes := mustParse(t, "- top\n  - sub")
		list := nodes[0].(*ast.UnorderedList)
		item := list.Children()[0]
		_, ok := firstOfType[*ast.UnorderedList](item.Children())
		assert.True(t, ok, "no nested list inside the first item")
	})

	t.Run("loose items wrap paragraphs", func(t *testing.T) {
		nodes := mustParse(t, "- a\n\n- b")
		list := nodes[0].(*ast.UnorderedList)
		if len(list.Children()) != 2 {
			t.Fatalf("got %d items, want 2", len(list.Children()))
		}
		_, ok := list.Children()[0].Children()[0].(*ast.ListParagraph)
		assert.True(t, ok, "loose item content should stay wrapped")
	})

	t.Run("tight items hold bare inline content", func(t *testing.T) {
		nodes := mustParse(t, "- a\n- b")
		list := nodes[0].(*ast.UnorderedList)
		_, ok := list.Children()[0].Children()[0].(*ast.ListParagraph)
		assert.False(t, ok, "tight item content should be unwrapped")
	})

	t.Run("task list", func(t *testing.T) {
		nodes := mustParse(t, "- [x] done\n- [ ] todo")
		list := nodes[0].(*ast.UnorderedList)
		first := list.Children()[0].(*ast.UnorderedListItem)
		second := list.Children()[1].(*ast.UnorderedListItem)
		if first.Checkbox == nil || second.Checkbox == nil {
			t.Fatal("missing checkboxes")
		}
		assert.True(t, first.Checkbox.Checked)
		assert.False(t, second.Checkbox.Checked)
		assert.Equal(t, "done", first.TextContent())
	})

	t.Run("no checkboxes without the extension", func(t *testing.T) {
		nodes := mustParse(t, "- [x] done", WithExtensions(NoExtensions))
		list := nodes[0].(*ast.UnorderedList)
		item := list.Children()[0].(*ast.UnorderedListItem)
		assert.Nil(t, item.Checkbox)
	})
}

func TestReferences(t *testing.T) {
	t.Run("forward reference", func(t *testing.T) {
		nodes := mustParse(t, "see [docs][ref]\n\n[ref]: https://example.com \"Docs\"")
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link resolved")
		}
		assert.Equal(t, "https://example.com", link.URL)
		assert.Equal(t, "docs", link.TextContent())
	})

	t.Run("definition produces no block", func(t *testing.T) {
		nodes := mustParse(t, "[ref]: /x")
		assert.Empty(t, nodes)
	})

	t.Run("names are case insensitive", func(t *testing.T) {
		nodes := mustParse(t, "[Ref]\n\n[REF]: /dest")
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link resolved")
		}
		assert.Equal(t, "/dest", link.URL)
	})

	t.Run("first definition wins", func(t *testing.T) {
		nodes := mustParse(t, "[a]\n\n[a]: /first\n[a]: /second")
		link, _ := firstOfType[*ast.Link](nodes)
		assert.Equal(t, "/first", link.URL)
	})

	t.Run("unresolved reference stays literal", func(t *testing.T) {
		nodes := mustParse(t, "see [nothing][here]")
		_, hasLink := firstOfType[*ast.Link](nodes)
		assert.False(t, hasLink)
		assert.Equal(t, "see [nothing][here]", nodes[0].TextContent())
	})

	t.Run("resolver fallback", func(t *testing.T) {
		resolver := func(name, title string) ast.Node {
			link := &ast.Link{URL: "wiki/" + name}
			link.Append(ast.NewText(name))
			return link
		}
		nodes := mustParse(t, "see [SomePage]", WithLinkResolver(resolver))
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("resolver was not consulted")
		}
		assert.Equal(t, "wiki/SomePage", link.URL)
	})
}

func TestTwoPhase(t *testing.T) {
	src := "# Head *em*\n\n> quote [a][x]\n\n- item **b**\n\n| c | d |\n|---|---|\n| 1 | 2 |\n\n[x]: /dest"

	t.Run("no placeholders survive", func(t *testing.T) {
		nodes := mustParse(t, src)
		assert.False(t, hasUnparsed(nodes))
	})

	t.Run("parsing is deterministic", func(t *testing.T) {
		a := mustParse(t, src)
		b := mustParse(t, src)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("trees differ between runs:\n%s", diff)
		}
	})

	t.Run("line endings are normalized", func(t *testing.T) {
		a := mustParse(t, "a\nb")
		b := mustParse(t, "a\r\nb")
		c := mustParse(t, "a\rb")
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("CRLF tree differs:\n%s", diff)
		}
		if diff := cmp.Diff(a, c); diff != "" {
			t.Errorf("CR tree differs:\n%s", diff)
		}
	})
}

// upperRule rewrites every line into an uppercased paragraph. It exercises
// custom grammars that replace the built-in rules entirely.
type upperRule struct{}

func (upperRule) Pattern() *regexp.Regexp         { return textPattern }
func (upperRule) CanParse(p *BlockParser) bool    { return !isBlank(p.Current()) }
func (upperRule) CanEndBlock(p *BlockParser) bool { return false }

func (upperRule) Parse(p *BlockParser) (ast.Node, bool) {
	para := &ast.Paragraph{}
	para.Append(ast.NewText(strings.ToUpper(p.Current())))
	p.Advance()
	return para, true
}

func TestCustomRules(t *testing.T) {
	t.Run("custom block rule wins over defaults", func(t *testing.T) {
		nodes := mustParse(t, "# not a header", WithBlockRules(upperRule{}))
		assert.Equal(t, "# NOT A HEADER", nodes[0].TextContent())
	})

	t.Run("without defaults only custom rules run", func(t *testing.T) {
		p := New(WithoutDefaultRules(), WithBlockRules(upperRule{}))
		nodes, err := p.Parse([]byte("abc"))
		assert.NoError(t, err)
		assert.Equal(t, "ABC", nodes[0].TextContent())
	})

	t.Run("inline rule installed as an option", func(t *testing.T) {
		highlight := func(in *InlineParser, data []byte, offset int) (int, ast.Node) {
			rest := data[offset:]
			if len(rest) < 2 || rest[1] != '=' {
				return 0, nil
			}
			end := bytes.Index(rest[2:], []byte("=="))
			if end < 0 {
				return 0, nil
			}
			b := &ast.Bold{}
			b.Append(in.Parse(rest[2 : 2+end])...)
			return end + 4, b
		}
		nodes := mustParse(t, "an ==important== word", WithInlineRule('=', highlight))
		b, ok := firstOfType[*ast.Bold](nodes)
		if !ok {
			t.Fatal("highlight rule did not fire")
		}
		assert.Equal(t, "important", b.TextContent())
	})

	t.Run("option rule replaces the default on that byte", func(t *testing.T) {
		literal := func(in *InlineParser, data []byte, offset int) (int, ast.Node) {
			return 1, ast.NewText("*")
		}
		nodes := mustParse(t, "*not em*", WithInlineRule('*', literal))
		_, ok := firstOfType[*ast.Italic](nodes)
		assert.False(t, ok, "default emphasis rule should be replaced")
		assert.Equal(t, "*not em*", nodes[0].TextContent())
	})

	t.Run("custom inline rule delegates to previous", func(t *testing.T) {
		p := New()
		prev := p.RegisterInline('@', func(in *InlineParser, data []byte, offset int) (int, ast.Node) {
			rest := data[offset:]
			end := 1
			for end < len(rest) && !isSpaceByte(rest[end]) {
				end++
			}
			if end == 1 {
				return 0, nil
			}
			link := &ast.Link{URL: "https://example.com/" + string(rest[1:end])}
			link.Append(ast.NewText(string(rest[:end])))
			return end, link
		})
		assert.Nil(t, prev)

		nodes, err := p.Parse([]byte("ping @mention please"))
		assert.NoError(t, err)
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("mention rule did not fire")
		}
		assert.Equal(t, "https://example.com/mention", link.URL)
	})
}

func TestNestingLimit(t *testing.T) {
	deep := strings.Repeat("> ", 40) + "text"
	nodes := mustParse(t, deep, WithMaxNesting(4))
	assert.False(t, hasUnparsed(nodes), "over-deep content must still resolve to text")

	depth := 0
	cur := nodes[0]
	for {
		q, ok := cur.(*ast.BlockQuote)
		if !ok {
			break
		}
		depth++
		if len(q.Children()) == 0 {
			break
		}
		cur = q.Children()[0]
	}
	assert.LessOrEqual(t, depth, 4)
}

func TestStructuralError(t *testing.T) {
	err := &StructuralError{Rule: "table", Line: 7, Msg: "bad shape"}
	assert.Equal(t, "table rule: line 7: bad shape", err.Error())
}

// brokenRule simulates a defective grammar rule: it claims every line and
// violates a structural guarantee while parsing it.
type brokenRule struct{}

func (brokenRule) Pattern() *regexp.Regexp         { return textPattern }
func (brokenRule) CanParse(p *BlockParser) bool    { return !isBlank(p.Current()) }
func (brokenRule) CanEndBlock(p *BlockParser) bool { return false }

func (brokenRule) Parse(p *BlockParser) (ast.Node, bool) {
	structuralf("broken", p.LineNumber(), "constructed an impossible node")
	return nil, false
}

func TestStructuralErrorRecovery(t *testing.T) {
	t.Run("parse returns the error with context", func(t *testing.T) {
		p := New(WithBlockRules(brokenRule{}))
		nodes, err := p.Parse([]byte("first\n\nsecond"))
		assert.Nil(t, nodes)

		var se *StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("got %v (%T), want *StructuralError", err, err)
		}
		assert.Equal(t, "broken", se.Rule)
		assert.Equal(t, 1, se.Line)
	})

	t.Run("line context is the failing line", func(t *testing.T) {
		// the default grammar handles the first two lines; the broken rule
		// only claims the third because defaults run first here
		p := New()
		p.blockRules = append(p.blockRules[:len(p.blockRules)-1], brokenRule{})
		_, err := p.Parse([]byte("# fine\n\ntext"))
		var se *StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("got %v (%T), want *StructuralError", err, err)
		}
		assert.Equal(t, 3, se.Line)
	})

	t.Run("inline parse recovers too", func(t *testing.T) {
		p := New(WithInlineRule('!', func(in *InlineParser, data []byte, offset int) (int, ast.Node) {
			structuralf("bang", 1, "no node to build")
			return 0, nil
		}))
		nodes, err := p.ParseInline([]byte("oh!"))
		assert.Nil(t, nodes)
		var se *StructuralError
		if !errors.As(err, &se) {
			t.Fatalf("got %v (%T), want *StructuralError", err, err)
		}
		assert.Equal(t, "bang", se.Rule)
	})

	t.Run("other panics pass through", func(t *testing.T) {
		p := New(WithBlockRules(panickyRule{}))
		assert.Panics(t, func() { _, _ = p.Parse([]byte("boom")) })
	})
}

// panickyRule panics with a plain value, not a StructuralError.
type panickyRule struct{}

func (panickyRule) Pattern() *regexp.Regexp         { return textPattern }
func (panickyRule) CanParse(p *BlockParser) bool    { return !isBlank(p.Current()) }
func (panickyRule) CanEndBlock(p *BlockParser) bool { return false }

func (panickyRule) Parse(p *BlockParser) (ast.Node, bool) {
	panic("not structural")
}
