package parser

import (
	"testing"

	"github.com/flytaly/mdtree/pkg/ast"
	"github.com/stretchr/testify/assert"
)

func parseInlineNodes(t *testing.T, src string, opts ...Option) []ast.Node {
	t.Helper()
	nodes, err := New(opts...).ParseInline([]byte(src))
	if err != nil {
		t.Fatalf("ParseInline(%q): %s", src, err)
	}
	return nodes
}

func TestEmphasis(t *testing.T) {
	t.Run("italic", func(t *testing.T) {
		nodes := parseInlineNodes(t, "an *emphasized* word")
		em, ok := firstOfType[*ast.Italic](nodes)
		if !ok {
			t.Fatal("no italic node")
		}
		assert.Equal(t, "emphasized", em.TextContent())
	})

	t.Run("bold", func(t *testing.T) {
		nodes := parseInlineNodes(t, "a **strong** word")
		b, ok := firstOfType[*ast.Bold](nodes)
		if !ok {
			t.Fatal("no bold node")
		}
		assert.Equal(t, "strong", b.TextContent())
	})

	t.Run("underscore works too", func(t *testing.T) {
		nodes := parseInlineNodes(t, "an _emphasized_ word")
		_, ok := firstOfType[*ast.Italic](nodes)
		assert.True(t, ok)
	})

	t.Run("triple markers nest italic in bold", func(t *testing.T) {
		nodes := parseInlineNodes(t, "***both***")
		b, ok := firstOfType[*ast.Bold](nodes)
		if !ok {
			t.Fatal("no bold node")
		}
		_, ok = firstOfType[*ast.Italic](b.Children())
		assert.True(t, ok, "no italic inside the bold")
	})

	t.Run("bold inside italic span", func(t *testing.T) {
		nodes := parseInlineNodes(t, "*a **b** c*")
		em, ok := firstOfType[*ast.Italic](nodes)
		if !ok {
			t.Fatal("no italic node")
		}
		assert.Equal(t, "a b c", em.TextContent())
		_, ok = firstOfType[*ast.Bold](em.Children())
		assert.True(t, ok)
	})

	t.Run("unclosed marker stays literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, "a *dangling marker")
		_, ok := firstOfType[*ast.Italic](nodes)
		assert.False(t, ok)
	})
}

func TestStrikethroughRule(t *testing.T) {
	t.Run("double tilde", func(t *testing.T) {
		nodes := parseInlineNodes(t, "is ~~gone~~ now")
		s, ok := firstOfType[*ast.Strikethrough](nodes)
		if !ok {
			t.Fatal("no strikethrough node")
		}
		assert.Equal(t, "gone", s.TextContent())
	})

	t.Run("disabled without the extension", func(t *testing.T) {
		nodes := parseInlineNodes(t, "is ~~gone~~ now", WithExtensions(Tables))
		_, ok := firstOfType[*ast.Strikethrough](nodes)
		assert.False(t, ok)
	})
}

func TestCodeSpans(t *testing.T) {
	t.Run("single backticks", func(t *testing.T) {
		nodes := parseInlineNodes(t, "call `f(x)` here")
		code, ok := firstOfType[*ast.Code](nodes)
		if !ok {
			t.Fatal("no code node")
		}
		assert.Equal(t, "f(x)", code.Literal)
	})

	t.Run("double backticks allow single inside", func(t *testing.T) {
		nodes := parseInlineNodes(t, "`` a`b ``")
		code, ok := firstOfType[*ast.Code](nodes)
		if !ok {
			t.Fatal("no code node")
		}
		assert.Equal(t, "a`b", code.Literal)
	})

	t.Run("markers inside code stay literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, "`*not em*`")
		_, ok := firstOfType[*ast.Italic](nodes)
		assert.False(t, ok)
	})

	t.Run("unclosed backtick stays literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, "a `dangling")
		_, ok := firstOfType[*ast.Code](nodes)
		assert.False(t, ok)
	})
}

func TestEscapes(t *testing.T) {
	t.Run("escaped markers are literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, `\*not em\*`)
		_, ok := firstOfType[*ast.Italic](nodes)
		assert.False(t, ok)
		text := ""
		for _, n := range nodes {
			text += n.TextContent()
		}
		assert.Equal(t, "*not em*", text)
	})

	t.Run("backslash before a letter is literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, `a\b`)
		assert.Equal(t, `a\b`, nodes[0].TextContent())
	})
}

func TestInlineLinks(t *testing.T) {
	t.Run("destination and title", func(t *testing.T) {
		nodes := parseInlineNodes(t, `[text](/dest "title")`)
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link node")
		}
		assert.Equal(t, "/dest", link.URL)
		assert.Equal(t, "text", link.TextContent())
	})

	t.Run("angle brackets allow spaces", func(t *testing.T) {
		nodes := parseInlineNodes(t, `[text](<./some file.png> "title")`)
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link node")
		}
		assert.Equal(t, "./some file.png", link.URL)
	})

	t.Run("label is inline parsed", func(t *testing.T) {
		nodes := parseInlineNodes(t, "[see *this*](/x)")
		link, _ := firstOfType[*ast.Link](nodes)
		_, ok := firstOfType[*ast.Italic](link.Children())
		assert.True(t, ok)
	})

	t.Run("no links inside links", func(t *testing.T) {
		nodes := parseInlineNodes(t, "[outer [inner](/a)](/b)")
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link node")
		}
		_, nested := firstOfType[*ast.Link](link.Children())
		assert.False(t, nested)
	})

	t.Run("unbalanced parens stay literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, "[text](/dest")
		_, ok := firstOfType[*ast.Link](nodes)
		assert.False(t, ok)
	})
}

func TestImages(t *testing.T) {
	t.Run("inline image", func(t *testing.T) {
		nodes := parseInlineNodes(t, `![alt text](./img.png "Title")`)
		img, ok := firstOfType[*ast.Image](nodes)
		if !ok {
			t.Fatal("no image node")
		}
		assert.Equal(t, "./img.png", img.Destination)
		assert.Equal(t, "alt text", img.Alt)
		assert.Equal(t, "Title", img.Title)
		assert.Equal(t, "alt text", img.TextContent())
	})

	t.Run("images may sit inside links", func(t *testing.T) {
		nodes := parseInlineNodes(t, "[![alt](/img.png)](/page)")
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link node")
		}
		_, hasImg := firstOfType[*ast.Image](link.Children())
		assert.True(t, hasImg)
	})

	t.Run("bang without bracket is literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, "hello! there")
		assert.Equal(t, "hello! there", nodes[0].TextContent())
	})
}

func TestAutolinks(t *testing.T) {
	t.Run("url", func(t *testing.T) {
		nodes := parseInlineNodes(t, "go to <https://example.com/a?b=1> now")
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link node")
		}
		assert.Equal(t, "https://example.com/a?b=1", link.URL)
		assert.Equal(t, "https://example.com/a?b=1", link.TextContent())
	})

	t.Run("email", func(t *testing.T) {
		nodes := parseInlineNodes(t, "mail <user@example.com>")
		link, ok := firstOfType[*ast.Link](nodes)
		if !ok {
			t.Fatal("no link node")
		}
		assert.Equal(t, "mailto:user@example.com", link.URL)
		assert.Equal(t, "user@example.com", link.TextContent())
	})

	t.Run("plain angle bracket is literal", func(t *testing.T) {
		nodes := parseInlineNodes(t, "a < b")
		_, ok := firstOfType[*ast.Link](nodes)
		assert.False(t, ok)
	})

	t.Run("disabled without the extension", func(t *testing.T) {
		nodes := parseInlineNodes(t, "<https://example.com>", WithExtensions(NoExtensions))
		_, ok := firstOfType[*ast.Link](nodes)
		assert.False(t, ok)
	})
}
