package render

import (
	"strings"
	"testing"

	"github.com/flytaly/mdtree/pkg/ast"
	"github.com/flytaly/mdtree/pkg/parser"
	"github.com/stretchr/testify/assert"
)

func parse(t *testing.T, src string) []ast.Node {
	t.Helper()
	nodes, err := parser.New().Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse(%q): %s", src, err)
	}
	return nodes
}

func renderPlain(t *testing.T, src string) string {
	t.Helper()
	return NewTerminal(WithoutColor()).Render(parse(t, src)...)
}

func TestTerminalBlocks(t *testing.T) {
	t.Run("paragraphs separated by one blank line", func(t *testing.T) {
		out := renderPlain(t, "one\n\ntwo")
		assert.Equal(t, "one\n\ntwo\n", out)
	})

	t.Run("header keeps its markers", func(t *testing.T) {
		out := renderPlain(t, "## Title")
		assert.Equal(t, "## Title\n", out)
	})

	t.Run("quote lines carry a bar", func(t *testing.T) {
		out := renderPlain(t, "> quoted\n> text")
		assert.Equal(t, "│ quoted\n│ text\n", out)
	})

	t.Run("code is indented", func(t *testing.T) {
		out := renderPlain(t, "```\nx := 1\n```")
		assert.Equal(t, "    x := 1\n", out)
	})

	t.Run("horizontal rule uses the width", func(t *testing.T) {
		out := NewTerminal(WithoutColor(), WithWidth(4)).Render(parse(t, "---")...)
		assert.Equal(t, strings.Repeat("─", 4)+"\n", out)
	})
}

func TestTerminalInline(t *testing.T) {
	t.Run("plain styling is transparent", func(t *testing.T) {
		out := renderPlain(t, "a **b** *c* ~~d~~ `e`")
		assert.Equal(t, "a b c d e\n", out)
	})

	t.Run("link shows destination", func(t *testing.T) {
		out := renderPlain(t, "[docs](https://example.com)")
		assert.Equal(t, "docs (https://example.com)\n", out)
	})

	t.Run("autolink shows the url once", func(t *testing.T) {
		out := renderPlain(t, "<https://example.com>")
		assert.Equal(t, "https://example.com\n", out)
	})
}

func TestTerminalLists(t *testing.T) {
	t.Run("bullets", func(t *testing.T) {
		out := renderPlain(t, "- a\n- b")
		assert.Equal(t, "• a\n• b\n", out)
	})

	t.Run("ordered numbering honors start", func(t *testing.T) {
		out := renderPlain(t, "3. three\n4. four")
		assert.Equal(t, "3. three\n4. four\n", out)
	})

	t.Run("checkboxes", func(t *testing.T) {
		out := renderPlain(t, "- [x] done\n- [ ] todo")
		assert.Equal(t, "• [x] done\n• [ ] todo\n", out)
	})

	t.Run("nested list indents under its item", func(t *testing.T) {
		out := renderPlain(t, "- top\n  - sub")
		assert.Equal(t, "• top\n  • sub\n", out)
	})
}

func TestTerminalTable(t *testing.T) {
	out := renderPlain(t, "| name | n |\n|:-----|--:|\n| a | 1 |\n| long | 22 |")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), out)
	}
	assert.Equal(t, "name   n", lines[0])
	assert.Equal(t, strings.Repeat("─", 8), lines[1])
	assert.Equal(t, "a      1", lines[2])
	assert.Equal(t, "long  22", lines[3])
}

func TestTreeDump(t *testing.T) {
	t.Run("structure with attributes", func(t *testing.T) {
		out := NewTreeDump().Dump(parse(t, "# Head\n\npara *em*")...)
		want := "Header level=1\n" +
			"  Text \"Head\"\n" +
			"Paragraph\n" +
			"  Text \"para \"\n" +
			"  Italic\n" +
			"    Text \"em\"\n"
		assert.Equal(t, want, out)
	})

	t.Run("table cells carry column and alignment", func(t *testing.T) {
		out := NewTreeDump().Dump(parse(t, "| a | b |\n|:--|--:|\n| 1 | 2 |")...)
		assert.Contains(t, out, "Table columns=2")
		assert.Contains(t, out, "TableCell column=0 align=left")
		assert.Contains(t, out, "TableCell column=1 align=right")
	})

	t.Run("identical trees dump identically", func(t *testing.T) {
		src := "- [x] a *b*\n\n> q"
		a := NewTreeDump().Dump(parse(t, src)...)
		b := NewTreeDump().Dump(parse(t, src)...)
		assert.Equal(t, a, b)
	})
}
