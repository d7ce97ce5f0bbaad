// Package mdtree parses Markdown-style markup into a typed node tree.
//
// Parsing runs in two phases. The block phase splits the source into
// structural nodes (headers, lists, quotes, tables) and leaves visible
// text as unparsed placeholders while collecting link reference
// definitions. The inline phase then resolves those placeholders with the
// full set of definitions available, so references may point forward.
// The grammar is a priority-ordered list of rules and can be extended or
// replaced through parser options.
package mdtree

import (
	"github.com/flytaly/mdtree/pkg/ast"
	"github.com/flytaly/mdtree/pkg/parser"
	"github.com/flytaly/mdtree/pkg/render"
)

// Parse parses src with the default GitHub-flavored grammar.
func Parse(src []byte) ([]ast.Node, error) {
	return parser.New().Parse(src)
}

// ParseInline parses src as inline content only, without block structure.
func ParseInline(src []byte) ([]ast.Node, error) {
	return parser.New().ParseInline(src)
}

// RenderText parses src and renders it as plain text without styling.
func RenderText(src []byte) (string, error) {
	nodes, err := Parse(src)
	if err != nil {
		return "", err
	}
	return render.NewTerminal(render.WithoutColor()).Render(nodes...), nil
}
