package mdtree

import (
	"testing"

	"github.com/flytaly/mdtree/pkg/ast"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	nodes, err := Parse([]byte("# Title\n\nbody [a](/x)"))
	assert.NoError(t, err)
	if len(nodes) != 2 {
		t.Fatalf("got %d blocks, want 2", len(nodes))
	}
	h, ok := nodes[0].(*ast.Header)
	if !ok {
		t.Fatalf("got %T, want Header", nodes[0])
	}
	assert.Equal(t, 1, h.Level)
	assert.Equal(t, "Title", h.TextContent())
}

func TestParseInline(t *testing.T) {
	nodes, err := ParseInline([]byte("just **bold** text"))
	assert.NoError(t, err)
	found := false
	for _, n := range nodes {
		if _, ok := n.(*ast.Bold); ok {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRenderText(t *testing.T) {
	out, err := RenderText([]byte("# Title\n\n- a\n- b"))
	assert.NoError(t, err)
	assert.Equal(t, "# Title\n\n• a\n• b\n", out)
}
