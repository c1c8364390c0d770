package expand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranlawate/semacro/internal/macro/domain"
	"github.com/pranlawate/semacro/internal/macro/expand"
)

func newIndex(t *testing.T, defs ...*domain.MacroDefinition) *domain.Index {
	t.Helper()
	idx := domain.NewIndex()
	for _, d := range defs {
		idx.Insert(d)
	}
	idx.Freeze()
	return idx
}

func TestExpand(t *testing.T) {
	t.Run("should expand a leaf-only interface with substitution", func(t *testing.T) {
		idx := newIndex(t, &domain.MacroDefinition{
			Name: "grant_read", Kind: domain.KindInterface,
			Body: "allow $1 $2:file { read open getattr };",
		})

		node := expand.Expand(idx, "grant_read", []string{"httpd_t", "etc_t"}, 0)

		require.False(t, node.IsLeaf())
		assert.Equal(t, "grant_read(httpd_t, etc_t)", node.Label)
		require.Len(t, node.Children, 1)
		assert.Equal(t, "allow httpd_t etc_t:file { read open getattr };", node.Children[0].Text)
	})

	t.Run("should leave $N verbatim when called with no arguments", func(t *testing.T) {
		idx := newIndex(t, &domain.MacroDefinition{
			Name: "grant_read", Kind: domain.KindInterface,
			Body: "allow $1 $2:file read;",
		})

		node := expand.Expand(idx, "grant_read", nil, 0)

		require.Len(t, node.Children, 1)
		assert.Equal(t, "allow $1 $2:file read;", node.Children[0].Text)
	})

	t.Run("should recurse into nested calls and interleave leaves", func(t *testing.T) {
		idx := newIndex(t,
			&domain.MacroDefinition{
				Name: "outer", Kind: domain.KindInterface,
				Body: "allow $1 self:process signal;\ninner($1)\nallow $1 self:file read;",
			},
			&domain.MacroDefinition{
				Name: "inner", Kind: domain.KindInterface,
				Body: "allow $1 etc_t:dir search;",
			},
		)

		node := expand.Expand(idx, "outer", []string{"httpd_t"}, 0)

		require.Len(t, node.Children, 3)
		assert.Equal(t, "allow httpd_t self:process signal;", node.Children[0].Text)
		assert.False(t, node.Children[1].IsLeaf())
		assert.Equal(t, "inner(httpd_t)", node.Children[1].Label)
		assert.Equal(t, "allow httpd_t etc_t:dir search;", node.Children[1].Children[0].Text)
		assert.Equal(t, "allow httpd_t self:file read;", node.Children[2].Text)
	})

	t.Run("should leave an unresolved call as an opaque leaf", func(t *testing.T) {
		idx := newIndex(t, &domain.MacroDefinition{
			Name: "outer", Kind: domain.KindInterface,
			Body: "unknown_macro($1, etc_t)",
		})

		node := expand.Expand(idx, "outer", []string{"httpd_t"}, 0)

		require.Len(t, node.Children, 1)
		assert.True(t, node.Children[0].IsLeaf())
		assert.Equal(t, "unknown_macro(httpd_t, etc_t)", node.Children[0].Text)
	})

	t.Run("should return a bare leaf for a name not in the index", func(t *testing.T) {
		idx := newIndex(t)

		node := expand.Expand(idx, "ghost", []string{"a", "b"}, 0)

		assert.True(t, node.IsLeaf())
		assert.Equal(t, "ghost(a, b)", node.Text)
	})

	t.Run("should terminate a cyclic pair of macros with the max-depth sentinel", func(t *testing.T) {
		idx := newIndex(t,
			&domain.MacroDefinition{Name: "a", Kind: domain.KindInterface, Body: "b()"},
			&domain.MacroDefinition{Name: "b", Kind: domain.KindInterface, Body: "a()"},
		)

		node := expand.Expand(idx, "a", nil, 3)

		deepest := node
		for !deepest.IsLeaf() {
			require.NotEmpty(t, deepest.Children)
			deepest = deepest.Children[len(deepest.Children)-1]
		}
		assert.Equal(t, "... (max depth reached)", deepest.Text)
		// Internal nodes sit at recursion depths 0..maxDepth+1; the
		// sentinel leaf hangs one edge below the deepest of them.
		assert.LessOrEqual(t, node.Depth(), 5)
	})

	t.Run("should strip gen_require blocks from the expansion", func(t *testing.T) {
		idx := newIndex(t, &domain.MacroDefinition{
			Name: "templ", Kind: domain.KindTemplate,
			Body: "gen_require(`\n\ttype $1;\n')\nallow $1 self:file read;",
		})

		node := expand.Expand(idx, "templ", []string{"httpd_t"}, 0)

		for _, leaf := range node.Leaves() {
			assert.NotContains(t, leaf, "gen_require")
		}
		assert.Contains(t, node.Leaves(), "allow httpd_t self:file read;")
	})

	t.Run("should discard directive noise between calls", func(t *testing.T) {
		idx := newIndex(t,
			&domain.MacroDefinition{
				Name: "outer", Kind: domain.KindInterface,
				Body: "optional_policy(`\n\tinner($1)\n')\n",
			},
			&domain.MacroDefinition{
				Name: "inner", Kind: domain.KindInterface,
				Body: "allow $1 self:file read;",
			},
		)

		node := expand.Expand(idx, "outer", []string{"httpd_t"}, 0)

		require.Len(t, node.Children, 1)
		assert.Equal(t, "inner(httpd_t)", node.Children[0].Label)
	})

	t.Run("should inline a parameterless define inside a leaf", func(t *testing.T) {
		idx := newIndex(t,
			&domain.MacroDefinition{
				Name: "templ", Kind: domain.KindInterface,
				Body: "allow $1 $2:file read_file_perms;",
			},
			&domain.MacroDefinition{
				Name: "read_file_perms", Kind: domain.KindDefine,
				Body: "{ getattr open read }",
			},
		)

		node := expand.Expand(idx, "templ", []string{"httpd_t", "etc_t"}, 0)

		require.Len(t, node.Children, 1)
		assert.Equal(t, "allow httpd_t etc_t:file { getattr open read };", node.Children[0].Text)
	})
}
