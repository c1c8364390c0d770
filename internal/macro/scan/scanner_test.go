package scan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranlawate/semacro/internal/macro/scan"
)

func TestScan(t *testing.T) {
	t.Run("should parse a single interface definition", func(t *testing.T) {
		src := "interface(`foo',`\n  allow $1 $2:file read;\n')\n"

		defs := scan.Scan(src)

		require.Len(t, defs, 1)
		assert.Equal(t, "foo", defs[0].Name)
		assert.Equal(t, "interface", defs[0].Kind)
		assert.Equal(t, "  allow $1 $2:file read;", defs[0].Body)
		assert.Equal(t, 1, defs[0].LineNumber)
	})

	t.Run("should track line numbers across multiple definitions", func(t *testing.T) {
		src := "\n\ninterface(`first',`\n  allow a b:file read;\n')\n\ndefine(`second',` { getattr } ')\n"

		defs := scan.Scan(src)

		require.Len(t, defs, 2)
		assert.Equal(t, "first", defs[0].Name)
		assert.Equal(t, 3, defs[0].LineNumber)
		assert.Equal(t, "second", defs[1].Name)
		assert.Equal(t, 7, defs[1].LineNumber)
	})

	t.Run("should support nested backtick-quote pairs in the body", func(t *testing.T) {
		src := "template(`nested',`\n  gen_require(`\n    type $1;\n  ')\n  allow $1 self:file read;\n')\n"

		defs := scan.Scan(src)

		require.Len(t, defs, 1)
		assert.Contains(t, defs[0].Body, "gen_require(`")
		assert.Contains(t, defs[0].Body, "allow $1 self:file read;")
	})

	t.Run("should drop an unmatched block without failing", func(t *testing.T) {
		src := "interface(`broken',`\n  allow $1 $2:file read;\n"

		defs := scan.Scan(src)

		assert.Empty(t, defs)
	})

	t.Run("should not consume the trailing closing parenthesis", func(t *testing.T) {
		src := "define(`perms',` { read write } ')\nafter_text\n"

		defs := scan.Scan(src)

		require.Len(t, defs, 1)
		assert.Equal(t, " { read write } ", defs[0].Body)
	})

	t.Run("should trim exactly one leading and trailing newline", func(t *testing.T) {
		src := "define(`d',`\n\nbody\n\n')\n"

		defs := scan.Scan(src)

		require.Len(t, defs, 1)
		assert.Equal(t, "\nbody\n", defs[0].Body)
	})

	t.Run("should return nothing for text with no definitions", func(t *testing.T) {
		defs := scan.Scan("# just a comment\nallow a b:file read;\n")
		assert.Empty(t, defs)
	})

	t.Run("should require the header at the start of a line", func(t *testing.T) {
		src := "  interface(`indented',`\nbody\n')\n"
		assert.Empty(t, scan.Scan(src))
	})
}
