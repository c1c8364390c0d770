package index_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranlawate/semacro/internal/macro/domain"
	"github.com/pranlawate/semacro/internal/macro/index"
)

func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func TestBuild(t *testing.T) {
	t.Run("should index definitions from .if and .spt files only", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "kernel/kernel.if", "interface(`kernel_read',`\n  allow $1 self:file read;\n')\n")
		writeFile(t, root, "support/obj_perm_sets.spt", "define(`read_file_perms',` { getattr open read } ')\n")
		writeFile(t, root, "README.md", "interface(`not_parsed',`\nbody\n')\n")

		result, err := index.Build(context.Background(), root, index.Options{})
		require.NoError(t, err)

		assert.Equal(t, 2, result.Index.Len())
		_, ok := result.Index.Lookup("not_parsed")
		assert.False(t, ok)

		def, ok := result.Index.Lookup("kernel_read")
		require.True(t, ok)
		assert.Equal(t, domain.KindInterface, def.Kind)
		assert.Equal(t, filepath.FromSlash("kernel/kernel.if"), def.SourceFile)
	})

	t.Run("should skip default-excluded directories", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, ".git/hooks/fake.if", "interface(`hidden',`\nbody\n')\n")
		writeFile(t, root, "real.if", "interface(`visible',`\nbody\n')\n")

		result, err := index.Build(context.Background(), root, index.Options{})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Index.Len())
		_, ok := result.Index.Lookup("visible")
		assert.True(t, ok)
	})

	t.Run("should report HasDefines and HasKernelFile correctly", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "kernel/kernel.if", "interface(`kernel_read',`\nbody\n')\n")

		result, err := index.Build(context.Background(), root, index.Options{})
		require.NoError(t, err)

		assert.True(t, result.Index.HasKernelFile())
		assert.False(t, result.Index.HasDefines())
	})

	t.Run("should not fail the whole build when one file is unreadable", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "ok.if", "interface(`ok',`\nbody\n')\n")
		broken := filepath.Join(root, "broken.if")
		require.NoError(t, os.Symlink(filepath.Join(root, "missing-target"), broken))

		result, err := index.Build(context.Background(), root, index.Options{})
		require.NoError(t, err)

		_, ok := result.Index.Lookup("ok")
		assert.True(t, ok)
		assert.NotEmpty(t, result.Errors)
	})
}

func TestHasPolicyFiles(t *testing.T) {
	t.Run("should return false for a directory with no policy files", func(t *testing.T) {
		root := t.TempDir()
		assert.False(t, index.HasPolicyFiles(root))
	})

	t.Run("should return true once any .if file is found", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "nested/deep/file.if", "interface(`x',`\nbody\n')\n")
		assert.True(t, index.HasPolicyFiles(root))
	})
}
