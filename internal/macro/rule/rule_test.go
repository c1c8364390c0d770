package rule_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pranlawate/semacro/internal/macro/rule"
)

func TestParseAV(t *testing.T) {
	t.Run("should parse kind, source, target, class, and perms", func(t *testing.T) {
		av, ok := rule.ParseAV("allow httpd_t etc_t:file { read open getattr };")

		require.True(t, ok)
		assert.Equal(t, "allow", av.Kind)
		assert.Equal(t, "httpd_t", av.Source)
		assert.Equal(t, "etc_t", av.Target)
		assert.Equal(t, "file", av.Class)
		assert.Equal(t, []string{"read", "open", "getattr"}, av.Perms)
	})

	t.Run("should reject a non-AV line", func(t *testing.T) {
		_, ok := rule.ParseAV("type_transition s t:process u;")
		assert.False(t, ok)
	})

	t.Run("HasPerms should require every requested permission", func(t *testing.T) {
		av, _ := rule.ParseAV("allow s t:file { read write };")

		assert.True(t, av.HasPerms([]string{"read"}))
		assert.True(t, av.HasPerms([]string{"read", "write"}))
		assert.False(t, av.HasPerms([]string{"execute"}))
	})
}

func TestParseTransition(t *testing.T) {
	t.Run("should parse source, parent, class, and new type", func(t *testing.T) {
		tr, ok := rule.ParseTransition("type_transition httpd_t httpd_exec_t:process httpd_child_t;")

		require.True(t, ok)
		assert.Equal(t, "httpd_t", tr.Source)
		assert.Equal(t, "httpd_exec_t", tr.Parent)
		assert.Equal(t, "process", tr.Class)
		assert.Equal(t, "httpd_child_t", tr.NewType)
		assert.Empty(t, tr.Filename)
	})

	t.Run("should capture an optional quoted filename", func(t *testing.T) {
		tr, ok := rule.ParseTransition(`type_transition httpd_t var_t:file httpd_tmp_t "index.html";`)

		require.True(t, ok)
		assert.Equal(t, "index.html", tr.Filename)
	})
}
