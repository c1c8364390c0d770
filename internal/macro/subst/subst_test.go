package subst_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pranlawate/semacro/internal/macro/subst"
)

func TestSubstitute(t *testing.T) {
	t.Run("should substitute positional arguments in order", func(t *testing.T) {
		got := subst.Substitute("allow $1 $2:file { $3 };", []string{"A", "B", "read write"})
		assert.Equal(t, "allow A B:file { read write };", got)
	})

	t.Run("should replace an out-of-range token with empty string", func(t *testing.T) {
		got := subst.Substitute("$1 $5", []string{"x"})
		assert.Equal(t, "x ", got)
	})

	t.Run("should leave $0 verbatim", func(t *testing.T) {
		got := subst.Substitute("echo $0 $1", []string{"arg"})
		assert.Equal(t, "echo $0 arg", got)
	})

	t.Run("should join all arguments with $*", func(t *testing.T) {
		got := subst.Substitute("call($*)", []string{"a", "b", "c"})
		assert.Equal(t, "call(a, b, c)", got)
	})

	t.Run("should not re-scan substituted text for further tokens", func(t *testing.T) {
		got := subst.Substitute("$1", []string{"$2"})
		assert.Equal(t, "$2", got)
	})

	t.Run("should handle a body with no tokens", func(t *testing.T) {
		got := subst.Substitute("allow a b:file read;", []string{"unused"})
		assert.Equal(t, "allow a b:file read;", got)
	})
}
