package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	runner := New()
	ctx := context.Background()

	t.Run("success captures stdout", func(t *testing.T) {
		res, err := runner.Run(ctx, "sh", "-c", "echo hello")
		require.NoError(t, err)
		assert.True(t, res.Success())
		assert.Equal(t, "hello\n", res.Stdout)
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		res, err := runner.Run(ctx, "sh", "-c", "echo oops >&2; exit 3")
		require.NoError(t, err)
		assert.False(t, res.Success())
		assert.Equal(t, 3, res.ExitCode)
		assert.Equal(t, "oops\n", res.Stderr)
	})

	t.Run("missing binary is an error", func(t *testing.T) {
		_, err := runner.Run(ctx, "tubequiz-definitely-missing-binary")
		assert.Error(t, err)
	})

	t.Run("cancelled context is an error", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := runner.Run(cctx, "sh", "-c", "sleep 5")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTail(t *testing.T) {
	assert.Equal(t, "abc", Tail("abc", 10))
	assert.Equal(t, "bc", Tail("abc", 2))
	assert.Equal(t, "abc", Tail("abc", 0))
}
