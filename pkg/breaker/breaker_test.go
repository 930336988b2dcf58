package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteReturnsTypedValue(t *testing.T) {
	t.Parallel()

	cb := New("test", time.Minute)
	got, err := Execute(cb, func() (string, error) { return "cs_test_1", nil })
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", got)
}

func TestExecuteOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	cb := New("test", time.Minute)
	boom := errors.New("upstream down")
	for i := 0; i < 5; i++ {
		_, err := Execute(cb, func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}

	calls := 0
	_, err := Execute(cb, func() (int, error) {
		calls++
		return 1, nil
	})
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Zero(t, calls)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}
