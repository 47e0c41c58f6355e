package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failing returns an operation that fails the first n calls, counting every call.
func failing(n int, calls *int) func() error {
	return func() error {
		*calls++
		if *calls <= n {
			return errors.New("temporary error")
		}
		return nil
	}
}

func TestWithBackoff(t *testing.T) {
	tests := []struct {
		name        string
		failures    int
		maxAttempts int
		wantErr     bool
		wantCalls   int
	}{
		{"first try", 0, 3, false, 1},
		{"eventual success", 2, 5, false, 3},
		{"success on last attempt", 2, 3, false, 3},
		{"all attempts fail", 10, 3, true, 3},
		{"single attempt", 10, 1, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithBackoff(context.Background(), failing(tt.failures, &calls), tt.maxAttempts, time.Millisecond)
			if tt.wantErr {
				assert.EqualError(t, err, "temporary error")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

func TestWithBackoff_InvalidMaxAttempts(t *testing.T) {
	for _, maxAttempts := range []int{0, -1} {
		calls := 0
		err := WithBackoff(context.Background(), failing(0, &calls), maxAttempts, time.Millisecond)
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
		assert.Zero(t, calls, "maxAttempts=%d", maxAttempts)
	}
}

func TestWithBackoff_Permanent(t *testing.T) {
	calls := 0
	root := errors.New("bad request")
	err := WithBackoff(context.Background(), func() error {
		calls++
		return fmt.Errorf("embed: %w", Permanent(root))
	}, 5, time.Millisecond)

	assert.Equal(t, root, err)
	assert.Equal(t, 1, calls)
	assert.NoError(t, Permanent(nil))
}

func TestWithBackoff_Cancellation(t *testing.T) {
	t.Run("cancelled between attempts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := WithBackoff(ctx, func() error {
			calls++
			if calls == 2 {
				cancel()
			}
			return errors.New("error")
		}, 10, time.Millisecond)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, calls)
	})

	t.Run("deadline during backoff", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		calls := 0
		err := WithBackoff(ctx, func() error {
			calls++
			return errors.New("error")
		}, 10, time.Second)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, 1, calls)
	})

	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := WithBackoff(ctx, failing(0, &calls), 3, time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, calls)
	})
}

func TestWithBackoff_DelaysGrow(t *testing.T) {
	var stamps []time.Time
	err := WithBackoff(context.Background(), func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 4 {
			return errors.New("error")
		}
		return nil
	}, 5, 5*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, stamps, 4)

	// base, 2*base, 4*base
	for i, min := range []time.Duration{5, 10, 20} {
		assert.GreaterOrEqual(t, stamps[i+1].Sub(stamps[i]), min*time.Millisecond)
	}
}
