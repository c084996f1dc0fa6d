package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}

// failing returns fn that fails with errs in order and then succeeds.
func failing(errs ...error) (fn func() error, calls *int) {
	n := 0
	return func() error {
		n++
		if n <= len(errs) {
			return errs[n-1]
		}
		return nil
	}, &n
}

func TestWithBackoff_FirstTry(t *testing.T) {
	fn, calls := failing()
	require.NoError(t, WithBackoff(context.Background(), fast, fn))
	assert.Equal(t, 1, *calls)
}

func TestWithBackoff_RecoversFromTransientErrors(t *testing.T) {
	fn, calls := failing(
		&HTTPError{StatusCode: 503, Message: "overloaded"},
		fmt.Errorf("dial: %w", syscall.ECONNRESET),
	)
	require.NoError(t, WithBackoff(context.Background(), fast, fn))
	assert.Equal(t, 3, *calls)
}

func TestWithBackoff_GivesUp(t *testing.T) {
	last := &HTTPError{StatusCode: 429, Message: "rate limited"}
	fn, calls := failing(last, last, last, last)

	err := WithBackoff(context.Background(), fast, fn)
	require.Error(t, err)
	assert.Equal(t, 3, *calls)
	assert.Contains(t, err.Error(), "giving up after 3 attempts")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 429, httpErr.StatusCode)
}

func TestWithBackoff_PermanentErrorStops(t *testing.T) {
	permanent := &HTTPError{StatusCode: 401, Message: "bad api key"}
	fn, calls := failing(permanent)

	err := WithBackoff(context.Background(), fast, fn)
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, *calls)
}

func TestWithBackoff_CancelledWhileWaiting(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}

	calls := 0
	err := WithBackoff(ctx, cfg, func() error {
		calls++
		cancel()
		return &HTTPError{StatusCode: 502, Message: "bad gateway"}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, context.Canceled)
	var httpErr *HTTPError
	assert.ErrorAs(t, err, &httpErr)
}

func TestWithBackoff_ZeroAttemptsRunsOnce(t *testing.T) {
	fn, calls := failing(&HTTPError{StatusCode: 500})
	err := WithBackoff(context.Background(), Config{}, fn)
	assert.Error(t, err)
	assert.Equal(t, 1, *calls)
}

func TestConfig_Wait(t *testing.T) {
	c := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}
	assert.Equal(t, 100*time.Millisecond, c.wait(1))
	assert.Equal(t, 200*time.Millisecond, c.wait(2))
	assert.Equal(t, 800*time.Millisecond, c.wait(4))
	assert.Equal(t, time.Second, c.wait(10))

	c.JitterFraction = 0.5
	for i := 0; i < 50; i++ {
		d := c.wait(1)
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid model"), false},
		{"canceled", fmt.Errorf("call: %w", context.Canceled), false},
		{"deadline", context.DeadlineExceeded, false},
		{"net timeout", &net.OpError{Op: "read", Err: timeoutErr{}}, true},
		{"refused", fmt.Errorf("connect: %w", syscall.ECONNREFUSED), true},
		{"broken pipe", syscall.EPIPE, true},
		{"500", &HTTPError{StatusCode: 500}, true},
		{"503 wrapped", fmt.Errorf("claude: %w", &HTTPError{StatusCode: 503}), true},
		{"429", &HTTPError{StatusCode: 429}, true},
		{"408", &HTTPError{StatusCode: 408}, true},
		{"400", &HTTPError{StatusCode: 400}, false},
		{"404", &HTTPError{StatusCode: 404}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestPresets(t *testing.T) {
	for name, c := range map[string]Config{
		"default": DefaultConfig(),
		"ai":      AIAPIConfig(),
		"db":      DBConfig(),
		"storage": StorageConfig(),
	} {
		assert.Equal(t, 3, c.MaxAttempts, name)
		assert.Positive(t, c.InitialDelay, name)
		assert.GreaterOrEqual(t, c.MaxDelay, c.InitialDelay, name)
	}
}
