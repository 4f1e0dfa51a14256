package observability

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestBreaker(maxFailures int, timeout time.Duration) (*CircuitBreaker, *fakeClock) {
	clk := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker("test", maxFailures, timeout)
	cb.now = clk.Now
	return cb, clk
}

func TestCircuitBreaker_NewCircuitBreaker(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("test", 0, 5*time.Second)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetFailures())
	assert.False(t, cb.IsOpen())
	assert.Equal(t, 1, cb.maxFailures)
}

func TestCircuitBreaker_Call_Failure(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(2, time.Second)
	testErr := errors.New("test error")

	err := cb.Call(func() error { return testErr })
	assert.Equal(t, testErr, err)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 1, cb.GetFailures())

	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, 0, cb.GetFailures())
}

func TestCircuitBreaker_StateTransitions(t *testing.T) {
	t.Parallel()

	cb, clk := newTestBreaker(2, 100*time.Millisecond)
	boom := errors.New("boom")

	assert.Error(t, cb.Call(func() error { return boom }))
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Error(t, cb.Call(func() error { return boom }))
	assert.Equal(t, StateOpen, cb.GetState())
	assert.True(t, cb.IsOpen())

	called := false
	err := cb.Call(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	clk.Advance(150 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, cb.Call(func() error { return nil }))
	}
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetFailures())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	t.Parallel()

	cb, clk := newTestBreaker(1, time.Second)
	assert.Error(t, cb.Call(func() error { return errors.New("down") }))
	assert.Equal(t, StateOpen, cb.GetState())

	clk.Advance(2 * time.Second)
	require.NoError(t, cb.Call(func() error { return nil }))
	assert.Equal(t, StateHalfOpen, cb.GetState())

	assert.Error(t, cb.Call(func() error { return errors.New("still down") }))
	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)
}

func TestCircuitBreaker_DoesNotSerializeCalls(t *testing.T) {
	t.Parallel()

	cb := NewCircuitBreaker("parallel", 5, time.Second)
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cb.Call(func() error {
				started <- struct{}{}
				<-release
				return nil
			})
		}()
	}
	for i := 0; i < 2; i++ {
		select {
		case <-started:
		case <-time.After(2 * time.Second):
			t.Fatal("calls were serialized")
		}
	}
	close(release)
	wg.Wait()
}

func TestCircuitBreaker_Reset(t *testing.T) {
	t.Parallel()

	cb, _ := newTestBreaker(1, time.Hour)
	_ = cb.Call(func() error { return errors.New("x") })
	require.True(t, cb.IsOpen())
	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, "closed", cb.GetState().String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", CircuitBreakerState(9).String())
}
