package ai

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(failures int, cooldown time.Duration) (*CircuitBreaker, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cb := NewCircuitBreaker("test", failures, cooldown)
	cb.now = clk.Now
	return cb, clk
}

// fail runs n allowed calls that all fail.
func fail(t *testing.T, cb *CircuitBreaker, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		gen, err := cb.Allow()
		require.NoError(t, err)
		cb.Record(gen, errors.New("boom"))
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Minute)

	fail(t, cb, 2)
	assert.Equal(t, CircuitClosed, cb.State())

	fail(t, cb, 1)
	assert.Equal(t, CircuitOpen, cb.State())
	_, err := cb.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	fail(t, cb, 1)
	gen, err := cb.Allow()
	require.NoError(t, err)
	cb.Record(gen, nil)
	fail(t, cb, 1)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clk := newTestBreaker(1, 30*time.Second)
	fail(t, cb, 1)
	require.Equal(t, CircuitOpen, cb.State())

	clk.Advance(29 * time.Second)
	_, err := cb.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen)

	clk.Advance(2 * time.Second)
	probe, err := cb.Allow()
	require.NoError(t, err)
	assert.Equal(t, CircuitHalfOpen, cb.State())
	// only one probe at a time
	_, err = cb.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen)

	cb.Record(probe, nil)
	assert.Equal(t, CircuitClosed, cb.State())
	_, err = cb.Allow()
	assert.NoError(t, err)
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, clk := newTestBreaker(3, 10*time.Second)
	fail(t, cb, 3)
	clk.Advance(11 * time.Second)

	probe, err := cb.Allow()
	require.NoError(t, err)
	cb.Record(probe, errors.New("still down"))

	assert.Equal(t, CircuitOpen, cb.State())
	_, err = cb.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_LateSuccessDoesNotCloseOpenCircuit(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Minute)

	slow, err := cb.Allow()
	require.NoError(t, err)
	fail(t, cb, 2)
	require.Equal(t, CircuitOpen, cb.State())

	cb.Record(slow, nil)
	assert.Equal(t, CircuitOpen, cb.State())
	_, err = cb.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_LateOutcomeKeepsProbeSlot(t *testing.T) {
	cb, clk := newTestBreaker(2, time.Minute)

	slow, err := cb.Allow()
	require.NoError(t, err)
	fail(t, cb, 2)
	clk.Advance(2 * time.Minute)

	probe, err := cb.Allow()
	require.NoError(t, err)
	require.Equal(t, CircuitHalfOpen, cb.State())

	cb.Record(slow, errors.New("late"))
	cb.Release(slow)
	assert.Equal(t, CircuitHalfOpen, cb.State())
	_, err = cb.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen, "probe slot must stay taken")

	cb.Record(probe, nil)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestCircuitBreaker_ReleaseKeepsState(t *testing.T) {
	cb, clk := newTestBreaker(1, time.Second)
	fail(t, cb, 1)
	clk.Advance(2 * time.Second)

	probe, err := cb.Allow()
	require.NoError(t, err)
	cb.Release(probe)
	assert.Equal(t, CircuitHalfOpen, cb.State())
	_, err = cb.Allow()
	require.NoError(t, err)
}
