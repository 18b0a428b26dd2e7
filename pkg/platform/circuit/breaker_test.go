package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker() (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New("audit", WithFailureThreshold(2), WithCooldown(time.Minute), WithClock(clock.now))
	return b, clock
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker()

	require.True(t, b.Allow())
	assert.False(t, b.RecordFailure().Opened)
	assert.Equal(t, StateClosed, b.State())

	require.True(t, b.Allow())
	assert.True(t, b.RecordFailure().Opened)
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker()

	b.RecordFailure()
	b.RecordSuccess()
	assert.False(t, b.RecordFailure().Opened)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	t.Run("successful probe closes the circuit", func(t *testing.T) {
		b, clock := newTestBreaker()
		b.RecordFailure()
		b.RecordFailure()

		clock.advance(59 * time.Second)
		assert.False(t, b.Allow())

		clock.advance(time.Second)
		require.True(t, b.Allow())
		assert.Equal(t, StateHalfOpen, b.State())
		assert.False(t, b.Allow(), "only one probe at a time")

		assert.True(t, b.RecordSuccess().Closed)
		assert.Equal(t, StateClosed, b.State())
		assert.True(t, b.Allow())
	})

	t.Run("failed probe re-opens for another cooldown", func(t *testing.T) {
		b, clock := newTestBreaker()
		b.RecordFailure()
		b.RecordFailure()

		clock.advance(time.Minute)
		require.True(t, b.Allow())
		change := b.RecordFailure()
		assert.False(t, change.Opened)
		assert.Equal(t, StateOpen, b.State())

		clock.advance(30 * time.Second)
		assert.False(t, b.Allow())
		clock.advance(30 * time.Second)
		assert.True(t, b.Allow())
	})
}

func TestBreaker_Reset(t *testing.T) {
	b, _ := newTestBreaker()
	b.RecordFailure()
	b.RecordFailure()

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
	assert.Equal(t, "open", StateOpen.String())
}
