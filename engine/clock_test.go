package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectingClock(t *testing.T) (*Clock, chan int, chan struct{}) {
	t.Helper()
	ticks := make(chan int, 128)
	expired := make(chan struct{}, 1)
	c := NewClock(
		func(remaining int) { ticks <- remaining },
		func() { expired <- struct{}{} },
		WithTickInterval(time.Millisecond),
	)
	return c, ticks, expired
}

func waitTick(t *testing.T, ticks chan int) int {
	t.Helper()
	select {
	case r := <-ticks:
		return r
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for tick")
		return 0
	}
}

func TestClock_CountsDownAndExpires(t *testing.T) {
	t.Parallel()

	c, ticks, expired := collectingClock(t)
	c.Start(3)

	assert.Equal(t, 2, waitTick(t, ticks))
	assert.Equal(t, 1, waitTick(t, ticks))
	assert.Equal(t, 0, waitTick(t, ticks))

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for expiry")
	}

	// expired clocks stop themselves and do not restart
	assert.False(t, c.Running())
	assert.Equal(t, 0, c.Remaining())
	select {
	case r := <-ticks:
		t.Fatalf("unexpected tick after expiry: %d", r)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestClock_StartWhileRunningIsNoOp(t *testing.T) {
	t.Parallel()

	c, ticks, _ := collectingClock(t)
	c.Start(1000)
	c.Start(5000)

	r := waitTick(t, ticks)
	require.Less(t, r, 1000, "second Start must not reset the countdown")

	c.Stop()
	assert.Less(t, c.Remaining(), 1000)
}

func TestClock_StopPreservesRemaining(t *testing.T) {
	t.Parallel()

	c, ticks, _ := collectingClock(t)
	c.Start(100)
	waitTick(t, ticks)
	c.Stop()

	remaining := c.Remaining()
	assert.Greater(t, remaining, 0)
	assert.False(t, c.Running())

	// stop twice is harmless
	c.Stop()
	assert.Equal(t, remaining, c.Remaining())

	// restart resumes from the value the caller passes
	c.Start(remaining)
	assert.True(t, c.Running())
	c.Stop()
}

func TestClock_Reset(t *testing.T) {
	t.Parallel()

	c, ticks, _ := collectingClock(t)
	c.Start(100)
	waitTick(t, ticks)

	c.Reset(42)
	assert.False(t, c.Running())
	assert.Equal(t, 42, c.Remaining())
}

func TestClock_StartZeroIsNoOp(t *testing.T) {
	t.Parallel()

	c, _, expired := collectingClock(t)
	c.Start(0)
	assert.False(t, c.Running())
	select {
	case <-expired:
		t.Fatal("zero-second start must not expire")
	case <-time.After(10 * time.Millisecond):
	}
}
