package countdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects callback invocations across goroutines.
type recorder struct {
	mu        sync.Mutex
	ticks     []int
	completed int
}

func (r *recorder) onTick(remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, remaining)
}

func (r *recorder) onComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *recorder) snapshot() ([]int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.ticks...), r.completed
}

func newFastCountdown(seconds int, rec *recorder) *Countdown {
	c := New(seconds, rec.onTick, rec.onComplete)
	c.tickInterval = 5 * time.Millisecond
	return c
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCountdownTicksDownToZero(t *testing.T) {
	rec := &recorder{}
	c := newFastCountdown(3, rec)

	c.Start()
	waitFor(t, func() bool {
		_, completed := rec.snapshot()
		return completed == 1
	})

	ticks, completed := rec.snapshot()
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, 1, completed, "completion callback fires exactly once")
	assert.Equal(t, 0, c.Remaining())
}

func TestCountdownStartIsIdempotent(t *testing.T) {
	rec := &recorder{}
	c := newFastCountdown(5, rec)

	c.Start()
	c.Start()
	c.Start()

	waitFor(t, func() bool {
		ticks, _ := rec.snapshot()
		return len(ticks) >= 2
	})
	c.Stop()

	ticks, _ := rec.snapshot()
	// A double Start must not double the tick rate; remaining values
	// stay strictly decreasing.
	for i := 1; i < len(ticks); i++ {
		assert.Equal(t, ticks[i-1]-1, ticks[i])
	}
}

func TestCountdownStopHaltsTicking(t *testing.T) {
	rec := &recorder{}
	c := newFastCountdown(100, rec)

	c.Start()
	waitFor(t, func() bool {
		ticks, _ := rec.snapshot()
		return len(ticks) >= 1
	})
	c.Stop()

	ticksAtStop, _ := rec.snapshot()
	time.Sleep(50 * time.Millisecond)
	ticksAfter, completed := rec.snapshot()

	assert.LessOrEqual(t, len(ticksAfter), len(ticksAtStop)+1, "at most one in-flight tick after stop")
	assert.Equal(t, 0, completed)
}

func TestCountdownResetRestoresDuration(t *testing.T) {
	rec := &recorder{}
	c := newFastCountdown(10, rec)

	c.Start()
	waitFor(t, func() bool {
		ticks, _ := rec.snapshot()
		return len(ticks) >= 3
	})
	c.Reset()

	assert.Equal(t, 10, c.Remaining())
}

func TestCountdownRestartAfterCompletion(t *testing.T) {
	rec := &recorder{}
	c := newFastCountdown(1, rec)

	c.Start()
	waitFor(t, func() bool {
		_, completed := rec.snapshot()
		return completed == 1
	})

	// Start on a finished countdown is a no-op until Reset.
	c.Start()
	time.Sleep(20 * time.Millisecond)
	_, completed := rec.snapshot()
	require.Equal(t, 1, completed)

	c.Reset()
	c.Start()
	waitFor(t, func() bool {
		_, completed := rec.snapshot()
		return completed == 2
	})
}

func TestCountdownStopBeforeStartIsSafe(t *testing.T) {
	rec := &recorder{}
	c := newFastCountdown(5, rec)

	c.Stop()
	c.Reset()
	assert.Equal(t, 5, c.Remaining())
}
