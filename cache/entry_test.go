package cache

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Liveness(t *testing.T) {
	t.Parallel()

	never := persistent("v")
	assert.True(t, never.live(0))
	assert.True(t, never.live(int64(100*time.Hour)))
	assert.Equal(t, "v", never.value())

	e := expiring("v", 1000)
	assert.True(t, e.live(999))
	assert.False(t, e.live(1000), "now == deadline is expired")
	assert.False(t, e.live(1001))
	assert.Equal(t, "v", e.value(), "value is readable regardless of liveness")
}

// The default clock must advance and never go backwards between readings.
func TestMonotonicClock(t *testing.T) {
	t.Parallel()

	c := monotonicClock{base: time.Now()}
	a := c.Now()
	time.Sleep(2 * time.Millisecond)
	b := c.Now()
	assert.Greater(t, b, a)
}

func TestDeadlineAfter_Saturates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(150), deadlineAfter(100, 50))
	assert.Equal(t, int64(100), deadlineAfter(100, 0))
	assert.Equal(t, int64(math.MaxInt64), deadlineAfter(1, time.Duration(math.MaxInt64)))
	assert.Equal(t, int64(math.MaxInt64), deadlineAfter(math.MaxInt64-10, 11))
	assert.True(t, expiring("v", deadlineAfter(int64(time.Hour), time.Duration(math.MaxInt64))).live(int64(2*time.Hour)))
}
