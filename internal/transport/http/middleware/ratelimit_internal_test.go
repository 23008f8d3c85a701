package middleware

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIPBuckets_EvictsIdle(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	b := newIPBuckets(rate.Every(time.Hour), 1, time.Minute, func() time.Time { return now })

	for i := 0; i < 50; i++ {
		assert.True(t, b.allow("10.0.0."+strconv.Itoa(i)))
	}
	assert.Equal(t, 50, b.size())

	now = now.Add(30 * time.Second)
	assert.False(t, b.allow("10.0.0.1"), "burst of 1 already spent")

	now = now.Add(40 * time.Second)
	b.allow("10.0.0.99")
	// 只剩 30 秒前刚用过的 10.0.0.1 和新来的 10.0.0.99
	assert.Equal(t, 2, b.size())
}
