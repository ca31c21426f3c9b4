package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCronRun(t *testing.T) {
	t.Run("EveryMinuteAdvancesByOneMinute", func(t *testing.T) {
		after := time.Date(2026, time.January, 1, 12, 0, 30, 0, time.Local)
		next, err := nextCronRun("* * * * *", after)
		require.Nil(t, err)
		assert.Equal(t, time.Date(2026, time.January, 1, 12, 1, 0, 0, time.Local), next)
	})

	t.Run("DailyAtMidnightSkipsToNextDay", func(t *testing.T) {
		after := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.Local)
		next, err := nextCronRun("0 0 * * *", after)
		require.Nil(t, err)
		assert.Equal(t, time.Date(2026, time.January, 2, 0, 0, 0, 0, time.Local), next)
	})

	t.Run("InvalidExpressionIsRejected", func(t *testing.T) {
		_, err := nextCronRun("not a cron expression", time.Now())
		require.NotNil(t, err)
		assert.Equal(t, "System.invalid_cron", err.Kind.String())
	})
}

// S5/S6 scenarios assume correct cron semantics rather than the
// placeholder "now + 1 hour" the original sources ship with; this
// asserts the computed next-run is never in the past relative to the
// reference time.
func TestNextCronRunNeverInThePast(t *testing.T) {
	after := time.Now()
	next, err := nextCronRun("*/5 * * * *", after)
	require.Nil(t, err)
	assert.True(t, next.After(after))
}
