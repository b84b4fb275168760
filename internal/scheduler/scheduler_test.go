package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/wfgraph/pkg/schema"
)

func TestNextRun(t *testing.T) {
	cal := NewCalendar()
	from := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	// Every hour at minute 0.
	next, err := cal.NextRun(schema.Schedule{Cron: "0 * * * *"}, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 10, 13, 0, 0, 0, time.UTC), next)

	// Every 15 minutes.
	next, err = cal.NextRun(schema.Schedule{Cron: "*/15 * * * *"}, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 10, 12, 15, 0, 0, time.UTC), next)

	next, err = cal.NextRun(schema.Schedule{Cron: "@daily"}, from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC), next)
}

func TestNextRun_Timezone(t *testing.T) {
	cal := NewCalendar()
	from := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	// 03:00 in Paris is 02:00 UTC in winter.
	next, err := cal.NextRun(schema.Schedule{Cron: "0 3 * * *", Timezone: "Europe/Paris"}, from)
	require.NoError(t, err)
	assert.True(t, next.Equal(time.Date(2026, 2, 11, 2, 0, 0, 0, time.UTC)), "got %s", next)
}

func TestParse_Invalid(t *testing.T) {
	cal := NewCalendar()

	_, err := cal.Parse(schema.Schedule{Cron: "invalid cron"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron")

	_, err = cal.Parse(schema.Schedule{Cron: "0 * * * *", Timezone: "Mars/Olympus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Mars/Olympus")
}
