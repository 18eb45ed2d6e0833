package questrotation

import (
	"testing"
	"time"

	"github.com/questx-lab/questengine/config"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestCurrentWindow(t *testing.T) {
	cfg := config.QuestConfigs{
		DailyResetHour:     6,
		WeeklyResetWeekday: time.Monday,
		WeeklyResetHour:    0,
		FeaturedPeriod:     "daily",
		DailyQuestCount:    3,
		WeeklyQuestCount:   5,
	}

	// Wednesday.
	now := time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

	daily := CurrentWindow(cfg, entity.DailyRotation, now)
	require.Equal(t, time.Date(2024, 5, 15, 6, 0, 0, 0, time.UTC), daily.StartsAt)
	require.Equal(t, time.Date(2024, 5, 16, 6, 0, 0, 0, time.UTC), daily.EndsAt)

	weekly := CurrentWindow(cfg, entity.WeeklyRotation, now)
	require.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), weekly.StartsAt)
	require.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), weekly.EndsAt)

	require.Equal(t, daily, CurrentWindow(cfg, entity.FeaturedRotation, now))

	cfg.FeaturedPeriod = FeaturedPeriodWeekly
	require.Equal(t, weekly, CurrentWindow(cfg, entity.FeaturedRotation, now))

	// Exactly at the reset a new window begins.
	atReset := CurrentWindow(cfg, entity.DailyRotation, time.Date(2024, 5, 16, 6, 0, 0, 0, time.UTC))
	require.Equal(t, daily.EndsAt, atReset.StartsAt)

	require.Equal(t, 3, QuestCount(cfg, entity.DailyRotation))
	require.Equal(t, 5, QuestCount(cfg, entity.WeeklyRotation))
	require.Equal(t, 1, QuestCount(cfg, entity.FeaturedRotation))
}
