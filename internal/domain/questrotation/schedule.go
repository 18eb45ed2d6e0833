package questrotation

import (
	"time"

	"github.com/questx-lab/questengine/config"
	"github.com/questx-lab/questengine/internal/entity"
	"github.com/questx-lab/questengine/pkg/dateutil"
)

const FeaturedPeriodWeekly = "weekly"

type Window struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// CurrentWindow returns the window of the given rotation type which contains
// now. Windows end at the next reset and span exactly one period.
func CurrentWindow(cfg config.QuestConfigs, rotationType entity.RotationType, now time.Time) Window {
	weekly := rotationType == entity.WeeklyRotation ||
		(rotationType == entity.FeaturedRotation && cfg.FeaturedPeriod == FeaturedPeriodWeekly)

	if weekly {
		endsAt := dateutil.NextWeeklyReset(now, cfg.WeeklyResetWeekday, cfg.WeeklyResetHour)
		return Window{StartsAt: endsAt.AddDate(0, 0, -7), EndsAt: endsAt}
	}

	endsAt := dateutil.NextDailyReset(now, cfg.DailyResetHour)
	return Window{StartsAt: endsAt.AddDate(0, 0, -1), EndsAt: endsAt}
}

// QuestCount is the number of quests a rotation of the given type holds.
func QuestCount(cfg config.QuestConfigs, rotationType entity.RotationType) int {
	switch rotationType {
	case entity.DailyRotation:
		return cfg.DailyQuestCount
	case entity.WeeklyRotation:
		return cfg.WeeklyQuestCount
	default:
		return 1
	}
}
