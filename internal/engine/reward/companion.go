package reward

import (
	"time"

	"wordgarden/internal/models"
)

// DecayedHappiness applies the read-time inactivity decay: a capped
// linear drop per calendar day without practice. Decay is always
// recomputed from the stored value and the gap; it is never persisted
// as a background process.
func (c *Calculator) DecayedHappiness(stored, daysSinceLastPractice int) int {
	if daysSinceLastPractice <= 0 {
		return clampHappiness(stored)
	}
	return clampHappiness(stored - daysSinceLastPractice*c.cfg.HappinessDecayPerDay)
}

// ClassifyMood derives the companion's mood from happiness, the
// inactivity gap and the streak. Mood is a pure projection and is
// recomputed every time it is read.
func (c *Calculator) ClassifyMood(happiness, daysSinceLastPractice, streakDays int) models.Mood {
	if daysSinceLastPractice >= c.cfg.LonelyGapDays {
		return models.MoodLonely
	}
	switch {
	case happiness >= 70 && streakDays >= c.cfg.HotStreakDays:
		return models.MoodEcstatic
	case happiness >= 70:
		return models.MoodHappy
	case happiness >= 40:
		return models.MoodContent
	default:
		return models.MoodSad
	}
}

// CompanionView projects the stored companion state into its read-time
// view: decayed happiness plus the derived mood.
func (c *Calculator) CompanionView(state models.CompanionState, now time.Time) models.CompanionView {
	days := 0
	if state.LastPracticedAt != nil {
		days = calendarDaysBetween(*state.LastPracticedAt, now)
		if days < 0 {
			days = 0
		}
	}

	happiness := c.DecayedHappiness(state.Happiness, days)
	return models.CompanionView{
		Happiness:             happiness,
		StreakDays:            state.StreakDays,
		DaysSinceLastPractice: days,
		Mood:                  c.ClassifyMood(happiness, days, state.StreakDays),
	}
}
