// Package reward converts session outcomes into experience points,
// bonus payouts, streak updates and the companion's derived mood.
//
// Every function here is pure: the calculator reads the outcome and the
// child's prior streak state and returns a result for the caller to
// persist.
package reward

import (
	"fmt"
	"math"
	"time"

	"wordgarden/internal/models"
)

// Bonus reason labels shown in the session summary.
const (
	ReasonAccuracy100     = "accuracy_100"
	ReasonAccuracy95      = "accuracy_95"
	ReasonAccuracy90      = "accuracy_90"
	ReasonFullSet         = "full_set_completed"
	ReasonStreakMilestone = "streak_milestone"
	ReasonComeback        = "comeback"
	ReasonPerfectSession  = "perfect_session"
)

// AccuracyTier is one band of the mutually-exclusive accuracy bonus.
type AccuracyTier struct {
	Threshold float64 // session accuracy percentage
	Bonus     int
	Reason    string
}

// Milestone pays a flat bonus on the day the streak counter reaches
// Days.
type Milestone struct {
	Days  int
	Bonus int
}

// Config holds every payout constant so deployments can tune rewards
// without touching the algorithm.
type Config struct {
	BaseXPPerItem int

	// AccuracyTiers are checked highest threshold first; only the first
	// tier that applies pays out.
	AccuracyTiers []AccuracyTier

	CompletionBonus int

	StreakMilestones []Milestone

	// ComebackGapDays is the inactivity gap (in calendar days) that
	// qualifies for the comeback bonus.
	ComebackGapDays int
	ComebackBonus   int

	PerfectBonus    int
	PerfectMinItems int

	// Companion tuning.
	HappinessBoost       int
	HappinessDecayPerDay int
	LonelyGapDays        int
	HotStreakDays        int
}

// DefaultConfig returns the production payout constants.
func DefaultConfig() Config {
	return Config{
		BaseXPPerItem: 10,
		AccuracyTiers: []AccuracyTier{
			{Threshold: 100, Bonus: 50, Reason: ReasonAccuracy100},
			{Threshold: 95, Bonus: 30, Reason: ReasonAccuracy95},
			{Threshold: 90, Bonus: 20, Reason: ReasonAccuracy90},
		},
		CompletionBonus: 25,
		StreakMilestones: []Milestone{
			{Days: 3, Bonus: 15},
			{Days: 7, Bonus: 30},
			{Days: 14, Bonus: 50},
			{Days: 30, Bonus: 100},
		},
		ComebackGapDays:      3,
		ComebackBonus:        20,
		PerfectBonus:         40,
		PerfectMinItems:      5,
		HappinessBoost:       15,
		HappinessDecayPerDay: 5,
		LonelyGapDays:        3,
		HotStreakDays:        3,
	}
}

// Bonus is one applied payout, kept for UI display.
type Bonus struct {
	Reason string
	Amount int
}

// Result is the full reward computation for a completed session.
type Result struct {
	BaseXP     int
	TotalXP    int
	Bonuses    []Bonus
	StreakDays int
	Happiness  int
	Mood       models.Mood
}

// Calculator computes session rewards and companion state.
type Calculator struct {
	cfg Config
}

// New returns a Calculator using the given payout constants.
func New(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// ComputeReward converts a finished session into XP, bonuses, the new
// streak and the companion's refreshed happiness and mood.
//
// lastPractice is the child's previous practice date (nil for a first
// session); storedHappiness is the companion's persisted happiness
// before this session. Nothing is written anywhere: the caller persists
// the result.
func (c *Calculator) ComputeReward(outcome models.SessionOutcome, priorStreakDays int, lastPractice *time.Time, storedHappiness int, now time.Time) (Result, error) {
	if err := validateOutcome(outcome); err != nil {
		return Result{}, err
	}
	if priorStreakDays < 0 {
		return Result{}, fmt.Errorf("reward: negative prior streak %d", priorStreakDays)
	}
	if lastPractice != nil && lastPractice.After(now) {
		return Result{}, fmt.Errorf("reward: last practice date %s is in the future", lastPractice.Format(time.DateOnly))
	}

	gap := 0
	if lastPractice != nil {
		gap = calendarDaysBetween(*lastPractice, now)
	}

	streak := nextStreak(priorStreakDays, lastPractice, gap)
	accuracy := sessionAccuracy(outcome)

	res := Result{
		BaseXP:     c.cfg.BaseXPPerItem * outcome.ItemsAttempted,
		StreakDays: streak,
	}
	res.TotalXP = res.BaseXP

	apply := func(reason string, amount int) {
		res.Bonuses = append(res.Bonuses, Bonus{Reason: reason, Amount: amount})
		res.TotalXP += amount
	}

	// Tiered accuracy bonus: highest applicable tier only.
	if outcome.ItemsAttempted > 0 {
		for _, tier := range c.cfg.AccuracyTiers {
			if accuracy >= tier.Threshold {
				apply(tier.Reason, tier.Bonus)
				break
			}
		}
	}

	if outcome.FullSetCompleted {
		apply(ReasonFullSet, c.cfg.CompletionBonus)
	}

	// Milestones pay only on the day the counter reaches them, so a
	// same-day repeat session (unchanged streak) never pays twice.
	if streakChanged(lastPractice, gap) {
		for _, m := range c.cfg.StreakMilestones {
			if m.Days == streak {
				apply(ReasonStreakMilestone, m.Bonus)
				break
			}
		}
	}

	if lastPractice != nil && gap >= c.cfg.ComebackGapDays {
		apply(ReasonComeback, c.cfg.ComebackBonus)
	}

	if accuracy == 100 && outcome.ItemsAttempted >= c.cfg.PerfectMinItems {
		apply(ReasonPerfectSession, c.cfg.PerfectBonus)
	}

	happiness := c.DecayedHappiness(storedHappiness, gap)
	res.Happiness = clampHappiness(happiness + c.cfg.HappinessBoost)
	res.Mood = c.ClassifyMood(res.Happiness, 0, streak)

	return res, nil
}

// nextStreak applies the calendar-day streak rules: same day leaves the
// streak unchanged, exactly one day increments it, anything longer (or
// no prior practice) resets it to 1.
func nextStreak(prior int, lastPractice *time.Time, gap int) int {
	switch {
	case lastPractice == nil:
		return 1
	case gap == 0:
		if prior == 0 {
			return 1
		}
		return prior
	case gap == 1:
		return prior + 1
	default:
		return 1
	}
}

func streakChanged(lastPractice *time.Time, gap int) bool {
	return lastPractice == nil || gap >= 1
}

func sessionAccuracy(outcome models.SessionOutcome) float64 {
	if outcome.ItemsAttempted == 0 {
		return 0
	}
	return float64(outcome.ItemsCorrect) / float64(outcome.ItemsAttempted) * 100
}

// calendarDaysBetween counts whole calendar days from earlier to later
// in later's location. Rounding absorbs DST-shortened days.
func calendarDaysBetween(earlier, later time.Time) int {
	e := earlier.In(later.Location())
	start := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, later.Location())
	end := time.Date(later.Year(), later.Month(), later.Day(), 0, 0, 0, 0, later.Location())
	return int(math.Round(end.Sub(start).Hours() / 24))
}

func validateOutcome(outcome models.SessionOutcome) error {
	if outcome.ItemsAttempted < 0 || outcome.ItemsCorrect < 0 ||
		outcome.WordsPracticed < 0 || outcome.SentencesPracticed < 0 {
		return fmt.Errorf("reward: negative outcome counters %+v", outcome)
	}
	if outcome.ItemsCorrect > outcome.ItemsAttempted {
		return fmt.Errorf("reward: items_correct %d exceeds items_attempted %d", outcome.ItemsCorrect, outcome.ItemsAttempted)
	}
	if outcome.Duration < 0 {
		return fmt.Errorf("reward: negative session duration %s", outcome.Duration)
	}
	return nil
}

func clampHappiness(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
