package models

import "time"

// Mood is the companion's derived emotional state. It is recomputed
// from happiness, inactivity gap and streak on every read and never
// persisted.
type Mood string

const (
	MoodEcstatic Mood = "ecstatic"
	MoodHappy    Mood = "happy"
	MoodContent  Mood = "content"
	MoodSad      Mood = "sad"
	MoodLonely   Mood = "lonely"
)

// CompanionState is the minimal stored fact about a child's companion:
// happiness (0-100), the daily practice streak and when the child last
// practiced. Everything else about the companion is derived.
type CompanionState struct {
	ChildID         int64
	Happiness       int
	StreakDays      int
	LastPracticedAt *time.Time
	UpdatedAt       time.Time
}

// CompanionView is the read-time projection of CompanionState with
// inactivity decay applied and the mood classified.
type CompanionView struct {
	Happiness             int
	StreakDays            int
	DaysSinceLastPractice int
	Mood                  Mood
}
