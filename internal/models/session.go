package models

import "time"

// PracticeSession represents one practice run for a child. Sessions are
// addressed externally by Token rather than the database ID.
type PracticeSession struct {
	ID           int64
	Token        string
	ChildID      int64
	StartedAt    time.Time
	CompletedAt  *time.Time
	TotalItems   int
	CorrectItems int
	XPEarned     int
}

// ItemAttempt is a single spoken attempt at an item within a session.
// MatchRule and EditDistance record the matcher's evidence for review;
// they never feed back into scoring.
type ItemAttempt struct {
	ID           int64
	SessionID    int64
	ItemID       int64
	Transcript   string
	IsCorrect    bool
	MatchRule    string
	EditDistance int
	AttemptedAt  time.Time
}

// SessionOutcome aggregates a finished session's counters. It is
// read-only input to the reward calculator.
type SessionOutcome struct {
	ItemsAttempted     int
	ItemsCorrect       int
	WordsPracticed     int
	SentencesPracticed int
	Duration           time.Duration
	FullSetCompleted   bool
}
