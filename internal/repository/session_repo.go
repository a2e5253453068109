package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wordgarden/internal/database"
	"wordgarden/internal/models"
)

// SessionRepository handles practice session database operations
type SessionRepository struct {
	db database.DBTX
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new practice session; the session's ID is set on success.
func (r *SessionRepository) Create(session *models.PracticeSession) error {
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}

	query := `
		INSERT INTO practice_sessions (token, child_id, started_at, total_items, correct_items, xp_earned)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		session.Token,
		session.ChildID,
		session.StartedAt,
		session.TotalItems,
		session.CorrectItems,
		session.XPEarned,
	)
	if err != nil {
		return fmt.Errorf("failed to create practice session: %w", err)
	}

	session.ID = id
	return nil
}

// GetByToken retrieves a session by its opaque token
func (r *SessionRepository) GetByToken(token string) (*models.PracticeSession, error) {
	query := `
		SELECT id, token, child_id, started_at, completed_at, total_items, correct_items, xp_earned
		FROM practice_sessions
		WHERE token = ?
	`

	session := &models.PracticeSession{}
	var completedAt sql.NullTime

	err := r.db.QueryRow(query, token).Scan(
		&session.ID,
		&session.Token,
		&session.ChildID,
		&session.StartedAt,
		&completedAt,
		&session.TotalItems,
		&session.CorrectItems,
		&session.XPEarned,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if completedAt.Valid {
		session.CompletedAt = &completedAt.Time
	}
	return session, nil
}

// RecordAttempt stores one attempt against a session item.
func (r *SessionRepository) RecordAttempt(attempt *models.ItemAttempt) error {
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}

	query := `
		INSERT INTO item_attempts (session_id, item_id, transcript, is_correct, match_rule, edit_distance, attempted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		attempt.SessionID,
		attempt.ItemID,
		attempt.Transcript,
		attempt.IsCorrect,
		attempt.MatchRule,
		attempt.EditDistance,
		attempt.AttemptedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}

	attempt.ID = id
	return nil
}

// GetAttempts returns every attempt recorded for a session, oldest first.
func (r *SessionRepository) GetAttempts(sessionID int64) ([]models.ItemAttempt, error) {
	query := `
		SELECT id, session_id, item_id, transcript, is_correct, match_rule, edit_distance, attempted_at
		FROM item_attempts
		WHERE session_id = ?
		ORDER BY attempted_at, id
	`

	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []models.ItemAttempt
	for rows.Next() {
		attempt := models.ItemAttempt{}
		err := rows.Scan(
			&attempt.ID,
			&attempt.SessionID,
			&attempt.ItemID,
			&attempt.Transcript,
			&attempt.IsCorrect,
			&attempt.MatchRule,
			&attempt.EditDistance,
			&attempt.AttemptedAt,
		)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// Complete marks a session as finished and records its final tallies.
func (r *SessionRepository) Complete(session *models.PracticeSession) error {
	query := `
		UPDATE practice_sessions
		SET completed_at = ?, correct_items = ?, xp_earned = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, session.CompletedAt, session.CorrectItems, session.XPEarned, session.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
