package repository

import (
	"database/sql"
	"errors"
	"time"

	"wordgarden/internal/database"
	"wordgarden/internal/models"
)

// CompanionRepository handles garden companion database operations
type CompanionRepository struct {
	db database.DBTX
}

// NewCompanionRepository creates a new companion repository
func NewCompanionRepository(db database.DBTX) *CompanionRepository {
	return &CompanionRepository{db: db}
}

// Get retrieves a child's companion state, or nil when the child has
// never practiced.
func (r *CompanionRepository) Get(childID int64) (*models.CompanionState, error) {
	query := `
		SELECT child_id, happiness, streak_days, last_practiced_at, updated_at
		FROM companions
		WHERE child_id = ?
	`

	state := &models.CompanionState{}
	var lastPracticedAt sql.NullTime

	err := r.db.QueryRow(query, childID).Scan(
		&state.ChildID,
		&state.Happiness,
		&state.StreakDays,
		&lastPracticedAt,
		&state.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if lastPracticedAt.Valid {
		state.LastPracticedAt = &lastPracticedAt.Time
	}
	return state, nil
}

// Upsert writes a child's companion state, creating the row if none
// exists yet.
func (r *CompanionRepository) Upsert(state *models.CompanionState) error {
	now := time.Now()
	state.UpdatedAt = now

	update := `
		UPDATE companions
		SET happiness = ?, streak_days = ?, last_practiced_at = ?, updated_at = ?
		WHERE child_id = ?
	`
	result, err := r.db.Exec(update, state.Happiness, state.StreakDays, state.LastPracticedAt, now, state.ChildID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	insert := `
		INSERT INTO companions (child_id, happiness, streak_days, last_practiced_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(insert, state.ChildID, state.Happiness, state.StreakDays, state.LastPracticedAt, now)
	return err
}
