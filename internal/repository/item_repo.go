package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wordgarden/internal/database"
	"wordgarden/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("repository: not found")

// ItemRepository handles practice item database operations
type ItemRepository struct {
	db database.DBTX
}

// NewItemRepository creates a new item repository
func NewItemRepository(db database.DBTX) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, child_id, text, item_type, times_practiced, times_correct,
	       best_accuracy, last_practiced_at, current_stage, created_at, updated_at`

// Create inserts a new practice item. New items start as seedlings with
// zero counters; the item's ID is set on success.
func (r *ItemRepository) Create(item *models.PracticeItem) error {
	if item.CurrentStage == "" {
		item.CurrentStage = models.StageSeedling
	}
	if item.Type == "" {
		item.Type = models.ItemTypeWord
	}

	now := time.Now()
	query := `
		INSERT INTO practice_items (child_id, text, item_type, current_stage, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, item.ChildID, item.Text, string(item.Type), string(item.CurrentStage), now, now)
	if err != nil {
		return fmt.Errorf("failed to create practice item: %w", err)
	}

	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

// GetByID retrieves a practice item by ID
func (r *ItemRepository) GetByID(itemID int64) (*models.PracticeItem, error) {
	query := `SELECT ` + itemColumns + ` FROM practice_items WHERE id = ?`
	return r.scanItem(r.db.QueryRow(query, itemID))
}

// GetPool retrieves every practice item belonging to a child.
func (r *ItemRepository) GetPool(childID int64) ([]models.PracticeItem, error) {
	query := `SELECT ` + itemColumns + ` FROM practice_items WHERE child_id = ? ORDER BY id`

	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateProgress persists an item's counters, best accuracy, stage and
// last-practiced timestamp after an attempt.
func (r *ItemRepository) UpdateProgress(item *models.PracticeItem) error {
	query := `
		UPDATE practice_items
		SET times_practiced = ?, times_correct = ?, best_accuracy = ?,
		    last_practiced_at = ?, current_stage = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		item.TimesPracticed,
		item.TimesCorrect,
		item.BestAccuracy,
		item.LastPracticedAt,
		string(item.CurrentStage),
		time.Now(),
		item.ID,
	)
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

// GetStruggling returns items below the given accuracy ratio with at
// least minAttempts practice attempts, ordered worst first.
func (r *ItemRepository) GetStruggling(childID int64, maxRatio float64, minAttempts int) ([]models.PracticeItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM practice_items
		WHERE child_id = ?
		  AND times_practiced >= ?
		  AND CAST(times_correct AS FLOAT) / times_practiced < ?
		ORDER BY CAST(times_correct AS FLOAT) / times_practiced ASC
	`

	rows, err := r.db.Query(query, childID, minAttempts, maxRatio)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanItems(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ItemRepository) scanItem(row rowScanner) (*models.PracticeItem, error) {
	item := &models.PracticeItem{}
	var (
		itemType        string
		stage           string
		bestAccuracy    sql.NullFloat64
		lastPracticedAt sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.ChildID,
		&item.Text,
		&itemType,
		&item.TimesPracticed,
		&item.TimesCorrect,
		&bestAccuracy,
		&lastPracticedAt,
		&stage,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	item.Type = models.ItemType(itemType)
	item.CurrentStage = models.Stage(stage)
	if bestAccuracy.Valid {
		item.BestAccuracy = &bestAccuracy.Float64
	}
	if lastPracticedAt.Valid {
		item.LastPracticedAt = &lastPracticedAt.Time
	}
	return item, nil
}

func scanItems(rows *sql.Rows) ([]models.PracticeItem, error) {
	var items []models.PracticeItem
	for rows.Next() {
		item := models.PracticeItem{}
		var (
			itemType        string
			stage           string
			bestAccuracy    sql.NullFloat64
			lastPracticedAt sql.NullTime
		)

		err := rows.Scan(
			&item.ID,
			&item.ChildID,
			&item.Text,
			&itemType,
			&item.TimesPracticed,
			&item.TimesCorrect,
			&bestAccuracy,
			&lastPracticedAt,
			&stage,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		item.Type = models.ItemType(itemType)
		item.CurrentStage = models.Stage(stage)
		if bestAccuracy.Valid {
			item.BestAccuracy = &bestAccuracy.Float64
		}
		if lastPracticedAt.Valid {
			item.LastPracticedAt = &lastPracticedAt.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
