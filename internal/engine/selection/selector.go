// Package selection builds a child's ordered practice queue from the
// stored item pool.
//
// The pool is partitioned into three categories: needsPractice (has
// progress, stage below blooming), maintenance (blooming) and new (no
// progress yet). Fully mastered items are excluded entirely. The queue
// mixes 60% needsPractice, 20% maintenance and 20% new by default,
// backfilling from whatever is left when a category runs short.
package selection

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"wordgarden/internal/models"
)

// Config holds the category mix. Shares are fractions of the requested
// count; the needs and maintenance quotas round up and new items take
// the remainder.
type Config struct {
	NeedsShare       float64
	MaintenanceShare float64
}

// DefaultConfig returns the production category mix.
func DefaultConfig() Config {
	return Config{
		NeedsShare:       0.6,
		MaintenanceShare: 0.2,
	}
}

// Selector builds practice queues. A Selector is not safe for
// concurrent use: the injected random source is used without locking.
type Selector struct {
	cfg Config
	rng *rand.Rand
}

// New returns a Selector. rng may be nil, in which case a time-seeded
// source is used; tests inject a fixed-seed source to make the category
// mix assertable.
func New(cfg Config, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{cfg: cfg, rng: rng}
}

// Select returns at most count items drawn from pool according to the
// category mix. The result is shuffled so category boundaries are not
// visible in presentation order. When the pool holds fewer than count
// eligible items, all of them are returned without duplication.
func (s *Selector) Select(pool []models.PracticeItem, count int) ([]models.PracticeItem, error) {
	if count <= 0 {
		return nil, fmt.Errorf("selection: count must be positive, got %d", count)
	}

	var needs, maintenance, fresh []models.PracticeItem
	for _, item := range pool {
		switch {
		case item.CurrentStage == models.StageMastered:
			// Mastered items are done: they only come back through an
			// explicit re-practice reset.
		case !item.HasProgress():
			fresh = append(fresh, item)
		case item.CurrentStage == models.StageBlooming:
			maintenance = append(maintenance, item)
		default:
			needs = append(needs, item)
		}
	}

	// Ceil rounding can push the quota sum past count for small counts
	// (1+1 for count=1), so each quota is clamped to what is left.
	needsQuota := int(math.Ceil(float64(count) * s.cfg.NeedsShare))
	if needsQuota > count {
		needsQuota = count
	}
	maintQuota := int(math.Ceil(float64(count) * s.cfg.MaintenanceShare))
	if maintQuota > count-needsQuota {
		maintQuota = count - needsQuota
	}
	freshQuota := count - needsQuota - maintQuota

	// Each category is shuffled before truncation so a category with
	// more candidates than its quota does not always surface the same
	// subset.
	s.shuffle(needs)
	s.shuffle(maintenance)
	s.shuffle(fresh)

	selected := make([]models.PracticeItem, 0, count)
	selected = append(selected, head(needs, needsQuota)...)
	selected = append(selected, head(maintenance, maintQuota)...)
	selected = append(selected, head(fresh, freshQuota)...)

	// Backfill from the unselected remainder of every category when a
	// category came up short.
	if len(selected) < count {
		var leftover []models.PracticeItem
		leftover = append(leftover, tail(needs, needsQuota)...)
		leftover = append(leftover, tail(maintenance, maintQuota)...)
		leftover = append(leftover, tail(fresh, freshQuota)...)
		s.shuffle(leftover)
		selected = append(selected, head(leftover, count-len(selected))...)
	}

	s.shuffle(selected)
	return selected, nil
}

func (s *Selector) shuffle(items []models.PracticeItem) {
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// head returns the first n items, or all of them when fewer exist.
func head(items []models.PracticeItem, n int) []models.PracticeItem {
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}

// tail returns everything head did not take.
func tail(items []models.PracticeItem, n int) []models.PracticeItem {
	if n > len(items) {
		n = len(items)
	}
	return items[n:]
}
