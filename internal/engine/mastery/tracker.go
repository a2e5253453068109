// Package mastery classifies a word's accumulated practice statistics
// into the seedling/growing/blooming/mastered progression.
//
// Classification is a pure function of the counter triple: recomputing
// from the same statistics always yields the same stage. The tracker
// holds no hidden counters and uses no randomness.
package mastery

import (
	"fmt"

	"wordgarden/internal/models"
)

// Config holds the accuracy bands the classification is computed from.
type Config struct {
	// MinAttempts is the attempt count required before any non-seedling
	// classification. One or two attempts say nothing about mastery.
	MinAttempts int

	// MasteredRatio is the running accuracy ratio required for the
	// terminal mastered stage.
	MasteredRatio float64

	// MasteredBestAccuracy is the best-accuracy percentage a word must
	// also have reached before it can be called mastered. This keeps a
	// lucky run from mastering a word the child still struggles with.
	MasteredBestAccuracy float64

	BloomingRatio float64
	GrowingRatio  float64
}

// DefaultConfig returns the production accuracy bands.
func DefaultConfig() Config {
	return Config{
		MinAttempts:          3,
		MasteredRatio:        0.9,
		MasteredBestAccuracy: 95,
		BloomingRatio:        0.7,
		GrowingRatio:         0.3,
	}
}

// Stats is the counter triple a classification is computed from.
type Stats struct {
	TimesPracticed int
	TimesCorrect   int
	BestAccuracy   *float64
}

// Ratio returns times_correct / times_practiced, or 0 for an
// unpracticed word.
func (s Stats) Ratio() float64 {
	if s.TimesPracticed == 0 {
		return 0
	}
	return float64(s.TimesCorrect) / float64(s.TimesPracticed)
}

// levelBands is the five-level accuracy scheme used by progress
// displays. Bands are checked highest first.
var levelBands = []struct {
	ratio float64
	level int
}{
	{0.9, 5},
	{0.8, 4},
	{0.7, 3},
	{0.5, 2},
	{0.3, 1},
}

// Tracker computes mastery stages from practice statistics.
type Tracker struct {
	cfg Config
}

// New returns a Tracker using the given accuracy bands.
func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// MinAttempts returns the attempt count required before any
// non-seedling classification.
func (t *Tracker) MinAttempts() int {
	return t.cfg.MinAttempts
}

// Classify maps stats to a stage. Words below MinAttempts are always
// seedlings; mastered additionally requires the best-accuracy bar.
func (t *Tracker) Classify(stats Stats) (models.Stage, error) {
	if err := validate(stats); err != nil {
		return models.StageSeedling, err
	}

	if stats.TimesPracticed < t.cfg.MinAttempts {
		return models.StageSeedling, nil
	}

	ratio := stats.Ratio()
	switch {
	case ratio >= t.cfg.MasteredRatio && stats.BestAccuracy != nil && *stats.BestAccuracy >= t.cfg.MasteredBestAccuracy:
		return models.StageMastered, nil
	case ratio >= t.cfg.BloomingRatio:
		return models.StageBlooming, nil
	case ratio >= t.cfg.GrowingRatio:
		return models.StageGrowing, nil
	default:
		return models.StageSeedling, nil
	}
}

// Reclassify recomputes the stage after an attempt. The returned stage
// never regresses below prev; justAdvanced is true when the word moved
// up, which callers use to trigger celebratory feedback.
func (t *Tracker) Reclassify(prev models.Stage, stats Stats) (models.Stage, bool, error) {
	next, err := t.Classify(stats)
	if err != nil {
		return prev, false, err
	}

	if prev.Valid() && next.Order() < prev.Order() {
		return prev, false, nil
	}
	return next, prev.Valid() && next.Order() > prev.Order(), nil
}

// Level maps stats to the five-level scheme (0 = unclassified). Like
// Classify, it returns the lowest level until MinAttempts is reached.
func (t *Tracker) Level(stats Stats) (int, error) {
	if err := validate(stats); err != nil {
		return 0, err
	}

	if stats.TimesPracticed < t.cfg.MinAttempts {
		return 0, nil
	}

	ratio := stats.Ratio()
	for _, band := range levelBands {
		if ratio >= band.ratio {
			return band.level, nil
		}
	}
	return 0, nil
}

func validate(stats Stats) error {
	if stats.TimesPracticed < 0 || stats.TimesCorrect < 0 {
		return fmt.Errorf("mastery: negative counters (practiced=%d, correct=%d)", stats.TimesPracticed, stats.TimesCorrect)
	}
	if stats.TimesCorrect > stats.TimesPracticed {
		return fmt.Errorf("mastery: times_correct %d exceeds times_practiced %d", stats.TimesCorrect, stats.TimesPracticed)
	}
	if stats.BestAccuracy != nil && (*stats.BestAccuracy < 0 || *stats.BestAccuracy > 100) {
		return fmt.Errorf("mastery: best_accuracy %v out of range", *stats.BestAccuracy)
	}
	return nil
}
