package models

import "time"

// Stage is a word's mastery classification. Stages are ordered and a
// word never moves backwards once advanced; a word only returns to an
// earlier stage through an explicit re-practice reset.
type Stage string

const (
	StageSeedling Stage = "seedling"
	StageGrowing  Stage = "growing"
	StageBlooming Stage = "blooming"
	StageMastered Stage = "mastered"
)

var stageOrder = map[Stage]int{
	StageSeedling: 0,
	StageGrowing:  1,
	StageBlooming: 2,
	StageMastered: 3,
}

// Order returns the stage's position in the progression, or -1 for an
// unknown label.
func (s Stage) Order() int {
	order, ok := stageOrder[s]
	if !ok {
		return -1
	}
	return order
}

// Valid reports whether s is one of the four known stages.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// ItemType distinguishes word items from sentence items
type ItemType string

const (
	ItemTypeWord     ItemType = "word"
	ItemTypeSentence ItemType = "sentence"
)

// Valid reports whether it is a known item type.
func (it ItemType) Valid() bool {
	return it == ItemTypeWord || it == ItemTypeSentence
}

// PracticeItem is a word or sentence a child practices. Counters are
// append-only and monotonic; CurrentStage is derived from the counters
// by the mastery tracker and never set independently.
type PracticeItem struct {
	ID              int64
	ChildID         int64
	Text            string
	Type            ItemType
	TimesPracticed  int
	TimesCorrect    int
	BestAccuracy    *float64
	LastPracticedAt *time.Time
	CurrentStage    Stage
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasProgress reports whether the item has been practiced at least once.
func (it *PracticeItem) HasProgress() bool {
	return it.TimesPracticed > 0
}

// AccuracyRatio returns times_correct / times_practiced, or 0 for an
// unpracticed item.
func (it *PracticeItem) AccuracyRatio() float64 {
	if it.TimesPracticed == 0 {
		return 0
	}
	return float64(it.TimesCorrect) / float64(it.TimesPracticed)
}
