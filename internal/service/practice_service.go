package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wordgarden/internal/engine/mastery"
	"wordgarden/internal/engine/match"
	"wordgarden/internal/engine/reward"
	"wordgarden/internal/engine/selection"
	"wordgarden/internal/models"
)

// Sentinel errors callers can map to HTTP status codes.
var (
	ErrNoItems          = errors.New("child has no practice items")
	ErrSessionCompleted = errors.New("session is already completed")
	ErrItemNotOwned     = errors.New("item does not belong to the session's child")
	ErrInvalidItem      = errors.New("invalid practice item")
)

// Thresholds for the struggling-items report: below 60% accuracy over
// at least 3 attempts.
const (
	strugglingMaxRatio    = 0.6
	strugglingMinAttempts = 3
)

// A brand-new companion starts at this happiness.
const defaultHappiness = 70

// ItemStore is the persistence the service needs for practice items.
type ItemStore interface {
	Create(item *models.PracticeItem) error
	GetByID(itemID int64) (*models.PracticeItem, error)
	GetPool(childID int64) ([]models.PracticeItem, error)
	UpdateProgress(item *models.PracticeItem) error
	GetStruggling(childID int64, maxRatio float64, minAttempts int) ([]models.PracticeItem, error)
}

// SessionStore is the persistence the service needs for sessions.
type SessionStore interface {
	Create(session *models.PracticeSession) error
	GetByToken(token string) (*models.PracticeSession, error)
	RecordAttempt(attempt *models.ItemAttempt) error
	GetAttempts(sessionID int64) ([]models.ItemAttempt, error)
	Complete(session *models.PracticeSession) error
}

// CompanionStore is the persistence the service needs for companions.
type CompanionStore interface {
	Get(childID int64) (*models.CompanionState, error)
	Upsert(state *models.CompanionState) error
}

// PracticeService handles practice session business logic
type PracticeService struct {
	items      ItemStore
	sessions   SessionStore
	companions CompanionStore

	matcher    *match.Matcher
	tracker    *mastery.Tracker
	selector   *selection.Selector
	calculator *reward.Calculator

	sessionSize int

	// selMu serializes use of the selector's shared rand source.
	selMu sync.Mutex

	// itemLocks serializes progress updates per item so two concurrent
	// attempts at the same item cannot lose counter increments.
	mu        sync.Mutex
	itemLocks map[int64]*sync.Mutex

	now func() time.Time
}

// NewPracticeService creates a new practice service
func NewPracticeService(
	items ItemStore,
	sessions SessionStore,
	companions CompanionStore,
	matcher *match.Matcher,
	tracker *mastery.Tracker,
	selector *selection.Selector,
	calculator *reward.Calculator,
	sessionSize int,
) *PracticeService {
	return &PracticeService{
		items:       items,
		sessions:    sessions,
		companions:  companions,
		matcher:     matcher,
		tracker:     tracker,
		selector:    selector,
		calculator:  calculator,
		sessionSize: sessionSize,
		itemLocks:   make(map[int64]*sync.Mutex),
		now:         time.Now,
	}
}

// AttemptResult is what a single submitted attempt produced.
type AttemptResult struct {
	IsCorrect     bool
	MatchRule     string
	EditDistance  int
	Stage         models.Stage
	StageAdvanced bool
}

// SessionResult is the full outcome of completing a session.
type SessionResult struct {
	Session *models.PracticeSession
	Outcome models.SessionOutcome
	Reward  reward.Result
}

// AddItem registers a new word or sentence for a child to practice.
func (s *PracticeService) AddItem(childID int64, text string, itemType models.ItemType) (*models.PracticeItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidItem)
	}
	if itemType == "" {
		itemType = models.ItemTypeWord
	}
	if !itemType.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidItem, itemType)
	}

	item := &models.PracticeItem{
		ChildID: childID,
		Text:    text,
		Type:    itemType,
	}
	if err := s.items.Create(item); err != nil {
		return nil, err
	}
	return item, nil
}

// ListItems returns every practice item for a child.
func (s *PracticeService) ListItems(childID int64) ([]models.PracticeItem, error) {
	return s.items.GetPool(childID)
}

// StartSession selects a practice set from the child's pool and opens a
// session addressed by an opaque token.
func (s *PracticeService) StartSession(childID int64) (*models.PracticeSession, []models.PracticeItem, error) {
	pool, err := s.items.GetPool(childID)
	if err != nil {
		return nil, nil, err
	}
	if len(pool) == 0 {
		return nil, nil, ErrNoItems
	}

	s.selMu.Lock()
	selected, err := s.selector.Select(pool, s.sessionSize)
	s.selMu.Unlock()
	if err != nil {
		return nil, nil, err
	}
	if len(selected) == 0 {
		// Every item is mastered; nothing left to practice.
		return nil, nil, ErrNoItems
	}

	session := &models.PracticeSession{
		Token:      uuid.NewString(),
		ChildID:    childID,
		StartedAt:  s.now(),
		TotalItems: len(selected),
	}
	if err := s.sessions.Create(session); err != nil {
		return nil, nil, err
	}

	return session, selected, nil
}

// SubmitAttempt grades a spoken transcript against a session item,
// updates the item's mastery progress and records the attempt.
func (s *PracticeService) SubmitAttempt(token string, itemID int64, transcript string) (*AttemptResult, error) {
	session, err := s.sessions.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if session.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}

	lock := s.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.items.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item.ChildID != session.ChildID {
		return nil, ErrItemNotOwned
	}

	verdict, err := s.gradeAttempt(item, transcript)
	if err != nil {
		return nil, err
	}

	now := s.now()
	item.TimesPracticed++
	if verdict.IsMatch {
		item.TimesCorrect++
	}
	item.LastPracticedAt = &now

	stats := mastery.Stats{
		TimesPracticed: item.TimesPracticed,
		TimesCorrect:   item.TimesCorrect,
		BestAccuracy:   item.BestAccuracy,
	}

	// Running accuracy only counts as a "best" once enough attempts
	// exist to mean something.
	if item.TimesPracticed >= s.tracker.MinAttempts() {
		accuracy := stats.Ratio() * 100
		if item.BestAccuracy == nil || accuracy > *item.BestAccuracy {
			item.BestAccuracy = &accuracy
			stats.BestAccuracy = &accuracy
		}
	}

	stage, advanced, err := s.tracker.Reclassify(item.CurrentStage, stats)
	if err != nil {
		return nil, err
	}
	item.CurrentStage = stage

	if err := s.items.UpdateProgress(item); err != nil {
		return nil, err
	}

	attempt := &models.ItemAttempt{
		SessionID:    session.ID,
		ItemID:       item.ID,
		Transcript:   transcript,
		IsCorrect:    verdict.IsMatch,
		MatchRule:    verdict.Rule,
		EditDistance: verdict.Distance,
		AttemptedAt:  now,
	}
	if err := s.sessions.RecordAttempt(attempt); err != nil {
		return nil, err
	}

	return &AttemptResult{
		IsCorrect:     verdict.IsMatch,
		MatchRule:     verdict.Rule,
		EditDistance:  verdict.Distance,
		Stage:         stage,
		StageAdvanced: advanced,
	}, nil
}

// gradeAttempt matches a transcript against an item. Single words go
// straight through the matcher; sentences require every word of the
// target to be found in the transcript.
func (s *PracticeService) gradeAttempt(item *models.PracticeItem, transcript string) (match.Verdict, error) {
	if item.Type != models.ItemTypeSentence {
		return s.matcher.Match(transcript, item.Text)
	}

	words := strings.Fields(item.Text)
	if len(words) == 0 {
		return match.Verdict{}, errors.New("sentence item has no words")
	}

	combined := match.Verdict{IsMatch: true, Rule: match.RuleExact}
	for _, word := range words {
		verdict, err := s.matcher.Match(transcript, word)
		if err != nil {
			return match.Verdict{}, err
		}
		if !verdict.IsMatch {
			return match.Verdict{Rule: match.RuleNone}, nil
		}
		if ruleRank(verdict.Rule) > ruleRank(combined.Rule) {
			combined.Rule = verdict.Rule
		}
		combined.Distance += verdict.Distance
	}
	return combined, nil
}

// ruleRank orders match rules from strictest to loosest so a sentence
// verdict reports the loosest rule any of its words needed.
func ruleRank(rule string) int {
	switch rule {
	case match.RuleExact:
		return 0
	case match.RuleToken:
		return 1
	case match.RuleDistance:
		return 2
	case match.RuleTokenDistance:
		return 3
	case match.RulePhonetic:
		return 4
	default:
		return 5
	}
}

// CompleteSession closes a session, computes its reward and updates the
// child's companion.
func (s *PracticeService) CompleteSession(token string) (*SessionResult, error) {
	session, err := s.sessions.GetByToken(token)
	if err != nil {
		return nil, err
	}
	if session.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}

	attempts, err := s.sessions.GetAttempts(session.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	outcome, correctItems, err := s.buildOutcome(session, attempts, now)
	if err != nil {
		return nil, err
	}

	state, err := s.companions.Get(session.ChildID)
	if err != nil {
		return nil, err
	}

	priorStreak := 0
	var lastPractice *time.Time
	storedHappiness := defaultHappiness
	if state != nil {
		priorStreak = state.StreakDays
		lastPractice = state.LastPracticedAt
		storedHappiness = state.Happiness
	}

	result, err := s.calculator.ComputeReward(outcome, priorStreak, lastPractice, storedHappiness, now)
	if err != nil {
		return nil, err
	}

	session.CompletedAt = &now
	session.CorrectItems = correctItems
	session.XPEarned = result.TotalXP
	if err := s.sessions.Complete(session); err != nil {
		return nil, err
	}

	err = s.companions.Upsert(&models.CompanionState{
		ChildID:         session.ChildID,
		Happiness:       result.Happiness,
		StreakDays:      result.StreakDays,
		LastPracticedAt: &now,
	})
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		Session: session,
		Outcome: outcome,
		Reward:  result,
	}, nil
}

// buildOutcome aggregates a session's attempts. An item counts as
// correct when its most recent attempt matched; retries that eventually
// succeed still count.
func (s *PracticeService) buildOutcome(session *models.PracticeSession, attempts []models.ItemAttempt, now time.Time) (models.SessionOutcome, int, error) {
	lastCorrect := make(map[int64]bool)
	for _, attempt := range attempts {
		lastCorrect[attempt.ItemID] = attempt.IsCorrect
	}

	correctItems := 0
	words := 0
	sentences := 0
	for itemID, correct := range lastCorrect {
		if correct {
			correctItems++
		}
		item, err := s.items.GetByID(itemID)
		if err != nil {
			return models.SessionOutcome{}, 0, err
		}
		if item.Type == models.ItemTypeSentence {
			sentences++
		} else {
			words++
		}
	}

	outcome := models.SessionOutcome{
		ItemsAttempted:     len(lastCorrect),
		ItemsCorrect:       correctItems,
		WordsPracticed:     words,
		SentencesPracticed: sentences,
		Duration:           now.Sub(session.StartedAt),
		FullSetCompleted:   session.TotalItems > 0 && len(lastCorrect) == session.TotalItems,
	}
	return outcome, correctItems, nil
}

// Companion returns the read-time view of a child's companion. Children
// who have never practiced get a fresh companion.
func (s *PracticeService) Companion(childID int64) (models.CompanionView, error) {
	state, err := s.companions.Get(childID)
	if err != nil {
		return models.CompanionView{}, err
	}
	if state == nil {
		state = &models.CompanionState{
			ChildID:   childID,
			Happiness: defaultHappiness,
		}
	}
	return s.calculator.CompanionView(*state, s.now()), nil
}

// Struggling returns the items a child keeps getting wrong, worst first.
func (s *PracticeService) Struggling(childID int64) ([]models.PracticeItem, error) {
	return s.items.GetStruggling(childID, strugglingMaxRatio, strugglingMinAttempts)
}

func (s *PracticeService) itemLock(itemID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.itemLocks[itemID]
	if !ok {
		lock = &sync.Mutex{}
		s.itemLocks[itemID] = lock
	}
	return lock
}
