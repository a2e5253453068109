package service

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"wordgarden/internal/engine/mastery"
	"wordgarden/internal/engine/match"
	"wordgarden/internal/engine/reward"
	"wordgarden/internal/engine/selection"
	"wordgarden/internal/models"
)

// In-memory stores so service logic can be tested without a database.

type fakeItemStore struct {
	nextID int64
	items  map[int64]models.PracticeItem
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: make(map[int64]models.PracticeItem)}
}

func (f *fakeItemStore) Create(item *models.PracticeItem) error {
	f.nextID++
	item.ID = f.nextID
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItemStore) GetByID(itemID int64) (*models.PracticeItem, error) {
	item, ok := f.items[itemID]
	if !ok {
		return nil, errors.New("item not found")
	}
	copy := item
	return &copy, nil
}

func (f *fakeItemStore) GetPool(childID int64) ([]models.PracticeItem, error) {
	var pool []models.PracticeItem
	for id := int64(1); id <= f.nextID; id++ {
		if item, ok := f.items[id]; ok && item.ChildID == childID {
			pool = append(pool, item)
		}
	}
	return pool, nil
}

func (f *fakeItemStore) UpdateProgress(item *models.PracticeItem) error {
	if _, ok := f.items[item.ID]; !ok {
		return errors.New("item not found")
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeItemStore) GetStruggling(childID int64, maxRatio float64, minAttempts int) ([]models.PracticeItem, error) {
	var out []models.PracticeItem
	for id := int64(1); id <= f.nextID; id++ {
		item, ok := f.items[id]
		if !ok || item.ChildID != childID || item.TimesPracticed < minAttempts {
			continue
		}
		if item.AccuracyRatio() < maxRatio {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeSessionStore struct {
	nextID   int64
	sessions map[string]models.PracticeSession
	attempts []models.ItemAttempt
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]models.PracticeSession)}
}

func (f *fakeSessionStore) Create(session *models.PracticeSession) error {
	f.nextID++
	session.ID = f.nextID
	f.sessions[session.Token] = *session
	return nil
}

func (f *fakeSessionStore) GetByToken(token string) (*models.PracticeSession, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, errors.New("session not found")
	}
	copy := session
	return &copy, nil
}

func (f *fakeSessionStore) RecordAttempt(attempt *models.ItemAttempt) error {
	attempt.ID = int64(len(f.attempts) + 1)
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeSessionStore) GetAttempts(sessionID int64) ([]models.ItemAttempt, error) {
	var out []models.ItemAttempt
	for _, attempt := range f.attempts {
		if attempt.SessionID == sessionID {
			out = append(out, attempt)
		}
	}
	return out, nil
}

func (f *fakeSessionStore) Complete(session *models.PracticeSession) error {
	if _, ok := f.sessions[session.Token]; !ok {
		return errors.New("session not found")
	}
	f.sessions[session.Token] = *session
	return nil
}

type fakeCompanionStore struct {
	states map[int64]models.CompanionState
}

func newFakeCompanionStore() *fakeCompanionStore {
	return &fakeCompanionStore{states: make(map[int64]models.CompanionState)}
}

func (f *fakeCompanionStore) Get(childID int64) (*models.CompanionState, error) {
	state, ok := f.states[childID]
	if !ok {
		return nil, nil
	}
	copy := state
	return &copy, nil
}

func (f *fakeCompanionStore) Upsert(state *models.CompanionState) error {
	f.states[state.ChildID] = *state
	return nil
}

type testEnv struct {
	svc        *PracticeService
	items      *fakeItemStore
	sessions   *fakeSessionStore
	companions *fakeCompanionStore
}

func newTestEnv(t *testing.T, sessionSize int) *testEnv {
	t.Helper()
	items := newFakeItemStore()
	sessions := newFakeSessionStore()
	companions := newFakeCompanionStore()

	svc := NewPracticeService(
		items,
		sessions,
		companions,
		match.New(match.DefaultConfig()),
		mastery.New(mastery.DefaultConfig()),
		selection.New(selection.DefaultConfig(), rand.New(rand.NewSource(1))),
		reward.New(reward.DefaultConfig()),
		sessionSize,
	)
	return &testEnv{svc: svc, items: items, sessions: sessions, companions: companions}
}

func (e *testEnv) addItem(t *testing.T, childID int64, text string, itemType models.ItemType) *models.PracticeItem {
	t.Helper()
	item, err := e.svc.AddItem(childID, text, itemType)
	if err != nil {
		t.Fatalf("AddItem(%q) error: %v", text, err)
	}
	return item
}

func TestAddItemValidation(t *testing.T) {
	env := newTestEnv(t, 10)

	if _, err := env.svc.AddItem(1, "   ", models.ItemTypeWord); !errors.Is(err, ErrInvalidItem) {
		t.Errorf("blank text error = %v, want ErrInvalidItem", err)
	}
	if _, err := env.svc.AddItem(1, "cat", "picture"); !errors.Is(err, ErrInvalidItem) {
		t.Errorf("unknown type error = %v, want ErrInvalidItem", err)
	}

	item := env.addItem(t, 1, "  cat  ", "")
	if item.Text != "cat" {
		t.Errorf("text = %q, want trimmed %q", item.Text, "cat")
	}
	if item.Type != models.ItemTypeWord {
		t.Errorf("type = %q, want default %q", item.Type, models.ItemTypeWord)
	}
	if item.CurrentStage != models.StageSeedling {
		t.Errorf("stage = %q, want %q", item.CurrentStage, models.StageSeedling)
	}
}

func TestStartSession(t *testing.T) {
	env := newTestEnv(t, 3)
	for _, w := range []string{"cat", "dog", "bird", "fish", "frog"} {
		env.addItem(t, 1, w, models.ItemTypeWord)
	}

	session, selected, err := env.svc.StartSession(1)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}
	if session.Token == "" {
		t.Error("session token is empty")
	}
	if len(selected) != 3 {
		t.Errorf("selected %d items, want 3", len(selected))
	}
	if session.TotalItems != len(selected) {
		t.Errorf("TotalItems = %d, want %d", session.TotalItems, len(selected))
	}

	seen := make(map[int64]bool)
	for _, item := range selected {
		if seen[item.ID] {
			t.Errorf("item %d selected twice", item.ID)
		}
		seen[item.ID] = true
	}
}

func TestStartSessionNoItems(t *testing.T) {
	env := newTestEnv(t, 10)
	if _, _, err := env.svc.StartSession(42); !errors.Is(err, ErrNoItems) {
		t.Errorf("error = %v, want ErrNoItems", err)
	}
}

func TestSubmitAttemptUpdatesProgress(t *testing.T) {
	env := newTestEnv(t, 10)
	item := env.addItem(t, 1, "cat", models.ItemTypeWord)
	session, _, err := env.svc.StartSession(1)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	result, err := env.svc.SubmitAttempt(session.Token, item.ID, "cat")
	if err != nil {
		t.Fatalf("SubmitAttempt() error: %v", err)
	}
	if !result.IsCorrect {
		t.Error("exact transcript graded incorrect")
	}
	if result.MatchRule != match.RuleExact {
		t.Errorf("rule = %q, want %q", result.MatchRule, match.RuleExact)
	}

	stored, err := env.items.GetByID(item.ID)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if stored.TimesPracticed != 1 || stored.TimesCorrect != 1 {
		t.Errorf("counters = %d/%d, want 1/1", stored.TimesCorrect, stored.TimesPracticed)
	}
	if stored.LastPracticedAt == nil {
		t.Error("LastPracticedAt not set")
	}
	if stored.BestAccuracy != nil {
		t.Error("BestAccuracy set before the minimum attempt count")
	}
	if len(env.sessions.attempts) != 1 {
		t.Fatalf("recorded %d attempts, want 1", len(env.sessions.attempts))
	}
}

func TestSubmitAttemptStageAdvance(t *testing.T) {
	env := newTestEnv(t, 10)
	item := env.addItem(t, 1, "cat", models.ItemTypeWord)
	session, _, err := env.svc.StartSession(1)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	var last *AttemptResult
	for i := 0; i < 3; i++ {
		last, err = env.svc.SubmitAttempt(session.Token, item.ID, "cat")
		if err != nil {
			t.Fatalf("SubmitAttempt() #%d error: %v", i+1, err)
		}
	}

	// Three straight correct attempts give a 1.0 ratio and a 100% best
	// accuracy, which is enough for mastered.
	if last.Stage != models.StageMastered {
		t.Errorf("stage = %q, want %q", last.Stage, models.StageMastered)
	}
	if !last.StageAdvanced {
		t.Error("StageAdvanced = false, want true")
	}

	stored, _ := env.items.GetByID(item.ID)
	if stored.BestAccuracy == nil || *stored.BestAccuracy != 100 {
		t.Errorf("BestAccuracy = %v, want 100", stored.BestAccuracy)
	}
}

func TestSubmitAttemptSentence(t *testing.T) {
	env := newTestEnv(t, 10)
	item := env.addItem(t, 1, "the red cat", models.ItemTypeSentence)
	session, _, err := env.svc.StartSession(1)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	result, err := env.svc.SubmitAttempt(session.Token, item.ID, "the red cat")
	if err != nil {
		t.Fatalf("SubmitAttempt() error: %v", err)
	}
	if !result.IsCorrect {
		t.Error("full sentence transcript graded incorrect")
	}

	result, err = env.svc.SubmitAttempt(session.Token, item.ID, "the red dog")
	if err != nil {
		t.Fatalf("SubmitAttempt() error: %v", err)
	}
	if result.IsCorrect {
		t.Error("sentence with a missing word graded correct")
	}
}

func TestSubmitAttemptItemNotOwned(t *testing.T) {
	env := newTestEnv(t, 10)
	env.addItem(t, 1, "cat", models.ItemTypeWord)
	other := env.addItem(t, 2, "dog", models.ItemTypeWord)
	session, _, err := env.svc.StartSession(1)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	if _, err := env.svc.SubmitAttempt(session.Token, other.ID, "dog"); !errors.Is(err, ErrItemNotOwned) {
		t.Errorf("error = %v, want ErrItemNotOwned", err)
	}
}

func TestCompleteSessionFirstPractice(t *testing.T) {
	env := newTestEnv(t, 2)
	now := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	env.svc.now = func() time.Time { return now }

	a := env.addItem(t, 1, "cat", models.ItemTypeWord)
	b := env.addItem(t, 1, "dog", models.ItemTypeWord)

	session, _, err := env.svc.StartSession(1)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}
	for _, item := range []*models.PracticeItem{a, b} {
		if _, err := env.svc.SubmitAttempt(session.Token, item.ID, item.Text); err != nil {
			t.Fatalf("SubmitAttempt() error: %v", err)
		}
	}

	result, err := env.svc.CompleteSession(session.Token)
	if err != nil {
		t.Fatalf("CompleteSession() error: %v", err)
	}

	if !result.Outcome.FullSetCompleted {
		t.Error("FullSetCompleted = false, want true")
	}
	if result.Outcome.ItemsAttempted != 2 || result.Outcome.ItemsCorrect != 2 {
		t.Errorf("outcome = %d/%d, want 2/2", result.Outcome.ItemsCorrect, result.Outcome.ItemsAttempted)
	}

	// Base 2×10, perfect-accuracy tier 50, completion 25. First session
	// starts a streak of 1, which has no milestone.
	if result.Reward.TotalXP != 95 {
		t.Errorf("TotalXP = %d, want 95", result.Reward.TotalXP)
	}
	if result.Reward.StreakDays != 1 {
		t.Errorf("StreakDays = %d, want 1", result.Reward.StreakDays)
	}
	if result.Reward.Happiness != 85 {
		t.Errorf("Happiness = %d, want 85", result.Reward.Happiness)
	}

	state, _ := env.companions.Get(1)
	if state == nil {
		t.Fatal("companion state not persisted")
	}
	if state.StreakDays != 1 || state.Happiness != 85 {
		t.Errorf("persisted companion = streak %d happiness %d, want 1/85", state.StreakDays, state.Happiness)
	}
	if state.LastPracticedAt == nil || !state.LastPracticedAt.Equal(now) {
		t.Errorf("LastPracticedAt = %v, want %v", state.LastPracticedAt, now)
	}

	if _, err := env.svc.CompleteSession(session.Token); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("second complete error = %v, want ErrSessionCompleted", err)
	}
	if _, err := env.svc.SubmitAttempt(session.Token, a.ID, "cat"); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("attempt after complete error = %v, want ErrSessionCompleted", err)
	}
}

func TestCompleteSessionRetryCountsLastAttempt(t *testing.T) {
	env := newTestEnv(t, 1)
	item := env.addItem(t, 1, "elephant", models.ItemTypeWord)
	session, _, err := env.svc.StartSession(1)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	if _, err := env.svc.SubmitAttempt(session.Token, item.ID, "zebra"); err != nil {
		t.Fatalf("SubmitAttempt() error: %v", err)
	}
	if _, err := env.svc.SubmitAttempt(session.Token, item.ID, "elephant"); err != nil {
		t.Fatalf("SubmitAttempt() error: %v", err)
	}

	result, err := env.svc.CompleteSession(session.Token)
	if err != nil {
		t.Fatalf("CompleteSession() error: %v", err)
	}
	if result.Outcome.ItemsAttempted != 1 {
		t.Errorf("ItemsAttempted = %d, want 1", result.Outcome.ItemsAttempted)
	}
	if result.Outcome.ItemsCorrect != 1 {
		t.Errorf("ItemsCorrect = %d, want 1 (last attempt was correct)", result.Outcome.ItemsCorrect)
	}
}

func TestCompanionDefaultView(t *testing.T) {
	env := newTestEnv(t, 10)

	view, err := env.svc.Companion(99)
	if err != nil {
		t.Fatalf("Companion() error: %v", err)
	}
	if view.Happiness != 70 {
		t.Errorf("Happiness = %d, want 70", view.Happiness)
	}
	if view.StreakDays != 0 {
		t.Errorf("StreakDays = %d, want 0", view.StreakDays)
	}
	if view.Mood != models.MoodHappy {
		t.Errorf("Mood = %q, want %q", view.Mood, models.MoodHappy)
	}
}

func TestStruggling(t *testing.T) {
	env := newTestEnv(t, 10)
	weak := env.addItem(t, 1, "through", models.ItemTypeWord)
	strong := env.addItem(t, 1, "cat", models.ItemTypeWord)

	weak.TimesPracticed = 5
	weak.TimesCorrect = 1
	if err := env.items.UpdateProgress(weak); err != nil {
		t.Fatal(err)
	}
	strong.TimesPracticed = 5
	strong.TimesCorrect = 5
	if err := env.items.UpdateProgress(strong); err != nil {
		t.Fatal(err)
	}

	items, err := env.svc.Struggling(1)
	if err != nil {
		t.Fatalf("Struggling() error: %v", err)
	}
	if len(items) != 1 || items[0].ID != weak.ID {
		t.Errorf("struggling = %v, want only item %d", items, weak.ID)
	}
}
