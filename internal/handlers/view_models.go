package handlers

import (
	"time"

	"wordgarden/internal/engine/reward"
	"wordgarden/internal/models"
	"wordgarden/internal/service"
)

// JSON shapes returned by the API. Kept separate from the domain models
// so the wire format can stay stable while the models evolve.

type itemResponse struct {
	ID              int64      `json:"id"`
	ChildID         int64      `json:"child_id"`
	Text            string     `json:"text"`
	Type            string     `json:"type"`
	TimesPracticed  int        `json:"times_practiced"`
	TimesCorrect    int        `json:"times_correct"`
	BestAccuracy    *float64   `json:"best_accuracy,omitempty"`
	LastPracticedAt *time.Time `json:"last_practiced_at,omitempty"`
	Stage           string     `json:"stage"`
}

func toItemResponse(item models.PracticeItem) itemResponse {
	return itemResponse{
		ID:              item.ID,
		ChildID:         item.ChildID,
		Text:            item.Text,
		Type:            string(item.Type),
		TimesPracticed:  item.TimesPracticed,
		TimesCorrect:    item.TimesCorrect,
		BestAccuracy:    item.BestAccuracy,
		LastPracticedAt: item.LastPracticedAt,
		Stage:           string(item.CurrentStage),
	}
}

func toItemResponses(items []models.PracticeItem) []itemResponse {
	out := make([]itemResponse, len(items))
	for i, item := range items {
		out[i] = toItemResponse(item)
	}
	return out
}

type sessionResponse struct {
	Token      string         `json:"token"`
	ChildID    int64          `json:"child_id"`
	StartedAt  time.Time      `json:"started_at"`
	TotalItems int            `json:"total_items"`
	Items      []itemResponse `json:"items"`
}

type attemptResponse struct {
	IsCorrect     bool   `json:"is_correct"`
	MatchRule     string `json:"match_rule"`
	EditDistance  int    `json:"edit_distance"`
	Stage         string `json:"stage"`
	StageAdvanced bool   `json:"stage_advanced"`
}

type bonusResponse struct {
	Reason string `json:"reason"`
	Amount int    `json:"amount"`
}

type rewardResponse struct {
	BaseXP     int             `json:"base_xp"`
	TotalXP    int             `json:"total_xp"`
	Bonuses    []bonusResponse `json:"bonuses"`
	StreakDays int             `json:"streak_days"`
	Happiness  int             `json:"happiness"`
	Mood       string          `json:"mood"`
}

type completeResponse struct {
	Token              string         `json:"token"`
	ItemsAttempted     int            `json:"items_attempted"`
	ItemsCorrect       int            `json:"items_correct"`
	WordsPracticed     int            `json:"words_practiced"`
	SentencesPracticed int            `json:"sentences_practiced"`
	DurationSeconds    int            `json:"duration_seconds"`
	FullSetCompleted   bool           `json:"full_set_completed"`
	Reward             rewardResponse `json:"reward"`
}

func toCompleteResponse(result *service.SessionResult) completeResponse {
	return completeResponse{
		Token:              result.Session.Token,
		ItemsAttempted:     result.Outcome.ItemsAttempted,
		ItemsCorrect:       result.Outcome.ItemsCorrect,
		WordsPracticed:     result.Outcome.WordsPracticed,
		SentencesPracticed: result.Outcome.SentencesPracticed,
		DurationSeconds:    int(result.Outcome.Duration.Seconds()),
		FullSetCompleted:   result.Outcome.FullSetCompleted,
		Reward:             toRewardResponse(result.Reward),
	}
}

func toRewardResponse(result reward.Result) rewardResponse {
	bonuses := make([]bonusResponse, len(result.Bonuses))
	for i, b := range result.Bonuses {
		bonuses[i] = bonusResponse{Reason: b.Reason, Amount: b.Amount}
	}
	return rewardResponse{
		BaseXP:     result.BaseXP,
		TotalXP:    result.TotalXP,
		Bonuses:    bonuses,
		StreakDays: result.StreakDays,
		Happiness:  result.Happiness,
		Mood:       string(result.Mood),
	}
}

type companionResponse struct {
	Happiness             int    `json:"happiness"`
	StreakDays            int    `json:"streak_days"`
	DaysSinceLastPractice int    `json:"days_since_last_practice"`
	Mood                  string `json:"mood"`
}

func toCompanionResponse(view models.CompanionView) companionResponse {
	return companionResponse{
		Happiness:             view.Happiness,
		StreakDays:            view.StreakDays,
		DaysSinceLastPractice: view.DaysSinceLastPractice,
		Mood:                  string(view.Mood),
	}
}
