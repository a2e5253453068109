package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"wordgarden/internal/models"
	"wordgarden/internal/repository"
	"wordgarden/internal/service"
)

// PracticeHandler handles practice API HTTP requests
type PracticeHandler struct {
	practiceService *service.PracticeService
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

// AddItem creates a practice item for a child
// POST /api/children/{childID}/items
func (h *PracticeHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	childID, err := parseChildID(r.PathValue("childID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid child ID", "", err)
		return
	}

	var req struct {
		Text string `json:"text"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	item, err := h.practiceService.AddItem(childID, req.Text, models.ItemType(req.Type))
	if errors.Is(err, service.ErrInvalidItem) {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}
	if err != nil {
		h.respondServiceError(w, err, "Error creating practice item")
		return
	}

	respondWithJSON(w, http.StatusCreated, toItemResponse(*item))
}

// ListItems returns every practice item for a child
// GET /api/children/{childID}/items
func (h *PracticeHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	childID, err := parseChildID(r.PathValue("childID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid child ID", "", err)
		return
	}

	items, err := h.practiceService.ListItems(childID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list items", "Error listing items", err)
		return
	}

	respondWithJSON(w, http.StatusOK, toItemResponses(items))
}

// StartSession opens a practice session for a child
// POST /api/children/{childID}/sessions
func (h *PracticeHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	childID, err := parseChildID(r.PathValue("childID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid child ID", "", err)
		return
	}

	session, items, err := h.practiceService.StartSession(childID)
	if errors.Is(err, service.ErrNoItems) {
		respondWithError(w, http.StatusConflict, "No items available to practice", "", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to start session", "Error starting session", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sessionResponse{
		Token:      session.Token,
		ChildID:    session.ChildID,
		StartedAt:  session.StartedAt,
		TotalItems: session.TotalItems,
		Items:      toItemResponses(items),
	})
}

// SubmitAttempt grades a spoken transcript for one session item
// POST /api/sessions/{token}/attempts
func (h *PracticeHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	var req struct {
		ItemID     int64  `json:"item_id"`
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	result, err := h.practiceService.SubmitAttempt(token, req.ItemID, req.Transcript)
	if err != nil {
		h.respondServiceError(w, err, "Error submitting attempt")
		return
	}

	respondWithJSON(w, http.StatusOK, attemptResponse{
		IsCorrect:     result.IsCorrect,
		MatchRule:     result.MatchRule,
		EditDistance:  result.EditDistance,
		Stage:         string(result.Stage),
		StageAdvanced: result.StageAdvanced,
	})
}

// CompleteSession closes a session and returns the computed reward
// POST /api/sessions/{token}/complete
func (h *PracticeHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	result, err := h.practiceService.CompleteSession(token)
	if err != nil {
		h.respondServiceError(w, err, "Error completing session")
		return
	}

	respondWithJSON(w, http.StatusOK, toCompleteResponse(result))
}

// Companion returns the child's companion view
// GET /api/children/{childID}/companion
func (h *PracticeHandler) Companion(w http.ResponseWriter, r *http.Request) {
	childID, err := parseChildID(r.PathValue("childID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid child ID", "", err)
		return
	}

	view, err := h.practiceService.Companion(childID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load companion", "Error loading companion", err)
		return
	}

	respondWithJSON(w, http.StatusOK, toCompanionResponse(view))
}

// Struggling returns the items a child keeps getting wrong
// GET /api/children/{childID}/struggling
func (h *PracticeHandler) Struggling(w http.ResponseWriter, r *http.Request) {
	childID, err := parseChildID(r.PathValue("childID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid child ID", "", err)
		return
	}

	items, err := h.practiceService.Struggling(childID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load struggling items", "Error loading struggling items", err)
		return
	}

	respondWithJSON(w, http.StatusOK, toItemResponses(items))
}

// respondServiceError maps service errors onto HTTP status codes.
func (h *PracticeHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found", "", nil)
	case errors.Is(err, service.ErrSessionCompleted):
		respondWithError(w, http.StatusConflict, "Session is already completed", "", nil)
	case errors.Is(err, service.ErrItemNotOwned):
		respondWithError(w, http.StatusForbidden, "Item does not belong to this session", "", nil)
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error", logMsg, err)
	}
}

// parseChildID parses a child ID from a path value
func parseChildID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
