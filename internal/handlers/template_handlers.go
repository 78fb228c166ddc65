package handlers

import (
	"net/http"
	"time"

	"github.com/squadup/app/internal/models"
	"github.com/squadup/app/internal/schedule"
)

type createTemplateRequest struct {
	Title                string `json:"title"`
	Game                 string `json:"game"`
	Weekdays             []int  `json:"weekdays"` // 0 = Monday .. 6 = Sunday
	Hour                 int    `json:"hour"`
	Minute               int    `json:"minute"`
	DurationMinutes      int    `json:"duration_minutes"`
	MinPlayers           int    `json:"min_players"`
	MaxPlayers           int    `json:"max_players"`
	AutoConfirmThreshold int    `json:"auto_confirm_threshold"`
}

// CreateTemplate creates an inactive weekly recurrence template. The rule
// is validated up front; activation computes the first occurrence.
func (a *API) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	if req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := schedule.ValidateRule(req.Weekdays, req.Hour, req.Minute); err != nil {
		respondWithAppError(w, err)
		return
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 120
	}

	squadID := pathID(r)
	user := CurrentUser(r.Context())
	member, err := a.Squads.IsMember(squadID, user.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if !member {
		respondWithError(w, http.StatusForbidden, "not a squad member")
		return
	}

	template, err := a.Templates.Create(&models.SessionTemplate{
		SquadID:              squadID,
		Title:                req.Title,
		Game:                 req.Game,
		Weekdays:             req.Weekdays,
		Hour:                 req.Hour,
		Minute:               req.Minute,
		DurationMinutes:      req.DurationMinutes,
		MinPlayers:           req.MinPlayers,
		MaxPlayers:           req.MaxPlayers,
		AutoConfirmThreshold: req.AutoConfirmThreshold,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, template)
}

// ActivateTemplate turns a template on and computes its next occurrence.
func (a *API) ActivateTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := schedule.Activate(a.Templates, pathID(r), time.Now())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, template)
}

// DeactivateTemplate turns a template off; the cached occurrence is kept
// for display.
func (a *API) DeactivateTemplate(w http.ResponseWriter, r *http.Request) {
	template, err := schedule.Deactivate(a.Templates, pathID(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, template)
}
