package handlers

import (
	"net/http"
	"time"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/attendance"
	"github.com/squadup/app/internal/models"
)

type createSessionRequest struct {
	Title                string    `json:"title"`
	Game                 string    `json:"game"`
	ScheduledAt          time.Time `json:"scheduled_at"`
	DurationMinutes      int       `json:"duration_minutes"`
	AutoConfirmThreshold int       `json:"auto_confirm_threshold"`
}

// CreateSession proposes a new session in a squad.
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	if req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.ScheduledAt.IsZero() {
		respondWithError(w, http.StatusBadRequest, "scheduled_at is required")
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

	sess, err := a.Sessions.Create(&models.Session{
		SquadID:              squadID,
		Title:                req.Title,
		Game:                 req.Game,
		ScheduledAt:          req.ScheduledAt,
		DurationMinutes:      req.DurationMinutes,
		Status:               models.SessionStatusProposed,
		AutoConfirmThreshold: req.AutoConfirmThreshold,
		CreatedBy:            user.ID,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, sess)
}

type sessionListItem struct {
	Session    *models.Session    `json:"session"`
	Attendance attendance.Summary `json:"attendance"`
}

// ListSessions returns a squad's sessions with per-session RSVP aggregates
// computed in one batch.
func (a *API) ListSessions(w http.ResponseWriter, r *http.Request) {
	squadID := pathID(r)
	sessions, err := a.Sessions.ListBySquad(squadID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	rsvps, err := a.RSVPs.ListForSessions(ids)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	var actorID int64
	if user := CurrentUser(r.Context()); user != nil {
		actorID = user.ID
	}
	summaries := attendance.SummarizeAll(rsvps, actorID)

	items := make([]sessionListItem, len(sessions))
	for i, s := range sessions {
		items[i] = sessionListItem{Session: s, Attendance: summaries[s.ID]}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"sessions": items})
}

// GetSession returns one session with fresh aggregates.
func (a *API) GetSession(w http.ResponseWriter, r *http.Request) {
	detail, err := a.Coordinator.FetchDetail(r.Context(), pathID(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

type rsvpRequest struct {
	Response string `json:"response"`
}

// SubmitRSVP records the actor's answer through the coordinator.
func (a *API) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var req rsvpRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	sessionID := pathID(r)
	if err := a.Coordinator.SubmitRSVP(r.Context(), sessionID, req.Response); err != nil {
		respondWithAppError(w, err)
		return
	}
	a.respondWithDetail(w, sessionID)
}

type checkinRequest struct {
	Status string `json:"status"`
}

// SubmitCheckin records the actor's outcome through the coordinator.
func (a *API) SubmitCheckin(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	sessionID := pathID(r)
	if err := a.Coordinator.SubmitCheckin(r.Context(), sessionID, req.Status); err != nil {
		respondWithAppError(w, err)
		return
	}
	a.respondWithDetail(w, sessionID)
}

// ConfirmSession applies the explicit leader confirmation. Authorization
// lives here, outside the coordinator: only the squad owner or the session
// creator may confirm.
func (a *API) ConfirmSession(w http.ResponseWriter, r *http.Request) {
	sessionID := pathID(r)
	if err := a.authorizeLeader(r, sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}
	if err := a.Coordinator.Confirm(r.Context(), sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}
	a.respondWithDetail(w, sessionID)
}

// CancelSession cancels a session, same authorization as confirm.
func (a *API) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := pathID(r)
	if err := a.authorizeLeader(r, sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}
	if err := a.Coordinator.Cancel(r.Context(), sessionID); err != nil {
		respondWithAppError(w, err)
		return
	}
	a.respondWithDetail(w, sessionID)
}

func (a *API) authorizeLeader(r *http.Request, sessionID int64) error {
	sess, err := a.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}
	user := CurrentUser(r.Context())
	if user.ID == sess.CreatedBy {
		return nil
	}
	squad, err := a.Squads.GetByID(sess.SquadID)
	if err != nil {
		return err
	}
	if user.ID == squad.OwnerID {
		return nil
	}
	return apperr.ErrForbidden
}

// respondWithDetail serves the cached detail the coordinator refreshed on
// success; a cache miss falls back to the store.
func (a *API) respondWithDetail(w http.ResponseWriter, sessionID int64) {
	if detail, ok := a.Coordinator.Cache.Get(sessionID); ok {
		respondWithJSON(w, http.StatusOK, detail)
		return
	}
	sess, err := a.Sessions.GetByID(sessionID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"session": sess})
}
