package handlers

import (
	"net/http"
	"strconv"

	"github.com/squadup/app/internal/ws"
)

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

type createSquadRequest struct {
	Name string `json:"name"`
}

// CreateSquad creates a squad owned by the actor.
func (a *API) CreateSquad(w http.ResponseWriter, r *http.Request) {
	var req createSquadRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "name is required")
		return
	}

	squad, err := a.Squads.Create(req.Name, CurrentUser(r.Context()).ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, squad)
}

// GetSquad returns a squad with its member list.
func (a *API) GetSquad(w http.ResponseWriter, r *http.Request) {
	squadID := pathID(r)
	squad, err := a.Squads.GetByID(squadID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	members, err := a.Squads.Members(squadID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"squad":   squad,
		"members": members,
	})
}

// JoinSquad enrolls the actor in the squad.
func (a *API) JoinSquad(w http.ResponseWriter, r *http.Request) {
	squadID := pathID(r)
	if _, err := a.Squads.GetByID(squadID); err != nil {
		respondWithAppError(w, err)
		return
	}
	if err := a.Squads.AddMember(squadID, CurrentUser(r.Context()).ID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "joined"})
}

// LeaveSquad drops the actor from the squad.
func (a *API) LeaveSquad(w http.ResponseWriter, r *http.Request) {
	squadID := pathID(r)
	if err := a.Squads.RemoveMember(squadID, CurrentUser(r.Context()).ID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// GetChat returns the squad's chat feed.
func (a *API) GetChat(w http.ResponseWriter, r *http.Request) {
	messages, err := a.Chat.ListForSquad(pathID(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

type postChatRequest struct {
	Content string `json:"content"`
}

// PostChat appends a member message to the squad chat and pushes it to
// connected clients.
func (a *API) PostChat(w http.ResponseWriter, r *http.Request) {
	var req postChatRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	if req.Content == "" {
		respondWithError(w, http.StatusBadRequest, "content is required")
		return
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

	msg, err := a.Chat.Create(squadID, user.ID, req.Content)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	a.Hub.Broadcast(ws.Event{
		Type:        "chat",
		SquadID:     squadID,
		UserID:      msg.UserID,
		DisplayName: msg.DisplayName,
		Content:     msg.Content,
		SentAt:      msg.CreatedAt,
	})
	respondWithJSON(w, http.StatusCreated, msg)
}

// ServeWS upgrades to a websocket scoped to one squad.
func (a *API) ServeWS(w http.ResponseWriter, r *http.Request) {
	squadID, err := parseInt64(r.URL.Query().Get("squad_id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "squad_id query parameter is required")
		return
	}
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
	if err := a.Hub.Serve(w, r, squadID, user.ID); err != nil {
		a.Log.Warnw("websocket upgrade failed", "error", err)
	}
}
