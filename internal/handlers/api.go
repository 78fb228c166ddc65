// Package handlers exposes the engine over a JSON HTTP API.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/session"
	"github.com/squadup/app/internal/ws"
)

// API bundles the stores and services the handlers need.
type API struct {
	Users        *database.UserStore
	AuthSessions *database.AuthSessionStore
	Squads       *database.SquadStore
	Sessions     *database.SessionStore
	RSVPs        *database.RSVPStore
	Checkins     *database.CheckinStore
	Templates    *database.TemplateStore
	Chat         *database.ChatStore

	Coordinator *session.Coordinator
	Hub         *ws.Hub
	Log         *zap.SugaredLogger
}

// Router wires every route. All routes pass through WithUser so handlers
// and the coordinator resolve the actor from the request context.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(a.WithUser)

	r.HandleFunc("/register", a.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", a.Login).Methods(http.MethodPost)
	r.HandleFunc("/logout", a.Logout).Methods(http.MethodPost)

	r.HandleFunc("/squads", a.RequireUser(a.CreateSquad)).Methods(http.MethodPost)
	r.HandleFunc("/squads/{id:[0-9]+}", a.GetSquad).Methods(http.MethodGet)
	r.HandleFunc("/squads/{id:[0-9]+}/join", a.RequireUser(a.JoinSquad)).Methods(http.MethodPost)
	r.HandleFunc("/squads/{id:[0-9]+}/leave", a.RequireUser(a.LeaveSquad)).Methods(http.MethodPost)
	r.HandleFunc("/squads/{id:[0-9]+}/chat", a.GetChat).Methods(http.MethodGet)
	r.HandleFunc("/squads/{id:[0-9]+}/chat", a.RequireUser(a.PostChat)).Methods(http.MethodPost)

	r.HandleFunc("/squads/{id:[0-9]+}/sessions", a.ListSessions).Methods(http.MethodGet)
	r.HandleFunc("/squads/{id:[0-9]+}/sessions", a.RequireUser(a.CreateSession)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id:[0-9]+}", a.GetSession).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id:[0-9]+}/rsvp", a.RequireUser(a.SubmitRSVP)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id:[0-9]+}/checkin", a.RequireUser(a.SubmitCheckin)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id:[0-9]+}/confirm", a.RequireUser(a.ConfirmSession)).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id:[0-9]+}/cancel", a.RequireUser(a.CancelSession)).Methods(http.MethodPost)

	r.HandleFunc("/squads/{id:[0-9]+}/templates", a.RequireUser(a.CreateTemplate)).Methods(http.MethodPost)
	r.HandleFunc("/templates/{id:[0-9]+}/activate", a.RequireUser(a.ActivateTemplate)).Methods(http.MethodPost)
	r.HandleFunc("/templates/{id:[0-9]+}/deactivate", a.RequireUser(a.DeactivateTemplate)).Methods(http.MethodPost)

	r.HandleFunc("/ws", a.RequireUser(a.ServeWS)).Methods(http.MethodGet)

	return r
}

func pathID(r *http.Request) int64 {
	// Route patterns constrain {id} to digits, so the parse cannot fail.
	id, _ := parseInt64(mux.Vars(r)["id"])
	return id
}
