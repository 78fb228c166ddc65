package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/squadup/app/internal/apperr"
	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/models"
	"github.com/squadup/app/internal/session"
)

const (
	sessionCookieName = "session_token"
	sessionTTL        = 30 * 24 * time.Hour
)

type contextKey string

// userContextKey carries the authenticated *models.User set by
// AuthMiddleware.
const userContextKey contextKey = "current_user"

// CurrentUser pulls the authenticated user out of the request context.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// CtxIdentity adapts the request context into the coordinator's Identity
// collaborator.
type CtxIdentity struct{}

func (CtxIdentity) CurrentActor(ctx context.Context) (*session.Actor, error) {
	user := CurrentUser(ctx)
	if user == nil {
		return nil, apperr.ErrUnauthenticated
	}
	return &session.Actor{ID: user.ID, DisplayName: user.DisplayName}, nil
}

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Register creates an account and signs the new member in.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if req.DisplayName == "" {
		req.DisplayName = req.Email
	}

	if _, err := a.Users.GetByEmail(req.Email); err == nil {
		respondWithError(w, http.StatusConflict, "email already registered")
		return
	} else if !errors.Is(err, apperr.ErrNotFound) {
		respondWithAppError(w, err)
		return
	}

	user, err := a.Users.Create(req.Email, req.DisplayName, req.Password)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if err := a.issueSession(w, user.ID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName})
}

// Login verifies credentials and issues a session cookie.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, err)
		return
	}

	user, err := a.Users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondWithAppError(w, err)
		return
	}
	if err := database.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		respondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := a.issueSession(w, user.ID); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName})
}

// Logout deletes the session behind the cookie, if any.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := a.AuthSessions.Delete(cookie.Value); err != nil {
			a.Log.Warnw("delete auth session", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (a *API) issueSession(w http.ResponseWriter, userID int64) error {
	token, err := a.AuthSessions.Create(userID, sessionTTL)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// WithUser resolves the session cookie into a user on the request context.
// Requests without a valid cookie pass through anonymous; RequireUser is
// the gate for endpoints that need an actor.
func (a *API) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := a.AuthSessions.Resolve(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := a.Users.GetByID(userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous requests.
func (a *API) RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if CurrentUser(r.Context()) == nil {
			respondWithError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next(w, r)
	}
}
