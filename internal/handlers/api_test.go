package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/notify"
	"github.com/squadup/app/internal/session"
	"github.com/squadup/app/internal/sideeffect"
	"github.com/squadup/app/internal/ws"
)

type testServer struct {
	server  *httptest.Server
	effects *sideeffect.Dispatcher
}

// setupTestServer wires the full API over an in-memory database, the way
// the server binary does.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	log := zap.NewNop().Sugar()
	hub := ws.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	chat := database.NewChatStore(db)
	effects := sideeffect.NewDispatcher(log)

	coordinator := &session.Coordinator{
		Sessions:          database.NewSessionStore(db),
		RSVPs:             database.NewRSVPStore(db),
		Checkins:          database.NewCheckinStore(db),
		Identity:          CtxIdentity{},
		Notifier:          notify.NewChatNotifier(chat, hub),
		Progress:          &session.StoredProgress{Store: database.NewProgressStore(db)},
		Haptics:           session.LogHaptics{Log: log},
		Effects:           effects,
		Cache:             session.NewCache(),
		Log:               log,
		AutoConfirmOnRSVP: true,
	}

	api := &API{
		Users:        database.NewUserStore(db),
		AuthSessions: database.NewAuthSessionStore(db),
		Squads:       database.NewSquadStore(db),
		Sessions:     database.NewSessionStore(db),
		RSVPs:        database.NewRSVPStore(db),
		Checkins:     database.NewCheckinStore(db),
		Templates:    database.NewTemplateStore(db),
		Chat:         chat,
		Coordinator:  coordinator,
		Hub:          hub,
		Log:          log,
	}

	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return &testServer{server: srv, effects: effects}
}

// newClient returns an HTTP client with its own cookie jar, i.e. one
// signed-in identity.
func (ts *testServer) newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func (ts *testServer) postJSON(t *testing.T, client *http.Client, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := client.Post(ts.server.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (ts *testServer) register(t *testing.T, client *http.Client, email, name string) int64 {
	t.Helper()
	resp := ts.postJSON(t, client, "/register", map[string]string{
		"email":        email,
		"display_name": name,
		"password":     "password123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want 201", email, resp.StatusCode)
	}
	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return user.ID
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	ts := setupTestServer(t)

	alice := ts.newClient(t)
	bob := ts.newClient(t)
	ts.register(t, alice, "alice@example.com", "Alice")
	ts.register(t, bob, "bob@example.com", "Bob")

	// Alice creates a squad; Bob joins.
	var squad struct {
		ID int64 `json:"ID"`
	}
	resp := ts.postJSON(t, alice, "/squads", map[string]string{"name": "Raiders"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create squad: status = %d, want 201", resp.StatusCode)
	}
	decodeBody(t, resp, &squad)

	resp = ts.postJSON(t, bob, fmt.Sprintf("/squads/%d/join", squad.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join squad: status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// Alice proposes a session with a 2-present auto-confirm threshold.
	var created struct {
		ID int64 `json:"ID"`
	}
	resp = ts.postJSON(t, alice, fmt.Sprintf("/squads/%d/sessions", squad.ID), map[string]any{
		"title":                  "Friday Raid",
		"game":                   "Destiny",
		"scheduled_at":           time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"auto_confirm_threshold": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status = %d, want 201", resp.StatusCode)
	}
	decodeBody(t, resp, &created)

	// Both RSVP present; the second crossing the threshold confirms.
	for _, client := range []*http.Client{alice, bob} {
		resp = ts.postJSON(t, client, fmt.Sprintf("/sessions/%d/rsvp", created.ID), map[string]string{"response": "present"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("rsvp: status = %d, want 200", resp.StatusCode)
		}
		resp.Body.Close()
	}
	ts.effects.Wait()

	var detail struct {
		Session struct {
			Status string `json:"Status"`
		} `json:"session"`
		Attendance struct {
			Counts struct {
				Present int `json:"present"`
			} `json:"counts"`
			Mine string `json:"mine"`
		} `json:"attendance"`
	}
	getResp, err := bob.Get(ts.server.URL + fmt.Sprintf("/sessions/%d", created.ID))
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	decodeBody(t, getResp, &detail)

	if detail.Session.Status != "confirmed" {
		t.Errorf("session status = %q, want confirmed after threshold", detail.Session.Status)
	}
	if detail.Attendance.Counts.Present != 2 {
		t.Errorf("present count = %d, want 2", detail.Attendance.Counts.Present)
	}
	if detail.Attendance.Mine != "present" {
		t.Errorf("mine = %q, want present for Bob", detail.Attendance.Mine)
	}

	// The confirmation landed in squad chat as a system message.
	chatResp, err := alice.Get(ts.server.URL + fmt.Sprintf("/squads/%d/chat", squad.ID))
	if err != nil {
		t.Fatalf("get chat: %v", err)
	}
	var feed struct {
		Messages []struct {
			UserID  int64  `json:"UserID"`
			Content string `json:"Content"`
		} `json:"messages"`
	}
	decodeBody(t, chatResp, &feed)
	confirmations := 0
	for _, m := range feed.Messages {
		if m.UserID == 0 && bytes.Contains([]byte(m.Content), []byte("confirmed")) {
			confirmations++
		}
	}
	if confirmations != 1 {
		t.Errorf("confirmation chat messages = %d, want exactly 1", confirmations)
	}
}

func TestRSVPRequiresAuthentication(t *testing.T) {
	ts := setupTestServer(t)

	anon := ts.newClient(t)
	resp := ts.postJSON(t, anon, "/sessions/1/rsvp", map[string]string{"response": "present"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("anonymous rsvp: status = %d, want 401", resp.StatusCode)
	}
}

func TestConfirmRequiresLeader(t *testing.T) {
	ts := setupTestServer(t)

	alice := ts.newClient(t)
	mallory := ts.newClient(t)
	ts.register(t, alice, "alice@example.com", "Alice")
	ts.register(t, mallory, "mallory@example.com", "Mallory")

	var squad struct {
		ID int64 `json:"ID"`
	}
	resp := ts.postJSON(t, alice, "/squads", map[string]string{"name": "Leaders Only"})
	decodeBody(t, resp, &squad)

	resp = ts.postJSON(t, mallory, fmt.Sprintf("/squads/%d/join", squad.ID), nil)
	resp.Body.Close()

	var created struct {
		ID int64 `json:"ID"`
	}
	resp = ts.postJSON(t, alice, fmt.Sprintf("/squads/%d/sessions", squad.ID), map[string]any{
		"title":        "Gatekept Session",
		"scheduled_at": time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	})
	decodeBody(t, resp, &created)

	resp = ts.postJSON(t, mallory, fmt.Sprintf("/sessions/%d/confirm", created.ID), nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-leader confirm: status = %d, want 403", resp.StatusCode)
	}
	ts.effects.Wait()
}

func TestLoginLogout(t *testing.T) {
	ts := setupTestServer(t)

	client := ts.newClient(t)
	ts.register(t, client, "cycle@example.com", "Cycle")

	resp := ts.postJSON(t, client, "/logout", nil)
	resp.Body.Close()

	// After logout the cookie is gone; creating a squad is rejected.
	resp = ts.postJSON(t, client, "/squads", map[string]string{"name": "Nope"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("post-logout create squad: status = %d, want 401", resp.StatusCode)
	}

	fresh := ts.newClient(t)
	loginResp := ts.postJSON(t, fresh, "/login", map[string]string{
		"email":    "cycle@example.com",
		"password": "password123",
	})
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Errorf("login: status = %d, want 200", loginResp.StatusCode)
	}

	badResp := ts.postJSON(t, ts.newClient(t), "/login", map[string]string{
		"email":    "cycle@example.com",
		"password": "wrong",
	})
	defer badResp.Body.Close()
	if badResp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad login: status = %d, want 401", badResp.StatusCode)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	ts := setupTestServer(t)

	client := ts.newClient(t)
	ts.register(t, client, "tmpl@example.com", "Tmpl")

	var squad struct {
		ID int64 `json:"ID"`
	}
	resp := ts.postJSON(t, client, "/squads", map[string]string{"name": "Schedulers"})
	decodeBody(t, resp, &squad)

	// Empty weekday set is rejected before anything is written.
	resp = ts.postJSON(t, client, fmt.Sprintf("/squads/%d/templates", squad.ID), map[string]any{
		"title": "Broken",
		"hour":  21,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty weekdays: status = %d, want 400", resp.StatusCode)
	}

	valid := ts.postJSON(t, client, fmt.Sprintf("/squads/%d/templates", squad.ID), map[string]any{
		"title":    "Weekly Raid",
		"weekdays": []int{0, 4},
		"hour":     21,
	})
	defer valid.Body.Close()
	if valid.StatusCode != http.StatusCreated {
		t.Errorf("valid template: status = %d, want 201", valid.StatusCode)
	}
}
