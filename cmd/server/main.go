package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/squadup/app/internal/config"
	"github.com/squadup/app/internal/database"
	"github.com/squadup/app/internal/handlers"
	"github.com/squadup/app/internal/logger"
	"github.com/squadup/app/internal/notify"
	"github.com/squadup/app/internal/schedule"
	"github.com/squadup/app/internal/session"
	"github.com/squadup/app/internal/sideeffect"
	"github.com/squadup/app/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New("server", cfg.Env)
	defer log.Sync()

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalw("initialize database", "path", cfg.DatabasePath, "error", err)
	}
	defer db.Close()

	users := database.NewUserStore(db)
	authSessions := database.NewAuthSessionStore(db)
	squads := database.NewSquadStore(db)
	sessions := database.NewSessionStore(db)
	rsvps := database.NewRSVPStore(db)
	checkins := database.NewCheckinStore(db)
	templates := database.NewTemplateStore(db)
	chat := database.NewChatStore(db)
	progress := database.NewProgressStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	effects := sideeffect.NewDispatcher(log)
	notifier := notify.NewChatNotifier(chat, hub)

	coordinator := &session.Coordinator{
		Sessions:          sessions,
		RSVPs:             rsvps,
		Checkins:          checkins,
		Identity:          handlers.CtxIdentity{},
		Notifier:          notifier,
		Progress:          &session.StoredProgress{Store: progress},
		Haptics:           session.LogHaptics{Log: log},
		Effects:           effects,
		Cache:             session.NewCache(),
		Log:               log,
		AutoConfirmOnRSVP: cfg.AutoConfirmOnRSVP,
	}

	materializer := &schedule.Materializer{
		Templates: templates,
		Sessions:  sessions,
		Announcer: notifier,
		Effects:   effects,
		Log:       log,
		Interval:  cfg.MaterializeInterval,
	}
	go materializer.Run(ctx)

	api := &handlers.API{
		Users:        users,
		AuthSessions: authSessions,
		Squads:       squads,
		Sessions:     sessions,
		RSVPs:        rsvps,
		Checkins:     checkins,
		Templates:    templates,
		Chat:         chat,
		Coordinator:  coordinator,
		Hub:          hub,
		Log:          log,
	}

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.Router(),
	}

	go func() {
		<-ctx.Done()
		log.Infow("shutting down")
		server.Shutdown(context.Background())
		effects.Wait()
	}()

	log.Infow("server starting", "addr", cfg.Addr, "auto_confirm_on_rsvp", cfg.AutoConfirmOnRSVP)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalw("server failed", "error", err)
	}
}
