package main

import (
	"log/slog"
	"net/http"
	"os"

	"claimdesk/internal/auth"
	"claimdesk/internal/config"
	"claimdesk/internal/events"
	"claimdesk/internal/handler"
	"claimdesk/internal/lifecycle"
	"claimdesk/internal/router"
	"claimdesk/internal/service"
	"claimdesk/internal/storage/sqlite"
	"claimdesk/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	// Transition notifications: log every accepted status change. External
	// notifiers (toasts, email) subscribe the same way.
	bus := events.NewBus()
	defer bus.Close()
	bus.On(func(t events.Transition) {
		slog.Info("Claim transitioned",
			"claim_id", t.ClaimID, "from", t.From, "to", t.To)
	})

	engine := lifecycle.NewEngine(store, bus)
	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry)
	authenticator := auth.NewPasswordAuthenticator(store)

	claimSvc := service.NewClaimService(store, engine)
	authSvc := service.NewAuthService(store, authenticator, jwtManager)
	projectSvc := service.NewProjectService(store)

	r := router.Setup(cfg, store, jwtManager, router.Handlers{
		Auth:   handler.NewAuthHandler(authSvc),
		Claims: handler.NewClaimHandler(claimSvc),
		Admin:  handler.NewAdminHandler(authSvc, projectSvc),
	})

	slog.Info("Server starting", "address", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, r); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
