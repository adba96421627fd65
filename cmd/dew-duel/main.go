package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ericogr/dew-duel/internal/api"
	"github.com/ericogr/dew-duel/internal/constants"
	"github.com/ericogr/dew-duel/internal/logging"
	"github.com/ericogr/dew-duel/internal/render"
	"github.com/ericogr/dew-duel/internal/service"
	"github.com/ericogr/dew-duel/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	defer logging.Sync()

	env := loadEnvOrExit()
	cfg := loadConfigOrExit(env.ConfigPath)
	repo := createRepositoryOrExit(env.DBPath, cfg.Flavors)

	if env.SessionSecret == "" {
		logging.Info("Session secret not set; using a random development secret", logging.Fields{"var": constants.EnvSessionSecret})
	}
	auth, err := api.NewTokenAuthority(env.SessionSecret)
	if err != nil {
		logging.Fatal("Failed to initialize session tokens", err, nil)
	}

	clock := clockwork.NewRealClock()
	stats := service.NewRepositoryStats(repo)
	board := render.NewBoard(clock)
	pairs := api.NewPairRegistry()
	manager := service.NewManager(service.Options{
		Rules:    cfg.Duel,
		Stats:    stats,
		Renderer: board,
		Observer: pairs,
		Clock:    clock,
	})

	sched, err := startScheduler(manager, board, stats, cfg.FinishedRetention, cfg.StatsRefresh)
	if err != nil {
		logging.Fatal("Failed to start scheduler", err, nil)
	}

	router := gin.Default()
	api.RegisterRoutes(router, auth, api.NewDuelHandler(manager, pairs, board), api.NewFlavorHandler(repo, stats, cfg.Duel))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   env.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", constants.HeaderAuthorization},
		AllowCredentials: true,
	}).Handler(router)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: corsHandler}
	go func() {
		logging.Info("Server started", logging.Fields{constants.LogFieldAddr: cfg.ServerAddress, "version": version.Version})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Failed to start server", err, nil)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logging.Info("Shutting down", nil)
	n := manager.AbortAll("server shutting down")
	logging.Info("Live duels aborted", logging.Fields{constants.LogFieldCount: n})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("HTTP shutdown failed", err, nil)
	}
	if err := sched.Shutdown(); err != nil {
		logging.Error("Scheduler shutdown failed", err, nil)
	}
}
