package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spaces/internal/auth"
	"spaces/internal/models"
	"spaces/internal/reconcile"
	"spaces/internal/reminder"
	"spaces/internal/remote"
	"spaces/internal/server"
	"spaces/internal/storage/sqlite"
	"spaces/internal/util"
)

func main() {
	// A missing .env is fine; plain environment variables work too.
	_ = godotenv.Load()

	addrFlag := flag.String("addr", util.EnvOrDefault("SPACES_ADDR", ":8080"), "HTTP listen address")
	dbFlag := flag.String("db", util.EnvOrDefault("SPACES_DB_PATH", "data/spaces.db"), "Path to the local sqlite cache")
	staticFlag := flag.String("static", util.EnvOrDefault("SPACES_STATIC_DIR", "web/dist"), "Directory with built frontend")
	remoteFlag := flag.String("remote", util.EnvOrDefault("SPACES_REMOTE_URL", ""), "Base URL of the hosted data service")
	feedFlag := flag.String("feed", util.EnvOrDefault("SPACES_FEED_URL", ""), "Websocket URL of the change feed")
	userFlag := flag.String("user", util.EnvOrDefault("SPACES_USER_ID", ""), "User id to sync and watch for this session")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	logger.Info("Spaces task server starting")

	apiKey := os.Getenv("SPACES_API_KEY")
	if *remoteFlag == "" || apiKey == "" {
		logger.Error("SPACES_REMOTE_URL and SPACES_API_KEY must be set")
		os.Exit(1)
	}

	secret := os.Getenv("SPACES_SESSION_SECRET")
	sessions, err := auth.NewManager(secret, 7*24*time.Hour)
	if err != nil {
		logger.Error("unable to set up sessions", slog.String("error", err.Error()))
		os.Exit(1)
	}

	local, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open local store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer local.Close()

	client := remote.NewClient(*remoteFlag, apiKey, logger)
	srv := server.New(client, local, sessions, logger, *staticFlag)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// When a session user is configured, reconcile local edits at startup and
	// keep following the remote change feed and due reminders.
	if *userFlag != "" {
		go runSession(ctx, *userFlag, *feedFlag, apiKey, client, local, logger)
	}

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// runSession performs the session-start sync for the configured user, then
// re-fetches on every change-feed signal and fires due reminders.
func runSession(ctx context.Context, userID, feedURL, apiKey string, client *remote.Client, local *sqlite.Store, logger *slog.Logger) {
	syncer := reconcile.New(client, logger)

	if err := syncOnce(ctx, syncer, client, local, userID); err != nil {
		logger.Error("startup sync failed", slog.String("error", err.Error()))
	}

	go reminder.New(client, func(user string, task models.Task) {
		logger.Info("reminder due", slog.String("user", user), slog.String("task", task.Title))
	}, time.Minute, logger).Run(ctx, userID)

	if feedURL == "" {
		logger.Warn("change feed not configured; remote edits sync on restart only")
		return
	}

	changes, err := remote.NewNotifier(feedURL, apiKey, logger).Subscribe(ctx, userID)
	if err != nil {
		logger.Error("unable to subscribe to change feed", slog.String("error", err.Error()))
		return
	}

	for range changes {
		if err := syncOnce(ctx, syncer, client, local, userID); err != nil {
			logger.Error("change-feed sync failed", slog.String("error", err.Error()))
		}
	}
}

// syncOnce merges local edits into the remote store and mirrors the result
// into the local cache.
func syncOnce(ctx context.Context, syncer *reconcile.Reconciler, client *remote.Client, local *sqlite.Store, userID string) error {
	tasks, err := local.ListTasks(ctx, userID)
	if err != nil {
		return err
	}
	merged, err := syncer.Sync(ctx, userID, tasks)
	if err != nil {
		return err
	}
	return local.ReplaceAll(ctx, userID, merged)
}
