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

	"taskapi/internal/auth"
	"taskapi/internal/quotes"
	"taskapi/internal/server"
	"taskapi/internal/storage/sqlite"
	"taskapi/internal/util"
)

func main() {
	addrFlag := flag.String("addr", util.EnvOrDefault("TASKAPI_ADDR", ":8080"), "HTTP listen address")
	dbFlag := flag.String("db", util.EnvOrDefault("TASKAPI_DB_PATH", "data/taskapi.db"), "Path to sqlite database file")
	staticFlag := flag.String("static", util.EnvOrDefault("TASKAPI_STATIC_DIR", "web/dist"), "Directory with built frontend")
	secretFlag := flag.String("jwt-secret", util.EnvOrDefault("TASKAPI_JWT_SECRET", ""), "Secret used to sign tokens")
	accessTTLFlag := flag.Duration("access-ttl", 15*time.Minute, "Access token lifetime")
	refreshTTLFlag := flag.Duration("refresh-ttl", 7*24*time.Hour, "Refresh token lifetime")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *secretFlag == "" {
		logger.Error("TASKAPI_JWT_SECRET is required")
		os.Exit(1)
	}

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	tokens := auth.NewManager(auth.Config{
		Secret:     *secretFlag,
		AccessTTL:  *accessTTLFlag,
		RefreshTTL: *refreshTTLFlag,
		Issuer:     "taskapi",
	})
	quoteClient := quotes.New("", logger)

	srv := server.New(store, tokens, quoteClient, logger, *staticFlag)

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
