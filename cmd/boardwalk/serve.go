package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boardwalk-dev/boardwalk/db"
	"github.com/boardwalk-dev/boardwalk/internal/auth"
	"github.com/boardwalk-dev/boardwalk/internal/config"
	"github.com/boardwalk-dev/boardwalk/internal/handlers"
	"github.com/boardwalk-dev/boardwalk/internal/locker"
	"github.com/boardwalk-dev/boardwalk/internal/router"
	"github.com/boardwalk-dev/boardwalk/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := db.Migrate(a.db); err != nil {
		return err
	}

	l, closeLocker, err := newLocker(a.cfg)
	if err != nil {
		return err
	}
	defer closeLocker()

	issuer, err := auth.NewIssuer(a.cfg.JWTSecret, a.cfg.JWTExpiresIn)
	if err != nil {
		return err
	}

	st := store.New(a.db, l)
	r := router.NewRouter(router.Deps{
		Store:          st,
		Issuer:         issuer,
		Hub:            handlers.NewHub(st.Boards, a.cfg.AllowedOrigins),
		Logger:         a.logger,
		AllowedOrigins: a.cfg.AllowedOrigins,
		BcryptCost:     a.cfg.BcryptCost,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server starting", zap.String("port", a.cfg.Port), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// newLocker uses Redis when REDIS_URL is set so several instances share
// container locks, and an in-process lock otherwise.
func newLocker(cfg *config.Config) (locker.Locker, func(), error) {
	if cfg.RedisURL == "" {
		zap.L().Info("using in-process locks")
		return locker.NewLocal(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	zap.L().Info("using redis locks", zap.Duration("ttl", cfg.LockTTL))
	return locker.NewRedis(client, "boardwalk:", cfg.LockTTL), func() { _ = client.Close() }, nil
}
