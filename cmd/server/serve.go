package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"worldchat/config"
	"worldchat/internal/auth"
	"worldchat/internal/database"
	"worldchat/internal/logger"
	"worldchat/internal/presence"
	"worldchat/internal/repository"
	"worldchat/internal/router"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and the presence gateway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger.Init(cfg.Log))
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer database.Close(db)
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	sessions := repository.NewSessionRepository(db)
	resolver := auth.Chain{
		auth.NewSessionResolver(cfg.Session.CookieName, sessions, log),
		auth.NewTokenResolver(func(s string) (*auth.Claims, error) {
			return auth.ParseAccessToken(&cfg.JWT, s)
		}),
	}
	gw := presence.NewGateway(resolver, presence.OptionsFromConfig(cfg), log)

	engine, err := router.Setup(ctx, cfg, db, log, resolver, gw)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}
	apiSrv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	// No timeouts on the gateway server: its connections are long-lived and keepalive is
	// enforced by ping/pong.
	wsSrv := &http.Server{
		Addr:              ":" + cfg.WebSocket.Port,
		Handler:           gw,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("api server listening", "addr", apiSrv.Addr, "env", cfg.Server.Env)
		return listen(apiSrv)
	})
	g.Go(func() error {
		log.Info("presence gateway listening", "addr", wsSrv.Addr, "origin", cfg.Server.BaseURL)
		return listen(wsSrv)
	})
	g.Go(func() error {
		purgeSessions(gctx, sessions, cfg.Session.PurgeInterval, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(
			gw.Shutdown(sctx),
			wsSrv.Shutdown(sctx),
			apiSrv.Shutdown(sctx),
		)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return nil
}

// purgeSessions deletes expired sessions every interval until ctx is done.
func purgeSessions(ctx context.Context, sessions *repository.SessionRepository, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			n, err := sessions.DeleteExpired(ctx, now)
			if err != nil {
				log.Warn("purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				log.Debug("purged expired sessions", "count", n)
			}
		}
	}
}
