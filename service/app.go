package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"yatube/app/config"
	"yatube/app/mail"
	"yatube/app/routes"

	"go.uber.org/zap"
)

// RunAppServer opens the database, builds the router and serves HTTP until
// ctx is cancelled, then shuts down gracefully.
func RunAppServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	store, err := openStore(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	mailer := mail.NewFileMailer(cfg.Email.FilePath, cfg.Email.From, logger.Named("mail"))
	router, err := routes.SetupRoutes(routes.OptionsFromConfig(cfg, store, mailer, logger))
	if err != nil {
		return fmt.Errorf("failed to setup routes: %w", err)
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}
	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("starting yatube", zap.String("addr", ln.Addr().String()), zap.String("db", cfg.Database.Path))
	return Serve(ctx, srv, ln, cfg.GetShutdownTimeout(), logger)
}

// Serve runs srv on ln until ctx is done and then waits up to timeout for
// in-flight requests.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, timeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", timeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
