package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"surfup-server/internal/config"
	db "surfup-server/internal/db"
	httpapi "surfup-server/internal/httpapi"
	climate "surfup-server/internal/modules/climate"
	climateviews "surfup-server/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

// Run opens the dataset, serves the API until ctx is cancelled and then shuts
// down gracefully. Any failure before the listener is up is returned without
// serving a single request.
func Run(ctx context.Context, cfg config.Config) error {
	ln, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTPAddr, err)
	}
	return Serve(ctx, cfg, ln)
}

// Serve is Run on an existing listener. It owns ln and closes it.
func Serve(ctx context.Context, cfg config.Config, ln net.Listener) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", ln.Addr().String(),
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"logSQL", cfg.LogSQL,
	)

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := db.VerifySchema(ctx, dbConn, db.Schema); err != nil {
		_ = ln.Close()
		return err
	}
	slog.Info("dataset opened", "path", cfg.SQLitePath)

	if err := climateviews.LoadTemplates(); err != nil {
		_ = ln.Close()
		return err
	}

	router := httpapi.NewRouter(dbConn)
	climate.RegisterFeature(router, dbConn)

	srv := httpapi.NewServer(cfg, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
