package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"surfup-server/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"

// Open opens the dataset read-only and checks it answers a ping. A missing
// dataset file is an error; nothing is created on disk.
func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL {
		db = sql.OpenDB(NewQueryLogger(dsn, slog.Default()))
	} else {
		db, err = sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.SQLiteMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.SQLiteMaxOpenConns)
	}
	if cfg.SQLiteMaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.SQLiteMaxIdleConns)
	}
	if cfg.SQLiteConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.SQLiteConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// readOnlyParams keep every pooled connection from writing:
// - mode=ro: sqlite opens the file read-only and refuses to create it
// - _query_only: rejects any statement that would modify the database
var readOnlyParams = []string{
	"mode=ro",
	"_query_only=true",
	"_busy_timeout=5000",
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.SQLiteDSN != "" {
		return cfg.SQLiteDSN, nil
	}

	path := strings.TrimPrefix(cfg.SQLitePath, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("dataset %s: %w", cfg.SQLitePath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("dataset %s: is a directory", cfg.SQLitePath)
	}

	if strings.HasPrefix(cfg.SQLitePath, "file:") {
		sep := "?"
		if strings.Contains(cfg.SQLitePath, "?") {
			sep = "&"
		}
		return cfg.SQLitePath + sep + strings.Join(readOnlyParams, "&"), nil
	}
	return fmt.Sprintf("file:%s?%s", cfg.SQLitePath, strings.Join(readOnlyParams, "&")), nil
}
