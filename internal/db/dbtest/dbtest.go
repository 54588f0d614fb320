// Package dbtest builds throwaway SQLite datasets matching the declared
// schema for tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"surfup-server/internal/config"
	"surfup-server/internal/db"

	_ "github.com/mattn/go-sqlite3"
)

type Measurement struct {
	Station string
	Date    string
	Prcp    *float64
	Tobs    *float64
}

func F(v float64) *float64 { return &v }

// Row is shorthand for a measurement with both values present.
func Row(station, date string, prcp, tobs float64) Measurement {
	return Measurement{Station: station, Date: date, Prcp: F(prcp), Tobs: F(tobs)}
}

// Create writes a dataset file into a temp dir and returns its path. Rows are
// inserted in slice order, so slice order is the natural row order.
func Create(t *testing.T, stations []string, measurements []Measurement) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			t.Fatalf("close fixture db: %v", err)
		}
	}()

	for _, table := range db.Schema {
		if _, err := conn.Exec(table.CreateStatement()); err != nil {
			t.Fatalf("create %s: %v", table.Name, err)
		}
	}

	tx, err := conn.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, s := range stations {
		if _, err := tx.Exec(`INSERT INTO station (station, name) VALUES (?, ?)`, s, s+" station"); err != nil {
			t.Fatalf("insert station %s: %v", s, err)
		}
	}
	for _, m := range measurements {
		if _, err := tx.Exec(
			`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
			m.Station, m.Date, m.Prcp, m.Tobs,
		); err != nil {
			t.Fatalf("insert measurement %s/%s: %v", m.Station, m.Date, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	return path
}

// Open creates a dataset and opens it the way the server does.
func Open(t *testing.T, stations []string, measurements []Measurement) *sql.DB {
	t.Helper()

	path := Create(t, stations, measurements)
	conn, err := db.Open(context.Background(), config.Config{
		SQLitePath:         path,
		SQLiteMaxOpenConns: 2,
		SQLiteMaxIdleConns: 2,
	})
	if err != nil {
		t.Fatalf("db.Open(%s): %v", path, err)
	}
	t.Cleanup(func() {
		if err := db.Close(conn); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	return conn
}
