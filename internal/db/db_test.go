package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"surfup-server/internal/config"
	"surfup-server/internal/db"
	"surfup-server/internal/db/dbtest"

	_ "github.com/mattn/go-sqlite3"
)

func TestOpen_missingDatasetFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.sqlite")

	conn, err := db.Open(context.Background(), config.Config{SQLitePath: missing})
	if err == nil {
		_ = conn.Close()
		t.Fatal("Open(missing file) = nil error; want error")
	}
	if !strings.Contains(err.Error(), "nope.sqlite") {
		t.Errorf("error %q does not name the dataset", err)
	}
}

func TestOpen_directoryFails(t *testing.T) {
	if _, err := db.Open(context.Background(), config.Config{SQLitePath: t.TempDir()}); err == nil {
		t.Fatal("Open(dir) = nil error; want error")
	}
}

func TestOpen_isReadOnly(t *testing.T) {
	conn := dbtest.Open(t, []string{"USC1"}, []dbtest.Measurement{dbtest.Row("USC1", "2017-01-01", 0.1, 70)})

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM measurement`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count = %d; want 1", n)
	}

	if _, err := conn.Exec(`DELETE FROM measurement`); err == nil {
		t.Fatal("DELETE on read-only store succeeded")
	}
	if _, err := conn.Exec(`CREATE TABLE extra (id INTEGER)`); err == nil {
		t.Fatal("CREATE TABLE on read-only store succeeded")
	}
}

func TestOpen_withQueryLogging(t *testing.T) {
	path := dbtest.Create(t, []string{"USC1"}, nil)

	conn, err := db.Open(context.Background(), config.Config{SQLitePath: path, LogSQL: true, SQLiteMaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = db.Close(conn) }()

	var id string
	if err := conn.QueryRow(`SELECT station FROM station`).Scan(&id); err != nil {
		t.Fatalf("query: %v", err)
	}
	if id != "USC1" {
		t.Errorf("station = %q; want USC1", id)
	}
}

func TestOpen_fileURIPath(t *testing.T) {
	path := dbtest.Create(t, nil, nil)

	conn, err := db.Open(context.Background(), config.Config{SQLitePath: "file:" + path})
	if err != nil {
		t.Fatalf("Open(file: URI): %v", err)
	}
	_ = db.Close(conn)
}

func TestClose_nil(t *testing.T) {
	if err := db.Close(nil); err != nil {
		t.Fatalf("Close(nil) = %v; want nil", err)
	}
}

func TestVerifySchema(t *testing.T) {
	t.Run("declared schema passes", func(t *testing.T) {
		conn := dbtest.Open(t, nil, nil)
		if err := db.VerifySchema(context.Background(), conn, db.Schema); err != nil {
			t.Fatalf("VerifySchema: %v", err)
		}
	})

	t.Run("missing table fails", func(t *testing.T) {
		conn := openScratch(t, `CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, prcp FLOAT, tobs FLOAT)`)
		err := db.VerifySchema(context.Background(), conn, db.Schema)
		if err == nil || !strings.Contains(err.Error(), `"station" not found`) {
			t.Fatalf("VerifySchema = %v; want missing station table", err)
		}
	})

	t.Run("missing column fails", func(t *testing.T) {
		conn := openScratch(t, `CREATE TABLE measurement (id INTEGER PRIMARY KEY, station TEXT, date TEXT, prcp FLOAT)`)
		err := db.VerifySchema(context.Background(), conn, []db.Table{db.MeasurementTable})
		if err == nil || !strings.Contains(err.Error(), "tobs") {
			t.Fatalf("VerifySchema = %v; want missing tobs column", err)
		}
	})

	t.Run("column names are case insensitive", func(t *testing.T) {
		conn := openScratch(t, `CREATE TABLE measurement (ID INTEGER PRIMARY KEY, Station TEXT, DATE TEXT, Prcp FLOAT, TOBS FLOAT, extra TEXT)`)
		if err := db.VerifySchema(context.Background(), conn, []db.Table{db.MeasurementTable}); err != nil {
			t.Fatalf("VerifySchema: %v", err)
		}
	})
}

func TestTableCreateStatement(t *testing.T) {
	got := db.StationTable.CreateStatement()
	want := "CREATE TABLE station (id INTEGER PRIMARY KEY, station TEXT, name TEXT, latitude FLOAT, longitude FLOAT, elevation FLOAT)"
	if got != want {
		t.Errorf("CreateStatement() = %q; want %q", got, want)
	}
}

func openScratch(t *testing.T, ddl string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	if _, err := conn.Exec(ddl); err != nil {
		t.Fatalf("exec ddl: %v", err)
	}
	return conn
}
