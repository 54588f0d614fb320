package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

type Column struct {
	Name string
	Type string
}

// Table is the statically declared shape of one dataset table.
type Table struct {
	Name    string
	Columns []Column
}

var MeasurementTable = Table{
	Name: "measurement",
	Columns: []Column{
		{Name: "id", Type: "INTEGER PRIMARY KEY"},
		{Name: "station", Type: "TEXT"},
		{Name: "date", Type: "TEXT"},
		{Name: "prcp", Type: "FLOAT"},
		{Name: "tobs", Type: "FLOAT"},
	},
}

var StationTable = Table{
	Name: "station",
	Columns: []Column{
		{Name: "id", Type: "INTEGER PRIMARY KEY"},
		{Name: "station", Type: "TEXT"},
		{Name: "name", Type: "TEXT"},
		{Name: "latitude", Type: "FLOAT"},
		{Name: "longitude", Type: "FLOAT"},
		{Name: "elevation", Type: "FLOAT"},
	},
}

// Schema lists every table the API reads.
var Schema = []Table{MeasurementTable, StationTable}

// CreateStatement renders the table as DDL. The server never runs it; fixtures do.
func (t Table) CreateStatement() string {
	defs := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		defs = append(defs, c.Name+" "+c.Type)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}

// VerifySchema checks that every declared table and column exists in the
// dataset. Extra columns in the file are ignored.
func VerifySchema(ctx context.Context, db *sql.DB, tables []Table) error {
	for _, t := range tables {
		have, err := tableColumns(ctx, db, t.Name)
		if err != nil {
			return fmt.Errorf("inspect table %s: %w", t.Name, err)
		}
		if len(have) == 0 {
			return fmt.Errorf("schema: table %q not found", t.Name)
		}
		var missing []string
		for _, c := range t.Columns {
			if !have[strings.ToLower(c.Name)] {
				missing = append(missing, c.Name)
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("schema: table %q missing columns %s", t.Name, strings.Join(missing, ", "))
		}
		slog.Debug("schema verified", "table", t.Name, "columns", len(have))
	}
	return nil
}

func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close table_info rows", "table", table, "error", err)
		}
	}()
	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out[strings.ToLower(name)] = true
	}
	return out, rows.Err()
}
