package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"log/slog"

	"surfup-server/internal/modules/climate/types"
)

//go:embed sql/max-date.sql
var maxDateSQL string

//go:embed sql/measurements-between.sql
var measurementsBetweenSQL string

//go:embed sql/station-measurements-since.sql
var stationMeasurementsSinceSQL string

//go:embed sql/station-ids.sql
var stationIDsSQL string

//go:embed sql/most-active-station.sql
var mostActiveStationSQL string

//go:embed sql/temperature-stats.sql
var temperatureStatsSQL string

// ErrNotFound is returned when a lookup needs at least one measurement and the table is empty.
var ErrNotFound = errors.New("not found")

type ClimateRepository interface {
	MaxDate(ctx context.Context) (string, error)
	MeasurementsBetween(ctx context.Context, r types.DateRange) ([]types.Measurement, error)
	StationMeasurementsSince(ctx context.Context, stationID string, from string) ([]types.Measurement, error)
	StationIDs(ctx context.Context) ([]string, error)
	MostActiveStation(ctx context.Context) (string, error)
	TemperatureStats(ctx context.Context, r types.DateRange) (types.TemperatureStats, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) MaxDate(ctx context.Context) (string, error) {
	var latest sql.NullString
	if err := r.db.QueryRowContext(ctx, maxDateSQL).Scan(&latest); err != nil {
		return "", err
	}
	if !latest.Valid {
		return "", ErrNotFound
	}
	return latest.String, nil
}

func (r *repositoryImpl) MeasurementsBetween(ctx context.Context, dr types.DateRange) ([]types.Measurement, error) {
	rows, err := r.db.QueryContext(ctx, measurementsBetweenSQL, dr.From, upperBound(dr))
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "measurements")
	return scanMeasurements(rows)
}

func (r *repositoryImpl) StationMeasurementsSince(ctx context.Context, stationID string, from string) ([]types.Measurement, error) {
	rows, err := r.db.QueryContext(ctx, stationMeasurementsSinceSQL, stationID, from)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "station measurements")
	return scanMeasurements(rows)
}

func (r *repositoryImpl) StationIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, stationIDsSQL)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows, "stations")
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// MostActiveStation picks the station with the most measurement rows. Equal
// counts resolve to the lowest station id.
func (r *repositoryImpl) MostActiveStation(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, mostActiveStationSQL).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return id, err
}

func (r *repositoryImpl) TemperatureStats(ctx context.Context, dr types.DateRange) (types.TemperatureStats, error) {
	var lo, mean, hi sql.NullFloat64
	err := r.db.QueryRowContext(ctx, temperatureStatsSQL, dr.From, upperBound(dr)).Scan(&lo, &mean, &hi)
	if err != nil {
		return types.TemperatureStats{}, err
	}
	return types.TemperatureStats{
		Min: nullable(lo),
		Avg: nullable(mean),
		Max: nullable(hi),
	}, nil
}

// upperBound maps an open range to NULL so the query skips the date <= check.
func upperBound(dr types.DateRange) any {
	if dr.To == "" {
		return nil
	}
	return dr.To
}

func scanMeasurements(rows *sql.Rows) ([]types.Measurement, error) {
	out := []types.Measurement{}
	for rows.Next() {
		var (
			m          types.Measurement
			prcp, tobs sql.NullFloat64
		)
		if err := rows.Scan(&m.StationID, &m.Date, &prcp, &tobs); err != nil {
			return nil, err
		}
		m.Precipitation = nullable(prcp)
		m.Temperature = nullable(tobs)
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		slog.Error("close "+what+" rows", "error", err)
	}
}
