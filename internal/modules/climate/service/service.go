package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"surfup-server/internal/modules/climate/repository"
	"surfup-server/internal/modules/climate/types"
)

const (
	dateLayout = "2006-01-02"
	// lookbackDays is a flat offset; leap years are not accounted for.
	lookbackDays = 365
)

type Service struct {
	repository repository.ClimateRepository
}

func NewService(repository repository.ClimateRepository) *Service {
	return &Service{repository: repository}
}

// Precipitation maps date to precipitation for the year before the latest
// measurement. Several stations report the same date, and the map keeps the
// value of the last row read for each date.
func (s *Service) Precipitation(ctx context.Context) (map[string]*float64, error) {
	out := map[string]*float64{}
	from, err := s.lastYearStart(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.repository.MeasurementsBetween(ctx, types.DateRange{From: from})
	if err != nil {
		return nil, fmt.Errorf("measurements since %s: %w", from, err)
	}
	for _, m := range rows {
		out[m.Date] = m.Precipitation
	}
	return out, nil
}

func (s *Service) Stations(ctx context.Context) ([]string, error) {
	ids, err := s.repository.StationIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("station ids: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// MostActiveTemperatures returns one {date: temperature} entry per row of the
// most active station over the last year of data. Duplicate dates stay as
// separate entries.
func (s *Service) MostActiveTemperatures(ctx context.Context) ([]map[string]*float64, error) {
	out := []map[string]*float64{}
	station, err := s.repository.MostActiveStation(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("most active station: %w", err)
	}

	from, err := s.lastYearStart(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.repository.StationMeasurementsSince(ctx, station, from)
	if err != nil {
		return nil, fmt.Errorf("measurements for %s since %s: %w", station, from, err)
	}
	for _, m := range rows {
		out = append(out, map[string]*float64{m.Date: m.Temperature})
	}
	return out, nil
}

// TemperatureStats aggregates temperature over dr with the average rounded to
// two decimals. Bounds are passed through unparsed.
func (s *Service) TemperatureStats(ctx context.Context, dr types.DateRange) (types.TemperatureStats, error) {
	stats, err := s.repository.TemperatureStats(ctx, dr)
	if err != nil {
		return types.TemperatureStats{}, fmt.Errorf("temperature stats %s..%s: %w", dr.From, dr.To, err)
	}
	if stats.Avg != nil {
		rounded := round2(*stats.Avg)
		stats.Avg = &rounded
	}
	return stats, nil
}

func (s *Service) lastYearStart(ctx context.Context) (string, error) {
	latest, err := s.repository.MaxDate(ctx)
	if err != nil {
		return "", fmt.Errorf("max date: %w", err)
	}
	return yearBefore(latest)
}

// yearBefore returns the date lookbackDays before date, in the same layout.
func yearBefore(date string) (string, error) {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return "", fmt.Errorf("parse stored date %q: %w", date, err)
	}
	return t.AddDate(0, 0, -lookbackDays).Format(dateLayout), nil
}

// round2 rounds to two decimals from the exact binary value, ties to even.
// 65.125 becomes 65.12 and 2.675, stored just below, becomes 2.67.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}
