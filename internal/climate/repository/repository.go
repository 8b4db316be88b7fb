package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/trost/climaX/internal/climate/types"
	"github.com/trost/climaX/internal/utils"
)

//go:embed sql/trial-period.sql
var trialPeriodSQL string

//go:embed sql/hourly-climate.sql
var hourlyClimateSQL string

//go:embed sql/daily-precipitation.sql
var dailyPrecipitationSQL string

//go:embed sql/irrigation.sql
var irrigationSQL string

//go:embed sql/solar-radiation.sql
var solarRadiationSQL string

//go:embed sql/insert-solar-radiation.sql
var insertSolarRadiationSQL string

// ClimateRepository reads the externally managed trial and measurement
// tables. All reads are one-shot; the only write is the solarCalc loader's
// output table.
type ClimateRepository interface {
	TrialPeriod(ctx context.Context, cultureID int64) (types.TrialPeriod, error)
	HourlyClimate(ctx context.Context, cultureID int64, w types.Window) ([]types.HourlyClimate, error)
	DailyPrecipitation(ctx context.Context, cultureID int64) ([]types.DailyAmount, error)
	Irrigation(ctx context.Context, cultureID int64) ([]types.IrrigationEvent, error)
	SolarRadiation(ctx context.Context, cultureID int64, w types.Window) ([]types.SolarReading, error)
	InsertSolarRadiation(ctx context.Context, locationID int64, readings []types.SolarReading) error
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

// TrialPeriod returns the planted/terminated dates of a culture, or
// types.ErrCultureNotFound when the id does not exist.
func (r *repositoryImpl) TrialPeriod(ctx context.Context, cultureID int64) (types.TrialPeriod, error) {
	var planted, terminated string
	err := r.db.QueryRowContext(ctx, trialPeriodSQL, cultureID).Scan(&planted, &terminated)
	if errors.Is(err, sql.ErrNoRows) {
		return types.TrialPeriod{}, types.ErrCultureNotFound
	}
	if err != nil {
		return types.TrialPeriod{}, fmt.Errorf("trial period for culture %d: %w", cultureID, err)
	}

	var p types.TrialPeriod
	if p.Planted, err = utils.ParseTimestamp(planted); err != nil {
		return types.TrialPeriod{}, fmt.Errorf("culture %d planted: %w", cultureID, err)
	}
	if p.Terminated, err = utils.ParseTimestamp(terminated); err != nil {
		return types.TrialPeriod{}, fmt.Errorf("culture %d terminated: %w", cultureID, err)
	}
	return p, nil
}

// HourlyClimate returns the joined wind/temperature/humidity series for a
// culture inside the given window, ascending by timestamp. The wind series
// drives the join; humidity is aligned through the temperature timestamp, so
// a missing temperature reading also blanks the humidity column.
func (r *repositoryImpl) HourlyClimate(ctx context.Context, cultureID int64, w types.Window) ([]types.HourlyClimate, error) {
	start := utils.FormatTimestamp(w.Start)
	end := utils.FormatTimestamp(w.End)
	rows, err := r.db.QueryContext(ctx, hourlyClimateSQL,
		cultureID, start, end,
		cultureID, start, end,
		cultureID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("hourly climate for culture %d: %w", cultureID, err)
	}
	defer closeRows(rows, "hourly climate")

	var out []types.HourlyClimate
	for rows.Next() {
		var (
			ts                     string
			temperature, windspeed sql.NullFloat64
			relHumidity            sql.NullFloat64
		)
		if err := rows.Scan(&ts, &temperature, &windspeed, &relHumidity); err != nil {
			return nil, err
		}
		rec := types.HourlyClimate{
			Temperature: nullable(temperature),
			Windspeed:   nullable(windspeed),
			RelHumidity: nullable(relHumidity),
		}
		if rec.Time, err = utils.ParseTimestamp(ts); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) DailyPrecipitation(ctx context.Context, cultureID int64) ([]types.DailyAmount, error) {
	rows, err := r.db.QueryContext(ctx, dailyPrecipitationSQL, cultureID)
	if err != nil {
		return nil, fmt.Errorf("precipitation for culture %d: %w", cultureID, err)
	}
	defer closeRows(rows, "precipitation")

	var out []types.DailyAmount
	for rows.Next() {
		var (
			day string
			rec types.DailyAmount
		)
		if err := rows.Scan(&day, &rec.Amount); err != nil {
			return nil, err
		}
		if rec.Day, err = utils.ParseDate(day); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Irrigation(ctx context.Context, cultureID int64) ([]types.IrrigationEvent, error) {
	rows, err := r.db.QueryContext(ctx, irrigationSQL, cultureID)
	if err != nil {
		return nil, fmt.Errorf("irrigation for culture %d: %w", cultureID, err)
	}
	defer closeRows(rows, "irrigation")

	var out []types.IrrigationEvent
	for rows.Next() {
		var (
			day string
			rec types.IrrigationEvent
		)
		if err := rows.Scan(&day, &rec.Amount, &rec.TreatmentID); err != nil {
			return nil, err
		}
		if rec.Day, err = utils.ParseDate(day); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) SolarRadiation(ctx context.Context, cultureID int64, w types.Window) ([]types.SolarReading, error) {
	rows, err := r.db.QueryContext(ctx, solarRadiationSQL,
		cultureID, utils.FormatTimestamp(w.Start), utils.FormatTimestamp(w.End))
	if err != nil {
		return nil, fmt.Errorf("solar radiation for culture %d: %w", cultureID, err)
	}
	defer closeRows(rows, "solar radiation")

	var out []types.SolarReading
	for rows.Next() {
		var (
			ts  string
			rec types.SolarReading
		)
		if err := rows.Scan(&ts, &rec.Amount); err != nil {
			return nil, err
		}
		if rec.Time, err = utils.ParseTimestamp(ts); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// InsertSolarRadiation writes estimated hourly radiation rows for a location
// in one transaction, so a failed load leaves no partial series behind.
func (r *repositoryImpl) InsertSolarRadiation(ctx context.Context, locationID int64, readings []types.SolarReading) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert solar radiation: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, insertSolarRadiationSQL)
	if err != nil {
		return fmt.Errorf("insert solar radiation: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			slog.Error("close insert statement", "error", err)
		}
	}()

	for _, rec := range readings {
		if _, err := stmt.ExecContext(ctx, utils.FormatTimestamp(rec.Time), locationID, rec.Amount); err != nil {
			return fmt.Errorf("insert solar radiation at %s: %w", utils.FormatTimestamp(rec.Time), err)
		}
	}
	return tx.Commit()
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
		slog.Error("close rows", "query", what, "error", err)
	}
}
