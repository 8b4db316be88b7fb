// solarcalc estimates hourly solar radiation for a trial location from daily
// weather data and either prints the series or loads it into the database:
//
//	solarcalc [--write --location <id>] <climate_csv> <latitude> <longitude> <elevation> <year>
//
// The climate CSV has one row per day of year with the columns DOY, MIN,
// MAX and PREC.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gocarina/gocsv"
	"github.com/spf13/pflag"

	"github.com/trost/climaX/internal/climate/repository"
	"github.com/trost/climaX/internal/climate/types"
	"github.com/trost/climaX/internal/config"
	"github.com/trost/climaX/internal/db"
	"github.com/trost/climaX/internal/logging"
	"github.com/trost/climaX/internal/solar"
	"github.com/trost/climaX/internal/utils"
)

const (
	appName = "solarcalc"
	version = "dev"
)

type weatherRow struct {
	DOY  int     `csv:"DOY"`
	Min  float64 `csv:"MIN"`
	Max  float64 `csv:"MAX"`
	Prec float64 `csv:"PREC"`
}

type args struct {
	climatePath string
	site        solar.Site
	year        int
}

func main() {
	flags := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	credentials := flags.String("credentials", "", "path to the database credentials YAML file (default ~/.climax.yaml)")
	write := flags.Bool("write", false, "insert the estimated series into the database instead of printing it")
	location := flags.Int64("location", 0, "location id the series is written for (required with --write)")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <climate_csv> <latitude> <longitude> <elevation> <year>\n", appName)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	a, err := parseArgs(flags.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		flags.Usage()
		os.Exit(2)
	}
	if *write && *location == 0 {
		fmt.Fprintf(os.Stderr, "%s: --write requires --location\n", appName)
		os.Exit(2)
	}

	// Without --write no database is touched, so a missing or incomplete
	// configuration only matters for the logger defaults.
	cfg, cfgErr := config.Load(*credentials)
	if cfgErr != nil && *write {
		fmt.Fprintf(os.Stderr, "config error: %v\n", cfgErr)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, a, *write, *location); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func parseArgs(positional []string) (args, error) {
	if len(positional) != 5 {
		return args{}, fmt.Errorf("expected 5 arguments, got %d", len(positional))
	}

	var (
		a   args
		err error
	)
	a.climatePath = positional[0]
	if a.site.LatitudeDeg, err = strconv.ParseFloat(positional[1], 64); err != nil {
		return args{}, fmt.Errorf("invalid latitude %q", positional[1])
	}
	if a.site.LongitudeDeg, err = strconv.ParseFloat(positional[2], 64); err != nil {
		return args{}, fmt.Errorf("invalid longitude %q", positional[2])
	}
	if a.site.ElevationM, err = strconv.ParseFloat(positional[3], 64); err != nil {
		return args{}, fmt.Errorf("invalid elevation %q", positional[3])
	}
	if a.year, err = strconv.Atoi(positional[4]); err != nil {
		return args{}, fmt.Errorf("invalid year %q", positional[4])
	}
	return a, nil
}

func run(ctx context.Context, cfg config.Config, a args, write bool, locationID int64) error {
	f, err := os.Open(a.climatePath)
	if err != nil {
		return fmt.Errorf("open climate file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var rows []weatherRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return fmt.Errorf("read climate file: %w", err)
	}

	days := make(map[int]solar.DailyWeather, len(rows))
	for _, row := range rows {
		days[row.DOY] = solar.DailyWeather{
			DOY:    row.DOY,
			TMin:   row.Min,
			TMax:   row.Max,
			Precip: row.Prec,
		}
	}

	estimated := solar.EstimateYear(a.site, a.year, days)

	if !write {
		for _, r := range estimated {
			fmt.Printf("%s\t%.3f\n", utils.FormatTimestamp(r.Time), r.Amount)
		}
		return nil
	}

	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	readings := make([]types.SolarReading, len(estimated))
	for i, r := range estimated {
		readings[i] = types.SolarReading{Time: r.Time, Amount: r.Amount}
	}

	repo := repository.NewRepository(conn)
	if err := repo.InsertSolarRadiation(ctx, locationID, readings); err != nil {
		return err
	}
	slog.Info("solar radiation series written",
		"location", locationID, "year", a.year, "rows", len(readings))
	return nil
}
