// getclimatedata prints the derived climate report for one culture:
//
//	getclimatedata <culture_id> <flowering_date> <soil_volume> <avail_moist_cap>
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

	"github.com/spf13/pflag"

	"github.com/trost/climaX/internal/climate/repository"
	"github.com/trost/climaX/internal/climate/service"
	"github.com/trost/climaX/internal/config"
	"github.com/trost/climaX/internal/db"
	"github.com/trost/climaX/internal/logging"
	"github.com/trost/climaX/internal/utils"
)

const (
	appName = "getclimatedata"
	// Default version is "dev" if not set with -ldflags "-X main.version=..."
	version = "dev"
)

func main() {
	flags := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	credentials := flags.String("credentials", "", "path to the database credentials YAML file (default ~/.climax.yaml)")
	weekly := flags.Bool("weekly", false, "also print the weekly midday VPD and heat sum table")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <culture_id> <flowering_date> <soil_volume> <avail_moist_cap>\n", appName)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	params, err := parseArgs(flags.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		flags.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*credentials)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, params, *weekly); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func parseArgs(args []string) (service.Params, error) {
	if len(args) != 4 {
		return service.Params{}, fmt.Errorf("expected 4 arguments, got %d", len(args))
	}

	var (
		p   service.Params
		err error
	)
	if p.CultureID, err = strconv.ParseInt(args[0], 10, 64); err != nil {
		return service.Params{}, fmt.Errorf("invalid culture_id %q", args[0])
	}
	if p.FloweringDate, err = utils.ParseDate(args[1]); err != nil {
		return service.Params{}, fmt.Errorf("invalid flowering_date %q (want YYYY-MM-DD)", args[1])
	}
	if p.SoilVolume, err = strconv.ParseFloat(args[2], 64); err != nil {
		return service.Params{}, fmt.Errorf("invalid soil_volume %q", args[2])
	}
	if p.AvailMoistCap, err = strconv.ParseFloat(args[3], 64); err != nil {
		return service.Params{}, fmt.Errorf("invalid avail_moist_cap %q", args[3])
	}
	return p, nil
}

func run(ctx context.Context, cfg config.Config, params service.Params, weekly bool) error {
	conn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	queryCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()

	svc := service.New(repository.NewRepository(conn))
	report, err := svc.ClimateReport(queryCtx, params)
	if err != nil {
		return err
	}

	report.Print(os.Stdout)
	if weekly && report.Found {
		fmt.Println()
		report.PrintWeekly(os.Stdout)
	}
	return nil
}
