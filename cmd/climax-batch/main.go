// climax-batch runs climate reports for every culture listed in a
// tab-separated parameter file:
//
//	climax-batch [--output results.tsv] <parameter_file>
//
// Each input line holds culture_id, flowering_date, soil_volume and
// avail_moist_cap. The result table goes to stdout unless --output is given.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/trost/climaX/internal/batch"
	"github.com/trost/climaX/internal/climate/repository"
	"github.com/trost/climaX/internal/climate/service"
	"github.com/trost/climaX/internal/config"
	"github.com/trost/climaX/internal/db"
	"github.com/trost/climaX/internal/logging"
)

const (
	appName = "climax-batch"
	version = "dev"
)

func main() {
	flags := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	credentials := flags.String("credentials", "", "path to the database credentials YAML file (default ~/.climax.yaml)")
	output := flags.String("output", "", "write the result table to this file instead of stdout")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <parameter_file>\n", appName)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if flags.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s: expected 1 argument, got %d\n", appName, flags.NArg())
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

	if err := run(ctx, cfg, logger, flags.Arg(0), *output); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open parameter file: %w", err)
	}
	defer func() {
		_ = in.Close()
	}()

	var out io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				slog.Error("close output file", "error", closeErr)
			}
		}()
		out = f
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

	svc := service.New(repository.NewRepository(conn))
	return batch.Run(ctx, logger, svc, in, out)
}
