package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/trost/climaX/internal/climate/service"
	"github.com/trost/climaX/internal/climate/types"
)

type fakeReporter struct {
	reports map[int64]service.Report
	errs    map[int64]error
	calls   []service.Params
}

func (f *fakeReporter) ClimateReport(ctx context.Context, p service.Params) (service.Report, error) {
	f.calls = append(f.calls, p)
	if err := f.errs[p.CultureID]; err != nil {
		return service.Report{}, err
	}
	return f.reports[p.CultureID], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func foundReport(cultureID int64) service.Report {
	return service.Report{
		CultureID: cultureID,
		Found:     true,
		Period: types.TrialPeriod{
			Planted:    time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC),
			Terminated: time.Date(2012, 7, 20, 0, 0, 0, 0, time.UTC),
		},
		HeatSum: 17.5,
	}
}

func TestRun(t *testing.T) {
	combined := foundReport(56878)
	combined.Drought.Combined = service.StressDayCount{Before: 3, After: 3}

	split := foundReport(44443)
	split.Drought.PerTreatment = true
	split.Drought.Control = service.StressDayCount{Before: 1, After: 0}
	split.Drought.Stress = service.StressDayCount{Before: 4, After: 2}

	reporter := &fakeReporter{reports: map[int64]service.Report{
		56878: combined,
		44443: split,
	}}

	in := strings.NewReader("56878\t2012-07-18\t42\t0.14\n44443\t2011-06-01\t27\t0.09\n")
	var out strings.Builder
	if err := Run(context.Background(), discardLogger(), reporter, in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(reporter.calls) != 2 {
		t.Fatalf("got %d reporter calls, want 2", len(reporter.calls))
	}
	if got := reporter.calls[0]; got.CultureID != 56878 || got.SoilVolume != 42.0 || got.AvailMoistCap != 0.14 {
		t.Errorf("first call params = %+v", got)
	}
	if !reporter.calls[0].FloweringDate.Equal(time.Date(2012, 7, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first call flowering = %v", reporter.calls[0].FloweringDate)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d output lines, want header plus 2 rows:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "culture_id\tplanted\tterminated") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	// Combined drought counts leave the per-treatment columns as NA and
	// vice versa.
	if !strings.Contains(lines[1], "\t3\t3\tNA\tNA\tNA\tNA\t") {
		t.Errorf("combined row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "\tNA\tNA\t1\t0\t4\t2\t") {
		t.Errorf("split row = %q", lines[2])
	}
	if !strings.Contains(lines[1], "17.50") {
		t.Errorf("heat sum missing from row %q", lines[1])
	}
}

func TestRun_SkipsFailingLines(t *testing.T) {
	reporter := &fakeReporter{
		reports: map[int64]service.Report{56878: func() service.Report {
			r := foundReport(56878)
			return r
		}()},
		errs: map[int64]error{99999: errors.New("boom")},
	}

	// A broken flowering date, a failing report and an unknown culture are
	// each skipped; the good line still comes through.
	in := strings.NewReader(strings.Join([]string{
		"11111\tnot-a-date\t10\t0.1",
		"99999\t2012-07-18\t10\t0.1",
		"22222\t2012-07-18\t10\t0.1",
		"56878\t2012-07-18\t42\t0.14",
	}, "\n") + "\n")
	var out strings.Builder
	if err := Run(context.Background(), discardLogger(), reporter, in, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d output lines, want header plus 1 row:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "56878\t") {
		t.Errorf("surviving row = %q", lines[1])
	}
}
