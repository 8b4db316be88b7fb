// Package batch runs climate reports for many cultures from a tab-separated
// parameter file and writes one result table.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/gocarina/gocsv"

	"github.com/trost/climaX/internal/climate/service"
	"github.com/trost/climaX/internal/utils"
)

// Reporter produces a climate report for one parameter set.
type Reporter interface {
	ClimateReport(ctx context.Context, p service.Params) (service.Report, error)
}

// Parameters is one input line: culture id, flowering date, soil volume and
// available moisture capacity, tab separated, no header.
type Parameters struct {
	CultureID     int64   `csv:"culture_id"`
	FloweringDate string  `csv:"flowering_date"`
	SoilVolume    float64 `csv:"soil_volume"`
	AvailMoistCap float64 `csv:"avail_moist_cap"`
}

// resultRow is one output line. Numeric columns are strings so that values
// which do not apply to a culture can be written as NA.
type resultRow struct {
	CultureID            int64  `csv:"culture_id"`
	Planted              string `csv:"planted"`
	Terminated           string `csv:"terminated"`
	ColdBefore           string `csv:"cold_stress_before"`
	ColdAfter            string `csv:"cold_stress_after"`
	HeatBefore           string `csv:"heat_stress_before"`
	HeatAfter            string `csv:"heat_stress_after"`
	DroughtBefore        string `csv:"drought_before"`
	DroughtAfter         string `csv:"drought_after"`
	ControlDroughtBefore string `csv:"control_drought_before"`
	ControlDroughtAfter  string `csv:"control_drought_after"`
	StressDroughtBefore  string `csv:"stress_drought_before"`
	StressDroughtAfter   string `csv:"stress_drought_after"`
	LightBefore          string `csv:"light_before"`
	LightAfter           string `csv:"light_after"`
	HeatSum              string `csv:"heat_sum"`
}

const notAvailable = "NA"

// Run reads the parameter lines from in, reports every culture and writes
// the result table to out. Lines that fail to report are logged and skipped;
// Run only fails on unreadable input or unwritable output.
func Run(ctx context.Context, log *slog.Logger, reporter Reporter, in io.Reader, out io.Writer) error {
	reader := csv.NewReader(in)
	reader.Comma = '\t'

	var params []Parameters
	if err := gocsv.UnmarshalCSVWithoutHeaders(reader, &params); err != nil {
		return fmt.Errorf("read parameter file: %w", err)
	}

	rows := make([]*resultRow, 0, len(params))
	for _, p := range params {
		flowering, err := utils.ParseDate(p.FloweringDate)
		if err != nil {
			log.Warn("skipping line with bad flowering date",
				"culture", p.CultureID, "flowering_date", p.FloweringDate)
			continue
		}
		report, err := reporter.ClimateReport(ctx, service.Params{
			CultureID:     p.CultureID,
			FloweringDate: flowering,
			SoilVolume:    p.SoilVolume,
			AvailMoistCap: p.AvailMoistCap,
		})
		if err != nil {
			log.Error("climate report failed", "culture", p.CultureID, "error", err)
			continue
		}
		if !report.Found {
			log.Warn("no such culture", "culture", p.CultureID)
			continue
		}
		rows = append(rows, toRow(report))
	}

	writer := csv.NewWriter(out)
	writer.Comma = '\t'
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(writer)); err != nil {
		return fmt.Errorf("write result table: %w", err)
	}
	return nil
}

func toRow(r service.Report) *resultRow {
	row := &resultRow{
		CultureID:            r.CultureID,
		Planted:              utils.FormatDate(r.Period.Planted),
		Terminated:           utils.FormatDate(r.Period.Terminated),
		ColdBefore:           formatFloat(r.TempStress.ColdBefore),
		ColdAfter:            formatFloat(r.TempStress.ColdAfter),
		HeatBefore:           formatFloat(r.TempStress.HeatBefore),
		HeatAfter:            formatFloat(r.TempStress.HeatAfter),
		DroughtBefore:        notAvailable,
		DroughtAfter:         notAvailable,
		ControlDroughtBefore: notAvailable,
		ControlDroughtAfter:  notAvailable,
		StressDroughtBefore:  notAvailable,
		StressDroughtAfter:   notAvailable,
		LightBefore:          formatFloat(r.Light.Before),
		LightAfter:           formatFloat(r.Light.After),
		HeatSum:              formatFloat(r.HeatSum),
	}
	if r.Drought.PerTreatment {
		row.ControlDroughtBefore = strconv.Itoa(r.Drought.Control.Before)
		row.ControlDroughtAfter = strconv.Itoa(r.Drought.Control.After)
		row.StressDroughtBefore = strconv.Itoa(r.Drought.Stress.Before)
		row.StressDroughtAfter = strconv.Itoa(r.Drought.Stress.After)
	} else {
		row.DroughtBefore = strconv.Itoa(r.Drought.Combined.Before)
		row.DroughtAfter = strconv.Itoa(r.Drought.Combined.After)
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
