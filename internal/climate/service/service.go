package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/trost/climaX/internal/climate/repository"
	"github.com/trost/climaX/internal/climate/types"
	"github.com/trost/climaX/internal/meteo"
	"github.com/trost/climaX/internal/soil"
	"github.com/trost/climaX/internal/utils"
)

const (
	// A day counts as drought-stressed when its soil-water level falls
	// below this threshold.
	droughtStressThreshold = 10.0
	// Daily temperature bounds for cold/heat stress.
	tempLowerBound = 8.0
	tempUpperBound = 30.0
)

// shelterCultures are trial sites with a non-movable rain shelter; their
// soil-water balance uses the shelter variant.
var shelterCultures = map[int64]bool{
	56875: true,
	62327: true,
}

// unsplitIrrigationCultures have irrigation records that do not distinguish
// control and stress plots, so their drought stress days cannot be reported
// per treatment.
var unsplitIrrigationCultures = map[int64]bool{
	47109: true,
	56879: true,
}

// Params are the per-culture report inputs.
type Params struct {
	CultureID     int64
	FloweringDate time.Time
	// SoilVolume caps the soil-water balance.
	SoilVolume float64
	// AvailMoistCap is accepted for compatibility with existing parameter
	// files; the balance model does not use it.
	AvailMoistCap float64
}

// Service derives climate indicators for a culture's growing period.
type Service struct {
	repo repository.ClimateRepository
}

func New(repo repository.ClimateRepository) *Service {
	return &Service{repo: repo}
}

// ClimateReport fetches all series for a culture and derives its indicators.
// An unknown culture id yields a zero report with Found=false and no error;
// database failures are returned as errors.
func (s *Service) ClimateReport(ctx context.Context, p Params) (Report, error) {
	report := Report{CultureID: p.CultureID}

	period, err := s.repo.TrialPeriod(ctx, p.CultureID)
	if errors.Is(err, types.ErrCultureNotFound) {
		return report, nil
	}
	if err != nil {
		return report, err
	}
	report.Found = true
	report.Period = period
	window := period.Window()

	climate, err := s.repo.HourlyClimate(ctx, p.CultureID, window)
	if err != nil {
		return report, err
	}
	precipRows, err := s.repo.DailyPrecipitation(ctx, p.CultureID)
	if err != nil {
		return report, err
	}
	irrigationRows, err := s.repo.Irrigation(ctx, p.CultureID)
	if err != nil {
		return report, err
	}
	solarRows, err := s.repo.SolarRadiation(ctx, p.CultureID, window)
	if err != nil {
		return report, err
	}

	precipitation := make(map[time.Time]float64, len(precipRows))
	for _, row := range precipRows {
		precipitation[row.Day] = row.Amount
	}
	irrigation := map[time.Time][]types.IrrigationEvent{}
	for _, ev := range irrigationRows {
		irrigation[ev.Day] = append(irrigation[ev.Day], ev)
	}
	report.HasIrrigation = len(irrigation) > 0

	report.TempStress = tempStressDays(climate, p.FloweringDate)
	report.HeatSum = trialHeatSum(climate)
	report.Light = lightIntensity(solarRows, p.FloweringDate)
	report.Weekly = weeklyIndicators(climate)

	evaporation := meteo.DailyEvaporation(climate)
	if len(evaporation) == 0 {
		slog.Warn("no evaporation could be derived, drought stress days use rainfall only",
			"culture", p.CultureID)
	}

	balance := soil.Balance{
		TrialDays:     period.Days(),
		Precipitation: precipitation,
		Evaporation:   evaporation,
		Irrigation:    irrigation,
		SoilVolume:    p.SoilVolume,
	}
	var water map[time.Time]map[types.Treatment]float64
	if shelterCultures[p.CultureID] {
		water, err = balance.ShelterDailyWater()
	} else {
		water, err = balance.DailyWater()
	}
	if err != nil {
		return report, fmt.Errorf("soil water balance for culture %d: %w", p.CultureID, err)
	}

	if report.HasIrrigation && !unsplitIrrigationCultures[p.CultureID] {
		report.Drought.PerTreatment = true
		cb, ca := soil.StressDays(soil.ByTreatment(water, types.TreatmentControl),
			p.FloweringDate, droughtStressThreshold)
		sb, sa := soil.StressDays(soil.ByTreatment(water, types.TreatmentStress),
			p.FloweringDate, droughtStressThreshold)
		report.Drought.Control = StressDayCount{Before: cb, After: ca}
		report.Drought.Stress = StressDayCount{Before: sb, After: sa}
	} else {
		before, after := soil.StressDays(soil.ByTreatment(water, types.TreatmentControl),
			p.FloweringDate, droughtStressThreshold)
		report.Drought.Combined = StressDayCount{Before: before, After: after}
	}

	return report, nil
}

// tempStressDays sums daily temperature exceedances outside the stress
// bounds, split by the flowering date. Days without any temperature reading
// contribute nothing.
func tempStressDays(climate []types.HourlyClimate, flowering time.Time) TempStress {
	var ts TempStress
	for day, mm := range meteo.DailyMinMaxTemperatures(climate) {
		before := day.Before(flowering)
		if mm.Min < tempLowerBound {
			diff := tempLowerBound - mm.Min
			if before {
				ts.ColdBefore += diff
			} else {
				ts.ColdAfter += diff
			}
		}
		if mm.Max > tempUpperBound {
			diff := mm.Max - tempUpperBound
			if before {
				ts.HeatBefore += diff
			} else {
				ts.HeatAfter += diff
			}
		}
	}
	return ts
}

// trialHeatSum accumulates thermal time over all trial days with
// temperature data.
func trialHeatSum(climate []types.HourlyClimate) float64 {
	var sum float64
	for _, mm := range meteo.DailyMinMaxTemperatures(climate) {
		sum += meteo.HeatSum(mm.Min, mm.Max)
	}
	return sum
}

// lightIntensity reduces the hourly solar radiation series to one mean
// daily light value per trial phase. A day's value is the sum of its
// positive readings weighted by their count.
func lightIntensity(solar []types.SolarReading, flowering time.Time) LightIntensity {
	daily := map[time.Time][]float64{}
	for _, r := range solar {
		day := utils.DayOf(r.Time)
		if _, ok := daily[day]; !ok {
			daily[day] = nil
		}
		if r.Amount > 0.0 {
			daily[day] = append(daily[day], r.Amount)
		}
	}

	var before, after []float64
	for day, values := range daily {
		var sum float64
		for _, v := range values {
			sum += v
		}
		weighted := sum * float64(len(values))
		if day.Before(flowering) {
			before = append(before, weighted)
		} else {
			after = append(after, weighted)
		}
	}
	return LightIntensity{Before: meanOrZero(before), After: meanOrZero(after)}
}

// weeklyIndicators assembles the weeks for which both a midday VPD and a
// cumulative heat sum are available, sorted chronologically.
func weeklyIndicators(climate []types.HourlyClimate) []WeeklyIndicator {
	vpd := meteo.MiddayVPDByWeek(climate)
	heat := meteo.HeatSumByWeek(climate)

	var out []WeeklyIndicator
	for week, v := range vpd {
		h, ok := heat[week]
		if !ok {
			continue
		}
		out = append(out, WeeklyIndicator{Week: week, MiddayVPD: v, HeatSum: h})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week.Year != out[j].Week.Year {
			return out[i].Week.Year < out[j].Week.Year
		}
		return out[i].Week.Week < out[j].Week.Week
	})
	return out
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	m := sum / float64(len(values))
	if math.IsNaN(m) {
		return 0.0
	}
	return m
}
