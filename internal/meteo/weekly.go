package meteo

import (
	"sort"
	"time"

	"github.com/trost/climaX/internal/climate/types"
	"github.com/trost/climaX/internal/utils"
)

// Week identifies an ISO week.
type Week struct {
	Year int
	Week int
}

// MinMax is a day's temperature extremes.
type MinMax struct {
	Min float64
	Max float64
}

// DailyMinMaxTemperatures reduces an hourly climate series to per-day
// minimum and maximum temperatures. Days without any temperature reading
// are absent from the result.
func DailyMinMaxTemperatures(climate []types.HourlyClimate) map[time.Time]MinMax {
	out := map[time.Time]MinMax{}
	for _, h := range climate {
		if h.Temperature == nil {
			continue
		}
		day := utils.DayOf(h.Time)
		t := *h.Temperature
		mm, ok := out[day]
		if !ok {
			out[day] = MinMax{Min: t, Max: t}
			continue
		}
		if t < mm.Min {
			mm.Min = t
		}
		if t > mm.Max {
			mm.Max = t
		}
		out[day] = mm
	}
	return out
}

// MiddayVPDByWeek computes the weekly average of daily midday (10:00-14:00)
// VPD medians from an hourly climate series.
func MiddayVPDByWeek(climate []types.HourlyClimate) map[Week]float64 {
	daily := map[time.Time][]float64{}
	for _, h := range climate {
		if h.Temperature == nil || h.RelHumidity == nil {
			continue
		}
		hour := h.Time.Hour()
		if hour < 10 || hour > 14 || (hour == 14 && (h.Time.Minute() > 0 || h.Time.Second() > 0)) {
			continue
		}
		day := utils.DayOf(h.Time)
		daily[day] = append(daily[day], VPD(*h.Temperature, *h.RelHumidity/100.0))
	}

	weekly := map[Week][]float64{}
	for day, vpds := range daily {
		year, week := day.ISOWeek()
		k := Week{Year: year, Week: week}
		weekly[k] = append(weekly[k], median(vpds))
	}

	out := map[Week]float64{}
	for k, medians := range weekly {
		out[k] = mean(medians)
	}
	return out
}

// HeatSumByWeek returns cumulative heat sums per week, sampled on the Friday
// of each week (the end of the weekly measuring interval for many DWD
// stations).
func HeatSumByWeek(climate []types.HourlyClimate) map[Week]float64 {
	minmax := DailyMinMaxTemperatures(climate)
	days := make([]time.Time, 0, len(minmax))
	for day := range minmax {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	out := map[Week]float64{}
	var cumulative float64
	for _, day := range days {
		mm := minmax[day]
		cumulative += HeatSum(mm.Min, mm.Max)
		if day.Weekday() == time.Friday {
			year, week := day.ISOWeek()
			out[Week{Year: year, Week: week}] = cumulative
		}
	}
	return out
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2.0
}
