package meteo

import (
	"math"
	"time"

	"github.com/trost/climaX/internal/climate/types"
	"github.com/trost/climaX/internal/utils"
)

const msToMph = 2.23693629205

// PenmanEvaporation estimates evaporation in mm/day from a vapour pressure
// deficit and windspeed in m/s (Penman 1948, Principles of Environmental
// Physics). The formula expects windspeed in mph.
func PenmanEvaporation(vpd, windspeedMS float64) float64 {
	return 0.376 * vpd * math.Pow(windspeedMS*msToMph, 0.76)
}

// DailyEvaporation derives per-day Penman evaporation from an hourly climate
// series, using the daily mean VPD and mean windspeed. Days missing either
// temperature/humidity or windspeed readings are left out of the result.
func DailyEvaporation(climate []types.HourlyClimate) map[time.Time]float64 {
	dailyVPD := map[time.Time][]float64{}
	dailyWind := map[time.Time][]float64{}

	for _, h := range climate {
		day := utils.DayOf(h.Time)
		if h.Temperature != nil && h.RelHumidity != nil {
			// humidity arrives as a percentage, VPD wants a fraction
			dailyVPD[day] = append(dailyVPD[day], VPD(*h.Temperature, *h.RelHumidity/100.0))
		}
		if h.Windspeed != nil {
			dailyWind[day] = append(dailyWind[day], *h.Windspeed)
		}
	}

	out := map[time.Time]float64{}
	for day, vpds := range dailyVPD {
		winds, ok := dailyWind[day]
		if !ok {
			continue
		}
		out[day] = PenmanEvaporation(mean(vpds), mean(winds))
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
