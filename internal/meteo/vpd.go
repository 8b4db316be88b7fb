// Package meteo holds the meteorological formulas the climate reports are
// built from: vapour pressure deficit, thermal time and Penman evaporation.
package meteo

import "math"

// Heat sum parameters: thermal time accumulates above tbase, with the daily
// maximum capped so extreme days do not dominate the sum.
const (
	heatSumBaseTemp = 6.0
	heatSumMaxTemp  = 30.0
)

// VPD calculates the vapour pressure deficit in kPa from temperature in
// degrees celsius and relative humidity as a fraction in [0, 1].
//
// Saturation vapour pressure follows Buck (1981), as given in the Licor
// LI-6400 manual.
func VPD(tCelsius, relHumidity float64) float64 {
	vpSat := 0.61365 * math.Exp((17.502*tCelsius)/(240.97+tCelsius))
	vpAir := vpSat * relHumidity
	return vpSat - vpAir
}

// HeatSum calculates one day's thermal time from the daily minimum and
// maximum temperature:
//
//	heat_sum = max((tmin + min(tmax, 30)) / 2 - 6, 0)
func HeatSum(tmin, tmax float64) float64 {
	tmax = math.Min(tmax, heatSumMaxTemp)
	tx := (tmin + tmax) / 2.0
	return math.Max(tx-heatSumBaseTemp, 0.0)
}
