// Package solar estimates hourly incoming solar radiation from limited
// daily weather data (minimum/maximum air temperature and precipitation),
// following the SolarCalc model published by the USDA ARS.
package solar

import (
	"math"
	"time"
)

// Extraterrestrial solar constant in W/m^2.
const solarConstant = 1360.0

// Site describes the trial location the estimate is computed for.
type Site struct {
	LatitudeDeg  float64
	LongitudeDeg float64
	ElevationM   float64
}

// DailyWeather is one day of input data.
type DailyWeather struct {
	DOY    int // day of year, 1-based
	TMin   float64
	TMax   float64
	Precip float64 // total daily rainfall in mm
}

// HourlyRadiation is one estimated hourly total irradiance value.
type HourlyRadiation struct {
	Time   time.Time
	Amount float64 // W/m^2 on a horizontal surface
}

// Declination returns the solar declination angle in radians for a day of
// year.
func Declination(doy int) float64 {
	d := float64(doy)
	deg := 278.97 + 0.9856*d + 1.9165*math.Sin((356.6+0.9856*d)*math.Pi/180.0)
	return math.Asin(0.39785 * math.Sin(deg*math.Pi/180.0))
}

// EquationOfTime returns the equation-of-time correction in hours for a day
// of year.
func EquationOfTime(doy int) float64 {
	et := (279.575 + 0.9856*float64(doy)) * math.Pi / 180.0
	seconds := -104.7*math.Sin(et) +
		596.2*math.Sin(et*2) +
		4.3*math.Sin(3*et) -
		12.7*math.Sin(4*et) -
		429.3*math.Cos(et) -
		2.0*math.Cos(2*et) +
		19.3*math.Cos(3*et)
	return seconds / 3600.0
}

// HalfDayLength returns half the day length in hours for a declination and
// latitude (radians).
func HalfDayLength(declination, latitude float64) float64 {
	cosZenith := math.Cos(90.0*math.Pi/180.0) - math.Sin(latitude)*math.Sin(declination)
	cosZenith /= math.Cos(declination) * math.Cos(latitude)
	return (math.Acos(cosZenith) * 180.0 / math.Pi) / 15.0
}

// Zenith returns the solar zenith angle in radians at hour t for a latitude
// and declination (radians) and the local solar noon in hours.
func Zenith(latitude, declination, t, solarNoon float64) float64 {
	cosZ := math.Sin(latitude)*math.Sin(declination) +
		math.Cos(latitude)*math.Cos(declination)*math.Cos(15.0*(t-solarNoon)*math.Pi/180.0)
	return math.Acos(cosZ)
}

// EstimateYear computes hourly total irradiance for every day of the year.
// days maps day-of-year to its weather record; days absent from the map are
// treated as dry with zero temperatures, matching the reference model.
func EstimateYear(site Site, year int, days map[int]DailyWeather) []HourlyRadiation {
	latitude := site.LatitudeDeg * math.Pi / 180.0
	longitude := site.LongitudeDeg * math.Pi / 180.0
	longitudeCorrection := longitude / (360.0 * 24.0)

	maxDays := 365
	if isLeapYear(year) {
		maxDays = 366
	}

	// Barometric pressure falls off with elevation.
	pressure := 101.0 * math.Exp(-site.ElevationM/8200.0)

	var out []HourlyRadiation
	for doy := 1; doy <= maxDays; doy++ {
		solarNoon := 12.0 - longitudeCorrection - EquationOfTime(doy)
		declination := Declination(doy)
		halfDay := HalfDayLength(declination, latitude)
		sunrise := solarNoon - halfDay
		sunset := solarNoon + halfDay

		today := days[doy]
		tao := transmissivity(today.Precip, days[doy-1].Precip)

		// At non-polar latitudes a small daily temperature range signals
		// overcast conditions, damping the transmissivity further.
		if math.Abs(site.LatitudeDeg) < 60.0 {
			deltaT := today.TMax - today.TMin
			if deltaT <= 10.0 && deltaT != 0.0 {
				tao /= 11.0 - deltaT
			}
		}

		dayStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
		for t := 0; t < 24; t++ {
			var total float64
			if float64(t) >= sunrise && float64(t) <= sunset {
				zenith := Zenith(latitude, declination, float64(t), solarNoon)
				airMass := pressure / 101.3 / math.Cos(zenith)
				pow := math.Pow(tao, airMass)
				if math.IsNaN(pow) || math.IsInf(pow, 0) {
					pow = 0.0
				}
				beamPerpendicular := solarConstant * pow
				diffuse := 0.3 * (1.0 - pow) * math.Cos(zenith) * solarConstant
				beam := beamPerpendicular * math.Cos(zenith)
				total = math.Max(0.0, beam+diffuse)
				if math.IsNaN(total) {
					total = 0.0
				}
			}
			out = append(out, HourlyRadiation{
				Time:   dayStart.Add(time.Duration(t) * time.Hour),
				Amount: total,
			})
		}
	}
	return out
}

// transmissivity picks the atmospheric transmissivity from today's and
// yesterday's rainfall: 0.7 clear sky, 0.3 raining both days, 0.6 raining
// only yesterday, 0.4 raining only today.
func transmissivity(precipToday, precipYesterday float64) float64 {
	switch {
	case precipYesterday > 0.0 && precipToday > 0.0:
		return 0.3
	case precipYesterday > 0.0:
		return 0.6
	case precipToday > 0.0:
		return 0.4
	}
	return 0.7
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
