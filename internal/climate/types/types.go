package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrCultureNotFound is returned when no culture exists for the given id.
// Callers treat it as an empty result, not a failure.
var ErrCultureNotFound = errors.New("culture not found")

// Series names as stored in usesWeatherStation.stationData.
const (
	SeriesWindspeed   = "FFHM"
	SeriesTemperature = "TAHV"
	SeriesHumidity    = "UUHV"
)

// WindowOffsetDays skips the establishment phase of a trial: measurements
// taken before planted+14d do not count towards the growing period.
const WindowOffsetDays = 14

// TrialPeriod holds the planting and termination dates of a culture.
type TrialPeriod struct {
	Planted    time.Time
	Terminated time.Time
}

// Window returns the qualifying measurement window [planted+14d, terminated).
func (p TrialPeriod) Window() Window {
	return Window{
		Start: p.Planted.AddDate(0, 0, WindowOffsetDays),
		End:   p.Terminated,
	}
}

// Days lists every trial day from the window start through the termination
// date inclusive.
func (p TrialPeriod) Days() []time.Time {
	var days []time.Time
	for d := p.Window().Start; !d.After(p.Terminated); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Window is a half-open time range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// HourlyClimate is one joined row of the three hourly measurement series.
// The wind series drives the join; temperature and humidity are nil when no
// reading with an exactly matching timestamp exists.
type HourlyClimate struct {
	Time        time.Time
	Temperature *float64 // degrees celsius
	Windspeed   *float64 // m/s
	RelHumidity *float64 // percent
}

// DailyAmount is a per-day measurement such as precipitation in mm.
type DailyAmount struct {
	Day    time.Time
	Amount float64
}

// IrrigationEvent is one irrigation application for a culture. A day may
// carry two events, one per treatment group.
type IrrigationEvent struct {
	Day         time.Time
	Amount      float64
	TreatmentID int64
}

// SolarReading is one hourly solar radiation value for a location.
type SolarReading struct {
	Time   time.Time
	Amount float64
}

// Treatment is a field-trial treatment group.
type Treatment string

const (
	TreatmentControl Treatment = "control"
	TreatmentStress  Treatment = "stress"
)

// Treatment ids as used in the irrigation table.
const (
	TreatmentIDControl    = 169
	TreatmentIDControlAlt = 171
	TreatmentIDStress     = 170
)

// TreatmentFromID maps an irrigation treatment id to its group.
func TreatmentFromID(id int64) (Treatment, error) {
	switch id {
	case TreatmentIDControl, TreatmentIDControlAlt:
		return TreatmentControl, nil
	case TreatmentIDStress:
		return TreatmentStress, nil
	}
	return "", fmt.Errorf("unexpected treatment id %d", id)
}
