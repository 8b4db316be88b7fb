// Package soil implements the daily soil-water balance used to count
// drought stress days for a field trial.
package soil

import (
	"math"
	"time"

	"github.com/trost/climaX/internal/climate/types"
)

// initialDays is the establishment phase at the start of the trial window
// during which the soil only accumulates water, up to its volume.
const initialDays = 14

// Balance carries the inputs of the soil-water model. All maps are keyed by
// midnight-UTC days; missing days count as zero.
type Balance struct {
	// TrialDays is the ordered list of trial days, starting at the
	// qualifying-window start.
	TrialDays     []time.Time
	Precipitation map[time.Time]float64
	Evaporation   map[time.Time]float64
	// Irrigation maps a day to its applications; a day may carry one event
	// per treatment group.
	Irrigation map[time.Time][]types.IrrigationEvent
	// SoilVolume caps how much water the soil can hold.
	SoilVolume float64
}

// DailyWater runs the balance for every trial day and both treatment
// groups: the establishment phase accumulates water gain up to the soil
// volume, afterwards each day's level is yesterday's minus evaporation plus
// gain, clamped to [0, SoilVolume].
func (b Balance) DailyWater() (map[time.Time]map[types.Treatment]float64, error) {
	return b.run(false)
}

// ShelterDailyWater is the balance variant for trial sites with a
// non-movable rain shelter: the stress group receives no precipitation
// during the establishment phase, and the first day after that phase seeds
// both groups from the control series.
func (b Balance) ShelterDailyWater() (map[time.Time]map[types.Treatment]float64, error) {
	return b.run(true)
}

func (b Balance) run(shelter bool) (map[time.Time]map[types.Treatment]float64, error) {
	treatments := []types.Treatment{types.TreatmentControl, types.TreatmentStress}
	water := map[time.Time]map[types.Treatment]float64{}

	yesterday := func(day time.Time, tr types.Treatment) float64 {
		if m, ok := water[day.AddDate(0, 0, -1)]; ok {
			return m[tr]
		}
		return 0.0
	}
	set := func(day time.Time, tr types.Treatment, v float64) {
		m, ok := water[day]
		if !ok {
			m = map[types.Treatment]float64{}
			water[day] = m
		}
		m[tr] = v
	}

	var firstAfterInitial time.Time
	if len(b.TrialDays) > initialDays {
		firstAfterInitial = b.TrialDays[initialDays]
	}

	for i, day := range b.TrialDays {
		initial := i < initialDays
		rain := b.Precipitation[day]

		carryOver := func(tr types.Treatment) float64 {
			if shelter && !initial && day.Equal(firstAfterInitial) {
				return yesterday(day, types.TreatmentControl)
			}
			return yesterday(day, tr)
		}
		gain := func(tr types.Treatment, irrigated float64) float64 {
			if shelter && initial && tr == types.TreatmentStress {
				// the shelter keeps rain off the stress plots
				return irrigated
			}
			return rain + irrigated
		}
		level := func(tr types.Treatment, irrigated float64) float64 {
			if initial {
				return math.Min(b.SoilVolume, gain(tr, irrigated)+carryOver(tr))
			}
			net := carryOver(tr) - b.Evaporation[day] + gain(tr, irrigated)
			return math.Max(math.Min(net, b.SoilVolume), 0.0)
		}

		if events := b.Irrigation[day]; len(events) > 0 {
			for _, ev := range events {
				tr, err := types.TreatmentFromID(ev.TreatmentID)
				if err != nil {
					return nil, err
				}
				set(day, tr, level(tr, ev.Amount))
			}
		} else {
			for _, tr := range treatments {
				set(day, tr, level(tr, 0.0))
			}
		}
	}
	return water, nil
}

// ByTreatment projects the per-day, per-treatment levels onto one treatment.
func ByTreatment(water map[time.Time]map[types.Treatment]float64, tr types.Treatment) map[time.Time]float64 {
	out := make(map[time.Time]float64, len(water))
	for day, m := range water {
		out[day] = m[tr]
	}
	return out
}

// StressDays counts the days whose soil-water level fell below the
// threshold, split into before and after the flowering date.
func StressDays(values map[time.Time]float64, flowering time.Time, threshold float64) (before, after int) {
	for day, level := range values {
		if level >= threshold {
			continue
		}
		if day.Before(flowering) {
			before++
		} else {
			after++
		}
	}
	return before, after
}
