package service

import (
	"fmt"
	"io"

	"github.com/trost/climaX/internal/climate/types"
	"github.com/trost/climaX/internal/meteo"
	"github.com/trost/climaX/internal/utils"
)

// Report is the derived climate summary for one culture.
type Report struct {
	CultureID int64
	// Found is false when no culture exists for the id; all other fields
	// are zero in that case.
	Found         bool
	Period        types.TrialPeriod
	HasIrrigation bool
	TempStress    TempStress
	Drought       DroughtStress
	Light         LightIntensity
	// HeatSum is the thermal time accumulated over the trial in degree-days.
	HeatSum float64
	Weekly  []WeeklyIndicator
}

// TempStress holds summed daily temperature exceedances (degree units)
// outside the cold/heat bounds, split by the flowering date.
type TempStress struct {
	ColdBefore float64
	ColdAfter  float64
	HeatBefore float64
	HeatAfter  float64
}

// StressDayCount is a number of drought stress days before and after
// flowering.
type StressDayCount struct {
	Before int
	After  int
}

// DroughtStress carries either one combined count, or control/stress counts
// when the trial's irrigation distinguishes treatments.
type DroughtStress struct {
	PerTreatment bool
	Combined     StressDayCount
	Control      StressDayCount
	Stress       StressDayCount
}

// LightIntensity is the mean daily light value per trial phase. It is zero
// for a phase without solar radiation data.
type LightIntensity struct {
	Before float64
	After  float64
}

// WeeklyIndicator is one week's midday VPD and cumulative heat sum.
type WeeklyIndicator struct {
	Week      meteo.Week
	MiddayVPD float64
	HeatSum   float64
}

// Print writes the human-readable report.
func (r Report) Print(w io.Writer) {
	if !r.Found {
		fmt.Fprintf(w, "no culture with id %d\n", r.CultureID)
		return
	}
	fmt.Fprintf(w, "culture %d: planted %s, terminated %s\n",
		r.CultureID, utils.FormatDate(r.Period.Planted), utils.FormatDate(r.Period.Terminated))
	fmt.Fprintf(w, "has irrigation: %t\n", r.HasIrrigation)
	fmt.Fprintf(w, "temperature stress days: cold before=%.2f after=%.2f, heat before=%.2f after=%.2f\n",
		r.TempStress.ColdBefore, r.TempStress.ColdAfter, r.TempStress.HeatBefore, r.TempStress.HeatAfter)
	if r.Drought.PerTreatment {
		fmt.Fprintln(w, "drought stress days:")
		fmt.Fprintf(w, "\tcontrol: before=%d after=%d\n", r.Drought.Control.Before, r.Drought.Control.After)
		fmt.Fprintf(w, "\tstress: before=%d after=%d\n", r.Drought.Stress.Before, r.Drought.Stress.After)
	} else {
		fmt.Fprintf(w, "drought stress days: before=%d after=%d\n",
			r.Drought.Combined.Before, r.Drought.Combined.After)
	}
	fmt.Fprintf(w, "light intensity: before=%.2f after=%.2f\n", r.Light.Before, r.Light.After)
	fmt.Fprintf(w, "heat sum: %.1f Cd\n", r.HeatSum)
}

// PrintWeekly writes the weekly midday VPD / heat sum table.
func (r Report) PrintWeekly(w io.Writer) {
	fmt.Fprintln(w, "Week\tVPD_midday[kPa]\theatsum[Cd]")
	for _, wk := range r.Weekly {
		fmt.Fprintf(w, "%d-%d\t%.3f\t%.3f\n", wk.Week.Year, wk.Week.Week, wk.MiddayVPD, wk.HeatSum)
	}
}
