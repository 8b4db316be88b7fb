package soil

import (
	"math"
	"testing"
	"time"

	"github.com/trost/climaX/internal/climate/types"
)

func day(offset int) time.Time {
	return time.Date(2012, 7, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func trialDays(n int) []time.Time {
	days := make([]time.Time, n)
	for i := range days {
		days[i] = day(i)
	}
	return days
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDailyWater_InitialPhaseAccumulates(t *testing.T) {
	b := Balance{
		TrialDays: trialDays(3),
		Precipitation: map[time.Time]float64{
			day(0): 5.0,
			day(1): 8.0,
			day(2): 100.0,
		},
		SoilVolume: 20.0,
	}
	water, err := b.DailyWater()
	if err != nil {
		t.Fatalf("DailyWater: %v", err)
	}
	// Gains accumulate day over day, capped at the soil volume.
	if got := water[day(0)][types.TreatmentControl]; !almostEqual(got, 5.0) {
		t.Errorf("day 0 = %v; want 5", got)
	}
	if got := water[day(1)][types.TreatmentControl]; !almostEqual(got, 13.0) {
		t.Errorf("day 1 = %v; want 13", got)
	}
	if got := water[day(2)][types.TreatmentControl]; !almostEqual(got, 20.0) {
		t.Errorf("day 2 = %v; want capped at 20", got)
	}
	// Without irrigation both treatments track the same series.
	if got := water[day(2)][types.TreatmentStress]; !almostEqual(got, 20.0) {
		t.Errorf("stress day 2 = %v; want 20", got)
	}
}

func TestDailyWater_NetBalanceAfterInitialPhase(t *testing.T) {
	days := trialDays(16)
	b := Balance{
		TrialDays: days,
		Precipitation: map[time.Time]float64{
			day(0):  10.0,
			day(14): 2.0,
		},
		Evaporation: map[time.Time]float64{
			day(14): 3.0,
			day(15): 50.0,
		},
		SoilVolume: 40.0,
	}
	water, err := b.DailyWater()
	if err != nil {
		t.Fatalf("DailyWater: %v", err)
	}
	// Day 14 is the first net-balance day: 10 (carried) - 3 + 2 = 9.
	if got := water[day(14)][types.TreatmentControl]; !almostEqual(got, 9.0) {
		t.Errorf("day 14 = %v; want 9", got)
	}
	// Day 15 drains far below zero and is clamped.
	if got := water[day(15)][types.TreatmentControl]; !almostEqual(got, 0.0) {
		t.Errorf("day 15 = %v; want 0 (clamped)", got)
	}
}

func TestDailyWater_IrrigationSplitsTreatments(t *testing.T) {
	b := Balance{
		TrialDays: trialDays(2),
		Irrigation: map[time.Time][]types.IrrigationEvent{
			day(0): {
				{Day: day(0), Amount: 6.0, TreatmentID: types.TreatmentIDControl},
				{Day: day(0), Amount: 2.0, TreatmentID: types.TreatmentIDStress},
			},
		},
		Precipitation: map[time.Time]float64{day(0): 1.0},
		SoilVolume:    40.0,
	}
	water, err := b.DailyWater()
	if err != nil {
		t.Fatalf("DailyWater: %v", err)
	}
	if got := water[day(0)][types.TreatmentControl]; !almostEqual(got, 7.0) {
		t.Errorf("control day 0 = %v; want 7", got)
	}
	if got := water[day(0)][types.TreatmentStress]; !almostEqual(got, 3.0) {
		t.Errorf("stress day 0 = %v; want 3", got)
	}
}

func TestDailyWater_AlternateControlTreatmentID(t *testing.T) {
	b := Balance{
		TrialDays: trialDays(1),
		Irrigation: map[time.Time][]types.IrrigationEvent{
			day(0): {{Day: day(0), Amount: 4.0, TreatmentID: types.TreatmentIDControlAlt}},
		},
		SoilVolume: 40.0,
	}
	water, err := b.DailyWater()
	if err != nil {
		t.Fatalf("DailyWater: %v", err)
	}
	if got := water[day(0)][types.TreatmentControl]; !almostEqual(got, 4.0) {
		t.Errorf("control (id 171) day 0 = %v; want 4", got)
	}
}

func TestDailyWater_UnknownTreatmentID(t *testing.T) {
	b := Balance{
		TrialDays: trialDays(1),
		Irrigation: map[time.Time][]types.IrrigationEvent{
			day(0): {{Day: day(0), Amount: 4.0, TreatmentID: 999}},
		},
		SoilVolume: 40.0,
	}
	if _, err := b.DailyWater(); err == nil {
		t.Fatal("expected error for unknown treatment id")
	}
}

func TestShelterDailyWater_StressGetsNoRainInitially(t *testing.T) {
	b := Balance{
		TrialDays:     trialDays(2),
		Precipitation: map[time.Time]float64{day(0): 5.0, day(1): 5.0},
		SoilVolume:    40.0,
	}
	water, err := b.ShelterDailyWater()
	if err != nil {
		t.Fatalf("ShelterDailyWater: %v", err)
	}
	if got := water[day(1)][types.TreatmentControl]; !almostEqual(got, 10.0) {
		t.Errorf("control day 1 = %v; want 10", got)
	}
	if got := water[day(1)][types.TreatmentStress]; !almostEqual(got, 0.0) {
		t.Errorf("stress day 1 = %v; want 0 (sheltered from rain)", got)
	}
}

func TestShelterDailyWater_FirstNetDaySeedsFromControl(t *testing.T) {
	days := trialDays(15)
	precip := map[time.Time]float64{}
	for i := 0; i < 14; i++ {
		precip[day(i)] = 1.0
	}
	b := Balance{
		TrialDays:     days,
		Precipitation: precip,
		Evaporation:   map[time.Time]float64{day(14): 2.0},
		SoilVolume:    40.0,
	}
	water, err := b.ShelterDailyWater()
	if err != nil {
		t.Fatalf("ShelterDailyWater: %v", err)
	}
	// Control accumulated 14 mm; stress stayed dry. On day 14 both groups
	// start from the control level: 14 - 2 + 0 = 12.
	if got := water[day(14)][types.TreatmentControl]; !almostEqual(got, 12.0) {
		t.Errorf("control day 14 = %v; want 12", got)
	}
	if got := water[day(14)][types.TreatmentStress]; !almostEqual(got, 12.0) {
		t.Errorf("stress day 14 = %v; want 12 (seeded from control)", got)
	}
}

func TestStressDays(t *testing.T) {
	flowering := day(2)
	values := map[time.Time]float64{
		day(0): 5.0,  // stress, before
		day(1): 15.0, // fine
		day(2): 9.9,  // stress, on the flowering day counts as after
		day(3): 0.0,  // stress, after
	}
	before, after := StressDays(values, flowering, 10.0)
	if before != 1 || after != 2 {
		t.Errorf("StressDays = (%d, %d); want (1, 2)", before, after)
	}
}

func TestByTreatment(t *testing.T) {
	water := map[time.Time]map[types.Treatment]float64{
		day(0): {types.TreatmentControl: 3.0, types.TreatmentStress: 1.0},
	}
	control := ByTreatment(water, types.TreatmentControl)
	if got := control[day(0)]; !almostEqual(got, 3.0) {
		t.Errorf("control day 0 = %v; want 3", got)
	}
}
