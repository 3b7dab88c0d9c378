package analysis

import (
	"testing"
	"time"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

var testDevice = models.Device{ID: 7, Name: "Truck 12", IMEI: "356938035643809"}

func TestAggregate_ZeroFill(t *testing.T) {
	row := Aggregate(testDevice, nil, 120.0, models.EventCounts{})

	if row.StartTime != nil || row.StopTime != nil {
		t.Error("zero-sample device must have nil start/stop times")
	}
	if row.Distance != 0 {
		t.Errorf("distance = %f, want 0", row.Distance)
	}
	if row.StartOdometer != 120.0 || row.EndOdometer != 120.0 {
		t.Errorf("odometer = [%f, %f], want [120, 120]", row.StartOdometer, row.EndOdometer)
	}
	if row.Events != (models.EventCounts{}) {
		t.Errorf("event counts = %+v, want all zero", row.Events)
	}
	if row.TimesheetSeconds != 0 || row.IdleSeconds != 0 || row.TripSeconds != 0 {
		t.Error("zero-sample device must have zero time buckets")
	}
}

func TestAggregate_OdometerIdentity(t *testing.T) {
	positions := []models.Position{
		sample(0, true, 0, 0.2), // stationary, still advances the odometer
		sample(60*time.Second, true, 30, 1.5),
		sample(120*time.Second, true, 1, 0.1),
		sample(180*time.Second, false, 0, 0.3),
	}

	row := Aggregate(testDevice, positions, 500.0, models.EventCounts{})

	var inWindow float64
	for _, p := range positions {
		inWindow += p.Distance
	}
	if got := row.StartOdometer + inWindow; row.EndOdometer != got {
		t.Errorf("end odometer = %f, want start + in-window distance = %f", row.EndOdometer, got)
	}

	// The trip-bucket distance only counts moving samples: this
	// asymmetry against the odometer is intentional.
	if row.Distance != 1.5 {
		t.Errorf("trip distance = %f, want 1.5 (moving samples only)", row.Distance)
	}
}

func TestAggregate_StartStopAndTimesheet(t *testing.T) {
	positions := []models.Position{
		sample(0, false, 0, 0),
		sample(60*time.Second, true, 10, 0.2),
		sample(120*time.Second, true, 0, 0),
		sample(300*time.Second, true, 5, 0.1),
		sample(360*time.Second, false, 0, 0),
	}

	row := Aggregate(testDevice, positions, 0, models.EventCounts{})

	if row.StartTime == nil || !row.StartTime.Equal(t0.Add(60*time.Second)) {
		t.Errorf("start time = %v, want first ignition-on sample", row.StartTime)
	}
	if row.StopTime == nil || !row.StopTime.Equal(t0.Add(300*time.Second)) {
		t.Errorf("stop time = %v, want last ignition-on sample", row.StopTime)
	}
	if row.TimesheetSeconds != 240 {
		t.Errorf("timesheet = %d, want 240 (stop - start wall clock)", row.TimesheetSeconds)
	}
}

func TestAggregate_IdleTripSplit(t *testing.T) {
	positions := []models.Position{
		sample(0, true, 0, 0),
		sample(60*time.Second, true, 30, 0.5),  // prev on, moving: trip
		sample(120*time.Second, true, 1, 0),    // prev on, slow: idle
		sample(180*time.Second, false, 0, 0),   // prev on, slow: idle
		sample(240*time.Second, true, 40, 0.6), // prev off: not attributed
		sample(300*time.Second, true, 40, 0.7), // prev on, moving: trip
	}

	row := Aggregate(testDevice, positions, 0, models.EventCounts{})

	if row.TripSeconds != 120 {
		t.Errorf("trip seconds = %d, want 120", row.TripSeconds)
	}
	if row.IdleSeconds != 120 {
		t.Errorf("idle seconds = %d, want 120", row.IdleSeconds)
	}
}

func TestAggregate_EventCountsCarriedThrough(t *testing.T) {
	counts := models.EventCounts{HarshAccel: 2, HarshBrake: 1, Seatbelt: 3, SOS: 1}
	row := Aggregate(testDevice, []models.Position{sample(0, true, 0, 0)}, 0, counts)
	if row.Events != counts {
		t.Errorf("event counts = %+v, want %+v", row.Events, counts)
	}
}
