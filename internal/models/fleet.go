package models

import "time"

// EventCounts holds per-device safety event counts over a window.
// Categories are non-exclusive: one message may increment several.
type EventCounts struct {
	HarshAccel int `json:"h_accel"`
	HarshBrake int `json:"h_brake"`
	Seatbelt   int `json:"seatbelt"`
	SOS        int `json:"sos"`
}

// FleetRow is one device's line in the fleet summary report.
// Invariant: EndOdometer = StartOdometer + sum of in-window distance.
type FleetRow struct {
	Device    Device     `json:"device"`
	StartTime *time.Time `json:"start_time"` // first ignition-on sample
	StopTime  *time.Time `json:"stop_time"`  // last ignition-on sample

	// TimesheetSeconds is StopTime - StartTime wall clock, independent
	// of the idle/trip split below.
	TimesheetSeconds int64 `json:"driver_timesheet_seconds"`
	IdleSeconds      int64 `json:"idle_seconds"`
	TripSeconds      int64 `json:"trip_seconds"`

	// Distance counts only samples moving above the speed threshold.
	// The odometer pair is cumulative regardless of moving state.
	Distance      float64 `json:"distance"`
	StartOdometer float64 `json:"start_odometer"`
	EndOdometer   float64 `json:"end_odometer"`

	Events EventCounts `json:"event_counts"`
}
