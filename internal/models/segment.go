package models

import "time"

// SegmentState is the movement state of a trip segment.
type SegmentState string

// Segment states.
const (
	StateParked SegmentState = "parked"
	StateIdle   SegmentState = "idle"
	StateRun    SegmentState = "run"
)

// Segment is a maximal contiguous run of same-state samples for one
// device. Within one device's sequence no two adjacent segments share
// the same state, and segments are contiguous across the query window.
type Segment struct {
	DeviceID     int64        `json:"device_id"`
	State        SegmentState `json:"state"`
	StartTime    time.Time    `json:"start_time"`
	StopTime     time.Time    `json:"stop_time"`
	StartLat     float64      `json:"start_lat"`
	StartLng     float64      `json:"start_lng"`
	GeofenceName string       `json:"geofence_name,omitempty"`

	// Distance and AvgSpeed are populated for run segments only.
	Distance float64 `json:"distance"`
	AvgSpeed float64 `json:"avg_speed"`
}

// Duration returns the segment length.
func (s Segment) Duration() time.Duration {
	return s.StopTime.Sub(s.StartTime)
}

// VehicleTripStats is the per-vehicle fold over a segment sequence.
type VehicleTripStats struct {
	TripSeconds   int64   `json:"trip_seconds"`
	IdleSeconds   int64   `json:"idle_seconds"`
	ParkedSeconds int64   `json:"parked_seconds"`
	TotalDistance float64 `json:"total_distance"`
}
