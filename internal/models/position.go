package models

import "time"

// Position represents a single telemetry sample for one device.
// Samples are ordered by Timestamp within a device and may be sparse
// or entirely absent for a device/window.
type Position struct {
	DeviceID  int64     `json:"device_id" db:"device_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Speed     float64   `json:"speed" db:"speed"` // km/h
	Ignition  bool      `json:"ignition" db:"ignition"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`

	// Distance is the incremental distance in km since the previous
	// sample, as reported by the device. It is never recomputed.
	Distance float64 `json:"distance" db:"distance"`
}

// Device represents a tracked vehicle.
type Device struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	IMEI        string `json:"imei" db:"imei"`
	Group       string `json:"group,omitempty" db:"group_title"`
	PlateNumber string `json:"plate_number,omitempty" db:"plate_number"`
}
