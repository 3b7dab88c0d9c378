// Package analysis contains the trip/fleet analytics engine: the
// segmentation state machine, the fleet odometer/duration aggregator
// and the safety-event classifier.
package analysis

import (
	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

// SpeedThreshold separates idle from run, in km/h.
const SpeedThreshold = 2.0

// GeofenceResolver labels a coordinate with a geofence name, or ""
// when no geofence contains it. It is called once per segment open,
// not per sample.
type GeofenceResolver interface {
	Resolve(lat, lng float64) string
}

// stateOf classifies one sample: parked if ignition is off, run above
// the speed threshold, idle otherwise.
func stateOf(p models.Position) models.SegmentState {
	switch {
	case !p.Ignition:
		return models.StateParked
	case p.Speed > SpeedThreshold:
		return models.StateRun
	default:
		return models.StateIdle
	}
}

// openSegment is the segment currently being extended.
type openSegment struct {
	seg       models.Segment
	runSpeeds []float64
}

// Segment converts one device's ordered position stream into a
// contiguous, non-overlapping segment sequence plus per-vehicle
// totals. A device with zero samples yields (nil, zero stats); the
// caller excludes it from output entirely.
func Segment(deviceID int64, positions []models.Position, fences GeofenceResolver) ([]models.Segment, models.VehicleTripStats) {
	if len(positions) == 0 {
		return nil, models.VehicleTripStats{}
	}

	var segments []models.Segment
	cur := open(deviceID, positions[0], fences)

	for _, p := range positions[1:] {
		state := stateOf(p)
		if state == cur.seg.State {
			// Extend: advance the stop candidate; run segments also
			// accumulate distance and collect speeds for averaging.
			cur.seg.StopTime = p.Timestamp
			if state == models.StateRun {
				cur.seg.Distance += p.Distance
				cur.runSpeeds = append(cur.runSpeeds, p.Speed)
			}
			continue
		}

		// State change: close at the state-changing sample's time so
		// the sequence stays contiguous, then open the next segment
		// from that same sample.
		cur.seg.StopTime = p.Timestamp
		segments = append(segments, cur.close())
		cur = open(deviceID, p, fences)
	}

	segments = append(segments, cur.close())
	return segments, foldStats(segments)
}

func open(deviceID int64, p models.Position, fences GeofenceResolver) openSegment {
	cur := openSegment{
		seg: models.Segment{
			DeviceID:  deviceID,
			State:     stateOf(p),
			StartTime: p.Timestamp,
			StopTime:  p.Timestamp,
			StartLat:  p.Latitude,
			StartLng:  p.Longitude,
		},
	}
	if fences != nil {
		cur.seg.GeofenceName = fences.Resolve(p.Latitude, p.Longitude)
	}
	if cur.seg.State == models.StateRun {
		cur.seg.Distance = p.Distance
		cur.runSpeeds = append(cur.runSpeeds, p.Speed)
	}
	return cur
}

func (o openSegment) close() models.Segment {
	seg := o.seg
	if seg.State == models.StateRun && len(o.runSpeeds) > 0 {
		var sum float64
		for _, s := range o.runSpeeds {
			sum += s
		}
		seg.AvgSpeed = sum / float64(len(o.runSpeeds))
	}
	return seg
}

// foldStats sums segment durations and distance per state.
func foldStats(segments []models.Segment) models.VehicleTripStats {
	var stats models.VehicleTripStats
	for _, seg := range segments {
		secs := int64(seg.Duration().Seconds())
		switch seg.State {
		case models.StateRun:
			stats.TripSeconds += secs
			stats.TotalDistance += seg.Distance
		case models.StateIdle:
			stats.IdleSeconds += secs
		case models.StateParked:
			stats.ParkedSeconds += secs
		}
	}
	return stats
}
