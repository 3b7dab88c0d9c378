package analysis

import (
	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

// Aggregate builds one device's fleet summary row from its ordered
// in-window positions, the cumulative distance recorded strictly
// before the window start, and its safety-event counts.
//
// A device with zero in-window samples still produces a zero-filled
// row whose odometer pair is the historical distance. This contrasts
// with Segment, which excludes empty devices; both policies are
// intentional.
func Aggregate(device models.Device, positions []models.Position, historicalDistance float64, events models.EventCounts) models.FleetRow {
	row := models.FleetRow{
		Device:        device,
		StartOdometer: historicalDistance,
		EndOdometer:   historicalDistance,
		Events:        events,
	}

	if len(positions) == 0 {
		return row
	}

	// start/stop: first and last ignition-on samples.
	for i := range positions {
		if positions[i].Ignition {
			t := positions[i].Timestamp
			if row.StartTime == nil {
				start := t
				row.StartTime = &start
			}
			stop := t
			row.StopTime = &stop
		}
	}
	if row.StartTime != nil && row.StopTime != nil {
		row.TimesheetSeconds = int64(row.StopTime.Sub(*row.StartTime).Seconds())
	}

	// Idle/trip split over consecutive pairs. The delta after an
	// ignition-off sample is not attributed to either bucket.
	for i := 1; i < len(positions); i++ {
		prev, cur := positions[i-1], positions[i]
		if !prev.Ignition {
			continue
		}
		delta := int64(cur.Timestamp.Sub(prev.Timestamp).Seconds())
		if cur.Speed > SpeedThreshold {
			row.TripSeconds += delta
		} else {
			row.IdleSeconds += delta
		}
	}

	// Two distance sums with different gates: the report distance
	// counts only moving samples, while the odometer advances by every
	// sample's increment regardless of moving state.
	var tripDistance, odometerDistance float64
	for _, p := range positions {
		odometerDistance += p.Distance
		if p.Speed > SpeedThreshold {
			tripDistance += p.Distance
		}
	}
	row.Distance = tripDistance
	row.EndOdometer = historicalDistance + odometerDistance

	return row
}
