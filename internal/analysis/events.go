package analysis

import (
	"strings"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

// ClassifyMessage maps one raw event message onto the safety-event
// categories it belongs to. Categories are non-exclusive: a message
// may count toward several.
func ClassifyMessage(message string) (harshAccel, harshBrake, seatbelt, sos bool) {
	m := strings.ToUpper(message)

	harshAccel = strings.Contains(m, "ACCELERATION") || strings.Contains(m, "ACCEL")
	harshBrake = strings.Contains(m, "BREAK") || strings.Contains(m, "BRAK")
	seatbelt = strings.Contains(m, "SEATBELT") ||
		strings.Contains(m, "SEAT BELT") ||
		(strings.Contains(m, "SEAT") && strings.Contains(m, "BELT"))
	sos = strings.Contains(m, "SOS")

	return harshAccel, harshBrake, seatbelt, sos
}

// CountEvents folds raw messages into per-category counts.
func CountEvents(messages []string) models.EventCounts {
	var counts models.EventCounts
	for _, msg := range messages {
		accel, brake, belt, sos := ClassifyMessage(msg)
		if accel {
			counts.HarshAccel++
		}
		if brake {
			counts.HarshBrake++
		}
		if belt {
			counts.Seatbelt++
		}
		if sos {
			counts.SOS++
		}
	}
	return counts
}
