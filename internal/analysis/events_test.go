package analysis

import (
	"testing"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		message  string
		accel    bool
		brake    bool
		seatbelt bool
		sos      bool
	}{
		{"Harsh Acceleration detected", true, false, false, false},
		{"HARSH ACCEL", true, false, false, false},
		{"Harsh Breaking", false, true, false, false},
		{"harsh braking event", false, true, false, false},
		{"SEATBELT violation", false, false, true, false},
		{"Seat Belt off while moving", false, false, true, false},
		{"SEAT and BELT warning", false, false, true, false},
		{"SOS", false, false, false, true},
		{"Driver pressed SOS button", false, false, false, true},
		{"Geofence exit", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			accel, brake, seatbelt, sos := ClassifyMessage(tt.message)
			if accel != tt.accel || brake != tt.brake || seatbelt != tt.seatbelt || sos != tt.sos {
				t.Errorf("ClassifyMessage(%q) = (%v,%v,%v,%v), want (%v,%v,%v,%v)",
					tt.message, accel, brake, seatbelt, sos, tt.accel, tt.brake, tt.seatbelt, tt.sos)
			}
		})
	}
}

func TestClassifyMessage_NonExclusive(t *testing.T) {
	accel, brake, _, sos := ClassifyMessage("SOS after harsh acceleration and braking")
	if !accel || !brake || !sos {
		t.Error("one message may count toward several categories")
	}
}

func TestCountEvents(t *testing.T) {
	counts := CountEvents([]string{
		"Harsh Acceleration",
		"Harsh Acceleration",
		"Harsh Braking",
		"Seatbelt off",
		"SOS",
		"routine ping",
	})

	want := models.EventCounts{HarshAccel: 2, HarshBrake: 1, Seatbelt: 1, SOS: 1}
	if counts != want {
		t.Errorf("CountEvents = %+v, want %+v", counts, want)
	}
}

func TestCountEvents_Empty(t *testing.T) {
	if counts := CountEvents(nil); counts != (models.EventCounts{}) {
		t.Errorf("CountEvents(nil) = %+v, want zero", counts)
	}
}
