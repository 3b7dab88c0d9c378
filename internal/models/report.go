package models

import (
	"fmt"
	"time"
)

// ReportType is the stable identifier of a report. Dispatch is by this
// enum only; report display names are never inspected.
type ReportType string

// Report types.
const (
	ReportDeviceList     ReportType = "device_list"
	ReportOverspeedBus   ReportType = "overspeed_bus"
	ReportOverspeedHeavy ReportType = "overspeed_heavy"
	ReportOverspeedLight ReportType = "overspeed_light"
	ReportTrip           ReportType = "trip"
	ReportSeatbelt       ReportType = "seatbelt"
	ReportSOS            ReportType = "sos"
	ReportHarshBrake     ReportType = "harsh_brake"
	ReportHarshAccel     ReportType = "harsh_accel"
	ReportEventLog       ReportType = "event_log"
	ReportFleetSummary   ReportType = "fleet_summary"
)

// Workflow selects the generation strategy for a report type.
type Workflow int

// Workflows.
const (
	WorkflowTabular Workflow = iota // one typed list query
	WorkflowTrip                    // trip segmentation engine
	WorkflowFleet                   // fleet summary aggregation
)

// ReportInfo describes a report type for listing endpoints.
type ReportInfo struct {
	Type        ReportType `json:"type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
}

var reportRegistry = []ReportInfo{
	{ReportDeviceList, "Device List", "Current list of all devices with location"},
	{ReportOverspeedBus, "Bus Overspeeding Report", "Overspeeding events for Bus vehicles"},
	{ReportOverspeedHeavy, "Heavy Overspeeding Report", "Overspeeding events for Heavy vehicles"},
	{ReportOverspeedLight, "Light Overspeeding Report", "Overspeeding events for Light vehicles"},
	{ReportTrip, "Trip Report", "Vehicle trip status with Idle, Run & Parked segments"},
	{ReportSeatbelt, "Seatbelt Violation Report", "Seatbelt off while moving"},
	{ReportSOS, "SOS Alert Report", "SOS emergency alerts"},
	{ReportHarshBrake, "Harsh Braking Report", "Harsh braking events"},
	{ReportHarshAccel, "Harsh Acceleration Report", "Harsh acceleration events"},
	{ReportEventLog, "Event Log", "All device events in the selected window"},
	{ReportFleetSummary, "Fleet Summary Report", "Daily fleet summary with vehicle times, distances, and event counts"},
}

// Reports returns the report registry in listing order.
func Reports() []ReportInfo {
	out := make([]ReportInfo, len(reportRegistry))
	copy(out, reportRegistry)
	return out
}

// ParseReportType validates a report type identifier.
func ParseReportType(s string) (ReportType, error) {
	for _, r := range reportRegistry {
		if string(r.Type) == s {
			return r.Type, nil
		}
	}
	return "", fmt.Errorf("unknown report type: %q", s)
}

// WorkflowFor maps a report type to its generation workflow.
func (t ReportType) WorkflowFor() Workflow {
	switch t {
	case ReportTrip:
		return WorkflowTrip
	case ReportFleetSummary:
		return WorkflowFleet
	default:
		return WorkflowTabular
	}
}

// Name returns the display name for a report type.
func (t ReportType) Name() string {
	for _, r := range reportRegistry {
		if r.Type == t {
			return r.Name
		}
	}
	return string(t)
}

// ReportParams are the inputs of one report job.
type ReportParams struct {
	AccountID int64      `json:"account_id"`
	Report    ReportType `json:"report"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	EmailTo   string     `json:"email_to,omitempty"`
}
