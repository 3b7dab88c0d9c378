// Package service runs report jobs off the request path and drives
// their lifecycle in the job store.
package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/gpsfleet/fleet-reports-go/internal/analysis"
	"github.com/gpsfleet/fleet-reports-go/internal/geofence"
	"github.com/gpsfleet/fleet-reports-go/internal/jobs"
	"github.com/gpsfleet/fleet-reports-go/internal/models"
	"github.com/gpsfleet/fleet-reports-go/internal/notification"
	"github.com/gpsfleet/fleet-reports-go/internal/repository"
)

// DefaultQueryTimeout bounds all remote data access of one job. A job
// that exceeds it fails rather than hangs.
const DefaultQueryTimeout = 600 * time.Second

const timeLayout = "2006-01-02 15:04:05"

// DeviceSource lists an account's devices.
type DeviceSource interface {
	DevicesByAccount(ctx context.Context, accountID int64) ([]models.Device, error)
}

// TelemetrySource provides ordered position samples.
type TelemetrySource interface {
	PositionsByDevice(ctx context.Context, deviceID int64, start, end time.Time) ([]models.Position, error)
	DistanceBefore(ctx context.Context, deviceID int64, before time.Time) (float64, error)
}

// EventSource provides raw device events.
type EventSource interface {
	EventsByAccount(ctx context.Context, accountID int64, start, end time.Time) ([]repository.EventRow, error)
	OverspeedEvents(ctx context.Context, accountID int64, start, end time.Time, group string) ([]repository.EventRow, error)
	MessagesByDevice(ctx context.Context, deviceIDs []int64, start, end time.Time) (map[int64][]string, error)
}

// Exporter serializes rows into an artifact and returns its location.
type Exporter interface {
	Export(name string, columns []string, rows [][]string) (string, error)
}

// Notifier delivers a finished report. Failures are recorded on the
// job but never fail it.
type Notifier interface {
	Send(recipient string, mail notification.ReportMail, attachmentPath string) error
}

// ReportService maps report requests to workflows and runs each job
// on its own goroutine. The job store is the only state shared with
// concurrent jobs.
type ReportService struct {
	store     *jobs.Store
	devices   DeviceSource
	telemetry TelemetrySource
	events    EventSource
	geofences geofence.Source
	exporter  Exporter
	notifier  Notifier
	timeout   time.Duration
	log       *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(store *jobs.Store, devices DeviceSource, telemetry TelemetrySource,
	events EventSource, geofences geofence.Source, exporter Exporter, notifier Notifier,
	log *zap.Logger) *ReportService {
	return &ReportService{
		store:     store,
		devices:   devices,
		telemetry: telemetry,
		events:    events,
		geofences: geofences,
		exporter:  exporter,
		notifier:  notifier,
		timeout:   DefaultQueryTimeout,
		log:       log,
	}
}

// Submit creates a job for the request and starts its worker.
func (s *ReportService) Submit(params models.ReportParams) (*models.Job, error) {
	if params.End.Before(params.Start) {
		return nil, fmt.Errorf("report window ends before it starts")
	}

	job, err := s.store.Create(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	go s.runJob(job.ID, params)
	return job, nil
}

// GetJob returns a job's current record.
func (s *ReportService) GetJob(id string) (*models.Job, error) {
	return s.store.Get(id)
}

// runJob is the worker procedure. Once started, a job runs to
// completion or failure; there is no mid-flight cancellation.
func (s *ReportService) runJob(jobID string, params models.ReportParams) {
	log := s.log.With(zap.String("job_id", jobID), zap.String("report", string(params.Report)))
	log.Info("report job started")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.store.UpdateProgress(jobID, 10, models.JobStatusProcessing)

	// The workflow reports its internal [0,1] fraction; map it onto
	// the 10-80 band of the job's progress.
	progress := func(frac float64) {
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		s.store.UpdateProgress(jobID, 10+int(frac*70), "")
	}

	columns, rows, err := s.generate(ctx, params, progress)
	if err != nil {
		log.Error("report generation failed", zap.Error(err))
		s.store.Fail(jobID, err.Error())
		return
	}

	s.store.UpdateProgress(jobID, 80, models.JobStatusExporting)

	artifact, err := s.exporter.Export(params.Report.Name(), columns, rows)
	if err != nil {
		log.Error("report export failed", zap.Error(err))
		s.store.Fail(jobID, err.Error())
		return
	}

	if params.EmailTo != "" && s.notifier != nil {
		s.store.UpdateProgress(jobID, 90, models.JobStatusSendingEmail)
		mail := notification.ReportMail{
			ReportName: params.Report.Name(),
			Start:      params.Start.Format(timeLayout),
			End:        params.End.Format(timeLayout),
			JobID:      jobID,
		}
		if err := s.notifier.Send(params.EmailTo, mail, artifact); err != nil {
			// Recorded on the job; the job still completes.
			log.Warn("report notification failed", zap.Error(err))
			s.store.RecordEmailError(jobID, err.Error())
		}
	}

	s.store.Complete(jobID, artifact)
	log.Info("report job complete", zap.String("artifact", artifact))
}

func (s *ReportService) generate(ctx context.Context, params models.ReportParams, progress func(float64)) ([]string, [][]string, error) {
	switch params.Report.WorkflowFor() {
	case models.WorkflowTrip:
		return s.generateTrip(ctx, params, progress)
	case models.WorkflowFleet:
		return s.generateFleet(ctx, params, progress)
	default:
		return s.generateTabular(ctx, params, progress)
	}
}

// generateTrip runs the segmentation engine per device. Devices with
// no in-window samples are excluded; a device whose telemetry lookup
// fails is treated as having no data and skipped.
func (s *ReportService) generateTrip(ctx context.Context, params models.ReportParams, progress func(float64)) ([]string, [][]string, error) {
	columns := []string{"Device Name", "State", "Start Time", "End Time", "Duration",
		"Location", "Distance (km)", "Avg Speed (km/h)"}

	fences, err := geofence.Load(s.geofences, params.AccountID, s.log)
	if err != nil {
		return nil, nil, err
	}

	devices, err := s.devices.DevicesByAccount(ctx, params.AccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list devices: %w", err)
	}

	var rows [][]string
	for i, device := range devices {
		positions, err := s.telemetry.PositionsByDevice(ctx, device.ID, params.Start, params.End)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, fmt.Errorf("telemetry query timed out: %w", err)
			}
			s.log.Warn("skipping device with failed telemetry lookup",
				zap.Int64("device_id", device.ID), zap.Error(err))
			progress(float64(i+1) / float64(len(devices)))
			continue
		}
		if len(positions) == 0 {
			progress(float64(i+1) / float64(len(devices)))
			continue
		}

		segments, stats := analysis.Segment(device.ID, positions, fences)
		for _, seg := range segments {
			row := []string{
				device.Name,
				string(seg.State),
				seg.StartTime.Format(timeLayout),
				seg.StopTime.Format(timeLayout),
				formatDuration(int64(seg.Duration().Seconds())),
				seg.GeofenceName,
				"",
				"",
			}
			if seg.State == models.StateRun {
				row[6] = formatKm(seg.Distance)
				row[7] = formatKm(seg.AvgSpeed)
			}
			rows = append(rows, row)
		}
		rows = append(rows, []string{
			device.Name, "totals",
			formatDuration(stats.TripSeconds) + " run",
			formatDuration(stats.IdleSeconds) + " idle",
			formatDuration(stats.ParkedSeconds) + " parked",
			"",
			formatKm(stats.TotalDistance),
			"",
		})

		progress(float64(i+1) / float64(len(devices)))
	}

	return columns, rows, nil
}

// generateFleet builds one summary row per device. Every device gets
// a row; a device without in-window samples is zero-filled.
func (s *ReportService) generateFleet(ctx context.Context, params models.ReportParams, progress func(float64)) ([]string, [][]string, error) {
	columns := []string{"Device Name", "IMEI", "Start Time", "Stop Time",
		"Driver Timesheet", "Idle Time", "Trip Time", "Distance (km)",
		"Start Odometer", "End Odometer",
		"Harsh Acceleration", "Harsh Braking", "Seatbelt", "SOS"}

	devices, err := s.devices.DevicesByAccount(ctx, params.AccountID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list devices: %w", err)
	}

	deviceIDs := make([]int64, len(devices))
	for i, d := range devices {
		deviceIDs[i] = d.ID
	}
	messages, err := s.events.MessagesByDevice(ctx, deviceIDs, params.Start, params.End)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load events: %w", err)
	}

	var rows [][]string
	for i, device := range devices {
		positions, err := s.telemetry.PositionsByDevice(ctx, device.ID, params.Start, params.End)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, fmt.Errorf("telemetry query timed out: %w", err)
			}
			s.log.Warn("treating device with failed telemetry lookup as empty",
				zap.Int64("device_id", device.ID), zap.Error(err))
			positions = nil
		}

		historical, err := s.telemetry.DistanceBefore(ctx, device.ID, params.Start)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, fmt.Errorf("telemetry query timed out: %w", err)
			}
			s.log.Warn("odometer baseline lookup failed, using zero",
				zap.Int64("device_id", device.ID), zap.Error(err))
			historical = 0
		}

		counts := analysis.CountEvents(messages[device.ID])
		row := analysis.Aggregate(device, positions, historical, counts)
		rows = append(rows, fleetRow(row))

		progress(float64(i+1) / float64(len(devices)))
	}

	return columns, rows, nil
}

func fleetRow(row models.FleetRow) []string {
	start, stop := "", ""
	if row.StartTime != nil {
		start = row.StartTime.Format(timeLayout)
	}
	if row.StopTime != nil {
		stop = row.StopTime.Format(timeLayout)
	}
	return []string{
		row.Device.Name,
		row.Device.IMEI,
		start,
		stop,
		formatDuration(row.TimesheetSeconds),
		formatDuration(row.IdleSeconds),
		formatDuration(row.TripSeconds),
		formatKm(row.Distance),
		formatKm(row.StartOdometer),
		formatKm(row.EndOdometer),
		strconv.Itoa(row.Events.HarshAccel),
		strconv.Itoa(row.Events.HarshBrake),
		strconv.Itoa(row.Events.Seatbelt),
		strconv.Itoa(row.Events.SOS),
	}
}

// generateTabular serves the single-query list reports.
func (s *ReportService) generateTabular(ctx context.Context, params models.ReportParams, progress func(float64)) ([]string, [][]string, error) {
	defer progress(1)

	switch params.Report {
	case models.ReportDeviceList:
		devices, err := s.devices.DevicesByAccount(ctx, params.AccountID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list devices: %w", err)
		}
		columns := []string{"ID", "Device Name", "IMEI", "Group", "Plate Number"}
		rows := make([][]string, 0, len(devices))
		for _, d := range devices {
			rows = append(rows, []string{
				strconv.FormatInt(d.ID, 10), d.Name, d.IMEI, d.Group, d.PlateNumber,
			})
		}
		return columns, rows, nil

	case models.ReportOverspeedBus, models.ReportOverspeedHeavy, models.ReportOverspeedLight:
		group := map[models.ReportType]string{
			models.ReportOverspeedBus:   "BUS",
			models.ReportOverspeedHeavy: "HEAVY",
			models.ReportOverspeedLight: "LIGHT",
		}[params.Report]
		events, err := s.events.OverspeedEvents(ctx, params.AccountID, params.Start, params.End, group)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to query overspeed events: %w", err)
		}
		return eventColumns(), eventRows(events), nil

	case models.ReportEventLog:
		events, err := s.events.EventsByAccount(ctx, params.AccountID, params.Start, params.End)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to query events: %w", err)
		}
		return eventColumns(), eventRows(events), nil

	case models.ReportSeatbelt, models.ReportSOS, models.ReportHarshBrake, models.ReportHarshAccel:
		events, err := s.events.EventsByAccount(ctx, params.AccountID, params.Start, params.End)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to query events: %w", err)
		}
		return eventColumns(), eventRows(filterEvents(events, params.Report)), nil

	default:
		return nil, nil, fmt.Errorf("no tabular query for report type %q", params.Report)
	}
}

// filterEvents keeps the events whose classified categories include
// the one the report asks for.
func filterEvents(events []repository.EventRow, report models.ReportType) []repository.EventRow {
	var out []repository.EventRow
	for _, e := range events {
		accel, brake, belt, sos := analysis.ClassifyMessage(e.Message)
		keep := false
		switch report {
		case models.ReportHarshAccel:
			keep = accel
		case models.ReportHarshBrake:
			keep = brake
		case models.ReportSeatbelt:
			keep = belt
		case models.ReportSOS:
			keep = sos
		}
		if keep {
			out = append(out, e)
		}
	}
	return out
}

func eventColumns() []string {
	return []string{"Event ID", "Device Name", "Group", "IMEI", "Speed", "Event Time", "Message", "Location"}
}

func eventRows(events []repository.EventRow) [][]string {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			strconv.FormatInt(e.EventID, 10),
			e.DeviceName,
			e.Group,
			e.IMEI,
			formatKm(e.Speed),
			e.CreatedAt.Format(timeLayout),
			e.Message,
			fmt.Sprintf("%f, %f", e.Latitude, e.Longitude),
		})
	}
	return rows
}

// formatDuration renders seconds as "XhYm", matching the dashboard's
// duration columns.
func formatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
