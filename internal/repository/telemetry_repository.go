package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

// TelemetryRepository handles database operations for position samples
type TelemetryRepository struct {
	db *sql.DB
}

// NewTelemetryRepository creates a new telemetry repository
func NewTelemetryRepository(db *sql.DB) *TelemetryRepository {
	return &TelemetryRepository{db: db}
}

// PositionsByDevice retrieves one device's samples in [start, end],
// ordered by timestamp. An empty result is valid, not an error.
func (r *TelemetryRepository) PositionsByDevice(ctx context.Context, deviceID int64, start, end time.Time) ([]models.Position, error) {
	query := `SELECT device_id, timestamp, speed, ignition, latitude, longitude, distance
		FROM positions
		WHERE device_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp`

	rows, err := r.db.QueryContext(ctx, query, deviceID, start.Unix(), end.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for device %d: %w", deviceID, err)
	}
	defer rows.Close()

	var positions []models.Position
	for rows.Next() {
		var p models.Position
		var ts int64
		var ignition int
		if err := rows.Scan(&p.DeviceID, &ts, &p.Speed, &ignition, &p.Latitude, &p.Longitude, &p.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		p.Timestamp = time.Unix(ts, 0).UTC()
		p.Ignition = ignition != 0
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}

	return positions, nil
}

// DistanceBefore returns the cumulative distance recorded strictly
// before the given instant. Used as the start odometer.
func (r *TelemetryRepository) DistanceBefore(ctx context.Context, deviceID int64, before time.Time) (float64, error) {
	var total sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(distance) FROM positions WHERE device_id = ? AND timestamp < ?`,
		deviceID, before.Unix()).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum distance for device %d: %w", deviceID, err)
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}
