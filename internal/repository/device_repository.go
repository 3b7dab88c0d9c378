package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

// DeviceRepository handles database operations for devices
type DeviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *sql.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// DevicesByAccount retrieves an account's non-deleted devices ordered
// by name. An unknown account yields an empty list.
func (r *DeviceRepository) DevicesByAccount(ctx context.Context, accountID int64) ([]models.Device, error) {
	query := `SELECT id, name, imei, COALESCE(group_title, ''), COALESCE(plate_number, '')
		FROM devices
		WHERE account_id = ? AND deleted = 0
		ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		var d models.Device
		if err := rows.Scan(&d.ID, &d.Name, &d.IMEI, &d.Group, &d.PlateNumber); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read devices: %w", err)
	}

	return devices, nil
}
