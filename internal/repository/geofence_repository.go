package repository

import (
	"database/sql"
	"fmt"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
)

// GeofenceRepository handles database operations for geofences
type GeofenceRepository struct {
	db *sql.DB
}

// NewGeofenceRepository creates a new geofence repository
func NewGeofenceRepository(db *sql.DB) *GeofenceRepository {
	return &GeofenceRepository{db: db}
}

// GeofencesByAccount retrieves an account's geofence rows in creation
// order. Geometry is returned raw; parsing (and per-row parse
// failures) are the geofence package's concern.
func (r *GeofenceRepository) GeofencesByAccount(accountID int64) ([]models.GeofenceRow, error) {
	query := `SELECT id, name, type, COALESCE(coordinates, ''), center_lat, center_lng, radius_m
		FROM geofences
		WHERE account_id = ?
		ORDER BY id`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query geofences for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var fences []models.GeofenceRow
	for rows.Next() {
		var g models.GeofenceRow
		if err := rows.Scan(&g.ID, &g.Name, &g.Type, &g.Coordinates, &g.CenterLat, &g.CenterLng, &g.RadiusM); err != nil {
			return nil, fmt.Errorf("failed to scan geofence: %w", err)
		}
		fences = append(fences, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read geofences: %w", err)
	}

	return fences, nil
}
