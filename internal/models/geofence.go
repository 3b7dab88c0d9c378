package models

import "database/sql"

// Geofence type constants as stored in the geofences table.
const (
	GeofenceTypePolygon = "polygon"
	GeofenceTypeCircle  = "circle"
)

// GeofenceRow is the raw geofence record as it comes back from the
// geofence source. Geometry is parsed by the geofence package; a row
// whose geometry fails to parse is skipped, not fatal.
type GeofenceRow struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Type        string          `json:"type" db:"type"`
	Coordinates string          `json:"coordinates,omitempty" db:"coordinates"` // JSON [[lat,lng],...] for polygons
	CenterLat   sql.NullFloat64 `json:"center_lat,omitempty" db:"center_lat"`
	CenterLng   sql.NullFloat64 `json:"center_lng,omitempty" db:"center_lng"`
	RadiusM     sql.NullFloat64 `json:"radius_m,omitempty" db:"radius_m"`
}
