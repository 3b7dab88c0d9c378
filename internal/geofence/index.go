// Package geofence resolves a coordinate to the name of the first
// geofence that contains it.
package geofence

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/gpsfleet/fleet-reports-go/internal/models"
	"github.com/gpsfleet/fleet-reports-go/internal/spatial"
)

// Geofence is a parsed geofence shape. Exactly one of Polygon or the
// circle fields is populated, selected by Type.
type Geofence struct {
	ID      int64
	Name    string
	Type    string
	Polygon []spatial.Point
	Center  spatial.Point
	RadiusM float64
}

// Contains tests point containment for a single geofence.
func (g *Geofence) Contains(lat, lng float64) bool {
	switch g.Type {
	case models.GeofenceTypePolygon:
		return spatial.PointInPolygon(spatial.Point{Lat: lat, Lon: lng}, g.Polygon)
	case models.GeofenceTypeCircle:
		// Boundary inclusive: a point at exactly RadiusM is inside.
		return spatial.HaversineDistance(lat, lng, g.Center.Lat, g.Center.Lon) <= g.RadiusM
	default:
		return false
	}
}

// Source provides raw geofence rows for an account.
type Source interface {
	GeofencesByAccount(accountID int64) ([]models.GeofenceRow, error)
}

// Index holds an account's parsed geofences in load order.
type Index struct {
	geofences []Geofence
}

// Load fetches and parses an account's geofences. A row whose geometry
// fails to parse is skipped; loading continues.
func Load(src Source, accountID int64, log *zap.Logger) (*Index, error) {
	rows, err := src.GeofencesByAccount(accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load geofences: %w", err)
	}

	idx := &Index{geofences: make([]Geofence, 0, len(rows))}
	for _, row := range rows {
		g, err := parseRow(row)
		if err != nil {
			log.Warn("skipping geofence with bad geometry",
				zap.Int64("geofence_id", row.ID),
				zap.String("name", row.Name),
				zap.Error(err))
			continue
		}
		idx.geofences = append(idx.geofences, g)
	}

	return idx, nil
}

// NewIndex builds an index from already-parsed geofences, in order.
func NewIndex(geofences []Geofence) *Index {
	return &Index{geofences: geofences}
}

// Resolve returns the name of the first geofence containing the point,
// or "" if none does. There is no overlap resolution: load order wins.
func (idx *Index) Resolve(lat, lng float64) string {
	for i := range idx.geofences {
		if idx.geofences[i].Contains(lat, lng) {
			return idx.geofences[i].Name
		}
	}
	return ""
}

// Len returns the number of loaded geofences.
func (idx *Index) Len() int {
	return len(idx.geofences)
}

func parseRow(row models.GeofenceRow) (Geofence, error) {
	g := Geofence{ID: row.ID, Name: row.Name, Type: row.Type}

	switch row.Type {
	case models.GeofenceTypePolygon:
		var coords [][]float64
		if err := json.Unmarshal([]byte(row.Coordinates), &coords); err != nil {
			return g, fmt.Errorf("invalid polygon coordinates: %w", err)
		}
		if len(coords) < 3 {
			return g, fmt.Errorf("polygon has %d vertices, need at least 3", len(coords))
		}
		g.Polygon = make([]spatial.Point, 0, len(coords))
		for _, c := range coords {
			if len(c) != 2 {
				return g, fmt.Errorf("invalid polygon vertex: %v", c)
			}
			g.Polygon = append(g.Polygon, spatial.Point{Lat: c[0], Lon: c[1]})
		}
	case models.GeofenceTypeCircle:
		if !row.CenterLat.Valid || !row.CenterLng.Valid || !row.RadiusM.Valid {
			return g, fmt.Errorf("circle geofence missing center or radius")
		}
		if row.RadiusM.Float64 <= 0 {
			return g, fmt.Errorf("circle geofence has non-positive radius %f", row.RadiusM.Float64)
		}
		g.Center = spatial.Point{Lat: row.CenterLat.Float64, Lon: row.CenterLng.Float64}
		g.RadiusM = row.RadiusM.Float64
	default:
		return g, fmt.Errorf("unknown geofence type: %q", row.Type)
	}

	return g, nil
}
