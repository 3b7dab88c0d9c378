package spatial

// Point represents a 2D point with latitude and longitude
type Point struct {
	Lat float64
	Lon float64
}

// PointInPolygon checks if a point is inside a polygon using ray casting.
// The edge rule is asymmetric: for each edge the point's latitude must lie
// strictly between the vertex latitudes (one endpoint inclusive, one
// exclusive) and the point's longitude must be less than the edge longitude
// interpolated at the point's latitude. A polygon with fewer than 3
// vertices contains nothing.
func PointInPolygon(point Point, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	j := len(polygon) - 1

	for i := 0; i < len(polygon); i++ {
		if ((polygon[i].Lat > point.Lat) != (polygon[j].Lat > point.Lat)) &&
			(point.Lon < (polygon[j].Lon-polygon[i].Lon)*(point.Lat-polygon[i].Lat)/(polygon[j].Lat-polygon[i].Lat)+polygon[i].Lon) {
			inside = !inside
		}
		j = i
	}

	return inside
}
