package geo

import "sort"

// Geofence is a circular on-site region. Users are assigned geofences
// through an external assignment relation; this package only ever sees the
// already-resolved candidate set.
type Geofence struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius_meters"`
	Active       bool       `json:"active"`
}

// Contains reports whether point lies inside the fence. The boundary is
// inclusive: a point at exactly RadiusMeters is on site.
func (g Geofence) Contains(point Coordinate) bool {
	return Distance(point, g.Center) <= g.RadiusMeters
}

// Validate reports whether point is inside any active fence in the
// candidate set.
func Validate(point Coordinate, candidates []Geofence) bool {
	for _, g := range candidates {
		if g.Active && g.Contains(point) {
			return true
		}
	}
	return false
}

// NearestMatch returns the active containing fence closest to point. Ties
// on distance break toward the lexically smaller fence ID so repeated calls
// over the same inputs always pick the same fence. The second return is
// false when no candidate qualifies.
func NearestMatch(point Coordinate, candidates []Geofence) (Geofence, bool) {
	matched := make([]Geofence, 0, len(candidates))
	for _, g := range candidates {
		if g.Active && g.Contains(point) {
			matched = append(matched, g)
		}
	}
	if len(matched) == 0 {
		return Geofence{}, false
	}

	sort.Slice(matched, func(i, j int) bool {
		di, dj := Distance(point, matched[i].Center), Distance(point, matched[j].Center)
		if di != dj {
			return di < dj
		}
		return matched[i].ID < matched[j].ID
	})
	return matched[0], true
}
