// Package beacon resolves short-range beacon sightings to geofences and
// decides whether a user is entitled to check in against them. A beacon
// that cannot be resolved is a normal outcome, not an error: unknown,
// inactive, and unassigned beacons all validate to false.
package beacon

import "punchcard/internal/geo"

// Beacon ties an external beacon identifier to the geofence it is
// installed in. The geofence reference is an id, resolved through the
// caller-supplied directory, never an embedded object.
type Beacon struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	GeofenceID string `json:"geofence_id"`
	Active     bool   `json:"active"`
}

// Directory is the read-only beacon and geofence catalogue supplied per
// call by the host system.
type Directory struct {
	beacons   map[string]Beacon
	geofences map[string]geo.Geofence
}

// NewDirectory indexes the given beacons and geofences by id.
func NewDirectory(beacons []Beacon, geofences []geo.Geofence) *Directory {
	d := &Directory{
		beacons:   make(map[string]Beacon, len(beacons)),
		geofences: make(map[string]geo.Geofence, len(geofences)),
	}
	for _, b := range beacons {
		d.beacons[b.ID] = b
	}
	for _, g := range geofences {
		d.geofences[g.ID] = g
	}
	return d
}

// Validate reports whether beaconID resolves to an active beacon whose
// geofence is active and assigned to userID. assignments maps user ids to
// the set of geofence ids they may attend from.
func (d *Directory) Validate(beaconID, userID string, assignments map[string][]string) bool {
	b, ok := d.beacons[beaconID]
	if !ok || !b.Active {
		return false
	}
	fence, ok := d.geofences[b.GeofenceID]
	if !ok || !fence.Active {
		return false
	}
	for _, assigned := range assignments[userID] {
		if assigned == fence.ID {
			return true
		}
	}
	return false
}

// ResolveName returns the display name for a beacon id. The second return
// is false for unknown ids.
func (d *Directory) ResolveName(beaconID string) (string, bool) {
	b, ok := d.beacons[beaconID]
	if !ok {
		return "", false
	}
	return b.Name, true
}

// ResolveGeofence returns the geofence a beacon is installed in, when both
// the beacon and the geofence are known.
func (d *Directory) ResolveGeofence(beaconID string) (geo.Geofence, bool) {
	b, ok := d.beacons[beaconID]
	if !ok {
		return geo.Geofence{}, false
	}
	fence, ok := d.geofences[b.GeofenceID]
	return fence, ok
}
