package attendance

import (
	"context"
	"sort"

	"punchcard/internal/beacon"
	"punchcard/internal/geo"
)

// StaticDirectory is a Directory over fixed in-memory collections. It backs
// tests and single-tenant deployments; hosts with their own assignment
// storage implement Directory directly.
type StaticDirectory struct {
	geofences   map[string]geo.Geofence
	beacons     *beacon.Directory
	assignments map[string][]string
}

// NewStaticDirectory indexes the given catalogue. assignments maps user ids
// to the geofence ids they are assigned to.
func NewStaticDirectory(geofences []geo.Geofence, beacons []beacon.Beacon, assignments map[string][]string) *StaticDirectory {
	byID := make(map[string]geo.Geofence, len(geofences))
	for _, g := range geofences {
		byID[g.ID] = g
	}
	return &StaticDirectory{
		geofences:   byID,
		beacons:     beacon.NewDirectory(beacons, geofences),
		assignments: assignments,
	}
}

func (d *StaticDirectory) AssignedGeofences(_ context.Context, userID string) ([]geo.Geofence, error) {
	ids := d.assignments[userID]
	fences := make([]geo.Geofence, 0, len(ids))
	for _, id := range ids {
		if g, ok := d.geofences[id]; ok {
			fences = append(fences, g)
		}
	}
	sort.Slice(fences, func(i, j int) bool { return fences[i].ID < fences[j].ID })
	return fences, nil
}

func (d *StaticDirectory) ValidateBeacon(_ context.Context, beaconID, userID string) (bool, error) {
	return d.beacons.Validate(beaconID, userID, d.assignments), nil
}

func (d *StaticDirectory) BeaconName(_ context.Context, beaconID string) (string, bool) {
	return d.beacons.ResolveName(beaconID)
}
