package beacon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"punchcard/internal/geo"
)

func testDirectory() *Directory {
	return NewDirectory(
		[]Beacon{
			{ID: "bcn-lobby", Name: "Lobby entrance", GeofenceID: "gf-hq", Active: true},
			{ID: "bcn-dark", Name: "Decommissioned", GeofenceID: "gf-hq", Active: false},
			{ID: "bcn-annex", Name: "Annex door", GeofenceID: "gf-annex", Active: true},
			{ID: "bcn-orphan", Name: "Orphaned", GeofenceID: "gf-gone", Active: true},
		},
		[]geo.Geofence{
			{ID: "gf-hq", Name: "Headquarters", Active: true},
			{ID: "gf-annex", Name: "Annex", Active: false},
		},
	)
}

func TestValidate(t *testing.T) {
	dir := testDirectory()
	assignments := map[string][]string{
		"user-1": {"gf-hq"},
		"user-2": {"gf-annex"},
	}

	cases := []struct {
		name     string
		beaconID string
		userID   string
		want     bool
	}{
		{"assigned user against active beacon", "bcn-lobby", "user-1", true},
		{"user not assigned to the geofence", "bcn-lobby", "user-2", false},
		{"inactive beacon", "bcn-dark", "user-1", false},
		{"beacon in inactive geofence", "bcn-annex", "user-2", false},
		{"beacon referencing a missing geofence", "bcn-orphan", "user-1", false},
		{"unknown beacon", "bcn-nope", "user-1", false},
		{"user with no assignments at all", "bcn-lobby", "user-3", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, dir.Validate(tc.beaconID, tc.userID, assignments))
		})
	}
}

func TestResolveName(t *testing.T) {
	dir := testDirectory()

	name, ok := dir.ResolveName("bcn-lobby")
	require.True(t, ok)
	assert.Equal(t, "Lobby entrance", name)

	_, ok = dir.ResolveName("bcn-nope")
	assert.False(t, ok)
}

func TestResolveGeofence(t *testing.T) {
	dir := testDirectory()

	fence, ok := dir.ResolveGeofence("bcn-lobby")
	require.True(t, ok)
	assert.Equal(t, "gf-hq", fence.ID)

	_, ok = dir.ResolveGeofence("bcn-orphan")
	assert.False(t, ok, "beacon pointing at a missing geofence does not resolve")
}
