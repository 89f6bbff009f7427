package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// riyadhHQ is the reference site used across the geofence tests.
var riyadhHQ = Coordinate{Latitude: 24.7136, Longitude: 46.6753}

// offsetNorth returns a point approximately meters north of c. One degree
// of latitude spans ~111,195 m of arc at the Earth radius used here.
func offsetNorth(c Coordinate, meters float64) Coordinate {
	return Coordinate{
		Latitude:  c.Latitude + meters/111195.0,
		Longitude: c.Longitude,
	}
}

func TestDistanceZeroForEqualPoints(t *testing.T) {
	assert.Zero(t, Distance(riyadhHQ, riyadhHQ))
}

func TestDistanceSymmetry(t *testing.T) {
	pairs := []struct {
		a, b Coordinate
	}{
		{riyadhHQ, Coordinate{Latitude: 24.72, Longitude: 46.68}},
		{Coordinate{Latitude: 51.5074, Longitude: -0.1278}, Coordinate{Latitude: 48.8566, Longitude: 2.3522}},
		{Coordinate{Latitude: -33.8688, Longitude: 151.2093}, Coordinate{Latitude: 35.6762, Longitude: 139.6503}},
	}
	for _, p := range pairs {
		assert.InDelta(t, Distance(p.a, p.b), Distance(p.b, p.a), 1e-9)
	}
}

func TestDistanceKnownValue(t *testing.T) {
	// London to Paris is ~343.5 km by great circle.
	london := Coordinate{Latitude: 51.5074, Longitude: -0.1278}
	paris := Coordinate{Latitude: 48.8566, Longitude: 2.3522}
	assert.InDelta(t, 343500, Distance(london, paris), 1500)
}

func TestDistanceIncreasesWithSeparation(t *testing.T) {
	near := offsetNorth(riyadhHQ, 10)
	far := offsetNorth(riyadhHQ, 100)
	assert.Less(t, Distance(riyadhHQ, near), Distance(riyadhHQ, far))
}

func TestCoordinateValid(t *testing.T) {
	assert.True(t, riyadhHQ.Valid())
	assert.False(t, Coordinate{Latitude: 91}.Valid())
	assert.False(t, Coordinate{Longitude: -181}.Valid())
}

func TestGeofenceBoundaryInclusive(t *testing.T) {
	fence := Geofence{ID: "hq", Center: riyadhHQ, RadiusMeters: 50, Active: true}

	assert.True(t, fence.Contains(riyadhHQ), "center is within")
	assert.True(t, fence.Contains(offsetNorth(riyadhHQ, 50)), "point at exactly the radius is within")
	assert.False(t, fence.Contains(offsetNorth(riyadhHQ, 50.5)), "point past the radius is outside")
}

func TestValidate(t *testing.T) {
	active := Geofence{ID: "hq", Center: riyadhHQ, RadiusMeters: 50, Active: true}
	inactive := Geofence{ID: "old-site", Center: riyadhHQ, RadiusMeters: 500, Active: false}

	t.Run("inside an active fence", func(t *testing.T) {
		assert.True(t, Validate(riyadhHQ, []Geofence{active}))
	})

	t.Run("inactive fences never match", func(t *testing.T) {
		assert.False(t, Validate(riyadhHQ, []Geofence{inactive}))
	})

	t.Run("no candidates", func(t *testing.T) {
		assert.False(t, Validate(riyadhHQ, nil))
	})

	t.Run("outside all fences", func(t *testing.T) {
		assert.False(t, Validate(offsetNorth(riyadhHQ, 200), []Geofence{active}))
	})
}

func TestNearestMatch(t *testing.T) {
	t.Run("picks the closest containing fence", func(t *testing.T) {
		point := offsetNorth(riyadhHQ, 10)
		tight := Geofence{ID: "tight", Center: point, RadiusMeters: 30, Active: true}
		wide := Geofence{ID: "wide", Center: riyadhHQ, RadiusMeters: 100, Active: true}

		got, ok := NearestMatch(point, []Geofence{wide, tight})
		require.True(t, ok)
		assert.Equal(t, "tight", got.ID)
	})

	t.Run("equidistant fences break ties by id", func(t *testing.T) {
		a := Geofence{ID: "a", Center: riyadhHQ, RadiusMeters: 80, Active: true}
		b := Geofence{ID: "b", Center: riyadhHQ, RadiusMeters: 80, Active: true}

		got, ok := NearestMatch(riyadhHQ, []Geofence{b, a})
		require.True(t, ok)
		assert.Equal(t, "a", got.ID)
	})

	t.Run("none qualify", func(t *testing.T) {
		far := Geofence{ID: "far", Center: offsetNorth(riyadhHQ, 5000), RadiusMeters: 40, Active: true}
		_, ok := NearestMatch(riyadhHQ, []Geofence{far})
		assert.False(t, ok)
	})
}
