package osm2initial

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SnapshotStore {
	store, err := OpenSnapshotStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := openTestStore(t)
	initialMap, err := BuildInitialMap(sampleRawMap(t), BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, SynthesizePolygons(initialMap, SynthesisOptions{}))

	version, err := initialMap.Save(store, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), version)
	focus := StableIntersectionID(0)
	version, err = initialMap.Save(store, &focus)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, uint64(2), initialMap.VersionsSaved())

	versions, err := store.Versions("sample")
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, versions)

	loaded, err := store.Load("sample", 1)
	require.NoError(t, err)
	assert.Equal(t, initialMap.Name, loaded.Name)
	assert.Equal(t, initialMap.Bounds, loaded.Bounds)
	assert.Equal(t, uint64(2), loaded.VersionsSaved())
	require.NotNil(t, loaded.FocusOn)
	assert.Equal(t, focus, *loaded.FocusOn)
	require.NotNil(t, loaded.GPSBounds)
	assert.Equal(t, initialMap.GPSBounds.Min, loaded.GPSBounds.Min)
	assert.Equal(t, initialMap.GPSBounds.PlanarBound(), loaded.GPSBounds.PlanarBound())

	assert.Equal(t, initialMap.RoadIDs(), loaded.RoadIDs())
	for id, road := range initialMap.Roads {
		got := loaded.Roads[id]
		require.NotNil(t, got)
		assert.Equal(t, road.Src, got.Src)
		assert.Equal(t, road.Dst, got.Dst)
		assert.Equal(t, road.OSMWayID, got.OSMWayID)
		assert.Equal(t, road.Tags, got.Tags)
		assert.Equal(t, road.OriginalCenter, got.OriginalCenter)
		assert.Equal(t, road.TrimmedCenter, got.TrimmedCenter)
		assert.Equal(t, road.LaneSpecs, got.LaneSpecs)
		assert.Equal(t, road.FwdWidth, got.FwdWidth)
	}
	assert.Equal(t, initialMap.IntersectionIDs(), loaded.IntersectionIDs())
	for id, intersection := range initialMap.Intersections {
		got := loaded.Intersections[id]
		require.NotNil(t, got)
		assert.Equal(t, intersection.Point, got.Point)
		assert.Equal(t, intersection.Polygon, got.Polygon)
		assert.Equal(t, intersection.RoadIDs(), got.RoadIDs())
	}
	require.NoError(t, loaded.validate())

	// The first snapshot has no focus
	first, err := store.Load("sample", 0)
	require.NoError(t, err)
	assert.Nil(t, first.FocusOn)
}

func TestSnapshotNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Load("nothing", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	initialMap := crossMap(10)
	_, err = initialMap.Save(store, nil)
	require.NoError(t, err)
	_, err = store.Load("test", 5)
	assert.ErrorIs(t, err, ErrNotFound)

	versions, err := store.Versions("nothing")
	require.NoError(t, err)
	assert.Empty(t, versions)
}
