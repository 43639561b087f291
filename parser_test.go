package osm2initial

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb/planar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser(t *testing.T) {
	parser := NewParser("testdata/sample.osm")
	t.Log(parser)
	assert.Equal(t, "sample", parser.name)

	result, err := parser.Build()
	require.NoError(t, err)
	initialMap := result.Map
	require.NoError(t, initialMap.validate())

	assert.Len(t, result.Raw.Roads, 5)
	assert.Len(t, result.Raw.Intersections, 6)
	assert.Len(t, result.Raw.Buildings, 1)
	assert.Len(t, result.Raw.Areas, 2)

	assert.Equal(t, "sample", initialMap.Name)
	assert.Equal(t, []StableRoadID{0, 1, 2, 3}, initialMap.RoadIDs())
	assert.Equal(t, []StableIntersectionID{0, 1, 2, 3, 4}, initialMap.IntersectionIDs())
	assert.Empty(t, result.Anomalies)
	assert.Empty(t, result.Merged)
	for _, intersection := range initialMap.Intersections {
		assert.NotEmpty(t, intersection.Polygon)
	}
	for _, road := range initialMap.Roads {
		assert.Less(t, road.Length(), planar.Length(road.OriginalCenter))
		assert.Greater(t, road.Length(), 0.0)
	}
}

func TestParserFromDocument(t *testing.T) {
	fromFile, err := NewParser("testdata/sample.osm").Build()
	require.NoError(t, err)
	fromMemory, err := NewParser("sample.osm").BuildFromDocument(sampleOSM().document())
	require.NoError(t, err)

	require.Equal(t, fromFile.Map.RoadIDs(), fromMemory.Map.RoadIDs())
	for id, road := range fromFile.Map.Roads {
		assert.Equal(t, road.TrimmedCenter, fromMemory.Map.Roads[id].TrimmedCenter)
		assert.Equal(t, road.LaneSpecs, fromMemory.Map.Roads[id].LaneSpecs)
	}
	for id, intersection := range fromFile.Map.Intersections {
		assert.Equal(t, intersection.Polygon, fromMemory.Map.Intersections[id].Polygon)
	}
}

func TestParserSnapshots(t *testing.T) {
	store := openTestStore(t)
	result, err := NewParser("sample.osm", WithName("snap"), WithSnapshots(store)).BuildFromDocument(sampleOSM().document())
	require.NoError(t, err)
	versions, err := store.Versions("snap")
	require.NoError(t, err)
	// Built graph, synthesized polygons, merged short roads
	assert.Equal(t, []uint64{0, 1, 2}, versions)
	assert.Equal(t, uint64(3), result.Map.VersionsSaved())

	built, err := store.Load("snap", 0)
	require.NoError(t, err)
	for _, intersection := range built.Intersections {
		assert.Empty(t, intersection.Polygon)
	}

	cfg := DefaultConfig()
	cfg.ShortRoadThreshold = 0
	_, err = NewParser("sample.osm", WithName("no_merge"), WithConfig(cfg), WithSnapshots(store)).BuildFromDocument(sampleOSM().document())
	require.NoError(t, err)
	versions, err = store.Versions("no_merge")
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1}, versions)
}

func TestParserOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExcludedHighways = []string{"primary"}
	cfg.LaneWidth = 3
	edits := &MapEdits{LaneOverrides: map[StableRoadID][]LaneSpec{0: {{Type: LANE_DRIVING}, {Type: LANE_DRIVING, ReversePts: true}}}}
	result, err := NewParser("sample.osm", WithConfig(cfg), WithEdits(edits), WithProgress(NopProgress{})).BuildFromDocument(sampleOSM().document())
	require.NoError(t, err)

	// Main street is excluded: only the residential way is left and it is not split anymore
	initialMap := result.Map
	require.Len(t, initialMap.Roads, 1)
	road := initialMap.Roads[0]
	assert.Equal(t, int64(101), int64(road.OSMWayID))
	assert.Len(t, road.LaneSpecs, 2)
	assert.InDelta(t, 3.0, road.FwdWidth, 1e-9)
}

func TestParserErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	_, err := NewParser("sample.osm", WithConfig(cfg)).BuildFromDocument(sampleOSM().document())
	assert.Error(t, err)

	_, err = NewParser(filepath.Join(t.TempDir(), "missing.osm")).Build()
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "map.txt")
	require.NoError(t, os.WriteFile(path, []byte("nothing"), 0644))
	_, err = NewParser(path).Build()
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
