package osm2initial

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoundary(t *testing.T) {
	expected := orb.Ring{{37.59, 55.74}, {37.61, 55.74}, {37.61, 55.76}, {37.59, 55.76}, {37.59, 55.74}}
	cases := map[string]string{
		"geometry": `{"type": "Polygon", "coordinates": [[[37.59, 55.74], [37.61, 55.74], [37.61, 55.76], [37.59, 55.76], [37.59, 55.74]]]}`,
		"feature":  `{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon", "coordinates": [[[37.59, 55.74], [37.61, 55.74], [37.61, 55.76], [37.59, 55.76]]]}}`,
		"collection": `{"type": "FeatureCollection", "features": [
			{"type": "Feature", "properties": {}, "geometry": {"type": "Point", "coordinates": [0, 0]}},
			{"type": "Feature", "properties": {}, "geometry": {"type": "MultiPolygon", "coordinates": [[[[37.59, 55.74], [37.61, 55.74], [37.61, 55.76], [37.59, 55.76], [37.59, 55.74]]]]}}
		]}`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			ring, err := parseBoundary([]byte(data))
			require.NoError(t, err)
			assert.Equal(t, expected, ring)
		})
	}

	_, err := parseBoundary([]byte(`{"type": "Point", "coordinates": [0, 0]}`))
	assert.Error(t, err)
	_, err = parseBoundary([]byte(`not a json`))
	assert.Error(t, err)
	_, err = parseBoundary([]byte(`{"type": "FeatureCollection", "features": []}`))
	assert.Error(t, err)
}

func TestReadBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boundary.geojson")
	data := `{"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	ring, err := ReadBoundary(path)
	require.NoError(t, err)
	assert.Len(t, ring, 4)

	_, err = ReadBoundary(filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
}

func TestExportGeoJSON(t *testing.T) {
	initialMap := crossMap(100)
	require.NoError(t, SynthesizePolygons(initialMap, SynthesisOptions{}))
	buf := bytes.Buffer{}
	require.NoError(t, initialMap.ExportGeoJSON(&buf))

	fc, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, fc.Features, len(initialMap.Intersections)+len(initialMap.Roads))
	polygons, lines := 0, 0
	for _, feature := range fc.Features {
		switch {
		case feature.Geometry.IsPolygon():
			polygons++
			assert.Equal(t, "intersection", feature.Properties["kind"])
		case feature.Geometry.IsLineString():
			lines++
			assert.Equal(t, "road", feature.Properties["kind"])
		}
	}
	assert.Equal(t, 5, polygons)
	assert.Equal(t, 4, lines)
}
