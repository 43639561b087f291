package osm2initial

import (
	"io"
	"os"

	"github.com/paulmach/orb"
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// ReadBoundary reads clip polygon from GeoJSON file. Polygon, MultiPolygon (the first polygon is used), Feature and FeatureCollection (the first polygonal feature) are supported.
// Only the outer ring is returned.
func ReadBoundary(filename string) (orb.Ring, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read boundary file")
	}
	return parseBoundary(data)
}

func parseBoundary(data []byte) (orb.Ring, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && fc.Type == "FeatureCollection" {
		for _, feature := range fc.Features {
			if ring, ok := outerRing(feature.Geometry); ok {
				return ring, nil
			}
		}
		return nil, errors.New("FeatureCollection has no polygons")
	}
	feature, err := geojson.UnmarshalFeature(data)
	if err == nil && feature.Type == "Feature" {
		if ring, ok := outerRing(feature.Geometry); ok {
			return ring, nil
		}
		return nil, errors.New("Feature is not a polygon")
	}
	geometry, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, errors.Wrap(err, "Can't parse GeoJSON")
	}
	if ring, ok := outerRing(geometry); ok {
		return ring, nil
	}
	return nil, errors.Errorf("Geometry '%s' is not a polygon", geometry.Type)
}

func outerRing(geometry *geojson.Geometry) (orb.Ring, bool) {
	if geometry == nil {
		return nil, false
	}
	var coords [][]float64
	switch {
	case geometry.IsPolygon() && len(geometry.Polygon) > 0:
		coords = geometry.Polygon[0]
	case geometry.IsMultiPolygon() && len(geometry.MultiPolygon) > 0 && len(geometry.MultiPolygon[0]) > 0:
		coords = geometry.MultiPolygon[0][0]
	default:
		return nil, false
	}
	pts := make([]orb.Point, 0, len(coords))
	for _, coord := range coords {
		if len(coord) < 2 {
			return nil, false
		}
		pts = append(pts, orb.Point{coord[0], coord[1]})
	}
	if len(pts) < 3 {
		return nil, false
	}
	return closeRing(pts), true
}

// ExportGeoJSON writes intersection polygons and trimmed road centerlines as FeatureCollection (lon/lat when GPS bounds are known)
func (initialMap *InitialMap) ExportGeoJSON(w io.Writer) error {
	fc := geojson.NewFeatureCollection()
	for _, intersectionID := range initialMap.IntersectionIDs() {
		intersection := initialMap.Intersections[intersectionID]
		if len(intersection.Polygon) == 0 {
			continue
		}
		ring := initialMap.lineToExport(orb.LineString(intersection.Polygon))
		feature := geojson.NewPolygonFeature([][][]float64{pointsToCoords(ring)})
		feature.SetProperty("kind", "intersection")
		feature.SetProperty("id", int(intersection.ID))
		feature.SetProperty("osm_node_id", int64(intersection.OSMNodeID))
		feature.SetProperty("roads", len(intersection.Roads))
		fc.AddFeature(feature)
	}
	for _, roadID := range initialMap.RoadIDs() {
		road := initialMap.Roads[roadID]
		line := initialMap.lineToExport(road.TrimmedCenter)
		feature := geojson.NewLineStringFeature(pointsToCoords(line))
		feature.SetProperty("kind", "road")
		feature.SetProperty("id", int(road.ID))
		feature.SetProperty("src", int(road.Src))
		feature.SetProperty("dst", int(road.Dst))
		feature.SetProperty("osm_way_id", int64(road.OSMWayID))
		feature.SetProperty("lanes", len(road.LaneSpecs))
		feature.SetProperty("fwd_width", road.FwdWidth)
		feature.SetProperty("back_width", road.BackWidth)
		if name := road.Name(); name != "" {
			feature.SetProperty("name", name)
		}
		fc.AddFeature(feature)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "Can't marshal GeoJSON")
	}
	_, err = w.Write(b)
	if err != nil {
		return errors.Wrap(err, "Can't write GeoJSON")
	}
	return nil
}

func pointsToCoords(pts []orb.Point) [][]float64 {
	coords := make([][]float64, len(pts))
	for i, pt := range pts {
		coords[i] = []float64{pt[0], pt[1]}
	}
	return coords
}
