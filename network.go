package osm2initial

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// InitialMap is the intersections/roads graph. It exclusively owns both tables.
type InitialMap struct {
	Name          string                                 `msgpack:"name"`
	Roads         map[StableRoadID]*Road                 `msgpack:"roads"`
	Intersections map[StableIntersectionID]*Intersection `msgpack:"intersections"`
	Bounds        orb.Bound                              `msgpack:"bounds"`
	GPSBounds     *GPSBounds                             `msgpack:"-"`
	FocusOn       *StableIntersectionID                  `msgpack:"focus_on"`

	versionsSaved uint64
	// IDs removed by merges. They are never given out again.
	retiredIntersections map[StableIntersectionID]struct{}
	retiredRoads         map[StableRoadID]struct{}
}

// NewInitialMap returns empty map
func NewInitialMap(name string, gpsBounds *GPSBounds) *InitialMap {
	initialMap := &InitialMap{
		Name:                 name,
		Roads:                make(map[StableRoadID]*Road),
		Intersections:        make(map[StableIntersectionID]*Intersection),
		GPSBounds:            gpsBounds,
		retiredIntersections: make(map[StableIntersectionID]struct{}),
		retiredRoads:         make(map[StableRoadID]struct{}),
	}
	if gpsBounds != nil {
		initialMap.Bounds = gpsBounds.PlanarBound()
	}
	return initialMap
}

// RoadIDs returns sorted IDs of roads
func (initialMap *InitialMap) RoadIDs() []StableRoadID {
	ids := maps.Keys(initialMap.Roads)
	slices.Sort(ids)
	return ids
}

// IntersectionIDs returns sorted IDs of intersections
func (initialMap *InitialMap) IntersectionIDs() []StableIntersectionID {
	ids := maps.Keys(initialMap.Intersections)
	slices.Sort(ids)
	return ids
}

// VersionsSaved returns number of snapshots saved so far
func (initialMap *InitialMap) VersionsSaved() uint64 {
	return initialMap.versionsSaved
}

// insertRoad registers road in both endpoints. Self-loops and dangling endpoints are rejected.
func (initialMap *InitialMap) insertRoad(road *Road) error {
	if road.Src == road.Dst {
		return errors.Errorf("road %s is a self-loop on %s", road.ID, road.Src)
	}
	if _, ok := initialMap.Roads[road.ID]; ok {
		return errors.Errorf("road %s already exists", road.ID)
	}
	if _, ok := initialMap.retiredRoads[road.ID]; ok {
		return errors.Errorf("road %s has been retired", road.ID)
	}
	src, ok := initialMap.Intersections[road.Src]
	if !ok {
		return errors.Errorf("road %s refers to unknown intersection %s", road.ID, road.Src)
	}
	dst, ok := initialMap.Intersections[road.Dst]
	if !ok {
		return errors.Errorf("road %s refers to unknown intersection %s", road.ID, road.Dst)
	}
	initialMap.Roads[road.ID] = road
	src.Roads[road.ID] = struct{}{}
	dst.Roads[road.ID] = struct{}{}
	return nil
}

// removeRoad deletes road and its references
func (initialMap *InitialMap) removeRoad(id StableRoadID) *Road {
	road, ok := initialMap.Roads[id]
	if !ok {
		return nil
	}
	delete(initialMap.Roads, id)
	if src, ok := initialMap.Intersections[road.Src]; ok {
		delete(src.Roads, id)
	}
	if dst, ok := initialMap.Intersections[road.Dst]; ok {
		delete(dst.Roads, id)
	}
	initialMap.retiredRoads[id] = struct{}{}
	return road
}

// removeIntersection deletes intersection which has no roads anymore
func (initialMap *InitialMap) removeIntersection(id StableIntersectionID) {
	delete(initialMap.Intersections, id)
	initialMap.retiredIntersections[id] = struct{}{}
}

// validate checks graph consistency. Any error wraps ErrInvariantViolation.
func (initialMap *InitialMap) validate() error {
	for _, roadID := range initialMap.RoadIDs() {
		road := initialMap.Roads[roadID]
		if road.ID != roadID {
			return errors.Wrapf(ErrInvariantViolation, "road %s is stored under key %s", road.ID, roadID)
		}
		if road.Src == road.Dst {
			return errors.Wrapf(ErrInvariantViolation, "road %s is a self-loop on %s", road.ID, road.Src)
		}
		for _, endpoint := range []StableIntersectionID{road.Src, road.Dst} {
			intersection, ok := initialMap.Intersections[endpoint]
			if !ok {
				return errors.Wrapf(ErrInvariantViolation, "road %s refers to missing intersection %s", road.ID, endpoint)
			}
			if _, ok := intersection.Roads[road.ID]; !ok {
				return errors.Wrapf(ErrInvariantViolation, "intersection %s doesn't know about road %s", endpoint, road.ID)
			}
		}
	}
	for _, intersectionID := range initialMap.IntersectionIDs() {
		intersection := initialMap.Intersections[intersectionID]
		if intersection.ID != intersectionID {
			return errors.Wrapf(ErrInvariantViolation, "intersection %s is stored under key %s", intersection.ID, intersectionID)
		}
		if _, retired := initialMap.retiredIntersections[intersectionID]; retired {
			return errors.Wrapf(ErrInvariantViolation, "intersection %s has been retired", intersectionID)
		}
		for roadID := range intersection.Roads {
			road, ok := initialMap.Roads[roadID]
			if !ok {
				return errors.Wrapf(ErrInvariantViolation, "intersection %s refers to missing road %s", intersectionID, roadID)
			}
			if !road.HasEndpoint(intersectionID) {
				return errors.Wrapf(ErrInvariantViolation, "intersection %s refers to road %s which doesn't touch it", intersectionID, roadID)
			}
		}
	}
	return nil
}

// ExportToCSV writes '<prefix>_intersections.csv' and '<prefix>_roads.csv'. Geometry is in lon/lat when GPS bounds are known.
func (initialMap *InitialMap) ExportToCSV(fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameIntersections := fnameParts[0] + "_intersections.csv"
	fnameRoads := fnameParts[0] + "_roads.csv"

	err := initialMap.exportIntersectionsToCSV(fnameIntersections)
	if err != nil {
		return errors.Wrap(err, "Can't export intersections")
	}

	err = initialMap.exportRoadsToCSV(fnameRoads)
	if err != nil {
		return errors.Wrap(err, "Can't export roads")
	}
	return nil
}

func (initialMap *InitialMap) exportRoadsToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "src", "dst", "osm_way_id", "highway", "lanes", "fwd_width", "back_width", "length_meters", "name", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, roadID := range initialMap.RoadIDs() {
		road := initialMap.Roads[roadID]
		lanes := make([]string, len(road.LaneSpecs))
		for i, lane := range road.LaneSpecs {
			lanes[i] = lane.Type.String()
			if lane.ReversePts {
				lanes[i] += "(back)"
			}
		}
		err = writer.Write([]string{
			fmt.Sprintf("%d", road.ID),
			fmt.Sprintf("%d", road.Src),
			fmt.Sprintf("%d", road.Dst),
			fmt.Sprintf("%d", road.OSMWayID),
			road.Tags.Find("highway"),
			strings.Join(lanes, ","),
			fmt.Sprintf("%f", road.FwdWidth),
			fmt.Sprintf("%f", road.BackWidth),
			fmt.Sprintf("%f", road.Length()),
			road.Name(),
			wkt.MarshalString(initialMap.lineToExport(road.TrimmedCenter)),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write road")
		}
	}
	return nil
}

func (initialMap *InitialMap) exportIntersectionsToCSV(fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "osm_node_id", "roads", "dead_end", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, intersectionID := range initialMap.IntersectionIDs() {
		intersection := initialMap.Intersections[intersectionID]
		roads := make([]string, 0, len(intersection.Roads))
		for _, roadID := range intersection.RoadIDs() {
			roads = append(roads, fmt.Sprintf("%d", roadID))
		}
		polygon := orb.Polygon{orb.Ring(initialMap.lineToExport(orb.LineString(intersection.Polygon)))}
		err = writer.Write([]string{
			fmt.Sprintf("%d", intersection.ID),
			fmt.Sprintf("%d", intersection.OSMNodeID),
			strings.Join(roads, ","),
			fmt.Sprintf("%t", intersection.IsDeadEnd()),
			wkt.MarshalString(polygon),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write intersection")
		}
	}
	return nil
}

func (initialMap *InitialMap) lineToExport(line orb.LineString) orb.LineString {
	if initialMap.GPSBounds == nil {
		return line
	}
	return lineToGPS(initialMap.GPSBounds, line)
}
