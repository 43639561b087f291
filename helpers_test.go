package osm2initial

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

var osmWayStub = osm.Way{ID: 1}

// testOSM builds in-memory OSM data
type testOSM struct {
	data *osm.OSM
}

func newTestOSM() *testOSM {
	return &testOSM{data: &osm.OSM{}}
}

func toOSMTags(tags map[string]string) osm.Tags {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result := make(osm.Tags, 0, len(tags))
	for _, k := range keys {
		result = append(result, osm.Tag{Key: k, Value: tags[k]})
	}
	return result
}

func (b *testOSM) node(id int64, lon, lat float64) *testOSM {
	b.data.Nodes = append(b.data.Nodes, &osm.Node{ID: osm.NodeID(id), Lon: lon, Lat: lat})
	return b
}

func (b *testOSM) way(id int64, tags map[string]string, nodes ...int64) *testOSM {
	wayNodes := make(osm.WayNodes, len(nodes))
	for i, nodeID := range nodes {
		wayNodes[i] = osm.WayNode{ID: osm.NodeID(nodeID)}
	}
	b.data.Ways = append(b.data.Ways, &osm.Way{ID: osm.WayID(id), Nodes: wayNodes, Tags: toOSMTags(tags)})
	return b
}

func (b *testOSM) relation(id int64, tags map[string]string, members ...osm.Member) *testOSM {
	b.data.Relations = append(b.data.Relations, &osm.Relation{ID: osm.RelationID(id), Tags: toOSMTags(tags), Members: members})
	return b
}

func (b *testOSM) document() *Document {
	return NewDocument(b.data)
}

func outerWay(ref int64) osm.Member {
	return osm.Member{Type: osm.TypeWay, Ref: ref, Role: "outer"}
}

// sampleOSM is a cross of two roads, a footway, a building, a park, a water multipolygon, a way with missing node and a self-loop road.
// It matches testdata/sample.osm.
func sampleOSM() *testOSM {
	return newTestOSM().
		node(1, 37.6000, 55.7500).
		node(2, 37.5990, 55.7500).
		node(3, 37.6010, 55.7500).
		node(4, 37.6000, 55.7510).
		node(5, 37.6000, 55.7490).
		node(20, 37.6003, 55.7503).
		node(21, 37.6006, 55.7503).
		node(22, 37.6006, 55.7506).
		node(23, 37.6003, 55.7506).
		node(30, 37.5993, 55.7503).
		node(31, 37.5997, 55.7503).
		node(32, 37.5997, 55.7507).
		node(33, 37.5993, 55.7507).
		node(40, 37.6003, 55.7493).
		node(41, 37.6007, 55.7493).
		node(42, 37.6007, 55.7497).
		node(43, 37.6003, 55.7497).
		node(50, 37.5993, 55.7493).
		node(51, 37.5996, 55.7493).
		node(52, 37.5996, 55.7496).
		way(100, map[string]string{"highway": "primary", "name": "Main street", "lanes": "4"}, 2, 1, 3).
		way(101, map[string]string{"highway": "residential"}, 4, 1, 5).
		way(103, map[string]string{"highway": "footway"}, 2, 4).
		way(104, map[string]string{"highway": "residential"}, 3, 999).
		way(105, map[string]string{"highway": "residential"}, 50, 51, 52, 50).
		way(200, map[string]string{"building": "yes", "building:flats": "12"}, 20, 21, 22, 23, 20).
		way(201, map[string]string{"leisure": "park"}, 30, 31, 32, 33, 30).
		way(210, nil, 40, 41, 42).
		way(211, nil, 42, 43, 40).
		relation(300, map[string]string{"type": "multipolygon", "natural": "water"}, outerWay(210), outerWay(211))
}

// planarMap builds graph with straight roads between given points. Every road has one lane per direction.
func planarMap(points map[StableIntersectionID]orb.Point, roads map[StableRoadID][2]StableIntersectionID) *InitialMap {
	initialMap := NewInitialMap("test", nil)
	for id, pt := range points {
		initialMap.Intersections[id] = newIntersection(id, osm.NodeID(id), pt)
	}
	for id, ends := range roads {
		center := orb.LineString{points[ends[0]], points[ends[1]]}
		addPlanarRoad(initialMap, id, ends[0], ends[1], center)
	}
	return initialMap
}

func addPlanarRoad(initialMap *InitialMap, id StableRoadID, src, dst StableIntersectionID, center orb.LineString) {
	raw := &RawRoad{OSMWayID: osm.WayID(id), Tags: Tags{"highway": "residential", "sidewalk": "no"}, I1: src, I2: dst}
	road := newRoad(id, raw, center, DefaultLaneLayout(raw, id, nil), defaultLaneWidth)
	if err := initialMap.insertRoad(road); err != nil {
		panic(err)
	}
}

func pointSegmentDistance(pt, p, q orb.Point) float64 {
	dx, dy := q[0]-p[0], q[1]-p[1]
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = math.Max(0, math.Min(1, ((pt[0]-p[0])*dx+(pt[1]-p[1])*dy)/lenSq))
	}
	x, y := p[0]+t*dx, p[1]+t*dy
	return math.Hypot(pt[0]-x, pt[1]-y)
}

// ringDistance returns distance from point to the boundary of the ring
func ringDistance(ring orb.Ring, pt orb.Point) float64 {
	best := math.Inf(1)
	for i := 1; i < len(ring); i++ {
		best = math.Min(best, pointSegmentDistance(pt, ring[i-1], ring[i]))
	}
	return best
}
