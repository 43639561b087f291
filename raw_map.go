package osm2initial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// RawIntersection is an OSM node shared by several roads (or the end of a road)
type RawIntersection struct {
	ID        StableIntersectionID
	OSMNodeID osm.NodeID
	Point     orb.Point // lon/lat
	useCount  int
}

// RawMap is the extracted data with road endpoints resolved to stable intersection IDs
type RawMap struct {
	Name          string
	Roads         map[StableRoadID]*RawRoad
	Intersections map[StableIntersectionID]*RawIntersection
	Buildings     []Building
	Areas         []Area
	Boundary      orb.Ring
	Bounds        *GPSBounds
}

// NewRawMap splits extracted roads at shared OSM nodes. Each piece gets its own StableRoadID,
// each shared node (and each road end) becomes an intersection.
func NewRawMap(name string, extracted *Extracted, boundary orb.Ring, logger *zap.Logger) *RawMap {
	if logger == nil {
		logger = zap.NewNop()
	}
	rawMap := &RawMap{
		Name:          name,
		Roads:         make(map[StableRoadID]*RawRoad),
		Intersections: make(map[StableIntersectionID]*RawIntersection),
		Buildings:     extracted.Buildings,
		Areas:         extracted.Areas,
		Boundary:      boundary,
	}

	// Ends of the way are counted twice: they always must become intersections
	nodes := make(map[osm.NodeID]*RawIntersection)
	for i := range extracted.Roads {
		road := &extracted.Roads[i]
		for j, nodeID := range road.NodeIDs {
			node, ok := nodes[nodeID]
			if !ok {
				node = &RawIntersection{OSMNodeID: nodeID, Point: road.Points[j]}
				nodes[nodeID] = node
			}
			if j == 0 || j == len(road.NodeIDs)-1 {
				node.useCount += 2
			} else {
				node.useCount++
			}
		}
	}
	nodeIDs := maps.Keys(nodes)
	slices.Sort(nodeIDs)
	nextIntersectionID := StableIntersectionID(0)
	for _, nodeID := range nodeIDs {
		node := nodes[nodeID]
		if node.useCount <= 1 {
			continue
		}
		node.ID = nextIntersectionID
		rawMap.Intersections[node.ID] = node
		nextIntersectionID++
	}

	nextRoadID := StableRoadID(0)
	for i := range extracted.Roads {
		road := &extracted.Roads[i]
		start := 0
		for j := 1; j < len(road.NodeIDs); j++ {
			node := nodes[road.NodeIDs[j]]
			if node.useCount <= 1 {
				continue
			}
			segment := &RawRoad{
				OSMWayID:            road.OSMWayID,
				Points:              append([]orb.Point{}, road.Points[start:j+1]...),
				NodeIDs:             append([]osm.NodeID{}, road.NodeIDs[start:j+1]...),
				Tags:                road.Tags,
				I1:                  nodes[road.NodeIDs[start]].ID,
				I2:                  node.ID,
				ParkingLaneForward:  road.ParkingLaneForward,
				ParkingLaneBackward: road.ParkingLaneBackward,
			}
			rawMap.Roads[nextRoadID] = segment
			nextRoadID++
			start = j
		}
	}

	if len(boundary) > 0 {
		rawMap.Bounds = newGPSBoundsFromBound(boundary.Bound())
	} else {
		rawMap.Bounds = NewGPSBounds(rawMap.allPoints())
	}
	logger.Info("Raw map is prepared",
		zap.String("name", name),
		zap.Int("roads", len(rawMap.Roads)),
		zap.Int("intersections", len(rawMap.Intersections)),
	)
	return rawMap
}

func (rawMap *RawMap) allPoints() []orb.Point {
	pts := []orb.Point{}
	for _, road := range rawMap.Roads {
		pts = append(pts, road.Points...)
	}
	for _, bldg := range rawMap.Buildings {
		pts = append(pts, bldg.Points...)
	}
	for _, area := range rawMap.Areas {
		pts = append(pts, area.Points...)
	}
	return pts
}

// RoadIDs returns sorted IDs of roads
func (rawMap *RawMap) RoadIDs() []StableRoadID {
	ids := maps.Keys(rawMap.Roads)
	slices.Sort(ids)
	return ids
}
