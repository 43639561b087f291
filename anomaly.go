package osm2initial

import (
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// Default number of road hops for anomaly search
	defaultAnomalyDepth = 5
)

// Anomaly is a road whose trimmed centerline crosses polygon of a nearby intersection which is not its endpoint.
// Usually it's an unmodeled bridge/tunnel or a data error.
type Anomaly struct {
	Road         StableRoadID
	Intersection StableIntersectionID
	// Hops is the number of roads between the intersection and the closest endpoint of the road
	Hops int
}

// DetectAnomalies reports roads crossing intersections reachable within `depth` road hops.
// It's diagnostic only: the map is not changed.
func DetectAnomalies(initialMap *InitialMap, depth int, logger *zap.Logger) []Anomaly {
	if depth <= 0 {
		depth = defaultAnomalyDepth
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	anomalies := []Anomaly{}
	for _, roadID := range initialMap.RoadIDs() {
		road := initialMap.Roads[roadID]
		reached := initialMap.floodfill([]StableIntersectionID{road.Src, road.Dst}, depth)
		candidates := maps.Keys(reached)
		slices.Sort(candidates)
		for _, intersectionID := range candidates {
			if road.HasEndpoint(intersectionID) {
				continue
			}
			polygon := initialMap.Intersections[intersectionID].Polygon
			if !lineCrossesRing(road.TrimmedCenter, polygon) {
				continue
			}
			anomaly := Anomaly{Road: roadID, Intersection: intersectionID, Hops: reached[intersectionID]}
			logger.Warn("road crosses intersection which is not its endpoint",
				zap.Stringer("road", roadID),
				zap.Int64("osm_way_id", int64(road.OSMWayID)),
				zap.Stringer("intersection", intersectionID),
				zap.Int("hops", anomaly.Hops),
			)
			anomalies = append(anomalies, anomaly)
		}
	}
	return anomalies
}

// floodfill is bounded breadth-first traversal over intersection<->road adjacency.
// Returns every reached intersection with its distance (in roads) from the closest start.
func (initialMap *InitialMap) floodfill(starts []StableIntersectionID, maxDepth int) map[StableIntersectionID]int {
	type item struct {
		id    StableIntersectionID
		depth int
	}
	visited := make(map[StableIntersectionID]int)
	queue := make([]item, 0, len(starts))
	for _, start := range starts {
		if _, ok := initialMap.Intersections[start]; !ok {
			continue
		}
		if _, ok := visited[start]; ok {
			continue
		}
		visited[start] = 0
		queue = append(queue, item{start, 0})
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current.depth >= maxDepth {
			continue
		}
		for _, roadID := range initialMap.Intersections[current.id].RoadIDs() {
			next := initialMap.Roads[roadID].OtherEnd(current.id)
			if _, ok := visited[next]; ok {
				continue
			}
			visited[next] = current.depth + 1
			queue = append(queue, item{next, current.depth + 1})
		}
	}
	return visited
}
