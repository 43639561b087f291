package osm2initial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

/* Intersections stuff */

// Intersection is a place where roads meet. Roads are referenced by IDs only.
type Intersection struct {
	ID        StableIntersectionID      `msgpack:"id"`
	OSMNodeID osm.NodeID                `msgpack:"osm_node_id"`
	Point     orb.Point                 `msgpack:"point"`
	Polygon   orb.Ring                  `msgpack:"polygon"`
	Roads     map[StableRoadID]struct{} `msgpack:"roads"`
}

func newIntersection(id StableIntersectionID, osmNodeID osm.NodeID, pt orb.Point) *Intersection {
	return &Intersection{
		ID:        id,
		OSMNodeID: osmNodeID,
		Point:     pt,
		Roads:     make(map[StableRoadID]struct{}),
	}
}

// RoadIDs returns sorted IDs of incident roads
func (intersection *Intersection) RoadIDs() []StableRoadID {
	ids := maps.Keys(intersection.Roads)
	slices.Sort(ids)
	return ids
}

// IsDeadEnd reports whether there is single incident road
func (intersection *Intersection) IsDeadEnd() bool {
	return len(intersection.Roads) == 1
}
