package osm2initial

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// RawRoad is a road extracted from OSM way. Endpoints I1/I2 are resolved by NewRawMap.
type RawRoad struct {
	OSMWayID osm.WayID
	Points   []orb.Point // lon/lat
	NodeIDs  []osm.NodeID
	Tags     Tags

	I1 StableIntersectionID
	I2 StableIntersectionID

	ParkingLaneForward  bool
	ParkingLaneBackward bool
}

// Building is extracted from OSM way tagged with `building`. The ring is not necessarily closed.
type Building struct {
	OSMWayID            osm.WayID
	Points              []orb.Point
	Tags                Tags
	NumResidentialUnits *int
}

// Area is a park or water polygon. OSMID refers to way or to multipolygon relation.
type Area struct {
	AreaType AreaType
	OSMID    int64
	Points   orb.Ring
	Tags     Tags
}

func newRawRoad(way *osm.Way, pts []orb.Point, tags Tags) RawRoad {
	road := RawRoad{
		OSMWayID: way.ID,
		Points:   pts,
		NodeIDs:  make([]osm.NodeID, len(way.Nodes)),
		Tags:     tags,
	}
	for i, node := range way.Nodes {
		road.NodeIDs[i] = node.ID
	}
	if hasParkingLane(tags, "parking:lane:both") {
		road.ParkingLaneForward = true
		road.ParkingLaneBackward = true
	}
	if hasParkingLane(tags, "parking:lane:right") {
		road.ParkingLaneForward = true
	}
	if hasParkingLane(tags, "parking:lane:left") {
		road.ParkingLaneBackward = true
	}
	return road
}

func hasParkingLane(tags Tags, key string) bool {
	value := tags.Find(key)
	if value == "" {
		return false
	}
	_, forbidden := noParkingValues[value]
	return !forbidden
}

func newBuilding(way *osm.Way, pts []orb.Point, tags Tags) Building {
	bldg := Building{
		OSMWayID: way.ID,
		Points:   pts,
		Tags:     tags,
	}
	if flats := tags.Find("building:flats"); flats != "" {
		if units, err := strconv.Atoi(flats); err == nil && units >= 0 {
			bldg.NumResidentialUnits = &units
		}
	}
	return bldg
}
