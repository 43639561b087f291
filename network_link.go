package osm2initial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
)

/* Roads stuff */

// Road connects two different intersections. Src to Dst is the digitization direction of the OSM way.
type Road struct {
	ID       StableRoadID         `msgpack:"id"`
	OSMWayID osm.WayID            `msgpack:"osm_way_id"`
	Src      StableIntersectionID `msgpack:"src"`
	Dst      StableIntersectionID `msgpack:"dst"`
	Tags     Tags                 `msgpack:"tags"`

	// OriginalCenter is never changed, TrimmedCenter is shortened by polygon synthesis
	OriginalCenter orb.LineString `msgpack:"original_center"`
	TrimmedCenter  orb.LineString `msgpack:"trimmed_center"`

	FwdWidth  float64    `msgpack:"fwd_width"`
	BackWidth float64    `msgpack:"back_width"`
	LaneSpecs []LaneSpec `msgpack:"lane_specs"`

	srcTrim float64
	dstTrim float64
}

func newRoad(id StableRoadID, rawRoad *RawRoad, center orb.LineString, lanes []LaneSpec, laneWidth float64) *Road {
	road := Road{
		ID:             id,
		OSMWayID:       rawRoad.OSMWayID,
		Src:            rawRoad.I1,
		Dst:            rawRoad.I2,
		Tags:           rawRoad.Tags,
		OriginalCenter: center,
		TrimmedCenter:  center.Clone(),
		LaneSpecs:      lanes,
	}
	road.FwdWidth, road.BackWidth = laneWidths(lanes, laneWidth)
	return &road
}

// Length returns planar length of trimmed centerline
func (road *Road) Length() float64 {
	return planar.Length(road.TrimmedCenter)
}

// OtherEnd returns the opposite endpoint
func (road *Road) OtherEnd(id StableIntersectionID) StableIntersectionID {
	if road.Src == id {
		return road.Dst
	}
	return road.Src
}

// HasEndpoint reports whether the road starts or ends at given intersection
func (road *Road) HasEndpoint(id StableIntersectionID) bool {
	return road.Src == id || road.Dst == id
}

// DrivingDirections reports whether cars could go Src->Dst (forward) and Dst->Src (backward)
func (road *Road) DrivingDirections() (bool, bool) {
	fwd, back := false, false
	for _, lane := range road.LaneSpecs {
		if lane.Type != LANE_DRIVING {
			continue
		}
		if lane.ReversePts {
			back = true
		} else {
			fwd = true
		}
	}
	return fwd, back
}

// Name returns `name` tag
func (road *Road) Name() string {
	return road.Tags.Find("name")
}

// applyTrims cuts trimmed centerline from the original one. Trims could only shorten the road.
func (road *Road) applyTrims() {
	length := planar.Length(road.OriginalCenter)
	road.TrimmedCenter = lineSlice(road.OriginalCenter, road.srcTrim, length-road.dstTrim)
}

// resetTrims makes trimmed centerline equal to the original one
func (road *Road) resetTrims() {
	road.srcTrim = 0
	road.dstTrim = 0
	road.TrimmedCenter = road.OriginalCenter.Clone()
}
