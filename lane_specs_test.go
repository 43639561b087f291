package osm2initial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countLanes(lanes []LaneSpec, laneType LaneType, reverse bool) int {
	n := 0
	for _, lane := range lanes {
		if lane.Type == laneType && lane.ReversePts == reverse {
			n++
		}
	}
	return n
}

func TestDefaultLaneLayout(t *testing.T) {
	cases := []struct {
		name      string
		tags      Tags
		fwd, back int
	}{
		{"residential defaults", Tags{"highway": "residential"}, 1, 1},
		{"lanes total", Tags{"highway": "primary", "lanes": "4"}, 2, 2},
		{"odd lanes", Tags{"highway": "secondary", "lanes": "3"}, 2, 1},
		{"explicit directions", Tags{"highway": "secondary", "lanes": "3", "lanes:backward": "2"}, 1, 2},
		{"oneway", Tags{"highway": "primary", "oneway": "yes", "lanes": "3"}, 3, 0},
		{"reversed oneway", Tags{"highway": "tertiary", "oneway": "-1", "lanes": "2"}, 0, 2},
		{"roundabout", Tags{"highway": "tertiary", "junction": "roundabout"}, 1, 0},
		{"motorway implies oneway", Tags{"highway": "motorway"}, 3, 0},
		{"broken lanes value", Tags{"highway": "residential", "lanes": "many"}, 1, 1},
		{"reversible is two-way", Tags{"highway": "residential", "oneway": "reversible"}, 1, 1},
		{"unknown highway", Tags{"highway": "weird"}, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			road := &RawRoad{Tags: tc.tags}
			lanes := DefaultLaneLayout(road, 0, nil)
			assert.Equal(t, tc.fwd, countLanes(lanes, LANE_DRIVING, false))
			assert.Equal(t, tc.back, countLanes(lanes, LANE_DRIVING, true))
		})
	}
}

func TestDefaultLaneLayoutOrder(t *testing.T) {
	road := &RawRoad{
		Tags:                Tags{"highway": "residential", "sidewalk": "both"},
		ParkingLaneForward:  true,
		ParkingLaneBackward: true,
	}
	lanes := DefaultLaneLayout(road, 0, nil)
	expected := []LaneSpec{
		{Type: LANE_SIDEWALK, ReversePts: true},
		{Type: LANE_PARKING, ReversePts: true},
		{Type: LANE_DRIVING, ReversePts: true},
		{Type: LANE_DRIVING},
		{Type: LANE_PARKING},
		{Type: LANE_SIDEWALK},
	}
	assert.Equal(t, expected, lanes)

	fwd, back := laneWidths(lanes, 3.5)
	assert.InDelta(t, 10.5, fwd, 1e-9)
	assert.InDelta(t, 10.5, back, 1e-9)
}

func TestDefaultLaneLayoutOverrides(t *testing.T) {
	road := &RawRoad{Tags: Tags{"highway": "primary", "lanes": "4"}}
	edits := &MapEdits{LaneOverrides: map[StableRoadID][]LaneSpec{
		7: {{Type: LANE_DRIVING}},
	}}
	lanes := DefaultLaneLayout(road, 7, edits)
	require.Len(t, lanes, 1)
	assert.Equal(t, LANE_DRIVING, lanes[0].Type)

	lanes = DefaultLaneLayout(road, 8, edits)
	assert.Equal(t, 2, countLanes(lanes, LANE_DRIVING, false))
}

func TestDefaultLaneLayoutIsTotal(t *testing.T) {
	for _, tags := range []Tags{nil, {}, {"oneway": "yes"}, {"lanes": "-5"}, {"lanes:forward": "0"}} {
		lanes := DefaultLaneLayout(&RawRoad{Tags: tags}, 0, nil)
		assert.GreaterOrEqual(t, countLanes(lanes, LANE_DRIVING, false)+countLanes(lanes, LANE_DRIVING, true), 1)
	}
}

func TestParkingFlags(t *testing.T) {
	road := newRawRoad(&osmWayStub, nil, Tags{"parking:lane:right": "parallel", "parking:lane:left": "no_parking"})
	assert.True(t, road.ParkingLaneForward)
	assert.False(t, road.ParkingLaneBackward)

	road = newRawRoad(&osmWayStub, nil, Tags{"parking:lane:both": "diagonal"})
	assert.True(t, road.ParkingLaneForward)
	assert.True(t, road.ParkingLaneBackward)
}
