package osm2initial

import (
	"strconv"
	"strings"
)

// LaneType is kind of the lane
type LaneType uint16

const (
	LANE_DRIVING = LaneType(iota + 1)
	LANE_PARKING
	LANE_SIDEWALK
	LANE_SHOULDER
)

func (iotaIdx LaneType) String() string {
	return [...]string{"driving", "parking", "sidewalk", "shoulder"}[iotaIdx-1]
}

// LaneSpec describes single lane. ReversePts is set when traffic on the lane goes against the digitization direction of the road.
type LaneSpec struct {
	Type       LaneType `msgpack:"type"`
	ReversePts bool     `msgpack:"reverse_pts"`
}

// MapEdits are user overrides applied on top of the tags
type MapEdits struct {
	LaneOverrides map[StableRoadID][]LaneSpec
}

// LaneLayoutFunc maps road to the ordered list of lanes: from the left-most lane to the right-most one looking along the road's points.
// It must be total: some lanes are returned for any tags.
type LaneLayoutFunc func(road *RawRoad, id StableRoadID, edits *MapEdits) []LaneSpec

// DefaultLaneLayout derives lanes from `lanes`, `lanes:forward`, `lanes:backward`, `oneway`, `junction`, `highway`, `sidewalk` tags and parking flags
func DefaultLaneLayout(road *RawRoad, id StableRoadID, edits *MapEdits) []LaneSpec {
	if edits != nil {
		if override, ok := edits.LaneOverrides[id]; ok && len(override) > 0 {
			result := make([]LaneSpec, len(override))
			copy(result, override)
			return result
		}
	}
	tags := road.Tags
	highway := getHighwayType(tags.Find("highway"))
	oneway, reversed := parseOneway(tags, highway)

	fwdDriving, backDriving := countDrivingLanes(tags, highway, oneway)
	if reversed {
		fwdDriving, backDriving = backDriving, fwdDriving
	}

	fwdSide := make([]LaneSpec, 0, fwdDriving+2)
	backSide := make([]LaneSpec, 0, backDriving+2)
	for i := 0; i < fwdDriving; i++ {
		fwdSide = append(fwdSide, LaneSpec{Type: LANE_DRIVING})
	}
	for i := 0; i < backDriving; i++ {
		backSide = append(backSide, LaneSpec{Type: LANE_DRIVING, ReversePts: true})
	}
	if road.ParkingLaneForward {
		fwdSide = append(fwdSide, LaneSpec{Type: LANE_PARKING})
	}
	if road.ParkingLaneBackward {
		backSide = append(backSide, LaneSpec{Type: LANE_PARKING, ReversePts: true})
	}
	sidewalkRight, sidewalkLeft := parseSidewalk(tags, highway)
	if sidewalkRight {
		fwdSide = append(fwdSide, LaneSpec{Type: LANE_SIDEWALK})
	} else if highway == HIGHWAY_MOTORWAY || highway == HIGHWAY_TRUNK {
		fwdSide = append(fwdSide, LaneSpec{Type: LANE_SHOULDER})
	}
	if sidewalkLeft {
		backSide = append(backSide, LaneSpec{Type: LANE_SIDEWALK, ReversePts: true})
	}

	// Back side is stored from the center outwards, so flip it to start from the left-most lane
	result := make([]LaneSpec, 0, len(fwdSide)+len(backSide))
	for i := len(backSide) - 1; i >= 0; i-- {
		result = append(result, backSide[i])
	}
	return append(result, fwdSide...)
}

// parseOneway returns whether the road is oneway and whether the allowed direction is opposite to the digitization direction
func parseOneway(tags Tags, highway HighwayType) (bool, bool) {
	onewayText := tags.Find("oneway")
	switch onewayText {
	case "yes", "1", "true":
		return true, false
	case "-1", "reverse":
		return true, true
	case "no", "0", "false":
		return false, false
	case "":
		if _, ok := junctionTypes[tags.Find("junction")]; ok {
			return true, false
		}
		return onewayDefaultByHighway[highway], false
	default:
		// Reversible or alternating ones depend on time conditions: treat them as two-way
		return false, false
	}
}

// countDrivingLanes returns number of driving lanes in both directions (relative to the allowed direction for oneway roads)
func countDrivingLanes(tags Tags, highway HighwayType, oneway bool) (int, int) {
	defaultLanes := defaultLanesByHighway[highway]
	if defaultLanes <= 0 {
		defaultLanes = 1
	}
	total := parseLanesCount(tags.Find("lanes"))
	fwd := parseLanesCount(tags.Find("lanes:forward"))
	back := parseLanesCount(tags.Find("lanes:backward"))
	if oneway {
		switch {
		case fwd > 0:
			return fwd, 0
		case total > 0:
			return total, 0
		default:
			return defaultLanes, 0
		}
	}
	if fwd <= 0 {
		switch {
		case total > 0 && back > 0 && total > back:
			fwd = total - back
		case total > 0:
			fwd = (total + 1) / 2
		default:
			fwd = defaultLanes
		}
	}
	if back <= 0 {
		switch {
		case total > fwd:
			back = total - fwd
		case total > 0:
			// e.g. `lanes=1` on a two-way road: both directions share it, still model one lane per direction
			back = 1
		default:
			back = defaultLanes
		}
	}
	return fwd, back
}

// parseLanesCount returns -1 for missing or broken values
func parseLanesCount(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return -1
	}
	// `lanes=2;3` appears for ways with varying lanes
	if idx := strings.IndexAny(text, ";|"); idx >= 0 {
		text = text[:idx]
	}
	lanes, err := strconv.Atoi(text)
	if err != nil || lanes <= 0 {
		return -1
	}
	return lanes
}

// parseSidewalk returns presence of sidewalks on the right and on the left side of the road
func parseSidewalk(tags Tags, highway HighwayType) (bool, bool) {
	switch tags.Find("sidewalk") {
	case "both", "yes":
		return true, true
	case "right":
		return true, false
	case "left":
		return false, true
	case "no", "none", "separate":
		return false, false
	default:
		def := sidewalkDefaultByHighway[highway]
		return def, def
	}
}

// laneWidths sums width of lanes per side of the road
func laneWidths(lanes []LaneSpec, laneWidth float64) (float64, float64) {
	fwdWidth, backWidth := 0.0, 0.0
	for _, lane := range lanes {
		if lane.ReversePts {
			backWidth += laneWidth
		} else {
			fwdWidth += laneWidth
		}
	}
	return fwdWidth, backWidth
}
