package osm2initial

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	// Roads with trimmed centerline shorter than that are merged, meters
	defaultShortRoadThreshold = 5.0
)

// MergeOptions tunes short roads merging
type MergeOptions struct {
	Threshold float64
	Synthesis SynthesisOptions
	Logger    *zap.Logger
}

func (opts *MergeOptions) prepare() {
	if opts.Threshold <= 0 {
		opts.Threshold = defaultShortRoadThreshold
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Synthesis.Logger == nil {
		opts.Synthesis.Logger = opts.Logger
	}
}

// MergeShortRoads collapses roads shorter than threshold: the destination intersection is merged into the source one.
// Returns IDs of merged roads.
func MergeShortRoads(initialMap *InitialMap, opts MergeOptions) ([]StableRoadID, error) {
	opts.prepare()
	logger := opts.Logger

	candidates := []StableRoadID{}
	for _, roadID := range initialMap.RoadIDs() {
		if initialMap.Roads[roadID].Length() < opts.Threshold {
			candidates = append(candidates, roadID)
		}
	}

	merged := []StableRoadID{}
	for _, roadID := range candidates {
		// Previous merges could drop the road or make it longer
		road, ok := initialMap.Roads[roadID]
		if !ok || road.Length() >= opts.Threshold {
			continue
		}
		if initialMap.Intersections[road.Src].IsDeadEnd() && initialMap.Intersections[road.Dst].IsDeadEnd() {
			logger.Debug("isolated short road is kept", zap.Stringer("road", roadID))
			continue
		}
		affected, err := initialMap.mergeRoad(roadID, logger)
		if err != nil {
			return merged, errors.Wrapf(err, "Can't merge road %s", roadID)
		}
		if err := initialMap.synthesizeIntersections(affected, opts.Synthesis); err != nil {
			return merged, errors.Wrapf(err, "Can't recompute polygons after merging road %s", roadID)
		}
		if err := initialMap.validate(); err != nil {
			return merged, errors.Wrapf(err, "Graph is inconsistent after merging road %s", roadID)
		}
		merged = append(merged, roadID)
	}
	logger.Info("Short roads are merged",
		zap.Int("merged", len(merged)),
		zap.Int("roads", len(initialMap.Roads)),
		zap.Int("intersections", len(initialMap.Intersections)),
	)
	return merged, nil
}

// mergeRoad removes road and moves every road of its destination onto its source.
// Returns intersections whose polygons must be recomputed.
func (initialMap *InitialMap) mergeRoad(roadID StableRoadID, logger *zap.Logger) ([]StableIntersectionID, error) {
	road := initialMap.removeRoad(roadID)
	if road == nil {
		return nil, errors.Wrapf(ErrInvariantViolation, "road %s doesn't exist", roadID)
	}
	keepID, retireID := road.Src, road.Dst
	keep, ok := initialMap.Intersections[keepID]
	if !ok {
		return nil, errors.Wrapf(ErrInvariantViolation, "intersection %s doesn't exist", keepID)
	}
	retire, ok := initialMap.Intersections[retireID]
	if !ok {
		return nil, errors.Wrapf(ErrInvariantViolation, "intersection %s doesn't exist", retireID)
	}
	logger.Info("merging short road",
		zap.Stringer("road", roadID),
		zap.Stringer("keep", keepID),
		zap.Stringer("retire", retireID),
		zap.Float64("length", road.Length()),
	)

	// Merged road goes from keep to retire
	for _, otherID := range retire.RoadIDs() {
		other := initialMap.Roads[otherID]
		if other.HasEndpoint(keepID) {
			// Would become a self-loop
			logger.Warn("self-loop road dropped after merge",
				zap.Stringer("road", otherID),
				zap.Stringer("intersection", keepID),
			)
			initialMap.removeRoad(otherID)
			continue
		}
		if other.Src == retireID {
			other.Src = keepID
			other.OriginalCenter = concatLines(road.OriginalCenter, other.OriginalCenter)
		} else {
			other.Dst = keepID
			other.OriginalCenter = concatLines(other.OriginalCenter, reverseLine(road.OriginalCenter))
		}
		other.resetTrims()
		delete(retire.Roads, otherID)
		keep.Roads[otherID] = struct{}{}
	}
	if len(retire.Roads) != 0 {
		return nil, errors.Wrapf(ErrInvariantViolation, "intersection %s still has roads after merge", retireID)
	}
	initialMap.removeIntersection(retireID)
	if initialMap.FocusOn != nil && *initialMap.FocusOn == retireID {
		initialMap.FocusOn = &keepID
	}

	if len(keep.Roads) == 0 {
		initialMap.removeIntersection(keepID)
		if initialMap.FocusOn != nil && *initialMap.FocusOn == keepID {
			initialMap.FocusOn = nil
		}
		return nil, nil
	}
	affected := map[StableIntersectionID]struct{}{keepID: {}}
	for otherID := range keep.Roads {
		affected[initialMap.Roads[otherID].OtherEnd(keepID)] = struct{}{}
	}
	ids := maps.Keys(affected)
	slices.Sort(ids)
	return ids, nil
}
