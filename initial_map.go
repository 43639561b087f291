package osm2initial

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// Default width of every lane, meters
	defaultLaneWidth = 3.5
)

// BuildOptions tunes graph building
type BuildOptions struct {
	LaneLayout LaneLayoutFunc
	Edits      *MapEdits
	LaneWidth  float64
	Logger     *zap.Logger
}

func (opts *BuildOptions) prepare() {
	if opts.LaneLayout == nil {
		opts.LaneLayout = DefaultLaneLayout
	}
	if opts.LaneWidth <= 0 {
		opts.LaneWidth = defaultLaneWidth
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
}

// BuildInitialMap turns raw roads into intersections/roads graph. Polygons of intersections are left empty.
func BuildInitialMap(rawMap *RawMap, opts BuildOptions) (*InitialMap, error) {
	opts.prepare()
	logger := opts.Logger
	initialMap := NewInitialMap(rawMap.Name, rawMap.Bounds)

	for id, rawIntersection := range rawMap.Intersections {
		pt, err := rawMap.Bounds.ToPlanar(rawIntersection.Point)
		if err != nil {
			logger.Debug("intersection is out of bounds", zap.Stringer("intersection", id), zap.Error(err))
		}
		initialMap.Intersections[id] = newIntersection(id, rawIntersection.OSMNodeID, pt)
	}

	for _, roadID := range rawMap.RoadIDs() {
		rawRoad := rawMap.Roads[roadID]
		fields := []zap.Field{zap.Stringer("road", roadID), zap.Int64("osm_way_id", int64(rawRoad.OSMWayID))}
		if rawRoad.I1 == rawRoad.I2 {
			logger.Warn("self-loop road dropped", append(fields, zap.Stringer("intersection", rawRoad.I1))...)
			continue
		}
		center, err := lineToPlanar(rawMap.Bounds, rawRoad.Points)
		if err != nil {
			logger.Warn("road is out of bounds, dropped", append(fields, zap.Error(err))...)
			continue
		}
		if len(center) < 2 {
			logger.Warn("road has degenerate geometry, dropped", fields...)
			continue
		}
		lanes := opts.LaneLayout(rawRoad, roadID, opts.Edits)
		road := newRoad(roadID, rawRoad, center, lanes, opts.LaneWidth)
		if err := initialMap.insertRoad(road); err != nil {
			return nil, errors.Wrap(ErrInvariantViolation, err.Error())
		}
	}

	// Intersections whose roads have all been dropped
	for _, id := range initialMap.IntersectionIDs() {
		if len(initialMap.Intersections[id].Roads) == 0 {
			initialMap.removeIntersection(id)
		}
	}

	if err := initialMap.validate(); err != nil {
		return nil, errors.Wrap(err, "Graph is inconsistent after building")
	}
	logger.Info("Initial map is built",
		zap.String("name", initialMap.Name),
		zap.Int("roads", len(initialMap.Roads)),
		zap.Int("intersections", len(initialMap.Intersections)),
	)
	return initialMap, nil
}
