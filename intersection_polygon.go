package osm2initial

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// Default length of the polygon capping a dead end, meters
	defaultDeadEndLength = 5.0
	// Sides narrower than that are widened to keep polygons non-degenerate
	minSideWidth = 0.5
	// Trim never eats more than this share of the road from one side
	maxTrimShare = 0.49
)

// SynthesisOptions tunes intersection polygons synthesis
type SynthesisOptions struct {
	DeadEndLength float64
	Workers       int
	Logger        *zap.Logger
	Progress      Progress
}

func (opts *SynthesisOptions) prepare() {
	if opts.DeadEndLength <= 0 {
		opts.DeadEndLength = defaultDeadEndLength
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}
}

// roadEnd is incident road looking away from the intersection
type roadEnd struct {
	roadID     StableRoadID
	isSrc      bool
	center     orb.LineString
	left       orb.LineString
	right      orb.LineString
	leftWidth  float64
	rightWidth float64
	angle      float64
	length     float64
}

// leftAt returns point of the left sideline which is perpendicular to the centerline at given distance
func (end *roadEnd) leftAt(distance float64) orb.Point {
	return end.sideAt(distance, end.leftWidth)
}

func (end *roadEnd) rightAt(distance float64) orb.Point {
	return end.sideAt(distance, -end.rightWidth)
}

func (end *roadEnd) sideAt(distance, offset float64) orb.Point {
	pt, angle := pointAlongLine(end.center, distance)
	return orb.Point{pt[0] - math.Sin(angle)*offset, pt[1] + math.Cos(angle)*offset}
}

type polygonResult struct {
	intersectionID StableIntersectionID
	polygon        orb.Ring
	ends           []roadEnd
	trims          []float64
}

// SynthesizePolygons computes polygon for every intersection and trims roads to meet them
func SynthesizePolygons(initialMap *InitialMap, opts SynthesisOptions) error {
	return initialMap.synthesizeIntersections(initialMap.IntersectionIDs(), opts)
}

// synthesizeIntersections is safe to run for subset of intersections: only trims on their sides of incident roads are changed.
// Polygons are computed in parallel from original centerlines, then applied sequentially.
func (initialMap *InitialMap) synthesizeIntersections(ids []StableIntersectionID, opts SynthesisOptions) error {
	opts.prepare()
	results := make([]polygonResult, len(ids))

	opts.Progress.Start("Synthesizing intersection polygons", len(ids))
	g := errgroup.Group{}
	g.SetLimit(opts.Workers)
	for i := range ids {
		idx := i
		g.Go(func() error {
			result, err := initialMap.computePolygon(ids[idx], opts.DeadEndLength)
			if err != nil {
				return errors.Wrapf(err, "Can't synthesize polygon for intersection %s", ids[idx])
			}
			results[idx] = result
			opts.Progress.Next()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	opts.Progress.Finish()

	touched := make(map[StableRoadID]struct{})
	for _, result := range results {
		initialMap.Intersections[result.intersectionID].Polygon = result.polygon
		for i, end := range result.ends {
			road := initialMap.Roads[end.roadID]
			if end.isSrc {
				road.srcTrim = result.trims[i]
			} else {
				road.dstTrim = result.trims[i]
			}
			touched[end.roadID] = struct{}{}
		}
	}
	for roadID := range touched {
		initialMap.Roads[roadID].applyTrims()
	}
	return nil
}

// computePolygon reads only original centerlines and widths: results don't depend on other intersections
func (initialMap *InitialMap) computePolygon(id StableIntersectionID, deadEndLength float64) (polygonResult, error) {
	intersection, ok := initialMap.Intersections[id]
	if !ok {
		return polygonResult{}, errors.Wrapf(ErrInvariantViolation, "intersection %s doesn't exist", id)
	}
	result := polygonResult{intersectionID: id}
	if len(intersection.Roads) == 0 {
		return result, nil
	}
	for _, roadID := range intersection.RoadIDs() {
		road, ok := initialMap.Roads[roadID]
		if !ok {
			return polygonResult{}, errors.Wrapf(ErrInvariantViolation, "intersection %s refers to missing road %s", id, roadID)
		}
		result.ends = append(result.ends, newRoadEnd(road, id))
	}
	// Counter-clockwise order
	sort.SliceStable(result.ends, func(i, j int) bool {
		return result.ends[i].angle < result.ends[j].angle
	})
	result.trims = make([]float64, len(result.ends))

	if len(result.ends) == 1 {
		end := &result.ends[0]
		trim := math.Min(deadEndLength, end.length*maxTrimShare)
		result.trims[0] = trim
		result.polygon = closeRing([]orb.Point{end.rightAt(0), end.rightAt(trim), end.leftAt(trim), end.leftAt(0)})
		return result, nil
	}

	maxWidth := 0.0
	for i := range result.ends {
		maxWidth = math.Max(maxWidth, math.Max(result.ends[i].leftWidth, result.ends[i].rightWidth))
	}
	hits := make([]bool, len(result.ends))
	for i := range result.ends {
		a := &result.ends[i]
		bIdx := (i + 1) % len(result.ends)
		b := &result.ends[bIdx]
		hit, ok := lineIntersection(a.left, b.right)
		if !ok {
			continue
		}
		result.trims[i] = math.Max(result.trims[i], distanceAlongLine(a.center, hit))
		result.trims[bIdx] = math.Max(result.trims[bIdx], distanceAlongLine(b.center, hit))
		hits[i] = true
		hits[bIdx] = true
	}
	pts := make([]orb.Point, 0, 2*len(result.ends)+1)
	for i := range result.ends {
		end := &result.ends[i]
		if !hits[i] {
			result.trims[i] = maxWidth
		}
		result.trims[i] = math.Min(result.trims[i], end.length*maxTrimShare)
		pts = append(pts, end.rightAt(result.trims[i]), end.leftAt(result.trims[i]))
	}
	result.polygon = closeRing(pts)
	return result, nil
}

func newRoadEnd(road *Road, id StableIntersectionID) roadEnd {
	end := roadEnd{
		roadID:     road.ID,
		isSrc:      road.Src == id,
		center:     road.OriginalCenter,
		rightWidth: road.FwdWidth,
		leftWidth:  road.BackWidth,
	}
	if !end.isSrc {
		end.center = reverseLine(road.OriginalCenter)
		end.rightWidth, end.leftWidth = road.BackWidth, road.FwdWidth
	}
	end.rightWidth = math.Max(end.rightWidth, minSideWidth)
	end.leftWidth = math.Max(end.leftWidth, minSideWidth)
	end.left = offsetCurve(end.center, end.leftWidth)
	end.right = offsetCurve(end.center, -end.rightWidth)
	_, end.angle = pointAlongLine(end.center, 0)
	end.length = planar.Length(end.center)
	return end
}
