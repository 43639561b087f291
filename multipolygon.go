package osm2initial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
)

// RingClosure defines how an open ring (clipped by the region boundary) gets closed
type RingClosure uint16

const (
	// RING_CLOSURE_STRAIGHT connects the last point directly to the first one
	RING_CLOSURE_STRAIGHT = RingClosure(iota + 1)
	// RING_CLOSURE_BOUNDARY travels along the boundary polygon in the shorter direction
	RING_CLOSURE_BOUNDARY
)

func (iotaIdx RingClosure) String() string {
	return [...]string{"straight", "boundary"}[iotaIdx-1]
}

// ParseRingClosure returns closure strategy by its name
func ParseRingClosure(str string) (RingClosure, error) {
	switch str {
	case "", "straight":
		return RING_CLOSURE_STRAIGHT, nil
	case "boundary":
		return RING_CLOSURE_BOUNDARY, nil
	default:
		return 0, errors.Errorf("unknown ring closure '%s'", str)
	}
}

// GlueMultipolygon glues fragments of multipolygon's outer ways into closed rings.
// The result could be more than one disjoint ring. Empty result means gluing failed.
func GlueMultipolygon(fragments [][]orb.Point, boundary orb.Ring, closure RingClosure) []orb.Ring {
	// First deal with all of the closed loops
	rings := []orb.Ring{}
	open := make([][]orb.Point, 0, len(fragments))
	for _, pts := range fragments {
		if len(pts) < 2 {
			continue
		}
		if pts[0] == pts[len(pts)-1] {
			rings = append(rings, copyRing(pts))
			continue
		}
		open = append(open, pts)
	}
	if len(open) == 0 {
		return rings
	}

	// The main polygon
	result := copyRing(open[len(open)-1])
	open = open[:len(open)-1]
	reversed := false
	for len(open) > 0 {
		gluePt := result[len(result)-1]
		idx := -1
		for i, pts := range open {
			if pts[0] == gluePt || pts[len(pts)-1] == gluePt {
				idx = i
				break
			}
		}
		if idx < 0 {
			if reversed {
				// Something clearly broke: partial glue is worse than nothing
				return []orb.Ring{}
			}
			reversed = true
			result = orb.Ring(reverseLine(orb.LineString(result)))
			continue
		}
		appendPts := open[idx]
		open = append(open[:idx], open[idx+1:]...)
		if appendPts[0] != gluePt {
			appendPts = reverseLine(appendPts)
		}
		result = append(result[:len(result)-1], appendPts...)
	}
	result = closeClippedRing(result, boundary, closure)
	return append(rings, result)
}

// closeClippedRing connects ends of the ring. Some ways of the multipolygon could be clipped out.
func closeClippedRing(ring orb.Ring, boundary orb.Ring, closure RingClosure) orb.Ring {
	firstPt := ring[0]
	lastPt := ring[len(ring)-1]
	if firstPt == lastPt {
		return ring
	}
	if closure == RING_CLOSURE_BOUNDARY && len(boundary) > 1 {
		if arc, err := shortestBoundaryArc(boundary, lastPt, firstPt); err == nil {
			ring = append(ring, arc...)
		}
	}
	return append(ring, firstPt)
}

// shortestBoundaryArc returns points of the boundary between points closest to 'from' and 'to' walking in the shorter direction
func shortestBoundaryArc(boundary orb.Ring, from, to orb.Point) ([]orb.Point, error) {
	pts := []orb.Point(boundary)
	if pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	closestToFrom := closestPoint(pts, from)
	closestToTo := closestPoint(pts, to)

	forward, err := findSlice(pts, closestToFrom, closestToTo)
	if err != nil {
		return nil, errors.Wrap(err, "Can't slice boundary forward")
	}
	backward, err := findSlice(reverseLine(pts), closestToFrom, closestToTo)
	if err != nil {
		return nil, errors.Wrap(err, "Can't slice boundary backward")
	}
	if geo.Length(orb.LineString(forward)) <= geo.Length(orb.LineString(backward)) {
		return forward, nil
	}
	return backward, nil
}

func closestPoint(pts []orb.Point, target orb.Point) orb.Point {
	best := pts[0]
	bestDist := geo.Distance(best, target)
	for _, pt := range pts[1:] {
		if d := geo.Distance(pt, target); d < bestDist {
			best = pt
			bestDist = d
		}
	}
	return best
}

// findSlice walks cyclic sequence of points from start to end (inclusive)
func findSlice(pts []orb.Point, start, end orb.Point) ([]orb.Point, error) {
	startIdx := -1
	for i, pt := range pts {
		if pt == start {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return nil, errors.New("Couldn't find start")
	}
	result := []orb.Point{}
	for i := 0; i < len(pts); i++ {
		pt := pts[(startIdx+i)%len(pts)]
		result = append(result, pt)
		if pt == end {
			return result, nil
		}
	}
	return nil, errors.New("Couldn't find end")
}

func copyRing(pts []orb.Point) orb.Ring {
	ring := make(orb.Ring, len(pts))
	copy(ring, pts)
	return ring
}
