package osm2initial

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const (
	geomEpsilon = 1e-9
)

// Check if two lines (not segments) intersects and returns intersections Point
// p1, p2 - first line
// p3, p4 - second line
// Note: Euclidean space
func intersect(p1, p2, p3, p4 orb.Point) (orb.Point, error) {
	// Calculate the coefficients of the linear equations
	a1 := p2[1] - p1[1]
	b1 := p1[0] - p2[0]
	c1 := a1*p1[0] + b1*p1[1]
	a2 := p4[1] - p3[1]
	b2 := p3[0] - p4[0]
	c2 := a2*p3[0] + b2*p3[1]

	// Calculate the determinant
	det := a1*b2 - a2*b1
	if det == 0 {
		return orb.Point{}, fmt.Errorf("The lines are parallel")
	}

	// Calculate the intersection point
	x := (b2*c1 - b1*c2) / det
	y := (a1*c2 - a2*c1) / det
	return orb.Point{x, y}, nil
}

// segmentIntersection returns intersection point of segments [p1, p2] and [p3, p4] if there is one
func segmentIntersection(p1, p2, p3, p4 orb.Point) (orb.Point, bool) {
	d1x, d1y := p2[0]-p1[0], p2[1]-p1[1]
	d2x, d2y := p4[0]-p3[0], p4[1]-p3[1]
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < geomEpsilon {
		return orb.Point{}, false
	}
	ex, ey := p3[0]-p1[0], p3[1]-p1[1]
	t := (ex*d2y - ey*d2x) / denom
	u := (ex*d1y - ey*d1x) / denom
	if t < -geomEpsilon || t > 1+geomEpsilon || u < -geomEpsilon || u > 1+geomEpsilon {
		return orb.Point{}, false
	}
	return orb.Point{p1[0] + t*d1x, p1[1] + t*d1y}, true
}

// offsetCurve shifts line by given distance: positive distance is to the left, negative is to the right
func offsetCurve(line orb.LineString, distance float64) orb.LineString {
	// Initialize result list and segment list
	var result orb.LineString
	var segments [][2]orb.Point

	// Iterate over line segments and calculate offset segments
	for i := 1; i < len(line); i++ {
		// Get current and previous points
		p1 := line[i-1]
		p2 := line[i]

		// Calculate the vector between the points
		vec := [2]float64{p2[0] - p1[0], p2[1] - p1[1]}

		// Normalize the vector
		vecLen := math.Sqrt(vec[0]*vec[0] + vec[1]*vec[1])
		if vecLen < geomEpsilon {
			continue
		}
		vec = [2]float64{vec[0] / vecLen, vec[1] / vecLen}

		// Rotate the vector by 90 degrees
		rotated := [2]float64{-vec[1], vec[0]}

		// Scale the rotated vector by the distance
		offset := [2]float64{rotated[0] * distance, rotated[1] * distance}

		// Calculate the offset points
		op1 := [2]float64{p1[0] + offset[0], p1[1] + offset[1]}
		op2 := [2]float64{p2[0] + offset[0], p2[1] + offset[1]}

		// Add the offset segment to the list of segments
		segments = append(segments, [2]orb.Point{op1, op2})
	}
	if len(segments) == 0 {
		return line.Clone()
	}

	result = append(result, segments[0][0])
	// Iterate over the segments and calculate the intersections
	for i := 1; i < len(segments); i++ {
		// Get the current and previous segments
		seg1 := segments[i-1]
		seg2 := segments[i]
		// Calculate the intersection point
		intersection, err := intersect(seg1[0], seg1[1], seg2[0], seg2[1])
		if err != nil {
			continue
		}
		// If there is an intersection, add the intersection and the current segment to the result
		result = append(result, intersection)
	}
	result = append(result, segments[len(segments)-1][1])
	return result
}

// lineIntersection returns the first (walking along l1) intersection point of two lines
func lineIntersection(l1, l2 orb.LineString) (orb.Point, bool) {
	for i := 1; i < len(l1); i++ {
		best := math.Inf(1)
		var bestPt orb.Point
		found := false
		for j := 1; j < len(l2); j++ {
			pt, ok := segmentIntersection(l1[i-1], l1[i], l2[j-1], l2[j])
			if !ok {
				continue
			}
			if d := planar.Distance(l1[i-1], pt); d < best {
				best = d
				bestPt = pt
				found = true
			}
		}
		if found {
			return bestPt, true
		}
	}
	return orb.Point{}, false
}

// pointAlongLine returns point placed on given distance from the start of the line and the direction (radians) of line there.
// Distance is clamped to [0, length]
func pointAlongLine(line orb.LineString, distance float64) (orb.Point, float64) {
	if len(line) == 0 {
		return orb.Point{}, 0
	}
	if len(line) == 1 {
		return line[0], 0
	}
	if distance < 0 {
		distance = 0
	}
	cl := 0.0
	for i := 1; i < len(line); i++ {
		segLen := planar.Distance(line[i-1], line[i])
		if segLen < geomEpsilon {
			continue
		}
		angle := math.Atan2(line[i][1]-line[i-1][1], line[i][0]-line[i-1][0])
		if cl+segLen >= distance || i == len(line)-1 {
			fraction := math.Min((distance-cl)/segLen, 1.0)
			return pointOnSegmentByFraction(line[i-1], line[i], fraction), angle
		}
		cl += segLen
	}
	// All segments are degenerate
	return line[len(line)-1], 0
}

// pointOnSegmentByFraction returns a point on given segment using fraction of its length
func pointOnSegmentByFraction(p, q orb.Point, fraction float64) orb.Point {
	return orb.Point{
		(1-fraction)*p[0] + (fraction * q[0]),
		(1-fraction)*p[1] + (fraction * q[1]),
	}
}

// lineSlice returns part of the line between two distances (measured from the start of the line)
func lineSlice(line orb.LineString, from, to float64) orb.LineString {
	length := planar.Length(line)
	from = math.Max(0, from)
	to = math.Min(length, to)
	if to < from {
		to = from
	}
	start, _ := pointAlongLine(line, from)
	result := orb.LineString{start}
	cl := 0.0
	for i := 1; i < len(line); i++ {
		cl += planar.Distance(line[i-1], line[i])
		if cl <= from+geomEpsilon {
			continue
		}
		if cl >= to-geomEpsilon {
			break
		}
		result = append(result, line[i])
	}
	end, _ := pointAlongLine(line, to)
	result = append(result, end)
	return result
}

// distanceAlongLine projects point onto the line and returns distance from the start of the line to the projection
func distanceAlongLine(line orb.LineString, pt orb.Point) float64 {
	bestDist := math.Inf(1)
	bestAlong := 0.0
	cl := 0.0
	for i := 1; i < len(line); i++ {
		p, q := line[i-1], line[i]
		segLen := planar.Distance(p, q)
		t := 0.0
		if segLen > geomEpsilon {
			t = ((pt[0]-p[0])*(q[0]-p[0]) + (pt[1]-p[1])*(q[1]-p[1])) / (segLen * segLen)
			t = math.Max(0, math.Min(1, t))
		}
		proj := pointOnSegmentByFraction(p, q, t)
		if d := planar.Distance(proj, pt); d < bestDist {
			bestDist = d
			bestAlong = cl + t*segLen
		}
		cl += segLen
	}
	return bestAlong
}

// reverseLine reverses order of points in given line. Returns new slice
func reverseLine(pts orb.LineString) orb.LineString {
	inputLen := len(pts)
	output := make(orb.LineString, inputLen)
	for i, n := range pts {
		j := inputLen - i - 1
		output[j] = n
	}
	return output
}

// dedupLine drops consecutive duplicated points. Returns new slice
func dedupLine(pts []orb.Point) orb.LineString {
	output := make(orb.LineString, 0, len(pts))
	for i, pt := range pts {
		if i > 0 && pt == output[len(output)-1] {
			continue
		}
		output = append(output, pt)
	}
	return output
}

// concatLines joins two lines. The last point of the first line is expected to be equal to the first point of the second one
func concatLines(first, second orb.LineString) orb.LineString {
	output := make(orb.LineString, 0, len(first)+len(second))
	output = append(output, first...)
	if len(output) > 0 && len(second) > 0 && output[len(output)-1] == second[0] {
		second = second[1:]
	}
	return append(output, second...)
}

// closeRing makes sure that the first point is equal to the last one
func closeRing(pts []orb.Point) orb.Ring {
	ring := make(orb.Ring, len(pts), len(pts)+1)
	copy(ring, pts)
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// lineCrossesRing reports whether line enters the ring: either some line point is inside of the ring or some segments intersect
func lineCrossesRing(line orb.LineString, ring orb.Ring) bool {
	if len(ring) < 3 || len(line) == 0 {
		return false
	}
	for _, pt := range line {
		if planar.RingContains(ring, pt) {
			return true
		}
	}
	for i := 1; i < len(line); i++ {
		for j := 1; j < len(ring); j++ {
			if _, ok := segmentIntersection(line[i-1], line[i], ring[j-1], ring[j]); ok {
				return true
			}
		}
	}
	return false
}
