package osm2initial

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
)

// CoordinateTransform converts geographic coordinates (lon, lat) into planar ones (meters)
type CoordinateTransform interface {
	ToPlanar(pt orb.Point) (orb.Point, error)
}

// GPSBounds is the geographic extent of the map. It maps lon/lat linearly onto meter grid
// whose origin is the south-west corner.
type GPSBounds struct {
	Min orb.Point
	Max orb.Point

	widthMeters  float64
	heightMeters float64
}

// NewGPSBounds returns bounds covering given points
func NewGPSBounds(pts []orb.Point) *GPSBounds {
	bound := orb.MultiPoint(pts).Bound()
	return newGPSBoundsFromBound(bound)
}

func newGPSBoundsFromBound(bound orb.Bound) *GPSBounds {
	midLat := (bound.Min.Lat() + bound.Max.Lat()) / 2.0
	midLon := (bound.Min.Lon() + bound.Max.Lon()) / 2.0
	return &GPSBounds{
		Min:          bound.Min,
		Max:          bound.Max,
		widthMeters:  geo.Distance(orb.Point{bound.Min.Lon(), midLat}, orb.Point{bound.Max.Lon(), midLat}),
		heightMeters: geo.Distance(orb.Point{midLon, bound.Min.Lat()}, orb.Point{midLon, bound.Max.Lat()}),
	}
}

// Contains reports whether point is inside (or on the edge of) bounds
func (gb *GPSBounds) Contains(pt orb.Point) bool {
	return pt.Lon() >= gb.Min.Lon() && pt.Lon() <= gb.Max.Lon() && pt.Lat() >= gb.Min.Lat() && pt.Lat() <= gb.Max.Lat()
}

// ToPlanar converts geographic point into planar one. Fails for points outside of bounds.
func (gb *GPSBounds) ToPlanar(pt orb.Point) (orb.Point, error) {
	if !gb.Contains(pt) {
		return orb.Point{}, errors.Wrapf(ErrOutOfBounds, "lon: %f, lat: %f", pt.Lon(), pt.Lat())
	}
	return orb.Point{
		scale(pt.Lon(), gb.Min.Lon(), gb.Max.Lon(), gb.widthMeters),
		scale(pt.Lat(), gb.Min.Lat(), gb.Max.Lat(), gb.heightMeters),
	}, nil
}

// ToGPS converts planar point back into geographic one
func (gb *GPSBounds) ToGPS(pt orb.Point) orb.Point {
	return orb.Point{
		unscale(pt.X(), gb.Min.Lon(), gb.Max.Lon(), gb.widthMeters),
		unscale(pt.Y(), gb.Min.Lat(), gb.Max.Lat(), gb.heightMeters),
	}
}

// PlanarBound returns the extent of planar space
func (gb *GPSBounds) PlanarBound() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{gb.widthMeters, gb.heightMeters}}
}

func scale(value, min, max, meters float64) float64 {
	if max-min < geomEpsilon {
		return 0
	}
	return (value - min) / (max - min) * meters
}

func unscale(value, min, max, meters float64) float64 {
	if meters < geomEpsilon {
		return min
	}
	return min + value/meters*(max-min)
}

// lineToPlanar converts every point of the line. Any failure makes whole line invalid
func lineToPlanar(transform CoordinateTransform, pts []orb.Point) (orb.LineString, error) {
	result := make(orb.LineString, 0, len(pts))
	for _, pt := range pts {
		planarPt, err := transform.ToPlanar(pt)
		if err != nil {
			return nil, err
		}
		result = append(result, planarPt)
	}
	return dedupLine(result), nil
}

func lineToGPS(gb *GPSBounds, line []orb.Point) orb.LineString {
	result := make(orb.LineString, len(line))
	for i, pt := range line {
		result[i] = gb.ToGPS(pt)
	}
	return result
}
