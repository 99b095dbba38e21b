// Package region models named monitoring boxes such as the Niño regions.
// Coordinates are lon/lat pairs in unwrapped space: a ring may extend beyond ±180
// so it stays continuous across the antimeridian. Nothing here wraps longitudes.
package region

import (
	"errors"
	"fmt"

	"github.com/go-spatial/geom"

	"github.com/pdok/sstmap/config"
	"github.com/pdok/sstmap/geomhelp"
	"github.com/pdok/sstmap/mathhelp"
)

const wktLogLength = 120

var ErrGeometry = errors.New("invalid region geometry")

type Region struct {
	Name    string
	Polygon geom.Polygon
}

// New validates the ring. The stored ring does not repeat its first vertex.
func New(name string, ring [][2]float64) (Region, error) {
	if name == "" {
		return Region{}, fmt.Errorf("%w: region without a name", ErrGeometry)
	}
	open := geomhelp.OpenRing(ring)
	if err := validateRing(open); err != nil {
		return Region{}, fmt.Errorf("%w: %s: %v", ErrGeometry, name, err)
	}

	return Region{Name: name, Polygon: geom.Polygon{append([][2]float64(nil), open...)}}, nil
}

func validateRing(ring [][2]float64) error {
	distinct := make(map[[2]float64]struct{}, len(ring))
	for _, p := range ring {
		if !mathhelp.IsFinite(p[0]) || !mathhelp.IsFinite(p[1]) {
			return fmt.Errorf("vertex %v is not finite", p)
		}
		if !mathhelp.BetweenInc(p[1], -90, 90) {
			return fmt.Errorf("latitude of %v is out of range", p)
		}
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("need at least 3 distinct vertices, got %d", len(distinct))
	}
	if geomhelp.Shoelace(ring) == 0 {
		return fmt.Errorf("zero area: %s", geomhelp.WktMustEncode(geom.Polygon{ring}, wktLogLength))
	}
	if geomhelp.SelfIntersects(ring) {
		return fmt.Errorf("self-intersecting: %s", geomhelp.WktMustEncode(geom.Polygon{ring}, wktLogLength))
	}
	return nil
}

// Ring returns the exterior ring, without the closing vertex.
func (r Region) Ring() [][2]float64 {
	return r.Polygon[0]
}

// Centroid is the arithmetic mean of the ring's vertices, which equals the
// area centroid for the rectangles these regions usually are.
func (r Region) Centroid() [2]float64 {
	return geomhelp.VertexCentroid(r.Ring())
}

// LabelAnchor is where the label's top edge is centered: offset degrees below the centroid.
func (r Region) LabelAnchor(offset float64) [2]float64 {
	c := r.Centroid()
	return [2]float64{c[0], c[1] - offset}
}

func (r Region) Contains(pt [2]float64) bool {
	return geomhelp.RingContains(r.Ring(), pt)
}

func (r Region) Extent() *geom.Extent {
	return geom.NewExtent(r.Ring()...)
}

func (r Region) String() string {
	return r.Name + " " + geomhelp.WktMustEncode(r.Polygon, wktLogLength)
}

// Nino returns the regions of the built-in config, the four standard Niño boxes.
func Nino() ([]Region, error) {
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg.Regions)
}

// FromConfig builds and validates every configured region. Any failure wraps ErrGeometry.
func FromConfig(regions []config.Region) ([]Region, error) {
	result := make([]Region, 0, len(regions))
	for _, rc := range regions {
		r, err := New(rc.Name, rc.Coords)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, nil
}
