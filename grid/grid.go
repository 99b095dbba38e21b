// Package grid decodes gridded SST fields and normalizes them to a 2-D lat × lon
// grid with longitudes in [-180, 180).
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/ctessum/sparse"

	"github.com/pdok/sstmap/mapslicehelp"
	"github.com/pdok/sstmap/mathhelp"
)

var ErrDataFormat = errors.New("unexpected data format")

// Field is a decoded variable before normalization.
type Field struct {
	Name string
	// Dims are the dimension names in storage order, Data.Shape holds their lengths.
	Dims []string
	// Coords holds the coordinate variable of each dimension that has one.
	Coords map[string][]float64
	Data   *sparse.DenseArray
}

// Grid is a 2-D field, Values has shape [len(Lat), len(Lon)]. Missing samples are NaN.
type Grid struct {
	Lat    []float64
	Lon    []float64
	Values *sparse.DenseArray
}

// AxisNames lists the accepted names of the latitude and longitude dimensions.
type AxisNames struct {
	Latitude  []string
	Longitude []string
}

var DefaultAxisNames = AxisNames{
	Latitude:  []string{"lat", "latitude", "y"},
	Longitude: []string{"lon", "longitude", "x"},
}

// New builds a grid, values are row-major with latitude as the slow axis.
func New(lat, lon, values []float64) (*Grid, error) {
	if len(values) != len(lat)*len(lon) {
		return nil, fmt.Errorf("%w: %d values for a %d x %d grid", ErrDataFormat, len(values), len(lat), len(lon))
	}
	data := sparse.ZerosDense(len(lat), len(lon))
	copy(data.Elements, values)
	return &Grid{Lat: lat, Lon: lon, Values: data}, nil
}

func (g *Grid) At(i, j int) float64 {
	return g.Values.Elements[i*len(g.Lon)+j]
}

func (g *Grid) Shape() (rows, cols int) {
	return len(g.Lat), len(g.Lon)
}

// Range returns the smallest and largest non-NaN value, or NaN, NaN for an empty grid.
func (g *Grid) Range() (lo, hi float64) {
	lo, hi = math.NaN(), math.NaN()
	for _, v := range g.Values.Elements {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Missing counts the NaN samples.
func (g *Grid) Missing() int {
	n := 0
	for _, v := range g.Values.Elements {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// Normalize squeezes singleton dimensions off the field, orients it lat × lon and
// applies NormalizeGrid.
//
//nolint:cyclop
func Normalize(f *Field, names AxisNames) (*Grid, error) {
	var dims []string
	var shape []int
	latDim, lonDim := -1, -1
	for i, d := range f.Dims {
		switch {
		case matches(d, names.Latitude) && latDim < 0:
			latDim = len(dims)
		case matches(d, names.Longitude) && lonDim < 0:
			lonDim = len(dims)
		case f.Data.Shape[i] == 1:
			// time, depth
			continue
		default:
			return nil, fmt.Errorf("%w: %s has extra dimension %s of length %d", ErrDataFormat, f.Name, d, f.Data.Shape[i])
		}
		dims = append(dims, d)
		shape = append(shape, f.Data.Shape[i])
	}
	if latDim < 0 || lonDim < 0 {
		return nil, fmt.Errorf("%w: %s dimensions %v lack latitude or longitude", ErrDataFormat, f.Name, f.Dims)
	}

	lat, ok := f.Coords[dims[latDim]]
	if !ok || len(lat) != shape[latDim] {
		return nil, fmt.Errorf("%w: no coordinate values for dimension %s", ErrDataFormat, dims[latDim])
	}
	lon, ok := f.Coords[dims[lonDim]]
	if !ok || len(lon) != shape[lonDim] {
		return nil, fmt.Errorf("%w: no coordinate values for dimension %s", ErrDataFormat, dims[lonDim])
	}
	if len(lat) == 0 || len(lon) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDataFormat, f.Name)
	}
	for _, axis := range [][]float64{lat, lon} {
		for _, v := range axis {
			if !mathhelp.IsFinite(v) {
				return nil, fmt.Errorf("%w: coordinate %v of %s is not finite", ErrDataFormat, v, f.Name)
			}
		}
	}
	for _, v := range lat {
		if !mathhelp.BetweenInc(v, -90, 90) {
			return nil, fmt.Errorf("%w: latitude %v out of range", ErrDataFormat, v)
		}
	}

	values := make([]float64, len(lat)*len(lon))
	if latDim == 0 {
		copy(values, f.Data.Elements)
	} else {
		// stored as lon × lat
		for j := range lon {
			for i := range lat {
				values[i*len(lon)+j] = f.Data.Elements[j*len(lat)+i]
			}
		}
	}

	g, err := New(append([]float64(nil), lat...), append([]float64(nil), lon...), values)
	if err != nil {
		return nil, err
	}
	return NormalizeGrid(g), nil
}

func matches(name string, candidates []string) bool {
	for _, c := range candidates {
		if c == name {
			return true
		}
	}
	return false
}

// NormalizeGrid wraps longitudes onto [-180, 180) and sorts both axes ascending.
// Every value column moves with its longitude, every row with its latitude, and ties keep
// their order. Applying it to a normalized grid returns an equal grid.
func NormalizeGrid(g *Grid) *Grid {
	lon := make([]float64, len(g.Lon))
	for j, v := range g.Lon {
		lon[j] = mathhelp.WrapLongitude(v)
	}
	colOrder := mapslicehelp.StableOrder(lon)
	rowOrder := mapslicehelp.StableOrder(g.Lat)

	out := &Grid{
		Lat:    mapslicehelp.Permute(g.Lat, rowOrder),
		Lon:    mapslicehelp.Permute(lon, colOrder),
		Values: sparse.ZerosDense(len(g.Lat), len(g.Lon)),
	}
	if mapslicehelp.IsIdentity(colOrder) && mapslicehelp.IsIdentity(rowOrder) {
		copy(out.Values.Elements, g.Values.Elements)
		return out
	}
	nLon := len(lon)
	for i, si := range rowOrder {
		for j, sj := range colOrder {
			out.Values.Elements[i*nLon+j] = g.Values.Elements[si*nLon+sj]
		}
	}
	return out
}
