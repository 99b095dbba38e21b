// Package colorscale turns a continuous temperature range into discrete bands,
// each with one color.
package colorscale

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pdok/sstmap/config"
	"github.com/pdok/sstmap/mathhelp"
)

var ErrInvalidScale = errors.New("invalid scale")

// Scale is immutable after New.
// Band i covers [Boundaries[i], Boundaries[i+1]) and is drawn with Colors[i].
// Values below the first boundary fall in band 0, whose color is the sentinel.
type Scale struct {
	Boundaries []float64
	Colors     []color.RGBA
}

// New builds boundaries low, low+step, ..., high and one color per interval.
func New(low, high, step float64, base Colormap, sentinel color.RGBA) (*Scale, error) {
	if !mathhelp.IsFinite(low) || !mathhelp.IsFinite(high) || !(step > 0) || !(high > low) {
		return nil, fmt.Errorf("%w: low %v, high %v, step %v", ErrInvalidScale, low, high, step)
	}
	r := (high - low) / step
	k := int(math.Round(r))
	if math.Abs(r-float64(k)) > 1e-9 || k < 1 {
		return nil, fmt.Errorf("%w: %v..%v is not a whole number of %v steps", ErrInvalidScale, low, high, step)
	}

	boundaries := floats.Span(make([]float64, k+1), low, high)
	boundaries[k] = high
	colors := make([]color.RGBA, k)
	colors[0] = sentinel
	for i := 1; i < k; i++ {
		t := 0.
		if k > 2 {
			t = float64(i-1) / float64(k-2)
		}
		colors[i] = base.At(t)
	}
	return &Scale{Boundaries: boundaries, Colors: colors}, nil
}

// FromConfig builds the scale the config describes.
func FromConfig(cfg config.Scale) (*Scale, error) {
	base, err := ByName(cfg.Colormap)
	if err != nil {
		return nil, err
	}
	sentinel, err := config.ParseHexColor(cfg.Sentinel)
	if err != nil {
		return nil, err
	}
	return New(cfg.Low, cfg.High, cfg.Step, base, sentinel)
}

func (s *Scale) Len() int {
	return len(s.Colors)
}

func (s *Scale) Low() float64 {
	return s.Boundaries[0]
}

func (s *Scale) High() float64 {
	return s.Boundaries[len(s.Boundaries)-1]
}

// Band returns the index of the interval containing v. Values below the range
// clamp to the first band, values at or above the top clamp to the last one.
// NaN has no band.
func (s *Scale) Band(v float64) (int, bool) {
	if math.IsNaN(v) {
		return -1, false
	}
	// first boundary greater than v, minus one
	i := sort.Search(len(s.Boundaries), func(i int) bool { return s.Boundaries[i] > v }) - 1
	return mathhelp.Clamp(i, 0, len(s.Colors)-1), true
}

func (s *Scale) Color(v float64) (color.RGBA, bool) {
	i, ok := s.Band(v)
	if !ok {
		return color.RGBA{}, false
	}
	return s.Colors[i], true
}

// Interval returns the bounds of band i.
func (s *Scale) Interval(i int) (lo, hi float64) {
	return s.Boundaries[i], s.Boundaries[i+1]
}
