package colorscale

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/pdok/sstmap/mathhelp"
)

// Colormap maps t in [0, 1] onto a color.
type Colormap interface {
	At(t float64) color.RGBA
}

// segment is one breakpoint of a channel: at x the channel has value y.
type segment struct {
	x, y float64
}

// SegmentedColormap interpolates each channel linearly between its own breakpoints.
type SegmentedColormap struct {
	red, green, blue []segment
}

func (m SegmentedColormap) At(t float64) color.RGBA {
	t = mathhelp.Clamp(t, 0, 1)
	return color.RGBA{
		R: channel(m.red, t),
		G: channel(m.green, t),
		B: channel(m.blue, t),
		A: 0xff,
	}
}

func channel(segs []segment, t float64) uint8 {
	i := sort.Search(len(segs), func(i int) bool { return segs[i].x >= t })
	var v float64
	switch {
	case i == 0:
		v = segs[0].y
	case i == len(segs):
		v = segs[len(segs)-1].y
	default:
		a, b := segs[i-1], segs[i]
		v = a.y + (t-a.x)/(b.x-a.x)*(b.y-a.y)
	}
	return uint8(math.Round(mathhelp.Clamp(v, 0, 1) * 0xff))
}

// Jet follows the segment data of matplotlib's jet.
var Jet = SegmentedColormap{
	red:   []segment{{0, 0}, {0.35, 0}, {0.66, 1}, {0.89, 1}, {1, 0.5}},
	green: []segment{{0, 0}, {0.125, 0}, {0.375, 1}, {0.64, 1}, {0.91, 0}, {1, 0}},
	blue:  []segment{{0, 0.5}, {0.11, 1}, {0.34, 1}, {0.65, 0}, {1, 0}},
}

// Viridis is sampled at eleven stops.
var Viridis = stops(
	color.RGBA{68, 1, 84, 255},
	color.RGBA{72, 35, 116, 255},
	color.RGBA{64, 67, 135, 255},
	color.RGBA{52, 94, 141, 255},
	color.RGBA{41, 120, 142, 255},
	color.RGBA{32, 144, 140, 255},
	color.RGBA{34, 167, 132, 255},
	color.RGBA{68, 190, 112, 255},
	color.RGBA{121, 209, 81, 255},
	color.RGBA{189, 222, 38, 255},
	color.RGBA{253, 231, 37, 255},
)

var Gray = stops(color.RGBA{0, 0, 0, 255}, color.RGBA{255, 255, 255, 255})

// stops builds a colormap from evenly spaced colors.
func stops(colors ...color.RGBA) SegmentedColormap {
	var m SegmentedColormap
	for i, c := range colors {
		x := float64(i) / float64(len(colors)-1)
		m.red = append(m.red, segment{x, float64(c.R) / 0xff})
		m.green = append(m.green, segment{x, float64(c.G) / 0xff})
		m.blue = append(m.blue, segment{x, float64(c.B) / 0xff})
	}
	return m
}

var colormaps = map[string]Colormap{
	"jet":     Jet,
	"viridis": Viridis,
	"gray":    Gray,
}

func ByName(name string) (Colormap, error) {
	m, ok := colormaps[name]
	if !ok {
		return nil, fmt.Errorf("unknown colormap %q", name)
	}
	return m, nil
}
