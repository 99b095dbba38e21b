package render

import (
	"fmt"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gonum.org/v1/plot"

	"github.com/pdok/sstmap/config"
	"github.com/pdok/sstmap/mapslicehelp"
	"github.com/pdok/sstmap/mathhelp"
)

const lonTickStep = 60

// Projection is plate carrée recentred on CentralLon. Display x runs from -180 to 180
// with CentralLon in the middle, display y is the latitude.
type Projection struct {
	CentralLon float64
}

// X returns the display x of a geographic longitude.
func (p Projection) X(lon float64) float64 {
	return mathhelp.WrapLongitude(lon - p.CentralLon)
}

// Lon is the inverse of X.
func (p Projection) Lon(x float64) float64 {
	return mathhelp.WrapLongitude(x + p.CentralLon)
}

// Ring maps an unwrapped ring to display coordinates. Only the first vertex is wrapped,
// the rest follow by their longitude differences, so the result may leave [-180, 180).
func (p Projection) Ring(ring [][2]float64) [][2]float64 {
	out := make([][2]float64, len(ring))
	if len(ring) == 0 {
		return out
	}
	x := p.X(ring[0][0])
	for i, pt := range ring {
		if i > 0 {
			x += pt[0] - ring[i-1][0]
		}
		out[i] = [2]float64{x, pt[1]}
	}
	return out
}

// shifts are the display offsets every shape is drawn at, so a part beyond ±180
// shows up on the other edge. Clipping removes the rest.
var shifts = [...]float64{-360, 0, 360}

// LonTicks places the authored table when it was written for this central longitude,
// otherwise it labels every 60° of display x. Ticks falling on the same display x keep the
// first position and the last label.
func (p Projection) LonTicks(table []config.Tick, authoredFor float64) []plot.Tick {
	ticks := orderedmap.New[float64, string]()
	if len(table) > 0 && authoredFor == p.CentralLon {
		for _, t := range table {
			ticks.Set(p.X(t.Lon), t.Label)
		}
	} else {
		for x := -180.; x <= 180; x += lonTickStep {
			ticks.Set(x, LonLabel(p.Lon(x)))
		}
	}
	xs := mapslicehelp.OrderedMapKeys(ticks)
	labels := mapslicehelp.OrderedMapValues(ticks)
	out := make([]plot.Tick, len(xs))
	for i := range xs {
		out[i] = plot.Tick{Value: xs[i], Label: labels[i]}
	}
	return out
}

// LonLabel formats a longitude as 0, 180, 60°E or 120°W.
func LonLabel(lon float64) string {
	lon = roundLabel(mathhelp.WrapLongitude(lon))
	switch {
	case lon == 0:
		return "0"
	case lon == -180:
		return "180"
	case lon > 0:
		return fmt.Sprintf("%g°E", lon)
	default:
		return fmt.Sprintf("%g°W", -lon)
	}
}

// LatTicks labels -90..90 every step degrees.
func LatTicks(step float64) []plot.Tick {
	if !(step > 0) {
		return nil
	}
	var ticks []plot.Tick
	for i := 0; ; i++ {
		v := roundLabel(-90 + float64(i)*step)
		if v > 90 {
			break
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: LatLabel(v)})
	}
	return ticks
}

// LatLabel formats a latitude as 0°, 30°N or 30°S.
func LatLabel(lat float64) string {
	lat = roundLabel(lat)
	switch {
	case lat == 0:
		return "0°"
	case lat > 0:
		return fmt.Sprintf("%g°N", lat)
	default:
		return fmt.Sprintf("%g°S", -lat)
	}
}

// roundLabel drops floating point noise from stepped values.
func roundLabel(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
