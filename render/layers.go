package render

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/pdok/sstmap/basemap"
	"github.com/pdok/sstmap/colorscale"
	"github.com/pdok/sstmap/grid"
	"github.com/pdok/sstmap/mapslicehelp"
	"github.com/pdok/sstmap/mathhelp"
	"github.com/pdok/sstmap/region"
)

type transform func(float64) vg.Length

// edges returns the cell boundaries halfway between neighbouring centers.
// The outer cells are as wide as their neighbour, a lone center gets a cell of width span.
func edges(centers []float64, span float64) []float64 {
	n := len(centers)
	out := make([]float64, n+1)
	switch n {
	case 0:
		return out[:0]
	case 1:
		out[0], out[1] = centers[0]-span/2, centers[0]+span/2
		return out
	}
	for i := 1; i < n; i++ {
		out[i] = (centers[i-1] + centers[i]) / 2
	}
	out[0] = centers[0] - (centers[1]-centers[0])/2
	last := *mapslicehelp.LastElement(centers)
	out[n] = last + (last-centers[n-2])/2
	return out
}

// bandFill paints every grid cell with the color of its band. Cells in a row that share a
// band are merged into one rectangle, NaN cells are left unpainted.
type bandFill struct {
	grid  *grid.Grid
	scale *colorscale.Scale
	proj  Projection
	// seam widens each rectangle to hide anti-aliasing gaps between neighbours.
	seam vg.Length
}

func (f bandFill) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	latEdges := edges(f.grid.Lat, 180)
	lonEdges := edges(f.grid.Lon, 360)
	rows, cols := f.grid.Shape()

	for i := 0; i < rows; i++ {
		y0 := trY(mathhelp.Clamp(latEdges[i], -90, 90))
		y1 := trY(mathhelp.Clamp(latEdges[i+1], -90, 90))
		if y1 <= y0 {
			continue
		}
		y1 += f.seam
		for j := 0; j < cols; {
			band, ok := f.scale.Band(f.grid.At(i, j))
			k := j + 1
			for ; k < cols; k++ {
				next, nextOK := f.scale.Band(f.grid.At(i, k))
				if next != band || nextOK != ok {
					break
				}
			}
			if ok {
				f.fillSpan(c, trX, y0, y1, lonEdges[j], lonEdges[k], f.scale.Colors[band])
			}
			j = k
		}
	}
}

func (f bandFill) fillSpan(c draw.Canvas, trX transform, y0, y1 vg.Length, lon0, lon1 float64, clr color.Color) {
	x0 := f.proj.X(lon0)
	x1 := x0 + (lon1 - lon0)
	for _, s := range shifts {
		left, right := x0+s, x1+s
		if right <= -180 || left >= 180 {
			continue
		}
		xl, xr := trX(left), trX(right)+f.seam
		pts := []vg.Point{{X: xl, Y: y0}, {X: xr, Y: y0}, {X: xr, Y: y1}, {X: xl, Y: y1}}
		if clipped := c.ClipPolygonXY(pts); len(clipped) > 2 {
			c.FillPolygon(clr, clipped)
		}
	}
}

// landLayer fills the land polygons and strokes their outlines and the coastlines.
type landLayer struct {
	land  basemap.Land
	proj  Projection
	fill  color.Color
	coast draw.LineStyle
}

func (l landLayer) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, ring := range l.land.Polygons {
		disp := l.proj.Ring(ring)
		for _, s := range visibleShifts(disp) {
			pts := toPoints(disp, s, trX, trY)
			if clipped := c.ClipPolygonXY(pts); len(clipped) > 2 {
				c.FillPolygon(l.fill, clipped)
			}
			c.StrokeLines(l.coast, c.ClipLinesXY(append(pts, pts[0]))...)
		}
	}
	for _, line := range l.land.Coastlines {
		disp := l.proj.Ring(line)
		for _, s := range visibleShifts(disp) {
			c.StrokeLines(l.coast, c.ClipLinesXY(toPoints(disp, s, trX, trY))...)
		}
	}
}

// regionLayer strokes each region outline and hangs its name below the centroid.
type regionLayer struct {
	regions []region.Region
	proj    Projection
	style   draw.LineStyle
	label   text.Style
	offset  float64
}

func (l regionLayer) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, r := range l.regions {
		disp := l.proj.Ring(r.Ring())
		for _, s := range visibleShifts(disp) {
			pts := toPoints(disp, s, trX, trY)
			c.StrokeLines(l.style, c.ClipLinesXY(append(pts, pts[0]))...)
		}

		anchor := r.LabelAnchor(l.offset)
		pt := vg.Point{X: trX(l.proj.X(anchor[0])), Y: trY(anchor[1])}
		if c.Contains(pt) {
			c.FillText(l.label, pt, r.Name)
		}
	}
}

// frame outlines the data area.
type frame struct {
	style draw.LineStyle
}

func (f frame) Plot(c draw.Canvas, _ *plot.Plot) {
	c.StrokeLines(f.style, []vg.Point{
		c.Min,
		{X: c.Max.X, Y: c.Min.Y},
		c.Max,
		{X: c.Min.X, Y: c.Max.Y},
		c.Min,
	})
}

// colorbarFill draws one rectangle per band over [0, 1] in y.
type colorbarFill struct {
	scale *colorscale.Scale
}

func (f colorbarFill) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	y0, y1 := trY(0), trY(1)
	for i := 0; i < f.scale.Len(); i++ {
		lo, hi := f.scale.Interval(i)
		x0, x1 := trX(lo), trX(hi)
		c.FillPolygon(f.scale.Colors[i], []vg.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}})
	}
}

func toPoints(disp [][2]float64, shift float64, trX, trY transform) []vg.Point {
	pts := make([]vg.Point, len(disp))
	for i, pt := range disp {
		pts[i] = vg.Point{X: trX(pt[0] + shift), Y: trY(pt[1])}
	}
	return pts
}

// visibleShifts returns the shifts that move some of the display x range of pts into [-180, 180].
func visibleShifts(pts [][2]float64) []float64 {
	if len(pts) == 0 {
		return nil
	}
	lo, hi := pts[0][0], pts[0][0]
	for _, pt := range pts[1:] {
		lo = min(lo, pt[0])
		hi = max(hi, pt[0])
	}
	var out []float64
	for _, s := range shifts {
		if hi+s >= -180 && lo+s <= 180 {
			out = append(out, s)
		}
	}
	return out
}
