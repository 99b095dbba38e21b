// Package render composes one SST map image per grid: band fill, land, Niño region
// outlines with labels, graticule ticks, a title and a horizontal colorbar.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pdok/sstmap/basemap"
	"github.com/pdok/sstmap/colorscale"
	"github.com/pdok/sstmap/grid"
	"github.com/pdok/sstmap/region"
)

const (
	// display degrees of width per degree of height
	mapAspect = 2
	// at most this many labelled colorbar ticks
	colorbarLabels = 9
)

// Composer holds everything that stays the same between maps. It is safe to reuse
// sequentially, each Compose call draws on a fresh canvas.
type Composer struct {
	opts     Options
	scale    *colorscale.Scale
	regions  []region.Region
	land     basemap.Land
	lonTicks []plot.Tick
	latTicks []plot.Tick
}

func NewComposer(opts Options, scale *colorscale.Scale, regions []region.Region, land basemap.Land) (*Composer, error) {
	if scale == nil || scale.Len() == 0 {
		return nil, fmt.Errorf("%w: no color scale", ErrOptions)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Composer{
		opts:     opts,
		scale:    scale,
		regions:  append([]region.Region(nil), regions...),
		land:     land,
		lonTicks: opts.Projection.LonTicks(opts.LonTicks, opts.LonTicksCentralLon),
		latTicks: LatTicks(opts.LatTickStep),
	}, nil
}

func (c *Composer) Options() Options {
	return c.opts
}

// Compose draws the map of g. The token (YYYY_MM) goes into the title.
func (c *Composer) Compose(g *grid.Grid, token string) (*vgimg.Canvas, error) {
	if g == nil || g.Values == nil {
		return nil, fmt.Errorf("%w: no grid to draw", grid.ErrDataFormat)
	}
	rows, cols := g.Shape()
	if rows == 0 || cols == 0 || len(g.Values.Elements) != rows*cols {
		return nil, fmt.Errorf("%w: grid of %d x %d with %d values", grid.ErrDataFormat, rows, cols, len(g.Values.Elements))
	}

	img := vgimg.NewWith(vgimg.UseWH(c.opts.Width, c.opts.Height), vgimg.UseDPI(c.opts.DPI))
	dc := draw.New(img)

	margin := c.opts.Width / 40
	colorbarHeight := c.opts.Height / 6
	mapArea := draw.Crop(dc, margin, -margin, colorbarHeight, -margin/2)
	barArea := draw.Crop(dc, c.opts.Width/5, -c.opts.Width/5, margin/2, -(c.opts.Height - colorbarHeight*0.9))

	m := c.mapPlot(g, token)
	m.Draw(fitAspect(m, mapArea, mapAspect))
	c.colorbarPlot().Draw(barArea)
	return img, nil
}

// Render composes the map of g and encodes it to w in the configured format.
func (c *Composer) Render(g *grid.Grid, token string, w io.Writer) error {
	img, err := c.Compose(g, token)
	if err != nil {
		return err
	}
	return c.Encode(img, w)
}

// Encode writes a composed canvas in the configured format.
func (c *Composer) Encode(img *vgimg.Canvas, w io.Writer) error {
	var err error
	switch c.opts.Ext() {
	case "png":
		_, err = vgimg.PngCanvas{Canvas: img}.WriteTo(w)
	case "jpg":
		_, err = vgimg.JpegCanvas{Canvas: img}.WriteTo(w)
	case "tiff":
		_, err = vgimg.TiffCanvas{Canvas: img}.WriteTo(w)
	default:
		err = fmt.Errorf("%w: unsupported format %q", ErrOptions, c.opts.Format)
	}
	return err
}

func (c *Composer) mapPlot(g *grid.Grid, token string) *plot.Plot {
	p := plot.New()
	p.Title.Text = c.opts.MapTitle(token)
	p.Title.TextStyle.Font.Size = c.opts.TitleFontSize

	p.X.Min, p.X.Max = -180, 180
	p.Y.Min, p.Y.Max = -90, 90
	p.X.Padding, p.Y.Padding = 0, 0
	p.X.Tick.Marker = plot.ConstantTicks(c.lonTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(c.latTicks)
	p.X.Tick.Label.Font.Size = c.opts.TickFontSize
	p.Y.Tick.Label.Font.Size = c.opts.TickFontSize

	p.Add(
		bandFill{
			grid:  g,
			scale: c.scale,
			proj:  c.opts.Projection,
			seam:  vg.Points(72 / float64(c.opts.DPI)),
		},
		landLayer{
			land:  c.land,
			proj:  c.opts.Projection,
			fill:  c.opts.LandColor,
			coast: c.opts.CoastStyle,
		},
		regionLayer{
			regions: c.regions,
			proj:    c.opts.Projection,
			style:   c.opts.RegionStyle,
			label:   c.labelStyle(),
			offset:  c.opts.LabelOffset,
		},
		frame{style: draw.LineStyle{Color: color.Black, Width: vg.Points(0.8)}},
	)
	return p
}

func (c *Composer) labelStyle() text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, c.opts.LabelFontSize),
		XAlign:  draw.XCenter,
		YAlign:  draw.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

func (c *Composer) colorbarPlot() *plot.Plot {
	p := plot.New()
	p.X.Min, p.X.Max = c.scale.Low(), c.scale.High()
	p.Y.Min, p.Y.Max = 0, 1
	p.X.Padding, p.Y.Padding = 0, 0
	p.HideY()
	p.X.Label.Text = c.opts.ColorbarLabel
	p.X.Label.TextStyle.Font.Size = c.opts.TickFontSize
	p.X.Tick.Label.Font.Size = c.opts.TickFontSize
	p.X.Tick.Marker = plot.ConstantTicks(ColorbarTicks(c.scale))
	p.Add(
		colorbarFill{scale: c.scale},
		frame{style: draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}},
	)
	return p
}

// ColorbarTicks marks every boundary and labels an evenly spaced subset of them,
// always including both ends.
func ColorbarTicks(s *colorscale.Scale) []plot.Tick {
	every := int(math.Ceil(float64(len(s.Boundaries)-1) / float64(colorbarLabels-1)))
	ticks := make([]plot.Tick, len(s.Boundaries))
	for i, b := range s.Boundaries {
		ticks[i] = plot.Tick{Value: b}
		if i%every == 0 || i == len(s.Boundaries)-1 {
			ticks[i].Label = fmt.Sprintf("%g", roundLabel(b))
		}
	}
	return ticks
}

// fitAspect shrinks area so the data canvas of p keeps width = aspect * height.
func fitAspect(p *plot.Plot, area draw.Canvas, aspect float64) draw.Canvas {
	da := p.DataCanvas(area)
	w, h := da.Max.X-da.Min.X, da.Max.Y-da.Min.Y
	if w <= 0 || h <= 0 {
		return area
	}
	if want := h * vg.Length(aspect); w > want {
		d := (w - want) / 2
		return draw.Crop(area, d, -d, 0, 0)
	}
	d := (h - w/vg.Length(aspect)) / 2
	return draw.Crop(area, 0, 0, d, -d)
}

// Ext is the extension of the files Encode produces.
func (c *Composer) Ext() string {
	return c.opts.Ext()
}
