package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/pdok/sstmap/basemap"
	"github.com/pdok/sstmap/colorscale"
	"github.com/pdok/sstmap/config"
	"github.com/pdok/sstmap/grid"
	"github.com/pdok/sstmap/region"
)

func defaultScale(t *testing.T) *colorscale.Scale {
	t.Helper()
	s, err := colorscale.New(0, 32, 1, colorscale.Jet, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	require.NoError(t, err)
	return s
}

func testOptions(t *testing.T, dpi int, format string) Options {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Figure.DPI = dpi
	cfg.Figure.Format = format
	return OptionsFromConfig(cfg)
}

// globeCanvas maps display x -180..180 and latitude -90..90 onto a 360 x 180 pixel image,
// one pixel per degree.
func globeCanvas() (*vgimg.Canvas, draw.Canvas, *plot.Plot) {
	img := vgimg.NewWith(vgimg.UseWH(360, 180), vgimg.UseDPI(72))
	p := plot.New()
	p.X.Min, p.X.Max = -180, 180
	p.Y.Min, p.Y.Max = -90, 90
	return img, draw.New(img), p
}

// pixel returns the color at display x and latitude on a globeCanvas.
func pixel(img *vgimg.Canvas, x, lat float64) color.RGBA {
	px, py := int(math.Floor(x+180)), int(math.Floor(90-lat))
	return color.RGBAModel.Convert(img.Image().At(px, py)).(color.RGBA)
}

var white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

func TestBandFillUniformField(t *testing.T) {
	scale := defaultScale(t)
	g, err := grid.New([]float64{-45, 45}, []float64{-90, 90}, []float64{27.5, 27.5, 27.5, 27.5})
	require.NoError(t, err)

	img, c, p := globeCanvas()
	bandFill{grid: g, scale: scale, proj: Projection{CentralLon: 0}}.Plot(c, p)

	want := scale.Colors[27]
	for _, pt := range [][2]float64{{-150.5, -60.5}, {-0.5, 0.5}, {100.5, 30.5}, {170.5, 80.5}} {
		assert.Equal(t, want, pixel(img, pt[0], pt[1]), "at %v", pt)
	}
}

func TestBandFillLeavesNaNCellsBlank(t *testing.T) {
	scale := defaultScale(t)
	nan := math.NaN()
	// rows: lat -45 then 45, columns: lon -90 then 90
	g, err := grid.New([]float64{-45, 45}, []float64{-90, 90}, []float64{nan, 10, 20, nan})
	require.NoError(t, err)

	img, c, p := globeCanvas()
	bandFill{grid: g, scale: scale, proj: Projection{CentralLon: 0}}.Plot(c, p)

	assert.Equal(t, white, pixel(img, -90.5, -45.5))
	assert.Equal(t, scale.Colors[10], pixel(img, 90.5, -45.5))
	assert.Equal(t, scale.Colors[20], pixel(img, -90.5, 45.5))
	assert.Equal(t, white, pixel(img, 90.5, 45.5))
}

func TestBandFillRecentred(t *testing.T) {
	scale := defaultScale(t)
	// western hemisphere cold, eastern hemisphere warm
	g, err := grid.New([]float64{0}, []float64{-90, 90}, []float64{2.5, 29.5})
	require.NoError(t, err)

	img, c, p := globeCanvas()
	bandFill{grid: g, scale: scale, proj: Projection{CentralLon: 180}}.Plot(c, p)

	// display x < 0 is east of the dateline in the eastern hemisphere
	assert.Equal(t, scale.Colors[29], pixel(img, -90.5, 0.5))
	assert.Equal(t, scale.Colors[2], pixel(img, 90.5, 0.5))
}

func TestLandLayerWrapsAcrossTheEdge(t *testing.T) {
	red := color.RGBA{R: 0xff, A: 0xff}
	land := basemap.Land{Polygons: [][][2]float64{{{-10, 0}, {10, 0}, {10, 10}, {-10, 10}}}}

	img, c, p := globeCanvas()
	landLayer{
		land:  land,
		proj:  Projection{CentralLon: 180},
		fill:  red,
		coast: draw.LineStyle{Color: red, Width: vg.Points(0.1)},
	}.Plot(c, p)

	assert.Equal(t, red, pixel(img, 175.5, 5.5))
	assert.Equal(t, red, pixel(img, -175.5, 5.5))
	assert.Equal(t, white, pixel(img, 0.5, 5.5))
	assert.Equal(t, white, pixel(img, 175.5, 30.5))
}

func TestRegionLayerDrawsOutlineOnly(t *testing.T) {
	black := color.RGBA{A: 0xff}
	regions, err := region.Nino()
	require.NoError(t, err)

	img, c, p := globeCanvas()
	regionLayer{
		regions: regions,
		proj:    Projection{CentralLon: 180},
		style:   draw.LineStyle{Color: black, Width: vg.Points(1)},
		label:   (&Composer{opts: Options{LabelFontSize: vg.Points(4)}}).labelStyle(),
		offset:  6,
	}.Plot(c, p)

	// Niño 3.4 spans display x 10..60, the inside stays unpainted
	assert.Equal(t, white, pixel(img, 35.5, 2.5))
	// its northern edge at 5°N is stroked
	edge := pixel(img, 35.5, 5.2)
	assert.NotEqual(t, white, edge)
}

func TestEdges(t *testing.T) {
	assert.Equal(t, []float64{-1, 1, 3, 5}, edges([]float64{0, 2, 4}, 360))
	assert.Equal(t, []float64{-180, 180}, edges([]float64{0}, 360))
	assert.Empty(t, edges(nil, 360))
}

func TestColorbarTicks(t *testing.T) {
	ticks := ColorbarTicks(defaultScale(t))
	require.Len(t, ticks, 33)
	var labels []string
	for _, tick := range ticks {
		if tick.Label != "" {
			labels = append(labels, tick.Label)
		}
	}
	assert.Equal(t, []string{"0", "4", "8", "12", "16", "20", "24", "28", "32"}, labels)
}

func TestNewComposerRejectsBadOptions(t *testing.T) {
	scale := defaultScale(t)
	good := testOptions(t, 20, "png")

	_, err := NewComposer(good, nil, nil, basemap.Land{})
	assert.ErrorIs(t, err, ErrOptions)

	bad := good
	bad.Format = "gif"
	_, err = NewComposer(bad, scale, nil, basemap.Land{})
	assert.ErrorIs(t, err, ErrOptions)

	bad = good
	bad.DPI = 0
	_, err = NewComposer(bad, scale, nil, basemap.Land{})
	assert.ErrorIs(t, err, ErrOptions)

	bad = good
	bad.Title = "no verb"
	_, err = NewComposer(bad, scale, nil, basemap.Land{})
	assert.ErrorIs(t, err, ErrOptions)
}

func TestMapTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		0: {title: "Monthly mean SST - %s", want: "Monthly mean SST - 2024_03"},
		1: {title: "SST 100% - %s", want: "SST 100% - 2024_03"},
		2: {title: "%s %d %s", want: "2024_03 %d %s"},
	}
	for i, tt := range tests {
		opts := testOptions(t, 20, "png")
		opts.Title = tt.title
		assert.Equal(t, tt.want, opts.MapTitle("2024_03"), "test %d", i)

		composer, err := NewComposer(opts, defaultScale(t), nil, basemap.Land{})
		require.NoError(t, err, "test %d", i)
		p := composer.mapPlot(uniformGrid(t, 30, 20), "2024_03")
		assert.Equal(t, tt.want, p.Title.Text, "test %d", i)
	}
}

func uniformGrid(t *testing.T, step, v float64) *grid.Grid {
	t.Helper()
	var lat, lon, values []float64
	for y := -90 + step/2; y < 90; y += step {
		lat = append(lat, y)
	}
	for x := -180.; x < 180; x += step {
		lon = append(lon, x)
	}
	for range lat {
		for range lon {
			values = append(values, v)
		}
	}
	g, err := grid.New(lat, lon, values)
	require.NoError(t, err)
	return g
}

func TestRenderPNG(t *testing.T) {
	land, err := basemap.Embedded()
	require.NoError(t, err)
	regions, err := region.Nino()
	require.NoError(t, err)
	composer, err := NewComposer(testOptions(t, 20, "png"), defaultScale(t), regions, land)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, composer.Render(uniformGrid(t, 10, 27.5), "2024_01", &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	// 12 x 6 inches at 20 dpi
	assert.Equal(t, image.Rect(0, 0, 240, 120), img.Bounds())

	// some pixel carries the 27 °C band color
	want := defaultScale(t).Colors[27]
	found := false
	for y := 0; y < 120 && !found; y++ {
		for x := 0; x < 240 && !found; x++ {
			found = color.RGBAModel.Convert(img.At(x, y)).(color.RGBA) == want
		}
	}
	assert.True(t, found)
}

func TestRenderAllNaN(t *testing.T) {
	regions, err := region.Nino()
	require.NoError(t, err)
	composer, err := NewComposer(testOptions(t, 10, "jpeg"), defaultScale(t), regions, basemap.Land{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, composer.Render(uniformGrid(t, 30, math.NaN()), "1999_12", &buf))
	img, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 120, 60), img.Bounds())
}

func TestRenderTIFF(t *testing.T) {
	composer, err := NewComposer(testOptions(t, 10, "tiff"), defaultScale(t), nil, basemap.Land{})
	require.NoError(t, err)
	assert.Equal(t, "tiff", composer.Options().Ext())

	var buf bytes.Buffer
	require.NoError(t, composer.Render(uniformGrid(t, 30, 5), "2000_06", &buf))
	magic := buf.Bytes()[:4]
	assert.True(t, bytes.Equal(magic, []byte("II*\x00")) || bytes.Equal(magic, []byte("MM\x00*")))
}

func TestComposeRejectsEmptyGrid(t *testing.T) {
	composer, err := NewComposer(testOptions(t, 10, "png"), defaultScale(t), nil, basemap.Land{})
	require.NoError(t, err)

	_, err = composer.Compose(nil, "2024_01")
	assert.ErrorIs(t, err, grid.ErrDataFormat)

	g, err := grid.New(nil, []float64{0}, nil)
	require.NoError(t, err)
	_, err = composer.Compose(g, "2024_01")
	assert.ErrorIs(t, err, grid.ErrDataFormat)
}
