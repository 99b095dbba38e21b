package render

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/pdok/sstmap/config"
)

var ErrOptions = errors.New("invalid render options")

// Options are the fixed drawing constants of every map.
type Options struct {
	Width, Height vg.Length
	DPI           int
	// Format is png, jpg or tiff.
	Format string

	// Title holds a %s placeholder for the year/month token. Any other % is literal.
	Title         string
	ColorbarLabel string
	TitleFontSize vg.Length
	TickFontSize  vg.Length
	LabelFontSize vg.Length

	Projection Projection
	LonTicks   []config.Tick
	// LonTicksCentralLon is the central longitude LonTicks were authored for.
	LonTicksCentralLon float64
	LatTickStep        float64

	// LabelOffset is how many degrees below the centroid a region label hangs.
	LabelOffset float64
	RegionStyle draw.LineStyle
	LandColor   color.Color
	CoastStyle  draw.LineStyle
}

// OptionsFromConfig converts a validated config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Width:              vg.Length(cfg.Figure.WidthInches) * vg.Inch,
		Height:             vg.Length(cfg.Figure.HeightInches) * vg.Inch,
		DPI:                cfg.Figure.DPI,
		Format:             NormalizeFormat(cfg.Figure.Format),
		Title:              cfg.Figure.Title,
		ColorbarLabel:      cfg.Figure.ColorbarLabel,
		TitleFontSize:      vg.Points(cfg.Figure.TitleFontSize),
		TickFontSize:       vg.Points(cfg.Figure.TickFontSize),
		LabelFontSize:      vg.Points(cfg.Figure.LabelFontSize),
		Projection:         Projection{CentralLon: cfg.Map.CentralLongitude},
		LonTicks:           cfg.Map.LonTicks,
		LonTicksCentralLon: cfg.Map.LonTicksCentralLongitude,
		LatTickStep:        cfg.Map.LatTickStep,
		LabelOffset:        cfg.Map.LabelOffset,
		RegionStyle: draw.LineStyle{
			Color: config.MustParseHexColor(cfg.Map.RegionColor),
			Width: vg.Points(cfg.Map.RegionWidth),
		},
		LandColor: config.MustParseHexColor(cfg.Map.LandColor),
		CoastStyle: draw.LineStyle{
			Color: config.MustParseHexColor(cfg.Map.CoastColor),
			Width: vg.Points(cfg.Map.CoastWidth),
		},
	}
}

// NormalizeFormat maps jpeg to jpg and lowercases.
func NormalizeFormat(format string) string {
	format = strings.ToLower(format)
	if format == "jpeg" {
		return "jpg"
	}
	return format
}

// Ext is the output file extension, without the dot.
func (o Options) Ext() string {
	return NormalizeFormat(o.Format)
}

func (o Options) validate() error {
	switch {
	case o.Width <= 0 || o.Height <= 0:
		return fmt.Errorf("%w: figure size %v x %v", ErrOptions, o.Width, o.Height)
	case o.DPI <= 0:
		return fmt.Errorf("%w: dpi %d", ErrOptions, o.DPI)
	case !strings.Contains(o.Title, "%s"):
		return fmt.Errorf("%w: title %q has no %%s", ErrOptions, o.Title)
	}
	switch o.Ext() {
	case "png", "jpg", "tiff":
		return nil
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrOptions, o.Format)
	}
}

// MapTitle substitutes token for the first %s of the title.
func (o Options) MapTitle(token string) string {
	return strings.Replace(o.Title, "%s", token, 1)
}
