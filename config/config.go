// Package config holds the render configuration: the constants of a map run (variable name,
// temperature scale, figure layout, ticks and regions) with their defaults and validation.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/perimeterx/marshmallow"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed default.yaml
	embeddedDefaultYAML []byte

	ErrInvalidConfig = errors.New("invalid config")
)

type Config struct {
	Variable string   `yaml:"variable" json:"variable" default:"sst" validate:"required"`
	Axes     Axes     `yaml:"axes" json:"axes"`
	Scale    Scale    `yaml:"scale" json:"scale"`
	Figure   Figure   `yaml:"figure" json:"figure"`
	Map      Map      `yaml:"map" json:"map"`
	Regions  []Region `yaml:"regions" json:"regions" validate:"required,min=1,dive"`
}

// Axes lists the accepted dimension names, first match wins.
type Axes struct {
	Latitude  []string `yaml:"latitude" json:"latitude" default:"[\"lat\",\"latitude\",\"y\"]" validate:"required,min=1,dive,required"`
	Longitude []string `yaml:"longitude" json:"longitude" default:"[\"lon\",\"longitude\",\"x\"]" validate:"required,min=1,dive,required"`
}

type Scale struct {
	Low      float64 `yaml:"low" json:"low" default:"0"`
	High     float64 `yaml:"high" json:"high" default:"32" validate:"gtfield=Low"`
	Step     float64 `yaml:"step" json:"step" default:"1" validate:"gt=0"`
	Colormap string  `yaml:"colormap" json:"colormap" default:"jet" validate:"oneof=jet viridis gray"`
	Sentinel string  `yaml:"sentinel" json:"sentinel" default:"#ffffff" validate:"hexcolor"`
}

type Figure struct {
	WidthInches   float64 `yaml:"widthInches" json:"widthInches" default:"12" validate:"gt=0"`
	HeightInches  float64 `yaml:"heightInches" json:"heightInches" default:"6" validate:"gt=0"`
	DPI           int     `yaml:"dpi" json:"dpi" default:"400" validate:"min=10,max=1200"`
	Format        string  `yaml:"format" json:"format" default:"png" validate:"oneof=png jpg jpeg tiff"`
	Title         string  `yaml:"title" json:"title" default:"Monthly mean SST - %s" validate:"required"`
	ColorbarLabel string  `yaml:"colorbarLabel" json:"colorbarLabel" default:"°C"`
	TitleFontSize float64 `yaml:"titleFontSize" json:"titleFontSize" default:"14" validate:"gt=0"`
	TickFontSize  float64 `yaml:"tickFontSize" json:"tickFontSize" default:"10" validate:"gt=0"`
	LabelFontSize float64 `yaml:"labelFontSize" json:"labelFontSize" default:"9" validate:"gt=0"`
}

type Map struct {
	CentralLongitude float64 `yaml:"centralLongitude" json:"centralLongitude" default:"180" validate:"gte=-180,lte=360"`
	LatTickStep      float64 `yaml:"latTickStep" json:"latTickStep" default:"30" validate:"gt=0,lte=90"`
	// LonTicks are geographic longitudes with hand-authored labels, only valid for the
	// central longitude they were authored for.
	LonTicks                 []Tick  `yaml:"lonTicks" json:"lonTicks" validate:"dive"`
	LonTicksCentralLongitude float64 `yaml:"lonTicksCentralLongitude" json:"lonTicksCentralLongitude" default:"180"`
	LabelOffset              float64 `yaml:"labelOffset" json:"labelOffset" default:"6" validate:"gte=0"`
	RegionColor              string  `yaml:"regionColor" json:"regionColor" default:"#000000" validate:"hexcolor"`
	RegionWidth              float64 `yaml:"regionWidth" json:"regionWidth" default:"1.5" validate:"gt=0"`
	LandColor                string  `yaml:"landColor" json:"landColor" default:"#d3d3d3" validate:"hexcolor"`
	CoastColor               string  `yaml:"coastColor" json:"coastColor" default:"#000000" validate:"hexcolor"`
	CoastWidth               float64 `yaml:"coastWidth" json:"coastWidth" default:"0.5" validate:"gt=0"`
}

type Tick struct {
	Lon   float64 `yaml:"lon" json:"lon" validate:"gte=-360,lte=360"`
	Label string  `yaml:"label" json:"label"`
}

type Region struct {
	Name   string       `yaml:"name" json:"name" validate:"required"`
	Coords [][2]float64 `yaml:"coords" json:"coords" validate:"min=3"`
}

// Default returns the built-in configuration.
func Default() (Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return cfg, err
	}
	if err := decodeYAML(embeddedDefaultYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load returns the built-in configuration overlaid with the given file.
// An empty path yields the defaults. Files ending in .json are read as JSON,
// anything else as YAML.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			err = decodeJSON(data, &cfg)
		} else {
			err = decodeYAML(data, &cfg)
		}
		if err != nil {
			return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
		}
	}
	if err = cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if r := (c.Scale.High - c.Scale.Low) / c.Scale.Step; math.Abs(r-math.Round(r)) > 1e-9 {
		return fmt.Errorf("%w: scale range %v..%v is not a whole number of %v steps",
			ErrInvalidConfig, c.Scale.Low, c.Scale.High, c.Scale.Step)
	}
	if !strings.Contains(c.Figure.Title, "%s") {
		return fmt.Errorf("%w: title %q needs a %%s verb for the period", ErrInvalidConfig, c.Figure.Title)
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func decodeJSON(data []byte, cfg *Config) error {
	unknown, err := marshmallow.Unmarshal(data, cfg, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		keys := make([]string, 0, len(unknown))
		for k := range unknown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown keys %v", keys)
	}
	return nil
}

// The nested sections decode onto a fresh value, so they take their defaults first.

func (a *Axes) UnmarshalJSON(data []byte) error {
	return unmarshalSection(data, a)
}

func (s *Scale) UnmarshalJSON(data []byte) error {
	return unmarshalSection(data, s)
}

func (f *Figure) UnmarshalJSON(data []byte) error {
	return unmarshalSection(data, f)
}

func (m *Map) UnmarshalJSON(data []byte) error {
	if err := unmarshalSection(data, m); err != nil {
		return err
	}
	if m.LonTicks == nil {
		d, err := Default()
		if err != nil {
			return err
		}
		m.LonTicks = d.Map.LonTicks
	}
	return nil
}

func unmarshalSection(data []byte, section interface{}) error {
	err := defaults.Set(section)
	if err != nil {
		return err
	}
	unknown, err := marshmallow.Unmarshal(data, section, marshmallow.WithExcludeKnownFieldsFromMap(true))
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		return fmt.Errorf("unknown keys in %T", section)
	}
	return nil
}

// ParseHexColor accepts #rgb, #rgba, #rrggbb and #rrggbbaa.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == len(s) {
		return c, fmt.Errorf("color %q must start with #", s)
	}
	if len(hex) == 3 || len(hex) == 4 {
		var long strings.Builder
		for _, r := range hex {
			long.WriteRune(r)
			long.WriteRune(r)
		}
		hex = long.String()
	}
	if len(hex) != 6 && len(hex) != 8 {
		return c, fmt.Errorf("color %q has an invalid length", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return c, fmt.Errorf("color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	c.R = uint8(v >> 24)
	c.G = uint8(v >> 16)
	c.B = uint8(v >> 8)
	c.A = uint8(v)
	return c, nil
}

// MustParseHexColor is for values that already passed validation.
func MustParseHexColor(s string) color.RGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
