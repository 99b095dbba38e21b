package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/carlmjohnson/versioninfo"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/pdok/sstmap/basemap"
	"github.com/pdok/sstmap/batch"
	"github.com/pdok/sstmap/colorscale"
	"github.com/pdok/sstmap/config"
	"github.com/pdok/sstmap/grid"
	"github.com/pdok/sstmap/observability"
	"github.com/pdok/sstmap/region"
	"github.com/pdok/sstmap/render"
)

const INPUT string = `input`
const OUTPUT string = `output`
const CONFIG string = `config`
const LAND string = `land`
const DPI string = `dpi`
const FORMAT string = `format`
const METRICSTEXTFILE string = `metricsTextfile`

//nolint:funlen
func main() {
	// a missing .env is fine, the flags have defaults
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}

	app := cli.NewApp()
	app.Name = "sstmap"
	app.Usage = "Renders monthly sea surface temperature grids to annotated world maps"
	app.Version = versioninfo.Short()

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    INPUT,
			Aliases: []string{"i"},
			Usage:   "Glob of the monthly NetCDF grids. The file names must end in YYYYMM, YYYY_MM or YYYY-MM",
			Value:   "NOAA_SST_MENSAL/*.nc",
			EnvVars: []string{strcase.ToScreamingSnake(INPUT)},
		},
		&cli.StringFlag{
			Name:    OUTPUT,
			Aliases: []string{"o"},
			Usage:   "Output root, maps are written to <root>/<year>/SST_<year>_<month>.<ext>",
			Value:   "Plot_NOAA/sst",
			EnvVars: []string{strcase.ToScreamingSnake(OUTPUT)},
		},
		&cli.StringFlag{
			Name:    CONFIG,
			Aliases: []string{"c"},
			Usage:   "YAML or JSON render config, overlaid on the built-in defaults",
			EnvVars: []string{strcase.ToScreamingSnake(CONFIG)},
		},
		&cli.StringFlag{
			Name:    LAND,
			Aliases: []string{"l"},
			Usage:   "GeoJSON or GeoPackage (.gpkg) with land polygons in lon/lat. Defaults to a built-in coarse outline",
			EnvVars: []string{strcase.ToScreamingSnake(LAND)},
		},
		&cli.IntFlag{
			Name:    DPI,
			Usage:   "Override the configured resolution when > 0",
			EnvVars: []string{strcase.ToScreamingSnake(DPI)},
		},
		&cli.StringFlag{
			Name:    FORMAT,
			Aliases: []string{"f"},
			Usage:   "Override the configured image format: png, jpg or tiff",
			EnvVars: []string{strcase.ToScreamingSnake(FORMAT)},
		},
		&cli.StringFlag{
			Name:    METRICSTEXTFILE,
			Usage:   "Write the run metrics in Prometheus text format to this file",
			EnvVars: []string{strcase.ToScreamingSnake(METRICSTEXTFILE)},
		},
	}

	app.Action = func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		regions, err := region.FromConfig(cfg.Regions)
		if err != nil {
			return err
		}
		for _, r := range regions {
			log.Printf("  region %s", r)
		}
		scale, err := colorscale.FromConfig(cfg.Scale)
		if err != nil {
			return err
		}
		land, err := basemap.Load(c.String(LAND))
		if err != nil {
			return err
		}
		land.LogSummary(c.String(LAND))

		composer, err := render.NewComposer(render.OptionsFromConfig(cfg), scale, regions, land)
		if err != nil {
			return err
		}

		metrics := observability.NewMetrics(prometheus.NewRegistry())
		runner := batch.Runner{
			Source: batch.GlobSource{Pattern: c.String(INPUT)},
			Load: batch.NetCDFLoader(cfg.Variable, grid.AxisNames{
				Latitude:  cfg.Axes.Latitude,
				Longitude: cfg.Axes.Longitude,
			}),
			Renderer:   composer,
			OutputRoot: c.String(OUTPUT),
			Metrics:    metrics,
		}

		ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()
		_, runErr := runner.Run(ctx)

		if path := c.String(METRICSTEXTFILE); path != "" {
			if err = metrics.WriteTextfile(path); err != nil {
				log.Printf("could not write metrics to %s: %v", path, err)
			}
		}
		if errors.Is(runErr, context.Canceled) {
			log.Println("interrupted")
			return nil
		}
		return runErr
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the render config and applies the flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String(CONFIG))
	if err != nil {
		return cfg, err
	}
	if dpi := c.Int(DPI); dpi > 0 {
		cfg.Figure.DPI = dpi
	}
	if format := c.String(FORMAT); format != "" {
		cfg.Figure.Format = format
	}
	return cfg, cfg.Validate()
}
