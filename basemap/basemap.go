// Package basemap provides the land polygons and coastlines drawn on top of the SST fill.
//
// Coordinates are geographic (lon, lat) in degrees. Longitudes are kept as stored, so a ring
// may run past ±180 when it crosses the antimeridian; the renderer unwraps every ring relative
// to its first vertex. The embedded outlines are coarse. Pass a GeoJSON or GeoPackage file for
// detailed coastlines.
package basemap

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-spatial/geom"
	"github.com/go-spatial/geom/encoding/geojson"

	"github.com/pdok/sstmap/geomhelp"
)

var (
	//go:embed land.geojson
	embeddedLand []byte

	ErrLand = errors.New("invalid land data")
)

// Land holds open rings: Polygons are filled and outlined, Coastlines are only stroked.
// Polygon holes (lakes) are dropped.
type Land struct {
	Polygons   [][][2]float64
	Coastlines [][][2]float64
}

// Embedded returns the built-in coarse world outline.
func Embedded() (Land, error) {
	return ReadGeoJSON(bytes.NewReader(embeddedLand))
}

// Load reads land from a file: .gpkg is read as a GeoPackage, anything else as GeoJSON.
// An empty path yields the embedded outline.
func Load(path string) (Land, error) {
	if path == "" {
		return Embedded()
	}
	if strings.EqualFold(filepath.Ext(path), ".gpkg") {
		return ReadGeoPackage(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return Land{}, err
	}
	defer f.Close()
	land, err := ReadGeoJSON(f)
	if err != nil {
		return land, fmt.Errorf("%s: %w", path, err)
	}
	return land, nil
}

// featureCollection only decodes geometries, properties are not used.
type featureCollection struct {
	Features []struct {
		Geometry *geojson.Geometry `json:"geometry"`
	} `json:"features"`
}

// ReadGeoJSON decodes a FeatureCollection.
func ReadGeoJSON(r io.Reader) (Land, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return Land{}, fmt.Errorf("%w: %v", ErrLand, err)
	}
	var land Land
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		if err := land.Add(f.Geometry.Geometry); err != nil {
			return Land{}, fmt.Errorf("feature %d: %w", i, err)
		}
	}
	return land, nil
}

// Add appends a geometry. Points are ignored.
//
//nolint:cyclop
func (l *Land) Add(g geom.Geometry) error {
	switch g := g.(type) {
	case nil:
		return nil
	case geom.Polygon:
		return l.addPolygon(g)
	case *geom.Polygon:
		return l.addPolygon(*g)
	case geom.MultiPolygon:
		for _, p := range g {
			if err := l.addPolygon(p); err != nil {
				return err
			}
		}
	case *geom.MultiPolygon:
		return l.Add(*g)
	case geom.LineString:
		l.addLine(g)
	case *geom.LineString:
		l.addLine(*g)
	case geom.MultiLineString:
		for _, line := range g {
			l.addLine(line)
		}
	case *geom.MultiLineString:
		return l.Add(*g)
	case geom.Collection:
		for _, c := range g {
			if err := l.Add(c); err != nil {
				return err
			}
		}
	case *geom.Collection:
		return l.Add(*g)
	case geom.Point, *geom.Point, geom.MultiPoint, *geom.MultiPoint:
		return nil
	default:
		return fmt.Errorf("%w: unsupported geometry %T", ErrLand, g)
	}
	return nil
}

func (l *Land) addPolygon(p [][][2]float64) error {
	if len(p) == 0 {
		return nil
	}
	ring := geomhelp.OpenRing(p[0])
	if len(ring) < 3 {
		return fmt.Errorf("%w: polygon ring with %d vertices", ErrLand, len(ring))
	}
	l.Polygons = append(l.Polygons, ring)
	return nil
}

func (l *Land) addLine(line [][2]float64) {
	if len(line) >= 2 {
		l.Coastlines = append(l.Coastlines, line)
	}
}

// Empty reports whether there is nothing to draw.
func (l Land) Empty() bool {
	return len(l.Polygons) == 0 && len(l.Coastlines) == 0
}

// Extent is the bounding box of everything in l, nil when l is empty.
func (l Land) Extent() *geom.Extent {
	var ext *geom.Extent
	add := func(pts [][2]float64) {
		for _, pt := range pts {
			if ext == nil {
				ext = geom.NewExtent(pt)
				continue
			}
			ext.AddPoints(pt)
		}
	}
	for _, p := range l.Polygons {
		add(p)
	}
	for _, c := range l.Coastlines {
		add(c)
	}
	return ext
}

// LogSummary writes one line describing l.
func (l Land) LogSummary(source string) {
	if source == "" {
		source = "embedded outline"
	}
	if l.Empty() {
		log.Printf("land %s: empty", source)
		return
	}
	log.Printf("land %s: %d polygons, %d coastlines, extent %v", source, len(l.Polygons), len(l.Coastlines), *l.Extent())
}
