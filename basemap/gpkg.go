package basemap

import (
	"fmt"

	"github.com/go-spatial/geom/encoding/gpkg"
)

// srs ids that are read as lon/lat degrees: undefined geographic, undefined cartesian and WGS 84.
var geographicSRS = map[int]bool{-1: true, 0: true, 4326: true}

type geometryTable struct {
	name    string
	gcolumn string
	srsID   int
}

// ReadGeoPackage reads every geometry table listed in gpkg_geometry_columns.
func ReadGeoPackage(file string) (Land, error) {
	handle, err := gpkg.Open(file)
	if err != nil {
		return Land{}, fmt.Errorf("error opening GeoPackage %s: %w", file, err)
	}
	defer handle.Close()

	tables, err := geometryTables(handle)
	if err != nil {
		return Land{}, err
	}
	if len(tables) == 0 {
		return Land{}, fmt.Errorf("%w: %s has no geometry tables", ErrLand, file)
	}

	var land Land
	for _, t := range tables {
		if !geographicSRS[t.srsID] {
			return Land{}, fmt.Errorf("%w: table %s uses srs %d, only lon/lat (4326) is supported", ErrLand, t.name, t.srsID)
		}
		if err = readTable(handle, t, &land); err != nil {
			return Land{}, err
		}
	}
	return land, nil
}

func geometryTables(h *gpkg.Handle) ([]geometryTable, error) {
	query := `SELECT table_name, column_name, srs_id FROM gpkg_geometry_columns;`
	rows, err := h.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v - %v", ErrLand, query, err)
	}
	defer rows.Close()

	var tables []geometryTable
	for rows.Next() {
		var t geometryTable
		if err = rows.Scan(&t.name, &t.gcolumn, &t.srsID); err != nil {
			return nil, fmt.Errorf("error reading the source table information: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (t geometryTable) selectSQL() string {
	return `SELECT "` + t.gcolumn + `" FROM "` + t.name + `";`
}

func readTable(h *gpkg.Handle, t geometryTable, land *Land) error {
	rows, err := h.Query(t.selectSQL())
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", ErrLand, t.name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err = rows.Scan(&raw); err != nil {
			return fmt.Errorf("err reading row values: %w", err)
		}
		if raw == nil {
			continue
		}
		sb, err := gpkg.DecodeGeometry(raw)
		if err != nil {
			return fmt.Errorf("%w: error decoding the geometry in %s: %v", ErrLand, t.name, err)
		}
		if err = land.Add(sb.Geometry); err != nil {
			return fmt.Errorf("table %s: %w", t.name, err)
		}
	}
	return rows.Err()
}
