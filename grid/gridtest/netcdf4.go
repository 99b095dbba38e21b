//go:build cgo

package gridtest

import (
	"testing"

	"github.com/fhs/go-netcdf/netcdf"
)

// WriteNetCDF4 creates an HDF5 based NetCDF-4 file at path.
func WriteNetCDF4(t *testing.T, path string, f File) {
	t.Helper()
	ds, err := netcdf.CreateFile(path, netcdf.CLOBBER|netcdf.NETCDF4)
	if err != nil {
		t.Fatal(err)
	}
	check := func(err error) {
		t.Helper()
		if err != nil {
			_ = ds.Close()
			t.Fatal(err)
		}
	}

	timeDim, err := ds.AddDim("time", 1)
	check(err)
	latDim, err := ds.AddDim("lat", uint64(len(f.Lat)))
	check(err)
	lonDim, err := ds.AddDim("lon", uint64(len(f.Lon)))
	check(err)

	timeVar, err := ds.AddVar("time", netcdf.DOUBLE, []netcdf.Dim{timeDim})
	check(err)
	latVar, err := ds.AddVar("lat", netcdf.DOUBLE, []netcdf.Dim{latDim})
	check(err)
	var lonVar netcdf.Var
	if !f.SkipLonCoordinate {
		lonVar, err = ds.AddVar("lon", netcdf.DOUBLE, []netcdf.Dim{lonDim})
		check(err)
	}
	dims := []netcdf.Dim{timeDim, latDim, lonDim}
	if f.LonFirst {
		dims = []netcdf.Dim{timeDim, lonDim, latDim}
	}
	v, err := ds.AddVar(f.Variable, netcdf.FLOAT, dims)
	check(err)
	if f.FillValue != nil {
		check(v.Attr("_FillValue").WriteFloat32s([]float32{*f.FillValue}))
	}
	check(ds.EndDef())

	check(timeVar.WriteFloat64s([]float64{0}))
	check(latVar.WriteFloat64s(f.Lat))
	if !f.SkipLonCoordinate {
		check(lonVar.WriteFloat64s(f.Lon))
	}
	check(v.WriteFloat32s(f.stored()))
	check(ds.Close())
}
