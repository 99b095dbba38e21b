//go:build !cgo

package grid

import "fmt"

func readNetCDF4(path, _ string) (*Field, error) {
	return nil, fmt.Errorf("%w: %s is NetCDF-4, reading it needs a cgo build with libnetcdf", ErrDataFormat, path)
}
