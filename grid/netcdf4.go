//go:build cgo

package grid

import (
	"fmt"

	"github.com/ctessum/sparse"
	"github.com/fhs/go-netcdf/netcdf"
)

// readNetCDF4 decodes variable through libnetcdf.
func readNetCDF4(path, variable string) (*Field, error) {
	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataFormat, path, err)
	}
	defer func() { _ = ds.Close() }()

	v, err := ds.Var(variable)
	if err != nil {
		return nil, fmt.Errorf("%w: %s has no variable %q", ErrDataFormat, path, variable)
	}
	dims, lengths, err := varDims(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataFormat, path, err)
	}
	data, err := readVar(v, lengths)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s: %v", ErrDataFormat, path, variable, err)
	}
	unpack(func(name string) (float64, bool) {
		return attr(v, name)
	}, data.Elements)

	coords := make(map[string][]float64, len(dims))
	for _, d := range dims {
		cv, err := ds.Var(d)
		if err != nil {
			// dimension without coordinate variable
			continue
		}
		_, cl, err := varDims(cv)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: coordinate %s: %v", ErrDataFormat, path, d, err)
		}
		c, err := readVar(cv, cl)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: coordinate %s: %v", ErrDataFormat, path, d, err)
		}
		coords[d] = c.Elements
	}

	return &Field{
		Name:   variable,
		Dims:   dims,
		Coords: coords,
		Data:   data,
	}, nil
}

func varDims(v netcdf.Var) ([]string, []int, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(dims))
	lengths := make([]int, len(dims))
	for i, d := range dims {
		if names[i], err = d.Name(); err != nil {
			return nil, nil, err
		}
		n, err := d.Len()
		if err != nil {
			return nil, nil, err
		}
		lengths[i] = int(n)
	}
	return names, lengths, nil
}

//nolint:cyclop
func readVar(v netcdf.Var, lengths []int) (*sparse.DenseArray, error) {
	data := sparse.ZerosDense(lengths...)
	n := len(data.Elements)
	if n == 0 {
		return data, nil
	}
	t, err := v.Type()
	if err != nil {
		return nil, err
	}
	var buf interface{}
	switch t {
	case netcdf.DOUBLE:
		err = v.ReadFloat64s(data.Elements)
		return data, err
	case netcdf.FLOAT:
		b := make([]float32, n)
		err = v.ReadFloat32s(b)
		buf = b
	case netcdf.INT:
		b := make([]int32, n)
		err = v.ReadInt32s(b)
		buf = b
	case netcdf.SHORT:
		b := make([]int16, n)
		err = v.ReadInt16s(b)
		buf = b
	case netcdf.BYTE:
		b := make([]int8, n)
		err = v.ReadInt8s(b)
		buf = b
	case netcdf.UBYTE:
		b := make([]uint8, n)
		err = v.ReadUint8s(b)
		buf = b
	default:
		return nil, fmt.Errorf("unsupported data type %v", t)
	}
	if err != nil {
		return nil, err
	}
	return data, toFloat64(buf, data.Elements)
}

// attr returns the first value of a numeric attribute.
//
//nolint:cyclop
func attr(v netcdf.Var, name string) (float64, bool) {
	a := v.Attr(name)
	n, err := a.Len()
	if err != nil || n == 0 {
		return 0, false
	}
	t, err := a.Type()
	if err != nil {
		return 0, false
	}
	var buf interface{}
	switch t {
	case netcdf.DOUBLE:
		b := make([]float64, n)
		err = a.ReadFloat64s(b)
		buf = b
	case netcdf.FLOAT:
		b := make([]float32, n)
		err = a.ReadFloat32s(b)
		buf = b
	case netcdf.INT:
		b := make([]int32, n)
		err = a.ReadInt32s(b)
		buf = b
	case netcdf.SHORT:
		b := make([]int16, n)
		err = a.ReadInt16s(b)
		buf = b
	case netcdf.BYTE:
		b := make([]int8, n)
		err = a.ReadInt8s(b)
		buf = b
	case netcdf.UBYTE:
		b := make([]uint8, n)
		err = a.ReadUint8s(b)
		buf = b
	default:
		return 0, false
	}
	if err != nil {
		return 0, false
	}
	values := make([]float64, n)
	if toFloat64(buf, values) != nil {
		return 0, false
	}
	return values[0], true
}
