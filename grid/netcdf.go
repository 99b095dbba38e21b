package grid

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

var (
	classicMagic = []byte("CDF")
	hdf5Magic    = []byte("\x89HDF\r\n\x1a\n")
)

// ReadNetCDF decodes variable from a NetCDF file, classic or HDF5 based NetCDF-4.
// Fill and missing values become NaN, packed values are unpacked with scale_factor
// and add_offset.
func ReadNetCDF(path, variable string) (*Field, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	magic := make([]byte, len(hdf5Magic))
	n, err := io.ReadFull(file, magic)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, classicMagic):
		if _, err = file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return readClassic(file, path, variable)
	case bytes.Equal(magic, hdf5Magic):
		return readNetCDF4(path, variable)
	default:
		return nil, fmt.Errorf("%w: %s is not a NetCDF file", ErrDataFormat, path)
	}
}

func readClassic(file *os.File, path, variable string) (*Field, error) {
	f, err := cdf.Open(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataFormat, path, err)
	}
	if !hasVariable(f.Header, variable) {
		return nil, fmt.Errorf("%w: %s has no variable %q", ErrDataFormat, path, variable)
	}

	dims := f.Header.Dimensions(variable)
	lengths := f.Header.Lengths(variable)
	data, err := readVariable(f, variable, lengths)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataFormat, path, err)
	}
	unpack(func(name string) (float64, bool) {
		return attribute(f.Header, variable, name)
	}, data.Elements)

	coords := make(map[string][]float64, len(dims))
	for _, d := range dims {
		if !hasVariable(f.Header, d) {
			continue
		}
		c, err := readVariable(f, d, f.Header.Lengths(d))
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

// Load reads and normalizes variable from path.
func Load(path, variable string, names AxisNames) (*Grid, error) {
	field, err := ReadNetCDF(path, variable)
	if err != nil {
		return nil, err
	}
	return Normalize(field, names)
}

func hasVariable(h *cdf.Header, name string) bool {
	for _, v := range h.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

func readVariable(f *cdf.File, variable string, lengths []int) (*sparse.DenseArray, error) {
	n := 1
	for _, l := range lengths {
		n *= l
	}
	data := sparse.ZerosDense(lengths...)
	if n == 0 {
		return data, nil
	}
	r := f.Reader(variable, nil, nil)
	buf := r.Zero(n)
	read, err := r.Read(buf)
	if err != nil {
		return nil, err
	}
	if read != n {
		return nil, fmt.Errorf("read %d of %d values of %s", read, n, variable)
	}
	if err = toFloat64(buf, data.Elements); err != nil {
		return nil, fmt.Errorf("%s: %w", variable, err)
	}
	return data, nil
}

//nolint:cyclop
func toFloat64(buf interface{}, dst []float64) error {
	switch b := buf.(type) {
	case []float64:
		copy(dst, b)
	case []float32:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []int32:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []int16:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []int8:
		for i, v := range b {
			dst[i] = float64(v)
		}
	case []uint8:
		for i, v := range b {
			dst[i] = float64(v)
		}
	default:
		return fmt.Errorf("unsupported data type %T", buf)
	}
	return nil
}

// attribute returns the first value of a numeric attribute.
func attribute(h *cdf.Header, variable, name string) (float64, bool) {
	a := h.GetAttribute(variable, name)
	if a == nil {
		return 0, false
	}
	var values []float64
	switch v := a.(type) {
	case []float64:
		values = v
	default:
		values = make([]float64, sliceLen(a))
		if len(values) == 0 || toFloat64(a, values) != nil {
			return 0, false
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

func sliceLen(a interface{}) int {
	switch v := a.(type) {
	case []float32:
		return len(v)
	case []int32:
		return len(v)
	case []int16:
		return len(v)
	case []int8:
		return len(v)
	case []uint8:
		return len(v)
	}
	return 0
}

// unpack applies the CF attributes that attr finds on the variable.
func unpack(attr func(name string) (float64, bool), values []float64) {
	fill, hasFill := attr("_FillValue")
	missing, hasMissing := attr("missing_value")
	scale, hasScale := attr("scale_factor")
	offset, hasOffset := attr("add_offset")
	if !hasScale {
		scale = 1
	}
	if !hasOffset {
		offset = 0
	}
	for i, v := range values {
		if (hasFill && v == fill) || (hasMissing && v == missing) {
			values[i] = math.NaN()
			continue
		}
		values[i] = v*scale + offset
	}
}
