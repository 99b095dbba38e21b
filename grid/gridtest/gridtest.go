// Package gridtest writes small NetCDF files for tests.
package gridtest

import (
	"os"
	"testing"

	"github.com/ctessum/cdf"
)

// File describes a NetCDF file with one float variable on (time, lat, lon).
type File struct {
	Variable string
	Lat      []float64
	Lon      []float64
	// Values is row-major lat × lon.
	Values []float32
	// FillValue is written as _FillValue when set.
	FillValue *float32
	// LonFirst stores the variable as (time, lon, lat).
	LonFirst bool
	// SkipLonCoordinate leaves out the lon coordinate variable.
	SkipLonCoordinate bool
}

// Uniform returns a File on a regular global grid with every value set to v.
func Uniform(variable string, step float64, v float32) File {
	var lat, lon []float64
	for y := -90 + step/2; y < 90; y += step {
		lat = append(lat, y)
	}
	for x := 0.; x < 360; x += step {
		lon = append(lon, x)
	}
	values := make([]float32, len(lat)*len(lon))
	for i := range values {
		values[i] = v
	}
	return File{Variable: variable, Lat: lat, Lon: lon, Values: values}
}

// Write creates a NetCDF classic file at path and fails the test on any error.
func Write(t *testing.T, path string, f File) {
	t.Helper()
	w, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	dims := []string{"time", "lat", "lon"}
	if f.LonFirst {
		dims = []string{"time", "lon", "lat"}
	}
	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{1, len(f.Lat), len(f.Lon)})
	h.AddAttribute("", "title", "test grid")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddAttribute("lat", "units", "degrees_north")
	if !f.SkipLonCoordinate {
		h.AddVariable("lon", []string{"lon"}, []float64{0})
		h.AddAttribute("lon", "units", "degrees_east")
	}
	h.AddVariable(f.Variable, dims, []float32{0})
	h.AddAttribute(f.Variable, "units", "degC")
	if f.FillValue != nil {
		h.AddAttribute(f.Variable, "_FillValue", []float32{*f.FillValue})
	}
	h.Define()

	file, err := cdf.Create(w, h)
	if err != nil {
		t.Fatal(err)
	}
	write(t, file, "time", []float64{0})
	write(t, file, "lat", f.Lat)
	if !f.SkipLonCoordinate {
		write(t, file, "lon", f.Lon)
	}

	write(t, file, f.Variable, f.stored())
}

// stored returns the values in the storage order of the variable.
func (f File) stored() []float32 {
	if !f.LonFirst {
		return f.Values
	}
	values := make([]float32, len(f.Values))
	for i := range f.Lat {
		for j := range f.Lon {
			values[j*len(f.Lat)+i] = f.Values[i*len(f.Lon)+j]
		}
	}
	return values
}

func write(t *testing.T, f *cdf.File, variable string, data interface{}) {
	t.Helper()
	end := f.Header.Lengths(variable)
	start := make([]int, len(end))
	if _, err := f.Writer(variable, start, end).Write(data); err != nil {
		t.Fatalf("writing %s: %v", variable, err)
	}
}
