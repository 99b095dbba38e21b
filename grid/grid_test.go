package grid

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(dims []string, shape []int, coords map[string][]float64, values []float64) *Field {
	data := sparse.ZerosDense(shape...)
	copy(data.Elements, values)
	return &Field{Name: "sst", Dims: dims, Coords: coords, Data: data}
}

func TestNormalizeRemapsAndSorts(t *testing.T) {
	f := field(
		[]string{"time", "lat", "lon"},
		[]int{1, 2, 4},
		map[string][]float64{"lat": {-10, 10}, "lon": {0, 90, 180, 270}, "time": {0}},
		[]float64{
			1, 2, 3, 4,
			5, 6, 7, 8,
		},
	)
	g, err := Normalize(f, DefaultAxisNames)
	require.NoError(t, err)

	assert.Equal(t, []float64{-180, -90, 0, 90}, g.Lon)
	assert.Equal(t, []float64{-10, 10}, g.Lat)
	assert.Equal(t, []int{2, 4}, g.Values.Shape)
	assert.Equal(t, []float64{
		3, 4, 1, 2,
		7, 8, 5, 6,
	}, g.Values.Elements)
	assert.Equal(t, 4., g.At(0, 1))
}

func TestNormalizeDescendingLatitude(t *testing.T) {
	f := field(
		[]string{"lat", "lon"},
		[]int{3, 2},
		map[string][]float64{"lat": {60, 0, -60}, "lon": {0, 180}},
		[]float64{1, 2, 3, 4, 5, 6},
	)
	g, err := Normalize(f, DefaultAxisNames)
	require.NoError(t, err)
	assert.Equal(t, []float64{-60, 0, 60}, g.Lat)
	assert.Equal(t, []float64{-180, 0}, g.Lon)
	assert.Equal(t, []float64{6, 5, 4, 3, 2, 1}, g.Values.Elements)
}

func TestNormalizeTransposesLonLat(t *testing.T) {
	// stored lon × lat
	f := field(
		[]string{"longitude", "latitude", "depth"},
		[]int{2, 2, 1},
		map[string][]float64{"latitude": {-1, 1}, "longitude": {10, 20}},
		[]float64{
			1, 2, // lon 10: lat -1, lat 1
			3, 4, // lon 20
		},
	)
	g, err := Normalize(f, DefaultAxisNames)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 1}, g.Lat)
	assert.Equal(t, []float64{10, 20}, g.Lon)
	assert.Equal(t, []float64{1, 3, 2, 4}, g.Values.Elements)
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name string
		f    *Field
	}{
		{
			name: "extra dimension",
			f: field([]string{"time", "lat", "lon"}, []int{2, 1, 1},
				map[string][]float64{"lat": {0}, "lon": {0}}, nil),
		},
		{
			name: "no longitude",
			f: field([]string{"lat", "z"}, []int{2, 1},
				map[string][]float64{"lat": {0, 1}}, nil),
		},
		{
			name: "missing coordinate variable",
			f: field([]string{"lat", "lon"}, []int{1, 2},
				map[string][]float64{"lat": {0}}, nil),
		},
		{
			name: "latitude out of range",
			f: field([]string{"lat", "lon"}, []int{1, 1},
				map[string][]float64{"lat": {91}, "lon": {0}}, nil),
		},
		{
			name: "nan coordinate",
			f: field([]string{"lat", "lon"}, []int{1, 1},
				map[string][]float64{"lat": {0}, "lon": {math.NaN()}}, nil),
		},
		{
			name: "infinite longitude",
			f: field([]string{"lat", "lon"}, []int{1, 2},
				map[string][]float64{"lat": {0}, "lon": {10, math.Inf(1)}}, nil),
		},
		{
			name: "infinite latitude",
			f: field([]string{"lat", "lon"}, []int{2, 1},
				map[string][]float64{"lat": {0, math.Inf(-1)}, "lon": {0}}, nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.f, DefaultAxisNames)
			require.ErrorIs(t, err, ErrDataFormat)
		})
	}
}

func TestNormalizeQuarterDegreeGlobalGrid(t *testing.T) {
	var lon []float64
	for i := 0; i < 1440; i++ {
		lon = append(lon, float64(i)*0.25)
	}
	lat := []float64{-0.125, 0.125}
	values := make([]float64, len(lat)*len(lon))
	for i := range lat {
		for j := range lon {
			// each value remembers its original longitude
			values[i*len(lon)+j] = lon[j]
		}
	}
	g, err := New(lat, lon, values)
	require.NoError(t, err)

	n := NormalizeGrid(g)
	require.Len(t, n.Lon, 1440)
	assert.Equal(t, -180., n.Lon[0])
	assert.Equal(t, 179.75, n.Lon[len(n.Lon)-1])
	for j := 1; j < len(n.Lon); j++ {
		require.Greater(t, n.Lon[j], n.Lon[j-1], "strictly ascending at %d", j)
	}
	for i := range n.Lat {
		for j, x := range n.Lon {
			orig := n.At(i, j)
			assert.InDelta(t, x, orig-360*math.Floor((orig+180)/360), 1e-9)
		}
	}
}

func TestNormalizeGridIdempotent(t *testing.T) {
	lon := []float64{350, 10, 190, 170, 0}
	lat := []float64{45, -45}
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, math.NaN()}
	g, err := New(lat, lon, values)
	require.NoError(t, err)

	once := NormalizeGrid(g)
	twice := NormalizeGrid(once)

	opts := cmp.Options{cmpopts.EquateApprox(0, 1e-12), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(once.Lon, twice.Lon, opts); diff != "" {
		t.Errorf("lon changed (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once.Lat, twice.Lat, opts); diff != "" {
		t.Errorf("lat changed (-once +twice):\n%s", diff)
	}
	if diff := cmp.Diff(once.Values.Elements, twice.Values.Elements, opts); diff != "" {
		t.Errorf("values changed (-once +twice):\n%s", diff)
	}
	assert.Equal(t, []float64{-170, -10, 0, 10, 170}, once.Lon)
}

func TestNormalizeGridDuplicatesAreStable(t *testing.T) {
	g, err := New([]float64{0}, []float64{0, 360, -180, 180}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	n := NormalizeGrid(g)
	assert.Equal(t, []float64{-180, -180, 0, 0}, n.Lon)
	assert.Equal(t, []float64{3, 4, 1, 2}, n.Values.Elements)
}

func TestNewRejectsShapeMismatch(t *testing.T) {
	_, err := New([]float64{0, 1}, []float64{0}, []float64{1})
	require.ErrorIs(t, err, ErrDataFormat)
}

func TestRangeAndMissing(t *testing.T) {
	g, err := New([]float64{0}, []float64{0, 1, 2}, []float64{math.NaN(), 27.5, -1.8})
	require.NoError(t, err)
	lo, hi := g.Range()
	assert.Equal(t, -1.8, lo)
	assert.Equal(t, 27.5, hi)
	assert.Equal(t, 1, g.Missing())
}
