// internal/curve/curve_test.go
package curve

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const fixture = `
x: [10, 30]
y: [10, 20]
values:
  - [1000, 3000]
  - [2000, 4000]
`

func fixtureMap(t *testing.T) *Map {
	t.Helper()
	m, err := Parse([]byte(fixture))
	require.NoError(t, err)
	return m
}

func TestInterpolate_Midpoint(t *testing.T) {
	m := fixtureMap(t)
	assert.InDelta(t, 2500, m.Interpolate(20, 15), 1e-9)
	assert.InDelta(t, 1500, m.Interpolate(15, 10), 1e-9)
	assert.InDelta(t, 3500, m.Interpolate(30, 15), 1e-9)
}

func TestInterpolate_GridPointsExact(t *testing.T) {
	m := fixtureMap(t)
	assert.Equal(t, 1000.0, m.Interpolate(10, 10))
	assert.Equal(t, 3000.0, m.Interpolate(30, 10))
	assert.Equal(t, 2000.0, m.Interpolate(10, 20))
	assert.Equal(t, 4000.0, m.Interpolate(30, 20))
}

func TestInterpolate_Clamped(t *testing.T) {
	m := fixtureMap(t)
	assert.Equal(t, 1000.0, m.Interpolate(-50, -50))
	assert.Equal(t, 4000.0, m.Interpolate(100, 100))
	assert.InDelta(t, 1500, m.Interpolate(-5, 15), 1e-9)
	assert.InDelta(t, 3000, m.Interpolate(20, 99), 1e-9)
}

func TestInterpolate_NonFiniteCoordinates(t *testing.T) {
	m := fixtureMap(t)

	assert.Equal(t, 1000.0, m.Interpolate(math.NaN(), 10))
	assert.Equal(t, 1000.0, m.Interpolate(10, math.NaN()))
	assert.Equal(t, 1000.0, m.Interpolate(math.Inf(-1), math.Inf(-1)))
	assert.Equal(t, 4000.0, m.Interpolate(math.Inf(1), math.Inf(1)))
	assert.Equal(t, 2000.0, m.Interpolate(math.NaN(), math.Inf(1)))
}

func TestParse_NaNAxisIsResourceError(t *testing.T) {
	doc := "x: [0, .nan, 10]\ny: [1, 2]\nvalues:\n  - [1, 2, 3]\n  - [4, 5, 6]\n"
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResource)

	_, err = Parse([]byte("x: [oops"))
	var re *ResourceError
	require.ErrorAs(t, err, &re)
}

func TestNew_DecreasingAxes(t *testing.T) {
	m, err := New(
		[]float64{30, 10},
		[]float64{20, 10},
		[][]float64{{4000, 2000}, {3000, 1000}},
	)
	require.NoError(t, err)

	xmin, xmax, ymin, ymax := m.Bounds()
	assert.Equal(t, []float64{10, 30, 10, 20}, []float64{xmin, xmax, ymin, ymax})
	assert.InDelta(t, 2500, m.Interpolate(20, 15), 1e-9)
	assert.Equal(t, 1000.0, m.Interpolate(10, 10))
}

func TestNew_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		xs, ys []float64
		values [][]float64
	}{
		{"short x", []float64{1}, []float64{1, 2}, [][]float64{{1}, {2}}},
		{"short y", []float64{1, 2}, []float64{1}, [][]float64{{1, 2}}},
		{"row count", []float64{1, 2}, []float64{1, 2}, [][]float64{{1, 2}}},
		{"ragged row", []float64{1, 2}, []float64{1, 2}, [][]float64{{1, 2}, {3}}},
		{"non monotonic", []float64{1, 3, 2}, []float64{1, 2}, [][]float64{{1, 2, 3}, {4, 5, 6}}},
		{"repeated point", []float64{1, 1}, []float64{1, 2}, [][]float64{{1, 2}, {3, 4}}},
		{"nan x", []float64{0, math.NaN(), 10}, []float64{1, 2}, [][]float64{{1, 2, 3}, {4, 5, 6}}},
		{"inf y", []float64{1, 2}, []float64{1, math.Inf(1)}, [][]float64{{1, 2}, {3, 4}}},
		{"nan cell", []float64{1, 2}, []float64{1, 2}, [][]float64{{1, math.NaN()}, {3, 4}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.xs, tc.ys, tc.values)
			assert.Error(t, err)
		})
	}
}

func TestLoad_ResourceErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var re *ResourceError
	require.ErrorAs(t, err, &re)
	assert.True(t, errors.Is(err, ErrResource))
	assert.True(t, errors.Is(err, os.ErrNotExist))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("x: [1]\ny: [1, 2]\nvalues: [[1], [2]]\n"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrResource)
}

func TestLoad_JSON(t *testing.T) {
	p := filepath.Join(t.TempDir(), "kennfeld.json")
	doc := `{"x": [10, 30], "y": [10, 20], "values": [[1000, 3000], [2000, 4000]]}`
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o644))

	m, err := Load(p)
	require.NoError(t, err)
	assert.InDelta(t, 2500, m.Interpolate(20, 15), 1e-9)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{"curves/wbb.yaml": {Data: []byte(fixture)}}

	m, err := LoadFS(fsys, "curves/wbb.yaml")
	require.NoError(t, err)
	assert.InDelta(t, 2500, m.Interpolate(20, 15), 1e-9)

	_, err = LoadFS(fsys, "curves/other.yaml")
	assert.ErrorIs(t, err, ErrResource)
}

func TestDefault(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	xmin, xmax, ymin, ymax := m.Bounds()
	assert.Equal(t, -30.0, xmin)
	assert.Equal(t, 40.0, xmax)
	assert.Equal(t, 30.0, ymin)
	assert.Equal(t, 70.0, ymax)

	// warmer intake air means more heating power
	assert.Greater(t, m.Interpolate(10, 35), m.Interpolate(-10, 35))
}

func TestInterpolate_WithinCellBounds_Property(t *testing.T) {
	m := fixtureMap(t)

	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Float64Range(-100, 100).Draw(t, "x")
		y := rapid.Float64Range(-100, 100).Draw(t, "y")

		v := m.Interpolate(x, y)
		if math.IsNaN(v) || v < 1000-1e-9 || v > 4000+1e-9 {
			t.Fatalf("Interpolate(%v, %v) = %v outside grid range", x, y, v)
		}
	})
}
