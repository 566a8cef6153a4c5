// internal/curve/curve.go
package curve

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrResource matches every *ResourceError.
var ErrResource = errors.New("curve: resource error")

// ResourceError reports a missing or malformed curve resource.
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("curve %q: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

func (e *ResourceError) Is(target error) bool { return target == ErrResource }

// file is the on-disk layout. JSON files decode as well (YAML superset).
// Values holds one row per y axis point, one column per x axis point.
type file struct {
	X      []float64   `yaml:"x"`
	Y      []float64   `yaml:"y"`
	Values [][]float64 `yaml:"values"`
}

// Map is an immutable characteristic curve: a rectangular grid indexed by
// two strictly increasing axes. Safe for concurrent use once built.
type Map struct {
	xs     []float64
	ys     []float64
	values [][]float64 // values[j][i] at (xs[i], ys[j])
}

// New validates and copies a grid. Strictly decreasing axes are accepted and
// stored reversed so lookups always walk increasing axes.
func New(xs, ys []float64, values [][]float64) (*Map, error) {
	if len(xs) < 2 {
		return nil, fmt.Errorf("x axis needs at least 2 points, got %d", len(xs))
	}
	if len(ys) < 2 {
		return nil, fmt.Errorf("y axis needs at least 2 points, got %d", len(ys))
	}
	if len(values) != len(ys) {
		return nil, fmt.Errorf("grid has %d rows, y axis has %d points", len(values), len(ys))
	}
	for j, row := range values {
		if len(row) != len(xs) {
			return nil, fmt.Errorf("grid row %d has %d cells, x axis has %d points", j, len(row), len(xs))
		}
		if i := nonFinite(row); i >= 0 {
			return nil, fmt.Errorf("grid cell (%d, %d) is not finite", j, i)
		}
	}
	if i := nonFinite(xs); i >= 0 {
		return nil, fmt.Errorf("x axis point %d is not finite", i)
	}
	if i := nonFinite(ys); i >= 0 {
		return nil, fmt.Errorf("y axis point %d is not finite", i)
	}

	m := &Map{
		xs:     append([]float64(nil), xs...),
		ys:     append([]float64(nil), ys...),
		values: make([][]float64, len(values)),
	}
	for j, row := range values {
		m.values[j] = append([]float64(nil), row...)
	}

	revX, err := direction("x", m.xs)
	if err != nil {
		return nil, err
	}
	revY, err := direction("y", m.ys)
	if err != nil {
		return nil, err
	}

	if revX {
		reverse(m.xs)
		for _, row := range m.values {
			reverse(row)
		}
	}
	if revY {
		reverse(m.ys)
		for l, r := 0, len(m.values)-1; l < r; l, r = l+1, r-1 {
			m.values[l], m.values[r] = m.values[r], m.values[l]
		}
	}

	return m, nil
}

// Parse decodes a curve document held in memory.
func Parse(data []byte) (*Map, error) {
	m, err := parse(data)
	if err != nil {
		return nil, &ResourceError{Resource: "<data>", Err: err}
	}
	return m, nil
}

func parse(data []byte) (*Map, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return New(f.X, f.Y, f.Values)
}

// Load reads a curve file once.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ResourceError{Resource: path, Err: err}
	}
	m, err := parse(data)
	if err != nil {
		return nil, &ResourceError{Resource: path, Err: err}
	}
	return m, nil
}

// LoadFS reads a curve file from fsys.
func LoadFS(fsys fs.FS, name string) (*Map, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, &ResourceError{Resource: name, Err: err}
	}
	m, err := parse(data)
	if err != nil {
		return nil, &ResourceError{Resource: name, Err: err}
	}
	return m, nil
}

// Interpolate returns the bilinear interpolation at (x, y).
// Coordinates outside the axes are clamped to the nearest edge; the map
// never extrapolates. Grid points return the stored cell exactly.
func (m *Map) Interpolate(x, y float64) float64 {
	i, tx := locate(m.xs, x)
	j, ty := locate(m.ys, y)

	v00 := m.values[j][i]
	v10 := m.values[j][i+1]
	v01 := m.values[j+1][i]
	v11 := m.values[j+1][i+1]

	lo := lerp(v00, v10, tx)
	hi := lerp(v01, v11, tx)
	return lerp(lo, hi, ty)
}

// Bounds returns the axis ranges.
func (m *Map) Bounds() (xmin, xmax, ymin, ymax float64) {
	return m.xs[0], m.xs[len(m.xs)-1], m.ys[0], m.ys[len(m.ys)-1]
}

// ---- helpers ----

// locate returns the lower index of the segment bracketing v and the
// position inside it, after clamping v to the axis. NaN clamps to the
// lower edge.
func locate(axis []float64, v float64) (int, float64) {
	n := len(axis)
	if !(v > axis[0]) {
		return 0, 0
	}
	if v >= axis[n-1] {
		return n - 2, 1
	}

	k := sort.SearchFloat64s(axis, v) // axis[k] >= v, k >= 1
	i := k - 1
	return i, (v - axis[i]) / (axis[k] - axis[i])
}

// lerp is exact at t == 0 and t == 1.
func lerp(a, b, t float64) float64 {
	return (1-t)*a + t*b
}

func direction(name string, axis []float64) (reversed bool, err error) {
	inc := axis[1] > axis[0]
	for i := 1; i < len(axis); i++ {
		if inc && axis[i] <= axis[i-1] || !inc && axis[i] >= axis[i-1] {
			return false, fmt.Errorf("%s axis not strictly monotonic at index %d", name, i)
		}
	}
	return !inc, nil
}

// nonFinite returns the index of the first NaN or Inf in s, or -1.
func nonFinite(s []float64) int {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

func reverse(s []float64) {
	for l, r := 0, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
}
