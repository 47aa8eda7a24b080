package dose

import (
	"fmt"
	"math"
	"sort"
)

// Point is a single (key, value) entry of a lookup table.
type Point struct {
	Key   float64
	Value float64
}

// Table is an immutable lookup table over sorted numeric keys.
// Keys are field sizes, depths, or wedge angles depending on use;
// values are dimensionless factors or %DD values.
type Table struct {
	keys []float64
	vals []float64
}

// NewTable builds a Table from points. Points may arrive in any order.
// Duplicate keys, non-finite keys or values, and empty input are
// construction errors: reference data is validated once here so lookups
// never have to.
func NewTable(points []Point) (*Table, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("lookup table must have at least one entry")
	}

	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	t := &Table{
		keys: make([]float64, len(sorted)),
		vals: make([]float64, len(sorted)),
	}
	for i, p := range sorted {
		if math.IsNaN(p.Key) || math.IsInf(p.Key, 0) {
			return nil, fmt.Errorf("lookup table key %v is not finite", p.Key)
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			return nil, fmt.Errorf("lookup table value %v at key %v is not finite", p.Value, p.Key)
		}
		if i > 0 && p.Key == sorted[i-1].Key {
			return nil, fmt.Errorf("duplicate lookup table key %v", p.Key)
		}
		t.keys[i] = p.Key
		t.vals[i] = p.Value
	}
	return t, nil
}

// NewTableFromMap builds a Table from a key→value map, the shape produced
// by the YAML dataset loader.
func NewTableFromMap(entries map[float64]float64) (*Table, error) {
	points := make([]Point, 0, len(entries))
	for k, v := range entries {
		points = append(points, Point{Key: k, Value: v})
	}
	return NewTable(points)
}

// Interpolate returns the table value at x using piecewise-linear
// interpolation. Exact key hits return the stored value; x outside the
// key range clamps flat to the nearest end (no extrapolation).
func (t *Table) Interpolate(x float64) float64 {
	n := len(t.keys)
	if x <= t.keys[0] {
		return t.vals[0]
	}
	if x >= t.keys[n-1] {
		return t.vals[n-1]
	}

	// First index with keys[i] >= x. The clamps above guarantee 0 < i < n,
	// and NewTable guarantees keys[i-1] != keys[i].
	i := sort.SearchFloat64s(t.keys, x)
	if t.keys[i] == x {
		return t.vals[i]
	}
	x0, x1 := t.keys[i-1], t.keys[i]
	y0, y1 := t.vals[i-1], t.vals[i]
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.keys) }

// MinKey returns the smallest key.
func (t *Table) MinKey() float64 { return t.keys[0] }

// MaxKey returns the largest key.
func (t *Table) MaxKey() float64 { return t.keys[len(t.keys)-1] }

// Keys returns a copy of the sorted keys.
func (t *Table) Keys() []float64 {
	out := make([]float64, len(t.keys))
	copy(out, t.keys)
	return out
}

// lerp is the shared linear interpolation formula, also used by the %DD
// resolver when interpolating across field sizes.
func lerp(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}
