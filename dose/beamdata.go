package dose

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Energy is a discrete beam energy label, e.g. "6 MV".
type Energy string

// Beam energies of the default dataset. Custom datasets may define others.
const (
	Energy6MV  Energy = "6 MV"
	Energy10MV Energy = "10 MV"
	Energy15MV Energy = "15 MV"
)

// DefaultSAD is the source-axis distance of the treatment unit model in cm.
const DefaultSAD = 100.0

// DepthDoseSet holds the %DD depth tables of one energy, keyed by field
// size. Field sizes are kept sorted for bracket selection.
type DepthDoseSet struct {
	fieldSizes []float64
	tables     []*Table
}

// NewDepthDoseSet builds a DepthDoseSet from field size → depth table.
func NewDepthDoseSet(byFieldSize map[float64]*Table) (*DepthDoseSet, error) {
	if len(byFieldSize) == 0 {
		return nil, fmt.Errorf("depth dose set must have at least one field size")
	}
	sizes := make([]float64, 0, len(byFieldSize))
	for fs := range byFieldSize {
		sizes = append(sizes, fs)
	}
	sort.Float64s(sizes)

	set := &DepthDoseSet{
		fieldSizes: sizes,
		tables:     make([]*Table, len(sizes)),
	}
	for i, fs := range sizes {
		set.tables[i] = byFieldSize[fs]
	}
	return set, nil
}

// FieldSizes returns a copy of the sorted available field sizes.
func (s *DepthDoseSet) FieldSizes() []float64 {
	out := make([]float64, len(s.fieldSizes))
	copy(out, s.fieldSizes)
	return out
}

// BeamData is the calibrated reference dataset for one treatment unit:
// output factors by field size, wedge factors by angle, and per-energy
// %DD tables. Immutable after construction; safe for concurrent lookups.
type BeamData struct {
	SAD           float64
	OutputFactors *Table
	WedgeFactors  *Table // nil when the unit has no wedge calibration
	PDD           map[Energy]*DepthDoseSet
}

// Validate checks the dataset invariants, collecting every problem into a
// single error so a malformed dataset is reported completely, not one
// field at a time.
func (b *BeamData) Validate() error {
	var problems []string

	if b.SAD <= 0 {
		problems = append(problems, fmt.Sprintf("sad must be > 0, got %v", b.SAD))
	}
	if b.OutputFactors == nil || b.OutputFactors.Len() == 0 {
		problems = append(problems, "output factor table must not be empty")
	}
	if len(b.PDD) == 0 {
		problems = append(problems, "at least one energy must have %DD tables")
	}
	for energy, set := range b.PDD {
		if set == nil || len(set.fieldSizes) == 0 {
			problems = append(problems, fmt.Sprintf("energy %q has no field size tables", energy))
			continue
		}
		for i, tbl := range set.tables {
			if tbl == nil || tbl.Len() == 0 {
				problems = append(problems, fmt.Sprintf("energy %q field size %v has an empty depth table", energy, set.fieldSizes[i]))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid beam data: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Energies returns the configured beam energies, sorted by label.
func (b *BeamData) Energies() []Energy {
	out := make([]Energy, 0, len(b.PDD))
	for e := range b.PDD {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OutputFactor looks up the field-size output correction.
func (b *BeamData) OutputFactor(fieldSize float64) float64 {
	return b.OutputFactors.Interpolate(fieldSize)
}

// WedgeFactor looks up the wedge transmission factor for a wedge angle in
// degrees. Callers without a wedge must not call this; they use 1.0.
func (b *BeamData) WedgeFactor(angle float64) (float64, error) {
	if b.WedgeFactors == nil {
		return 0, fmt.Errorf("no wedge factor table configured")
	}
	return b.WedgeFactors.Interpolate(angle), nil
}

// PercentDepthDose resolves %DD for an (energy, field size, depth)
// triple. Depth is interpolated within each bracketing field-size table,
// then the two results are interpolated across field size. Field sizes
// outside the calibrated range clamp to the nearest end, as do depths.
func (b *BeamData) PercentDepthDose(energy Energy, fieldSize, depth float64) (float64, error) {
	set, ok := b.PDD[energy]
	if !ok {
		return 0, fmt.Errorf("energy %q not found in beam data (available: %v)", energy, b.Energies())
	}

	sizes := set.fieldSizes
	n := len(sizes)

	// Flat clamp at both ends of the field size range.
	if fieldSize <= sizes[0] {
		return set.tables[0].Interpolate(depth), nil
	}
	if fieldSize >= sizes[n-1] {
		return set.tables[n-1].Interpolate(depth), nil
	}

	// Bracketing pair lower <= fieldSize <= upper.
	upper := sort.SearchFloat64s(sizes, fieldSize)
	if sizes[upper] == fieldSize {
		return set.tables[upper].Interpolate(depth), nil
	}
	lower := upper - 1

	pddLower := set.tables[lower].Interpolate(depth)
	pddUpper := set.tables[upper].Interpolate(depth)
	return lerp(fieldSize, sizes[lower], sizes[upper], pddLower, pddUpper), nil
}

// beamDataSpec is the YAML schema of a beam dataset file.
type beamDataSpec struct {
	SAD           float64                                    `yaml:"sad"`
	OutputFactors map[float64]float64                        `yaml:"output_factors"`
	WedgeFactors  map[float64]float64                        `yaml:"wedge_factors"`
	PDD           map[string]map[float64]map[float64]float64 `yaml:"pdd"`
}

// LoadBeamData reads a YAML beam dataset from path and validates it.
func LoadBeamData(path string) (*BeamData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read beam data %q: %w", path, err)
	}
	data, err := ParseBeamData(raw)
	if err != nil {
		return nil, fmt.Errorf("load beam data %q: %w", path, err)
	}
	return data, nil
}

// ParseBeamData decodes and validates a YAML beam dataset.
func ParseBeamData(raw []byte) (*BeamData, error) {
	var spec beamDataSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parse beam data YAML: %w", err)
	}
	return buildBeamData(spec)
}

func buildBeamData(spec beamDataSpec) (*BeamData, error) {
	data := &BeamData{
		SAD: spec.SAD,
		PDD: make(map[Energy]*DepthDoseSet, len(spec.PDD)),
	}
	if data.SAD == 0 {
		data.SAD = DefaultSAD
	}

	var err error
	if len(spec.OutputFactors) > 0 {
		if data.OutputFactors, err = NewTableFromMap(spec.OutputFactors); err != nil {
			return nil, fmt.Errorf("output_factors: %w", err)
		}
	}
	if len(spec.WedgeFactors) > 0 {
		if data.WedgeFactors, err = NewTableFromMap(spec.WedgeFactors); err != nil {
			return nil, fmt.Errorf("wedge_factors: %w", err)
		}
	}

	for energy, byFieldSize := range spec.PDD {
		tables := make(map[float64]*Table, len(byFieldSize))
		for fs, depths := range byFieldSize {
			tbl, err := NewTableFromMap(depths)
			if err != nil {
				return nil, fmt.Errorf("pdd[%q][%v]: %w", energy, fs, err)
			}
			tables[fs] = tbl
		}
		set, err := NewDepthDoseSet(tables)
		if err != nil {
			return nil, fmt.Errorf("pdd[%q]: %w", energy, err)
		}
		data.PDD[Energy(energy)] = set
	}

	if err := data.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}
