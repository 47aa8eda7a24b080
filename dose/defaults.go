package dose

// Default clinical dataset for a generic linac, used when no dataset file
// is configured. Values are representative commissioning-book numbers for
// open square fields at SAD 100 cm; clinical deployments load their own
// measured dataset instead.

func mustTable(entries map[float64]float64) *Table {
	t, err := NewTableFromMap(entries)
	if err != nil {
		panic(err)
	}
	return t
}

func mustDepthDoseSet(byFieldSize map[float64]map[float64]float64) *DepthDoseSet {
	tables := make(map[float64]*Table, len(byFieldSize))
	for fs, depths := range byFieldSize {
		tables[fs] = mustTable(depths)
	}
	set, err := NewDepthDoseSet(tables)
	if err != nil {
		panic(err)
	}
	return set
}

// DefaultBeamData returns the embedded default dataset. The returned
// value is freshly built per call; callers may share one across requests.
func DefaultBeamData() *BeamData {
	return &BeamData{
		SAD: DefaultSAD,
		OutputFactors: mustTable(map[float64]float64{
			5:   0.94,
			7.5: 0.98,
			10:  1.00,
			15:  1.05,
			20:  1.08,
		}),
		WedgeFactors: mustTable(map[float64]float64{
			15: 0.96,
			30: 0.91,
			45: 0.84,
			60: 0.76,
		}),
		PDD: map[Energy]*DepthDoseSet{
			Energy6MV: mustDepthDoseSet(map[float64]map[float64]float64{
				5:  {0: 100, 5: 81.5, 10: 62.0, 15: 46.5, 20: 35.0},
				10: {0: 100, 5: 83.0, 10: 65.0, 15: 49.5, 20: 38.0},
				15: {0: 100, 5: 84.5, 10: 67.5, 15: 52.0, 20: 40.5},
				20: {0: 100, 5: 85.5, 10: 69.0, 15: 54.0, 20: 42.5},
			}),
			Energy10MV: mustDepthDoseSet(map[float64]map[float64]float64{
				5:  {0: 100, 5: 86.0, 10: 71.0, 15: 57.0, 20: 46.0},
				10: {0: 100, 5: 87.5, 10: 73.0, 15: 59.5, 20: 48.5},
				15: {0: 100, 5: 88.5, 10: 74.5, 15: 61.5, 20: 50.5},
			}),
			Energy15MV: mustDepthDoseSet(map[float64]map[float64]float64{
				5:  {0: 100, 5: 88.5, 10: 75.5, 15: 62.5, 20: 52.0},
				10: {0: 100, 5: 90.0, 10: 77.5, 15: 65.0, 20: 54.5},
				15: {0: 100, 5: 91.0, 10: 79.0, 15: 67.0, 20: 56.5},
			}),
		},
	}
}
