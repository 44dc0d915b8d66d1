package plaqueassay

import (
	"math"
	"sort"
)

// Observation is a single well measurement within a dilution series: the
// dilution as a fold-concentration fraction (1:40 is 0.025) and the
// normalized percentage-infected value. Percentages are not clamped;
// measurement noise legitimately produces values below 0 or above 100.
type Observation struct {
	Dilution           float64
	PercentageInfected float64
}

// DilutionSeries is one sample's observations across the tested dilutions,
// replicate-resolved: each dilution level usually appears twice.
type DilutionSeries []Observation

// Clean returns a copy with undefined percentage-infected values dropped and
// the remainder sorted by ascending dilution.
func (s DilutionSeries) Clean() DilutionSeries {
	out := make(DilutionSeries, 0, len(s))
	for _, obs := range s {
		if math.IsNaN(obs.PercentageInfected) {
			continue
		}
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dilution < out[j].Dilution })
	return out
}

// Dilutions returns the dilution values in series order.
func (s DilutionSeries) Dilutions() []float64 {
	out := make([]float64, len(s))
	for i, obs := range s {
		out[i] = obs.Dilution
	}
	return out
}

// Percentages returns the percentage-infected values in series order.
func (s DilutionSeries) Percentages() []float64 {
	out := make([]float64, len(s))
	for i, obs := range s {
		out[i] = obs.PercentageInfected
	}
	return out
}

// FoldDilutionKey converts a dilution fraction to the integer fold-dilution
// used to key heuristic lookups, rounded to the nearest 10 so that
// floating-point dilutions like 0.000391 land on their nominal level (2560).
func FoldDilutionKey(dilution float64) int {
	return int(math.Round(1/dilution/10)) * 10
}

// LevelAverages returns the replicate-averaged percentage infected at each
// distinct dilution level, keyed by integer fold-dilution.
func (s DilutionSeries) LevelAverages() map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, obs := range s {
		key := FoldDilutionKey(obs.Dilution)
		sums[key] += obs.PercentageInfected
		counts[key]++
	}
	out := make(map[int]float64, len(sums))
	for key, sum := range sums {
		out[key] = sum / float64(counts[key])
	}
	return out
}

// Replicates groups the raw percentage-infected values by dilution level,
// keyed by integer fold-dilution.
func (s DilutionSeries) Replicates() map[int][]float64 {
	out := make(map[int][]float64)
	for _, obs := range s {
		key := FoldDilutionKey(obs.Dilution)
		out[key] = append(out[key], obs.PercentageInfected)
	}
	return out
}
