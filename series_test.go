package plaqueassay

import (
	"math"
	"testing"
)

func TestDilutionSeriesClean(t *testing.T) {
	series := DilutionSeries{
		{Dilution: 0.025, PercentageInfected: 10},
		{Dilution: 0.000391, PercentageInfected: math.NaN()},
		{Dilution: 0.001563, PercentageInfected: 49},
		{Dilution: 0.000391, PercentageInfected: 80},
	}
	clean := series.Clean()
	if len(clean) != 3 {
		t.Fatalf("clean length = %d, want 3", len(clean))
	}
	for i := 1; i < len(clean); i++ {
		if clean[i].Dilution < clean[i-1].Dilution {
			t.Fatalf("clean series not sorted: %v", clean)
		}
	}
	if clean[0].PercentageInfected != 80 {
		t.Errorf("most dilute observation = %v, want the 80 percent point", clean[0])
	}
	// the original is untouched
	if len(series) != 4 {
		t.Errorf("original series mutated: %v", series)
	}
}

func TestFoldDilutionKey(t *testing.T) {
	cases := []struct {
		dilution float64
		want     int
	}{
		{0.025, 40},
		{0.00625, 160},
		{0.001563, 640},
		{0.000391, 2560},
		{0.000025, 40000},
	}
	for _, c := range cases {
		if got := FoldDilutionKey(c.dilution); got != c.want {
			t.Errorf("FoldDilutionKey(%g) = %d, want %d", c.dilution, got, c.want)
		}
	}
}

func TestLevelAveragesAndReplicates(t *testing.T) {
	series := makeSeries([]float64{90, 94, 70, 74, 50, 54, 30, 34})

	avg := series.LevelAverages()
	if len(avg) != 4 {
		t.Fatalf("levels = %d, want 4", len(avg))
	}
	if avg[2560] != 92 || avg[640] != 72 || avg[160] != 52 || avg[40] != 32 {
		t.Errorf("averages = %v", avg)
	}

	replicates := series.Replicates()
	if got := replicates[640]; len(got) != 2 || got[0] != 70 || got[1] != 74 {
		t.Errorf("replicates at 1:640 = %v, want [70 74]", got)
	}
}
