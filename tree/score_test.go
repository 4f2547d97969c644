package tree

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/grove-ml/grove/dataset"
)

// sampleColumn generates a fixed, irregular value stream so the online pass
// sees something less forgiving than an arithmetic sequence.
func sampleColumn(n int) []float64 {
	values := make([]float64, n)
	x := 0.5
	for i := range values {
		x = math.Mod(x*997.0+0.123, 17.0)
		values[i] = x - 8.5
	}
	return values
}

func TestWelfordMatchesGonum(t *testing.T) {
	values := sampleColumn(256)

	var w welford
	for _, v := range values {
		w.add(v)
	}

	wantMean := stat.Mean(values, nil)
	wantSD := stat.StdDev(values, nil)
	wantRSS := stat.Variance(values, nil) * float64(len(values)-1)

	if math.Abs(w.mean-wantMean) > 1e-9 {
		t.Errorf("online mean = %v, gonum mean = %v", w.mean, wantMean)
	}
	if math.Abs(w.sd()-wantSD) > 1e-9 {
		t.Errorf("online sd = %v, gonum sd = %v", w.sd(), wantSD)
	}
	if math.Abs(w.rss()-wantRSS) > 1e-6*math.Abs(wantRSS) {
		t.Errorf("online rss = %v, gonum rss = %v", w.rss(), wantRSS)
	}
}

func TestWelfordDegenerateStreams(t *testing.T) {
	var empty welford
	if empty.sd() != 0 || empty.rss() != 0 {
		t.Errorf("empty stream: sd = %v, rss = %v, want 0, 0", empty.sd(), empty.rss())
	}

	var single welford
	single.add(3.5)
	if single.mean != 3.5 || single.sd() != 0 {
		t.Errorf("single value: mean = %v, sd = %v, want 3.5, 0", single.mean, single.sd())
	}
}

func TestGiniImpurity(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   float64
	}{
		{"pure", []int{0, 10, 0}, 0},
		{"even two-way", []int{0, 5, 5}, 0.5},
		{"even three-way", []int{4, 4, 4}, 2.0 / 3.0},
		{"empty", []int{0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 0
			for _, c := range tt.counts {
				total += c
			}
			if got := giniImpurity(tt.counts, total); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("giniImpurity(%v) = %v, want %v", tt.counts, got, tt.want)
			}
		})
	}
}

func TestTargetStatsReadsTargetColumn(t *testing.T) {
	ds := dataset.Dataset{
		regressionRow(1, 10),
		regressionRow(2, 20),
		regressionRow(3, 30),
	}

	w := targetStats(ds, 1)
	if w.n != 3 || math.Abs(w.mean-20) > 1e-12 {
		t.Errorf("target stats n=%d mean=%v, want 3, 20", w.n, w.mean)
	}
}
