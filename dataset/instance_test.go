package dataset

import (
	"testing"
)

func makeDataset(n int) Dataset {
	ds := make(Dataset, n)
	for i := range ds {
		inst := Instance{ContinuousValue(float64(i))}
		ds[i] = &inst
	}
	return ds
}

func TestShuffleDeterminism(t *testing.T) {
	a := makeDataset(50)
	b := makeDataset(50)

	Shuffle(a, NewRNG(7))
	Shuffle(b, NewRNG(7))

	for i := range a {
		if (*a[i])[0].Continuous != (*b[i])[0].Continuous {
			t.Fatalf("orders diverge at %d with identical seeds", i)
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	ds := makeDataset(20)
	Shuffle(ds, NewRNG(3))

	seen := make(map[float64]bool, len(ds))
	for _, inst := range ds {
		seen[(*inst)[0].Continuous] = true
	}
	if len(seen) != 20 {
		t.Fatalf("shuffle lost rows: %d distinct of 20", len(seen))
	}
}

func TestSplitTrainTest(t *testing.T) {
	ds := makeDataset(10)

	train, test := SplitTrainTest(ds, 0.7, 1)
	if len(train) != 7 || len(test) != 3 {
		t.Fatalf("split sizes = %d/%d, want 7/3", len(train), len(test))
	}

	// All rows accounted for exactly once.
	seen := make(map[float64]int)
	for _, inst := range train {
		seen[(*inst)[0].Continuous]++
	}
	for _, inst := range test {
		seen[(*inst)[0].Continuous]++
	}
	for v, n := range seen {
		if n != 1 {
			t.Errorf("row %v appears %d times", v, n)
		}
	}
}
