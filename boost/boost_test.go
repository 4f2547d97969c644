package boost

import (
	"math"
	"testing"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
	"github.com/grove-ml/grove/tree"
)

func linearData(n int) (dataset.Definition, dataset.Dataset) {
	def := dataset.Definition{
		{Name: "X", Type: dataset.Continuous},
		{Name: "Y", Type: dataset.Continuous},
	}
	var ds dataset.Dataset
	for i := 0; i < n; i++ {
		x := float64(i)
		inst := dataset.Instance{dataset.ContinuousValue(x), dataset.ContinuousValue(2*x + 5)}
		ds = append(ds, &inst)
	}
	return def, ds
}

func meanAbsoluteError(e *Ensemble, ds dataset.Dataset, targetIndex int) float64 {
	var sum float64
	for _, inst := range ds {
		sum += math.Abs(e.Evaluate(*inst).Continuous - (*inst)[targetIndex].Continuous)
	}
	return sum / float64(len(ds))
}

func TestBoostingReducesError(t *testing.T) {
	def, ds := linearData(60)

	base, err := Train(def, ds, Config{TargetIndex: 1, Trees: 1, Seed: 1})
	if err != nil {
		t.Fatalf("Train base: %v", err)
	}
	boosted, err := Train(def, ds, Config{TargetIndex: 1, Trees: 30, LearningRate: 0.3, Subsample: 0.8, Seed: 1})
	if err != nil {
		t.Fatalf("Train boosted: %v", err)
	}

	baseMAE := meanAbsoluteError(base, ds, 1)
	boostedMAE := meanAbsoluteError(boosted, ds, 1)
	if boostedMAE >= baseMAE/2 {
		t.Errorf("boosted MAE %.4f not materially below constant-model MAE %.4f", boostedMAE, baseMAE)
	}
}

func TestBaseTreeIsSingleLeaf(t *testing.T) {
	def, ds := linearData(20)

	e, err := Train(def, ds, Config{TargetIndex: 1, Trees: 1, Seed: 1})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(e.Trees) != 1 {
		t.Fatalf("built %d trees, want 1", len(e.Trees))
	}
	base := e.Trees[0]
	if base.NodeCount != 1 || !base.Nodes[0].IsLeaf() {
		t.Fatalf("base predictor has %d nodes, want a single leaf", base.NodeCount)
	}

	// One leaf at weight 1.0 predicts the target mean: 2*9.5 + 5.
	want := 24.0
	got := e.Evaluate(*ds[0]).Continuous
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("base prediction = %v, want %v", got, want)
	}
}

func TestTargetsRestoredAfterTraining(t *testing.T) {
	def, ds := linearData(25)

	before := make([]float64, len(ds))
	for i, inst := range ds {
		before[i] = (*inst)[1].Continuous
	}

	if _, err := Train(def, ds, Config{TargetIndex: 1, Trees: 10, Seed: 3}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	for i, inst := range ds {
		if len(*inst) != len(def) {
			t.Fatalf("instance %d has %d slots after training, want %d", i, len(*inst), len(def))
		}
		if (*inst)[1].Continuous != before[i] {
			t.Fatalf("instance %d target %v, want restored %v", i, (*inst)[1].Continuous, before[i])
		}
	}
}

func TestProgressCallbackStopsEarly(t *testing.T) {
	def, ds := linearData(30)

	var seen []int
	e, err := Train(def, ds, Config{
		TargetIndex: 1,
		Trees:       20,
		Seed:        2,
		Progress: func(iteration int) bool {
			seen = append(seen, iteration)
			return iteration < 5
		},
	})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(e.Trees) != 5 {
		t.Fatalf("early stop kept %d trees, want 5", len(e.Trees))
	}
	for i, it := range seen {
		if it != i+1 {
			t.Fatalf("callback saw iteration %d at position %d", it, i)
		}
	}

	// Scratch slots must be stripped on early stop too.
	for _, inst := range ds {
		if len(*inst) != len(def) {
			t.Fatal("instance kept scratch slots after early stop")
		}
	}
}

func TestLeafRefinementWithCustomLoss(t *testing.T) {
	def, ds := linearData(40)

	squared := func(target, prediction float64) float64 {
		d := target - prediction
		return d * d
	}
	e, err := Train(def, ds, Config{TargetIndex: 1, Trees: 15, LearningRate: 0.3, Seed: 4, Loss: squared})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	// Refinement against squared loss should not hurt the squared-loss fit.
	if mae := meanAbsoluteError(e, ds, 1); mae > 10 {
		t.Errorf("refined ensemble MAE %.4f, want a usable fit", mae)
	}

	// Members retained for refinement must not leak into the final trees.
	for _, tr := range e.Trees {
		for i := range tr.Nodes {
			if tr.Nodes[i].Members != nil {
				t.Fatal("trained tree retained leaf members")
			}
		}
	}
}

func TestMidpointStrategy(t *testing.T) {
	// 120 distinct x values exceed the per-feature candidate cap, so the
	// exhaustive splitter runs through its thinning path.
	def, ds := linearData(120)

	cfg := Config{
		TargetIndex:   1,
		Trees:         20,
		LearningRate:  0.3,
		Seed:          8,
		SplitStrategy: tree.StrategyMidpoints,
	}
	e, err := Train(def, ds, cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	base, err := Train(def, ds, Config{TargetIndex: 1, Trees: 1, Seed: 8})
	if err != nil {
		t.Fatalf("Train base: %v", err)
	}
	if got, want := meanAbsoluteError(e, ds, 1), meanAbsoluteError(base, ds, 1); got >= want/2 {
		t.Errorf("midpoint-strategy MAE %.4f not materially below constant-model MAE %.4f", got, want)
	}

	// Same seed reproduces the same thinned candidate draws.
	again, err := Train(def, ds, cfg)
	if err != nil {
		t.Fatalf("Train repeat: %v", err)
	}
	for _, inst := range ds {
		if e.Evaluate(*inst) != again.Evaluate(*inst) {
			t.Fatal("identical seeds produced different midpoint-strategy ensembles")
		}
	}
}

func TestCustomGradient(t *testing.T) {
	def, ds := linearData(30)

	calls := 0
	grad := func(target, prediction float64) float64 {
		calls++
		return target - prediction
	}
	if _, err := Train(def, ds, Config{TargetIndex: 1, Trees: 3, Seed: 6, Gradient: grad}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if calls != 3*len(ds) {
		t.Errorf("gradient called %d times, want %d", calls, 3*len(ds))
	}
}

func TestTrainValidation(t *testing.T) {
	def, ds := linearData(10)
	discrete := dataset.Definition{
		def[0],
		{Name: "Class", Type: dataset.Discrete, Categories: []string{dataset.UnknownCategory, "a"}},
	}

	cases := []struct {
		name string
		def  dataset.Definition
		ds   dataset.Dataset
		cfg  Config
	}{
		{"empty definition", dataset.Definition{}, ds, Config{}},
		{"empty dataset", def, dataset.Dataset{}, Config{}},
		{"target out of range", def, ds, Config{TargetIndex: 4}},
		{"discrete target", discrete, ds, Config{TargetIndex: 1}},
		{"learning rate above one", def, ds, Config{TargetIndex: 1, LearningRate: 1.5}},
		{"negative subsample", def, ds, Config{TargetIndex: 1, Subsample: -0.2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Train(tc.def, tc.ds, tc.cfg)
			if err == nil {
				t.Fatal("Train succeeded, want error")
			}
			var verr *errors.ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error is not a ValidationError: %v", err)
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	def, ds := linearData(30)

	e, err := Train(def, ds, Config{TargetIndex: 1, Trees: 8, LearningRate: 0.25, Seed: 7})
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	dir := t.TempDir()
	if err := e.Save(dir, def); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, backDef, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if back.LearningRate != e.LearningRate || back.TargetIndex != e.TargetIndex || len(back.Trees) != len(e.Trees) {
		t.Fatal("loaded ensemble header does not match saved ensemble")
	}
	if len(backDef) != len(def) {
		t.Fatalf("loaded definition has %d features, want %d", len(backDef), len(def))
	}
	for _, inst := range ds {
		a, b := e.Evaluate(*inst), back.Evaluate(*inst)
		if a != b {
			t.Fatalf("loaded ensemble evaluates %+v, original %+v", b, a)
		}
	}
}
