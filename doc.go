// Package grove is a supervised-learning engine built around decision-tree
// induction: single CART-style trees, bagged random forests, and sequential
// gradient boosting, plus k-fold cross-validation.
//
// The packages layer bottom-up:
//
//   - dataset: instance definitions, CSV loading with missing-value
//     imputation, and deterministic shuffling/splitting.
//   - tree: split generation, impurity/variance scoring, the recursive
//     builder with twin-leaf pruning, evaluation, and JSON persistence.
//   - forest: bootstrapped multi-worker forest training with out-of-bag
//     estimation and normalized feature importance.
//   - boost: regression-only gradient boosting with optional per-leaf
//     refinement against a custom loss.
//   - crossval: k-fold harness over any trainer producing an evaluator.
//   - results: classification and regression metric aggregation.
//
// A quick classification round trip:
//
//	def, ds, err := dataset.LoadCSV("train.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	target, _ := def.IndexOfFeatureNamed("Species")
//	f, err := forest.Train(def, ds, forest.Config{TargetIndex: target, Trees: 200, Seed: 1})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, _ := f.EvaluateOOB(def, ds)
//	fmt.Print(res.Summary())
//
// The cmd/grove command wraps training, evaluation and prediction for use
// from the shell.
package grove
