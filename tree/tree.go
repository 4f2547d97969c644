// Package tree implements decision-tree induction: split generation, region
// scoring, the recursive builder, and the built tree itself. Trees store
// their nodes in a flat arena addressed by integer id (root is id 0), which
// keeps concurrent forest builds free of shared node ownership and matches
// the persisted model format.
package tree

import (
	"fmt"
	"strings"

	"github.com/grove-ml/grove/dataset"
)

// TaskType selects between classification and regression, decided by the
// type of the predicted feature.
type TaskType int

const (
	// Classification predicts a category index of a discrete feature.
	Classification TaskType = iota
	// Regression predicts a continuous scalar.
	Regression
)

func (t TaskType) String() string {
	if t == Regression {
		return "regression"
	}
	return "classification"
}

// NodeType tags arena entries as internal splits or leaves.
type NodeType int

const (
	// Split nodes route instances left or right by a feature test.
	Split NodeType = iota
	// Leaf nodes carry a prediction.
	Leaf
)

// Operator is a split comparison. Continuous splits use LessOrEqual/Greater,
// discrete splits use NotEqual/Equal.
type Operator int

const (
	OpNone Operator = iota
	OpLessOrEqual
	OpGreater
	OpEqual
	OpNotEqual
)

func (op Operator) String() string {
	switch op {
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	default:
		return "no-op"
	}
}

// Node is one arena entry. For splits, Value is the test value and
// Left/Right are child ids; for leaves, Value is the prediction and
// Left/Right are -1. Members is only populated on leaves when the build
// retained instances for later refinement.
type Node struct {
	Type         NodeType
	FeatureIndex int
	FeatureType  dataset.FeatureType
	Value        dataset.FeatureValue
	LeftOp       Operator
	Left         int
	RightOp      Operator
	Right        int

	Members dataset.Dataset
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Type == Leaf
}

// FeatureImportance accumulates the score improvement credited to a feature
// across the winning splits of one tree.
type FeatureImportance struct {
	SumScoreDelta float64
	Count         int
}

// Tree is a built decision tree. It exclusively owns its node arena; trees
// are read-only after building except for in-place leaf refinement during
// boosting.
type Tree struct {
	TargetIndex int
	Task        TaskType
	NodeCount   int
	LeafCount   int
	Nodes       []Node
	Importance  []FeatureImportance
}

// Root returns the root node id.
func (t *Tree) Root() int { return 0 }

// satisfiesLeft reports whether the instance follows the split's left branch.
func satisfiesLeft(n *Node, inst dataset.Instance) bool {
	fv := inst[n.FeatureIndex]
	if n.FeatureType == dataset.Continuous {
		if n.LeftOp == OpLessOrEqual {
			return fv.Continuous <= n.Value.Continuous
		}
		return fv.Continuous > n.Value.Continuous
	}
	if n.LeftOp == OpNotEqual {
		return fv.Category != n.Value.Category
	}
	return fv.Category == n.Value.Category
}

// Evaluate walks the instance from the root to a leaf and returns the leaf's
// prediction. The walk is iterative and allocation-free.
func (t *Tree) Evaluate(inst dataset.Instance) dataset.FeatureValue {
	id := 0
	for {
		n := &t.Nodes[id]
		if n.IsLeaf() {
			return n.Value
		}
		if satisfiesLeft(n, inst) {
			id = n.Left
		} else {
			id = n.Right
		}
	}
}

// DropLeafMembers releases the instance lists retained at leaves. Boosting
// calls this once leaf refinement is finished.
func (t *Tree) DropLeafMembers() {
	for i := range t.Nodes {
		t.Nodes[i].Members = nil
	}
}

// Summary renders the tree structure as indented text, one branch per line.
func (t *Tree) Summary(def dataset.Definition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s tree predicting %s: %d nodes, %d leaves\n",
		t.Task, def[t.TargetIndex].Name, t.NodeCount, t.LeafCount)
	t.summarizeNode(&sb, def, 0, 0)
	sb.WriteString("\n")
	return sb.String()
}

func (t *Tree) valueString(def dataset.Definition, n *Node) string {
	if n.FeatureType == dataset.Discrete {
		return def[n.FeatureIndex].CategoryName(n.Value.Category)
	}
	return fmt.Sprintf("%g", n.Value.Continuous)
}

func (t *Tree) summarizeNode(sb *strings.Builder, def dataset.Definition, id, depth int) {
	n := &t.Nodes[id]
	if n.IsLeaf() {
		fmt.Fprintf(sb, ": %s", t.valueString(def, n))
		return
	}

	indent := strings.Repeat("|  ", depth)
	name := def[n.FeatureIndex].Name
	value := t.valueString(def, n)

	fmt.Fprintf(sb, "\n%s%s %s %s", indent, name, n.LeftOp, value)
	t.summarizeNode(sb, def, n.Left, depth+1)
	fmt.Fprintf(sb, "\n%s%s %s %s", indent, name, n.RightOp, value)
	t.summarizeNode(sb, def, n.Right, depth+1)
}
