package tree

import (
	"encoding/json"
	"os"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
)

// Persisted node entry. Key names are the model format contract: id,
// node type, feature index, feature type, feature value, and for splits the
// left/right child ids and comparison operators.
type nodeJSON struct {
	ID           int     `json:"id"`
	NodeType     int     `json:"nt"`
	FeatureIndex int     `json:"fi"`
	FeatureType  int     `json:"ft"`
	FeatureValue float64 `json:"fv"`

	LeftID  *int `json:"lid,omitempty"`
	LeftOp  *int `json:"lop,omitempty"`
	RightID *int `json:"rid,omitempty"`
	RightOp *int `json:"rop,omitempty"`
}

type treeJSON struct {
	Object      string     `json:"object"`
	Type        int        `json:"type"`
	TargetIndex int        `json:"index_of_feature_to_predict"`
	Nodes       []nodeJSON `json:"nodes"`
}

const treeObjectTag = "dt_tree"

// MarshalJSON flattens the arena into the persisted node list. Arena ids are
// stable, so they double as persisted ids with root = 0.
func (t *Tree) MarshalJSON() ([]byte, error) {
	out := treeJSON{
		Object:      treeObjectTag,
		Type:        int(t.Task),
		TargetIndex: t.TargetIndex,
		Nodes:       make([]nodeJSON, 0, len(t.Nodes)),
	}

	for id := range t.Nodes {
		n := &t.Nodes[id]
		entry := nodeJSON{
			ID:           id,
			NodeType:     int(n.Type),
			FeatureIndex: n.FeatureIndex,
			FeatureType:  int(n.FeatureType),
		}
		if n.FeatureType == dataset.Continuous {
			entry.FeatureValue = n.Value.Continuous
		} else {
			entry.FeatureValue = float64(n.Value.Category)
		}
		if !n.IsLeaf() {
			lid, lop := n.Left, int(n.LeftOp)
			rid, rop := n.Right, int(n.RightOp)
			entry.LeftID, entry.LeftOp = &lid, &lop
			entry.RightID, entry.RightOp = &rid, &rop
		}
		out.Nodes = append(out.Nodes, entry)
	}

	return json.Marshal(out)
}

// UnmarshalJSON rebuilds the arena from a persisted node list, re-walking it
// from id 0 so the in-memory layout is depth-first regardless of the order
// nodes appear in the file.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var file treeJSON
	if err := json.Unmarshal(data, &file); err != nil {
		return errors.NewModelFormatError("", err.Error())
	}
	if file.Object != treeObjectTag {
		return errors.NewModelFormatError("", "json object is not a decision tree")
	}
	if len(file.Nodes) == 0 {
		return errors.NewModelFormatError("", "decision tree has no nodes")
	}

	byID := make(map[int]*nodeJSON, len(file.Nodes))
	for i := range file.Nodes {
		byID[file.Nodes[i].ID] = &file.Nodes[i]
	}

	*t = Tree{
		TargetIndex: file.TargetIndex,
		Task:        TaskType(file.Type),
	}

	if _, err := t.restoreNode(byID, 0, make(map[int]bool)); err != nil {
		return err
	}
	return nil
}

func (t *Tree) restoreNode(byID map[int]*nodeJSON, id int, visiting map[int]bool) (int, error) {
	entry, ok := byID[id]
	if !ok {
		return 0, errors.NewModelFormatError("", "missing node id in node list")
	}
	if visiting[id] {
		return 0, errors.NewModelFormatError("", "node list contains a cycle")
	}
	visiting[id] = true

	arenaID := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Left: -1, Right: -1})
	t.NodeCount++

	node := Node{
		Type:         NodeType(entry.NodeType),
		FeatureIndex: entry.FeatureIndex,
		FeatureType:  dataset.FeatureType(entry.FeatureType),
		Left:         -1,
		Right:        -1,
	}
	if node.FeatureType == dataset.Continuous {
		node.Value = dataset.ContinuousValue(entry.FeatureValue)
	} else {
		node.Value = dataset.CategoryValue(int(entry.FeatureValue))
	}

	if node.Type == Leaf {
		t.LeafCount++
	} else {
		if entry.LeftID == nil || entry.LeftOp == nil || entry.RightID == nil || entry.RightOp == nil {
			return 0, errors.NewModelFormatError("", "split node missing child links")
		}
		node.LeftOp = Operator(*entry.LeftOp)
		node.RightOp = Operator(*entry.RightOp)

		leftID, err := t.restoreNode(byID, *entry.LeftID, visiting)
		if err != nil {
			return 0, err
		}
		rightID, err := t.restoreNode(byID, *entry.RightID, visiting)
		if err != nil {
			return 0, err
		}
		node.Left = leftID
		node.Right = rightID
	}

	t.Nodes[arenaID] = node
	return arenaID, nil
}

// WriteFile persists the tree as JSON.
func (t *Tree) WriteFile(path string) error {
	data, err := json.Marshal(t)
	if err != nil {
		return errors.Wrapf(err, "encoding tree for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// ReadFile loads a tree previously written with WriteFile.
func ReadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return &t, nil
}
