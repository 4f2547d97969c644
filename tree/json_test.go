package tree

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/grove-ml/grove/dataset"
	"github.com/grove-ml/grove/pkg/errors"
)

func TestTreeJSONRoundTrip(t *testing.T) {
	def := classificationDef("a", "b", "c")
	var ds dataset.Dataset
	for i := 0; i < 60; i++ {
		label := 1 + (i/20)%3
		ds = append(ds, classificationRow(float64(i)+0.5*float64(label), label))
	}

	tr, err := Build(def, ds, Config{TargetIndex: 1, MinLeafInstances: 2, MaxDepth: 5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	path := filepath.Join(t.TempDir(), "tree.json")
	if err := tr.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if back.Task != tr.Task || back.TargetIndex != tr.TargetIndex {
		t.Errorf("header mismatch: task %v/%v target %d/%d", back.Task, tr.Task, back.TargetIndex, tr.TargetIndex)
	}
	if len(back.Nodes) != len(tr.Nodes) {
		t.Fatalf("node count after round trip: %d, want %d", len(back.Nodes), len(tr.Nodes))
	}
	for _, inst := range ds {
		a, b := tr.Evaluate(*inst), back.Evaluate(*inst)
		if a != b {
			t.Fatalf("round-tripped tree evaluates %+v, original %+v", b, a)
		}
	}
}

func TestTreeUnmarshalRejectsBrokenFiles(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			"missing root",
			`{"object":"dt_tree","type":0,"index_of_feature_to_predict":1,"nodes":[]}`,
		},
		{
			"dangling child link",
			`{"object":"dt_tree","type":0,"index_of_feature_to_predict":1,"nodes":[
				{"id":0,"nt":0,"fi":0,"ft":0,"fv":1.5,"lid":1,"lop":1,"rid":7,"rop":2},
				{"id":1,"nt":1,"fi":1,"ft":1,"fv":1}]}`,
		},
		{
			"cycle",
			`{"object":"dt_tree","type":0,"index_of_feature_to_predict":1,"nodes":[
				{"id":0,"nt":0,"fi":0,"ft":0,"fv":1.5,"lid":0,"lop":1,"rid":0,"rop":2}]}`,
		},
		{
			"wrong object tag",
			`{"object":"dt_forest","type":0,"index_of_feature_to_predict":1,"nodes":[]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Tree
			err := json.Unmarshal([]byte(tt.data), &tr)
			if err == nil {
				t.Fatal("Unmarshal succeeded, want error")
			}
			var ferr *errors.ModelFormatError
			if !errors.As(err, &ferr) {
				t.Errorf("error is not a ModelFormatError: %v", err)
			}
		})
	}
}

func TestTreeMarshalStableIDs(t *testing.T) {
	def := regressionDef()
	var ds dataset.Dataset
	for i := 0; i < 16; i++ {
		ds = append(ds, regressionRow(float64(i), float64(i%4)))
	}

	tr, err := Build(def, ds, Config{TargetIndex: 1, MinLeafInstances: 2, MaxDepth: 3})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	raw, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var file struct {
		Object string `json:"object"`
		Nodes  []struct {
			ID int `json:"id"`
		} `json:"nodes"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if file.Object != "dt_tree" {
		t.Errorf("object tag = %q, want dt_tree", file.Object)
	}
	for i, n := range file.Nodes {
		if n.ID != i {
			t.Fatalf("node %d persisted with id %d", i, n.ID)
		}
	}
}
