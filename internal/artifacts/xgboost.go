// internal/artifacts/xgboost.go
package artifacts

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// XGBoostModel evaluates a gradient boosted tree ensemble exported with
// Booster.dump_model(..., dump_format="json") for a reg:squarederror objective.
// The prediction is base_score plus the sum of the reached leaves.
type XGBoostModel struct {
	features  []string
	baseScore float64
	trees     []tree
}

// node is one flattened tree node. Leaves have feature < 0.
type node struct {
	feature   int
	threshold float64
	yes       int
	no        int
	missing   int
	leaf      float64
}

type tree []node

type xgbFile struct {
	Features  []string  `json:"features"`
	BaseScore float64   `json:"base_score"`
	Trees     []xgbNode `json:"trees"`
}

type xgbNode struct {
	NodeID         int       `json:"nodeid"`
	Split          string    `json:"split"`
	SplitCondition float64   `json:"split_condition"`
	Yes            int       `json:"yes"`
	No             int       `json:"no"`
	Missing        int       `json:"missing"`
	Leaf           *float64  `json:"leaf"`
	Children       []xgbNode `json:"children"`
}

func ParseXGBoostModel(data []byte) (*XGBoostModel, error) {
	var f xgbFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode xgboost model: %w", err)
	}
	if len(f.Features) == 0 {
		return nil, fmt.Errorf("xgboost model declares no features")
	}
	if len(f.Trees) == 0 {
		return nil, fmt.Errorf("xgboost model has no trees")
	}

	index := make(map[string]int, len(f.Features))
	for i, name := range f.Features {
		index[name] = i
	}

	m := &XGBoostModel{features: f.Features, baseScore: f.BaseScore}
	for i, root := range f.Trees {
		t, err := flatten(root, index, len(f.Features))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		m.trees = append(m.trees, t)
	}
	return m, nil
}

func flatten(root xgbNode, index map[string]int, nFeatures int) (tree, error) {
	byID := map[int]xgbNode{}
	var walk func(n xgbNode) error
	walk = func(n xgbNode) error {
		if _, dup := byID[n.NodeID]; dup {
			return fmt.Errorf("duplicate node id %d", n.NodeID)
		}
		byID[n.NodeID] = n
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}

	t := make(tree, len(byID))
	for id, n := range byID {
		if id < 0 || id >= len(t) {
			return nil, fmt.Errorf("node id %d out of range", id)
		}
		if n.Leaf != nil {
			t[id] = node{feature: -1, leaf: *n.Leaf}
			continue
		}
		feat, err := featureIndex(n.Split, index, nFeatures)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", id, err)
		}
		for _, child := range []int{n.Yes, n.No, n.Missing} {
			if _, ok := byID[child]; !ok {
				return nil, fmt.Errorf("node %d points at missing node %d", id, child)
			}
		}
		t[id] = node{feature: feat, threshold: n.SplitCondition, yes: n.Yes, no: n.No, missing: n.Missing}
	}
	return t, nil
}

// featureIndex accepts feature names or XGBoost's positional "f<i>" names.
func featureIndex(split string, index map[string]int, nFeatures int) (int, error) {
	if i, ok := index[split]; ok {
		return i, nil
	}
	if strings.HasPrefix(split, "f") {
		if i, err := strconv.Atoi(split[1:]); err == nil && i >= 0 && i < nFeatures {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown split feature %q", split)
}

func (m *XGBoostModel) Features() []string {
	return append([]string(nil), m.features...)
}

func (m *XGBoostModel) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for r, row := range rows {
		if len(row) != len(m.features) {
			return nil, fmt.Errorf("row %d has %d values, model expects %d", r, len(row), len(m.features))
		}
		y := m.baseScore
		for _, t := range m.trees {
			y += t.eval(row)
		}
		out[r] = y
	}
	return out, nil
}

func (t tree) eval(row []float64) float64 {
	i := 0
	// a well formed tree reaches a leaf in at most len(t) steps
	for steps := 0; steps <= len(t); steps++ {
		n := t[i]
		if n.feature < 0 {
			return n.leaf
		}
		x := row[n.feature]
		switch {
		case math.IsNaN(x):
			i = n.missing
		case x < n.threshold:
			i = n.yes
		default:
			i = n.no
		}
	}
	return math.NaN()
}
