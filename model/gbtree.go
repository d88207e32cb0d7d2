package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/rushteam/inscost/feature"
)

func init() {
	Register("gbtree", DecodeTreeEnsemble)
}

// TreeNode 是回归树的一个节点（XGBoost JSON dump 的扁平形式）。
// 非叶子节点：x[Feature] < Threshold 走 Left，否则走 Right；x 为 NaN 且设置了 Missing 时走 Missing。
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Missing   *int    `json:"missing,omitempty"`
	Leaf      float64 `json:"leaf"`
	IsLeaf    bool    `json:"is_leaf"`
}

// Tree 回归树，Nodes[0] 为根节点
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

// TreeEnsemble 梯度提升树回归模型。
//
// 预测: y = BaseScore + sum(leaf(tree_i, x))
type TreeEnsemble struct {
	BaseScore float64
	Trees     []Tree
}

// DecodeTreeEnsemble 解析树模型 artifact：
//
//	{"type": "gbtree", "feature_names": [...], "base_score": 0.5, "trees": [{"nodes": [...]}]}
//
// 加载时校验所有子节点下标都大于父节点，保证预测时一定到达叶子。
func DecodeTreeEnsemble(data []byte) (Regressor, error) {
	var raw struct {
		BaseScore float64 `json:"base_score"`
		Trees     []Tree  `json:"trees"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse gbtree model: %w", err)
	}
	if len(raw.Trees) == 0 {
		return nil, fmt.Errorf("gbtree: no trees")
	}
	for ti, tree := range raw.Trees {
		if err := validateTree(tree); err != nil {
			return nil, fmt.Errorf("gbtree: tree %d: %w", ti, err)
		}
	}
	return &TreeEnsemble{BaseScore: raw.BaseScore, Trees: raw.Trees}, nil
}

func validateTree(tree Tree) error {
	n := len(tree.Nodes)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	child := func(parent, c int) error {
		if c <= parent || c >= n {
			return fmt.Errorf("node %d: child %d out of range", parent, c)
		}
		return nil
	}
	for i, node := range tree.Nodes {
		if node.IsLeaf {
			continue
		}
		if node.Feature < 0 || node.Feature >= feature.NumColumns {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.Feature)
		}
		if err := child(i, node.Left); err != nil {
			return err
		}
		if err := child(i, node.Right); err != nil {
			return err
		}
		if node.Missing != nil {
			if err := child(i, *node.Missing); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *TreeEnsemble) Name() string { return "gbtree" }

func (m *TreeEnsemble) Predict(_ context.Context, row []float64) (float64, error) {
	if err := checkRow(m.Name(), row); err != nil {
		return 0, err
	}
	y := m.BaseScore
	for _, tree := range m.Trees {
		y += tree.leaf(row)
	}
	return y, nil
}

func (t Tree) leaf(row []float64) float64 {
	i := 0
	for {
		node := t.Nodes[i]
		if node.IsLeaf {
			return node.Leaf
		}
		x := row[node.Feature]
		switch {
		case math.IsNaN(x) && node.Missing != nil:
			i = *node.Missing
		case x < node.Threshold:
			i = node.Left
		default:
			i = node.Right
		}
	}
}
