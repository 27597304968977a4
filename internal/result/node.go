package result

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"factorbench/internal/table"
)

// Kind 标记结果树节点的种类。
type Kind int

const (
	KindBranch Kind = iota
	KindFrame
	KindMatrix
)

// Node 是结果树的节点：分支按名字挂子节点，
// 叶子持有一张日期索引表或标签矩阵。
type Node struct {
	kind     Kind
	frame    *table.Frame
	matrix   *table.Matrix
	children map[string]*Node
}

// NewBranch 创建空分支节点。
func NewBranch() *Node {
	return &Node{kind: KindBranch, children: make(map[string]*Node)}
}

// FrameNode 创建持有日期索引表的叶子，nil 表也允许（表示缺省结果）。
func FrameNode(f *table.Frame) *Node {
	return &Node{kind: KindFrame, frame: f}
}

// MatrixNode 创建持有标签矩阵的叶子。
func MatrixNode(m *table.Matrix) *Node {
	return &Node{kind: KindMatrix, matrix: m}
}

// Kind 返回节点种类。
func (n *Node) Kind() Kind { return n.kind }

// Frame 返回叶子持有的表，非表叶子返回 nil。
func (n *Node) Frame() *table.Frame { return n.frame }

// Matrix 返回叶子持有的矩阵，非矩阵叶子返回 nil。
func (n *Node) Matrix() *table.Matrix { return n.matrix }

// Put 在分支下挂子节点，非分支节点上的调用被忽略。
func (n *Node) Put(name string, child *Node) {
	if n.kind != KindBranch {
		return
	}
	n.children[name] = child
}

// Get 沿路径取节点，任何一段不存在时返回 nil。
func (n *Node) Get(path ...string) *Node {
	cur := n
	for _, name := range path {
		if cur == nil || cur.kind != KindBranch {
			return nil
		}
		cur = cur.children[name]
	}
	return cur
}

// Keys 返回分支下的子节点名，按字典序排列。
func (n *Node) Keys() []string {
	if n.kind != KindBranch {
		return nil
	}
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type frameJSON struct {
	Dates   []string     `json:"dates"`
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

type matrixJSON struct {
	Rows    []string     `json:"rows"`
	Columns []string     `json:"columns"`
	Values  [][]*float64 `json:"values"`
}

// MarshalJSON 输出带类型标记的树，NaN 写作 null。
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case KindFrame:
		if n.frame == nil {
			return json.Marshal(map[string]any{"kind": "frame", "value": nil})
		}
		dates := make([]string, n.frame.NumRows())
		for i, d := range n.frame.Dates() {
			dates[i] = d.Format(time.DateOnly)
		}
		values := make([][]*float64, n.frame.NumRows())
		for i := range values {
			values[i] = encodeRow(n.frame.Row(i))
		}
		return json.Marshal(map[string]any{
			"kind": "frame",
			"value": frameJSON{
				Dates:   dates,
				Columns: n.frame.Columns(),
				Values:  values,
			},
		})
	case KindMatrix:
		if n.matrix == nil {
			return json.Marshal(map[string]any{"kind": "matrix", "value": nil})
		}
		values := make([][]*float64, len(n.matrix.Values))
		for i, row := range n.matrix.Values {
			values[i] = encodeRow(row)
		}
		return json.Marshal(map[string]any{
			"kind": "matrix",
			"value": matrixJSON{
				Rows:    n.matrix.RowLabels,
				Columns: n.matrix.ColLabels,
				Values:  values,
			},
		})
	default:
		return json.Marshal(map[string]any{
			"kind":     "branch",
			"children": n.children,
		})
	}
}

func encodeRow(row []float64) []*float64 {
	out := make([]*float64, len(row))
	for j, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		val := v
		out[j] = &val
	}
	return out
}
