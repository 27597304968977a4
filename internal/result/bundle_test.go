package result

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"factorbench/internal/perf"
	"factorbench/internal/table"
)

func day(n int) time.Time {
	return time.Date(2024, time.January, n, 0, 0, 0, 0, time.UTC)
}

func mustFrame(t *testing.T, dates []time.Time, cols []string, values [][]float64) *table.Frame {
	t.Helper()
	f, err := table.FromRows(dates, cols, values)
	if err != nil {
		t.Fatalf("FromRows returned error: %v", err)
	}
	return f
}

func TestNode_PutGetKeys(t *testing.T) {
	root := NewBranch()
	inner := NewBranch()
	inner.Put("leaf", MatrixNode(table.NewMatrix([]string{"a"}, []string{"x"})))
	root.Put("b", inner)
	root.Put("a", FrameNode(nil))

	if got := root.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected sorted keys [a b], got %v", got)
	}
	if n := root.Get("b", "leaf"); n == nil || n.Kind() != KindMatrix {
		t.Errorf("expected matrix node at b/leaf, got %v", n)
	}
	if n := root.Get("b", "missing"); n != nil {
		t.Errorf("expected nil for missing path, got %v", n)
	}
	if n := root.Get("a", "leaf"); n != nil {
		t.Errorf("expected nil when traversing through leaf, got %v", n)
	}

	// 叶子上挂子节点是空操作
	leaf := FrameNode(nil)
	leaf.Put("x", NewBranch())
	if n := leaf.Get("x"); n != nil {
		t.Errorf("expected Put on leaf to be ignored, got %v", n)
	}
}

func TestBuild_CompatibilityKeys(t *testing.T) {
	dates := []time.Time{day(1), day(2)}
	frame := mustFrame(t, dates, []string{"total"}, [][]float64{{0.1}, {0.2}})
	icFrame := mustFrame(t, dates, []string{"total"}, [][]float64{{0.3}, {math.NaN()}})
	stats := table.NewMatrix([]string{"total"}, []string{"latest_pct"})

	report := perf.Report{
		"alltime": {"risk": table.NewMatrix([]string{"total"}, []string{"sharpe"})},
		"2024":    {"risk": nil},
	}

	root := Build(Artifacts{
		Portfolio:   frame,
		Returns:     frame,
		Nav:         frame,
		RankIC:      icFrame,
		NormalIC:    nil,
		RankICLag:   frame,
		NormalICLag: nil,
		Turnover:    frame,
		Stats:       stats,
		Performance: report,
	})

	want := []string{
		"nav_tb", "normal_ic", "normal_ic_cor", "normal_ic_cum", "normal_ic_lag",
		"normal_ic_ma12", "normal_ic_monthlymap", "portfolio_tb",
		"rank_ic", "rank_ic_cor", "rank_ic_cum", "rank_ic_lag",
		"rank_ic_ma12", "rank_ic_monthlymap", "ret_tb", "risk",
		"stats_tb", "turnover_tb",
	}
	if got := root.Keys(); !slices.Equal(got, want) {
		t.Errorf("unexpected bundle keys:\n got %v\nwant %v", got, want)
	}

	// 缺省 IC 输入时衍生项保留键名但内容为空
	if n := root.Get("normal_ic_cum"); n == nil || n.Frame() != nil {
		t.Errorf("expected empty normal_ic_cum leaf, got %v", n)
	}
	if n := root.Get("rank_ic_cum"); n == nil || n.Frame() == nil {
		t.Error("expected populated rank_ic_cum leaf")
	}
	if n := root.Get("risk", "alltime"); n == nil || n.Matrix() == nil {
		t.Error("expected risk/alltime matrix")
	}
	// 失败的区间以空矩阵叶子保留
	if n := root.Get("risk", "2024"); n == nil || n.Matrix() != nil {
		t.Errorf("expected empty risk/2024 leaf, got %v", n)
	}
}

func TestNode_MarshalJSON(t *testing.T) {
	dates := []time.Time{day(1), day(2)}
	frame := mustFrame(t, dates, []string{"a", "b"}, [][]float64{
		{1.5, math.NaN()},
		{math.Inf(1), 2},
	})
	root := NewBranch()
	root.Put("tbl", FrameNode(frame))
	root.Put("empty", MatrixNode(nil))

	raw, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var decoded struct {
		Kind     string `json:"kind"`
		Children map[string]struct {
			Kind  string          `json:"kind"`
			Value json.RawMessage `json:"value"`
		} `json:"children"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded.Kind != "branch" {
		t.Errorf("expected branch kind, got %s", decoded.Kind)
	}
	if string(decoded.Children["empty"].Value) != "null" {
		t.Errorf("expected null value for empty leaf, got %s", decoded.Children["empty"].Value)
	}

	var tbl struct {
		Dates  []string     `json:"dates"`
		Values [][]*float64 `json:"values"`
	}
	if err := json.Unmarshal(decoded.Children["tbl"].Value, &tbl); err != nil {
		t.Fatalf("frame value unmarshal failed: %v", err)
	}
	if !slices.Equal(tbl.Dates, []string{"2024-01-01", "2024-01-02"}) {
		t.Errorf("unexpected dates %v", tbl.Dates)
	}
	if tbl.Values[0][1] != nil {
		t.Errorf("expected NaN encoded as null, got %v", *tbl.Values[0][1])
	}
	if tbl.Values[1][0] != nil {
		t.Errorf("expected Inf encoded as null, got %v", *tbl.Values[1][0])
	}
	if tbl.Values[0][0] == nil || *tbl.Values[0][0] != 1.5 {
		t.Errorf("unexpected first value %v", tbl.Values[0][0])
	}
	if strings.Contains(string(raw), "NaN") {
		t.Error("raw JSON must not contain NaN tokens")
	}
}
