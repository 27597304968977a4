package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"factorbench/internal/config"
	"factorbench/internal/result"
	"factorbench/internal/table"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite(config.DatabaseConfig{
		InMemory:        true,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewSQLite returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testBundle() *result.Node {
	m := table.NewMatrix([]string{"total"}, []string{"latest_pct"})
	m.Set("total", "latest_pct", 123.4)
	root := result.NewBranch()
	root.Put("stats_tb", result.MatrixNode(m))
	return root
}

func TestSaveAndLoadRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	id, err := s.SaveRun(ctx, "momentum_20", start, end, testBundle())
	if err != nil {
		t.Fatalf("SaveRun returned error: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive run id, got %d", id)
	}

	raw, err := s.LoadBundle(ctx, id)
	if err != nil {
		t.Fatalf("LoadBundle returned error: %v", err)
	}
	var decoded struct {
		Kind     string                     `json:"kind"`
		Children map[string]json.RawMessage `json:"children"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stored bundle is not valid JSON: %v", err)
	}
	if decoded.Kind != "branch" {
		t.Errorf("expected branch root, got %s", decoded.Kind)
	}
	if _, ok := decoded.Children["stats_tb"]; !ok {
		t.Error("expected stats_tb in stored bundle")
	}
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"momentum_20", "rsi_14", "obv"} {
		if _, err := s.SaveRun(ctx, name, start, end, testBundle()); err != nil {
			t.Fatalf("SaveRun(%s) returned error: %v", name, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs with limit 2, got %d", len(runs))
	}
	if runs[0].StartDate != "2022-01-01" || runs[0].EndDate != "2024-12-31" {
		t.Errorf("unexpected run dates %+v", runs[0])
	}

	all, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected default limit to return all 3 runs, got %d", len(all))
	}
}

func TestLoadBundle_MissingID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.LoadBundle(context.Background(), 999); err == nil {
		t.Fatal("expected error for unknown run id")
	}
}
