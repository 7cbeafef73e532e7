package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/experiment"
)

func solved(t *testing.T, preset string) *experiment.Outcome {
	t.Helper()
	out, err := experiment.New(config.GetPreset(preset)).Run(context.Background())
	if err != nil {
		t.Fatalf("solve %s: %v", preset, err)
	}
	return out
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	out := solved(t, "springs")
	runID, err := st.Save(out)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(runID, "springs_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "springs" || meta.Nodes != 4 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.MaxNode != 3 || math.Abs(meta.MaxDisplacement-1.25) > 1e-12 {
		t.Errorf("expected max 1.25 at node 3, got %g at %d", meta.MaxDisplacement, meta.MaxNode)
	}
	if len(meta.Omega) != 3 {
		t.Errorf("expected 3 frequencies, got %d", len(meta.Omega))
	}
	if meta.Problem == nil || meta.Problem.Loads[3] != 50 {
		t.Error("problem not stored with the run")
	}

	nodes, err := st.LoadNodes(runID)
	if err != nil {
		t.Fatalf("load nodes failed: %v", err)
	}
	if len(nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(nodes))
	}
	for i, n := range nodes {
		if n.Node != i || n.U != out.Result.Displacements[i] || n.X != out.Mesh[i] {
			t.Errorf("node %d did not round-trip: %+v", i, n)
		}
	}
	if math.Abs(nodes[0].Reaction+50) > 1e-9 {
		t.Errorf("expected reaction -50 at the support, got %g", nodes[0].Reaction)
	}

	elements, err := st.LoadElements(runID)
	if err != nil {
		t.Fatalf("load elements failed: %v", err)
	}
	for _, e := range elements {
		if math.Abs(e.Force-50) > 1e-9 {
			t.Errorf("element %d: expected force 50, got %g", e.Element, e.Force)
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	first, err := st.Save(solved(t, "springs"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := st.Save(solved(t, "stepped"))
	if err != nil {
		t.Fatal(err)
	}
	// stray files and broken runs are skipped
	os.WriteFile(filepath.Join(st.baseDir, "notes.txt"), []byte("x"), 0644)
	os.MkdirAll(filepath.Join(st.baseDir, "broken"), 0755)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first || runs[1].ID != second {
		t.Errorf("expected oldest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected empty list, got %v, %v", runs, err)
	}
}

func TestStoreNotFound(t *testing.T) {
	st := New(t.TempDir())

	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load: expected ErrRunNotFound, got %v", err)
	}
	if _, err := st.LoadNodes("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadNodes: expected ErrRunNotFound, got %v", err)
	}
	if err := st.CopyNodes(&bytes.Buffer{}, "../nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("CopyNodes: expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreExport(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(solved(t, "fixed-free"))
	if err != nil {
		t.Fatal(err)
	}

	var csvOut bytes.Buffer
	if err := st.CopyNodes(&csvOut, runID); err != nil {
		t.Fatalf("copy nodes failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csvOut.String()), "\n")
	if lines[0] != "node,x,u,reaction" || len(lines) != 12 {
		t.Errorf("unexpected csv: header %q, %d lines", lines[0], len(lines))
	}

	var jsonOut bytes.Buffer
	if err := st.ExportJSON(&jsonOut, runID); err != nil {
		t.Fatalf("export json failed: %v", err)
	}
	var doc struct {
		Run      RunMetadata     `json:"run"`
		Nodes    []NodeRecord    `json:"nodes"`
		Elements []ElementRecord `json:"elements"`
	}
	if err := json.Unmarshal(jsonOut.Bytes(), &doc); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if doc.Run.ID != runID || len(doc.Nodes) != 11 || len(doc.Elements) != 10 {
		t.Errorf("unexpected export: id %s, %d nodes, %d elements", doc.Run.ID, len(doc.Nodes), len(doc.Elements))
	}
}

func TestStoreSaveKeepsRunsInsideBase(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "data", "runs")
	st := New(base)
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"../../x", "a/b", `c:\d e`} {
		out := solved(t, "springs")
		out.Problem.Name = name

		runID, err := st.Save(out)
		if err != nil {
			t.Fatalf("save %q: %v", name, err)
		}
		if strings.ContainsAny(runID, `/\ :`) {
			t.Errorf("run id %q is not a plain file name", runID)
		}
		if dir := filepath.Dir(filepath.Join(base, runID)); dir != base {
			t.Errorf("run %q written to %s, want %s", runID, dir, base)
		}

		meta, err := st.Load(runID)
		if err != nil {
			t.Fatalf("load %q: %v", runID, err)
		}
		if meta.Name != name {
			t.Errorf("expected name %q kept in metadata, got %q", name, meta.Name)
		}
	}

	if !strings.HasPrefix(mustList(t, st)[0].ID, ".._.._x_") {
		t.Errorf("unexpected id for ../../x: %s", mustList(t, st)[0].ID)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "data" {
		t.Errorf("files escaped the store: %v", entries)
	}
}

func TestStoreSaveRemovesPartialRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	failing := errors.New("disk full")
	createFile = func(path string) (*os.File, error) {
		if filepath.Base(path) == "elements.csv" {
			return nil, failing
		}
		return os.Create(path)
	}
	t.Cleanup(func() { createFile = os.Create })

	if _, err := st.Save(solved(t, "springs")); !errors.Is(err, failing) {
		t.Fatalf("expected write error, got %v", err)
	}
	if runs := mustList(t, st); len(runs) != 0 {
		t.Errorf("expected no runs, got %v", runs)
	}
	entries, err := os.ReadDir(st.baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("partial run directory left behind: %v", entries)
	}
}

func mustList(t *testing.T, st *Store) []RunMetadata {
	t.Helper()
	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return runs
}
