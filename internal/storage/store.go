package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/barfea/internal/config"
	"github.com/san-kum/barfea/internal/experiment"
)

// ErrRunNotFound is returned when a run directory or one of its files is missing.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per solved bar:
//
//	<base>/<name>_<unixnano>/metadata.json
//	<base>/<name>_<unixnano>/nodes.csv
//	<base>/<name>_<unixnano>/elements.csv
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Timestamp       time.Time       `json:"timestamp"`
	Nodes           int             `json:"nodes"`
	MaxNode         int             `json:"max_node"`
	MaxDisplacement float64         `json:"max_displacement"`
	Omega           []float64       `json:"omega,omitempty"`
	Hz              []float64       `json:"hz,omitempty"`
	ElapsedMs       float64         `json:"elapsed_ms"`
	Problem         *config.Problem `json:"problem"`
}

// NodeRecord is one row of nodes.csv. Reaction is zero at free nodes.
type NodeRecord struct {
	Node     int     `json:"node"`
	X        float64 `json:"x"`
	U        float64 `json:"u"`
	Reaction float64 `json:"reaction"`
}

// ElementRecord is one row of elements.csv.
type ElementRecord struct {
	Element int     `json:"element"`
	Length  float64 `json:"length"`
	Force   float64 `json:"force"`
	Strain  float64 `json:"strain"`
}

var (
	nodeHeader    = []string{"node", "x", "u", "reaction"}
	elementHeader = []string{"element", "length", "force", "strain"}
)

// Save writes a new run directory and returns its ID. The ID is built from
// the problem name with every character outside [A-Za-z0-9._-] replaced by
// '_', so it is always a single path element below the store.
func (s *Store) Save(out *experiment.Outcome) (string, error) {
	now := time.Now()
	name := out.Problem.Name
	if name == "" {
		name = "bar"
	}
	runID := fmt.Sprintf("%s_%d", safeName(name), now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, runID, name, now, out); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return runID, nil
}

func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}

func writeRun(runDir, runID, name string, now time.Time, out *experiment.Outcome) error {
	maxNode, maxU := out.Result.Displacements.MaxAbs()
	meta := RunMetadata{
		ID:              runID,
		Name:            name,
		Timestamp:       now,
		Nodes:           len(out.Mesh),
		MaxNode:         maxNode,
		MaxDisplacement: maxU,
		ElapsedMs:       float64(out.Elapsed.Microseconds()) / 1000,
		Problem:         out.Problem,
	}
	if out.Modal != nil {
		meta.Omega = out.Modal.Omega
		meta.Hz = out.Modal.Hz
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return err
	}

	nodes := make([][]string, len(out.Mesh))
	for i, x := range out.Mesh {
		nodes[i] = []string{strconv.Itoa(i), formatFloat(x), formatFloat(out.Result.Displacements[i]), formatFloat(out.Result.Reactions[i])}
	}
	if err := writeCSV(filepath.Join(runDir, "nodes.csv"), nodeHeader, nodes); err != nil {
		return err
	}

	elements := make([][]string, len(out.Result.ElementForces))
	for e := range elements {
		elements[e] = []string{
			strconv.Itoa(e),
			formatFloat(out.Mesh.ElementLength(e)),
			formatFloat(out.Result.ElementForces[e]),
			formatFloat(out.Result.Strains[e]),
		}
	}
	return writeCSV(filepath.Join(runDir, "elements.csv"), elementHeader, elements)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(s.path(runID, "metadata.json"))
	if err != nil {
		return nil, notFound(runID, err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadNodes(runID string) ([]NodeRecord, error) {
	records, err := readCSV(s.path(runID, "nodes.csv"))
	if err != nil {
		return nil, notFound(runID, err)
	}

	nodes := make([]NodeRecord, 0, len(records))
	for i, record := range records {
		if len(record) != len(nodeHeader) {
			return nil, fmt.Errorf("run %s: nodes.csv row %d has %d fields", runID, i+1, len(record))
		}
		var n NodeRecord
		if n.Node, err = strconv.Atoi(record[0]); err != nil {
			return nil, fmt.Errorf("run %s: nodes.csv row %d: %w", runID, i+1, err)
		}
		vals, err := parseFloats(record[1:])
		if err != nil {
			return nil, fmt.Errorf("run %s: nodes.csv row %d: %w", runID, i+1, err)
		}
		n.X, n.U, n.Reaction = vals[0], vals[1], vals[2]
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (s *Store) LoadElements(runID string) ([]ElementRecord, error) {
	records, err := readCSV(s.path(runID, "elements.csv"))
	if err != nil {
		return nil, notFound(runID, err)
	}

	elements := make([]ElementRecord, 0, len(records))
	for i, record := range records {
		if len(record) != len(elementHeader) {
			return nil, fmt.Errorf("run %s: elements.csv row %d has %d fields", runID, i+1, len(record))
		}
		var e ElementRecord
		if e.Element, err = strconv.Atoi(record[0]); err != nil {
			return nil, fmt.Errorf("run %s: elements.csv row %d: %w", runID, i+1, err)
		}
		vals, err := parseFloats(record[1:])
		if err != nil {
			return nil, fmt.Errorf("run %s: elements.csv row %d: %w", runID, i+1, err)
		}
		e.Length, e.Force, e.Strain = vals[0], vals[1], vals[2]
		elements = append(elements, e)
	}
	return elements, nil
}

// CopyNodes streams nodes.csv unchanged.
func (s *Store) CopyNodes(w io.Writer, runID string) error {
	f, err := os.Open(s.path(runID, "nodes.csv"))
	if err != nil {
		return notFound(runID, err)
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

type exportData struct {
	Run      *RunMetadata    `json:"run"`
	Nodes    []NodeRecord    `json:"nodes"`
	Elements []ElementRecord `json:"elements"`
}

// ExportJSON writes the metadata and both tables of a run as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	nodes, err := s.LoadNodes(runID)
	if err != nil {
		return err
	}
	elements, err := s.LoadElements(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{Run: meta, Nodes: nodes, Elements: elements})
}

func (s *Store) path(runID, file string) string {
	return filepath.Join(s.baseDir, filepath.Base(runID), file)
}

func notFound(runID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// createFile is swapped in tests to simulate write failures.
var createFile = os.Create

func writeJSON(path string, v any) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the data rows without the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
