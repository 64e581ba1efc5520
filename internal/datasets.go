package internal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Preview is the header row plus the first rows of a tabular dataset
type Preview struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// ColumnSummary holds descriptive statistics for one numeric column
type ColumnSummary struct {
	Min    float64 `json:"min" yaml:"min"`
	Max    float64 `json:"max" yaml:"max"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	Count  float64 `json:"count" yaml:"count"`
}

// DatasetProvider resolves dataset names and answers preview/summary queries
type DatasetProvider interface {
	Register(name, path, description string) (*DatasetReference, error)
	Get(name string) (*DatasetReference, error)
	List() []*DatasetReference
	Preview(name string, limit int) (*Preview, error)
	Summary(name string) (map[string]ColumnSummary, error)
}

// DatasetRegistry is the built-in provider for delimited text files
type DatasetRegistry struct {
	mu       sync.RWMutex
	datasets map[string]*DatasetReference
}

// NewDatasetRegistry creates a registry seeded with entries (may be nil)
func NewDatasetRegistry(entries map[string]*DatasetReference) *DatasetRegistry {
	datasets := make(map[string]*DatasetReference, len(entries))
	for name, ref := range entries {
		copied := *ref
		datasets[name] = &copied
	}
	return &DatasetRegistry{datasets: datasets}
}

// Register records a dataset; re-registering a name overwrites it
func (r *DatasetRegistry) Register(name, path, description string) (*DatasetReference, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Op: "register dataset", Reason: "name must not be empty"}
	}
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(resolved); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Kind: "dataset file", ID: resolved}
		}
		return nil, fmt.Errorf("failed to stat dataset %s: %w", resolved, err)
	}

	ref := &DatasetReference{
		Name:        name,
		Path:        resolved,
		Format:      inferFormat(resolved),
		Description: description,
	}

	r.mu.Lock()
	r.datasets[name] = ref
	r.mu.Unlock()

	copied := *ref
	return &copied, nil
}

// Get returns the dataset registered under name
func (r *DatasetRegistry) Get(name string) (*DatasetReference, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.datasets[name]
	if !ok {
		return nil, notFound("dataset", name)
	}
	copied := *ref
	return &copied, nil
}

// List returns all datasets sorted by name
func (r *DatasetRegistry) List() []*DatasetReference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*DatasetReference, 0, len(r.datasets))
	for _, ref := range r.datasets {
		copied := *ref
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Snapshot returns a copy of the registry contents for persistence
func (r *DatasetRegistry) Snapshot() map[string]*DatasetReference {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*DatasetReference, len(r.datasets))
	for name, ref := range r.datasets {
		copied := *ref
		out[name] = &copied
	}
	return out
}

// Preview returns the header row and up to limit data rows
func (r *DatasetRegistry) Preview(name string, limit int) (*Preview, error) {
	ref, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	reader, closeFn, err := openTabular(ref, "preview")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	preview := &Preview{Headers: []string{}, Rows: [][]string{}}
	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return preview, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref.Path, err)
	}
	preview.Headers = headers

	for len(preview.Rows) < limit {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ref.Path, err)
		}
		preview.Rows = append(preview.Rows, row)
	}
	return preview, nil
}

// Summary computes min/max/mean/median/count for every column with numeric values.
// Values that do not parse as numbers are skipped.
func (r *DatasetRegistry) Summary(name string) (map[string]ColumnSummary, error) {
	ref, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	reader, closeFn, err := openTabular(ref, "summary")
	if err != nil {
		return nil, err
	}
	defer closeFn()

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return map[string]ColumnSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref.Path, err)
	}

	columns := make([][]float64, len(headers))
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", ref.Path, err)
		}
		for i, value := range row {
			if i >= len(headers) {
				break
			}
			number, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				continue
			}
			columns[i] = append(columns[i], number)
		}
	}

	summary := make(map[string]ColumnSummary, len(headers))
	for i, header := range headers {
		if len(columns[i]) == 0 {
			continue
		}
		summary[header] = summarize(columns[i])
	}
	return summary, nil
}

func summarize(values []float64) ColumnSummary {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var total float64
	for _, v := range sorted {
		total += v
	}
	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return ColumnSummary{
		Min:    sorted[0],
		Max:    sorted[n-1],
		Mean:   total / float64(n),
		Median: median,
		Count:  float64(n),
	}
}

func openTabular(ref *DatasetReference, op string) (*csv.Reader, func(), error) {
	var comma rune
	switch strings.ToLower(ref.Format) {
	case "csv":
		comma = ','
	case "tsv":
		comma = '\t'
	default:
		return nil, nil, &ValidationError{
			Op:     op + " dataset",
			Reason: fmt.Sprintf("only tabular formats (csv, tsv) are supported, %s is %q", ref.Name, ref.Format),
		}
	}
	f, err := os.Open(ref.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, &NotFoundError{Kind: "dataset file", ID: ref.Path}
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", ref.Path, err)
	}
	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	return reader, func() { _ = f.Close() }, nil
}

func resolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}

func inferFormat(path string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return DefaultDatasetFormat
	}
	return ext
}
