package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dataset describes one CSV file in the data directory.
type Dataset struct {
	ID      string   `json:"id"`
	File    string   `json:"file"`
	Columns []string `json:"columns"`
	// Kind is "returns" when both default price columns are present,
	// "levels" when the default level column is, otherwise "unknown".
	Kind string `json:"kind"`
	// Error is set when the header could not be read.
	Error string `json:"error,omitempty"`
}

// DefaultDataDir returns the directory holding the CSV datasets.
func DefaultDataDir() string {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		return dir
	}
	return "./data"
}

// ListDatasets reads the header of every .csv file in dir.
// A missing directory yields an empty list. A file whose header cannot be
// read is listed as "unknown" with Error set.
func ListDatasets(dir string) ([]Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Dataset{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	out := []Dataset{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		ds := Dataset{
			ID:   strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			File: e.Name(),
		}
		cols, err := readHeader(filepath.Join(dir, e.Name()))
		if err != nil {
			ds.Columns = []string{}
			ds.Kind = "unknown"
			ds.Error = err.Error()
		} else {
			ds.Columns = cols
			ds.Kind = kindOf(cols)
		}
		out = append(out, ds)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DatasetPath resolves a dataset ID to its file inside dir. IDs that would
// escape dir are rejected.
func DatasetPath(dir, id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid dataset id %q", id)
	}
	return filepath.Join(dir, id+".csv"), nil
}

func readHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", filepath.Base(path), err)
	}
	for i, h := range header {
		header[i] = cleanHeader(h)
	}
	return header, nil
}

func kindOf(cols []string) string {
	has := map[string]bool{}
	for _, c := range cols {
		has[c] = true
	}
	switch {
	case has[DefaultA] && has[DefaultB]:
		return "returns"
	case has[DefaultLevel]:
		return "levels"
	default:
		return "unknown"
	}
}
