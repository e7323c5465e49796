package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"rebalance-backtest/internal/model"
)

// Default column names of the simulated price files.
const (
	DateColumn   = "Date"
	DefaultA     = "SPYSIM"
	DefaultB     = "TLTSIM"
	DefaultLevel = "VIXSIM"
)

// dateLayouts are tried in order when parsing the Date column.
var dateLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	"1/2/2006",
	"01/02/2006",
	time.RFC3339,
}

type LoadOptions struct {
	ColumnA string
	ColumnB string
	// Start and End bound the returned rows inclusively; zero means open.
	Start time.Time
	End   time.Time
}

// LoadReturnsCSV reads a Date column and two price columns, computes simple
// returns and drops the leading row, then applies the date filter.
func LoadReturnsCSV(path string, opts LoadOptions) (*model.ReturnSeries, error) {
	if opts.ColumnA == "" {
		opts.ColumnA = DefaultA
	}
	if opts.ColumnB == "" {
		opts.ColumnB = DefaultB
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open returns file: %w", err)
	}
	defer f.Close()

	tbl, err := readTable(f, opts.ColumnA, opts.ColumnB)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	tbl = tbl.complete()
	series, err := model.NewReturnSeries(tbl.dates, tbl.cols[0], tbl.cols[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series.Between(opts.Start, opts.End), nil
}

// LoadLevelsCSV reads a Date column and one level column. Blank or
// unparseable cells become undefined rather than failing the load.
func LoadLevelsCSV(path, column string) (*model.LevelSeries, error) {
	if column == "" {
		column = DefaultLevel
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open levels file: %w", err)
	}
	defer f.Close()

	tbl, err := readTable(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model.NewLevelSeries(column, tbl.dates, tbl.cols[0])
}

// ParsePrices builds a return series from inline rows, as sent to the API.
func ParsePrices(dates []string, pricesA, pricesB []float64) (*model.ReturnSeries, error) {
	parsed := make([]time.Time, len(dates))
	for i, s := range dates {
		d, err := ParseDate(s)
		if err != nil {
			return nil, err
		}
		parsed[i] = d
	}
	return model.NewReturnSeries(parsed, pricesA, pricesB)
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

type table struct {
	dates []time.Time
	cols  [][]float64
}

func (t *table) Len() int { return len(t.dates) }
func (t *table) Swap(i, j int) {
	t.dates[i], t.dates[j] = t.dates[j], t.dates[i]
	for _, c := range t.cols {
		c[i], c[j] = c[j], c[i]
	}
}
func (t *table) Less(i, j int) bool { return t.dates[i].Before(t.dates[j]) }

// cleanHeader strips whitespace and a UTF-8 byte order mark.
func cleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

// complete drops rows with any undefined cell.
func (t *table) complete() *table {
	out := &table{cols: make([][]float64, len(t.cols))}
	for i, d := range t.dates {
		ok := true
		for _, c := range t.cols {
			if !model.IsDefined(c[i]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out.dates = append(out.dates, d)
		for k, c := range t.cols {
			out.cols[k] = append(out.cols[k], c[i])
		}
	}
	return out
}

// readTable reads the Date column plus the named columns, sorted by date.
// Duplicate dates are rejected.
func readTable(r io.Reader, columns ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %w", model.ErrInsufficientSample)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[cleanHeader(h)] = i
	}
	dateIdx, ok := pos[DateColumn]
	if !ok {
		return nil, fmt.Errorf("missing %q column: %w", DateColumn, model.ErrMissingInput)
	}
	idx := make([]int, len(columns))
	for k, c := range columns {
		i, ok := pos[c]
		if !ok {
			return nil, fmt.Errorf("missing %q column: %w", c, model.ErrMissingInput)
		}
		idx[k] = i
	}

	t := &table{cols: make([][]float64, len(columns))}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if dateIdx >= len(rec) || strings.TrimSpace(rec[dateIdx]) == "" {
			continue
		}
		d, err := ParseDate(rec[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t.dates = append(t.dates, d)
		for k, i := range idx {
			v := model.Undefined()
			if i < len(rec) {
				if x, err := strconv.ParseFloat(strings.TrimSpace(rec[i]), 64); err == nil {
					v = x
				}
			}
			t.cols[k] = append(t.cols[k], v)
		}
	}

	sort.Stable(t)
	for i := 1; i < len(t.dates); i++ {
		if t.dates[i].Equal(t.dates[i-1]) {
			return nil, fmt.Errorf("duplicate date %s", t.dates[i].Format(model.DateLayout))
		}
	}
	return t, nil
}
