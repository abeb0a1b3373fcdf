// Package dataset holds the in-memory tabular data model used by all
// statistical components.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"healthsim/domain/core"
)

// Table is an ordered collection of named string columns loaded from a
// delimited file. Cells keep their raw textual form; numeric extraction
// happens on demand so that one table can serve indicator, group, and
// measurement columns alike.
type Table struct {
	Source      string // file the table was loaded from, informational
	Headers     []string
	Fingerprint core.Hash

	columns map[string][]string
	rows    int
}

// New builds a Table from a header row and data rows. Short rows are padded
// with empty cells so every column has the same length.
func New(source string, headers []string, rows [][]string) *Table {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
	}

	columns := make(map[string][]string, len(cleaned))
	for _, h := range cleaned {
		columns[h] = make([]string, 0, len(rows))
	}
	for _, row := range rows {
		for j, h := range cleaned {
			cell := ""
			if j < len(row) {
				cell = strings.TrimSpace(row[j])
			}
			columns[h] = append(columns[h], cell)
		}
	}

	return &Table{
		Source:      source,
		Headers:     cleaned,
		Fingerprint: core.DatasetFingerprint(cleaned, rows),
		columns:     columns,
		rows:        len(rows),
	}
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return t.rows
}

// NumCols returns the number of columns
func (t *Table) NumCols() int {
	return len(t.Headers)
}

// HasColumn reports whether the table contains the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// Column returns the raw cells of the named column
func (t *Table) Column(name string) ([]string, error) {
	cells, ok := t.columns[name]
	if !ok {
		return nil, core.NewColumnNotFoundError(name)
	}
	return cells, nil
}

// NumericColumn parses the named column as float64, dropping cells that are
// empty or fail to parse. This mirrors how missing values vanish before any
// statistic is computed.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	cells, err := t.Column(name)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(cells))
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// MissingCount returns how many cells in the named column are empty
func (t *Table) MissingCount(name string) (int, error) {
	cells, err := t.Column(name)
	if err != nil {
		return 0, err
	}
	missing := 0
	for _, cell := range cells {
		if cell == "" {
			missing++
		}
	}
	return missing, nil
}

// MissingCounts returns per-column missing-cell counts in header order
func (t *Table) MissingCounts() []ColumnCount {
	counts := make([]ColumnCount, 0, len(t.Headers))
	for _, h := range t.Headers {
		n, _ := t.MissingCount(h)
		counts = append(counts, ColumnCount{Column: h, Count: n})
	}
	return counts
}

// ColumnCount pairs a column name with a count, preserving header order
type ColumnCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// GroupedNumeric splits the values of valueCol by the label found in
// groupCol on the same row, dropping rows where the value cell is missing
// or non-numeric. Labels come back separately in sorted order.
func (t *Table) GroupedNumeric(groupCol, valueCol string) (map[string][]float64, []string, error) {
	labels, err := t.Column(groupCol)
	if err != nil {
		return nil, nil, err
	}
	cells, err := t.Column(valueCol)
	if err != nil {
		return nil, nil, err
	}

	groups := make(map[string][]float64)
	for i, label := range labels {
		if label == "" || i >= len(cells) || cells[i] == "" {
			continue
		}
		v, err := strconv.ParseFloat(cells[i], 64)
		if err != nil || math.IsNaN(v) {
			continue
		}
		groups[label] = append(groups[label], v)
	}

	names := sortedKeys(groups)
	return groups, names, nil
}

func sortedKeys(m map[string][]float64) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String gives a compact one-line description for logs
func (t *Table) String() string {
	return fmt.Sprintf("Table(%s: %d cols x %d rows)", t.Source, t.NumCols(), t.NumRows())
}
