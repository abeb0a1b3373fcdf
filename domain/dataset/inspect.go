package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/montanaflynn/stats"
)

// Head writes the first n data rows (plus the header row) to w in a plain
// aligned layout, the usual first look at a freshly loaded table.
func (t *Table) Head(w io.Writer, n int) {
	if n > t.rows {
		n = t.rows
	}

	widths := make([]int, len(t.Headers))
	for j, h := range t.Headers {
		widths[j] = len(h)
		cells := t.columns[h]
		for i := 0; i < n; i++ {
			if len(cells[i]) > widths[j] {
				widths[j] = len(cells[i])
			}
		}
	}

	writeRow := func(cells []string) {
		parts := make([]string, len(cells))
		for j, cell := range cells {
			parts[j] = fmt.Sprintf("%-*s", widths[j], cell)
		}
		fmt.Fprintln(w, strings.Join(parts, "  "))
	}

	writeRow(t.Headers)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Headers))
		for j, h := range t.Headers {
			row[j] = t.columns[h][i]
		}
		writeRow(row)
	}
}

// ColumnSummary holds descriptive statistics for one numeric column
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// Summarize computes descriptive statistics for every column that parses as
// numeric. Columns with no numeric cells are skipped.
func (t *Table) Summarize() []ColumnSummary {
	summaries := make([]ColumnSummary, 0, len(t.Headers))
	for _, h := range t.Headers {
		values, err := t.NumericColumn(h)
		if err != nil || len(values) == 0 {
			continue
		}

		mean, _ := stats.Mean(values)
		stdDev, _ := stats.StandardDeviationSample(values)
		min, _ := stats.Min(values)
		max, _ := stats.Max(values)
		median, _ := stats.Median(values)
		q25, _ := stats.Percentile(values, 25)
		q75, _ := stats.Percentile(values, 75)

		summaries = append(summaries, ColumnSummary{
			Column: h,
			Count:  len(values),
			Mean:   mean,
			StdDev: stdDev,
			Min:    min,
			Q25:    q25,
			Median: median,
			Q75:    q75,
			Max:    max,
		})
	}
	return summaries
}

// Describe writes descriptive statistics for all numeric columns to w
func (t *Table) Describe(w io.Writer) {
	fmt.Fprintf(w, "%-16s %8s %10s %10s %10s %10s %10s %10s %10s\n",
		"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, s := range t.Summarize() {
		fmt.Fprintf(w, "%-16s %8d %10.3f %10.3f %10.3f %10.3f %10.3f %10.3f %10.3f\n",
			s.Column, s.Count, s.Mean, s.StdDev, s.Min, s.Q25, s.Median, s.Q75, s.Max)
	}
}

// Info writes a structural overview: source, shape, and per-column cell counts
func (t *Table) Info(w io.Writer) {
	fmt.Fprintf(w, "source: %s\n", t.Source)
	fmt.Fprintf(w, "fingerprint: %s\n", t.Fingerprint.Short())
	fmt.Fprintf(w, "%d rows x %d columns\n", t.NumRows(), t.NumCols())
	for _, h := range t.Headers {
		missing, _ := t.MissingCount(h)
		fmt.Fprintf(w, "  %-16s %d non-null\n", h, t.rows-missing)
	}
}

// WriteMissingReport writes per-column missing-value counts to w
func (t *Table) WriteMissingReport(w io.Writer) {
	for _, c := range t.MissingCounts() {
		fmt.Fprintf(w, "%-16s %d\n", c.Column, c.Count)
	}
}
