// Package metricsummary reads the metrics_summary.csv file written by Cell
// Ranger and compares it against per-cell metrics aggregated over all cells.
//
// The file has a header line of metric names and a single line of values,
// for example:
//
// "Estimated Number of Cells","Number of Reads","Q30 Bases in Barcode"
// "1,222","68,511,823",93.9%
package metricsummary

import (
	"context"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/pkg/errors"
)

// Summary holds the values of one metrics_summary.csv file. Percentages are
// stored in [0,100].
type Summary struct {
	names  []string
	values map[string]float64
}

// Parse reads a summary from r. Values that are not numbers are dropped.
func Parse(r io.Reader) (*Summary, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parse metrics summary")
	}
	if len(lines) < 2 {
		return nil, errors.Errorf("metrics summary: expect a header and a value line, found %d lines", len(lines))
	}
	header, row := lines[0], lines[1]
	s := &Summary{values: map[string]float64{}}
	for i, name := range header {
		s.names = append(s.names, name)
		if v, err := parseValue(row[i]); err == nil {
			s.values[name] = v
		}
	}
	return s, nil
}

// parseValue parses "1,234", "93.9%", or "12".
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	s = strings.Replace(s, ",", "", -1)
	return strconv.ParseFloat(s, 64)
}

// Load reads the summary file at path.
func Load(ctx context.Context, path string) (s *Summary, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			s, err = nil, errors.Wrapf(e, "close %s", path)
		}
	}()
	if s, err = Parse(in.Reader(ctx)); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return s, nil
}

// Names lists the metric names in file order.
func (s *Summary) Names() []string { return s.names }

// Get returns the value of the named metric. It returns false if the metric
// is absent or its value is not a number.
func (s *Summary) Get(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Matrix is the read-only view of a per-cell metrics table. Results()[i][j]
// is the value of column ColumnNames()[j] for cell i, with percentages in
// [0,100]. *cellmetrics.Table implements Matrix.
type Matrix interface {
	ColumnNames() []string
	Results() [][]float64
}

// Aggregation describes how per-cell values are combined over all cells.
type Aggregation int

const (
	// Sum adds the column over all cells.
	Sum Aggregation = iota
	// FractionOfTotal is 100*sum(column)/sum(total).
	FractionOfTotal
	// WeightedMean is the mean of a percent column, weighted by total.
	WeightedMean
)

// Pair maps a summary metric to a per-cell column.
type Pair struct {
	Metric      string
	Column      string
	Aggregation Aggregation
}

// TotalColumn is the per-cell column holding the read count.
const TotalColumn = "total"

// DefaultPairs lists the summary metrics that per-cell metrics reproduce.
var DefaultPairs = []Pair{
	{"Number of Reads", TotalColumn, Sum},
	{"Reads Mapped Confidently to Intergenic Regions", "intergenic", FractionOfTotal},
	{"Reads Mapped Confidently to Intronic Regions", "intronic", FractionOfTotal},
	{"Reads Mapped Confidently to Exonic Regions", "exonic", FractionOfTotal},
	{"Reads Mapped Antisense to Gene", "antisense", FractionOfTotal},
	{"Q30 Bases in Barcode", "percent_qual_cbc", WeightedMean},
	{"Q30 Bases in UMI", "percent_qual_umi", WeightedMean},
}

// Comparison is the outcome of comparing one Pair.
type Comparison struct {
	Pair
	// Computed is the value aggregated from the matrix.
	Computed float64
	// Reported is the value read from the summary.
	Reported float64
	// Err is non-nil if either value could not be obtained.
	Err error
}

// RelDiff returns |Computed-Reported|/|Reported|, or |Computed| if Reported
// is zero.
func (c Comparison) RelDiff() float64 {
	d := math.Abs(c.Computed - c.Reported)
	if c.Reported == 0 {
		return d
	}
	return d / math.Abs(c.Reported)
}

// Compare aggregates the matrix for each pair and looks up the corresponding
// summary metric. A missing column or metric is reported in
// Comparison.Err.
func Compare(m Matrix, s *Summary, pairs []Pair) []Comparison {
	colIndex := map[string]int{}
	for i, name := range m.ColumnNames() {
		colIndex[name] = i
	}
	results := m.Results()
	column := func(name string) ([]float64, error) {
		j, ok := colIndex[name]
		if !ok {
			return nil, errors.Errorf("column %q not found", name)
		}
		col := make([]float64, len(results))
		for i, row := range results {
			col[i] = row[j]
		}
		return col, nil
	}

	compare := func(p Pair) Comparison {
		c := Comparison{Pair: p}
		reported, ok := s.Get(p.Metric)
		if !ok {
			c.Err = errors.Errorf("metric %q not found in summary", p.Metric)
			return c
		}
		c.Reported = reported
		values, err := column(p.Column)
		if err != nil {
			c.Err = err
			return c
		}
		if p.Aggregation == Sum {
			c.Computed = sum(values)
			return c
		}
		totals, err := column(TotalColumn)
		if err != nil {
			c.Err = err
			return c
		}
		c.Computed, c.Err = aggregate(p.Aggregation, values, totals)
		return c
	}

	comparisons := make([]Comparison, len(pairs))
	for i, p := range pairs {
		comparisons[i] = compare(p)
	}
	return comparisons
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func aggregate(a Aggregation, values, totals []float64) (float64, error) {
	total := sum(totals)
	if total == 0 {
		return 0, errors.New("no reads")
	}
	switch a {
	case FractionOfTotal:
		return 100 * sum(values) / total, nil
	case WeightedMean:
		var s float64
		for i, v := range values {
			s += v * totals[i]
		}
		return s / total, nil
	}
	return 0, errors.Errorf("unknown aggregation %d", a)
}
