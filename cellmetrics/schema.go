package cellmetrics

import (
	"fmt"
)

// Metric identifies one per-cell metric.
type Metric int

const (
	Antisense Metric = iota
	Intergenic
	Intronic
	Exonic
	Multi
	Unmapped
	HighConf
	PolyA
	TSO
	Spliced
	PercentQualCBC
	PercentQualUMI
	NUMI
	UTR
	Total
	// NumMetrics is the number of metrics. It must be last.
	NumMetrics
)

// Kind describes how a metric is stored and rendered.
type Kind int

const (
	// Count is a (possibly fractional) read count.
	Count Kind = iota
	// Percent is a mean fraction in [0,1]. It is scaled by 100 on output.
	Percent
)

// BarcodeColumn is the name of the leading barcode column of the output.
const BarcodeColumn = "CBC"

// Column describes one output column.
type Column struct {
	Metric Metric
	Name   string
	Kind   Kind
}

// Schema is the ordered list of output columns, one per metric. The table,
// the TSV writer, and the sanity checks all use the same schema.
type Schema struct {
	cols []Column
	pos  [NumMetrics]int
}

// NewSchema validates the columns and creates a schema. Every metric must
// appear exactly once, and names must be unique.
func NewSchema(cols []Column) (*Schema, error) {
	s := &Schema{cols: make([]Column, len(cols))}
	copy(s.cols, cols)
	for i := range s.pos {
		s.pos[i] = -1
	}
	names := map[string]bool{BarcodeColumn: true}
	for i, c := range s.cols {
		if c.Metric < 0 || c.Metric >= NumMetrics {
			return nil, fmt.Errorf("column %q: invalid metric %d", c.Name, c.Metric)
		}
		if s.pos[c.Metric] >= 0 {
			return nil, fmt.Errorf("column %q: metric %d already mapped to %q", c.Name, c.Metric, s.cols[s.pos[c.Metric]].Name)
		}
		if c.Name == "" || names[c.Name] {
			return nil, fmt.Errorf("column %d: empty or duplicate name %q", i, c.Name)
		}
		names[c.Name] = true
		s.pos[c.Metric] = i
	}
	for m, p := range s.pos {
		if p < 0 {
			return nil, fmt.Errorf("metric %d has no column", m)
		}
	}
	return s, nil
}

func mustNewSchema(cols []Column) *Schema {
	s, err := NewSchema(cols)
	if err != nil {
		panic(err)
	}
	return s
}

// DefaultSchema is the column layout of the bio-cellqc output.
var DefaultSchema = mustNewSchema([]Column{
	{Antisense, "antisense", Count},
	{Intergenic, "intergenic", Count},
	{Intronic, "intronic", Count},
	{Exonic, "exonic", Count},
	{Multi, "multi", Count},
	{Unmapped, "unmapped", Count},
	{HighConf, "highConf", Count},
	{PolyA, "polyA", Count},
	{TSO, "TSO", Count},
	{Spliced, "spliced", Count},
	{PercentQualCBC, "percent_qual_cbc", Percent},
	{PercentQualUMI, "percent_qual_umi", Percent},
	{NUMI, "nUMI", Count},
	{UTR, "UTR", Count},
	{Total, "total", Count},
})

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.cols) }

// Column returns the i'th column.
func (s *Schema) Column(i int) Column { return s.cols[i] }

// Pos returns the column position of the metric.
func (s *Schema) Pos(m Metric) int { return s.pos[m] }

// Names returns the column names in order, excluding BarcodeColumn.
func (s *Schema) Names() []string {
	names := make([]string, len(s.cols))
	for i, c := range s.cols {
		names[i] = c.Name
	}
	return names
}

// Lookup finds the column with the given name.
func (s *Schema) Lookup(name string) (Column, bool) {
	for _, c := range s.cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// String implements fmt.Stringer.
func (m Metric) String() string {
	if m < 0 || m >= NumMetrics {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return DefaultSchema.cols[DefaultSchema.pos[m]].Name
}
