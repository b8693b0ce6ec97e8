package cellmetrics

import (
	"github.com/grailbio/scqc/barcode"
)

// Table is a dense barcodes x metrics matrix. Row i belongs to the i'th
// barcode of the index it was created from. A Table is not thread safe; a
// single goroutine mutates it through Run.
type Table struct {
	schema   *Schema
	barcodes []string
	// data is row-major. Columns follow the schema order.
	data []float64
}

// NewTable creates an all-zero table with one row per barcode of idx.
func NewTable(schema *Schema, idx *barcode.Index) *Table {
	return &Table{
		schema:   schema,
		barcodes: idx.Barcodes(),
		data:     make([]float64, idx.Len()*schema.Len()),
	}
}

// Schema returns the schema of the table.
func (t *Table) Schema() *Schema { return t.schema }

// NumRows returns the number of rows, i.e., barcodes.
func (t *Table) NumRows() int { return len(t.barcodes) }

// Barcodes returns the barcode of each row. The caller must not modify the
// returned slice.
func (t *Table) Barcodes() []string { return t.barcodes }

// ColumnNames returns the names of the metric columns, excluding
// BarcodeColumn.
func (t *Table) ColumnNames() []string { return t.schema.Names() }

// Value returns the raw value of a metric. Percent metrics are fractions in
// [0,1].
func (t *Table) Value(row int, m Metric) float64 {
	return t.data[row*t.schema.Len()+t.schema.Pos(m)]
}

// Results returns a copy of the table with percent metrics scaled to
// [0,100]. Values are not rounded. Result[i][j] is the value of column j of
// row i.
func (t *Table) Results() [][]float64 {
	ncol := t.schema.Len()
	results := make([][]float64, t.NumRows())
	for i := range results {
		row := make([]float64, ncol)
		copy(row, t.data[i*ncol:(i+1)*ncol])
		for j := range row {
			if t.schema.Column(j).Kind == Percent {
				row[j] *= 100
			}
		}
		results[i] = row
	}
	return results
}

// apply folds one classified record into its row.
func (t *Table) apply(d *Delta) {
	row := t.data[d.Row*t.schema.Len() : (d.Row+1)*t.schema.Len()]
	total := &row[t.schema.Pos(Total)]
	prior := *total
	*total += d.Weight
	// Running mean weighted like total: prior is the weight of the reads seen
	// so far, d.Weight the weight of this one.
	updateMean := func(m Metric, frac float64) {
		mean := &row[t.schema.Pos(m)]
		*mean = (*mean*prior + frac*d.Weight) / (prior + d.Weight)
	}
	updateMean(PercentQualCBC, d.QualCBC)
	updateMean(PercentQualUMI, d.QualUMI)
	for m, v := range d.Counts {
		if v != 0 {
			row[t.schema.Pos(Metric(m))] += v
		}
	}
}
