package cellmetrics

import (
	"fmt"
	"math"
)

// integralTolerance is how far a count may be from an integer and still
// be considered integral.
const integralTolerance = 0.01

// Violation is a cell value that fails a sanity check.
type Violation struct {
	Barcode string
	Column  string
	Value   float64
	Reason  string
}

// String implements fmt.Stringer.
func (v Violation) String() string {
	return fmt.Sprintf("%s %s=%g: %s", v.Barcode, v.Column, v.Value, v.Reason)
}

// CheckResults checks the table through its public accessors. Counts must be
// non-negative, and when integral is set, within integralTolerance of an
// integer; percent columns must lie in [0,100]. Set integral only when no read
// was multimapped, since multimapped reads contribute fractions.
func CheckResults(t *Table, integral bool) []Violation {
	var violations []Violation
	schema := t.Schema()
	barcodes := t.Barcodes()
	for i, row := range t.Results() {
		for j, v := range row {
			col := schema.Column(j)
			report := func(reason string) {
				violations = append(violations, Violation{barcodes[i], col.Name, v, reason})
			}
			switch {
			case math.IsNaN(v) || math.IsInf(v, 0):
				report("not a finite number")
			case col.Kind == Percent && (v < 0 || v > 100):
				report("percent out of [0,100]")
			case col.Kind == Count && v < 0:
				report("negative count")
			case col.Kind == Count && integral && math.Abs(v-math.Round(v)) > integralTolerance:
				report("count is not an integer")
			}
		}
	}
	return violations
}
