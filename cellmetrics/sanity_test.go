package cellmetrics_test

import (
	"testing"

	"github.com/grailbio/hts/sam"
	"github.com/grailbio/scqc/cellmetrics"
	"github.com/stretchr/testify/assert"
)

func TestCheckResults(t *testing.T) {
	// Unique and unmapped reads only: every count is integral.
	recs := []*sam.Record{
		newRecord("r1", 100, match10, withNH("AAAC-1", 1, newAux("xf", 9))...),
		newRecord("r2", 0, nil, baseTags("AAAC-1")...),
		newRecord("r3", 100, match10, withNH("AAAG-1", 1)...),
	}
	table, stats := runFake(t, []string{"AAAC-1", "AAAG-1"}, recs, cellmetrics.DefaultOpts)
	assert.Equal(t, int64(0), stats.Multimapped)
	assert.Empty(t, cellmetrics.CheckResults(table, true))

	// Multimapped reads make fractional counts.
	table, stats = runFake(t, []string{"AAAC-1", "AAAG-1"}, testRecords(), cellmetrics.DefaultOpts)
	assert.NotEqual(t, int64(0), stats.Multimapped)
	assert.Empty(t, cellmetrics.CheckResults(table, false))
	violations := cellmetrics.CheckResults(table, true)
	assert.NotEmpty(t, violations)
	for _, v := range violations {
		assert.Equal(t, "AAAC-1", v.Barcode)
		assert.Contains(t, v.String(), "not an integer")
	}
}
