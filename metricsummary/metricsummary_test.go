package metricsummary_test

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/scqc/metricsummary"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSummary = `Estimated Number of Cells,Mean Reads per Cell,Number of Reads,Q30 Bases in Barcode,Q30 Bases in UMI,Reads Mapped Confidently to Intergenic Regions,Reads Mapped Confidently to Intronic Regions,Reads Mapped Confidently to Exonic Regions,Reads Mapped Antisense to Gene,Chemistry
2,"2,000","4,000",95.0%,90.5%,5.0%,25.0%,50.0%,2.5%,Single Cell 3' v3
`

// fakeMatrix has two cells with totals 1000 and 3000.
type fakeMatrix struct{}

func (fakeMatrix) ColumnNames() []string {
	return []string{"antisense", "intergenic", "intronic", "exonic", "percent_qual_cbc", "percent_qual_umi", "total"}
}

func (fakeMatrix) Results() [][]float64 {
	return [][]float64{
		{25, 50, 250, 500, 100, 90, 1000},
		{75, 150, 750, 1500, 90, 91, 3000},
	}
}

func TestParse(t *testing.T) {
	s, err := metricsummary.Parse(strings.NewReader(testSummary))
	require.NoError(t, err)
	assert.Equal(t, 10, len(s.Names()))
	v, ok := s.Get("Number of Reads")
	assert.True(t, ok)
	assert.Equal(t, 4000.0, v)
	v, ok = s.Get("Q30 Bases in UMI")
	assert.True(t, ok)
	assert.Equal(t, 90.5, v)
	_, ok = s.Get("Chemistry")
	assert.False(t, ok)
	_, ok = s.Get("Nonexistent")
	assert.False(t, ok)

	_, err = metricsummary.Parse(strings.NewReader("Number of Reads\n"))
	assert.Error(t, err)
	_, err = metricsummary.Parse(strings.NewReader("A,B\n1\n"))
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	s, err := metricsummary.Parse(strings.NewReader(testSummary))
	require.NoError(t, err)
	comparisons := metricsummary.Compare(fakeMatrix{}, s, metricsummary.DefaultPairs)
	require.Equal(t, len(metricsummary.DefaultPairs), len(comparisons))
	want := map[string]float64{
		"Number of Reads": 4000,
		"Reads Mapped Confidently to Intergenic Regions": 5,
		"Reads Mapped Confidently to Intronic Regions":   25,
		"Reads Mapped Confidently to Exonic Regions":     50,
		"Reads Mapped Antisense to Gene":                 2.5,
		"Q30 Bases in Barcode":                           (100*1000 + 90*3000) / 4000.0,
		"Q30 Bases in UMI":                               (90*1000 + 91*3000) / 4000.0,
	}
	for _, c := range comparisons {
		require.NoError(t, c.Err, c.Metric)
		assert.InDelta(t, want[c.Metric], c.Computed, 1e-9, c.Metric)
	}
	assert.InDelta(t, 0.0, comparisons[0].RelDiff(), 1e-12)
	// Barcode Q30: computed 92.5, reported 95.
	assert.InDelta(t, 2.5/95, comparisons[5].RelDiff(), 1e-12)
}

func TestCompareMissing(t *testing.T) {
	s, err := metricsummary.Parse(strings.NewReader("Number of Reads,Q30 Bases in UMI\n10,50%\n"))
	require.NoError(t, err)
	comparisons := metricsummary.Compare(fakeMatrix{}, s, []metricsummary.Pair{
		{"Number of Reads", "total", metricsummary.Sum},
		{"Reads Mapped Antisense to Gene", "antisense", metricsummary.FractionOfTotal},
		{"Q30 Bases in UMI", "no_such_column", metricsummary.WeightedMean},
	})
	require.Equal(t, 3, len(comparisons))
	assert.NoError(t, comparisons[0].Err)
	assert.Equal(t, 4000.0, comparisons[0].Computed)
	assert.Equal(t, 10.0, comparisons[0].Reported)
	assert.Error(t, comparisons[1].Err)
	assert.Error(t, comparisons[2].Err)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	path := filepath.Join(tmpDir, "metrics_summary.csv")
	require.NoError(t, ioutil.WriteFile(path, []byte(testSummary), 0644))
	s, err := metricsummary.Load(ctx, path)
	require.NoError(t, err)
	v, ok := s.Get("Reads Mapped Antisense to Gene")
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)

	_, err = metricsummary.Load(ctx, filepath.Join(tmpDir, "nonexistent.csv"))
	assert.Error(t, err)
}
