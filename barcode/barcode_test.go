package barcode_test

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/scqc/barcode"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

const testList = "AAAC-1\nAAAG-1\n\nAAAT-1  AACA-1\n"

func writeGzip(t *testing.T, path, data string) {
	out, err := os.Create(path)
	assert.NoError(t, err)
	w := gzip.NewWriter(out)
	_, err = w.Write([]byte(data))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, out.Close())
}

func TestRead(t *testing.T) {
	idx, err := barcode.Read(strings.NewReader(testList))
	assert.NoError(t, err)
	assert.EQ(t, idx.Len(), 4)
	expect.EQ(t, idx.Barcodes(), []string{"AAAC-1", "AAAG-1", "AAAT-1", "AACA-1"})
	for i, bc := range idx.Barcodes() {
		row, ok := idx.Row(bc)
		expect.True(t, ok)
		expect.EQ(t, row, i)
		expect.EQ(t, idx.Barcode(row), bc)
	}
	_, ok := idx.Row("TTTT-1")
	expect.False(t, ok)
}

func TestDuplicates(t *testing.T) {
	idx := barcode.New([]string{"A", "B", "A"})
	expect.EQ(t, idx.Len(), 3)
	row, ok := idx.Row("A")
	expect.True(t, ok)
	expect.EQ(t, row, 2)
	expect.EQ(t, idx.Barcodes(), []string{"A", "B", "A"})
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	plainPath := filepath.Join(tmpDir, "barcodes.tsv")
	assert.NoError(t, ioutil.WriteFile(plainPath, []byte(testList), 0644))
	// Named without a .gz suffix, so that only the explicit flag or content
	// sniffing can detect compression.
	gzPath := filepath.Join(tmpDir, "barcodes.bin")
	writeGzip(t, gzPath, testList)
	gzSuffixPath := filepath.Join(tmpDir, "barcodes.tsv.gz")
	writeGzip(t, gzSuffixPath, testList)

	for _, test := range []struct {
		path string
		opts barcode.Opts
	}{
		{plainPath, barcode.Opts{}},
		{gzPath, barcode.Opts{Gzipped: true}},
		{gzPath, barcode.Opts{}},
		{gzSuffixPath, barcode.Opts{}},
	} {
		idx, err := barcode.Load(ctx, test.path, test.opts)
		assert.NoError(t, err, "path %s", test.path)
		expect.EQ(t, idx.Len(), 4, "path %s", test.path)
		expect.EQ(t, idx.Barcode(3), "AACA-1", "path %s", test.path)
	}
}

func TestLoadError(t *testing.T) {
	ctx := context.Background()
	tmpDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	_, err := barcode.Load(ctx, filepath.Join(tmpDir, "nonexistent.tsv"), barcode.Opts{})
	assert.NotNil(t, err)
	expect.True(t, errors.Is(errors.NotExist, err))

	// Forcing gzip on a plain file fails.
	plainPath := filepath.Join(tmpDir, "barcodes.tsv")
	assert.NoError(t, ioutil.WriteFile(plainPath, []byte(testList), 0644))
	_, err = barcode.Load(ctx, plainPath, barcode.Opts{Gzipped: true})
	assert.NotNil(t, err)
	expect.True(t, errors.Is(errors.NotExist, err))
}
