package cellmetrics

import (
	"context"
	"io"
	"math"
	"strings"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
)

// WriteTable writes the table as TSV. The first line lists BarcodeColumn and
// the schema's column names. Each row follows, in barcode order, including
// rows that received no reads. Values are rounded to the nearest integer,
// after scaling percent metrics to [0,100].
func WriteTable(w io.Writer, t *Table) error {
	tw := tsv.NewWriter(w)
	tw.WriteString(BarcodeColumn)
	for _, name := range t.ColumnNames() {
		tw.WriteString(name)
	}
	if err := tw.EndLine(); err != nil {
		return err
	}
	for i, row := range t.Results() {
		tw.WriteString(t.barcodes[i])
		for _, v := range row {
			tw.WriteInt64(int64(math.Round(v)))
		}
		if err := tw.EndLine(); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteTSV writes the table to path with WriteTable, replacing any existing
// file. The output is gzipped if path ends in ".gz". It returns the seahash
// digest of the uncompressed TSV, or zero if writing or closing fails.
func WriteTSV(ctx context.Context, path string, t *Table) (digest uint64, err error) {
	var out file.File
	if out, err = file.Create(ctx, path); err != nil {
		return 0, errors.E(err, "create", path)
	}
	defer func() {
		if err != nil {
			digest = 0
			return
		}
		log.Debug.Printf("%s: wrote %d rows, seahash %016x", path, t.NumRows(), digest)
	}()
	defer file.CloseAndReport(ctx, out, &err)

	var (
		w  = out.Writer(ctx)
		gz *gzip.Writer
		h  = seahash.New()
	)
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(w)
		w = gz
	}
	if err = WriteTable(io.MultiWriter(w, h), t); err != nil {
		return 0, errors.E(err, "write", path)
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			return 0, errors.E(err, "write", path)
		}
	}
	return h.Sum64(), nil
}
