// Package barcode loads the allow-list of cell barcodes and maps each barcode
// to a dense row number. Rows follow the order of the list.
//
// The list is a sequence of whitespace-separated tokens, typically one
// barcode per line as in Cell Ranger's barcodes.tsv.gz:
//
// AAACCCAAGAAACACT-1
// AAACCCAAGAAACCAT-1
//
// Duplicate tokens are retained. Row returns the position of the last
// occurrence, so the rows of earlier occurrences never receive any data.
package barcode

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/klauspost/compress/gzip"
)

// Opts controls Load.
type Opts struct {
	// Gzipped forces gzip decoding. Otherwise, gzip is used if the path ends
	// in ".gz", and the content is sniffed for other known compression
	// formats.
	Gzipped bool
}

// Index is an ordered set of barcodes. It is immutable once built and safe for
// concurrent reads.
type Index struct {
	barcodes []string
	rows     map[string]int
}

// New creates an index from the given barcodes, in order.
func New(barcodes []string) *Index {
	idx := &Index{
		barcodes: make([]string, len(barcodes)),
		rows:     make(map[string]int, len(barcodes)),
	}
	copy(idx.barcodes, barcodes)
	for i, bc := range idx.barcodes {
		idx.rows[bc] = i
	}
	return idx
}

// Read creates an index from whitespace-separated tokens in r.
func Read(r io.Reader) (*Index, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	scanner.Split(bufio.ScanWords)
	var barcodes []string
	for scanner.Scan() {
		barcodes = append(barcodes, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(barcodes), nil
}

// Load reads the barcode list at path. The path may name any location
// understood by grailbio/base/file. Errors opening or decoding the file are
// reported with kind errors.NotExist.
func Load(ctx context.Context, path string, opts Opts) (idx *Index, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(errors.NotExist, err, "open barcode list", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.E(errors.NotExist, e, "close barcode list", path)
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if opts.Gzipped || strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.E(errors.NotExist, err, "gunzip barcode list", path)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	} else {
		u, compressed := compress.NewReader(r)
		if compressed {
			log.Debug.Printf("%s: detected compressed barcode list", path)
		}
		defer u.Close() // nolint: errcheck
		r = u
	}
	if idx, err = Read(r); err != nil {
		return nil, errors.E(errors.NotExist, err, "read barcode list", path)
	}
	log.Debug.Printf("%s: read %d barcodes", path, idx.Len())
	return idx, nil
}

// Len returns the number of barcodes, including duplicates.
func (idx *Index) Len() int { return len(idx.barcodes) }

// Barcode returns the barcode at the given row.
func (idx *Index) Barcode(row int) string { return idx.barcodes[row] }

// Barcodes returns the barcodes in row order. The caller must not modify the
// returned slice.
func (idx *Index) Barcodes() []string { return idx.barcodes }

// Row returns the row of the given barcode. It returns false if the barcode is
// not in the list.
func (idx *Index) Row(bc string) (int, bool) {
	row, ok := idx.rows[bc]
	return row, ok
}
