// Package utr reads untranslated-region (UTR) intervals from a GTF
// annotation and answers containment queries keyed by gene id.
package utr

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
)

// Interval is a UTR in 1-based inclusive coordinates.
type Interval struct {
	Start, Stop int
}

// Index maps a gene id to its UTR intervals, in annotation order. It is
// immutable once built and safe for concurrent reads.
type Index struct {
	genes map[string][]Interval
}

// gtfRecord is one line of a GTF file.
type gtfRecord struct {
	Chrom   string
	Source  string
	Feature string
	Start   int
	Stop    int
	Score   string
	Strand  string
	Frame   string
	Attrs   string
}

func isUTR(feature string) bool {
	switch feature {
	case "UTR", "three_prime_utr", "five_prime_utr":
		return true
	}
	return false
}

// GeneID extracts the quoted value following the gene_id token in a GTF
// attribute column, e.g., `ENSG00000243485` from
// `gene_id "ENSG00000243485"; gene_version "5";`.
func GeneID(attrs string) (string, bool) {
	for _, attr := range strings.Split(attrs, ";") {
		attr = strings.TrimSpace(attr)
		if !strings.HasPrefix(attr, "gene_id") {
			continue
		}
		value := strings.TrimSpace(attr[len("gene_id"):])
		if len(value) < 2 || value[0] != '"' {
			continue
		}
		if end := strings.IndexByte(value[1:], '"'); end >= 0 {
			return value[1 : end+1], true
		}
	}
	return "", false
}

// Read parses a GTF stream. Lines starting with '#' are skipped. Any error
// aborts the parse; no partial index is returned.
func Read(r io.Reader) (*Index, error) {
	idx := &Index{genes: map[string][]Interval{}}
	reader := tsv.NewReader(bufio.NewReaderSize(r, 64<<10))
	reader.Comment = '#'
	reader.LazyQuotes = true
	var rec gtfRecord
	nLine := 0
	for {
		if err := reader.Read(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, err, "parse GTF")
		}
		nLine++
		if !isUTR(rec.Feature) {
			continue
		}
		gene, ok := GeneID(rec.Attrs)
		if !ok {
			return nil, errors.E(errors.Invalid, "parse GTF: no gene_id in", rec.Attrs)
		}
		idx.genes[gene] = append(idx.genes[gene], Interval{Start: rec.Start, Stop: rec.Stop})
	}
	log.Debug.Printf("GTF: read %d lines, %d genes with UTRs", nLine, len(idx.genes))
	return idx, nil
}

// Load reads the GTF file at path, decompressing it if the path suffix names
// a known compression format.
func Load(ctx context.Context, path string) (idx *Index, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(errors.NotExist, err, "open GTF", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			idx, err = nil, errors.E(e, "close GTF", path)
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		defer u.Close() // nolint: errcheck
		r = u
	}
	if idx, err = Read(r); err != nil {
		return nil, errors.E(err, path)
	}
	return idx, nil
}

// NumGenes returns the number of genes with at least one UTR.
func (idx *Index) NumGenes() int { return len(idx.genes) }

// Intervals returns the UTRs of the gene, in annotation order. The caller must
// not modify the returned slice.
func (idx *Index) Intervals(gene string) []Interval { return idx.genes[gene] }

// Contains checks if pos lies strictly inside one of the gene's UTRs. The
// endpoints themselves do not count.
func (idx *Index) Contains(gene string, pos int) bool {
	for _, iv := range idx.genes[gene] {
		if iv.Start < pos && pos < iv.Stop {
			return true
		}
	}
	return false
}
