package main

import (
	"fmt"
	"path/filepath"

	"github.com/grailbio/scqc/cellmetrics"
)

// Paths under a Cell Ranger "outs" directory.
const (
	dirBAM      = "possorted_genome_bam.bam"
	dirMatrix   = "raw_feature_bc_matrix"
	dirBarcodes = "raw_feature_bc_matrix/barcodes.tsv.gz"
)

type cmdOpts struct {
	input, cells, dir, matrix string
	gtf, output, metrics      string
	quant                     string
	verbose, gzipped, test    bool
	sanity, multimappers      bool
	queue                     int
}

// resolve expands -dir and validates the flag combination.
func (o *cmdOpts) resolve() error {
	if o.dir != "" {
		if o.input != "" || o.cells != "" {
			return fmt.Errorf("-dir cannot be combined with -input or -cells")
		}
		o.input = filepath.Join(o.dir, dirBAM)
		o.cells = filepath.Join(o.dir, dirBarcodes)
		if o.matrix == "" {
			o.matrix = filepath.Join(o.dir, dirMatrix)
		}
		o.gzipped = true
	}
	if o.input == "" || o.cells == "" {
		return fmt.Errorf("either -dir, or both -input and -cells, must be set")
	}
	if o.output == "" {
		return fmt.Errorf("-output must be set")
	}
	if _, err := cellmetrics.TagSetByName(o.quant); err != nil {
		return err
	}
	if o.queue < 0 {
		return fmt.Errorf("-queue must be >= 0, but found %d", o.queue)
	}
	return nil
}

// runOpts converts the flags to cellmetrics.Opts.
func (o *cmdOpts) runOpts() cellmetrics.Opts {
	opts := cellmetrics.DefaultOpts
	opts.Verbose = o.verbose
	opts.Limit = o.test
	opts.QueueLength = o.queue
	return opts
}
