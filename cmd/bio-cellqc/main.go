// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

/*
bio-cellqc computes per-cell read quality metrics from a single-cell RNA-seq
BAM file and writes them as a TSV table with one row per barcode.

  bio-cellqc -dir outs -gtf genes.gtf.gz -output cellqc.tsv
  bio-cellqc -input possorted_genome_bam.bam -cells barcodes.tsv -output cellqc.tsv
*/

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/scqc/cellmetrics"
)

var opts cmdOpts

func init() {
	stringFlag := func(p *string, name, alias, value, usage string) {
		flag.StringVar(p, name, value, usage)
		if alias != "" {
			flag.StringVar(p, alias, value, "Shorthand for -"+name)
		}
	}
	boolFlag := func(p *bool, name, alias string, value bool, usage string) {
		flag.BoolVar(p, name, value, usage)
		if alias != "" {
			flag.BoolVar(p, alias, value, "Shorthand for -"+name)
		}
	}
	stringFlag(&opts.input, "input", "i", "", "Input BAM or SAM path")
	stringFlag(&opts.cells, "cells", "c", "", "Cell barcode allow-list, one barcode per line")
	stringFlag(&opts.dir, "dir", "d", "", "Cell Ranger outs directory. Sets -input to "+dirBAM+", -cells to "+dirBarcodes+" (gzipped) and -matrix to "+dirMatrix+". Cannot be combined with -input or -cells")
	stringFlag(&opts.matrix, "matrix", "m", "", "Feature-barcode matrix directory (not yet implemented)")
	stringFlag(&opts.gtf, "gtf", "g", "", "GTF annotation used for UTR metrics. If empty, UTR metrics are zero")
	stringFlag(&opts.output, "output", "o", "", "Output TSV path")
	stringFlag(&opts.metrics, "metrics", "", "", "Cell Ranger metrics_summary.csv to compare the aggregated metrics against")
	stringFlag(&opts.quant, "quant", "", "cellranger", "Quantification method that produced the BAM: cellranger or starsolo")
	boolFlag(&opts.verbose, "verbose", "v", false, "Log progress every million records")
	boolFlag(&opts.gzipped, "gzipped", "z", false, "The cell barcode list is gzipped")
	boolFlag(&opts.test, "test", "t", false, fmt.Sprintf("Stop after %d records", cellmetrics.DefaultOpts.MaxRecords))
	boolFlag(&opts.sanity, "sanity", "", false, "Check the value ranges of the result")
	boolFlag(&opts.multimappers, "multimappers", "", false, "Count multimapped reads, weighted by 1/NH, in the region, splice, UTR, flag and antisense metrics")
	flag.IntVar(&opts.queue, "queue", 0, "If >0, decode records in a separate goroutine, buffering this many records")
}

func bioCellQCUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] -output path {-dir outs | -input bam -cells barcodes}\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioCellQCUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "Unexpected positional arguments: %v\n", flag.Args())
		flag.Usage()
		os.Exit(1)
	}
	if err := opts.resolve(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	if err := run(vcontext.Background(), opts); err != nil {
		log.Fatalf("bio-cellqc: %v", err)
	}
}
