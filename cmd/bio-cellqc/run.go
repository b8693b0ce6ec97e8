package main

import (
	"context"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/scqc/barcode"
	"github.com/grailbio/scqc/cellmetrics"
	"github.com/grailbio/scqc/encoding/bamprovider"
	"github.com/grailbio/scqc/metricsummary"
	"github.com/grailbio/scqc/utr"
)

// run computes the metrics and writes the output. An unreadable annotation
// or metrics summary is logged and otherwise ignored; every other failure is
// returned.
func run(ctx context.Context, o cmdOpts) error {
	log.Printf("Read in cell data: %s", o.cells)
	barcodes, err := barcode.Load(ctx, o.cells, barcode.Opts{Gzipped: o.gzipped})
	if err != nil {
		return err
	}
	log.Printf("Read %d cell barcodes", barcodes.Len())
	if o.matrix != "" {
		log.Printf("%s: matrix input is not yet implemented, ignoring", o.matrix)
	}

	var utrs *utr.Index
	if o.gtf != "" {
		log.Printf("Process GTF: %s", o.gtf)
		if utrs, err = utr.Load(ctx, o.gtf); err != nil {
			log.Error.Printf("%v: UTR metrics are disabled", err)
			utrs = nil
		} else {
			log.Printf("Read UTRs of %d genes", utrs.NumGenes())
		}
	}

	tags, err := cellmetrics.TagSetByName(o.quant)
	if err != nil {
		return err
	}
	classifier := &cellmetrics.Classifier{
		Tags:                tags,
		Barcodes:            barcodes,
		UTRs:                utrs,
		IncludeMultimappers: o.multimappers,
	}
	table := cellmetrics.NewTable(cellmetrics.DefaultSchema, barcodes)

	log.Printf("Process BAM: %s", o.input)
	provider := bamprovider.NewProvider(o.input)
	if _, err := provider.GetHeader(); err != nil {
		_ = provider.Close()
		return err
	}
	iter := provider.NewIterator()
	stats, err := cellmetrics.Run(ctx, iter, classifier, table, o.runOpts())
	if e := iter.Close(); e != nil && err == nil {
		err = e
	}
	if e := provider.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return errors.E(err, "read", o.input)
	}

	log.Printf("Save file: %s", o.output)
	digest, err := cellmetrics.WriteTSV(ctx, o.output, table)
	if err != nil {
		return err
	}
	log.Printf("Wrote %d cells to %s, seahash %016x", table.NumRows(), o.output, digest)

	if o.sanity {
		sanityCheck(table, stats)
	}
	if o.metrics != "" {
		compareMetrics(ctx, table, o.metrics)
	}
	return nil
}

func sanityCheck(table *cellmetrics.Table, stats cellmetrics.Stats) {
	violations := cellmetrics.CheckResults(table, stats.Multimapped == 0)
	for _, v := range violations {
		log.Error.Printf("Sanity check: %v", v)
	}
	if len(violations) == 0 {
		log.Printf("Sanity check passed for %d cells", table.NumRows())
	}
}

func compareMetrics(ctx context.Context, table *cellmetrics.Table, path string) {
	summary, err := metricsummary.Load(ctx, path)
	if err != nil {
		log.Error.Printf("%v: skipping comparison", err)
		return
	}
	for _, c := range metricsummary.Compare(table, summary, metricsummary.DefaultPairs) {
		if c.Err != nil {
			log.Error.Printf("%s: %v", c.Metric, c.Err)
			continue
		}
		log.Printf("%s: metrics summary %.2f, computed %.2f from %s", c.Metric, c.Reported, c.Computed, c.Column)
	}
}
