package cellmetrics

import (
	"context"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/scqc/encoding/bamprovider"
)

// Opts controls Run.
type Opts struct {
	// Verbose enables a heartbeat log line every HeartbeatInterval records.
	Verbose           bool
	HeartbeatInterval int
	// Limit stops the run after MaxRecords records, classified or not.
	Limit      bool
	MaxRecords int
	// QueueLength > 0 decodes records in a separate goroutine, buffering up
	// to this many records ahead of the classifier.
	QueueLength int
}

// DefaultOpts sets the default values for Opts.
var DefaultOpts = Opts{
	Verbose:           false,
	HeartbeatInterval: 1000000,
	Limit:             false,
	MaxRecords:        10000000,
	QueueLength:       0,
}

// Stats summarizes a run.
type Stats struct {
	// Records is the number of records read.
	Records int64
	// Per-outcome record counts.
	MissingTags, UnknownBarcode int64
	Unmapped, Multimapped       int64
	Unique                      int64
	// Heartbeats is the number of progress lines logged.
	Heartbeats int64
	Elapsed    time.Duration
}

// Classified returns the number of records that contributed to the table.
func (s Stats) Classified() int64 {
	return s.Unmapped + s.Multimapped + s.Unique
}

func (s *Stats) count(o Outcome) {
	switch o {
	case MissingTags:
		s.MissingTags++
	case UnknownBarcode:
		s.UnknownBarcode++
	case UnmappedRead:
		s.Unmapped++
	case MultimappedRead:
		s.Multimapped++
	case UniqueRead:
		s.Unique++
	}
}

// ctxCheckInterval is the number of records between checks for context
// cancellation.
const ctxCheckInterval = 4096

type runner struct {
	c     *Classifier
	t     *Table
	opts  Opts
	stats Stats
	delta Delta
}

func (r *runner) process(rec *sam.Record) {
	r.stats.Records++
	o := r.c.Classify(rec, &r.delta)
	r.stats.count(o)
	if o == UnmappedRead || o == MultimappedRead || o == UniqueRead {
		r.t.apply(&r.delta)
	}
	sam.PutInFreePool(rec)
	if r.opts.Verbose && r.opts.HeartbeatInterval > 0 && r.stats.Records%int64(r.opts.HeartbeatInterval) == 0 {
		r.stats.Heartbeats++
		log.Printf("Processed %d records, %d classified", r.stats.Records, r.stats.Classified())
	}
}

// done checks if the record limit is reached.
func (r *runner) done(n int64) bool {
	return r.opts.Limit && n >= int64(r.opts.MaxRecords)
}

// Run reads every record from iter, in order, and accumulates the metrics of
// records with a known barcode into t. It stops early if opts.Limit is set.
// Run does not close iter.
func Run(ctx context.Context, iter bamprovider.Iterator, c *Classifier, t *Table, opts Opts) (Stats, error) {
	if opts.Limit && opts.MaxRecords <= 0 {
		opts.MaxRecords = DefaultOpts.MaxRecords
	}
	r := &runner{c: c, t: t, opts: opts}
	start := time.Now()
	var err error
	if opts.QueueLength > 0 {
		err = r.runPipelined(ctx, iter)
	} else {
		err = r.runSequential(ctx, iter)
	}
	r.stats.Elapsed = time.Since(start)
	log.Printf("Read %d records in %v: %d unmapped, %d multimapped, %d unique, %d unknown barcode, %d missing tags",
		r.stats.Records, r.stats.Elapsed, r.stats.Unmapped, r.stats.Multimapped, r.stats.Unique,
		r.stats.UnknownBarcode, r.stats.MissingTags)
	return r.stats, err
}

func (r *runner) runSequential(ctx context.Context, iter bamprovider.Iterator) error {
	for !r.done(r.stats.Records) && iter.Scan() {
		r.process(iter.Record())
		if r.stats.Records%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return iter.Err()
}

// runPipelined decodes records in one goroutine and classifies them in the
// caller's. Records reach the classifier in file order.
func (r *runner) runPipelined(ctx context.Context, iter bamprovider.Iterator) error {
	var (
		ch   = make(chan *sam.Record, r.opts.QueueLength)
		stop = make(chan struct{})
		err  errors.Once
	)
	go func() {
		defer close(ch)
		var n int64
		for !r.done(n) && iter.Scan() {
			n++
			select {
			case ch <- iter.Record():
			case <-stop:
				return
			case <-ctx.Done():
				err.Set(ctx.Err())
				return
			}
		}
		err.Set(iter.Err())
	}()
	for rec := range ch {
		r.process(rec)
		if r.stats.Records%ctxCheckInterval == 0 && ctx.Err() != nil {
			close(stop)
			for rec := range ch {
				sam.PutInFreePool(rec)
			}
			err.Set(ctx.Err())
			break
		}
	}
	return err.Err()
}
