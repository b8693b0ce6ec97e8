package bamprovider

import (
	"context"
	"io"
	"sync"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"v.io/x/lib/vlog"
)

// BAMProvider implements Provider for BAM and SAM files. The path may name
// any location understood by grailbio/base/file.
type BAMProvider struct {
	// Path of the *.bam or *.sam file. Must be nonempty.
	Path string
	// Parallelism is passed to bam.NewReader.
	Parallelism int
	// Text is true if Path is a (possibly compressed) SAM file.
	Text bool
	err  errors.Once

	mu      sync.Mutex
	nActive int
	header  *sam.Header
}

// recordReader is the subset of bam.Reader and sam.Reader used here.
type recordReader interface {
	Header() *sam.Header
	Read() (*sam.Record, error)
}

type bamIterator struct {
	provider *BAMProvider
	in       file.File
	reader   recordReader
	closers  []io.Closer

	err  error
	next *sam.Record
}

// open opens the file and creates a reader positioned at the first record.
// On error, the returned iterator has a non-nil err field.
func (b *BAMProvider) open(ctx context.Context) *bamIterator {
	iter := &bamIterator{provider: b}
	if iter.in, iter.err = file.Open(ctx, b.Path); iter.err != nil {
		return iter
	}
	var r io.Reader = iter.in.Reader(ctx)
	if b.Text {
		if u := compress.NewReaderPath(r, b.Path); u != nil {
			iter.closers = append(iter.closers, u)
			r = u
		}
		samReader, err := sam.NewReader(r)
		if err != nil {
			iter.err = errors.E(err, "read SAM header", b.Path)
			return iter
		}
		iter.reader = samReader
		return iter
	}
	bamReader, err := bam.NewReader(r, b.Parallelism)
	if err != nil {
		iter.err = errors.E(err, "read BAM header", b.Path)
		return iter
	}
	iter.closers = append(iter.closers, bamReader)
	iter.reader = bamReader
	return iter
}

// GetHeader implements the Provider interface.
func (b *BAMProvider) GetHeader() (*sam.Header, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.header != nil {
		return b.header, nil
	}
	iter := b.open(vcontext.Background())
	iter.internalClose()
	if iter.err != nil {
		b.err.Set(iter.err)
		return nil, iter.err
	}
	b.header = iter.reader.Header()
	return b.header, nil
}

// NewIterator implements the Provider interface. If the file cannot be
// opened, it returns an iterator created by NewErrorIterator.
func (b *BAMProvider) NewIterator() Iterator {
	b.mu.Lock()
	b.nActive++
	b.mu.Unlock()
	iter := b.open(vcontext.Background())
	if iter.err != nil {
		iter.internalClose()
		b.err.Set(iter.err)
		b.mu.Lock()
		b.nActive--
		b.mu.Unlock()
		return NewErrorIterator(iter.err)
	}
	b.mu.Lock()
	if b.header == nil {
		b.header = iter.reader.Header()
	}
	b.mu.Unlock()
	return iter
}

// Close implements the Provider interface.
func (b *BAMProvider) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nActive > 0 {
		vlog.Fatalf("%d iterators still active for %+v", b.nActive, b.Path)
	}
	return b.err.Err()
}

// Scan implements the Iterator interface.
func (i *bamIterator) Scan() bool {
	if i.err != nil {
		return false
	}
	i.next, i.err = i.reader.Read()
	return i.err == nil
}

// Record implements the Iterator interface.
func (i *bamIterator) Record() *sam.Record {
	return i.next
}

// Err implements the Iterator interface.
func (i *bamIterator) Err() error {
	if i.err == io.EOF {
		return nil
	}
	return i.err
}

// Close implements the Iterator interface.
func (i *bamIterator) Close() error {
	i.internalClose()
	err := i.Err()
	i.provider.err.Set(err)
	i.provider.mu.Lock()
	i.provider.nActive--
	if i.provider.nActive < 0 {
		vlog.Fatalf("Negative active count for %+v", i.provider.Path)
	}
	i.provider.mu.Unlock()
	return err
}

func (i *bamIterator) internalClose() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		if err := i.closers[j].Close(); err != nil && i.err == nil {
			i.err = err
		}
	}
	i.closers = nil
	if i.in != nil {
		if err := i.in.Close(vcontext.Background()); err != nil && i.err == nil {
			i.err = err
		}
		i.in = nil
	}
}
