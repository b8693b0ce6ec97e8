package bamprovider

import (
	"github.com/grailbio/hts/sam"
)

// errorIterator is returned by NewIterator when the file cannot be opened.
type errorIterator struct {
	err error
}

func (i *errorIterator) Scan() bool          { return false }
func (i *errorIterator) Record() *sam.Record { return nil }
func (i *errorIterator) Err() error          { return i.err }
func (i *errorIterator) Close() error        { return i.err }

// NewErrorIterator creates an Iterator that yields no records. Err and Close
// both return err. Closing it does not affect any provider.
func NewErrorIterator(err error) Iterator {
	return &errorIterator{err: err}
}
