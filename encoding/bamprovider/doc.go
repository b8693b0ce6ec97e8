// Package bamprovider provides sequential access to the records of a BAM or
// SAM file.
//
// The Provider is an interface for opening an alignment file once and reading
// its records in file order through an Iterator. Records are never reordered,
// and every record, mapped or unmapped, is yielded exactly once.
package bamprovider
