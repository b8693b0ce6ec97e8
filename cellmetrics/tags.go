package cellmetrics

import (
	"fmt"

	"github.com/grailbio/hts/sam"
)

// TagSet names the aux tags read by the Classifier. A zero tag means the
// aligner does not produce that field, and the metrics derived from it stay
// zero.
type TagSet struct {
	// CellBarcode, UMI, and their quality strings. A record lacking any of
	// the four is skipped.
	CellBarcode, UMI         sam.Tag
	CellBarcodeQual, UMIQual sam.Tag
	// Multiplicity is the number of loci the read maps to.
	Multiplicity sam.Tag
	// PolyA and TSO are the lengths trimmed off the read as poly-A tail and
	// template switch oligo, respectively.
	PolyA, TSO sam.Tag
	// Region is a single character: 'E'xonic, 'N' intronic, 'I'ntergenic.
	Region sam.Tag
	// Flags is a bitmask; see HighConfFlag and CountedUMIFlag.
	Flags sam.Tag
	// Gene is the gene id used for UTR lookups.
	Gene sam.Tag
	// Transcript and Antisense decide the antisense metric: a read is
	// antisense if it has an Antisense tag but no Transcript tag.
	Transcript, Antisense sam.Tag
}

// Bits of the TagSet.Flags value.
const (
	HighConfFlag   = 1 << 0
	CountedUMIFlag = 1 << 3
)

var noTag sam.Tag

// CellRangerTags is the tag set produced by 10x Genomics Cell Ranger.
var CellRangerTags = TagSet{
	CellBarcode:     sam.NewTag("CB"),
	UMI:             sam.NewTag("UB"),
	CellBarcodeQual: sam.NewTag("CY"),
	UMIQual:         sam.NewTag("UY"),
	Multiplicity:    sam.NewTag("NH"),
	PolyA:           sam.NewTag("pa"),
	TSO:             sam.NewTag("ts"),
	Region:          sam.NewTag("RE"),
	Flags:           sam.NewTag("xf"),
	Gene:            sam.NewTag("GX"),
	Transcript:      sam.NewTag("TX"),
	Antisense:       sam.NewTag("AN"),
}

// STARsoloTags is the tag set produced by STARsolo. STARsolo does not report
// trimming, region, flag or antisense tags.
var STARsoloTags = TagSet{
	CellBarcode:     sam.NewTag("CB"),
	UMI:             sam.NewTag("UB"),
	CellBarcodeQual: sam.NewTag("CY"),
	UMIQual:         sam.NewTag("UY"),
	Multiplicity:    sam.NewTag("NH"),
	Gene:            sam.NewTag("GX"),
}

// TagSetByName returns the tag set for a quantification method, "cellranger"
// or "starsolo".
func TagSetByName(name string) (TagSet, error) {
	switch name {
	case "cellranger":
		return CellRangerTags, nil
	case "starsolo":
		return STARsoloTags, nil
	}
	return TagSet{}, fmt.Errorf("unknown quantification method %q; must be cellranger or starsolo", name)
}

func findTag(rec *sam.Record, tag sam.Tag) sam.Aux {
	if tag == noTag {
		return nil
	}
	return rec.AuxFields.Get(tag)
}

// hasTag checks if the record carries the tag, regardless of its type.
func hasTag(rec *sam.Record, tag sam.Tag) bool {
	return findTag(rec, tag) != nil
}

// lookupString returns the value of a 'Z' tag.
func lookupString(rec *sam.Record, tag sam.Tag) (string, bool) {
	aux := findTag(rec, tag)
	if aux == nil || aux.Type() != 'Z' {
		return "", false
	}
	s, ok := aux.Value().(string)
	return s, ok
}

// lookupInt returns the value of an integer tag of any width.
func lookupInt(rec *sam.Record, tag sam.Tag) (int, bool) {
	aux := findTag(rec, tag)
	if aux == nil {
		return 0, false
	}
	switch aux.Type() {
	case 'c', 'C', 's', 'S', 'i', 'I':
	default:
		return 0, false
	}
	switch v := aux.Value().(type) {
	case int8:
		return int(v), true
	case uint8:
		return int(v), true
	case int16:
		return int(v), true
	case uint16:
		return int(v), true
	case int32:
		return int(v), true
	case uint32:
		return int(v), true
	}
	return 0, false
}

// lookupChar returns the value of an 'A' tag, or of a one-character 'Z' tag.
func lookupChar(rec *sam.Record, tag sam.Tag) (byte, bool) {
	aux := findTag(rec, tag)
	if aux == nil || len(aux) < 4 {
		return 0, false
	}
	switch aux.Type() {
	case 'A':
		return aux[3], true
	case 'Z':
		if s, ok := aux.Value().(string); ok && len(s) == 1 {
			return s[0], true
		}
	}
	return 0, false
}
