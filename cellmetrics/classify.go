package cellmetrics

import (
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/scqc/barcode"
	"github.com/grailbio/scqc/utr"
)

// Outcome tells how a record was handled by Classify.
type Outcome int

const (
	// MissingTags means the record lacks a barcode, UMI or quality tag.
	MissingTags Outcome = iota
	// UnknownBarcode means the barcode is not in the allow-list.
	UnknownBarcode
	// UnmappedRead means the record has no multiplicity, or zero.
	UnmappedRead
	// MultimappedRead means the read maps to more than one locus.
	MultimappedRead
	// UniqueRead means the read maps to exactly one locus.
	UniqueRead
)

// Delta is the contribution of one record to one row of a Table.
type Delta struct {
	Row int
	// Weight is 1/N for a read mapped to N loci, and 1 for unmapped reads.
	Weight float64
	// QualCBC and QualUMI are the fractions of barcode and UMI bases with
	// quality above 30.
	QualCBC, QualUMI float64
	// Counts are added to the row as is. The Total and Percent entries are
	// unused; Table.apply derives them from Weight and the quality fields.
	Counts [NumMetrics]float64
}

// Classifier maps an alignment record to a Delta.
type Classifier struct {
	Tags     TagSet
	Barcodes *barcode.Index
	// UTRs is optional. If nil, the UTR metric stays zero.
	UTRs *utr.Index
	// IncludeMultimappers makes multimapped reads contribute to the region,
	// splice, UTR, flag and antisense metrics, each weighted by 1/N.
	IncludeMultimappers bool
}

// minQual is the base quality that q30 fractions must exceed.
const minQual = 30

// q30Fraction returns the fraction of phred+33 encoded qualities above
// minQual. It returns 0 for an empty string.
func q30Fraction(qual string) float64 {
	if len(qual) == 0 {
		return 0
	}
	n := 0
	for i := 0; i < len(qual); i++ {
		if int(qual[i])-33 > minQual {
			n++
		}
	}
	return float64(n) / float64(len(qual))
}

// isSpliced checks if the alignment skips a region of the reference.
func isSpliced(cigar sam.Cigar) bool {
	for _, op := range cigar {
		if op.Type() == sam.CigarSkipped {
			return true
		}
	}
	return false
}

// Classify computes the contribution of rec into *d. d is valid only if the
// outcome is UnmappedRead, MultimappedRead or UniqueRead.
func (c *Classifier) Classify(rec *sam.Record, d *Delta) Outcome {
	*d = Delta{}
	tags := &c.Tags
	cb, ok := lookupString(rec, tags.CellBarcode)
	if !ok {
		return MissingTags
	}
	if _, ok = lookupString(rec, tags.UMI); !ok {
		return MissingTags
	}
	cbQual, ok := lookupString(rec, tags.CellBarcodeQual)
	if !ok {
		return MissingTags
	}
	umiQual, ok := lookupString(rec, tags.UMIQual)
	if !ok {
		return MissingTags
	}
	if d.Row, ok = c.Barcodes.Row(cb); !ok {
		return UnknownBarcode
	}

	n, _ := lookupInt(rec, tags.Multiplicity)
	nEff := n
	if nEff < 1 {
		nEff = 1
	}
	weight := 1 / float64(nEff)
	d.Weight = weight
	d.QualCBC = q30Fraction(cbQual)
	d.QualUMI = q30Fraction(umiQual)

	if v, ok := lookupInt(rec, tags.PolyA); ok && v > 0 {
		d.Counts[PolyA] += weight
	}
	if v, ok := lookupInt(rec, tags.TSO); ok && v > 0 {
		d.Counts[TSO] += weight
	}

	if n < 1 {
		d.Counts[Unmapped]++
		return UnmappedRead
	}
	outcome := UniqueRead
	inc := 1.0
	if n > 1 {
		d.Counts[Multi] += weight
		if !c.IncludeMultimappers {
			return MultimappedRead
		}
		outcome = MultimappedRead
		inc = weight
	}

	if region, ok := lookupChar(rec, tags.Region); ok {
		switch region {
		case 'E':
			d.Counts[Exonic] += inc
		case 'N':
			d.Counts[Intronic] += inc
		case 'I':
			d.Counts[Intergenic] += inc
		}
	}
	if isSpliced(rec.Cigar) {
		d.Counts[Spliced] += inc
	}
	if c.UTRs != nil {
		// rec.End is 0-based exclusive, which is the 1-based inclusive end
		// used by GTF.
		if gene, ok := lookupString(rec, tags.Gene); ok && c.UTRs.Contains(gene, rec.End()) {
			d.Counts[UTR] += inc
		}
	}
	if flags, ok := lookupInt(rec, tags.Flags); ok {
		if flags&HighConfFlag != 0 {
			d.Counts[HighConf] += inc
		}
		if flags&CountedUMIFlag != 0 {
			d.Counts[NUMI] += inc
		}
	}
	if !hasTag(rec, tags.Transcript) && hasTag(rec, tags.Antisense) {
		d.Counts[Antisense] += inc
	}
	return outcome
}
