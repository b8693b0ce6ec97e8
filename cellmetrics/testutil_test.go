package cellmetrics_test

import (
	"github.com/grailbio/hts/sam"
)

var (
	chr1, _   = sam.NewReference("chr1", "", "", 1000000, nil, nil)
	header, _ = sam.NewHeader(nil, []*sam.Reference{chr1})

	match10 = sam.Cigar{sam.NewCigarOp(sam.CigarMatch, 10)}
)

func newAux(tag string, v interface{}) sam.Aux {
	a, err := sam.NewAux(sam.NewTag(tag), v)
	if err != nil {
		panic(err)
	}
	return a
}

// baseTags returns the barcode, UMI and quality tags shared by most test
// records. The barcode qualities are all above 30, half the UMI qualities
// are.
func baseTags(cb string) []sam.Aux {
	return []sam.Aux{
		newAux("CB", cb),
		newAux("UB", "ACGTACGTAC"),
		newAux("CY", "FFFF"),
		newAux("UY", "FF##"),
	}
}

// newRecord creates a record aligned to chr1 at pos. If cigar is empty, the
// record is unmapped.
func newRecord(name string, pos int, cigar sam.Cigar, aux ...sam.Aux) *sam.Record {
	r := &sam.Record{
		Name:      name,
		Ref:       chr1,
		Pos:       pos,
		MapQ:      255,
		Cigar:     cigar,
		MatePos:   -1,
		AuxFields: aux,
	}
	length := 0
	for _, op := range cigar {
		if op.Type().Consumes().Query != 0 {
			length += op.Len()
		}
	}
	if len(cigar) == 0 {
		r.Ref = nil
		r.Pos = -1
		r.MapQ = 0
		r.Flags = sam.Unmapped
		length = 10
	}
	seq := make([]byte, length)
	qual := make([]byte, length)
	for i := range seq {
		seq[i] = "ACGT"[i%4]
		qual[i] = 30
	}
	r.Seq = sam.NewSeq(seq)
	r.Qual = qual
	return r
}
