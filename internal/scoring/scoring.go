package scoring

import (
	"github.com/fmueller/whisperbench/internal/align"
	"github.com/fmueller/whisperbench/internal/transcript"
)

// Tally counts scored tokens per alignment kind. Line-break markers are
// never counted.
type Tally struct {
	Equal   int
	Replace int
	Insert  int
	Delete  int
}

func (t Tally) Total() int {
	return t.Equal + t.Replace + t.Insert + t.Delete
}

func (t Tally) Errors() int {
	return t.Replace + t.Insert + t.Delete
}

func (t *Tally) add(pair Pair) {
	if !pair.Scored() {
		return
	}
	switch pair.Kind {
	case align.Equal:
		t.Equal++
	case align.Replace:
		t.Replace++
	case align.Insert:
		t.Insert++
	case align.Delete:
		t.Delete++
	}
}

type Result struct {
	Tally     Tally
	Accuracy  float64
	ErrorRate float64
}

// Degenerate reports whether nothing could be scored, e.g. an empty reference.
// Accuracy and ErrorRate are both 0 in that case.
func (r Result) Degenerate() bool {
	return r.Tally.Total() == 0
}

// Pair is one aligned position. Ref or Hyp is empty when the position has no
// token on that side.
type Pair struct {
	Kind align.Kind
	Ref  string
	Hyp  string
}

// Scored reports whether the pair counts toward the tally.
func (p Pair) Scored() bool {
	return !transcript.IsLineBreak(p.Ref) && !transcript.IsLineBreak(p.Hyp)
}

// Pairs expands ops into aligned token pairs in order. A replace op yields
// as many pairs as its longer side; the shorter side is padded with "".
func Pairs(ref, hyp []string, ops []align.Op) []Pair {
	var pairs []Pair
	for _, op := range ops {
		refTokens := ref[op.Ref.Start:op.Ref.End]
		hypTokens := hyp[op.Hyp.Start:op.Hyp.End]

		switch op.Kind {
		case align.Equal, align.Delete:
			for _, token := range refTokens {
				pairs = append(pairs, Pair{Kind: op.Kind, Ref: token})
			}
		case align.Insert:
			for _, token := range hypTokens {
				pairs = append(pairs, Pair{Kind: op.Kind, Hyp: token})
			}
		case align.Replace:
			for i := 0; i < max(len(refTokens), len(hypTokens)); i++ {
				pair := Pair{Kind: op.Kind}
				if i < len(refTokens) {
					pair.Ref = refTokens[i]
				}
				if i < len(hypTokens) {
					pair.Hyp = hypTokens[i]
				}
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

func Score(ref, hyp []string, ops []align.Op) Result {
	return ScorePairs(Pairs(ref, hyp, ops))
}

func ScorePairs(pairs []Pair) Result {
	var tally Tally
	for _, pair := range pairs {
		tally.add(pair)
	}

	total := tally.Total()
	if total == 0 {
		return Result{Tally: tally}
	}
	return Result{
		Tally:     tally,
		Accuracy:  float64(tally.Equal) / float64(total) * 100,
		ErrorRate: float64(tally.Errors()) / float64(total) * 100,
	}
}

// Compare aligns two token streams and scores the alignment.
func Compare(aligner align.Aligner, ref, hyp []string) ([]Pair, Result) {
	pairs := Pairs(ref, hyp, aligner.Align(ref, hyp))
	return pairs, ScorePairs(pairs)
}
