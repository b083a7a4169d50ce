// Package align computes word-level edit scripts between a reference and a
// hypothesis transcript.
package align

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

type Kind uint8

const (
	Equal Kind = iota
	Replace
	Insert
	Delete
)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "equal"
	case Replace:
		return "replace"
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Range is a half-open interval of token indexes.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

// Op maps Ref tokens of the reference onto Hyp tokens of the hypothesis.
type Op struct {
	Kind Kind
	Ref  Range
	Hyp  Range
}

type Aligner struct {
	// AutoJunk enables the matcher's popularity heuristic, which ignores
	// tokens that make up more than 1% of a hypothesis of 200+ tokens.
	AutoJunk bool
}

// Align returns the opcodes turning ref into hyp. The ops cover both
// sequences from start to end without gaps or overlaps.
func (a Aligner) Align(ref, hyp []string) []Op {
	matcher := difflib.NewMatcherWithJunk(ref, hyp, a.AutoJunk, nil)
	codes := matcher.GetOpCodes()

	ops := make([]Op, 0, len(codes))
	for _, code := range codes {
		ops = append(ops, Op{
			Kind: kindOf(code.Tag),
			Ref:  Range{Start: code.I1, End: code.I2},
			Hyp:  Range{Start: code.J1, End: code.J2},
		})
	}
	return ops
}

// Align aligns with the default Aligner.
func Align(ref, hyp []string) []Op {
	return Aligner{}.Align(ref, hyp)
}

func kindOf(tag byte) Kind {
	switch tag {
	case 'r':
		return Replace
	case 'i':
		return Insert
	case 'd':
		return Delete
	default:
		return Equal
	}
}
