package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/pangraph/pkg/seq"
)

// Sub replaces the consensus base at Pos with Alt.
type Sub struct {
	Pos int
	Alt byte
}

// Del removes Len consensus bases starting at Pos.
type Del struct {
	Pos int
	Len int
}

// Ins inserts Seq before the consensus base at Pos. Pos may equal the
// consensus length, in which case Seq is appended.
type Ins struct {
	Pos int
	Seq string
}

// Edits is the alignment record of one node against its block's consensus.
// The zero value describes a copy identical to the consensus.
type Edits struct {
	Subs []Sub
	Dels []Del
	Inss []Ins
}

// IsEmpty reports whether the edits leave the consensus unchanged.
func (e Edits) IsEmpty() bool {
	return len(e.Subs) == 0 && len(e.Dels) == 0 && len(e.Inss) == 0
}

// Clone returns a deep copy of e.
func (e Edits) Clone() Edits {
	return Edits{
		Subs: slices.Clone(e.Subs),
		Dels: slices.Clone(e.Dels),
		Inss: slices.Clone(e.Inss),
	}
}

// Len returns the length of the copy produced by applying e to a consensus
// of length n.
func (e Edits) Len(n int) int {
	for _, d := range e.Dels {
		n -= d.Len
	}
	for _, in := range e.Inss {
		n += len(in.Seq)
	}
	return n
}

// Shift returns a copy of e with every position moved by off.
func (e Edits) Shift(off int) Edits {
	out := e.Clone()
	for i := range out.Subs {
		out.Subs[i].Pos += off
	}
	for i := range out.Dels {
		out.Dels[i].Pos += off
	}
	for i := range out.Inss {
		out.Inss[i].Pos += off
	}
	return out
}

// Concat returns the edits of a consensus formed by appending another
// consensus, aligned by o, at position off of the consensus aligned by e.
// Insertions of e at its end precede insertions of o at its start.
func (e Edits) Concat(o Edits, off int) Edits {
	out := e.Clone()
	s := o.Shift(off)
	out.Subs = append(out.Subs, s.Subs...)
	out.Dels = append(out.Dels, s.Dels...)
	out.Inss = append(out.Inss, s.Inss...)
	return out
}

// ReverseComplement returns the edits that turn the reverse complement of a
// consensus of length n into the reverse complement of the copy e
// describes. Insertions sharing a position swap their order.
func (e Edits) ReverseComplement(n int) Edits {
	out := Edits{
		Subs: make([]Sub, len(e.Subs)),
		Dels: make([]Del, len(e.Dels)),
		Inss: make([]Ins, 0, len(e.Inss)),
	}
	for i, s := range e.Subs {
		out.Subs[i] = Sub{Pos: n - 1 - s.Pos, Alt: seq.Complement(s.Alt)}
	}
	for i, d := range e.Dels {
		out.Dels[i] = Del{Pos: n - d.Pos - d.Len, Len: d.Len}
	}
	inss := slices.Clone(e.Inss)
	slices.SortStableFunc(inss, func(a, b Ins) int { return a.Pos - b.Pos })
	for i := len(inss) - 1; i >= 0; i-- {
		out.Inss = append(out.Inss, Ins{Pos: n - inss[i].Pos, Seq: seq.ReverseComplement(inss[i].Seq)})
	}
	return out
}

// Validate checks that e is applicable to a consensus of length n.
func (e Edits) Validate(n int) error {
	dels := slices.Clone(e.Dels)
	slices.SortStableFunc(dels, func(a, b Del) int { return a.Pos - b.Pos })
	end := 0
	for _, d := range dels {
		if d.Len <= 0 {
			return fmt.Errorf("deletion at %d has non-positive length %d", d.Pos, d.Len)
		}
		if d.Pos < 0 || d.Pos+d.Len > n {
			return fmt.Errorf("deletion [%d,%d) out of range [0,%d)", d.Pos, d.Pos+d.Len, n)
		}
		if d.Pos < end {
			return fmt.Errorf("deletion at %d overlaps previous deletion ending at %d", d.Pos, end)
		}
		end = d.Pos + d.Len
	}

	seen := make(map[int]bool, len(e.Subs))
	for _, s := range e.Subs {
		if s.Pos < 0 || s.Pos >= n {
			return fmt.Errorf("substitution at %d out of range [0,%d)", s.Pos, n)
		}
		if seen[s.Pos] {
			return fmt.Errorf("duplicate substitution at %d", s.Pos)
		}
		seen[s.Pos] = true
		if !seq.IsNucleotide(s.Alt) {
			return fmt.Errorf("substitution at %d has invalid base %q", s.Pos, s.Alt)
		}
		if i, found := slices.BinarySearchFunc(dels, s.Pos, func(d Del, p int) int { return d.Pos - p }); found || (i > 0 && s.Pos < dels[i-1].Pos+dels[i-1].Len) {
			return fmt.Errorf("substitution at %d falls in a deletion", s.Pos)
		}
	}

	for _, in := range e.Inss {
		if in.Pos < 0 || in.Pos > n {
			return fmt.Errorf("insertion at %d out of range [0,%d]", in.Pos, n)
		}
		if in.Seq == "" {
			return fmt.Errorf("empty insertion at %d", in.Pos)
		}
		if i := seq.Valid(in.Seq); i >= 0 {
			return fmt.Errorf("insertion at %d has invalid base %q", in.Pos, in.Seq[i])
		}
	}
	return nil
}

// Apply reconstructs the copy described by e from consensus. e must have
// passed Validate for len(consensus).
func (e Edits) Apply(consensus string) string {
	if e.IsEmpty() {
		return consensus
	}

	subs := slices.Clone(e.Subs)
	slices.SortFunc(subs, func(a, b Sub) int { return a.Pos - b.Pos })
	dels := slices.Clone(e.Dels)
	slices.SortFunc(dels, func(a, b Del) int { return a.Pos - b.Pos })
	inss := slices.Clone(e.Inss)
	slices.SortStableFunc(inss, func(a, b Ins) int { return a.Pos - b.Pos })

	var sb strings.Builder
	sb.Grow(e.Len(len(consensus)))

	si, di, ii := 0, 0, 0
	for i := 0; ; i++ {
		for ii < len(inss) && inss[ii].Pos == i {
			sb.WriteString(inss[ii].Seq)
			ii++
		}
		if i == len(consensus) {
			break
		}
		for di < len(dels) && i >= dels[di].Pos+dels[di].Len {
			di++
		}
		if di < len(dels) && i >= dels[di].Pos {
			continue
		}
		if si < len(subs) && subs[si].Pos == i {
			sb.WriteByte(subs[si].Alt)
			si++
			continue
		}
		sb.WriteByte(consensus[i])
	}
	return sb.String()
}
