package graph

import (
	"testing"

	"github.com/matzehuels/pangraph/pkg/seq"
)

func TestEditsApply(t *testing.T) {
	const cons = "ACGTACGT"
	tests := []struct {
		name  string
		edits Edits
		want  string
	}{
		{"empty", Edits{}, cons},
		{"substitution", Edits{Subs: []Sub{{Pos: 0, Alt: 'T'}, {Pos: 7, Alt: 'A'}}}, "TCGTACGA"},
		{"deletion", Edits{Dels: []Del{{Pos: 2, Len: 3}}}, "ACCGT"},
		{"insertion", Edits{Inss: []Ins{{Pos: 4, Seq: "NN"}}}, "ACGTNNACGT"},
		{"insertion at end", Edits{Inss: []Ins{{Pos: 8, Seq: "GG"}}}, "ACGTACGTGG"},
		{"insertion at start", Edits{Inss: []Ins{{Pos: 0, Seq: "T"}}}, "TACGTACGT"},
		{
			"mixed unsorted",
			Edits{
				Subs: []Sub{{Pos: 6, Alt: 'A'}, {Pos: 1, Alt: 'T'}},
				Dels: []Del{{Pos: 4, Len: 1}, {Pos: 2, Len: 1}},
				Inss: []Ins{{Pos: 4, Seq: "C"}},
			},
			"ATTCCAT",
		},
		{
			"insertions at same position keep order",
			Edits{Inss: []Ins{{Pos: 2, Seq: "AA"}, {Pos: 2, Seq: "TT"}}},
			"ACAATTGTACGT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.edits.Validate(len(cons)); err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			got := tt.edits.Apply(cons)
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
			if l := tt.edits.Len(len(cons)); l != len(got) {
				t.Errorf("Len() = %d, want %d", l, len(got))
			}
		})
	}
}

func TestEditsValidate(t *testing.T) {
	tests := []struct {
		name  string
		edits Edits
	}{
		{"sub out of range", Edits{Subs: []Sub{{Pos: 8, Alt: 'A'}}}},
		{"negative sub", Edits{Subs: []Sub{{Pos: -1, Alt: 'A'}}}},
		{"duplicate sub", Edits{Subs: []Sub{{Pos: 1, Alt: 'A'}, {Pos: 1, Alt: 'C'}}}},
		{"del past end", Edits{Dels: []Del{{Pos: 6, Len: 3}}}},
		{"zero length del", Edits{Dels: []Del{{Pos: 2, Len: 0}}}},
		{"overlapping dels", Edits{Dels: []Del{{Pos: 1, Len: 3}, {Pos: 3, Len: 1}}}},
		{"sub in del", Edits{Dels: []Del{{Pos: 1, Len: 3}}, Subs: []Sub{{Pos: 2, Alt: 'A'}}}},
		{"sub at del start", Edits{Dels: []Del{{Pos: 1, Len: 3}}, Subs: []Sub{{Pos: 1, Alt: 'A'}}}},
		{"ins past end", Edits{Inss: []Ins{{Pos: 9, Seq: "A"}}}},
		{"empty ins", Edits{Inss: []Ins{{Pos: 3, Seq: ""}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.edits.Validate(8); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestEditsConcat(t *testing.T) {
	const a, b = "AAAA", "CCCC"
	ea := Edits{Subs: []Sub{{Pos: 1, Alt: 'G'}}, Inss: []Ins{{Pos: 4, Seq: "T"}}}
	eb := Edits{Dels: []Del{{Pos: 0, Len: 2}}, Inss: []Ins{{Pos: 0, Seq: "G"}}}

	merged := ea.Concat(eb, len(a))
	if err := merged.Validate(len(a + b)); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}
	want := ea.Apply(a) + eb.Apply(b)
	if got := merged.Apply(a + b); got != want {
		t.Errorf("Concat().Apply() = %q, want %q", got, want)
	}

	// The inputs are not modified.
	if ea.Subs[0].Pos != 1 || eb.Dels[0].Pos != 0 {
		t.Error("Concat() modified its inputs")
	}
}

func TestEditsReverseComplement(t *testing.T) {
	const cons = "AACGTTGCAC"
	tests := []struct {
		name  string
		edits Edits
	}{
		{"empty", Edits{}},
		{"substitutions", Edits{Subs: []Sub{{Pos: 0, Alt: 'G'}, {Pos: 9, Alt: 'T'}}}},
		{"deletion", Edits{Dels: []Del{{Pos: 2, Len: 3}}}},
		{"insertion at start", Edits{Inss: []Ins{{Pos: 0, Seq: "GA"}}}},
		{"insertion at end", Edits{Inss: []Ins{{Pos: 10, Seq: "CCT"}}}},
		{"insertions at same position", Edits{Inss: []Ins{{Pos: 4, Seq: "AC"}, {Pos: 4, Seq: "GGT"}}}},
		{"insertion before deletion", Edits{Dels: []Del{{Pos: 3, Len: 2}}, Inss: []Ins{{Pos: 3, Seq: "T"}}}},
		{"insertion after deletion", Edits{Dels: []Del{{Pos: 3, Len: 2}}, Inss: []Ins{{Pos: 5, Seq: "T"}}}},
		{
			"mixed",
			Edits{
				Subs: []Sub{{Pos: 7, Alt: 'A'}, {Pos: 1, Alt: 'C'}},
				Dels: []Del{{Pos: 8, Len: 2}, {Pos: 2, Len: 1}},
				Inss: []Ins{{Pos: 6, Seq: "A"}, {Pos: 0, Seq: "T"}},
			},
		},
	}

	rcCons := seq.ReverseComplement(cons)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := tt.edits.ReverseComplement(len(cons))
			if err := rc.Validate(len(cons)); err != nil {
				t.Fatalf("Validate() error: %v", err)
			}
			want := seq.ReverseComplement(tt.edits.Apply(cons))
			if got := rc.Apply(rcCons); got != want {
				t.Errorf("ReverseComplement().Apply() = %q, want %q", got, want)
			}
			if back := rc.ReverseComplement(len(cons)).Apply(cons); back != tt.edits.Apply(cons) {
				t.Errorf("double ReverseComplement().Apply() = %q, want %q", back, tt.edits.Apply(cons))
			}
		})
	}
}

func TestStrand(t *testing.T) {
	if Forward.String() != "+" || Reverse.String() != "-" {
		t.Errorf("String() = %q/%q", Forward, Reverse)
	}
	if Forward.Flip() != Reverse {
		t.Error("Forward.Flip() != Reverse")
	}
	for _, s := range []string{"+", "-"} {
		st, err := ParseStrand(s)
		if err != nil || st.String() != s {
			t.Errorf("ParseStrand(%q) = %v, %v", s, st, err)
		}
	}
	if _, err := ParseStrand("x"); err == nil {
		t.Error("ParseStrand(x) should fail")
	}
}
