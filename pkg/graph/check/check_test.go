package check

import (
	"errors"
	"testing"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	"github.com/matzehuels/pangraph/pkg/graph/graphtest"
	"github.com/matzehuels/pangraph/pkg/graph/transform"
)

func fixture(t *testing.T) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder().
		AddBlock(1, "AAAC").
		AddBlock(2, "GGGT").
		AddPath("b", true).
		SetOffset("b", 2)
	b.Visit("a", 1, graph.Forward, graph.Edits{})
	b.Visit("a", 2, graph.Forward, graph.Edits{Subs: []graph.Sub{{Pos: 1, Alt: 'A'}}})
	b.Visit("b", 2, graph.Reverse, graph.Edits{})
	b.Visit("b", 1, graph.Forward, graph.Edits{Dels: []graph.Del{{Pos: 0, Len: 2}}})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return g
}

func TestCheck(t *testing.T) {
	g := fixture(t)
	// b: ACCC + AC rotated by 2.
	refs := map[string]string{"a": "AAACGAGT", "b": "CCACAC", "z": "TTTT"}

	if err := Check(g, refs); err != nil {
		t.Fatalf("Check() error: %v", err)
	}

	tests := []struct {
		name     string
		refs     map[string]string
		code     errs.Code
		mismatch *MismatchError
	}{
		{
			name: "missing reference",
			refs: map[string]string{"a": "AAACGAGT"},
			code: errs.ErrCodeNotFound,
		},
		{
			name:     "substitution",
			refs:     map[string]string{"a": "AAACGGGT", "b": "CCACAC"},
			code:     errs.ErrCodeReconstructionMismatch,
			mismatch: &MismatchError{Strain: "a", Position: 5, Want: 'G', Got: 'A', WantLen: 8, GotLen: 8},
		},
		{
			name:     "reference longer",
			refs:     map[string]string{"a": "AAACGAGT", "b": "CCACACA"},
			code:     errs.ErrCodeReconstructionMismatch,
			mismatch: &MismatchError{Strain: "b", Position: 6, Want: 'A', WantLen: 7, GotLen: 6},
		},
		{
			name:     "wrong rotation",
			refs:     map[string]string{"a": "AAACGAGT", "b": "ACCCAC"},
			code:     errs.ErrCodeReconstructionMismatch,
			mismatch: &MismatchError{Strain: "b", Position: 0, Want: 'A', Got: 'C', WantLen: 6, GotLen: 6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(g, tt.refs)
			if !errs.Is(err, tt.code) {
				t.Fatalf("Check() error = %v, want code %s", err, tt.code)
			}
			if tt.mismatch == nil {
				return
			}
			var m *MismatchError
			if !errors.As(err, &m) {
				t.Fatalf("Check() error = %v, want *MismatchError", err)
			}
			if *m != *tt.mismatch {
				t.Errorf("MismatchError = %+v, want %+v", *m, *tt.mismatch)
			}
		})
	}
}

func TestCheckAgainst(t *testing.T) {
	g := fixture(t)
	out, err := transform.Marginalize(g, []string{"b"})
	if err != nil {
		t.Fatalf("Marginalize() error: %v", err)
	}
	if err := CheckAgainst(out, g); err != nil {
		t.Errorf("CheckAgainst() error: %v", err)
	}
	if err := CheckAgainst(g, out); !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("CheckAgainst() with missing strain error = %v, want NOT_FOUND", err)
	}

	other := graph.NewBuilder().AddBlock(1, "CCACAA").AddPath("b", true)
	other.Visit("b", 1, graph.Forward, graph.Edits{})
	og, err := other.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if err := CheckAgainst(og, g); !errs.Is(err, errs.ErrCodeReconstructionMismatch) {
		t.Errorf("CheckAgainst() error = %v, want RECONSTRUCTION_MISMATCH", err)
	}
}

func TestMinimal(t *testing.T) {
	g := fixture(t)
	if err := Minimal(g); err != nil {
		t.Errorf("Minimal() on mixed-strand graph error: %v", err)
	}

	b := graph.NewBuilder().AddBlock(1, "AAAC").AddBlock(2, "GGGT")
	for _, s := range []string{"x", "y"} {
		b.Visit(s, 1, graph.Forward, graph.Edits{})
		b.Visit(s, 2, graph.Forward, graph.Edits{})
	}
	split, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	err = Minimal(split)
	if !errs.Is(err, errs.ErrCodeMergeConflict) || !errors.Is(err, ErrNotMinimal) {
		t.Errorf("Minimal() error = %v, want ErrNotMinimal", err)
	}

	out, err := transform.Marginalize(split, []string{"x", "y"})
	if err != nil {
		t.Fatalf("Marginalize() error: %v", err)
	}
	if err := Minimal(out); err != nil {
		t.Errorf("Minimal() after Marginalize error: %v", err)
	}

	single, err := transform.Marginalize(split, []string{"x"})
	if err != nil {
		t.Fatalf("Marginalize() error: %v", err)
	}
	if err := Minimal(single); err != nil {
		t.Errorf("Minimal() single strain error: %v", err)
	}
}

func TestCheckNil(t *testing.T) {
	if err := Check(nil, nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Check(nil) error = %v", err)
	}
	if err := Minimal(nil); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Minimal(nil) error = %v", err)
	}
}

// TestOracle runs the checker over marginals of random graphs, the way the
// pipeline uses it.
func TestOracle(t *testing.T) {
	for seed := range uint64(10) {
		g := graphtest.Random(seed, graphtest.Options{Strains: 3})
		for _, strains := range graphtest.Subsets(g.PathNames()) {
			out, err := transform.Marginalize(g, strains)
			if err != nil {
				t.Fatalf("seed %d %v: Marginalize() error: %v", seed, strains, err)
			}
			if err := CheckAgainst(out, g); err != nil {
				t.Errorf("seed %d %v: CheckAgainst() error: %v", seed, strains, err)
			}
			if err := Minimal(out); err != nil {
				t.Errorf("seed %d %v: Minimal() error: %v", seed, strains, err)
			}
		}
	}
}
