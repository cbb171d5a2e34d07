package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
)

// LineWidth is the number of bases per line written by WriteFASTA.
const LineWidth = 80

// Record is a named sequence.
type Record struct {
	Name string
	Seq  string
}

// ReadFASTA parses multi-record FASTA from r. Sequence lines are joined with
// surrounding whitespace removed; bases are kept as written. Duplicate or
// empty record names and sequence data before the first header fail with
// INVALID_FORMAT.
func ReadFASTA(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<30)

	var (
		out  []Record
		seen = make(map[string]bool)
		sb   strings.Builder
		line int
	)
	flush := func() {
		if len(out) > 0 {
			out[len(out)-1].Seq = sb.String()
		}
		sb.Reset()
	}
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		if strings.HasPrefix(text, ">") {
			flush()
			fields := strings.Fields(text[1:])
			if len(fields) == 0 {
				return nil, errs.New(errs.ErrCodeInvalidFormat, "line %d: empty record name", line)
			}
			name := fields[0]
			if seen[name] {
				return nil, errs.New(errs.ErrCodeInvalidFormat, "line %d: duplicate record %q", line, name)
			}
			seen[name] = true
			out = append(out, Record{Name: name})
			continue
		}
		if len(out) == 0 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "line %d: sequence before first header", line)
		}
		sb.WriteString(strings.Join(strings.Fields(text), ""))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}
	flush()
	return out, nil
}

// ImportFASTA reads a FASTA file at path.
func ImportFASTA(path string) ([]Record, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := ReadFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// ImportReferences reads a FASTA file at path into a map from record name to
// sequence, the form expected by the consistency checker.
func ImportReferences(path string) (map[string]string, error) {
	recs, err := ImportFASTA(path)
	if err != nil {
		return nil, err
	}
	return References(recs), nil
}

// References indexes records by name.
func References(recs []Record) map[string]string {
	out := make(map[string]string, len(recs))
	for _, r := range recs {
		out[r.Name] = r.Seq
	}
	return out
}

// WriteFASTA writes records to w, wrapping sequences at [LineWidth].
func WriteFASTA(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if _, err := fmt.Fprintf(bw, ">%s\n", r.Name); err != nil {
			return err
		}
		for i := 0; i < len(r.Seq); i += LineWidth {
			end := min(i+LineWidth, len(r.Seq))
			if _, err := fmt.Fprintln(bw, r.Seq[i:end]); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// ExportFASTA writes records to a FASTA file at path.
func ExportFASTA(recs []Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteFASTA(f, recs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Genomes reconstructs the genome of every path of g, in name order.
func Genomes(g *graph.Graph) ([]Record, error) {
	names := g.PathNames()
	out := make([]Record, len(names))
	for i, name := range names {
		s, err := g.Sequence(name)
		if err != nil {
			return nil, err
		}
		out[i] = Record{Name: name, Seq: s}
	}
	return out, nil
}

// Consensus returns the consensus of every block of g, named by block
// identifier, in identifier order.
func Consensus(g *graph.Graph) []Record {
	blocks := g.Blocks()
	out := make([]Record, len(blocks))
	for i, b := range blocks {
		out[i] = Record{Name: "block_" + b.ID.String(), Seq: b.Consensus}
	}
	return out
}
