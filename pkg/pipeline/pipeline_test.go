package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pangraph/pkg/cache"
	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	"github.com/matzehuels/pangraph/pkg/graph/graphtest"
	graphio "github.com/matzehuels/pangraph/pkg/io"
	"github.com/matzehuels/pangraph/pkg/store"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.ErrorLevel})
}

func fixture(t *testing.T, seed uint64) (*graph.Graph, []byte) {
	t.Helper()
	g := graphtest.Random(seed, graphtest.Options{Strains: 4})
	data, err := graphio.MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}
	return g, data
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		strains  []string
		wantCode errs.Code
		want     []string
	}{
		{name: "sorted and deduplicated", strains: []string{"b", "a", "b"}, want: []string{"a", "b"}},
		{name: "empty", strains: nil, wantCode: errs.ErrCodeInvalidStrainSet},
		{name: "blank name", strains: []string{"a", ""}, wantCode: errs.ErrCodeInvalidStrainSet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := append([]string(nil), tt.strains...)
			opts := Options{Strains: in}
			err := opts.ValidateAndSetDefaults()
			if tt.wantCode != "" {
				if !errs.Is(err, tt.wantCode) {
					t.Fatalf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, opts.Strains); diff != "" {
				t.Errorf("Strains mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.strains, in); diff != "" {
				t.Errorf("input slice modified (-want +got):\n%s", diff)
			}
			if opts.TTL != DefaultTTL {
				t.Errorf("TTL = %v, want %v", opts.TTL, DefaultTTL)
			}
		})
	}
}

func TestExecute(t *testing.T) {
	g, data := fixture(t, 3)
	strains := g.PathNames()[:2]

	r := NewRunner(nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), data, Options{Strains: strains, Check: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.RunID == "" || res.SourceHash != cache.Hash(data) {
		t.Errorf("RunID = %q, SourceHash = %q", res.RunID, res.SourceHash)
	}
	if !res.Checked || res.Persisted {
		t.Errorf("Checked = %v, Persisted = %v", res.Checked, res.Persisted)
	}
	if diff := cmp.Diff(strains, res.Graph.PathNames()); diff != "" {
		t.Errorf("PathNames mismatch (-want +got):\n%s", diff)
	}
	for _, name := range strains {
		want, _ := g.Sequence(name)
		got, _ := res.Graph.Sequence(name)
		if got != want {
			t.Errorf("Sequence(%s) changed", name)
		}
	}
	if res.Transform.BlocksOut != res.Graph.BlockCount() {
		t.Errorf("BlocksOut = %d, want %d", res.Transform.BlocksOut, res.Graph.BlockCount())
	}
}

func TestExecuteCached(t *testing.T) {
	g, data := fixture(t, 5)
	strains := g.PathNames()[1:]

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	r := NewRunner(fc, nil, quietLogger())
	defer r.Close(context.Background())
	ctx := context.Background()
	opts := Options{Strains: strains, Check: true}

	first, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.MarginalHit || first.CacheInfo.CheckHit {
		t.Errorf("first run CacheInfo = %+v, want misses", first.CacheInfo)
	}

	second, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.MarginalHit || !second.CacheInfo.CheckHit {
		t.Errorf("second run CacheInfo = %+v, want hits", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Transform, second.Transform); diff != "" {
		t.Errorf("cached Result mismatch (-first +second):\n%s", diff)
	}
	a, _ := graphio.MarshalGraph(first.Graph)
	b, _ := graphio.MarshalGraph(second.Graph)
	if !bytes.Equal(a, b) {
		t.Error("cached marginal differs from computed marginal")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, data, opts)
	if err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if third.CacheInfo.MarginalHit {
		t.Error("Refresh run was served from cache")
	}
}

func TestExecuteCorruptCacheEntry(t *testing.T) {
	g, data := fixture(t, 8)
	strains := g.PathNames()[:1]

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	ctx := context.Background()
	key := cache.NewDefaultKeyer().MarginalKey(cache.Hash(data), strains)
	if err := fc.Set(ctx, key, []byte("not json"), DefaultTTL); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	r := NewRunner(fc, nil, quietLogger())
	res, err := r.Execute(ctx, data, Options{Strains: strains})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.CacheInfo.MarginalHit {
		t.Error("corrupt entry reported as hit")
	}
	if res.Graph.BlockCount() != 1 {
		t.Errorf("single strain BlockCount = %d, want 1", res.Graph.BlockCount())
	}
}

func TestExecutePersist(t *testing.T) {
	g, data := fixture(t, 11)
	strains := g.PathNames()[:3]
	ctx := context.Background()

	r := NewRunner(nil, nil, quietLogger())
	_, err := r.Execute(ctx, data, Options{Strains: strains, Persist: true})
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Fatalf("Persist without store error = %v, want UNSUPPORTED", err)
	}

	mem := store.NewMemory()
	r.Store = mem
	res, err := r.Execute(ctx, data, Options{Strains: strains, Persist: true})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !res.Persisted {
		t.Error("Persisted = false")
	}
	rec, err := mem.Get(ctx, res.RunID)
	if err != nil {
		t.Fatalf("Get(%s) error: %v", res.RunID, err)
	}
	if rec.SourceHash != res.SourceHash || rec.Blocks != res.Graph.BlockCount() {
		t.Errorf("record = %+v", rec)
	}
	if diff := cmp.Diff(strains, rec.Strains); diff != "" {
		t.Errorf("record strains mismatch (-want +got):\n%s", diff)
	}
	stored, err := graphio.UnmarshalGraph(rec.Graph)
	if err != nil {
		t.Fatalf("stored graph does not decode: %v", err)
	}
	if err := r.Check(ctx, stored, g); err != nil {
		t.Errorf("stored graph fails check: %v", err)
	}
	bySource, _ := mem.BySource(ctx, res.SourceHash)
	if len(bySource) != 1 {
		t.Errorf("BySource() = %d records, want 1", len(bySource))
	}
}

func TestExecuteErrors(t *testing.T) {
	_, data := fixture(t, 2)
	r := NewRunner(nil, nil, quietLogger())
	ctx := context.Background()

	tests := []struct {
		name string
		data []byte
		opts Options
		want errs.Code
	}{
		{"unknown strain", data, Options{Strains: []string{"nope"}}, errs.ErrCodeInvalidStrainSet},
		{"no strains", data, Options{}, errs.ErrCodeInvalidStrainSet},
		{"bad json", []byte("{"), Options{Strains: []string{"a"}}, errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.data, tt.opts)
			if !errs.Is(err, tt.want) {
				t.Errorf("Execute() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	g, data := fixture(t, 4)
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(nil, nil, quietLogger())
	got, hash, err := r.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if hash != cache.Hash(data) {
		t.Errorf("hash = %q, want %q", hash, cache.Hash(data))
	}
	if got.BlockCount() != g.BlockCount() {
		t.Errorf("BlockCount = %d, want %d", got.BlockCount(), g.BlockCount())
	}

	_, _, err = r.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}
