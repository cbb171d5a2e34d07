package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph"
	graphio "github.com/matzehuels/pangraph/pkg/io"
	"github.com/matzehuels/pangraph/pkg/observability"
	"github.com/matzehuels/pangraph/pkg/pipeline"
	"github.com/matzehuels/pangraph/pkg/store"
)

const (
	seqA = "AAAC" + "GGGT" + "TTTA"
	seqC = "GGGT"
)

// sampleGraph returns a graph where strains a and b share blocks 1 2 3 and
// strain c carries block 2 alone.
func sampleGraph(t *testing.T) []byte {
	t.Helper()
	b := graph.NewBuilder().
		AddBlock(1, "AAAC").
		AddBlock(2, "GGGT").
		AddBlock(3, "TTTA")
	for _, name := range []string{"a", "b"} {
		b.Visit(name, 1, graph.Forward, graph.Edits{})
		b.Visit(name, 2, graph.Forward, graph.Edits{})
		b.Visit(name, 3, graph.Forward, graph.Edits{})
	}
	b.Visit("c", 2, graph.Forward, graph.Edits{})
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	data, err := graphio.MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}
	return data
}

func newTestServer(t *testing.T, st store.Store) *httptest.Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	runner := pipeline.NewRunner(nil, nil, logger)
	runner.Store = st
	srv := httptest.NewServer(New(runner, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if raw, ok := body.([]byte); ok {
		buf.Write(raw)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := get(t, srv.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, nil)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Errorf("X-Request-Id = %q, want abc-123", got)
	}
}

func TestMarginalize(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := post(t, srv.URL+"/v1/marginalize", marginalizeRequest{
		Graph:   sampleGraph(t),
		Strains: []string{"b", "a"},
		Check:   true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %+v", resp.StatusCode, decodeError(t, resp))
	}
	if resp.Header.Get(headerRunID) == "" || resp.Header.Get(headerCache) != "miss" {
		t.Errorf("headers = %v", resp.Header)
	}
	if resp.Header.Get(headerMarginalID) != "" {
		t.Error("X-Marginal-Id set without persist")
	}

	g, err := graphio.ReadJSON(resp.Body)
	if err != nil {
		t.Fatalf("response is not a graph: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, g.PathNames()); diff != "" {
		t.Errorf("PathNames mismatch (-want +got):\n%s", diff)
	}
	if g.BlockCount() != 1 {
		t.Errorf("BlockCount = %d, want 1", g.BlockCount())
	}
	if s, _ := g.Sequence("a"); s != seqA {
		t.Errorf("Sequence(a) = %q, want %q", s, seqA)
	}
}

func TestMarginalizeErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	data := sampleGraph(t)

	tests := []struct {
		name   string
		body   any
		query  string
		status int
		code   errs.Code
	}{
		{"unknown strain", marginalizeRequest{Graph: data, Strains: []string{"zz"}}, "", http.StatusBadRequest, errs.ErrCodeInvalidStrainSet},
		{"no strains", marginalizeRequest{Graph: data}, "", http.StatusBadRequest, errs.ErrCodeInvalidStrainSet},
		{"no graph", marginalizeRequest{Strains: []string{"a"}}, "", http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"graph omitted", map[string]any{"strains": []string{"a"}}, "", http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"empty graph", marginalizeRequest{
			Graph:   json.RawMessage(`{"paths":[],"blocks":[],"nodes":[]}`),
			Strains: []string{"a"},
		}, "", http.StatusBadRequest, errs.ErrCodeMalformedGraph},
		{"bad body", []byte("{"), "", http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"malformed graph", marginalizeRequest{
			Graph:   json.RawMessage(`{"paths":[{"name":"a","nodes":[9],"tot_len":4}],"blocks":[],"nodes":[]}`),
			Strains: []string{"a"},
		}, "", http.StatusBadRequest, errs.ErrCodeMalformedGraph},
		{"persist without store", marginalizeRequest{Graph: data, Strains: []string{"a"}}, "?persist=true", http.StatusNotImplemented, errs.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/marginalize"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if e := decodeError(t, resp); e.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", e.Code, tt.code, e.Message)
			}
		})
	}
}

func TestMarginalsStore(t *testing.T) {
	srv := newTestServer(t, store.NewMemory())
	data := sampleGraph(t)

	resp := post(t, srv.URL+"/v1/marginalize?persist=true", marginalizeRequest{Graph: data, Strains: []string{"a", "c"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	id := resp.Header.Get(headerMarginalID)
	if id == "" {
		t.Fatal("missing X-Marginal-Id")
	}

	resp = get(t, srv.URL+"/v1/marginals/"+id)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}
	var rec marginalResponse
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a", "c"}, rec.Strains); diff != "" {
		t.Errorf("strains mismatch (-want +got):\n%s", diff)
	}
	g, err := graphio.UnmarshalGraph(rec.Graph)
	if err != nil {
		t.Fatalf("stored graph: %v", err)
	}
	if s, _ := g.Sequence("c"); s != seqC {
		t.Errorf("Sequence(c) = %q, want %q", s, seqC)
	}

	resp = get(t, srv.URL+"/v1/marginals?source="+rec.SourceHash)
	var list []marginalResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != id || list[0].Graph != nil {
		t.Errorf("list = %+v", list)
	}

	if resp := get(t, srv.URL+"/v1/marginals/unknown"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", resp.StatusCode)
	}
	if resp := get(t, srv.URL+"/v1/marginals"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing source status = %d, want 400", resp.StatusCode)
	}
}

func TestMarginalsWithoutStore(t *testing.T) {
	srv := newTestServer(t, nil)
	if resp := get(t, srv.URL+"/v1/marginals/x"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCheck(t *testing.T) {
	srv := newTestServer(t, nil)
	data := sampleGraph(t)
	good := map[string]string{"a": seqA, "b": seqA, "c": seqC}

	resp := post(t, srv.URL+"/v1/check", checkRequest{Graph: data, References: good})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %+v", resp.StatusCode, decodeError(t, resp))
	}
	var ok checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(checkResponse{Status: "ok", Strains: []string{"a", "b", "c"}}, ok); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}

	bad := map[string]string{"a": seqA, "b": "AAAC" + "GCGT" + "TTTA", "c": seqC}
	resp = post(t, srv.URL+"/v1/check", checkRequest{Graph: data, References: bad})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("mismatch status = %d, want 422", resp.StatusCode)
	}
	e := decodeError(t, resp)
	if e.Code != errs.ErrCodeReconstructionMismatch || e.Strain != "b" || e.Position == nil || *e.Position != 5 {
		t.Errorf("mismatch body = %+v", e)
	}

	resp = post(t, srv.URL+"/v1/check", checkRequest{Graph: data, References: map[string]string{"a": seqA}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("missing reference status = %d, want 422", resp.StatusCode)
	}

	for _, body := range []any{checkRequest{References: good}, map[string]any{"references": good}} {
		resp = post(t, srv.URL+"/v1/check", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("no graph status = %d, want 400", resp.StatusCode)
		}
		if e := decodeError(t, resp); e.Code != errs.ErrCodeInvalidInput {
			t.Errorf("no graph code = %s, want %s", e.Code, errs.ErrCodeInvalidInput)
		}
	}

	// Block 2 is visited alone by c, so no junction merges across all strains.
	resp = post(t, srv.URL+"/v1/check", checkRequest{Graph: data, References: good, Minimal: true})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("minimal status = %d, want 200", resp.StatusCode)
	}
}

type recordingHooks struct {
	observability.NoopServerHooks
	mu     sync.Mutex
	routes []string
}

func (h *recordingHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestServerHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetServerHooks(hooks)
	defer observability.Reset()

	srv := newTestServer(t, store.NewMemory())
	get(t, srv.URL+"/healthz")
	get(t, srv.URL+"/v1/marginals/abc")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	want := []string{"GET /healthz", "GET /v1/marginals/{id}"}
	if diff := cmp.Diff(want, hooks.routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}
