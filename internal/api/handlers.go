package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	errs "github.com/matzehuels/pangraph/pkg/errors"
	"github.com/matzehuels/pangraph/pkg/graph/check"
	graphio "github.com/matzehuels/pangraph/pkg/io"
	"github.com/matzehuels/pangraph/pkg/pipeline"
	"github.com/matzehuels/pangraph/pkg/store"
)

// Response headers set by /v1/marginalize.
const (
	headerRunID      = "X-Run-Id"
	headerCache      = "X-Cache"
	headerMarginalID = "X-Marginal-Id"
)

type marginalizeRequest struct {
	Graph   json.RawMessage `json:"graph"`
	Strains []string        `json:"strains"`
	Workers int             `json:"workers,omitempty"`
	Check   bool            `json:"check,omitempty"`
}

type checkRequest struct {
	Graph      json.RawMessage   `json:"graph"`
	References map[string]string `json:"references"`
	Minimal    bool              `json:"minimal,omitempty"`
}

type checkResponse struct {
	Status  string   `json:"status"`
	Strains []string `json:"strains"`
}

type marginalResponse struct {
	ID         string          `json:"id"`
	SourceHash string          `json:"source_hash"`
	Strains    []string        `json:"strains"`
	Blocks     int             `json:"blocks"`
	CreatedAt  time.Time       `json:"created_at"`
	Graph      json.RawMessage `json:"graph,omitempty"`
}

func toResponse(r store.Record, withGraph bool) marginalResponse {
	resp := marginalResponse{
		ID:         r.ID,
		SourceHash: r.SourceHash,
		Strains:    r.Strains,
		Blocks:     r.Blocks,
		CreatedAt:  r.CreatedAt,
	}
	if withGraph {
		resp.Graph = r.Graph
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMarginalize(w http.ResponseWriter, r *http.Request) {
	var req marginalizeRequest
	if !decode(w, r, &req) {
		return
	}
	if missing(req.Graph) {
		writeError(w, http.StatusBadRequest, errs.New(errs.ErrCodeInvalidInput, "request has no graph"))
		return
	}
	persist, _ := strconv.ParseBool(r.URL.Query().Get("persist"))

	res, err := s.runner.Execute(r.Context(), req.Graph, pipeline.Options{
		Strains: req.Strains,
		Workers: req.Workers,
		Check:   req.Check,
		Persist: persist,
		Logger:  s.logger.With("request", requestIDFrom(r.Context())),
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	out, err := graphio.MarshalGraph(res.Graph)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set(headerRunID, res.RunID)
	w.Header().Set(headerCache, cacheStatus(res.CacheInfo.MarginalHit))
	if res.Persisted {
		w.Header().Set(headerMarginalID, res.RunID)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decode(w, r, &req) {
		return
	}
	if missing(req.Graph) {
		writeError(w, http.StatusBadRequest, errs.New(errs.ErrCodeInvalidInput, "request has no graph"))
		return
	}
	g, err := graphio.UnmarshalGraph(req.Graph)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	err = check.Check(g, req.References)
	if err == nil && req.Minimal {
		err = check.Minimal(g)
	}
	if err != nil {
		status := statusFor(err)
		if errs.Is(err, errs.ErrCodeNotFound) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Status: "ok", Strains: g.PathNames()})
}

func (s *Server) handleGetMarginal(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		writeError(w, http.StatusNotFound, errs.New(errs.ErrCodeNotFound, "no store configured"))
		return
	}
	rec, err := s.runner.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rec, true))
}

func (s *Server) handleListMarginals(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		writeError(w, http.StatusNotFound, errs.New(errs.ErrCodeNotFound, "no store configured"))
		return
	}
	source := r.URL.Query().Get("source")
	if source == "" {
		writeError(w, http.StatusBadRequest, errs.New(errs.ErrCodeInvalidInput, "missing source query parameter"))
		return
	}
	recs, err := s.runner.Store.BySource(r.Context(), source)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	out := make([]marginalResponse, len(recs))
	for i, rec := range recs {
		out[i] = toResponse(rec, false)
	}
	writeJSON(w, http.StatusOK, out)
}

// decode reads a JSON request body into v, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode request body"))
		return false
	}
	return true
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

// missing reports whether a raw JSON field was omitted or set to null.
func missing(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
