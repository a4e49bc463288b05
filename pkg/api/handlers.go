package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/dd0wney/cluso-fastindex/pkg/logging"
)

// searchResponse is the JSON shape of both query endpoints. Key is
// omitted when the index does not point at a stored key (-1 or N).
type searchResponse struct {
	Query int32  `json:"query"`
	Index int64  `json:"index"`
	Key   *int32 `json:"key,omitempty"`
}

type statsResponse struct {
	Keys           int `json:"keys"`
	Depth          int `json:"depth"`
	PaddedNodes    int `json:"padded_nodes"`
	LayoutBytes    int `json:"layout_bytes"`
	PageBlockDepth int `json:"page_block_depth"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, ok := s.queryParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	idx := s.tree.Search(q)
	s.metrics.RecordQuery("search", time.Since(start))

	resp := searchResponse{Query: q, Index: idx}
	if idx >= 0 {
		k := s.tree.KeyAt(idx)
		resp.Key = &k
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLowerBound(w http.ResponseWriter, r *http.Request) {
	q, ok := s.queryParam(w, r)
	if !ok {
		return
	}

	start := time.Now()
	idx := s.tree.LowerBound(q)
	s.metrics.RecordQuery("lower_bound", time.Since(start))

	resp := searchResponse{Query: q, Index: idx}
	if idx < int64(s.tree.Len()) {
		k := s.tree.KeyAt(idx)
		resp.Key = &k
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.tree.Stats()
	writeJSON(w, http.StatusOK, statsResponse{
		Keys:           st.Keys,
		Depth:          st.Depth,
		PaddedNodes:    st.PaddedNodes,
		LayoutBytes:    st.LayoutBytes,
		PageBlockDepth: st.PageBlockDepth,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// queryParam parses the mandatory q parameter as an int32.
func (s *Server) queryParam(w http.ResponseWriter, r *http.Request) (int32, bool) {
	raw := r.URL.Query().Get("q")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing q parameter"})
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		s.logger.Debug("bad query parameter", logging.String("q", raw), logging.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "q must be a 32-bit integer"})
		return 0, false
	}
	return int32(v), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
