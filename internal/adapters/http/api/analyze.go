package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/lineup/internal/domain/types"
)

// maxAnalyzeBody caps the request body read by the analyze handler.
const maxAnalyzeBody = 1 << 20

// AnalyzeDependencies defines the interface for running an analysis.
type AnalyzeDependencies interface {
	Analyze(ctx context.Context, names []string) types.Result
}

// AnalyzeHandler handles analysis requests.
type AnalyzeHandler struct {
	deps AnalyzeDependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

// HandleAnalyze handles POST /api/analyze requests. An empty body, a missing
// players key, or a null players value all mean an empty request.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := decodeAnalyzeRequest(http.MaxBytesReader(w, r.Body, maxAnalyzeBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Analyze(r.Context(), req.Players))
}

func decodeAnalyzeRequest(body io.Reader) (types.AnalyzeRequest, error) {
	var req types.AnalyzeRequest
	data, err := io.ReadAll(body)
	if err != nil {
		return req, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return req, nil
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return types.AnalyzeRequest{}, err
	}
	return req, nil
}
