package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/collatz/pkg/collatz"
	"github.com/matzehuels/collatz/pkg/errors"
	"github.com/matzehuels/collatz/pkg/graph"
	"github.com/matzehuels/collatz/pkg/pipeline"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// errorResponse is the body of every non-2xx API response.
type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleGraph(mode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, format, err := s.parseRequest(r, mode)
		if err != nil {
			s.writePipelineError(w, r, err)
			return
		}

		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writePipelineError(w, r, err)
			return
		}

		if result.CacheInfo.BuildHit && result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		w.Header().Set("Content-Type", contentTypes[format])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[format])
	}
}

// parseRequest turns the path and query into pipeline options.
func (s *Server) parseRequest(r *http.Request, mode string) (pipeline.Options, string, error) {
	opts := s.opts.Defaults
	opts.Mode = mode
	opts.Logger = nil

	raw := chi.URLParam(r, "number")
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return opts, "", errors.New(errors.ErrCodeInvalidInput, "number must be a positive integer, got %q", raw)
	}
	opts.Number = n

	q := r.URL.Query()
	if mode == collatz.ModeInverse {
		opts.Depth = s.opts.DefaultDepth
		if d := q.Get("depth"); d != "" {
			depth, err := strconv.Atoi(d)
			if err != nil || depth < 0 {
				return opts, "", errors.New(errors.ErrCodeInvalidInput, "depth must be a non-negative integer, got %q", d)
			}
			if depth > s.opts.MaxDepth {
				return opts, "", errors.New(errors.ErrCodeInvalidInput, "depth %d exceeds the maximum of %d", depth, s.opts.MaxDepth)
			}
			opts.Depth = depth
		}
	}

	if v := q.Get("viz"); v != "" {
		opts.VizType = v
	}
	if opts.VizType == "" {
		opts.VizType = graph.VizTypeLevels
	}
	if q.Has("detailed") {
		opts.Detailed = q.Get("detailed") != "false"
	}

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatJSON
	}
	if _, ok := contentTypes[format]; !ok {
		return opts, "", errors.New(errors.ErrCodeInvalidFormat, "format %q is not served over HTTP (use json, svg or dot)", format)
	}
	opts.Formats = []string{format}
	return opts, format, nil
}

func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.IsClientError(err) {
		status = http.StatusBadRequest
	} else {
		s.logger.Error("pipeline failed", "err", err, "request_id", RequestID(r.Context()))
	}
	code := string(errors.GetCode(err))
	if code == "" {
		code = string(errors.ErrCodeInternal)
	}
	writeError(w, r, status, code, errors.UserMessage(err))
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
	})
}
