package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/readstack/pkg/coverage"
	"github.com/matzehuels/readstack/pkg/errors"
	"github.com/matzehuels/readstack/pkg/genome"
	"github.com/matzehuels/readstack/pkg/layout"
	"github.com/matzehuels/readstack/pkg/pipeline"
)

// contentTypes maps output formats to response media types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

type coverageResponse struct {
	Region  genome.Region    `json:"region"`
	Track   string           `json:"track,omitempty"`
	Depth   []int            `json:"depth"`
	Summary coverage.Summary `json:"summary"`
}

type trackResponse struct {
	Name       string             `json:"name"`
	Kind       string             `json:"kind"`
	Order      layout.Order       `json:"order"`
	Rows       int                `json:"rows"`
	Placements []layout.Placement `json:"placements"`
}

type layoutResponse struct {
	Region genome.Region   `json:"region"`
	Tracks []trackResponse `json:"tracks"`
}

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleFigure(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.options(q.Get("region"))
	opts.Formats = []string{format}
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentTypes[format])
	h.Set("Content-Length", strconv.Itoa(len(result.Artifacts[format])))
	h.Set("ETag", `"`+result.LayoutHash[:16]+"-"+format+`"`)
	h.Set("X-Cache", cacheStatus(result.CacheInfo.RenderHit))
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	l, err := s.runner.Layout(r.Context(), s.options(q.Get("region")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := coverageResponse{Region: l.Region, Track: q.Get("track")}
	if resp.Track == "" {
		if l.Depth == nil {
			s.writeError(w, r, errors.New(errors.ErrCodeTrackNotFound, "no track is marked for coverage; pass track="))
			return
		}
		resp.Depth, resp.Summary = l.Depth, l.Stats
	} else {
		depth, err := l.TrackDepth(resp.Track)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Depth, resp.Summary = depth, coverage.Summarize(depth)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	l, err := s.runner.Layout(r.Context(), s.options(q.Get("region")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := layoutResponse{Region: l.Region}
	for _, t := range l.Tracks {
		if name := q.Get("track"); name != "" && name != t.Name {
			continue
		}
		resp.Tracks = append(resp.Tracks, trackResponse{
			Name:       t.Name,
			Kind:       t.Kind,
			Order:      t.Packing.Order,
			Rows:       t.Packing.RowCount,
			Placements: t.Packing.Placements,
		})
	}
	if len(resp.Tracks) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeTrackNotFound, "no track named %q", q.Get("track")))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusNotImplemented
	case isTimeout(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	id := RequestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", id, "err", err)
	}
	reportError(r, err)
	writeJSON(w, status, errorResponse{
		Code:      errors.GetCodeOr(err, errors.ErrCodeInternal),
		Message:   errors.UserMessage(err),
		RequestID: id,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
