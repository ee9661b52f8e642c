package server

import (
	"net/http"
	"slices"

	"github.com/matzehuels/tiergraph/pkg/build"
	"github.com/matzehuels/tiergraph/pkg/concept"
	"github.com/matzehuels/tiergraph/pkg/errors"
	"github.com/matzehuels/tiergraph/pkg/parse"
	"github.com/matzehuels/tiergraph/pkg/pipeline"
)

// MaxTextBytes caps the text accepted by /v1/parse.
const MaxTextBytes = 256 << 10

// ParseRequest is the body of POST /v1/parse.
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseResponse is returned by POST /v1/parse.
type ParseResponse struct {
	Triples []concept.Triple `json:"triples"`
	Stats   parse.Stats      `json:"stats"`
}

// BuildRequest is the body of POST /v1/build.
type BuildRequest struct {
	Triples []concept.Triple `json:"triples"`
	Options pipeline.Options `json:"options"`
}

// BuildResponse is returned by POST /v1/build.
type BuildResponse struct {
	Graph  *concept.Graph `json:"graph"`
	Report *build.Report  `json:"report"`
}

// LayoutRequest is the body of POST /v1/layout. Exactly one of Triples and
// Graph must be set.
type LayoutRequest struct {
	Triples []concept.Triple `json:"triples,omitempty"`
	Graph   *concept.Graph   `json:"graph,omitempty"`
	Options pipeline.Options `json:"options"`
}

// Decision is the engine choice returned with a layout.
type Decision struct {
	Engine         string  `json:"engine"`
	Reason         string  `json:"reason"`
	HierarchyScore float64 `json:"hierarchyScore"`
	Focus          string  `json:"focus,omitempty"`
}

// LayoutResponse is returned by POST /v1/layout. Artifacts holds the text
// formats (dot, svg) that were requested.
type LayoutResponse struct {
	ID        string            `json:"id"`
	Graph     *concept.Graph    `json:"graph"`
	Decision  Decision          `json:"decision"`
	Report    *build.Report     `json:"report,omitempty"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// textFormats are the render formats the API can embed in JSON.
var textFormats = []string{pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatSVG}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) {
	var req ParseRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if len(req.Text) > MaxTextBytes {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "text exceeds %d bytes", MaxTextBytes))
		return
	}
	triples, stats := parse.New(s.logger).Parse(req.Text)
	if triples == nil {
		triples = []concept.Triple{}
	}
	writeJSON(w, http.StatusOK, ParseResponse{Triples: triples, Stats: stats})
}

func (s *Server) build(w http.ResponseWriter, r *http.Request) {
	req := BuildRequest{Options: s.defaults}
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := validateTriples(req.Triples); err != nil {
		s.fail(w, r, err)
		return
	}
	req.Options.Logger = s.logger.With("request_id", RequestIDFrom(r.Context()))

	g, report, err := s.runner.Build(r.Context(), req.Triples, req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BuildResponse{Graph: g, Report: report})
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	req := LayoutRequest{Options: s.defaults}
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if (req.Graph == nil) == (req.Triples == nil) {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "exactly one of triples and graph is required"))
		return
	}
	for _, f := range req.Options.Formats {
		if !slices.Contains(textFormats, f) {
			s.fail(w, r, errors.New(errors.ErrCodeUnsupported, "format %q is not available over HTTP", f))
			return
		}
	}
	opts := req.Options
	opts.Logger = s.logger.With("request_id", RequestIDFrom(r.Context()))
	ctx := r.Context()

	var resp LayoutResponse
	if req.Graph != nil {
		g, d, err := s.runner.Layout(ctx, req.Graph, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		artifacts, err := s.runner.Render(ctx, g, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp = LayoutResponse{ID: g.Metadata.ID, Graph: g, Decision: Decision(d), Artifacts: textArtifacts(artifacts)}
	} else {
		if err := validateTriples(req.Triples); err != nil {
			s.fail(w, r, err)
			return
		}
		result, err := s.runner.Execute(ctx, req.Triples, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		resp = LayoutResponse{
			ID:        result.ID,
			Graph:     result.Graph,
			Decision:  Decision(result.Decision),
			Report:    result.Report,
			Artifacts: textArtifacts(result.Artifacts),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func validateTriples(triples []concept.Triple) error {
	if err := errors.ValidateTripleCount(len(triples)); err != nil {
		return err
	}
	for i, t := range triples {
		if err := errors.ValidateTriple(i, t.Source, t.Relation, t.Target, t.LayerTransition); err != nil {
			return err
		}
	}
	return nil
}

// textArtifacts drops the JSON rendering, which duplicates the response
// graph.
func textArtifacts(in map[string][]byte) map[string]string {
	out := make(map[string]string, len(in))
	for f, data := range in {
		if f == pipeline.FormatJSON {
			continue
		}
		out[f] = string(data)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
