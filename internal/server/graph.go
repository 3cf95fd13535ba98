package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	rgerrors "github.com/matzehuels/routegraph/pkg/errors"
	"github.com/matzehuels/routegraph/pkg/pipeline"
)

// BuildIDHeader carries the id of the build that produced a /graph response.
const BuildIDHeader = "X-Build-ID"

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	domain := strings.TrimSpace(q.Get("domain"))
	token := q.Get("token")
	apiURL := strings.TrimSpace(q.Get("api_url"))

	buildID := uuid.NewString()
	w.Header().Set(BuildIDHeader, buildID)
	logger := s.logger.With("build", buildID)
	logger.Info("graph requested", "domain", domain, "api_url", apiURL)

	urls := s.cfg.DefaultAPIURLs
	if apiURL != "" {
		if s.cfg.Whitelist != nil {
			if err := s.cfg.Whitelist.Validate(apiURL); err != nil {
				s.writeError(w, err)
				return
			}
		}
		urls = []string{apiURL}
	}
	if len(urls) == 0 {
		s.writeError(w, rgerrors.New(rgerrors.ErrCodeInvalidInput, "api_url is required"))
		return
	}

	result, err := s.cfg.Runner.Execute(r.Context(), pipeline.Options{
		Domain:  domain,
		Token:   token,
		APIURLs: urls,
		BuildID: buildID,
		Formats: []string{pipeline.FormatJSON},
		Logger:  logger,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("client went away", "domain", domain)
			return
		}
		logger.Warn("graph build failed", "domain", domain, "err", err)
		s.writeError(w, err)
		return
	}

	logger.Info("graph built",
		"domain", domain,
		"elements", len(result.Graph.Elements),
		"calls", result.Calls.Total,
		"duration", result.Stats.BuildTime)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[pipeline.FormatJSON])
}

func (s *Server) handleLoader(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(s.loader)
}

// errorBody is the error payload shape the loader script reads.
type errorBody struct {
	Detail string `json:"detail"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := rgerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	writeJSON(w, status, errorBody{Detail: rgerrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
