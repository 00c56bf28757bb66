// Package server exposes the scout pipeline over HTTP as a small JSON API.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/huhsame/instructor-scout-go/internal/domain"
	"github.com/huhsame/instructor-scout-go/internal/service"
	"go.uber.org/zap"
)

const totalMissMessage = "검색 결과가 없습니다. 다른 검색어로 다시 시도해 주세요."

type Server struct {
	scout  *service.Scout
	roster domain.InstructorStore
	logger *zap.Logger
}

func New(scout *service.Scout, roster domain.InstructorStore, logger *zap.Logger) *Server {
	return &Server{scout: scout, roster: roster, logger: logger}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/instructors", s.handleInstructors)
		r.Get("/search", s.handleSearch)
		r.Get("/summary", s.handleSummary)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"instructors": s.roster.Count(),
	})
}

type instructorsResponse struct {
	Query       string               `json:"query"`
	Scope       domain.SearchScope   `json:"scope"`
	Instructors []*domain.Instructor `json:"instructors"`
}

// handleInstructors searches the roster only, without web enrichment.
func (s *Server) handleInstructors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	scope := parseScope(r.URL.Query().Get("scope"))

	instructors := s.roster.Search(query, scope)
	if instructors == nil {
		instructors = []*domain.Instructor{}
	}
	s.writeJSON(w, http.StatusOK, instructorsResponse{
		Query:       query,
		Scope:       scope,
		Instructors: instructors,
	})
}

type searchResponse struct {
	Query       string                   `json:"query"`
	Instructors []*domain.Instructor     `json:"instructors"`
	Profile     *domain.PersonProfile    `json:"profile,omitempty"`
	Candidates  []*domain.MediaCandidate `json:"candidates"`
	Message     string                   `json:"message,omitempty"`
}

// handleSearch is the front door: roster match plus web enrichment. The
// subject for enrichment comes from the best roster row when one matched, so
// discovery gets role and topic context; otherwise the bare query is used.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	scope := parseScope(r.URL.Query().Get("scope"))

	instructors := s.roster.Search(query, scope)
	if instructors == nil {
		instructors = []*domain.Instructor{}
	}

	subject := domain.Subject{Name: query}
	if len(instructors) > 0 {
		subject = instructors[0].ToSubject()
	}

	profile, candidates := s.scout.Enrich(r.Context(), subject)

	resp := searchResponse{
		Query:       query,
		Instructors: instructors,
		Profile:     profile,
		Candidates:  candidates,
	}
	if len(instructors) == 0 && profile == nil && !hasContentCandidate(candidates) {
		resp.Message = totalMissMessage
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleSummary builds the display summary for one selected candidate URL.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter url is required")
		return
	}

	summary := s.scout.SummarizeVideo(r.Context(), rawURL)
	if summary == nil {
		s.writeError(w, http.StatusNotFound, "no summary available for this url")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

// hasContentCandidate reports whether any candidate points at actual content
// rather than a manual search link.
func hasContentCandidate(candidates []*domain.MediaCandidate) bool {
	for _, c := range candidates {
		if !c.IsSearchFallback() {
			return true
		}
	}
	return false
}

func parseScope(raw string) domain.SearchScope {
	scope := domain.SearchScope(raw)
	if !scope.IsValid() {
		return domain.ScopeAll
	}
	return scope
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
