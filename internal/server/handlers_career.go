package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/server/middleware"
	"github.com/rizzrioo06/careermate/internal/types"
)

// requireUser returns the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses the {id} path value or writes a 400.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// handleCareerGuidance generates career paths and a learning roadmap.
func (s *Server) handleCareerGuidance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req types.GuidanceRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.career.GenerateGuidance(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, "career guidance", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleMockInterview starts a mock interview session.
func (s *Server) handleMockInterview(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req types.InterviewRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.career.GenerateInterview(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, "mock interview", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleInterviewAnswer records an answer and the model's feedback on it.
func (s *Server) handleInterviewAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.AnswerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.career.AnswerInterview(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, "interview answer", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleJobSuggestions suggests job openings for a profile.
func (s *Server) handleJobSuggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req types.JobSuggestionsRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.career.SuggestJobs(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, "job suggestions", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleCareerDiscovery suggests careers from discovery answers.
func (s *Server) handleCareerDiscovery(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req types.DiscoveryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.career.Discover(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, "career discovery", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleCareerStories writes the full set of career stories.
func (s *Server) handleCareerStories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req types.StoriesRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.career.GenerateStories(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, "career stories", err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// handleRegenerateStory rewrites one story of a saved set.
func (s *Server) handleRegenerateStory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req types.RegenerateStoryRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	rec, err := s.career.RegenerateStory(r.Context(), userID, id, &req)
	if err != nil {
		writeServiceError(w, "regenerate story", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
