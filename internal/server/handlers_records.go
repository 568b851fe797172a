package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rizzrioo06/careermate/internal/db"
	"github.com/rizzrioo06/careermate/internal/types"
)

// recentRecords is how many records the dashboard lists.
const recentRecords = 5

// RecordStore is the subset of db.DB behind the dashboard endpoints.
type RecordStore interface {
	GetRecord(ctx context.Context, userID, id uuid.UUID) (*db.Record, error)
	ListRecords(ctx context.Context, userID uuid.UUID, kind types.RecordKind, limit int) ([]db.RecordSummary, error)
	DeleteRecord(ctx context.Context, userID, id uuid.UUID) (bool, error)
	CountRecordsByKind(ctx context.Context, userID uuid.UUID) (map[types.RecordKind]int, error)
}

// DashboardResponse summarizes a user's saved records.
type DashboardResponse struct {
	Counts map[types.RecordKind]int `json:"counts"`
	Total  int                      `json:"total"`
	Recent []db.RecordSummary       `json:"recent"`
}

// RecordListResponse is returned by GET /api/records.
type RecordListResponse struct {
	Records []db.RecordSummary `json:"records"`
}

// handleDashboard returns per-kind counts and the most recent records.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	counts, err := s.records.CountRecordsByKind(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "dashboard counts", err)
		return
	}
	recent, err := s.records.ListRecords(r.Context(), userID, "", recentRecords)
	if err != nil {
		writeServiceError(w, "dashboard recent", err)
		return
	}

	resp := DashboardResponse{Counts: counts, Recent: recent}
	for _, n := range counts {
		resp.Total += n
	}
	if resp.Recent == nil {
		resp.Recent = []db.RecordSummary{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListRecords lists record summaries, optionally filtered by ?kind=
// and capped by ?limit=.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var kind types.RecordKind
	if v := r.URL.Query().Get("kind"); v != "" {
		parsed, err := types.ParseRecordKind(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = parsed
	}

	limit := db.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > db.MaxListLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(db.MaxListLimit))
			return
		}
		limit = n
	}

	records, err := s.records.ListRecords(r.Context(), userID, kind, limit)
	if err != nil {
		writeServiceError(w, "list records", err)
		return
	}
	if records == nil {
		records = []db.RecordSummary{}
	}
	writeJSON(w, http.StatusOK, RecordListResponse{Records: records})
}

// handleGetRecord returns one record with its content.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := s.records.GetRecord(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "get record", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord deletes one record.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	deleted, err := s.records.DeleteRecord(r.Context(), userID, id)
	if err != nil {
		writeServiceError(w, "delete record", err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
