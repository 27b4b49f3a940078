package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/datasets/internal/core"
	"github.com/JonMunkholm/datasets/internal/logging"
	"github.com/JonMunkholm/datasets/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// HealthResponse describes the loaded snapshot.
type HealthResponse struct {
	Status   string         `json:"status"`
	Snapshot string         `json:"snapshot"`
	LoadedAt time.Time      `json:"loaded_at"`
	Tables   map[string]int `json:"tables"`
}

// TableInfo is one entry of the table listing.
type TableInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// handleHealth reports the snapshot identity and row counts.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, HealthResponse{
		Status:   "ok",
		Snapshot: s.store.ID().String(),
		LoadedAt: s.store.LoadedAt().UTC(),
		Tables:   s.store.RowCounts(),
	})
}

// handleSummary returns the summary of every table in store order.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, core.Summarize(s.store))
}

// handleListTables lists table names with their row counts.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	names := s.store.Names()
	out := make([]TableInfo, 0, len(names))
	for _, name := range names {
		t, _ := s.store.Table(name)
		out = append(out, TableInfo{Name: name, Rows: len(t)})
	}
	writeJSON(w, r, out)
}

// handleTableRows returns every row of one table.
func (s *Server) handleTableRows(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := s.store.Lookup(name)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	writeJSON(w, r, t)
}

// handleGroup counts the rows of one table by the value of ?field=.
// The field is checked before the table so a bad request on an
// unknown table still reports the missing field.
func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	field := r.URL.Query().Get("field")

	if strings.TrimSpace(field) == "" {
		respondError(w, r, core.ErrMissingField, http.StatusBadRequest)
		return
	}

	t, err := s.store.Lookup(name)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	result := core.GroupBy(t, field)
	logging.WithFields(r.Context(), "table", name, "field", field).Debug("grouped table",
		"groups", len(result),
		"rows", result.Total(),
	)
	writeJSON(w, r, result)
}

// handleOverview renders the HTML summary page.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	page := templates.OverviewPage{
		Snapshot:  s.store.ID().String(),
		LoadedAt:  s.store.LoadedAt(),
		Summary:   core.Summarize(s.store),
		StaticDir: s.cfg.Data.StaticDir != "",
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Overview(page).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render overview", "error", err)
	}
}
