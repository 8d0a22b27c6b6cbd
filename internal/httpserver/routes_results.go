package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/qmcDevelopment/auditoria-iso/internal/daily"
)

// handleResults serves GET /results?date=YYYY-MM-DD&limit=N (defaults: today, 20).
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if s.opts.Results == nil {
		http.Error(w, `{"error":"results_disabled"}`, http.StatusServiceUnavailable)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.opts.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, `{"error":"bad_date"}`, http.StatusBadRequest)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, `{"error":"bad_limit"}`, http.StatusBadRequest)
			return
		}
		limit = min(n, 100)
	}

	rows, err := s.opts.Results.Leaderboard(r.Context(), date, limit)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("leaderboard")
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"date": date, "results": rows})
}
