package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/util"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

// dayParam reads an optional YYYY-MM-DD query parameter, defaulting to
// today.
func dayParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), nil
	}
	return util.ParseDay(v)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := s.aggregator.Daily(day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if summary == nil {
		http.Error(w, fmt.Sprintf("no data available for %s", day.Format("2006-01-02")), http.StatusNotFound)
		return
	}
	writeJSON(w, summary)
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	day, err := dayParam(r, "date")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	series, err := s.aggregator.Hourly(day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, series)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("start_date")
	if startParam == "" {
		http.Error(w, "start_date is required", http.StatusBadRequest)
		return
	}
	start, err := util.ParseDay(startParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.aggregator.Week(r.Context(), start)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	monthParam := r.URL.Query().Get("month")
	if monthParam == "" {
		http.Error(w, "month is required (YYYY-MM)", http.StatusBadRequest)
		return
	}
	year, month, err := util.ParseMonth(monthParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.aggregator.Month(r.Context(), year, month)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.rangeParams(w, r)
	if !ok {
		return
	}

	result, err := s.aggregator.Range(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

func (s *Server) handleAvailableDates(w http.ResponseWriter, r *http.Request) {
	dates, err := s.store.Dates()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := map[string]any{
		"dates": dates,
		"count": len(dates),
	}
	if len(dates) > 0 {
		resp["earliest"] = dates[0]
		resp["latest"] = dates[len(dates)-1]
	}
	writeJSON(w, resp)
}

// rangeParams parses and validates start_date/end_date, writing the
// error response itself when validation fails.
func (s *Server) rangeParams(w http.ResponseWriter, r *http.Request) (start, end time.Time, ok bool) {
	startParam := r.URL.Query().Get("start_date")
	endParam := r.URL.Query().Get("end_date")
	if startParam == "" || endParam == "" {
		http.Error(w, "start_date and end_date are required", http.StatusBadRequest)
		return start, end, false
	}

	start, err := util.ParseDay(startParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return start, end, false
	}
	end, err = util.ParseDay(endParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return start, end, false
	}
	if err := util.ValidateRange(start, end, s.maxRangeDays); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return start, end, false
	}
	return start, end, true
}
