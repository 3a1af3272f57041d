package web

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/emiliopalmerini/claude-usage/internal/sheets"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	start, end, ok := s.rangeParams(w, r)
	if !ok {
		return
	}

	result, err := s.aggregator.Range(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if result.DaysWithData == 0 {
		http.Error(w, "no data available for the specified date range", http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("claude-usage-%s-to-%s.csv", result.PeriodStart, result.PeriodEnd)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	if err := cw.Write(sheets.Headers); err != nil {
		return
	}
	for _, day := range result.Daily {
		if err := cw.Write(sheets.MarshalRow(day)); err != nil {
			return
		}
	}
	cw.Flush()
}
