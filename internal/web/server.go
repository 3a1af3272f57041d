// Package web serves the statistics and export API consumed by the
// dashboard.
package web

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/stats"
	"github.com/emiliopalmerini/claude-usage/internal/store"
)

type Server struct {
	router       *http.ServeMux
	aggregator   *stats.Aggregator
	store        *store.Store
	addr         string
	maxRangeDays int
}

func NewServer(addr string, agg *stats.Aggregator, st *store.Store, maxRangeDays int) *Server {
	s := &Server{
		router:       http.NewServeMux(),
		aggregator:   agg,
		store:        st,
		addr:         addr,
		maxRangeDays: maxRangeDays,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.router.HandleFunc("GET /api/stats/daily", s.handleDaily)
	s.router.HandleFunc("GET /api/stats/hourly", s.handleHourly)
	s.router.HandleFunc("GET /api/stats/weekly", s.handleWeekly)
	s.router.HandleFunc("GET /api/stats/monthly", s.handleMonthly)
	s.router.HandleFunc("GET /api/stats/range", s.handleRange)
	s.router.HandleFunc("GET /api/stats/available-dates", s.handleAvailableDates)
	s.router.HandleFunc("GET /api/export/csv", s.handleExportCSV)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("stats API listening on %s", s.addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
