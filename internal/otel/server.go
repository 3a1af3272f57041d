package otel

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/emiliopalmerini/claude-usage/internal/store"
)

// Server is the OTLP/HTTP ingest endpoint.
type Server struct {
	receiver *Receiver
	addr     string
}

func NewServer(st *store.Store, addr string) *Server {
	return &Server{
		receiver: NewReceiver(st),
		addr:     addr,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/metrics", s.handleMetrics)
	mux.HandleFunc("POST /v1/logs", s.handleLogs)
	mux.HandleFunc("POST /v1/traces", s.handleTraces)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
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

	log.Printf("starting OTLP receiver on %s", s.addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if err := s.receiver.HandleMetrics(r.Body, r.Header.Get("Content-Type")); err != nil {
		log.Printf("error processing metrics: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if err := s.receiver.HandleLogs(r.Body, r.Header.Get("Content-Type")); err != nil {
		log.Printf("error processing logs: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Traces are accepted so exporters do not error, and discarded.
func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}
