package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/phuslu/log"
	"github.com/spf13/pflag"

	"github.com/saranrapjs/quarterly-statements/pkg/config"
	"github.com/saranrapjs/quarterly-statements/pkg/db"
	"github.com/saranrapjs/quarterly-statements/pkg/record"
)

type Server struct {
	db     *db.DB
	logger *log.Logger
}

func NewServer(database *db.DB, logger *log.Logger) *Server {
	return &Server{db: database, logger: logger}
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, db.ErrNotFound) {
		status = http.StatusNotFound
	} else {
		s.logger.Error().Str("path", r.URL.Path).Err(err).Msg("request failed")
	}
	http.Error(w, err.Error(), status)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "healthy"})
}

// handleCompanies handles GET /companies
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.db.ListCompanies()
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to list companies: %w", err))
		return
	}
	if companies == nil {
		companies = []string{}
	}
	s.writeJSON(w, companies)
}

// handleSeries handles GET /companies/{company}/series, optionally limited
// to one fiscal year with ?fy=
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	company := strings.ToUpper(r.PathValue("company"))
	if company == "" {
		http.Error(w, "Company parameter is required", http.StatusBadRequest)
		return
	}

	var fy int
	if v := r.URL.Query().Get("fy"); v != "" {
		var err error
		if fy, err = strconv.Atoi(v); err != nil {
			http.Error(w, fmt.Sprintf("Invalid fiscal year %q", v), http.StatusBadRequest)
			return
		}
	}

	series, err := s.db.GetSeries(company)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if fy != 0 {
		var records []*record.Quarterly
		for _, q := range series.Records {
			if q.FiscalYear == fy {
				records = append(records, q)
			}
		}
		series.Records = records
	}
	if series.Records == nil {
		series.Records = []*record.Quarterly{}
	}
	s.writeJSON(w, series)
}

// handleRun handles GET /runs/{id}
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.db.GetRun(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, run)
}

// logRequests logs each request once it has been served
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Dur("took", time.Since(start)).Msg("request served")
	})
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /companies", s.handleCompanies)
	mux.HandleFunc("GET /companies/{company}/series", s.handleSeries)
	mux.HandleFunc("GET /runs/{id}", s.handleRun)
	return s.logRequests(mux)
}

func main() {
	cfg, err := config.Load("server", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := cfg.Logger(os.Stderr)

	database, err := db.New(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close()

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           NewServer(database, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server failed")
		return
	}
	logger.Info().Msg("server stopped")
}
