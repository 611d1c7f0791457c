// Package server is the tracker backend: JSON endpoints over the entry
// store, sprite files, and a websocket feed of changes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"dexrun/internal/model"

	"github.com/gorilla/mux"
)

// Store is the data the endpoints read and write.
type Store interface {
	InsertEntry(ctx context.Context, e model.NewEntry) error
	TotalPokemon(ctx context.Context) (model.Totals, error)
	Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error)
	Last10(ctx context.Context) ([]model.RecentEntry, error)
	LocationPercentages(ctx context.Context) ([]model.LocationShare, error)
}

// Options configures a Server.
type Options struct {
	// SpriteDir holds gifs/ and shiny_gifs/; empty disables /static/.
	SpriteDir string
	Logger    *log.Logger
}

// Server routes HTTP requests to the store.
type Server struct {
	store  Store
	hub    *hub
	logger *log.Logger
	router *mux.Router
}

// New builds the router.
func New(store Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		store:  store,
		hub:    newHub(logger),
		logger: logger,
		router: mux.NewRouter(),
	}

	r := s.router
	r.HandleFunc("/total_pokemon", s.handleTotal).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/last10", s.handleLast10).Methods(http.MethodGet)
	r.HandleFunc("/location_percentages", s.handleLocations).Methods(http.MethodGet)
	r.HandleFunc("/add_entry", s.handleAddEntry).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.hub.serveWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	if opts.SpriteDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(opts.SpriteDir))))
	}
	r.Use(s.logRequests)
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.hub.closeAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleTotal(w http.ResponseWriter, r *http.Request) {
	totals, err := s.store.TotalPokemon(r.Context())
	if err != nil {
		s.fail(w, "total_pokemon", err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Leaderboard(r.Context())
	if err != nil {
		s.fail(w, "leaderboard", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleLast10(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.Last10(r.Context())
	if err != nil {
		s.fail(w, "last10", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleLocations(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.LocationPercentages(r.Context())
	if err != nil {
		s.fail(w, "location_percentages", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	// FormValue accepts both multipart and urlencoded bodies.
	entry := model.NewEntry{
		Pokemon:  strings.TrimSpace(r.FormValue("pokemon")),
		Location: strings.TrimSpace(r.FormValue("location")),
	}
	if entry.Pokemon == "" {
		writeJSON(w, http.StatusBadRequest, model.AddEntryResult{Error: "pokemon is required"})
		return
	}
	if entry.Location == "" {
		writeJSON(w, http.StatusBadRequest, model.AddEntryResult{Error: "location is required"})
		return
	}

	if err := s.store.InsertEntry(r.Context(), entry); err != nil {
		s.logger.Printf("add_entry: %v", err)
		writeJSON(w, http.StatusInternalServerError, model.AddEntryResult{Error: "failed to add entry"})
		return
	}
	s.logger.Printf("add_entry: %s at %s", entry.Pokemon, entry.Location)
	s.hub.broadcast(event{Type: "entry_added"})
	writeJSON(w, http.StatusOK, model.AddEntryResult{Success: true})
}

func (s *Server) fail(w http.ResponseWriter, endpoint string, err error) {
	s.logger.Printf("%s: %v", endpoint, err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Printf("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
