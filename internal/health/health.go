// Package health exposes a small HTTP surface for liveness probes and
// operator status checks.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// Stats is the slice of the statistics tracker the status page needs.
type Stats interface {
	TotalPosts() int
	ActiveUsers() int
}

type Server struct {
	httpServer       *http.Server
	stats            Stats
	autopostEnabled  bool
	autopostInterval time.Duration
	started          time.Time
}

func NewServer(addr string, stats Stats, autopostInterval time.Duration, autopostEnabled bool) *Server {
	s := &Server{
		stats:            stats,
		autopostEnabled:  autopostEnabled,
		autopostInterval: autopostInterval,
		started:          time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.httpServer = &http.Server{Addr: addr, Handler: router}
	return s
}

// Start serves in the background; ListenAndServe failures are logged,
// not fatal, since the bot works without the health listener.
func (s *Server) Start() {
	go func() {
		log.Printf("Health server listening on %s", s.httpServer.Addr)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Health server error: %v", err)
		}
	}()
}

func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

type statusResponse struct {
	Status           string `json:"status"`
	UptimeSeconds    int    `json:"uptime_seconds"`
	TotalPosts       int    `json:"total_posts"`
	ActiveUsers      int    `json:"active_users"`
	AutopostEnabled  bool   `json:"autopost_enabled"`
	AutopostInterval string `json:"autopost_interval"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, statusResponse{
		Status:           "ok",
		UptimeSeconds:    int(time.Since(s.started).Seconds()),
		TotalPosts:       s.stats.TotalPosts(),
		ActiveUsers:      s.stats.ActiveUsers(),
		AutopostEnabled:  s.autopostEnabled,
		AutopostInterval: s.autopostInterval.String(),
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Could not write health response: %v", err)
	}
}
