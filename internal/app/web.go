// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jellydator/ttlcache/v3"
	"github.com/olahol/melody"

	"github.com/relabs-tech/glove_computer/internal/config"
	"github.com/relabs-tech/glove_computer/internal/history"
	"github.com/relabs-tech/glove_computer/internal/session"
	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

const latestKey = "latest"

// webServer holds what the dashboard shows: the latest update (expiring
// when the producer goes quiet) and the recent sample history.
type webServer struct {
	latest    *ttlcache.Cache[string, session.Update]
	history   *history.Buffer
	hub       *melody.Melody
	reset     func() error
	staticDir string
	log       *slog.Logger
}

func newWebServer(staleAfter time.Duration, historyLen int, reset func() error) *webServer {
	s := &webServer{
		latest: ttlcache.New[string, session.Update](
			ttlcache.WithTTL[string, session.Update](staleAfter),
			ttlcache.WithDisableTouchOnHit[string, session.Update](),
		),
		history:   history.NewBuffer(historyLen),
		hub:       melody.New(),
		reset:     reset,
		staticDir: "web",
		log:       slog.With("component", "web"),
	}

	s.hub.HandleConnect(func(ms *melody.Session) {
		s.log.Debug("stats socket connected", "remote", ms.Request.RemoteAddr)
		if u, ok := s.current(); ok {
			if b, err := json.Marshal(u); err == nil {
				_ = ms.Write(b)
			}
		}
	})
	s.hub.HandleDisconnect(func(ms *melody.Session) {
		s.log.Debug("stats socket disconnected", "remote", ms.Request.RemoteAddr)
	})
	s.hub.HandleError(func(ms *melody.Session, err error) {
		s.log.Debug("stats socket error", "remote", ms.Request.RemoteAddr, "error", err)
	})
	return s
}

// ingest records an update from the producer. A reset clears the history.
func (s *webServer) ingest(u session.Update) {
	if u.Kind == session.KindReset {
		s.history.Clear()
	} else {
		s.history.Push(history.Point{Time: u.Time, Accel: u.Accel, Force: u.Force, State: u.State})
	}
	s.latest.Set(latestKey, u, ttlcache.DefaultTTL)

	b, err := json.Marshal(u)
	if err != nil {
		s.log.Error("failed to marshal update", "error", err)
		return
	}
	if err := s.hub.Broadcast(b); err != nil {
		s.log.Debug("stats broadcast failed", "error", err)
	}
}

// current returns the latest update unless it is older than the stale
// window.
func (s *webServer) current() (session.Update, bool) {
	item := s.latest.Get(latestKey)
	if item == nil || item.IsExpired() {
		return session.Update{}, false
	}
	return item.Value(), true
}

func (s *webServer) routes() http.Handler {
	router := mux.NewRouter().StrictSlash(false)

	api := router.PathPrefix("/api").Subrouter()
	api.Path("/stats").HandlerFunc(s.handleStats).Methods(http.MethodGet)
	api.Path("/history").HandlerFunc(s.handleHistory).Methods(http.MethodGet)
	api.Path("/reset").HandlerFunc(s.handleReset).Methods(http.MethodPost)

	router.Path("/ws/stats").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.hub.HandleRequest(w, r)
	})
	router.Path("/ws/control").HandlerFunc(s.handleControlWS)

	// Static files from ./web as the root
	router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))

	var h http.Handler = router
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
}

func (s *webServer) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	s.log.Debug("http request",
		"method", p.Request.Method, "uri", p.URL.RequestURI(),
		"status", p.StatusCode, "size", p.Size)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "error", err)
	}
}

// handleStats serves GET /api/stats: the latest update, or 503 when none
// arrived within STATS_STALE_AFTER.
func (s *webServer) handleStats(w http.ResponseWriter, r *http.Request) {
	u, ok := s.current()
	if !ok {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type historyResponse struct {
	Points  []history.Point `json:"points"`
	Summary history.Summary `json:"summary"`
}

func (s *webServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	points := s.history.Points()
	summary, err := history.Summarize(points)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{Points: points, Summary: summary})
}

func (s *webServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.reset(); err != nil {
		s.log.Warn("reset failed", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.log.Info("reset requested", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusAccepted, map[string]string{"command": telemetry.CommandReset})
}

// RunWeb serves the dashboard API on WEB_SERVER_PORT, fed from TOPIC_STATS.
// Resets are forwarded to the producer on TOPIC_COMMAND.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer telemetry.Disconnect(client)

	s := newWebServer(config.Millis(cfg.StatsStaleAfter), cfg.HistoryLength, func() error {
		return telemetry.PublishCommand(client, cfg.TopicCommand, telemetry.CommandReset)
	})
	go s.latest.Start()
	defer s.latest.Stop()
	defer s.hub.Close()

	if err := telemetry.SubscribeUpdates(client, cfg.TopicStats, s.ingest); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("web server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
