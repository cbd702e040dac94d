package httpserver

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lazy-eggplant/vs.logger/internal/archive"
	"github.com/lazy-eggplant/vs.logger/internal/bridge"
	"github.com/lazy-eggplant/vs.logger/internal/filter"
	"github.com/lazy-eggplant/vs.logger/internal/ui"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
	"github.com/lazy-eggplant/vs.logger/pkg/vslog"
)

const (
	defaultReadLimit = 100
	maxReadLimit     = 1000
)

// Server exposes the live viewer, the websocket subscriber endpoint and the
// archive read API.
type Server struct {
	registry *bridge.Registry
	archive  *archive.Store // nil when archiving is disabled
	srv      *http.Server
	lis      net.Listener
	logger   logpkg.Logger
	upgrader websocket.Upgrader
}

func New(registry *bridge.Registry, store *archive.Store, logger logpkg.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		registry: registry,
		archive:  store,
		logger:   logger.With(logpkg.Component("http")),
		srv:      &http.Server{Handler: cors(mux)},
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
	mux.Handle("/", http.FileServer(ui.FS()))
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/events", s.handleEvents)
	return s
}

// Handler returns the server's root handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http server listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleWS upgrades the connection and registers it as a live subscriber.
// An optional ?filter= query parameter carries a CEL expression evaluated
// against every envelope before it is forwarded.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	flt, err := filter.Compile(r.URL.Query().Get("filter"))
	if err != nil {
		http.Error(w, "bad filter expression: "+err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	sub := newWSSubscriber(conn, flt)
	id := s.registry.Register(sub)
	s.logger.Debug("subscriber attached", logpkg.Str("id", id), logpkg.Str("remote", conn.RemoteAddr().String()))

	// Drain the connection: subscribers never send application data, but
	// reading is what surfaces peer disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.registry.Unregister(sub)
	_ = sub.Close()
	s.logger.Debug("subscriber detached", logpkg.Str("id", id))
}

type eventsResponse struct {
	Events []vslog.Envelope `json:"events"`
	Next   string           `json:"next,omitempty"`
}

// handleEvents serves pages of archived envelopes. It answers 501 when the
// server runs without an archive.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.archive == nil {
		http.Error(w, "archive disabled", http.StatusNotImplemented)
		return
	}

	q := r.URL.Query()
	opts := archive.ReadOptions{Limit: defaultReadLimit}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "bad limit", http.StatusBadRequest)
			return
		}
		if n > maxReadLimit {
			n = maxReadLimit
		}
		opts.Limit = n
	}
	if v := q.Get("reverse"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			http.Error(w, "bad reverse", http.StatusBadRequest)
			return
		}
		opts.Reverse = b
	}
	switch {
	case q.Get("token") != "":
		raw, err := hex.DecodeString(q.Get("token"))
		if err != nil || len(raw) != len(opts.Start) {
			http.Error(w, "bad token", http.StatusBadRequest)
			return
		}
		copy(opts.Start[:], raw)
	case q.Get("start") != "":
		seq, err := strconv.ParseUint(q.Get("start"), 10, 64)
		if err != nil {
			http.Error(w, "bad start", http.StatusBadRequest)
			return
		}
		opts.Start = archive.TokenFromSeq(seq)
	}

	items, next, err := s.archive.Read(opts)
	if err != nil {
		s.logger.Error("archive read failed", logpkg.Err(err))
		http.Error(w, "archive read failed", http.StatusInternalServerError)
		return
	}
	resp := eventsResponse{Events: make([]vslog.Envelope, 0, len(items))}
	for _, it := range items {
		resp.Events = append(resp.Events, it.Envelope)
	}
	if next != (archive.Token{}) {
		resp.Next = hex.EncodeToString(next[:])
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
