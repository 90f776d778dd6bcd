package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	errorsmod "cosmossdk.io/errors"
	"github.com/gorilla/websocket"

	"github.com/oxygene76/orrery/internal/types"
	"github.com/oxygene76/orrery/pkg/controller"
	"github.com/oxygene76/orrery/pkg/simulation"
	"github.com/oxygene76/orrery/pkg/utils"
)

var (
	// ErrRateLimited is returned when a client sends commands faster than
	// its limiter allows
	ErrRateLimited = errorsmod.Register(simulation.Codespace, 11, "rate limited")
	// ErrMalformed is returned for a message that is not a JSON envelope
	ErrMalformed = errorsmod.Register(simulation.Codespace, 12, "malformed message")
	// ErrEncoding is returned when a reply payload cannot be encoded
	ErrEncoding = errorsmod.Register(simulation.Codespace, 14, "encoding failed")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server streams controller frames to websocket renderers and feeds their
// commands back to the controller.
type Server struct {
	cfg     utils.ServerConfig
	ctrl    *controller.Controller
	hub     *Hub
	metrics *Metrics
	seen    int
}

// New creates a server for ctrl. The metrics should be the observer ctrl
// was built with; nil creates a fresh set.
func New(cfg utils.ServerConfig, ctrl *controller.Controller, metrics *Metrics) *Server {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if cfg.FrameEvery < 1 {
		cfg.FrameEvery = 1
	}
	return &Server{
		cfg:     cfg,
		ctrl:    ctrl,
		hub:     NewHub(metrics),
		metrics: metrics,
	}
}

// Hub returns the client hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler routes /ws, /metrics and /healthz
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWs)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"clients": s.hub.Count()})
	})
	return mux
}

// Publish offers a stepped frame to the hub. Only every FrameEvery-th frame
// is sent, except frames that carry orbit lines or a changed entity list,
// which renderers cannot rebuild from later frames.
func (s *Server) Publish(f *types.Frame) {
	s.seen++
	if s.seen%s.cfg.FrameEvery != 0 && !carriesChanges(f) {
		return
	}
	if s.hub.Count() == 0 {
		return
	}

	data, err := encodeFrame(f)
	if err != nil {
		log.Printf("WS: dropping frame %d: %v", f.Seq, err)
		return
	}
	s.metrics.observeBroadcast(s.hub.Broadcast(data))
}

func carriesChanges(f *types.Frame) bool {
	if f.Addressable != nil {
		return true
	}
	for _, o := range f.Orbits {
		if o.Points != nil {
			return true
		}
	}
	return false
}

func encodeFrame(f *types.Frame) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return json.Marshal(types.Message{Type: types.MessageFrame, Payload: raw})
}

// Run serves HTTP on the configured address and steps the controller until
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)

	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Serving orrery on %s", s.cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- s.ctrl.Run(ctx, s.Publish)
	}()

	var err error
	select {
	case err = <-serveErr:
		if err != nil {
			err = fmt.Errorf("http server: %w", err)
		}
		cancel()
		<-runErr
	case err = <-runErr:
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if serr := httpServer.Shutdown(shutdownCtx); serr != nil {
		log.Printf("Warning: http shutdown: %v", serr)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxClients > 0 && s.hub.Count() >= s.cfg.MaxClients {
		http.Error(w, "too many clients", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WS: upgrade from %s: %v", r.RemoteAddr, err)
		return
	}

	client := newClient(s, conn)
	if !s.hub.add(client) {
		conn.Close()
		return
	}

	go client.writePump()

	// the late joiner needs the orbit lines and the entity list once
	ctx, cancel := context.WithTimeout(r.Context(), commandTimeout)
	snap, err := s.ctrl.Do(ctx, types.Message{Type: controller.CmdSnapshot})
	cancel()
	client.reply(types.Message{Type: controller.CmdSnapshot}, err, snap)

	go client.readPump(context.Background())
}
