// Package trackserver exposes the particle-filter tracker over a
// websocket: one connection tracks one vehicle, each inbound GPS fix
// advances its particle population by one step and the current estimate
// is written back. It generalizes the reference codebase's httprouter +
// alice + cors HTTP stack, trimmed to a single listener (no netpoll-based
// epoll proxy — see DESIGN.md for why that layer was dropped) since a
// goroutine-per-connection model is adequate at tracking traffic volumes.
package trackserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config is the listener configuration (§10.5's outbound surface).
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server runs the HTTP/websocket listener in front of a Tracker.
type Server struct {
	log     *zap.Logger
	tracker *Tracker
}

// New builds a Server in front of tracker.
func New(log *zap.Logger, tracker *Tracker) *Server {
	return &Server{log: log, tracker: tracker}
}

// Run starts the listener and blocks until ctx is canceled or the listener
// fails, shutting down gracefully on either.
func (s *Server) Run(ctx context.Context, config Config) error {
	router := httprouter.New()
	router.GET("/healthz", s.handleHealthz)
	router.GET("/ws", s.handleWebsocket)

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	mwChain := alice.New(corsHandler.Handler, s.recoverPanic, RealIP, Logger(s.log)).Then(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: mwChain,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("tracker server listening", zap.Int("port", config.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("tracker server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
