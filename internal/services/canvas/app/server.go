// Package app wires the canvas runtime and HTTP lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/GusEh06/pixel-battle-lite/internal/platform/config"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/api/httpapi"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/placement"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/projection"
	"github.com/GusEh06/pixel-battle-lite/internal/services/canvas/stats"
	canvassqlite "github.com/GusEh06/pixel-battle-lite/internal/services/canvas/storage/sqlite"
)

type serverEnv struct {
	DBPath          string  `env:"PIXEL_BATTLE_DB_PATH"`
	CanvasWidth     int     `env:"PIXEL_BATTLE_CANVAS_WIDTH" envDefault:"32"`
	CanvasHeight    int     `env:"PIXEL_BATTLE_CANVAS_HEIGHT" envDefault:"32"`
	CooldownSeconds int     `env:"PIXEL_BATTLE_COOLDOWN_SECONDS" envDefault:"30"`
	RedisAddr       string  `env:"PIXEL_BATTLE_REDIS_ADDR"`
	ThrottleRPS     float64 `env:"PIXEL_BATTLE_THROTTLE_RPS"`
	ThrottleBurst   int     `env:"PIXEL_BATTLE_THROTTLE_BURST" envDefault:"10"`
}

func loadServerEnv() serverEnv {
	var cfg serverEnv
	_ = config.ParseEnv(&cfg)
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "canvas.db")
	}
	if cfg.CanvasWidth <= 0 {
		cfg.CanvasWidth = 32
	}
	if cfg.CanvasHeight <= 0 {
		cfg.CanvasHeight = 32
	}
	if cfg.CooldownSeconds < 0 {
		cfg.CooldownSeconds = 0
	}
	return cfg
}

// Server hosts the canvas HTTP API and storage lifecycle.
type Server struct {
	listener    net.Listener
	httpServer  *http.Server
	store       *canvassqlite.Store
	redisClient *redis.Client
}

// New creates a configured canvas server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured canvas server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	env := loadServerEnv()
	store, err := openCanvasStore(env.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	index := projection.NewIndex()
	if err := index.Prime(context.Background(), store); err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, fmt.Errorf("prime canvas projection: %w", err)
	}

	opts := []placement.Option{placement.WithIndex(index)}
	var redisClient *redis.Client
	if strings.TrimSpace(env.RedisAddr) != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: env.RedisAddr})
		opts = append(opts, placement.WithRecorder(stats.NewRedisRecorder(redisClient)))
	} else {
		opts = append(opts, placement.WithRecorder(stats.NewMemoryRecorder()))
	}

	coordinator := placement.New(placement.Config{
		Width:    env.CanvasWidth,
		Height:   env.CanvasHeight,
		Cooldown: time.Duration(env.CooldownSeconds) * time.Second,
	}, store, opts...)

	handler := httpapi.New(coordinator, store, index)
	throttle := httpapi.NewThrottle(env.ThrottleRPS, env.ThrottleBurst)
	root := httpapi.RequestID(httpapi.CORS(throttle.Middleware(handler.Routes())))

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           root,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:       store,
		redisClient: redisClient,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a canvas server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("canvas server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown HTTP server: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve HTTP: %w", err)
	}
}

// Close releases canvas server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Printf("close redis client: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close canvas store: %v", err)
		}
	}
}

func openCanvasStore(path string) (*canvassqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := canvassqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open canvas sqlite store: %w", err)
	}
	return store, nil
}
