package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/cem-controller/internal/config"
	"github.com/danielpatrickdp/cem-controller/internal/engine"
	"github.com/danielpatrickdp/cem-controller/internal/health"
	"github.com/danielpatrickdp/cem-controller/internal/logging"
	"github.com/danielpatrickdp/cem-controller/internal/params"
	"github.com/danielpatrickdp/cem-controller/internal/signals"
)

// register is what the engine needs plus a way to release it.
type register interface {
	engine.StatusRegister
	Close() error
}

// #region main
func main() {
	dbPath := envOr("CEM_DB", "cem_params.db")
	togglesPath := envOr("CEM_TOGGLES", "")
	backend := envOr("CEM_REGISTER", "sqlite")
	redisURL := envOr("CEM_REDIS_URL", "redis://localhost:6379/0")
	healthAddr := envOr("CEM_HEALTH_ADDR", "localhost:50061")
	metricsAddr := envOr("CEM_METRICS_ADDR", "localhost:9161")

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Params store holds the register (sqlite backend) and the transition log
	store, err := params.NewStore(dbPath)
	if err != nil {
		log.Fatalf("failed to open params store: %v", err)
	}
	defer store.Close()

	reg, err := openRegister(ctx, backend, store, redisURL)
	if err != nil {
		log.Fatalf("failed to open %s register: %v", backend, err)
	}
	defer reg.Close()

	sessionID := uuid.New().String()
	recorder, err := logging.NewRecorder(store.DB(), sessionID)
	if err != nil {
		log.Fatalf("failed to prepare transition log: %v", err)
	}

	toggles, err := loadToggles(ctx, togglesPath, logger)
	if err != nil {
		log.Fatalf("failed to load toggles: %v", err)
	}

	reporter := health.NewReporter(health.DefaultFailureLimit)
	grpcServer, err := serveHealth(healthAddr, reporter)
	if err != nil {
		log.Fatalf("failed to start health server on %s: %v", healthAddr, err)
	}
	defer grpcServer.GracefulStop()
	defer reporter.Shutdown()

	metricsServer := serveMetrics(metricsAddr)
	defer metricsServer.Close()

	eng := engine.New(reg, engine.Options{
		SessionID: sessionID,
		Logger:    logger,
		Recorder:  recorder,
		Health:    reporter,
	})

	fmt.Fprintln(os.Stderr, "Conditional experimental mode controller ready.")
	fmt.Fprintf(os.Stderr, "  DB: %s | Register: %s | Health: %s | Metrics: %s | Session: %s\n",
		dbPath, backend, healthAddr, metricsAddr, sessionID)
	fmt.Fprintln(os.Stderr, "Reading one JSON frame per line from stdin.")

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			log.Printf("stdin error: %v", err)
		}
	}()

	enc := json.NewEncoder(os.Stdout)
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case line, ok = <-lines:
			if !ok {
				return
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var frame signals.Frame
		if err := json.Unmarshal([]byte(line), &frame); err != nil {
			log.Printf("bad frame: %v", err)
			continue
		}

		res := eng.Update(ctx, frame, toggles())
		if err := enc.Encode(decision{
			Cycle:            eng.Cycle(),
			ExperimentalMode: res.ExperimentalMode,
			Status:           int(res.Status),
			StatusName:       res.Status.String(),
			Rule:             res.Rule,
			Path:             res.Path,
		}); err != nil {
			log.Printf("write decision: %v", err)
		}
	}
}

// #endregion main

// #region wiring

// decision is one line of controller output.
type decision struct {
	Cycle            uint64 `json:"cycle"`
	ExperimentalMode bool   `json:"experimental_mode"`
	Status           int    `json:"status"`
	StatusName       string `json:"status_name"`
	Rule             string `json:"rule,omitempty"`
	Path             string `json:"path"`
}

func openRegister(ctx context.Context, backend string, store *params.Store, redisURL string) (register, error) {
	switch backend {
	case "sqlite":
		return nopCloser{store.Register(params.StatusKey)}, nil
	case "redis":
		return params.NewRedisRegister(ctx, redisURL, params.StatusKey)
	case "memory":
		return params.NewMemoryRegister(0), nil
	}
	return nil, fmt.Errorf("unknown register backend %q (want sqlite, redis or memory)", backend)
}

// nopCloser leaves closing to the store that owns the register.
type nopCloser struct {
	*params.SQLiteRegister
}

func (nopCloser) Close() error { return nil }

// loadToggles returns a getter for the active toggles. With no file the stock
// toggles are used; otherwise the file is watched for edits.
func loadToggles(ctx context.Context, path string, logger *slog.Logger) (func() config.Toggles, error) {
	if path == "" {
		t := config.Default()
		return func() config.Toggles { return t }, nil
	}
	w, err := config.NewWatcher(path, 0, logger)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("toggles watcher stopped: %v", err)
		}
	}()
	return w.Current, nil
}

func serveHealth(addr string, reporter *health.Reporter) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	s := grpc.NewServer()
	reporter.Register(s)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Printf("health server stopped: %v", err)
		}
	}()
	return s, nil
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server stopped: %v", err)
		}
	}()
	return srv
}

// #endregion wiring

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
