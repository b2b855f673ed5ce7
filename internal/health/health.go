package health

import (
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the gRPC health service name the controller reports under.
const Service = "cem"

// DefaultFailureLimit is how many consecutive register failures flip the
// service to NOT_SERVING.
const DefaultFailureLimit = 10

// #region reporter
// Reporter tracks status register health and mirrors it into a gRPC health
// server. It is safe for concurrent use.
type Reporter struct {
	mu       sync.Mutex
	server   *health.Server
	limit    int
	failures int
	serving  bool
}

// NewReporter creates a reporter that starts SERVING.
func NewReporter(limit int) *Reporter {
	if limit <= 0 {
		limit = DefaultFailureLimit
	}
	r := &Reporter{server: health.NewServer(), limit: limit}
	r.setServing(true)
	return r
}

// RegisterOK records a cycle whose register calls all succeeded.
func (r *Reporter) RegisterOK() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = 0
	if !r.serving {
		r.setServing(true)
	}
}

// RegisterFailed records a cycle with at least one failed register call.
func (r *Reporter) RegisterFailed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
	if r.serving && r.failures >= r.limit {
		r.setServing(false)
	}
}

// Serving reports the current state.
func (r *Reporter) Serving() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.serving
}

// Register attaches the health service to s.
func (r *Reporter) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, r.server)
}

// Shutdown marks every service NOT_SERVING.
func (r *Reporter) Shutdown() {
	r.server.Shutdown()
}

// setServing must be called with mu held.
func (r *Reporter) setServing(ok bool) {
	r.serving = ok
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	r.server.SetServingStatus(Service, st)
	r.server.SetServingStatus("", st)
}

// #endregion reporter
