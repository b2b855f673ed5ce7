package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielpatrickdp/cem-controller/internal/logging"
	"github.com/danielpatrickdp/cem-controller/internal/smoothing"
	"github.com/danielpatrickdp/cem-controller/internal/status"
)

// #region interfaces
// StatusRegister is the shared single-integer register that carries manual
// overrides in and the active status code out. Implementations must make a
// single read or write atomic; last write wins.
type StatusRegister interface {
	ReadStatus(ctx context.Context) (int, error)
	WriteStatus(ctx context.Context, v int) error
}

// TransitionRecorder persists decision changes.
type TransitionRecorder interface {
	Record(ctx context.Context, entry logging.TransitionEntry) error
}

// HealthReporter hears once per cycle whether the register calls succeeded.
type HealthReporter interface {
	RegisterOK()
	RegisterFailed()
}

// #endregion interfaces

// DefaultRegisterTimeout bounds each status register read or write.
const DefaultRegisterTimeout = 50 * time.Millisecond

// #region options
// Options configures an Engine. Zero values pick defaults.
type Options struct {
	CurveWindow     int // curve smoother capacity
	StopWindow      int // stop smoother capacity
	RegisterTimeout time.Duration
	SessionID       string

	Logger   *slog.Logger
	Recorder TransitionRecorder
	Health   HealthReporter
}

func (o Options) withDefaults() Options {
	if o.CurveWindow <= 0 {
		o.CurveWindow = smoothing.DefaultWindow
	}
	if o.StopWindow <= 0 {
		o.StopWindow = smoothing.DefaultWindow
	}
	if o.RegisterTimeout <= 0 {
		o.RegisterTimeout = DefaultRegisterTimeout
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// #endregion options

// #region result
// Result is the outcome of one cycle.
type Result struct {
	ExperimentalMode bool
	Status           status.Code
	Rule             string // rule that fired, "" when held or inactive
	Path             string // gate path: evaluate, override or standstill

	CurveDetected     bool
	SlowLeadDetected  bool
	StopLightDetected bool
}

// #endregion result
