package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/cem-controller/internal/config"
	"github.com/danielpatrickdp/cem-controller/internal/detect"
	"github.com/danielpatrickdp/cem-controller/internal/eval"
	"github.com/danielpatrickdp/cem-controller/internal/gate"
	"github.com/danielpatrickdp/cem-controller/internal/logging"
	"github.com/danielpatrickdp/cem-controller/internal/metrics"
	"github.com/danielpatrickdp/cem-controller/internal/signals"
	"github.com/danielpatrickdp/cem-controller/internal/status"
)

// #region engine
// Engine decides once per control cycle whether experimental mode should be
// on. It is not safe for concurrent Update calls; each latch has exactly one
// writer inside Update.
type Engine struct {
	register  StatusRegister
	gate      *gate.Gate
	evaluator *eval.Evaluator
	curve     *detect.CurveDetector
	stop      *detect.StopDetector

	slowLead     bool
	experimental bool
	status       status.Code
	cycle        uint64

	registerTimeout time.Duration
	sessionID       string
	logger          *slog.Logger
	recorder        TransitionRecorder
	health          HealthReporter

	readFailing  bool
	writeFailing bool
}

// New creates an engine publishing through register.
func New(register StatusRegister, opts Options) *Engine {
	opts = opts.withDefaults()
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	return &Engine{
		register:        register,
		gate:            gate.NewGate(),
		evaluator:       eval.NewDefaultEvaluator(),
		curve:           detect.NewCurveDetector(opts.CurveWindow),
		stop:            detect.NewStopDetector(opts.StopWindow),
		registerTimeout: opts.RegisterTimeout,
		sessionID:       sessionID,
		logger:          opts.Logger.With("component", "cem_engine", "session", sessionID),
		recorder:        opts.Recorder,
		health:          opts.Health,
	}
}

// #endregion engine

// #region update
// Update runs one cycle over frame f with toggles t.
//
// The register is read first (only when manual presses are enabled). Unless
// an override code or standstill holds the decision, the detectors are
// stepped, the rule chain picks a decision, and the resulting code (or 0) is
// written back to the register. Each register call is bounded by the
// register timeout, and the health reporter hears about the cycle once: it
// failed if any register call failed.
func (e *Engine) Update(ctx context.Context, f signals.Frame, t config.Toggles) Result {
	start := time.Now()
	defer func() { metrics.UpdateDuration.Observe(time.Since(start).Seconds()) }()

	e.cycle++
	prevMode, prevStatus := e.experimental, e.status
	t.Threshold = threshold(t.Threshold)

	code := status.None
	registerOK := true
	if t.ExperimentalModeViaPress {
		code, registerOK = e.readStatus(ctx)
	}

	d := e.gate.Evaluate(code, f.Car.Standstill, e.experimental)
	res := Result{Path: d.Reason}

	if !d.Held {
		e.updateConditions(f, t)
		ev := e.evaluator.Evaluate(eval.Conditions{
			Frame:             f,
			Toggles:           t,
			CurveDetected:     e.curve.Detected,
			SlowLeadDetected:  e.slowLead,
			StopLightDetected: e.stop.Detected,
		})
		e.experimental = ev.Active
		e.status = ev.Code
		if !e.writeStatus(ctx, int(e.status)) {
			registerOK = false
		}

		res.Rule = ev.Rule
		if ev.Active {
			metrics.RuleFiredTotal.WithLabelValues(ev.Rule).Inc()
		}
	} else {
		e.experimental = d.Active
		e.status = code
		if d.SuppressStopLight {
			e.stop.Suppress()
		}
	}

	res.ExperimentalMode = e.experimental
	res.Status = e.status
	res.CurveDetected = e.curve.Detected
	res.SlowLeadDetected = e.slowLead
	res.StopLightDetected = e.stop.Detected

	e.reportHealth(registerOK)
	e.observe(res)
	if e.experimental != prevMode || e.status != prevStatus {
		e.transition(ctx, f, res)
	}
	return res
}

// updateConditions steps the detectors in dependency order: the stop
// detector reads this cycle's curve latch.
func (e *Engine) updateConditions(f signals.Frame, t config.Toggles) {
	v := f.Car.VEgo
	curve := e.curve.Update(f.Planner.RoadCurvature, v, t.Threshold)

	e.slowLead = detect.SlowLead(
		detect.LeadInput{
			Tracking:   f.Planner.TrackingLead,
			SlowerLead: f.Planner.SlowerLead,
			VLead:      f.VLead,
		},
		detect.LeadToggles{
			SlowerLead:  t.ConditionalSlowerLead,
			StoppedLead: t.ConditionalStoppedLead,
		},
	)

	e.stop.Update(detect.StopInput{
		CurveDetected: curve,
		TrackingLead:  f.Planner.TrackingLead,
		ModelLength:   f.Planner.ModelLength,
		ModelStopped:  f.Planner.ModelStopped,
		VEgo:          v,
		StopTime:      t.ConditionalModelStopTime,
	}, t.Threshold)
}

// #endregion update

// #region register-io
// readStatus treats any failure as "no override" so the loop keeps running.
func (e *Engine) readStatus(ctx context.Context) (status.Code, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.registerTimeout)
	defer cancel()

	v, err := e.register.ReadStatus(ctx)
	if err != nil {
		metrics.RegisterErrors.WithLabelValues("read").Inc()
		if !e.readFailing {
			e.logger.Warn("status register read failed, assuming no override", "error", err)
		}
		e.readFailing = true
		return status.None, false
	}
	if e.readFailing {
		e.logger.Info("status register read recovered")
		e.readFailing = false
	}
	return status.Code(v), true
}

// writeStatus logs and drops failures; the next cycle writes again.
func (e *Engine) writeStatus(ctx context.Context, v int) bool {
	ctx, cancel := context.WithTimeout(ctx, e.registerTimeout)
	defer cancel()

	if err := e.register.WriteStatus(ctx, v); err != nil {
		metrics.RegisterErrors.WithLabelValues("write").Inc()
		if !e.writeFailing {
			e.logger.Warn("status register write failed", "status", v, "error", err)
		}
		e.writeFailing = true
		return false
	}
	if e.writeFailing {
		e.logger.Info("status register write recovered")
		e.writeFailing = false
	}
	return true
}

func (e *Engine) reportHealth(ok bool) {
	if e.health == nil {
		return
	}
	if ok {
		e.health.RegisterOK()
	} else {
		e.health.RegisterFailed()
	}
}

// threshold falls back to the default outside (0, 1]. A zero threshold
// would latch both detectors on an empty window.
func threshold(v float64) float64 {
	if v <= 0 || v > 1 {
		return config.DefaultThreshold
	}
	return v
}

// #endregion register-io

// #region observe
func (e *Engine) observe(res Result) {
	metrics.CyclesTotal.WithLabelValues(res.Path).Inc()
	metrics.ExperimentalMode.Set(metrics.BoolGauge(res.ExperimentalMode))
	metrics.StatusCode.Set(float64(res.Status))
	metrics.DetectorLatched.WithLabelValues("curve").Set(metrics.BoolGauge(res.CurveDetected))
	metrics.DetectorLatched.WithLabelValues("slow_lead").Set(metrics.BoolGauge(res.SlowLeadDetected))
	metrics.DetectorLatched.WithLabelValues("stop_light").Set(metrics.BoolGauge(res.StopLightDetected))
}

func (e *Engine) transition(ctx context.Context, f signals.Frame, res Result) {
	metrics.TransitionsTotal.Inc()
	e.logger.Info("experimental mode transition",
		"cycle", e.cycle,
		"experimental_mode", res.ExperimentalMode,
		"status", res.Status.String(),
		"rule", res.Rule,
		"path", res.Path,
	)
	if e.recorder == nil {
		return
	}

	inputs, err := json.Marshal(f)
	if err != nil {
		e.logger.Warn("marshal transition inputs failed", "error", err)
	}
	err = e.recorder.Record(ctx, logging.TransitionEntry{
		SessionID:        e.sessionID,
		Cycle:            e.cycle,
		ExperimentalMode: res.ExperimentalMode,
		Status:           int(res.Status),
		Rule:             res.Rule,
		Path:             res.Path,
		InputsJSON:       string(inputs),
	})
	if err != nil {
		e.logger.Warn("record transition failed", "error", err)
	}
}

// #endregion observe

// #region accessors
// ExperimentalMode returns the latest decision.
func (e *Engine) ExperimentalMode() bool { return e.experimental }

// Status returns the latest status code.
func (e *Engine) Status() status.Code { return e.status }

// CurveDetected returns the curve latch.
func (e *Engine) CurveDetected() bool { return e.curve.Detected }

// SlowLeadDetected returns the slow-lead flag from the last evaluated cycle.
func (e *Engine) SlowLeadDetected() bool { return e.slowLead }

// StopLightDetected returns the stop-light latch.
func (e *Engine) StopLightDetected() bool { return e.stop.Detected }

// Cycle returns how many cycles have run.
func (e *Engine) Cycle() uint64 { return e.cycle }

// SessionID returns the id stamped on recorded transitions.
func (e *Engine) SessionID() string { return e.sessionID }

// #endregion accessors
