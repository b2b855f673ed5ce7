package replay

import (
	"context"
	"io"
	"log/slog"

	"github.com/danielpatrickdp/cem-controller/internal/config"
	"github.com/danielpatrickdp/cem-controller/internal/engine"
	"github.com/danielpatrickdp/cem-controller/internal/gate"
	"github.com/danielpatrickdp/cem-controller/internal/params"
	"github.com/danielpatrickdp/cem-controller/internal/signals"
	"github.com/danielpatrickdp/cem-controller/internal/status"
)

// #region types
// Step is one recorded input, optionally held for several cycles.
type Step struct {
	ID       string
	Override *int // written to the register before the first cycle of the step
	Repeat   int  // cycles to run the frame for; values below 1 mean 1
	Frame    signals.Frame
}

// ReplayConfig bundles toggles and engine sizing for a replay run.
type ReplayConfig struct {
	Toggles       config.Toggles
	CurveWindow   int
	StopWindow    int
	InitialStatus int
}

// DefaultReplayConfig returns stock toggles and default windows.
func DefaultReplayConfig() ReplayConfig {
	return ReplayConfig{Toggles: config.Default()}
}

// ReplayResult captures the engine state after the last cycle of a step.
type ReplayResult struct {
	StepID   string
	Cycle    uint64
	Result   engine.Result
	Register int // register contents after the step
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	TotalSteps  int
	TotalCycles uint64
	OnSteps     int
	Held        int
	Codes       map[status.Code]int
}

// #endregion types

// #region replay
// Replay feeds steps through a fresh engine backed by an in-memory register.
func Replay(steps []Step, cfg ReplayConfig) []ReplayResult {
	reg := params.NewMemoryRegister(cfg.InitialStatus)
	eng := engine.New(reg, engine.Options{
		CurveWindow: cfg.CurveWindow,
		StopWindow:  cfg.StopWindow,
		SessionID:   "replay",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	ctx := context.Background()
	results := make([]ReplayResult, 0, len(steps))
	for _, s := range steps {
		if s.Override != nil {
			reg.Set(*s.Override)
		}
		n := s.Repeat
		if n < 1 {
			n = 1
		}
		var res engine.Result
		for i := 0; i < n; i++ {
			res = eng.Update(ctx, s.Frame, cfg.Toggles)
		}
		results = append(results, ReplayResult{
			StepID:   s.ID,
			Cycle:    eng.Cycle(),
			Result:   res,
			Register: reg.Value(),
		})
	}
	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{
		TotalSteps: len(results),
		Codes:      make(map[status.Code]int),
	}
	for _, r := range results {
		s.TotalCycles = r.Cycle
		if r.Result.ExperimentalMode {
			s.OnSteps++
		}
		if r.Result.Path != gate.ReasonEvaluate {
			s.Held++
		}
		s.Codes[r.Result.Status]++
	}
	return s
}

// #endregion replay
