package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/danielpatrickdp/cem-controller/internal/engine"
	"github.com/danielpatrickdp/cem-controller/internal/gate"
	"github.com/danielpatrickdp/cem-controller/internal/health"
	"github.com/danielpatrickdp/cem-controller/internal/logging"
	"github.com/danielpatrickdp/cem-controller/internal/params"
	"github.com/danielpatrickdp/cem-controller/internal/status"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to cem_params.db")
	redisURL := flag.String("redis", "", "read/write the status register in Redis instead of the db")
	last := flag.Int("last", 20, "show N most recent transitions")
	session := flag.String("session", "", "filter transitions to one session id")
	press := flag.String("press", "", "simulate a manual press from distance, lkas or screen")
	set := flag.Int("set", -1, "write a raw status code to the register")
	healthAddr := flag.String("health", "", "query a running controller's gRPC health service instead of the db")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if *healthAddr != "" {
		if err := runHealthMode(ctx, *healthAddr); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/cem_params.db [--last N] [--session id] [--press source | --set code] [--redis url] [--json]")
		fmt.Fprintln(os.Stderr, "       inspect --health host:port")
		os.Exit(2)
	}

	store, err := params.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := logging.EnsureSchema(store.DB()); err != nil {
		fmt.Fprintf(os.Stderr, "open transition log: %v\n", err)
		os.Exit(1)
	}

	var reg engine.StatusRegister = store.Register(params.StatusKey)
	if *redisURL != "" {
		r, err := params.NewRedisRegister(ctx, *redisURL, params.StatusKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open redis: %v\n", err)
			os.Exit(1)
		}
		defer r.Close()
		reg = r
	}

	switch {
	case *press != "":
		err = runPressMode(ctx, store, reg, *press)
	case *set >= 0:
		err = runSetMode(ctx, reg, *set)
	default:
		err = runShowMode(ctx, store, reg, *session, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region show-mode

type showOutput struct {
	Status      int             `json:"status"`
	StatusName  string          `json:"status_name"`
	Description string          `json:"description"`
	Params      []paramRow      `json:"params"`
	Transitions []transitionRow `json:"transitions"`
}

type paramRow struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at"`
}

type transitionRow struct {
	SessionID        string          `json:"session_id"`
	Cycle            uint64          `json:"cycle"`
	ExperimentalMode bool            `json:"experimental_mode"`
	Status           int             `json:"status"`
	StatusName       string          `json:"status_name"`
	Rule             string          `json:"rule,omitempty"`
	Path             string          `json:"path"`
	CreatedAt        string          `json:"created_at"`
	Inputs           json.RawMessage `json:"inputs,omitempty"`
}

func runShowMode(ctx context.Context, store *params.Store, reg engine.StatusRegister, session string, last int, jsonOut bool) error {
	v, err := reg.ReadStatus(ctx)
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	code := status.Code(v)

	ps, err := store.List(ctx)
	if err != nil {
		return err
	}
	entries, err := logging.ListTransitions(ctx, store.DB(), session, last)
	if err != nil {
		return err
	}

	out := showOutput{
		Status:      v,
		StatusName:  code.String(),
		Description: code.Description(),
		Params:      make([]paramRow, len(ps)),
		Transitions: make([]transitionRow, len(entries)),
	}
	for i, p := range ps {
		out.Params[i] = paramRow{Key: p.Key, Value: p.Value, UpdatedAt: p.UpdatedAt.Format(time.RFC3339)}
	}
	// store returns newest first, reverse for chronological
	for i, e := range entries {
		row := transitionRow{
			SessionID:        e.SessionID,
			Cycle:            e.Cycle,
			ExperimentalMode: e.ExperimentalMode,
			Status:           e.Status,
			StatusName:       status.Code(e.Status).String(),
			Rule:             e.Rule,
			Path:             e.Path,
			CreatedAt:        e.CreatedAt.Format("2006-01-02T15:04:05.000Z"),
		}
		if e.InputsJSON != "" {
			row.Inputs = json.RawMessage(e.InputsJSON)
		}
		out.Transitions[len(entries)-1-i] = row
	}

	if jsonOut {
		return printJSON(out)
	}
	printShowTable(out)
	return nil
}

func printShowTable(out showOutput) {
	fmt.Printf("%s = %d (%s)\n  %s\n", params.StatusKey, out.Status, out.StatusName, out.Description)

	if len(out.Params) > 0 {
		fmt.Printf("\nParams:\n")
		for _, p := range out.Params {
			fmt.Printf("  %-24s %-12s %s\n", p.Key, p.Value, p.UpdatedAt)
		}
	}

	if len(out.Transitions) == 0 {
		fmt.Println("\nno transitions recorded")
		return
	}
	fmt.Printf("\n%-10s  %8s  %-4s  %-22s  %-12s  %-10s  %s\n",
		"Session", "Cycle", "Mode", "Status", "Rule", "Path", "Time")
	fmt.Printf("%-10s+-%8s+-%-4s+-%-22s+-%-12s+-%-10s+-%s\n",
		"----------", "--------", "----", "----------------------", "------------", "----------", "------------------------")
	for _, r := range out.Transitions {
		mode := "off"
		if r.ExperimentalMode {
			mode = "on"
		}
		rule := r.Rule
		if rule == "" {
			rule = "-"
		}
		fmt.Printf("%-10s  %8d  %-4s  %-22s  %-12s  %-10s  %s\n",
			shortID(r.SessionID), r.Cycle, mode, r.StatusName, rule, r.Path, r.CreatedAt)
	}
}

// #endregion show-mode

// #region press-mode

// runPressMode writes the code a button press from source would publish.
func runPressMode(ctx context.Context, store *params.Store, reg engine.StatusRegister, source string) error {
	src, ok := gate.ParseSource(source)
	if !ok {
		return fmt.Errorf("unknown press source %q (want distance, lkas or screen)", source)
	}
	v, err := reg.ReadStatus(ctx)
	if err != nil {
		return fmt.Errorf("read status: %w", err)
	}
	current := status.Code(v)

	active, err := currentlyActive(ctx, store, current)
	if err != nil {
		return err
	}

	next := gate.Press(current, active, src)
	if err := reg.WriteStatus(ctx, int(next)); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	fmt.Printf("%s: %d (%s) -> %d (%s)\n", params.StatusKey, int(current), current, int(next), next)
	return nil
}

// currentlyActive guesses the controller's decision from the register and the
// transition log. The code alone is ambiguous only for 0, which a held
// standstill can publish while experimental mode is on.
func currentlyActive(ctx context.Context, store *params.Store, current status.Code) (bool, error) {
	switch {
	case current.IsOverride():
		return current.ForcesOn(), nil
	case current.IsRule():
		return true, nil
	}
	latest, err := logging.ListTransitions(ctx, store.DB(), "", 1)
	if err != nil {
		return false, err
	}
	if len(latest) == 0 {
		return false, nil
	}
	return latest[0].ExperimentalMode, nil
}

func runSetMode(ctx context.Context, reg engine.StatusRegister, v int) error {
	if err := reg.WriteStatus(ctx, v); err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	code := status.Code(v)
	fmt.Printf("%s = %d (%s)\n", params.StatusKey, v, code)
	return nil
}

// #endregion press-mode

// #region health-mode

// runHealthMode prints the controller's health check response as JSON.
func runHealthMode(ctx context.Context, addr string) error {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: health.Service})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	out, err := protojson.MarshalOptions{UseProtoNames: true}.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Println(string(out))
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("controller reports %s", resp.GetStatus())
	}
	return nil
}

// #endregion health-mode

// #region helpers

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion helpers
