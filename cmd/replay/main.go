package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/danielpatrickdp/cem-controller/internal/replay"
	"github.com/danielpatrickdp/cem-controller/internal/status"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	summary := flag.Bool("summary", false, "print aggregate stats after the table")
	flag.Parse()

	paths := flag.Args()
	if *fixturePath != "" {
		paths = append([]string{*fixturePath}, paths...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [more.json ...]")
		os.Exit(2)
	}

	exitCode := 0
	for _, p := range paths {
		if code := runFixture(p, *summary); code > exitCode {
			exitCode = code
		}
	}
	os.Exit(exitCode)
}

// #endregion main

// #region run

func runFixture(path string, summary bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	cfg, err := f.ToReplayConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 2
	}

	results := replay.Replay(f.ToSteps(), cfg)

	fmt.Printf("== %s\n   %s\n\n", path, f.Description)
	code := printComparison(f, results)
	if summary {
		printSummary(replay.Summarize(results))
	}
	fmt.Println()
	return code
}

// #endregion run

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(f *replay.Fixture, results []replay.ReplayResult) int {
	fmt.Printf("%-24s| %-6s| %-22s| %-22s| %s\n", "Step", "Cycle", "Expected", "Replayed", "Match")
	fmt.Printf("%-24s+%-7s+%-23s+%-23s+%s\n",
		"------------------------", "-------", "-----------------------", "-----------------------", "------")

	byID := make(map[string]replay.ReplayResult, len(results))
	for _, r := range results {
		byID[r.StepID] = r
	}
	diffs := make(map[string]bool)
	for _, m := range f.Compare(results) {
		diffs[m.StepID] = true
	}

	for _, want := range f.ExpectedResults {
		got := byID[want.ID]
		match := "OK"
		if diffs[want.ID] {
			match = "DIFF"
		}
		fmt.Printf("%-24s| %-6d| %-22s| %-22s| %s\n",
			want.ID, got.Cycle,
			decision(want.ExperimentalMode, status.Code(want.Status)),
			decision(got.Result.ExperimentalMode, got.Result.Status),
			match)
	}

	total := len(f.ExpectedResults)
	diverge := len(diffs)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", total, total-diverge, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

func printSummary(s replay.ReplaySummary) {
	fmt.Printf("Steps: %d | Cycles: %d | On: %d | Held: %d\n", s.TotalSteps, s.TotalCycles, s.OnSteps, s.Held)
	codes := make([]status.Code, 0, len(s.Codes))
	for c := range s.Codes {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	for _, c := range codes {
		fmt.Printf("  %2d %-22s %d\n", int(c), c, s.Codes[c])
	}
}

func decision(on bool, code status.Code) string {
	mode := "off"
	if on {
		mode = "on"
	}
	return fmt.Sprintf("%s/%s", mode, code)
}

// #endregion output
