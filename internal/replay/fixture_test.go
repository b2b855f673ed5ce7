package replay

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// #region fixture-tests

func runFixture(t *testing.T, name string) {
	t.Helper()
	f, err := LoadFixture(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	cfg, err := f.ToReplayConfig()
	if err != nil {
		t.Fatalf("ToReplayConfig: %v", err)
	}

	results := Replay(f.ToSteps(), cfg)

	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}
	for i, expected := range f.ExpectedResults {
		if results[i].StepID != expected.ID {
			t.Errorf("step %d: expected id=%s, got %s", i, expected.ID, results[i].StepID)
		}
	}
	for _, m := range f.Compare(results) {
		t.Errorf("%s", m)
	}
}

// TestFixture_DriveSession walks every rule the default toggles can reach.
// If smoothing windows, thresholds or rule order drift, this catches it.
func TestFixture_DriveSession(t *testing.T) {
	runFixture(t, "drive_session.json")
}

// TestFixture_OverrideSession covers presses pinning the decision and
// standstill stickiness.
func TestFixture_OverrideSession(t *testing.T) {
	runFixture(t, "override_session.json")
}

func TestFixture_TogglesOverlayDefaults(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "drive_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	cfg, err := f.ToReplayConfig()
	if err != nil {
		t.Fatalf("ToReplayConfig: %v", err)
	}
	if cfg.Toggles.ConditionalLimit != 10 {
		t.Errorf("expected conditional_limit=10, got %v", cfg.Toggles.ConditionalLimit)
	}
	if !cfg.Toggles.ConditionalCurves {
		t.Error("expected conditional_curves to keep its default")
	}
	if cfg.Toggles.Threshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %v", cfg.Toggles.Threshold)
	}
	if cfg.CurveWindow != 5 || cfg.StopWindow != 5 {
		t.Errorf("expected windows 5/5, got %d/%d", cfg.CurveWindow, cfg.StopWindow)
	}
}

func TestFixture_BadToggles(t *testing.T) {
	f, err := ParseFixture([]byte(`{
		"description": "bad toggles",
		"toggles": {"conditional_limit": "fast"},
		"steps": [{"id": "a", "frame": {}}],
		"expected_results": []
	}`))
	if err != nil {
		t.Fatalf("ParseFixture: %v", err)
	}
	if _, err := f.ToReplayConfig(); err == nil {
		t.Fatal("expected toggles validation error, got nil")
	}
}

func TestCompare_MissingStep(t *testing.T) {
	f := &Fixture{ExpectedResults: []FixtureExpectedResult{{ID: "ghost", ExperimentalMode: true, Status: 8}}}
	got := f.Compare(nil)
	if len(got) != 1 {
		t.Fatalf("expected 1 mismatch, got %d", len(got))
	}
	if !strings.HasPrefix(got[0].String(), "ghost:") {
		t.Errorf("unexpected mismatch text %q", got[0].String())
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestParseFixture_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"missing steps":     `{"description": "x", "expected_results": []}`,
		"unknown key":       `{"description": "x", "steps": [{"id": "a", "frame": {}}], "expected_results": [], "extra": 1}`,
		"zero repeat":       `{"description": "x", "steps": [{"id": "a", "repeat": 0, "frame": {}}], "expected_results": []}`,
		"negative status":   `{"description": "x", "steps": [{"id": "a", "frame": {}}], "expected_results": [{"id": "a", "experimental_mode": false, "status": -1}]}`,
		"empty step id":     `{"description": "x", "steps": [{"id": "", "frame": {}}], "expected_results": []}`,
		"zero curve window": `{"description": "x", "engine": {"curve_window": 0}, "steps": [{"id": "a", "frame": {}}], "expected_results": []}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFixture([]byte(doc))
			if err == nil {
				t.Fatal("expected schema error, got nil")
			}
			if !strings.HasPrefix(err.Error(), "schema:") {
				t.Errorf("expected schema error, got %v", err)
			}
		})
	}
}

// #endregion fixture-tests
