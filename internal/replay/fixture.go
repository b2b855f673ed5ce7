package replay

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/danielpatrickdp/cem-controller/internal/config"
	"github.com/danielpatrickdp/cem-controller/internal/signals"
)

//go:embed schema.json
var fixtureSchemaJSON string

const fixtureSchemaURL = "fixture.schema.json"

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Toggles         json.RawMessage         `json:"toggles,omitempty"`
	Engine          FixtureEngine           `json:"engine"`
	InitialStatus   int                     `json:"initial_status"`
	Steps           []FixtureStep           `json:"steps"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureEngine sizes the engine's smoothers.
type FixtureEngine struct {
	CurveWindow int `json:"curve_window"`
	StopWindow  int `json:"stop_window"`
}

// FixtureStep mirrors replay.Step with JSON tags.
type FixtureStep struct {
	ID       string        `json:"id"`
	Override *int          `json:"override,omitempty"`
	Repeat   int           `json:"repeat,omitempty"`
	Frame    signals.Frame `json:"frame"`
}

// FixtureExpectedResult captures the expected decision after a step.
type FixtureExpectedResult struct {
	ID               string `json:"id"`
	ExperimentalMode bool   `json:"experimental_mode"`
	Status           int    `json:"status"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads, validates and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture validates data against the fixture schema and decodes it.
func ParseFixture(data []byte) (*Fixture, error) {
	schema, err := compileFixtureSchema()
	if err != nil {
		return nil, err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}

	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &f, nil
}

// ToSteps converts fixture steps to domain steps.
func (f *Fixture) ToSteps() []Step {
	steps := make([]Step, len(f.Steps))
	for i, fs := range f.Steps {
		steps[i] = Step{
			ID:       fs.ID,
			Override: fs.Override,
			Repeat:   fs.Repeat,
			Frame:    fs.Frame,
		}
	}
	return steps
}

// ToReplayConfig converts the fixture's toggles and engine block. Toggles are
// validated like a toggles file and missing keys keep their defaults.
func (f *Fixture) ToReplayConfig() (ReplayConfig, error) {
	t := config.Default()
	if len(f.Toggles) > 0 {
		parsed, err := config.Parse(f.Toggles, ".json")
		if err != nil {
			return ReplayConfig{}, fmt.Errorf("fixture toggles: %w", err)
		}
		t = parsed
	}
	return ReplayConfig{
		Toggles:       t,
		CurveWindow:   f.Engine.CurveWindow,
		StopWindow:    f.Engine.StopWindow,
		InitialStatus: f.InitialStatus,
	}, nil
}

// Mismatch describes one step whose outcome differs from the fixture.
type Mismatch struct {
	StepID string
	Want   FixtureExpectedResult
	Got    ReplayResult
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: expected experimental_mode=%v status=%d, got experimental_mode=%v status=%d (rule=%q path=%s)",
		m.StepID, m.Want.ExperimentalMode, m.Want.Status,
		m.Got.Result.ExperimentalMode, int(m.Got.Result.Status), m.Got.Result.Rule, m.Got.Result.Path)
}

// Compare matches results against the fixture's expectations by step id.
// Expectations naming unknown steps are reported with an empty Got.
func (f *Fixture) Compare(results []ReplayResult) []Mismatch {
	byID := make(map[string]ReplayResult, len(results))
	for _, r := range results {
		byID[r.StepID] = r
	}
	var out []Mismatch
	for _, want := range f.ExpectedResults {
		got, ok := byID[want.ID]
		if !ok || got.Result.ExperimentalMode != want.ExperimentalMode || int(got.Result.Status) != want.Status {
			out = append(out, Mismatch{StepID: want.ID, Want: want, Got: got})
		}
	}
	return out
}

// #endregion fixture-loader

// #region helpers
func compileFixtureSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(fixtureSchemaURL, strings.NewReader(fixtureSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(fixtureSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// #endregion helpers
