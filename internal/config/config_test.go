package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, DefaultThreshold, d.Threshold)
	assert.True(t, d.ConditionalCurves)
	assert.True(t, d.ConditionalStoppedLead)
	assert.Equal(t, 8.0, d.ConditionalModelStopTime)
}

func TestLoadJSONKeepsDefaultsForMissingKeys(t *testing.T) {
	p := writeFile(t, t.TempDir(), "toggles.json", `{"conditional_limit": 12.5, "conditional_curves": false}`)

	got, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 12.5, got.ConditionalLimit)
	assert.False(t, got.ConditionalCurves)
	assert.Equal(t, DefaultThreshold, got.Threshold)
	assert.True(t, got.ConditionalLead)
}

func TestLoadYAML(t *testing.T) {
	body := `
conditional_limit: 10
conditional_limit_lead: 7
lane_detection: true
conditional_signal_lane_detection: true
threshold: 0.8
`
	p := writeFile(t, t.TempDir(), "toggles.yaml", body)

	got, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, 10.0, got.ConditionalLimit)
	assert.Equal(t, 7.0, got.ConditionalLimitLead)
	assert.True(t, got.LaneDetection)
	assert.True(t, got.ConditionalSignalLaneDetection)
	assert.Equal(t, 0.8, got.Threshold)
}

func TestLoadEmptyYAML(t *testing.T) {
	p := writeFile(t, t.TempDir(), "toggles.yml", "")
	got, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: `{"conditional_speed": 3}`},
		{name: "wrong type", body: `{"conditional_curves": "yes"}`},
		{name: "negative limit", body: `{"conditional_limit": -1}`},
		{name: "threshold zero", body: `{"threshold": 0}`},
		{name: "threshold above one", body: `{"threshold": 1.5}`},
		{name: "not an object", body: `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body), ".json")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema")
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "toggles.json", `{"conditional_limit": 5}`)

	w, err := NewWatcher(p, time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 5.0, w.Current().ConditionalLimit)

	assert.False(t, w.Poll(), "unchanged file must not reload")

	writeFile(t, dir, "toggles.json", `{"conditional_limit": 9}`)
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(p, future, future))

	assert.True(t, w.Poll())
	assert.Equal(t, 9.0, w.Current().ConditionalLimit)
}

func TestWatcherKeepsLastGoodToggles(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "toggles.json", `{"conditional_limit": 5}`)

	w, err := NewWatcher(p, time.Millisecond, nil)
	require.NoError(t, err)

	writeFile(t, dir, "toggles.json", `{"conditional_limit": "fast"}`)
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(p, future, future))

	assert.False(t, w.Poll())
	assert.Equal(t, 5.0, w.Current().ConditionalLimit)
}
