package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	scenarioDir = "../harness/testdata/scenarios"
	goldenDir   = "../harness/testdata/golden"
)

func TestScenario_Testdata(t *testing.T) {
	out, err := execute(t, "scenario", scenarioDir, "--golden", goldenDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ worked_example")
	assert.Contains(t, out, "0 failed")
}

func TestScenario_JSON(t *testing.T) {
	resp, err := executeJSON(t, "scenario", filepath.Join(scenarioDir, "rejections.yaml"))
	require.NoError(t, err)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["total"])
	assert.Equal(t, float64(1), data["passed"])
}

func TestScenario_Filter(t *testing.T) {
	resp, err := executeJSON(t, "scenario", scenarioDir, "--filter", "pot_*")
	require.NoError(t, err)

	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["total"])
}

func TestScenario_Failing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := `
name: bad
description: "wrong pot"
stake: 10
flow:
  - play: alice
    expect:
      error: INSUFFICIENT_FUNDS
      pot: 99
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	out, err := execute(t, "scenario", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bad")
	assert.Contains(t, out, "flow[0].pot: expected 99, got 10")
}

func TestScenario_LoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\n"), 0644))

	out, err := execute(t, "scenario", path)
	require.Error(t, err)
	assert.Contains(t, out, "failed to load scenario")
}

func TestScenario_MissingPath(t *testing.T) {
	_, err := execute(t, "scenario", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestScenario_EmptyDir(t *testing.T) {
	out, err := execute(t, "scenario", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestScenario_UpdateGolden(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")
	src := filepath.Join(scenarioDir, "nonce_wrap.yaml")

	_, err := execute(t, "scenario", src, "--golden", golden, "--update")
	require.NoError(t, err)

	written, err := os.ReadFile(filepath.Join(golden, "nonce_wrap.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(goldenDir, "nonce_wrap.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(written))

	_, err = execute(t, "scenario", src, "--golden", golden)
	require.NoError(t, err)
}

func TestScenario_GoldenMismatch(t *testing.T) {
	golden := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(golden, "nonce_wrap.golden"), []byte("{}\n"), 0644))

	out, err := execute(t, "scenario", filepath.Join(scenarioDir, "nonce_wrap.yaml"), "--golden", golden)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match")
}

func TestScenario_UpdateRequiresGolden(t *testing.T) {
	_, err := execute(t, "scenario", scenarioDir, "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
