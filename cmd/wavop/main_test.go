package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/wavop/model"
	"github.com/hupe1980/wavop/record"
)

const small = `
model:
  shape: [20, 15]
  spacing: [10, 10]
  tops: [0, 80]
  velocity: [1.5, 2.5]
geometry:
  source_x: [40, 120]
  source_z: 20
  receivers: {start: 20, end: 170, count: 6, depth: 10}
  dt: 1
  t: 150
wavelet:
  f0: 0.02
resources:
  max_workers: 2
`

func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(small+extra), 0o600))
	return dir, path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestForwardCommand(t *testing.T) {
	records := filepath.Join(t.TempDir(), "records")
	_, path := writeConfig(t, `
options:
  save_data_to_disk: true
  file_path: `+records+`
  file_name: shot
storage:
  compression: lz4
`)

	out, errOut, err := run(t, "forward", "-c", path, "--adjoint", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, out, "2 shots")
	assert.Contains(t, out, "operator full-forward")
	assert.Contains(t, out, "shot 0: 6 traces x 151 samples")
	assert.Contains(t, out, "shot 1: 6 traces x 151 samples")
	assert.Contains(t, out, "adjoint: norm")
	assert.Contains(t, errOut, `wavop_records_written_total{status="ok"} 2`)
	assert.Contains(t, errOut, "wavop_shot_duration_seconds")

	name := record.Name("shot", 40, 0)
	_, err = os.Stat(filepath.Join(records, name))
	require.NoError(t, err)

	out, _, err = run(t, "inspect", filepath.Join(records, name))
	require.NoError(t, err)
	assert.Contains(t, out, name+": shot 0, source (40, 0, 20), 6 traces, nt 151, dt 1, t 150, run ")
}

func TestObjectiveCommand(t *testing.T) {
	_, path := writeConfig(t, "")

	out, _, err := run(t, "objective", "-c", path, "--shots", "0, 1", "--scale", "0.8")
	require.NoError(t, err)
	assert.Contains(t, out, "shots [0 1]: fval ")
	assert.Contains(t, out, "gradient norm")

	out, _, err = run(t, "objective", "-c", path, "--scale", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "shots [0 1]: fval 0, gradient norm 0")
}

func TestCommandErrors(t *testing.T) {
	_, path := writeConfig(t, "")

	_, _, err := run(t, "objective", "-c", path, "--shots", "5")
	assert.Error(t, err)

	_, _, err = run(t, "objective", "-c", path, "--shots", "a")
	assert.ErrorContains(t, err, "shots")

	_, _, err = run(t, "objective", "-c", path, "--scale", "0")
	assert.ErrorContains(t, err, "scale must be positive")

	_, _, err = run(t, "forward", "-c", path, "--log-level", "loud")
	assert.ErrorContains(t, err, "log level")

	_, _, err = run(t, "forward", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, _, err = run(t, "inspect", filepath.Join(t.TempDir(), "nope.segy"))
	assert.ErrorIs(t, err, record.ErrIO)
}

func TestParseShots(t *testing.T) {
	idx, err := parseShots("")
	require.NoError(t, err)
	assert.Nil(t, idx)

	idx, err = parseShots(" 2,0 ,1")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, idx)
}

func TestScaleModelKeepsDensity(t *testing.T) {
	rho := []float32{1, 2, 3, 4, 5, 6}
	m, err := model.New([]int{3, 2}, []float64{10, 10}, []float64{0, 0},
		[]float32{0.4, 0.4, 0.4, 0.2, 0.2, 0.2}, model.WithDensity(rho), model.WithNBPML(12))
	require.NoError(t, err)

	m0, err := scaleModel(m, 0.5)
	require.NoError(t, err)
	assert.Equal(t, rho, m0.Rho)
	assert.Equal(t, 12, m0.NBPML)
	assert.InDelta(t, 0.1, m0.M[5], 1e-7)
	assert.Equal(t, m.Shape, m0.Shape)
}
