package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/LdDl/crowd-tracker/mot"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioInput = `{"frame": 1, "detections": [{"bbox": [0, 0, 10, 10], "confidence": 0.9, "class": "person"}]}
{"frame": 2, "detections": [{"bbox": [2, 0, 12, 10], "confidence": 0.8, "class": "person"}]}
this line is not json

{"frame": 4, "detections": []}
`

func confidence(v float64) *float64 {
	return &v
}

func decodeOutput(t *testing.T, data string) []frameOutput {
	t.Helper()
	frames := make([]frameOutput, 0)
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		var frame frameOutput
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &frame))
		frames = append(frames, frame)
	}
	require.NoError(t, scanner.Err())
	return frames
}

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, stdin string, args ...string) (stdout, stderr string, err error) {
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}

func TestReplay(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tracker, err := mot.NewTrackerDefault(mot.WithLogger(logger))
	require.NoError(t, err)

	var out bytes.Buffer
	summary, err := Replay(strings.NewReader(scenarioInput), &out, tracker, logger)
	require.NoError(t, err)
	assert.Equal(t, Summary{Frames: 4, Identities: 1, Malformed: 1}, summary)
	assert.Contains(t, logs.String(), "malformed frame")

	expected := []frameOutput{
		{Frame: 1, Tracks: []trackOutput{{ID: 1, BBox: [4]int{0, 0, 10, 10}, Class: "person", Confidence: confidence(0.9), Label: "ID:1 person 0.90", State: "active"}}},
		{Frame: 2, Tracks: []trackOutput{{ID: 1, BBox: [4]int{2, 0, 12, 10}, Class: "person", Confidence: confidence(0.8), Label: "ID:1 person 0.80", State: "active"}}},
		{Frame: 3, Tracks: []trackOutput{{ID: 1, BBox: [4]int{2, 0, 12, 10}, Class: "person", Label: "ID:1 person", State: "stale"}}},
		{Frame: 4, Tracks: []trackOutput{{ID: 1, BBox: [4]int{2, 0, 12, 10}, Class: "person", Label: "ID:1 person", State: "stale"}}},
	}
	if diff := cmp.Diff(expected, decodeOutput(t, out.String())); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
	assert.Contains(t, out.String(), `"confidence":null`)
}

func TestReplayDropsOnlyMalformedDetections(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tracker, err := mot.NewTrackerDefault(mot.WithLogger(logger))
	require.NoError(t, err)

	input := `{"frame": 0, "detections": [{"bbox": [0, 0, 10, 10], "confidence": 0.9, "class": "person"}, {"bbox": [0, 0, 10, 10, 99], "confidence": 0.9, "class": "person"}, {"bbox": "x", "confidence": 0.9, "class": "person"}, {"bbox": [0, 0, 10], "confidence": 0.9, "class": "person"}, {"bbox": [300.5, 0, 320.9, 10], "confidence": 0.7, "class": "person"}]}
{"detections": []}
`
	var out bytes.Buffer
	summary, err := Replay(strings.NewReader(input), &out, tracker, logger)
	require.NoError(t, err)
	assert.Equal(t, Summary{Frames: 2, Identities: 2, Malformed: 0, Skipped: 3}, summary)
	assert.Contains(t, logs.String(), "malformed detection")

	// Explicit frame 0 is kept, missing frame number falls back to line count.
	// Fractional coordinates are truncated.
	expected := []frameOutput{
		{Frame: 0, Tracks: []trackOutput{
			{ID: 1, BBox: [4]int{0, 0, 10, 10}, Class: "person", Confidence: confidence(0.9), Label: "ID:1 person 0.90", State: "active"},
			{ID: 2, BBox: [4]int{300, 0, 320, 10}, Class: "person", Confidence: confidence(0.7), Label: "ID:2 person 0.70", State: "active"},
		}},
		{Frame: 2, Tracks: []trackOutput{
			{ID: 1, BBox: [4]int{0, 0, 10, 10}, Class: "person", Label: "ID:1 person", State: "stale"},
			{ID: 2, BBox: [4]int{300, 0, 320, 10}, Class: "person", Label: "ID:2 person", State: "stale"},
		}},
	}
	if diff := cmp.Diff(expected, decodeOutput(t, out.String())); diff != "" {
		t.Errorf("unexpected output (-want +got):\n%s", diff)
	}
}

func TestDecodeDetection(t *testing.T) {
	det, err := decodeDetection([]byte(`{"bbox": [1.9, 2.2, 30.7, 40], "confidence": 0.5, "class": "person"}`))
	require.NoError(t, err)
	assert.Equal(t, mot.NewDetection(mot.NewBBox(1, 2, 30, 40), 0.5, "person"), det)

	for _, raw := range []string{
		`{"bbox": [0, 0, 10, 10, 99]}`,
		`{"bbox": [0, 0, 10]}`,
		`{"confidence": 0.5}`,
		`{"bbox": [0, 0, 1e300, 10]}`,
		`{"bbox": ["0", 0, 10, 10]}`,
		`[]`,
	} {
		_, err := decodeDetection([]byte(raw))
		assert.Error(t, err, raw)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk is full")
}

func TestReplayWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker, err := mot.NewTrackerDefault(mot.WithLogger(logger))
	require.NoError(t, err)

	_, err = Replay(strings.NewReader(scenarioInput), failingWriter{}, tracker, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk is full")
}

func TestRootCmdFlags(t *testing.T) {
	input := `{"frame": 1, "detections": [{"bbox": [0, 0, 10, 10], "confidence": 0.9, "class": "person"}]}
{"frame": 2, "detections": []}
{"frame": 3, "detections": []}
`
	stdout, stderr, err := executeCommand(newRootCmd(), input, "--max-missed", "1", "--log-format", "json")
	require.NoError(t, err)

	frames := decodeOutput(t, stdout)
	require.Len(t, frames, 3)
	assert.Len(t, frames[0].Tracks, 1)
	assert.Len(t, frames[1].Tracks, 1)
	assert.Empty(t, frames[2].Tracks)

	assert.Contains(t, stderr, `"msg":"replay finished"`)
	assert.Contains(t, stderr, `"identities":1`)
}

func TestRootCmdConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfgData := `tracker:
  max_distance: 5
  max_missed: 2
estimator: kalman2d
log:
  level: warn
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgData), 0o644))

	inPath := filepath.Join(dir, "detections.jsonl")
	input := `{"frame": 1, "detections": [{"bbox": [0, 0, 10, 10], "confidence": 0.9, "class": "person"}]}
{"frame": 2, "detections": [{"bbox": [20, 0, 30, 10], "confidence": 0.9, "class": "person"}]}
`
	require.NoError(t, os.WriteFile(inPath, []byte(input), 0o644))
	outPath := filepath.Join(dir, "tracks.jsonl")

	_, stderr, err := executeCommand(newRootCmd(), "", "--config", cfgPath, "--input", inPath, "--output", outPath)
	require.NoError(t, err)
	assert.NotContains(t, stderr, "replay finished", "info records are below configured level")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	frames := decodeOutput(t, string(data))
	require.Len(t, frames, 2)
	// 20 px shift is beyond the 5 px gate: second identity is created
	require.Len(t, frames[1].Tracks, 2)
	assert.Equal(t, 1, frames[1].Tracks[0].ID)
	assert.Equal(t, "stale", frames[1].Tracks[0].State)
	assert.Equal(t, 2, frames[1].Tracks[1].ID)
}

func TestRootCmdInvalidConfig(t *testing.T) {
	_, _, err := executeCommand(newRootCmd(), "", "--max-distance=-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, mot.ErrInvalidConfig))

	_, _, err = executeCommand(newRootCmd(), "", "--estimator", "particle")
	require.Error(t, err)
	assert.True(t, errors.Is(err, mot.ErrInvalidConfig))
}

func TestConfigDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, mot.DefaultConfig(), cfg.Tracker)
	assert.Equal(t, EstimatorConstantVelocity, cfg.Estimator)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
