package main

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/LdDl/crowd-tracker/mot"
	"github.com/pkg/errors"
)

const maxLineSize = 4 * 1024 * 1024

// frameInput is one line of detector output.
// Detections are decoded one by one so a broken record doesn't cost the rest of the frame.
type frameInput struct {
	Frame      *int              `json:"frame"`
	Detections []json.RawMessage `json:"detections"`
}

// detectionInput is a single detector record; bbox is [x1, y1, x2, y2], fractions are truncated
type detectionInput struct {
	BBox       []float64 `json:"bbox"`
	Confidence float64   `json:"confidence"`
	Class      string    `json:"class"`
}

// frameOutput is one line of tracker output
type frameOutput struct {
	Frame  int           `json:"frame"`
	Tracks []trackOutput `json:"tracks"`
}

type trackOutput struct {
	ID         int      `json:"id"`
	BBox       [4]int   `json:"bbox"`
	Class      string   `json:"class"`
	Confidence *float64 `json:"confidence"`
	Label      string   `json:"label"`
	State      string   `json:"state"`
}

// Summary describes a finished replay
type Summary struct {
	Frames     int
	Identities int
	// Lines which could not be decoded at all
	Malformed int
	// Detection records dropped while decoding
	Skipped int
}

// Replay feeds every frame from in through tracker and writes tracks to out.
// A malformed line is logged and processed as a frame without detections.
// A malformed detection record is logged and dropped, the rest of its frame is kept.
// Only I/O errors stop the replay.
func Replay(in io.Reader, out io.Writer, tracker *mot.Tracker, logger *slog.Logger) (Summary, error) {
	summary := Summary{}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	encoder := json.NewEncoder(out)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		summary.Frames++

		frame, err := decodeFrame(line)
		if err != nil {
			summary.Malformed++
			logger.Warn("malformed frame, processing it without detections", "line", summary.Frames, "error", err)
			frame = frameInput{}
		}
		frameNum := summary.Frames
		if frame.Frame != nil {
			frameNum = *frame.Frame
		}

		detections := make([]mot.Detection, 0, len(frame.Detections))
		for i, raw := range frame.Detections {
			det, err := decodeDetection(raw)
			if err != nil {
				summary.Skipped++
				logger.Warn("malformed detection, skipping it", "frame", frameNum, "index", i, "error", err)
				continue
			}
			detections = append(detections, det)
		}
		results := tracker.Update(detections)

		output := frameOutput{
			Frame:  frameNum,
			Tracks: make([]trackOutput, len(results)),
		}
		for i, res := range results {
			output.Tracks[i] = trackOutput{
				ID:         res.ID,
				BBox:       [4]int{res.BBox.X1, res.BBox.Y1, res.BBox.X2, res.BBox.Y2},
				Class:      res.Class,
				Confidence: res.Confidence,
				Label:      res.Label(),
				State:      res.State.String(),
			}
		}
		if err := encoder.Encode(output); err != nil {
			return summary, errors.Wrapf(err, "can't write frame %d", frameNum)
		}

		stats := tracker.Stats()
		logger.Debug("frame processed",
			"frame", frameNum,
			"detections", stats.Detections,
			"rejected", stats.Rejected,
			"matched", stats.Matched,
			"created", stats.Created,
			"removed", stats.Removed,
			"active", stats.Active,
			"stale", stats.Stale,
		)
	}
	if err := scanner.Err(); err != nil {
		return summary, errors.Wrap(err, "can't read detections")
	}
	summary.Identities = tracker.TotalCreated()
	return summary, nil
}

func decodeFrame(line string) (frameInput, error) {
	var frame frameInput
	if err := json.Unmarshal([]byte(line), &frame); err != nil {
		return frameInput{}, errors.Wrap(err, "can't decode frame")
	}
	return frame, nil
}

func decodeDetection(raw json.RawMessage) (mot.Detection, error) {
	var det detectionInput
	if err := json.Unmarshal(raw, &det); err != nil {
		return mot.Detection{}, errors.Wrap(err, "can't decode detection")
	}
	if len(det.BBox) != 4 {
		return mot.Detection{}, errors.Errorf("bbox must have 4 coordinates, got %d", len(det.BBox))
	}
	coords := [4]int{}
	for i, v := range det.BBox {
		if math.Abs(v) > math.MaxInt32 {
			return mot.Detection{}, errors.Errorf("bbox coordinate %v is out of range", v)
		}
		coords[i] = int(v)
	}
	return mot.NewDetection(mot.NewBBox(coords[0], coords[1], coords[2], coords[3]), det.Confidence, det.Class), nil
}
