package mot

import (
	"fmt"
	"image/color"
)

// TrackResult is a per-frame record emitted for every surviving track.
// Confidence is nil for tracks which were neither matched nor created on this frame.
type TrackResult struct {
	ID           int
	BBox         BBox
	Class        string
	Confidence   *float64
	State        TrackState
	Hits         int
	MissedFrames int
}

// Label returns caption for drawing: "ID:<id> <class>" with confidence appended when present
func (res TrackResult) Label() string {
	label := fmt.Sprintf("ID:%d %s", res.ID, res.Class)
	if res.Confidence != nil {
		label += fmt.Sprintf(" %.2f", *res.Confidence)
	}
	return label
}

// Color returns stable per-identity drawing color
func (res TrackResult) Color() color.RGBA {
	return color.RGBA{
		R: uint8((res.ID * 37) % 256),
		G: uint8((res.ID * 73) % 256),
		B: uint8((res.ID * 97) % 256),
		A: 255,
	}
}

// FrameStats summarizes the last processed frame
type FrameStats struct {
	Frame      int
	Detections int
	Rejected   int
	Matched    int
	Created    int
	Removed    int
	Active     int
	Stale      int
	// Number of predict/update calls which failed and froze a track
	NumericFailures int
}
