package mot

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Tracker is Multi-object tracker (MOT) with per-track constant-velocity Kalman filter
// and greedy nearest-centroid association.
//
// Tracker owns its tracks and its identity counter: ids start at 1 for every new instance
// and are never reused. Tracker performs no internal locking; when shared between goroutines
// the whole value must be guarded by a single mutex.
type Tracker struct {
	// Main storage, creation order (oldest first)
	tracks []*Track
	cfg    Config

	newEstimator EstimatorFactory
	baseLogger   *slog.Logger
	logger       *slog.Logger

	sessionID uuid.UUID
	nextID    int
	frame     int
	stats     FrameStats
}

// Option configures Tracker at construction time
type Option func(*Tracker)

// WithLogger sets logger for diagnostics. Default is slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(tracker *Tracker) {
		if logger != nil {
			tracker.baseLogger = logger
		}
	}
}

// WithEstimator sets factory of per-track motion estimators. Default is NewConstantVelocityEstimator
func WithEstimator(factory EstimatorFactory) Option {
	return func(tracker *Tracker) {
		tracker.newEstimator = factory
	}
}

// WithEstimatorConfig overrides filter noise scales
func WithEstimatorConfig(cfg EstimatorConfig) Option {
	return func(tracker *Tracker) {
		tracker.cfg.Estimator = cfg
	}
}

// WithTrailLength sets number of observed centroids kept per track
func WithTrailLength(n int) Option {
	return func(tracker *Tracker) {
		tracker.cfg.TrailLength = n
	}
}

// NewTrackerDefault creates tracker with max distance 60 and max missed frames 10
func NewTrackerDefault(opts ...Option) (*Tracker, error) {
	return NewTrackerFromConfig(DefaultConfig(), opts...)
}

// NewTracker creates new instance of Tracker.
// Both maxDistance and maxMissed must be positive.
func NewTracker(maxDistance float64, maxMissed int, opts ...Option) (*Tracker, error) {
	cfg := DefaultConfig()
	cfg.MaxDistance = maxDistance
	cfg.MaxMissed = maxMissed
	return NewTrackerFromConfig(cfg, opts...)
}

// NewTrackerFromConfig creates new instance of Tracker from full set of parameters
func NewTrackerFromConfig(cfg Config, opts ...Option) (*Tracker, error) {
	tracker := &Tracker{
		cfg:          cfg,
		newEstimator: NewConstantVelocityEstimator,
		baseLogger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(tracker)
	}
	if err := tracker.cfg.Validate(); err != nil {
		return nil, errors.WithMessage(err, "can't create tracker")
	}
	if tracker.newEstimator == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "can't create tracker: estimator factory is nil")
	}
	tracker.Reset()
	return tracker, nil
}

// Reset drops every track and restarts identity counter at 1.
// A new session identifier is generated.
func (tracker *Tracker) Reset() {
	tracker.tracks = make([]*Track, 0)
	tracker.nextID = 1
	tracker.frame = 0
	tracker.stats = FrameStats{}
	tracker.sessionID = uuid.New()
	tracker.logger = tracker.baseLogger.With(slog.String("session_id", tracker.sessionID.String()))
}

// Update processes one frame of detections and returns surviving tracks in creation order.
//
// Invalid detections are skipped. Numeric failures of a track's filter freeze that track for
// the current frame. Neither is fatal: tracker stays usable for subsequent frames.
func (tracker *Tracker) Update(detections []Detection) []TrackResult {
	tracker.frame++
	stats := FrameStats{
		Frame:      tracker.frame,
		Detections: len(detections),
	}

	valid := make([]int, 0, len(detections))
	for i := range detections {
		if err := detections[i].Validate(); err != nil {
			stats.Rejected++
			tracker.logger.Warn("detection rejected", "frame", tracker.frame, "index", i, "error", err)
			continue
		}
		valid = append(valid, i)
	}

	// Predict every existing track, matched or not
	predicted := make([]Point, len(tracker.tracks))
	for i, track := range tracker.tracks {
		if err := track.predict(); err != nil {
			stats.NumericFailures++
			tracker.logger.Warn("prediction failed, track state frozen", "frame", tracker.frame, "track_id", track.id, "error", err)
		}
		predicted[i] = track.GetPredictedCenter()
	}

	centers := make([]Point, len(valid))
	for j, idx := range valid {
		centers[j] = detections[idx].Centroid()
	}
	association := AssociateGreedy(predicted, centers, tracker.cfg.MaxDistance)

	// Confidence travels with the (track, detection) pairing
	confidences := make(map[int]float64, len(valid))

	for _, match := range association.Matches {
		track := tracker.tracks[match.Track]
		det := detections[valid[match.Detection]]
		if err := track.update(det); err != nil {
			stats.NumericFailures++
			tracker.logger.Warn("update failed, track state frozen", "frame", tracker.frame, "track_id", track.id, "error", err)
			continue
		}
		stats.Matched++
		confidences[track.id] = det.Confidence
	}

	for _, ti := range association.UnmatchedTracks {
		tracker.tracks[ti].incNoMatch()
	}

	for _, dj := range association.UnmatchedDetections {
		det := detections[valid[dj]]
		track, err := tracker.register(det)
		if err != nil {
			stats.NumericFailures++
			tracker.logger.Warn("can't register track", "frame", tracker.frame, "index", valid[dj], "error", err)
			continue
		}
		stats.Created++
		confidences[track.id] = det.Confidence
	}

	// Clean up tracks which were not found for a long time
	kept := tracker.tracks[:0]
	for _, track := range tracker.tracks {
		if track.noMatchTimes > tracker.cfg.MaxMissed {
			stats.Removed++
			tracker.logger.Debug("track removed", "frame", tracker.frame, "track_id", track.id, "hits", track.hits, "age", track.age)
			continue
		}
		kept = append(kept, track)
	}
	for i := len(kept); i < len(tracker.tracks); i++ {
		tracker.tracks[i] = nil
	}
	tracker.tracks = kept

	results := make([]TrackResult, 0, len(tracker.tracks))
	for _, track := range tracker.tracks {
		res := TrackResult{
			ID:           track.id,
			BBox:         track.bbox,
			Class:        track.class,
			State:        track.GetState(),
			Hits:         track.hits,
			MissedFrames: track.noMatchTimes,
		}
		if conf, ok := confidences[track.id]; ok {
			res.Confidence = &conf
		}
		if res.State == TrackStale {
			stats.Stale++
		} else {
			stats.Active++
		}
		results = append(results, res)
	}
	tracker.stats = stats
	return results
}

// register creates track for an unmatched detection and assigns next identifier
func (tracker *Tracker) register(det Detection) (*Track, error) {
	estimator, err := tracker.newEstimator(det.Centroid(), tracker.cfg.Estimator)
	if err != nil {
		return nil, errors.Wrap(err, "can't create motion estimator")
	}
	if estimator == nil {
		return nil, errors.Wrap(ErrNumericFailure, "estimator factory returned nil")
	}
	track := newTrack(tracker.nextID, det, estimator, tracker.cfg.TrailLength)
	tracker.nextID++
	tracker.tracks = append(tracker.tracks, track)
	tracker.logger.Debug("track created", "frame", tracker.frame, "track_id", track.id, "class", track.class)
	return track, nil
}

// Tracks returns current tracks in creation order
func (tracker *Tracker) Tracks() []*Track {
	out := make([]*Track, len(tracker.tracks))
	copy(out, tracker.tracks)
	return out
}

// Len returns number of tracks currently held
func (tracker *Tracker) Len() int {
	return len(tracker.tracks)
}

// TotalCreated returns number of distinct identities assigned since construction or last Reset
func (tracker *Tracker) TotalCreated() int {
	return tracker.nextID - 1
}

// FrameIndex returns number of frames processed since construction or last Reset
func (tracker *Tracker) FrameIndex() int {
	return tracker.frame
}

// SessionID returns identifier of this tracker's identity space
func (tracker *Tracker) SessionID() uuid.UUID {
	return tracker.sessionID
}

// Stats returns summary of the last processed frame
func (tracker *Tracker) Stats() FrameStats {
	return tracker.stats
}

// Config returns tracker parameters
func (tracker *Tracker) Config() Config {
	return tracker.cfg
}
