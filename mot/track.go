package mot

// TrackState is externally visible lifecycle state of a track.
// Removed tracks are discarded by Tracker and never reported.
type TrackState uint16

const (
	// TrackActive has been matched or created on the current frame
	TrackActive TrackState = iota
	// TrackStale has one or more consecutive missed frames and is predicted only
	TrackStale
)

func (state TrackState) String() string {
	switch state {
	case TrackActive:
		return "active"
	case TrackStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Track is a tracked object owned by Tracker.
// Its bounding box is the last observed one and is never rebuilt from the filter state.
type Track struct {
	id           int
	bbox         BBox
	class        string
	estimator    Estimator
	trail        []Point
	maxTrailLen  int
	noMatchTimes int
	hits         int
	age          int
}

func newTrack(id int, det Detection, estimator Estimator, maxTrailLen int) *Track {
	track := Track{
		id:           id,
		bbox:         det.BBox,
		class:        det.Class,
		estimator:    estimator,
		trail:        make([]Point, 0, maxTrailLen),
		maxTrailLen:  maxTrailLen,
		noMatchTimes: 0,
		hits:         1,
		age:          0,
	}
	track.trail = append(track.trail, det.Centroid())
	return &track
}

// GetID returns track's identifier
func (track *Track) GetID() int {
	return track.id
}

// GetBBox returns track's last observed bounding box
func (track *Track) GetBBox() BBox {
	return track.bbox
}

// GetClass returns class label of the last observed detection
func (track *Track) GetClass() string {
	return track.class
}

// GetNoMatchTimes returns number of consecutive frames without a match
func (track *Track) GetNoMatchTimes() int {
	return track.noMatchTimes
}

// GetHits returns number of successful updates, including creation
func (track *Track) GetHits() int {
	return track.hits
}

// GetAge returns number of frames passed since creation
func (track *Track) GetAge() int {
	return track.age
}

// GetState returns lifecycle state
func (track *Track) GetState() TrackState {
	if track.noMatchTimes > 0 {
		return TrackStale
	}
	return TrackActive
}

// GetPredictedCenter returns filter's current centroid estimate
func (track *Track) GetPredictedCenter() Point {
	return track.estimator.Position()
}

// GetVelocity returns filter's velocity estimate in pixels per frame
func (track *Track) GetVelocity() Point {
	return track.estimator.Velocity()
}

// GetTrail returns observed centroids, oldest first. Be careful: this is not copy of trail, but reference to it
func (track *Track) GetTrail() []Point {
	return track.trail
}

// predict executes filter's first step. State is frozen on error
func (track *Track) predict() error {
	track.age++
	return track.estimator.Predict()
}

// update applies observed detection to the track.
// When filter correction fails the track is left exactly as it was.
func (track *Track) update(det Detection) error {
	center := det.Centroid()
	if err := track.estimator.Update(center); err != nil {
		return err
	}
	track.bbox = det.BBox
	track.class = det.Class
	track.noMatchTimes = 0
	track.hits++
	track.trail = append(track.trail, center)
	if len(track.trail) > track.maxTrailLen {
		track.trail = track.trail[1:]
	}
	return nil
}

func (track *Track) incNoMatch() {
	track.noMatchTimes++
}
