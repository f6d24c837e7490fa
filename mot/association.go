package mot

import "math"

// Match pairs a track with a detection by their positions in the input slices
type Match struct {
	Track     int
	Detection int
	Distance  float64
}

// Association is a partial, injective pairing of tracks to detections
type Association struct {
	Matches             []Match
	UnmatchedTracks     []int
	UnmatchedDetections []int
}

// AssociateGreedy matches predicted track centroids against detection centroids.
//
// Tracks are processed in the given order. Each track takes the closest detection not claimed
// by an earlier track (ties go to the lowest detection index), but only when that distance
// is not greater than maxDistance. Otherwise the track stays unmatched and no detection is consumed.
// The result depends on track order: this is not an optimal assignment.
func AssociateGreedy(predicted []Point, detections []Point, maxDistance float64) Association {
	result := Association{
		Matches:             make([]Match, 0, minInt(len(predicted), len(detections))),
		UnmatchedTracks:     make([]int, 0),
		UnmatchedDetections: make([]int, 0),
	}
	claimed := make([]bool, len(detections))
	for ti, trackCenter := range predicted {
		bestIdx := -1
		bestDistance := math.Inf(1)
		for di, detCenter := range detections {
			if claimed[di] {
				continue
			}
			dist := euclideanDistance(trackCenter, detCenter)
			if dist < bestDistance {
				bestDistance = dist
				bestIdx = di
			}
		}
		if bestIdx < 0 || bestDistance > maxDistance {
			result.UnmatchedTracks = append(result.UnmatchedTracks, ti)
			continue
		}
		claimed[bestIdx] = true
		result.Matches = append(result.Matches, Match{
			Track:     ti,
			Detection: bestIdx,
			Distance:  bestDistance,
		})
	}
	for di := range detections {
		if !claimed[di] {
			result.UnmatchedDetections = append(result.UnmatchedDetections, di)
		}
	}
	return result
}
