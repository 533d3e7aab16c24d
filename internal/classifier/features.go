// Package classifier provides static sign classification from hand
// landmark geometry.
package classifier

import (
	"fmt"
	"math"

	"github.com/bhoomipatni/TheHandStand/internal/detector"
)

// NumGeometricFeatures is the length of the feature vector produced by
// ExtractFeatures.
const NumGeometricFeatures = 21

// Landmark index groups used for feature extraction.
var (
	fingertips  = []int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerBases = []int{detector.ThumbMCP, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
)

type point2 struct {
	x, y float64
}

func (p point2) norm() float64 {
	return math.Sqrt(p.x*p.x + p.y*p.y)
}

func (p point2) sub(q point2) point2 {
	return point2{p.x - q.x, p.y - q.y}
}

// ExtractFeatures converts a flattened keypoint vector into geometric
// features describing hand shape: wrist-to-fingertip distances, finger
// extension ratios, inter-finger angles, palm orientation, finger
// spreads, hand openness, hand size, and thumb position. Accepts the
// 126-element two-hand format (only the first hand is used) or a
// 42-element single-hand x,y format.
func ExtractFeatures(keypoints []float64) ([]float64, error) {
	landmarks, err := firstHandXY(keypoints)
	if err != nil {
		return nil, err
	}

	// Normalize relative to the wrist
	wrist := landmarks[detector.Wrist]
	normalized := make([]point2, detector.NumLandmarks)
	for i := range landmarks {
		normalized[i] = landmarks[i].sub(wrist)
	}

	features := make([]float64, 0, NumGeometricFeatures)

	// 1. Distances from wrist to fingertips
	for _, tip := range fingertips {
		features = append(features, normalized[tip].norm())
	}

	// 2. Finger extension ratios
	for i, tip := range fingertips {
		tipDist := normalized[tip].norm()
		baseDist := normalized[fingerBases[i]].norm()
		features = append(features, tipDist/(baseDist+1e-6))
	}

	// 3. Angles between adjacent fingers
	for i := 0; i < len(fingertips)-1; i++ {
		v1 := normalized[fingertips[i]]
		v2 := normalized[fingertips[i+1]]
		cos := (v1.x*v2.x + v1.y*v2.y) / (v1.norm()*v2.norm() + 1e-6)
		features = append(features, math.Acos(clamp(cos, -1, 1)))
	}

	// 4. Hand orientation (wrist to middle finger base)
	palm := normalized[detector.MiddleMCP]
	features = append(features, math.Atan2(palm.y, palm.x))

	// 5. Finger spreads
	thumb := normalized[detector.ThumbTip]
	index := normalized[detector.IndexTip]
	middle := normalized[detector.MiddleTip]
	features = append(features,
		thumb.sub(index).norm(),
		thumb.sub(middle).norm(),
		index.sub(middle).norm(),
	)

	// 6. Hand openness: mean fingertip distance from the palm center
	palmIdx := []int{detector.Wrist, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
	var center point2
	for _, i := range palmIdx {
		center.x += normalized[i].x
		center.y += normalized[i].y
	}
	center.x /= float64(len(palmIdx))
	center.y /= float64(len(palmIdx))

	var openness float64
	for _, tip := range fingertips {
		openness += normalized[tip].sub(center).norm()
	}
	features = append(features, openness/float64(len(fingertips)))

	// 7. Hand size: the furthest landmark from the wrist
	var size float64
	for i := range normalized {
		if d := normalized[i].norm(); d > size {
			size = d
		}
	}
	features = append(features, size)

	// 8. Thumb position relative to the index fingertip
	features = append(features, math.Atan2(thumb.y-index.y, thumb.x-index.x))

	return features, nil
}

// firstHandXY reduces a keypoint vector to 21 x,y landmark points for the
// first hand.
func firstHandXY(keypoints []float64) ([]point2, error) {
	landmarks := make([]point2, detector.NumLandmarks)

	switch len(keypoints) {
	case detector.NumFeatures:
		// Two-hand x,y,z format: take x,y of the first hand
		for i := 0; i < detector.NumLandmarks; i++ {
			landmarks[i] = point2{keypoints[i*3], keypoints[i*3+1]}
		}
	case detector.NumLandmarks * 2:
		// Single-hand x,y format
		for i := 0; i < detector.NumLandmarks; i++ {
			landmarks[i] = point2{keypoints[i*2], keypoints[i*2+1]}
		}
	default:
		return nil, fmt.Errorf("unexpected keypoint vector length %d", len(keypoints))
	}

	return landmarks, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
