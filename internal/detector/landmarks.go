// Package detector provides face and hand landmark detection for the try-on pipeline.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Face mesh landmark indices used for earring anchoring.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	NoseTip       = 1
	LeftTragus    = 234
	RightTragus   = 454
	NumFaceMesh   = 468
	NumFaceRefine = 478 // with iris refinement
)

// Point3D represents a 3D point with normalized x, y and relative depth z.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right", camera perspective
	Score      float64               `json:"score"`
}

// FaceLandmarks holds a face mesh. Points is indexed by face mesh landmark id
// and may be shorter than NumFaceMesh if the producer truncated it.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// At returns the landmark at index i and whether it exists.
func (f *FaceLandmarks) At(i int) (Point3D, bool) {
	if f == nil || i < 0 || i >= len(f.Points) {
		return Point3D{}, false
	}
	return f.Points[i], true
}

// Result is the outcome of running detection on a single frame.
type Result struct {
	Faces []FaceLandmarks `json:"faces"`
	Hands []HandLandmarks `json:"hands"`
}
