package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.Faces = faces
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result.Hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FaceAt returns a face mesh whose ear and nose landmarks are placed at the
// given normalized positions. All other points sit on the nose.
func FaceAt(leftEar, rightEar, nose Point3D) FaceLandmarks {
	face := FaceLandmarks{
		Points: make([]Point3D, NumFaceMesh),
		Score:  0.95,
	}
	for i := range face.Points {
		face.Points[i] = nose
	}
	face.Points[NoseTip] = nose
	face.Points[LeftTragus] = leftEar
	face.Points[RightTragus] = rightEar
	return face
}

// FrontalFace returns a face looking straight at the camera. Ears sit at
// x=0.35 and x=0.65 in camera space with the nose centered between them.
func FrontalFace() FaceLandmarks {
	return FaceAt(
		Point3D{X: 0.35, Y: 0.5},
		Point3D{X: 0.65, Y: 0.5},
		Point3D{X: 0.5, Y: 0.45, Z: -0.05},
	)
}

// PinchLandmarks returns a hand whose thumb and index tips touch at (x, y).
// Handedness is reported from the camera's perspective.
func PinchLandmarks(x, y float64, handedness string) HandLandmarks {
	hand := OpenPalmLandmarks()
	hand.Handedness = handedness

	// Curl the index toward the thumb so the tips meet.
	hand.Points[ThumbTip] = Point3D{X: x - 0.005, Y: y}
	hand.Points[IndexTip] = Point3D{X: x + 0.005, Y: y}
	hand.Points[IndexDIP] = Point3D{X: x + 0.02, Y: y - 0.03}
	return hand
}

// OpenPalmLandmarks returns a preset HandLandmarks representing an open palm gesture.
// All fingers are extended outward.
func OpenPalmLandmarks() HandLandmarks {
	landmarks := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	landmarks.Points[Wrist] = Point3D{X: 0.5, Y: 0.8, Z: 0.0}

	// Thumb extended to the side
	landmarks.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	landmarks.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	landmarks.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	landmarks.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	landmarks.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68, Z: 0.0}
	landmarks.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55, Z: 0.0}
	landmarks.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45, Z: 0.0}
	landmarks.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35, Z: 0.0}

	landmarks.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66, Z: 0.0}
	landmarks.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52, Z: 0.0}
	landmarks.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40, Z: 0.0}
	landmarks.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28, Z: 0.0}

	landmarks.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68, Z: 0.0}
	landmarks.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55, Z: 0.0}
	landmarks.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45, Z: 0.0}
	landmarks.Points[RingTip] = Point3D{X: 0.42, Y: 0.35, Z: 0.0}

	landmarks.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70, Z: 0.0}
	landmarks.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60, Z: 0.0}
	landmarks.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50, Z: 0.0}
	landmarks.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42, Z: 0.0}

	return landmarks
}

// FistLandmarks returns a closed hand: fingertips curled below their PIP
// joints and the thumb well away from the index tip.
func FistLandmarks() HandLandmarks {
	hand := OpenPalmLandmarks()
	hand.Points[IndexTip] = Point3D{X: 0.55, Y: 0.62}
	hand.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.60}
	hand.Points[RingTip] = Point3D{X: 0.44, Y: 0.62}
	hand.Points[PinkyTip] = Point3D{X: 0.39, Y: 0.66}
	return hand
}
