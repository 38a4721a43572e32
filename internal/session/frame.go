package session

import (
	"github.com/ayusman/gayaku/internal/catalog"
	"github.com/ayusman/gayaku/internal/coords"
	"github.com/ayusman/gayaku/internal/customize"
	"github.com/ayusman/gayaku/internal/drag"
	"github.com/ayusman/gayaku/internal/placement"
	"github.com/ayusman/gayaku/internal/render"
	"github.com/ayusman/gayaku/internal/tracking"
)

// Status reports the tracking sources.
type Status struct {
	Landmarks      tracking.Status `json:"landmarks"`
	Gestures       tracking.Status `json:"gestures"`
	GestureEnabled bool            `json:"gesture_enabled"`
}

// DragStatus describes the pinch drag for on-screen feedback. Pinch and zone
// centers are screen pixels.
type DragStatus struct {
	State  drag.State     `json:"state"`
	Policy drag.Policy    `json:"policy"`
	Target *tracking.Side `json:"target,omitempty"`
	Pinch  *coords.Point  `json:"pinch,omitempty"`
	Zones  []drag.Zone    `json:"zones,omitempty"`
}

// Frame is the outcome of one tick.
type Frame struct {
	Seq    uint64      `json:"seq"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Mode   coords.Mode `json:"mode"`

	Asset        *catalog.Asset       `json:"asset,omitempty"`
	Layout       placement.Layout     `json:"-"`
	Instructions []render.Instruction `json:"instructions"`

	Customization   customize.State `json:"customization"`
	SubjectDetected bool            `json:"subject_detected"`
	Rotation        float64         `json:"rotation"`
	OpenPalm        *coords.Point   `json:"open_palm,omitempty"`
	Drag            DragStatus      `json:"drag"`
	Status          Status          `json:"status"`

	AnchorSeq  uint64 `json:"anchor_seq"`
	GestureSeq uint64 `json:"gesture_seq"`
}
