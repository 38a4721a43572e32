// Package recommend asks a vision model which catalog style suits the
// person in a snapshot.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ollama/ollama/api"

	"github.com/ayusman/gayaku/internal/catalog"
)

var (
	// ErrUnknownStyle is returned when the model picks an id outside the catalog.
	ErrUnknownStyle = errors.New("recommended style not in catalog")
	// ErrEmptyResponse is returned when the model answers with nothing usable.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrEmptyCatalog is returned when there is nothing to recommend from.
	ErrEmptyCatalog = errors.New("catalog is empty")
)

// snapshotWidth bounds the image sent to the model.
const snapshotWidth = 640

// Recommendation is the model's pick.
type Recommendation struct {
	SelectedStyle string  `json:"selected_style"`
	Reasoning     string  `json:"reasoning"`
	Confidence    float64 `json:"confidence"`
}

// Config selects the Ollama endpoint and model.
type Config struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// Recommender wraps the Ollama chat API.
type Recommender struct {
	client  *api.Client
	model   string
	timeout time.Duration
}

// New creates a recommender for the Ollama server at cfg.Host.
func New(cfg Config) (*Recommender, error) {
	parsed, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q", cfg.Host)
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &Recommender{
		client:  api.NewClient(base, http.DefaultClient),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Model returns the model name.
func (r *Recommender) Model() string {
	return r.model
}

// Recommend sends the snapshot and the catalog to the model and returns its
// validated pick.
func (r *Recommender) Recommend(ctx context.Context, snapshot image.Image, cat *catalog.Catalog) (Recommendation, error) {
	if cat.Len() == 0 {
		return Recommendation{}, ErrEmptyCatalog
	}
	if r.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}
	}

	img, err := EncodeSnapshot(snapshot)
	if err != nil {
		return Recommendation{}, err
	}

	stream := false
	req := &api.ChatRequest{
		Model: r.model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: Prompt(cat.List()),
				Images:  []api.ImageData{api.ImageData(img)},
			},
		},
		Stream:  &stream,
		Format:  json.RawMessage(`"json"`),
		Options: map[string]any{"temperature": 0.2},
	}

	var content strings.Builder
	err = r.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return Recommendation{}, fmt.Errorf("ollama chat error: %w", err)
	}

	return Parse(content.String(), cat)
}

// EncodeSnapshot downsizes img to at most snapshotWidth and encodes it as JPEG.
func EncodeSnapshot(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New("no snapshot")
	}
	if img.Bounds().Dx() > snapshotWidth {
		img = imaging.Resize(img, snapshotWidth, 0, imaging.Linear)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Prompt lists the styles the model may choose from.
func Prompt(assets []catalog.Asset) string {
	var b strings.Builder
	b.WriteString("You are a jewellery stylist. Look at the person's face shape, hairstyle and neckline in the photo ")
	b.WriteString("and choose the one earring style from this list that suits them best:\n")
	for _, a := range assets {
		fmt.Fprintf(&b, "- %s: %s (%s)", a.ID, a.Name, a.Category)
		if a.Description != "" {
			fmt.Fprintf(&b, ". %s", a.Description)
		}
		b.WriteByte('\n')
	}
	b.WriteString(`Answer with JSON only: {"selected_style": "<id from the list>", "reasoning": "<one or two sentences>", "confidence": <0 to 1>}`)
	return b.String()
}

// Parse decodes a model answer and checks the style against the catalog.
// Code fences and text around the JSON object are ignored.
func Parse(raw string, cat *catalog.Catalog) (Recommendation, error) {
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Recommendation{}, ErrEmptyResponse
	}

	var wire struct {
		SelectedStyle string  `json:"selected_style"`
		CamelStyle    string  `json:"selectedStyle"`
		Reasoning     string  `json:"reasoning"`
		Confidence    float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return Recommendation{}, fmt.Errorf("failed to parse model response: %w", err)
	}

	id := wire.SelectedStyle
	if id == "" {
		id = wire.CamelStyle
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Recommendation{}, ErrEmptyResponse
	}
	if _, err := cat.Get(id); err != nil {
		return Recommendation{}, fmt.Errorf("%w: %q", ErrUnknownStyle, id)
	}

	conf := wire.Confidence
	switch {
	case conf < 0 || math.IsNaN(conf):
		conf = 0
	case conf > 1:
		conf = 1
	}

	return Recommendation{
		SelectedStyle: id,
		Reasoning:     strings.TrimSpace(wire.Reasoning),
		Confidence:    conf,
	}, nil
}
