package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "github.com/ftrvxmtrx/tga"
	_ "golang.org/x/image/webp"
)

// ErrNoAssetDir is returned for uncached refs when the loader has no root.
var ErrNoAssetDir = errors.New("no asset directory configured")

// ImageLoader resolves asset image references against a root directory and
// caches the decoded images. Safe for concurrent use.
type ImageLoader struct {
	root  string
	mu    sync.Mutex
	cache map[string]image.Image
}

// NewImageLoader creates a loader rooted at dir.
func NewImageLoader(dir string) *ImageLoader {
	return &ImageLoader{
		root:  dir,
		cache: make(map[string]image.Image),
	}
}

// Load returns the decoded image for ref, reading it from disk on first use.
func (l *ImageLoader) Load(ref string) (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if img, ok := l.cache[ref]; ok {
		return img, nil
	}

	path, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", ref, err)
	}

	img, err := Decode(data, path)
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", ref, err)
	}

	l.cache[ref] = img
	return img, nil
}

// Put seeds the cache with an already decoded image.
func (l *ImageLoader) Put(ref string, img image.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[ref] = img
}

// Preload loads every asset's image and returns the failures keyed by image
// ref, or nil when all loaded. Images that load stay cached.
func (l *ImageLoader) Preload(assets []Asset) map[string]error {
	var failed map[string]error
	for _, a := range assets {
		if _, err := l.Load(a.ImageRef); err != nil {
			if failed == nil {
				failed = make(map[string]error)
			}
			failed[a.ImageRef] = err
		}
	}
	return failed
}

// resolve maps a reference to a path inside root, rejecting escapes.
func (l *ImageLoader) resolve(ref string) (string, error) {
	if l.root == "" {
		return "", fmt.Errorf("asset %s: %w", ref, ErrNoAssetDir)
	}
	clean := filepath.Clean("/" + strings.TrimPrefix(ref, "/"))
	path := filepath.Join(l.root, clean)
	if !strings.HasPrefix(path, filepath.Clean(l.root)) {
		return "", fmt.Errorf("asset %s: outside asset root", ref)
	}
	return path, nil
}

// Decode decodes PNG, JPEG, WebP or TGA image data. The name is only used
// to pick the WebP fallback decoder.
func Decode(data []byte, name string) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}

	if strings.HasSuffix(strings.ToLower(name), ".webp") {
		if img, werr := webp.Decode(bytes.NewReader(data)); werr == nil {
			return img, nil
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s: %w", name, err)
}
