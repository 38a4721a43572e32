package catalog

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	assets := Default()
	if len(assets) != 6 {
		t.Fatalf("expected 6 styles, got %d", len(assets))
	}

	want := map[string]float64{
		"gold-stud":          0.8,
		"pearl-drop":         1.2,
		"silver-hoop":        1.5,
		"crystal-chandelier": 2.0,
		"rose-gold-hoop":     1.3,
		"diamond-stud":       0.7,
	}
	for _, a := range assets {
		if want[a.ID] != a.BaseScale {
			t.Errorf("%s: expected base scale %v, got %v", a.ID, want[a.ID], a.BaseScale)
		}
		if !a.Category.Valid() {
			t.Errorf("%s: invalid category %q", a.ID, a.Category)
		}
	}
}

func TestCatalog(t *testing.T) {
	c := New([]Asset{
		{ID: "a", BaseScale: 1},
		{ID: "b", BaseScale: 2},
		{ID: "a", BaseScale: 3},
	})

	if c.Len() != 2 {
		t.Errorf("expected duplicates dropped, got %d", c.Len())
	}
	if a, _ := c.Get("a"); a.BaseScale != 1 {
		t.Errorf("expected first occurrence kept, got %v", a.BaseScale)
	}
	if _, err := c.Get("zzz"); !errors.Is(err, ErrUnknownAsset) {
		t.Errorf("expected ErrUnknownAsset, got %v", err)
	}
	if first, ok := c.First(); !ok || first.ID != "a" {
		t.Errorf("unexpected first %+v", first)
	}

	list := c.List()
	list[0].ID = "mutated"
	if a, _ := c.First(); a.ID != "a" {
		t.Error("List must return a copy")
	}

	if _, ok := New(nil).First(); ok {
		t.Error("empty catalog has no first asset")
	}
}

func TestAsset_Scale(t *testing.T) {
	if (Asset{}).Scale() != 1 {
		t.Error("unset base scale should read as 1")
	}
	if (Asset{BaseScale: 1.5}).Scale() != 1.5 {
		t.Error("expected 1.5")
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.NRGBA{R: 200, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestImageLoader(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "earrings", "stud.png"))
	l := NewImageLoader(dir)

	img, err := l.Load("earrings/stud.png")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("expected 8px wide image, got %d", img.Bounds().Dx())
	}

	// Served from cache after the file is gone.
	os.Remove(filepath.Join(dir, "earrings", "stud.png"))
	if _, err := l.Load("earrings/stud.png"); err != nil {
		t.Errorf("expected cached image, got %v", err)
	}

	if _, err := l.Load("earrings/missing.png"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestImageLoader_StaysInsideRoot(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "secret.png"))
	l := NewImageLoader(filepath.Join(dir, "assets"))

	if _, err := l.Load("../secret.png"); err == nil {
		t.Error("expected references outside the root to fail")
	}
}

func TestImageLoader_PutAndPreload(t *testing.T) {
	l := NewImageLoader(t.TempDir())
	l.Put("a.png", image.NewNRGBA(image.Rect(0, 0, 2, 2)))

	failed := l.Preload([]Asset{{ImageRef: "a.png"}, {ImageRef: "b.png"}})
	if len(failed) != 1 || failed["b.png"] == nil {
		t.Errorf("expected only b.png to fail, got %v", failed)
	}
	if _, err := l.Load("a.png"); err != nil {
		t.Errorf("seeded image should load: %v", err)
	}

	if failed := l.Preload([]Asset{{ImageRef: "a.png"}}); failed != nil {
		t.Errorf("expected no failures, got %v", failed)
	}
}

func TestImageLoader_NoRoot(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "x.png"))
	l := NewImageLoader("")

	// An absolute ref must not fall through to the filesystem root.
	if _, err := l.Load(filepath.Join(dir, "x.png")); !errors.Is(err, ErrNoAssetDir) {
		t.Errorf("expected ErrNoAssetDir, got %v", err)
	}

	l.Put("seeded.png", image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	if _, err := l.Load("seeded.png"); err != nil {
		t.Errorf("cached images load without a root: %v", err)
	}
}

func TestDecode_Unknown(t *testing.T) {
	if _, err := Decode([]byte("not an image"), "x.webp"); err == nil {
		t.Error("expected decode error")
	}
}
