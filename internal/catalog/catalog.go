// Package catalog holds the overlay styles a user can try on.
package catalog

import "errors"

// ErrUnknownAsset is returned when an asset id is not in the catalog.
var ErrUnknownAsset = errors.New("unknown asset")

// Category groups styles in the gallery.
type Category string

const (
	CategoryStud       Category = "stud"
	CategoryDrop       Category = "drop"
	CategoryHoop       Category = "hoop"
	CategoryChandelier Category = "chandelier"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryStud, CategoryDrop, CategoryHoop, CategoryChandelier:
		return true
	}
	return false
}

// Asset is an immutable catalog entry. ImageRef is an opaque reference
// resolved by an ImageLoader.
type Asset struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ImageRef    string   `json:"image_ref"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	BaseScale   float64  `json:"base_scale"`
}

// Scale returns BaseScale, treating an unset scale as 1.
func (a Asset) Scale() float64 {
	if a.BaseScale <= 0 {
		return 1
	}
	return a.BaseScale
}

// Catalog is an ordered, read-only list of assets.
type Catalog struct {
	assets []Asset
	index  map[string]int
}

// New builds a catalog. Later duplicates of an id are dropped.
func New(assets []Asset) *Catalog {
	c := &Catalog{
		assets: make([]Asset, 0, len(assets)),
		index:  make(map[string]int, len(assets)),
	}
	for _, a := range assets {
		if _, dup := c.index[a.ID]; dup {
			continue
		}
		c.index[a.ID] = len(c.assets)
		c.assets = append(c.assets, a)
	}
	return c
}

// List returns the assets in catalog order. The slice is a copy.
func (c *Catalog) List() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// Get looks up an asset by id.
func (c *Catalog) Get(id string) (Asset, error) {
	i, ok := c.index[id]
	if !ok {
		return Asset{}, ErrUnknownAsset
	}
	return c.assets[i], nil
}

// First returns the first asset, if any.
func (c *Catalog) First() (Asset, bool) {
	if len(c.assets) == 0 {
		return Asset{}, false
	}
	return c.assets[0], true
}

// Len returns the number of assets.
func (c *Catalog) Len() int {
	return len(c.assets)
}

// Default returns the built-in earring styles.
func Default() []Asset {
	return []Asset{
		{
			ID:          "gold-stud",
			Name:        "Classic Gold Studs",
			ImageRef:    "earrings/gold-stud.webp",
			Category:    CategoryStud,
			Description: "Timeless gold ball studs for everyday elegance",
			BaseScale:   0.8,
		},
		{
			ID:          "pearl-drop",
			Name:        "Pearl Drops",
			ImageRef:    "earrings/pearl-drop.webp",
			Category:    CategoryDrop,
			Description: "Elegant pearl teardrops with gold accents",
			BaseScale:   1.2,
		},
		{
			ID:          "silver-hoop",
			Name:        "Silver Hoops",
			ImageRef:    "earrings/silver-hoop.webp",
			Category:    CategoryHoop,
			Description: "Modern medium-sized silver hoops",
			BaseScale:   1.5,
		},
		{
			ID:          "crystal-chandelier",
			Name:        "Crystal Chandelier",
			ImageRef:    "earrings/crystal-chandelier.webp",
			Category:    CategoryChandelier,
			Description: "Glamorous cascading crystal statement earrings",
			BaseScale:   2.0,
		},
		{
			ID:          "rose-gold-hoop",
			Name:        "Rose Gold Hoops",
			ImageRef:    "earrings/rose-gold-hoop.webp",
			Category:    CategoryHoop,
			Description: "Warm rose gold small hoops",
			BaseScale:   1.3,
		},
		{
			ID:          "diamond-stud",
			Name:        "Diamond Studs",
			ImageRef:    "earrings/diamond-stud.webp",
			Category:    CategoryStud,
			Description: "Sparkling diamond solitaire studs",
			BaseScale:   0.7,
		},
	}
}
