package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bucket is a static service category used to classify member requests.
// Buckets are defined once at process start and never mutated.
type Bucket struct {
	ID               string   `yaml:"id" json:"id"`
	Name             string   `yaml:"name" json:"name"`
	Keywords         []string `yaml:"keywords" json:"keywords"`
	PriorityKeywords []string `yaml:"priority_keywords" json:"priority_keywords"`
	DetailFields     []string `yaml:"detail_fields" json:"detail_fields"`
}

// Catalog holds the ordered bucket list. Order matters: the classifier keeps
// the first bucket on score ties and falls back to the first bucket when a
// message matches nothing.
type Catalog struct {
	buckets []Bucket
}

// Default returns the built-in Asteria service catalog.
func Default() *Catalog {
	return &Catalog{buckets: builtinBuckets()}
}

// Load reads a YAML bucket catalog from path. An empty path returns the
// built-in catalog; a malformed file is a startup error.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	var doc struct {
		Buckets []Bucket `yaml:"buckets"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	if len(doc.Buckets) == 0 {
		return nil, fmt.Errorf("catalog: %s defines no buckets", path)
	}
	for i, b := range doc.Buckets {
		if strings.TrimSpace(b.ID) == "" {
			return nil, fmt.Errorf("catalog: bucket %d missing id", i)
		}
		if len(b.Keywords) == 0 {
			return nil, fmt.Errorf("catalog: bucket %q has no keywords", b.ID)
		}
	}
	return &Catalog{buckets: doc.Buckets}, nil
}

// Buckets returns the ordered bucket list.
func (c *Catalog) Buckets() []Bucket {
	return c.buckets
}

// ByID returns the bucket with the given id, if present.
func (c *Catalog) ByID(id string) (Bucket, bool) {
	for _, b := range c.buckets {
		if b.ID == id {
			return b, true
		}
	}
	return Bucket{}, false
}

// AllKeywords returns the union of every bucket's keywords and priority
// keywords, lower-cased. The journey detector uses this to decide whether a
// message carries service context at all.
func (c *Catalog) AllKeywords() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range c.buckets {
		for _, kw := range append(append([]string{}, b.Keywords...), b.PriorityKeywords...) {
			kw = strings.ToLower(kw)
			if !seen[kw] {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	return out
}

func builtinBuckets() []Bucket {
	return []Bucket{
		{
			ID:   "transportation",
			Name: "Private Aviation & Transportation",
			Keywords: []string{
				"jet", "flight", "fly", "plane", "aviation", "helicopter",
				"car", "driver", "chauffeur", "limo", "limousine",
				"yacht", "boat", "charter", "transfer", "airport",
			},
			PriorityKeywords: []string{
				"private jet", "urgent", "asap", "immediately", "right away",
			},
			DetailFields: []string{"dates", "time", "guests", "location", "destination"},
		},
		{
			ID:   "events",
			Name: "Events & Exclusive Experiences",
			Keywords: []string{
				"event", "party", "celebration", "dinner", "restaurant",
				"reservation", "gala", "concert", "show", "tickets",
				"club", "venue", "premiere", "festival", "tasting",
			},
			PriorityKeywords: []string{
				"tonight", "sold out", "last minute", "vip", "urgent",
			},
			DetailFields: []string{"dates", "time", "guests", "location", "special_requests"},
		},
		{
			ID:   "brand_dev",
			Name: "Brand Development & Partnerships",
			Keywords: []string{
				"brand", "branding", "marketing", "publicity", "press",
				"media", "profile", "image", "partnership",
				"collaboration", "sponsorship",
			},
			PriorityKeywords: []string{
				"launch", "campaign", "deadline",
			},
			DetailFields: []string{"dates", "budget", "special_requests"},
		},
		{
			ID:   "investments",
			Name: "Investment Opportunities & Connections",
			Keywords: []string{
				"invest", "investment", "portfolio", "fund", "equity",
				"wealth", "capital", "advisor", "opportunity", "venture",
				"allocation",
			},
			PriorityKeywords: []string{
				"closing", "time-sensitive", "urgent",
			},
			DetailFields: []string{"budget", "special_requests"},
		},
		{
			ID:   "taglades",
			Name: "TAGlades & Inner Circle Access",
			Keywords: []string{
				"taglades", "exclusive", "members only", "founders",
				"inner circle", "private access", "elite", "invitation",
			},
			PriorityKeywords: []string{
				"founding", "invitation only",
			},
			DetailFields: []string{"dates", "special_requests"},
		},
		{
			ID:   "lifestyle",
			Name: "Lifestyle Services & Personal Shopping",
			Keywords: []string{
				"lifestyle", "shopping", "personal shopper", "wellness",
				"spa", "fitness", "gift", "home", "interior", "stylist",
				"courier", "errand", "wardrobe",
			},
			PriorityKeywords: []string{
				"today", "urgent", "same day",
			},
			DetailFields: []string{"dates", "budget", "special_requests"},
		},
	}
}
