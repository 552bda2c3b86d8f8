package classify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mendez671/asteria-mobile-luxury-sub002/internal/catalog"
)

func TestClassify_SingleBucketKeywords(t *testing.T) {
	c := New(catalog.Default(), nil)

	tests := []struct {
		name       string
		message    string
		wantBucket string
	}{
		{
			name:       "aviation request",
			message:    "Can you arrange a helicopter to the airport?",
			wantBucket: "transportation",
		},
		{
			name:       "dinner reservation",
			message:    "I'd love a dinner reservation at a nice restaurant",
			wantBucket: "events",
		},
		{
			name:       "brand work",
			message:    "We need help with our brand and press coverage",
			wantBucket: "brand_dev",
		},
		{
			name:       "investment intro",
			message:    "Looking for an investment advisor for my portfolio",
			wantBucket: "investments",
		},
		{
			name:       "inner circle",
			message:    "How do I get TAGlades access?",
			wantBucket: "taglades",
		},
		{
			name:       "personal shopping",
			message:    "I want a personal shopper for a wardrobe refresh",
			wantBucket: "lifestyle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(context.Background(), tt.message)
			assert.Equal(t, tt.wantBucket, res.Bucket.ID)
			assert.True(t, res.Matched)
			assert.Greater(t, res.Confidence, 0)
		})
	}
}

// A message matching nothing falls back to the first configured bucket at
// confidence 0. This pins inherited behavior so regressions are visible; the
// Matched flag is the sanctioned way to detect the gap.
func TestClassify_NoMatchFallsBackToFirstBucket(t *testing.T) {
	c := New(catalog.Default(), nil)

	res := c.Classify(context.Background(), "hello there, how are you?")
	assert.Equal(t, "transportation", res.Bucket.ID)
	assert.Equal(t, 0, res.Confidence)
	assert.False(t, res.Matched)
	assert.False(t, res.Urgent)
}

func TestClassify_PriorityKeywordSetsUrgent(t *testing.T) {
	c := New(catalog.Default(), nil)

	res := c.Classify(context.Background(), "I need a private jet asap")
	require.Equal(t, "transportation", res.Bucket.ID)
	assert.True(t, res.Urgent)

	// Keyword matches alone do not set urgency.
	res = c.Classify(context.Background(), "thinking about chartering a yacht next summer")
	require.Equal(t, "transportation", res.Bucket.ID)
	assert.False(t, res.Urgent)
}

func TestClassify_Scoring(t *testing.T) {
	c := New(catalog.Default(), nil)

	// "jet" (keyword) + "private jet" (priority) = 10 + 5.
	res := c.Classify(context.Background(), "book me a private jet")
	assert.Equal(t, 15, res.Confidence)

	// "jet" + "flight" + "airport" = 30.
	res = c.Classify(context.Background(), "jet flight from the airport")
	assert.Equal(t, 30, res.Confidence)
}

func TestClassify_FirstBucketWinsTies(t *testing.T) {
	c := New(tieCatalog(t), nil)

	// Both buckets score 10 from one keyword each; the first wins.
	res := c.Classify(context.Background(), "alpha beta")
	assert.Equal(t, "first", res.Bucket.ID)
}

func tieCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tie.yaml")
	content := `buckets:
  - id: first
    name: First
    keywords: [alpha]
  - id: second
    name: Second
    keywords: [beta]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	c, err := catalog.Load(path)
	require.NoError(t, err)
	return c
}
