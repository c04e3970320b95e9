package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iceymoss/go-newsfeed/internal/ingest"
)

func TestCategorySlugForTopic(t *testing.T) {
	cases := map[string]string{
		"breaking-news": "breaking-news",
		"nation":        "india",
		"world":         "world",
		"technology":    "technology",
		"business":      "business",
		"sports":        "sports",
		"health":        "health",
		"science":       "india",
		"":              "india",
	}
	for topic, want := range cases {
		assert.Equal(t, want, ingest.CategorySlugForTopic(topic), topic)
	}
}

func TestResolveCategoryID(t *testing.T) {
	active := map[string]string{"india": "cat-india", "sports": "cat-sports"}

	id := ingest.ResolveCategoryID("sports", active)
	if assert.NotNil(t, id) {
		assert.Equal(t, "cat-sports", *id)
	}

	id = ingest.ResolveCategoryID("entertainment", active)
	if assert.NotNil(t, id) {
		assert.Equal(t, "cat-india", *id)
	}

	assert.Nil(t, ingest.ResolveCategoryID("world", active), "分类未启用")
	assert.Nil(t, ingest.ResolveCategoryID("entertainment", map[string]string{}))
}
