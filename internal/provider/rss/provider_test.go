package rss_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/go-newsfeed/internal/provider/rss"
	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

const worldFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example World</title>
    <link>https://world.example.com</link>
    <item>
      <title>Summit ends with joint statement</title>
      <link>https://world.example.com/summit</link>
      <description>Leaders agreed on climate goals.</description>
      <pubDate>Fri, 31 May 2024 09:30:00 +0000</pubDate>
      <enclosure url="https://world.example.com/summit.jpg" type="image/jpeg" length="1024"/>
    </item>
    <item>
      <title>No link item</title>
      <description>skipped</description>
    </item>
    <item>
      <title>Ceasefire talks resume</title>
      <link>https://world.example.com/talks</link>
    </item>
  </channel>
</rss>`

func TestTopHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(worldFeed))
	}))
	defer srv.Close()

	p := rss.NewProvider(map[string]string{"world": srv.URL + "/world.xml"}, 0, srv.Client())
	articles, err := p.TopHeadlines(context.Background(), "world")
	require.NoError(t, err)
	require.Len(t, articles, 2, "没有链接的条目被忽略")

	first := articles[0]
	assert.Equal(t, "Summit ends with joint statement", first.Title)
	assert.Equal(t, "https://world.example.com/summit", first.URL)
	assert.Equal(t, "Leaders agreed on climate goals.", first.Description)
	assert.Equal(t, "2024-05-31T09:30:00Z", first.PublishedAt)
	assert.Equal(t, "https://world.example.com/summit.jpg", first.Image)
	assert.Equal(t, "Example World", first.Source.Name)

	assert.Empty(t, articles[1].PublishedAt)
	assert.Empty(t, articles[1].Image)
}

func TestTopHeadlinesLimitAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(worldFeed))
	}))
	defer srv.Close()

	p := rss.NewProvider(map[string]string{
		"world":  srv.URL + "/world",
		"sports": srv.URL + "/broken",
	}, 1, srv.Client())
	assert.Equal(t, []string{"sports", "world"}, p.Topics())

	articles, err := p.TopHeadlines(context.Background(), "world")
	require.NoError(t, err)
	assert.Len(t, articles, 1)

	_, err = p.TopHeadlines(context.Background(), "sports")
	require.Error(t, err)
	assert.True(t, errors.Is(err, xerr.PROVIDER_ERROR))

	_, err = p.TopHeadlines(context.Background(), "health")
	assert.EqualError(t, err, "no feed configured for topic health")
}
