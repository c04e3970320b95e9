package gnews_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/internal/provider/gnews"
	pkgerrors "github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

const headlinesJSON = `{
  "totalArticles": 2,
  "articles": [
    {
      "title": "Sensex closes higher",
      "description": "Markets rallied on Friday.",
      "content": "Full body...",
      "url": "https://example.com/markets/sensex",
      "image": "https://example.com/sensex.jpg",
      "publishedAt": "2024-05-31T11:30:00Z",
      "source": {"name": "Example Markets", "url": "https://example.com"}
    },
    {
      "title": "Rupee steady",
      "description": "",
      "content": "",
      "url": "https://example.com/markets/rupee",
      "image": "",
      "publishedAt": "",
      "source": {"name": "Example Markets", "url": "https://example.com"}
    }
  ]
}`

func TestTopHeadlines(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		q := r.URL.Query()
		gotQuery = map[string]string{
			"topic":   q.Get("topic"),
			"country": q.Get("country"),
			"lang":    q.Get("lang"),
			"max":     q.Get("max"),
			"apikey":  q.Get("apikey"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(headlinesJSON))
	}))
	defer srv.Close()

	client := gnews.NewClient(conf.GNewsConfig{APIKey: "secret", BaseURL: srv.URL + "/"}, srv.Client())
	articles, err := client.TopHeadlines(context.Background(), "business")
	require.NoError(t, err)

	assert.Equal(t, "/top-headlines", gotPath)
	assert.Equal(t, map[string]string{
		"topic":   "business",
		"country": "in",
		"lang":    "en",
		"max":     "10",
		"apikey":  "secret",
	}, gotQuery)

	require.Len(t, articles, 2)
	assert.Equal(t, "Sensex closes higher", articles[0].Title)
	assert.Equal(t, "https://example.com/markets/sensex", articles[0].URL)
	assert.Equal(t, "Example Markets", articles[0].Source.Name)
	assert.Equal(t, "2024-05-31T11:30:00Z", articles[0].PublishedAt)
	assert.Empty(t, articles[1].Image)
}

func TestTopHeadlinesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("upstream overloaded"))
	}))
	defer srv.Close()

	client := gnews.NewClient(conf.GNewsConfig{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	_, err := client.TopHeadlines(context.Background(), "technology")
	require.Error(t, err)

	var statusErr *gnews.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, "upstream overloaded", statusErr.Body)
	assert.Equal(t, "API error 503", err.Error())
}

func TestTopHeadlinesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"articles": [`))
	}))
	defer srv.Close()

	client := gnews.NewClient(conf.GNewsConfig{APIKey: "secret", BaseURL: srv.URL}, srv.Client())
	_, err := client.TopHeadlines(context.Background(), "world")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
	assert.True(t, pkgerrors.Is(err, xerr.PROVIDER_ERROR))
}

func TestTopHeadlinesRequestErrorHidesAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	client := gnews.NewClient(conf.GNewsConfig{APIKey: "SECRET-KEY-123", BaseURL: baseURL}, nil)
	_, err := client.TopHeadlines(context.Background(), "technology")
	require.Error(t, err)

	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.NotContains(t, err.Error(), "apikey")
	assert.Contains(t, err.Error(), "request headlines")
	assert.True(t, pkgerrors.Is(err, xerr.PROVIDER_ERROR))
}

func TestTopHeadlinesCancelledHidesAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"articles": []}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := gnews.NewClient(conf.GNewsConfig{APIKey: "SECRET-KEY-123", BaseURL: srv.URL}, srv.Client())
	_, err := client.TopHeadlines(ctx, "world")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET-KEY-123")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTopHeadlinesConfiguredParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"totalArticles": 0, "articles": []}`))
	}))
	defer srv.Close()

	client := gnews.NewClient(conf.GNewsConfig{
		APIKey:   "k",
		BaseURL:  srv.URL,
		Country:  "us",
		Language: "hi",
		Max:      25,
	}, srv.Client())
	articles, err := client.TopHeadlines(context.Background(), "sports")
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.Contains(t, gotQuery, "country=us")
	assert.Contains(t, gotQuery, "lang=hi")
	assert.Contains(t, gotQuery, "max=25")
}
