package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/internal/ingest"
	"github.com/iceymoss/go-newsfeed/internal/repo"
	"github.com/iceymoss/go-newsfeed/internal/tasks"
	"github.com/iceymoss/go-newsfeed/internal/testutil"
	"github.com/iceymoss/go-newsfeed/pkg/db/objects"
	"github.com/iceymoss/go-newsfeed/pkg/transaction"
)

type stubRunner struct {
	summary *ingest.RunSummary
	err     error
	calls   int
}

func (r *stubRunner) Run(context.Context) (*ingest.RunSummary, error) {
	r.calls++
	return r.summary, r.err
}

func TestFetchTask(t *testing.T) {
	runner := &stubRunner{summary: &ingest.RunSummary{Inserted: 3, Skipped: 1, Errors: []ingest.RunError{
		{Scope: ingest.ScopeTopic, Topic: "world", Message: "API error 429"},
	}}}
	task := NewFetchTask(runner, zap.NewNop())

	assert.Equal(t, FetchTaskName, task.Identifier())
	assert.NoError(t, task.Run(context.Background(), nil), "部分失败不算任务失败")
	assert.Equal(t, 1, runner.calls)

	runner.err = errors.New("GNEWS_API_KEY is not configured")
	assert.EqualError(t, task.Run(context.Background(), nil), "GNEWS_API_KEY is not configured")
}

func TestRegisterFetch(t *testing.T) {
	RegisterFetch(&stubRunner{summary: &ingest.RunSummary{}}, "", zap.NewNop())
	task, err := tasks.GetTask(FetchTaskName)
	require.NoError(t, err)
	assert.Equal(t, FetchTaskName, task.Identifier())
}

const techFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Tech</title>
    <link>https://tech.example.com</link>
    <item>
      <title>New phone launched</title>
      <link>https://tech.example.com/phone</link>
      <description>Details inside.</description>
    </item>
    <item>
      <title>Chip exports rise</title>
      <link>https://tech.example.com/chips</link>
    </item>
  </channel>
</rss>`

func TestRSSTaskIngestsWithDedup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(techFeed))
	}))
	defer srv.Close()

	dbConn := testutil.NewSQLite(t)
	require.NoError(t, dbConn.Create(&objects.Category{ID: "cat-tech", Name: "Technology", Slug: "technology", IsActive: true}).Error)

	cfg := &conf.Config{Database: conf.DatabaseConfig{URL: "postgres://db/news", ServiceKey: "k"}}
	task := NewRSSTask(RSSDeps{
		Config:     cfg,
		Store:      repo.NewArticleRepo(transaction.NewManager(dbConn)),
		HTTPClient: srv.Client(),
		Logger:     zap.NewNop(),
		Sleep:      func(context.Context, time.Duration) error { return nil },
	})
	params := map[string]any{
		"max":   10,
		"feeds": map[string]any{"technology": srv.URL + "/tech.xml"},
	}

	// RSS 任务不需要 GNews key
	require.NoError(t, task.Run(context.Background(), params))
	require.NoError(t, task.Run(context.Background(), params))

	var rows []objects.NewsArticle
	require.NoError(t, dbConn.Order("source_url").Find(&rows).Error)
	require.Len(t, rows, 2, "重复运行不产生重复行")
	assert.Equal(t, "https://tech.example.com/chips", rows[0].SourceURL)
	require.NotNil(t, rows[0].CategoryID)
	assert.Equal(t, "cat-tech", *rows[0].CategoryID)
	assert.Equal(t, "Example Tech", rows[1].SourceName)
	assert.Equal(t, "Details inside.", rows[1].Summary)
}

func TestRSSTaskParams(t *testing.T) {
	task := NewRSSTask(RSSDeps{Config: &conf.Config{}})
	assert.EqualError(t, task.Run(context.Background(), map[string]any{}), "missing feeds")

	p, err := parseRSSParams(map[string]any{
		"max":   float64(5),
		"feeds": map[string]string{"world": "https://w.example.com/rss", "empty": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Max)
	assert.Equal(t, map[string]string{"world": "https://w.example.com/rss"}, p.Feeds)
}
