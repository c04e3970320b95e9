package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GNEWS_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://postgres@db.local:5432/news")
	t.Setenv("DATABASE_SERVICE_KEY", "service-role")

	c, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.Port)
	assert.Equal(t, "env-key", c.GNews.APIKey)
	assert.Equal(t, "https://gnews.io/api/v4", c.GNews.BaseURL)
	assert.Equal(t, "in", c.GNews.Country)
	assert.Equal(t, "en", c.GNews.Language)
	assert.Equal(t, 10, c.GNews.Max)
	assert.Equal(t, 15*time.Second, c.GNews.Timeout)
	assert.Equal(t, "postgres", c.Database.Driver)
	assert.True(t, c.Database.Migrate)
	assert.Equal(t, 500*time.Millisecond, c.Ingest.TopicDelay)
	assert.Equal(t, "Asia/Kolkata", c.Ingest.Timezone)
	assert.False(t, c.Redis.Enabled())
	assert.NoError(t, c.Validate())
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv("GNEWS_API_KEY", "")
	t.Setenv("NEWSFEED_TEST_DB_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: ":9090"
gnews:
  api_key: file-key
  max: 5
database:
  url: postgres://postgres@db:5432/news
  service_key: ${NEWSFEED_TEST_DB_KEY}
redis:
  addr: 127.0.0.1:6379
  lock_ttl: 2m
ingest:
  cron: "0 0 * * * *"
  topics: [world, sports]
  topic_delay: 1s
jobs:
  - name: net:ping
    cron: "@every 5m"
    enable: true
    params:
      url: https://gnews.io
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Port)
	assert.Equal(t, "file-key", c.GNews.APIKey)
	assert.Equal(t, 5, c.GNews.Max)
	assert.Equal(t, "from-env", c.Database.ServiceKey, "YAML 中的 ${VAR} 被展开")
	assert.True(t, c.Redis.Enabled())
	assert.Equal(t, 2*time.Minute, c.Redis.LockTTL)
	assert.Equal(t, []string{"world", "sports"}, c.Ingest.Topics)
	assert.Equal(t, time.Second, c.Ingest.TopicDelay)
	require.Len(t, c.Jobs, 1)
	assert.Equal(t, "net:ping", c.Jobs[0].Name)
	assert.Equal(t, "https://gnews.io", c.Jobs[0].Params["url"])
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	ok := Config{
		GNews:    GNewsConfig{APIKey: "k"},
		Database: DatabaseConfig{URL: "postgres://db", ServiceKey: "s"},
	}
	assert.NoError(t, ok.Validate())

	c := ok
	c.GNews.APIKey = ""
	err := c.Validate()
	assert.EqualError(t, err, "GNEWS_API_KEY is not configured")
	assert.True(t, errors.Is(err, xerr.CONFIG_ERROR))
	assert.NoError(t, c.ValidateDatabase())

	c = ok
	c.Database.ServiceKey = ""
	assert.EqualError(t, c.Validate(), "database environment variables not configured")
}
