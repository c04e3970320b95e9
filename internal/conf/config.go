package conf

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	GNews    GNewsConfig    `mapstructure:"gnews"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Jobs     []JobConfig    `mapstructure:"jobs"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// GNewsConfig 头条接口配置
type GNewsConfig struct {
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Country  string        `mapstructure:"country"`
	Language string        `mapstructure:"lang"`
	Max      int           `mapstructure:"max"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig 数据库配置
// URL 不含密码，ServiceKey 为服务端凭据，二者缺一不可
type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"` // postgres / mysql
	URL            string `mapstructure:"url"`
	ServiceKey     string `mapstructure:"service_key"`
	ReadURL        string `mapstructure:"read_url"` // 可选，只读副本
	LogLevel       string `mapstructure:"log_level"`
	Migrate        bool   `mapstructure:"migrate"`
	SeedCategories bool   `mapstructure:"seed_categories"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// Enabled 未配置地址时不启用运行锁
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// IngestConfig 新闻抓取任务配置
type IngestConfig struct {
	Cron       string        `mapstructure:"cron"`
	Timezone   string        `mapstructure:"timezone"`
	Topics     []string      `mapstructure:"topics"`
	TopicDelay time.Duration `mapstructure:"topic_delay"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// JobConfig 配置型任务，Handler 为空时按 Name 查找任务实现
type JobConfig struct {
	Name    string                 `mapstructure:"name"`
	Handler string                 `mapstructure:"handler"`
	Cron    string                 `mapstructure:"cron"`
	Enable  bool                   `mapstructure:"enable"`
	Params  map[string]interface{} `mapstructure:"params"`
}

// Validate 检查抓取必需的密钥，缺失即为致命配置错误
func (c *Config) Validate() error {
	if c.GNews.APIKey == "" {
		return errors.New(xerr.CONFIG_ERROR, "GNEWS_API_KEY is not configured")
	}
	return c.ValidateDatabase()
}

// ValidateDatabase 只检查数据库凭据
func (c *Config) ValidateDatabase() error {
	if c.Database.URL == "" || c.Database.ServiceKey == "" {
		return errors.New(xerr.CONFIG_ERROR, "database environment variables not configured")
	}
	return nil
}

// 敏感配置项与对应的环境变量
var envBindings = map[string]string{
	"gnews.api_key":        "GNEWS_API_KEY",
	"gnews.base_url":       "GNEWS_BASE_URL",
	"database.url":         "DATABASE_URL",
	"database.service_key": "DATABASE_SERVICE_KEY",
	"database.read_url":    "DATABASE_READ_URL",
	"redis.addr":           "REDIS_ADDR",
	"redis.password":       "REDIS_PASSWORD",
	"server.port":          "SERVER_PORT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")

	v.SetDefault("gnews.base_url", "https://gnews.io/api/v4")
	v.SetDefault("gnews.country", "in")
	v.SetDefault("gnews.lang", "en")
	v.SetDefault("gnews.max", 10)
	v.SetDefault("gnews.timeout", 15*time.Second)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.log_level", "warning")
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.lock_ttl", 10*time.Minute)

	v.SetDefault("ingest.cron", "0 */30 * * * *")
	v.SetDefault("ingest.timezone", "Asia/Kolkata")
	v.SetDefault("ingest.topic_delay", 500*time.Millisecond)
	v.SetDefault("ingest.timeout", 5*time.Minute)
}

// LoadConfig 加载配置
// path 为空时只使用默认值和环境变量
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// 显式展开环境变量，允许 YAML 中写 ${VAR}
	for _, key := range v.AllKeys() {
		val, ok := v.Get(key).(string)
		if ok && strings.Contains(val, "${") {
			v.Set(key, os.ExpandEnv(val))
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
