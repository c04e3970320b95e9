// Package gnews 是 GNews top-headlines 接口的客户端
package gnews

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iceymoss/go-newsfeed/internal/conf"
	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

const (
	DefaultBaseURL  = "https://gnews.io/api/v4"
	DefaultCountry  = "in"
	DefaultLanguage = "en"
	DefaultMax      = 10
)

// Source 文章来源
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Article 接口返回的单篇文章，只在内存中流转
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
	Source      Source `json:"source"`
}

// Response top-headlines 响应体
type Response struct {
	TotalArticles int       `json:"totalArticles"`
	Articles      []Article `json:"articles"`
}

// StatusError 非 2xx 响应
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Client 按 topic 拉取头条
type Client struct {
	baseURL  string
	apiKey   string
	country  string
	language string
	max      int
	http     *http.Client
}

// NewClient 从配置构建客户端，缺省值与 GNews 免费套餐一致
func NewClient(cfg conf.GNewsConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	c := &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		country:  cfg.Country,
		language: cfg.Language,
		max:      cfg.Max,
		http:     httpClient,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.country == "" {
		c.country = DefaultCountry
	}
	if c.language == "" {
		c.language = DefaultLanguage
	}
	if c.max <= 0 {
		c.max = DefaultMax
	}
	return c
}

// TopHeadlines 拉取一个 topic 的头条
// 非 2xx 返回 *StatusError，请求失败或响应体无法解析时返回 PROVIDER_ERROR
// 错误文本不包含请求地址，避免 apikey 出现在日志和接口响应中
func (c *Client) TopHeadlines(ctx context.Context, topic string) ([]Article, error) {
	endpoint, err := c.headlinesURL(topic)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(xerr.PROVIDER_ERROR, "build request", withoutURL(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(xerr.PROVIDER_ERROR, "request headlines", withoutURL(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(xerr.PROVIDER_ERROR, "decode response", err)
	}
	return payload.Articles, nil
}

// withoutURL 去掉 *url.Error 中带查询参数的完整地址
func withoutURL(err error) error {
	var urlErr *url.Error
	if stderrors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func (c *Client) headlinesURL(topic string) (string, error) {
	parsed, err := url.Parse(c.baseURL + "/top-headlines")
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", c.baseURL, err)
	}

	query := parsed.Query()
	query.Set("topic", topic)
	query.Set("country", c.country)
	query.Set("lang", c.language)
	query.Set("max", strconv.Itoa(c.max))
	query.Set("apikey", c.apiKey)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
