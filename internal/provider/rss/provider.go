// Package rss 将 RSS/Atom 源适配为头条数据源
package rss

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/iceymoss/go-newsfeed/internal/provider/gnews"
	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

const defaultMax = 10

// Provider 每个 topic 对应一个订阅地址
type Provider struct {
	parser *gofeed.Parser
	feeds  map[string]string
	max    int
}

// NewProvider feeds 为 topic -> 订阅地址
func NewProvider(feeds map[string]string, max int, httpClient *http.Client) *Provider {
	parser := gofeed.NewParser()
	if httpClient != nil {
		parser.Client = httpClient
	}
	if max <= 0 {
		max = defaultMax
	}
	return &Provider{parser: parser, feeds: feeds, max: max}
}

// Topics 按字母顺序返回已配置的 topic
func (p *Provider) Topics() []string {
	topics := make([]string, 0, len(p.feeds))
	for topic := range p.feeds {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}

// TopHeadlines 拉取 topic 对应的订阅并转换为统一的文章结构
func (p *Provider) TopHeadlines(ctx context.Context, topic string) ([]gnews.Article, error) {
	feedURL, ok := p.feeds[topic]
	if !ok {
		return nil, fmt.Errorf("no feed configured for topic %s", topic)
	}

	feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, errors.Wrap(xerr.PROVIDER_ERROR, "parse feed "+feedURL, err)
	}

	articles := make([]gnews.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}
		articles = append(articles, convert(feed, item))
		if len(articles) == p.max {
			break
		}
	}
	return articles, nil
}

func convert(feed *gofeed.Feed, item *gofeed.Item) gnews.Article {
	a := gnews.Article{
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(item.Description),
		Content:     item.Content,
		URL:         strings.TrimSpace(item.Link),
		Source:      gnews.Source{Name: feed.Title, URL: feed.Link},
	}

	switch {
	case item.PublishedParsed != nil:
		a.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	case item.UpdatedParsed != nil:
		a.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	if item.Image != nil {
		a.Image = item.Image.URL
	} else {
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				a.Image = enc.URL
				break
			}
		}
	}
	return a
}
