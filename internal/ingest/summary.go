package ingest

import (
	"fmt"

	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

// ErrorScope 错误的影响范围
type ErrorScope string

const (
	ScopeTopic   ErrorScope = "topic"
	ScopeArticle ErrorScope = "article"
)

// RunError 单条错误记录
// topic 错误默认 PROVIDER_ERROR，文章错误默认 DB_ERROR
type RunError struct {
	Scope     ErrorScope `json:"scope"`
	Code      int        `json:"code,omitempty"`
	Topic     string     `json:"topic"`
	SourceURL string     `json:"source_url,omitempty"`
	Message   string     `json:"message"`
}

// String 输出给后台展示的文本
func (e RunError) String() string {
	if e.Scope == ScopeArticle {
		return "Insert error: " + e.Message
	}
	return fmt.Sprintf("%s: %s", e.Topic, e.Message)
}

// RunSummary 一次抓取的汇总，不落库
type RunSummary struct {
	Inserted int        `json:"inserted"`
	Skipped  int        `json:"skipped"`
	Errors   []RunError `json:"errors,omitempty"`
}

func (s *RunSummary) addTopicError(topic string, err error) {
	s.Errors = append(s.Errors, RunError{
		Scope:   ScopeTopic,
		Code:    errors.CodeOr(err, xerr.PROVIDER_ERROR),
		Topic:   topic,
		Message: err.Error(),
	})
}

func (s *RunSummary) addArticleError(topic, sourceURL string, err error) {
	s.Errors = append(s.Errors, RunError{
		Scope:     ScopeArticle,
		Code:      errors.CodeOr(err, xerr.DB_ERROR),
		Topic:     topic,
		SourceURL: sourceURL,
		Message:   err.Error(),
	})
}

// Messages 按发生顺序返回错误文本，没有错误时返回 nil
func (s *RunSummary) Messages() []string {
	if len(s.Errors) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.Errors))
	for _, e := range s.Errors {
		out = append(out, e.String())
	}
	return out
}

// ErrorsIn 返回指定范围的错误
func (s *RunSummary) ErrorsIn(scope ErrorScope) []RunError {
	var out []RunError
	for _, e := range s.Errors {
		if e.Scope == scope {
			out = append(out, e)
		}
	}
	return out
}
