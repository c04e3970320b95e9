package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iceymoss/go-newsfeed/internal/feed"
	"github.com/iceymoss/go-newsfeed/pkg/errors"
	"github.com/iceymoss/go-newsfeed/pkg/xerr"
)

// FetchResponse 抓取触发接口的返回
type FetchResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message,omitempty"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// FailureResponse 致命错误
// 运行中途取消或超时时带上已完成的计数，未开始运行时为空
type FailureResponse struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error"`
	Inserted *int     `json:"inserted,omitempty"`
	Skipped  *int     `json:"skipped,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

func (s *Server) fetchNews(c *gin.Context) {
	if s.ingestor == nil {
		c.JSON(http.StatusInternalServerError, FailureResponse{Error: "news fetch is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	summary, err := s.ingestor.Run(ctx)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, xerr.RUN_IN_PROGRESS) {
			status = http.StatusConflict
		}
		resp := FailureResponse{Error: err.Error()}
		fields := []zap.Field{zap.Int("code", errors.CodeOf(err)), zap.Error(err)}
		if summary != nil {
			resp.Inserted = &summary.Inserted
			resp.Skipped = &summary.Skipped
			resp.Errors = summary.Messages()
			fields = append(fields, zap.Int("inserted", summary.Inserted), zap.Int("skipped", summary.Skipped))
		}
		s.log.Error("fetch-news failed", fields...)
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, FetchResponse{
		Success:  true,
		Message:  "News fetch complete",
		Inserted: summary.Inserted,
		Skipped:  summary.Skipped,
		Errors:   summary.Messages(),
	})
}

func (s *Server) listNews(c *gin.Context) {
	filters := feed.Filters{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	var err error
	if filters.DateFrom, err = parseDate(c.Query("date_from"), false); err != nil {
		badRequest(c, "invalid date_from")
		return
	}
	if filters.DateTo, err = parseDate(c.Query("date_to"), true); err != nil {
		badRequest(c, "invalid date_to")
		return
	}

	list, err := s.feed.ListArticles(c.Request.Context(), filters)
	s.respond(c, list, err)
}

func (s *Server) breakingNews(c *gin.Context) {
	list, err := s.feed.Breaking(c.Request.Context())
	s.respond(c, list, err)
}

func (s *Server) pinnedNews(c *gin.Context) {
	list, err := s.feed.Pinned(c.Request.Context())
	s.respond(c, list, err)
}

func (s *Server) categories(c *gin.Context) {
	list, err := s.feed.Categories(c.Request.Context())
	s.respond(c, list, err)
}

func (s *Server) serviceLinks(c *gin.Context) {
	list, err := s.feed.ServiceLinks(c.Request.Context())
	s.respond(c, list, err)
}

func (s *Server) listTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.scheduler.Jobs()})
}

func (s *Server) runTask(c *gin.Context) {
	name := c.Param("name")
	if err := s.scheduler.ManualRun(name); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, xerr.RUN_IN_PROGRESS) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Triggered"})
}

func (s *Server) taskLogs(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusOK, gin.H{"data": []any{}})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := s.history.RecentLogs(c.Request.Context(), c.Param("name"), limit)
	s.respond(c, list, err)
}

func (s *Server) respond(c *gin.Context, data any, err error) {
	if err != nil {
		s.log.Error("query failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"code": xerr.DB_ERROR, "error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": xerr.REQUEST_PARAM_ERROR, "error": msg})
}

// parseDate 支持 RFC3339 和 2006-01-02，只有日期时 endOfDay 取当天最后一刻
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
