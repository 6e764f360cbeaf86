package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thinkscotty/fakenews/internal/ai"
	"github.com/thinkscotty/fakenews/internal/pipeline"
	"github.com/thinkscotty/fakenews/internal/scraper"
)

// textRequest names either a page to fetch or text to use directly.
// Text wins when both are set.
type textRequest struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

type runResponse struct {
	*pipeline.Result
	Topics []ai.Topic `json:"topics,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"version":    s.version,
		"build_time": s.buildTime,
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := scraper.ValidateURL(req.URL); err != nil {
		jsonError(c, err.Error(), http.StatusBadRequest)
		return
	}

	text, err := s.deps.Extractor.ExtractText(c.Request.Context(), req.URL)
	if err != nil {
		apiError(c, "extract", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": req.URL, "text": text})
}

func (s *Server) handleSummary(c *gin.Context) {
	text, ok := s.resolveText(c)
	if !ok {
		return
	}

	summary, err := s.deps.Writer.Summarize(c.Request.Context(), text, ai.WithModel(s.deps.Model))
	if err != nil {
		apiError(c, "summary", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary": summary,
		"lines":   ai.ParseSummaryLines(summary),
	})
}

func (s *Server) handleStructuredSummary(c *gin.Context) {
	text, ok := s.resolveText(c)
	if !ok {
		return
	}

	raw, err := s.deps.Writer.SummarizeStructured(c.Request.Context(), text, ai.WithModel(s.deps.StructuredModel))
	if err != nil {
		apiError(c, "structured summary", err)
		return
	}

	resp := gin.H{"raw": raw.String()}
	if topics, err := raw.Parse(); err == nil {
		resp["topics"] = topics
	} else {
		slog.Debug("Structured summary did not parse", "error", err)
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleFakeNews(c *gin.Context) {
	text, ok := s.resolveText(c)
	if !ok {
		return
	}

	article, err := s.deps.Writer.GenerateFakeNews(c.Request.Context(), text, ai.WithModel(s.deps.Model))
	if err != nil {
		apiError(c, "fake news", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (s *Server) handleRun(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := scraper.ValidateURL(req.URL); err != nil {
		jsonError(c, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.deps.Runner.Run(c.Request.Context(), req.URL)
	if err != nil {
		apiError(c, "run", err)
		return
	}

	resp := runResponse{Result: res}
	if topics, err := res.Structured.Parse(); err == nil {
		resp.Topics = topics
	}
	c.JSON(http.StatusOK, resp)
}

// resolveText returns the request's text, fetching the URL when no text was
// given. It writes the error response itself and reports false on failure.
func (s *Server) resolveText(c *gin.Context) (string, bool) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, "Invalid request body", http.StatusBadRequest)
		return "", false
	}
	if req.Text != "" {
		return req.Text, true
	}
	if req.URL == "" {
		jsonError(c, "url or text is required", http.StatusBadRequest)
		return "", false
	}
	if err := scraper.ValidateURL(req.URL); err != nil {
		jsonError(c, err.Error(), http.StatusBadRequest)
		return "", false
	}

	text, err := s.deps.Extractor.ExtractText(c.Request.Context(), req.URL)
	if err != nil {
		apiError(c, "extract", err)
		return "", false
	}
	return text, true
}

// apiError maps pipeline failures onto HTTP statuses. A cancelled or expired
// request context wins over the upstream error that wraps it.
func apiError(c *gin.Context, op string, err error) {
	var ee *scraper.ExtractionError
	var mre *ai.ModelRequestError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		slog.Warn("API: request cancelled", "op", op, "error", err)
		jsonError(c, err.Error(), http.StatusGatewayTimeout)
	case errors.As(err, &ee), errors.As(err, &mre):
		slog.Warn("API: upstream failure", "op", op, "error", err)
		jsonError(c, err.Error(), http.StatusBadGateway)
	default:
		slog.Error("API: request failed", "op", op, "error", err)
		jsonError(c, "Internal error", http.StatusInternalServerError)
	}
}

func jsonError(c *gin.Context, message string, status int) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
