package server

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleRuns(c *gin.Context) {
	if s.deps.History == nil {
		jsonError(c, "Run ledger is disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := s.deps.History.RecentRuns(limit)
	if err != nil {
		slog.Error("API: failed to list runs", "error", err)
		jsonError(c, "Failed to list runs", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleRunByID(c *gin.Context) {
	if s.deps.History == nil {
		jsonError(c, "Run ledger is disabled", http.StatusNotFound)
		return
	}

	run, err := s.deps.History.GetRun(c.Param("id"))
	if errors.Is(err, sql.ErrNoRows) {
		jsonError(c, "Run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		slog.Error("API: failed to get run", "id", c.Param("id"), "error", err)
		jsonError(c, "Failed to get run", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleRunCalls(c *gin.Context) {
	if s.deps.History == nil {
		jsonError(c, "Run ledger is disabled", http.StatusNotFound)
		return
	}

	calls, err := s.deps.History.ListModelCalls(c.Param("id"))
	if err != nil {
		slog.Error("API: failed to list model calls", "error", err)
		jsonError(c, "Failed to list model calls", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": c.Param("id"), "calls": calls})
}

func (s *Server) handleStats(c *gin.Context) {
	if s.deps.History == nil {
		jsonError(c, "Run ledger is disabled", http.StatusNotFound)
		return
	}

	stats, err := s.deps.History.UsageStats()
	if err != nil {
		slog.Error("Failed to get stats", "error", err)
		jsonError(c, "Failed to get stats", http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, stats)
}
