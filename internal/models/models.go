package models

import "time"

// Run statuses.
const (
	RunRunning   = "running"
	RunSucceeded = "succeeded"
	RunFailed    = "failed"
)

type Run struct {
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

type ModelCall struct {
	ID            int64     `json:"id"`
	RunID         string    `json:"run_id,omitempty"`
	Operation     string    `json:"operation"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	PromptChars   int       `json:"prompt_chars"`
	ResponseChars int       `json:"response_chars"`
	TokensUsed    int       `json:"tokens_used"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type UsageStats struct {
	TotalRuns         int   `json:"total_runs"`
	FailedRuns        int   `json:"failed_runs"`
	TotalCalls        int   `json:"total_calls"`
	FailedCalls       int   `json:"failed_calls"`
	TotalTokensUsed   int   `json:"total_tokens_used"`
	DatabaseSizeBytes int64 `json:"database_size_bytes"`
}
