package dto

import (
	"encoding/json"
	"time"
)

type EnqueueDTO struct {
	ID      string `json:"id" validate:"required,max=255"`
	Command string `json:"command" validate:"required"`
}

type JobResponseDTO struct {
	ID         string          `json:"id" yaml:"id"`
	Command    string          `json:"command" yaml:"command"`
	State      string          `json:"state" yaml:"state"`
	Attempts   int             `json:"attempts" yaml:"attempts"`
	MaxRetries int             `json:"max_retries" yaml:"max_retries"`
	BaseTime   int             `json:"base_time" yaml:"base_time"`
	LastError  string          `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty" yaml:"-"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" yaml:"updated_at"`
}

// AttemptResult is stored on the job after every execution attempt.
type AttemptResult struct {
	ExitCode   int       `json:"exit_code"`
	Output     string    `json:"output,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}
