package assessment

import (
	"fmt"
	"time"
)

// Status is the safety outcome of an assessment.
type Status string

const (
	StatusSafe     Status = "safe"
	StatusCritical Status = "critical"
)

// Source identifies which strategy produced a verdict.
type Source string

const (
	SourceLLM   Source = "llm"
	SourceModel Source = "model"
	SourceRules Source = "rules"
)

// Verdict is the displayable result of one assessment.
type Verdict struct {
	ID         string    `json:"id"`
	Status     Status    `json:"status"`
	Headline   string    `json:"headline"`
	Detail     string    `json:"detail"`
	Confidence *float64  `json:"confidence,omitempty"`
	Source     Source    `json:"source"`
	DemoMode   bool      `json:"demo_mode"`
	AssessedAt time.Time `json:"assessed_at"`
}

// ExternalCallError is returned when the chat-completion call was attempted and failed.
type ExternalCallError struct {
	StatusCode int
	Err        error
}

func (e *ExternalCallError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm call failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("llm call failed: %v", e.Err)
}

func (e *ExternalCallError) Unwrap() error { return e.Err }
