package feedback

import (
	"errors"
	"fmt"
)

// Request is the caller-supplied material to review.
type Request struct {
	Content string
	Context string
}

// Response carries the model's feedback, trimmed.
type Response struct {
	Feedback string `json:"openai_feedback"`
}

// ErrTimeout is returned when the upstream call does not finish within the bound.
var ErrTimeout = errors.New("OpenAI API request timed out")

// ErrNoChoices is wrapped into UpstreamError when the model returns nothing.
var ErrNoChoices = errors.New("no choices returned by model")

// UpstreamError wraps any non-timeout failure of the completion call.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("OpenAI API error: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
