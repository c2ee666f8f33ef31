package feedback

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/artem13815/feedback/pkg/llm"
	"github.com/artem13815/feedback/pkg/logging"
)

const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxTokens   = 300
	DefaultTemperature = 0.7
	DefaultMaxInFlight = 32
)

// UseCase describes the review scenario.
type UseCase interface {
	Analyze(ctx context.Context, req Request) (Response, error)
}

type Options struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds the whole wait, including queueing for a free slot.
	Timeout time.Duration
	// MaxInFlight caps concurrent upstream calls across all requests.
	MaxInFlight int64
}

type service struct {
	llm  llm.ChatModel
	opts Options
	sem  *semaphore.Weighted
}

// NewService creates the default implementation. Zero options take defaults.
func NewService(model llm.ChatModel, opts Options) UseCase {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	return &service{
		llm:  model,
		opts: opts,
		sem:  semaphore.NewWeighted(opts.MaxInFlight),
	}
}

func (s *service) Analyze(ctx context.Context, req Request) (Response, error) {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{
		"content_len": len(req.Content),
		"context_len": len(req.Context),
	})

	prompt, err := RenderPrompt(req)
	if err != nil {
		return Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	started := time.Now()
	res, err := s.complete(ctx, llm.ChatRequest{
		System:      systemPrompt,
		User:        prompt,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	latency := time.Since(started)
	if err == nil && len(res.Choices) == 0 {
		err = &UpstreamError{Err: ErrNoChoices}
	}
	if err != nil {
		log.WithError(err).WithField("latency", latency).Warn("analysis failed")
		return Response{}, err
	}

	log.WithFields(logrus.Fields{
		"latency": latency,
		"model":   res.Model,
	}).Info("analysis completed")
	return Response{Feedback: strings.TrimSpace(res.Choices[0].Text)}, nil
}

type completion struct {
	res llm.ChatResponse
	err error
}

// complete runs the upstream call in its own goroutine and waits for it or the deadline,
// whichever comes first. On deadline the goroutine is abandoned; its ctx is already
// cancelled and its result lands in a buffered channel nobody reads.
func (s *service) complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return llm.ChatResponse{}, classify(ctx, err)
	}

	done := make(chan completion, 1)
	go func() {
		defer s.sem.Release(1)
		res, err := s.llm.Complete(ctx, req)
		done <- completion{res: res, err: err}
	}()

	select {
	case c := <-done:
		if c.err != nil {
			return llm.ChatResponse{}, classify(ctx, c.err)
		}
		return c.res, nil
	case <-ctx.Done():
		return llm.ChatResponse{}, classify(ctx, ctx.Err())
	}
}

// classify maps a failure to ErrTimeout when our own deadline fired, else to UpstreamError.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return &UpstreamError{Err: err}
}
