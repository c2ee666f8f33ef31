package feedback

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/feedback/pkg/llm"
)

// stubModel is a ChatModel whose behavior is set per test.
type stubModel struct {
	mu    sync.Mutex
	calls int
	last  llm.ChatRequest
	fn    func(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error)
}

func (s *stubModel) Complete(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	s.mu.Lock()
	s.calls++
	s.last = req
	s.mu.Unlock()
	return s.fn(ctx, req)
}

func (s *stubModel) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func replying(text string) func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
	return func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{Model: "stub", Choices: []llm.Choice{{Text: text}}}, nil
	}
}

// hanging blocks until the test ends, ignoring ctx.
func hanging(t *testing.T) func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	return func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
		<-release
		return llm.ChatResponse{Choices: []llm.Choice{{Text: "too late"}}}, nil
	}
}

func TestAnalyze_TrimsFirstChoice(t *testing.T) {
	m := &stubModel{fn: func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{Choices: []llm.Choice{{Text: " Looks fine. "}, {Text: "ignored"}}}, nil
	}}
	svc := NewService(m, Options{})

	out, err := svc.Analyze(context.Background(), Request{Content: "def f(): pass", Context: "code review"})
	require.NoError(t, err)
	assert.Equal(t, "Looks fine.", out.Feedback)
}

func TestAnalyze_SendsFixedParameters(t *testing.T) {
	m := &stubModel{fn: replying("ok")}
	svc := NewService(m, Options{})

	_, err := svc.Analyze(context.Background(), Request{Content: "code", Context: "ctx"})
	require.NoError(t, err)

	assert.Equal(t, 1, m.callCount())
	assert.Equal(t, "You are an expert code reviewer.", m.last.System)
	assert.Equal(t, DefaultMaxTokens, m.last.MaxTokens)
	want, _ := RenderPrompt(Request{Content: "code", Context: "ctx"})
	assert.Equal(t, want, m.last.User)
}

func TestAnalyze_UsesConfiguredSampling(t *testing.T) {
	m := &stubModel{fn: replying("ok")}
	svc := NewService(m, Options{MaxTokens: 120, Temperature: DefaultTemperature})

	_, err := svc.Analyze(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 120, m.last.MaxTokens)
	assert.InDelta(t, DefaultTemperature, m.last.Temperature, 1e-9)
}

func TestAnalyze_TimeoutWhenUpstreamHangs(t *testing.T) {
	const bound = 100 * time.Millisecond
	svc := NewService(&stubModel{fn: hanging(t)}, Options{Timeout: bound})

	started := time.Now()
	_, err := svc.Analyze(context.Background(), Request{Content: "x", Context: "y"})
	elapsed := time.Since(started)

	require.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, elapsed, bound)
	assert.Less(t, elapsed, 5*bound)
}

func TestAnalyze_TimeoutCancelsUpstreamContext(t *testing.T) {
	cancelled := make(chan struct{})
	m := &stubModel{fn: func(ctx context.Context, _ llm.ChatRequest) (llm.ChatResponse, error) {
		<-ctx.Done()
		close(cancelled)
		return llm.ChatResponse{}, ctx.Err()
	}}
	svc := NewService(m, Options{Timeout: 50 * time.Millisecond})

	_, err := svc.Analyze(context.Background(), Request{})
	require.ErrorIs(t, err, ErrTimeout)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("upstream context was not cancelled")
	}
}

func TestAnalyze_UpstreamErrorKeepsMessage(t *testing.T) {
	m := &stubModel{fn: func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{}, &llm.APIError{StatusCode: 429, Message: "Rate limit reached"}
	}}
	svc := NewService(m, Options{})

	_, err := svc.Analyze(context.Background(), Request{})
	require.Error(t, err)

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Contains(t, err.Error(), "OpenAI API error")
	assert.Contains(t, err.Error(), "Rate limit reached")

	var apiErr *llm.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.StatusCode)
}

func TestAnalyze_NoChoicesIsUpstreamError(t *testing.T) {
	m := &stubModel{fn: func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
		return llm.ChatResponse{}, nil
	}}
	svc := NewService(m, Options{})

	_, err := svc.Analyze(context.Background(), Request{})
	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestAnalyze_CallerCancelIsNotTimeout(t *testing.T) {
	svc := NewService(&stubModel{fn: hanging(t)}, Options{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Analyze(ctx, Request{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_RequestsDoNotBlockEachOther(t *testing.T) {
	var inFlight, peak atomic.Int32
	gate := make(chan struct{})
	m := &stubModel{fn: func(context.Context, llm.ChatRequest) (llm.ChatResponse, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-gate
		inFlight.Add(-1)
		return llm.ChatResponse{Choices: []llm.Choice{{Text: "ok"}}}, nil
	}}
	svc := NewService(m, Options{Timeout: 2 * time.Second})

	const n = 5
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Analyze(context.Background(), Request{})
			errs <- err
		}()
	}

	require.Eventually(t, func() bool { return inFlight.Load() == n }, time.Second, 5*time.Millisecond)
	close(gate)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, n, peak.Load())
}

func TestAnalyze_WaitingForSlotCountsTowardTimeout(t *testing.T) {
	m := &stubModel{fn: hanging(t)}
	svc := NewService(m, Options{Timeout: 50 * time.Millisecond, MaxInFlight: 1})

	// First request occupies the only slot for the rest of the test.
	_, err := svc.Analyze(context.Background(), Request{})
	require.ErrorIs(t, err, ErrTimeout)

	_, err = svc.Analyze(context.Background(), Request{})
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, 1, m.callCount())
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &UpstreamError{Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "OpenAI API error: dial tcp: connection refused", err.Error())
}
