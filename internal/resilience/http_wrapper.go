package resilience

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// HTTPWrapper wraps an *http.Client with a circuit breaker and a rate
// limiter, matching the teacher's internal/circuitbreaker.HTTPWrapper
// shape but using the real golang.org/x/time/rate limiter in place of the
// teacher's hand-rolled token arithmetic.
type HTTPWrapper struct {
	client  *http.Client
	cb      *CircuitBreaker
	limiter *rate.Limiter
	name    string
	logger  *zap.Logger
}

// NewHTTPWrapper builds a wrapper named name. ratePerSecond <= 0 disables
// rate limiting (useful in tests).
func NewHTTPWrapper(client *http.Client, name string, ratePerSecond float64, burst int, logger *zap.Logger) *HTTPWrapper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter *rate.Limiter
	if ratePerSecond > 0 {
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(ratePerSecond), burst)
	}
	return &HTTPWrapper{
		client:  client,
		cb:      New(name, DefaultConfig(), logger),
		limiter: limiter,
		name:    name,
		logger:  logger,
	}
}

// httpStatusError marks 5xx responses as breaker failures while still
// returning the response to the caller; 4xx responses never trip the
// breaker since they indicate a bad request, not a failing dependency.
type httpStatusError struct{ code int }

func (e *httpStatusError) Error() string { return http.StatusText(e.code) }

// Do executes req through the rate limiter and circuit breaker.
func (w *HTTPWrapper) Do(req *http.Request) (*http.Response, error) {
	if w.limiter != nil {
		if err := w.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	var resp *http.Response
	err := w.cb.Execute(req.Context(), func() error {
		var err2 error
		resp, err2 = w.client.Do(req)
		if err2 != nil {
			return err2
		}
		if resp.StatusCode >= 500 {
			return &httpStatusError{code: resp.StatusCode}
		}
		return nil
	})
	if _, ok := err.(*httpStatusError); ok {
		return resp, nil
	}
	return resp, err
}

// State exposes the underlying breaker state for metrics/health reporting.
func (w *HTTPWrapper) State() State { return w.cb.State() }
