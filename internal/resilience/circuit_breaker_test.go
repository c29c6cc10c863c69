package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := New("test", Config{
		MaxHalfOpenRequests: 1,
		ClosedWindow:        time.Minute,
		OpenTimeout:         50 * time.Millisecond,
		FailureThreshold:    3,
		SuccessThreshold:    1,
	}, nil)

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), func() error { return boom })
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(context.Background(), func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerHalfOpenRecovers(t *testing.T) {
	cb := New("test", Config{
		MaxHalfOpenRequests: 1,
		ClosedWindow:        time.Minute,
		OpenTimeout:         10 * time.Millisecond,
		FailureThreshold:    1,
		SuccessThreshold:    1,
	}, nil)

	_ = cb.Execute(context.Background(), func() error { return errors.New("fail") })
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	err := cb.Execute(context.Background(), func() error { return nil })
	require.NoError(t, err)
	assert.Equal(t, StateClosed, cb.State())
}
