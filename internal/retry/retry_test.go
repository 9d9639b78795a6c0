package retry

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBackoffDurationMatchesWorkedExample(t *testing.T) {
	a := assert.New(t)

	// Spec section 8 worked example E5: three SlowDown responses produce
	// waits of 4s, 8s, 16s before the fourth call succeeds.
	a.Equal(4*time.Second, backoffDuration(1, time.Hour))
	a.Equal(8*time.Second, backoffDuration(2, time.Hour))
	a.Equal(16*time.Second, backoffDuration(3, time.Hour))
}

func TestBackoffDurationCaps(t *testing.T) {
	a := assert.New(t)

	a.Equal(30*time.Second, backoffDuration(10, 30*time.Second))
}

func TestClassifyNilIsTransient(t *testing.T) {
	a := assert.New(t)
	a.Equal(ClassTransient, Classify(nil))
}

func TestClassifyUnrecognizedErrorIsTransient(t *testing.T) {
	a := assert.New(t)
	a.Equal(ClassTransient, Classify(errors.New("connection reset")))
}

func TestDoReturnsImmediatelyOnSuccess(t *testing.T) {
	a := assert.New(t)

	attempts := 0
	result, err := Do(context.Background(), DefaultPolicy(3, 60), func(attempt int) (string, error) {
		attempts++
		return "ok", nil
	})
	a.NoError(err)
	a.Equal("ok", result)
	a.Equal(1, attempts)
}

func TestDoStopsAfterMaxAttemptsOnTransientError(t *testing.T) {
	a := assert.New(t)

	attempts := 0
	_, err := Do(context.Background(), Policy{MaxAttempts: 3, MaxTotalDuration: time.Minute, RateLimitCap: time.Second}, func(attempt int) (string, error) {
		attempts++
		return "", errors.New("transient failure")
	})
	a.Error(err)
	a.Equal(3, attempts)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	a := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, Policy{MaxAttempts: 5, MaxTotalDuration: time.Minute, RateLimitCap: time.Minute}, func(attempt int) (string, error) {
		return "", errors.New("transient failure")
	})
	a.Error(err)
}
