// Package retry implements the spec section 5 Staging-Store retry policy:
// exponential backoff (base 2^attempt seconds) bounded by both a max-attempt
// count and a total-duration cap, with rate-limit responses routed to a
// separate, longer, capped backoff that does not consume the ordinary
// attempt budget. Generalizes the teacher's generic WithNetworkRetry[T]
// helper (common/retryUtils.go) and its S3 error taxonomy (common/s3Errors.go).
package retry

import (
	"context"
	"math"
	"time"

	"github.com/minio/minio-go/v7"
)

// Policy configures one retry run.
type Policy struct {
	MaxAttempts      int
	MaxTotalDuration time.Duration
	RateLimitCap     time.Duration // cap on the rate-limit backoff (spec default 60s)
}

func DefaultPolicy(maxAttempts int, maxTotalDurationSeconds int) Policy {
	return Policy{
		MaxAttempts:      maxAttempts,
		MaxTotalDuration: time.Duration(maxTotalDurationSeconds) * time.Second,
		RateLimitCap:     60 * time.Second,
	}
}

// ErrorClass is the retry taxonomy for Staging Store errors. It is defined
// here rather than in internal/common, to keep this package
// dependency-free of the rest of the tree.
type ErrorClass int

const (
	ClassTransient ErrorClass = iota
	ClassRateLimited
	ClassPermanent
)

// permanentS3Codes never retry (spec section 5/7): missing object, bad
// credentials, access denied.
var permanentS3Codes = map[string]bool{
	"NoSuchKey":           true,
	"NoSuchBucket":        true,
	"AccessDenied":        true,
	"InvalidAccessKeyId":  true,
	"SignatureDoesNotMatch": true,
}

var rateLimitS3Codes = map[string]bool{
	"SlowDown":              true,
	"RequestLimitExceeded":  true,
	"ServiceUnavailable":    true,
}

// Classify determines how an error from the Staging Store should be
// handled. A nil error classifies as transient purely so callers can treat
// "unknown error shape" conservatively rather than silently stop retrying.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassTransient
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code != "" {
		if permanentS3Codes[resp.Code] {
			return ClassPermanent
		}
		if rateLimitS3Codes[resp.Code] {
			return ClassRateLimited
		}
		if resp.StatusCode == 503 {
			return ClassRateLimited
		}
	}
	return ClassTransient
}

// Do runs fn under the policy, retrying transient errors with exponential
// backoff (2^attempt seconds) and rate-limited errors with a longer, capped
// backoff that is not counted against MaxAttempts. Permanent errors
// propagate immediately without retry, per spec section 5/7.
func Do[T any](ctx context.Context, p Policy, fn func(attempt int) (T, error)) (T, error) {
	start := time.Now()
	var zero T
	attempt := 0
	ordinaryAttempts := 0
	for {
		attempt++
		result, err := fn(attempt)
		if err == nil {
			return result, nil
		}

		class := Classify(err)
		if class == ClassPermanent {
			return zero, err
		}
		if time.Since(start) > p.MaxTotalDuration {
			return zero, err
		}

		var wait time.Duration
		if class == ClassRateLimited {
			wait = backoffDuration(attempt, p.RateLimitCap)
		} else {
			ordinaryAttempts++
			if ordinaryAttempts >= p.MaxAttempts {
				return zero, err
			}
			wait = backoffDuration(attempt-1, p.MaxTotalDuration) // 2^attempt seconds; duration cap below bounds it; no separate per-wait cap for ordinary retries
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// backoffDuration computes 2^(attempt+1) seconds, capped. Rate-limited
// retries call it with the attempt number, which matches spec section 8's
// worked example (E5): three consecutive SlowDown responses produce waits
// of 4s, 8s, 16s -- i.e. 2^2, 2^3, 2^4 -- before the fourth call succeeds.
// Ordinary retries call it with attempt-1, giving 2^attempt seconds.
func backoffDuration(attempt int, cap time.Duration) time.Duration {
	d := time.Duration(math.Pow(2, float64(attempt+1))) * time.Second
	if d > cap {
		return cap
	}
	return d
}
