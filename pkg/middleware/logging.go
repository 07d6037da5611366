// Package middleware wraps the gateway client's HTTP transport.
package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// RequestLogger returns transport middleware that logs gateway requests at
// DEBUG level. Pass nil logger to disable logging (makes it optional/injectable).
// requestIDHeader names the header whose value is logged, if any.
func RequestLogger(logger *zap.Logger, requestIDHeader string) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		if next == nil {
			next = http.DefaultTransport
		}
		// If no logger provided, pass through without logging
		if logger == nil {
			return next
		}

		return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			}
			if requestIDHeader != "" {
				if id := r.Header.Get(requestIDHeader); id != "" {
					fields = append(fields, zap.String("request_id", id))
				}
			}
			if err != nil {
				logger.Debug("HTTP request failed", append(fields, zap.Error(err))...)
				return resp, err
			}

			logger.Debug("HTTP request", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		})
	}
}
