package notion

import (
	"net/http"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/publicintelligence/datahub/internal/logger"
)

// newHTTPClient builds the HTTP client handed to the Notion SDK.
//
//	http.Client -> retryablehttp -> RateLimiter -> base transport
func newHTTPClient(cfg Config, base http.RoundTripper) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = retryLogger{}
	retryClient.HTTPClient.Transport = NewRateLimiter(cfg.RateLimit, base)

	client := retryClient.StandardClient()
	client.Timeout = cfg.Timeout
	return client
}

// retryLogger forwards retryablehttp logs to the application logger.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...any) { logger.Warnw(msg, keysAndValues...) }
func (retryLogger) Warn(msg string, keysAndValues ...any)  { logger.Warnw(msg, keysAndValues...) }
func (retryLogger) Info(msg string, keysAndValues ...any)  { logger.Debugw(msg, keysAndValues...) }
func (retryLogger) Debug(msg string, keysAndValues ...any) { logger.Debugw(msg, keysAndValues...) }

var _ retryablehttp.LeveledLogger = retryLogger{}
