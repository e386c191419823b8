package gateway

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

type loggerTransport struct {
	transport http.RoundTripper
	logger    *log.Logger
}

func (l *loggerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	l.logger.Debug("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"auth", req.Header.Get("Authorization") != "",
	)

	startTime := time.Now()
	resp, err := l.transport.RoundTrip(req)
	if err != nil {
		l.logger.Error("HTTP Request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, err
	}

	l.logger.Debug("HTTP Response",
		"status", resp.Status,
		"duration", time.Since(startTime),
		"url", req.URL.String(),
		"method", req.Method,
	)

	return resp, nil
}

// NewLoggingTransport wraps transport so every request and response is logged
// at debug level. A nil transport means http.DefaultTransport.
func NewLoggingTransport(transport http.RoundTripper, logger *log.Logger) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &loggerTransport{transport: transport, logger: logger}
}
