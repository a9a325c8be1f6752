package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"github.com/hupe1980/agenthub/logging"
)

// DefaultHTTPTimeout bounds a single HTTP capability request.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPStatusError reports a non-2xx response from the target service.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP request failed: %d - %s", e.StatusCode, e.Body)
}

// TransportError reports a request that never produced a response.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("HTTP request error: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPConfig is the decoded capability configuration of an HTTP capability.
type HTTPConfig struct {
	BaseURL  string
	Endpoint string
	Headers  map[string]string
	Timeout  time.Duration
}

// ParseHTTPConfig reads base_url, endpoint, headers and timeout (seconds)
// from a capability configuration map.
func ParseHTTPConfig(cfg map[string]any) HTTPConfig {
	out := HTTPConfig{
		Headers: map[string]string{},
		Timeout: DefaultHTTPTimeout,
	}
	out.BaseURL, _ = cfg["base_url"].(string)
	out.Endpoint, _ = cfg["endpoint"].(string)

	if headers, ok := cfg["headers"].(map[string]any); ok {
		for k, v := range headers {
			out.Headers[k] = fmt.Sprint(v)
		}
	}

	switch t := cfg["timeout"].(type) {
	case float64:
		if t > 0 {
			out.Timeout = time.Duration(t * float64(time.Second))
		}
	case int:
		if t > 0 {
			out.Timeout = time.Duration(t) * time.Second
		}
	}

	return out
}

// HTTPHandler performs a GET or POST against a configured endpoint.
type HTTPHandler struct {
	method  string
	config  HTTPConfig
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker[*resty.Response]
	logger  logging.Logger
}

// HTTPOptions configures an HTTPHandler.
type HTTPOptions struct {
	// Client overrides the resty client (tests).
	Client *resty.Client

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration

	Logger logging.Logger
}

// NewHTTPGetHandler creates a GET handler.
func NewHTTPGetHandler(name string, cfg HTTPConfig, optFns ...func(o *HTTPOptions)) *HTTPHandler {
	return newHTTPHandler(http.MethodGet, name, cfg, optFns...)
}

// NewHTTPPostHandler creates a POST handler.
func NewHTTPPostHandler(name string, cfg HTTPConfig, optFns ...func(o *HTTPOptions)) *HTTPHandler {
	return newHTTPHandler(http.MethodPost, name, cfg, optFns...)
}

func newHTTPHandler(method, name string, cfg HTTPConfig, optFns ...func(o *HTTPOptions)) *HTTPHandler {
	opts := HTTPOptions{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}

	client := opts.Client
	if client == nil {
		client = resty.New()
	}
	client.SetTimeout(cfg.Timeout)

	logger := opts.Logger
	threshold := opts.FailureThreshold

	breaker := gobreaker.NewCircuitBreaker[*resty.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("capability.http.breaker_state",
				"capability", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var statusErr *HTTPStatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return false
		},
	})

	return &HTTPHandler{
		method:  method,
		config:  cfg,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

// Method returns the HTTP method of the handler.
func (h *HTTPHandler) Method() string { return h.method }

// Execute issues the request and decodes a JSON response. Non-JSON bodies are
// returned as a string.
func (h *HTTPHandler) Execute(ctx context.Context, inv Invocation) (any, error) {
	endpoint, rest := expandPath(h.config.Endpoint, inv.Args)
	fullURL := h.config.BaseURL + endpoint

	req := h.client.R().SetContext(ctx).SetHeaders(h.config.Headers)
	if inv.Credential != "" {
		req.SetAuthToken(inv.Credential)
	}

	switch h.method {
	case http.MethodGet:
		for k, v := range rest {
			req.SetQueryParam(k, queryValue(v))
		}
	case http.MethodPost:
		if req.Header.Get("Content-Type") == "" {
			req.SetHeader("Content-Type", "application/json")
		}
		body, ok := rest["body"]
		if !ok {
			body = rest
		}
		if body == nil {
			body = map[string]any{}
		}
		req.SetBody(body)
	}

	h.logger.Info("capability.http.request",
		"method", h.method,
		"endpoint", endpoint,
		"tenant_id", inv.TenantID,
		"has_credential", inv.Credential != "",
	)

	resp, err := h.breaker.Execute(func() (*resty.Response, error) {
		resp, err := req.Execute(h.method, fullURL)
		if err != nil {
			return nil, &TransportError{Err: err}
		}
		if resp.IsError() {
			return resp, &HTTPStatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &TransportError{Err: fmt.Errorf("circuit open: %w", err)}
		}
		h.logger.Error("capability.http.failed",
			"method", h.method,
			"endpoint", endpoint,
			"tenant_id", inv.TenantID,
			"error", err.Error(),
		)
		return nil, err
	}

	h.logger.Info("capability.http.completed",
		"method", h.method,
		"endpoint", endpoint,
		"status_code", resp.StatusCode(),
		"tenant_id", inv.TenantID,
	)

	var out any
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return string(resp.Body()), nil
	}
	return out, nil
}

var pathParamRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandPath substitutes {name} placeholders with escaped argument values and
// returns the arguments that were not consumed.
func expandPath(endpoint string, args map[string]any) (string, map[string]any) {
	used := map[string]bool{}
	expanded := pathParamRe.ReplaceAllStringFunc(endpoint, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := args[name]
		if !ok {
			return m
		}
		used[name] = true
		return url.PathEscape(queryValue(v))
	})

	rest := make(map[string]any, len(args))
	for k, v := range args {
		if !used[k] {
			rest[k] = v
		}
	}
	return expanded, rest
}

func queryValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
