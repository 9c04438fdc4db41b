package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	common "github.com/decisiontelecom/messaging-gateway-go/internal/adapters/common"
)

// ErrBodyTooLarge reports a response body longer than the configured limit.
var ErrBodyTooLarge = errors.New("response body exceeds limit")

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 16 * 1024
)

// Request is a single HTTP exchange with the gateway.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is what the gateway answered. StatusText is the reason phrase
// without the numeric code, e.g. "Unauthorized".
type Response struct {
	StatusCode int
	StatusText string
	Body       string
}

// Transport performs one request. Connection level failures are returned as
// *common.TransportError; any HTTP status is a successful exchange.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a plain function to Transport.
type Func func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f Func) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPClient abstracts the http.Client Do method for easier testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customises the HTTP transport.
type Option func(*HTTPTransport)

// WithHTTPClient overrides the HTTP client used to talk to the gateway.
func WithHTTPClient(client HTTPClient) Option {
	return func(t *HTTPTransport) {
		if client != nil {
			t.client = client
		}
	}
}

// WithTimeout sets the timeout of the default HTTP client. It has no effect
// when combined with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(t *HTTPTransport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithBodyLimit adjusts the largest response body accepted.
func WithBodyLimit(limit int64) Option {
	return func(t *HTTPTransport) {
		if limit > 0 {
			t.maxBodyBytes = limit
		}
	}
}

// HTTPTransport is the net/http backed Transport.
type HTTPTransport struct {
	logger       zerolog.Logger
	client       HTTPClient
	timeout      time.Duration
	maxBodyBytes int64
}

// New constructs an HTTPTransport.
func New(logger zerolog.Logger, opts ...Option) *HTTPTransport {
	if reflect.ValueOf(logger).IsZero() {
		logger = zerolog.Nop()
	}
	t := &HTTPTransport{
		logger:       logger,
		timeout:      defaultTimeout,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: t.timeout}
	}
	return t
}

// Do sends req and reads the response body. A body longer than the configured
// limit is a transport failure wrapping ErrBodyTooLarge.
func (t *HTTPTransport) Do(ctx context.Context, r *Request) (*Response, error) {
	if r == nil {
		return nil, common.WrapTransport("new request", errors.New("request is nil"))
	}

	requestID := uuid.NewString()
	log := t.logger.With().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", redactedPath(r.URL)).
		Logger()

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		redactURLError(err)
		return nil, common.WrapTransport("new request", err)
	}
	for key, values := range r.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	started := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		redactURLError(err)
		log.Warn().Err(err).Msg("gateway request failed")
		return nil, common.WrapTransport("http do", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBodyBytes+1))
	if err != nil {
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("gateway response read failed")
		return nil, common.WrapTransport("read body", err)
	}
	if int64(len(data)) > t.maxBodyBytes {
		err := fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, t.maxBodyBytes)
		log.Warn().Err(err).Int("status", resp.StatusCode).Msg("gateway response rejected")
		return nil, common.WrapTransport("read body", err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Int("body_bytes", len(data)).
		Msg("gateway request completed")

	return &Response{
		StatusCode: resp.StatusCode,
		StatusText: statusText(resp),
		Body:       string(data),
	}, nil
}

// statusText extracts the reason phrase from resp.Status ("401 Unauthorized").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// redactURLError strips the query from a *url.Error so credentials do not end up
// in error messages. URLs that do not parse are cut at the first '?'.
func redactURLError(err error) {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return
	}
	if u, perr := url.Parse(uerr.URL); perr == nil {
		u.RawQuery = ""
		uerr.URL = u.String()
		return
	}
	uerr.URL, _, _ = strings.Cut(uerr.URL, "?")
}

// redactedPath drops the query string, which carries SMS credentials.
func redactedPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Path
}
