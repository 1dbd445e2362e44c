// Package transport turns logical API calls into HTTP requests against an
// access-key authenticated API and normalizes the responses.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Adda-Baaj/accesskey-transport/pkg/httpclient"
)

// Supported request methods.
const (
	MethodGet    = http.MethodGet
	MethodPost   = http.MethodPost
	MethodPut    = http.MethodPut
	MethodPatch  = http.MethodPatch
	MethodDelete = http.MethodDelete
)

const (
	DefaultTimeout           = 10 * time.Second
	DefaultConnectionTimeout = 2 * time.Second
)

// Authentication holds the access key sent with every request.
type Authentication struct {
	AccessKey string
}

// NewAuthentication returns an Authentication for accessKey.
func NewAuthentication(accessKey string) *Authentication {
	return &Authentication{AccessKey: accessKey}
}

// Config carries the construction parameters of a Transport.
type Config struct {
	Endpoint string
	// Timeout bounds the whole request and must be positive.
	Timeout time.Duration
	// ConnectionTimeout bounds dialing; zero means no dial limit.
	ConnectionTimeout time.Duration
	Headers           Headers
	// Sender performs the network call. A resty sender bound to the timeouts
	// is used when nil.
	Sender httpclient.Sender
	Logger Logger
}

// Result is the normalized outcome of a request.
type Result struct {
	StatusCode int
	// Header is the raw header block, trimmed.
	Header string
	Body   string
}

// Transport builds and sends API requests. Its setters are not synchronized;
// callers must not mutate a Transport while requests are in flight.
type Transport struct {
	endpoint  string
	sender    httpclient.Sender
	headers   Headers
	userAgent []string
	auth      *Authentication
	log       Logger
}

// New validates cfg and returns a Transport bound to cfg.Endpoint.
func New(cfg Config) (*Transport, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid timeout %s (must be positive)", cfg.Timeout)
	}
	if cfg.ConnectionTimeout < 0 {
		return nil, fmt.Errorf("invalid connection timeout %s (must not be negative)", cfg.ConnectionTimeout)
	}

	sender := cfg.Sender
	if sender == nil {
		sender = httpclient.NewRestySender(cfg.Timeout, cfg.ConnectionTimeout)
	}

	t := &Transport{
		endpoint: endpoint,
		sender:   sender,
		headers:  Headers{},
		log:      ensureLogger(cfg.Logger),
	}
	t.SetHeaders(cfg.Headers)
	return t, nil
}

// Endpoint returns the base URL requests are built against.
func (t *Transport) Endpoint() string { return t.endpoint }

// AppendUserAgent adds fragment to the User-Agent sent with subsequent requests.
func (t *Transport) AppendUserAgent(fragment string) {
	t.userAgent = append(t.userAgent, fragment)
}

// UserAgent returns the space-joined User-Agent fragments.
func (t *Transport) UserAgent() string {
	return strings.Join(t.userAgent, " ")
}

// SetAuthentication attaches the credentials used for every request.
func (t *Transport) SetAuthentication(auth *Authentication) {
	t.auth = auth
}

// Authentication returns the attached credentials, nil when none.
func (t *Transport) Authentication() *Authentication { return t.auth }

// SetHeaders replaces the instance headers merged into every request.
func (t *Transport) SetHeaders(h Headers) {
	t.headers = HeadersFromMap(h)
}

// Headers returns a copy of the instance headers.
func (t *Transport) Headers() Headers { return t.headers.Clone() }

// BuildRequestURL joins the endpoint and resourceName and appends the encoded
// query, if any.
func (t *Transport) BuildRequestURL(resourceName string, query Query) string {
	requestURL := t.endpoint + "/" + resourceName
	if query == nil {
		return requestURL
	}
	if encoded := query.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}
	return requestURL
}

// PerformRequest sends method to the URL built from resourceName and query.
// Non-2xx responses are returned as results; only failures reported by the
// sender become errors.
func (t *Transport) PerformRequest(ctx context.Context, method, resourceName string, query Query, body string) (Result, error) {
	if t.auth == nil {
		return Result{}, &AuthenticationError{Message: errNoAuthentication}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestURL := t.BuildRequestURL(resourceName, query)
	headers := t.requestHeaders()

	start := time.Now()
	resp, err := t.sender.Send(ctx, method, requestURL, headers, body)
	if err != nil {
		httpErr := newHTTPError(err)
		t.log.ErrorObj("api request failed", "api_request_error", map[string]any{
			"method":     method,
			"url":        requestURL,
			"code":       httpErr.Code,
			"error":      err.Error(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
		return Result{}, httpErr
	}

	result := Result{
		StatusCode: resp.StatusCode(),
		Header:     strings.TrimSpace(resp.RawHeaders()),
		Body:       string(resp.Body()),
	}
	t.log.DebugObj("api request completed", "api_request", map[string]any{
		"method":     method,
		"url":        requestURL,
		"status":     result.StatusCode,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return result, nil
}

// requestHeaders returns the defaults overlaid with the instance headers.
func (t *Transport) requestHeaders() map[string]string {
	defaults := Headers{
		"Accept":         "application/json",
		"Content-Type":   "application/json",
		"Accept-Charset": "utf-8",
		"Authorization":  "AccessKey " + t.auth.AccessKey,
	}
	if ua := t.UserAgent(); ua != "" {
		defaults["User-Agent"] = ua
	}
	return defaults.Merge(t.headers)
}
