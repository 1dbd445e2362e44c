package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RequestError reports a request that failed below the HTTP response level.
// StatusCode is set when the library still produced a response.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.Err == nil {
		return "http request failed"
	}
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

// Code returns the status code associated with the failure, 0 when none.
func (e *RequestError) Code() int { return e.StatusCode }

// RestySender adapts resty.Client to the httpclient.Sender interface.
type RestySender struct {
	client *resty.Client
}

// NewRestySender creates a RestySender with the request timeout and the
// connection (dial) timeout. A zero connectTimeout leaves dialing unbounded.
func NewRestySender(timeout, connectTimeout time.Duration) *RestySender {
	return &RestySender{client: newRestyBaseClient(timeout, connectTimeout)}
}

// newRestyBaseClient creates a new resty.Client with the specified timeouts.
func newRestyBaseClient(timeout, connectTimeout time.Duration) *resty.Client {
	dialer := &net.Dialer{Timeout: connectTimeout, KeepAlive: 30 * time.Second}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = dialer.DialContext

	c := resty.New()
	c.SetTransport(tr)
	c.SetTimeout(timeout)
	return c
}

// Send performs the request and returns the raw response. Non-2xx statuses are
// returned as responses, not errors.
func (r *RestySender) Send(ctx context.Context, method, url string, headers map[string]string, body string) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	if body != "" {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		reqErr := &RequestError{Err: err}
		if resp != nil && resp.RawResponse != nil {
			reqErr.StatusCode = resp.StatusCode()
		}
		return nil, reqErr
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }

func (r *restyResponseAdapter) RawHeaders() string {
	proto := "HTTP/1.1"
	if r.resp.RawResponse != nil && r.resp.RawResponse.Proto != "" {
		proto = r.resp.RawResponse.Proto
	}
	return RenderRawHeaders(proto, r.resp.Status(), r.resp.Header())
}

// RenderRawHeaders formats a status line followed by one "Key: Value" line per
// header value, CRLF separated. Keys are emitted in sorted order.
func RenderRawHeaders(proto, status string, header http.Header) string {
	var b strings.Builder
	if status != "" {
		fmt.Fprintf(&b, "%s %s\r\n", proto, status)
	}

	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range header[k] {
			fmt.Fprintf(&b, "%s: %s\r\n", k, v)
		}
	}
	return b.String()
}
