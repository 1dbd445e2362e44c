package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	StatusCode() int
	// RawHeaders returns the status line and header lines as received.
	RawHeaders() string
	Body() []byte
}

// Sender abstracts the network call so callers can inject mocks or different transports.
type Sender interface {
	Send(ctx context.Context, method, url string, headers map[string]string, body string) (Response, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, method, url string, headers map[string]string, body string) (Response, error)

func (f SenderFunc) Send(ctx context.Context, method, url string, headers map[string]string, body string) (Response, error) {
	return f(ctx, method, url, headers, body)
}

// StaticResponse is a Response with fixed values, used by fakes and tests.
type StaticResponse struct {
	Status  int
	Headers string
	Payload []byte
}

func (r StaticResponse) StatusCode() int    { return r.Status }
func (r StaticResponse) RawHeaders() string { return r.Headers }
func (r StaticResponse) Body() []byte       { return r.Payload }
