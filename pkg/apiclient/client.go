// Package apiclient binds a transport to the API endpoint with the SDK's
// User-Agent and access-key credentials.
package apiclient

import (
	"context"
	"runtime"
	"strings"
	"time"

	"github.com/Adda-Baaj/accesskey-transport/pkg/httpclient"
	"github.com/Adda-Baaj/accesskey-transport/pkg/transport"
)

const (
	DefaultEndpoint = "https://rest.messagebird.com"
	ClientVersion   = "1.4.0"
)

// Options tunes the client. Zero values fall back to the transport defaults.
type Options struct {
	Endpoint          string
	Timeout           time.Duration
	ConnectionTimeout time.Duration
	Headers           transport.Headers
	// UserAgent fragments appended after the SDK and runtime fragments.
	UserAgent []string
	Sender    httpclient.Sender
	Logger    transport.Logger
}

// Client issues API requests through a configured Transport.
type Client struct {
	transport *transport.Transport
}

// New builds a Client authenticated with accessKey. An empty accessKey leaves
// the transport without credentials; requests then fail with
// *transport.AuthenticationError until SetAccessKey is called.
func New(accessKey string, opts Options) (*Client, error) {
	endpoint := opts.Endpoint
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = transport.DefaultTimeout
	}

	tr, err := transport.New(transport.Config{
		Endpoint:          endpoint,
		Timeout:           timeout,
		ConnectionTimeout: opts.ConnectionTimeout,
		Headers:           opts.Headers,
		Sender:            opts.Sender,
		Logger:            opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	tr.AppendUserAgent("ApiClient/" + ClientVersion)
	tr.AppendUserAgent("Go/" + strings.TrimPrefix(runtime.Version(), "go"))
	for _, fragment := range opts.UserAgent {
		if fragment = strings.TrimSpace(fragment); fragment != "" {
			tr.AppendUserAgent(fragment)
		}
	}

	c := &Client{transport: tr}
	c.SetAccessKey(accessKey)
	return c, nil
}

// SetAccessKey replaces the credentials used for subsequent requests.
func (c *Client) SetAccessKey(accessKey string) {
	if accessKey = strings.TrimSpace(accessKey); accessKey == "" {
		return
	}
	c.transport.SetAuthentication(transport.NewAuthentication(accessKey))
}

// Transport exposes the underlying transport.
func (c *Client) Transport() *transport.Transport { return c.transport }

// Do performs a request against resource.
func (c *Client) Do(ctx context.Context, method, resource string, query transport.Query, body string) (transport.Result, error) {
	return c.transport.PerformRequest(ctx, method, resource, query, body)
}
