package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Adda-Baaj/accesskey-transport/internal/config"
	"github.com/Adda-Baaj/accesskey-transport/internal/logger"
	"github.com/Adda-Baaj/accesskey-transport/internal/storage"
	"github.com/Adda-Baaj/accesskey-transport/pkg/apiclient"
	"github.com/Adda-Baaj/accesskey-transport/pkg/httpclient"
	"github.com/Adda-Baaj/accesskey-transport/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// Options carries the runtime dependencies of a Caller that do not come from config.
type Options struct {
	// Headers are "Key: Value" entries layered over the headers file.
	Headers []string
	// Registerer receives the request metrics; nil disables them.
	Registerer prometheus.Registerer
	// Sender overrides the resty sender, mainly for tests.
	Sender httpclient.Sender
}

// Call describes one API request.
type Call struct {
	Method   string
	Resource string
	Query    string
	Body     string
}

// Caller wires together config, the API client and the exchange history.
type Caller struct {
	cfg    *config.Config
	client *apiclient.Client
	store  storage.Store
	log    logger.Logger
}

// NewCaller builds a caller runtime from config.
func NewCaller(cfg *config.Config, log logger.Logger, opts Options) (*Caller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}

	headers, dropped, err := config.LoadHeaders(cfg.HeadersFile)
	if err != nil {
		return nil, fmt.Errorf("load headers: %w", err)
	}
	extra, droppedExtra := transport.HeadersFromLines(opts.Headers)
	dropped = append(dropped, droppedExtra...)
	if len(dropped) > 0 {
		log.WarnObj("ignoring header entries without a name", "dropped_headers", dropped)
	}
	headers = headers.Merge(extra)

	sender := opts.Sender
	if sender == nil {
		sender = httpclient.NewRestySender(cfg.Timeout, cfg.ConnectTimeout)
	}
	if opts.Registerer != nil {
		metrics, err := httpclient.NewMetrics(opts.Registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		sender = httpclient.Instrumented(sender, metrics)
	}

	var userAgent []string
	if ua := strings.TrimSpace(cfg.UserAgent); ua != "" {
		userAgent = append(userAgent, ua)
	}

	client, err := apiclient.New(cfg.AccessKey, apiclient.Options{
		Endpoint:          cfg.Endpoint,
		Timeout:           cfg.Timeout,
		ConnectionTimeout: cfg.ConnectTimeout,
		Headers:           headers,
		UserAgent:         userAgent,
		Sender:            sender,
		Logger:            log,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	log.DebugObj("request headers configured", "request_headers", headerNames(client.Transport().Headers()))

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		TTL:             cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.DebugObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"history_ttl_seconds":      int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	return &Caller{
		cfg:    cfg,
		client: client,
		store:  store,
		log:    log,
	}, nil
}

// Call performs the request and records it in the history. History failures
// are logged and do not affect the returned result.
func (c *Caller) Call(ctx context.Context, call Call) (transport.Result, error) {
	if c == nil || c.client == nil {
		return transport.Result{}, fmt.Errorf("caller is not initialized")
	}

	method := strings.ToUpper(strings.TrimSpace(call.Method))
	if method == "" {
		method = transport.MethodGet
	}
	resource := strings.TrimLeft(strings.TrimSpace(call.Resource), "/")
	query := transport.RawQuery(strings.TrimPrefix(strings.TrimSpace(call.Query), "?"))

	start := time.Now()
	res, err := c.client.Do(ctx, method, resource, query, call.Body)

	var authErr *transport.AuthenticationError
	if errors.As(err, &authErr) {
		return res, err
	}

	ex := storage.Exchange{
		Method:     method,
		URL:        c.client.Transport().BuildRequestURL(resource, query),
		StatusCode: res.StatusCode,
		ElapsedMS:  time.Since(start).Milliseconds(),
	}
	var httpErr *transport.HTTPError
	if errors.As(err, &httpErr) {
		ex.StatusCode = httpErr.Code
		ex.Error = httpErr.Message
	}
	if _, recErr := c.store.Record(ex); recErr != nil {
		c.log.ErrorObj("history record failed", "error", recErr)
	}

	return res, err
}

// History returns up to limit recorded exchanges, newest first.
func (c *Caller) History(limit int) ([]storage.Exchange, error) {
	if c == nil || c.store == nil {
		return nil, fmt.Errorf("caller is not initialized")
	}
	return c.store.Recent(limit)
}

// Close releases the history store, logging any errors encountered.
func (c *Caller) Close() {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		c.log.ErrorObj("storage close failed", "error", err)
	}
}

// headerNames lists header keys only; values may carry credentials.
func headerNames(h transport.Headers) []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
