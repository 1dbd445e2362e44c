package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adda-Baaj/accesskey-transport/internal/app"
	"github.com/Adda-Baaj/accesskey-transport/internal/config"
	"github.com/Adda-Baaj/accesskey-transport/internal/logger"
	"github.com/Adda-Baaj/accesskey-transport/pkg/transport"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "apicall failed: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("apicall", pflag.ContinueOnError)
	method := fs.StringP("method", "X", transport.MethodGet, "HTTP method (GET, POST, PUT, PATCH, DELETE)")
	resource := fs.StringP("resource", "r", "", "resource name, e.g. messages")
	query := fs.StringP("query", "q", "", "raw query string appended after ?")
	body := fs.StringP("body", "d", "", "request body")
	headers := fs.StringArrayP("header", "H", nil, `extra header as "Key: Value" (repeatable)`)
	history := fs.Int("history", 0, "print the last N recorded exchanges instead of calling the API")
	fs.String("endpoint", "", "API endpoint (overrides API_ENDPOINT)")
	fs.String("access-key", "", "access key (overrides API_ACCESS_KEY)")
	fs.Int64("timeout", 0, "request timeout in seconds (overrides API_TIMEOUT_SECONDS)")
	fs.String("log-level", "", "log level (overrides LOG_LEVEL)")
	fs.String("headers-file", "", "YAML/JSON file with default headers (overrides HEADERS_FILE)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("apicall starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	caller, err := app.NewCaller(cfg, log, app.Options{Headers: *headers})
	if err != nil {
		logger.ErrorObj("failed to initialize caller", "error", err)
		return err
	}
	defer caller.Close()

	if *history > 0 {
		if *resource != "" {
			logger.WarnObj("--history given; request flags are ignored", "resource", *resource)
		}
		return printHistory(stdout, caller, *history)
	}
	if *resource == "" {
		return errors.New("--resource is required")
	}

	res, err := caller.Call(ctx, app.Call{
		Method:   *method,
		Resource: *resource,
		Query:    *query,
		Body:     *body,
	})
	if err != nil {
		return err
	}
	logger.DebugObj("api response received", "api_response", map[string]any{
		"status":     res.StatusCode,
		"body_bytes": len(res.Body),
	})

	fmt.Fprintln(stdout, res.Header)
	fmt.Fprintln(stdout)
	if res.Body != "" {
		fmt.Fprintln(stdout, res.Body)
	}
	return nil
}

func printHistory(w io.Writer, caller *app.Caller, limit int) error {
	exchanges, err := caller.History(limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	for _, ex := range exchanges {
		status := fmt.Sprint(ex.StatusCode)
		if ex.Error != "" {
			status = "error: " + ex.Error
		}
		fmt.Fprintf(w, "%s  %-6s %s  %s  (%dms)\n", ex.At.Local().Format(time.RFC3339), ex.Method, ex.URL, status, ex.ElapsedMS)
	}
	return nil
}
