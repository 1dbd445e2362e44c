package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Adda-Baaj/accesskey-transport/pkg/httpclient"
)

const testEndpoint = "https://rest.example.com"

type fakeSender struct {
	method  string
	url     string
	headers map[string]string
	body    string
	calls   int
	resp    httpclient.Response
	err     error
}

func (f *fakeSender) Send(_ context.Context, method, url string, headers map[string]string, body string) (httpclient.Response, error) {
	f.calls++
	f.method, f.url, f.headers, f.body = method, url, headers, body
	if f.err != nil {
		return nil, f.err
	}
	if f.resp == nil {
		return httpclient.StaticResponse{Status: http.StatusOK}, nil
	}
	return f.resp, nil
}

func newTestTransport(t *testing.T, sender httpclient.Sender, headers Headers) *Transport {
	t.Helper()
	tr, err := New(Config{
		Endpoint:          testEndpoint,
		Timeout:           DefaultTimeout,
		ConnectionTimeout: DefaultConnectionTimeout,
		Headers:           headers,
		Sender:            sender,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tr
}

func TestNewValidatesConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{name: "empty endpoint", cfg: Config{Timeout: time.Second}},
		{name: "zero timeout", cfg: Config{Endpoint: testEndpoint}},
		{name: "negative connection timeout", cfg: Config{Endpoint: testEndpoint, Timeout: time.Second, ConnectionTimeout: -time.Second}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.cfg); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	if _, err := New(Config{Endpoint: testEndpoint, Timeout: time.Second}); err != nil {
		t.Fatalf("zero connection timeout should be accepted: %v", err)
	}
}

func TestBuildRequestURL(t *testing.T) {
	tr := newTestTransport(t, &fakeSender{}, nil)

	cases := []struct {
		name  string
		query Query
		want  string
	}{
		{name: "nil query", query: nil, want: testEndpoint + "/a"},
		{name: "empty params", query: Params{}, want: testEndpoint + "/a"},
		{name: "empty raw", query: RawQuery(""), want: testEndpoint + "/a"},
		{name: "params", query: Params{"b": 1}, want: testEndpoint + "/a?b=1"},
		{name: "sorted params", query: Params{"z": "last", "a": true}, want: testEndpoint + "/a?a=1&z=last"},
		{name: "raw", query: RawQuery("x=1&y=2"), want: testEndpoint + "/a?x=1&y=2"},
		{name: "url values", query: url.Values{"q": {"a b"}}, want: testEndpoint + "/a?q=a+b"},
		{name: "int slice", query: Params{"ids": []int{1, 2}}, want: testEndpoint + "/a?ids=1&ids=2"},
		{name: "string slice", query: Params{"ids": []string{"1", "2"}}, want: testEndpoint + "/a?ids=1&ids=2"},
		{name: "array", query: Params{"ids": [2]int64{3, 4}}, want: testEndpoint + "/a?ids=3&ids=4"},
		{name: "nil value skipped", query: Params{"a": nil, "b": 1}, want: testEndpoint + "/a?b=1"},
		{name: "nil slice skipped", query: Params{"a": []int(nil), "b": 1}, want: testEndpoint + "/a?b=1"},
		{name: "only nil values", query: Params{"a": nil}, want: testEndpoint + "/a"},
		{name: "nested map", query: Params{"f": map[string]string{"x": "y"}}, want: testEndpoint + "/a?f%5Bx%5D=y"},
		{name: "deep nested map", query: Params{"f": map[string]any{"x": map[string]int{"z": 1}, "n": nil}}, want: testEndpoint + "/a?f%5Bx%5D%5Bz%5D=1"},
		{name: "pointer", query: Params{"p": ptr(7)}, want: testEndpoint + "/a?p=7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tr.BuildRequestURL("a", tc.query); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestPerformRequestWithoutAuthentication(t *testing.T) {
	sender := &fakeSender{}
	tr := newTestTransport(t, sender, nil)

	_, err := tr.PerformRequest(context.Background(), "foo", "bar", nil, "")
	if err == nil {
		t.Fatalf("expected authentication error")
	}
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthenticationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "Can not perform API Request without Authentication") {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if sender.calls != 0 {
		t.Fatalf("sender must not be called without authentication")
	}
}

func TestPerformRequestAssemblesHeaders(t *testing.T) {
	sender := &fakeSender{}
	tr := newTestTransport(t, sender, HeadersFromMap(map[string]string{"content-type": "text/plain"}))
	tr.SetAuthentication(NewAuthentication("live_abc"))
	tr.AppendUserAgent("ApiClient/1.0")

	if _, err := tr.PerformRequest(context.Background(), MethodPost, "messages", Params{"limit": 5}, `{"x":1}`); err != nil {
		t.Fatalf("PerformRequest: %v", err)
	}

	if sender.method != MethodPost {
		t.Fatalf("method = %s", sender.method)
	}
	if sender.url != testEndpoint+"/messages?limit=5" {
		t.Fatalf("url = %s", sender.url)
	}
	if sender.body != `{"x":1}` {
		t.Fatalf("body = %s", sender.body)
	}

	want := map[string]string{
		"Accept":         "application/json",
		"Content-Type":   "text/plain",
		"Accept-Charset": "utf-8",
		"Authorization":  "AccessKey live_abc",
		"User-Agent":     "ApiClient/1.0",
	}
	if len(sender.headers) != len(want) {
		t.Fatalf("headers = %#v", sender.headers)
	}
	for k, v := range want {
		if got := sender.headers[k]; got != v {
			t.Fatalf("header %s = %q, want %q", k, got, v)
		}
	}
}

func TestPerformRequestOmitsEmptyUserAgent(t *testing.T) {
	sender := &fakeSender{}
	tr := newTestTransport(t, sender, nil)
	tr.SetAuthentication(NewAuthentication("k"))

	if _, err := tr.PerformRequest(context.Background(), MethodGet, "balance", nil, ""); err != nil {
		t.Fatalf("PerformRequest: %v", err)
	}
	if _, ok := sender.headers["User-Agent"]; ok {
		t.Fatalf("User-Agent should not be sent without fragments")
	}
}

func TestSetAuthenticationReplacesCredentials(t *testing.T) {
	sender := &fakeSender{}
	tr := newTestTransport(t, sender, nil)
	tr.SetAuthentication(NewAuthentication("first"))
	tr.SetAuthentication(NewAuthentication("second"))

	if _, err := tr.PerformRequest(context.Background(), MethodGet, "balance", nil, ""); err != nil {
		t.Fatalf("PerformRequest: %v", err)
	}
	if got := sender.headers["Authorization"]; got != "AccessKey second" {
		t.Fatalf("Authorization = %q", got)
	}
}

func TestAppendUserAgent(t *testing.T) {
	tr := newTestTransport(t, &fakeSender{}, nil)
	tr.AppendUserAgent("a")
	tr.AppendUserAgent("b")
	tr.AppendUserAgent("a")
	if got := tr.UserAgent(); got != "a b a" {
		t.Fatalf("UserAgent = %q", got)
	}
}

func TestPerformRequestWrapsSenderFailure(t *testing.T) {
	cause := &httpclient.RequestError{StatusCode: 502, Err: errors.New("bad gateway")}
	tr := newTestTransport(t, &fakeSender{err: cause}, nil)
	tr.SetAuthentication(NewAuthentication("k"))

	_, err := tr.PerformRequest(context.Background(), MethodGet, "balance", nil, "")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *HTTPError, got %T", err)
	}
	if httpErr.Code != 502 {
		t.Fatalf("Code = %d", httpErr.Code)
	}
	if httpErr.Message != "bad gateway" {
		t.Fatalf("Message = %q", httpErr.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("HTTPError should unwrap to the sender error")
	}
	if IsAuthenticationError(err) {
		t.Fatalf("unexpected authentication error")
	}
}

func TestPerformRequestConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	tr, err := New(Config{Endpoint: endpoint, Timeout: time.Second, ConnectionTimeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.SetAuthentication(NewAuthentication("k"))

	_, err = tr.PerformRequest(context.Background(), MethodGet, "balance", nil, "")
	if !IsHTTPError(err) {
		t.Fatalf("expected *HTTPError, got %T (%v)", err, err)
	}
}

func TestPerformRequestNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "AccessKey k" {
			t.Fatalf("Authorization = %q", got)
		}
		w.Header().Set("X-Request-Id", "r1")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tr, err := New(Config{Endpoint: srv.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr.SetAuthentication(NewAuthentication("k"))

	res, err := tr.PerformRequest(context.Background(), MethodDelete, "messages/1", nil, "")
	if err != nil {
		t.Fatalf("PerformRequest: %v", err)
	}
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if res.Body != "" {
		t.Fatalf("body = %q", res.Body)
	}
	if !strings.HasPrefix(res.Header, "HTTP/1.1 204 No Content") || !strings.Contains(res.Header, "X-Request-Id: r1") {
		t.Fatalf("header = %q", res.Header)
	}
	if strings.HasSuffix(res.Header, "\r\n") {
		t.Fatalf("header block should be trimmed: %q", res.Header)
	}
}

func ptr[T any](v T) *T { return &v }

func TestHeadersReturnsCanonicalCopy(t *testing.T) {
	tr := newTestTransport(t, &fakeSender{}, HeadersFromMap(map[string]string{"x-trace": "abc"}))

	got := tr.Headers()
	if got["X-Trace"] != "abc" || len(got) != 1 {
		t.Fatalf("Headers = %#v", got)
	}
	got.Set("x-trace", "changed")
	got.Set("x-other", "1")
	if again := tr.Headers(); again["X-Trace"] != "abc" || len(again) != 1 {
		t.Fatalf("mutating the copy changed the transport: %#v", again)
	}
}
