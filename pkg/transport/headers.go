package transport

import (
	"net/http"
	"strings"
)

// Headers maps canonical header names to values. Keys are canonicalized on
// ingestion so that overrides are case-insensitive.
type Headers map[string]string

// HeadersFromMap builds Headers from a key/value mapping.
func HeadersFromMap(m map[string]string) Headers {
	out := make(Headers, len(m))
	for k, v := range m {
		out.Set(k, v)
	}
	return out
}

// HeadersFromLines builds Headers from "Key: Value" entries. Each entry is split
// on its first colon and both sides trimmed. Entries without a colon or with an
// empty key are not usable as headers; they are left out and returned so the
// caller can report them.
func HeadersFromLines(lines []string) (Headers, []string) {
	out := make(Headers, len(lines))
	var dropped []string
	for _, line := range lines {
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			dropped = append(dropped, line)
			continue
		}
		out.Set(key, strings.TrimSpace(value))
	}
	return out, dropped
}

// Set stores value under the canonical form of key.
func (h Headers) Set(key, value string) {
	h[http.CanonicalHeaderKey(strings.TrimSpace(key))] = value
}

// Get returns the value stored for key, matched case-insensitively.
func (h Headers) Get(key string) string {
	return h[http.CanonicalHeaderKey(key)]
}

// Clone returns an independent copy.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Merge returns a new set holding h overlaid with override. Values in override
// win on key collision.
func (h Headers) Merge(override Headers) Headers {
	out := h.Clone()
	for k, v := range override {
		out.Set(k, v)
	}
	return out
}
