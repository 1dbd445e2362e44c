package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adda-Baaj/accesskey-transport/pkg/transport"
	"gopkg.in/yaml.v3"
)

// headersFile represents the structure of a headers file. The headers entry is
// either a mapping of names to values or a list of "Key: Value" strings.
type headersFile struct {
	Headers any `json:"headers" yaml:"headers"`
}

// LoadHeaders reads default request headers from a YAML/JSON file. It returns
// the parsed headers and any list entries that could not be used as headers.
// An empty path yields no headers.
func LoadHeaders(path string) (transport.Headers, []string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return transport.Headers{}, nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open headers file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("read headers file: %w", err)
	}

	parsed, err := parseHeadersFile(raw, filepath.Ext(path))
	if err != nil {
		return nil, nil, err
	}
	return headersFromValue(parsed.Headers)
}

// parseHeadersFile attempts to decode the headers file content.
func parseHeadersFile(data []byte, ext string) (headersFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var f headersFile
		if err := d.fn(data, &f); err == nil {
			return f, nil
		}
	}

	return headersFile{}, errors.New("headers file format not recognized (expected YAML or JSON)")
}

// headersFromValue converts the decoded headers entry using the mapping or
// indexed-list ingestion rule.
func headersFromValue(v any) (transport.Headers, []string, error) {
	switch val := v.(type) {
	case nil:
		return transport.Headers{}, nil, nil
	case map[string]any:
		m := make(map[string]string, len(val))
		for k, item := range val {
			m[k] = scalarString(item)
		}
		return transport.HeadersFromMap(m), nil, nil
	case []any:
		lines := make([]string, 0, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, nil, fmt.Errorf("headers[%d]: expected string, got %T", i, item)
			}
			lines = append(lines, s)
		}
		h, dropped := transport.HeadersFromLines(lines)
		return h, dropped, nil
	default:
		return nil, nil, fmt.Errorf("headers must be a mapping or a list, got %T", v)
	}
}

func scalarString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
