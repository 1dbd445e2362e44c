package transport

import (
	"fmt"
	"net/url"
	"reflect"
)

// Query renders the query component of a request URL. url.Values satisfies it.
type Query interface {
	Encode() string
}

// RawQuery is appended to the URL verbatim.
type RawQuery string

func (q RawQuery) Encode() string { return string(q) }

// Params is serialized as key=value pairs, sorted by key.
//
//   - nil values (and nil pointers, slices or maps) are left out.
//   - slice and array values repeat the key once per element; []byte is sent
//     as a single string.
//   - map values are flattened with bracket keys: {"f": {"x": "y"}} becomes
//     f[x]=y, recursively.
//   - booleans become 1 or 0, other values are formatted with fmt.
type Params map[string]any

func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	values := make(url.Values, len(p))
	for k, v := range p {
		addParam(values, k, v)
	}
	return values.Encode()
}

func addParam(values url.Values, key string, v any) {
	if v == nil {
		return
	}
	switch val := v.(type) {
	case string:
		values.Add(key, val)
		return
	case bool:
		if val {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
		return
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return
		}
		values.Add(key, val.String())
		return
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		addParam(values, key, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return
		}
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			values.Add(key, string(rv.Bytes()))
			return
		}
		for i := 0; i < rv.Len(); i++ {
			addParam(values, key, rv.Index(i).Interface())
		}
	case reflect.Map:
		if rv.IsNil() {
			return
		}
		iter := rv.MapRange()
		for iter.Next() {
			addParam(values, fmt.Sprintf("%s[%v]", key, iter.Key().Interface()), iter.Value().Interface())
		}
	default:
		values.Add(key, fmt.Sprint(v))
	}
}
