package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// ConnParams holds the settings of a connection string of the form
// "Key1=Value1;Key2=Value2". Keys are case-insensitive; values may contain
// '=' (base64 account keys do).
type ConnParams map[string]string

// ParseConnectionString splits s into its key/value pairs.
func ParseConnectionString(s string) (ConnParams, error) {
	params := ConnParams{}
	for _, segment := range strings.Split(s, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed connection string segment %q", redact(segment))
		}
		params[strings.ToLower(key)] = strings.TrimSpace(value)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("connection string is empty")
	}
	return params, nil
}

// Get returns the value of key, or "".
func (p ConnParams) Get(key string) string {
	return p[strings.ToLower(key)]
}

// Require returns the value of key or an error naming the missing key.
func (p ConnParams) Require(key string) (string, error) {
	v := p.Get(key)
	if v == "" {
		return "", fmt.Errorf("connection string is missing %s", key)
	}
	return v, nil
}

// Bool parses key as a boolean, returning def when it is unset.
func (p ConnParams) Bool(key string, def bool) (bool, error) {
	v := p.Get(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("connection string %s: %w", key, err)
	}
	return b, nil
}

// redact keeps segment keys readable in errors without echoing values.
func redact(segment string) string {
	if len(segment) <= 4 {
		return "****"
	}
	return segment[:4] + "****"
}
