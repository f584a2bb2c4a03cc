package config

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrInvalidPayload is returned when a trigger document is not valid JSON.
var ErrInvalidPayload = errors.New("payload is not valid JSON")

// ParsePayload overlays a trigger document
//
//	{"requests": 100, "concurrency": 10, "timeout": 2000, "endpoints": ["/a"], "host": "http://svc"}
//
// on top of base and returns the normalized result. Every field is optional.
// Numeric fields accept numbers or numeric strings; anything missing, zero,
// negative or unparsable keeps the base value.
func ParsePayload(base Config, body []byte) (*Config, error) {
	cfg := base
	cfg.Endpoints = append([]string(nil), base.Endpoints...)
	cfg.Headers = make(map[string]string, len(base.Headers))
	for k, v := range base.Headers {
		cfg.Headers[k] = v
	}

	body = bytes.TrimSpace(body)
	if len(body) > 0 {
		if !gjson.ValidBytes(body) {
			return nil, ErrInvalidPayload
		}
		doc := gjson.ParseBytes(body)
		if doc.IsObject() {
			if n, ok := positiveInt(doc.Get("requests")); ok {
				cfg.Requests = n
			}
			if n, ok := positiveInt(doc.Get("concurrency")); ok {
				cfg.Concurrency = n
			}
			if n, ok := positiveInt(doc.Get("timeout")); ok {
				cfg.Timeout = msDuration(n)
			}
			if eps := doc.Get("endpoints"); eps.IsArray() {
				items := eps.Array()
				if len(items) > 0 {
					cfg.Endpoints = make([]string, 0, len(items))
					for _, item := range items {
						cfg.Endpoints = append(cfg.Endpoints, item.String())
					}
				}
			}
			if host := doc.Get("host"); host.Type == gjson.String && strings.TrimSpace(host.Str) != "" {
				cfg.Host = strings.TrimSpace(host.Str)
			}
		}
	}

	cfg.Normalize()
	return &cfg, nil
}

// positiveInt reads an integer the way a lenient form parser would: numbers
// are truncated and strings contribute their leading integer ("12abc" is 12).
func positiveInt(r gjson.Result) (int, bool) {
	var n int
	switch r.Type {
	case gjson.Number:
		v, ok := settingFloatInt(r.Num)
		if !ok {
			return 0, false
		}
		n = v
	case gjson.String:
		v, ok := leadingInt(r.Str)
		if !ok {
			return 0, false
		}
		n = v
	default:
		return 0, false
	}
	return n, n > 0
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		digits++
		if n > 1<<31 {
			break
		}
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
