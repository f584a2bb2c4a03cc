// Package config provides configuration loading and parsing for selfload.
package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// maxSettingInt bounds integers read from untyped input before Normalize
// applies the per-field limits.
const maxSettingInt = math.MaxInt32

// lookupSetting returns the first of candidates present in settings, trying
// each key as written and lowercased.
func lookupSetting(settings map[string]interface{}, candidates ...string) (interface{}, bool) {
	for _, key := range candidates {
		for _, k := range []string{key, strings.ToLower(key)} {
			if val, ok := settings[k]; ok {
				return val, true
			}
		}
	}
	return nil, false
}

func asString(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case map[string]interface{}, map[interface{}]interface{}, []interface{}:
		return "", fmt.Errorf("expected a scalar, got %T", value)
	default:
		return fmt.Sprint(v), nil
	}
}

// settingInt reads a load parameter leniently: numbers are truncated and
// strings contribute their leading integer, so "12abc" is 12. ok is false
// when the value carries no integer at all; callers then leave the field
// unset and Normalize falls back to the default.
func settingInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return clampSettingInt(int64(v)), true
	case int32:
		return int(v), true
	case int64:
		return clampSettingInt(v), true
	case uint64:
		if v > maxSettingInt {
			return maxSettingInt, true
		}
		return int(v), true
	case float32:
		return settingFloatInt(float64(v))
	case float64:
		return settingFloatInt(v)
	case string:
		return leadingInt(v)
	default:
		return 0, false
	}
}

func settingFloatInt(f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	if f > maxSettingInt {
		return maxSettingInt, true
	}
	if f < -maxSettingInt {
		return -maxSettingInt, true
	}
	return int(f), true
}

func clampSettingInt(n int64) int {
	switch {
	case n > maxSettingInt:
		return maxSettingInt
	case n < -maxSettingInt:
		return -maxSettingInt
	}
	return int(n)
}

// settingTimeout reads a request timeout. Bare numbers are milliseconds and
// strings may also be Go durations ("2s"). ok is false for unusable input.
func settingTimeout(value interface{}) (time.Duration, bool) {
	switch v := value.(type) {
	case time.Duration:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if ms, err := strconv.Atoi(s); err == nil {
			return msDuration(clampSettingInt(int64(ms))), true
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d, true
		}
	}
	ms, ok := settingInt(value)
	if !ok {
		return 0, false
	}
	return msDuration(ms), true
}

func asFloat64(value interface{}) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("expected a number, got %T", value)
	}
}

func asBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return false, nil
		}
		return strconv.ParseBool(strings.TrimSpace(v))
	default:
		return false, fmt.Errorf("expected a boolean, got %T", value)
	}
}

// asStringMap reads a header table. Keys come back lowercased; callers
// canonicalize them.
func asStringMap(value interface{}) (map[string]string, error) {
	if value == nil {
		return nil, nil
	}
	if v, ok := value.(map[string]string); ok {
		out := make(map[string]string, len(v))
		for k, val := range v {
			out[k] = val
		}
		return out, nil
	}
	raw, err := toStringKeyMap(value)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if k == "" {
			return nil, fmt.Errorf("header key cannot be empty")
		}
		str, err := asString(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		out[k] = str
	}
	return out, nil
}

// asStringSlice accepts a list or a single string.
func asStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return append([]string(nil), v...), nil
	case []interface{}:
		out := make([]string, len(v))
		for i, item := range v {
			str, err := asString(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = str
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected a list, got %T", value)
	}
}

// toStringKeyMap flattens YAML and JSON maps to lowercase string keys.
func toStringKeyMap(value interface{}) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	switch v := value.(type) {
	case map[string]interface{}:
		for key, val := range v {
			out[strings.ToLower(strings.TrimSpace(key))] = val
		}
	case map[interface{}]interface{}:
		for key, val := range v {
			str, err := asString(key)
			if err != nil {
				return nil, err
			}
			out[strings.ToLower(strings.TrimSpace(str))] = val
		}
	default:
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	return out, nil
}
