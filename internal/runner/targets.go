package runner

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNoEndpoints is returned when targets are requested from an empty endpoint list.
var ErrNoEndpoints = errors.New("at least one endpoint is required")

// BuildTargets assigns endpoints[i % len(endpoints)] to position i for every
// i in [0, total) and resolves each against host. Endpoints past position
// total-1 are never used and never resolved.
func BuildTargets(host string, endpoints []string, total int) ([]Target, error) {
	if total <= 0 {
		return []Target{}, nil
	}
	if len(endpoints) == 0 {
		return nil, ErrNoEndpoints
	}

	var base *url.URL
	if h := strings.TrimSpace(host); h != "" {
		parsed, err := url.Parse(h)
		if err != nil {
			return nil, fmt.Errorf("host %q: %w", host, err)
		}
		base = parsed
	}

	used := len(endpoints)
	if total < used {
		used = total
	}
	resolved := make([]string, used)
	for i := 0; i < used; i++ {
		abs, err := resolveEndpoint(base, endpoints[i])
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", endpoints[i], err)
		}
		resolved[i] = abs
	}

	targets := make([]Target, total)
	for i := range targets {
		targets[i] = Target{Index: i, URL: resolved[i%used]}
	}
	return targets, nil
}

func resolveEndpoint(base *url.URL, endpoint string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil {
		return "", err
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if !ref.IsAbs() || ref.Host == "" {
		return "", errors.New("cannot resolve to an absolute URL; set a host")
	}
	return ref.String(), nil
}
