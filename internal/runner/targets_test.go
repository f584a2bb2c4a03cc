package runner_test

import (
	"errors"
	"testing"

	"github.com/torosent/selfload/internal/runner"
)

func TestBuildTargetsRoundRobin(t *testing.T) {
	targets, err := runner.BuildTargets("http://localhost:3000", []string{"/a", "/b"}, 5)
	if err != nil {
		t.Fatalf("BuildTargets() error = %v", err)
	}
	want := []string{
		"http://localhost:3000/a",
		"http://localhost:3000/b",
		"http://localhost:3000/a",
		"http://localhost:3000/b",
		"http://localhost:3000/a",
	}
	if len(targets) != len(want) {
		t.Fatalf("expected %d targets, got %d", len(want), len(targets))
	}
	for i, tgt := range targets {
		if tgt.Index != i {
			t.Errorf("targets[%d].Index = %d", i, tgt.Index)
		}
		if tgt.URL != want[i] {
			t.Errorf("targets[%d].URL = %q, want %q", i, tgt.URL, want[i])
		}
	}
}

func TestBuildTargetsResolution(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		endpoint string
		want     string
	}{
		{"absolute path replaces base path", "http://svc:8080/api/", "/healthz", "http://svc:8080/healthz"},
		{"relative path joins base dir", "http://svc:8080/api/", "items", "http://svc:8080/api/items"},
		{"root", "https://svc", "/", "https://svc/"},
		{"absolute endpoint ignores host", "http://svc", "http://other:9000/x", "http://other:9000/x"},
		{"absolute endpoint without host", "", "http://other/x", "http://other/x"},
		{"query preserved", "http://svc", "/persons/all?limit=5", "http://svc/persons/all?limit=5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, err := runner.BuildTargets(tt.host, []string{tt.endpoint}, 1)
			if err != nil {
				t.Fatalf("BuildTargets() error = %v", err)
			}
			if targets[0].URL != tt.want {
				t.Errorf("URL = %q, want %q", targets[0].URL, tt.want)
			}
		})
	}
}

func TestBuildTargetsZeroTotal(t *testing.T) {
	targets, err := runner.BuildTargets("http://svc", nil, 0)
	if err != nil {
		t.Fatalf("BuildTargets() error = %v", err)
	}
	if len(targets) != 0 {
		t.Fatalf("expected no targets, got %d", len(targets))
	}
}

func TestBuildTargetsSkipsUnusedEndpoints(t *testing.T) {
	// The third endpoint is unparsable but never reached with total=2.
	targets, err := runner.BuildTargets("http://svc", []string{"/a", "/b", "http://[::1"}, 2)
	if err != nil {
		t.Fatalf("BuildTargets() error = %v", err)
	}
	if targets[1].URL != "http://svc/b" {
		t.Fatalf("unexpected second target %q", targets[1].URL)
	}
}

func TestBuildTargetsErrors(t *testing.T) {
	if _, err := runner.BuildTargets("http://svc", nil, 3); !errors.Is(err, runner.ErrNoEndpoints) {
		t.Errorf("expected ErrNoEndpoints, got %v", err)
	}
	if _, err := runner.BuildTargets("", []string{"/a"}, 1); err == nil {
		t.Error("expected error for relative endpoint without host")
	}
	if _, err := runner.BuildTargets("http://[::1", []string{"/a"}, 1); err == nil {
		t.Error("expected error for unparsable host")
	}
}
