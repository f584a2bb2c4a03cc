package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/torosent/selfload/internal/config"
	"github.com/torosent/selfload/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type loadResponse struct {
	Requests    int      `json:"requests"`
	Concurrency int      `json:"concurrency"`
	Endpoints   []string `json:"endpoints"`
	Summary     struct {
		TotalCompleted int            `json:"totalCompleted"`
		Counts         map[string]int `json:"counts"`
		Latency        struct {
			Count int      `json:"count"`
			Min   *float64 `json:"min"`
		} `json:"latency"`
	} `json:"summary"`
}

func newServer(t *testing.T) *server.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return server.New(config.Config{}, server.Deps{Logger: logger})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProbeRoutes(t *testing.T) {
	h := newServer(t).Handler()
	tests := []struct {
		path string
		want string
	}{
		{"/", "selfload"},
		{"/healthz", `"status":"ok"`},
		{"/ready", `"ready":true`},
		{"/items", `"name":"Widget"`},
		{"/items/2", `"name":"Gizmo"`},
		{"/persons/all", `"firstName":"Ada"`},
		{"/admin/status", `"admin":"ok"`},
		{"/admin/config", `"requests":200`},
		{"/admin/config", `"mode":"test"`},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.want, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.want) {
				t.Errorf("body = %q, want to contain %q", rec.Body.String(), tt.want)
			}
		})
	}
}

func TestItemsNotFoundAndCreate(t *testing.T) {
	h := newServer(t).Handler()

	if rec := do(t, h, http.MethodGet, "/items/99", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /items/99 status = %d, want 404", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/items/abc", ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET /items/abc status = %d, want 404", rec.Code)
	}

	rec := do(t, h, http.MethodPost, "/items", `{"name":"Sprocket"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /items status = %d, want 201", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"id":3`) {
		t.Errorf("created item = %s, want id 3", rec.Body.String())
	}

	rec = do(t, h, http.MethodPost, "/items", "")
	if !strings.Contains(rec.Body.String(), `"name":"Unnamed"`) {
		t.Errorf("created item = %s, want Unnamed", rec.Body.String())
	}
}

func TestLoadAgainstItself(t *testing.T) {
	srv := newServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/admin/load", "application/json",
		strings.NewReader(`{"requests":"12","concurrency":4,"timeout":2000,"endpoints":["/healthz","/missing"]}`))
	if err != nil {
		t.Fatalf("POST /admin/load: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if id := resp.Header.Get(server.RunIDHeader); len(id) != 26 {
		t.Errorf("%s = %q, want a ULID", server.RunIDHeader, id)
	}

	var got loadResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Requests != 12 || got.Concurrency != 4 {
		t.Errorf("requests/concurrency = %d/%d, want 12/4", got.Requests, got.Concurrency)
	}
	if got.Summary.TotalCompleted != 12 || got.Summary.Latency.Count != 12 {
		t.Errorf("totalCompleted = %d, want 12", got.Summary.TotalCompleted)
	}
	if got.Summary.Counts["200"] != 6 || got.Summary.Counts["404"] != 6 {
		t.Errorf("counts = %v, want 6x200 and 6x404", got.Summary.Counts)
	}
	if got.Summary.Latency.Min == nil {
		t.Error("latency.min = null, want a value")
	}

	status := do(t, srv.Handler(), http.MethodGet, "/admin/status", "")
	if !strings.Contains(status.Body.String(), `"completedRuns":1`) {
		t.Errorf("status = %s, want one completed run", status.Body.String())
	}
}

func TestLoadDefaultsOnEmptyBody(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer target.Close()

	srv := server.New(config.Config{Host: target.URL, Requests: 10}, server.Deps{})
	rec := do(t, srv.Handler(), http.MethodPost, "/admin/load", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got loadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Requests != 10 || got.Concurrency != config.DefaultConcurrency {
		t.Errorf("requests/concurrency = %d/%d, want 10/%d", got.Requests, got.Concurrency, config.DefaultConcurrency)
	}
	if len(got.Endpoints) != len(config.DefaultEndpoints) {
		t.Errorf("endpoints = %v, want defaults", got.Endpoints)
	}
	if got.Summary.Counts["204"] != 10 {
		t.Errorf("counts = %v, want 10x204", got.Summary.Counts)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	h := newServer(t).Handler()
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"requests":`},
		{"relative host", `{"host":"not-a-url","endpoints":["/a"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/admin/load", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), `"error"`) {
				t.Errorf("body = %s, want error field", rec.Body.String())
			}
		})
	}
}

func TestAdminActionEchoesBody(t *testing.T) {
	h := newServer(t).Handler()

	rec := do(t, h, http.MethodPost, "/admin/action", `{"op":"flush","force":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got struct {
		ActionReceived map[string]interface{} `json:"actionReceived"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ActionReceived["op"] != "flush" || got.ActionReceived["force"] != true {
		t.Errorf("actionReceived = %v", got.ActionReceived)
	}

	rec = do(t, h, http.MethodPost, "/admin/action", "")
	if !strings.Contains(rec.Body.String(), `"actionReceived":{}`) {
		t.Errorf("empty body echo = %s, want {}", rec.Body.String())
	}
}
