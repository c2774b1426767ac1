package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// brokenBackend fails every read and write.
type brokenBackend struct {
	store.Backend
}

var errDisk = fmt.Errorf("disk unavailable")

func (brokenBackend) Read(context.Context, record.Kind) ([]record.Record, error) {
	return nil, errDisk
}

func (brokenBackend) Write(context.Context, record.Kind, []record.Record) error {
	return errDisk
}

func (brokenBackend) Clear(context.Context, []record.Kind) error {
	return errDisk
}

func setupTest(t *testing.T) (*Handlers, http.Handler) {
	t.Helper()
	return setupWithBackend(t, store.NewMemoryStore())
}

func setupWithBackend(t *testing.T, b store.Backend) (*Handlers, http.Handler) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.BaseDir = t.TempDir()
	h := &Handlers{backend: b, cfg: cfg, version: "test"}
	return h, h.Routes()
}

func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

// --- per-kind routes ---

func TestCreateAndList(t *testing.T) {
	_, srv := setupTest(t)

	rec := do(t, srv, "POST", "/api/excel-sheets", `{"name":"Budget","url":"https://sheets/b"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	created := decode[map[string]any](t, rec)
	if created["category"] != "Finance" || created["status"] != "pending" || created["isPinned"] != false {
		t.Errorf("defaults not applied: %v", created)
	}
	if created["id"] == "" || created["createdAt"] != created["updatedAt"] {
		t.Errorf("envelope = %v", created)
	}
	if _, ok := created["priority"]; ok {
		t.Error("sheets must not carry priority")
	}

	do(t, srv, "POST", "/api/excel-sheets", `{"name":"Payroll","url":"https://sheets/p"}`)

	rec = do(t, srv, "GET", "/api/excel-sheets", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	items := decode[[]map[string]any](t, rec)
	if len(items) != 2 || items[0]["name"] != "Payroll" {
		t.Errorf("want newest first, got %v", items)
	}
}

func TestList_Empty(t *testing.T) {
	_, srv := setupTest(t)
	rec := do(t, srv, "GET", "/api/tasks", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("got %d %q, want 200 []", rec.Code, rec.Body.String())
	}
}

func TestList_Filters(t *testing.T) {
	_, srv := setupTest(t)
	do(t, srv, "POST", "/api/website-links", `{"name":"Bank","url":"https://bank","isPinned":true,"category":"Finance"}`)
	do(t, srv, "POST", "/api/website-links", `{"name":"Jobs board","url":"https://jobs","category":"HR"}`)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?pinned=true", 1},
		{"?category=HR", 1},
		{"?category=all", 2},
		{"?q=bank", 1},
		{"?status=pending", 2},
		{"?status=all", 2},
	}
	for _, tt := range tests {
		rec := do(t, srv, "GET", "/api/website-links"+tt.query, "")
		if got := len(decode[[]map[string]any](t, rec)); got != tt.want {
			t.Errorf("%q: got %d items, want %d", tt.query, got, tt.want)
		}
	}

	for _, bad := range []string{"?pinned=maybe", "?status=archived"} {
		if rec := do(t, srv, "GET", "/api/website-links"+bad, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", bad, rec.Code)
		}
	}
}

func TestCreate_ValidationErrors(t *testing.T) {
	_, srv := setupTest(t)

	tests := []struct {
		name    string
		target  string
		body    string
		message string
	}{
		{"sheet without url", "/api/excel-sheets", `{"name":"x"}`, "Name and URL are required"},
		{"link without name", "/api/website-links", `{"url":"https://x"}`, "Name and URL are required"},
		{"task without name", "/api/tasks", `{"description":"x"}`, "Name is required"},
		{"empty body", "/api/tasks", "", "Name is required"},
		{"bad priority", "/api/tasks", `{"name":"x","priority":"urgent"}`, "priority must be one of: low, medium, high"},
		{"invalid json", "/api/tasks", `{"name":`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, "POST", tt.target, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			body := decode[map[string]any](t, rec)
			if body["message"] != tt.message {
				t.Errorf("message = %v, want %q", body["message"], tt.message)
			}
			if _, ok := body["error"]; ok {
				t.Error("4xx responses must not carry error")
			}
		})
	}
}

func TestCreate_BodyTooLarge(t *testing.T) {
	h, srv := setupTest(t)
	h.cfg.MaxBodyBytes = 16

	rec := do(t, srv, "POST", "/api/tasks", `{"name":"a much longer task name than allowed"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTask_Lifecycle(t *testing.T) {
	_, srv := setupTest(t)

	rec := do(t, srv, "POST", "/api/tasks", `{"name":"File taxes","dueDate":"","description":"**before** May"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rec.Code, rec.Body.String())
	}
	task := decode[map[string]any](t, rec)
	id := task["id"].(string)
	if task["dueDate"] != nil || task["priority"] != "medium" {
		t.Errorf("task defaults = %v", task)
	}

	rec = do(t, srv, "PUT", "/api/tasks/"+id, `{"status":"completed","dueDate":"2026-05-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	updated := decode[map[string]any](t, rec)
	if updated["status"] != "completed" || updated["dueDate"] != "2026-05-01" || updated["name"] != "File taxes" {
		t.Errorf("updated = %v", updated)
	}
	if updated["createdAt"] != task["createdAt"] || updated["id"] != id {
		t.Error("update must keep id and createdAt")
	}

	rec = do(t, srv, "GET", "/api/tasks/"+id+"?render=markdown", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch: %d", rec.Code)
	}
	fetched := decode[map[string]any](t, rec)
	if fetched["descriptionHtml"] != "<p><strong>before</strong> May</p>\n" {
		t.Errorf("descriptionHtml = %q", fetched["descriptionHtml"])
	}

	rec = do(t, srv, "GET", "/api/tasks/"+id, "")
	if _, ok := decode[map[string]any](t, rec)["descriptionHtml"]; ok {
		t.Error("descriptionHtml only with render=markdown")
	}

	rec = do(t, srv, "DELETE", "/api/tasks/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if msg := decode[map[string]any](t, rec)["message"]; msg != "Task deleted successfully" {
		t.Errorf("message = %v", msg)
	}

	for _, method := range []string{"GET", "DELETE"} {
		rec = do(t, srv, method, "/api/tasks/"+id, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s after delete: %d, want 404", method, rec.Code)
		}
		if msg := decode[map[string]any](t, rec)["message"]; msg != "Task not found" {
			t.Errorf("message = %v", msg)
		}
	}

	rec = do(t, srv, "PUT", "/api/tasks/"+id, `{"name":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update missing: %d, want 404", rec.Code)
	}
}

func TestUpdate_InvalidBody(t *testing.T) {
	_, srv := setupTest(t)
	rec := do(t, srv, "POST", "/api/website-links", `{"name":"Bank","url":"https://bank"}`)
	id := decode[map[string]any](t, rec)["id"].(string)

	if rec := do(t, srv, "PUT", "/api/website-links/"+id, `{"url":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank url: %d, want 400", rec.Code)
	}
	if rec := do(t, srv, "PUT", "/api/website-links/"+id, `[1,2]`); rec.Code != http.StatusBadRequest {
		t.Errorf("array body: %d, want 400", rec.Code)
	}
}

// --- storage failures ---

func TestStorageFailures(t *testing.T) {
	_, srv := setupWithBackend(t, brokenBackend{Backend: store.NewMemoryStore()})

	rec := do(t, srv, "GET", "/api/excel-sheets", "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("list should degrade to []: %d %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		method  string
		target  string
		body    string
		message string
	}{
		{"POST", "/api/tasks", `{"name":"x"}`, "Error saving task"},
		{"PUT", "/api/website-links/abc", `{"name":"x"}`, "Error updating website link"},
		{"DELETE", "/api/excel-sheets/abc", "", "Error deleting excel sheet"},
		{"POST", "/api/clear-all", "", "Error clearing data"},
		{"GET", "/api/health", "", "Health check failed"},
	}
	for _, tt := range tests {
		rec := do(t, srv, tt.method, tt.target, tt.body)
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s %s: status = %d, want 500", tt.method, tt.target, rec.Code)
			continue
		}
		body := decode[map[string]any](t, rec)
		if body["message"] != tt.message || body["error"] != "disk unavailable" {
			t.Errorf("%s %s: body = %v", tt.method, tt.target, body)
		}
	}
}

// --- service routes ---

func TestRoot(t *testing.T) {
	_, srv := setupTest(t)
	rec := do(t, srv, "GET", "/", "")
	body := decode[map[string]any](t, rec)
	if body["message"] != "ERP API Server" || body["version"] != "test" {
		t.Errorf("body = %v", body)
	}
	if eps, _ := body["endpoints"].([]any); len(eps) != len(endpoints) {
		t.Errorf("endpoints = %v", body["endpoints"])
	}
}

func TestHealth(t *testing.T) {
	_, srv := setupTest(t)
	do(t, srv, "POST", "/api/tasks", `{"name":"x"}`)

	rec := do(t, srv, "GET", "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Message     string `json:"message"`
		Environment string `json:"environment"`
		Storage     string `json:"storage"`
		Data        map[string]struct {
			Count       int     `json:"count"`
			LastUpdated *string `json:"lastUpdated"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Message != "ERP Server is running successfully!" || body.Environment != "development" || body.Storage != "memory" {
		t.Errorf("body = %+v", body)
	}
	if body.Data["tasks"].Count != 1 || body.Data["tasks"].LastUpdated == nil {
		t.Errorf("tasks = %+v", body.Data["tasks"])
	}
	if body.Data["excelSheets"].LastUpdated != nil {
		t.Error("empty collection should report null lastUpdated")
	}
}

func TestClearAll(t *testing.T) {
	_, srv := setupTest(t)
	do(t, srv, "POST", "/api/tasks", `{"name":"x"}`)
	do(t, srv, "POST", "/api/excel-sheets", `{"name":"x","url":"https://x"}`)

	rec := do(t, srv, "POST", "/api/clear-all", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg := decode[map[string]any](t, rec)["message"]; msg != "All data cleared successfully" {
		t.Errorf("message = %v", msg)
	}
	for _, p := range []string{"/api/tasks", "/api/excel-sheets", "/api/website-links"} {
		if got := decode[[]any](t, do(t, srv, "GET", p, "")); len(got) != 0 {
			t.Errorf("%s not cleared: %v", p, got)
		}
	}
}

func TestCategories(t *testing.T) {
	_, srv := setupTest(t)
	got := decode[[]string](t, do(t, srv, "GET", "/api/categories", ""))
	if len(got) != len(config.DefaultCategories) || got[0] != "Finance" {
		t.Errorf("categories = %v", got)
	}
}

func TestSearchAndStats(t *testing.T) {
	_, srv := setupTest(t)
	do(t, srv, "POST", "/api/excel-sheets", `{"name":"Q3 budget","url":"https://b"}`)
	do(t, srv, "POST", "/api/tasks", `{"name":"Review budget","isPinned":true}`)

	rec := do(t, srv, "GET", "/api/search?q=budget", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("search: %d", rec.Code)
	}
	var found struct {
		Results map[string][]map[string]any `json:"results"`
		Total   int                         `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &found); err != nil {
		t.Fatal(err)
	}
	if found.Total != 2 || len(found.Results["tasks"]) != 1 {
		t.Errorf("search = %+v", found)
	}

	rec = do(t, srv, "GET", "/api/search?q=budget&collections=tasks", "")
	if got := decode[map[string]any](t, rec)["total"]; got != float64(1) {
		t.Errorf("restricted total = %v", got)
	}

	if rec := do(t, srv, "GET", "/api/search", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("empty search: %d, want 400", rec.Code)
	}
	if rec := do(t, srv, "GET", "/api/search?q=x&collections=notes", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown collection: %d, want 400", rec.Code)
	}

	stats := decode[map[string]any](t, do(t, srv, "GET", "/api/stats", ""))
	if stats["total"] != float64(2) || stats["pinned"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}
}

// --- middleware ---

func TestNotFoundRoute(t *testing.T) {
	_, srv := setupTest(t)
	rec := do(t, srv, "GET", "/api/notes", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Error("404 should be JSON")
	}
}

func TestCORS(t *testing.T) {
	h, srv := setupTest(t)

	req := httptest.NewRequest("OPTIONS", "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Allow-Origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}

	h.cfg.AllowedOrigins = []string{"https://dash.example.com"}
	srv = h.Routes()

	for origin, want := range map[string]string{
		"https://dash.example.com": "https://dash.example.com",
		"https://evil.example.com": "",
	} {
		req := httptest.NewRequest("GET", "/api/tasks", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != want {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", origin, got, want)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, srv := setupTest(t)
	rec := do(t, srv, "GET", "/api/tasks", "")
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing X-Content-Type-Options")
	}
}

func TestRecoverer(t *testing.T) {
	handler := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["message"] != "Internal server error" || body["error"] != "boom" {
		t.Errorf("body = %v", body)
	}
}

func TestNewServer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Port = 8080
	srv := NewServer(store.NewMemoryStore(), cfg, "test")
	if srv.Addr != "127.0.0.1:8080" {
		t.Errorf("Addr = %q", srv.Addr)
	}
}
