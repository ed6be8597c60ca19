package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMockClientReplaysQueue(t *testing.T) {
	m := &MockClient{}
	m.Queue(200, `{"ok":true}`).Queue(404, "gone").QueueError(errors.New("boom"))

	req, _ := http.NewRequest(http.MethodGet, "http://example/x", nil)

	resp, err := m.Do(req)
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("first response = %v, %v", resp, err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"ok":true}` {
		t.Errorf("first body = %q", body)
	}

	resp, err = m.Do(req)
	if err != nil || resp.StatusCode != 404 {
		t.Fatalf("second response = %v, %v", resp, err)
	}

	if _, err = m.Do(req); err == nil {
		t.Fatal("third call should return the queued error")
	}

	// Exhausted queue falls back to empty 200s.
	resp, err = m.Do(req)
	if err != nil || resp.StatusCode != 200 {
		t.Fatalf("fallback response = %v, %v", resp, err)
	}

	if len(m.Requests) != 4 {
		t.Errorf("recorded %d requests, want 4", len(m.Requests))
	}
}

func TestNewStandardClientDefaults(t *testing.T) {
	c := NewStandardClient(nil)
	if c.Client != http.DefaultClient {
		t.Error("nil client should default to http.DefaultClient")
	}
}

func TestWriteJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, http.StatusBadRequest, "bad bin size")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if got := rec.Body.String(); got != "{\"error\":\"bad bin size\"}\n" {
		t.Errorf("body = %q", got)
	}
}
