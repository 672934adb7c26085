package loki

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPushRecordJSONExtractsLabels(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/loki/api/v1/push" {
			t.Errorf("path %q", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &got); err != nil {
			t.Errorf("decode push body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	raw := []byte(`{"tenant_id":"t1","member_id":"m1","event_type":"punch_in","status":"active","created_at":"2026-03-01T09:00:00Z"}`)
	if err := PushRecordJSON(context.Background(), srv.URL, raw); err != nil {
		t.Fatalf("PushRecordJSON: %v", err)
	}

	if len(got.Streams) != 1 {
		t.Fatalf("streams %d, want 1", len(got.Streams))
	}
	labels := got.Streams[0].Stream
	if labels["job"] != "workeye" {
		t.Errorf("job label %q", labels["job"])
	}
	if labels["tenant_id"] != "t1" || labels["event_type"] != "punch_in" || labels["status"] != "active" {
		t.Errorf("unexpected labels %v", labels)
	}

	if len(got.Streams[0].Values) != 1 || got.Streams[0].Values[0][0] != "1772355600000000000" {
		t.Errorf("values %v, want the record's created_at in ns", got.Streams[0].Values)
	}
}

func TestPushRecordJSONMalformedStillPushes(t *testing.T) {
	pushed := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushed = true
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := PushRecordJSON(context.Background(), srv.URL, []byte("not json")); err != nil {
		t.Fatalf("PushRecordJSON: %v", err)
	}
	if !pushed {
		t.Fatal("expected a push even for an unparseable record")
	}
}

func TestPushErrorsOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ingestion rate limit", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, time.Now(), "line", nil)
	if err == nil {
		t.Fatal("expected an error on 429")
	}
}

func TestPushSanitizesLabels(t *testing.T) {
	var got PushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := Push(context.Background(), srv.URL, time.Now(), "line", map[string]string{
		"tenant_id": "acme corp! #1",
	})
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got.Streams[0].Stream["tenant_id"] != "acme_corp___1" {
		t.Errorf("sanitized label %q", got.Streams[0].Stream["tenant_id"])
	}
}
