package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rcrd/internal/config"
	"rcrd/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifySessionCompleted(context.Background(), "/rec/out.ogg", time.Minute, 0); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func ntfyTestServer(t *testing.T, status int, sink *[]captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
			body:     string(body),
		})
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestService(t *testing.T, server *httptest.Server) notifications.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.RequestTimeout = 2
	return notifications.NewService(&cfg)
}

func TestNotifySessionCompleted(t *testing.T) {
	var requests []captured
	server := ntfyTestServer(t, http.StatusOK, &requests)
	svc := newTestService(t, server)

	err := svc.NotifySessionCompleted(context.Background(), "/rec/rcrd-call-20260829-120000.ogg", 95*time.Second, 3)
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	got := requests[0]
	if got.title != "rcrd - Recording Complete" {
		t.Fatalf("title = %q", got.title)
	}
	if !strings.Contains(got.body, "rcrd-call-20260829-120000.ogg") {
		t.Fatalf("body missing output name: %q", got.body)
	}
	if !strings.Contains(got.body, "1m35s") {
		t.Fatalf("body missing duration: %q", got.body)
	}
	if !strings.Contains(got.body, "3 marker(s)") {
		t.Fatalf("body missing marker count: %q", got.body)
	}
	if got.tags != "rcrd,session,completed" {
		t.Fatalf("tags = %q", got.tags)
	}
}

func TestNotifySessionFailed(t *testing.T) {
	var requests []captured
	server := ntfyTestServer(t, http.StatusOK, &requests)
	svc := newTestService(t, server)

	sessionErr := errors.New("pipeline exited unexpectedly (code 1)")
	if err := svc.NotifySessionFailed(context.Background(), sessionErr, "/rec/out.ogg"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	got := requests[0]
	if got.priority != "high" {
		t.Fatalf("priority = %q", got.priority)
	}
	if !strings.Contains(got.body, "pipeline exited unexpectedly") {
		t.Fatalf("body missing cause: %q", got.body)
	}
	if !strings.Contains(got.body, "Partial output is kept") {
		t.Fatalf("body missing retention note: %q", got.body)
	}
}

func TestSendSurfacesServerErrors(t *testing.T) {
	var requests []captured
	server := ntfyTestServer(t, http.StatusForbidden, &requests)
	svc := newTestService(t, server)

	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("error missing status: %v", err)
	}
}
