package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testNotifier(apiBase string) *TelegramNotifier {
	n := NewTelegramNotifier("test-token", "42", "")
	n.apiBase = apiBase
	return n
}

func TestSend_PayloadAndRoute(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	n := testNotifier(srv.URL)
	if err := n.Send(context.Background(), "📊 <b>run ok</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(gotPath, "bottest-token/sendMessage") {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["chat_id"] != "42" || gotBody["parse_mode"] != "HTML" {
		t.Errorf("payload = %v", gotBody)
	}
	if gotBody["text"] != "📊 <b>run ok</b>" {
		t.Errorf("text = %q", gotBody["text"])
	}
}

func TestSend_CancelledContextAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := testNotifier(srv.URL)
	start := time.Now()
	err := n.Send(ctx, "hello")
	if err == nil {
		t.Fatal("cancelled context must fail the send")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("send did not abort on cancellation, took %v", elapsed)
	}
}

func TestSendWithRetry_StopsWhenContextExpires(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "flood control", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	n := testNotifier(srv.URL)
	err := n.SendWithRetry(ctx, "hello", 3)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want context.DeadlineExceeded, got %v", err)
	}
	if calls != 1 {
		t.Errorf("retry loop should stop in the first backoff, got %d calls", calls)
	}
}
