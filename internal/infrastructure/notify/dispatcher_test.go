package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (s *recordingSender) Send(_ context.Context, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestDispatcher_DeliversAsynchronously(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(2, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Notify(ctx, "Client Acme moved to stage: Converted")
	d.Notify(ctx, "New note added for Acme by Dana")

	waitFor(t, func() bool { return sender.count() == 2 })
}

func TestDispatcher_NotifyNeverBlocksWhenFull(t *testing.T) {
	// No workers started: the buffer fills and extra messages are dropped.
	d := NewDispatcher(1, &recordingSender{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+50; i++ {
			d.Notify(context.Background(), "overflow")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify must not block on a full queue")
	}
	if len(d.queue) != channelBuffer {
		t.Errorf("queue must cap at %d, got %d", channelBuffer, len(d.queue))
	}
}

func TestDispatcher_DeliveryFailureDoesNotStopWorkers(t *testing.T) {
	sender := &recordingSender{err: errors.New("transport down")}
	d := NewDispatcher(1, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Notify(ctx, "doomed")

	// Recover the transport; the worker must still be alive.
	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()

	d.Notify(ctx, "delivered")
	waitFor(t, func() bool {
		sender.mu.Lock()
		defer sender.mu.Unlock()
		for _, m := range sender.messages {
			if m == "delivered" {
				return true
			}
		}
		return false
	})
}

func TestWebhookSender_PostsPlainText(t *testing.T) {
	var got string
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		contentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	sender := NewWebhookSender(srv.URL)
	if err := sender.Send(context.Background(), "Client Acme marked as dropped: budget cut"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Client Acme marked as dropped: budget cut" {
		t.Errorf("unexpected body: %q", got)
	}
	if contentType != "text/plain; charset=utf-8" {
		t.Errorf("unexpected content type: %q", contentType)
	}
}

func TestWebhookSender_NonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhookSender(srv.URL).Send(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestWebhookSender_UnconfiguredURL(t *testing.T) {
	if err := NewWebhookSender("").Send(context.Background(), "x"); err == nil {
		t.Fatal("expected error when url is empty")
	}
}
