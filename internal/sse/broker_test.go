package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, s *Subscription) string {
	t.Helper()
	select {
	case msg := <-s.C():
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
		return ""
	}
}

func assertQuiet(t *testing.T, s *Subscription) {
	t.Helper()
	time.Sleep(50 * time.Millisecond)
	select {
	case msg := <-s.C():
		t.Errorf("unexpected message: %q", msg)
	default:
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	s := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(s)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
	if _, ok := <-s.C(); ok {
		t.Error("channel should be closed after unsubscribe")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	s := b.Subscribe("")
	defer b.Unsubscribe(s)

	b.publish(Event{Type: "session.updated", Data: map[string]string{"id": "a"}})
	b.publish(Event{Type: "session.updated", Data: map[string]string{"id": "b"}})

	first, second := recv(t, s), recv(t, s)
	if !strings.Contains(first, "event: session.updated") || !strings.Contains(first, `"id":"a"`) {
		t.Errorf("first = %q", first)
	}
	if !strings.HasPrefix(first, "id: 1\n") || !strings.HasPrefix(second, "id: 2\n") {
		t.Errorf("ids not sequential: %q, %q", first, second)
	}
}

func TestPublishSessionEvent(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	s := b.Subscribe("")
	defer b.Unsubscribe(s)

	b.PublishSessionEvent("updated", "abc")
	b.PublishSessionEvent("ended", "abc")
	b.PublishSessionEvent("bogus", "abc")

	got := recv(t, s)
	if !strings.Contains(got, "event: session.updated") || !strings.Contains(got, `"id":"abc"`) {
		t.Errorf("first event = %q", got)
	}
	if got = recv(t, s); !strings.Contains(got, "event: session.ended") {
		t.Errorf("second event = %q", got)
	}
	assertQuiet(t, s)
}

func TestSessionFilter(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	mine := b.Subscribe("s1")
	defer b.Unsubscribe(mine)
	all := b.Subscribe("")
	defer b.Unsubscribe(all)

	b.PublishSessionEvent("updated", "s2")
	b.PublishSessionEvent("updated", "s1")
	b.PublishCatalogEvent("v1")

	if got := recv(t, mine); !strings.Contains(got, `"id":"s1"`) {
		t.Errorf("filtered subscriber got %q, want s1 event", got)
	}
	if got := recv(t, mine); !strings.Contains(got, "catalog.updated") {
		t.Errorf("filtered subscriber missed catalog event: %q", got)
	}
	assertQuiet(t, mine)

	for _, want := range []string{`"id":"s2"`, `"id":"s1"`, "catalog.updated"} {
		if got := recv(t, all); !strings.Contains(got, want) {
			t.Errorf("unfiltered subscriber got %q, want %s", got, want)
		}
	}
}

func TestPublishCatalogEvent_Throttle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	s := b.Subscribe("")
	defer b.Unsubscribe(s)

	// First event goes out; the second one inside the window is dropped.
	b.PublishCatalogEvent("v1")
	b.PublishCatalogEvent("v2")

	if got := recv(t, s); !strings.Contains(got, `"version":"v1"`) {
		t.Errorf("event = %q", got)
	}
	assertQuiet(t, s)
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events?session=x", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.PublishSessionEvent("updated", "other")
	b.PublishSessionEvent("updated", "x")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, `"id":"x"`) {
		t.Errorf("handler output missing event: %q", body)
	}
	if strings.Contains(body, `"id":"other"`) {
		t.Errorf("handler leaked another session's event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestKeepAlive(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	b.keepAlive = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	b.ServeHTTP(w, req)

	if !strings.Contains(w.Body.String(), ": ping") {
		t.Errorf("no keepalive in %q", w.Body.String())
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	s := b.Subscribe("")
	defer b.Unsubscribe(s)

	// One more than the buffer must not block the loop.
	for i := 0; i < clientBuffer+6; i++ {
		b.publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	if b.ClientCount() != 1 {
		t.Error("loop stalled or dropped the client")
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	s := b.Subscribe("")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-s.C():
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Safe no-ops after close.
	b.publish(Event{Type: "session.updated", Data: map[string]string{"id": "x"}})
	b.PublishSessionEvent("updated", "x")
	b.PublishCatalogEvent("v")
	if _, ok := <-b.Subscribe("").C(); ok {
		t.Error("subscribe after close should yield a closed channel")
	}
}
