// Package sse implements a Server-Sent Events broker for session and catalog updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types emitted by the broker.
const (
	TypeSessionUpdated = "session.updated"
	TypeSessionEnded   = "session.ended"
	TypeCatalogUpdated = "catalog.updated"
)

const clientBuffer = 64

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// envelope is an Event plus routing: a non-empty session reaches only
// subscribers of that session and unfiltered subscribers.
type envelope struct {
	event    Event
	session  string
	throttle bool
}

// Subscription is one connected client.
type Subscription struct {
	ch      chan []byte
	session string
}

// C returns the stream of encoded SSE frames. It is closed on Unsubscribe or Close.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Broker manages SSE client connections and broadcasts events.
//
// A single loop goroutine owns the subscriber set, the event sequence and the
// catalog throttle timestamp; public methods talk to it over channels.
type Broker struct {
	catalogMin time.Duration
	keepAlive  time.Duration

	subscribeCh   chan *Subscription
	unsubscribeCh chan *Subscription
	publishCh     chan envelope
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. catalog.updated events closer together
// than catalogThrottle are dropped.
func NewBroker(catalogThrottle time.Duration) *Broker {
	if catalogThrottle <= 0 {
		catalogThrottle = 2 * time.Second
	}

	b := &Broker{
		catalogMin:    catalogThrottle,
		keepAlive:     15 * time.Second,
		subscribeCh:   make(chan *Subscription),
		unsubscribeCh: make(chan *Subscription),
		publishCh:     make(chan envelope, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	subs := make(map[*Subscription]struct{})
	var seq uint64
	var lastCatalog time.Time

	deliver := func(env envelope) {
		payload, err := json.Marshal(env.event.Data)
		if err != nil {
			return
		}
		seq++
		frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, env.event.Type, payload))

		for s := range subs {
			if env.session != "" && s.session != "" && s.session != env.session {
				continue
			}
			select {
			case s.ch <- frame:
			default:
				// Slow client; drop rather than stall everyone else.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for s := range subs {
				close(s.ch)
			}
			return

		case s := <-b.subscribeCh:
			subs[s] = struct{}{}

		case s := <-b.unsubscribeCh:
			if _, ok := subs[s]; ok {
				delete(subs, s)
				close(s.ch)
			}

		case env := <-b.publishCh:
			if env.throttle {
				now := time.Now()
				if now.Sub(lastCatalog) < b.catalogMin {
					continue
				}
				lastCatalog = now
			}
			deliver(env)

		case resp := <-b.countReqCh:
			resp <- len(subs)
		}
	}
}

// Close gracefully stops the broker loop and closes all subscriptions.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client. An empty session receives every event;
// otherwise session events for other sessions are filtered out.
func (b *Broker) Subscribe(session string) *Subscription {
	s := &Subscription{ch: make(chan []byte, clientBuffer), session: session}
	if b.closed.Load() {
		close(s.ch)
		return s
	}

	select {
	case b.subscribeCh <- s:
	case <-b.stopped:
		close(s.ch)
	}
	return s
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(s *Subscription) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- s:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

func (b *Broker) send(env envelope) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- env:
	case <-b.stopped:
	}
}

// publish sends an event to all connected clients.
func (b *Broker) publish(event Event) {
	b.send(envelope{event: event})
}

// PublishSessionEvent announces that a session was "updated" or "ended".
// Unknown kinds are ignored.
func (b *Broker) PublishSessionEvent(kind, id string) {
	var typ string
	switch kind {
	case "updated":
		typ = TypeSessionUpdated
	case "ended":
		typ = TypeSessionEnded
	default:
		return
	}
	b.send(envelope{event: Event{Type: typ, Data: map[string]string{"id": id}}, session: id})
}

// PublishCatalogEvent announces a new catalog version, throttled.
func (b *Broker) PublishCatalogEvent(version string) {
	b.send(envelope{
		event:    Event{Type: TypeCatalogUpdated, Data: map[string]string{"version": version}},
		throttle: true,
	})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events[?session=<id>]).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := b.Subscribe(r.URL.Query().Get("session"))
	defer b.Unsubscribe(sub)

	ping := time.NewTicker(b.keepAlive)
	defer ping.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping.C:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
