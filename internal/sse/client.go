package sse

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const heartbeatInterval = 25 * time.Second

// Client is one SSE connection. Events are queued on a buffered channel and
// written by Run; a full queue counts as a write failure so a stalled client
// cannot block the hub.
type Client struct {
	writer  http.ResponseWriter
	ctx     context.Context
	cancel  context.CancelFunc
	eventCh chan Event
	done    chan struct{}
	closed  bool
	mu      sync.Mutex
}

// NewClient creates a client writing to w until ctx is done.
func NewClient(w http.ResponseWriter, ctx context.Context) *Client {
	ctx, cancel := context.WithCancel(ctx)
	return &Client{
		writer:  w,
		ctx:     ctx,
		cancel:  cancel,
		eventCh: make(chan Event, 10),
		done:    make(chan struct{}),
	}
}

// WriteEvent queues an event for delivery.
func (c *Client) WriteEvent(event Event) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return fmt.Errorf("client disconnected")
	}

	select {
	case c.eventCh <- event:
		return nil
	default:
		return fmt.Errorf("client event channel full")
	}
}

// Close signals the client to stop receiving events.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.cancel()
		close(c.done)
		c.closed = true
	}
}

// Run writes queued events and periodic heartbeats to the connection. It
// returns when the client is closed or the request context ends.
func (c *Client) Run() {
	c.writer.Header().Set("Content-Type", "text/event-stream")
	c.writer.Header().Set("Cache-Control", "no-cache")
	c.writer.Header().Set("Connection", "keep-alive")
	c.writer.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := c.writer.(http.Flusher)
	if !ok {
		log.Warn("sse: response writer is not a flusher")
	} else {
		flusher.Flush()
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.done:
			return
		case <-heartbeat.C:
			// Comment line keeps idle connections alive through proxies.
			if _, err := fmt.Fprint(c.writer, ": heartbeat\n\n"); err != nil {
				c.Close()
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			if _, err := fmt.Fprint(c.writer, event.String()); err != nil {
				c.Close()
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
