// Package stream pushes donation events to browsers over SSE and WebSocket.
package stream

import "sync"

// Client is one live connection's outbound queue.
type Client struct {
	Send   chan []byte
	mu     sync.Mutex
	closed bool
	onDrop func()
}

func NewClient(buffer int, onDrop func()) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{Send: make(chan []byte, buffer), onDrop: onDrop}
}

// Offer queues msg without blocking. A full queue drops msg for this client only.
func (c *Client) Offer(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- msg:
		return true
	default:
		if c.onDrop != nil {
			c.onDrop()
		}
		return false
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}
