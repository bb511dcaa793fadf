package game

import (
	"log"
	"sync"
)

// Client is a logged-in connection as the game layer sees it. The
// session owning the socket drains Outbound; the game layer only ever
// enqueues. matchID is guarded by the manager lock.
type Client struct {
	Name string

	send chan []byte
	done chan struct{}
	once sync.Once

	matchID string
}

const clientSendBuffer = 64

// NewClient is exported for tests; connections get their Client from
// GameManager.Login.
func NewClient(name string) *Client {
	return &Client{
		Name: name,
		send: make(chan []byte, clientSendBuffer),
		done: make(chan struct{}),
	}
}

// Send enqueues one encoded frame without blocking. Frames to a closed
// or backed-up client are dropped; a slow reader must never stall the
// game path.
func (c *Client) Send(frame []byte) {
	select {
	case <-c.done:
	default:
		select {
		case c.send <- frame:
		default:
			log.Printf("[GAME] send buffer full for %s, dropping frame", c.Name)
		}
	}
}

// Outbound is the frame stream the session writer drains.
func (c *Client) Outbound() <-chan []byte {
	return c.send
}

// Done is closed when the client is logged out or the server stops.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close releases the client. Safe to call more than once.
func (c *Client) Close() {
	c.once.Do(func() { close(c.done) })
}
