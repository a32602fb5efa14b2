package rpc

import (
	"sync"
)

// Stream names subscribers can attach to.
const (
	StreamTransactions = "transactions"
	StreamLedger       = "ledger"
)

// Connection is one subscriber. Send must be buffered; a subscriber that
// cannot keep up has messages dropped rather than blocking the publisher.
type Connection struct {
	ID       string
	Streams  map[string]bool
	Accounts map[string]bool
	Send     chan []byte

	mu sync.RWMutex
}

// Subscribe attaches the connection to the given streams and accounts.
func (c *Connection) Subscribe(streams, accounts []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range streams {
		c.Streams[s] = true
	}
	for _, a := range accounts {
		c.Accounts[a] = true
	}
}

// Unsubscribe detaches the connection from the given streams and accounts.
func (c *Connection) Unsubscribe(streams, accounts []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range streams {
		delete(c.Streams, s)
	}
	for _, a := range accounts {
		delete(c.Accounts, a)
	}
}

func (c *Connection) wantsStream(stream string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Streams[stream]
}

func (c *Connection) wantsAccount(accounts []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range accounts {
		if c.Accounts[a] {
			return true
		}
	}
	return false
}

// SubscriptionManager tracks connections and routes broadcasts.
type SubscriptionManager struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{connections: make(map[string]*Connection)}
}

func (m *SubscriptionManager) Add(conn *Connection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn.ID] = conn
}

func (m *SubscriptionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, id)
}

// Broadcast sends data to every connection subscribed to the stream or to
// one of the accounts. Each connection receives the message at most once.
func (m *SubscriptionManager) Broadcast(stream string, accounts []string, data []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.connections {
		if !conn.wantsStream(stream) && !conn.wantsAccount(accounts) {
			continue
		}
		select {
		case conn.Send <- data:
		default:
			// Slow subscriber; drop the message.
		}
	}
}

// SubscriberCount returns the number of connections attached to a stream.
func (m *SubscriptionManager) SubscriberCount(stream string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, conn := range m.connections {
		if conn.wantsStream(stream) {
			n++
		}
	}
	return n
}
