package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refereehq/refereed/internal/core/ledger/service"
)

func newTestConnection(id string) *Connection {
	return &Connection{
		ID:       id,
		Streams:  make(map[string]bool),
		Accounts: make(map[string]bool),
		Send:     make(chan []byte, 4),
	}
}

func TestBroadcastToStreamSubscribers(t *testing.T) {
	manager := NewSubscriptionManager()

	subscribed := newTestConnection("a")
	subscribed.Subscribe([]string{StreamTransactions}, nil)
	idle := newTestConnection("b")
	manager.Add(subscribed)
	manager.Add(idle)

	manager.Broadcast(StreamTransactions, nil, []byte("event"))

	require.Len(t, subscribed.Send, 1)
	assert.Equal(t, []byte("event"), <-subscribed.Send)
	assert.Empty(t, idle.Send)
}

func TestBroadcastToAccountSubscribers(t *testing.T) {
	manager := NewSubscriptionManager()

	watcher := newTestConnection("a")
	watcher.Subscribe(nil, []string{"rGameAccount"})
	manager.Add(watcher)

	manager.Broadcast(StreamTransactions, []string{"rGameAccount"}, []byte("event"))
	require.Len(t, watcher.Send, 1)

	// A connection subscribed to both the stream and the account still
	// receives the message once.
	watcher.Subscribe([]string{StreamTransactions}, nil)
	manager.Broadcast(StreamTransactions, []string{"rGameAccount"}, []byte("event2"))
	<-watcher.Send
	assert.Len(t, watcher.Send, 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	manager := NewSubscriptionManager()

	conn := newTestConnection("a")
	conn.Subscribe([]string{StreamTransactions}, []string{"rAcc"})
	manager.Add(conn)
	assert.Equal(t, 1, manager.SubscriberCount(StreamTransactions))

	conn.Unsubscribe([]string{StreamTransactions}, []string{"rAcc"})
	assert.Equal(t, 0, manager.SubscriberCount(StreamTransactions))

	manager.Broadcast(StreamTransactions, []string{"rAcc"}, []byte("event"))
	assert.Empty(t, conn.Send)
}

func TestBroadcastDropsWhenSubscriberIsFull(t *testing.T) {
	manager := NewSubscriptionManager()

	conn := newTestConnection("a")
	conn.Subscribe([]string{StreamTransactions}, nil)
	manager.Add(conn)

	for i := 0; i < cap(conn.Send)+3; i++ {
		manager.Broadcast(StreamTransactions, nil, []byte("event"))
	}
	assert.Len(t, conn.Send, cap(conn.Send))
}

func TestRemoveDetachesConnection(t *testing.T) {
	manager := NewSubscriptionManager()

	conn := newTestConnection("a")
	conn.Subscribe([]string{StreamTransactions}, nil)
	manager.Add(conn)
	manager.Remove("a")

	manager.Broadcast(StreamTransactions, nil, []byte("event"))
	assert.Empty(t, conn.Send)
}

func TestPublisherBroadcastsTransactionEvents(t *testing.T) {
	manager := NewSubscriptionManager()
	pub := NewPublisher(manager, nil)

	streamSub := newTestConnection("stream")
	streamSub.Subscribe([]string{StreamTransactions}, nil)
	accountSub := newTestConnection("account")
	accountSub.Subscribe(nil, []string{"rSubmitter"})
	manager.Add(streamSub)
	manager.Add(accountSub)

	pub.PublishTransaction(&service.TransactionEvent{
		Hash:      "abc",
		Type:      "Deposit",
		Account:   "rSubmitter",
		Result:    "tesSUCCESS",
		Applied:   true,
		LedgerSeq: 3,
	})

	require.Len(t, streamSub.Send, 1)
	require.Len(t, accountSub.Send, 1)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(<-streamSub.Send, &msg))
	assert.Equal(t, "transaction", msg["type"])
	assert.Equal(t, "Deposit", msg["transaction_type"])
	assert.Equal(t, "rSubmitter", msg["account"])
	assert.Equal(t, true, msg["applied"])
}
