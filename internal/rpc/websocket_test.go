package rpc

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refereehq/refereed/internal/core/ledger/service"
)

func dialTestSocket(t *testing.T) (*websocket.Conn, *SubscriptionManager) {
	t.Helper()

	registry := NewMethodRegistry()
	registry.Register("ping", MethodFunc(handlePing))
	manager := NewSubscriptionManager()
	wsServer := NewWebSocketServer(registry, manager, nil)

	ts := httptest.NewServer(wsServer)
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, manager
}

func readResponse(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestWebSocketDispatchesCommands(t *testing.T) {
	conn, _ := dialTestSocket(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "ping", "id": 1}))
	msg := readResponse(t, conn)
	assert.Equal(t, "response", msg["type"])
	assert.Equal(t, "success", msg["status"])
	assert.Equal(t, float64(1), msg["id"])

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "teleport", "id": 2}))
	msg = readResponse(t, conn)
	assert.Equal(t, "error", msg["status"])
}

func TestWebSocketMissingCommand(t *testing.T) {
	conn, _ := dialTestSocket(t)

	require.NoError(t, conn.WriteJSON(map[string]any{"id": 7}))
	msg := readResponse(t, conn)
	assert.Equal(t, "error", msg["status"])
}

func TestWebSocketSubscriptionReceivesEvents(t *testing.T) {
	conn, manager := dialTestSocket(t)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"command": "subscribe",
		"id":      1,
		"streams": []string{StreamTransactions},
	}))
	msg := readResponse(t, conn)
	require.Equal(t, "success", msg["status"])

	pub := NewPublisher(manager, nil)
	pub.PublishTransaction(&service.TransactionEvent{
		Hash:    "abc",
		Type:    "Payout",
		Account: "rGame",
		Result:  "tesSUCCESS",
		Applied: true,
	})

	event := readResponse(t, conn)
	assert.Equal(t, "transaction", event["type"])
	assert.Equal(t, "Payout", event["transaction_type"])

	// After unsubscribing no further events arrive; the next read sees
	// only the unsubscribe acknowledgement.
	require.NoError(t, conn.WriteJSON(map[string]any{
		"command": "unsubscribe",
		"id":      2,
		"streams": []string{StreamTransactions},
	}))
	msg = readResponse(t, conn)
	require.Equal(t, "success", msg["status"])

	pub.PublishTransaction(&service.TransactionEvent{Hash: "def", Type: "Refund"})

	require.NoError(t, conn.WriteJSON(map[string]any{"command": "ping", "id": 3}))
	msg = readResponse(t, conn)
	assert.Equal(t, float64(3), msg["id"])
}
