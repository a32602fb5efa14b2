package rpc

import (
	"encoding/json"
	"log/slog"

	"github.com/refereehq/refereed/internal/core/ledger/service"
)

// Publisher forwards ledger service events to WebSocket subscribers.
// It implements service.Publisher.
type Publisher struct {
	manager *SubscriptionManager
	logger  *slog.Logger
}

func NewPublisher(manager *SubscriptionManager, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{manager: manager, logger: logger.With("component", "publisher")}
}

// transactionMessage is the wire form of a transaction stream event.
type transactionMessage struct {
	Type string `json:"type"`
	*service.TransactionEvent
}

// PublishTransaction broadcasts a processed transaction to transaction
// stream subscribers and to subscribers of the submitting account.
func (p *Publisher) PublishTransaction(ev *service.TransactionEvent) {
	if ev == nil || p.manager == nil {
		return
	}
	data, err := json.Marshal(transactionMessage{Type: "transaction", TransactionEvent: ev})
	if err != nil {
		p.logger.Warn("failed to marshal transaction event", "err", err)
		return
	}
	p.manager.Broadcast(StreamTransactions, []string{ev.Account}, data)
}

var _ service.Publisher = (*Publisher)(nil)
