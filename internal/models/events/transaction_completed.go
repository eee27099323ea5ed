package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCompleted is emitted once a ledger operation has been persisted.
type TransactionCompleted struct {
	EventID      string          `json:"event_id"`
	AccountID    string          `json:"account_id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Counterparty string          `json:"counterparty,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
}
