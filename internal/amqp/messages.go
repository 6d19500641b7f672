package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SyncOp says what happened to a transaction.
type SyncOp string

const (
	OpUpsert SyncOp = "upsert"
	OpDelete SyncOp = "delete"
)

// AlertKind names the entity an alert was raised for.
type AlertKind string

const (
	AlertBudget       AlertKind = "budget"
	AlertBill         AlertKind = "bill"
	AlertSubscription AlertKind = "subscription"
)

// ErrMalformedMessage marks payloads that will never decode; they are
// rejected without requeue.
var ErrMalformedMessage = errors.New("malformed message")

// TransactionSyncMessage only carries ids; the consumer reloads the row.
type TransactionSyncMessage struct {
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId"`
	Op            SyncOp    `json:"op"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(userID, transactionID string, op SyncOp) TransactionSyncMessage {
	return TransactionSyncMessage{
		UserID:        userID,
		TransactionID: transactionID,
		Op:            op,
		Timestamp:     time.Now().UTC(),
	}
}

// AlertMessage describes one budget tier or due-date alert for a user.
type AlertMessage struct {
	UserID    string          `json:"userId"`
	Kind      AlertKind       `json:"kind"`
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	Detail    string          `json:"detail"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"timestamp"`
}

func DecodeTransactionSync(data []byte) (TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.TransactionID == "" || msg.UserID == "" {
		return msg, fmt.Errorf("%w: missing ids", ErrMalformedMessage)
	}
	switch msg.Op {
	case OpUpsert, OpDelete:
	default:
		return msg, fmt.Errorf("%w: unknown op %q", ErrMalformedMessage, msg.Op)
	}
	return msg, nil
}

func DecodeAlert(data []byte) (AlertMessage, error) {
	var msg AlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if msg.UserID == "" || msg.Kind == "" {
		return msg, fmt.Errorf("%w: missing user or kind", ErrMalformedMessage)
	}
	return msg, nil
}
