// Package events carries the asynchronous settlement protocol over Redis
// Streams. Delivery is at-least-once within a consumer group; handlers must
// tolerate redelivery.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stream names.
const (
	// StreamTransactions carries hub-payment settlement events in both
	// directions: this service publishes paid/completed, the hub publishes
	// transfer.
	StreamTransactions = "settlement.transactions"
	// StreamWalletPayments carries peer wallet payment requests.
	StreamWalletPayments = "wallet.payments"
	// StreamWalletForward carries payment events forwarded to the wallet hub,
	// including events for identities this service could not resolve.
	StreamWalletForward = "wallet.forward"
	// StreamWalletResults carries the terminal result of each wallet request.
	StreamWalletResults = "wallet.results"
	// StreamWalletLinks carries the card link request/confirm handshake.
	StreamWalletLinks = "wallet.links"
)

// TransactionState tags a hub-payment settlement event.
type TransactionState string

const (
	TransactionPaid      TransactionState = "paid"
	TransactionTransfer  TransactionState = "transfer"
	TransactionCompleted TransactionState = "completed"
)

// TransactionEvent is one step of the hub-payment settlement protocol.
type TransactionEvent struct {
	TransactionID string           `json:"transactionId"`
	State         TransactionState `json:"state"`
	AccountID     string           `json:"accountId,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
}

// WalletPayment is a peer wallet payment request. From is empty for inbound
// top-ups originating outside the wallet network.
type WalletPayment struct {
	ID     string          `json:"id"`
	From   string          `json:"from,omitempty"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

// ResultStatus tags the terminal outcome of a wallet request.
type ResultStatus string

const (
	ResultSuccess ResultStatus = "success"
	ResultFailed  ResultStatus = "failed"
)

// WalletResult is the terminal result event for one wallet request.
type WalletResult struct {
	To      string       `json:"to"`
	Status  ResultStatus `json:"status"`
	Message string       `json:"message"`
}

// LinkState tags a step of the card link handshake.
type LinkState string

const (
	LinkRequested LinkState = "request"
	LinkConfirmed LinkState = "confirmed"
	LinkRejected  LinkState = "rejected"
)

// LinkEvent is one step of the wallet-to-card link handshake.
type LinkEvent struct {
	Phone     string          `json:"phone"`
	DebitCard string          `json:"debitCard"`
	State     LinkState       `json:"state"`
	Amount    decimal.Decimal `json:"amount"`
}
