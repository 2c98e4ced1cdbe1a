package domain

import (
	"time"
)

// PaymentChannel describes how a transaction was made. Values mirror the
// Plaid wire format so bank-feed records pass through unchanged.
type PaymentChannel string

const (
	ChannelInStore PaymentChannel = "in store"
	ChannelOnline  PaymentChannel = "online"
	ChannelOther   PaymentChannel = "other"
)

// Source tags where a transaction record came from.
type Source string

const (
	SourceBankFeed      Source = "bank_feed"
	SourceReceiptUpload Source = "receipt_upload"
)

// Transaction is one normalized transaction in a user's sequence.
// Sign convention: negative Amount = money out (debit), positive = money in
// (credit). Records are immutable once stored; the receipt path creates new
// records, it never mutates existing ones.
type Transaction struct {
	TransactionID  string         `json:"transaction_id"`
	Date           time.Time      `json:"date"`
	Name           string         `json:"name"`
	MerchantName   string         `json:"merchant_name,omitempty"`
	Amount         float64        `json:"amount"`
	Category       []string       `json:"category"` // coarse → fine
	PaymentChannel PaymentChannel `json:"payment_channel,omitempty"`
	Source         Source         `json:"source,omitempty"`
}

// Clone returns a deep copy so stored records never share slices with callers.
func (t Transaction) Clone() Transaction {
	out := t
	if t.Category != nil {
		out.Category = make([]string, len(t.Category))
		copy(out.Category, t.Category)
	}
	return out
}

// CloneAll deep-copies a transaction sequence.
func CloneAll(txs []Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		out[i] = t.Clone()
	}
	return out
}

// TopCategory returns the coarsest category label, or "" when uncategorized.
func (t Transaction) TopCategory() string {
	if len(t.Category) == 0 {
		return ""
	}
	return t.Category[0]
}

// DateString formats the transaction date the way the wire format expects.
func (t Transaction) DateString() string {
	return t.Date.Format("2006-01-02")
}
