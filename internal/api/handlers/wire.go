package handlers

import (
	"time"

	"github.com/accountant-ai/backend/internal/domain"
)

// wireTransaction is the exchange shape for transaction records. Dates travel
// as "YYYY-MM-DD"; negative amount means money out.
type wireTransaction struct {
	TransactionID  string   `json:"transaction_id,omitempty"`
	Date           string   `json:"date"`
	Name           string   `json:"name"`
	Amount         float64  `json:"amount"`
	Category       []string `json:"category"`
	MerchantName   string   `json:"merchant_name,omitempty"`
	PaymentChannel string   `json:"payment_channel,omitempty"`
	Source         string   `json:"source,omitempty"`
}

// toDomain converts a wire record. An unparseable date falls back to today;
// a record with no name at all keeps the merchant name.
func (w wireTransaction) toDomain() domain.Transaction {
	date, err := time.Parse("2006-01-02", w.Date)
	if err != nil {
		date = time.Now()
	}

	channel := domain.ChannelOther
	switch domain.PaymentChannel(w.PaymentChannel) {
	case domain.ChannelInStore:
		channel = domain.ChannelInStore
	case domain.ChannelOnline:
		channel = domain.ChannelOnline
	}

	name := w.Name
	if name == "" {
		name = w.MerchantName
	}

	source := domain.SourceBankFeed
	if domain.Source(w.Source) == domain.SourceReceiptUpload {
		source = domain.SourceReceiptUpload
	}

	return domain.Transaction{
		TransactionID:  w.TransactionID,
		Date:           date,
		Name:           name,
		MerchantName:   w.MerchantName,
		Amount:         w.Amount,
		Category:       w.Category,
		PaymentChannel: channel,
		Source:         source,
	}
}

// fromDomain converts a stored record back to the wire shape.
func fromDomain(t domain.Transaction) wireTransaction {
	return wireTransaction{
		TransactionID:  t.TransactionID,
		Date:           t.DateString(),
		Name:           t.Name,
		Amount:         t.Amount,
		Category:       t.Category,
		MerchantName:   t.MerchantName,
		PaymentChannel: string(t.PaymentChannel),
		Source:         string(t.Source),
	}
}

func fromDomainAll(txs []domain.Transaction) []wireTransaction {
	out := make([]wireTransaction, len(txs))
	for i, t := range txs {
		out[i] = fromDomain(t)
	}
	return out
}
