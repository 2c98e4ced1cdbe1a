package handlers

import (
	"context"

	"github.com/accountant-ai/backend/internal/agent"
	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/gemini"
)

// ChatService answers a routed, tone-adjusted finance question.
type ChatService interface {
	Chat(ctx context.Context, req agent.ChatRequest) (agent.ChatResult, error)
}

// ReceiptExtractor reads structured purchase fields out of a receipt image.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (gemini.ReceiptFields, error)
}

// BankFeed pulls recent transactions for a linked bank account.
type BankFeed interface {
	FetchTransactions(ctx context.Context, accessToken string) ([]domain.Transaction, error)
}
