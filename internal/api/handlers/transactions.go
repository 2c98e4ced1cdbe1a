package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/backend/internal/api/middleware"
	"github.com/accountant-ai/backend/internal/common"
	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/snapshot"
	"github.com/accountant-ai/backend/internal/store"
)

const topCategoryCount = 3

// TransactionHandler loads and serves per-user transaction sequences.
type TransactionHandler struct {
	store    store.TransactionStore
	feed     BankFeed // nil when no bank credentials are configured
	seedFile string
	log      zerolog.Logger
}

func NewTransactionHandler(st store.TransactionStore, feed BankFeed, seedFile string, log zerolog.Logger) *TransactionHandler {
	return &TransactionHandler{store: st, feed: feed, seedFile: seedFile, log: log}
}

type loadRequest struct {
	Transactions []wireTransaction `json:"transactions"`
	AccessToken  string            `json:"access_token"`
}

type loadResponse struct {
	Status             string                   `json:"status"`
	TransactionsLoaded int                      `json:"transactions_loaded"`
	TotalSpent         float64                  `json:"total_spent"`
	TotalIncome        float64                  `json:"total_income"`
	TopCategories      []snapshot.CategoryTotal `json:"top_categories"`
}

// Load replaces the user's transaction sequence. The records come from the
// request body, from the bank feed when an access token is supplied, or from
// the configured seed file when the body is empty.
func (h *TransactionHandler) Load(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "user_id query parameter is required")
		return
	}

	var req loadRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	records, source, err := h.resolveRecords(r, req)
	if err != nil {
		middleware.WriteTaxonomyError(w, err)
		return
	}

	count, err := h.store.Load(r.Context(), userID, records)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("load transactions failed")
		middleware.WriteTaxonomyError(w, err)
		return
	}

	snap := snapshot.Summarize(records)
	h.log.Info().
		Str("user_id", userID).
		Str("source", source).
		Int("count", count).
		Int("skipped", snap.SkippedRecords).
		Msg("transactions loaded")

	middleware.WriteJSON(w, http.StatusOK, loadResponse{
		Status:             "loaded",
		TransactionsLoaded: count,
		TotalSpent:         snap.TotalSpent,
		TotalIncome:        snap.TotalIncome,
		TopCategories:      snap.TopCategories(topCategoryCount),
	})
}

func (h *TransactionHandler) resolveRecords(r *http.Request, req loadRequest) ([]domain.Transaction, string, error) {
	switch {
	case len(req.Transactions) > 0:
		records := make([]domain.Transaction, len(req.Transactions))
		for i, wt := range req.Transactions {
			records[i] = wt.toDomain()
		}
		return records, "inline", nil

	case req.AccessToken != "":
		if h.feed == nil {
			return nil, "", fmt.Errorf("%w: bank feed is not configured", common.ErrValidation)
		}
		records, err := h.feed.FetchTransactions(r.Context(), req.AccessToken)
		if err != nil {
			return nil, "", fmt.Errorf("resolveRecords: bank feed: %w", err)
		}
		return records, "bank_feed", nil

	default:
		records, err := h.loadSeed()
		if err != nil {
			return nil, "", err
		}
		return records, "seed_file", nil
	}
}

func (h *TransactionHandler) loadSeed() ([]domain.Transaction, error) {
	if h.seedFile == "" {
		return nil, fmt.Errorf("%w: request body has no transactions and no seed file is configured", common.ErrValidation)
	}
	data, err := os.ReadFile(h.seedFile)
	if err != nil {
		return nil, fmt.Errorf("loadSeed: %w", err)
	}
	var wires []wireTransaction
	if err := json.Unmarshal(data, &wires); err != nil {
		return nil, fmt.Errorf("loadSeed: parse %s: %w", h.seedFile, err)
	}
	records := make([]domain.Transaction, len(wires))
	for i, wt := range wires {
		records[i] = wt.toDomain()
	}
	return records, nil
}

// Get serves the user's stored transactions, newest first. A user that never
// loaded anything gets an empty list.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimPrefix(r.URL.Path, "/get-transactions/")
	if userID == "" || strings.Contains(userID, "/") {
		middleware.WriteError(w, http.StatusBadRequest, "user ID is required in path")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			middleware.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	txs, err := h.store.Get(r.Context(), userID, limit)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("get transactions failed")
		middleware.WriteTaxonomyError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"user_id":      userID,
		"count":        len(txs),
		"transactions": fromDomainAll(txs),
	})
}
