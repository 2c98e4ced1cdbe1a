// Package snapshot reduces a transaction sequence into the derived financial
// view injected into prompts: totals, category breakdown and the most recent
// records.
package snapshot

import (
	"math"
	"sort"

	"github.com/accountant-ai/backend/internal/domain"
)

// UncategorizedLabel buckets transactions with a missing or blank category.
const UncategorizedLabel = "Uncategorized"

// RecentLimit is how many most-recent transactions a snapshot carries.
const RecentLimit = 5

// CategoryTotal is one row of the category breakdown.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Snapshot is the derived aggregate view of a user's transactions. It is
// computed on demand and never stored.
//
// EstimatedBalance = TotalIncome - TotalSpent. The service has no external
// starting-balance input, so net flow is the balance convention.
type Snapshot struct {
	TotalSpent       float64         `json:"total_spent"`
	TotalIncome      float64         `json:"total_income"`
	EstimatedBalance float64         `json:"estimated_balance"`
	CategoryTotals   []CategoryTotal `json:"category_totals"`
	Recent           []domain.Transaction `json:"recent_transactions"`
	// SkippedRecords counts records dropped for non-finite amounts.
	SkippedRecords int `json:"skipped_records,omitempty"`
}

// Summarize computes a Snapshot from a transaction sequence. It is a pure
// function: an empty input yields all-zero totals and an empty breakdown,
// never an error.
//
// TotalSpent sums the magnitudes of negative amounts; TotalIncome sums the
// positive ones. Category totals cover debit magnitudes only, grouped by the
// coarsest category label, sorted by total descending with category name
// ascending as the tie-break. NaN and infinite amounts are skipped and
// counted in SkippedRecords.
func Summarize(txs []domain.Transaction) Snapshot {
	snap := Snapshot{CategoryTotals: []CategoryTotal{}}
	byCategory := make(map[string]float64)

	for _, tx := range txs {
		if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
			snap.SkippedRecords++
			continue
		}
		if tx.Amount < 0 {
			spent := -tx.Amount
			snap.TotalSpent += spent
			label := tx.TopCategory()
			if label == "" {
				label = UncategorizedLabel
			}
			byCategory[label] += spent
		} else if tx.Amount > 0 {
			snap.TotalIncome += tx.Amount
		}
	}

	snap.EstimatedBalance = snap.TotalIncome - snap.TotalSpent

	for category, total := range byCategory {
		snap.CategoryTotals = append(snap.CategoryTotals, CategoryTotal{Category: category, Total: total})
	}
	sort.Slice(snap.CategoryTotals, func(i, j int) bool {
		if snap.CategoryTotals[i].Total != snap.CategoryTotals[j].Total {
			return snap.CategoryTotals[i].Total > snap.CategoryTotals[j].Total
		}
		return snap.CategoryTotals[i].Category < snap.CategoryTotals[j].Category
	})

	snap.Recent = recentTransactions(txs, RecentLimit)
	return snap
}

// TopCategories returns up to k rows of the breakdown.
func (s Snapshot) TopCategories(k int) []CategoryTotal {
	if k <= 0 || k >= len(s.CategoryTotals) {
		return s.CategoryTotals
	}
	return s.CategoryTotals[:k]
}

// recentTransactions returns a copy of the n most recent records, ordered by
// date descending with transaction ID ascending for determinism.
func recentTransactions(txs []domain.Transaction, n int) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, tx := range txs {
		if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) {
			continue
		}
		out = append(out, tx.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].TransactionID < out[j].TransactionID
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
