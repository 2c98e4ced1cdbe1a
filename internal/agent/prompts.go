package agent

import (
	"fmt"
	"strings"

	"github.com/accountant-ai/backend/internal/domain"
	"github.com/accountant-ai/backend/internal/snapshot"
)

// Per-domain role instructions. One fixed block per agent domain; dispatch is
// exhaustive over the domain enumeration.
const (
	spendingInstructions = `You are the Spending & Purchase Decision Agent.
Help the user make smart spending decisions in real time:
- When the user asks about buying something, weigh the cost against their balance and recent spending.
- Say what share of their remaining funds the purchase represents.
- Point out accelerating spending or repeated similar purchases.
Always give a clear YES, NO, or WAIT recommendation with specific reasoning.`

	budgetingInstructions = `You are the Budget Analysis & Forecasting Agent.
Help the user stay on budget and see where their money is going:
- Compare spending by category and call out the categories that dominate.
- Project whether the current pace is sustainable.
- Suggest 2-3 concrete adjustments with specific amounts.
Start with the headline ("You're on track" or "Alert: budget at risk") and use the actual numbers.`

	investingInstructions = `You are the Investing Agent.
Help the user think about investing within their actual means:
- Ground every suggestion in their real balance and cash flow.
- Prefer boring, diversified options over speculation.
- Never recommend investing money the user needs for near-term expenses.
Be clear about risk and time horizon.`

	generalInstructions = `You are a general personal finance assistant.
Answer the user's question directly using their actual financial data where relevant.
Stay practical and specific; this is their money, not a textbook example.`
)

// paydayNotice is injected when the request flags a payday period.
const paydayNotice = `PAYDAY CONTEXT:
The user just got paid. This is when overspending typically happens.
Acknowledge the fresh balance, but steer them toward setting money aside before discretionary spending.`

// AssembleInput carries everything the prompt assembler interpolates.
type AssembleInput struct {
	Domain      domain.AgentDomain
	Snapshot    snapshot.Snapshot
	Query       string
	Personality domain.Personality
	IsPayday    bool
}

// Assemble builds the full prompt for one chat turn. The output always embeds
// the literal formatted snapshot figures so downstream answers can be checked
// against the user's actual data.
func Assemble(in AssembleInput) string {
	var b strings.Builder

	b.WriteString(instructionsFor(in.Domain))
	b.WriteString("\n\nUSER FINANCIAL SNAPSHOT:\n")
	fmt.Fprintf(&b, "- Total Spent: $%.2f\n", in.Snapshot.TotalSpent)
	fmt.Fprintf(&b, "- Total Income: $%.2f\n", in.Snapshot.TotalIncome)
	fmt.Fprintf(&b, "- Estimated Balance: $%.2f\n", in.Snapshot.EstimatedBalance)

	if top := in.Snapshot.TopCategories(5); len(top) > 0 {
		b.WriteString("\nTOP SPENDING CATEGORIES:\n")
		for _, ct := range top {
			fmt.Fprintf(&b, "- %s: $%.2f\n", ct.Category, ct.Total)
		}
	}

	if len(in.Snapshot.Recent) > 0 {
		b.WriteString("\nRECENT TRANSACTIONS:\n")
		for _, tx := range in.Snapshot.Recent {
			name := tx.MerchantName
			if name == "" {
				name = tx.Name
			}
			label := tx.TopCategory()
			if label == "" {
				label = snapshot.UncategorizedLabel
			}
			fmt.Fprintf(&b, "- %s: %s $%.2f (%s)\n", tx.DateString(), name, abs(tx.Amount), label)
		}
	}

	if in.IsPayday {
		b.WriteString("\n")
		b.WriteString(paydayNotice)
		b.WriteString("\n")
	}

	b.WriteString("\nRULES:\n")
	b.WriteString("- Reference the exact dollar figures above; never invent or round away numbers.\n")
	b.WriteString("- Give actionable advice, not just information.\n")
	b.WriteString("- Be concise but complete.\n")

	fmt.Fprintf(&b, "\nUSER QUESTION:\n%s\n", in.Query)

	b.WriteString("\nYOUR PERSONALITY:\n")
	b.WriteString(Tone(in.Personality).Directive)
	b.WriteString("\n")

	return b.String()
}

// instructionsFor dispatches exhaustively over the domain enumeration.
func instructionsFor(d domain.AgentDomain) string {
	switch d {
	case domain.DomainSpending:
		return spendingInstructions
	case domain.DomainBudgeting:
		return budgetingInstructions
	case domain.DomainInvesting:
		return investingInstructions
	case domain.DomainGeneral:
		return generalInstructions
	}
	return generalInstructions
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
