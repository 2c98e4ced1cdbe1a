package gemini

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/accountant-ai/backend/internal/common"
)

// receiptPrompt asks the vision model for the structured receipt fields.
const receiptPrompt = `You are a receipt parser. Extract the purchase details from the attached receipt image.

Output STRICT JSON only (no comments, no trailing commas, no extra text).
Use exactly this shape:
{
  "merchant": string,
  "amount": number (the receipt total, positive),
  "date": string, ISO format "YYYY-MM-DD",
  "category": string (one word, e.g. "Food", "Shopping", "Transport"),
  "description": string or null
}

If a field cannot be read from the image, set it to null.
Return ONLY valid raw JSON.
Do NOT wrap the response in code fences.
Do NOT use markdown.
Output must begin with "{" and end with "}".`

// ReceiptFields is the validated result of a receipt extraction. Merchant,
// Amount, Date and Category are required; a response missing any of them is
// an ExtractionIncomplete error that still carries the partial fields.
type ReceiptFields struct {
	Merchant    string  `json:"merchant"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
}

// ParsedDate returns the receipt date as a time.Time.
func (r ReceiptFields) ParsedDate() (time.Time, error) {
	return time.Parse("2006-01-02", r.Date)
}

// parseReceipt decodes and validates the model's receipt JSON.
func parseReceipt(raw string) (ReceiptFields, error) {
	clean := cleanModelJSON(raw)

	var decoded struct {
		Merchant    *string  `json:"merchant"`
		Amount      *float64 `json:"amount"`
		Date        *string  `json:"date"`
		Category    *string  `json:"category"`
		Description *string  `json:"description"`
	}
	if err := json.Unmarshal([]byte(clean), &decoded); err != nil {
		return ReceiptFields{}, fmt.Errorf("%w: receipt JSON: %w", common.ErrInvalidResponse, err)
	}

	fields := ReceiptFields{}
	var missing []string

	if decoded.Merchant != nil && strings.TrimSpace(*decoded.Merchant) != "" {
		fields.Merchant = strings.TrimSpace(*decoded.Merchant)
	} else {
		missing = append(missing, "merchant")
	}
	if decoded.Amount != nil && *decoded.Amount > 0 && !math.IsInf(*decoded.Amount, 0) && !math.IsNaN(*decoded.Amount) {
		fields.Amount = *decoded.Amount
	} else {
		missing = append(missing, "amount")
	}
	if decoded.Date != nil && strings.TrimSpace(*decoded.Date) != "" {
		fields.Date = strings.TrimSpace(*decoded.Date)
		if _, err := fields.ParsedDate(); err != nil {
			missing = append(missing, "date")
		}
	} else {
		missing = append(missing, "date")
	}
	if decoded.Category != nil && strings.TrimSpace(*decoded.Category) != "" {
		fields.Category = strings.TrimSpace(*decoded.Category)
	} else {
		missing = append(missing, "category")
	}
	if decoded.Description != nil {
		fields.Description = strings.TrimSpace(*decoded.Description)
	}

	if len(missing) > 0 {
		return fields, fmt.Errorf("%w: missing fields: %s", common.ErrExtractionIncomplete, strings.Join(missing, ", "))
	}
	return fields, nil
}

// cleanModelJSON strips markdown fences and surrounding junk when the model
// ignores the strict-JSON instruction.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	// Keep only the outermost JSON object if junk surrounds it.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
