package agent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/accountant-ai/backend/internal/domain"
)

// Classifier is the single upstream call the router may make: it asks the
// model for one of the four domain labels.
type Classifier interface {
	Classify(ctx context.Context, query string) (string, error)
}

// Router classifies a free-text query into an agent domain. The model is the
// primary classifier; a deterministic keyword fallback keeps the router total
// when the model call fails or returns garbage.
type Router struct {
	classifier Classifier
	log        zerolog.Logger
}

// NewRouter creates a router. classifier may be nil, in which case only the
// keyword fallback runs.
func NewRouter(classifier Classifier, log zerolog.Logger) *Router {
	return &Router{classifier: classifier, log: log}
}

// routingKeywords maps each non-general domain to the substrings that select
// it. Checked in AllDomains order; the first domain with a hit wins, and a
// query matching nothing routes to general. This makes the fallback total and
// deterministic.
var routingKeywords = map[domain.AgentDomain][]string{
	domain.DomainSpending: {
		"spend", "expense", "buy", "purchase", "afford", "should i get",
		"worth it", "shopping", "expensive", "cost", "price",
		"dining out", "restaurant", "coffee", "impulse",
	},
	domain.DomainBudgeting: {
		"budget", "forecast", "run out", "overspent", "allocation",
		"on track", "burn rate", "how much left", "month end",
	},
	domain.DomainInvesting: {
		"invest", "stock", "portfolio", "401k", "ira", "retirement",
		"index fund", "etf", "dividend", "compound", "returns",
	},
}

// Classify maps a query to exactly one domain. It never fails: model errors
// and unknown labels fall through to the keyword heuristic.
func (r *Router) Classify(ctx context.Context, query string) domain.AgentDomain {
	if r.classifier != nil {
		label, err := r.classifier.Classify(ctx, query)
		if err == nil {
			label = strings.ToLower(strings.TrimSpace(label))
			if domain.ValidDomain(label) {
				return domain.AgentDomain(label)
			}
			r.log.Warn().Str("label", label).Msg("Classifier returned unknown label, using keyword fallback")
		} else {
			r.log.Warn().Err(err).Msg("Classifier call failed, using keyword fallback")
		}
	}
	return ClassifyKeywords(query)
}

// ClassifyKeywords is the deterministic fallback: case-insensitive substring
// matching against the routing table, domains checked in fixed order.
func ClassifyKeywords(query string) domain.AgentDomain {
	msg := strings.ToLower(query)
	for _, d := range domain.AllDomains() {
		for _, kw := range routingKeywords[d] {
			if strings.Contains(msg, kw) {
				return d
			}
		}
	}
	return domain.DomainGeneral
}
