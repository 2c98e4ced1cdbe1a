package domain

// AgentDomain is the closed set of topic classifications used to select a
// prompt template. Every query maps to exactly one domain; DomainGeneral is
// the catch-all.
type AgentDomain string

const (
	DomainSpending  AgentDomain = "spending"
	DomainBudgeting AgentDomain = "budgeting"
	DomainInvesting AgentDomain = "investing"
	DomainGeneral   AgentDomain = "general"
)

// AllDomains lists the domains in routing-priority order.
func AllDomains() []AgentDomain {
	return []AgentDomain{DomainSpending, DomainBudgeting, DomainInvesting, DomainGeneral}
}

// ValidDomain reports whether a label names a known agent domain.
func ValidDomain(label string) bool {
	switch AgentDomain(label) {
	case DomainSpending, DomainBudgeting, DomainInvesting, DomainGeneral:
		return true
	}
	return false
}
