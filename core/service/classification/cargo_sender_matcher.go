package classification

import (
	"strings"

	"cargo_server/core/domain"
)

// =============================================================================
// Sender-Category Matcher
// =============================================================================

// senderPattern maps address substrings to a sender category. Patterns are
// evaluated strictly in declaration order: specific organizations first,
// generic address families after, so "operations@maersk.com" resolves as
// carrier before the generic internal check can see it.
type senderPattern struct {
	markers  []string // any marker matching the lowercased address hits
	category domain.SenderCategory
}

// SenderMatcher classifies the sending party purely from its address.
type SenderMatcher struct {
	patterns []senderPattern
}

// SenderMatcherConfig carries the deployment-specific domain lists.
type SenderMatcherConfig struct {
	CarrierDomains  []string // direct-carrier domains, e.g. maersk.com
	InternalDomains []string // the forwarding organization's own domains
	CustomsDomains  []string
	TruckerDomains  []string
}

// NewSenderMatcher builds the ordered pattern table from configured domains
// plus built-in generic address families.
func NewSenderMatcher(cfg *SenderMatcherConfig) *SenderMatcher {
	m := &SenderMatcher{}

	if cfg != nil {
		m.add(cfg.CarrierDomains, domain.SenderCarrier)
		m.add(cfg.CustomsDomains, domain.SenderCustomsAgent)
		m.add(cfg.TruckerDomains, domain.SenderTrucker)
		m.add(cfg.InternalDomains, domain.SenderInternal)
	}

	// Generic families, matched only after every configured organization.
	m.patterns = append(m.patterns,
		senderPattern{markers: []string{"customs", "broker"}, category: domain.SenderCustomsAgent},
		senderPattern{markers: []string{"trucking", "haulage", "drayage"}, category: domain.SenderTrucker},
		senderPattern{markers: []string{"shipper", "export"}, category: domain.SenderShipper},
		senderPattern{markers: []string{"consignee", "import"}, category: domain.SenderConsignee},
	)

	return m
}

func (m *SenderMatcher) add(domains []string, category domain.SenderCategory) {
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		m.patterns = append(m.patterns, senderPattern{markers: []string{"@" + d}, category: category})
	}
}

// Match classifies an address. Unmatched addresses default to unknown; the
// orchestrator treats unknown senders as an AI fallback trigger.
func (m *SenderMatcher) Match(address string) domain.SenderCategory {
	addr := strings.ToLower(strings.TrimSpace(address))
	if addr == "" {
		return domain.SenderUnknown
	}

	for _, p := range m.patterns {
		for _, marker := range p.markers {
			if strings.Contains(addr, marker) {
				return p.category
			}
		}
	}
	return domain.SenderUnknown
}
