// Package quota decides whether an extracted document fits within the page
// limit of the owner's subscription plan. It is evaluated after extraction
// (the page count is not known earlier) and before indexing, so over-limit
// documents never incur embedding cost.
package quota

import (
	"fmt"

	"github.com/cognitext/cognitext/internal/config"
	"github.com/cognitext/cognitext/internal/models"
)

// Policy maps a subscription tier to its page limit. Pure and deterministic:
// no I/O, no side effects.
type Policy struct {
	FreeMaxPages int
	ProMaxPages  int
}

func NewPolicy(cfg config.QuotaConfig) Policy {
	return Policy{
		FreeMaxPages: cfg.FreeMaxPages,
		ProMaxPages:  cfg.ProMaxPages,
	}
}

// ExceededError reports a quota rejection. It is a policy outcome, not a
// defect: the pipeline maps it to a FAILED document status.
type ExceededError struct {
	Pages int
	Limit int
	Tier  string
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d pages over %s limit of %d", e.Pages, e.Tier, e.Limit)
}

// Limit returns the page limit for the tier selected by subscribed.
func (p Policy) Limit(subscribed bool) int {
	if subscribed {
		return p.ProMaxPages
	}
	return p.FreeMaxPages
}

// Evaluate accepts the document (nil) or rejects it with *ExceededError.
// A document with exactly limit pages is accepted.
func (p Policy) Evaluate(pageCount int, subscribed bool) error {
	limit := p.Limit(subscribed)
	if pageCount > limit {
		tier := models.TierFree
		if subscribed {
			tier = models.TierPro
		}
		return &ExceededError{Pages: pageCount, Limit: limit, Tier: tier}
	}
	return nil
}
