package fare

import (
	"time"

	"github.com/rts-transit/rapidride/internal/model"
)

// validForLayout is the year-month token carried by monthly passes.
const validForLayout = "2006-01"

// ValidityPolicy decides whether a ticket is temporally usable at a
// given instant.  The current time is always injected by the caller so
// the policy stays deterministic under test; the policy only supplies
// the reference timezone in which calendar months are evaluated.
type ValidityPolicy struct {
	loc *time.Location
}

// NewValidityPolicy returns a policy evaluating calendar validity in
// the given timezone.  A nil location falls back to UTC.
func NewValidityPolicy(loc *time.Location) *ValidityPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return &ValidityPolicy{loc: loc}
}

// IsValidNow reports whether the ticket may be used at instant now.
//
// Per-ride classes (single_use, ten_pack_unit) carry no expiry; their
// real gate is one-shot consumption.  A monthly pass is valid during
// the calendar month named by its valid_for token, evaluated in the
// policy timezone.  A malformed token or an unknown fare class is never
// valid.
func (p *ValidityPolicy) IsValidNow(t model.TicketRecord, now time.Time) bool {
	switch t.TicketType {
	case model.TicketSingleUse, model.TicketTenPackUnit:
		return true
	case model.TicketMonthlyPass:
		ym, err := time.Parse(validForLayout, t.ValidFor)
		if err != nil {
			return false
		}
		local := now.In(p.loc)
		return ym.Year() == local.Year() && ym.Month() == local.Month()
	}
	return false
}
