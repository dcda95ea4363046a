package fare

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rts-transit/rapidride/internal/model"
)

var denver = time.FixedZone("MDT", -6*3600)

func TestPolicy_PerRideAlwaysValid(t *testing.T) {
	p := NewValidityPolicy(denver)
	now := time.Date(2031, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, tt := range []model.TicketType{model.TicketSingleUse, model.TicketTenPackUnit} {
		rec := model.TicketRecord{TicketType: tt}
		assert.True(t, p.IsValidNow(rec, now), "type %s", tt)
	}
}

func TestPolicy_MonthlyPass(t *testing.T) {
	p := NewValidityPolicy(denver)
	pass := model.TicketRecord{TicketType: model.TicketMonthlyPass, ValidFor: "2025-08"}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"mid month", time.Date(2025, time.August, 15, 12, 0, 0, 0, denver), true},
		{"first instant", time.Date(2025, time.August, 1, 0, 0, 0, 0, denver), true},
		{"last instant", time.Date(2025, time.August, 31, 23, 59, 59, 0, denver), true},
		{"month after", time.Date(2025, time.September, 1, 0, 0, 0, 0, denver), false},
		{"month before", time.Date(2025, time.July, 31, 23, 59, 59, 0, denver), false},
		{"same month next year", time.Date(2026, time.August, 15, 12, 0, 0, 0, denver), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, p.IsValidNow(pass, tc.now))
		})
	}
}

func TestPolicy_MonthEvaluatedInPolicyTimezone(t *testing.T) {
	p := NewValidityPolicy(denver)
	pass := model.TicketRecord{TicketType: model.TicketMonthlyPass, ValidFor: "2025-08"}

	// 2025-09-01 03:00 UTC is still 2025-08-31 21:00 in Denver.
	utcEarlySept := time.Date(2025, time.September, 1, 3, 0, 0, 0, time.UTC)
	assert.True(t, p.IsValidNow(pass, utcEarlySept))
}

func TestPolicy_MalformedValidForNeverValid(t *testing.T) {
	p := NewValidityPolicy(denver)
	now := time.Date(2025, time.August, 15, 12, 0, 0, 0, denver)

	for _, vf := range []string{"", "2025", "2025-13", "August 2025", "2025-08-15"} {
		rec := model.TicketRecord{TicketType: model.TicketMonthlyPass, ValidFor: vf}
		assert.False(t, p.IsValidNow(rec, now), "valid_for %q", vf)
	}
}

func TestPolicy_UnknownTypeNeverValid(t *testing.T) {
	p := NewValidityPolicy(nil)
	rec := model.TicketRecord{TicketType: "day_pass"}
	assert.False(t, p.IsValidNow(rec, time.Now()))
}
