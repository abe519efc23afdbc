// Package breakrule computes the legally required break allotment for a
// day's worked hours from an ordered, configurable tier table.
package breakrule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"breakaudit/config"
)

// Tier grants Minutes once worked hours reach Bound (inclusive).
type Tier struct {
	Bound   decimal.Decimal
	Minutes int
}

// Table is an ordered set of tiers, lowest bound first.
type Table struct {
	tiers []Tier
}

// NewTable builds a rule table from configuration. Bounds must be strictly
// ascending; config validation enforces this, the check here guards direct
// construction in tests and callers bypassing config.
func NewTable(tiers []config.Tier) (Table, error) {
	if len(tiers) == 0 {
		return Table{}, fmt.Errorf("break rule table requires at least one tier")
	}

	built := make([]Tier, 0, len(tiers))
	previous := decimal.NewFromInt(-1)
	for i, tier := range tiers {
		bound := decimal.NewFromFloat(tier.MinHours)
		if bound.IsNegative() {
			return Table{}, fmt.Errorf("tier %d: bound must not be negative", i)
		}
		if bound.LessThanOrEqual(previous) {
			return Table{}, fmt.Errorf("tier %d: bounds must be strictly ascending", i)
		}
		if tier.BreakMinutes <= 0 {
			return Table{}, fmt.Errorf("tier %d: break minutes must be positive", i)
		}
		built = append(built, Tier{Bound: bound, Minutes: tier.BreakMinutes})
		previous = bound
	}

	return Table{tiers: built}, nil
}

// RequiredMinutes returns the break minutes of the highest tier whose bound
// is at or below the worked hours, and 0 below the lowest tier. Hours above
// the top tier still receive the top tier's minutes.
func (t Table) RequiredMinutes(workHours decimal.Decimal) int {
	required := 0
	for _, tier := range t.tiers {
		if workHours.GreaterThanOrEqual(tier.Bound) {
			required = tier.Minutes
			continue
		}
		break
	}
	return required
}

// Tiers exposes a copy of the ordered tier list.
func (t Table) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}
