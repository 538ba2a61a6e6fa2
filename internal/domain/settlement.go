package domain

import "time"

// Damage penalties are a fraction of the item's replacement value keyed by
// severity. Fractions are kept as exact ratios so that e.g. a medium report
// on a 300-token item costs exactly 100.
var damageFraction = map[DamageSeverity]struct{ num, den int32 }{
	SeverityLight:  {1, 4},
	SeverityMedium: {1, 3},
	SeverityHigh:   {1, 2},
	SeveritySevere: {1, 1},
}

// DamagePenalty returns the penalty in tokens for a damage report of the
// given severity against an item worth value tokens. Never less than 1.
func DamagePenalty(value int32, severity DamageSeverity) int32 {
	f, ok := damageFraction[severity]
	if !ok {
		f = damageFraction[SeverityLight]
	}
	penalty := value * f.num / f.den
	if penalty < 1 {
		penalty = 1
	}
	return penalty
}

// CapPenalty clamps an accumulated penalty to the item's replacement value,
// so stacked late and damage fees never exceed what the item is worth.
func CapPenalty(penalty, value int32) int32 {
	if penalty > value {
		return value
	}
	return penalty
}

// RentalDays counts calendar days in the inclusive window [start, end]:
// [D, D] is 1 day, [D, D+2] is 3 days. Returns 0 when end precedes start.
func RentalDays(start, end time.Time) int32 {
	s := truncateToDate(start)
	e := truncateToDate(end)
	if e.Before(s) {
		return 0
	}
	return int32(e.Sub(s).Hours()/24) + 1
}

// RentalCost is the total token charge for a window, fixed at request time.
func RentalCost(tokensPerDay int32, start, end time.Time) int32 {
	return tokensPerDay * RentalDays(start, end)
}

// LatePenalty charges tokensPerDay for every started day past endDate at the
// moment the return handshake completes.
func LatePenalty(tokensPerDay int32, endDate, returnedAt time.Time) int32 {
	if !returnedAt.After(endDate) {
		return 0
	}
	overdue := returnedAt.Sub(endDate)
	days := int32(overdue / (24 * time.Hour))
	if overdue%(24*time.Hour) != 0 {
		days++
	}
	return tokensPerDay * days
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Settlement is the net token flow applied atomically with the transition to
// returned: the escrowed rental fee moves to the owner, and any accumulated
// penalty is charged to the borrower (or parked as a pending penalty when
// the balance cannot cover it).
type Settlement struct {
	TransactionID   string
	ItemID          string
	OwnerID         string
	BorrowerID      string
	OwnerCredit     int32
	BorrowerPenalty int32
	LatePenalty     int32
	PenaltyReason   string
	ReturnedAt      time.Time
}

// ComputeSettlement derives the settlement for a transaction whose return
// handshake completed at returnedAt. Adds the late fee to any damage penalty
// already accumulated and caps the total at the item value.
func ComputeSettlement(t *Transaction, item *Item, returnedAt time.Time) Settlement {
	late := LatePenalty(item.TokensPerDay, t.EndDate, returnedAt)
	total := CapPenalty(t.PenaltyTokens+late, item.Value)
	return Settlement{
		TransactionID:   t.ID,
		ItemID:          t.ItemID,
		OwnerID:         t.OwnerID,
		BorrowerID:      t.BorrowerID,
		OwnerCredit:     t.TotalTokens,
		BorrowerPenalty: total,
		LatePenalty:     late,
		PenaltyReason:   "Penalties for borrowing " + item.Title,
		ReturnedAt:      returnedAt,
	}
}
