package reimburse

import (
	"github.com/ruizmr/8090-top-coder/pkg/expr"
)

// Legacy is the hand-written reimbursement model the search is trying to
// rediscover piecewise: per-diem with a five-day bonus and a reduced rate
// for trips of nine days or more, tiered mileage, and a receipts floor.
func Legacy(d int, m, r float64) float64 {
	var perDiem float64
	switch {
	case d == 5:
		perDiem = 100*float64(d) + 75
	case d >= 9:
		perDiem = 90 * float64(d)
	default:
		perDiem = 100 * float64(d)
	}

	// Mileage tiers: 0-100 mi @ 0.58, 101-275 @ 0.45, 276-916 @ 0.30,
	// beyond 916 @ 0.35.
	var mileage float64
	remaining := m

	tier := min(remaining, 100)
	mileage += tier * 0.58
	remaining -= tier

	if remaining > 0 {
		tier = min(remaining, 175)
		mileage += tier * 0.45
		remaining -= tier
	}
	if remaining > 0 {
		tier = min(remaining, 641)
		mileage += tier * 0.30
		remaining -= tier
	}
	if remaining > 0 {
		mileage += remaining * 0.35
	}

	total := perDiem + mileage
	if r > total {
		total = r
	}
	return expr.RoundHalfAway(total, 2)
}

// PerDiemBonus is the per-diem-with-bonus rule hand-encoded in the DSL:
//
//	return round(max((d * 100), ((d * 100) + 75)), 2)
//
// It serves as a known reference program for round-trip checks against the
// direct arithmetic above.
func PerDiemBonus() expr.Stmt {
	base := &expr.Scale{Op: expr.MulOp, Operand: &expr.Var{Name: "d"}, Factor: 100}
	bonus := &expr.Binary{Op: expr.AddOp, Left: base, Right: &expr.Const{Value: 75}}

	return &expr.Return{
		Expr: &expr.Round{
			Operand: &expr.Binary{Op: expr.MaxOp, Left: base, Right: bonus},
			Digits:  2,
		},
	}
}
