package models

import "math"

// CommissionSchedule is a per-share fee bounded below by a flat minimum and
// above by a fraction of the notional traded. Charged once per order, on
// full fill only.
type CommissionSchedule struct {
	PerShare        float64 `yaml:"per_share"`
	Minimum         float64 `yaml:"minimum"`
	MaxRateFraction float64 `yaml:"max_rate_fraction"`
}

func DefaultCommissionSchedule() CommissionSchedule {
	return CommissionSchedule{
		PerShare:        0.005,
		Minimum:         1.0,
		MaxRateFraction: 0.005,
	}
}

func (s CommissionSchedule) Charge(fillPrice, quantityFilled float64) float64 {
	maxCommission := s.MaxRateFraction * fillPrice * quantityFilled
	commission := s.PerShare * quantityFilled
	return math.Max(math.Min(commission, maxCommission), s.Minimum)
}
