// Package usage contains the usage data model and the logic to extract it
// from the rendered dashboard markup.
package usage

// Snapshot holds the usage figures of one successful extraction. A Snapshot
// is never mutated after construction, a new fetch produces a new one.
type Snapshot struct {
	IncludedUsed  int
	IncludedTotal int

	OnDemandUsed  float64
	OnDemandLimit float64

	LastModel     string
	LastTimestamp string
	ThinkingMode  bool
	MaxMode       bool
}

// IncludedPercentage returns the used share of the included requests in
// percent. Returns 0 if the total is 0.
func (s Snapshot) IncludedPercentage() float64 {
	if s.IncludedTotal == 0 {
		return 0
	}
	return float64(s.IncludedUsed) / float64(s.IncludedTotal) * 100
}

// IncludedRemaining returns the number of included requests left. The
// dashboard can report more used than total so the result may be negative.
func (s Snapshot) IncludedRemaining() int {
	return s.IncludedTotal - s.IncludedUsed
}

// DisplayModel returns the model name of the most recent request in a form
// suitable for a status line.
func (s Snapshot) DisplayModel() string {
	if s.LastModel == "" {
		return "Unknown"
	}
	return s.LastModel
}
