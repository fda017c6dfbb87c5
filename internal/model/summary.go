package model

import "math/big"

// ProteinCombinationSummary describes the combinatorial size of one protein
// and how much of it was generated.
type ProteinCombinationSummary struct {
	ProteinID            string
	TotalSites           int
	TotalDistinctGlycans int

	// TrueTotal is the exact, unbounded product of per-site option counts.
	TrueTotal *big.Int

	// GeneratedCount is min(limit, TrueTotal).
	GeneratedCount int
}

// Truncated reports whether the limit cut the enumeration short.
func (s ProteinCombinationSummary) Truncated() bool {
	if s.TrueTotal == nil {
		return false
	}
	return s.TrueTotal.Cmp(big.NewInt(int64(s.GeneratedCount))) > 0
}
