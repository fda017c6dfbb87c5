// Package enumerate produces glycoproteoforms of a single protein without
// materializing the cartesian product of its site options.
//
// Every proteoform has a mixed-radix index: site i contributes one digit whose
// base is the number of options at that site (observed glycans plus the
// unoccupied option, which is digit 0). The last site in catalog order is the
// least significant digit, so the sequence reads like a nested loop over the
// sites. Index n maps straight to its assignment, and the first limit indices
// are produced by incrementing the digits like an odometer.
//
// All functions are pure: they only read the catalog and are safe to call
// concurrently from any number of goroutines.
package enumerate

import (
	"math/big"

	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
)

// Count returns the exact number of proteoforms of the catalog, the product
// of all per-site option counts. A catalog without sites counts as 1.
func Count(c *model.SiteCatalog) *big.Int {
	total := big.NewInt(1)
	k := new(big.Int)
	for _, s := range c.Sites {
		total.Mul(total, k.SetInt64(int64(s.Options())))
	}
	return total
}

// Generated returns min(limit, total) for a non-negative limit.
func Generated(total *big.Int, limit int) int {
	if total.IsInt64() && total.Int64() < int64(limit) {
		return int(total.Int64())
	}
	return limit
}

// Validate checks the arguments shared by every enumeration entry point.
func Validate(c *model.SiteCatalog, limit int) error {
	if limit < 1 {
		return model.Usagef("limit must be at least 1, got %d", limit)
	}
	if c == nil || len(c.Sites) == 0 {
		id := ""
		if c != nil {
			id = c.ProteinID
		}
		return &model.DegenerateInputError{ProteinID: id}
	}
	return nil
}

// Each calls fn for the first min(limit, Count(c)) proteoforms in order and
// returns the true total. It stops at the first error returned by fn.
// Assignments are not retained between calls.
func Each(c *model.SiteCatalog, limit int, fn func(model.ProteoformAssignment) error) (*big.Int, error) {
	if err := Validate(c, limit); err != nil {
		return nil, err
	}
	total := Count(c)
	if err := walk(c, make([]int, len(c.Sites)), 0, Generated(total, limit), fn); err != nil {
		return total, err
	}
	return total, nil
}

// preallocCap bounds the capacity Enumerate reserves up front; a large limit
// is a ceiling, not a size hint.
const preallocCap = 1024

// Enumerate returns the first min(limit, Count(c)) proteoforms in order,
// together with the true total. Callers that write the proteoforms out should
// use Each instead.
func Enumerate(c *model.SiteCatalog, limit int) ([]model.ProteoformAssignment, *big.Int, error) {
	if err := Validate(c, limit); err != nil {
		return nil, nil, err
	}
	out := make([]model.ProteoformAssignment, 0, min(Generated(Count(c), limit), preallocCap))
	total, err := Each(c, limit, func(p model.ProteoformAssignment) error {
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, total, nil
}

// Range calls fn for the proteoforms with 0-based indices in [lo, hi), in
// order. It lets one very large protein be split across workers: disjoint
// ranges yield disjoint proteoforms and together the same sequence as Each.
func Range(c *model.SiteCatalog, lo, hi int, fn func(model.ProteoformAssignment) error) error {
	if err := Validate(c, 1); err != nil {
		return err
	}
	if lo < 0 || hi < lo {
		return model.Usagef("invalid range [%d, %d)", lo, hi)
	}
	hi = Generated(Count(c), hi)
	if lo >= hi {
		return nil
	}
	digits, err := digitsOf(c, big.NewInt(int64(lo)))
	if err != nil {
		return err
	}
	return walk(c, digits, lo, hi, fn)
}

// Decode maps a 0-based index directly to its site assignments.
// n must satisfy 0 <= n < Count(c).
func Decode(c *model.SiteCatalog, n *big.Int) ([]model.SiteAssignment, error) {
	if err := Validate(c, 1); err != nil {
		return nil, err
	}
	digits, err := digitsOf(c, n)
	if err != nil {
		return nil, err
	}
	return assign(c, digits), nil
}

// At returns the proteoform with the given 0-based index.
func At(c *model.SiteCatalog, n int) (model.ProteoformAssignment, error) {
	sites, err := Decode(c, big.NewInt(int64(n)))
	if err != nil {
		return model.ProteoformAssignment{}, err
	}
	return model.ProteoformAssignment{ProteinID: c.ProteinID, Index: n + 1, Sites: sites}, nil
}

// Summarize reports the combinatorial size of the catalog for the given limit.
func Summarize(c *model.SiteCatalog, limit int) (model.ProteinCombinationSummary, error) {
	if err := Validate(c, limit); err != nil {
		return model.ProteinCombinationSummary{}, err
	}
	total := Count(c)
	return model.ProteinCombinationSummary{
		ProteinID:            c.ProteinID,
		TotalSites:           len(c.Sites),
		TotalDistinctGlycans: c.DistinctGlycans(),
		TrueTotal:            total,
		GeneratedCount:       Generated(total, limit),
	}, nil
}

// walk emits indices [from, to) starting from digits, which must encode from.
func walk(c *model.SiteCatalog, digits []int, from, to int, fn func(model.ProteoformAssignment) error) error {
	for n := from; n < to; n++ {
		if n > from {
			advance(c, digits)
		}
		p := model.ProteoformAssignment{
			ProteinID: c.ProteinID,
			Index:     n + 1,
			Sites:     assign(c, digits),
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// advance increments the mixed-radix number held in digits by one.
func advance(c *model.SiteCatalog, digits []int) {
	for i := len(digits) - 1; i >= 0; i-- {
		digits[i]++
		if digits[i] < c.Sites[i].Options() {
			return
		}
		digits[i] = 0
	}
}

// digitsOf decodes n into per-site option digits.
func digitsOf(c *model.SiteCatalog, n *big.Int) ([]int, error) {
	if n.Sign() < 0 || n.Cmp(Count(c)) >= 0 {
		return nil, model.Usagef("index %s out of range for protein %s", n, c.ProteinID)
	}
	digits := make([]int, len(c.Sites))
	rest := new(big.Int).Set(n)
	k, d := new(big.Int), new(big.Int)
	for i := len(c.Sites) - 1; i >= 0; i-- {
		k.SetInt64(int64(c.Sites[i].Options()))
		rest.QuoRem(rest, k, d)
		digits[i] = int(d.Int64())
	}
	return digits, nil
}

func assign(c *model.SiteCatalog, digits []int) []model.SiteAssignment {
	sites := make([]model.SiteAssignment, len(digits))
	for i, d := range digits {
		sites[i] = model.SiteAssignment{
			SiteID: c.Sites[i].SiteID,
			Glycan: c.Sites[i].Option(d),
		}
	}
	return sites
}
