// Package model defines the internal data structures used by the proteoform engine.
package model

import "strconv"

// UnoccupiedLabel is how an empty site is rendered in text output.
const UnoccupiedLabel = "None"

// Glycan is the choice made at one site: either a specific glycan is
// attached (Occupied) or the site is left empty (Unoccupied).
//
// The zero value is Unoccupied.
type Glycan struct {
	id       string
	occupied bool
}

// Unoccupied is the implicit "no glycan attached" option present at every site.
var Unoccupied = Glycan{}

// Occupied returns the option carrying the given glycan identifier.
func Occupied(id string) Glycan {
	return Glycan{id: id, occupied: true}
}

// IsOccupied reports whether a glycan is attached.
func (g Glycan) IsOccupied() bool { return g.occupied }

// ID returns the glycan identifier, or "" for Unoccupied.
func (g Glycan) ID() string { return g.id }

// String renders the option the way output files expect it.
func (g Glycan) String() string {
	if !g.occupied {
		return UnoccupiedLabel
	}
	return g.id
}

// GlycositeOption is the set of glycans observed at one site.
// Glycans is ordered (first seen first), free of duplicates, and never holds
// the Unoccupied sentinel: that option is implied.
type GlycositeOption struct {
	SiteID  string
	Glycans []string
}

// Options returns the number of choices at the site, Unoccupied included.
func (o GlycositeOption) Options() int {
	return len(o.Glycans) + 1
}

// Option returns choice d at the site. Option 0 is Unoccupied; option d > 0
// is Glycans[d-1]. It panics when d is out of range.
func (o GlycositeOption) Option(d int) Glycan {
	if d == 0 {
		return Unoccupied
	}
	return Occupied(o.Glycans[d-1])
}

// SiteCatalog is the ordered list of glycosylation sites of a single protein.
// It is built once and not mutated afterwards.
type SiteCatalog struct {
	ProteinID string
	Sites     []GlycositeOption
}

// DistinctGlycans counts glycan identifiers across all sites, each once.
func (c *SiteCatalog) DistinctGlycans() int {
	seen := make(map[string]struct{})
	for _, s := range c.Sites {
		for _, g := range s.Glycans {
			seen[g] = struct{}{}
		}
	}
	return len(seen)
}

// Observation is one raw (protein, site, glycan) triple read from the input,
// with the 1-based data row it came from.
type Observation struct {
	Row       int
	ProteinID string
	SiteID    string
	GlycanID  string
}

// MissingField returns the name of the first empty field, or "" when the
// observation is complete.
func (o Observation) MissingField() string {
	switch {
	case o.ProteinID == "":
		return "protein"
	case o.SiteID == "":
		return "glycosylation_site"
	case o.GlycanID == "":
		return "glycan"
	}
	return ""
}

// SiteAssignment is the option chosen at one site in a proteoform.
type SiteAssignment struct {
	SiteID string
	Glycan Glycan
}

// String renders the pair as "<site>-<glycan>".
func (a SiteAssignment) String() string {
	return a.SiteID + "-" + a.Glycan.String()
}

// ProteoformAssignment is one generated proteoform. Sites follow the order of
// the protein's SiteCatalog; Index is 1-based generation order.
type ProteoformAssignment struct {
	ProteinID string
	Index     int
	Sites     []SiteAssignment
}

// ID returns the external proteoform identifier, e.g. "O00754-1_PF_3".
func (p ProteoformAssignment) ID() string {
	return p.ProteinID + "_PF_" + strconv.Itoa(p.Index)
}
