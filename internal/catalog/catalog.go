// Package catalog groups raw (protein, site, glycan) observations into one
// SiteCatalog per protein.
package catalog

import (
	"github.com/StinkyLord/glycoproteoform-builder/internal/model"
)

// Set is the immutable outcome of a build: the valid catalogs in first-seen
// protein order, plus every data-format error found on the way.
type Set struct {
	catalogs []*model.SiteCatalog
	byID     map[string]*model.SiteCatalog
	errors   []*model.DataFormatError
}

// Catalogs returns the valid catalogs in first-seen protein order.
// Callers must not modify the returned catalogs.
func (s *Set) Catalogs() []*model.SiteCatalog {
	out := make([]*model.SiteCatalog, len(s.catalogs))
	copy(out, s.catalogs)
	return out
}

// Get returns the catalog for a protein, or nil when the protein is unknown
// or its catalog was rejected.
func (s *Set) Get(proteinID string) *model.SiteCatalog {
	return s.byID[proteinID]
}

// Len returns the number of valid catalogs.
func (s *Set) Len() int { return len(s.catalogs) }

// Errors returns the data-format errors in input order. At most one error is
// kept per protein; rows without a protein id each get their own entry.
func (s *Set) Errors() []*model.DataFormatError {
	out := make([]*model.DataFormatError, len(s.errors))
	copy(out, s.errors)
	return out
}

// siteAcc accumulates the glycans of one site while building.
type siteAcc struct {
	id      string
	glycans []string
	seen    map[string]bool
}

// proteinAcc accumulates the sites of one protein while building.
type proteinAcc struct {
	id     string
	sites  []*siteAcc
	byID   map[string]*siteAcc
	failed bool
}

// Builder accumulates observations. The zero value is not usable; call
// NewBuilder. A Builder is not safe for concurrent use.
type Builder struct {
	order    []*proteinAcc
	proteins map[string]*proteinAcc
	errors   []*model.DataFormatError
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{proteins: make(map[string]*proteinAcc)}
}

// Add records one observation. Incomplete observations are recorded as
// data-format errors and poison the protein they belong to.
func (b *Builder) Add(obs model.Observation) {
	if field := obs.MissingField(); field != "" {
		b.reject(obs, field)
		return
	}

	p := b.protein(obs.ProteinID)
	if p.failed {
		return
	}

	s, ok := p.byID[obs.SiteID]
	if !ok {
		s = &siteAcc{id: obs.SiteID, seen: make(map[string]bool)}
		p.byID[obs.SiteID] = s
		p.sites = append(p.sites, s)
	}
	if !s.seen[obs.GlycanID] {
		s.seen[obs.GlycanID] = true
		s.glycans = append(s.glycans, obs.GlycanID)
	}
}

// Build freezes the accumulated observations into a Set. The Builder can
// keep accepting observations afterwards; later Builds see them too.
func (b *Builder) Build() *Set {
	set := &Set{
		byID:   make(map[string]*model.SiteCatalog, len(b.order)),
		errors: append([]*model.DataFormatError(nil), b.errors...),
	}
	for _, p := range b.order {
		if p.failed {
			continue
		}
		c := &model.SiteCatalog{
			ProteinID: p.id,
			Sites:     make([]model.GlycositeOption, 0, len(p.sites)),
		}
		for _, s := range p.sites {
			c.Sites = append(c.Sites, model.GlycositeOption{
				SiteID:  s.id,
				Glycans: append([]string(nil), s.glycans...),
			})
		}
		set.catalogs = append(set.catalogs, c)
		set.byID[c.ProteinID] = c
	}
	return set
}

// Build is a convenience wrapper that adds every observation and builds.
func Build(observations []model.Observation) *Set {
	b := NewBuilder()
	for _, o := range observations {
		b.Add(o)
	}
	return b.Build()
}

// FromCatalogs wraps catalogs that were assembled elsewhere. Later entries
// with a repeated protein id are ignored.
func FromCatalogs(cats ...*model.SiteCatalog) *Set {
	set := &Set{byID: make(map[string]*model.SiteCatalog, len(cats))}
	for _, c := range cats {
		if _, dup := set.byID[c.ProteinID]; dup {
			continue
		}
		set.catalogs = append(set.catalogs, c)
		set.byID[c.ProteinID] = c
	}
	return set
}

// protein returns the accumulator for id, creating it in first-seen order.
func (b *Builder) protein(id string) *proteinAcc {
	p, ok := b.proteins[id]
	if !ok {
		p = &proteinAcc{id: id, byID: make(map[string]*siteAcc)}
		b.proteins[id] = p
		b.order = append(b.order, p)
	}
	return p
}

func (b *Builder) reject(obs model.Observation, field string) {
	err := &model.DataFormatError{Row: obs.Row, ProteinID: obs.ProteinID, Field: field}
	if obs.ProteinID == "" {
		b.errors = append(b.errors, err)
		return
	}
	p := b.protein(obs.ProteinID)
	if p.failed {
		return
	}
	p.failed = true
	b.errors = append(b.errors, err)
}
