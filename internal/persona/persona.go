package persona

import (
	"fmt"
	"sort"
)

// DocumentSearch declares a document-search capability scoped to one vector
// store collection. It is opaque to the dispatch core and forwarded to the
// model service as-is.
type DocumentSearch struct {
	MaxResults    int
	VectorStoreID string
}

// Persona is one named behavioral configuration: an instruction prompt, a
// routing description consumed by the model service when deciding handoffs,
// and the set of personas this one is allowed to hand a conversation to.
// Personas are immutable after catalog construction.
type Persona struct {
	ID                 string
	SystemPrompt       string
	RoutingDescription string
	HandoffTargets     []string
	Search             *DocumentSearch
}

// HasTarget reports whether id is in the persona's handoff set.
func (p *Persona) HasTarget(id string) bool {
	for _, t := range p.HandoffTargets {
		if t == id {
			return true
		}
	}
	return false
}

// Catalog holds the full persona set for the clinic: the triage entry point
// plus every specialist. Built once at startup and read-only afterwards.
type Catalog struct {
	personas map[string]*Persona
	order    []string
}

// Options controls catalog construction. When Search is non-nil every
// persona carries the document-search capability; otherwise none do.
type Options struct {
	Search *DocumentSearch
}

// NewCatalog builds the catalog from the static persona table and validates
// the handoff graph.
func NewCatalog(opts Options) (*Catalog, error) {
	c := &Catalog{personas: make(map[string]*Persona, len(definitions))}
	for _, def := range definitions {
		p := &Persona{
			ID:                 def.id,
			SystemPrompt:       def.prompt,
			RoutingDescription: def.routing,
			HandoffTargets:     append([]string(nil), def.handoffs...),
		}
		if opts.Search != nil {
			s := *opts.Search
			p.Search = &s
		}
		if _, dup := c.personas[p.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %q", p.ID)
		}
		c.personas[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate enforces the handoff-graph invariants: every edge points at a
// known persona, every specialist can hand back to the front desk, and the
// triage persona can reach every other persona.
func (c *Catalog) validate() error {
	triage, ok := c.personas[Triage]
	if !ok {
		return fmt.Errorf("catalog has no triage persona")
	}
	if _, ok := c.personas[FrontDesk]; !ok {
		return fmt.Errorf("catalog has no front desk persona")
	}

	for _, p := range c.personas {
		for _, target := range p.HandoffTargets {
			if _, ok := c.personas[target]; !ok {
				return fmt.Errorf("persona %q hands off to unknown persona %q", p.ID, target)
			}
		}
		if p.ID == Triage || p.ID == FrontDesk {
			continue
		}
		if !p.HasTarget(FrontDesk) {
			return fmt.Errorf("specialist %q cannot hand back to the front desk", p.ID)
		}
	}

	for _, id := range c.order {
		if id == Triage {
			continue
		}
		if !triage.HasTarget(id) {
			return fmt.Errorf("triage persona cannot reach %q", id)
		}
	}
	if len(triage.HandoffTargets) != len(c.order)-1 {
		return fmt.Errorf("triage handoff set has %d entries, want %d", len(triage.HandoffTargets), len(c.order)-1)
	}
	return nil
}

// Get returns the persona with the given id.
func (c *Catalog) Get(id string) (*Persona, bool) {
	p, ok := c.personas[id]
	return p, ok
}

// TriagePersona returns the entry-point persona.
func (c *Catalog) TriagePersona() *Persona {
	return c.personas[Triage]
}

// Specialists returns every persona except triage, in declaration order.
func (c *Catalog) Specialists() []*Persona {
	out := make([]*Persona, 0, len(c.order)-1)
	for _, id := range c.order {
		if id == Triage {
			continue
		}
		out = append(out, c.personas[id])
	}
	return out
}

// IDs returns every persona id, sorted.
func (c *Catalog) IDs() []string {
	ids := append([]string(nil), c.order...)
	sort.Strings(ids)
	return ids
}

// Len returns the number of personas in the catalog.
func (c *Catalog) Len() int {
	return len(c.personas)
}
