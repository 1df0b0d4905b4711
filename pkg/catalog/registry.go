package catalog

// BuiltinDefinitions returns the catalogs compiled into the binary.
// The table identifiers are the VizieR designations of the surveys the
// imaging pipeline cross-matches against. The slice is freshly
// allocated on each call, so callers may append to it safely.
func BuiltinDefinitions() []Definition {
	return []Definition{
		{
			ID:          "nvss",
			Name:        "NVSS",
			Table:       "VIII/65/nvss",
			Color:       "#4dabf7",
			Symbol:      "circle",
			Description: "NRAO VLA Sky Survey, 1.4 GHz continuum",
		},
		{
			ID:          "first",
			Name:        "FIRST",
			Table:       "VIII/92/first14",
			Color:       "#ff922b",
			Symbol:      "square",
			Description: "Faint Images of the Radio Sky at Twenty-cm, 2014 release",
		},
		{
			ID:          "vlass",
			Name:        "VLASS",
			Table:       "J/ApJS/255/30/comp",
			Color:       "#51cf66",
			Symbol:      "diamond",
			Description: "VLA Sky Survey quick-look component catalog, 3 GHz",
		},
		{
			ID:          "racs",
			Name:        "RACS-low",
			Table:       "J/other/PASA/38.58/gausscut",
			Color:       "#cc5de8",
			Symbol:      "triangle",
			Description: "Rapid ASKAP Continuum Survey, 888 MHz",
		},
		{
			ID:          "tgss",
			Name:        "TGSS ADR1",
			Table:       "J/A+A/598/A78/table3",
			Color:       "#f06595",
			Symbol:      "cross",
			Description: "TIFR GMRT Sky Survey alternative data release, 150 MHz",
		},
		{
			ID:          "wise",
			Name:        "AllWISE",
			Table:       "II/328/allwise",
			RAColumn:    "RAJ2000",
			DecColumn:   "DEJ2000",
			Color:       "#fcc419",
			Symbol:      "star",
			Description: "AllWISE infrared source catalog",
		},
	}
}

// Registry is an immutable, ordered collection of catalog definitions
// with ID lookup.
type Registry struct {
	defs  []Definition
	byID  map[string]Definition
}

// NewRegistry builds a registry from defs. Later definitions with a
// duplicate ID replace earlier ones, which is how config-file entries
// override built-ins.
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{byID: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, seen := r.byID[d.ID]; seen {
			for i := range r.defs {
				if r.defs[i].ID == d.ID {
					r.defs[i] = d
					break
				}
			}
		} else {
			r.defs = append(r.defs, d)
		}
		r.byID[d.ID] = d
	}
	return r
}

// DefaultRegistry returns a registry holding only the built-in catalogs.
func DefaultRegistry() *Registry {
	return NewRegistry(BuiltinDefinitions())
}

// All returns the definitions in registration order. The returned slice
// is a copy.
func (r *Registry) All() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id string) (Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Len returns the number of registered catalogs.
func (r *Registry) Len() int { return len(r.defs) }
