package vars

// Scope is a priority-ordered stack of variable mappings. Lookups walk
// the layers narrowest-first; a key in a higher-priority layer fully
// shadows the same key below. The underlying maps are never mutated.
type Scope struct {
	layers []map[string]any
}

// Merge builds the scope for one interpolation pass from the four
// variable layers, highest priority last-to-first: step overrides, chain
// context, collection active-environment variables, workspace globals.
// Nil layers are allowed and simply skipped during lookup.
func Merge(global, collectionEnv, chainCtx, overrides map[string]any) *Scope {
	return &Scope{
		layers: []map[string]any{overrides, chainCtx, collectionEnv, global},
	}
}

// NewScope builds a scope from explicit layers, narrowest first.
func NewScope(layers ...map[string]any) *Scope {
	return &Scope{layers: layers}
}

// Lookup returns the value for name from the narrowest layer that
// defines it.
func (s *Scope) Lookup(name string) (any, bool) {
	for _, layer := range s.layers {
		if layer == nil {
			continue
		}
		if v, ok := layer[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Flatten collapses the scope into a single map, narrowest layer
// winning. Used for display only; interpolation goes through Lookup.
func (s *Scope) Flatten() map[string]any {
	result := make(map[string]any)
	for i := len(s.layers) - 1; i >= 0; i-- {
		for k, v := range s.layers[i] {
			result[k] = v
		}
	}
	return result
}
