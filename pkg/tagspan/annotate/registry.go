package annotate

import "strings"

// Kind describes a registered entity type
type Kind struct {
	Name  string
	Label string // human readable name
}

// DefaultKinds are the types a CoNLL-style classifier emits
var DefaultKinds = []Kind{
	{Name: "PERSON", Label: "Person"},
	{Name: "ORGANIZATION", Label: "Organization"},
	{Name: "LOCATION", Label: "Location"},
	{Name: "MISC", Label: "Miscellaneous"},
}

// Registry maps type names to kinds. Lookups of unknown names do not fail.
type Registry struct {
	kinds map[string]Kind
}

// NewRegistry creates a registry holding the given kinds
func NewRegistry(kinds ...Kind) *Registry {
	r := &Registry{kinds: make(map[string]Kind, len(kinds))}
	for _, k := range kinds {
		r.Add(k)
	}
	return r
}

// Add registers a kind, replacing any previous kind of the same name
func (r *Registry) Add(k Kind) {
	if strings.TrimSpace(k.Name) == "" {
		return
	}
	if k.Label == "" {
		k.Label = k.Name
	}
	r.kinds[k.Name] = k
}

// Lookup returns the kind for name. Unknown names get a generic kind
// carrying the name unchanged and ok=false.
func (r *Registry) Lookup(name string) (Kind, bool) {
	if k, ok := r.kinds[name]; ok {
		return k, true
	}
	return Kind{Name: name, Label: name}, false
}

// Len returns the number of registered kinds
func (r *Registry) Len() int {
	return len(r.kinds)
}
