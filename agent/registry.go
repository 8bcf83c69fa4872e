package agent

import "sync"

// Registry is the process-wide catalog of tools, keyed by name with a
// derived index from scope name to the tools carrying that scope. It is
// populated at startup and read-only thereafter; reads are safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	scopes map[string][]Tool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:  make(map[string]Tool),
		scopes: make(map[string][]Tool),
	}
}

// Register inserts a tool into the name index and appends it to every
// scope bucket it declares. Registering a second tool with an existing
// name fails with DuplicateToolError and leaves the first intact.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name]; exists {
		return &DuplicateToolError{Name: t.Name}
	}
	r.tools[t.Name] = t
	for _, scope := range t.Scopes {
		r.scopes[scope] = append(r.scopes[scope], t)
	}
	return nil
}

// Lookup resolves a tool by its canonical key (the tool name). ToolCall
// and ToolResult values convert to that key via their Key method.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, &NotFoundError{Key: name}
	}
	return t, nil
}

// Contains reports whether a tool with the given name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

// List expands each selector to tools: a scope name expands to that
// scope's bucket, a tool name to that single tool. With no selectors it
// returns every registered tool. Results are deduplicated by name; order
// is not guaranteed. An unknown selector fails with NotFoundError.
func (r *Registry) List(selectors ...string) ([]Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(selectors) == 0 {
		all := make([]Tool, 0, len(r.tools))
		for _, t := range r.tools {
			all = append(all, t)
		}
		return all, nil
	}

	seen := make(map[string]bool)
	var out []Tool
	add := func(t Tool) {
		if !seen[t.Name] {
			seen[t.Name] = true
			out = append(out, t)
		}
	}
	for _, sel := range selectors {
		if bucket, ok := r.scopes[sel]; ok {
			for _, t := range bucket {
				add(t)
			}
			continue
		}
		t, ok := r.tools[sel]
		if !ok {
			return nil, &NotFoundError{Key: sel}
		}
		add(t)
	}
	return out, nil
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
