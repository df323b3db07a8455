package classify

// Registry assigns stable indices to nominal values on first sight: the first
// distinct key gets 0, the next 1, and so on. It grows for the lifetime of one
// run and is never persisted.
//
// Registry is not safe for concurrent use; a run processes items sequentially
// and owns its registry.
type Registry struct {
	index map[string]int
	keys  []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Index returns the index of key, assigning the next free one if key has not
// been seen before.
func (r *Registry) Index(key string) int {
	if i, ok := r.index[key]; ok {
		return i
	}
	i := len(r.keys)
	r.index[key] = i
	r.keys = append(r.keys, key)
	return i
}

// Lookup returns the index of key without assigning one.
func (r *Registry) Lookup(key string) (int, bool) {
	i, ok := r.index[key]
	return i, ok
}

// Len is the number of distinct keys seen.
func (r *Registry) Len() int { return len(r.keys) }

// Keys returns the keys in index order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}
