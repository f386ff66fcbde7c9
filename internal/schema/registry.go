package schema

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Variant)
	registryMu sync.RWMutex
)

// Register adds a schema variant to the registry.
// Panics if a variant with the same key is already registered.
func Register(v Variant) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[v.Key]; exists {
		panic(fmt.Sprintf("schema variant already registered: %s", v.Key))
	}
	registry[v.Key] = v
}

// Get returns a variant by key.
func Get(key string) (Variant, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	v, ok := registry[key]
	return v, ok
}

// All returns every registered variant, highest priority first.
// Ties are ordered by key for stable resolution.
func All() []Variant {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Variant, 0, len(registry))
	for _, v := range registry {
		result = append(result, v)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// legacy returns the variant used for per-role fallback, if any.
func legacy() (Variant, bool) {
	for _, v := range All() {
		if v.Legacy {
			return v, true
		}
	}
	return Variant{}, false
}
