package registry

import "sync"

// Registry is a process-wide key/value store with per-key write locks.
// Extension points (api modules, cmd, cron) collect registrations here during init()
// and lock their key once applied.
type Registry struct {
	mu     sync.RWMutex
	values map[string]interface{}
	locked map[string]bool
}

// GlobalRegistry is shared by all extension registries.
var GlobalRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		values: make(map[string]interface{}),
		locked: make(map[string]bool),
	}
}

func (r *Registry) GetGlobal(key string) (interface{}, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok
}

// SetGlobal stores a value. Panics if key is locked.
func (r *Registry) SetGlobal(key string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked[key] {
		panic("registry: key " + key + " is locked")
	}
	r.values[key] = value
}

func (r *Registry) Lock(key string) {
	r.mu.Lock()
	r.locked[key] = true
	r.mu.Unlock()
}

func (r *Registry) IsLocked(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.locked[key]
}

// UnlockForTesting reopens a locked key. Tests only.
func (r *Registry) UnlockForTesting(key string) {
	r.mu.Lock()
	delete(r.locked, key)
	r.mu.Unlock()
}

// Append adds item to the slice stored under key. Panics if key is locked.
func Append[T any](r *Registry, key string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locked[key] {
		panic("registry: key " + key + " is locked")
	}
	list, _ := r.values[key].([]T)
	r.values[key] = append(list, item)
}

// List returns a copy of the slice stored under key.
func List[T any](r *Registry, key string) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list, _ := r.values[key].([]T)
	return append([]T(nil), list...)
}
