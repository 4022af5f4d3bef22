// Package registry holds the dynamic resolvers served by the _extension query field.
package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"warehouse.GO/core/registry"
)

// ResolverFunc resolves one extension. Args is the JSON-decoded args object.
type ResolverFunc func(ctx context.Context, args map[string]interface{}) (interface{}, error)

var (
	mu       sync.RWMutex
	lockOnce sync.Once
)

func entries() map[string]ResolverFunc {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryGraphQL); ok && v != nil {
		return v.(map[string]ResolverFunc)
	}
	return make(map[string]ResolverFunc)
}

// Register adds a resolver under a unique name. Panics once the first query has been resolved.
func Register(name string, resolve ResolverFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryGraphQL) {
		panic("graphql/registry: locked (register only during init before first request)")
	}
	m := entries()
	if _, ok := m[name]; ok {
		panic("graphql/registry: duplicate " + name)
	}
	m[name] = resolve
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, m)
}

// Unregister removes a registration and reopens the registry. Tests only.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryGraphQL)
	lockOnce = sync.Once{}
	m := entries()
	delete(m, name)
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryGraphQL, m)
}

// Resolve runs the named resolver. The first call locks the registry.
func Resolve(ctx context.Context, name string, args map[string]interface{}) (interface{}, error) {
	lockOnce.Do(func() { registry.GlobalRegistry.Lock(registry.KeyRegistryGraphQL) })
	mu.RLock()
	resolve, ok := entries()[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown extension: %s", name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	out, err := resolve(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Names lists the registered extensions, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	m := entries()
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StringArg returns args[key] trimmed. Missing or non-string values are an error when required.
func StringArg(args map[string]interface{}, key string, required bool) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%s is required", key)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" && required {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

// IntArg returns args[key] as an int, or fallback when absent. JSON numbers arrive as float64.
func IntArg(args map[string]interface{}, key string, fallback int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return fallback, nil
	}
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return int(f), nil
}
