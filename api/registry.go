package api

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/core/registry"
)

// ModuleFunc mounts a resource module on the authenticated /api group.
type ModuleFunc func(g *echo.Group, db *gorm.DB)

// RouteFunc mounts public routes on the root echo instance (health, graphql, version).
type RouteFunc func(e *echo.Echo, db *gorm.DB)

// RegisterModule adds an /api module. Call from init() in api packages.
func RegisterModule(fn ModuleFunc) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryAPI) {
		panic("api/registry: modules locked (register only during init)")
	}
	registry.Append(registry.GlobalRegistry, registry.KeyRegistryAPI, fn)
}

// RegisterRoute adds a root-level route module. Call from init().
func RegisterRoute(fn RouteFunc) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryRoutes) {
		panic("api/registry: routes locked (register only during init)")
	}
	registry.Append(registry.GlobalRegistry, registry.KeyRegistryRoutes, fn)
}

// RegisterGET mounts a single public GET handler.
func RegisterGET(path string, handler echo.HandlerFunc) {
	RegisterRoute(func(e *echo.Echo, _ *gorm.DB) {
		e.GET(path, handler)
	})
}

// ApplyModules mounts every /api module on g and locks the registry.
// It may run for several echo instances (server and tests).
func ApplyModules(g *echo.Group, db *gorm.DB) {
	registry.GlobalRegistry.Lock(registry.KeyRegistryAPI)
	for _, fn := range registry.List[ModuleFunc](registry.GlobalRegistry, registry.KeyRegistryAPI) {
		fn(g, db)
	}
}

// ApplyRoutes mounts every root-level route on e and locks the registry.
func ApplyRoutes(e *echo.Echo, db *gorm.DB) {
	registry.GlobalRegistry.Lock(registry.KeyRegistryRoutes)
	for _, fn := range registry.List[RouteFunc](registry.GlobalRegistry, registry.KeyRegistryRoutes) {
		fn(e, db)
	}
}
