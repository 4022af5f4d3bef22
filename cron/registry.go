package cron

import (
	"context"
	"sort"
	"sync"

	"gorm.io/gorm"

	"warehouse.GO/core/registry"
)

// RunFunc is the body of a scheduled job.
type RunFunc func(ctx context.Context, db *gorm.DB) error

// Job holds schedule and run function.
type Job struct {
	Name     string
	Schedule string
	Run      RunFunc
}

var mu sync.Mutex

// Register adds a cron job. Call from init() in job packages. Panics if registry is locked.
func Register(name string, schedule string, run RunFunc) {
	mu.Lock()
	defer mu.Unlock()
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCron) {
		panic("cron/registry: locked (register only during init before Start)")
	}
	jobs := getJobs()
	if _, ok := jobs[name]; ok {
		panic("cron/registry: duplicate job " + name)
	}
	jobs[name] = Job{Name: name, Schedule: schedule, Run: run}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCron, jobs)
}

// Unregister removes a job (for tests).
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	registry.GlobalRegistry.UnlockForTesting(registry.KeyRegistryCron)
	jobs := getJobs()
	delete(jobs, name)
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCron, jobs)
}

func getJobs() map[string]Job {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCron); ok && v != nil {
		return v.(map[string]Job)
	}
	return make(map[string]Job)
}

// Jobs returns all registered jobs sorted by name.
// Locks the cron registry on first call (immutable after).
func Jobs() []Job {
	mu.Lock()
	defer mu.Unlock()
	jobs := getJobs()
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	if !registry.GlobalRegistry.IsLocked(registry.KeyRegistryCron) {
		registry.GlobalRegistry.Lock(registry.KeyRegistryCron)
	}
	return out
}

// Lookup returns the job registered under name.
func Lookup(name string) (Job, bool) {
	for _, j := range Jobs() {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}
