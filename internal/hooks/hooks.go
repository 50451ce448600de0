// Package hooks provides the ordered callback table deploy pipelines
// trigger on lifecycle events.
package hooks

import (
	"context"
	"fmt"
	"sort"

	"github.com/deploygun/deploygun/internal/logger"
)

// Standard lifecycle events.
const (
	DeployStarting = "deploy:starting"
	DeployFinished = "deploy:finished"
)

// Func is one hook callback.
type Func func(ctx context.Context) error

type hook struct {
	name string
	fn   Func
}

// Registry maps lifecycle events to ordered hook chains. Hooks run in
// registration order; the first failure stops the chain, the way a failing
// task aborts a deploy run.
type Registry struct {
	log   *logger.Logger
	hooks map[string][]hook
}

// NewRegistry creates an empty Registry.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		log:   log.WithComponent("hooks"),
		hooks: make(map[string][]hook),
	}
}

// Register appends a named hook to an event's chain.
func (r *Registry) Register(event, name string, fn Func) {
	r.hooks[event] = append(r.hooks[event], hook{name: name, fn: fn})
}

// Run executes the hooks registered for event in order. An event with no
// hooks is a no-op. The first hook error aborts the remainder and is
// returned wrapped with the event and hook name.
func (r *Registry) Run(ctx context.Context, event string) error {
	chain := r.hooks[event]
	if len(chain) == 0 {
		r.log.Debug().Str("event", event).Msg("no hooks registered")
		return nil
	}

	for _, h := range chain {
		r.log.Debug().Str("event", event).Str("hook", h.name).Msg("running hook")
		if err := h.fn(ctx); err != nil {
			return fmt.Errorf("hook %s for %s failed: %w", h.name, event, err)
		}
	}

	return nil
}

// Events lists the events that have at least one registered hook, sorted.
func (r *Registry) Events() []string {
	events := make([]string, 0, len(r.hooks))
	for e := range r.hooks {
		events = append(events, e)
	}
	sort.Strings(events)
	return events
}
