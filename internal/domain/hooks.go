// Package domain holds pieces shared by the domain services.
package domain

import (
	"context"
	"sync"
)

// HookEvent is a lifecycle point of a domain entity.
type HookEvent string

const (
	BeforeCreate      HookEvent = "before_create"
	AfterCreate       HookEvent = "after_create"
	AfterUpdate       HookEvent = "after_update"
	AfterStatusChange HookEvent = "after_status_change"
	AfterDelete       HookEvent = "after_delete"
)

// Hook runs at a lifecycle point.
type Hook[T any] func(ctx context.Context, entity T) error

// HookRegistry stores lifecycle hooks for an entity type.
type HookRegistry[T any] struct {
	mu    sync.RWMutex
	hooks map[HookEvent][]Hook[T]
}

// NewHookRegistry creates an empty hook registry.
func NewHookRegistry[T any]() *HookRegistry[T] {
	return &HookRegistry[T]{
		hooks: make(map[HookEvent][]Hook[T]),
	}
}

// On registers a hook for event.
func (r *HookRegistry[T]) On(event HookEvent, hook Hook[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[event] = append(r.hooks[event], hook)
}

// Run executes the hooks of event in registration order, stopping at the
// first error.
func (r *HookRegistry[T]) Run(ctx context.Context, event HookEvent, entity T) error {
	r.mu.RLock()
	hooks := r.hooks[event]
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, entity); err != nil {
			return err
		}
	}
	return nil
}
