package jobs

import (
	"context"
	"fmt"
	"sync"
)

// Handler is one named scheduled process. Run executes a single bounded
// pipeline run and returns the number of rows processed; the scheduler owns
// timing, retries and backoff.
type Handler interface {
	Proceso() string
	Schedule() string
	Run(ctx context.Context) (int, error)
}

type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return fmt.Errorf("nil handler")
	}
	p := h.Proceso()
	if p == "" {
		return fmt.Errorf("handler Proceso() is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[p]; exists {
		return fmt.Errorf("handler already registered for proceso=%s", p)
	}
	r.handlers[p] = h
	return nil
}

func (r *Registry) Get(proceso string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[proceso]
	return h, ok
}

func (r *Registry) All() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handler, 0, len(r.handlers))
	for _, h := range r.handlers {
		out = append(out, h)
	}
	return out
}
