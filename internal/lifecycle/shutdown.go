// Package lifecycle tears the daemon down in order: hooks registered by
// main (HTTP server, worker, scheduler, database, redis) run in parallel
// under one deadline when the process receives a stop signal.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Shutdown collects named hooks and executes them concurrently.
type Shutdown struct {
	mu    sync.Mutex
	hooks []Hook
	log   *slog.Logger
}

func NewShutdown(log *slog.Logger) *Shutdown {
	if log == nil {
		log = slog.Default()
	}

	return &Shutdown{log: log}
}

// Register adds a named hook. Nil functions are ignored.
func (s *Shutdown) Register(name string, fn func(context.Context) error) {
	if fn == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks = append(s.hooks, Hook{Name: name, Fn: fn})
}

// Execute runs every registered hook in parallel and waits for all of them.
// A hook failure never stops the others; the combined error is returned
// once the whole sequence has finished.
func (s *Shutdown) Execute(ctx context.Context) error {
	s.mu.Lock()
	hooks := append([]Hook(nil), s.hooks...)
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("shutdown sequence started", slog.Int("hooks", len(hooks)))

	var wg sync.WaitGroup
	failures := make([]error, len(hooks))

	for i, hook := range hooks {
		wg.Add(1)
		go func(i int, h Hook) {
			defer wg.Done()
			failures[i] = s.runHook(ctx, h)
		}(i, hook)
	}

	wg.Wait()
	s.log.Info("shutdown sequence finished", slog.Duration("elapsed", time.Since(start)))

	return errors.Join(failures...)
}

func (s *Shutdown) runHook(ctx context.Context, h Hook) error {
	s.log.Info("running shutdown hook", slog.String("hook", h.Name))

	if err := h.Fn(ctx); err != nil {
		s.log.Error("shutdown hook failed", slog.String("hook", h.Name), slog.Any("error", err))
		return fmt.Errorf("%s: %w", h.Name, err)
	}

	s.log.Info("shutdown hook completed", slog.String("hook", h.Name))
	return nil
}
