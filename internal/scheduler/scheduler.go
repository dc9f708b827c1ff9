// Package scheduler runs delayed one-shot tasks that can be cancelled
// individually, per group, or all at once on shutdown.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type taskKey struct{ group, key string }

type task struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

type Scheduler struct {
	mu     sync.Mutex
	ctx    context.Context
	stop   context.CancelFunc
	tasks  map[taskKey]*task
	wg     sync.WaitGroup
	log    *zap.Logger
	closed bool
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, stop: stop, tasks: map[taskKey]*task{}, log: log}
}

// Schedule runs fn after delay. Scheduling the same group/key again replaces
// the pending task. fn receives a context cancelled by Cancel, CancelGroup or Close.
func (s *Scheduler) Schedule(group, key string, delay time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	k := taskKey{group, key}
	if old, ok := s.tasks[k]; ok {
		s.cancelLocked(k, old)
	}

	ctx, cancel := context.WithCancel(s.ctx)
	t := &task{cancel: cancel}
	s.wg.Add(1)
	t.timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.mu.Lock()
		cur, ok := s.tasks[k]
		if ok && cur == t {
			delete(s.tasks, k)
		}
		s.mu.Unlock()
		if !ok || cur != t || ctx.Err() != nil {
			return
		}
		defer cancel()
		fn(ctx)
	})
	s.tasks[k] = t
}

// Cancel drops a pending task; it reports whether one was pending.
func (s *Scheduler) Cancel(group, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := taskKey{group, key}
	t, ok := s.tasks[k]
	if ok {
		s.cancelLocked(k, t)
	}
	return ok
}

// CancelGroup drops every pending task of group and returns how many were dropped.
func (s *Scheduler) CancelGroup(group string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, t := range s.tasks {
		if k.group == group {
			s.cancelLocked(k, t)
			n++
		}
	}
	if n > 0 {
		s.log.Debug("scheduler: group cancelled", zap.String("group", group), zap.Int("tasks", n))
	}
	return n
}

// Pending reports how many tasks are waiting to fire.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Close cancels all pending tasks and waits for running ones to return.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for k, t := range s.tasks {
		s.cancelLocked(k, t)
	}
	s.stop()
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Scheduler) cancelLocked(k taskKey, t *task) {
	if t.timer.Stop() {
		// the timer func will never run, so release its slot here
		s.wg.Done()
	}
	t.cancel()
	delete(s.tasks, k)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
