package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"
)

const DefaultInterval = 30 * time.Second

type entry struct {
	task Task
	stop chan struct{}
	once sync.Once
}

func (e *entry) close() {
	e.once.Do(func() {
		close(e.stop)
	})
}

func (e *entry) stopped() bool {
	select {
	case <-e.stop:
		return true
	default:
		return false
	}
}

// Scheduler 每个 key 一个独立的定时循环, 同一个 key 的任务串行执行.
// Remove 之后不会再启动新的执行, 正在执行的任务会正常完成.
type Scheduler struct {
	interval  time.Duration
	immediate bool

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	entries map[string]*entry
	wg      sync.WaitGroup
}

type Option func(s *Scheduler)

// WithImmediate runs a task once as soon as it is added.
func WithImmediate(immediate bool) Option {
	return func(s *Scheduler) {
		s.immediate = immediate
	}
}

func New(interval time.Duration, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add schedules task under key, replacing any task already scheduled under it.
func (s *Scheduler) Add(key string, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}
	if old, ok := s.entries[key]; ok {
		old.close()
	}
	e := &entry{task: task, stop: make(chan struct{})}
	s.entries[key] = e

	s.wg.Add(1)
	go s.loop(e)
}

// Remove stops scheduling the task under key. It reports whether a task was scheduled.
func (s *Scheduler) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	e.close()
	delete(s.entries, key)
	return true
}

func (s *Scheduler) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	keys := lo.Keys(s.entries)
	s.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// Stop cancels every task and waits for the loops to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for key, e := range s.entries {
		e.close()
		delete(s.entries, key)
	}
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) loop(e *entry) {
	defer s.wg.Done()

	if s.immediate {
		s.run(e)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-e.stop:
			return
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(e)
		}
	}
}

func (s *Scheduler) run(e *entry) {
	// ticker 和 stop 同时就绪时 select 是随机的, 这里再确认一次
	if e.stopped() || s.ctx.Err() != nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scheduled task panic", "task", e.task.Name(), "panic", fmt.Sprint(r))
		}
	}()
	if err := e.task.Run(s.ctx); err != nil {
		slog.Error("scheduled task failed", "task", e.task.Name(), "error", err)
	}
}
