package riotwave

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/world"
)

// DefaultTickRate is the scheduler's tick interval (20 TPS).
const DefaultTickRate = 50 * time.Millisecond

// System is a loop body. Run is called once per matching actor each time the
// loop is due.
type System interface {
	Run(f *Frame, a *Actor)
}

// Scheduler drives loops and timers at a fixed tick rate.
// Ticks are executed inside a world transaction, so loops, timers and
// player handlers of that world never run concurrently.
type Scheduler struct {
	manager *Manager

	loops   [stageCount][]*loopState
	loopsMu sync.RWMutex

	running atomic.Bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	tickRate   time.Duration
	tickNumber atomic.Uint64
}

// loopState tracks the state of a single loop system.
type loopState struct {
	system   System
	name     string
	filter   filter
	interval time.Duration
	nextRun  time.Time
}

// ShouldRun checks if the loop should run at the given time.
func (l *loopState) ShouldRun(now time.Time) bool {
	if l.interval == 0 || l.nextRun.IsZero() {
		return true
	}
	return !now.Before(l.nextRun)
}

// MarkRun schedules the next run.
func (l *loopState) MarkRun(now time.Time) {
	if l.interval == 0 {
		return
	}
	if l.nextRun.IsZero() {
		l.nextRun = now.Add(l.interval)
		return
	}
	// Drift-free timing
	l.nextRun = l.nextRun.Add(l.interval)
	if l.nextRun.Before(now) {
		// Catch up if we're behind
		l.nextRun = now.Add(l.interval)
	}
}

// newScheduler creates a new scheduler.
func newScheduler(manager *Manager, tickRate time.Duration) *Scheduler {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Scheduler{
		manager:  manager,
		tickRate: tickRate,
	}
}

// Start begins ticking against w.
func (s *Scheduler) Start(w *world.World) {
	if s.running.Swap(true) {
		return // Already running
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.tickLoop(w)
}

// Stop stops ticking and waits for the tick goroutine to exit.
func (s *Scheduler) Stop() {
	if !s.running.Swap(false) {
		return // Not running
	}
	close(s.stopCh)
	<-s.doneCh
}

// tickLoop is the main scheduler loop.
func (s *Scheduler) tickLoop(w *world.World) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.tickRate)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			w.Exec(func(tx *world.Tx) {
				s.manager.Tick(now, NewTxEngine(tx))
			})
		}
	}
}

// tick runs every stage, then the timers that are due.
func (s *Scheduler) tick(f *Frame) {
	actors := s.manager.Actors()
	for stage := PreUpdate; stage < stageCount; stage++ {
		s.runStage(f, stage, actors)
	}
	s.processTasks(f)
}

// runStage runs the due loops of a stage in registration order.
func (s *Scheduler) runStage(f *Frame, stage Stage, actors []*Actor) {
	s.loopsMu.RLock()
	loops := s.loops[stage]
	s.loopsMu.RUnlock()

	for _, loop := range loops {
		if !loop.ShouldRun(f.Now) {
			continue
		}
		for _, a := range actors {
			if a.closed.Load() || !a.passes(loop.filter) {
				continue
			}
			s.runSafely("loop", loop.name, func() { loop.system.Run(f, a) })
		}
		loop.MarkRun(f.Now)
	}
}

// addLoop registers a loop with the scheduler.
func (s *Scheduler) addLoop(sys System, interval time.Duration, stage Stage) {
	if stage < PreUpdate || stage >= stageCount {
		panic(fmt.Sprintf("riotwave: invalid stage %d for loop %T", stage, sys))
	}

	s.loopsMu.Lock()
	defer s.loopsMu.Unlock()

	s.loops[stage] = append(s.loops[stage], &loopState{
		system:   sys,
		name:     systemName(sys),
		filter:   analyzeFilter(sys),
		interval: interval,
	})
}

// processTasks runs every timer due at f.Now.
func (s *Scheduler) processTasks(f *Frame) {
	for _, task := range s.manager.taskQueue.PopDue(f.Now) {
		if task.cancelled.Load() {
			continue
		}
		if task.actor != nil {
			if task.actor.closed.Load() {
				continue
			}
			task.actor.removeTask(task)
		}
		s.runSafely("timer", task.name, func() { task.fn(f) })
	}
}

// runSafely runs fn, logging a panic instead of taking the world down with
// it.
func (s *Scheduler) runSafely(kind, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.manager.log.Error("riotwave: panic in "+kind, "name", name, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}

// systemName returns a readable name for a system or handler.
func systemName(v any) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
