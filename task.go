package riotwave

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// scheduledTask is a one-shot timer.
type scheduledTask struct {
	executeAt time.Time

	// actor owns the timer; nil for global timers
	actor *Actor

	name string
	fn   func(f *Frame)

	cancelled atomic.Bool

	// index is the heap index
	index int
}

// taskQueue is a min-heap of timers ordered by due time.
type taskQueue struct {
	mu   sync.Mutex
	heap []*scheduledTask
}

// newTaskQueue creates a new task queue.
func newTaskQueue() *taskQueue {
	return &taskQueue{heap: make([]*scheduledTask, 0, 64)}
}

// Push adds a timer, compacting cancelled ones now and then.
func (q *taskQueue) Push(task *scheduledTask) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.heap) > 100 && len(q.heap)%100 == 0 {
		q.compact()
	}
	task.index = len(q.heap)
	q.heap = append(q.heap, task)
	q.up(task.index)
}

// PopDue removes and returns every live timer due at or before now, earliest
// first.
func (q *taskQueue) PopDue(now time.Time) []*scheduledTask {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []*scheduledTask
	for len(q.heap) > 0 && !q.heap[0].executeAt.After(now) {
		if task := q.pop(); !task.cancelled.Load() {
			due = append(due, task)
		}
	}
	return due
}

// Len returns the number of queued timers, cancelled ones included.
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.heap)
}

// compact drops cancelled timers and restores the heap. Caller must hold mu.
func (q *taskQueue) compact() {
	live := q.heap[:0]
	for _, task := range q.heap {
		if !task.cancelled.Load() {
			task.index = len(live)
			live = append(live, task)
		}
	}
	clear(q.heap[len(live):])
	q.heap = live
	for i := len(q.heap)/2 - 1; i >= 0; i-- {
		q.down(i, len(q.heap))
	}
}

// pop removes the earliest timer. Caller must hold mu.
func (q *taskQueue) pop() *scheduledTask {
	n := len(q.heap) - 1
	q.swap(0, n)
	q.down(0, n)
	task := q.heap[n]
	q.heap[n] = nil
	q.heap = q.heap[:n]
	task.index = -1
	return task
}

func (q *taskQueue) less(i, j int) bool {
	return q.heap[i].executeAt.Before(q.heap[j].executeAt)
}

func (q *taskQueue) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !q.less(i, parent) {
			return
		}
		q.swap(i, parent)
		i = parent
	}
}

func (q *taskQueue) down(i, n int) {
	for {
		j := 2*i + 1
		if j >= n {
			return
		}
		if right := j + 1; right < n && q.less(right, j) {
			j = right
		}
		if !q.less(j, i) {
			return
		}
		q.swap(i, j)
		i = j
	}
}

func (q *taskQueue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.heap[i].index = i
	q.heap[j].index = j
}

// TaskHandle allows cancelling a scheduled timer.
type TaskHandle struct {
	task *scheduledTask
}

// Cancel cancels the timer. Cancelling a timer that already ran is a no-op.
func (h *TaskHandle) Cancel() {
	if h != nil && h.task != nil {
		h.task.cancelled.Store(true)
	}
}

// Cancelled reports whether the timer was cancelled.
func (h *TaskHandle) Cancelled() bool {
	return h != nil && h.task != nil && h.task.cancelled.Load()
}

// Schedule runs fn once, delay after the manager's frame clock, in the first
// tick at or after that time. The timer belongs to a and never runs once a
// has despawned.
// Returns nil if a is nil or already despawned.
func Schedule(a *Actor, delay time.Duration, fn func(f *Frame)) *TaskHandle {
	if a == nil || a.closed.Load() || a.manager == nil {
		return nil
	}
	task := &scheduledTask{
		executeAt: a.manager.Now().Add(delay),
		actor:     a,
		name:      callerName(),
		fn:        fn,
	}
	a.addTask(task)
	a.manager.taskQueue.Push(task)
	return &TaskHandle{task: task}
}

// ScheduleGlobal runs fn once after delay, independent of any actor.
func ScheduleGlobal(m *Manager, delay time.Duration, fn func(f *Frame)) *TaskHandle {
	if m == nil {
		return nil
	}
	task := &scheduledTask{
		executeAt: m.Now().Add(delay),
		name:      callerName(),
		fn:        fn,
	}
	m.taskQueue.Push(task)
	return &TaskHandle{task: task}
}

// callerName names the function that scheduled a timer, for panic logs.
func callerName() string {
	pc, _, _, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return "unknown"
}
