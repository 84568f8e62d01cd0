package riotwave

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Manager owns the actors of one game, the registered bundles and the
// scheduler driving them.
// Multiple Manager instances can coexist in the same process.
type Manager struct {
	bundles  []*Bundle
	handlers []*handlerEntry

	resources   map[reflect.Type]any
	resourcesMu sync.RWMutex

	// actors is kept in spawn order so loops visit actors deterministically
	actors   []*Actor
	byUUID   map[uuid.UUID]*Actor
	byHandle map[*world.EntityHandle]*Actor
	byName   map[string]*Actor
	actorsMu sync.RWMutex

	taskQueue *taskQueue
	scheduler *Scheduler

	log *slog.Logger

	// clock is the time of the last tick, the frame clock timers run on
	clock   time.Time
	clockMu sync.RWMutex
}

// newManager creates a new manager.
func newManager(log *slog.Logger, tickRate time.Duration) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		resources: make(map[reflect.Type]any),
		byUUID:    make(map[uuid.UUID]*Actor),
		byHandle:  make(map[*world.EntityHandle]*Actor),
		byName:    make(map[string]*Actor),
		taskQueue: newTaskQueue(),
		log:       log,
	}
	m.scheduler = newScheduler(m, tickRate)
	return m
}

// Log returns the manager's logger.
func (m *Manager) Log() *slog.Logger {
	return m.log
}

// addResource registers a global resource. Resources must be pointers.
func (m *Manager) addResource(res any) {
	t := reflect.TypeOf(res)
	if t == nil || t.Kind() != reflect.Ptr {
		panic(fmt.Sprintf("riotwave: resource %T must be a pointer", res))
	}

	m.resourcesMu.Lock()
	m.resources[t.Elem()] = res
	m.resourcesMu.Unlock()
}

// Resource retrieves a global resource registered with a bundle or builder.
// Returns nil if no resource of type T is registered.
func Resource[T any](m *Manager) *T {
	if m == nil {
		return nil
	}
	t := reflect.TypeOf((*T)(nil)).Elem()

	m.resourcesMu.RLock()
	res, ok := m.resources[t]
	m.resourcesMu.RUnlock()
	if !ok {
		return nil
	}
	return res.(*T)
}

// Spawn creates an actor, attaches its Body and registers it with the
// manager.
func (m *Manager) Spawn(cfg ActorConfig) *Actor {
	id := cfg.UUID
	if id == uuid.Nil {
		id = uuid.New()
	}
	name := cfg.Name
	if name == "" {
		name = fmt.Sprintf("%s-%s", cfg.Kind, id.String()[:8])
	}

	a := &Actor{
		handle:  cfg.Handle,
		uuid:    id,
		name:    name,
		kind:    cfg.Kind,
		manager: m,
	}
	Add(a, newBody(cfg))

	m.actorsMu.Lock()
	if old := m.byUUID[id]; old != nil && !old.closed.Load() {
		m.log.Warn("riotwave: replacing actor with duplicate uuid", "actor", name, "uuid", id)
		m.unindex(old)
	}
	m.actors = append(m.actors, a)
	m.byUUID[id] = a
	m.byName[name] = a
	if a.handle != nil {
		m.byHandle[a.handle] = a
	}
	m.actorsMu.Unlock()

	m.log.Debug("riotwave: spawned actor", "actor", name, "kind", cfg.Kind, "uuid", id)
	return a
}

// Despawn tears an actor down and forgets it. Timers owned by the actor are
// cancelled, Detach hooks run, the engine puppet is removed (players keep
// theirs) and relations pointing at the actor are cleared.
// Despawning twice is a no-op.
func (m *Manager) Despawn(f *Frame, a *Actor) {
	if a == nil || a.closed.Load() {
		return
	}
	a.close(f)

	m.actorsMu.Lock()
	m.unindex(a)
	remaining := make([]*Actor, len(m.actors))
	copy(remaining, m.actors)
	m.actorsMu.Unlock()

	for _, other := range remaining {
		other.clearRelationsTo(a)
	}
	m.log.Debug("riotwave: despawned actor", "actor", a.name, "kind", a.kind)
}

// unindex removes a from every index. Caller must hold actorsMu.
func (m *Manager) unindex(a *Actor) {
	for i, other := range m.actors {
		if other == a {
			m.actors = append(m.actors[:i], m.actors[i+1:]...)
			break
		}
	}
	if m.byUUID[a.uuid] == a {
		delete(m.byUUID, a.uuid)
	}
	if m.byName[a.name] == a {
		delete(m.byName, a.name)
	}
	if a.handle != nil && m.byHandle[a.handle] == a {
		delete(m.byHandle, a.handle)
	}
}

// ActorByUUID retrieves an actor by UUID.
func (m *Manager) ActorByUUID(id uuid.UUID) *Actor {
	m.actorsMu.RLock()
	defer m.actorsMu.RUnlock()
	return m.byUUID[id]
}

// ActorByHandle retrieves the actor backed by an engine entity.
func (m *Manager) ActorByHandle(h *world.EntityHandle) *Actor {
	if h == nil {
		return nil
	}
	m.actorsMu.RLock()
	defer m.actorsMu.RUnlock()
	return m.byHandle[h]
}

// ActorByName retrieves an actor by name.
func (m *Manager) ActorByName(name string) *Actor {
	m.actorsMu.RLock()
	defer m.actorsMu.RUnlock()
	return m.byName[name]
}

// ActorOf retrieves the actor of a player.
func (m *Manager) ActorOf(p *player.Player) *Actor {
	return m.ActorByHandle(p.H())
}

// Actors returns a snapshot of all live actors in spawn order.
func (m *Manager) Actors() []*Actor {
	m.actorsMu.RLock()
	defer m.actorsMu.RUnlock()

	actors := make([]*Actor, 0, len(m.actors))
	for _, a := range m.actors {
		if !a.closed.Load() {
			actors = append(actors, a)
		}
	}
	return actors
}

// ActorsWithin returns the live actors whose body position lies within
// radius of center.
func (m *Manager) ActorsWithin(center mgl64.Vec3, radius float64) []*Actor {
	var result []*Actor
	for _, a := range m.Actors() {
		body := Get[Body](a)
		if body == nil {
			continue
		}
		if body.Position.Sub(center).Len() <= radius {
			result = append(result, a)
		}
	}
	return result
}

// ActorCount returns the number of live actors.
func (m *Manager) ActorCount() int {
	m.actorsMu.RLock()
	defer m.actorsMu.RUnlock()
	return len(m.actors)
}

// Broadcast dispatches an event to every live actor.
func (m *Manager) Broadcast(f *Frame, event any) {
	for _, a := range m.Actors() {
		Dispatch(f, a, event)
	}
}

// Now returns the frame clock: the time of the last tick, or the wall clock
// before the first tick.
func (m *Manager) Now() time.Time {
	m.clockMu.RLock()
	defer m.clockMu.RUnlock()
	if m.clock.IsZero() {
		return time.Now()
	}
	return m.clock
}

// TickNumber returns the current scheduler tick number.
func (m *Manager) TickNumber() uint64 {
	return m.scheduler.tickNumber.Load()
}

// Frame builds a frame for work done outside of a tick, such as engine
// callbacks and commands.
func (m *Manager) Frame(engine Engine) *Frame {
	if engine == nil {
		engine = NopEngine{}
	}
	return &Frame{
		Now:     m.Now(),
		Tick:    m.TickNumber(),
		Engine:  engine,
		Manager: m,
	}
}

// Tick advances the game by one frame: loops run stage by stage, then due
// timers. It must be called from the goroutine owning the engine, which
// Start takes care of.
func (m *Manager) Tick(now time.Time, engine Engine) {
	m.clockMu.Lock()
	delta := time.Duration(0)
	if !m.clock.IsZero() {
		delta = now.Sub(m.clock)
	}
	m.clock = now
	m.clockMu.Unlock()

	if engine == nil {
		engine = NopEngine{}
	}
	f := &Frame{
		Now:     now,
		Delta:   delta,
		Tick:    m.scheduler.tickNumber.Add(1),
		Engine:  engine,
		Manager: m,
	}
	m.scheduler.tick(f)
}

// build registers every bundle's handlers, loops and commands.
func (m *Manager) build() error {
	for _, b := range m.bundles {
		if err := b.build(m); err != nil {
			return fmt.Errorf("bundle %s: %w", b.name, err)
		}
	}
	return nil
}

// Start runs the scheduler against w until Shutdown.
func (m *Manager) Start(w *world.World) {
	m.scheduler.Start(w)
}

// Shutdown stops the scheduler and despawns every actor.
func (m *Manager) Shutdown() {
	m.scheduler.Stop()

	for _, a := range m.Actors() {
		m.Despawn(nil, a)
	}
}
