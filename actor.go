package riotwave

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Kind classifies an actor.
type Kind uint8

const (
	// KindPlayer is a connected player character.
	KindPlayer Kind = iota
	// KindEnemy is an AI controlled enemy character.
	KindEnemy
	// KindWeaponPickup is a weapon lying in the world waiting to be picked up.
	KindWeaponPickup
	// KindCollectible is a collectible item, usually dropped by an enemy.
	KindCollectible
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "Player"
	case KindEnemy:
		return "Enemy"
	case KindWeaponPickup:
		return "WeaponPickup"
	case KindCollectible:
		return "Collectible"
	default:
		return "Unknown"
	}
}

// ActorConfig configures an actor spawned with Manager.Spawn.
type ActorConfig struct {
	Name string
	Kind Kind

	// Handle is the engine entity backing the actor. Nil for actors that only
	// exist in the simulation (pickups, headless tests).
	Handle *world.EntityHandle

	// UUID is used as the actor identity when set. Players pass their own UUID
	// so lookups from engine callbacks resolve to the same actor.
	UUID uuid.UUID

	Position mgl64.Vec3
	Rotation cube.Rotation

	// Box is the collision box relative to Position. A zero box falls back to
	// the player-sized default.
	Box       cube.BBox
	EyeHeight float64
}

// Actor is a gameplay participant: a player, an enemy or a pickup.
// It stores all components attached to it and, when backed by an engine
// entity, the persistent handle to that entity.
type Actor struct {
	// handle is the engine entity handle, nil for simulation-only actors
	handle *world.EntityHandle

	uuid uuid.UUID
	name string
	kind Kind

	// mask tracks which components are present (256 bits)
	mask Bitmask

	// components stores component pointers indexed by ComponentID
	components [MaxComponents]unsafe.Pointer

	// mu protects mask and components
	mu sync.RWMutex

	manager *Manager

	closed atomic.Bool

	// pendingTasks holds timers owned by this actor, cancelled on despawn
	pendingTasks []*scheduledTask
	taskMu       sync.Mutex
}

// Handle returns the engine entity handle, or nil.
func (a *Actor) Handle() *world.EntityHandle {
	return a.handle
}

// UUID returns the actor's UUID.
func (a *Actor) UUID() uuid.UUID {
	return a.uuid
}

// Name returns the actor's name.
func (a *Actor) Name() string {
	return a.name
}

// Kind returns the actor's kind.
func (a *Actor) Kind() Kind {
	return a.kind
}

// Manager returns the manager that owns this actor.
func (a *Actor) Manager() *Manager {
	return a.manager
}

// Closed returns true once the actor has been despawned.
func (a *Actor) Closed() bool {
	return a.closed.Load()
}

// Mask returns a copy of the actor's component bitmask.
func (a *Actor) Mask() Bitmask {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mask
}

// String returns a string representation of the actor for debugging.
func (a *Actor) String() string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	comps := ""
	for id := range ComponentID(MaxComponents) {
		if a.mask.Has(id) {
			if comps != "" {
				comps += ", "
			}
			comps += ComponentName(id)
		}
	}
	return fmt.Sprintf("Actor{Name: %s, Kind: %s, UUID: %s, Components: [%s]}", a.name, a.kind, a.uuid, comps)
}

// passes checks if the actor passes a require/exclude filter.
func (a *Actor) passes(f filter) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mask.ContainsAll(f.require) && !a.mask.ContainsAny(f.exclude)
}

// close tears the actor down. It runs Detach hooks, cancels timers and
// removes the engine puppet. Closing twice is a no-op.
func (a *Actor) close(f *Frame) {
	if a.closed.Swap(true) {
		return
	}

	a.taskMu.Lock()
	tasks := a.pendingTasks
	a.pendingTasks = nil
	a.taskMu.Unlock()
	for _, t := range tasks {
		t.cancelled.Store(true)
	}

	var toDetach []Detachable
	a.mu.RLock()
	for id := range ComponentID(MaxComponents) {
		ptr := a.components[id]
		if ptr == nil {
			continue
		}
		if t := ComponentType(id); t != nil {
			if d, ok := reflect.NewAt(t, ptr).Interface().(Detachable); ok {
				toDetach = append(toDetach, d)
			}
		}
	}
	a.mu.RUnlock()

	// Detach hooks still see an intact actor.
	for _, d := range toDetach {
		d.Detach(a)
	}

	a.mu.Lock()
	for id := range ComponentID(MaxComponents) {
		a.components[id] = nil
	}
	a.mask = Bitmask{}
	a.mu.Unlock()

	if f != nil && f.Engine != nil && a.kind != KindPlayer {
		f.Engine.Puppet(a).Remove()
	}
}

// addTask records a timer owned by this actor.
func (a *Actor) addTask(t *scheduledTask) {
	a.taskMu.Lock()
	a.pendingTasks = append(a.pendingTasks, t)
	a.taskMu.Unlock()
}

// removeTask forgets a timer after it ran.
func (a *Actor) removeTask(t *scheduledTask) {
	a.taskMu.Lock()
	for i, pending := range a.pendingTasks {
		if pending == t {
			a.pendingTasks = append(a.pendingTasks[:i], a.pendingTasks[i+1:]...)
			break
		}
	}
	a.taskMu.Unlock()
}

// clearRelationsTo clears every Relation field in this actor's components
// that points at target.
func (a *Actor) clearRelationsTo(target *Actor) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for id := range ComponentID(MaxComponents) {
		ptr := a.components[id]
		if ptr == nil {
			continue
		}
		if t := ComponentType(id); t != nil {
			clearRelationsTo(reflect.NewAt(t, ptr).Interface(), target)
		}
	}
}
