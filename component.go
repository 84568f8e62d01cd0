package riotwave

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"
)

// ComponentID is a unique identifier for a component type.
// Valid IDs range from 0 to 254.
type ComponentID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 255

// componentRegistry assigns IDs to component types.
// Types are registered once and looked up constantly, so reads go through a
// sync.Map and never take a lock.
type componentRegistry struct {
	types sync.Map // map[reflect.Type]ComponentID

	// names and typesArr are indexed by ComponentID and written once per ID
	names    [MaxComponents]string
	typesArr [MaxComponents]reflect.Type

	nextID atomic.Uint32

	// arrMu protects writes to names and typesArr
	arrMu sync.RWMutex
}

var globalRegistry = &componentRegistry{}

// registerComponentType registers a component type and returns its ID.
// This is called automatically when components are first used.
func registerComponentType(t reflect.Type) ComponentID {
	if id, ok := globalRegistry.types.Load(t); ok {
		return id.(ComponentID)
	}

	n := globalRegistry.nextID.Add(1)
	if n > MaxComponents {
		panic(fmt.Sprintf("riotwave: component limit exceeded (max %d types)", MaxComponents))
	}
	newID := ComponentID(n - 1)

	actual, loaded := globalRegistry.types.LoadOrStore(t, newID)
	if loaded {
		// Lost the race, the allocated ID stays unused.
		return actual.(ComponentID)
	}

	globalRegistry.arrMu.Lock()
	globalRegistry.names[newID] = t.Name()
	globalRegistry.typesArr[newID] = t
	globalRegistry.arrMu.Unlock()

	return newID
}

// componentID returns the ComponentID for type T, registering it if needed.
func componentID[T any]() ComponentID {
	return registerComponentType(reflect.TypeOf((*T)(nil)).Elem())
}

// ID returns the ComponentID of component type T.
func ID[T any]() ComponentID {
	return componentID[T]()
}

// Attachable is implemented by components that need initialization logic
// when attached to an actor.
type Attachable interface {
	Attach(a *Actor)
}

// Detachable is implemented by components that need cleanup logic
// when detached from an actor or when the actor despawns.
type Detachable interface {
	Detach(a *Actor)
}

// Add attaches a component to the actor.
// If a component of this type already exists, it is replaced and its Detach
// hook runs first. If the new component implements Attachable, Attach is
// called after it is stored.
func Add[T any](a *Actor, component *T) {
	if a == nil || component == nil || a.closed.Load() {
		return
	}

	id := componentID[T]()

	a.mu.Lock()
	oldPtr := a.components[id]
	if oldPtr != nil {
		if old, ok := any((*T)(oldPtr)).(Detachable); ok {
			a.mu.Unlock()
			old.Detach(a)
			a.mu.Lock()
		}
	}
	a.components[id] = unsafe.Pointer(component)
	a.mask.Set(id)
	a.mu.Unlock()

	if attachable, ok := any(component).(Attachable); ok {
		attachable.Attach(a)
	}
}

// Remove detaches a component from the actor.
// If the component implements Detachable, its Detach method is called.
func Remove[T any](a *Actor) {
	if a == nil {
		return
	}

	id := componentID[T]()

	a.mu.Lock()
	ptr := a.components[id]
	if ptr == nil {
		a.mu.Unlock()
		return
	}
	// Cleared before Detach so the hook cannot observe itself.
	a.components[id] = nil
	a.mask.Clear(id)
	a.mu.Unlock()

	if component, ok := any((*T)(ptr)).(Detachable); ok {
		component.Detach(a)
	}
}

// Get retrieves a component from the actor.
// Returns nil if the component is not present.
func Get[T any](a *Actor) *T {
	if a == nil {
		return nil
	}

	id := componentID[T]()

	a.mu.RLock()
	ptr := a.components[id]
	a.mu.RUnlock()

	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}

// Has checks if a component type is present on the actor.
func Has[T any](a *Actor) bool {
	if a == nil {
		return false
	}

	id := componentID[T]()

	a.mu.RLock()
	has := a.mask.Has(id)
	a.mu.RUnlock()

	return has
}

// MustGet retrieves a component the caller cannot work without.
// A missing component is a wiring bug and panics.
func MustGet[T any](a *Actor) *T {
	c := Get[T](a)
	if c == nil {
		panic(fmt.Sprintf("riotwave: actor %s is missing required component %s", a.Name(), reflect.TypeOf((*T)(nil)).Elem().Name()))
	}
	return c
}

// ComponentName returns the name of the component type with the given ID.
func ComponentName(id ComponentID) string {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.names[id]
}

// ComponentType returns the reflect.Type of the component with the given ID.
func ComponentType(id ComponentID) reflect.Type {
	globalRegistry.arrMu.RLock()
	defer globalRegistry.arrMu.RUnlock()
	return globalRegistry.typesArr[id]
}

// RegisteredComponentCount returns the number of registered component types.
func RegisteredComponentCount() int {
	return int(globalRegistry.nextID.Load())
}
