package riotwave

import (
	"reflect"
)

// Relation is a reference from one actor to another. The type parameter T
// names the component the target must carry for the relation to be valid.
//
// Usage:
//
//	type Brain struct {
//	    Target riotwave.Relation[combat.Health] // whoever we are chasing
//	}
//
// Relations pointing at an actor are cleared when it despawns.
type Relation[T any] struct {
	target *Actor
}

// Set sets the target actor.
func (r *Relation[T]) Set(target *Actor) {
	r.target = target
}

// Clear removes the target reference.
func (r *Relation[T]) Clear() {
	r.target = nil
}

// Get returns the target actor, or nil if unset or despawned.
func (r *Relation[T]) Get() *Actor {
	if r.target == nil {
		return nil
	}
	if r.target.closed.Load() {
		r.target = nil
		return nil
	}
	return r.target
}

// Is reports whether the relation currently points at a.
func (r *Relation[T]) Is(a *Actor) bool {
	return a != nil && r.Get() == a
}

// Valid returns true if the target exists and has the required component.
func (r *Relation[T]) Valid() bool {
	target := r.Get()
	if target == nil {
		return false
	}
	return Has[T](target)
}

func (r *Relation[T]) clearIfTarget(target *Actor) {
	if r.target == target {
		r.target = nil
	}
}

// Resolve retrieves the target actor and its component of type T.
// Returns (nil, nil, false) if the relation is unset, the target despawned or
// the component is missing.
func Resolve[T any](r *Relation[T]) (*Actor, *T, bool) {
	a := r.Get()
	if a == nil {
		return nil, nil, false
	}
	comp := Get[T](a)
	if comp == nil {
		return a, nil, false
	}
	return a, comp, true
}

type relationClearer interface {
	clearIfTarget(target *Actor)
}

var relationClearerType = reflect.TypeOf((*relationClearer)(nil)).Elem()

// clearRelationsTo clears every top-level Relation field of component that
// points at target.
func clearRelationsTo(component any, target *Actor) {
	v := reflect.ValueOf(component)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanAddr() || !reflect.PointerTo(field.Type()).Implements(relationClearerType) {
			continue
		}
		// Unexported method, so go through the interface on the address.
		reflect.NewAt(field.Type(), field.Addr().UnsafePointer()).Interface().(relationClearer).clearIfTarget(target)
	}
}
