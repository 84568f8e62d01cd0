// Package volume tracks which actors overlap a trigger volume and reports
// enter and exit transitions, the way engine overlap callbacks do.
package volume

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
)

// SphereOverlapsBox reports whether the sphere at center with radius r
// touches box.
func SphereOverlapsBox(center mgl64.Vec3, r float64, box cube.BBox) bool {
	lo, hi := box.Min(), box.Max()
	closest := mgl64.Vec3{
		mgl64.Clamp(center.X(), lo.X(), hi.X()),
		mgl64.Clamp(center.Y(), lo.Y(), hi.Y()),
		mgl64.Clamp(center.Z(), lo.Z(), hi.Z()),
	}
	return closest.Sub(center).LenSqr() <= r*r
}

// Sphere returns an overlap test for a sphere against actor bodies.
func Sphere(center mgl64.Vec3, r float64) func(a *riotwave.Actor) bool {
	return func(a *riotwave.Actor) bool {
		body := riotwave.Get[riotwave.Body](a)
		return body != nil && SphereOverlapsBox(center, r, body.WorldBox())
	}
}

// Box returns an overlap test for a world-space box against actor bodies.
func Box(box cube.BBox) func(a *riotwave.Actor) bool {
	return func(a *riotwave.Actor) bool {
		body := riotwave.Get[riotwave.Body](a)
		return body != nil && box.IntersectsWith(body.WorldBox())
	}
}

// Tracker remembers the actors inside a volume between updates.
// The zero value is an empty tracker.
type Tracker struct {
	inside []*riotwave.Actor
}

// Update tests every candidate against overlaps and returns the actors that
// entered since the last update and those that left. Actors that are no
// longer candidates, or that despawned, count as having left.
// Both slices keep candidate order and previous order respectively.
func (t *Tracker) Update(candidates []*riotwave.Actor, overlaps func(a *riotwave.Actor) bool) (entered, exited []*riotwave.Actor) {
	now := make([]*riotwave.Actor, 0, len(t.inside))
	for _, a := range candidates {
		if a.Closed() || !overlaps(a) {
			continue
		}
		now = append(now, a)
		if !contains(t.inside, a) {
			entered = append(entered, a)
		}
	}
	for _, a := range t.inside {
		if !contains(now, a) {
			exited = append(exited, a)
		}
	}
	t.inside = now
	return entered, exited
}

// Contains reports whether a was inside at the last update.
func (t *Tracker) Contains(a *riotwave.Actor) bool {
	return contains(t.inside, a)
}

// Inside returns the actors inside at the last update.
func (t *Tracker) Inside() []*riotwave.Actor {
	return t.inside
}

// Len returns the number of actors inside.
func (t *Tracker) Len() int {
	return len(t.inside)
}

// Reset forgets every actor without reporting exits.
func (t *Tracker) Reset() {
	t.inside = nil
}

func contains(list []*riotwave.Actor, a *riotwave.Actor) bool {
	for _, other := range list {
		if other == a {
			return true
		}
	}
	return false
}
