// Package pickup implements items lying in the world: weapon pickups that
// arm whoever touches them and collectibles dropped by enemies.
package pickup

import (
	"errors"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/volume"
	"github.com/oriumgames/riotwave/weapon"
)

var (
	// ErrNotPickup is returned when the actor is not a pickup.
	ErrNotPickup = errors.New("pickup: actor is not a pickup")
	// ErrConsumed is returned when a pickup was already taken.
	ErrConsumed = errors.New("pickup: already consumed")
)

// pickupBox is the body of every pickup actor.
var pickupBox = cube.Box(-0.25, 0, -0.25, 0.25, 0.5, 0.25)

// MarkerInterval is how often pickups show their marker particle.
const MarkerInterval = 250 * time.Millisecond

// Marker shows a particle above a pickup.
type Marker struct {
	Particle world.Particle
	Height   float64
}

// WeaponPickup hands a weapon configuration to the first weapon-capable
// actor that touches it.
type WeaponPickup struct {
	Weapon weapon.Properties
	Radius float64

	consumed bool
	overlap  volume.Tracker
}

// Consumed reports whether the weapon was handed over.
func (w *WeaponPickup) Consumed() bool {
	return w.consumed
}

// SpawnWeapon places a pickup for def at pos.
func SpawnWeapon(m *riotwave.Manager, def weapon.Definition, pos mgl64.Vec3) *riotwave.Actor {
	a := m.Spawn(riotwave.ActorConfig{
		Kind:     riotwave.KindWeaponPickup,
		Position: pos,
		Box:      pickupBox,
	})
	riotwave.Add(a, &WeaponPickup{Weapon: def.Properties(), Radius: def.PickupRadius})
	riotwave.Add(a, &Marker{Particle: fx.Particle(def.Beam), Height: 0.75})
	return a
}

// Transfer equips the pickup's weapon on to, plays the pickup sound,
// dispatches EventWeaponPicked on to and despawns the pickup.
func Transfer(f *riotwave.Frame, pickup, to *riotwave.Actor) error {
	wp := riotwave.Get[WeaponPickup](pickup)
	if wp == nil {
		return ErrNotPickup
	}
	if wp.consumed {
		return ErrConsumed
	}
	h := riotwave.Get[weapon.Handling](to)
	if h == nil {
		return weapon.ErrNoHandling
	}
	wp.consumed = true

	h.Equip(f, to, wp.Weapon)
	if body := riotwave.Get[riotwave.Body](pickup); body != nil {
		fx.Play(f.Engine, body.Position, wp.Weapon.PickupSound)
	}
	riotwave.Dispatch(f, to, &EventWeaponPicked{Pickup: pickup, Weapon: wp.Weapon.Name})
	f.Manager.Log().Info("weapon picked up", "actor", to.Name(), "weapon", wp.Weapon.Name)
	f.Manager.Despawn(f, pickup)
	return nil
}

// weaponLoop hands pickups over on contact. Contact is the moment an actor
// starts overlapping the pickup radius.
type weaponLoop struct {
	_ riotwave.With[WeaponPickup]
}

func (weaponLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	wp := riotwave.Get[WeaponPickup](a)
	if wp.consumed {
		return
	}
	body := riotwave.MustGet[riotwave.Body](a)
	entered, _ := wp.overlap.Update(collectors(f.Manager), volume.Sphere(body.Center(), wp.Radius))
	for _, other := range entered {
		if !riotwave.Has[weapon.Handling](other) {
			continue
		}
		if err := Transfer(f, a, other); err == nil {
			return
		}
	}
}

// markerLoop shows every pickup's marker.
type markerLoop struct {
	_ riotwave.With[Marker]
}

func (markerLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	m := riotwave.Get[Marker](a)
	body := riotwave.MustGet[riotwave.Body](a)
	fx.Show(f.Engine, body.Position.Add(mgl64.Vec3{0, m.Height, 0}), m.Particle)
}

// collectors returns the actors able to touch pickups: everything that is
// not itself an item and, when it can take damage, is alive.
func collectors(m *riotwave.Manager) []*riotwave.Actor {
	var out []*riotwave.Actor
	for _, a := range m.Actors() {
		switch a.Kind() {
		case riotwave.KindWeaponPickup, riotwave.KindCollectible:
			continue
		}
		if riotwave.Has[combat.Health](a) && !combat.Alive(a) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// EventWeaponPicked is dispatched on the actor that took a weapon pickup.
// The pickup is despawned right after.
type EventWeaponPicked struct {
	Pickup *riotwave.Actor
	Weapon string
}

// EventCollected is dispatched on the player that collected an item.
type EventCollected struct {
	Item  string
	Count int
}

// NewBundle returns the pickup bundle.
func NewBundle() *riotwave.Bundle {
	return riotwave.NewBundle("pickup").
		Loop(&physicsLoop{}, 0, riotwave.PreUpdate).
		Loop(&weaponLoop{}, 0, riotwave.Update).
		Loop(&collectLoop{}, 0, riotwave.Update).
		Loop(&markerLoop{}, MarkerInterval, riotwave.PostUpdate)
}
