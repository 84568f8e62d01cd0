// Package combat implements health, damage application and death.
//
// Health is the damage-capable capability: an actor can be hurt exactly when
// it carries a Health component.
package combat

import (
	"errors"
	"math"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/fx"
)

var (
	// ErrInvalidDamage is returned for negative or NaN damage amounts.
	ErrInvalidDamage = errors.New("combat: damage must be a non-negative number")
	// ErrInvalidHeal is returned for negative or NaN heal amounts.
	ErrInvalidHeal = errors.New("combat: heal must be a non-negative number")
	// ErrNotDamageable is returned when the target has no Health.
	ErrNotDamageable = errors.New("combat: target cannot take damage")
	// ErrAlreadyDead is returned when damage or healing targets a dead actor.
	ErrAlreadyDead = errors.New("combat: target is already dead")
)

// Health tracks hit points. 0 <= Current <= Max; the actor is dead exactly
// when Current is 0.
type Health struct {
	Current float64
	Max     float64
}

// NewHealth returns full health.
func NewHealth(max float64) *Health {
	return &Health{Current: max, Max: max}
}

// Dead reports whether the health has run out.
func (h *Health) Dead() bool {
	return h.Current <= 0
}

// Fraction returns Current/Max, or 0 for a zero Max.
func (h *Health) Fraction() float64 {
	if h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}

// Impact is the optional hit feedback of an actor: a sound played where the
// actor is hurt and a particle shown where a bullet strikes it.
type Impact struct {
	Sound    world.Sound
	Particle world.Particle
}

// Alive reports whether a carries Health and is not dead.
func Alive(a *riotwave.Actor) bool {
	h := riotwave.Get[Health](a)
	return h != nil && !h.Dead()
}

// ApplyDamage reduces the target's health by amount and returns the damage
// actually dealt.
//
// When the hit is lethal health is clamped to 0 and EventDeath is dispatched.
// Otherwise the target's Impact sound plays and EventDamaged is dispatched.
// Dead targets are left alone: no events, no effects, ErrAlreadyDead.
func ApplyDamage(f *riotwave.Frame, target *riotwave.Actor, amount float64, src Source) (float64, error) {
	if math.IsNaN(amount) || amount < 0 {
		return 0, ErrInvalidDamage
	}
	h := riotwave.Get[Health](target)
	if h == nil {
		return 0, ErrNotDamageable
	}
	if h.Dead() {
		return 0, ErrAlreadyDead
	}

	if h.Current-amount <= 0 {
		dealt := h.Current
		h.Current = 0
		riotwave.Dispatch(f, target, &EventDeath{Source: src})
		return dealt, nil
	}

	h.Current -= amount
	if f != nil {
		if body := riotwave.Get[riotwave.Body](target); body != nil {
			if imp := riotwave.Get[Impact](target); imp != nil {
				fx.Play(f.Engine, body.Position, imp.Sound)
			}
		}
		f.Engine.Puppet(target).Hurt(DragonflySource{Source: src})
	}
	riotwave.Dispatch(f, target, &EventDamaged{Amount: amount, Source: src, Remaining: h.Current})
	return amount, nil
}

// Heal restores up to amount health, clamped to Max, and returns the amount
// restored. Dead actors must be revived instead.
func Heal(target *riotwave.Actor, amount float64) (float64, error) {
	if math.IsNaN(amount) || amount < 0 {
		return 0, ErrInvalidHeal
	}
	h := riotwave.Get[Health](target)
	if h == nil {
		return 0, ErrNotDamageable
	}
	if h.Dead() {
		return 0, ErrAlreadyDead
	}
	healed := min(amount, h.Max-h.Current)
	h.Current += healed
	return healed, nil
}

// Revive restores a target to full health and dispatches EventRevive.
func Revive(f *riotwave.Frame, target *riotwave.Actor) error {
	h := riotwave.Get[Health](target)
	if h == nil {
		return ErrNotDamageable
	}
	h.Current = h.Max
	riotwave.Dispatch(f, target, &EventRevive{})
	return nil
}

// BulletHit plays the target's impact particle where a bullet struck it.
// Targets without Impact are skipped.
func BulletHit(f *riotwave.Frame, target *riotwave.Actor, pos mgl64.Vec3) {
	if f == nil {
		return
	}
	if imp := riotwave.Get[Impact](target); imp != nil {
		fx.Show(f.Engine, pos, imp.Particle)
	}
}
