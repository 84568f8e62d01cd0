package input

import (
	"errors"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/weapon"
)

// handler turns player events into actions. Every player receiving input
// must carry a Controller.
type handler struct{}

func controllerOf(a *riotwave.Actor) *Controller {
	if a.Kind() != riotwave.KindPlayer {
		return nil
	}
	return riotwave.MustGet[Controller](a)
}

func (handler) HandleMove(f *riotwave.Frame, a *riotwave.Actor, e *riotwave.EventMove) {
	c := controllerOf(a)
	if c == nil {
		return
	}
	if !c.Enabled() {
		e.Cancel()
		return
	}
	body := riotwave.MustGet[riotwave.Body](a)
	v := Value{Position: e.Position, Rotation: e.Rotation}
	if e.Position != body.Position {
		c.Trigger(f, a, ActionMove, TriggerTriggered, v)
	}
	if e.Rotation != body.Rotation {
		c.Trigger(f, a, ActionLook, TriggerTriggered, v)
	}
}

func (handler) HandleJump(f *riotwave.Frame, a *riotwave.Actor, _ *riotwave.EventJump) {
	if c := controllerOf(a); c != nil {
		c.Trigger(f, a, ActionJump, TriggerStarted, Value{})
	}
}

func (handler) HandleToggleSneak(f *riotwave.Frame, a *riotwave.Actor, e *riotwave.EventToggleSneak) {
	c := controllerOf(a)
	if c == nil {
		return
	}
	if !c.Enabled() {
		e.Cancel()
		return
	}
	trigger := TriggerCompleted
	if e.After {
		trigger = TriggerStarted
	}
	c.Trigger(f, a, ActionCrouch, trigger, Value{})
}

func (handler) HandleItemUse(f *riotwave.Frame, a *riotwave.Actor, _ *riotwave.EventItemUse) {
	if c := controllerOf(a); c != nil {
		c.Trigger(f, a, ActionFire, TriggerTriggered, Value{})
	}
}

func (handler) HandlePunchAir(f *riotwave.Frame, a *riotwave.Actor, _ *riotwave.EventPunchAir) {
	if c := controllerOf(a); c != nil {
		c.Trigger(f, a, ActionFire, TriggerTriggered, Value{})
	}
}

// HandleAttackEntity replaces melee hits with a shot.
func (handler) HandleAttackEntity(f *riotwave.Frame, a *riotwave.Actor, e *riotwave.EventAttackEntity) {
	c := controllerOf(a)
	if c == nil {
		return
	}
	e.Cancel()
	c.Trigger(f, a, ActionFire, TriggerTriggered, Value{})
}

// HandleEquipped activates weapon handling the first time a player is armed.
func (handler) HandleEquipped(_ *riotwave.Frame, a *riotwave.Actor, e *weapon.EventEquipped) {
	c := controllerOf(a)
	if c == nil || !e.First {
		return
	}
	c.AddContext(WeaponHandling)
	c.Bind(ActionFire, TriggerTriggered, fire)
}

func fire(f *riotwave.Frame, a *riotwave.Actor, _ Value) {
	_, err := weapon.Fire(f, a)
	if err != nil && !errors.Is(err, weapon.ErrCoolingDown) {
		f.Manager.Log().Debug("fire failed", "actor", a.Name(), "err", err)
	}
}

// NewBundle returns the input bundle.
func NewBundle() *riotwave.Bundle {
	return riotwave.NewBundle("input").Handler(&handler{})
}
