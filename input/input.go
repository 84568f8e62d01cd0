// Package input maps engine input to gameplay actions through mapping
// contexts, so that what a player can do follows what they are holding.
package input

import (
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
)

// Action is a gameplay action a player can perform.
type Action uint8

const (
	ActionMove Action = iota
	ActionLook
	ActionJump
	ActionCrouch
	ActionFire
)

func (a Action) String() string {
	switch a {
	case ActionMove:
		return "move"
	case ActionLook:
		return "look"
	case ActionJump:
		return "jump"
	case ActionCrouch:
		return "crouch"
	case ActionFire:
		return "fire"
	default:
		return "unknown"
	}
}

// Trigger is the phase of an action.
type Trigger uint8

const (
	// TriggerStarted fires when an action begins, e.g. crouch pressed.
	TriggerStarted Trigger = iota
	// TriggerTriggered fires for every instant of the action.
	TriggerTriggered
	// TriggerCompleted fires when an action ends.
	TriggerCompleted
)

func (t Trigger) String() string {
	switch t {
	case TriggerStarted:
		return "started"
	case TriggerTriggered:
		return "triggered"
	case TriggerCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MappingContext is a named set of actions that are active together.
type MappingContext struct {
	Name    string
	Actions []Action
}

var (
	// Traversal is added when a player is possessed.
	Traversal = MappingContext{Name: "traversal", Actions: []Action{ActionMove, ActionLook, ActionJump, ActionCrouch}}
	// WeaponHandling is added once a weapon is equipped.
	WeaponHandling = MappingContext{Name: "weapon_handling", Actions: []Action{ActionFire}}
)

// Value is the payload of an action.
type Value struct {
	Position mgl64.Vec3
	Rotation cube.Rotation
}

// Callback is run for a bound action.
type Callback func(f *riotwave.Frame, a *riotwave.Actor, v Value)

type binding struct {
	action  Action
	trigger Trigger
}

// Controller is the input component of a player. Actions only reach their
// callbacks while the controller is enabled and an active context maps them.
type Controller struct {
	contexts []MappingContext
	bindings map[binding][]Callback
	disabled bool
}

// NewController returns an enabled controller without contexts.
func NewController() *Controller {
	return &Controller{bindings: make(map[binding][]Callback)}
}

// AddContext activates ctx. Adding a context twice is a no-op.
func (c *Controller) AddContext(ctx MappingContext) {
	if c.HasContext(ctx.Name) {
		return
	}
	c.contexts = append(c.contexts, ctx)
}

// RemoveContext deactivates the context with the given name.
func (c *Controller) RemoveContext(name string) {
	c.contexts = slices.DeleteFunc(c.contexts, func(ctx MappingContext) bool {
		return ctx.Name == name
	})
}

// HasContext reports whether the named context is active.
func (c *Controller) HasContext(name string) bool {
	return slices.ContainsFunc(c.contexts, func(ctx MappingContext) bool {
		return ctx.Name == name
	})
}

// Mapped reports whether an active context maps action.
func (c *Controller) Mapped(action Action) bool {
	for _, ctx := range c.contexts {
		if slices.Contains(ctx.Actions, action) {
			return true
		}
	}
	return false
}

// Bind runs cb whenever action reaches trigger.
func (c *Controller) Bind(action Action, trigger Trigger, cb Callback) {
	if c.bindings == nil {
		c.bindings = make(map[binding][]Callback)
	}
	key := binding{action, trigger}
	c.bindings[key] = append(c.bindings[key], cb)
}

// Unbind drops every callback of action.
func (c *Controller) Unbind(action Action) {
	for key := range c.bindings {
		if key.action == action {
			delete(c.bindings, key)
		}
	}
}

// Enable lets actions through again.
func (c *Controller) Enable() { c.disabled = false }

// Disable drops every action until Enable is called.
func (c *Controller) Disable() { c.disabled = true }

// Enabled reports whether actions are let through.
func (c *Controller) Enabled() bool { return !c.disabled }

// Trigger runs the callbacks bound to action and trigger and reports whether
// any ran.
func (c *Controller) Trigger(f *riotwave.Frame, a *riotwave.Actor, action Action, trigger Trigger, v Value) bool {
	if c.disabled || !c.Mapped(action) {
		return false
	}
	cbs := c.bindings[binding{action, trigger}]
	for _, cb := range cbs {
		cb(f, a, v)
	}
	return len(cbs) > 0
}

// Stance is the movement state of a possessed actor.
type Stance struct {
	Crouching bool
	Jumps     int
	// Travelled is the horizontal distance walked in blocks.
	Travelled float64
}

// CrouchEyeDrop is how much lower the eyes are while crouching.
const CrouchEyeDrop = 0.3

// Possess activates the traversal context of a and binds movement to its
// Stance and Body.
func Possess(a *riotwave.Actor) {
	c := riotwave.MustGet[Controller](a)
	if !riotwave.Has[Stance](a) {
		riotwave.Add(a, &Stance{})
	}
	c.AddContext(Traversal)

	c.Bind(ActionMove, TriggerTriggered, func(_ *riotwave.Frame, a *riotwave.Actor, v Value) {
		body := riotwave.MustGet[riotwave.Body](a)
		d := v.Position.Sub(body.Position)
		riotwave.MustGet[Stance](a).Travelled += mgl64.Vec2{d.X(), d.Z()}.Len()
	})
	c.Bind(ActionJump, TriggerStarted, func(_ *riotwave.Frame, a *riotwave.Actor, _ Value) {
		riotwave.MustGet[Stance](a).Jumps++
	})
	c.Bind(ActionCrouch, TriggerStarted, func(_ *riotwave.Frame, a *riotwave.Actor, _ Value) {
		crouch(a, true)
	})
	c.Bind(ActionCrouch, TriggerCompleted, func(_ *riotwave.Frame, a *riotwave.Actor, _ Value) {
		crouch(a, false)
	})
}

func crouch(a *riotwave.Actor, crouching bool) {
	s := riotwave.MustGet[Stance](a)
	if s.Crouching == crouching {
		return
	}
	s.Crouching = crouching
	body := riotwave.MustGet[riotwave.Body](a)
	if crouching {
		body.EyeHeight -= CrouchEyeDrop
	} else {
		body.EyeHeight += CrouchEyeDrop
	}
}
