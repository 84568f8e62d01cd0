package riotwave

import (
	"fmt"
	"reflect"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	frameType = reflect.TypeOf((*Frame)(nil))
	actorType = reflect.TypeOf((*Actor)(nil))
)

// handlerEntry holds a registered handler and the events it listens for.
type handlerEntry struct {
	name   string
	value  reflect.Value
	filter filter
	events map[reflect.Type]int
}

// registerHandler registers a handler with the manager.
// Every method of the form (f *Frame, a *Actor, e E) with no results listens
// for events of type E.
func (m *Manager) registerHandler(h any) error {
	t := reflect.TypeOf(h)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("handler %T must be a pointer to a struct", h)
	}

	events := make(map[reflect.Type]int)
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		mt := method.Type
		// Receiver plus three arguments.
		if mt.NumIn() != 4 || mt.NumOut() != 0 || mt.In(1) != frameType || mt.In(2) != actorType {
			continue
		}
		eventType := mt.In(3)
		if _, dup := events[eventType]; dup {
			return fmt.Errorf("handler %T has more than one method for %s", h, eventType)
		}
		events[eventType] = i
	}
	if len(events) == 0 {
		return fmt.Errorf("handler %T has no event methods", h)
	}

	m.handlers = append(m.handlers, &handlerEntry{
		name:   systemName(h),
		value:  reflect.ValueOf(h),
		filter: analyzeFilter(h),
		events: events,
	})
	return nil
}

// Dispatch delivers an event to every registered handler listening for its
// type whose With/Without filter the actor passes. Handlers run in
// registration order on the calling goroutine.
func Dispatch(f *Frame, a *Actor, event any) {
	if a == nil || a.closed.Load() || a.manager == nil || event == nil {
		return
	}
	if f == nil {
		f = a.manager.Frame(nil)
	}

	eventType := reflect.TypeOf(event)
	args := []reflect.Value{reflect.ValueOf(f), reflect.ValueOf(a), reflect.ValueOf(event)}

	for _, h := range a.manager.handlers {
		idx, ok := h.events[eventType]
		if !ok || !a.passes(h.filter) {
			continue
		}
		h.value.Method(idx).Call(args)
	}
}

// PlayerHandler implements player.Handler for a player actor.
// It keeps the actor's Body in sync with the client and forwards input as
// wrapped events.
//
// Concurrency:
// Dragonfly calls handlers inside the player's world transaction, the same
// goroutine the scheduler ticks that world on, so handlers may read and
// write components freely.
type PlayerHandler struct {
	player.NopHandler
	actor *Actor
}

// NewHandler creates a new player.Handler for the given actor.
func NewHandler(a *Actor) *PlayerHandler {
	return &PlayerHandler{actor: a}
}

// Compile-time check that PlayerHandler implements player.Handler.
var _ player.Handler = (*PlayerHandler)(nil)

// Actor returns the actor associated with this handler.
func (h *PlayerHandler) Actor() *Actor {
	return h.actor
}

func (h *PlayerHandler) frame(p *player.Player) *Frame {
	return h.actor.manager.Frame(NewTxEngine(p.Tx()))
}

// HandleMove handles the player moving.
func (h *PlayerHandler) HandleMove(ctx *player.Context, newPos mgl64.Vec3, newRot cube.Rotation) {
	Dispatch(h.frame(ctx.Val()), h.actor, &EventMove{Ctx: ctx, Position: newPos, Rotation: newRot})
	if ctx.Cancelled() {
		return
	}
	if body := Get[Body](h.actor); body != nil {
		body.Position, body.Rotation = newPos, newRot
	}
}

// HandleJump handles the player jumping.
func (h *PlayerHandler) HandleJump(p *player.Player) {
	Dispatch(h.frame(p), h.actor, &EventJump{Player: p})
}

// HandleToggleSneak handles the player toggling sneak.
func (h *PlayerHandler) HandleToggleSneak(ctx *player.Context, after bool) {
	Dispatch(h.frame(ctx.Val()), h.actor, &EventToggleSneak{Ctx: ctx, After: after})
}

// HandleItemUse handles general item use.
func (h *PlayerHandler) HandleItemUse(ctx *player.Context) {
	Dispatch(h.frame(ctx.Val()), h.actor, &EventItemUse{Ctx: ctx})
}

// HandlePunchAir handles punching air.
func (h *PlayerHandler) HandlePunchAir(ctx *player.Context) {
	Dispatch(h.frame(ctx.Val()), h.actor, &EventPunchAir{Ctx: ctx})
}

// HandleAttackEntity handles attacking an entity.
func (h *PlayerHandler) HandleAttackEntity(ctx *player.Context, e world.Entity, force, height *float64, critical *bool) {
	Dispatch(h.frame(ctx.Val()), h.actor, &EventAttackEntity{
		Ctx:      ctx,
		Entity:   e,
		Target:   h.actor.manager.ActorByHandle(e.H()),
		Force:    force,
		Height:   height,
		Critical: critical,
	})
}

// HandleHurt handles the player being hurt.
func (h *PlayerHandler) HandleHurt(ctx *player.Context, damage *float64, immune bool, attackImmunity *time.Duration, src world.DamageSource) {
	Dispatch(h.frame(ctx.Val()), h.actor, &EventHurt{
		Ctx:      ctx,
		Damage:   damage,
		Immune:   immune,
		Immunity: attackImmunity,
		Source:   src,
	})
}

// HandleQuit handles a player quitting the server.
func (h *PlayerHandler) HandleQuit(p *player.Player) {
	f := h.frame(p)
	Dispatch(f, h.actor, &EventQuit{Player: p})
	h.actor.manager.Despawn(f, h.actor)
}
