package riotwave

import (
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Event types wrap Dragonfly handler parameters.
// Gameplay handlers depend on these instead of Dragonfly's handler
// signatures.

// EventMove is emitted when a player moves. The player's Body is updated
// after dispatch unless the move was cancelled.
type EventMove struct {
	Ctx      *player.Context
	Position mgl64.Vec3
	Rotation cube.Rotation
}

func (e *EventMove) Cancel() { e.Ctx.Cancel() }

// EventJump is emitted when a player jumps.
type EventJump struct {
	Player *player.Player
}

// EventToggleSneak is emitted when a player toggles sneaking.
type EventToggleSneak struct {
	Ctx   *player.Context
	After bool
}

func (e *EventToggleSneak) Cancel() { e.Ctx.Cancel() }

// EventItemUse is emitted when a player uses the held item.
type EventItemUse struct {
	Ctx *player.Context
}

func (e *EventItemUse) Cancel() { e.Ctx.Cancel() }

// EventPunchAir is emitted when a player swings at nothing.
type EventPunchAir struct {
	Ctx *player.Context
}

func (e *EventPunchAir) Cancel() { e.Ctx.Cancel() }

// EventAttackEntity is emitted when a player hits an entity in melee.
type EventAttackEntity struct {
	Ctx    *player.Context
	Entity world.Entity
	// Target is the actor backing Entity, nil if the entity is not an actor.
	Target   *Actor
	Force    *float64
	Height   *float64
	Critical *bool
}

func (e *EventAttackEntity) Cancel() { e.Ctx.Cancel() }

// EventHurt is emitted when the engine is about to hurt a player.
type EventHurt struct {
	Ctx      *player.Context
	Damage   *float64
	Immune   bool
	Immunity *time.Duration
	Source   world.DamageSource
}

func (e *EventHurt) Cancel() { e.Ctx.Cancel() }

// EventQuit is emitted when a player quits. The actor is despawned right
// after dispatch.
type EventQuit struct {
	Player *player.Player
}
