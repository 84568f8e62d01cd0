package riotwave

import (
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/player/skin"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
)

// Frame is the context of one unit of gameplay work: a scheduler tick or a
// single engine callback.
type Frame struct {
	Now   time.Time
	Delta time.Duration
	Tick  uint64

	Engine  Engine
	Manager *Manager
}

// Engine is the part of the game engine gameplay code talks to. Sounds and
// particles with a nil value are skipped by callers, not by the engine.
type Engine interface {
	PlaySound(pos mgl64.Vec3, s world.Sound)
	AddParticle(pos mgl64.Vec3, p world.Particle)

	// Puppet resolves the engine entity of an actor. It never returns nil;
	// actors without a live entity get a puppet that ignores every call.
	Puppet(a *Actor) Puppet

	// SpawnNPC adds a humanoid entity to the world and returns its handle.
	SpawnNPC(name string, pos mgl64.Vec3, rot cube.Rotation) *world.EntityHandle

	// Solid reports whether the block at pos stops bullets and falling items.
	Solid(pos cube.Pos) bool
}

// Puppet is the engine-side representation of an actor.
type Puppet interface {
	Teleport(pos mgl64.Vec3)
	Face(rot cube.Rotation)
	SetVisible(visible bool)
	SetInputEnabled(enabled bool)
	Hold(it world.Item)
	SwingArm()
	Tip(text string)
	// Hurt plays the engine's hurt feedback. The damage itself is tracked by
	// gameplay components.
	Hurt(src world.DamageSource)
	// Bind routes the entity's engine callbacks to a.
	Bind(a *Actor)
	Remove()
}

// TxEngine implements Engine over a Dragonfly world transaction.
type TxEngine struct {
	tx *world.Tx
}

// NewTxEngine wraps a transaction. The engine must not outlive it.
func NewTxEngine(tx *world.Tx) TxEngine {
	return TxEngine{tx: tx}
}

// PlaySound plays a sound for all viewers of pos.
func (e TxEngine) PlaySound(pos mgl64.Vec3, s world.Sound) {
	e.tx.PlaySound(pos, s)
}

// AddParticle shows a particle for all viewers of pos.
func (e TxEngine) AddParticle(pos mgl64.Vec3, p world.Particle) {
	e.tx.AddParticle(pos, p)
}

// Puppet resolves the actor's player entity in the transaction.
func (e TxEngine) Puppet(a *Actor) Puppet {
	if a == nil || a.handle == nil {
		return NopPuppet{}
	}
	ent, ok := a.handle.Entity(e.tx)
	if !ok {
		return NopPuppet{}
	}
	p, ok := ent.(*player.Player)
	if !ok {
		return NopPuppet{}
	}
	return playerPuppet{p: p, tx: e.tx}
}

// SpawnNPC adds a session-less player entity to the transaction's world.
func (e TxEngine) SpawnNPC(name string, pos mgl64.Vec3, rot cube.Rotation) *world.EntityHandle {
	opts := world.EntitySpawnOpts{Position: pos, Rotation: rot}
	h := opts.New(player.Type, player.Config{Name: name, Skin: skin.New(64, 64)})
	e.tx.AddEntity(h)
	return h
}

// Solid reports whether the block at pos has a collision box. Air and
// pass-through blocks such as grass or torches are not solid.
func (e TxEngine) Solid(pos cube.Pos) bool {
	return solid(e.tx.Block(pos), pos, e.tx)
}

func solid(b world.Block, pos cube.Pos, src world.BlockSource) bool {
	return len(b.Model().BBox(pos, src)) > 0
}

// playerPuppet drives a player entity, real or NPC.
type playerPuppet struct {
	p  *player.Player
	tx *world.Tx
}

func (pp playerPuppet) Teleport(pos mgl64.Vec3) { pp.p.Teleport(pos) }

func (pp playerPuppet) Face(rot cube.Rotation) {
	cur := pp.p.Rotation()
	pp.p.Move(mgl64.Vec3{}, rot.Yaw()-cur.Yaw(), rot.Pitch()-cur.Pitch())
}

func (pp playerPuppet) SetVisible(visible bool) {
	if visible {
		pp.p.SetVisible()
		return
	}
	pp.p.SetInvisible()
}

func (pp playerPuppet) SetInputEnabled(enabled bool) {
	if enabled {
		pp.p.SetMobile()
		return
	}
	pp.p.SetImmobile()
}

func (pp playerPuppet) Hold(it world.Item) {
	_, off := pp.p.HeldItems()
	pp.p.SetHeldItems(item.NewStack(it, 1), off)
}

func (pp playerPuppet) SwingArm() { pp.p.SwingArm() }

func (pp playerPuppet) Tip(text string) { pp.p.SendTip(text) }

func (pp playerPuppet) Hurt(src world.DamageSource) { pp.p.Hurt(0, src) }

func (pp playerPuppet) Bind(a *Actor) { pp.p.Handle(NewHandler(a)) }

func (pp playerPuppet) Remove() { pp.tx.RemoveEntity(pp.p) }

// NopPuppet ignores every call.
type NopPuppet struct{}

func (NopPuppet) Teleport(mgl64.Vec3)     {}
func (NopPuppet) Face(cube.Rotation)      {}
func (NopPuppet) SetVisible(bool)         {}
func (NopPuppet) SetInputEnabled(bool)    {}
func (NopPuppet) Hold(world.Item)         {}
func (NopPuppet) SwingArm()               {}
func (NopPuppet) Tip(string)              {}
func (NopPuppet) Hurt(world.DamageSource) {}
func (NopPuppet) Bind(*Actor)             {}
func (NopPuppet) Remove()                 {}

// NopEngine is a headless engine: no sounds, no particles, no entities and
// no solid blocks.
type NopEngine struct{}

func (NopEngine) PlaySound(mgl64.Vec3, world.Sound)      {}
func (NopEngine) AddParticle(mgl64.Vec3, world.Particle) {}
func (NopEngine) Puppet(*Actor) Puppet                   { return NopPuppet{} }
func (NopEngine) Solid(cube.Pos) bool                    { return false }
func (NopEngine) SpawnNPC(string, mgl64.Vec3, cube.Rotation) *world.EntityHandle {
	return nil
}
