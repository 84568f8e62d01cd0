// Package enemy implements melee enemies: they patrol between two points,
// chase players that come close and hit those in reach on a fixed rhythm.
package enemy

import (
	"slices"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/pickup"
	"github.com/oriumgames/riotwave/volume"
)

// Brain is the AI state of an enemy.
//
// Aggro is set while a player is inside the aggro sphere, InCombatRange while
// one is inside the combat sphere. Target is the player last seen entering.
type Brain struct {
	Aggro         bool
	InCombatRange bool
	Target        riotwave.Relation[combat.Health]

	def    Definition
	patrol [2]mgl64.Vec3
	leg    int

	outer volume.Tracker
	inner volume.Tracker

	lastSwing  time.Time
	swings     int
	windowOpen bool
	struck     []*riotwave.Actor

	attackSound world.Sound
	deathSound  world.Sound
	drop        *pickup.ItemDefinition
}

// Definition returns the definition the enemy was spawned from.
func (b *Brain) Definition() Definition {
	return b.def
}

// Swings returns the number of attacks started.
func (b *Brain) Swings() int {
	return b.swings
}

// WindowOpen reports whether the current swing can still deal damage.
func (b *Brain) WindowOpen() bool {
	return b.windowOpen
}

// PatrolPoint returns the patrol point the enemy is walking to.
func (b *Brain) PatrolPoint() mgl64.Vec3 {
	return b.patrol[b.leg]
}

// Spawn creates an enemy at pos backed by an engine NPC. drop is spawned
// where the enemy dies; nil drops nothing.
func Spawn(f *riotwave.Frame, def Definition, pos mgl64.Vec3, drop *pickup.ItemDefinition) *riotwave.Actor {
	a := f.Manager.Spawn(riotwave.ActorConfig{
		Kind:     riotwave.KindEnemy,
		Handle:   f.Engine.SpawnNPC(def.Name, pos, cube.Rotation{}),
		Position: pos,
	})
	riotwave.Add(a, combat.NewHealth(def.MaxHealth))
	riotwave.Add(a, &combat.Impact{
		Sound:    fx.Sound(def.ImpactSound),
		Particle: fx.Particle(def.ImpactParticle),
	})
	b := &Brain{
		def:         def,
		attackSound: fx.Sound(def.AttackSound),
		deathSound:  fx.Sound(def.DeathSound),
		drop:        drop,
	}
	for i, off := range def.Patrol {
		b.patrol[i] = pos.Add(mgl64.Vec3(off))
	}
	if start := b.patrol[0]; start.X() == pos.X() && start.Z() == pos.Z() {
		b.leg = 1
	}
	riotwave.Add(a, b)

	f.Engine.Puppet(a).Bind(a)
	f.Manager.Log().Debug("enemy spawned", "actor", a.Name(), "enemy", def.Name, "pos", pos)
	return a
}

// livePlayers returns the player actors that are alive.
func livePlayers(m *riotwave.Manager) []*riotwave.Actor {
	var out []*riotwave.Actor
	for _, a := range m.Actors() {
		if a.Kind() == riotwave.KindPlayer && combat.Alive(a) {
			out = append(out, a)
		}
	}
	return out
}

// perceptionLoop updates the aggro and combat spheres.
type perceptionLoop struct {
	_ riotwave.With[Brain]
}

func (perceptionLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	b := riotwave.Get[Brain](a)
	center := riotwave.MustGet[riotwave.Body](a).Center()
	players := livePlayers(f.Manager)
	wasAggro := b.Aggro

	entered, _ := b.outer.Update(players, volume.Sphere(center, b.def.AggroRadius))
	for _, p := range entered {
		b.Target.Set(p)
	}
	b.Aggro = b.outer.Len() > 0
	if t := b.Target.Get(); b.Aggro && !b.outer.Contains(t) {
		b.Target.Set(b.outer.Inside()[0])
	}

	b.inner.Update(players, volume.Sphere(center, b.def.CombatRadius))
	b.InCombatRange = b.inner.Len() > 0

	if b.Aggro != wasAggro {
		riotwave.Dispatch(f, a, &EventAggro{Aggro: b.Aggro, Target: b.Target.Get()})
	}
}

// movementLoop walks the patrol route, or chases the target while aggro.
type movementLoop struct {
	_ riotwave.With[Brain]
}

func (movementLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	b := riotwave.Get[Brain](a)
	body := riotwave.MustGet[riotwave.Body](a)
	dt := f.Delta.Seconds()
	if dt <= 0 {
		dt = riotwave.DefaultTickRate.Seconds()
	}
	step := b.def.Speed * min(dt, 0.1)
	before := body.Position

	target, _, ok := riotwave.Resolve(&b.Target)
	switch {
	case b.Aggro && ok:
		targetBody := riotwave.MustGet[riotwave.Body](target)
		if !b.InCombatRange {
			moveTowards(body, targetBody.Position, step)
		}
		body.Rotation = riotwave.LookAt(body.Eye(), targetBody.Eye())
	case !b.Aggro:
		goal := b.patrol[b.leg]
		if moveTowards(body, goal, step) {
			b.leg = 1 - b.leg
		}
		if body.Position != before {
			body.Rotation = cube.Rotation{riotwave.LookAt(before, body.Position).Yaw(), 0}
		}
	}

	puppet := f.Engine.Puppet(a)
	if body.Position != before {
		puppet.Teleport(body.Position)
	}
	puppet.Face(body.Rotation)
}

// moveTowards moves body horizontally by at most step towards goal and
// reports whether it arrived.
func moveTowards(body *riotwave.Body, goal mgl64.Vec3, step float64) bool {
	d := goal.Sub(body.Position)
	d[1] = 0
	dist := d.Len()
	if dist <= step {
		body.Position[0], body.Position[2] = goal.X(), goal.Z()
		return true
	}
	body.Position = body.Position.Add(d.Mul(step / dist))
	return false
}

// attackLoop swings at the target while it is in combat range and deals
// damage while a swing's window is open.
type attackLoop struct {
	_ riotwave.With[Brain]
}

func (attackLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	b := riotwave.Get[Brain](a)
	if b.windowOpen {
		b.sweep(f, a)
	}
	if !b.InCombatRange {
		return
	}
	if _, h, ok := riotwave.Resolve(&b.Target); !ok || h.Dead() {
		return
	}
	if !b.lastSwing.IsZero() && f.Now.Sub(b.lastSwing) < b.def.AttackInterval {
		return
	}
	b.swing(f, a)
}

// swing starts an attack. The damage window opens after the wind-up and
// stays open for the damage window duration.
func (b *Brain) swing(f *riotwave.Frame, a *riotwave.Actor) {
	b.lastSwing = f.Now
	b.swings++
	b.struck = b.struck[:0]
	f.Engine.Puppet(a).SwingArm()
	riotwave.Dispatch(f, a, &EventSwing{Swing: b.swings})

	riotwave.Schedule(a, b.def.WindUp, func(f *riotwave.Frame) {
		b.windowOpen = true
		b.sweep(f, a)
		riotwave.Schedule(a, b.def.DamageWindow, func(*riotwave.Frame) {
			b.windowOpen = false
		})
	})
}

// DamageBox returns the world-space box hit by a swing: Reach deep and wide,
// directly in front of the body.
func (b *Brain) DamageBox(body *riotwave.Body) cube.BBox {
	half := b.def.Reach / 2
	forward := riotwave.Direction(cube.Rotation{body.Rotation.Yaw(), 0})
	c := body.Position.Add(forward.Mul(half))
	return cube.Box(c.X()-half, c.Y(), c.Z()-half, c.X()+half, c.Y()+body.Box.Max().Y()-body.Box.Min().Y(), c.Z()+half)
}

// sweep damages every living player in the damage box that was not hit by
// the current swing yet.
func (b *Brain) sweep(f *riotwave.Frame, a *riotwave.Actor) {
	body := riotwave.Get[riotwave.Body](a)
	if body == nil {
		return
	}
	inReach := volume.Box(b.DamageBox(body))
	for _, p := range livePlayers(f.Manager) {
		if slices.Contains(b.struck, p) || !inReach(p) {
			continue
		}
		b.struck = append(b.struck, p)
		if _, err := combat.ApplyDamage(f, p, b.def.MeleeDamage, combat.Source{Attacker: a, Kind: combat.KindMelee}); err != nil {
			continue
		}
		fx.Play(f.Engine, riotwave.MustGet[riotwave.Body](p).Position, b.attackSound)
	}
}

// lifeHandler handles the engine side of an enemy's life.
type lifeHandler struct {
	_ riotwave.With[Brain]
}

// HandleDeath plays the death sound, drops the loot and removes the enemy.
func (lifeHandler) HandleDeath(f *riotwave.Frame, a *riotwave.Actor, e *combat.EventDeath) {
	b := riotwave.Get[Brain](a)
	body := riotwave.MustGet[riotwave.Body](a)
	fx.Play(f.Engine, body.Position, b.deathSound)
	if b.drop != nil {
		pickup.SpawnCollectible(f, *b.drop, body.Position.Add(mgl64.Vec3{0, 0.5, 0}))
	}

	attacker := "none"
	if e.Source.Attacker != nil {
		attacker = e.Source.Attacker.Name()
	}
	f.Manager.Log().Info("enemy killed", "actor", a.Name(), "enemy", b.def.Name, "by", attacker)
	f.Manager.Despawn(f, a)
}

// HandleHurt keeps the engine from applying its own damage to the NPC. Hurt
// feedback played by combat passes through with no damage.
func (lifeHandler) HandleHurt(_ *riotwave.Frame, _ *riotwave.Actor, e *riotwave.EventHurt) {
	if _, ok := e.Source.(combat.DragonflySource); ok {
		*e.Damage = 0
		return
	}
	e.Cancel()
}

// EventAggro is dispatched on an enemy when Aggro changes.
type EventAggro struct {
	Aggro  bool
	Target *riotwave.Actor
}

// EventSwing is dispatched on an enemy when it starts an attack.
type EventSwing struct {
	Swing int
}

// NewBundle returns the enemy bundle.
func NewBundle() *riotwave.Bundle {
	return riotwave.NewBundle("enemy").
		Handler(&lifeHandler{}).
		Loop(&perceptionLoop{}, 0, riotwave.PreUpdate).
		Loop(&movementLoop{}, 0, riotwave.Update).
		Loop(&attackLoop{}, 0, riotwave.Update)
}
