// Package enginetest provides a recording riotwave.Engine for tests.
package enginetest

import (
	"fmt"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
)

// Sound is a recorded PlaySound call.
type Sound struct {
	Pos   mgl64.Vec3
	Sound world.Sound
}

// Particle is a recorded AddParticle call.
type Particle struct {
	Pos      mgl64.Vec3
	Particle world.Particle
}

// Engine records every call made through it. Solid blocks are configured
// with SetSolid or Floor.
type Engine struct {
	mu sync.Mutex

	Sounds    []Sound
	Particles []Particle
	NPCs      []string

	puppets map[*riotwave.Actor]*Puppet
	solid   map[cube.Pos]bool
	floorY  *int
}

// New returns an empty recording engine.
func New() *Engine {
	return &Engine{
		puppets: make(map[*riotwave.Actor]*Puppet),
		solid:   make(map[cube.Pos]bool),
	}
}

func (e *Engine) PlaySound(pos mgl64.Vec3, s world.Sound) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Sounds = append(e.Sounds, Sound{Pos: pos, Sound: s})
}

func (e *Engine) AddParticle(pos mgl64.Vec3, p world.Particle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Particles = append(e.Particles, Particle{Pos: pos, Particle: p})
}

// Puppet returns the recording puppet of a, created on first use.
func (e *Engine) Puppet(a *riotwave.Actor) riotwave.Puppet {
	return e.PuppetOf(a)
}

// PuppetOf is Puppet with the concrete type, for assertions.
func (e *Engine) PuppetOf(a *riotwave.Actor) *Puppet {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.puppets[a]
	if !ok {
		p = &Puppet{Visible: true, InputEnabled: true}
		e.puppets[a] = p
	}
	return p
}

// SpawnNPC records the name. No entity exists, so the handle is nil.
func (e *Engine) SpawnNPC(name string, _ mgl64.Vec3, _ cube.Rotation) *world.EntityHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.NPCs = append(e.NPCs, name)
	return nil
}

func (e *Engine) Solid(pos cube.Pos) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.floorY != nil && pos.Y() <= *e.floorY {
		return true
	}
	return e.solid[pos]
}

// SetSolid marks a single block solid.
func (e *Engine) SetSolid(pos cube.Pos) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.solid[pos] = true
}

// Floor makes every block at or below y solid.
func (e *Engine) Floor(y int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.floorY = &y
}

// SoundCount counts recorded plays of s.
func (e *Engine) SoundCount(s world.Sound) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, rec := range e.Sounds {
		if rec.Sound == s {
			n++
		}
	}
	return n
}

// ParticleCount counts recorded particles equal to p.
func (e *Engine) ParticleCount(p world.Particle) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, rec := range e.Particles {
		if rec.Particle == p {
			n++
		}
	}
	return n
}

// Reset drops every recorded sound and particle.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Sounds, e.Particles = nil, nil
}

// Puppet records the state an engine entity would be left in.
type Puppet struct {
	Position     mgl64.Vec3
	Rotation     cube.Rotation
	Visible      bool
	InputEnabled bool
	Held         world.Item
	Swings       int
	Hurts        int
	Tips         []string
	Bound        *riotwave.Actor
	Removed      bool
}

func (p *Puppet) Teleport(pos mgl64.Vec3)      { p.Position = pos }
func (p *Puppet) Face(rot cube.Rotation)       { p.Rotation = rot }
func (p *Puppet) SetVisible(visible bool)      { p.Visible = visible }
func (p *Puppet) SetInputEnabled(enabled bool) { p.InputEnabled = enabled }
func (p *Puppet) Hold(it world.Item)           { p.Held = it }
func (p *Puppet) SwingArm()                    { p.Swings++ }
func (p *Puppet) Tip(text string)              { p.Tips = append(p.Tips, text) }
func (p *Puppet) Hurt(world.DamageSource)      { p.Hurts++ }
func (p *Puppet) Bind(a *riotwave.Actor)       { p.Bound = a }
func (p *Puppet) Remove()                      { p.Removed = true }

// LastTip returns the most recent tip, or "".
func (p *Puppet) LastTip() string {
	if len(p.Tips) == 0 {
		return ""
	}
	return p.Tips[len(p.Tips)-1]
}

func (p *Puppet) String() string {
	return fmt.Sprintf("Puppet{Position: %v, Visible: %v, InputEnabled: %v, Removed: %v}", p.Position, p.Visible, p.InputEnabled, p.Removed)
}

// Frame returns a frame over e for manual calls outside of a tick.
func Frame(m *riotwave.Manager, e *Engine) *riotwave.Frame {
	return m.Frame(e)
}
