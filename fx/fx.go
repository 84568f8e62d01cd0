// Package fx maps the effect names used in configuration to Dragonfly sounds
// and particles, and plays them through the engine.
package fx

import (
	"image/color"
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/particle"
	"github.com/df-mc/dragonfly/server/world/sound"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
)

var (
	red    = color.RGBA{R: 0xd0, G: 0x20, B: 0x20, A: 0xff}
	yellow = color.RGBA{R: 0xf0, G: 0xd0, B: 0x30, A: 0xff}
	white  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	cyan   = color.RGBA{R: 0x30, G: 0xd0, B: 0xf0, A: 0xff}
)

var sounds = map[string]world.Sound{
	"pop":        sound.Pop{},
	"click":      sound.Click{},
	"explosion":  sound.Explosion{},
	"item_break": sound.ItemBreak{},
	"fizz":       sound.Fizz{},
	"attack":     sound.Attack{},
	"attack_hit": sound.Attack{Damage: true},
	"burp":       sound.Burp{},
	"teleport":   sound.Teleport{},
	"bow_shoot":  sound.BowShoot{},
	"arrow_hit":  sound.ArrowHit{},
	"experience": sound.Experience{},
	"level_up":   sound.LevelUp{},
	"totem":      sound.Totem{},
	"ignite":     sound.Ignite{},
	"thunder":    sound.Thunder{},
}

var particles = map[string]world.Particle{
	"flame":          particle.Flame{},
	"flame_red":      particle.Flame{Colour: red},
	"dust_red":       particle.Dust{Colour: red},
	"dust_yellow":    particle.Dust{Colour: yellow},
	"dust_white":     particle.Dust{Colour: white},
	"dust_cyan":      particle.Dust{Colour: cyan},
	"huge_explosion": particle.HugeExplosion{},
	"lava":           particle.Lava{},
	"evaporate":      particle.Evaporate{},
	"bone_meal":      particle.BoneMeal{},
	"water_drip":     particle.WaterDrip{},
	"lava_drip":      particle.LavaDrip{},
	"entity_flame":   particle.EntityFlame{},
}

// Sound returns the sound registered under name. Names are case
// insensitive. The empty name and unknown names yield nil.
func Sound(name string) world.Sound {
	return sounds[strings.ToLower(name)]
}

// Particle returns the particle registered under name, or nil.
func Particle(name string) world.Particle {
	return particles[strings.ToLower(name)]
}

// KnownSound reports whether name is empty or a registered sound.
func KnownSound(name string) bool {
	return name == "" || Sound(name) != nil
}

// KnownParticle reports whether name is empty or a registered particle.
func KnownParticle(name string) bool {
	return name == "" || Particle(name) != nil
}

// SoundNames returns the registered sound names, sorted.
func SoundNames() []string {
	names := make([]string, 0, len(sounds))
	for name := range sounds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParticleNames returns the registered particle names, sorted.
func ParticleNames() []string {
	names := make([]string, 0, len(particles))
	for name := range particles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Play plays s at pos. A nil sound is skipped.
func Play(e riotwave.Engine, pos mgl64.Vec3, s world.Sound) {
	if e == nil || s == nil {
		return
	}
	e.PlaySound(pos, s)
}

// Show shows p at pos. A nil particle is skipped.
func Show(e riotwave.Engine, pos mgl64.Vec3, p world.Particle) {
	if e == nil || p == nil {
		return
	}
	e.AddParticle(pos, p)
}

// BeamStep is the distance between two particles of a beam.
const BeamStep = 0.5

// Beam draws p along the segment from start to end, one particle every
// BeamStep blocks, both ends included.
func Beam(e riotwave.Engine, start, end mgl64.Vec3, p world.Particle) int {
	if e == nil || p == nil {
		return 0
	}
	d := end.Sub(start)
	length := d.Len()
	steps := int(length / BeamStep)
	for i := 0; i <= steps; i++ {
		e.AddParticle(start.Add(d.Mul(float64(i)*BeamStep/max(length, BeamStep))), p)
	}
	if float64(steps)*BeamStep < length {
		e.AddParticle(end, p)
		steps++
	}
	return steps + 1
}
