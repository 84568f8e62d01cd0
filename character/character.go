// Package character assembles player characters and handles their death,
// respawn and heads-up display.
package character

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/df-mc/dragonfly/server/world"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/input"
	"github.com/oriumgames/riotwave/pickup"
	"github.com/oriumgames/riotwave/weapon"
)

// ErrNotDead is returned when respawning a living character.
var ErrNotDead = errors.New("character: not dead")

// HUDInterval is how often the heads-up display is refreshed.
const HUDInterval = 500 * time.Millisecond

// Definition is the configured form of a player character.
type Definition struct {
	MaxHealth      float64 `yaml:"max_health"`
	EyeHeight      float64 `yaml:"eye_height"`
	ImpactSound    string  `yaml:"impact_sound"`
	ImpactParticle string  `yaml:"impact_particle"`
	DeathSound     string  `yaml:"death_sound"`
	RespawnSound   string  `yaml:"respawn_sound"`
	// EnvironmentDamageScale converts engine damage (half hearts) from falls,
	// lava and the like into health.
	EnvironmentDamageScale float64 `yaml:"environment_damage_scale"`
}

// DefaultDefinition returns the stock player character.
func DefaultDefinition() Definition {
	return Definition{
		MaxHealth:              25000,
		EyeHeight:              riotwave.DefaultEyeHeight,
		ImpactSound:            "attack_hit",
		ImpactParticle:         "dust_red",
		DeathSound:             "item_break",
		RespawnSound:           "totem",
		EnvironmentDamageScale: 1250,
	}
}

// Validate checks the definition for values that cannot work.
func (d Definition) Validate() error {
	var errs []error
	if d.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("max_health must be > 0, got %v", d.MaxHealth))
	}
	if d.EyeHeight < 0 {
		errs = append(errs, fmt.Errorf("eye_height must be >= 0, got %v", d.EyeHeight))
	}
	if d.EnvironmentDamageScale < 0 {
		errs = append(errs, fmt.Errorf("environment_damage_scale must be >= 0, got %v", d.EnvironmentDamageScale))
	}
	for _, name := range []string{d.ImpactSound, d.DeathSound, d.RespawnSound} {
		if !fx.KnownSound(name) {
			errs = append(errs, fmt.Errorf("unknown sound %q", name))
		}
	}
	if !fx.KnownParticle(d.ImpactParticle) {
		errs = append(errs, fmt.Errorf("unknown particle %q", d.ImpactParticle))
	}
	return errors.Join(errs...)
}

// Character marks a player character.
type Character struct {
	def    Definition
	deaths int

	deathSound   world.Sound
	respawnSound world.Sound
}

// Deaths returns how often the character died.
func (c *Character) Deaths() int {
	return c.deaths
}

// New spawns a player character with every component it needs: health,
// impact feedback, weapon handling, an input controller and an inventory.
// The character is possessed right away.
func New(m *riotwave.Manager, cfg riotwave.ActorConfig, def Definition) *riotwave.Actor {
	cfg.Kind = riotwave.KindPlayer
	if cfg.EyeHeight == 0 {
		cfg.EyeHeight = def.EyeHeight
	}
	a := m.Spawn(cfg)
	riotwave.Add(a, &Character{
		def:          def,
		deathSound:   fx.Sound(def.DeathSound),
		respawnSound: fx.Sound(def.RespawnSound),
	})
	riotwave.Add(a, combat.NewHealth(def.MaxHealth))
	riotwave.Add(a, &combat.Impact{Sound: fx.Sound(def.ImpactSound), Particle: fx.Particle(def.ImpactParticle)})
	riotwave.Add(a, weapon.NewHandling())
	riotwave.Add(a, input.NewController())
	riotwave.Add(a, pickup.NewInventory())
	input.Possess(a)
	return a
}

// Respawn revives a dead character and gives control back to the player.
func Respawn(f *riotwave.Frame, a *riotwave.Actor) error {
	c := riotwave.Get[Character](a)
	h := riotwave.Get[combat.Health](a)
	if c == nil || h == nil {
		return combat.ErrNotDamageable
	}
	if !h.Dead() {
		return ErrNotDead
	}
	if err := combat.Revive(f, a); err != nil {
		return err
	}
	riotwave.MustGet[input.Controller](a).Enable()

	puppet := f.Engine.Puppet(a)
	puppet.SetVisible(true)
	puppet.SetInputEnabled(true)
	fx.Play(f.Engine, riotwave.MustGet[riotwave.Body](a).Position, c.respawnSound)
	f.Manager.Log().Info("character respawned", "actor", a.Name())
	return nil
}

// HUD renders the heads-up display of a character.
func HUD(a *riotwave.Actor) string {
	h := riotwave.Get[combat.Health](a)
	if h == nil {
		return ""
	}
	if h.Dead() {
		return "You died. Use /respawn to get back in."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HP %.0f/%.0f", h.Current, h.Max)
	if w := riotwave.Get[weapon.Handling](a); w != nil && w.Equipped() {
		fmt.Fprintf(&b, " | %s", w.Properties().Name)
	}
	if inv := riotwave.Get[pickup.Inventory](a); inv != nil {
		for _, name := range inv.Names() {
			fmt.Fprintf(&b, " | %s x%d", name, inv.Count(name))
		}
	}
	return b.String()
}

// hudLoop keeps the tip text of every character current.
type hudLoop struct {
	_ riotwave.With[Character]
}

func (hudLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	f.Engine.Puppet(a).Tip(HUD(a))
}

// lifeHandler handles character death and damage coming from the engine.
type lifeHandler struct {
	_ riotwave.With[Character]
}

// HandleDeath takes control away from the player and hides the body until
// the character respawns.
func (lifeHandler) HandleDeath(f *riotwave.Frame, a *riotwave.Actor, e *combat.EventDeath) {
	c := riotwave.Get[Character](a)
	c.deaths++
	riotwave.MustGet[input.Controller](a).Disable()

	puppet := f.Engine.Puppet(a)
	puppet.SetInputEnabled(false)
	puppet.SetVisible(false)
	puppet.Tip(HUD(a))
	fx.Play(f.Engine, riotwave.MustGet[riotwave.Body](a).Position, c.deathSound)

	killer := e.Source.Kind.String()
	if e.Source.Attacker != nil {
		killer = e.Source.Attacker.Name()
	}
	f.Manager.Log().Info("character died", "actor", a.Name(), "by", killer, "deaths", c.deaths)
}

// HandleHurt routes engine damage through character health. Hurt feedback
// played by combat passes through without damage.
func (lifeHandler) HandleHurt(f *riotwave.Frame, a *riotwave.Actor, e *riotwave.EventHurt) {
	if _, ok := e.Source.(combat.DragonflySource); ok {
		*e.Damage = 0
		return
	}
	e.Cancel()
	if e.Immune || e.Damage == nil {
		return
	}
	c := riotwave.Get[Character](a)
	amount := *e.Damage * c.def.EnvironmentDamageScale
	if _, err := combat.ApplyDamage(f, a, amount, combat.Source{Kind: combat.KindEnvironment}); err != nil && !errors.Is(err, combat.ErrAlreadyDead) {
		f.Manager.Log().Debug("environment damage rejected", "actor", a.Name(), "err", err)
	}
}

// NewBundle returns the character bundle.
func NewBundle() *riotwave.Bundle {
	return riotwave.NewBundle("character").
		Handler(&lifeHandler{}).
		Loop(&hudLoop{}, HUDInterval, riotwave.PostUpdate)
}
