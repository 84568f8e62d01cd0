package enemy

import (
	"errors"
	"fmt"
	"time"

	"github.com/oriumgames/riotwave/fx"
)

// Definition is the configured form of an enemy.
type Definition struct {
	Name      string  `yaml:"name"`
	MaxHealth float64 `yaml:"max_health"`

	AggroRadius  float64 `yaml:"aggro_radius"`
	CombatRadius float64 `yaml:"combat_radius"`

	MeleeDamage    float64       `yaml:"melee_damage"`
	AttackInterval time.Duration `yaml:"attack_interval"`
	// WindUp is the delay between the swing and the damage window opening.
	WindUp       time.Duration `yaml:"wind_up"`
	DamageWindow time.Duration `yaml:"damage_window"`
	// Reach is the depth and width of the damage box in front of the enemy.
	Reach float64 `yaml:"reach"`

	// Speed is the walking speed in blocks per second.
	Speed float64 `yaml:"speed"`
	// Patrol holds the two patrol points as offsets from the spawn position.
	Patrol [2][3]float64 `yaml:"patrol"`

	ImpactSound    string `yaml:"impact_sound"`
	ImpactParticle string `yaml:"impact_particle"`
	AttackSound    string `yaml:"attack_sound"`
	DeathSound     string `yaml:"death_sound"`
	// Drop names the item dropped on death. Empty drops nothing.
	Drop string `yaml:"drop"`
}

// DefaultDefinition returns the stock melee grunt.
func DefaultDefinition() Definition {
	return Definition{
		Name:           "grunt",
		MaxHealth:      500,
		AggroRadius:    3,
		CombatRadius:   2.5,
		MeleeDamage:    1500,
		AttackInterval: 1200 * time.Millisecond,
		WindUp:         200 * time.Millisecond,
		DamageWindow:   300 * time.Millisecond,
		Reach:          3,
		Speed:          3,
		Patrol:         [2][3]float64{{0, 0, 0}, {5, 0, 0}},
		ImpactSound:    "attack_hit",
		ImpactParticle: "flame_red",
		AttackSound:    "attack",
		DeathSound:     "fizz",
		Drop:           "coin",
	}
}

// Validate checks the definition for values that cannot work.
func (d Definition) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.MaxHealth <= 0 {
		errs = append(errs, fmt.Errorf("max_health must be > 0, got %v", d.MaxHealth))
	}
	if d.CombatRadius < 0 || d.AggroRadius < 0 {
		errs = append(errs, fmt.Errorf("radii must be >= 0, got %v/%v", d.AggroRadius, d.CombatRadius))
	}
	if d.CombatRadius > d.AggroRadius {
		errs = append(errs, fmt.Errorf("combat_radius %v exceeds aggro_radius %v", d.CombatRadius, d.AggroRadius))
	}
	if d.MeleeDamage < 0 {
		errs = append(errs, fmt.Errorf("melee_damage must be >= 0, got %v", d.MeleeDamage))
	}
	if d.AttackInterval <= 0 {
		errs = append(errs, fmt.Errorf("attack_interval must be > 0, got %v", d.AttackInterval))
	}
	if d.WindUp < 0 || d.DamageWindow < 0 {
		errs = append(errs, fmt.Errorf("wind_up and damage_window must be >= 0, got %v/%v", d.WindUp, d.DamageWindow))
	}
	if d.Speed < 0 {
		errs = append(errs, fmt.Errorf("speed must be >= 0, got %v", d.Speed))
	}
	for _, name := range []string{d.ImpactSound, d.AttackSound, d.DeathSound} {
		if !fx.KnownSound(name) {
			errs = append(errs, fmt.Errorf("unknown sound %q", name))
		}
	}
	if !fx.KnownParticle(d.ImpactParticle) {
		errs = append(errs, fmt.Errorf("unknown particle %q", d.ImpactParticle))
	}
	return errors.Join(errs...)
}
