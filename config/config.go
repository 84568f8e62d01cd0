// Package config loads the YAML game document: server settings, the player
// character, weapon, enemy and item definitions and the spawns of the map.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/character"
	"github.com/oriumgames/riotwave/enemy"
	"github.com/oriumgames/riotwave/pickup"
	"github.com/oriumgames/riotwave/weapon"
)

// DefaultPath is where the server looks for its configuration.
const DefaultPath = "riotwave.yaml"

// Server holds the settings of the Dragonfly server.
type Server struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	// TickRate is the interval the gameplay scheduler ticks at.
	TickRate time.Duration `yaml:"tick_rate"`
}

// Vec is a position in blocks.
type Vec [3]float64

// Vec3 converts v for use with mgl64.
func (v Vec) Vec3() mgl64.Vec3 {
	return mgl64.Vec3(v)
}

// Spawn places a named definition on the map.
type Spawn struct {
	Name     string `yaml:"name"`
	Position Vec    `yaml:"position"`
}

// Spawns lists what is placed when the world is populated.
type Spawns struct {
	Enemies []Spawn `yaml:"enemies"`
	Weapons []Spawn `yaml:"weapons"`
}

// Game is the configuration file structure.
type Game struct {
	Server  Server                           `yaml:"server"`
	Player  character.Definition             `yaml:"player"`
	Weapons map[string]weapon.Definition     `yaml:"weapons"`
	Enemies map[string]enemy.Definition      `yaml:"enemies"`
	Items   map[string]pickup.ItemDefinition `yaml:"items"`
	Spawns  Spawns                           `yaml:"spawns"`
}

// Default returns the configuration used when no file exists: one rifle
// next to spawn and two grunts dropping coins.
func Default() *Game {
	rifle := weapon.DefaultDefinition()
	grunt := enemy.DefaultDefinition()
	coin := pickup.DefaultItemDefinition()
	return &Game{
		Server: Server{
			Name:     "RiotWave",
			Address:  ":19132",
			TickRate: riotwave.DefaultTickRate,
		},
		Player:  character.DefaultDefinition(),
		Weapons: map[string]weapon.Definition{rifle.Name: rifle},
		Enemies: map[string]enemy.Definition{grunt.Name: grunt},
		Items:   map[string]pickup.ItemDefinition{coin.Name: coin},
		Spawns: Spawns{
			Enemies: []Spawn{
				{Name: grunt.Name, Position: Vec{8, 5, 8}},
				{Name: grunt.Name, Position: Vec{-8, 5, 8}},
			},
			Weapons: []Spawn{
				{Name: rifle.Name, Position: Vec{2, 5, 2}},
			},
		},
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (*Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", path, err)
	}
	return g, nil
}

// Parse decodes and validates a configuration document. Missing server
// settings fall back to their defaults and definitions without a name take
// the key they are listed under.
func Parse(data []byte) (*Game, error) {
	var g Game
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	g.fill()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Save writes g to path as YAML.
func (g *Game) Save(path string) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

func (g *Game) fill() {
	def := Default().Server
	if g.Server.Name == "" {
		g.Server.Name = def.Name
	}
	if g.Server.Address == "" {
		g.Server.Address = def.Address
	}
	if g.Server.TickRate == 0 {
		g.Server.TickRate = def.TickRate
	}
	if g.Player == (character.Definition{}) {
		g.Player = character.DefaultDefinition()
	}
	for key, d := range g.Weapons {
		if d.Name == "" {
			d.Name = key
			g.Weapons[key] = d
		}
	}
	for key, d := range g.Enemies {
		if d.Name == "" {
			d.Name = key
			g.Enemies[key] = d
		}
	}
	for key, d := range g.Items {
		if d.Name == "" {
			d.Name = key
			g.Items[key] = d
		}
	}
}

// Validate checks every definition and every reference between them. All
// problems are reported at once.
func (g *Game) Validate() error {
	var errs []error
	if g.Server.TickRate < 0 {
		errs = append(errs, fmt.Errorf("server: tick_rate must be >= 0, got %v", g.Server.TickRate))
	}
	if err := g.Player.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("player: %w", err))
	}
	for _, key := range slices.Sorted(maps.Keys(g.Weapons)) {
		if err := g.Weapons[key].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("weapon %s: %w", key, err))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(g.Items)) {
		if err := g.Items[key].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("item %s: %w", key, err))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(g.Enemies)) {
		d := g.Enemies[key]
		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("enemy %s: %w", key, err))
		}
		if _, ok := g.Items[d.Drop]; d.Drop != "" && !ok {
			errs = append(errs, fmt.Errorf("enemy %s: unknown drop %q", key, d.Drop))
		}
	}
	for i, s := range g.Spawns.Enemies {
		if _, ok := g.Enemies[s.Name]; !ok {
			errs = append(errs, fmt.Errorf("spawns.enemies[%d]: unknown enemy %q", i, s.Name))
		}
	}
	for i, s := range g.Spawns.Weapons {
		if _, ok := g.Weapons[s.Name]; !ok {
			errs = append(errs, fmt.Errorf("spawns.weapons[%d]: unknown weapon %q", i, s.Name))
		}
	}
	return errors.Join(errs...)
}

// Weapon returns the weapon definition with the given name.
func (g *Game) Weapon(name string) (weapon.Definition, bool) {
	d, ok := g.Weapons[name]
	return d, ok
}

// Enemy returns the enemy definition with the given name.
func (g *Game) Enemy(name string) (enemy.Definition, bool) {
	d, ok := g.Enemies[name]
	return d, ok
}

// Drop returns the item an enemy drops on death, or nil if it drops
// nothing.
func (g *Game) Drop(d enemy.Definition) *pickup.ItemDefinition {
	item, ok := g.Items[d.Drop]
	if !ok {
		return nil
	}
	return &item
}

// WeaponNames returns the configured weapon names in order.
func (g *Game) WeaponNames() []string {
	return slices.Sorted(maps.Keys(g.Weapons))
}

// EnemyNames returns the configured enemy names in order.
func (g *Game) EnemyNames() []string {
	return slices.Sorted(maps.Keys(g.Enemies))
}
