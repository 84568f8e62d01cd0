package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

const arenaYAML = `
server:
  name: Arena
  address: ":19133"
  tick_rate: 100ms
weapons:
  shotgun:
    damage: 300
    headshot_multiplier: 1.5
    muzzle_flash: flame
    impact: lava
    beam: dust_red
    fire_sound: bow_shoot
    pickup_sound: pop
    fire_interval: 900ms
    range: 30
    pickup_radius: 1
enemies:
  brute:
    max_health: 2000
    aggro_radius: 6
    combat_radius: 2
    melee_damage: 4000
    attack_interval: 2s
    wind_up: 400ms
    damage_window: 200ms
    reach: 2
    speed: 1.5
    patrol: [[0, 0, 0], [0, 0, 10]]
    impact_sound: attack_hit
    impact_particle: flame_red
    attack_sound: attack
    death_sound: fizz
    drop: gem
items:
  gem:
    pickup_sound: experience
    drop_sound: pop
    marker: dust_yellow
    radius: 0.5
    impulse: 1
    lift: 3
spawns:
  enemies:
    - name: brute
      position: [4, 10, 4]
  weapons:
    - name: shotgun
      position: [0, 10, 2]
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riotwave.yaml")
	if err := os.WriteFile(path, []byte(arenaYAML), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	g, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if g.Server.Name != "Arena" || g.Server.Address != ":19133" || g.Server.TickRate != 100*time.Millisecond {
		t.Errorf("unexpected server settings %+v", g.Server)
	}
	if g.Player.MaxHealth != 25000 {
		t.Errorf("expected the default player, got %+v", g.Player)
	}

	shotgun, ok := g.Weapon("shotgun")
	if !ok {
		t.Fatal("shotgun not found")
	}
	if shotgun.Name != "shotgun" {
		t.Errorf("expected the key as name, got %q", shotgun.Name)
	}
	if shotgun.FireInterval != 900*time.Millisecond {
		t.Errorf("expected a 900ms fire interval, got %v", shotgun.FireInterval)
	}

	brute, ok := g.Enemy("brute")
	if !ok {
		t.Fatal("brute not found")
	}
	if brute.AttackInterval != 2*time.Second || brute.Patrol[1] != [3]float64{0, 0, 10} {
		t.Errorf("unexpected brute %+v", brute)
	}
	if drop := g.Drop(brute); drop == nil || drop.Name != "gem" {
		t.Errorf("expected the brute to drop a gem, got %+v", drop)
	}

	if len(g.Spawns.Enemies) != 1 || g.Spawns.Enemies[0].Position.Vec3() != (mgl64.Vec3{4, 10, 4}) {
		t.Errorf("unexpected enemy spawns %+v", g.Spawns.Enemies)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected a not-exist error, got %v", err)
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
	}{
		{
			name:        "empty document",
			yamlContent: "",
			wantErr:     false,
		},
		{
			name:        "malformed YAML",
			yamlContent: "server: [",
			wantErr:     true,
			errContains: "failed to parse YAML",
		},
		{
			name: "headshot multiplier below one",
			yamlContent: `
weapons:
  pistol:
    headshot_multiplier: 0.5
    muzzle_flash: flame
    impact: lava
    beam: dust_red
    fire_sound: bow_shoot
    pickup_sound: pop
`,
			wantErr:     true,
			errContains: "weapon pistol: headshot_multiplier must be >= 1",
		},
		{
			name: "omitted headshot multiplier",
			yamlContent: `
weapons:
  pistol:
    damage: 10
    muzzle_flash: flame
    impact: lava
    beam: dust_red
    fire_sound: bow_shoot
    pickup_sound: pop
`,
			wantErr: false,
		},
		{
			name: "combat radius beyond aggro radius",
			yamlContent: `
enemies:
  grunt:
    max_health: 10
    aggro_radius: 2
    combat_radius: 3
    attack_interval: 1s
    impact_sound: attack_hit
    impact_particle: flame_red
    attack_sound: attack
    death_sound: fizz
`,
			wantErr:     true,
			errContains: "combat_radius 3 exceeds aggro_radius 2",
		},
		{
			name: "negative player health",
			yamlContent: `
player:
  max_health: -1
  impact_sound: attack_hit
  impact_particle: dust_red
  death_sound: item_break
  respawn_sound: totem
`,
			wantErr:     true,
			errContains: "player: max_health must be > 0",
		},
		{
			name: "unknown drop",
			yamlContent: `
enemies:
  grunt:
    max_health: 10
    aggro_radius: 3
    combat_radius: 2
    attack_interval: 1s
    impact_sound: attack_hit
    impact_particle: flame_red
    attack_sound: attack
    death_sound: fizz
    drop: diamond
`,
			wantErr:     true,
			errContains: `enemy grunt: unknown drop "diamond"`,
		},
		{
			name: "unknown spawn",
			yamlContent: `
spawns:
  weapons:
    - name: railgun
      position: [0, 0, 0]
`,
			wantErr:     true,
			errContains: `spawns.weapons[0]: unknown weapon "railgun"`,
		},
		{
			name:        "bad duration",
			yamlContent: "server:\n  tick_rate: soon\n",
			wantErr:     true,
			errContains: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yamlContent))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
			}
		})
	}
}

func TestParseFillsServerDefaults(t *testing.T) {
	g, err := Parse([]byte("server:\n  name: Solo\n"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default().Server
	if g.Server.Name != "Solo" || g.Server.Address != def.Address || g.Server.TickRate != def.TickRate {
		t.Errorf("unexpected server settings %+v", g.Server)
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	def := Default()
	if err := def.Validate(); err != nil {
		t.Fatalf("expected the default config to validate, got %v", err)
	}

	path := filepath.Join(t.TempDir(), DefaultPath)
	if err := def.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(def, loaded) {
		t.Errorf("expected the saved defaults back\nwant %+v\ngot  %+v", def, loaded)
	}
	if got := loaded.EnemyNames(); len(got) != 1 || got[0] != "grunt" {
		t.Errorf("unexpected enemy names %v", got)
	}
}
