package character

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/event"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/enginetest"
	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/input"
	"github.com/oriumgames/riotwave/pickup"
	"github.com/oriumgames/riotwave/weapon"
)

type fallSource struct{}

func (fallSource) ReducedByArmour() bool     { return false }
func (fallSource) ReducedByResistance() bool { return true }
func (fallSource) Fire() bool                { return false }
func (fallSource) IgnoreTotem() bool         { return false }

func setup(t *testing.T) (*riotwave.Manager, *enginetest.Engine, *riotwave.Actor) {
	t.Helper()
	m := riotwave.NewBuilder().
		Bundle(NewBundle().Build()).
		Bundle(input.NewBundle().Build()).
		Init()
	a := New(m, riotwave.ActorConfig{Name: "steve", Position: mgl64.Vec3{0, 64, 0}}, DefaultDefinition())
	return m, enginetest.New(), a
}

func TestNew(t *testing.T) {
	_, _, a := setup(t)

	if a.Kind() != riotwave.KindPlayer {
		t.Errorf("expected a player, got %v", a.Kind())
	}
	if h := riotwave.Get[combat.Health](a); h == nil || h.Current != 25000 || h.Max != 25000 {
		t.Errorf("expected 25000 health, got %+v", h)
	}
	for name, ok := range map[string]bool{
		"impact":    riotwave.Has[combat.Impact](a),
		"handling":  riotwave.Has[weapon.Handling](a),
		"inventory": riotwave.Has[pickup.Inventory](a),
		"stance":    riotwave.Has[input.Stance](a),
	} {
		if !ok {
			t.Errorf("expected the character to carry %s", name)
		}
	}
	if !riotwave.Get[input.Controller](a).HasContext(input.Traversal.Name) {
		t.Error("expected the character to be possessed")
	}
}

func TestDeathAndRespawn(t *testing.T) {
	m, eng, a := setup(t)
	f := enginetest.Frame(m, eng)
	puppet := eng.PuppetOf(a)

	if err := Respawn(f, a); !errors.Is(err, ErrNotDead) {
		t.Errorf("expected ErrNotDead, got %v", err)
	}

	if _, err := combat.ApplyDamage(f, a, 30000, combat.Source{Kind: combat.KindMelee}); err != nil {
		t.Fatal(err)
	}
	if riotwave.Get[input.Controller](a).Enabled() {
		t.Error("expected input to be disabled")
	}
	if puppet.Visible || puppet.InputEnabled {
		t.Errorf("expected the body hidden and frozen, got %s", puppet)
	}
	if eng.SoundCount(fx.Sound("item_break")) != 1 {
		t.Error("expected the death sound")
	}
	if !strings.Contains(puppet.LastTip(), "/respawn") {
		t.Errorf("expected a respawn hint, got %q", puppet.LastTip())
	}
	if riotwave.Get[Character](a).Deaths() != 1 {
		t.Error("expected one death")
	}

	if err := Respawn(f, a); err != nil {
		t.Fatal(err)
	}
	if h := riotwave.Get[combat.Health](a); h.Current != h.Max {
		t.Errorf("expected full health, got %v", h.Current)
	}
	if !puppet.Visible || !puppet.InputEnabled || !riotwave.Get[input.Controller](a).Enabled() {
		t.Errorf("expected control restored, got %s", puppet)
	}
	if eng.SoundCount(fx.Sound("totem")) != 1 {
		t.Error("expected the respawn sound")
	}
}

func TestEnvironmentDamage(t *testing.T) {
	m, eng, a := setup(t)
	f := enginetest.Frame(m, eng)
	h := riotwave.Get[combat.Health](a)

	tests := []struct {
		name          string
		damage        float64
		immune        bool
		src           world.DamageSource
		wantCancelled bool
		wantDamage    float64
		wantHealth    float64
	}{
		{"fall", 2, false, fallSource{}, true, 2, 22500},
		{"immune", 2, true, fallSource{}, true, 2, 22500},
		{"feedback", 3, false, combat.DragonflySource{}, false, 0, 22500},
		{"lethal fall", 20, false, fallSource{}, true, 20, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := event.C[*player.Player](nil)
			dmg := tt.damage
			riotwave.Dispatch(f, a, &riotwave.EventHurt{Ctx: ctx, Damage: &dmg, Immune: tt.immune, Source: tt.src})

			if ctx.Cancelled() != tt.wantCancelled {
				t.Errorf("expected cancelled=%v", tt.wantCancelled)
			}
			if dmg != tt.wantDamage {
				t.Errorf("expected engine damage %v, got %v", tt.wantDamage, dmg)
			}
			if h.Current != tt.wantHealth {
				t.Errorf("expected %v health, got %v", tt.wantHealth, h.Current)
			}
		})
	}
}

func TestHUD(t *testing.T) {
	m, eng, a := setup(t)
	f := enginetest.Frame(m, eng)

	if got := HUD(a); got != "HP 25000/25000" {
		t.Errorf("unexpected HUD %q", got)
	}
	riotwave.Get[weapon.Handling](a).Equip(f, a, weapon.DefaultDefinition().Properties())
	riotwave.Get[pickup.Inventory](a).Add("coin", 2)
	if got := HUD(a); got != "HP 25000/25000 | rifle | coin x2" {
		t.Errorf("unexpected HUD %q", got)
	}

	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Tick(epoch, eng)
	m.Tick(epoch.Add(50*time.Millisecond), eng)
	puppet := eng.PuppetOf(a)
	if len(puppet.Tips) != 1 || puppet.LastTip() != HUD(a) {
		t.Errorf("expected one HUD refresh, got %v", puppet.Tips)
	}
}

func TestDefinitionValidate(t *testing.T) {
	if err := DefaultDefinition().Validate(); err != nil {
		t.Fatalf("expected the default character to validate, got %v", err)
	}
	d := DefaultDefinition()
	d.MaxHealth = 0
	d.DeathSound = "scream"
	err := d.Validate()
	if err == nil || !strings.Contains(err.Error(), "max_health") || !strings.Contains(err.Error(), "scream") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}
