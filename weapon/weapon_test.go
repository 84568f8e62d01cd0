package weapon

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/enginetest"
)

type equipRecorder struct {
	_ riotwave.With[Handling]

	equipped []EventEquipped
	fired    int
}

func (r *equipRecorder) HandleEquipped(_ *riotwave.Frame, _ *riotwave.Actor, e *EventEquipped) {
	r.equipped = append(r.equipped, *e)
}

func (r *equipRecorder) HandleFired(_ *riotwave.Frame, _ *riotwave.Actor, _ *EventFired) {
	r.fired++
}

type shootingRange struct {
	f       *riotwave.Frame
	eng     *enginetest.Engine
	shooter *riotwave.Actor
	target  *riotwave.Actor
	rec     *equipRecorder
}

// newRange puts an armed-capable shooter at the origin looking down +Z with
// its eyes at body height, and a 500 hp target five blocks ahead.
func newRange(t *testing.T) *shootingRange {
	t.Helper()
	rec := &equipRecorder{}
	m := riotwave.NewBuilder().
		Bundle(riotwave.NewBundle("weapon-test").Handler(rec).Build()).
		Init()
	shooter := m.Spawn(riotwave.ActorConfig{Name: "shooter", Kind: riotwave.KindPlayer, EyeHeight: 1})
	riotwave.Add(shooter, NewHandling())
	riotwave.Add(shooter, combat.NewHealth(100))

	target := m.Spawn(riotwave.ActorConfig{Name: "target", Kind: riotwave.KindEnemy, Position: mgl64.Vec3{0, 0, 5}})
	riotwave.Add(target, combat.NewHealth(500))

	eng := enginetest.New()
	return &shootingRange{f: m.Frame(eng), eng: eng, shooter: shooter, target: target, rec: rec}
}

func (r *shootingRange) equip(t *testing.T) *Handling {
	t.Helper()
	h := riotwave.Get[Handling](r.shooter)
	h.Equip(r.f, r.shooter, DefaultDefinition().Properties())
	return h
}

func TestDefaultDefinitionValid(t *testing.T) {
	if err := DefaultDefinition().Validate(); err != nil {
		t.Fatalf("expected the stock rifle to validate, got %v", err)
	}
}

func TestDefinitionValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(d *Definition)
		errContains string
	}{
		{"missing name", func(d *Definition) { d.Name = "" }, "name is required"},
		{"negative damage", func(d *Definition) { d.Damage = -1 }, "damage must be >= 0"},
		{"multiplier below one", func(d *Definition) { d.HeadshotMultiplier = 0.5 }, "headshot_multiplier"},
		{"negative interval", func(d *Definition) { d.FireInterval = -time.Second }, "fire_interval"},
		{"unknown particle", func(d *Definition) { d.Beam = "glitter" }, `unknown particle "glitter"`},
		{"unknown sound", func(d *Definition) { d.FireSound = "pew" }, `unknown sound "pew"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DefaultDefinition()
			tt.mutate(&d)
			err := d.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("expected error containing %q, got %q", tt.errContains, err)
			}
		})
	}
}

func TestUnsetMultiplierDefaultsToOne(t *testing.T) {
	d := DefaultDefinition()
	d.HeadshotMultiplier = 0
	if err := d.Validate(); err != nil {
		t.Fatalf("expected an unset multiplier to validate, got %v", err)
	}
	if got := d.Properties().HeadshotMultiplier; got != 1 {
		t.Errorf("expected an unset multiplier to resolve to 1, got %v", got)
	}
	d.HeadshotMultiplier = -2
	if err := d.Validate(); err == nil {
		t.Error("expected a negative multiplier to be rejected")
	}
}

func TestPropertiesDefaults(t *testing.T) {
	p := Definition{Name: "stick", Damage: 1}.Properties()
	if p.Socket != DefaultSocket {
		t.Errorf("expected default socket, got %q", p.Socket)
	}
	if p.HeadshotMultiplier != 1 {
		t.Errorf("expected multiplier 1, got %v", p.HeadshotMultiplier)
	}
	if p.Range <= 0 {
		t.Errorf("expected a default range, got %v", p.Range)
	}
	if p.MuzzleFlash != nil || p.FireSound != nil {
		t.Error("expected unset effects to resolve to nothing")
	}
}

func TestFireRequiresWeapon(t *testing.T) {
	r := newRange(t)

	if _, err := Fire(r.f, r.shooter); !errors.Is(err, ErrUnarmed) {
		t.Errorf("expected ErrUnarmed, got %v", err)
	}
	if _, err := Fire(r.f, r.target); !errors.Is(err, ErrNoHandling) {
		t.Errorf("expected ErrNoHandling, got %v", err)
	}
	if len(r.eng.Sounds) != 0 || len(r.eng.Particles) != 0 {
		t.Error("expected no effects from a failed shot")
	}
}

func TestEquip(t *testing.T) {
	r := newRange(t)
	h := r.equip(t)

	if !h.Equipped() || h.Properties().Name != "rifle" {
		t.Fatalf("expected rifle equipped, got %+v", h.Properties())
	}
	r.equip(t)
	if len(r.rec.equipped) != 2 {
		t.Fatalf("expected two equip events, got %d", len(r.rec.equipped))
	}
	if !r.rec.equipped[0].First || r.rec.equipped[1].First {
		t.Errorf("expected only the first equip to be marked first, got %+v", r.rec.equipped)
	}
}

func TestFireBodyShot(t *testing.T) {
	r := newRange(t)
	r.equip(t)
	props := DefaultDefinition().Properties()

	shot, err := Fire(r.f, r.shooter)
	if err != nil {
		t.Fatal(err)
	}
	if shot.Hit.Actor != r.target {
		t.Fatalf("expected to hit the target, got %+v", shot.Hit)
	}
	if shot.Damage != 125 {
		t.Errorf("expected 125 body damage, got %v", shot.Damage)
	}
	if got := riotwave.Get[combat.Health](r.target).Current; got != 375 {
		t.Errorf("expected 375 health left, got %v", got)
	}
	if r.eng.SoundCount(props.FireSound) != 1 {
		t.Error("expected the fire sound")
	}
	if r.eng.PuppetOf(r.shooter).Swings != 1 {
		t.Error("expected the shooter to swing")
	}
	if r.eng.ParticleCount(props.MuzzleFlash) != 1 {
		t.Error("expected a muzzle flash")
	}
	if r.eng.ParticleCount(props.Beam) == 0 {
		t.Error("expected a beam")
	}
	if r.rec.fired != 1 {
		t.Errorf("expected one fired event, got %d", r.rec.fired)
	}
}

func TestFireHeadshot(t *testing.T) {
	r := newRange(t)
	r.equip(t)
	riotwave.Get[riotwave.Body](r.shooter).EyeHeight = 1.6

	shot, err := Fire(r.f, r.shooter)
	if err != nil {
		t.Fatal(err)
	}
	if shot.Hit.Actor != r.target || shot.Damage != 250 {
		t.Errorf("expected a 250 damage headshot, got %v on %v", shot.Damage, shot.Hit.Actor)
	}
}

func TestFireCooldown(t *testing.T) {
	r := newRange(t)
	r.equip(t)
	start := r.f.Now

	if _, err := Fire(r.f, r.shooter); err != nil {
		t.Fatal(err)
	}
	r.f.Now = start.Add(100 * time.Millisecond)
	if _, err := Fire(r.f, r.shooter); !errors.Is(err, ErrCoolingDown) {
		t.Errorf("expected ErrCoolingDown, got %v", err)
	}
	r.f.Now = start.Add(250 * time.Millisecond)
	if _, err := Fire(r.f, r.shooter); err != nil {
		t.Errorf("expected the interval to have passed, got %v", err)
	}
	if h := riotwave.Get[Handling](r.shooter); h.Shots() != 2 {
		t.Errorf("expected two shots, got %d", h.Shots())
	}
}

func TestFireMissAndWall(t *testing.T) {
	r := newRange(t)
	r.equip(t)
	props := DefaultDefinition().Properties()
	riotwave.Get[riotwave.Body](r.shooter).Rotation = cube.Rotation{90, 0}

	shot, err := Fire(r.f, r.shooter)
	if err != nil {
		t.Fatal(err)
	}
	if shot.Hit.Blocking || shot.Damage != 0 {
		t.Errorf("expected a clean miss, got %+v", shot)
	}
	if r.eng.ParticleCount(props.Impact) != 0 {
		t.Error("expected no impact particle on a miss")
	}
	if r.eng.ParticleCount(props.MuzzleFlash) != 1 {
		t.Error("expected the muzzle flash regardless of a hit")
	}

	r.eng.Reset()
	r.f.Now = r.f.Now.Add(time.Second)
	riotwave.Get[riotwave.Body](r.shooter).Rotation = cube.Rotation{}
	r.eng.SetSolid(cube.Pos{0, 1, 2})
	shot, err = Fire(r.f, r.shooter)
	if err != nil {
		t.Fatal(err)
	}
	if shot.Hit.Actor != nil || !shot.Hit.Blocking {
		t.Fatalf("expected the wall to stop the shot, got %+v", shot.Hit)
	}
	if r.eng.ParticleCount(props.Impact) != 1 {
		t.Error("expected an impact particle on the wall")
	}
	if got := riotwave.Get[combat.Health](r.target).Current; got != 500 {
		t.Errorf("expected the target untouched, got %v", got)
	}
}

func TestFireOnDeadTargetPassesThrough(t *testing.T) {
	r := newRange(t)
	r.equip(t)
	riotwave.Get[combat.Health](r.target).Current = 0

	shot, err := Fire(r.f, r.shooter)
	if err != nil {
		t.Fatal(err)
	}
	if shot.Hit.Actor != nil {
		t.Errorf("expected dead targets to be ignored, got %v", shot.Hit.Actor)
	}
}

func TestSocketPosition(t *testing.T) {
	h := NewHandling()
	h.Initialize(Properties{SocketOffset: mgl64.Vec3{1, -0.5, 2}})
	body := &riotwave.Body{EyeHeight: 1.5}

	got := h.SocketPosition(body)
	want := mgl64.Vec3{-1, 1, 2}
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("expected socket at %v facing +Z, got %v", want, got)
	}

	body.Rotation = cube.Rotation{90, 0}
	got = h.SocketPosition(body)
	want = mgl64.Vec3{-2, 1, -1}
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("expected socket at %v facing -X, got %v", want, got)
	}
}
