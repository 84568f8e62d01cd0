package pickup

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/combat"
	"github.com/oriumgames/riotwave/enginetest"
	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/weapon"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type pickupRecorder struct {
	picked    []string
	collected []EventCollected
}

func (r *pickupRecorder) HandleWeaponPicked(_ *riotwave.Frame, _ *riotwave.Actor, e *EventWeaponPicked) {
	r.picked = append(r.picked, e.Weapon)
}

func (r *pickupRecorder) HandleCollected(_ *riotwave.Frame, _ *riotwave.Actor, e *EventCollected) {
	r.collected = append(r.collected, *e)
}

func setup(t *testing.T) (*riotwave.Manager, *enginetest.Engine, *pickupRecorder) {
	t.Helper()
	rec := &pickupRecorder{}
	m := riotwave.NewBuilder().
		Bundle(NewBundle().Handler(rec).Build()).
		Init()
	return m, enginetest.New(), rec
}

func spawnPlayer(m *riotwave.Manager, name string, pos mgl64.Vec3) *riotwave.Actor {
	a := m.Spawn(riotwave.ActorConfig{Name: name, Kind: riotwave.KindPlayer, Position: pos})
	riotwave.Add(a, weapon.NewHandling())
	riotwave.Add(a, NewInventory())
	return a
}

func TestWeaponPickupTransfer(t *testing.T) {
	m, eng, rec := setup(t)
	player := spawnPlayer(m, "player", mgl64.Vec3{})
	pickup := SpawnWeapon(m, weapon.DefaultDefinition(), mgl64.Vec3{0, 0, 0.5})

	m.Tick(epoch, eng)

	h := riotwave.Get[weapon.Handling](player)
	if !h.Equipped() || h.Properties().Name != "rifle" {
		t.Fatalf("expected the rifle to be equipped, got %+v", h.Properties())
	}
	if !pickup.Closed() {
		t.Error("expected the pickup to be despawned")
	}
	if len(rec.picked) != 1 || rec.picked[0] != "rifle" {
		t.Errorf("expected one pickup event for the rifle, got %v", rec.picked)
	}
	if eng.SoundCount(fx.Sound("pop")) != 1 {
		t.Error("expected the pickup sound")
	}
}

func TestWeaponPickupIgnoresIncapableActors(t *testing.T) {
	m, eng, rec := setup(t)
	grunt := m.Spawn(riotwave.ActorConfig{Name: "grunt", Kind: riotwave.KindEnemy})
	riotwave.Add(grunt, combat.NewHealth(500))
	pickup := SpawnWeapon(m, weapon.DefaultDefinition(), mgl64.Vec3{0, 0, 0.5})

	m.Tick(epoch, eng)
	if pickup.Closed() || riotwave.Get[WeaponPickup](pickup).Consumed() {
		t.Fatal("expected the pickup to stay in the world")
	}

	player := spawnPlayer(m, "player", mgl64.Vec3{0, 0, 1})
	m.Tick(epoch.Add(50*time.Millisecond), eng)
	if !riotwave.Get[weapon.Handling](player).Equipped() {
		t.Error("expected a capable actor to still take the pickup")
	}
	if len(rec.picked) != 1 {
		t.Errorf("expected exactly one transfer, got %d", len(rec.picked))
	}
}

func TestTransferIsOneShot(t *testing.T) {
	m, eng, _ := setup(t)
	first := spawnPlayer(m, "first", mgl64.Vec3{})
	second := spawnPlayer(m, "second", mgl64.Vec3{20, 0, 0})
	pickup := SpawnWeapon(m, weapon.DefaultDefinition(), mgl64.Vec3{})
	f := enginetest.Frame(m, eng)

	if err := Transfer(f, pickup, first); err != nil {
		t.Fatal(err)
	}
	if err := Transfer(f, pickup, second); err == nil {
		t.Error("expected a second transfer to fail")
	}
	if riotwave.Get[weapon.Handling](second).Equipped() {
		t.Error("expected the second actor to stay unarmed")
	}
}

func TestDeadActorsDoNotCollect(t *testing.T) {
	m, eng, _ := setup(t)
	player := spawnPlayer(m, "player", mgl64.Vec3{})
	riotwave.Add(player, &combat.Health{Current: 0, Max: 100})
	pickup := SpawnWeapon(m, weapon.DefaultDefinition(), mgl64.Vec3{})

	m.Tick(epoch, eng)
	if pickup.Closed() {
		t.Error("expected a dead player not to pick the weapon up")
	}
}

func TestCollectibleSettles(t *testing.T) {
	m, eng, _ := setup(t)
	eng.Floor(0)
	f := enginetest.Frame(m, eng)
	item := SpawnCollectible(f, DefaultItemDefinition(), mgl64.Vec3{10, 1, 10})
	c := riotwave.Get[Collectible](item)
	body := riotwave.Get[riotwave.Body](item)

	if eng.SoundCount(fx.Sound("pop")) != 1 {
		t.Error("expected the drop sound")
	}

	var landedAt time.Time
	now := epoch
	for i := 0; i < 100 && !c.Landed(); i++ {
		now = now.Add(50 * time.Millisecond)
		m.Tick(now, eng)
		if c.Landed() {
			landedAt = now
		}
	}
	if !c.Landed() {
		t.Fatal("expected the item to land")
	}
	if body.Position.Y() != 1 {
		t.Errorf("expected the item to rest on the floor, got y=%v", body.Position.Y())
	}

	m.Tick(landedAt.Add(SettleDelay-50*time.Millisecond), eng)
	if !c.Simulating() {
		t.Fatal("expected simulation to run until the settle delay")
	}
	m.Tick(landedAt.Add(SettleDelay), eng)
	if c.Simulating() {
		t.Error("expected simulation to stop after the settle delay")
	}
	if body.Position.Y() != 1 {
		t.Errorf("expected the item to stay on the floor, got y=%v", body.Position.Y())
	}
}

func TestCollect(t *testing.T) {
	m, eng, rec := setup(t)
	player := spawnPlayer(m, "player", mgl64.Vec3{})
	grunt := m.Spawn(riotwave.ActorConfig{Name: "grunt", Kind: riotwave.KindEnemy, Position: mgl64.Vec3{5, 0, 0}})
	riotwave.Add(grunt, NewInventory())

	f := enginetest.Frame(m, eng)
	def := DefaultItemDefinition()
	def.Impulse, def.Lift = 0, 0
	coin := SpawnCollectible(f, def, mgl64.Vec3{5, 0, 0})

	m.Tick(epoch, eng)
	if coin.Closed() {
		t.Fatal("expected enemies not to collect items")
	}

	second := SpawnCollectible(f, def, mgl64.Vec3{})
	m.Tick(epoch.Add(50*time.Millisecond), eng)
	if !second.Closed() {
		t.Fatal("expected the player to collect the item")
	}
	inv := riotwave.Get[Inventory](player)
	if inv.Count("coin") != 1 || inv.Total() != 1 {
		t.Errorf("expected one coin, got %d", inv.Count("coin"))
	}
	if len(rec.collected) != 1 || rec.collected[0].Count != 1 {
		t.Errorf("unexpected collected events %+v", rec.collected)
	}
	if eng.SoundCount(fx.Sound("experience")) != 1 {
		t.Error("expected the pickup sound")
	}
}

func TestMarkers(t *testing.T) {
	m, eng, _ := setup(t)
	SpawnWeapon(m, weapon.DefaultDefinition(), mgl64.Vec3{3, 0, 3})

	m.Tick(epoch, eng)
	beam := fx.Particle(weapon.DefaultDefinition().Beam)
	if eng.ParticleCount(beam) != 1 {
		t.Fatalf("expected one marker, got %d", eng.ParticleCount(beam))
	}
	if got := eng.Particles[0].Pos; got != (mgl64.Vec3{3, 0.75, 3}) {
		t.Errorf("expected marker above the pickup, got %v", got)
	}

	m.Tick(epoch.Add(50*time.Millisecond), eng)
	if eng.ParticleCount(beam) != 1 {
		t.Error("expected markers to respect their interval")
	}
}

func TestInventory(t *testing.T) {
	inv := NewInventory()
	inv.Add("coin", 2)
	inv.Add("gem", 1)
	if inv.Total() != 3 || inv.Count("coin") != 2 || inv.Count("none") != 0 {
		t.Errorf("unexpected counts %v", inv.Names())
	}
	if names := inv.Names(); len(names) != 2 || names[0] != "coin" {
		t.Errorf("expected sorted names, got %v", names)
	}
	if err := DefaultItemDefinition().Validate(); err != nil {
		t.Errorf("expected the default item to validate, got %v", err)
	}
}
