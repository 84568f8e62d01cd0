package weapon

import (
	"errors"
	"fmt"
	"time"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/hitscan"
)

// DefaultSocket is the socket effects are spawned from when a weapon does not
// name one.
const DefaultSocket = "Barrel Socket"

// Definition is the configured form of a weapon.
type Definition struct {
	Name string `yaml:"name"`
	// Item is the held item identifier, e.g. "minecraft:iron_hoe".
	Item string `yaml:"item"`

	Damage             float64 `yaml:"damage"`
	HeadshotMultiplier float64 `yaml:"headshot_multiplier"`

	Socket string `yaml:"socket"`
	// Sockets maps socket names to offsets from the eye: right, up, forward.
	Sockets map[string][3]float64 `yaml:"sockets"`

	MuzzleFlash string `yaml:"muzzle_flash"`
	Impact      string `yaml:"impact"`
	Beam        string `yaml:"beam"`
	FireSound   string `yaml:"fire_sound"`
	PickupSound string `yaml:"pickup_sound"`

	FireInterval time.Duration `yaml:"fire_interval"`
	Range        float64       `yaml:"range"`
	PickupRadius float64       `yaml:"pickup_radius"`
}

// DefaultDefinition returns the stock rifle.
func DefaultDefinition() Definition {
	return Definition{
		Name:               "rifle",
		Item:               "minecraft:iron_hoe",
		Damage:             125,
		HeadshotMultiplier: 2,
		Socket:             DefaultSocket,
		Sockets: map[string][3]float64{
			DefaultSocket: {0.35, -0.25, 0.9},
		},
		MuzzleFlash:  "flame",
		Impact:       "lava",
		Beam:         "dust_yellow",
		FireSound:    "bow_shoot",
		PickupSound:  "pop",
		FireInterval: 250 * time.Millisecond,
		Range:        hitscan.DefaultRange,
		PickupRadius: 0.8,
	}
}

// Validate checks the definition for values that cannot work.
func (d Definition) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.Damage < 0 {
		errs = append(errs, fmt.Errorf("damage must be >= 0, got %v", d.Damage))
	}
	if d.HeadshotMultiplier != 0 && d.HeadshotMultiplier < 1 {
		errs = append(errs, fmt.Errorf("headshot_multiplier must be >= 1, got %v", d.HeadshotMultiplier))
	}
	if d.FireInterval < 0 {
		errs = append(errs, fmt.Errorf("fire_interval must be >= 0, got %v", d.FireInterval))
	}
	if d.Range < 0 {
		errs = append(errs, fmt.Errorf("range must be >= 0, got %v", d.Range))
	}
	if d.PickupRadius < 0 {
		errs = append(errs, fmt.Errorf("pickup_radius must be >= 0, got %v", d.PickupRadius))
	}
	for _, name := range []string{d.MuzzleFlash, d.Impact, d.Beam} {
		if !fx.KnownParticle(name) {
			errs = append(errs, fmt.Errorf("unknown particle %q", name))
		}
	}
	for _, name := range []string{d.FireSound, d.PickupSound} {
		if !fx.KnownSound(name) {
			errs = append(errs, fmt.Errorf("unknown sound %q", name))
		}
	}
	return errors.Join(errs...)
}

// Properties resolves the definition into the configuration a weapon
// handler runs with.
func (d Definition) Properties() Properties {
	p := Properties{
		Name:               d.Name,
		Damage:             d.Damage,
		HeadshotMultiplier: d.HeadshotMultiplier,
		Socket:             d.Socket,
		MuzzleFlash:        fx.Particle(d.MuzzleFlash),
		Impact:             fx.Particle(d.Impact),
		Beam:               fx.Particle(d.Beam),
		FireSound:          fx.Sound(d.FireSound),
		PickupSound:        fx.Sound(d.PickupSound),
		FireInterval:       d.FireInterval,
		Range:              d.Range,
	}
	if p.Socket == "" {
		p.Socket = DefaultSocket
	}
	if off, ok := d.Sockets[p.Socket]; ok {
		p.SocketOffset = mgl64.Vec3(off)
	}
	if p.HeadshotMultiplier == 0 {
		p.HeadshotMultiplier = 1
	}
	if p.Range == 0 {
		p.Range = hitscan.DefaultRange
	}
	if d.Item != "" {
		if it, ok := world.ItemByName(d.Item, 0); ok {
			p.Item = it
		}
	}
	return p
}

// Properties is the configuration a weapon pickup hands over to the actor
// that collects it.
type Properties struct {
	Name string
	Item world.Item

	Damage             float64
	HeadshotMultiplier float64

	Socket       string
	SocketOffset mgl64.Vec3

	MuzzleFlash world.Particle
	Impact      world.Particle
	Beam        world.Particle
	FireSound   world.Sound
	PickupSound world.Sound

	FireInterval time.Duration
	Range        float64
}
