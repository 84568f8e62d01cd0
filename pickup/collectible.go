package pickup

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/fx"
	"github.com/oriumgames/riotwave/volume"
)

const (
	// SettleDelay is how long a collectible keeps simulating after it first
	// hits the ground.
	SettleDelay = 4 * time.Second
	// Gravity in blocks per second squared.
	Gravity = 16.0

	maxStep = 0.1
)

// ItemDefinition is the configured form of a collectible.
type ItemDefinition struct {
	Name        string  `yaml:"name"`
	PickupSound string  `yaml:"pickup_sound"`
	DropSound   string  `yaml:"drop_sound"`
	Marker      string  `yaml:"marker"`
	Radius      float64 `yaml:"radius"`
	// Impulse is the horizontal launch speed in blocks per second, Lift the
	// vertical one.
	Impulse float64 `yaml:"impulse"`
	Lift    float64 `yaml:"lift"`
}

// DefaultItemDefinition returns the coin enemies drop.
func DefaultItemDefinition() ItemDefinition {
	return ItemDefinition{
		Name:        "coin",
		PickupSound: "experience",
		DropSound:   "pop",
		Marker:      "dust_yellow",
		Radius:      0.8,
		Impulse:     2,
		Lift:        5,
	}
}

// Validate checks the definition for values that cannot work.
func (d ItemDefinition) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.Radius < 0 {
		errs = append(errs, fmt.Errorf("radius must be >= 0, got %v", d.Radius))
	}
	if d.Impulse < 0 || d.Lift < 0 {
		errs = append(errs, fmt.Errorf("impulse and lift must be >= 0, got %v/%v", d.Impulse, d.Lift))
	}
	for _, name := range []string{d.PickupSound, d.DropSound} {
		if !fx.KnownSound(name) {
			errs = append(errs, fmt.Errorf("unknown sound %q", name))
		}
	}
	if !fx.KnownParticle(d.Marker) {
		errs = append(errs, fmt.Errorf("unknown particle %q", d.Marker))
	}
	return errors.Join(errs...)
}

// Collectible is an item players collect by touching it. It falls under
// gravity until it has been on the ground for SettleDelay.
type Collectible struct {
	Item        string
	PickupSound world.Sound
	Radius      float64

	simulating bool
	landed     bool
	collected  bool
	overlap    volume.Tracker
}

// Simulating reports whether physics still runs for the item.
func (c *Collectible) Simulating() bool {
	return c.simulating
}

// Landed reports whether the item has hit the ground.
func (c *Collectible) Landed() bool {
	return c.landed
}

// SpawnCollectible drops an item at pos with a random impulse and plays the
// drop sound.
func SpawnCollectible(f *riotwave.Frame, def ItemDefinition, pos mgl64.Vec3) *riotwave.Actor {
	a := f.Manager.Spawn(riotwave.ActorConfig{
		Kind:     riotwave.KindCollectible,
		Position: pos,
		Box:      pickupBox,
	})
	angle := rand.Float64() * 2 * math.Pi
	body := riotwave.MustGet[riotwave.Body](a)
	body.Velocity = mgl64.Vec3{math.Cos(angle) * def.Impulse, def.Lift, math.Sin(angle) * def.Impulse}

	riotwave.Add(a, &Collectible{
		Item:        def.Name,
		PickupSound: fx.Sound(def.PickupSound),
		Radius:      def.Radius,
		simulating:  true,
	})
	riotwave.Add(a, &Marker{Particle: fx.Particle(def.Marker), Height: 0.75})
	fx.Play(f.Engine, pos, fx.Sound(def.DropSound))
	return a
}

// physicsLoop moves simulating collectibles. The first touch of solid ground
// starts the one settle timer.
type physicsLoop struct {
	_ riotwave.With[Collectible]
}

func (physicsLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	c := riotwave.Get[Collectible](a)
	if !c.simulating {
		return
	}
	body := riotwave.MustGet[riotwave.Body](a)
	dt := f.Delta.Seconds()
	if dt <= 0 {
		dt = riotwave.DefaultTickRate.Seconds()
	}
	dt = min(dt, maxStep)

	body.Velocity[1] -= Gravity * dt
	next := body.Position.Add(body.Velocity.Mul(dt))

	// Walls stop horizontal movement.
	side := mgl64.Vec3{next.X(), body.Position.Y(), next.Z()}
	if f.Engine.Solid(cube.PosFromVec3(side)) {
		next[0], next[2] = body.Position.X(), body.Position.Z()
		body.Velocity[0], body.Velocity[2] = 0, 0
	}

	if body.Velocity.Y() <= 0 {
		x, z := int(math.Floor(next.X())), int(math.Floor(next.Z()))
		for y := int(math.Floor(body.Position.Y())); y >= int(math.Floor(next.Y())); y-- {
			if !f.Engine.Solid(cube.Pos{x, y, z}) {
				continue
			}
			next[1] = float64(y + 1)
			body.Velocity = mgl64.Vec3{}
			if !c.landed {
				c.landed = true
				riotwave.Schedule(a, SettleDelay, func(*riotwave.Frame) {
					c.simulating = false
				})
			}
			break
		}
	}
	body.Position = next
}

// collectLoop hands collectibles to the first player that touches them.
type collectLoop struct {
	_ riotwave.With[Collectible]
}

func (collectLoop) Run(f *riotwave.Frame, a *riotwave.Actor) {
	c := riotwave.Get[Collectible](a)
	body := riotwave.MustGet[riotwave.Body](a)
	entered, _ := c.overlap.Update(collectors(f.Manager), volume.Sphere(body.Center(), c.Radius))
	for _, other := range entered {
		if other.Kind() != riotwave.KindPlayer || !riotwave.Has[Inventory](other) {
			continue
		}
		if err := Collect(f, a, other); err == nil {
			return
		}
	}
}

// Collect gives the item to the player's inventory, plays the pickup sound,
// dispatches EventCollected on the player and despawns the item.
func Collect(f *riotwave.Frame, item, to *riotwave.Actor) error {
	c := riotwave.Get[Collectible](item)
	if c == nil {
		return ErrNotPickup
	}
	if c.collected {
		return ErrConsumed
	}
	inv := riotwave.Get[Inventory](to)
	if inv == nil {
		return ErrNoInventory
	}
	c.collected = true

	count := inv.Add(c.Item, 1)
	fx.Play(f.Engine, riotwave.MustGet[riotwave.Body](item).Position, c.PickupSound)
	riotwave.Dispatch(f, to, &EventCollected{Item: c.Item, Count: count})
	f.Manager.Log().Debug("item collected", "actor", to.Name(), "item", c.Item, "count", count)
	f.Manager.Despawn(f, item)
	return nil
}

// ErrNoInventory is returned when collecting into an actor without an
// Inventory.
var ErrNoInventory = errors.New("pickup: actor has no inventory")

// Inventory counts collected items by name.
type Inventory struct {
	items map[string]int
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{items: make(map[string]int)}
}

// Add adds n items and returns the new count.
func (inv *Inventory) Add(name string, n int) int {
	if inv.items == nil {
		inv.items = make(map[string]int)
	}
	inv.items[name] += n
	return inv.items[name]
}

// Count returns how many of name were collected.
func (inv *Inventory) Count(name string) int {
	return inv.items[name]
}

// Total returns the number of items across all names.
func (inv *Inventory) Total() int {
	n := 0
	for _, c := range inv.items {
		n += c
	}
	return n
}

// Names returns the collected item names, sorted.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.items))
	for name := range inv.items {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
