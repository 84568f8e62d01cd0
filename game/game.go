// Package game wires the gameplay bundles, the configuration and the
// Dragonfly server together.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/character"
	"github.com/oriumgames/riotwave/config"
	"github.com/oriumgames/riotwave/enemy"
	"github.com/oriumgames/riotwave/input"
	"github.com/oriumgames/riotwave/pickup"
	"github.com/oriumgames/riotwave/weapon"
)

var (
	// ErrUnknownWeapon is returned for weapon names missing from the config.
	ErrUnknownWeapon = errors.New("game: unknown weapon")
	// ErrUnknownEnemy is returned for enemy names missing from the config.
	ErrUnknownEnemy = errors.New("game: unknown enemy")
)

// summonDistance is how far in front of a player /enemy places the enemy.
const summonDistance = 3

// Game is one running RiotWave game. It is registered as a resource, so
// commands and systems reach it through riotwave.Resource[Game].
type Game struct {
	cfg *config.Game
	log *slog.Logger
	m   *riotwave.Manager
}

// New builds the manager with every gameplay bundle. The scheduler is not
// running until Start.
func New(cfg *config.Game, log *slog.Logger) *Game {
	if log == nil {
		log = slog.Default()
	}
	g := &Game{cfg: cfg, log: log}
	g.m = riotwave.NewBuilder().
		Logger(log).
		TickRate(cfg.Server.TickRate).
		Resource(g).
		Bundle(character.NewBundle().Build()).
		Bundle(input.NewBundle().Build()).
		Bundle(pickup.NewBundle().Build()).
		Bundle(enemy.NewBundle().Build()).
		Bundle(NewBundle().Build()).
		Init()
	return g
}

// Manager returns the actor manager of the game.
func (g *Game) Manager() *riotwave.Manager {
	return g.m
}

// Config returns the configuration the game runs with.
func (g *Game) Config() *config.Game {
	return g.cfg
}

// Start ticks the game on w.
func (g *Game) Start(w *world.World) {
	g.m.Start(w)
	g.log.Info("game started", "tick_rate", g.cfg.Server.TickRate)
}

// Shutdown stops ticking and despawns every actor.
func (g *Game) Shutdown() {
	g.m.Shutdown()
	g.log.Info("game stopped")
}

// Join creates the character of a player who just connected and routes the
// player's events to it.
func (g *Game) Join(p *player.Player) *riotwave.Actor {
	a := g.NewCharacter(riotwave.ActorConfig{
		Name:     p.Name(),
		UUID:     p.UUID(),
		Handle:   p.H(),
		Position: p.Position(),
		Rotation: p.Rotation(),
	})
	p.Handle(riotwave.NewHandler(a))
	g.log.Info("player joined", "name", p.Name(), "uuid", p.UUID())
	return a
}

// NewCharacter spawns a player character with the configured player
// definition.
func (g *Game) NewCharacter(cfg riotwave.ActorConfig) *riotwave.Actor {
	return character.New(g.m, cfg, g.cfg.Player)
}

// Populate places the configured enemies and weapon pickups. Call it once
// from inside a transaction of the world the game runs on.
func (g *Game) Populate(tx *world.Tx) {
	g.populate(g.m.Frame(riotwave.NewTxEngine(tx)))
}

func (g *Game) populate(f *riotwave.Frame) {
	for _, s := range g.cfg.Spawns.Enemies {
		if _, err := g.SpawnEnemy(f, s.Name, s.Position.Vec3()); err != nil {
			g.log.Warn("skipping enemy spawn", "name", s.Name, "err", err)
		}
	}
	for _, s := range g.cfg.Spawns.Weapons {
		def, ok := g.cfg.Weapon(s.Name)
		if !ok {
			g.log.Warn("skipping weapon spawn", "name", s.Name, "err", ErrUnknownWeapon)
			continue
		}
		pickup.SpawnWeapon(g.m, def, s.Position.Vec3())
	}
	g.log.Info("world populated", "enemies", len(g.cfg.Spawns.Enemies), "weapons", len(g.cfg.Spawns.Weapons))
}

// SpawnEnemy spawns the named enemy at pos with its configured drop.
func (g *Game) SpawnEnemy(f *riotwave.Frame, name string, pos mgl64.Vec3) (*riotwave.Actor, error) {
	def, ok := g.cfg.Enemy(name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownEnemy, name)
	}
	return enemy.Spawn(f, def, pos, g.cfg.Drop(def)), nil
}

// GiveWeapon equips the named weapon on a, replacing whatever it holds.
func (g *Game) GiveWeapon(f *riotwave.Frame, a *riotwave.Actor, name string) error {
	def, ok := g.cfg.Weapon(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownWeapon, name)
	}
	h := riotwave.Get[weapon.Handling](a)
	if h == nil {
		return weapon.ErrNoHandling
	}
	h.Equip(f, a, def.Properties())
	return nil
}

// Summon spawns the named enemy a few blocks in front of a.
func (g *Game) Summon(f *riotwave.Frame, a *riotwave.Actor, name string) (*riotwave.Actor, error) {
	body := riotwave.MustGet[riotwave.Body](a)
	ahead := riotwave.Direction(cube.Rotation{body.Rotation.Yaw(), 0}).Mul(summonDistance)
	return g.SpawnEnemy(f, name, body.Position.Add(ahead))
}
