package game

import (
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"

	"github.com/oriumgames/riotwave"
	"github.com/oriumgames/riotwave/character"
)

// NewBundle returns the bundle holding the game's commands.
func NewBundle() *riotwave.Bundle {
	return riotwave.NewBundle("game").
		Command(cmd.New("respawn", "Respawns your character after death.", nil, respawnCommand{})).
		Command(cmd.New("weapon", "Equips a configured weapon.", nil, weaponCommand{})).
		Command(cmd.New("enemy", "Spawns a configured enemy in front of you.", nil, enemyCommand{})).
		PostInit(checkGame)
}

// checkGame warns when the commands were registered on a manager without a
// Game resource, in which case every command reports that no game is running.
func checkGame(m *riotwave.Manager) {
	if riotwave.Resource[Game](m) == nil {
		m.Log().Warn("game commands registered without a game resource")
	}
}

// resolve finds the game and actor behind a command source.
func resolve(src cmd.Source, o *cmd.Output, tx *world.Tx) (*Game, *riotwave.Frame, *riotwave.Actor, bool) {
	_, a := riotwave.Command(src)
	if a == nil {
		o.Error("This command can only be used by players in the game.")
		return nil, nil, nil, false
	}
	g := riotwave.Resource[Game](a.Manager())
	if g == nil {
		o.Error("No game is running.")
		return nil, nil, nil, false
	}
	return g, a.Manager().Frame(riotwave.NewTxEngine(tx)), a, true
}

func playerSource(src cmd.Source) bool {
	_, ok := src.(*player.Player)
	return ok
}

// respawnCommand implements /respawn.
type respawnCommand struct{}

func (respawnCommand) Allow(src cmd.Source) bool { return playerSource(src) }

func (respawnCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	_, f, a, ok := resolve(src, o, tx)
	if !ok {
		return
	}
	if err := character.Respawn(f, a); err != nil {
		o.Errorf("Could not respawn: %v", err)
		return
	}
	o.Print("Back in the fight.")
}

// weaponCommand implements /weapon <name>.
type weaponCommand struct {
	Name string `cmd:"name"`
}

func (weaponCommand) Allow(src cmd.Source) bool { return playerSource(src) }

func (c weaponCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	g, f, a, ok := resolve(src, o, tx)
	if !ok {
		return
	}
	if err := g.GiveWeapon(f, a, c.Name); err != nil {
		o.Errorf("Could not equip %s: %v (available: %s)", c.Name, err, strings.Join(g.cfg.WeaponNames(), ", "))
		return
	}
	o.Printf("Equipped %s.", c.Name)
}

// enemyCommand implements /enemy <name>.
type enemyCommand struct {
	Name string `cmd:"name"`
}

func (enemyCommand) Allow(src cmd.Source) bool { return playerSource(src) }

func (c enemyCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	g, f, a, ok := resolve(src, o, tx)
	if !ok {
		return
	}
	e, err := g.Summon(f, a, c.Name)
	if err != nil {
		o.Errorf("Could not spawn %s: %v (available: %s)", c.Name, err, strings.Join(g.cfg.EnemyNames(), ", "))
		return
	}
	o.Printf("Spawned %s.", e.Name())
}
