package riotwave

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
)

// ActorOf extracts the actor from a player's handler.
// Returns nil if the player doesn't have a PlayerHandler.
func ActorOf(p *player.Player) *Actor {
	h, ok := p.Handler().(*PlayerHandler)
	if !ok {
		return nil
	}
	return h.actor
}

// Command extracts the player and actor from a command source.
// Returns (nil, nil) if the source is not a player or has no actor.
//
// Usage:
//
//	func (c Respawn) Run(src cmd.Source, out *cmd.Output, tx *world.Tx) {
//	    p, a := riotwave.Command(src)
//	    if a == nil {
//	        out.Error("Player-only command")
//	        return
//	    }
//	    // Use p and a...
//	}
//
// Commands are executed synchronously with the player, just like handlers.
func Command(src cmd.Source) (*player.Player, *Actor) {
	p, ok := src.(*player.Player)
	if !ok {
		return nil, nil
	}
	a := ActorOf(p)
	if a == nil {
		return nil, nil
	}
	return p, a
}
