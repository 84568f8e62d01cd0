package riotwave

import (
	"testing"

	"github.com/df-mc/dragonfly/server/block"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
)

func TestSolidUsesCollisionBoxes(t *testing.T) {
	tests := []struct {
		name  string
		block world.Block
		want  bool
	}{
		{"air", block.Air{}, false},
		{"stone", block.Stone{}, true},
		{"short grass", block.ShortGrass{}, false},
		{"torch", block.Torch{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := solid(tt.block, cube.Pos{0, 64, 0}, nil); got != tt.want {
				t.Errorf("expected solid=%v, got %v", tt.want, got)
			}
		})
	}
}
