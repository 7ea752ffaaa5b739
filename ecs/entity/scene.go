package entity

import (
	"fmt"

	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/milk9111/fpcontroller/prefabs"
)

// LoadScene builds every object of scene into w and then spawns the player.
// It returns the player entity.
func LoadScene(w *ecs.World, scene *prefabs.SceneSpec, layers *common.Layers, cfg *component.MovementConfig) (ecs.Entity, error) {
	if scene == nil {
		return 0, fmt.Errorf("load scene: scene is nil")
	}
	for i, spec := range scene.Entities {
		ctx := &buildContext{Scene: scene.Name, Name: spec.Name, Layers: layers}
		if _, err := BuildEntity(w, spec, ctx); err != nil {
			return 0, fmt.Errorf("load scene %s: entity %d: %w", scene.Name, i, err)
		}
	}
	player, err := NewPlayer(w, cfg, scene.Spawn, layers)
	if err != nil {
		return 0, fmt.Errorf("load scene %s: %w", scene.Name, err)
	}
	return player, nil
}
