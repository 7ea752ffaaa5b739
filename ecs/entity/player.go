package entity

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/milk9111/fpcontroller/prefabs"
)

// PlayerLayer is the layer name of the controlled body. It collides with
// every other layer.
const PlayerLayer = "player"

// NewPlayer creates the controlled body at spawn. The transform sits at the
// feet and the collider is lifted by half its height.
func NewPlayer(w *ecs.World, cfg *component.MovementConfig, spawn prefabs.SpawnSpec, layers *common.Layers) (ecs.Entity, error) {
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}
	layer, err := layers.Layer(PlayerLayer)
	if err != nil {
		return 0, fmt.Errorf("player: %w", err)
	}
	var mask common.LayerMask
	for _, name := range layers.Names() {
		if name == PlayerLayer {
			continue
		}
		l, _ := layers.Layer(name)
		mask = mask.With(l)
	}

	pitch := common.Clamp(spawn.Pitch, -90, 90)
	eye := mgl32.Vec3{0, cfg.EyeHeight, 0}

	e := ecs.CreateEntity(w)
	adds := []func() error{
		func() error {
			return ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: PlayerLayer})
		},
		func() error { return ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{}) },
		func() error { return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{}) },
		func() error { return ecs.Add(w, e, component.MovementConfigComponent.Kind(), cfg) },
		func() error {
			return ecs.Add(w, e, component.MovementStateComponent.Kind(), &component.MovementState{Tag: component.Airborne})
		},
		func() error { return SetEntityTransform(w, e, spawn.Position.Vec3(), spawn.Yaw) },
		func() error {
			return ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
				HalfExtents: cfg.ColliderHalfExtents,
				Offset:      mgl32.Vec3{0, cfg.ColliderHalfExtents[1], 0},
				Layer:       layer,
				Solid:       true,
			})
		},
		func() error {
			return ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
				Mass:          cfg.Mass,
				UseGravity:    true,
				CollisionMask: mask,
			})
		},
		func() error {
			return ecs.Add(w, e, component.LookComponent.Kind(), &component.Look{
				Yaw:            spawn.Yaw,
				Pitch:          pitch,
				FOV:            cfg.BaseFOV,
				TargetFOV:      cfg.BaseFOV,
				CameraOffset:   eye,
				StandingOffset: eye,
				CameraRotation: common.ViewRotation(spawn.Yaw, pitch),
			})
		},
		func() error {
			return ecs.Add(w, e, component.CrosshairComponent.Kind(), &component.Crosshair{Displayed: cfg.CrosshairBase})
		},
		func() error { return ecs.Add(w, e, component.PromptComponent.Kind(), &component.Prompt{}) },
		func() error {
			return ecs.Add(w, e, component.InteractionTargetComponent.Kind(), &component.InteractionTarget{})
		},
		func() error { return ecs.Add(w, e, component.GroundProbeComponent.Kind(), &component.GroundProbe{}) },
	}
	for _, add := range adds {
		if err := add(); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("player: %w", err)
		}
	}
	return e, nil
}
