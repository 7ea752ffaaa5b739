package entity

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/milk9111/fpcontroller/prefabs"
)

type buildContext struct {
	Scene  string
	Name   string
	Layers *common.Layers
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":    addTransform,
	"collider":     addCollider,
	"rigid_body":   addRigidBody,
	"renderable":   addRenderable,
	"interactable": addInteractable,
	"door":         addDoor,
	"pickup":       addPickup,
	"color_box":    addColorBox,
	"script":       addScript,
}

// componentBuildOrder puts transform first since door and renderable read it.
var componentBuildOrder = []string{
	"transform",
	"collider",
	"rigid_body",
	"renderable",
	"interactable",
	"door",
	"pickup",
	"color_box",
	"script",
}

// BuildEntity creates one scene object from spec. The entity is destroyed
// again when any component fails to build.
func BuildEntity(w *ecs.World, spec prefabs.EntityBuildSpec, ctx *buildContext) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: %q does not define components", spec.Name)
	}

	e := ecs.CreateEntity(w)
	if spec.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	build := func(name string) error {
		builder, ok := componentRegistry[name]
		if !ok {
			return fmt.Errorf("build entity: %q: no builder for component %q", spec.Name, name)
		}
		if err := builder(w, e, remaining[name], ctx); err != nil {
			return fmt.Errorf("build entity: %q: add %q: %w", spec.Name, name, err)
		}
		delete(remaining, name)
		return nil
	}

	for _, name := range componentBuildOrder {
		if _, ok := remaining[name]; !ok {
			continue
		}
		if err := build(name); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := build(name); err != nil {
				ecs.DestroyEntity(w, e)
				return 0, err
			}
		}
	}

	return e, nil
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: spec.Position.Vec3(),
		Rotation: common.YawRotation(spec.Yaw),
	})
}

func addCollider(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ColliderComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collider spec: %w", err)
	}
	size := spec.Size.Vec3()
	if size[0] <= 0 || size[1] <= 0 || size[2] <= 0 {
		return fmt.Errorf("collider size must be positive, got %v", size)
	}
	name := spec.Layer
	if name == "" {
		name = "default"
	}
	layer, err := ctx.Layers.Layer(name)
	if err != nil {
		return err
	}
	solid := true
	if spec.Solid != nil {
		solid = *spec.Solid
	}
	return ecs.Add(w, e, component.ColliderComponent.Kind(), &component.Collider{
		HalfExtents: size.Mul(0.5),
		Offset:      spec.Offset.Vec3(),
		Layer:       layer,
		Solid:       solid,
	})
}

func addRigidBody(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.RigidBodyComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode rigid_body spec: %w", err)
	}
	mask, err := ctx.Layers.Mask(spec.Collides...)
	if err != nil {
		return err
	}
	gravity := true
	if spec.Gravity != nil {
		gravity = *spec.Gravity
	}
	mass := spec.Mass
	if mass <= 0 {
		mass = 1
	}
	return ecs.Add(w, e, component.RigidBodyComponent.Kind(), &component.RigidBody{
		Mass:          mass,
		UseGravity:    gravity,
		Kinematic:     spec.Kinematic,
		CollisionMask: mask,
		Friction:      spec.Friction,
	})
}

func addRenderable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.RenderableComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode renderable spec: %w", err)
	}
	c := spec.Color.NRGBA
	if c == (color.NRGBA{}) {
		c = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	}
	return ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{Color: c})
}

var interactKinds = map[string]component.InteractKind{
	"door":      component.InteractDoor,
	"pickup":    component.InteractPickup,
	"color_box": component.InteractColorBox,
	"script":    component.InteractScript,
}

func addInteractable(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.InteractableComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode interactable spec: %w", err)
	}
	kind, ok := interactKinds[spec.Kind]
	if !ok {
		return fmt.Errorf("unknown interactable kind %q", spec.Kind)
	}
	return ecs.Add(w, e, component.InteractableComponent.Kind(), &component.Interactable{Kind: kind, Prompt: spec.Prompt})
}

func addDoor(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.DoorComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode door spec: %w", err)
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return fmt.Errorf("door requires a transform on the same entity")
	}
	closed := t.Position
	open := closed.Add(spec.OpenOffset.Vec3())
	if spec.Open {
		t.Position = open
	}
	return ecs.Add(w, e, component.DoorComponent.Kind(), &component.Door{
		Open:         spec.Open,
		ClosedPos:    closed,
		OpenPos:      open,
		OpenPrompt:   spec.OpenPrompt,
		ClosedPrompt: spec.ClosedPrompt,
	})
}

func addPickup(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PickupComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode pickup spec: %w", err)
	}
	if !ecs.Has(w, e, component.RigidBodyComponent.Kind()) {
		return fmt.Errorf("pickup requires a rigid_body on the same entity")
	}
	return ecs.Add(w, e, component.PickupComponent.Kind(), &component.Pickup{CarryPrompt: spec.CarryPrompt})
}

func addColorBox(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ColorBoxComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode color_box spec: %w", err)
	}
	if len(spec.Palette) == 0 {
		return fmt.Errorf("color_box palette is empty")
	}
	palette := make([]color.NRGBA, len(spec.Palette))
	for i, c := range spec.Palette {
		palette[i] = c.NRGBA
	}
	if r, ok := ecs.Get(w, e, component.RenderableComponent.Kind()); ok {
		r.Color = palette[0]
	} else if err := ecs.Add(w, e, component.RenderableComponent.Kind(), &component.Renderable{Color: palette[0]}); err != nil {
		return err
	}
	return ecs.Add(w, e, component.ColorBoxComponent.Kind(), &component.ColorBox{Palette: palette})
}

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.ScriptComponentSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("script path is empty")
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: spec.Path})
}

// SetEntityTransform moves e to pos facing yaw, adding a transform if needed.
func SetEntityTransform(w *ecs.World, e ecs.Entity, pos mgl32.Vec3, yaw float32) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		t = &component.Transform{}
	}
	t.Position = pos
	t.Rotation = common.YawRotation(yaw)
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}
