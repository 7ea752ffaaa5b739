package entity

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/milk9111/fpcontroller/ecs/system"
	"github.com/milk9111/fpcontroller/prefabs"
)

func loadDefaults(t *testing.T) (*common.Layers, *component.MovementConfig) {
	t.Helper()
	layers, err := prefabs.LoadLayers()
	if err != nil {
		t.Fatalf("LoadLayers: %v", err)
	}
	cfg, err := prefabs.LoadMovementConfig(layers)
	if err != nil {
		t.Fatalf("LoadMovementConfig: %v", err)
	}
	return layers, cfg
}

func TestLoadSandboxScene(t *testing.T) {
	layers, cfg := loadDefaults(t)
	scene, err := prefabs.LoadScene("sandbox")
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	w := ecs.NewWorld()

	player, err := LoadScene(w, scene, layers, cfg)
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	if got := len(ecs.Entities(w)); got != len(scene.Entities)+1 {
		t.Fatalf("expected %d entities, got %d", len(scene.Entities)+1, got)
	}

	for _, kind := range []func() bool{
		func() bool { return ecs.Has(w, player, component.PlayerTagComponent.Kind()) },
		func() bool { return ecs.Has(w, player, component.LookComponent.Kind()) },
		func() bool { return ecs.Has(w, player, component.CrosshairComponent.Kind()) },
		func() bool { return ecs.Has(w, player, component.GroundProbeComponent.Kind()) },
	} {
		if !kind() {
			t.Fatalf("player is missing a component")
		}
	}

	gate, ok := system.FindByName(w, "gate")
	if !ok {
		t.Fatalf("expected gate")
	}
	door, ok := ecs.Get(w, gate, component.DoorComponent.Kind())
	if !ok {
		t.Fatalf("expected door state on gate")
	}
	if !door.OpenPos.ApproxEqual(door.ClosedPos.Add(mgl32.Vec3{0, 2.4, 0})) {
		t.Fatalf("unexpected door positions %+v", door)
	}
	col, _ := ecs.Get(w, gate, component.ColliderComponent.Kind())
	interactable, _ := layers.Layer("interactable")
	if col.Layer != interactable || col.HalfExtents != (mgl32.Vec3{1, 1.25, 0.1}) {
		t.Fatalf("unexpected gate collider %+v", col)
	}

	swatch, _ := system.FindByName(w, "swatch")
	r, _ := ecs.Get(w, swatch, component.RenderableComponent.Kind())
	if r.Color != (color.NRGBA{R: 0xff, G: 0x45, A: 0xff}) {
		t.Fatalf("expected first palette colour, got %v", r.Color)
	}

	body, _ := ecs.Get(w, player, component.RigidBodyComponent.Kind())
	playerLayer, _ := layers.Layer(PlayerLayer)
	if body.CollisionMask.Has(playerLayer) || !body.CollisionMask.Has(interactable) {
		t.Fatalf("unexpected player collision mask %b", body.CollisionMask)
	}
}

func TestBuildEntityErrors(t *testing.T) {
	layers, err := common.NewLayers("default", "ground")
	if err != nil {
		t.Fatalf("NewLayers: %v", err)
	}
	transform := map[string]any{"position": []any{0, 0, 0}}

	cases := []struct {
		name       string
		components map[string]any
	}{
		{"empty", nil},
		{"unknown_component", map[string]any{"transform": transform, "jetpack": map[string]any{}}},
		{"unknown_layer", map[string]any{"collider": map[string]any{"size": []any{1, 1, 1}, "layer": "lava"}}},
		{"flat_collider", map[string]any{"collider": map[string]any{"size": []any{1, 0, 1}}}},
		{"door_without_transform", map[string]any{"door": map[string]any{}}},
		{"pickup_without_body", map[string]any{"transform": transform, "pickup": map[string]any{}}},
		{"unknown_interactable", map[string]any{"interactable": map[string]any{"kind": "teleporter"}}},
		{"empty_palette", map[string]any{"color_box": map[string]any{}}},
		{"empty_script", map[string]any{"script": map[string]any{}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			spec := prefabs.EntityBuildSpec{Name: c.name, Components: c.components}
			if _, err := BuildEntity(w, spec, &buildContext{Layers: layers}); err == nil {
				t.Fatalf("expected error")
			}
			if n := len(ecs.Entities(w)); n != 0 {
				t.Fatalf("expected failed entity to be destroyed, %d left", n)
			}
		})
	}
}

func TestNewPlayerSpawn(t *testing.T) {
	layers, cfg := loadDefaults(t)
	w := ecs.NewWorld()
	spawn := prefabs.SpawnSpec{Position: prefabs.Vec3Spec{1, 2, 3}, Yaw: 90, Pitch: 120}

	e, err := NewPlayer(w, cfg, spawn, layers)
	if err != nil {
		t.Fatalf("NewPlayer: %v", err)
	}
	look, _ := ecs.Get(w, e, component.LookComponent.Kind())
	if look.Pitch != 90 || look.Yaw != 90 {
		t.Fatalf("expected clamped spawn pitch, got %+v", look)
	}
	if look.StandingOffset != look.CameraOffset {
		t.Fatalf("expected standing offset to match the camera")
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	if tr.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Fatalf("unexpected spawn position %v", tr.Position)
	}

	noPlayer, _ := common.NewLayers("ground")
	if _, err := NewPlayer(ecs.NewWorld(), cfg, spawn, noPlayer); err == nil {
		t.Fatalf("expected error without a player layer")
	}
}
