package system

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
)

const maxPitch float32 = 90

// ApplyLook accumulates a view delta into look and returns the camera and
// body rotations. Only the camera pitches; the body takes the yaw alone.
func ApplyLook(delta mgl32.Vec2, cfg *component.MovementConfig, look *component.Look) (camera, body mgl32.Quat) {
	look.Yaw += delta[0] * cfg.LookSensitivity
	look.Pitch = common.Clamp(look.Pitch+delta[1]*cfg.LookSensitivity, -maxPitch, maxPitch)
	look.CameraRotation = common.ViewRotation(look.Yaw, look.Pitch)
	return look.CameraRotation, common.YawRotation(look.Yaw)
}

// BlendFOV moves the FOV toward its target, or pins it to the base value when
// the FOV does not follow movement.
func BlendFOV(look *component.Look, cfg *component.MovementConfig, dt float32) {
	if !cfg.FOVFollowsMovement {
		look.FOV = cfg.BaseFOV
		return
	}
	look.FOV = common.Lerp(look.FOV, look.TargetFOV, common.Clamp01(dt*cfg.FOVSmoothing))
}

// LookSystem turns the view from the frame input and follows the movement
// events published since the last frame.
type LookSystem struct{}

func NewLookSystem() *LookSystem {
	return &LookSystem{}
}

func (l *LookSystem) Update(w *ecs.World) {
	if l == nil || w == nil {
		return
	}

	targets := make(map[ecs.Entity]float32)
	for _, evt := range ecs.Drain[MovementEvent](w) {
		targets[evt.Entity] = evt.TargetFOV
	}

	dt := w.Delta()
	ecs.ForEach4(w, component.InputComponent.Kind(), component.MovementConfigComponent.Kind(), component.LookComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, in *component.Input, cfg *component.MovementConfig, look *component.Look, t *component.Transform) {
		_, body := ApplyLook(in.Look, cfg, look)
		t.Rotation = body

		if fov, ok := targets[e]; ok {
			look.TargetFOV = fov
		}
		BlendFOV(look, cfg, dt)
	})
}
