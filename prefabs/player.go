package prefabs

import (
	"fmt"

	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs/component"
)

// PlayerSpec is the movement tuning read from player.yaml.
type PlayerSpec struct {
	Name                string  `yaml:"name"`
	Speed               float32 `yaml:"speed"`
	JumpForce           float32 `yaml:"jump_force"`
	AirControl          float32 `yaml:"air_control"`
	SprintMultiplier    float32 `yaml:"sprint_multiplier"`
	CrouchMultiplier    float32 `yaml:"crouch_multiplier"`
	AirSmoothing        float32 `yaml:"air_smoothing"`
	SprintMinForwardDot float32 `yaml:"sprint_min_forward_dot"`
	LedgeDropDistance   float32 `yaml:"ledge_drop_distance"`

	Ground struct {
		CheckHalfExtent Vec3Spec `yaml:"check_half_extent"`
		Layers          []string `yaml:"layers"`
	} `yaml:"ground"`

	Interaction struct {
		Reach  float32  `yaml:"reach"`
		Layers []string `yaml:"layers"`
	} `yaml:"interaction"`

	Camera struct {
		Sensitivity        float32 `yaml:"sensitivity"`
		BaseFOV            float32 `yaml:"base_fov"`
		WalkFOV            float32 `yaml:"walk_fov"`
		SprintFOV          float32 `yaml:"sprint_fov"`
		FOVSmoothing       float32 `yaml:"fov_smoothing"`
		FOVFollowsMovement bool    `yaml:"fov_follows_movement"`
		CrouchOffset       float32 `yaml:"crouch_offset"`
		EyeHeight          float32 `yaml:"eye_height"`
	} `yaml:"camera"`

	Body struct {
		Mass float32  `yaml:"mass"`
		Size Vec3Spec `yaml:"size"`
	} `yaml:"body"`

	Crosshair struct {
		Base     YAMLColor `yaml:"base"`
		Interact YAMLColor `yaml:"interact"`
		Fade     float32   `yaml:"fade"`
	} `yaml:"crosshair"`

	Carry struct {
		Distance     float32 `yaml:"distance"`
		ThrowImpulse float32 `yaml:"throw_impulse"`
	} `yaml:"carry"`

	KillHeight float32 `yaml:"kill_height"`
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec]("player.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// MovementConfig resolves the layer names of the spec against layers.
func (s *PlayerSpec) MovementConfig(layers *common.Layers) (*component.MovementConfig, error) {
	ground, err := layers.Mask(s.Ground.Layers...)
	if err != nil {
		return nil, fmt.Errorf("prefabs: player ground layers: %w", err)
	}
	interactable, err := layers.Mask(s.Interaction.Layers...)
	if err != nil {
		return nil, fmt.Errorf("prefabs: player interaction layers: %w", err)
	}

	cfg := &component.MovementConfig{
		Speed:                 s.Speed,
		JumpForce:             s.JumpForce,
		AirControl:            s.AirControl,
		SprintMultiplier:      s.SprintMultiplier,
		CrouchMultiplier:      s.CrouchMultiplier,
		AirSmoothing:          s.AirSmoothing,
		SprintMinForwardDot:   s.SprintMinForwardDot,
		LedgeDropDistance:     s.LedgeDropDistance,
		GroundCheckHalfExtent: s.Ground.CheckHalfExtent.Vec3(),
		GroundMask:            ground,
		InteractableMask:      interactable,
		InteractionReach:      s.Interaction.Reach,
		LookSensitivity:       s.Camera.Sensitivity,
		BaseFOV:               s.Camera.BaseFOV,
		WalkFOV:               s.Camera.WalkFOV,
		SprintFOV:             s.Camera.SprintFOV,
		FOVSmoothing:          s.Camera.FOVSmoothing,
		FOVFollowsMovement:    s.Camera.FOVFollowsMovement,
		CrouchCameraOffset:    s.Camera.CrouchOffset,
		EyeHeight:             s.Camera.EyeHeight,
		KillHeight:            s.KillHeight,
		Mass:                  s.Body.Mass,
		ColliderHalfExtents:   s.Body.Size.Vec3().Mul(0.5),
		CrosshairBase:         s.Crosshair.Base.NRGBA,
		CrosshairInteract:     s.Crosshair.Interact.NRGBA,
		CrosshairFade:         s.Crosshair.Fade,
		CarryDistance:         s.Carry.Distance,
		ThrowImpulse:          s.Carry.ThrowImpulse,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("prefabs: player.yaml: %w", err)
	}
	return cfg, nil
}

// LoadMovementConfig reads player.yaml into a validated movement config.
func LoadMovementConfig(layers *common.Layers) (*component.MovementConfig, error) {
	spec, err := LoadPlayerSpec()
	if err != nil {
		return nil, err
	}
	return spec.MovementConfig(layers)
}
