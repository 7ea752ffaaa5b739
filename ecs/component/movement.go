package component

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
)

var ErrInvalidConfig = errors.New("movement: invalid config")

// MovementConfig is the read-only tuning of a controlled body. It is shared by
// pointer and never written after load.
type MovementConfig struct {
	Speed            float32
	JumpForce        float32
	AirControl       float32
	SprintMultiplier float32
	CrouchMultiplier float32
	AirSmoothing     float32
	// SprintMinForwardDot is the minimum alignment between the move direction
	// and the facing for sprint to apply.
	SprintMinForwardDot float32
	LedgeDropDistance   float32

	GroundCheckHalfExtent mgl32.Vec3
	GroundMask            common.LayerMask
	InteractableMask      common.LayerMask
	InteractionReach      float32

	LookSensitivity    float32
	BaseFOV            float32
	WalkFOV            float32
	SprintFOV          float32
	FOVSmoothing       float32
	FOVFollowsMovement bool
	CrouchCameraOffset float32
	EyeHeight          float32

	KillHeight float32

	Mass                float32
	ColliderHalfExtents mgl32.Vec3

	CrosshairBase     color.NRGBA
	CrosshairInteract color.NRGBA
	CrosshairFade     float32

	CarryDistance float32
	ThrowImpulse  float32
}

// Validate reports the first field that would break the movement model.
func (c *MovementConfig) Validate() error {
	switch {
	case c == nil:
		return fmt.Errorf("%w: missing", ErrInvalidConfig)
	case c.Speed <= 0:
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, c.Speed)
	case c.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidConfig, c.Mass)
	case c.AirSmoothing < 0:
		return fmt.Errorf("%w: air smoothing must not be negative, got %v", ErrInvalidConfig, c.AirSmoothing)
	case c.InteractionReach <= 0:
		return fmt.Errorf("%w: interaction reach must be positive, got %v", ErrInvalidConfig, c.InteractionReach)
	case c.GroundMask == 0:
		return fmt.Errorf("%w: ground mask is empty", ErrInvalidConfig)
	case c.BaseFOV <= 0 || c.BaseFOV >= 180:
		return fmt.Errorf("%w: base fov out of range, got %v", ErrInvalidConfig, c.BaseFOV)
	}
	return nil
}

var MovementConfigComponent = NewComponent[MovementConfig]()

type MovementTag uint8

const (
	Grounded MovementTag = iota
	Airborne
)

func (t MovementTag) String() string {
	if t == Airborne {
		return "airborne"
	}
	return "grounded"
}

// MovementState is the controller state machine of a body.
type MovementState struct {
	Tag      MovementTag
	Crouched bool
	// JumpPending is set when a jump is accepted and cleared once the impulse
	// is applied on the next physics tick.
	JumpPending bool
	// BelowKillHeight latches a kill height crossing until the body is back
	// above it.
	BelowKillHeight bool
}

var MovementStateComponent = NewComponent[MovementState]()
