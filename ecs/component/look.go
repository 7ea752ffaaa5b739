package component

import "github.com/go-gl/mathgl/mgl32"

// Look holds the view of a body. Angles are in degrees; Pitch stays in
// [-90, 90] and Yaw is unbounded.
type Look struct {
	Yaw       float32
	Pitch     float32
	FOV       float32
	TargetFOV float32
	// CameraOffset is the camera position relative to the body origin.
	CameraOffset mgl32.Vec3
	// StandingOffset is the camera offset restored when leaving a crouch.
	StandingOffset mgl32.Vec3
	CameraRotation mgl32.Quat
}

var LookComponent = NewComponent[Look]()
