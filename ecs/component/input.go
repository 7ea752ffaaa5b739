package component

import "github.com/go-gl/mathgl/mgl32"

// Input stores the actions sampled for the current frame. Move is the planar
// move axis (x right, y forward); Look is the view delta (x right, y up).
type Input struct {
	Move            mgl32.Vec2
	Look            mgl32.Vec2
	JumpPressed     bool
	SprintHeld      bool
	CrouchPressed   bool
	InteractPressed bool
	ReloadPressed   bool
	DebugPressed    bool
	SnapshotPressed bool
}

var InputComponent = NewComponent[Input]()
