package component

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
)

// RigidBody is integrated by the physics system. Kinematic bodies are moved
// by their owner and skip integration.
type RigidBody struct {
	Velocity      mgl32.Vec3
	Mass          float32
	UseGravity    bool
	Kinematic     bool
	CollisionMask common.LayerMask
	// Friction damps horizontal velocity per second while resting on
	// something.
	Friction float32
}

var RigidBodyComponent = NewComponent[RigidBody]()
