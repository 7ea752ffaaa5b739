package component

import "github.com/go-gl/mathgl/mgl32"

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

var TransformComponent = NewComponent[Transform]()
