package component

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
)

// Collider is an axis-aligned box centred on the transform position plus
// Offset. Colliders that are not Solid are still seen by queries but never
// block bodies.
type Collider struct {
	HalfExtents mgl32.Vec3
	Offset      mgl32.Vec3
	Layer       common.Layer
	Solid       bool
}

// Bounds returns the world box of the collider for a transform at pos.
func (c Collider) Bounds(pos mgl32.Vec3) cube.BBox {
	center := pos.Add(c.Offset)
	lo := center.Sub(c.HalfExtents)
	hi := center.Add(c.HalfExtents)
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}

var ColliderComponent = NewComponent[Collider]()
