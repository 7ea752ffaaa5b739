package system

import (
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
)

const (
	// groundProbeRange stands in for an unbounded downward ray.
	groundProbeRange float32 = 1e4
	// groundProbeSkin lifts the ray origin above the collider bottom so a body
	// resting on the ground still sees it.
	groundProbeSkin float32 = 0.05
)

// DistanceToGround measures from the bottom of collider straight down to the
// nearest collider on the ground mask. The bool is false when nothing is
// below.
func DistanceToGround(q PhysicsQuery, cfg *component.MovementConfig, collider cube.BBox) (float32, bool) {
	if q == nil || cfg == nil {
		return 0, false
	}
	lo, hi := collider.Min(), collider.Max()
	origin := mgl32.Vec3{(lo[0] + hi[0]) / 2, lo[1] + groundProbeSkin, (lo[2] + hi[2]) / 2}
	hit, ok := q.Raycast(origin, common.Down, groundProbeRange, cfg.GroundMask)
	if !ok {
		return 0, false
	}
	return max(hit.Distance-groundProbeSkin, 0), true
}

// GroundContacts returns the ground colliders overlapping a box of
// GroundCheckHalfExtent centred on feet. The result may be empty.
func GroundContacts(q PhysicsQuery, cfg *component.MovementConfig, feet mgl32.Vec3) []ecs.Entity {
	if q == nil || cfg == nil {
		return nil
	}
	return q.OverlapBox(feet, cfg.GroundCheckHalfExtent, cfg.GroundMask)
}

// feetOf returns the centre of the bottom face of box.
func feetOf(box cube.BBox) mgl32.Vec3 {
	lo, hi := box.Min(), box.Max()
	return mgl32.Vec3{(lo[0] + hi[0]) / 2, lo[1], (lo[2] + hi[2]) / 2}
}
