package system

import (
	"slices"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/ethaniccc/float32-cube/cube/trace"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/fpcontroller/common"
	"github.com/milk9111/fpcontroller/ecs"
	"github.com/milk9111/fpcontroller/ecs/component"
	"github.com/sirupsen/logrus"
)

const clipEpsilon float32 = 1e-4

// RaycastHit is the closest collider hit by a ray.
type RaycastHit struct {
	Entity   ecs.Entity
	Point    mgl32.Vec3
	Distance float32
}

// PhysicsQuery answers spatial questions against the colliders of a world.
type PhysicsQuery interface {
	Raycast(origin, dir mgl32.Vec3, maxDist float32, mask common.LayerMask) (RaycastHit, bool)
	OverlapBox(center, halfExtent mgl32.Vec3, mask common.LayerMask) []ecs.Entity
}

// CollisionEvent is published when a moving body starts touching another
// collider.
type CollisionEvent struct {
	Entity ecs.Entity
	Other  ecs.Entity
}

// PhysicsSystem integrates rigid bodies against axis-aligned colliders. The
// XZ footprint of every collider is indexed in a chipmunk space so queries and
// collision only test nearby boxes exactly.
type PhysicsSystem struct {
	space    *cp.Space
	indexed  map[ecs.Entity]*indexedCollider
	contacts map[ecs.Entity]map[ecs.Entity]struct{}
	log      logrus.FieldLogger
}

type indexedCollider struct {
	entity ecs.Entity
	shape  *cp.Shape
	box    cube.BBox
	layer  common.Layer
	solid  bool
}

var _ PhysicsQuery = (*PhysicsSystem)(nil)

func NewPhysicsSystem(log logrus.FieldLogger) *PhysicsSystem {
	return &PhysicsSystem{
		space:    cp.NewSpace(),
		indexed:  make(map[ecs.Entity]*indexedCollider),
		contacts: make(map[ecs.Entity]map[ecs.Entity]struct{}),
		log:      log,
	}
}

// Reset drops every indexed collider and contact, for scene reloads.
func (ps *PhysicsSystem) Reset() {
	if ps == nil {
		return
	}
	ps.log.WithField("colliders", len(ps.indexed)).Debug("physics: reset")
	ps.space = cp.NewSpace()
	ps.indexed = make(map[ecs.Entity]*indexedCollider)
	ps.contacts = make(map[ecs.Entity]map[ecs.Entity]struct{})
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	dt := w.Delta()
	ps.Sync(w)

	ecs.ForEach3(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), component.RigidBodyComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider, rb *component.RigidBody) {
		if rb.Kinematic {
			return
		}
		if rb.UseGravity {
			rb.Velocity[1] += common.Gravity * dt
		}

		box := c.Bounds(t.Position)
		touched := make(map[ecs.Entity]struct{})
		var moved mgl32.Vec3
		for _, axis := range [3]int{1, 0, 2} {
			delta := rb.Velocity[axis] * dt
			if delta == 0 {
				continue
			}
			wanted := delta
			if c.Solid {
				for _, other := range ps.solidNear(sweep(box, axis, delta), rb.CollisionMask, e) {
					clipped := clipAxis(box, other.box, axis, delta)
					if clipped != delta {
						touched[other.entity] = struct{}{}
						delta = clipped
					}
				}
			}
			if delta != wanted {
				if axis == 1 && wanted < 0 && rb.Friction > 0 {
					damp := max(0, 1-rb.Friction*dt)
					rb.Velocity[0] *= damp
					rb.Velocity[2] *= damp
				}
				rb.Velocity[axis] = 0
			}
			moved[axis] = delta
			box = translateAxis(box, axis, delta)
		}

		t.Position = t.Position.Add(moved)
		ps.index(e, c, box)
		ps.reportContacts(w, e, touched)
	})
}

// Sync brings the index up to date with the colliders of w.
func (ps *PhysicsSystem) Sync(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	seen := make(map[ecs.Entity]struct{}, len(ps.indexed))
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider) {
		seen[e] = struct{}{}
		ps.index(e, c, c.Bounds(t.Position))
	})
	for e := range ps.indexed {
		if _, ok := seen[e]; !ok {
			ps.unindex(e)
		}
	}
}

func (ps *PhysicsSystem) index(e ecs.Entity, c *component.Collider, box cube.BBox) {
	if rec, ok := ps.indexed[e]; ok {
		if rec.box == box && rec.layer == c.Layer && rec.solid == c.Solid {
			return
		}
		ps.space.RemoveShape(rec.shape)
	}

	shape := cp.NewBox2(ps.space.StaticBody, footprint(box), 0)
	shape.SetFilter(cp.ShapeFilter{Categories: uint(c.Layer), Mask: uint(common.AllLayers)})
	rec := &indexedCollider{entity: e, shape: shape, box: box, layer: c.Layer, solid: c.Solid}
	shape.UserData = rec
	ps.space.AddShape(shape)
	ps.indexed[e] = rec
}

func (ps *PhysicsSystem) unindex(e ecs.Entity) {
	rec, ok := ps.indexed[e]
	if !ok {
		return
	}
	ps.space.RemoveShape(rec.shape)
	delete(ps.indexed, e)
	delete(ps.contacts, e)
}

func (ps *PhysicsSystem) reportContacts(w *ecs.World, e ecs.Entity, touched map[ecs.Entity]struct{}) {
	previous := ps.contacts[e]
	for other := range touched {
		if _, ok := previous[other]; ok {
			continue
		}
		ecs.Publish(w, CollisionEvent{Entity: e, Other: other})
	}
	ps.contacts[e] = touched
}

// near returns indexed colliders on mask whose footprint overlaps box.
func (ps *PhysicsSystem) near(box cube.BBox, mask common.LayerMask) []*indexedCollider {
	var out []*indexedCollider
	filter := cp.ShapeFilter{Categories: uint(common.AllLayers), Mask: uint(mask)}
	ps.space.BBQuery(footprint(box), filter, func(shape *cp.Shape, _ interface{}) {
		if rec, ok := shape.UserData.(*indexedCollider); ok {
			out = append(out, rec)
		}
	}, nil)
	slices.SortFunc(out, func(a, b *indexedCollider) int {
		switch {
		case a.entity < b.entity:
			return -1
		case a.entity > b.entity:
			return 1
		}
		return 0
	})
	return out
}

func (ps *PhysicsSystem) solidNear(box cube.BBox, mask common.LayerMask, self ecs.Entity) []*indexedCollider {
	candidates := ps.near(box, mask)
	out := candidates[:0]
	for _, rec := range candidates {
		if rec.entity != self && rec.solid {
			out = append(out, rec)
		}
	}
	return out
}

// Raycast returns the closest collider on mask hit by the segment from origin
// along dir for maxDist.
func (ps *PhysicsSystem) Raycast(origin, dir mgl32.Vec3, maxDist float32, mask common.LayerMask) (RaycastHit, bool) {
	if ps == nil || maxDist <= 0 || dir.Len() == 0 {
		return RaycastHit{}, false
	}
	end := origin.Add(dir.Normalize().Mul(maxDist))
	lo, hi := minVec(origin, end), maxVec(origin, end)
	span := cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])

	var (
		best  RaycastHit
		found bool
	)
	for _, rec := range ps.near(span, mask) {
		res, ok := trace.BBoxIntercept(rec.box, origin, end)
		if !ok {
			continue
		}
		point := res.Position()
		dist := point.Sub(origin).Len()
		if !found || dist < best.Distance {
			best = RaycastHit{Entity: rec.entity, Point: point, Distance: dist}
			found = true
		}
	}
	return best, found
}

// OverlapBox returns every collider on mask intersecting the box, ordered by
// entity.
func (ps *PhysicsSystem) OverlapBox(center, halfExtent mgl32.Vec3, mask common.LayerMask) []ecs.Entity {
	if ps == nil {
		return nil
	}
	lo, hi := center.Sub(halfExtent), center.Add(halfExtent)
	query := cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])

	var out []ecs.Entity
	for _, rec := range ps.near(query, mask) {
		if rec.box.IntersectsWith(query) {
			out = append(out, rec.entity)
		}
	}
	return out
}

// clipAxis shortens delta along axis so moving does not enter static.
func clipAxis(moving, static cube.BBox, axis int, delta float32) float32 {
	mMin, mMax := moving.Min(), moving.Max()
	sMin, sMax := static.Min(), static.Max()
	for i := 0; i < 3; i++ {
		if i == axis {
			continue
		}
		if mMax[i] <= sMin[i]+clipEpsilon || mMin[i] >= sMax[i]-clipEpsilon {
			return delta
		}
	}
	switch {
	case delta > 0 && mMax[axis] <= sMin[axis]+clipEpsilon:
		if gap := sMin[axis] - mMax[axis]; gap < delta {
			return max(gap, 0)
		}
	case delta < 0 && mMin[axis] >= sMax[axis]-clipEpsilon:
		if gap := sMax[axis] - mMin[axis]; gap > delta {
			return min(gap, 0)
		}
	}
	return delta
}

func sweep(box cube.BBox, axis int, delta float32) cube.BBox {
	lo, hi := box.Min(), box.Max()
	if delta < 0 {
		lo[axis] += delta
	} else {
		hi[axis] += delta
	}
	return cube.Box(lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
}

func translateAxis(box cube.BBox, axis int, delta float32) cube.BBox {
	var offset mgl32.Vec3
	offset[axis] = delta
	return box.Translate(offset)
}

func footprint(box cube.BBox) cp.BB {
	lo, hi := box.Min(), box.Max()
	return cp.BB{L: float64(lo[0]), B: float64(lo[2]), R: float64(hi[0]), T: float64(hi[2])}
}

func minVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func maxVec(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}
