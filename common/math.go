package common

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// FixedStep is the physics tick length in seconds.
	FixedStep float32 = 1.0 / 50.0
	// Gravity is the downward acceleration applied to bodies using gravity.
	Gravity float32 = -9.81

	epsilon float32 = 1e-5
)

var (
	Up      = mgl32.Vec3{0, 1, 0}
	Down    = mgl32.Vec3{0, -1, 0}
	Forward = mgl32.Vec3{0, 0, 1}
	Right   = mgl32.Vec3{1, 0, 0}
)

func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Clamp01 clamps t into [0, 1].
func Clamp01(t float32) float32 {
	return Clamp(t, 0, 1)
}

func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{Lerp(a[0], b[0], t), Lerp(a[1], b[1], t), Lerp(a[2], b[2], t)}
}

// Horizontal drops the vertical component of v.
func Horizontal(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], 0, v[2]}
}

func ApproxEqual(a, b float32) bool {
	return math32.Abs(a-b) <= epsilon
}

func ApproxEqualVec3(a, b mgl32.Vec3) bool {
	return ApproxEqual(a[0], b[0]) && ApproxEqual(a[1], b[1]) && ApproxEqual(a[2], b[2])
}

// YawRotation returns the body rotation for a yaw in degrees. Yaw 0 faces +Z.
func YawRotation(yaw float32) mgl32.Quat {
	return mgl32.QuatRotate(mgl32.DegToRad(yaw), Up)
}

// ViewRotation returns the camera rotation for yaw and pitch in degrees.
// Positive pitch looks up.
func ViewRotation(yaw, pitch float32) mgl32.Quat {
	return YawRotation(yaw).Mul(mgl32.QuatRotate(mgl32.DegToRad(-pitch), Right))
}

// FacingForward returns the unit forward vector of q.
func FacingForward(q mgl32.Quat) mgl32.Vec3 {
	return q.Rotate(Forward)
}

func LerpColor(a, b color.NRGBA, t float32) color.NRGBA {
	t = Clamp01(t)
	mix := func(x, y uint8) uint8 {
		return uint8(math32.Round(Lerp(float32(x), float32(y), t)))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
