// Package camera provides an orbit camera for viewing the spiral scene.
package camera

import "math"

// Camera orbits a target point at a controllable distance. The distance
// feeds the curve LOD ladder; azimuth and elevation control the viewpoint.
type Camera struct {
	// Target is the orbit center in world coordinates
	TargetX, TargetY, TargetZ float32

	// Orbit parameters
	Azimuth   float32 // radians around the Y axis
	Elevation float32 // radians above the horizon
	Distance  float32

	// Distance constraints
	MinDistance, MaxDistance float32

	// Path-follow mode: when enabled the camera rides the backbone
	FollowProgress float32 // normalized [0,1]
	Following      bool
}

// New creates a camera orbiting the origin at the given distance.
func New(distance float32) *Camera {
	return &Camera{
		Azimuth:     0.6,
		Elevation:   0.35,
		Distance:    distance,
		MinDistance: 10,
		MaxDistance: 5000,
	}
}

// Position returns the camera's world position on its orbit sphere.
func (c *Camera) Position() (x, y, z float32) {
	cosE := float32(math.Cos(float64(c.Elevation)))
	x = c.TargetX + c.Distance*cosE*float32(math.Cos(float64(c.Azimuth)))
	y = c.TargetY + c.Distance*float32(math.Sin(float64(c.Elevation)))
	z = c.TargetZ + c.Distance*cosE*float32(math.Sin(float64(c.Azimuth)))
	return x, y, z
}

// Orbit rotates the viewpoint by the given azimuth/elevation deltas.
// Elevation is clamped short of the poles to keep the up vector stable.
func (c *Camera) Orbit(dAzimuth, dElevation float32) {
	c.Azimuth += dAzimuth
	c.Elevation = clamp(c.Elevation+dElevation, -1.5, 1.5)
}

// Dolly scales the orbit distance by the given factor, clamped to the
// configured range.
func (c *Camera) Dolly(factor float32) {
	c.Distance = clamp(c.Distance*factor, c.MinDistance, c.MaxDistance)
}

// Pan moves the orbit target in the horizontal plane of the current view.
func (c *Camera) Pan(dx, dy float32) {
	sinA := float32(math.Sin(float64(c.Azimuth)))
	cosA := float32(math.Cos(float64(c.Azimuth)))
	// Right vector in the XZ plane, view-relative
	c.TargetX += -sinA * dx
	c.TargetZ += cosA * dx
	c.TargetY += dy
}

// LookAt recenters the orbit on a world position.
func (c *Camera) LookAt(x, y, z float32) {
	c.TargetX = x
	c.TargetY = y
	c.TargetZ = z
}

// Advance moves the path-follow progress by delta, clamped to [0,1].
func (c *Camera) Advance(delta float32) {
	c.FollowProgress = clamp(c.FollowProgress+delta, 0, 1)
}

// Reset restores the default orbit around the origin.
func (c *Camera) Reset() {
	c.TargetX, c.TargetY, c.TargetZ = 0, 0, 0
	c.Azimuth = 0.6
	c.Elevation = 0.35
	c.FollowProgress = 0
	c.Following = false
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
