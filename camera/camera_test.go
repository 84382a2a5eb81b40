package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(400)

	if cam.Distance != 400 {
		t.Errorf("expected distance 400, got %f", cam.Distance)
	}
	if cam.TargetX != 0 || cam.TargetY != 0 || cam.TargetZ != 0 {
		t.Errorf("expected target at origin, got (%f, %f, %f)",
			cam.TargetX, cam.TargetY, cam.TargetZ)
	}
}

func TestPositionOnOrbitSphere(t *testing.T) {
	cam := New(100)

	// The camera always sits at Distance from the target
	for _, az := range []float32{0, 0.5, 1.5, 3.0} {
		cam.Azimuth = az
		x, y, z := cam.Position()
		dx := float64(x - cam.TargetX)
		dy := float64(y - cam.TargetY)
		dz := float64(z - cam.TargetZ)
		d := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if math.Abs(d-100) > 0.01 {
			t.Errorf("azimuth %f: distance %f, want 100", az, d)
		}
	}
}

func TestOrbitClampsElevation(t *testing.T) {
	cam := New(100)

	cam.Orbit(0, 10)
	if cam.Elevation > 1.5 {
		t.Errorf("expected elevation clamped to 1.5, got %f", cam.Elevation)
	}
	cam.Orbit(0, -10)
	if cam.Elevation < -1.5 {
		t.Errorf("expected elevation clamped to -1.5, got %f", cam.Elevation)
	}
}

func TestDollyClamps(t *testing.T) {
	cam := New(100)

	cam.Dolly(0.001)
	if cam.Distance != cam.MinDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MinDistance, cam.Distance)
	}
	cam.Dolly(1e9)
	if cam.Distance != cam.MaxDistance {
		t.Errorf("expected distance clamped to %f, got %f", cam.MaxDistance, cam.Distance)
	}
}

func TestPanMovesTarget(t *testing.T) {
	cam := New(100)
	cam.Azimuth = 0

	cam.Pan(10, 5)
	if cam.TargetY != 5 {
		t.Errorf("expected vertical pan of 5, got %f", cam.TargetY)
	}
	// At azimuth 0 the right vector is +Z
	if math.Abs(float64(cam.TargetZ-10)) > 0.001 {
		t.Errorf("expected horizontal pan along Z, got (%f, %f)", cam.TargetX, cam.TargetZ)
	}
}

func TestAdvanceClampsProgress(t *testing.T) {
	cam := New(100)

	cam.Advance(0.7)
	cam.Advance(0.7)
	if cam.FollowProgress != 1 {
		t.Errorf("expected progress clamped to 1, got %f", cam.FollowProgress)
	}
	cam.Advance(-2)
	if cam.FollowProgress != 0 {
		t.Errorf("expected progress clamped to 0, got %f", cam.FollowProgress)
	}
}

func TestReset(t *testing.T) {
	cam := New(100)
	cam.LookAt(5, 6, 7)
	cam.Orbit(1, 0.5)
	cam.Advance(0.5)

	cam.Reset()

	if cam.TargetX != 0 || cam.TargetY != 0 || cam.TargetZ != 0 {
		t.Errorf("expected target reset to origin, got (%f, %f, %f)",
			cam.TargetX, cam.TargetY, cam.TargetZ)
	}
	if cam.FollowProgress != 0 || cam.Following {
		t.Error("expected follow mode reset")
	}
}
