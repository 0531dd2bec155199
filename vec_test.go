package isoslice

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vecNear(a, b Vec3, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) < tol
}

func TestV3(t *testing.T) {
	v := V3(1, 2, 3)
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("V3(1, 2, 3) = %v", v)
	}
}

func TestRotateAxisAngle(t *testing.T) {
	tests := []struct {
		name  string
		axis  Vec3
		angle float64
		in    Vec3
		want  Vec3
	}{
		{"identity", Up, 0, V3(1, 2, 3), V3(1, 2, 3)},
		{"y 90 right", Up, math.Pi / 2, Right, V3(0, 0, -1)},
		{"x 90 up", Right, math.Pi / 2, Up, V3(0, 0, 1)},
		{"z 90 right", Forward, math.Pi / 2, Right, V3(0, 1, 0)},
		{"z 180", Forward, math.Pi, V3(1, 1, 0), V3(-1, -1, 0)},
		{"zero axis", Vec3{}, 1, V3(1, 0, 0), V3(1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rotate(AxisAngle(tt.axis, tt.angle), tt.in)
			if !vecNear(got, tt.want, 1e-9) {
				t.Errorf("Rotate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromToRotation(t *testing.T) {
	targets := []Vec3{
		V3(1, 0, 0),
		V3(0, 1, 0),
		V3(0, -1, 0),
		V3(0, 0, 2),
		V3(1, 1, 1),
		V3(-3, 0.5, 2),
	}
	for _, to := range targets {
		q := FromToRotation(Up, to)
		got := Rotate(q, Up)
		want := r3.Unit(to)
		if !vecNear(got, want, 1e-9) {
			t.Errorf("FromToRotation(Up, %v) maps Up to %v, want %v", to, got, want)
		}
	}
}

func TestFromToRotationDegenerate(t *testing.T) {
	if q := FromToRotation(Up, Vec3{}); q != Identity {
		t.Errorf("zero target = %v, want identity", q)
	}
	if q := FromToRotation(Up, V3(0, 5, 0)); q != Identity {
		t.Errorf("parallel target = %v, want identity", q)
	}
}

func TestEuler(t *testing.T) {
	// 90° about Y turns forward into right.
	got := Rotate(Euler(0, 90, 0), Forward)
	if !vecNear(got, Right, 1e-9) {
		t.Errorf("Euler(0, 90, 0) forward = %v, want %v", got, Right)
	}
}

func TestPoseAxes(t *testing.T) {
	p := Pose{Rotation: Euler(0, 90, 0)}
	if !vecNear(p.Forward(), Right, 1e-9) {
		t.Errorf("Forward() = %v, want %v", p.Forward(), Right)
	}
	if !vecNear(p.Right(), V3(0, 0, -1), 1e-9) {
		t.Errorf("Right() = %v, want (0, 0, -1)", p.Right())
	}
	if !vecNear(p.Up(), Up, 1e-9) {
		t.Errorf("Up() = %v, want %v", p.Up(), Up)
	}
}

func TestPoseEqual(t *testing.T) {
	a := IdentityPose()
	b := IdentityPose()
	if !a.Equal(b) {
		t.Error("identity poses should be equal")
	}
	b.Position.X = 1e-12
	if a.Equal(b) {
		t.Error("poses differing in position should not be equal")
	}
	c := Pose{Rotation: Euler(0, 1, 0)}
	if a.Equal(c) {
		t.Error("poses differing in rotation should not be equal")
	}
}
