package kin

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Pose is the position and orientation of the chain tip in the root frame.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// FK computes the tip pose for configuration q (length DOF). Mimic joints
// follow their master's value; their own q entry is ignored.
func (c *Chain) FK(q []float64) (Pose, error) {
	if len(q) != c.DOF() {
		return Pose{}, fmt.Errorf("kin: configuration length %d, chain has %d dof", len(q), c.DOF())
	}

	pos := mgl64.Vec3{}
	rot := mgl64.QuatIdent()

	qi := 0
	for _, j := range c.Joints {
		pos = pos.Add(rot.Rotate(j.Origin))
		switch j.Type {
		case Revolute:
			rot = rot.Mul(mgl64.QuatRotate(c.jointValue(q, qi), j.Axis.Normalize()))
			qi++
		case Prismatic:
			pos = pos.Add(rot.Rotate(j.Axis.Normalize()).Mul(c.jointValue(q, qi)))
			qi++
		}
	}
	return Pose{Position: pos, Orientation: rot.Normalize()}, nil
}

// JointPositions returns the root-frame position of every joint origin
// in chain order, followed by the tip. Used for rendering.
func (c *Chain) JointPositions(q []float64) ([]mgl64.Vec3, error) {
	if len(q) != c.DOF() {
		return nil, fmt.Errorf("kin: configuration length %d, chain has %d dof", len(q), c.DOF())
	}

	points := make([]mgl64.Vec3, 0, len(c.Joints)+1)
	pos := mgl64.Vec3{}
	rot := mgl64.QuatIdent()

	qi := 0
	for _, j := range c.Joints {
		pos = pos.Add(rot.Rotate(j.Origin))
		points = append(points, pos)
		switch j.Type {
		case Revolute:
			rot = rot.Mul(mgl64.QuatRotate(c.jointValue(q, qi), j.Axis.Normalize()))
			qi++
		case Prismatic:
			pos = pos.Add(rot.Rotate(j.Axis.Normalize()).Mul(c.jointValue(q, qi)))
			qi++
		}
	}
	points = append(points, pos)
	return points, nil
}

// Jacobian builds the 6xn geometric Jacobian at q, rows ordered as three
// linear then three angular velocity components in the root frame. The
// matrix is freshly allocated per call; mimic joints contribute their own
// raw columns (coupling is folded in by the solver's reducer).
func (c *Chain) Jacobian(q []float64) (*mat.Dense, error) {
	n := c.DOF()
	if len(q) != n {
		return nil, fmt.Errorf("kin: configuration length %d, chain has %d dof", len(q), n)
	}

	type axisFrame struct {
		kind JointType
		z    mgl64.Vec3 // joint axis in root frame
		p    mgl64.Vec3 // joint origin in root frame
	}
	frames := make([]axisFrame, 0, n)

	pos := mgl64.Vec3{}
	rot := mgl64.QuatIdent()

	qi := 0
	for _, j := range c.Joints {
		pos = pos.Add(rot.Rotate(j.Origin))
		if j.Type == Fixed {
			continue
		}
		axis := rot.Rotate(j.Axis.Normalize())
		frames = append(frames, axisFrame{kind: j.Type, z: axis, p: pos})
		switch j.Type {
		case Revolute:
			rot = rot.Mul(mgl64.QuatRotate(c.jointValue(q, qi), j.Axis.Normalize()))
		case Prismatic:
			pos = pos.Add(axis.Mul(c.jointValue(q, qi)))
		}
		qi++
	}
	tip := pos

	jac := mat.NewDense(6, n, nil)
	for col, f := range frames {
		switch f.kind {
		case Revolute:
			lin := f.z.Cross(tip.Sub(f.p))
			for r := 0; r < 3; r++ {
				jac.Set(r, col, lin[r])
				jac.Set(r+3, col, f.z[r])
			}
		case Prismatic:
			for r := 0; r < 3; r++ {
				jac.Set(r, col, f.z[r])
			}
		}
	}
	return jac, nil
}
