package kin

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type JointType int

const (
	Revolute JointType = iota
	Prismatic
	Fixed
)

func (t JointType) String() string {
	switch t {
	case Revolute:
		return "revolute"
	case Prismatic:
		return "prismatic"
	case Fixed:
		return "fixed"
	}
	return "unknown"
}

// ParseJointType maps a config string to a JointType.
func ParseJointType(s string) (JointType, error) {
	switch s {
	case "revolute":
		return Revolute, nil
	case "prismatic":
		return Prismatic, nil
	case "fixed":
		return Fixed, nil
	}
	return Fixed, fmt.Errorf("kin: unknown joint type %q", s)
}

// Mimic ties a joint to a master joint: position = Multiplier*master + Offset,
// velocity = Multiplier*master velocity. The offset plays no role at the
// velocity level.
type Mimic struct {
	Joint      string
	Multiplier float64
	Offset     float64
}

// Joint describes one joint of a serial chain. Axis is expressed in the
// frame of the previous joint; Origin is the fixed translation from the
// previous joint to this one.
type Joint struct {
	Name   string
	Type   JointType
	Axis   mgl64.Vec3
	Origin mgl64.Vec3
	Mimic  *Mimic
}

// Chain is an ordered serial kinematic chain, root to tip. Movable joints
// (revolute and prismatic, mimic or not) each own one entry of the
// configuration vector, in chain order.
type Chain struct {
	Name   string
	Joints []Joint

	movable []int // joint list index per configuration entry
}

func NewChain(name string, joints []Joint) (*Chain, error) {
	c := &Chain{Name: name, Joints: joints}
	seen := make(map[string]bool, len(joints))
	for i, j := range joints {
		if j.Name == "" {
			return nil, fmt.Errorf("kin: joint %d has no name", i)
		}
		if seen[j.Name] {
			return nil, fmt.Errorf("kin: duplicate joint name %q", j.Name)
		}
		seen[j.Name] = true
		if j.Type != Fixed {
			if j.Axis.Len() == 0 {
				return nil, fmt.Errorf("kin: joint %q has zero axis", j.Name)
			}
			c.movable = append(c.movable, i)
		}
	}
	return c, nil
}

// DOF returns the number of movable joints, mimic joints included.
func (c *Chain) DOF() int { return len(c.movable) }

// JointIndex returns the configuration index of a movable joint by name.
func (c *Chain) JointIndex(name string) (int, bool) {
	for qi, ji := range c.movable {
		if c.Joints[ji].Name == name {
			return qi, true
		}
	}
	return 0, false
}

// MimicPair is a resolved mimic relation over configuration indices.
type MimicPair struct {
	Joint      int
	Master     int
	Multiplier float64
	Offset     float64
}

// MimicPairs resolves mimic tags to configuration indices. Unknown master
// names are an error; structural validation (self-reference, chained
// mimics) is left to the consumer.
func (c *Chain) MimicPairs() ([]MimicPair, error) {
	var pairs []MimicPair
	for qi, ji := range c.movable {
		m := c.Joints[ji].Mimic
		if m == nil {
			continue
		}
		master, ok := c.JointIndex(m.Joint)
		if !ok {
			return nil, fmt.Errorf("kin: joint %q mimics unknown joint %q", c.Joints[ji].Name, m.Joint)
		}
		pairs = append(pairs, MimicPair{Joint: qi, Master: master, Multiplier: m.Multiplier, Offset: m.Offset})
	}
	return pairs, nil
}

// ApplyMimic overwrites mimic entries of q with the value dictated by
// their master, in place. Configurations produced this way satisfy the
// coupling constraints exactly.
func (c *Chain) ApplyMimic(q []float64) error {
	pairs, err := c.MimicPairs()
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p.Joint < len(q) && p.Master < len(q) {
			q[p.Joint] = p.Multiplier*q[p.Master] + p.Offset
		}
	}
	return nil
}

// jointValue returns the effective position of movable joint qi under q,
// honoring mimic coupling.
func (c *Chain) jointValue(q []float64, qi int) float64 {
	j := c.Joints[c.movable[qi]]
	if j.Mimic != nil {
		if master, ok := c.JointIndex(j.Mimic.Joint); ok {
			return j.Mimic.Multiplier*q[master] + j.Mimic.Offset
		}
	}
	return q[qi]
}
