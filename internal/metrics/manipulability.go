package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Manipulability tracks the minimum Yoshikawa manipulability measure
// (product of the Jacobian's singular values) seen over a run. Values
// near zero flag passages close to a kinematic singularity.
type Manipulability struct {
	min     float64
	samples int
}

func NewManipulability() *Manipulability {
	return &Manipulability{min: math.Inf(1)}
}

func (m *Manipulability) Name() string { return "min_manipulability" }

func (m *Manipulability) Observe(q, qdot []float64, jac *mat.Dense, t float64) {
	sigma := singularValues(jac)
	if sigma == nil {
		return
	}
	w := 1.0
	for _, s := range sigma {
		w *= s
	}
	if w < m.min {
		m.min = w
	}
	m.samples++
}

func (m *Manipulability) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.min
}

func (m *Manipulability) Reset() {
	m.min = math.Inf(1)
	m.samples = 0
}

// ConditionNumber tracks the worst ratio of largest to smallest nonzero
// singular value.
type ConditionNumber struct {
	max float64
}

func NewConditionNumber() *ConditionNumber {
	return &ConditionNumber{}
}

func (c *ConditionNumber) Name() string { return "max_condition" }

func (c *ConditionNumber) Observe(q, qdot []float64, jac *mat.Dense, t float64) {
	sigma := singularValues(jac)
	if len(sigma) == 0 || sigma[0] == 0 {
		return
	}
	smallest := 0.0
	for i := len(sigma) - 1; i >= 0; i-- {
		if sigma[i] > 0 {
			smallest = sigma[i]
			break
		}
	}
	if smallest == 0 {
		return
	}
	if cond := sigma[0] / smallest; cond > c.max {
		c.max = cond
	}
}

func (c *ConditionNumber) Value() float64 { return c.max }
func (c *ConditionNumber) Reset()         { c.max = 0 }

// PeakJointSpeed tracks the largest absolute joint velocity commanded.
type PeakJointSpeed struct {
	peak float64
}

func NewPeakJointSpeed() *PeakJointSpeed {
	return &PeakJointSpeed{}
}

func (p *PeakJointSpeed) Name() string { return "peak_joint_speed" }

func (p *PeakJointSpeed) Observe(q, qdot []float64, jac *mat.Dense, t float64) {
	for _, v := range qdot {
		if a := math.Abs(v); a > p.peak {
			p.peak = a
		}
	}
}

func (p *PeakJointSpeed) Value() float64 { return p.peak }
func (p *PeakJointSpeed) Reset()         { p.peak = 0 }

func singularValues(jac *mat.Dense) []float64 {
	if jac == nil {
		return nil
	}
	var svd mat.SVD
	if ok := svd.Factorize(jac, mat.SVDNone); !ok {
		return nil
	}
	return svd.Values(nil)
}
