package jog

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// TwistSource produces the commanded Cartesian twist (3 linear, 3
// angular) at time t.
type TwistSource interface {
	Twist(t float64) [6]float64
}

// Constant commands the same twist for the whole run.
type Constant [6]float64

func (c Constant) Twist(t float64) [6]float64 { return [6]float64(c) }

// Sinusoid scales an amplitude twist by sin(2*pi*f*t), producing a
// back-and-forth jog.
type Sinusoid struct {
	Amplitude [6]float64
	Frequency float64
}

func (s Sinusoid) Twist(t float64) [6]float64 {
	scale := math.Sin(2 * math.Pi * s.Frequency * t)
	var tw [6]float64
	for i, a := range s.Amplitude {
		tw[i] = a * scale
	}
	return tw
}

// Metric observes each solved step and reduces it to a single value.
type Metric interface {
	Name() string
	Observe(q, qdot []float64, jac *mat.Dense, t float64)
	Value() float64
	Reset()
}

// Observer receives each step without aggregating.
type Observer interface {
	OnStep(q, qdot []float64, t float64)
}

type Config struct {
	Dt       float64
	Duration float64
}

func DefaultConfig() Config {
	return Config{Dt: 0.01, Duration: 5.0}
}

// Result is the recorded trajectory of one jog run. SolveErrors holds
// per-step solver failures (typically singular-pose degradation); the
// run continues past them with the joints held still for that step.
type Result struct {
	Times       []float64
	Positions   [][]float64
	Velocities  [][]float64
	Metrics     map[string]float64
	SolveErrors []error
	StepsTaken  int
}
