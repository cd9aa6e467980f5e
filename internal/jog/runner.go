package jog

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kin"
)

// Runner integrates a commanded twist stream through the velocity solver:
// at every step it rebuilds the chain Jacobian, solves for joint
// velocities, and advances the configuration by explicit Euler. It does
// no planning; the twist source is in charge.
type Runner struct {
	chain     *kin.Chain
	solver    *ik.Solver
	source    TwistSource
	metrics   []Metric
	observers []Observer
}

func New(chain *kin.Chain, solver *ik.Solver, source TwistSource) *Runner {
	return &Runner{chain: chain, solver: solver, source: source}
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, q0 []float64, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(q0) != r.chain.DOF() {
		return nil, fmt.Errorf("jog: initial state length %d, chain has %d dof", len(q0), r.chain.DOF())
	}

	steps := int(cfg.Duration / cfg.Dt)
	result := &Result{
		Times:      make([]float64, 0, steps+1),
		Positions:  make([][]float64, 0, steps+1),
		Velocities: make([][]float64, 0, steps),
		Metrics:    make(map[string]float64),
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	q := append([]float64(nil), q0...)
	if err := r.chain.ApplyMimic(q); err != nil {
		return nil, err
	}
	t := 0.0

	result.Times = append(result.Times, t)
	result.Positions = append(result.Positions, append([]float64(nil), q...))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		jac, err := r.chain.Jacobian(q)
		if err != nil {
			return result, err
		}

		tw := r.source.Twist(t)
		qdot, err := r.solver.Solve(jac, tw[:])
		if err != nil {
			var numErr *ik.NumericalError
			if !errors.As(err, &numErr) {
				return result, err
			}
			// Degraded solve: hold still this step, keep the failure
			// visible in the result.
			result.SolveErrors = append(result.SolveErrors, fmt.Errorf("step %d (t=%.4f): %w", i, t, err))
			qdot = make([]float64, len(q))
		}

		for _, m := range r.metrics {
			m.Observe(q, qdot, jac, t)
		}
		for _, obs := range r.observers {
			obs.OnStep(q, qdot, t)
		}

		for j := range q {
			q[j] += cfg.Dt * qdot[j]
		}
		t += cfg.Dt
		result.StepsTaken++

		result.Times = append(result.Times, t)
		result.Positions = append(result.Positions, append([]float64(nil), q...))
		result.Velocities = append(result.Velocities, qdot)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// RunWithCallback streams steps to the callback instead of recording
// them; returning false stops the run early.
func (r *Runner) RunWithCallback(ctx context.Context, q0 []float64, cfg Config, callback func(q, qdot []float64, t float64) bool) error {
	if err := validateConfig(cfg); err != nil {
		return err
	}

	q := append([]float64(nil), q0...)
	if err := r.chain.ApplyMimic(q); err != nil {
		return err
	}
	t := 0.0

	for t < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		jac, err := r.chain.Jacobian(q)
		if err != nil {
			return err
		}
		tw := r.source.Twist(t)
		qdot, err := r.solver.Solve(jac, tw[:])
		if err != nil {
			var numErr *ik.NumericalError
			if !errors.As(err, &numErr) {
				return err
			}
			qdot = make([]float64, len(q))
		}

		if !callback(q, qdot, t) {
			return nil
		}

		for j := range q {
			q[j] += cfg.Dt * qdot[j]
		}
		t += cfg.Dt
	}
	return nil
}

func validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("jog: dt must be positive, got %f", cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("jog: duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
