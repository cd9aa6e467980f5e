package ik

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/armkin/internal/kin"
)

// DefaultEps is the relative singular-value cutoff: directions with
// sigma <= DefaultEps * sigma_max are truncated from the pseudo-inverse.
const DefaultEps = 1e-5

// Config holds the construction-time solver settings.
//
// JointWeights (length = independent joint count) penalize motion of
// individual joints: the solve minimizes the weighted norm of the
// independent velocities, so a larger weight means less motion of that
// joint. TaskWeights (length 6, linear xyz then angular xyz) scale the
// rows of the Jacobian and the twist, prioritizing Cartesian directions.
// Nil weights mean identity. All weights must be strictly positive.
type Config struct {
	Eps          float64
	JointWeights []float64
	TaskWeights  []float64
}

func DefaultConfig() Config {
	return Config{Eps: DefaultEps}
}

// Solver computes joint velocities from a desired Cartesian twist via a
// truncated-SVD pseudo-inverse of the mimic-reduced Jacobian. It holds
// only immutable configuration; concurrent Solve calls are safe as long
// as each call supplies its own Jacobian and twist.
type Solver struct {
	red *Reducer
	eps float64
	wj  []float64 // nil = identity
	wt  []float64 // nil = identity
}

// New builds a solver over an existing reducer.
func New(red *Reducer, cfg Config) (*Solver, error) {
	if cfg.Eps < 0 {
		return nil, &ConfigError{Joint: -1, Reason: "eps must be non-negative"}
	}
	if cfg.Eps == 0 {
		cfg.Eps = DefaultEps
	}
	if cfg.JointWeights != nil {
		if len(cfg.JointWeights) != red.M() {
			return nil, &ConfigError{Joint: -1, Reason: "joint weights must match independent joint count"}
		}
		for i, w := range cfg.JointWeights {
			if w <= 0 {
				return nil, &ConfigError{Joint: red.indep[i], Reason: "joint weight must be positive"}
			}
		}
	}
	if cfg.TaskWeights != nil {
		if len(cfg.TaskWeights) != 6 {
			return nil, &ConfigError{Joint: -1, Reason: "task weights must have length 6"}
		}
		for _, w := range cfg.TaskWeights {
			if w <= 0 {
				return nil, &ConfigError{Joint: -1, Reason: "task weight must be positive"}
			}
		}
	}
	return &Solver{
		red: red,
		eps: cfg.Eps,
		wj:  append([]float64(nil), cfg.JointWeights...),
		wt:  append([]float64(nil), cfg.TaskWeights...),
	}, nil
}

// NewForChain resolves the chain's mimic table and builds the solver.
func NewForChain(chain *kin.Chain, cfg Config) (*Solver, error) {
	pairs, err := chain.MimicPairs()
	if err != nil {
		return nil, &ConfigError{Joint: -1, Reason: err.Error()}
	}
	relations := make(map[int]Relation, len(pairs))
	for _, p := range pairs {
		relations[p.Joint] = Relation{Master: p.Master, Multiplier: p.Multiplier, Offset: p.Offset}
	}
	red, err := NewReducer(chain.DOF(), relations)
	if err != nil {
		return nil, err
	}
	return New(red, cfg)
}

// Reducer exposes the solver's space mapping.
func (s *Solver) Reducer() *Reducer { return s.red }

// Solve computes the full-space joint velocities q̇ (length n) such that
// J·q̇ approximates the twist in the least-squares, minimum-weighted-norm
// sense. jac is the 6xn chain Jacobian at the current configuration,
// twist the desired 6-vector (linear, angular).
//
// Near singularities, directions whose singular value falls below
// eps * sigma_max are dropped rather than amplified; SVD non-convergence
// is returned as *NumericalError.
func (s *Solver) Solve(jac mat.Matrix, twist []float64) ([]float64, error) {
	rows, cols := jac.Dims()
	if rows != 6 {
		return nil, &DimensionError{What: "jacobian rows", Want: 6, Got: rows}
	}
	if cols != s.red.N() {
		return nil, &DimensionError{What: "jacobian columns", Want: s.red.N(), Got: cols}
	}
	if len(twist) != 6 {
		return nil, &DimensionError{What: "twist length", Want: 6, Got: len(twist)}
	}

	reduced, err := s.red.CompressJacobian(jac)
	if err != nil {
		return nil, err
	}
	m := s.red.M()

	// Weighted system: rows scaled by task weights, columns divided by
	// joint weights. Solving J' y = Wt b with y = Wj q̇ minimizes |Wj q̇|.
	b := make([]float64, 6)
	copy(b, twist)
	if s.wt != nil {
		for i := 0; i < 6; i++ {
			b[i] *= s.wt[i]
			for j := 0; j < m; j++ {
				reduced.Set(i, j, reduced.At(i, j)*s.wt[i])
			}
		}
	}
	if s.wj != nil {
		for j := 0; j < m; j++ {
			for i := 0; i < 6; i++ {
				reduced.Set(i, j, reduced.At(i, j)/s.wj[j])
			}
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(reduced, mat.SVDThin); !ok {
		return nil, &NumericalError{Reason: "SVD failed to converge"}
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil) // descending

	// y = V Σ⁺ Uᵗ b with threshold-truncated inverse singular values.
	k := len(sigma)
	coeffs := make([]float64, k)
	cutoff := 0.0
	if k > 0 {
		cutoff = s.eps * sigma[0]
	}
	for i := 0; i < k; i++ {
		var ub float64
		for r := 0; r < 6; r++ {
			ub += u.At(r, i) * b[r]
		}
		if sigma[i] > cutoff && sigma[i] > 0 {
			coeffs[i] = ub / sigma[i]
		}
	}

	y := make([]float64, m)
	for j := 0; j < m; j++ {
		var sum float64
		for i := 0; i < k; i++ {
			sum += v.At(j, i) * coeffs[i]
		}
		y[j] = sum
	}

	if s.wj != nil {
		for j := 0; j < m; j++ {
			y[j] /= s.wj[j]
		}
	}

	return s.red.ExpandVelocities(y)
}
