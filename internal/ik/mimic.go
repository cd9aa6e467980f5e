package ik

import (
	"gonum.org/v1/gonum/mat"
)

// Relation couples one joint's velocity to a master joint:
// velocity = Multiplier * master velocity. Offset shifts the position
// mapping only and is irrelevant to the velocity-level solve; it is kept
// so the table mirrors the joint model one-to-one.
type Relation struct {
	Master     int
	Multiplier float64
	Offset     float64
}

// Reducer translates between the full joint space (n entries, mimic
// joints included) and the independent joint space (m entries, masters
// and uncoupled joints only). The mapping is fixed at construction and
// never mutated, so one Reducer may serve concurrent solves.
type Reducer struct {
	n, m    int
	coeff   []float64 // per full index: mimic multiplier, 1 for independent
	colOf   []int     // per full index: reduced column it folds into
	indep   []int     // per reduced index: full index of the independent joint
	isMimic []bool
}

// NewReducer validates the mimic table and builds the space mapping.
// relations is keyed by full configuration index. Only structural errors
// are rejected: a master must be in range, must not be the joint itself,
// and must not be a mimic in turn (the reduction assumes a depth-1
// forest). Zero multipliers are legal; expansion only ever multiplies.
func NewReducer(n int, relations map[int]Relation) (*Reducer, error) {
	if n <= 0 {
		return nil, &ConfigError{Joint: -1, Reason: "joint count must be positive"}
	}
	for j, rel := range relations {
		if j < 0 || j >= n {
			return nil, &ConfigError{Joint: j, Reason: "mimic joint index out of range"}
		}
		if rel.Master < 0 || rel.Master >= n {
			return nil, &ConfigError{Joint: j, Reason: "mimic master index out of range"}
		}
		if rel.Master == j {
			return nil, &ConfigError{Joint: j, Reason: "joint mimics itself"}
		}
		if _, ok := relations[rel.Master]; ok {
			return nil, &ConfigError{Joint: j, Reason: "mimic of a mimic joint"}
		}
	}

	r := &Reducer{
		n:       n,
		coeff:   make([]float64, n),
		colOf:   make([]int, n),
		isMimic: make([]bool, n),
	}
	for j := 0; j < n; j++ {
		if _, ok := relations[j]; ok {
			continue
		}
		r.colOf[j] = len(r.indep)
		r.coeff[j] = 1
		r.indep = append(r.indep, j)
	}
	r.m = len(r.indep)
	for j, rel := range relations {
		r.isMimic[j] = true
		r.coeff[j] = rel.Multiplier
		r.colOf[j] = r.colOf[rel.Master]
	}
	return r, nil
}

// N returns the full joint count, M the independent joint count.
func (r *Reducer) N() int { return r.n }
func (r *Reducer) M() int { return r.m }

// Independent returns the full-space indices of the independent joints,
// in reduced-column order.
func (r *Reducer) Independent() []int {
	return append([]int(nil), r.indep...)
}

// CompressJacobian folds the 6xn chain Jacobian down to 6xm: each mimic
// column, scaled by its multiplier, is added into its master's column.
func (r *Reducer) CompressJacobian(jac mat.Matrix) (*mat.Dense, error) {
	rows, cols := jac.Dims()
	if rows != 6 {
		return nil, &DimensionError{What: "jacobian rows", Want: 6, Got: rows}
	}
	if cols != r.n {
		return nil, &DimensionError{What: "jacobian columns", Want: r.n, Got: cols}
	}

	reduced := mat.NewDense(6, r.m, nil)
	for j := 0; j < r.n; j++ {
		col := r.colOf[j]
		for i := 0; i < 6; i++ {
			reduced.Set(i, col, reduced.At(i, col)+r.coeff[j]*jac.At(i, j))
		}
	}
	return reduced, nil
}

// ExpandVelocities maps an independent-space velocity vector back to full
// joint space: mimic entries become multiplier times their master's value.
func (r *Reducer) ExpandVelocities(reduced []float64) ([]float64, error) {
	if len(reduced) != r.m {
		return nil, &DimensionError{What: "reduced velocity length", Want: r.m, Got: len(reduced)}
	}
	full := make([]float64, r.n)
	for j := 0; j < r.n; j++ {
		full[j] = r.coeff[j] * reduced[r.colOf[j]]
	}
	return full, nil
}

// CompressVelocities projects a full velocity vector onto the independent
// joints. For vectors already consistent with the mimic constraints this
// is the inverse of ExpandVelocities.
func (r *Reducer) CompressVelocities(full []float64) ([]float64, error) {
	if len(full) != r.n {
		return nil, &DimensionError{What: "velocity length", Want: r.n, Got: len(full)}
	}
	reduced := make([]float64, r.m)
	for col, j := range r.indep {
		reduced[col] = full[j]
	}
	return reduced, nil
}
