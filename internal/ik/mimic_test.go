package ik

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestReducerValidation(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		relations map[int]Relation
	}{
		{"zero joints", 0, nil},
		{"self mimic", 2, map[int]Relation{1: {Master: 1, Multiplier: 1}}},
		{"master out of range", 2, map[int]Relation{1: {Master: 5, Multiplier: 1}}},
		{"negative master", 2, map[int]Relation{1: {Master: -1, Multiplier: 1}}},
		{"joint out of range", 2, map[int]Relation{7: {Master: 0, Multiplier: 1}}},
		{"mimic of a mimic", 3, map[int]Relation{
			1: {Master: 0, Multiplier: 1},
			2: {Master: 1, Multiplier: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReducer(tt.n, tt.relations)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestReducerZeroMultiplierAllowed(t *testing.T) {
	r, err := NewReducer(2, map[int]Relation{1: {Master: 0, Multiplier: 0}})
	if err != nil {
		t.Fatalf("zero multiplier rejected: %v", err)
	}
	full, err := r.ExpandVelocities([]float64{3.0})
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if full[1] != 0 {
		t.Errorf("expected zero velocity for zero multiplier, got %f", full[1])
	}
}

func TestReducerPartition(t *testing.T) {
	// 4 joints, joint 2 mimics joint 0, joint 3 mimics joint 1.
	r, err := NewReducer(4, map[int]Relation{
		2: {Master: 0, Multiplier: -1},
		3: {Master: 1, Multiplier: 0.5},
	})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}
	if r.N() != 4 || r.M() != 2 {
		t.Fatalf("expected n=4 m=2, got n=%d m=%d", r.N(), r.M())
	}
	indep := r.Independent()
	if len(indep) != 2 || indep[0] != 0 || indep[1] != 1 {
		t.Errorf("expected independent joints [0 1], got %v", indep)
	}
}

func TestCompressJacobianFolding(t *testing.T) {
	// joint 1 mimics joint 0 with multiplier 2: reduced column must be
	// col0 + 2*col1.
	r, err := NewReducer(2, map[int]Relation{1: {Master: 0, Multiplier: 2}})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}

	jac := mat.NewDense(6, 2, nil)
	for i := 0; i < 6; i++ {
		jac.Set(i, 0, float64(i+1))
		jac.Set(i, 1, 10*float64(i+1))
	}

	reduced, err := r.CompressJacobian(jac)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	if _, cols := reduced.Dims(); cols != 1 {
		t.Fatalf("expected 1 reduced column, got %d", cols)
	}
	for i := 0; i < 6; i++ {
		want := float64(i+1) + 2*10*float64(i+1)
		if math.Abs(reduced.At(i, 0)-want) > 1e-14 {
			t.Errorf("reduced[%d] = %f, want %f", i, reduced.At(i, 0), want)
		}
	}
}

func TestCompressJacobianDimensions(t *testing.T) {
	r, _ := NewReducer(2, nil)

	var dimErr *DimensionError
	if _, err := r.CompressJacobian(mat.NewDense(5, 2, nil)); !errors.As(err, &dimErr) {
		t.Errorf("expected *DimensionError for 5 rows, got %v", err)
	}
	if _, err := r.CompressJacobian(mat.NewDense(6, 3, nil)); !errors.As(err, &dimErr) {
		t.Errorf("expected *DimensionError for 3 columns, got %v", err)
	}
}

func TestVelocityRoundTrip(t *testing.T) {
	r, err := NewReducer(5, map[int]Relation{
		2: {Master: 1, Multiplier: 2.5},
		4: {Master: 0, Multiplier: -0.75},
	})
	if err != nil {
		t.Fatalf("reducer failed: %v", err)
	}

	// A full vector already consistent with the coupling.
	full := []float64{1.0, -2.0, -5.0, 0.3, -0.75}

	reduced, err := r.CompressVelocities(full)
	if err != nil {
		t.Fatalf("compress failed: %v", err)
	}
	back, err := r.ExpandVelocities(reduced)
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	for i := range full {
		if full[i] != back[i] {
			t.Errorf("round trip mismatch at %d: %f vs %f", i, full[i], back[i])
		}
	}
}
