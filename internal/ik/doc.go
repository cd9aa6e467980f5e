// Package ik implements a velocity-level inverse kinematics solver for
// serial chains with mimic joints.
//
// The package splits the problem the way the math does:
//
//   - [Reducer]: collapses the full joint space (n) into the independent
//     space (m) dictated by the mimic table, folding mimic Jacobian
//     columns into their masters and expanding solutions back out.
//   - [Solver]: Moore-Penrose pseudo-inverse of the reduced Jacobian via
//     SVD, with relative truncation of small singular values so that
//     kinematic singularities degrade gracefully instead of producing
//     unbounded joint velocities.
//
// Errors are typed: [ConfigError] at construction, [DimensionError] and
// [NumericalError] per call. A solver instance carries no mutable state
// across calls.
package ik
