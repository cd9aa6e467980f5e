// Package kin models serial kinematic chains with revolute, prismatic,
// and fixed joints, including "mimic" joints whose motion is a fixed
// linear function of another joint's motion (parallel-jaw grippers,
// coupled linkages).
//
// The package supplies the two inputs a differential IK solver needs:
//
//   - [Chain.FK]: tip pose for a configuration
//   - [Chain.Jacobian]: the 6xn geometric Jacobian at a configuration
//
// Jacobian columns are raw per-joint contributions; folding mimic columns
// into their master is the job of the solver's reducer so that the chain
// stays a plain geometric description.
package kin
