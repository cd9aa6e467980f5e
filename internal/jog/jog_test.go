package jog

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kin"
)

func testChain(t *testing.T) *kin.Chain {
	t.Helper()
	c, err := kin.NewChain("planar2", []kin.Joint{
		{Name: "shoulder", Type: kin.Revolute, Axis: mgl64.Vec3{0, 0, 1}},
		{Name: "elbow", Type: kin.Revolute, Axis: mgl64.Vec3{0, 0, 1}, Origin: mgl64.Vec3{1, 0, 0}},
		{Name: "tip", Type: kin.Fixed, Origin: mgl64.Vec3{1, 0, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func testRunner(t *testing.T, source TwistSource) (*Runner, *kin.Chain) {
	t.Helper()
	chain := testChain(t)
	solver, err := ik.NewForChain(chain, ik.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	return New(chain, solver, source), chain
}

func TestRunTracksCommandedTwist(t *testing.T) {
	// A 3-dof planar arm can meet vx, vy, and wz exactly, so the tip
	// must follow the commanded straight line.
	chain, err := kin.NewChain("planar3", []kin.Joint{
		{Name: "j1", Type: kin.Revolute, Axis: mgl64.Vec3{0, 0, 1}},
		{Name: "j2", Type: kin.Revolute, Axis: mgl64.Vec3{0, 0, 1}, Origin: mgl64.Vec3{0.8, 0, 0}},
		{Name: "j3", Type: kin.Revolute, Axis: mgl64.Vec3{0, 0, 1}, Origin: mgl64.Vec3{0.6, 0, 0}},
		{Name: "tip", Type: kin.Fixed, Origin: mgl64.Vec3{0.4, 0, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}
	solver, err := ik.NewForChain(chain, ik.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	runner := New(chain, solver, Constant{0.1, 0, 0, 0, 0, 0})
	q0 := []float64{0.3, 0.6, -0.4}

	cfg := Config{Dt: 0.001, Duration: 1.0}
	result, err := runner.Run(context.Background(), q0, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.SolveErrors) != 0 {
		t.Fatalf("unexpected solve errors: %v", result.SolveErrors)
	}

	start, _ := chain.FK(q0)
	end, _ := chain.FK(result.Positions[len(result.Positions)-1])

	// 0.1 m/s along x for 1 s, fine timestep: the tip should have moved
	// close to 0.1 in x and stayed put in y.
	dx := end.Position.X() - start.Position.X()
	dy := end.Position.Y() - start.Position.Y()
	if math.Abs(dx-0.1) > 5e-3 {
		t.Errorf("expected ~0.1 x displacement, got %f", dx)
	}
	if math.Abs(dy) > 5e-3 {
		t.Errorf("expected no y displacement, got %f", dy)
	}
}

func TestRunRecordsTrajectory(t *testing.T) {
	runner, _ := testRunner(t, Constant{})
	result, err := runner.Run(context.Background(), []float64{0.3, 0.3}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Times) != 11 || len(result.Positions) != 11 {
		t.Errorf("expected 11 samples, got %d times / %d positions", len(result.Times), len(result.Positions))
	}
	if len(result.Velocities) != 10 {
		t.Errorf("expected 10 velocity samples, got %d", len(result.Velocities))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	runner, _ := testRunner(t, Constant{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1}},
		{"negative dt", Config{Dt: -0.1, Duration: 1}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.Run(context.Background(), []float64{0, 0}, tt.cfg); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRunWrongInitialState(t *testing.T) {
	runner, _ := testRunner(t, Constant{})
	if _, err := runner.Run(context.Background(), []float64{0}, DefaultConfig()); err == nil {
		t.Error("expected error for short initial state")
	}
}

func TestRunContextCancel(t *testing.T) {
	runner, _ := testRunner(t, Constant{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runner.Run(ctx, []float64{0.3, 0.3}, DefaultConfig()); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type countMetric struct {
	count int
}

func (c *countMetric) Name() string                                           { return "count" }
func (c *countMetric) Observe(q, qdot []float64, jac *mat.Dense, tme float64) { c.count++ }
func (c *countMetric) Value() float64                                         { return float64(c.count) }
func (c *countMetric) Reset()                                                 { c.count = 0 }

func TestRunObservesMetrics(t *testing.T) {
	runner, _ := testRunner(t, Constant{})
	m := &countMetric{}
	runner.AddMetric(m)

	result, err := runner.Run(context.Background(), []float64{0.3, 0.3}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if m.count != 10 {
		t.Errorf("expected 10 observations, got %d", m.count)
	}
	if v, ok := result.Metrics["count"]; !ok || v != 10 {
		t.Errorf("metric missing from result: %v", result.Metrics)
	}
}

func TestRunWithCallbackStopsEarly(t *testing.T) {
	runner, _ := testRunner(t, Constant{})
	steps := 0
	err := runner.RunWithCallback(context.Background(), []float64{0.3, 0.3}, Config{Dt: 0.1, Duration: 10.0},
		func(q, qdot []float64, tme float64) bool {
			steps++
			return steps < 5
		})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if steps != 5 {
		t.Errorf("expected 5 callback steps, got %d", steps)
	}
}

func TestSinusoidSource(t *testing.T) {
	s := Sinusoid{Amplitude: [6]float64{1, 0, 0, 0, 0, 0}, Frequency: 1.0}
	if tw := s.Twist(0); tw[0] != 0 {
		t.Errorf("expected zero twist at t=0, got %f", tw[0])
	}
	if tw := s.Twist(0.25); math.Abs(tw[0]-1.0) > 1e-12 {
		t.Errorf("expected peak twist at quarter period, got %f", tw[0])
	}
}
