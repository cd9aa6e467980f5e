package config

import "sort"

// Presets are built-in robots ready to jog without a config file.
var Presets = map[string]*Config{
	"planar2": {
		Robot: RobotConfig{
			Name: "planar2",
			Joints: []JointConfig{
				{Name: "shoulder", Type: "revolute", Axis: [3]float64{0, 0, 1}},
				{Name: "elbow", Type: "revolute", Axis: [3]float64{0, 0, 1}, Origin: [3]float64{1, 0, 0}},
				{Name: "tip", Type: "fixed", Origin: [3]float64{1, 0, 0}},
			},
		},
		Solver: SolverConfig{Eps: DefaultEps},
		Jog: JogConfig{
			Dt: DefaultDt, Duration: DefaultDuration,
			Twist: [6]float64{0.1, 0, 0, 0, 0, 0},
			Init:  []float64{0.4, 0.8},
		},
	},
	"planar3": {
		Robot: RobotConfig{
			Name: "planar3",
			Joints: []JointConfig{
				{Name: "j1", Type: "revolute", Axis: [3]float64{0, 0, 1}},
				{Name: "j2", Type: "revolute", Axis: [3]float64{0, 0, 1}, Origin: [3]float64{0.8, 0, 0}},
				{Name: "j3", Type: "revolute", Axis: [3]float64{0, 0, 1}, Origin: [3]float64{0.6, 0, 0}},
				{Name: "tip", Type: "fixed", Origin: [3]float64{0.4, 0, 0}},
			},
		},
		Solver: SolverConfig{Eps: DefaultEps},
		Jog: JogConfig{
			Dt: DefaultDt, Duration: DefaultDuration,
			Twist: [6]float64{0.1, 0.05, 0, 0, 0, 0},
			Init:  []float64{0.3, 0.6, -0.4},
		},
	},
	"arm6": {
		Robot: RobotConfig{
			Name: "arm6",
			Joints: []JointConfig{
				{Name: "base", Type: "revolute", Axis: [3]float64{0, 0, 1}, Origin: [3]float64{0, 0, 0.2}},
				{Name: "shoulder", Type: "revolute", Axis: [3]float64{0, 1, 0}, Origin: [3]float64{0, 0, 0.2}},
				{Name: "elbow", Type: "revolute", Axis: [3]float64{0, 1, 0}, Origin: [3]float64{0, 0, 0.6}},
				{Name: "wrist1", Type: "revolute", Axis: [3]float64{0, 0, 1}, Origin: [3]float64{0, 0, 0.5}},
				{Name: "wrist2", Type: "revolute", Axis: [3]float64{0, 1, 0}, Origin: [3]float64{0, 0, 0.1}},
				{Name: "wrist3", Type: "revolute", Axis: [3]float64{0, 0, 1}, Origin: [3]float64{0, 0, 0.1}},
				{Name: "tool", Type: "fixed", Origin: [3]float64{0, 0, 0.1}},
			},
		},
		Solver: SolverConfig{Eps: DefaultEps},
		Jog: JogConfig{
			Dt: DefaultDt, Duration: DefaultDuration,
			Twist: [6]float64{0.05, 0, 0.05, 0, 0, 0},
			Init:  []float64{0, 0.5, -1.0, 0, 0.6, 0},
		},
	},
	"gripper": {
		Robot: RobotConfig{
			Name: "gripper",
			Joints: []JointConfig{
				{Name: "base", Type: "revolute", Axis: [3]float64{0, 0, 1}},
				{Name: "lift", Type: "revolute", Axis: [3]float64{0, 1, 0}, Origin: [3]float64{0, 0, 0.3}},
				{Name: "reach", Type: "prismatic", Axis: [3]float64{1, 0, 0}, Origin: [3]float64{0.2, 0, 0}},
				{Name: "finger_left", Type: "prismatic", Axis: [3]float64{0, 1, 0}, Origin: [3]float64{0.15, 0, 0}},
				{Name: "finger_right", Type: "prismatic", Axis: [3]float64{0, -1, 0},
					Mimic: &MimicConfig{Joint: "finger_left", Multiplier: 1.0}},
			},
		},
		Solver: SolverConfig{Eps: DefaultEps},
		Jog: JogConfig{
			Dt: DefaultDt, Duration: DefaultDuration,
			Twist: [6]float64{0.05, 0.02, 0, 0, 0, 0},
			Init:  []float64{0, 0.3, 0.1, 0.02, 0.02},
		},
	},
}

func GetPreset(name string) *Config {
	return Presets[name]
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
