package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kin"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 5.0
	DefaultEps      = ik.DefaultEps
)

type Config struct {
	Robot  RobotConfig  `yaml:"robot"`
	Solver SolverConfig `yaml:"solver"`
	Jog    JogConfig    `yaml:"jog"`
}

type RobotConfig struct {
	Name   string        `yaml:"name"`
	Joints []JointConfig `yaml:"joints"`
}

type JointConfig struct {
	Name   string       `yaml:"name"`
	Type   string       `yaml:"type"`
	Axis   [3]float64   `yaml:"axis"`
	Origin [3]float64   `yaml:"origin"`
	Mimic  *MimicConfig `yaml:"mimic,omitempty"`
}

type MimicConfig struct {
	Joint      string  `yaml:"joint"`
	Multiplier float64 `yaml:"multiplier"`
	Offset     float64 `yaml:"offset"`
}

type SolverConfig struct {
	Eps          float64   `yaml:"eps"`
	JointWeights []float64 `yaml:"joint_weights,omitempty"`
	TaskWeights  []float64 `yaml:"task_weights,omitempty"`
}

type JogConfig struct {
	Dt       float64    `yaml:"dt"`
	Duration float64    `yaml:"duration"`
	Twist    [6]float64 `yaml:"twist"`
	Init     []float64  `yaml:"init,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{Eps: DefaultEps},
		Jog:    JogConfig{Dt: DefaultDt, Duration: DefaultDuration},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Chain builds the kinematic chain described by the robot section.
func (c *Config) Chain() (*kin.Chain, error) {
	if len(c.Robot.Joints) == 0 {
		return nil, fmt.Errorf("config: robot %q has no joints", c.Robot.Name)
	}
	joints := make([]kin.Joint, 0, len(c.Robot.Joints))
	for _, jc := range c.Robot.Joints {
		jt, err := kin.ParseJointType(jc.Type)
		if err != nil {
			return nil, fmt.Errorf("config: joint %q: %w", jc.Name, err)
		}
		j := kin.Joint{
			Name:   jc.Name,
			Type:   jt,
			Axis:   vec3(jc.Axis),
			Origin: vec3(jc.Origin),
		}
		if jc.Mimic != nil {
			j.Mimic = &kin.Mimic{
				Joint:      jc.Mimic.Joint,
				Multiplier: jc.Mimic.Multiplier,
				Offset:     jc.Mimic.Offset,
			}
		}
		joints = append(joints, j)
	}
	return kin.NewChain(c.Robot.Name, joints)
}

// SolverOptions converts the solver section to an ik.Config.
func (c *Config) SolverOptions() ik.Config {
	return ik.Config{
		Eps:          c.Solver.Eps,
		JointWeights: c.Solver.JointWeights,
		TaskWeights:  c.Solver.TaskWeights,
	}
}

// InitState returns the starting configuration for a chain, zero-filled
// when the jog section leaves it unset.
func (c *Config) InitState(dof int) []float64 {
	q := make([]float64, dof)
	copy(q, c.Jog.Init)
	return q
}

func vec3(a [3]float64) mgl64.Vec3 {
	return mgl64.Vec3{a[0], a[1], a[2]}
}
