package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ruizmr/8090-top-coder/pkg/enumerate"
	"github.com/ruizmr/8090-top-coder/pkg/expr"
	"github.com/ruizmr/8090-top-coder/pkg/synth"
)

// Duration parses from YAML as a time.ParseDuration string ("30s", "2m")
// or as integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		dur, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: bad duration: %s", s)
		}
		*d = Duration(dur)
		return nil
	}

	var ns int64
	if err := node.Decode(&ns); err != nil {
		return fmt.Errorf("config: bad duration: %s", node.Value)
	}
	*d = Duration(ns)
	return nil
}

// Config is the YAML-loadable search configuration. Operators are named by
// their canonical spelling: +, -, max, min for binary operators and *, / for
// scale operators. Zero values fall back to the defaults below.
type Config struct {
	Variables   []string  `yaml:"variables"`
	Constants   []float64 `yaml:"constants"`
	Multipliers []float64 `yaml:"multipliers"`
	RoundDigits []int     `yaml:"round_digits"`
	BinaryOps   []string  `yaml:"binary_ops"`
	ScaleOps    []string  `yaml:"scale_ops"`

	MaxSize            int           `yaml:"max_size"`
	MaxPredOperandSize int           `yaml:"max_pred_operand_size"`
	MaxBranchExprSize  int           `yaml:"max_branch_expr_size"`
	Tolerance          float64       `yaml:"tolerance"`
	Budget             Duration      `yaml:"budget"`
	Workers            int           `yaml:"workers"`
}

func Default() Config {
	pools := enumerate.DefaultPools()

	cfg := Config{
		Variables:   pools.Variables,
		Constants:   pools.Constants,
		Multipliers: pools.Multipliers,
		RoundDigits: pools.RoundDigits,
		MaxSize:     4,
		Tolerance:   0.01,
	}
	for _, op := range pools.BinaryOps {
		cfg.BinaryOps = append(cfg.BinaryOps, op.String())
	}
	for _, op := range pools.ScaleOps {
		cfg.ScaleOps = append(cfg.ScaleOps, op.String())
	}
	return cfg
}

// Load reads a YAML config file over the defaults: keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(buf, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %s", path, err)
	}
	return cfg, nil
}

var (
	binaryOps = map[string]expr.BinaryOp{
		"+":   expr.AddOp,
		"-":   expr.SubOp,
		"max": expr.MaxOp,
		"min": expr.MinOp,
	}
	scaleOps = map[string]expr.ScaleOp{
		"*": expr.MulOp,
		"/": expr.DivOp,
	}
)

func (cfg Config) Pools() (enumerate.Pools, error) {
	pools := enumerate.Pools{
		Variables:   cfg.Variables,
		Constants:   cfg.Constants,
		Multipliers: cfg.Multipliers,
		RoundDigits: cfg.RoundDigits,
	}

	for _, name := range cfg.BinaryOps {
		op, ok := binaryOps[name]
		if !ok {
			return enumerate.Pools{}, fmt.Errorf("config: unknown binary operator: %s", name)
		}
		pools.BinaryOps = append(pools.BinaryOps, op)
	}
	for _, name := range cfg.ScaleOps {
		op, ok := scaleOps[name]
		if !ok {
			return enumerate.Pools{}, fmt.Errorf("config: unknown scale operator: %s", name)
		}
		pools.ScaleOps = append(pools.ScaleOps, op)
	}

	return pools, pools.Validate()
}

func (cfg Config) SynthConfig() (synth.Config, error) {
	pools, err := cfg.Pools()
	if err != nil {
		return synth.Config{}, err
	}

	return synth.Config{
		Pools:              pools,
		MaxExprSize:        cfg.MaxSize,
		MaxPredOperandSize: cfg.MaxPredOperandSize,
		MaxBranchExprSize:  cfg.MaxBranchExprSize,
		Tolerance:          cfg.Tolerance,
		Budget:             time.Duration(cfg.Budget),
		Workers:            cfg.Workers,
	}, nil
}
