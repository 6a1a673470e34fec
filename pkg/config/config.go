package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Engine string

const (
	EngineMiniMax   Engine = "minimax"
	EngineAlphaBeta Engine = "alphabeta"
	EngineMCTS      Engine = "mcts"
)

// Engine configuration, as read from a yaml file
type Config struct {
	Engine   Engine `yaml:"engine"`
	Depth    int    `yaml:"depth"`
	Playouts int    `yaml:"playouts"`
	Workers  int    `yaml:"workers"`

	// Static evaluator: "simple" or "refined"
	Variant string `yaml:"variant"`
	// King table selection: "auto", "middlegame" or "endgame"
	Phase string `yaml:"phase"`
	// Nil keeps the variant's default
	MobilityWeight *float64 `yaml:"mobility_weight"`

	// MCTS only
	Scale       float64 `yaml:"scale"`
	VirtualLoss float64 `yaml:"virtual_loss"`
	Exploration float64 `yaml:"exploration"`
	TableSize   int     `yaml:"table_size"`

	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Engine:      EngineAlphaBeta,
		Depth:       3,
		Playouts:    10000,
		Workers:     runtime.NumCPU(),
		Variant:     "simple",
		Phase:       "auto",
		Scale:       1e9,
		VirtualLoss: 1e9,
		Exploration: 10.5,
		TableSize:   1024,
		LogLevel:    "info",
	}
}

// Read and validate the config at 'path', missing fields keep their defaults
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Decode yaml on top of the defaults, unknown keys are rejected
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Engine {
	case EngineMiniMax, EngineAlphaBeta:
		if c.Depth <= 0 {
			return fmt.Errorf("%w: depth must be positive, got %d", ErrInvalidConfig, c.Depth)
		}
	case EngineMCTS:
		if c.Playouts <= 0 {
			return fmt.Errorf("%w: playouts must be positive, got %d", ErrInvalidConfig, c.Playouts)
		}
	default:
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidConfig, c.Engine)
	}

	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Variant != "simple" && c.Variant != "refined" {
		return fmt.Errorf("%w: unknown variant %q", ErrInvalidConfig, c.Variant)
	}
	switch c.Phase {
	case "auto", "middlegame", "endgame":
	default:
		return fmt.Errorf("%w: unknown phase %q", ErrInvalidConfig, c.Phase)
	}
	if c.MobilityWeight != nil && *c.MobilityWeight < 0 {
		return fmt.Errorf("%w: mobility_weight can't be negative", ErrInvalidConfig)
	}
	if c.Scale <= 0 || c.VirtualLoss < 0 || c.Exploration < 0 {
		return fmt.Errorf("%w: scale must be positive, virtual_loss and exploration non-negative", ErrInvalidConfig)
	}
	if c.TableSize < 0 {
		return fmt.Errorf("%w: table_size can't be negative", ErrInvalidConfig)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Parsed log level
func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	return level, nil
}
