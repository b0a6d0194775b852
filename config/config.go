// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World      WorldConfig      `yaml:"world"`
	Object     ObjectConfig     `yaml:"object"`
	Animat     AnimatConfig     `yaml:"animat"`
	Sensors    SensorsConfig    `yaml:"sensors"`
	Neural     NeuralConfig     `yaml:"neural"`
	GA         GAConfig         `yaml:"ga"`
	Simulation SimulationConfig `yaml:"simulation"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Demo       DemoConfig       `yaml:"demo"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds arena dimensions.
type WorldConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	MaxCollisions int     `yaml:"max_collisions"` // collision markers kept per tick
}

// ObjectConfig holds defaults for passive world objects.
type ObjectConfig struct {
	Radius float64 `yaml:"radius"`
}

// AnimatConfig holds the physical limits of an animat.
type AnimatConfig struct {
	Radius      float64 `yaml:"radius"`
	MaxSpeed    float64 `yaml:"max_speed"`
	MinSpeed    float64 `yaml:"min_speed"`
	MaxTurn     float64 `yaml:"max_turn"` // radians per second
	Drag        float64 `yaml:"drag"`
	TimeStep    float64 `yaml:"time_step"`
	TrailLength int     `yaml:"trail_length"`
	Solid       bool    `yaml:"solid"`
}

// SensorsConfig holds sensor construction defaults.
type SensorsConfig struct {
	BeamScope      float64 `yaml:"beam_scope"` // radians
	BeamRange      float64 `yaml:"beam_range"`
	NearestRange   float64 `yaml:"nearest_range"`
	NoiseMin       float64 `yaml:"noise_min"`
	NoiseMax       float64 `yaml:"noise_max"`
	ProximityCount int     `yaml:"proximity_count"`
}

// NeuralConfig holds controller construction defaults.
type NeuralConfig struct {
	Bias       bool    `yaml:"bias"`
	Activation string  `yaml:"activation"` // sigmoid | threshold
	TauMin     float64 `yaml:"tau_min"`
	TauMax     float64 `yaml:"tau_max"`
}

// GAConfig holds genetic algorithm parameters.
type GAConfig struct {
	Crossover       float64 `yaml:"crossover"`
	Mutation        float64 `yaml:"mutation"`
	CrossoverPoints int     `yaml:"crossover_points"`
	Selection       string  `yaml:"selection"`   // roulette | rank | tournament
	Fitness         string  `yaml:"fitness"`     // best | worst | mean | total
	FitnessFix      string  `yaml:"fitness_fix"` // ignore | clamp | fix
	Elitism         int     `yaml:"elitism"`
	Culling         int     `yaml:"culling"`
	Mutator         string  `yaml:"mutator"` // normal | uniform
	MutatorA        float64 `yaml:"mutator_a"`
	MutatorB        float64 `yaml:"mutator_b"`
	TournamentParam float64 `yaml:"tournament_param"`
	TournamentSize  int     `yaml:"tournament_size"`
	RankPressure    float64 `yaml:"rank_pressure"`
	Exponent        float64 `yaml:"exponent"`
}

// SimulationConfig holds the run hierarchy sizes.
// Non-positive generations or time steps mean unbounded.
type SimulationConfig struct {
	Runs          int  `yaml:"runs"`
	Generations   int  `yaml:"generations"`
	Assessments   int  `yaml:"assessments"`
	TimeSteps     int  `yaml:"time_steps"`
	TimeIncrement int  `yaml:"time_increment"`
	Profile       bool `yaml:"profile"`
}

// LoggingConfig selects which life-cycle stages are logged.
type LoggingConfig struct {
	Simulation bool `yaml:"simulation"`
	Run        bool `yaml:"run"`
	Generation bool `yaml:"generation"`
	Assessment bool `yaml:"assessment"`
	Update     bool `yaml:"update"`
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	OutputDir     string `yaml:"output_dir"`
	SnapshotEvery int    `yaml:"snapshot_every"` // generations between snapshots, 0 = off
	ArchiveSize   int    `yaml:"archive_size"`   // best genomes kept per population
	ProfileWindow int    `yaml:"profile_window"` // ticks averaged by the profiler
}

// DemoConfig holds sizes for the bundled demonstrations.
type DemoConfig struct {
	Population  int     `yaml:"population"`
	Cheese      int     `yaml:"cheese"`
	TeamSize    int     `yaml:"team_size"`
	SensorRange float64 `yaml:"sensor_range"`
	Hidden      int     `yaml:"hidden"`
}

// DerivedConfig holds values computed from other config values.
type DerivedConfig struct {
	CentreX  float64 // World.Width / 2
	CentreY  float64 // World.Height / 2
	Diagonal float64 // arena diagonal, an upper bound on any distance
	MaxTurn  float64 // Animat.MaxTurn, defaulting to 2π
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values no component can work with.
func (c *Config) validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world size must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.GA.Crossover < 0 || c.GA.Crossover > 1 {
		return fmt.Errorf("ga.crossover must be in [0, 1], got %g", c.GA.Crossover)
	}
	if c.GA.Mutation < 0 || c.GA.Mutation > 1 {
		return fmt.Errorf("ga.mutation must be in [0, 1], got %g", c.GA.Mutation)
	}
	if c.Sensors.BeamScope < 0 || c.Sensors.BeamScope > 2*math.Pi {
		return fmt.Errorf("sensors.beam_scope must be in [0, 2π], got %g", c.Sensors.BeamScope)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.CentreX = c.World.Width / 2
	c.Derived.CentreY = c.World.Height / 2
	c.Derived.Diagonal = math.Hypot(c.World.Width, c.World.Height)

	c.Derived.MaxTurn = c.Animat.MaxTurn
	if c.Derived.MaxTurn == 0 {
		c.Derived.MaxTurn = 2 * math.Pi
	}
	if c.Simulation.TimeIncrement == 0 {
		c.Simulation.TimeIncrement = 1
	}
	if c.Simulation.Runs == 0 {
		c.Simulation.Runs = 1
	}
	if c.Simulation.Assessments == 0 {
		c.Simulation.Assessments = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
