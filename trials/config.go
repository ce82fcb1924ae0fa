package trials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autodrive/controller"
	"autodrive/geometry"
	"autodrive/grid_world"
	"autodrive/simulation"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	TRIAL_KIND        = "trial"
	DEFAULT_EPISODES  = 1
	DEFAULT_MAX_TICKS = 2000
	DEFAULT_TRACK     = "full"
)

var (
	ErrConfigKind   error = errors.New("config is not a trial definition")
	ErrNoEpisodes   error = errors.New("a trial needs at least one episode")
	ErrVehicleStart error = errors.New("invalid vehicle start")
	// ErrMismatch means the controller's assumptions disagree with the car it drives.
	ErrMismatch error = errors.New("controller and physics disagree")
)

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// TrialConfig describes a batch of simulated drives: which track, where the vehicles start,
// and the controller and physics tuning. Omitted sections keep their defaults.
// All yaml keys are lowercase since viper folds keys before def is re-decoded.
type TrialConfig struct {
	// Track names a built in track; Rows, when given, replaces it with an inline track.
	Track string   `yaml:"track"`
	Rows  []string `yaml:"rows"`
	// Vehicles are the configured starts. Without any, each episode starts on a random start cell.
	Vehicles   []VehicleSpec      `yaml:"vehicles"`
	Controller controller.Config  `yaml:"controller"`
	Physics    simulation.Physics `yaml:"physics"`
	Episodes   int                `yaml:"episodes"`
	MaxTicks   int                `yaml:"maxticks"`
	// TrialDeadline is a fixed duration after which episodes stop being generated.
	TrialDeadline map[string]string `yaml:"trialdeadline"`
}

type VehicleSpec struct {
	// Start is "x,y" in continuous track coordinates.
	Start    string  `yaml:"start"`
	Heading  string  `yaml:"heading"`
	Velocity float64 `yaml:"velocity"`
}

// Start is a resolved vehicle start.
type Start struct {
	Point    geometry.Point
	Heading  geometry.Orientation
	Velocity float64
}

func DefaultTrialConfig() *TrialConfig {
	return &TrialConfig{
		Track:      DEFAULT_TRACK,
		Controller: controller.DefaultConfig(),
		Physics:    simulation.DefaultPhysics(),
		Episodes:   DEFAULT_EPISODES,
		MaxTicks:   DEFAULT_MAX_TICKS,
	}
}

// FromYaml loads a trial definition. The file is an envelope of kind and def; def is decoded
// over the defaults so partial configs are fine.
func FromYaml(path string) (*TrialConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, err
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != TRIAL_KIND {
		return nil, fmt.Errorf("%w: kind %q", ErrConfigKind, outerConfig.Kind)
	}

	var spec []byte
	if spec, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := DefaultTrialConfig()
	if err = yaml.Unmarshal(spec, innerConfig); err != nil {
		return nil, err
	}

	if err = innerConfig.Validate(); err != nil {
		return nil, err
	}
	return innerConfig, nil
}

func (cfg *TrialConfig) Validate() error {
	if cfg.Episodes < 1 {
		return ErrNoEpisodes
	}
	if cfg.MaxTicks < 1 {
		return fmt.Errorf("max ticks must be positive, got %d", cfg.MaxTicks)
	}
	if err := cfg.Controller.Validate(); err != nil {
		return err
	}
	if err := cfg.Physics.Validate(); err != nil {
		return err
	}
	// Scans are sized against ViewSquare but the car builds its window from ViewRadius.
	if cfg.Physics.ViewRadius < cfg.Controller.ViewSquare {
		return fmt.Errorf("%w: view radius %d is smaller than view square %d",
			ErrMismatch, cfg.Physics.ViewRadius, cfg.Controller.ViewSquare)
	}
	// Retreat stops are timed with the controller's deceleration.
	if cfg.Physics.BrakeDecel != cfg.Controller.BrakeDecel {
		return fmt.Errorf("%w: brake deceleration %v vs %v",
			ErrMismatch, cfg.Physics.BrakeDecel, cfg.Controller.BrakeDecel)
	}
	return nil
}

// LoadTrack converts the inline rows if present, else the named track.
func (cfg *TrialConfig) LoadTrack() (*grid_world.Track, error) {
	if len(cfg.Rows) > 0 {
		return grid_world.Convert(cfg.Rows)
	}
	return grid_world.Named(cfg.Track)
}

// Starts parses the configured vehicle starts.
func (cfg *TrialConfig) Starts() ([]Start, error) {
	starts := make([]Start, 0, len(cfg.Vehicles))
	for i, spec := range cfg.Vehicles {
		point, err := geometry.ParsePoint(spec.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: vehicle %d: %w", ErrVehicleStart, i, err)
		}
		heading, err := geometry.ParseOrientation(spec.Heading)
		if err != nil {
			return nil, fmt.Errorf("%w: vehicle %d: %w", ErrVehicleStart, i, err)
		}
		starts = append(starts, Start{
			Point:    point,
			Heading:  heading,
			Velocity: spec.Velocity,
		})
	}
	return starts, nil
}

// WithTrialDeadline returns a context extended by the trial deadline, if one is specified.
func (cfg *TrialConfig) WithTrialDeadline(
	ctx context.Context,
) (context.Context, context.CancelFunc, error) {
	if val, ok := cfg.TrialDeadline["duration"]; ok {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return nil, nil, err
		}
		innerCtx, cancel := context.WithTimeout(ctx, duration)
		return innerCtx, cancel, nil
	}
	defaultCtx, cancel := context.WithCancel(ctx)
	return defaultCtx, cancel, nil
}
