// Package config provides configuration loading and management.
//
// Settings that rarely change between runs (where ffmpeg lives, which command
// runs inference, where model files are) come from an optional YAML file and
// the environment. Per-run choices live in Options.
package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"

	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/ports"
)

// Config represents the file and environment configuration for imganimate.
type Config struct {
	// Output
	OutputDir   string `yaml:"output_dir" validate:"required"`
	TargetSize  int    `yaml:"target_size" validate:"gt=0,even"`
	StackMargin int    `yaml:"stack_margin" validate:"gte=0,even"`

	// External binaries
	FFmpegPath      string `yaml:"ffmpeg_path"`
	FFprobePath     string `yaml:"ffprobe_path"`
	AlternateFFmpeg string `yaml:"alternate_ffmpeg" validate:"required"`

	// Inference
	Animator AnimatorConfig         `yaml:"animator"`
	Models   map[string]ModelConfig `yaml:"models" validate:"dive"`
}

// AnimatorConfig describes the external inference command.
type AnimatorConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	WorkDir string   `yaml:"work_dir"`
}

// ModelConfig is the config/checkpoint pair of one generation mode.
type ModelConfig struct {
	Config     string `yaml:"config" validate:"required"`
	Checkpoint string `yaml:"checkpoint" validate:"required"`
}

// Env holds the settings that may be overridden from the environment.
// Unset variables leave the file configuration untouched.
type Env struct {
	OutputDir       string `env:"IMGANIMATE_OUTPUT_DIR"`
	FFmpegPath      string `env:"FFMPEG_PATH"`
	FFprobePath     string `env:"FFPROBE_PATH"`
	AlternateFFmpeg string `env:"IMGANIMATE_ALTERNATE_FFMPEG"`
	Animator        string `env:"IMGANIMATE_ANIMATOR"`
}

var defaultModels = map[string]ModelConfig{
	"fashion":      {Config: "config/fashion-256.yaml", Checkpoint: "checkpoints/fashion.pth.tar"},
	"vox":          {Config: "config/vox-256.yaml", Checkpoint: "checkpoints/vox-cpk.pth.tar"},
	"vox-advanced": {Config: "config/vox-256.yaml", Checkpoint: "checkpoints/vox-adv-cpk.pth.tar"},
	"gif":          {Config: "config/mgif-256.yaml", Checkpoint: "checkpoints/mgif-cpk.pth.tar"},
}

// DefaultModels returns a copy of the built-in model table.
func DefaultModels() map[string]ModelConfig {
	models := make(map[string]ModelConfig, len(defaultModels))
	for name, m := range defaultModels {
		models[name] = m
	}
	return models
}

// ModelNames returns the built-in generation modes in a stable order.
func ModelNames() []string {
	names := make([]string, 0, len(defaultModels))
	for name := range defaultModels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		OutputDir:       "output",
		TargetSize:      256,
		StackMargin:     10,
		AlternateFFmpeg: "ffmpeg-fdk-aac",
		Models:          DefaultModels(),
	}
}

// LoadFromFile loads configuration from a YAML file.
// Keys missing from the file keep their default values. Entries under
// models replace the paths of the mode they name.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	cfg.Models = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), fmt.Errorf("parse %s: %w", path, err)
	}

	models := DefaultModels()
	for name, m := range cfg.Models {
		if _, ok := models[name]; !ok {
			return Defaults(), errkind.Configf("unknown model %q in %s (want one of %s)", name, path, strings.Join(ModelNames(), ", "))
		}
		models[name] = m
	}
	cfg.Models = models

	return cfg, nil
}

// ApplyEnv overlays the process environment onto c.
func (c *Config) ApplyEnv(ctx context.Context) error {
	return c.applyEnv(ctx, envconfig.OsLookuper())
}

func (c *Config) applyEnv(ctx context.Context, lookuper envconfig.Lookuper) error {
	var env Env
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &env,
		Lookuper: lookuper,
	}); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if env.OutputDir != "" {
		c.OutputDir = env.OutputDir
	}
	if env.FFmpegPath != "" {
		c.FFmpegPath = env.FFmpegPath
	}
	if env.FFprobePath != "" {
		c.FFprobePath = env.FFprobePath
	}
	if env.AlternateFFmpeg != "" {
		c.AlternateFFmpeg = env.AlternateFFmpeg
	}
	if env.Animator != "" {
		c.Animator.Command = env.Animator
	}
	return nil
}

// Validate checks the loaded configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return validationError(err)
	}
	return nil
}

// ModelFor returns the model spec for mode. The result is a copy.
func (c Config) ModelFor(mode string) (ports.ModelSpec, error) {
	m, ok := c.Models[mode]
	if !ok {
		return ports.ModelSpec{}, errkind.Configf("unknown generation mode %q (want one of %s)", mode, strings.Join(ModelNames(), ", "))
	}
	return ports.ModelSpec{Mode: mode, ConfigPath: m.Config, CheckpointPath: m.Checkpoint}, nil
}

var validate = newValidator()

// newValidator registers "even": encoded frame dimensions must be even, so
// the model size and the stacked margin are rejected here rather than at
// encode time.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}); err != nil {
		panic(err)
	}
	return v
}
