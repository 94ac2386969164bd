// Package execanimator runs the animation model as an external process.
//
// Each Animate call gets a scratch directory holding the source image, the
// driving frames as numbered PNGs and a request.yaml manifest. The command is
// started with the manifest path as its last argument and must write the
// generated frames as output/frame-00000.png, frame-00001.png and so on.
package execanimator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/user/imganimate/pkg/ports"
)

const (
	// ManifestName is the request file written into every scratch directory.
	ManifestName = "request.yaml"
	stderrLimit  = 4096
)

var (
	// ErrNoCommand is returned by Load when no command is configured.
	ErrNoCommand = errors.New("execanimator: no animator command configured")
	// ErrNoOutput is returned when the command wrote no frames.
	ErrNoOutput = errors.New("execanimator: animator produced no frames")
	// ErrEmptyDriving is returned when Animate gets no driving frames.
	ErrEmptyDriving = errors.New("execanimator: no driving frames")
)

// Config describes the external command.
type Config struct {
	Command string   // Executable name or path
	Args    []string // Arguments placed before the manifest path
	WorkDir string   // Working directory; model paths are resolved from here

	// KeepScratch leaves the scratch directory in place after a run.
	KeepScratch bool
}

// Manifest is the request.yaml handed to the command.
type Manifest struct {
	RunID      string `yaml:"run_id"`
	Mode       string `yaml:"mode"`
	Config     string `yaml:"config"`
	Checkpoint string `yaml:"checkpoint"`
	Source     string `yaml:"source"`
	DrivingDir string `yaml:"driving_dir"`
	FrameCount int    `yaml:"frame_count"`
	OutputDir  string `yaml:"output_dir"`
	AdaptScale bool   `yaml:"adapt_scale"`
	Relative   bool   `yaml:"relative"`
}

// ProcessError reports a failed animator command.
type ProcessError struct {
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s: %v", filepath.Base(e.Command), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += "\nstderr: " + s
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Animator implements ports.Animator.
type Animator struct {
	cfg      Config
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
}

// New creates an Animator.
func New(cfg Config, fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger) *Animator {
	return &Animator{
		cfg:      cfg,
		fs:       fs,
		renderer: renderer,
		logger:   logger.WithComponent("animator"),
	}
}

// Load resolves the command. The model files themselves are only opened by
// the command, so a bad path surfaces from Animate.
func (a *Animator) Load(ctx context.Context, spec ports.ModelSpec) (ports.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.cfg.Command == "" {
		return nil, ErrNoCommand
	}
	command, err := resolveCommand(a.cfg.Command, a.cfg.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("find animator command: %w", err)
	}

	a.logger.Debug("Loaded model %s (config=%s, checkpoint=%s)", spec.Mode, spec.ConfigPath, spec.CheckpointPath)
	return &model{animator: a, command: command, spec: spec}, nil
}

// resolveCommand returns an absolute path for command. A relative path such as
// ./run.sh is taken relative to workDir, where the command is started; a bare
// name is searched on PATH.
func resolveCommand(command, workDir string) (string, error) {
	if workDir != "" && !filepath.IsAbs(command) && strings.ContainsRune(command, filepath.Separator) {
		command = filepath.Join(workDir, command)
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return "", err
	}
	return filepath.Abs(path)
}

type model struct {
	animator *Animator
	command  string
	spec     ports.ModelSpec
}

func (m *model) Animate(ctx context.Context, source ports.Frame, driving []ports.Frame, opts ports.AnimateOptions) ([]ports.Frame, error) {
	if len(driving) == 0 {
		return nil, ErrEmptyDriving
	}

	a := m.animator
	runID := uuid.NewString()
	dir, err := a.fs.TempDir("imganimate-" + runID[:8] + "-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	if !a.cfg.KeepScratch {
		defer a.fs.RemoveAll(dir)
	}

	manifest := Manifest{
		RunID:      runID,
		Mode:       m.spec.Mode,
		Config:     m.spec.ConfigPath,
		Checkpoint: m.spec.CheckpointPath,
		Source:     filepath.Join(dir, "source.png"),
		DrivingDir: filepath.Join(dir, "driving"),
		FrameCount: len(driving),
		OutputDir:  filepath.Join(dir, "output"),
		AdaptScale: opts.AdaptScale,
		Relative:   opts.Relative,
	}

	if err := m.writeRequest(dir, manifest, source, driving); err != nil {
		return nil, err
	}

	args := append(append([]string{}, a.cfg.Args...), filepath.Join(dir, ManifestName))
	a.logger.Debug("Running %s %s", m.command, strings.Join(args, " "))

	// #nosec G204 - command comes from configuration
	cmd := exec.CommandContext(ctx, m.command, args...)
	cmd.Dir = a.cfg.WorkDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Stdout = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("animator cancelled: %w", ctx.Err())
		}
		return nil, &ProcessError{Command: m.command, Args: args, Stderr: tail(stderr.String()), Err: err}
	}

	return m.readOutput(manifest.OutputDir)
}

func (m *model) writeRequest(dir string, manifest Manifest, source ports.Frame, driving []ports.Frame) error {
	a := m.animator
	if err := m.writePNG(manifest.Source, source); err != nil {
		return fmt.Errorf("write source: %w", err)
	}
	if err := a.fs.MkdirAll(manifest.DrivingDir); err != nil {
		return err
	}
	for i, f := range driving {
		if err := m.writePNG(framePath(manifest.DrivingDir, i), f); err != nil {
			return fmt.Errorf("write driving frame %d: %w", i, err)
		}
	}
	if err := a.fs.MkdirAll(manifest.OutputDir); err != nil {
		return err
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	return a.fs.WriteFile(filepath.Join(dir, ManifestName), data)
}

func (m *model) writePNG(path string, f ports.Frame) error {
	data, err := m.animator.renderer.EncodeImage(f.ToRGBA(), ports.FormatPNG, 0)
	if err != nil {
		return err
	}
	return m.animator.fs.WriteFile(path, data)
}

// readOutput reads frames in index order until the first missing file.
func (m *model) readOutput(dir string) ([]ports.Frame, error) {
	a := m.animator
	var frames []ports.Frame
	for i := 0; ; i++ {
		path := framePath(dir, i)
		ok, err := a.fs.Exists(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		data, err := a.fs.ReadFile(path)
		if err != nil {
			return nil, err
		}
		img, err := a.renderer.DecodeImage(data, ports.FormatPNG)
		if err != nil {
			return nil, fmt.Errorf("decode output frame %d: %w", i, err)
		}
		frames = append(frames, ports.NewFrame(img))
	}

	if len(frames) == 0 {
		return nil, ErrNoOutput
	}
	a.logger.Debug("Read %d generated frames", len(frames))
	return frames, nil
}

func (m *model) Close() error {
	return nil
}

func framePath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("frame-%05d.png", i))
}

func tail(s string) string {
	if len(s) > stderrLimit {
		return s[len(s)-stderrLimit:]
	}
	return s
}

var _ ports.Animator = (*Animator)(nil)
