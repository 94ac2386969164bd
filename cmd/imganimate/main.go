// Package main provides the CLI entry point for imganimate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/ideamans/go-l10n"

	"github.com/user/imganimate/pkg/adapters/codecdetect"
	"github.com/user/imganimate/pkg/adapters/execanimator"
	"github.com/user/imganimate/pkg/adapters/ffmpegdecoder"
	"github.com/user/imganimate/pkg/adapters/ffmpegencoder"
	"github.com/user/imganimate/pkg/adapters/ffprobe"
	"github.com/user/imganimate/pkg/adapters/filesink"
	"github.com/user/imganimate/pkg/adapters/ggrenderer"
	"github.com/user/imganimate/pkg/adapters/logger"
	"github.com/user/imganimate/pkg/adapters/mp4probe"
	"github.com/user/imganimate/pkg/adapters/nullsink"
	"github.com/user/imganimate/pkg/adapters/osfilesystem"
	"github.com/user/imganimate/pkg/adapters/progress"
	"github.com/user/imganimate/pkg/adapters/smartprobe"
	"github.com/user/imganimate/pkg/config"
	"github.com/user/imganimate/pkg/errkind"
	"github.com/user/imganimate/pkg/orchestrator"
	"github.com/user/imganimate/pkg/ports"
	"github.com/user/imganimate/pkg/stages/animate"
	"github.com/user/imganimate/pkg/stages/driving"
	"github.com/user/imganimate/pkg/stages/encode"
	"github.com/user/imganimate/pkg/stages/source"
	"github.com/user/imganimate/pkg/stages/stack"
	"github.com/user/imganimate/pkg/summarizer"
)

// CLI defines the command-line interface.
type CLI struct {
	// Input
	Source string `short:"s" group:"Input" help:"The image to generate a video from."`
	Video  string `short:"v" group:"Input" help:"The driving video."`
	Mode   string `short:"m" group:"Input" default:"vox" enum:"fashion,vox,vox-advanced,gif" help:"Generation mode (fashion, vox, vox-advanced, gif)."`

	// Flags
	Adaptive bool `group:"Flags" aliases:"adapt" help:"Adaptive movement scale instead of relative motion."`
	Stack    bool `group:"Flags" aliases:"stacked" help:"Also write a video with output and input side by side."`

	// Resize
	ImageResize string `group:"Resize" default:"stretch" enum:"fill,stretch,crop" help:"Resize mode for the source image (fill, stretch, crop)."`
	VideoResize string `group:"Resize" default:"stretch" enum:"fill,stretch,crop" help:"Resize mode for the driving video (fill, stretch, crop)."`

	// Time remap
	Start    float64 `group:"Time Remap" help:"Start of the driving video in seconds."`
	End      float64 `group:"Time Remap" xor:"window" help:"End of the driving video in seconds."`
	Duration float64 `group:"Time Remap" xor:"window" help:"Duration taken from the driving video in seconds."`

	// Codecs
	Codec string `short:"c" group:"Codecs" default:"h264" enum:"h264,mpeg4,mp4" help:"Codec mode. h264 plays on most devices, mpeg4 is the least compatible, mp4 uses stock ffmpeg encoders."`

	// Output
	Config    string `type:"existingfile" group:"Output" help:"YAML configuration file."`
	OutputDir string `group:"Output" help:"Directory for generated videos (default: output)."`
	Summary   string `group:"Output" help:"Write a run summary to this file (Markdown format)."`

	// Debug
	Debug    bool   `short:"d" group:"Debug" help:"Save intermediate frames and keep the animator scratch directory."`
	DebugDir string `group:"Debug" default:"./debug" help:"Directory for debug output."`

	// Logging
	LogLevel string `short:"l" group:"Logging" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)."`
	Quiet    bool   `short:"Q" group:"Logging" help:"Suppress all log output."`

	// Version info
	Version   kong.VersionFlag `group:"Version Info" help:"Print the current version."`
	Changelog string           `group:"Version Info" placeholder:"VERSION|all" help:"Print the changelog of a release, or of all releases."`
}

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("imganimate"),
		kong.Description(l10n.T("Generate a video from an image and a driving video")),
		kong.UsageOnError(),
		kong.Vars{"version": "imganimate version " + latestVersion()},
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the animation. --changelog is handled here, before the
// inputs are validated.
func (cli *CLI) Run(kctx *kong.Context) error {
	if cli.Changelog != "" {
		return writeChangelog(kctx.Stdout, cli.Changelog)
	}

	var log ports.Logger
	if cli.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cli.LogLevel))
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	cfg, err := cli.loadConfig(ctx)
	if err != nil {
		return err
	}
	orchConfig, err := cfg.ToOrchestratorConfig(cli.options())
	if err != nil {
		return err
	}
	if cfg.Animator.Command == "" {
		return errkind.Configf("no animator command configured (set animator.command or IMGANIMATE_ANIMATOR)")
	}

	fs := osfilesystem.New()
	renderer := ggrenderer.New()

	var sink ports.DebugSink
	if cli.Debug {
		if err := fs.MkdirAll(cli.DebugDir); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(cli.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	var bar ports.Progress = progress.Noop{}
	if !cli.Quiet {
		bar = progress.NewAuto()
	}

	prober := smartprobe.New(mp4probe.New(), ffprobe.New(cfg.FFprobePath), log)
	decoder := ffmpegdecoder.New(cfg.FFmpegPath)
	animator := execanimator.New(execanimator.Config{
		Command:     cfg.Animator.Command,
		Args:        cfg.Animator.Args,
		WorkDir:     cfg.Animator.WorkDir,
		KeepScratch: cli.Debug,
	}, fs, renderer, log)
	inspector := codecdetect.Inspector{}

	orch := orchestrator.New(
		source.NewStage(fs, renderer, sink, log),
		driving.NewStage(prober, decoder, sink, log),
		animate.NewStage(animator, sink, log),
		encode.NewStage(ffmpegencoder.New(), fs, inspector, bar, log),
		stack.NewStage(ffmpegencoder.New(), renderer, fs, inspector, bar, log),
		fs,
		sink,
		log,
	)

	result, runErr := orch.Run(ctx, orchConfig)

	if cli.Summary != "" {
		formatter := summarizer.NewMarkdownFormatter(
			summarizer.WithTranslator(l10n.T),
			summarizer.WithVersion(latestVersion()),
		)
		writer := summarizer.NewWriter(formatter, fs)
		if err := writer.Write(cli.Summary, summarizer.FromRun(orchConfig, result, runErr)); err != nil {
			log.Warn("Failed to write summary: %s", err)
		} else {
			log.Info("Summary saved to %s", cli.Summary)
		}
	}

	return runErr
}

// loadConfig reads the optional YAML file, overlays the environment and
// applies the output directory flag.
func (cli *CLI) loadConfig(ctx context.Context) (config.Config, error) {
	cfg := config.Defaults()
	if cli.Config != "" {
		loaded, err := config.LoadFromFile(cli.Config)
		if err != nil {
			return cfg, errkind.Wrap(errkind.ErrConfiguration, "", cli.Config, err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(ctx); err != nil {
		return cfg, errkind.Wrap(errkind.ErrConfiguration, "", "", err)
	}
	if cli.OutputDir != "" {
		cfg.OutputDir = cli.OutputDir
	}
	return cfg, nil
}

// options maps the flags onto config.Options.
func (cli *CLI) options() config.Options {
	return config.NewOptionsBuilder().
		WithSource(cli.Source).
		WithVideo(cli.Video).
		WithMode(cli.Mode).
		WithAdaptScale(cli.Adaptive).
		WithStack(cli.Stack).
		WithImageResize(cli.ImageResize).
		WithVideoResize(cli.VideoResize).
		WithWindow(cli.Start, cli.End, cli.Duration).
		WithCodec(cli.Codec).
		Build()
}
