// Command kittyvo plays video in terminals that support the kitty graphics
// protocol.
//
// Frames are scaled to the terminal's pixel size and handed to the terminal
// through POSIX shared memory. The command accepts either a video file
// (decoded via ffmpeg) or a directory of PNG frames.
//
// # Usage
//
//	kittyvo [flags] <video_file|frame_directory>
//	kittyvo schema
//
// Logs are discarded while stderr is the terminal showing the video; use
// --log-file or redirect stderr to keep them.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/kittyvo/log"
	"go.jacobcolvin.com/kittyvo/osd"
	"go.jacobcolvin.com/kittyvo/profile"
	"go.jacobcolvin.com/kittyvo/version"
	"go.jacobcolvin.com/kittyvo/vo"
)

// options holds playback flags that are not renderer configuration.
type options struct {
	config   string
	fps      int
	loop     bool
	timecode bool
}

func (o *options) registerFlags(flags *pflag.FlagSet) {
	flags.IntVar(&o.fps, "fps", 24, "playback FPS")
	flags.BoolVar(&o.loop, "loop", false, "loop playback continuously")
	flags.BoolVar(&o.timecode, "timecode", false, "draw the playback position over the video")
	flags.StringVar(&o.config, "config", "", "YAML config file with renderer options")
}

func (o *options) validate() error {
	if o.fps <= 0 {
		return fmt.Errorf("%w: fps must be positive, got %d", vo.ErrInvalidConfig, o.fps)
	}

	return nil
}

func main() {
	opts := &options{}
	voCfg := vo.NewConfig()
	logCfg := log.NewConfig()
	profCfg := profile.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "kittyvo [flags] <video_file|frame_directory>",
		Short: "Play video in the terminal with the kitty graphics protocol",
		Long: `kittyvo plays a video file or a directory of PNG frames in terminals that
support the kitty graphics protocol. Frames are passed to the terminal through
POSIX shared memory, so the terminal must run on the same host.`,
		Version:       version.String(),
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.Flags(), opts, voCfg, logCfg, profCfg, args[0])
		},
	}

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printSchema(cmd)
		},
	}

	rootCmd.AddCommand(schemaCmd)

	opts.registerFlags(rootCmd.Flags())
	voCfg.RegisterFlags(rootCmd.Flags())
	logCfg.RegisterFlags(rootCmd.Flags())
	profCfg.RegisterFlags(rootCmd.Flags())

	completionErr := errors.Join(
		rootCmd.MarkFlagFilename("config", "yaml", "yml"),
		voCfg.RegisterCompletions(rootCmd),
		logCfg.RegisterCompletions(rootCmd),
		profCfg.RegisterCompletions(rootCmd),
	)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	flags *pflag.FlagSet,
	opts *options,
	voCfg *vo.Config,
	logCfg *log.Config,
	profCfg *profile.Config,
	input string,
) (err error) {
	if opts.config != "" {
		err = voCfg.LoadFile(opts.config, flags)
		if err != nil {
			return err
		}
	}

	err = opts.validate()
	if err != nil {
		return err
	}

	w, closeLog, err := logCfg.Writer(os.Stderr)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, closeLog()) }()

	handler, err := logCfg.NewHandler(w)
	if err != nil {
		return err
	}

	logger := slog.New(handler)

	session, err := profCfg.Start()
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, session.Stop()) }()

	src, err := openSource(ctx, input, opts.fps)
	if err != nil {
		return err
	}

	renderOpts := []vo.Option{vo.WithLogger(logger)}
	if opts.timecode {
		renderOpts = append(renderOpts, vo.WithOverlay(osd.NewTimecode()))
	}

	r, err := voCfg.NewRenderer(os.Stdout, renderOpts...)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, r.Close()) }()

	p := &player{
		renderer: r,
		src:      src,
		log:      logger,
		fps:      opts.fps,
		loop:     opts.loop,
	}

	err = p.play(ctx)
	if err != nil {
		logger.Error("playback failed", slog.Any("error", err))

		return err
	}

	return nil
}

func printSchema(cmd *cobra.Command) error {
	out, err := json.MarshalIndent(vo.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	out = append(out, '\n')

	_, err = cmd.OutOrStdout().Write(out)
	if err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}

	return nil
}
