// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports multiple output formats ([FormatJSON], [FormatLogfmt], and
// [FormatText]) and severity levels ([LevelError], [LevelWarn], [LevelInfo],
// and [LevelDebug]). Use [NewHandler] to create a handler directly, or use
// [Config] with CLI flag integration via [github.com/spf13/pflag] and shell
// completion support via [github.com/spf13/cobra].
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	w, closeLog, err := cfg.Writer(os.Stderr)
//	defer closeLog()
//
//	handler, err := cfg.NewHandler(w)
//	slog.SetDefault(slog.New(handler))
//
// Programs that draw on the terminal should log through [Config.Writer],
// which keeps log lines off a terminal that is displaying images.
package log
