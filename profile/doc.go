// Package profile records runtime profiles and execution traces of a CLI
// run.
//
// CPU profiles and execution traces cover the whole run; heap, allocs,
// goroutine and block profiles are snapshots written when the run ends.
// Traces annotate each rendered frame, which makes frame pacing problems
// visible in "go tool trace".
//
// Typical usage creates a [Config], registers flags, then wraps the command
// with a [Session]:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.Flags())
//
//	s, err := cfg.Start()
//	if err != nil {
//		return err
//	}
//	defer func() { err = errors.Join(err, s.Stop()) }()
package profile
