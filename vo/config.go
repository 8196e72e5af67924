package vo

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/kittyvo/canvas"
	"go.jacobcolvin.com/kittyvo/scale"
	"go.jacobcolvin.com/kittyvo/shm"
)

// ErrInvalidConfig indicates a [Config] value out of range.
var ErrInvalidConfig = errors.New("invalid config")

// Flags holds CLI flag names for renderer configuration, allowing callers to
// customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	Width      string
	Height     string
	Top        string
	Left       string
	ExitClear  string
	KeepAspect string
	Panscan    string
	Scaler     string
	ShmName    string
	ShmDir     string
}

// NewConfig creates a new [Config] with default values embedding these flag
// names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags:      f,
		ExitClear:  true,
		KeepAspect: true,
		Scaler:     string(scale.KernelBiLinear),
		ShmName:    shm.DefaultName,
		ShmDir:     shm.DefaultDir,
	}
}

// Config holds renderer options.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewRenderer] to create a [Renderer].
type Config struct {
	Flags Flags

	// Geometry overrides; zero computes the value from the terminal.
	Width  int
	Height int
	Top    int
	Left   int

	ExitClear  bool
	KeepAspect bool
	Panscan    float64
	Scaler     string

	ShmName string
	ShmDir  string
}

// NewConfig returns a new [Config] with default flag names and values.
func NewConfig() *Config {
	f := Flags{
		Width:      "vo-kitty-width",
		Height:     "vo-kitty-height",
		Top:        "vo-kitty-top",
		Left:       "vo-kitty-left",
		ExitClear:  "vo-kitty-exit-clear",
		KeepAspect: "vo-kitty-keep-aspect",
		Panscan:    "vo-kitty-panscan",
		Scaler:     "vo-kitty-scaler",
		ShmName:    "vo-kitty-shm-name",
		ShmDir:     "vo-kitty-shm-dir",
	}

	return f.NewConfig()
}

// RegisterFlags adds renderer flags to the given [*pflag.FlagSet], using the
// current field values as defaults.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.IntVar(&c.Width, c.Flags.Width, c.Width,
		"canvas width in pixels (0 = terminal width)")
	flags.IntVar(&c.Height, c.Flags.Height, c.Height,
		"canvas height in pixels (0 = terminal height)")
	flags.IntVar(&c.Top, c.Flags.Top, c.Top,
		"1-based cell row of the image (0 = centered)")
	flags.IntVar(&c.Left, c.Flags.Left, c.Left,
		"1-based cell column of the image (0 = centered)")
	flags.BoolVar(&c.ExitClear, c.Flags.ExitClear, c.ExitClear,
		"clear the screen on exit")
	flags.BoolVar(&c.KeepAspect, c.Flags.KeepAspect, c.KeepAspect,
		"preserve the video aspect ratio")
	flags.Float64Var(&c.Panscan, c.Flags.Panscan, c.Panscan,
		"crop to fill the canvas, from 0 (fit) to 1 (fill)")
	flags.StringVar(&c.Scaler, c.Flags.Scaler, c.Scaler,
		fmt.Sprintf("scaling kernel, one of: %s", scale.GetAllKernelStrings()))
	flags.StringVar(&c.ShmName, c.Flags.ShmName, c.ShmName,
		"shared memory object name")
	flags.StringVar(&c.ShmDir, c.Flags.ShmDir, c.ShmDir,
		"directory backing shared memory objects")
}

// RegisterCompletions registers shell completions for renderer flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Scaler,
		cobra.FixedCompletions(scale.GetAllKernelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Scaler, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.ShmDir,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.ShmDir, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, name := range []string{
		c.Flags.Width, c.Flags.Height, c.Flags.Top, c.Flags.Left,
		c.Flags.Panscan, c.Flags.ShmName,
	} {
		err = cmd.RegisterFlagCompletionFunc(name, noFileComp)
		if err != nil {
			return fmt.Errorf("registering %s completion: %w", name, err)
		}
	}

	return nil
}

// Validate reports an [ErrInvalidConfig] error for out of range values.
func (c *Config) Validate() error {
	var errs []error

	for name, v := range map[string]int{
		c.Flags.Width:  c.Width,
		c.Flags.Height: c.Height,
		c.Flags.Top:    c.Top,
		c.Flags.Left:   c.Left,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidConfig, name, v))
		}
	}

	if c.Panscan < 0 || c.Panscan > 1 {
		errs = append(errs, fmt.Errorf("%w: %s must be within [0, 1], got %g", ErrInvalidConfig, c.Flags.Panscan, c.Panscan))
	}

	_, err := scale.ParseKernel(c.Scaler)
	if err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	if c.ShmName == "" || c.ShmName == "/" {
		errs = append(errs, fmt.Errorf("%w: %s must not be empty", ErrInvalidConfig, c.Flags.ShmName))
	}

	return errors.Join(errs...)
}

// Override returns the geometry overrides of c.
func (c *Config) Override() canvas.Override {
	return canvas.Override{
		Width:  c.Width,
		Height: c.Height,
		Top:    c.Top,
		Left:   c.Left,
	}
}

// Segment returns the shared memory segment of c.
func (c *Config) Segment() shm.Segment {
	return shm.Segment{Name: c.ShmName, Dir: c.ShmDir}
}

// file is the YAML representation of [Config]. Nil fields are absent.
type file struct {
	Width      *int     `yaml:"width"`
	Height     *int     `yaml:"height"`
	Top        *int     `yaml:"top"`
	Left       *int     `yaml:"left"`
	ExitClear  *bool    `yaml:"exit-clear"`
	KeepAspect *bool    `yaml:"keep-aspect"`
	Panscan    *float64 `yaml:"panscan"`
	Scaler     *string  `yaml:"scaler"`
	ShmName    *string  `yaml:"shm-name"`
	ShmDir     *string  `yaml:"shm-dir"`
}

// LoadFile reads a YAML config file and applies every value whose flag was
// not set explicitly in flags. A nil flags applies all values. Unknown keys
// are rejected.
func (c *Config) LoadFile(path string, flags *pflag.FlagSet) error {
	data, err := os.ReadFile(path) //nolint:gosec // Config path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	var f file

	err = yaml.UnmarshalWithOptions(data, &f, yaml.DisallowUnknownField())
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	setValue(&c.Width, f.Width, changed(c.Flags.Width))
	setValue(&c.Height, f.Height, changed(c.Flags.Height))
	setValue(&c.Top, f.Top, changed(c.Flags.Top))
	setValue(&c.Left, f.Left, changed(c.Flags.Left))
	setValue(&c.ExitClear, f.ExitClear, changed(c.Flags.ExitClear))
	setValue(&c.KeepAspect, f.KeepAspect, changed(c.Flags.KeepAspect))
	setValue(&c.Panscan, f.Panscan, changed(c.Flags.Panscan))
	setValue(&c.Scaler, f.Scaler, changed(c.Flags.Scaler))
	setValue(&c.ShmName, f.ShmName, changed(c.Flags.ShmName))
	setValue(&c.ShmDir, f.ShmDir, changed(c.Flags.ShmDir))

	return nil
}

func setValue[T any](dst, v *T, explicit bool) {
	if v == nil || explicit {
		return
	}

	*dst = *v
}

// Schema returns the JSON Schema of the YAML config file read by
// [Config.LoadFile].
func Schema() *jsonschema.Schema {
	nonNegative := func(desc string) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:        "integer",
			Description: desc,
			Minimum:     jsonschema.Ptr(0.0),
		}
	}

	kernels := make([]any, 0, len(scale.GetAllKernelStrings()))
	for _, k := range scale.GetAllKernelStrings() {
		kernels = append(kernels, k)
	}

	return &jsonschema.Schema{
		Schema: "http://json-schema.org/draft-07/schema#",
		Title:  "kittyvo",
		Type:   "object",
		Properties: map[string]*jsonschema.Schema{
			"width":  nonNegative("Canvas width in pixels; 0 uses the terminal width."),
			"height": nonNegative("Canvas height in pixels; 0 uses the terminal height."),
			"top":    nonNegative("1-based cell row of the image; 0 centers it."),
			"left":   nonNegative("1-based cell column of the image; 0 centers it."),
			"exit-clear": {
				Type:        "boolean",
				Description: "Clear the screen on exit.",
			},
			"keep-aspect": {
				Type:        "boolean",
				Description: "Preserve the video aspect ratio.",
			},
			"panscan": {
				Type:        "number",
				Description: "Crop to fill the canvas, from 0 (fit) to 1 (fill).",
				Minimum:     jsonschema.Ptr(0.0),
				Maximum:     jsonschema.Ptr(1.0),
			},
			"scaler": {
				Type:        "string",
				Description: "Scaling kernel.",
				Enum:        kernels,
			},
			"shm-name": {
				Type:        "string",
				Description: "Shared memory object name.",
			},
			"shm-dir": {
				Type:        "string",
				Description: "Directory backing shared memory objects.",
			},
		},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}
