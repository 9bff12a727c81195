package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twpayne/go-heightmap/internal/config"
)

type flagValues struct {
	configPath      string
	size            float64
	resolution      float64
	output          string
	image           string
	endpoint        string
	batchSize       int
	metersPerDegree float64
	workers         int
	timeout         time.Duration
	cacheSize       int
	metricsTextfile string
	verbose         bool
	noProgress      bool
}

// NewRootCommand builds the heightmap command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	defaults := config.Default()
	var flags flagValues

	cmd := &cobra.Command{
		Use:   "heightmap LATITUDE LONGITUDE",
		Short: "Extract elevation maps from the IGN altimetry API.",
		Long: "Fetch a square grid of elevations centered on LATITUDE LONGITUDE and " +
			"write them to an HDF5 file, optionally rendering a grayscale image.",
		Version:       resolvedVersion(deps.Version),
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), &flags, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, deps, cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "Path of a YAML configuration file.")
	f.Float64VarP(&flags.size, "size", "s", defaults.Size, "Size of the map in meters.")
	f.Float64VarP(&flags.resolution, "resolution", "r", defaults.Resolution, "Resolution of the map in meters.")
	f.StringVarP(&flags.output, "output", "o", defaults.Output, "Path of the output.")
	f.StringVar(&flags.image, "image", "", "Path of the image. The format is inferred from the extension.")
	f.StringVar(&flags.endpoint, "endpoint", defaults.Endpoint, "Elevation service endpoint.")
	f.IntVar(&flags.batchSize, "batch-size", defaults.BatchSize, "Maximum number of points per request.")
	f.Float64Var(&flags.metersPerDegree, "meters-per-degree", defaults.MetersPerDegree, "Meters per degree of latitude.")
	f.IntVar(&flags.workers, "workers", defaults.Workers, "Number of concurrent requests.")
	f.DurationVar(&flags.timeout, "timeout", defaults.Timeout, "Timeout per request, 0 for none.")
	f.IntVar(&flags.cacheSize, "cache-size", defaults.CacheSize, "Number of elevations to cache, 0 to disable.")
	f.StringVar(&flags.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file.")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Log each request.")
	f.BoolVar(&flags.noProgress, "no-progress", false, "Do not show a progress bar.")

	return cmd
}

// resolveConfig layers defaults, the config file, the environment, and
// explicitly set flags, in increasing order of precedence.
func resolveConfig(flagSet *pflag.FlagSet, flags *flagValues, args []string) (config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		if err := cfg.LoadFile(flags.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}

	flagSet.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "size":
			cfg.Size = flags.size
		case "resolution":
			cfg.Resolution = flags.resolution
		case "output":
			cfg.Output = flags.output
		case "image":
			cfg.Image = flags.image
		case "endpoint":
			cfg.Endpoint = flags.endpoint
		case "batch-size":
			cfg.BatchSize = flags.batchSize
		case "meters-per-degree":
			cfg.MetersPerDegree = flags.metersPerDegree
		case "workers":
			cfg.Workers = flags.workers
		case "timeout":
			cfg.Timeout = flags.timeout
		case "cache-size":
			cfg.CacheSize = flags.cacheSize
		case "metrics-textfile":
			cfg.MetricsTextfile = flags.metricsTextfile
		case "verbose":
			cfg.Verbose = flags.verbose
		case "no-progress":
			cfg.NoProgress = flags.noProgress
		}
	})

	var err error
	if cfg.Latitude, err = parseCoordinate("latitude", args[0]); err != nil {
		return config.Config{}, err
	}
	if cfg.Longitude, err = parseCoordinate("longitude", args[1]); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func parseCoordinate(name, arg string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, arg)
	}
	return value, nil
}
