package runner

import (
	"os"
	"strconv"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/goflags"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/formatter"
	"github.com/projectdiscovery/gologger/levels"
	envutil "github.com/projectdiscovery/utils/env"

	"lanscout/pkg/version"
)

var au *aurora.Aurora

var (
	TimeoutMsEnv  = envutil.GetEnvOrDefault("LANSCOUT_TIMEOUT_MS", "")
	IntervalMsEnv = envutil.GetEnvOrDefault("LANSCOUT_INTERVAL_MS", "")
)

// Options contains the configuration options for one scan invocation.
type Options struct {
	Interface string
	CIDR      string

	TimeoutMs  int
	IntervalMs int

	Output string
	JSON   bool

	Verbose bool
	Silent  bool
	NoColor bool
	Version bool
}

// ParseOptions parses the command line flags provided by a user
func ParseOptions() *Options {
	options := &Options{}
	flagSet := goflags.NewFlagSet()

	flagSet.SetDescription(`lanscout discovers the devices on a local network segment using a hybrid broadcast discovery + paced liveness probing scan`)

	flagSet.CreateGroup("input", "Input",
		flagSet.StringVarP(&options.Interface, "interface", "i", "", "network interface to scan (default: first private interface)"),
		flagSet.StringVar(&options.CIDR, "cidr", "", "CIDR to scan (default: the interface subnet)"),
	)

	flagSet.CreateGroup("probe", "Probe",
		flagSet.IntVarP(&options.TimeoutMs, "timeout", "t", 3000, "per-probe timeout in milliseconds"),
		flagSet.IntVarP(&options.IntervalMs, "interval", "rl", 0, "minimum spacing between probes in milliseconds (0 = probe all hosts concurrently)"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "file to write resolved devices to (json lines)"),
		flagSet.BoolVarP(&options.JSON, "json", "j", false, "print the inventory as json"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.BoolVarP(&options.Verbose, "verbose", "v", false, "show verbose output"),
		flagSet.BoolVar(&options.Silent, "silent", false, "show only the inventory"),
		flagSet.BoolVarP(&options.NoColor, "no-color", "nc", false, "disable output content coloring (ANSI escape codes)"),
		flagSet.BoolVar(&options.Version, "version", false, "show version of the project"),
	)

	if err := flagSet.Parse(); err != nil {
		gologger.Fatal().Msgf("%s\n", err)
	}

	au = aurora.New(aurora.WithColors(true))

	options.configureOutput()

	showBanner()

	if options.Version {
		gologger.Info().Msgf("Current Version: %s\n", version.Version)
		os.Exit(0)
	}

	// env vars lose to explicit flags but beat the defaults
	if options.TimeoutMs == 3000 && TimeoutMsEnv != "" {
		if ms, err := strconv.Atoi(TimeoutMsEnv); err == nil && ms > 0 {
			options.TimeoutMs = ms
		}
	}
	if options.IntervalMs == 0 && IntervalMsEnv != "" {
		if ms, err := strconv.Atoi(IntervalMsEnv); err == nil && ms > 0 {
			options.IntervalMs = ms
		}
	}

	return options
}

// configureOutput configures the output on the screen
func (options *Options) configureOutput() {
	if options.Verbose {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelVerbose)
	}
	if options.NoColor {
		gologger.DefaultLogger.SetFormatter(formatter.NewCLI(true))
		au = aurora.New(aurora.WithColors(false))
	}
	if options.Silent {
		gologger.DefaultLogger.SetMaxLevel(levels.LevelSilent)
	}
}
