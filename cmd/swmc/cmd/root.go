package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/swmc/internal/config"
	"github.com/OpenTraceLab/swmc/pkg/datadir"
	"github.com/OpenTraceLab/swmc/pkg/microcontroller"
)

var (
	// Global flags
	verbose    bool
	strict     bool
	configPath string

	cfg    = config.DefaultConfig()
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:   "swmc",
	Short: "Stormworks microcontroller file tools",
	Long: `swmc reads and writes Stormworks microcontroller files, in the game's
<microprocessor> layout and in the compact <mc> layout.

Examples:
  swmc roundtrip --all                 # Check every saved microcontroller
  swmc check autopilot.xml             # Report dangling connections and invalid ids
  swmc info autopilot.xml              # Show a summary
  swmc dump autopilot.xml -f yaml      # Export as YAML
  swmc ls                              # List the game's microcontroller folder`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "reject unknown attributes and elements")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/swmc/config.yaml)")
}

// setup loads the config file and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			return err
		}
	}
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded
	if strict {
		cfg.Strict = true
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	logger.Debug("config loaded", "path", path, "strict", cfg.Strict, "dump_format", cfg.DumpFormat)
	return nil
}

func parseOptions() []microcontroller.ParseOption {
	if cfg.Strict {
		return []microcontroller.ParseOption{microcontroller.WithStrict()}
	}
	return nil
}

// readFile returns the text of a microcontroller file and its parsed model
func readFile(path string) (string, *microcontroller.Microcontroller, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	text := string(data)
	mc, err := microcontroller.Parse(text, parseOptions()...)
	if err != nil {
		return text, nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("parsed", "file", path, "dialect", mc.Dialect, "components", len(mc.Components), "nodes", len(mc.Nodes))
	return text, mc, nil
}

// folder is the configured microcontroller folder, or the game's
func folder() (string, error) {
	if cfg.MicrocontrollerDir != "" {
		return cfg.MicrocontrollerDir, nil
	}
	return datadir.FindMicrocontrollerFolder()
}
