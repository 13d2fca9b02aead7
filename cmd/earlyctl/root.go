package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/earlyalloc/cmd/earlyctl/logger"
	"github.com/joshuapare/earlyalloc/config"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	cfgPath   string
	logLevel  string
	logFormat string

	// Overrides applied on top of the loaded config.
	pageSize     config.Size
	regionSize   config.Size
	regionOffset config.Size

	// cfg is the effective configuration, set by loadConfig.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "earlyctl",
	Short: "Drive the early allocator over a mapped memory region",
	Long: `earlyctl maps an anonymous memory region, hands it to the early
allocator and replays allocation scripts against it. It reports the
addresses handed out, the byte and page counters, and any invariant
violations found along the way.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.BoolVar(&jsonOut, "json", false, "Output in JSON format")
	pf.StringVarP(&cfgPath, "config", "c", "", "YAML config file")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json (overrides config)")
	pf.Var(&pageSize, "page-size", "Page size, e.g. 4KiB (overrides config)")
	pf.Var(&regionSize, "region-size", "Bytes to map, e.g. 1MiB (overrides config)")
	pf.Var(&regionOffset, "region-offset", "Offset of the allocator start past the mapping base (overrides config)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds cfg from --config and the override flags, then sets up
// the logger. Logging is only enabled with --verbose or an explicit
// --log-level so normal output stays clean.
func loadConfig(cmd *cobra.Command) error {
	c := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		c = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("page-size") {
		c.PageSize = pageSize
	}
	if flags.Changed("region-size") {
		c.RegionSize = regionSize
	}
	if flags.Changed("region-offset") {
		c.RegionOffset = regionOffset
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if logFormat != "" {
		c.Log.Format = logFormat
	}
	if verbose && logLevel == "" {
		c.Log.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := c.Log.SlogLevel()
	if err != nil {
		return err
	}
	logger.Init(logger.Options{
		Enabled: verbose || logLevel != "",
		JSON:    c.Log.Format == "json",
		Level:   level,
	})
	logger.Debug("configuration loaded",
		"page_size", c.PageSize.String(),
		"region_size", c.RegionSize.String(),
		"region_offset", c.RegionOffset.String(),
	)

	cfg = c
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
