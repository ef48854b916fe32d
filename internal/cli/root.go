// Package cli implements the numgen command-line interface using Cobra.
// Each subcommand maps to one stage of the pipeline (resolve, lengths,
// generate) or to a companion utility (export, show, batch, serve).
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tutu-network/numgen/internal/daemon"
)

var rootCmd = &cobra.Command{
	Use:   "numgen",
	Short: "numgen — synthesize numbering-plan-valid phone numbers",
	Long: `numgen builds telephone numbers that pass a country's numbering-plan rules,
optionally following a serial or fixed-prefix pattern, and exports them as
CSV, plain E.164 text or SQLite.

Run 'numgen generate' without flags for the interactive prompts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configFile string
	logLevel   string
)

// Status words printed to the terminal.
var (
	okLabel   = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnLabel = color.New(color.FgYellow, color.Bold).SprintFunc()
	errLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $NUMGEN_HOME/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errLabel("Error:"), err)
		os.Exit(1)
	}
}

// loadConfig reads the file selected by --config and applies --log-level.
func loadConfig() (daemon.Config, error) {
	cfg, err := daemon.LoadConfigFile(configFilePath())
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

// newDaemon wires services from the effective config.
func newDaemon() (*daemon.Daemon, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return daemon.NewWithConfig(cfg)
}
