// Package cli implements the pricecast command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/pricecast/internal/config"
	"github.com/YuminosukeSato/pricecast/pkg/log"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pricecast",
		Short: "Train a commodity price regressor and predict prices",
		Long: `pricecast trains a linear price model from historical observations
(item, category, month, year, source country, tariff, disaster) and predicts
the price of a single query.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.cfgFile, "config", "", "config file (default is ./pricecast.yaml, then ~/.pricecast/config.yaml)")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	f.StringVar(&a.logFormat, "log-format", "", "log format: json or console (overrides config)")

	root.AddCommand(
		newTrainCommand(a),
		newPredictCommand(a),
		newConfigCommand(a),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		return 1
	}
	return 0
}

// loadConfig reads the configuration and applies the persistent flag overrides.
// Logs go to errOut so that stdout carries only results.
func (a *app) loadConfig(cmd *cobra.Command) error {
	c, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		c.LogLevel = a.logLevel
	}
	if f.Changed("log-format") {
		c.LogFormat = a.logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}
	a.cfg = c
	return a.setupLogging(cmd.ErrOrStderr())
}

func (a *app) setupLogging(w io.Writer) error {
	return log.SetupLogger(a.cfg.LogLevel, a.cfg.LogFormat, w)
}
