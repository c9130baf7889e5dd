// Command arforecast fits ARIMA(p,1,0) models to CSV series and forecasts
// them without running the HTTP service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/logging"
)

// Version is injected via ldflags during build
var Version = "dev"

type globalOptions struct {
	configPath string
	logLevel   string
}

// load reads the service configuration for model defaults. Logs go to
// stderr so stdout stays valid JSON.
func (g *globalOptions) load() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.NewFromConfig(config.LoggingConfig{
		Level:      g.logLevel,
		Format:     "console",
		OutputPath: "stderr",
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}

	root := &cobra.Command{
		Use:   "arforecast",
		Short: "Fit autoregressive models to time series and forecast them",
		Long: `arforecast differences a series once, fits an AR(p) model by conditional
sum of squares or exact maximum likelihood, and forecasts with prediction
intervals on both the differenced and the original scale.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newFitCmd(g))
	root.AddCommand(newForecastCmd(g))
	root.AddCommand(newModelsCmd(g))
	root.AddCommand(newWatchCmd(g))

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
