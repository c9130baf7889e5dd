package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/soltixdb/arforecast/internal/analytics/anomaly"
	"github.com/soltixdb/arforecast/internal/analytics/forecast"
	"github.com/soltixdb/arforecast/internal/dataset"
	"github.com/soltixdb/arforecast/internal/services"
	"github.com/soltixdb/arforecast/internal/storage"
	"github.com/soltixdb/arforecast/internal/utils"
)

type fitOptions struct {
	input       string
	noHeader    bool
	timeColumn  string
	valueColumn string
	timeLayout  string
	interval    time.Duration

	forecaster string
	method     string
	order      int
	horizon    int
	confidence float64
	outliers   string

	storeDir   string
	compress   bool
	withFitted bool
}

type fitOutput struct {
	ModelID      string                   `json:"model_id"`
	Forecaster   string                   `json:"forecaster"`
	Saved        bool                     `json:"saved"`
	Model        *forecast.ARModel        `json:"model"`
	Coefficients map[string]float64       `json:"coefficients"`
	Predictions  []forecast.ForecastPoint `json:"predictions"`
	Differenced  *forecast.ARForecast     `json:"differenced"`
	ModelInfo    forecast.ModelInfo       `json:"model_info"`
	Fitted       []*float64               `json:"fitted,omitempty"`
	Residuals    []*float64               `json:"residuals,omitempty"`
	Outliers     []anomaly.Outlier        `json:"outliers,omitempty"`
}

func newFitCmd(g *globalOptions) *cobra.Command {
	opts := &fitOptions{}
	defaults := dataset.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit a model to a CSV series and print the forecast",
		Example: `  # Monthly series with date,value columns, 12 steps ahead
  arforecast fit --input employment.csv --horizon 12

  # Exact likelihood, saving the model for later forecasts
  arforecast fit --input employment.csv --method ml --store ./models`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFit(cmd, g, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "CSV file to read (required)")
	cmd.Flags().BoolVar(&opts.noHeader, "no-header", false, "The file has no header row")
	cmd.Flags().StringVar(&opts.timeColumn, "time-column", defaults.TimeColumn, "Name of the time column, empty for none")
	cmd.Flags().StringVar(&opts.valueColumn, "value-column", defaults.ValueColumn, "Name of the value column")
	cmd.Flags().StringVar(&opts.timeLayout, "time-layout", defaults.TimeLayout, "Go time layout of the time column, or unix")
	cmd.Flags().DurationVar(&opts.interval, "interval", defaults.Interval, "Spacing of observations without a time column")

	cmd.Flags().StringVar(&opts.forecaster, "forecaster", "", "Registered forecaster (arima, arima_ml)")
	cmd.Flags().StringVarP(&opts.method, "method", "m", "", "Estimation method (css, ml)")
	cmd.Flags().IntVarP(&opts.order, "order", "p", 0, "Autoregressive order, 0 for the configured default")
	cmd.Flags().IntVarP(&opts.horizon, "horizon", "H", 0, "Steps ahead, 0 for the configured default")
	cmd.Flags().Float64VarP(&opts.confidence, "confidence", "c", 0, "Interval coverage in (0, 1), 0 for the configured default")

	cmd.Flags().StringVar(&opts.outliers, "outliers", "", "Residual outlier detector (zscore, iqr, none), empty for the configured default")

	cmd.Flags().StringVar(&opts.storeDir, "store", "", "Directory to save the fitted model in")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "Snappy-compress the saved model")
	cmd.Flags().BoolVar(&opts.withFitted, "fitted", false, "Include fitted values and residuals")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runFit(cmd *cobra.Command, g *globalOptions, opts *fitOptions) error {
	cfg, logger, err := g.load()
	if err != nil {
		return err
	}

	dsOpts := dataset.DefaultOptions()
	dsOpts.HasHeader = !opts.noHeader
	dsOpts.TimeColumn = opts.timeColumn
	dsOpts.ValueColumn = opts.valueColumn
	dsOpts.TimeLayout = opts.timeLayout
	dsOpts.Interval = opts.interval

	series, err := dataset.LoadFile(opts.input, dsOpts)
	if err != nil {
		return err
	}
	logger.Info("Loaded series", "path", opts.input, "observations", len(series))

	var svcOpts []services.Option
	if opts.storeDir != "" {
		store, err := storage.NewFileStore(opts.storeDir, opts.compress, logger)
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, services.WithStore(store))
	}
	svc := services.NewForecastService(logger, cfg.Model, svcOpts...)
	defer func() { _ = svc.Close() }()

	resp, err := svc.Execute(cmd.Context(), &services.ForecastRequest{
		Forecaster: opts.forecaster,
		Series:     series,
		Horizon:    opts.horizon,
		Order:      opts.order,
		Method:     opts.method,
		Confidence: opts.confidence,
		Outliers:   opts.outliers,
		Save:       opts.storeDir != "",
	})
	if err != nil {
		return err
	}

	r := resp.Result
	out := fitOutput{
		ModelID:      resp.ModelID,
		Forecaster:   resp.Forecaster,
		Saved:        resp.Saved,
		Model:        r.Model,
		Coefficients: r.Coefficients,
		Predictions:  r.Predictions,
		Differenced:  r.Differenced,
		ModelInfo:    r.ModelInfo,
		Outliers:     resp.Outliers,
	}
	if opts.withFitted {
		out.Fitted = utils.ToNullable(r.Fitted)
		out.Residuals = utils.ToNullable(r.Residuals)
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
