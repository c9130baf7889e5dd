package main

import (
	"github.com/spf13/cobra"

	"github.com/soltixdb/arforecast/internal/services"
	"github.com/soltixdb/arforecast/internal/storage"
)

type storeOptions struct {
	dir string
}

func (o *storeOptions) service(g *globalOptions) (*services.ForecastService, error) {
	cfg, logger, err := g.load()
	if err != nil {
		return nil, err
	}
	dir := o.dir
	if dir == "" {
		dir = cfg.Store.Dir
	}
	store, err := storage.NewFileStore(dir, cfg.Store.Compress, logger)
	if err != nil {
		return nil, err
	}
	return services.NewForecastService(logger, cfg.Model, services.WithStore(store)), nil
}

func newForecastCmd(g *globalOptions) *cobra.Command {
	store := &storeOptions{}
	var horizon int
	var confidence float64

	cmd := &cobra.Command{
		Use:   "forecast MODEL_ID",
		Short: "Forecast from a saved model",
		Example: `  arforecast forecast --store ./models --horizon 24 3f2c9a10-0d8e-4a51-9d0b-8f1c2e4b7a66`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := store.service(g)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			fc, err := svc.ForecastModel(cmd.Context(), args[0], horizon, confidence)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), fc)
		},
	}

	cmd.Flags().StringVar(&store.dir, "store", "", "Model directory (default: store.dir from the configuration)")
	cmd.Flags().IntVarP(&horizon, "horizon", "H", 0, "Steps ahead, 0 for the horizon the model was saved with")
	cmd.Flags().Float64VarP(&confidence, "confidence", "c", 0, "Interval coverage, 0 for the saved coverage")

	return cmd
}

func newModelsCmd(g *globalOptions) *cobra.Command {
	store := &storeOptions{}
	var remove string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List or delete saved models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := store.service(g)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if remove != "" {
				return svc.DeleteModel(cmd.Context(), remove)
			}
			ids, err := svc.ListModels(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ids)
		},
	}

	cmd.Flags().StringVar(&store.dir, "store", "", "Model directory (default: store.dir from the configuration)")
	cmd.Flags().StringVar(&remove, "delete", "", "Delete the model with this ID instead of listing")

	return cmd
}
