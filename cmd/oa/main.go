package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"taguchi/adapters/catalogue"
	"taguchi/app"
	"taguchi/internal/config"
	"taguchi/internal/doe"
	"taguchi/internal/logging"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(newService()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService wires the in-process catalogues. Invalid configuration falls back
// to the built-in defaults so read-only commands keep working.
func newService() *app.DesignService {
	logger := logging.NewDefault()
	deps := app.Dependencies{
		Catalogue: catalogue.NewStaticCatalogue(),
		Standards: catalogue.NewEmbeddedArrays(),
		Logger:    logger,
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using default configuration", "err", err)
		return app.NewDesignService(deps)
	}

	defaults := doe.Defaults{
		PoolingThreshold:   cfg.Analysis.PoolingThreshold,
		EnablePooling:      cfg.Analysis.EnablePooling,
		MinUnpooledFactors: cfg.Analysis.MinUnpooledFactors,
		ConfidenceLevel:    cfg.Analysis.ConfidenceLevel,
	}
	deps.DOEDefaults = &defaults
	deps.MaxStrengthCheck = cfg.Analysis.MaxStrengthCheck
	return app.NewDesignService(deps)
}

func newRootCmd(svc *app.DesignService) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "oa",
		Short:         "Inspect, validate and convert orthogonal arrays",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newInspectCmd(svc),
		newImportCheckCmd(svc),
		newBalanceCmd(svc),
		newCorrelationCmd(svc),
		newClassifyCmd(svc),
		newSuggestCmd(svc),
		newValidateCmd(svc),
		newCatalogueCmd(svc),
		newExportCmd(svc),
		newMigrateCmd(),
	)
	return rootCmd
}
