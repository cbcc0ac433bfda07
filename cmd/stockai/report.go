package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BAPNuSigma/StockAI/internal/app"
	"github.com/BAPNuSigma/StockAI/internal/config"
	"github.com/BAPNuSigma/StockAI/internal/metrics"
	"github.com/BAPNuSigma/StockAI/internal/models"
	"github.com/BAPNuSigma/StockAI/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build a one-pager report for a symbol",
		Long:  "Fetch data, compute indicators and valuation metrics, and write the composed report as JSON",
		RunE:  runReport,
	}
	cmd.Flags().StringP("symbol", "s", "", "Ticker symbol (required)")
	cmd.Flags().StringP("template", "t", "core", "Report template (growth|value|core)")
	cmd.Flags().String("resolution", "", "Bar resolution (1d|1min), defaults from config")
	cmd.Flags().Int("range-years", 0, "Price history range in years, defaults from config")
	cmd.Flags().StringP("out", "o", "", "Output directory, defaults from config")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	setLogLevel(cmd)

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	symbol, _ := cmd.Flags().GetString("symbol")
	templateStr, _ := cmd.Flags().GetString("template")
	resolution, _ := cmd.Flags().GetString("resolution")
	rangeYears, _ := cmd.Flags().GetInt("range-years")
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Report.OutputDir
	}

	kind, err := models.ParseTemplateKind(templateStr)
	if err != nil {
		return err
	}

	builder, err := app.NewBuilder(cfg, metrics.Default(), log.Logger)
	if err != nil {
		return err
	}

	doc, err := builder.Build(cmd.Context(), app.Request{
		Symbol:     symbol,
		Template:   kind,
		Resolution: resolution,
		RangeYears: rangeYears,
	})
	if err != nil {
		return err
	}

	path, err := report.WriteJSON(outDir, doc)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().Str("path", path).Str("symbol", doc.Symbol).Msg("report written")
	fmt.Println(path)
	return nil
}
