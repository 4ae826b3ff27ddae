package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"ratiocli/internal/config"
	"ratiocli/internal/infrastructure"
	"ratiocli/internal/pipeline"
	"ratiocli/internal/ratios"
)

func main() {
	in := flag.String("in", "", "source workbook (.xlsx) with the four statement sheets")
	out := flag.String("out", "", "output workbook path (defaults to writing back into the source)")
	sheet := flag.String("sheet", "", "name of the results sheet (default RATIOS)")
	csvPath := flag.String("csv", "", "also export the ratio table to this CSV path")
	configPath := flag.String("config", "config.yaml", "application config file")
	geometryPath := flag.String("geometry", "", "statement geometry file (defaults to the built-in layout)")
	periodPolicy := flag.String("period-policy", "", "merge period policy: identity | intersection")
	purchases := flag.String("purchases", "", "A/P turnover purchases proxy: cogs | cogs_plus_inventory_change")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Flags override file and environment configuration.
	if *in != "" {
		cfg.Workbook.Input = *in
	}
	if *out != "" {
		cfg.Workbook.Output = *out
	}
	if *sheet != "" {
		cfg.Workbook.RatiosSheet = *sheet
	}
	if *csvPath != "" {
		cfg.Workbook.CSVPath = *csvPath
	}
	if *geometryPath != "" {
		cfg.Workbook.GeometryFile = *geometryPath
	}
	if *periodPolicy != "" {
		cfg.Pipeline.PeriodPolicy = *periodPolicy
	}
	if *purchases != "" {
		cfg.Pipeline.PurchasesProxy = *purchases
	}

	if cfg.Workbook.Input == "" {
		slog.Error("no input workbook: pass -in or set RATIOS_WORKBOOK_INPUT")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	geoms := config.DefaultGeometries()
	if cfg.Workbook.GeometryFile != "" {
		geoms, err = config.LoadGeometries(cfg.Workbook.GeometryFile)
		if err != nil {
			logger.Error("failed to load geometry file",
				slog.String("path", cfg.Workbook.GeometryFile),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	engine := ratios.NewEngine(ratios.Catalog(ratios.Options{
		Purchases: ratios.PurchasesPolicy(cfg.Pipeline.PurchasesProxy),
	}), logger)

	ctx := infrastructure.ContextWithTraceID(context.Background())
	p := pipeline.New(cfg, geoms, engine, logger)
	if err := p.Run(ctx); err != nil {
		logger.ErrorContext(ctx, "ratio pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
