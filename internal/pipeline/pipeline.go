package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ratiocli/internal/config"
	"ratiocli/internal/exporter"
	"ratiocli/internal/infrastructure"
	"ratiocli/internal/ratios"
	"ratiocli/internal/statements"
	"ratiocli/internal/workbook"
	"ratiocli/pkg/contracts/domain"
)

// Pipeline runs the full batch: extract the four statements, merge,
// compute every catalog ratio, and write the results sheet. Each stage
// consumes immutable inputs and produces a new immutable output; a
// fatal error at any stage aborts before anything is written.
type Pipeline struct {
	cfg    *config.Config
	geoms  *config.GeometrySet
	engine *ratios.Engine
	logger *slog.Logger
}

// New assembles a pipeline from explicit collaborators
func New(cfg *config.Config, geoms *config.GeometrySet, engine *ratios.Engine, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, geoms: geoms, engine: engine, logger: logger}
}

// Run executes the pipeline once
func (p *Pipeline) Run(ctx context.Context) error {
	ctx = infrastructure.EnsureTraceID(ctx)
	start := time.Now()

	if p.cfg.Workbook.Input == "" {
		return fmt.Errorf("no input workbook configured")
	}

	policy, err := statements.ParsePeriodPolicy(p.cfg.Pipeline.PeriodPolicy)
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "starting ratio pipeline",
		slog.String("input", p.cfg.Workbook.Input),
		slog.String("output", p.cfg.OutputPath()),
		slog.String("ratios_sheet", p.cfg.Workbook.RatiosSheet),
		slog.String("period_policy", string(policy)))

	reader, err := workbook.Open(p.cfg.Workbook.Input)
	if err != nil {
		return err
	}
	defer reader.Close()

	datasets, err := p.extractAll(ctx, reader)
	if err != nil {
		return err
	}

	merged, err := statements.Merge(datasets, policy)
	if err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "statements merged",
		slog.Int("statements", len(merged.Datasets)),
		slog.Int("periods", len(merged.Periods)))

	results, err := p.engine.Compute(ctx, merged)
	if err != nil {
		return err
	}

	if err := p.write(ctx, reader, merged, results); err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "ratio pipeline completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("results", len(results)))
	return nil
}

// extractAll reads the four statement grids and extracts them. Grid
// reads stay sequential (the workbook handle is not safe for
// concurrent access); extraction itself is pure and runs in parallel.
func (p *Pipeline) extractAll(ctx context.Context, reader *workbook.Reader) ([]*domain.StatementDataset, error) {
	kinds := p.geoms.Kinds()

	type job struct {
		kind domain.StatementKind
		geom config.StatementGeometry
		grid *workbook.SheetGrid
	}
	jobs := make([]job, 0, len(kinds))
	for _, kind := range kinds {
		geom, err := p.geoms.Get(kind)
		if err != nil {
			return nil, err
		}
		grid, err := reader.Grid(geom.Sheet)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job{kind: kind, geom: geom, grid: grid})
	}

	extractor := statements.NewExtractor(p.logger)
	datasets := make([]*domain.StatementDataset, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	for i, j := range jobs {
		g.Go(func() error {
			ds, err := extractor.Extract(j.kind, j.geom, j.grid)
			if err != nil {
				return err
			}
			datasets[i] = ds
			p.logger.DebugContext(gctx, "statement ready",
				slog.String("kind", j.kind.String()),
				slog.Int("line_items", len(ds.Items)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return datasets, nil
}

// write lays the results out on the RATIOS sheet, optionally exports
// the CSV artifact, and saves the workbook.
func (p *Pipeline) write(ctx context.Context, reader *workbook.Reader, merged *domain.MergedStatements, results []domain.RatioResult) error {
	order := p.engine.CatalogOrder()

	if err := workbook.WriteRatios(reader.File(), p.cfg.Workbook.RatiosSheet, order, merged.Periods, results); err != nil {
		return err
	}

	if p.cfg.Workbook.CSVPath != "" {
		if err := exporter.WriteRatiosCSV(p.cfg.Workbook.CSVPath, order, merged.Periods, results); err != nil {
			return err
		}
	}

	if err := reader.SaveAs(p.cfg.OutputPath()); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "results written",
		slog.String("workbook", p.cfg.OutputPath()),
		slog.String("sheet", p.cfg.Workbook.RatiosSheet))
	return nil
}
