// Package pipeline orchestrates a full panel-build run: shared inputs
// are loaded and encoded once, then every configured symbol is merged
// and exported concurrently. Every symbol's price input is verified to
// exist before the first panel is written, so a missing source aborts
// the run with no output committed; each panel file itself is written
// atomically.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"exopanel/internal/config"
	apperrors "exopanel/internal/errors"
	"exopanel/internal/exogenous"
	"exopanel/internal/exporter"
	"exopanel/internal/infrastructure"
	"exopanel/internal/lineage"
	"exopanel/internal/loader"
	"exopanel/internal/validation"
	"exopanel/pkg/contracts/domain"
)

// maxConcurrentSymbols bounds the per-symbol merge fan-out.
const maxConcurrentSymbols = 4

// Pipeline wires the loaders, the encoding engines and the writers into
// one runnable panel build.
type Pipeline struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder *lineage.Recorder

	prices  *loader.PriceLoader
	macros  *loader.MacroLoader
	encoder *exogenous.EventWindowEncoder
	sampler *exogenous.MacroResampler
	merger  *exogenous.MergeEngine
	writer  *exporter.PanelWriter
	checker *validation.Checker
}

// New assembles a pipeline from the validated configuration.
func New(cfg *config.Config, logger *slog.Logger, recorder *lineage.Recorder) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		prices:   loader.NewPriceLoader(logger),
		macros:   loader.NewMacroLoader(logger),
		encoder:  exogenous.NewEventWindowEncoder(logger),
		sampler:  exogenous.NewMacroResampler(),
		merger:   exogenous.NewMergeEngine(),
		writer:   exporter.NewPanelWriter(logger),
		checker:  validation.NewChecker(logger),
	}
}

// Run executes the full build. Shared artifacts (calendar, event
// matrix, macro matrix) are built once; per-symbol work fans out under
// an errgroup and the first failure cancels the rest.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()
	tracer := infrastructure.Tracer()

	ctx, runSpan := tracer.Start(ctx, "panel_build", trace.WithAttributes(
		attribute.String("run_id", p.recorder.RunID()),
		attribute.Int("symbols", len(p.cfg.Universe.Symbols())),
	))
	defer runSpan.End()

	if err := p.recorder.Record("run_start", map[string]any{
		"start":        p.cfg.Dates.StartDate().Format("2006-01-02"),
		"end":          p.cfg.Dates.EndDate().Format("2006-01-02"),
		"symbols":      p.cfg.Universe.Symbols(),
		"merge_method": exogenous.MergeMethod,
	}, nil, nil); err != nil {
		return err
	}

	calendar, err := p.buildCalendar(ctx, tracer)
	if err != nil {
		return err
	}

	events, err := p.encodeEvents(ctx, tracer, calendar)
	if err != nil {
		return err
	}

	macros, reports, err := p.resampleMacros(ctx, tracer, calendar)
	if err != nil {
		return err
	}

	symbolReports, err := p.buildPanels(ctx, tracer, events, macros)
	if err != nil {
		return err
	}
	reports = append(reports, symbolReports...)

	if err := p.checker.WriteReport(reports, p.cfg.Paths.IntegrityPath()); err != nil {
		return err
	}

	p.logger.Info("panel build finished",
		slog.String("run_id", p.recorder.RunID()),
		slog.Int("symbols", len(p.cfg.Universe.Symbols())),
		slog.Duration("elapsed", time.Since(started)))
	return nil
}

// buildCalendar constructs the inclusive daily project calendar.
func (p *Pipeline) buildCalendar(ctx context.Context, tracer trace.Tracer) ([]time.Time, error) {
	_, span := tracer.Start(ctx, "build_calendar")
	defer span.End()

	start, end := p.cfg.Dates.StartDate(), p.cfg.Dates.EndDate()
	calendar, err := exogenous.BuildCalendar(start, end)
	if err != nil {
		return nil, err
	}

	p.logger.Info("calendar built",
		slog.String("start", start.Format("2006-01-02")),
		slog.String("end", end.Format("2006-01-02")),
		slog.Int("days", len(calendar)))

	if err := p.recorder.Record("build_calendar", map[string]any{
		"start": start.Format("2006-01-02"),
		"end":   end.Format("2006-01-02"),
		"days":  len(calendar),
	}, nil, nil); err != nil {
		return nil, err
	}
	return calendar, nil
}

// encodeEvents loads the event definitions and encodes them into the
// shared indicator matrix.
func (p *Pipeline) encodeEvents(ctx context.Context, tracer trace.Tracer, calendar []time.Time) (*domain.EventIndicatorMatrix, error) {
	_, span := tracer.Start(ctx, "encode_events")
	defer span.End()

	defs, err := loader.LoadEvents(p.cfg.Events.File)
	if err != nil {
		return nil, err
	}

	matrix := p.encoder.Encode(defs, calendar, p.cfg.Dates.StartDate(), p.cfg.Dates.EndDate())
	p.logger.Info("event windows encoded",
		slog.Int("definitions", len(defs)),
		slog.Int("columns", len(matrix.Columns)))

	if err := p.recorder.Record("encode_events", map[string]any{
		"definitions": len(defs),
		"columns":     len(matrix.Columns),
	}, []string{p.cfg.Events.File}, nil); err != nil {
		return nil, err
	}
	return matrix, nil
}

// resampleMacros loads the sparse macro histories, reports on their
// integrity and resamples them onto the project calendar.
func (p *Pipeline) resampleMacros(ctx context.Context, tracer trace.Tracer, calendar []time.Time) (*domain.MacroDailyMatrix, []validation.TableReport, error) {
	_, span := tracer.Start(ctx, "resample_macro")
	defer span.End()

	series, err := p.macros.LoadAll(p.cfg.Paths.MacroDir)
	if err != nil {
		return nil, nil, err
	}

	reports := make([]validation.TableReport, 0, len(exogenous.MacroColumns))
	for _, name := range exogenous.MacroColumns {
		reports = append(reports, p.checker.CheckMacroSeries(series[name]))
	}

	inputs := make([]string, 0, len(exogenous.MacroColumns))
	for _, file := range loader.MacroSourceFiles() {
		inputs = append(inputs, filepath.Join(p.cfg.Paths.MacroDir, file))
	}

	matrix, err := p.sampler.Resample(series, calendar)
	if err != nil {
		return nil, nil, err
	}

	p.logger.Info("macro indicators resampled",
		slog.Int("indicators", len(matrix.Columns)),
		slog.Int("days", len(calendar)))

	if err := p.recorder.Record("resample_macro", map[string]any{
		"indicators": len(matrix.Columns),
	}, inputs, nil); err != nil {
		return nil, nil, err
	}
	return matrix, reports, nil
}

// buildPanels merges and exports every configured symbol concurrently.
// Reports come back in universe order regardless of completion order.
func (p *Pipeline) buildPanels(ctx context.Context, tracer trace.Tracer, events *domain.EventIndicatorMatrix, macros *domain.MacroDailyMatrix) ([]validation.TableReport, error) {
	symbols := p.cfg.Universe.Symbols()
	reports := make([]validation.TableReport, len(symbols))

	// Every price input must exist before the first panel is written; a
	// missing source aborts the run with nothing committed.
	for _, symbol := range symbols {
		path := p.cfg.Paths.PricePath(symbol)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				return nil, apperrors.NewMissingSource("build_panel", path)
			}
			return nil, apperrors.NewExecution("build_panel", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSymbols)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			report, err := p.buildPanel(ctx, tracer, symbol, events, macros)
			if err != nil {
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// buildPanel loads, merges and exports one symbol.
func (p *Pipeline) buildPanel(ctx context.Context, tracer trace.Tracer, symbol string, events *domain.EventIndicatorMatrix, macros *domain.MacroDailyMatrix) (validation.TableReport, error) {
	_, span := tracer.Start(ctx, "build_panel", trace.WithAttributes(
		attribute.String("symbol", symbol),
	))
	defer span.End()

	pricePath := p.cfg.Paths.PricePath(symbol)
	series, err := p.prices.Load(pricePath, symbol)
	if err != nil {
		return validation.TableReport{}, err
	}
	report := p.checker.CheckPriceSeries(series)

	panel, err := p.merger.Merge(series, events, macros)
	if err != nil {
		return validation.TableReport{}, fmt.Errorf("merge failed for %s: %w", symbol, err)
	}

	panelPath := p.cfg.Paths.PanelPath(symbol)
	if err := p.writer.Write(panel, panelPath); err != nil {
		return validation.TableReport{}, err
	}

	if err := p.recorder.Record("build_panel", map[string]any{
		"symbol": symbol,
		"rows":   panel.Len(),
	}, []string{pricePath}, []string{panelPath}); err != nil {
		return validation.TableReport{}, err
	}
	return report, nil
}
