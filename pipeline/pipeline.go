// Package pipeline sequences the harvest: link collection, detail extraction,
// schema unification, artifact writing and column normalization.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"classifieds-scraper/models"
	"classifieds-scraper/services"
	"classifieds-scraper/storage"
	"classifieds-scraper/utils"
)

// Stage names reported to Progress.
const (
	StagePages   = "pages"
	StageDetails = "details"
)

// LinkCollector discovers detail links from the paginated result listing.
type LinkCollector interface {
	Collect(ctx context.Context, template string, maxPages int, onPage func(page, found int)) ([]string, error)
}

// RecordExtractor reads one detail page.
type RecordExtractor interface {
	Extract(ctx context.Context, link string) (models.Extraction, error)
}

// Progress is told about every unit of work.
type Progress interface {
	Start(stage string, total int)
	Step(stage string)
	Done(stage string)
}

// Diagnostics is the side channel for per-link problems that do not stop
// the run. Implementations must be safe for concurrent use.
type Diagnostics interface {
	SpecialFieldsMissing(link string, err error)
	DetailFailed(link string, err error)
}

// Options configures one run.
type Options struct {
	URLTemplate string
	MaxPages    int
	Workers     int
	RawPath     string
	CleanPath   string
	TableName   string
	Policies    []models.ColumnPolicy
}

// Result summarizes a finished run.
type Result struct {
	Links          int
	Raw            *models.Table
	Clean          *models.Table
	SpecialMissing int
	DetailFailures int
}

// Pipeline wires the collaborators of one harvest.
type Pipeline struct {
	collector  LinkCollector
	extractor  RecordExtractor
	normalizer *services.Normalizer
	writer     storage.TableWriter
	stores     []storage.TableStore
	progress   Progress
	diag       Diagnostics
	logger     *utils.Logger
}

// New creates a Pipeline. progress and diag may be nil.
func New(collector LinkCollector, extractor RecordExtractor, writer storage.TableWriter,
	progress Progress, diag Diagnostics, logger *utils.Logger, stores ...storage.TableStore) *Pipeline {
	if progress == nil {
		progress = NopProgress{}
	}
	if diag == nil {
		diag = NewLogDiagnostics(logger)
	}
	return &Pipeline{
		collector:  collector,
		extractor:  extractor,
		normalizer: services.NewNormalizer(logger),
		writer:     writer,
		stores:     stores,
		progress:   progress,
		diag:       diag,
		logger:     logger,
	}
}

// Run executes the harvest. Only link collection and artifact write failures
// are returned as errors; per-link problems go to Diagnostics.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	p.progress.Start(StagePages, opts.MaxPages)
	links, err := p.collector.Collect(ctx, opts.URLTemplate, opts.MaxPages, func(int, int) {
		p.progress.Step(StagePages)
	})
	p.progress.Done(StagePages)
	if err != nil {
		return nil, fmt.Errorf("pipeline: collect links: %w", err)
	}
	p.logger.Info("[pipeline] %d unique links to visit", len(links))

	res := &Result{Links: len(links)}
	records := p.extractAll(ctx, links, opts.Workers, res)

	res.Raw = services.Unify(records)
	p.logger.Info("[pipeline] Unified table: %d rows x %d columns", len(res.Raw.Rows), len(res.Raw.Columns))

	if err := p.writer.Write(res.Raw, opts.RawPath); err != nil {
		return res, fmt.Errorf("pipeline: write raw table: %w", err)
	}
	p.logger.Info("[pipeline] Raw table saved to %s", opts.RawPath)

	res.Clean, err = p.normalizer.Apply(res.Raw, opts.Policies)
	if err != nil {
		return res, fmt.Errorf("pipeline: normalize: %w", err)
	}

	if err := p.writer.Write(res.Clean, opts.CleanPath); err != nil {
		return res, fmt.Errorf("pipeline: write clean table: %w", err)
	}
	p.logger.Info("[pipeline] Clean table saved to %s", opts.CleanPath)

	for _, s := range p.stores {
		if err := s.Store(ctx, opts.TableName, res.Clean); err != nil {
			p.logger.Error("[pipeline] Store %T failed: %v", s, err)
			continue
		}
		p.logger.Info("[pipeline] Clean table stored via %T (table: %s)", s, opts.TableName)
	}

	return res, nil
}

// extractAll visits every link once on a bounded worker pool. Records are
// placed by link index, so the row order follows the link order whatever the
// worker count.
func (p *Pipeline) extractAll(ctx context.Context, links []string, workers int, res *Result) []models.Record {
	records := make([]models.Record, len(links))
	var special, failed int64

	p.progress.Start(StageDetails, len(links))
	pool := utils.NewWorkerPool(workers)
	for i, link := range links {
		i, link := i, link
		pool.Submit(func() {
			defer p.progress.Step(StageDetails)

			ex, err := p.extractor.Extract(ctx, link)
			records[i] = ex.Record
			if err != nil {
				atomic.AddInt64(&failed, 1)
				p.diag.DetailFailed(link, err)
				return
			}
			if ex.SpecialErr != nil {
				atomic.AddInt64(&special, 1)
				p.diag.SpecialFieldsMissing(link, ex.SpecialErr)
			}
		})
	}
	pool.Wait()
	p.progress.Done(StageDetails)

	res.SpecialMissing = int(special)
	res.DetailFailures = int(failed)
	if failed > 0 || special > 0 {
		p.logger.Warn("[pipeline] %d detail pages failed, %d lacked price/location", failed, special)
	}
	return records
}

// NopProgress discards progress reports.
type NopProgress struct{}

func (NopProgress) Start(string, int) {}
func (NopProgress) Step(string)       {}
func (NopProgress) Done(string)       {}

// LogDiagnostics writes one warning line per reported link.
type LogDiagnostics struct {
	logger *utils.Logger
}

func NewLogDiagnostics(logger *utils.Logger) *LogDiagnostics {
	return &LogDiagnostics{logger: logger}
}

func (d *LogDiagnostics) SpecialFieldsMissing(link string, err error) {
	d.logger.With("link", link).Warn("[detail] price/location not extracted: %v", err)
}

func (d *LogDiagnostics) DetailFailed(link string, err error) {
	d.logger.With("link", link).Warn("[detail] page not extracted: %v", err)
}
