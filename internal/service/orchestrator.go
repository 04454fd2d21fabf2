package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"domaincreates/internal/core/domain"
	"domaincreates/internal/core/ports"
)

// RunRecorder receives every finished run.
type RunRecorder interface {
	ObserveRun(result *domain.RunResult)
}

// Orchestrator coordinates fetch, extract and cleanup for one date.
type Orchestrator struct {
	fetcher   *Fetcher
	extractor *Extractor
	storage   ports.Storage
	root      string
	location  *time.Location
	now       func() time.Time
	recorder  RunRecorder
	logger    *zap.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithClock replaces time.Now, which decides the default date.
func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *Orchestrator) { o.now = now }
}

// WithLocation sets the timezone "today" is computed in.
func WithLocation(loc *time.Location) OrchestratorOption {
	return func(o *Orchestrator) { o.location = loc }
}

// WithRecorder reports finished runs to r.
func WithRecorder(r RunRecorder) OrchestratorOption {
	return func(o *Orchestrator) { o.recorder = r }
}

// NewOrchestrator creates a new Orchestrator writing under root.
func NewOrchestrator(
	fetcher *Fetcher,
	extractor *Extractor,
	storage ports.Storage,
	root string,
	logger *zap.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		fetcher:   fetcher,
		extractor: extractor,
		storage:   storage,
		root:      root,
		location:  time.Local,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ResolveDate parses dateArg, or returns today when it is empty.
func (o *Orchestrator) ResolveDate(dateArg string) (domain.TargetDate, error) {
	if dateArg == "" {
		return domain.NewTargetDate(o.now().In(o.location)), nil
	}
	return domain.ParseTargetDate(dateArg)
}

// Run executes one fetch/extract/cleanup cycle for dateArg (DD-MM-YYYY, or
// empty for today).
//
// A malformed date or an unusable output directory is returned as an error.
// Fetch and extract failures are logged and reported through the result with
// Success=false and a nil error. After a failed extraction the downloaded
// document is left on disk so it can be inspected.
func (o *Orchestrator) Run(ctx context.Context, dateArg string) (*domain.RunResult, error) {
	date, err := o.ResolveDate(dateArg)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := o.logger.With(zap.String("run_id", runID), zap.String("date", date.String()))

	layout := domain.LayoutFor(o.root, date)
	result := &domain.RunResult{
		RunID:     runID,
		Date:      date,
		Layout:    layout,
		URL:       o.fetcher.URL(date),
		Stage:     domain.StageStart,
		StartedAt: o.now(),
	}

	if err := o.storage.EnsureDir(ctx, layout.Dir); err != nil {
		return result, &domain.OpError{Op: "prepare output directory", Kind: domain.KindIO, Path: layout.Dir, Err: err}
	}

	result.Stage = domain.StageFetching
	log.Debug("fetching report", zap.String("url", result.URL))
	if _, err := o.fetcher.Fetch(ctx, date, layout.DocumentPath); err != nil {
		log.Error(fmt.Sprintf("Error downloading PDF: %v", err))
		return o.finish(result, domain.StageFetchFailed, err), nil
	}

	result.Stage = domain.StageExtracting
	extracted, err := o.extractor.Extract(ctx, layout.DocumentPath, layout.OutputPath)
	if err != nil {
		switch domain.KindOf(err) {
		case domain.KindParse:
			log.Error(fmt.Sprintf("Error: %v", err), zap.String("kind", "parse"), zap.String("document", layout.DocumentPath))
		case domain.KindIO:
			log.Error(fmt.Sprintf("Error: %v", err), zap.String("kind", "io"), zap.String("document", layout.DocumentPath))
		default:
			log.Error(fmt.Sprintf("Error: %v", err), zap.String("document", layout.DocumentPath))
		}
		return o.finish(result, domain.StageExtractFailed, err), nil
	}
	result.Domains = extracted.Count

	if err := o.storage.Remove(ctx, layout.DocumentPath); err != nil {
		log.Warn("could not remove downloaded document", zap.Error(err))
	}

	log.Info(fmt.Sprintf("Success! Files saved in %s/", layout.Dir))
	result.Success = true
	return o.finish(result, domain.StageDone, nil), nil
}

func (o *Orchestrator) finish(result *domain.RunResult, stage domain.Stage, err error) *domain.RunResult {
	result.Stage = stage
	result.Err = err
	result.CompletedAt = o.now()
	if o.recorder != nil {
		o.recorder.ObserveRun(result)
	}
	return result
}
