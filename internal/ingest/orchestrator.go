package ingest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sobani/cardvault/internal/sources"
	"github.com/sobani/cardvault/pkg/logging"
)

// runState tracks the orchestrator's lifecycle.
type runState int

const (
	stateIdle runState = iota
	stateFannedOut
	stateJoined
)

// Task pairs one source variant with the updater that reconciles its
// observations. Each task owns its own catalog snapshot for the duration of
// one run.
type Task struct {
	Source  sources.PriceSource
	Updater *PriceUpdater
}

// Orchestrator fans out one concurrent ingestion task per source variant and
// joins on all of them. Tasks share one cancellation scope, but a soft
// failure in one task never cancels its siblings: the failure is logged and
// swallowed, and the run is joined once every task has finished. The only
// externally observable outcome is that the run completed.
type Orchestrator struct {
	mu     sync.Mutex
	state  runState
	logger zerolog.Logger
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		state:  stateIdle,
		logger: logging.Component("orchestrator"),
	}
}

// Run executes all tasks concurrently and returns once every task has
// finished, success or soft-failure.
func (o *Orchestrator) Run(ctx context.Context, tasks []Task) {
	runID := uuid.NewString()
	logger := o.logger.With().Str("run_id", runID).Logger()
	ctx = logging.WithRunID(logging.WithLogger(ctx, &logger), runID)

	o.setState(stateFannedOut)
	logger.Info().Int("tasks", len(tasks)).Msg("ingestion run fanned out")

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(t Task) {
			defer wg.Done()
			o.runTask(ctx, logger, t)
		}(task)
	}
	wg.Wait()

	o.setState(stateJoined)
	logger.Info().Msg("ingestion run completed")
}

// runTask scrapes one source variant and reconciles its observations.
// Failures, including panics from a misbehaving parser, are confined to this
// task.
func (o *Orchestrator) runTask(ctx context.Context, logger zerolog.Logger, t Task) {
	taskLog := logger.With().
		Str("market", t.Source.Market().String()).
		Str("variant", t.Source.Variant()).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			taskLog.Error().Any("panic", r).Msg("task panicked")
		}
	}()

	entries, err := t.Source.Scrape(ctx)
	if err != nil {
		taskLog.Warn().Err(err).Msg("scrape ended early")
	}
	if len(entries) == 0 {
		taskLog.Info().Msg("no observations collected")
		return
	}

	if err := t.Updater.Run(ctx, entries); err != nil {
		taskLog.Warn().Err(err).Msg("reconciliation failed")
		return
	}

	taskLog.Info().Int("observations", len(entries)).Msg("task finished")
}

func (o *Orchestrator) setState(s runState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}
