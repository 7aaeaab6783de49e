// Package pipeline sequences the four reasoning stages into one run:
// routing, viewpoint analysis, strong-manning, and synthesis. The
// orchestrator owns progress reporting, quality scoring, timing, the
// result cache, and best-effort persistence of run summaries.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/logging"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// Router chooses an execution adapter before analysis begins
type Router interface {
	Route(ctx context.Context, question string, history []types.ConversationMessage, prefs types.RoutingPreferences) (*types.RoutingDecision, error)
}

// Analyzer extracts the user's position and constructs opposing viewpoints
type Analyzer interface {
	AnalyzeConversation(ctx context.Context, history []types.ConversationMessage, topic string) (*types.ViewpointAnalysis, error)
}

// StrongManner produces the challenge set for one viewpoint
type StrongManner interface {
	StrongManViewpoint(ctx context.Context, viewpoint *types.Viewpoint) (*types.StrongMannedAnalysis, error)
}

// Synthesizer merges the analyses into one answer
type Synthesizer interface {
	SynthesizeAnswer(ctx context.Context, question string, analysis *types.ViewpointAnalysis, strongManned map[string]*types.StrongMannedAnalysis) (*types.SynthesizedAnswer, error)
}

// SummaryStore persists a compact record of a completed run. Failures are
// logged and swallowed; persistence never fails a run.
type SummaryStore interface {
	PersistSummary(ctx context.Context, userID, runID string, summary *types.RunSummary) (string, error)
}

// ProgressFunc receives progress events synchronously, in order
type ProgressFunc func(types.PipelineProgress)

// runRecord is the per-run entry kept for aggregate metrics
type runRecord struct {
	quality     float64
	totalMs     int64
	stageCounts map[types.PipelineStage]int
}

// Executor runs pipelines. Stage components are injected; each run
// allocates its own mutable state, so concurrent runs only share the
// cache and the metrics history.
type Executor struct {
	cfg          *config.PipelineConfig
	router       Router
	analyzer     Analyzer
	strongManner StrongManner
	synthesizer  Synthesizer
	store        SummaryStore
	cache        ResultCache
	logger       logging.Logger

	mu      sync.Mutex
	history []runRecord
}

// NewExecutor wires the stage components together. store may be nil when
// no persistence collaborator is configured; cache and logger fall back
// to sensible defaults.
func NewExecutor(cfg *config.PipelineConfig, router Router, analyzer Analyzer, strongManner StrongManner, synthesizer Synthesizer, store SummaryStore, cache ResultCache, logger logging.Logger) *Executor {
	if cache == nil {
		cache = NewMemoryResultCache(cfg.ResultCacheSize)
	}
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Executor{
		cfg:          cfg,
		router:       router,
		analyzer:     analyzer,
		strongManner: strongManner,
		synthesizer:  synthesizer,
		store:        store,
		cache:        cache,
		logger:       logger.WithComponent("pipeline"),
	}
}

// run holds the mutable state of one pipeline invocation
type run struct {
	id         string
	started    time.Time
	log        []types.PipelineProgress
	onProgress ProgressFunc
}

func (r *run) emit(stage types.PipelineStage, progress float64, message string) {
	entry := types.PipelineProgress{
		RunID:         r.id,
		Stage:         stage,
		Progress:      progress,
		StatusMessage: message,
		Timestamp:     time.Now().UTC(),
		ElapsedMs:     time.Since(r.started).Milliseconds(),
	}
	r.log = append(r.log, entry)
	if r.onProgress != nil {
		r.onProgress(entry)
	}
}

// ExecutePipeline runs all four stages in strict order and returns the
// completed result. An empty question degrades to low-confidence output
// rather than being rejected. A stage failure emits a terminal complete
// event with progress 0 and the error message, is not cached, and is
// returned to the caller.
func (e *Executor) ExecutePipeline(ctx context.Context, question string, history []types.ConversationMessage, onProgress ProgressFunc) (*types.PipelineResult, error) {
	if e.cfg.RunTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(e.cfg.RunTimeoutSeconds)*time.Second)
		defer cancel()
	}

	r := &run{
		id:         uuid.New().String(),
		started:    time.Now(),
		onProgress: onProgress,
	}
	logger := e.logger.WithTraceID(r.id)
	logger.Info("pipeline started", "question_len", len(question), "history_len", len(history))

	r.emit(types.StageRouting, 0.0, "Scoring query complexity and choosing an adapter")
	decision, err := e.router.Route(ctx, question, history, types.RoutingPreferences{})
	if err != nil {
		return nil, e.fail(r, logger, types.StageRouting, err)
	}

	r.emit(types.StageViewpointAnalysis, 0.05, "Extracting positions and constructing counter-framings")
	analysis, err := e.analyzer.AnalyzeConversation(ctx, history, question)
	if err != nil {
		return nil, e.fail(r, logger, types.StageViewpointAnalysis, err)
	}

	viewpoints := analysis.AllViewpoints()
	strongManned := make(map[string]*types.StrongMannedAnalysis, len(viewpoints))
	for i, vp := range viewpoints {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(r, logger, types.StageStrongManning, err)
		}
		progress := 0.1 + float64(i)/float64(len(viewpoints))*0.8
		r.emit(types.StageStrongManning, progress,
			fmt.Sprintf("Strong-manning viewpoint %d of %d", i+1, len(viewpoints)))

		challenge, err := e.strongManner.StrongManViewpoint(ctx, vp)
		if err != nil {
			// Per-viewpoint failure is logged and the viewpoint
			// omitted; the run continues
			logger.Warn("strong-manning failed for viewpoint",
				"viewpoint_id", vp.ID, "error", err.Error())
			continue
		}
		strongManned[vp.ID] = challenge
	}

	r.emit(types.StageSynthesis, 0.9, "Synthesizing the balanced answer")
	answer, err := e.synthesizer.SynthesizeAnswer(ctx, question, analysis, strongManned)
	if err != nil {
		return nil, e.fail(r, logger, types.StageSynthesis, err)
	}

	r.emit(types.StageComplete, 1.0, "Pipeline complete")

	quality := types.QualityMetrics{
		RoutingConfidence:  decision.Confidence,
		AnalysisConfidence: analysis.AnalysisConfidence,
		SynthesisQuality:   answer.SynthesisQuality,
		Representativeness: answer.Representativeness,
	}
	quality.CalculateOverallQuality()

	result := &types.PipelineResult{
		ID:                   r.id,
		Question:             question,
		ConversationHistory:  history,
		RoutingDecision:      decision,
		ViewpointAnalysis:    analysis,
		StrongMannedAnalyses: strongManned,
		SynthesizedAnswer:    answer,
		ProgressLog:          r.log,
		Quality:              quality,
		Timing:               deriveTimings(r.log),
		Timestamp:            time.Now().UTC(),
	}

	if err := e.cache.Put(ctx, result); err != nil {
		logger.Warn("caching result failed", "error", err.Error())
	}
	e.persistSummary(ctx, logger, result)
	e.recordRun(result)

	logger.Info("pipeline complete",
		"run_id", result.ID,
		"quality", quality.OverallQuality,
		"total_ms", result.Timing.TotalMs,
		"viewpoints", len(viewpoints),
		"strong_manned", len(strongManned))
	return result, nil
}

// fail emits the terminal progress event for a fatal stage error and
// wraps the error with its stage. Failed runs are never cached.
func (e *Executor) fail(r *run, logger logging.Logger, stage types.PipelineStage, err error) error {
	logger.Error("pipeline stage failed", "stage", string(stage), "error", err.Error())
	r.emit(types.StageComplete, 0.0, fmt.Sprintf("Pipeline failed during %s: %v", stage, err))
	return fmt.Errorf("pipeline stage %s: %w", stage, err)
}

// persistSummary is strictly best-effort
func (e *Executor) persistSummary(ctx context.Context, logger logging.Logger, result *types.PipelineResult) {
	if e.store == nil {
		return
	}
	summary := &types.RunSummary{
		Type:      "debate-run",
		Question:  result.Question,
		AnswerID:  result.SynthesizedAnswer.ID,
		Quality:   result.Quality.OverallQuality,
		Timestamp: result.Timestamp,
	}
	if _, err := e.store.PersistSummary(ctx, e.cfg.UserID, result.ID, summary); err != nil {
		logger.Warn("persisting run summary failed", "error", err.Error())
	}
}

func (e *Executor) recordRun(result *types.PipelineResult) {
	record := runRecord{
		quality:     result.Quality.OverallQuality,
		totalMs:     result.Timing.TotalMs,
		stageCounts: make(map[types.PipelineStage]int),
	}
	for _, entry := range result.ProgressLog {
		record.stageCounts[entry.Stage]++
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, record)
	if max := e.cfg.MetricsHistorySize; max > 0 && len(e.history) > max {
		e.history = e.history[len(e.history)-max:]
	}
}

// GetResult returns a cached result by run ID
func (e *Executor) GetResult(ctx context.Context, id string) (*types.PipelineResult, error) {
	return e.cache.Get(ctx, id)
}

// Metrics aggregates all recorded runs
func (e *Executor) Metrics() types.PipelineMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	metrics := types.PipelineMetrics{TotalPipelines: len(e.history)}
	if len(e.history) == 0 {
		return metrics
	}

	var qualitySum float64
	var timeSum int64
	stageCounts := make(map[types.PipelineStage]int)
	for _, record := range e.history {
		qualitySum += record.quality
		timeSum += record.totalMs
		for stage, count := range record.stageCounts {
			stageCounts[stage] += count
		}
	}
	metrics.AvgQuality = qualitySum / float64(len(e.history))
	metrics.AvgTotalTimeMs = float64(timeSum) / float64(len(e.history))

	for _, stage := range []types.PipelineStage{
		types.StageRouting, types.StageViewpointAnalysis,
		types.StageStrongManning, types.StageSynthesis, types.StageComplete,
	} {
		if metrics.MostCommonStage == "" || stageCounts[stage] > stageCounts[metrics.MostCommonStage] {
			metrics.MostCommonStage = stage
		}
	}
	return metrics
}

// deriveTimings diffs consecutive stage entries in the progress log
func deriveTimings(log []types.PipelineProgress) types.StageTimings {
	firstSeen := make(map[types.PipelineStage]int64)
	var last int64
	for _, entry := range log {
		if _, ok := firstSeen[entry.Stage]; !ok {
			firstSeen[entry.Stage] = entry.ElapsedMs
		}
		last = entry.ElapsedMs
	}
	// Sub-millisecond runs round up so a completed run never reports zero
	if last == 0 && len(log) > 0 {
		last = 1
	}

	span := func(from, to types.PipelineStage) int64 {
		start, okFrom := firstSeen[from]
		end, okTo := firstSeen[to]
		if !okFrom || !okTo || end < start {
			return 0
		}
		return end - start
	}

	return types.StageTimings{
		RoutingMs:       span(types.StageRouting, types.StageViewpointAnalysis),
		AnalysisMs:      span(types.StageViewpointAnalysis, types.StageStrongManning),
		StrongManningMs: span(types.StageStrongManning, types.StageSynthesis),
		SynthesisMs:     span(types.StageSynthesis, types.StageComplete),
		TotalMs:         last,
	}
}
