package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/routing"
	"github.com/caseymrobbins/personal-ai-sub001/internal/strongman"
	"github.com/caseymrobbins/personal-ai-sub001/internal/synthesis"
	"github.com/caseymrobbins/personal-ai-sub001/internal/viewpoint"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

func newTestExecutor(t *testing.T, cfg *config.Config) *Executor {
	t.Helper()
	scorer := routing.NewScorer(&cfg.Routing)
	return NewExecutor(
		&cfg.Pipeline,
		scorer,
		viewpoint.NewAnalyzer(cfg.Pipeline.MaxOpposingViewpoints, scorer),
		strongman.NewEngine(&cfg.Pipeline, nil),
		synthesis.NewSynthesizer(nil),
		nil,
		nil,
		nil,
	)
}

func advocacyHistory() []types.ConversationMessage {
	return []types.ConversationMessage{
		{Role: types.RoleUser, Content: "I think renewable energy should be prioritized because climate change is the defining problem of our time."},
		{Role: types.RoleUser, Content: "Solar and wind are getting cheaper every year, and the transition creates jobs."},
		{Role: types.RoleUser, Content: "Waiting is definitely more expensive than acting now."},
	}
}

func TestExecutePipeline(t *testing.T) {
	cfg := config.DefaultConfig()
	executor := newTestExecutor(t, cfg)

	result, err := executor.ExecutePipeline(context.Background(),
		"Should renewable energy be prioritized?", advocacyHistory(), nil)
	require.NoError(t, err)
	require.NotNil(t, result)

	t.Run("stage_artifacts_present", func(t *testing.T) {
		assert.NotNil(t, result.RoutingDecision)
		assert.NotNil(t, result.ViewpointAnalysis)
		assert.NotNil(t, result.SynthesizedAnswer)
		assert.GreaterOrEqual(t, len(result.ViewpointAnalysis.OpposingViewpoints), 1)
		assert.GreaterOrEqual(t, len(result.SynthesizedAnswer.Perspectives), 2)
	})

	t.Run("strong_manned_covers_every_viewpoint", func(t *testing.T) {
		viewpoints := result.ViewpointAnalysis.AllViewpoints()
		assert.Len(t, result.StrongMannedAnalyses, len(viewpoints))
		for _, vp := range viewpoints {
			assert.Contains(t, result.StrongMannedAnalyses, vp.ID)
		}
	})

	t.Run("quality_capped", func(t *testing.T) {
		assert.LessOrEqual(t, result.Quality.OverallQuality, types.MaxScore)
		assert.Greater(t, result.Quality.OverallQuality, 0.0)
	})

	t.Run("cached_by_id", func(t *testing.T) {
		cached, err := executor.GetResult(context.Background(), result.ID)
		require.NoError(t, err)
		assert.Equal(t, result.ID, cached.ID)
	})

	t.Run("timings_consistent", func(t *testing.T) {
		assert.Positive(t, result.Timing.TotalMs)
		sum := result.Timing.RoutingMs + result.Timing.AnalysisMs +
			result.Timing.StrongManningMs + result.Timing.SynthesisMs
		assert.LessOrEqual(t, sum, result.Timing.TotalMs)
	})
}

// Progress events must arrive in stage order with non-decreasing elapsed
// time, so a caller can drive a progress bar from them.
func TestExecutePipelineProgressOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	executor := newTestExecutor(t, cfg)

	var events []types.PipelineProgress
	_, err := executor.ExecutePipeline(context.Background(),
		"Should renewable energy be prioritized?", advocacyHistory(),
		func(p types.PipelineProgress) { events = append(events, p) })
	require.NoError(t, err)
	require.NotEmpty(t, events)

	stageOrder := map[types.PipelineStage]int{
		types.StageRouting:           0,
		types.StageViewpointAnalysis: 1,
		types.StageStrongManning:     2,
		types.StageSynthesis:         3,
		types.StageComplete:          4,
	}

	assert.Equal(t, types.StageRouting, events[0].Stage)
	assert.Equal(t, types.StageComplete, events[len(events)-1].Stage)

	strongManningEvents := 0
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, stageOrder[events[i].Stage], stageOrder[events[i-1].Stage],
			"stages must never move backwards")
		assert.GreaterOrEqual(t, events[i].ElapsedMs, events[i-1].ElapsedMs,
			"elapsed time must be monotonically non-decreasing")
	}
	for _, event := range events {
		if event.Stage == types.StageStrongManning {
			strongManningEvents++
		}
	}
	assert.GreaterOrEqual(t, strongManningEvents, 1, "strong-manning emits per-viewpoint progress")
}

func TestExecutePipelineEmptyHistory(t *testing.T) {
	cfg := config.DefaultConfig()
	executor := newTestExecutor(t, cfg)

	result, err := executor.ExecutePipeline(context.Background(), "", nil, nil)
	require.NoError(t, err, "empty inputs degrade gracefully, never reject")
	assert.NotEmpty(t, result.SynthesizedAnswer.DirectAnswer)
	assert.Empty(t, result.ViewpointAnalysis.OpposingViewpoints)
}

func TestMetricsAccumulate(t *testing.T) {
	cfg := config.DefaultConfig()
	executor := newTestExecutor(t, cfg)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := executor.ExecutePipeline(ctx, "Should renewable energy be prioritized?", advocacyHistory(), nil)
		require.NoError(t, err)
	}

	metrics := executor.Metrics()
	assert.GreaterOrEqual(t, metrics.TotalPipelines, 2)
	assert.Positive(t, metrics.AvgTotalTimeMs)
	assert.Positive(t, metrics.AvgQuality)
	assert.NotEmpty(t, metrics.MostCommonStage)
}

type failingAnalyzer struct{}

func (failingAnalyzer) AnalyzeConversation(context.Context, []types.ConversationMessage, string) (*types.ViewpointAnalysis, error) {
	return nil, errors.New("analysis exploded")
}

func TestStageFailureEmitsTerminalEvent(t *testing.T) {
	cfg := config.DefaultConfig()
	scorer := routing.NewScorer(&cfg.Routing)
	cache := NewMemoryResultCache(cfg.Pipeline.ResultCacheSize)
	executor := NewExecutor(&cfg.Pipeline, scorer, failingAnalyzer{},
		strongman.NewEngine(&cfg.Pipeline, nil), synthesis.NewSynthesizer(nil), nil, cache, nil)

	var events []types.PipelineProgress
	_, err := executor.ExecutePipeline(context.Background(), "any question", nil,
		func(p types.PipelineProgress) { events = append(events, p) })
	require.Error(t, err)

	require.NotEmpty(t, events)
	terminal := events[len(events)-1]
	assert.Equal(t, types.StageComplete, terminal.Stage)
	assert.Equal(t, 0.0, terminal.Progress)
	assert.Contains(t, terminal.StatusMessage, "analysis exploded")

	assert.Equal(t, 0, cache.Len(), "failed runs must not be cached")
	assert.Equal(t, 0, executor.Metrics().TotalPipelines, "failed runs must not count toward metrics")
}

type failingStrongManner struct {
	inner *strongman.Engine
}

func (f failingStrongManner) StrongManViewpoint(ctx context.Context, vp *types.Viewpoint) (*types.StrongMannedAnalysis, error) {
	if vp.Stance == types.StanceOpposing {
		return nil, errors.New("challenge generation failed")
	}
	return f.inner.StrongManViewpoint(ctx, vp)
}

func TestPerViewpointFailureOmitsViewpoint(t *testing.T) {
	cfg := config.DefaultConfig()
	scorer := routing.NewScorer(&cfg.Routing)
	executor := NewExecutor(&cfg.Pipeline, scorer,
		viewpoint.NewAnalyzer(cfg.Pipeline.MaxOpposingViewpoints, scorer),
		failingStrongManner{inner: strongman.NewEngine(&cfg.Pipeline, nil)},
		synthesis.NewSynthesizer(nil), nil, nil, nil)

	result, err := executor.ExecutePipeline(context.Background(),
		"Should renewable energy be prioritized?", advocacyHistory(), nil)
	require.NoError(t, err, "per-viewpoint failure must not fail the run")

	assert.Len(t, result.StrongMannedAnalyses, 1, "only the user viewpoint survives")
	assert.Contains(t, result.StrongMannedAnalyses, result.ViewpointAnalysis.UserPosition.ID)
}

func TestExecutePipelineCancellation(t *testing.T) {
	cfg := config.DefaultConfig()
	executor := newTestExecutor(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := executor.ExecutePipeline(ctx, "Should renewable energy be prioritized?", advocacyHistory(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryResultCacheEviction(t *testing.T) {
	cache := NewMemoryResultCache(2)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Put(ctx, &types.PipelineResult{ID: id}))
	}

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrResultNotFound, "oldest entry is evicted first")

	for _, id := range []string{"b", "c"} {
		got, err := cache.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	}
}

func TestRedisResultCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cache := NewRedisResultCache(client, time.Hour)
	ctx := context.Background()

	result := &types.PipelineResult{
		ID:       "run-1",
		Question: "Should renewable energy be prioritized?",
		Quality:  types.QualityMetrics{OverallQuality: 0.6},
	}
	require.NoError(t, cache.Put(ctx, result))

	got, err := cache.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, result.Question, got.Question)
	assert.InDelta(t, 0.6, got.Quality.OverallQuality, 1e-9)

	_, err = cache.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)
}
