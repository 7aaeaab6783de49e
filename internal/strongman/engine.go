// Package strongman stress-tests a viewpoint with the strongest fair
// challenges it can construct: typed counterarguments against individual
// claims, surfaced hidden assumptions, edge-case scenarios, and probing
// questions. Every challenge aims at the best version of the position,
// never a weakened caricature of it.
package strongman

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/logging"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// Engine runs the strong-manning analysis. It is stateless between calls
// and safe for concurrent use.
type Engine struct {
	minFairness    float64
	responseWindow int
	logger         logging.Logger
}

// NewEngine builds an engine from pipeline config. A nil logger is
// replaced with a no-op.
func NewEngine(cfg *config.PipelineConfig, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Engine{
		minFairness:    cfg.MinFairnessScore,
		responseWindow: cfg.PotentialResponseWindow,
		logger:         logger.WithComponent("strongman"),
	}
}

// StrongManViewpoint produces the full challenge set for one viewpoint.
// The input is never mutated. Calling it twice on the same viewpoint
// yields identical output.
func (e *Engine) StrongManViewpoint(ctx context.Context, viewpoint *types.Viewpoint) (*types.StrongMannedAnalysis, error) {
	if viewpoint == nil {
		return nil, fmt.Errorf("strongman: viewpoint is required")
	}
	if err := viewpoint.Validate(); err != nil {
		return nil, fmt.Errorf("strongman: invalid viewpoint: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counters := e.generateCounterArguments(viewpoint)
	assumptions := e.surfaceAssumptions(viewpoint)
	edgeCases := e.testEdgeCases(viewpoint)
	questions := e.generateProbingQuestions(assumptions, edgeCases)

	analysis := &types.StrongMannedAnalysis{
		ID:                    uuid.New().String(),
		TargetViewpoint:       viewpoint,
		CounterArguments:      counters,
		UnexaminedAssumptions: assumptions,
		EdgeCases:             edgeCases,
		ProbingQuestions:      questions,
		Timestamp:             time.Now().UTC(),
	}
	analysis.OverallChallengeStrength = e.scoreChallengeStrength(analysis)
	analysis.FairnessScore = e.scoreFairness(analysis)

	e.logger.Debug("strong-manned viewpoint",
		"viewpoint_id", viewpoint.ID,
		"counters", len(counters),
		"assumptions", len(assumptions),
		"edge_cases", len(edgeCases),
		"questions", len(questions),
		"challenge_strength", analysis.OverallChallengeStrength,
		"fairness", analysis.FairnessScore)
	return analysis, nil
}

// generateCounterArguments runs each argument through the three
// detectors, drops counters below the fairness floor, and attaches a
// potential response to the trailing window of counters.
func (e *Engine) generateCounterArguments(viewpoint *types.Viewpoint) []types.CounterArgument {
	counters := make([]types.CounterArgument, 0, len(viewpoint.Arguments))

	for i := range viewpoint.Arguments {
		arg := &viewpoint.Arguments[i]
		for _, counter := range []*types.CounterArgument{
			e.detectLogicalFallacy(arg),
			e.detectEmpiricalChallenge(arg),
			e.detectValueConflict(arg),
		} {
			if counter == nil {
				continue
			}
			if counter.FairnessScore < e.minFairness {
				e.logger.Debug("discarding unfair counter",
					"counter_type", string(counter.CounterType),
					"fairness", counter.FairnessScore)
				continue
			}
			counters = append(counters, *counter)
		}
	}

	start := len(counters) - e.responseWindow
	if start < 0 {
		start = 0
	}
	for i := start; i < len(counters); i++ {
		counters[i].PotentialResponse = e.synthesizePotentialResponse(&counters[i])
	}
	return counters
}

// scoreChallengeStrength rates how thoroughly the position was
// challenged: a base for the universal checks plus capped bonuses for
// strong counters, high-importance assumptions, and critical failures.
func (e *Engine) scoreChallengeStrength(analysis *types.StrongMannedAnalysis) float64 {
	strength := 0.3

	if n := len(analysis.CounterArguments); n > 0 {
		strong := 0
		for _, counter := range analysis.CounterArguments {
			if counter.Strength > 0.7 {
				strong++
			}
		}
		strength += minFloat(0.3, float64(strong)/float64(n)*0.3)
	}

	if n := len(analysis.UnexaminedAssumptions); n > 0 {
		important := 0
		for _, assumption := range analysis.UnexaminedAssumptions {
			if assumption.Importance > 0.75 {
				important++
			}
		}
		strength += minFloat(0.25, float64(important)/float64(n)*0.25)
	}

	criticalFailing := 0.0
	for _, edgeCase := range analysis.EdgeCases {
		if !edgeCase.PositionHolds && edgeCase.Severity == types.SeverityCritical {
			criticalFailing += 0.05
		}
	}
	strength += minFloat(0.15, criticalFailing)

	return types.CapScore(strength)
}

// scoreFairness rates how fairly the challenges treat the position. A
// challenge set that ships potential responses earns a steel-manning
// bonus.
func (e *Engine) scoreFairness(analysis *types.StrongMannedAnalysis) float64 {
	fairness := 0.25

	if len(analysis.CounterArguments) > 0 {
		sum := 0.0
		for _, counter := range analysis.CounterArguments {
			sum += counter.FairnessScore
		}
		fairness += (sum / float64(len(analysis.CounterArguments))) * 0.7
	} else {
		// No counters means nothing unfair was said either
		fairness += 0.6
	}

	for _, counter := range analysis.CounterArguments {
		if counter.PotentialResponse != "" {
			fairness += 0.1
			break
		}
	}

	return types.CapScore(fairness)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
