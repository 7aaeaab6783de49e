package types

import (
	"time"
)

// RouteTarget is the coarse execution recommendation for a query
type RouteTarget string

const (
	RouteLocal  RouteTarget = "local"
	RouteHybrid RouteTarget = "hybrid"
	RouteCloud  RouteTarget = "cloud"
)

// RoutingPreferences bias the routing decision without changing the
// complexity score
type RoutingPreferences struct {
	PreferCost    bool `json:"prefer_cost"`
	PreferQuality bool `json:"prefer_quality"`
	PreferPrivacy bool `json:"prefer_privacy"`
}

// ComplexityScore breaks a query's complexity down into weighted factors.
// Every factor and the overall score are in [0,1].
type ComplexityScore struct {
	SemanticDepth     float64 `json:"semantic_depth"`
	ReasoningSteps    float64 `json:"reasoning_steps"`
	DomainSpecificity float64 `json:"domain_specificity"`
	Ambiguity         float64 `json:"ambiguity"`
	Overall           float64 `json:"overall"`
}

// RoutingDecision selects an execution adapter before analysis begins
type RoutingDecision struct {
	AdapterID          string             `json:"adapter_id"`
	Recommendation     RouteTarget        `json:"recommendation"`
	Complexity         ComplexityScore    `json:"complexity"`
	Confidence         float64            `json:"confidence"`
	EstimatedLatencyMs int64              `json:"estimated_latency_ms"`
	EstimatedCost      float64            `json:"estimated_cost"`
	Rationale          string             `json:"rationale"`
	Preferences        RoutingPreferences `json:"preferences"`
}

// PipelineStage names one step of the pipeline state machine
type PipelineStage string

const (
	StageRouting           PipelineStage = "routing"
	StageViewpointAnalysis PipelineStage = "viewpoint-analysis"
	StageStrongManning     PipelineStage = "strong-manning"
	StageSynthesis         PipelineStage = "synthesis"
	StageComplete          PipelineStage = "complete"
)

// PipelineProgress is one entry of the ordered progress log. RunID is set
// by the orchestrator so transports can route events to the right
// subscriber.
type PipelineProgress struct {
	RunID         string        `json:"run_id,omitempty"`
	Stage         PipelineStage `json:"stage"`
	Progress      float64       `json:"progress"`
	StatusMessage string        `json:"status_message"`
	Timestamp     time.Time     `json:"timestamp"`
	ElapsedMs     int64         `json:"elapsed_ms"`
}

// QualityMetrics holds the per-stage quality sub-scores and the combined
// overall quality for a run
type QualityMetrics struct {
	RoutingConfidence  float64 `json:"routing_confidence"`
	AnalysisConfidence float64 `json:"analysis_confidence"`
	SynthesisQuality   float64 `json:"synthesis_quality"`
	Representativeness float64 `json:"representativeness"`
	OverallQuality     float64 `json:"overall_quality"`
}

// CalculateOverallQuality combines the sub-scores. The weighted sum is
// capped at MaxScore before being discounted by representativeness, so a
// run that favored one side can never score as well as a balanced one.
func (q *QualityMetrics) CalculateOverallQuality() {
	weighted := q.RoutingConfidence*0.2 + q.AnalysisConfidence*0.35 + q.SynthesisQuality*0.45
	q.OverallQuality = CapScore(weighted) * q.Representativeness
}

// StageTimings holds per-stage wall-clock durations derived from the
// progress log
type StageTimings struct {
	RoutingMs       int64 `json:"routing_ms"`
	AnalysisMs      int64 `json:"analysis_ms"`
	StrongManningMs int64 `json:"strong_manning_ms"`
	SynthesisMs     int64 `json:"synthesis_ms"`
	TotalMs         int64 `json:"total_ms"`
}

// PipelineResult aggregates everything one pipeline invocation produced.
// Created once per run, immutable after construction.
type PipelineResult struct {
	ID                   string                           `json:"id"`
	Question             string                           `json:"question"`
	ConversationHistory  []ConversationMessage            `json:"conversation_history"`
	RoutingDecision      *RoutingDecision                 `json:"routing_decision"`
	ViewpointAnalysis    *ViewpointAnalysis               `json:"viewpoint_analysis"`
	StrongMannedAnalyses map[string]*StrongMannedAnalysis `json:"strong_manned_analyses"`
	SynthesizedAnswer    *SynthesizedAnswer               `json:"synthesized_answer"`
	ProgressLog          []PipelineProgress               `json:"progress_log"`
	Quality              QualityMetrics                   `json:"quality"`
	Timing               StageTimings                     `json:"timing"`
	Timestamp            time.Time                        `json:"timestamp"`
}

// PipelineMetrics summarizes all runs an executor has completed
type PipelineMetrics struct {
	TotalPipelines  int           `json:"total_pipelines"`
	AvgQuality      float64       `json:"avg_quality"`
	AvgTotalTimeMs  float64       `json:"avg_total_time_ms"`
	MostCommonStage PipelineStage `json:"most_common_stage"`
}

// RunSummary is the compact record handed to the persistence collaborator
// after a successful run
type RunSummary struct {
	Type      string    `json:"type"`
	Question  string    `json:"question"`
	AnswerID  string    `json:"answer_id"`
	Quality   float64   `json:"quality"`
	Timestamp time.Time `json:"timestamp"`
}
