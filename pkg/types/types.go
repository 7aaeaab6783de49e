// Package types provides the core data structures for the argumentation
// pipeline: viewpoints and their arguments, strong-manned challenges, and
// synthesized answers.
package types

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Stance identifies whose position a viewpoint represents
type Stance string

const (
	StanceUser     Stance = "user"
	StanceOpposing Stance = "opposing"
)

// CounterType classifies a counterargument by the kind of challenge it raises
type CounterType string

const (
	CounterLogicalFallacy      CounterType = "logical-fallacy"
	CounterEmpiricalChallenge  CounterType = "empirical-challenge"
	CounterValueConflict       CounterType = "value-conflict"
	CounterAssumptionChallenge CounterType = "assumption-challenge"
	CounterEdgeCase            CounterType = "edge-case"
	CounterPracticalProblem    CounterType = "practical-problem"
)

// TensionNature classifies the kind of conflict between two viewpoints
type TensionNature string

const (
	TensionContradictory  TensionNature = "contradictory"
	TensionFactual        TensionNature = "factual"
	TensionValue          TensionNature = "value"
	TensionIncompatible   TensionNature = "incompatible"
	TensionPrioritization TensionNature = "prioritization"
)

// EdgeCaseSeverity grades how damaging a stress scenario is to a position
type EdgeCaseSeverity string

const (
	SeverityCritical    EdgeCaseSeverity = "critical"
	SeveritySignificant EdgeCaseSeverity = "significant"
	SeverityMinor       EdgeCaseSeverity = "minor"
)

// MaxScore is the ceiling applied to every aggregate score. The system
// never claims full confidence in its own output.
const MaxScore = 0.95

// ClampUnit bounds a score to [0, 1]
func ClampUnit(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}

// CapScore bounds an aggregate score to [0, MaxScore]
func CapScore(v float64) float64 {
	return math.Max(0.0, math.Min(MaxScore, v))
}

// Role constants for conversation messages
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ConversationMessage is a single turn of the conversation under analysis
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Argument is an atomic claim supporting a viewpoint. Immutable once created.
type Argument struct {
	ID          string   `json:"id"`
	Statement   string   `json:"statement"`
	Evidence    []string `json:"evidence,omitempty"`
	LogicalForm string   `json:"logical_form,omitempty"`
	Strength    float64  `json:"strength"`
}

// NewArgument creates an argument with a generated ID and a clamped strength
func NewArgument(statement string, strength float64) Argument {
	return Argument{
		ID:        uuid.New().String(),
		Statement: statement,
		Strength:  ClampUnit(strength),
	}
}

// Viewpoint is one distinct stance on a topic together with its supporting
// arguments and a confidence score.
type Viewpoint struct {
	ID         string     `json:"id"`
	Position   string     `json:"position"`
	Stance     Stance     `json:"stance"`
	Domain     string     `json:"domain,omitempty"`
	Arguments  []Argument `json:"arguments"`
	Confidence float64    `json:"confidence"`
}

// NewViewpoint creates a viewpoint with a generated ID and an empty,
// non-nil argument list
func NewViewpoint(position string, stance Stance) *Viewpoint {
	return &Viewpoint{
		ID:        uuid.New().String(),
		Position:  position,
		Stance:    stance,
		Arguments: []Argument{},
	}
}

// Validate checks viewpoint invariants
func (v *Viewpoint) Validate() error {
	if v.ID == "" {
		return errors.New("viewpoint ID is required")
	}
	if v.Stance != StanceUser && v.Stance != StanceOpposing {
		return errors.New("viewpoint stance must be user or opposing")
	}
	if v.Confidence < 0 || v.Confidence > 1 {
		return errors.New("viewpoint confidence must be in [0,1]")
	}
	return nil
}

// CommonGround is a statement that more than one viewpoint would endorse
type CommonGround struct {
	Statement string   `json:"statement"`
	Agreement []string `json:"agreement"` // viewpoint IDs that endorse it
	Strength  float64  `json:"strength"`
}

// Tension is a detected point of conflict between two viewpoints
type Tension struct {
	ID          string        `json:"id"`
	Topic       string        `json:"topic"`
	Position1   string        `json:"position_1"`
	Position2   string        `json:"position_2"`
	Nature      TensionNature `json:"nature"`
	Explanation string        `json:"explanation"`
}

// TopicClarity describes how well-defined the disputed topic is
type TopicClarity struct {
	WellDefined       bool     `json:"well_defined"`
	CoreDisagreement  string   `json:"core_disagreement"`
	SharedAssumptions []string `json:"shared_assumptions"`
}

// ViewpointAnalysis is the full output of the viewpoint analyzer for one
// pipeline run. Read-only downstream.
type ViewpointAnalysis struct {
	ID                 string         `json:"id"`
	Topic              string         `json:"topic"`
	UserPosition       *Viewpoint     `json:"user_position"`
	OpposingViewpoints []*Viewpoint   `json:"opposing_viewpoints"`
	CommonGround       []CommonGround `json:"common_ground"`
	KeyTensions        []Tension      `json:"key_tensions"`
	TopicClarity       TopicClarity   `json:"topic_clarity"`
	AnalysisConfidence float64        `json:"analysis_confidence"`
	Timestamp          time.Time      `json:"timestamp"`
}

// AllViewpoints returns the user position followed by every opposing
// viewpoint, the order the strong-manning stage iterates in
func (va *ViewpointAnalysis) AllViewpoints() []*Viewpoint {
	all := make([]*Viewpoint, 0, 1+len(va.OpposingViewpoints))
	if va.UserPosition != nil {
		all = append(all, va.UserPosition)
	}
	all = append(all, va.OpposingViewpoints...)
	return all
}

// CounterArgument challenges a specific argument of a viewpoint. It always
// references the statement it targets, and every kept counterargument
// carries a fairness score at or above the engine's minimum.
type CounterArgument struct {
	Argument
	TargetStatement   string      `json:"target_statement"`
	CounterType       CounterType `json:"counter_type"`
	FairnessScore     float64     `json:"fairness_score"`
	PotentialResponse string      `json:"potential_response,omitempty"`
}

// UnexaminedAssumption is a premise the position relies on without arguing for
type UnexaminedAssumption struct {
	Assumption         string  `json:"assumption"`
	WhyAssumed         string  `json:"why_assumed"`
	ChallengeStatement string  `json:"challenge_statement"`
	IsExplicit         bool    `json:"is_explicit"`
	Importance         float64 `json:"importance"`
}

// EdgeCase is a stress scenario evaluated against a position
type EdgeCase struct {
	Scenario          string           `json:"scenario"`
	Description       string           `json:"description"`
	PositionHolds     bool             `json:"would_original_position_hold"`
	Reasoning         string           `json:"reasoning"`
	Severity          EdgeCaseSeverity `json:"severity"`
}

// ProbingQuestion is a question designed to test the position's foundations
type ProbingQuestion struct {
	Question       string  `json:"question"`
	Reasoning      string  `json:"reasoning"`
	RevealsProblem bool    `json:"reveals_problem"`
	Difficulty     float64 `json:"difficulty"`
}

// StrongMannedAnalysis is the full steel-manned challenge to one viewpoint
type StrongMannedAnalysis struct {
	ID                       string                 `json:"id"`
	TargetViewpoint          *Viewpoint             `json:"target_viewpoint"`
	CounterArguments         []CounterArgument      `json:"counter_arguments"`
	UnexaminedAssumptions    []UnexaminedAssumption `json:"unexamined_assumptions"`
	EdgeCases                []EdgeCase             `json:"edge_cases"`
	ProbingQuestions         []ProbingQuestion      `json:"probing_questions"`
	OverallChallengeStrength float64                `json:"overall_challenge_strength"`
	FairnessScore            float64                `json:"fairness_score"`
	Timestamp                time.Time              `json:"timestamp"`
}

// TradeOff presents a choice with consequences, derived from a
// prioritization or incompatibility tension
type TradeOff struct {
	Topic       string `json:"topic"`
	OptionA     string `json:"option_a"`
	OptionB     string `json:"option_b"`
	Consequence string `json:"consequence"`
}

// Perspective is the synthesized presentation of one viewpoint
type Perspective struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	ApplicableWhen []string `json:"applicable_when"`
}

// Recommendation is a context-specific piece of guidance
type Recommendation struct {
	Context   string `json:"context"`
	Guidance  string `json:"guidance"`
	Reasoning string `json:"reasoning"`
}

// RecommendedApproach is the synthesizer's overall suggestion
type RecommendedApproach struct {
	Primary      string   `json:"primary"`
	Alternatives []string `json:"alternatives"`
	Caveats      []string `json:"caveats"`
	Assumptions  []string `json:"assumptions"`
}

// SynthesizedAnswer merges all viewpoint analyses and their strong-manned
// challenges into one structured answer
type SynthesizedAnswer struct {
	ID                        string              `json:"id"`
	DirectAnswer              string              `json:"direct_answer"`
	NuancedExplanation        string              `json:"nuanced_explanation"`
	TradeOffs                 []TradeOff          `json:"trade_offs"`
	Perspectives              []Perspective       `json:"perspectives"`
	CommonGround              []string            `json:"common_ground"`
	ContextualRecommendations []Recommendation    `json:"contextual_recommendations"`
	RecommendedApproach       RecommendedApproach `json:"recommended_approach"`
	UnresolvableDisagreements []string            `json:"unresolvable_disagreements"`
	SynthesisQuality          float64             `json:"synthesis_quality"`
	Representativeness        float64             `json:"representativeness"`
}
