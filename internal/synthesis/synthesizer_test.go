package synthesis

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/routing"
	"github.com/caseymrobbins/personal-ai-sub001/internal/strongman"
	"github.com/caseymrobbins/personal-ai-sub001/internal/viewpoint"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

func fixtureAnalysis() *types.ViewpointAnalysis {
	user := types.NewViewpoint("Renewable energy should be prioritized over fossil fuels", types.StanceUser)
	user.Confidence = 0.8
	user.Arguments = []types.Argument{
		types.NewArgument("Climate costs compound, so delay is the expensive option", 0.8),
		types.NewArgument("Solar costs dropped 80 percent in a decade", 0.75),
	}

	opposing := types.NewViewpoint("The practical costs of a rapid transition deserve more weight than advocates give them", types.StanceOpposing)
	opposing.Confidence = 0.7
	opposing.Domain = "economics"
	opposing.Arguments = []types.Argument{
		types.NewArgument("Transition costs fall unevenly on people who did not choose them", 0.7),
	}

	return &types.ViewpointAnalysis{
		ID:                 "analysis-1",
		Topic:              "renewable energy priority",
		UserPosition:       user,
		OpposingViewpoints: []*types.Viewpoint{opposing},
		CommonGround: []types.CommonGround{
			{Statement: "Energy policy matters and costs are relevant", Agreement: []string{user.ID, opposing.ID}, Strength: 0.7},
		},
		KeyTensions: []types.Tension{
			{ID: "t1", Topic: "renewable energy priority", Position1: user.Position, Position2: opposing.Position,
				Nature: types.TensionPrioritization, Explanation: "Both sides accept the goal but rank speed against cost differently"},
			{ID: "t2", Topic: "renewable energy priority", Position1: user.Position, Position2: opposing.Position,
				Nature: types.TensionValue, Explanation: "Whether climate urgency outranks economic disruption is a value ranking, not a fact"},
		},
		TopicClarity: types.TopicClarity{
			WellDefined:       true,
			CoreDisagreement:  "How fast to transition, given who pays for the speed",
			SharedAssumptions: []string{"Energy policy choices have large consequences"},
		},
		AnalysisConfidence: 0.7,
	}
}

func fixtureStrongManned(t *testing.T, analysis *types.ViewpointAnalysis) map[string]*types.StrongMannedAnalysis {
	t.Helper()
	cfg := config.DefaultConfig()
	engine := strongman.NewEngine(&cfg.Pipeline, nil)

	strongManned := make(map[string]*types.StrongMannedAnalysis)
	for _, vp := range analysis.AllViewpoints() {
		challenge, err := engine.StrongManViewpoint(context.Background(), vp)
		if err != nil {
			t.Fatalf("StrongManViewpoint failed: %v", err)
		}
		strongManned[vp.ID] = challenge
	}
	return strongManned
}

func TestSynthesizeAnswer(t *testing.T) {
	synthesizer := NewSynthesizer(nil)
	analysis := fixtureAnalysis()
	strongManned := fixtureStrongManned(t, analysis)

	answer, err := synthesizer.SynthesizeAnswer(context.Background(), "Should renewable energy be prioritized?", analysis, strongManned)
	if err != nil {
		t.Fatalf("SynthesizeAnswer failed: %v", err)
	}

	t.Run("direct_answer", func(t *testing.T) {
		if answer.DirectAnswer == "" {
			t.Error("expected a non-empty direct answer")
		}
	})

	t.Run("explanation_references_tension", func(t *testing.T) {
		if !strings.Contains(answer.NuancedExplanation, analysis.KeyTensions[0].Explanation) {
			t.Error("nuanced explanation must reference at least one key tension")
		}
	})

	t.Run("one_perspective_per_viewpoint", func(t *testing.T) {
		if len(answer.Perspectives) != 2 {
			t.Fatalf("expected 2 perspectives, got %d", len(answer.Perspectives))
		}
		for _, perspective := range answer.Perspectives {
			if perspective.Title == "" || perspective.Description == "" {
				t.Error("perspectives need titles and descriptions")
			}
		}
		if len(answer.Perspectives[0].Strengths) == 0 {
			t.Error("user perspective should carry strengths from high-strength arguments")
		}
	})

	t.Run("trade_offs_from_prioritization_tensions", func(t *testing.T) {
		if len(answer.TradeOffs) != 1 {
			t.Fatalf("expected exactly one trade-off from the prioritization tension, got %d", len(answer.TradeOffs))
		}
		if answer.TradeOffs[0].Consequence == "" {
			t.Error("trade-offs need consequences")
		}
	})

	t.Run("unresolvable_from_value_tensions", func(t *testing.T) {
		if len(answer.UnresolvableDisagreements) != 1 {
			t.Fatalf("expected the value tension to be unresolvable, got %d entries", len(answer.UnresolvableDisagreements))
		}
	})

	t.Run("recommended_approach", func(t *testing.T) {
		if answer.RecommendedApproach.Primary == "" {
			t.Error("expected a primary recommendation")
		}
		if len(answer.RecommendedApproach.Alternatives) != 1 {
			t.Errorf("expected one alternative per opposing viewpoint, got %d", len(answer.RecommendedApproach.Alternatives))
		}
		if len(answer.RecommendedApproach.Assumptions) == 0 {
			t.Error("expected assumptions sourced from strong-manning")
		}
	})

	t.Run("score_bounds", func(t *testing.T) {
		if answer.SynthesisQuality <= 0 || answer.SynthesisQuality > types.MaxScore {
			t.Errorf("synthesis quality %.2f out of (0, %.2f]", answer.SynthesisQuality, types.MaxScore)
		}
		if answer.Representativeness <= 0 || answer.Representativeness > types.MaxScore {
			t.Errorf("representativeness %.2f out of (0, %.2f]", answer.Representativeness, types.MaxScore)
		}
	})
}

func TestSynthesizeAnswerWithoutOpposition(t *testing.T) {
	synthesizer := NewSynthesizer(nil)

	user := types.NewViewpoint("No stated position on this question", types.StanceUser)
	user.Confidence = 0.1
	analysis := &types.ViewpointAnalysis{
		ID:           "analysis-empty",
		Topic:        "this question",
		UserPosition: user,
	}

	answer, err := synthesizer.SynthesizeAnswer(context.Background(), "", analysis, nil)
	if err != nil {
		t.Fatalf("SynthesizeAnswer failed: %v", err)
	}
	if answer.DirectAnswer == "" {
		t.Error("even a one-sided analysis yields a direct answer")
	}
	if answer.Representativeness != 0.35 {
		t.Errorf("without opposition representativeness is fixed at 0.35, got %.2f", answer.Representativeness)
	}
}

// An absolutist single-turn user must still end up with a balanced answer.
func TestRepresentativenessResistsAbsolutism(t *testing.T) {
	cfg := config.DefaultConfig()
	analyzer := viewpoint.NewAnalyzer(cfg.Pipeline.MaxOpposingViewpoints, routing.NewScorer(&cfg.Routing))
	synthesizer := NewSynthesizer(nil)

	history := []types.ConversationMessage{
		{Role: types.RoleUser, Content: "Technology is always the answer and nothing else ever works for any problem."},
	}
	analysis, err := analyzer.AnalyzeConversation(context.Background(), history, "Is technology the solution to all problems?")
	if err != nil {
		t.Fatalf("AnalyzeConversation failed: %v", err)
	}
	strongManned := fixtureStrongManned(t, analysis)

	answer, err := synthesizer.SynthesizeAnswer(context.Background(), "Is technology the solution to all problems?", analysis, strongManned)
	if err != nil {
		t.Fatalf("SynthesizeAnswer failed: %v", err)
	}
	if answer.Representativeness <= 0.4 {
		t.Errorf("representativeness %.2f must exceed 0.4 for an absolutist user turn", answer.Representativeness)
	}
}

// A single Synthesizer is shared across simultaneous pipeline runs, so
// SynthesizeAnswer has to hold up under the race detector. The fixture's
// domain-tagged opposing viewpoint forces the title-casing path.
func TestSynthesizeAnswerConcurrent(t *testing.T) {
	synthesizer := NewSynthesizer(nil)
	analysis := fixtureAnalysis()
	strongManned := fixtureStrongManned(t, analysis)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer, err := synthesizer.SynthesizeAnswer(context.Background(), "Should renewable energy be prioritized?", analysis, strongManned)
			if err != nil {
				t.Errorf("SynthesizeAnswer failed: %v", err)
				return
			}
			if len(answer.Perspectives) != 2 {
				t.Errorf("expected 2 perspectives, got %d", len(answer.Perspectives))
				return
			}
			if answer.Perspectives[1].Title != "Economics Counterpoint" {
				t.Errorf("unexpected opposing perspective title %q", answer.Perspectives[1].Title)
			}
		}()
	}
	wg.Wait()
}

func TestSynthesizeAnswerRejectsNilAnalysis(t *testing.T) {
	synthesizer := NewSynthesizer(nil)
	if _, err := synthesizer.SynthesizeAnswer(context.Background(), "q", nil, nil); err == nil {
		t.Error("nil analysis must be rejected")
	}
}

func TestRenderAnswer(t *testing.T) {
	synthesizer := NewSynthesizer(nil)
	analysis := fixtureAnalysis()
	strongManned := fixtureStrongManned(t, analysis)

	answer, err := synthesizer.SynthesizeAnswer(context.Background(), "Should renewable energy be prioritized?", analysis, strongManned)
	if err != nil {
		t.Fatalf("SynthesizeAnswer failed: %v", err)
	}

	renderer := NewRenderer()
	markdown := renderer.RenderMarkdown(answer)
	for _, section := range []string{"## Direct Answer", "## Perspectives", "## Trade-offs", "## Recommended Approach"} {
		if !strings.Contains(markdown, section) {
			t.Errorf("markdown missing section %q", section)
		}
	}

	htmlOut, err := renderer.RenderHTML(answer)
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(htmlOut, "<h2>") {
		t.Error("expected rendered HTML headings")
	}
}
