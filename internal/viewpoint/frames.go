package viewpoint

import (
	"fmt"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// counterFrame is a domain-agnostic template for constructing an opposing
// viewpoint. Frames re-frame the question rather than negating the user's
// statement, which is what keeps the generation from trivial strawmanning.
type counterFrame struct {
	name              string
	positionTemplate  string
	argumentTemplates []string
	argumentStrengths []float64
	// tensionNature classifies the conflict this frame has with the
	// user's position
	tensionNature types.TensionNature
	confidence    float64
}

// builtinFrames returns the fixed catalogue of counter-framings, in
// generation priority order.
func builtinFrames() []counterFrame {
	return []counterFrame{
		{
			name:             "practical-cost",
			positionTemplate: "Whatever the merits of %s, the practical costs and opportunity costs deserve more weight than advocates give them",
			argumentTemplates: []string{
				"Resources committed to %s cannot be spent on competing priorities, and that opportunity cost is rarely part of the headline case",
				"Transition and implementation costs of %s fall unevenly, and the people who bear them are often not the people who decide",
			},
			argumentStrengths: []float64{0.7, 0.65},
			tensionNature:     types.TensionPrioritization,
			confidence:        0.7,
		},
		{
			name:             "alternative-values",
			positionTemplate: "The case for %s quietly assumes one set of values; people who rank autonomy, tradition, or stability higher can reasonably reach the opposite conclusion",
			argumentTemplates: []string{
				"Reasonable people weigh the values at stake in %s differently, and no empirical finding settles which weighting is correct",
				"Optimizing for the stated goal of %s can erode other things a community cares about, even when every individual step looks justified",
			},
			argumentStrengths: []float64{0.7, 0.6},
			tensionNature:     types.TensionValue,
			confidence:        0.65,
		},
		{
			name:             "evidence-skeptic",
			positionTemplate: "The evidence offered for %s is weaker than it looks: projections, selection effects, and short baselines do a lot of the work",
			argumentTemplates: []string{
				"Claims about %s tend to rest on projections whose track record is rarely audited",
				"The strongest-sounding numbers about %s usually come from parties with a stake in the conclusion",
			},
			argumentStrengths: []float64{0.65, 0.6},
			tensionNature:     types.TensionFactual,
			confidence:        0.6,
		},
	}
}

// buildViewpoint instantiates a frame against a concrete topic
func (f *counterFrame) buildViewpoint(topic, domain string) *types.Viewpoint {
	vp := types.NewViewpoint(fmt.Sprintf(f.positionTemplate, topic), types.StanceOpposing)
	vp.Domain = domain
	vp.Confidence = f.confidence
	for i, tmpl := range f.argumentTemplates {
		vp.Arguments = append(vp.Arguments, types.NewArgument(fmt.Sprintf(tmpl, topic), f.argumentStrengths[i]))
	}
	return vp
}
