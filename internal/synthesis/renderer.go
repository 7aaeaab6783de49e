package synthesis

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

// Renderer turns a SynthesizedAnswer into reader-facing Markdown or HTML.
type Renderer struct {
	markdown goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// RenderMarkdown lays the answer out as a document, sections in reading
// order. Empty sections are omitted.
func (r *Renderer) RenderMarkdown(answer *types.SynthesizedAnswer) string {
	var b strings.Builder

	b.WriteString("## Direct Answer\n\n")
	b.WriteString(answer.DirectAnswer)
	b.WriteString("\n\n## The Fuller Picture\n\n")
	b.WriteString(answer.NuancedExplanation)
	b.WriteString("\n")

	if len(answer.Perspectives) > 0 {
		b.WriteString("\n## Perspectives\n")
		for _, perspective := range answer.Perspectives {
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", perspective.Title, perspective.Description)
			writeInlineList(&b, "Strengths", perspective.Strengths)
			writeInlineList(&b, "Weaknesses", perspective.Weaknesses)
			writeInlineList(&b, "Most applicable", perspective.ApplicableWhen)
		}
	}

	if len(answer.TradeOffs) > 0 {
		b.WriteString("\n## Trade-offs\n")
		for _, tradeOff := range answer.TradeOffs {
			fmt.Fprintf(&b, "\n- **%s**: %s vs. %s. %s\n", tradeOff.Topic, tradeOff.OptionA, tradeOff.OptionB, tradeOff.Consequence)
		}
	}

	writeList(&b, "Common Ground", answer.CommonGround)

	if len(answer.ContextualRecommendations) > 0 {
		b.WriteString("\n## Recommendations\n")
		for _, rec := range answer.ContextualRecommendations {
			fmt.Fprintf(&b, "\n- **%s**: %s (%s)\n", rec.Context, rec.Guidance, lowerFirst(rec.Reasoning))
		}
	}

	b.WriteString("\n## Recommended Approach\n\n")
	b.WriteString(answer.RecommendedApproach.Primary)
	b.WriteString("\n")
	writeInlineList(&b, "Alternatives", answer.RecommendedApproach.Alternatives)
	writeInlineList(&b, "Caveats", answer.RecommendedApproach.Caveats)
	writeInlineList(&b, "Standing assumptions", answer.RecommendedApproach.Assumptions)

	writeList(&b, "Where Agreement Is Not Coming", answer.UnresolvableDisagreements)

	fmt.Fprintf(&b, "\n---\n\n*Synthesis quality %.2f, representativeness %.2f*\n",
		answer.SynthesisQuality, answer.Representativeness)
	return b.String()
}

// RenderHTML converts the Markdown layout to HTML
func (r *Renderer) RenderHTML(answer *types.SynthesizedAnswer) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(r.RenderMarkdown(answer)), &buf); err != nil {
		return "", fmt.Errorf("render answer: %w", err)
	}
	return buf.String(), nil
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func writeInlineList(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s**\n\n", label)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
