// demo runs one debate through the pipeline from the command line and
// prints the progress stream, the rendered answer, and the quality
// scores. Useful for eyeballing the pipeline without a client.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/fatih/color"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/di"
	"github.com/caseymrobbins/personal-ai-sub001/internal/synthesis"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

func main() {
	question := flag.String("question", "Should renewable energy be prioritized?", "The contested question to analyze")
	position := flag.String("position", "I think renewable energy should be prioritized because climate change is the defining problem of our time.", "Your stated position, fed in as conversation history")
	flag.Parse()

	cfg := config.DefaultConfig()
	cfg.Persistence.Enabled = false
	cfg.Logging.Level = "ERROR"

	container, err := di.NewContainer(cfg)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}
	defer func() { _ = container.Shutdown() }()

	header := color.New(color.FgCyan, color.Bold)
	stage := color.New(color.FgYellow)
	score := color.New(color.FgGreen)

	header.Printf("\nDebating: %s\n\n", *question)

	var history []types.ConversationMessage
	if *position != "" {
		history = append(history, types.ConversationMessage{Role: types.RoleUser, Content: *position})
	}

	result, err := container.Executor.ExecutePipeline(context.Background(), *question, history,
		func(p types.PipelineProgress) {
			stage.Printf("  [%5.1f%%] %-20s %s\n", p.Progress*100, p.Stage, p.StatusMessage)
		})
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	header.Println("\n" + strings.Repeat("=", 72))
	fmt.Println(synthesis.NewRenderer().RenderMarkdown(result.SynthesizedAnswer))
	header.Println(strings.Repeat("=", 72))

	score.Printf("\nOverall quality    %.2f\n", result.Quality.OverallQuality)
	score.Printf("Representativeness %.2f\n", result.Quality.Representativeness)
	score.Printf("Adapter            %s (%s)\n", result.RoutingDecision.AdapterID, result.RoutingDecision.Recommendation)
	score.Printf("Total time         %dms\n", result.Timing.TotalMs)
}
