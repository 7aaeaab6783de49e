// Package mcp exposes the argumentation pipeline as MCP tools, so an MCP
// client can run debates, fetch results, and read aggregate metrics over
// stdio or HTTP.
package mcp

import (
	"context"
	"errors"
	"fmt"

	mcp "github.com/fredcamaral/gomcp-sdk"
	"github.com/fredcamaral/gomcp-sdk/server"

	"github.com/caseymrobbins/personal-ai-sub001/internal/logging"
	"github.com/caseymrobbins/personal-ai-sub001/internal/pipeline"
	"github.com/caseymrobbins/personal-ai-sub001/internal/synthesis"
	"github.com/caseymrobbins/personal-ai-sub001/pkg/types"
)

const (
	serverName    = "personal-ai-debate"
	serverVersion = "1.0.0"
)

// DebateServer wraps the pipeline executor in an MCP server
type DebateServer struct {
	mcpServer *server.Server
	executor  *pipeline.Executor
	renderer  *synthesis.Renderer
	logger    logging.Logger
}

// NewDebateServer builds the MCP server and registers the debate tools
func NewDebateServer(executor *pipeline.Executor, logger logging.Logger) (*DebateServer, error) {
	if executor == nil {
		return nil, errors.New("mcp: pipeline executor is required")
	}
	if logger == nil {
		logger = logging.NewNoop()
	}

	mcpServer := mcp.NewServer(serverName, serverVersion)
	if mcpServer == nil {
		return nil, errors.New("mcp: failed to create server instance")
	}

	ds := &DebateServer{
		mcpServer: mcpServer,
		executor:  executor,
		renderer:  synthesis.NewRenderer(),
		logger:    logger.WithComponent("mcp"),
	}
	ds.registerTools()
	return ds, nil
}

// Server returns the underlying MCP server for transport wiring
func (ds *DebateServer) Server() *server.Server {
	return ds.mcpServer
}

func (ds *DebateServer) registerTools() {
	ds.mcpServer.AddTool(mcp.NewTool(
		"debate_execute",
		"Run the full argumentation pipeline on a question: route it, extract the user's position and opposing viewpoints from the conversation history, strong-man every viewpoint, and synthesize a balanced answer. Returns the run id, the rendered answer, and quality scores.",
		mcp.ObjectSchema("Debate execution parameters", map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "The contested question to analyze. May be empty; the pipeline degrades to low-confidence output instead of rejecting.",
			},
			"conversation_history": map[string]interface{}{
				"type":        "array",
				"description": "Prior conversation turns, oldest first. Each item has 'role' ('user' or 'assistant') and 'content'.",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"role":    map[string]interface{}{"type": "string", "enum": []string{"user", "assistant"}},
						"content": map[string]interface{}{"type": "string"},
					},
				},
			},
		}, []string{"question"}),
	), mcp.ToolHandlerFunc(ds.handleDebateExecute))

	ds.mcpServer.AddTool(mcp.NewTool(
		"debate_result",
		"Fetch a completed debate run by its run id, including the full viewpoint analysis, strong-manned challenges, synthesized answer, and progress log.",
		mcp.ObjectSchema("Debate result parameters", map[string]interface{}{
			"run_id": map[string]interface{}{
				"type":        "string",
				"description": "The run id returned by debate_execute",
			},
		}, []string{"run_id"}),
	), mcp.ToolHandlerFunc(ds.handleDebateResult))

	ds.mcpServer.AddTool(mcp.NewTool(
		"debate_metrics",
		"Read aggregate pipeline metrics: total runs, average quality, average total time, and the most common pipeline stage.",
		mcp.ObjectSchema("Debate metrics parameters", map[string]interface{}{}, []string{}),
	), mcp.ToolHandlerFunc(ds.handleDebateMetrics))
}

func (ds *DebateServer) handleDebateExecute(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	question, _ := params["question"].(string)
	history := parseHistory(params["conversation_history"])

	result, err := ds.executor.ExecutePipeline(ctx, question, history, nil)
	if err != nil {
		return nil, fmt.Errorf("debate execution failed: %w", err)
	}

	ds.logger.Info("debate executed via mcp", "run_id", result.ID, "quality", result.Quality.OverallQuality)
	return map[string]interface{}{
		"run_id":             result.ID,
		"answer_markdown":    ds.renderer.RenderMarkdown(result.SynthesizedAnswer),
		"direct_answer":      result.SynthesizedAnswer.DirectAnswer,
		"quality":            result.Quality,
		"timing":             result.Timing,
		"opposing_viewpoint": len(result.ViewpointAnalysis.OpposingViewpoints),
	}, nil
}

func (ds *DebateServer) handleDebateResult(ctx context.Context, params map[string]interface{}) (interface{}, error) {
	runID, _ := params["run_id"].(string)
	if runID == "" {
		return nil, errors.New("run_id is required")
	}
	result, err := ds.executor.GetResult(ctx, runID)
	if err != nil {
		if errors.Is(err, pipeline.ErrResultNotFound) {
			return nil, fmt.Errorf("no result for run %s", runID)
		}
		return nil, fmt.Errorf("fetching result failed: %w", err)
	}
	return result, nil
}

func (ds *DebateServer) handleDebateMetrics(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	return ds.executor.Metrics(), nil
}

// parseHistory converts the loosely typed tool parameter into typed turns.
// Malformed entries are skipped rather than failing the call.
func parseHistory(raw interface{}) []types.ConversationMessage {
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	history := make([]types.ConversationMessage, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		role, _ := entry["role"].(string)
		content, _ := entry["content"].(string)
		if role == "" || content == "" {
			continue
		}
		history = append(history, types.ConversationMessage{Role: role, Content: content})
	}
	return history
}
