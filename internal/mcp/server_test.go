package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/fredcamaral/gomcp-sdk/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseymrobbins/personal-ai-sub001/internal/config"
	"github.com/caseymrobbins/personal-ai-sub001/internal/pipeline"
	"github.com/caseymrobbins/personal-ai-sub001/internal/routing"
	"github.com/caseymrobbins/personal-ai-sub001/internal/strongman"
	"github.com/caseymrobbins/personal-ai-sub001/internal/synthesis"
	"github.com/caseymrobbins/personal-ai-sub001/internal/viewpoint"
)

func newTestServer(t *testing.T) *DebateServer {
	t.Helper()
	cfg := config.DefaultConfig()
	scorer := routing.NewScorer(&cfg.Routing)
	executor := pipeline.NewExecutor(
		&cfg.Pipeline,
		scorer,
		viewpoint.NewAnalyzer(cfg.Pipeline.MaxOpposingViewpoints, scorer),
		strongman.NewEngine(&cfg.Pipeline, nil),
		synthesis.NewSynthesizer(nil),
		nil,
		nil,
		nil,
	)
	ds, err := NewDebateServer(executor, nil)
	require.NoError(t, err)
	return ds
}

func callTool(t *testing.T, ds *DebateServer, name string, arguments map[string]interface{}) *protocol.JSONRPCResponse {
	t.Helper()
	req := &protocol.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params: map[string]interface{}{
			"name":      name,
			"arguments": arguments,
		},
	}
	return ds.Server().HandleRequest(context.Background(), req)
}

func TestToolsAreRegistered(t *testing.T) {
	ds := newTestServer(t)

	resp := ds.Server().HandleRequest(context.Background(), &protocol.JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/list",
	})
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	for _, tool := range []string{"debate_execute", "debate_result", "debate_metrics"} {
		assert.Contains(t, string(data), tool)
	}
}

func TestDebateExecuteTool(t *testing.T) {
	ds := newTestServer(t)

	resp := callTool(t, ds, "debate_execute", map[string]interface{}{
		"question": "Should renewable energy be prioritized?",
		"conversation_history": []interface{}{
			map[string]interface{}{"role": "user", "content": "I think renewables should come first because climate change is urgent."},
		},
	})
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	assert.Contains(t, string(data), "run_id")
	assert.Contains(t, string(data), "Direct Answer")
}

func TestDebateResultTool(t *testing.T) {
	ds := newTestServer(t)

	// Run a debate directly, then fetch it through the tool
	result, err := ds.executor.ExecutePipeline(context.Background(), "Should renewable energy be prioritized?", nil, nil)
	require.NoError(t, err)

	resp := callTool(t, ds, "debate_result", map[string]interface{}{"run_id": result.ID})
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	assert.Contains(t, string(data), result.ID)
}

func TestDebateResultToolUnknownRun(t *testing.T) {
	ds := newTestServer(t)

	resp := callTool(t, ds, "debate_result", map[string]interface{}{"run_id": "missing"})
	// Handler errors surface as tool call errors, not JSON-RPC errors
	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	assert.Contains(t, string(data), "no result for run")
}

func TestDebateMetricsTool(t *testing.T) {
	ds := newTestServer(t)

	_, err := ds.executor.ExecutePipeline(context.Background(), "Should renewable energy be prioritized?", nil, nil)
	require.NoError(t, err)

	resp := callTool(t, ds, "debate_metrics", nil)
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	assert.Contains(t, string(data), "total_pipelines")
}

func TestParseHistorySkipsMalformedEntries(t *testing.T) {
	history := parseHistory([]interface{}{
		map[string]interface{}{"role": "user", "content": "valid turn"},
		map[string]interface{}{"role": "", "content": "missing role"},
		"not an object",
	})
	require.Len(t, history, 1)
	assert.Equal(t, "valid turn", history[0].Content)
}
