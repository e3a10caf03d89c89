// ABOUTME: MCP tool handler implementations for the step matching server
// ABOUTME: All handlers are pure queries over the knowledge base, safe for tight polling
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tasklens/stepmatch/internal/knowledge"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	kb *knowledge.KnowledgeBase
}

// FindMatchingStep handles the find_matching_step tool
func (h *Handlers) FindMatchingStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	observation, err := request.RequireString("observation")
	if err != nil {
		return mcp.NewToolResultError("observation argument is required and must be a string"), nil
	}
	taskName := request.GetString("task_name", "")

	result := h.kb.FindMatchingStep(ctx, observation, taskName)
	return jsonResult(result)
}

// FindMultipleMatches handles the find_multiple_matches tool
func (h *Handlers) FindMultipleMatches(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	observation, err := request.RequireString("observation")
	if err != nil {
		return mcp.NewToolResultError("observation argument is required and must be a string"), nil
	}
	taskName := request.GetString("task_name", "")
	topK := request.GetInt("top_k", 3)

	results := h.kb.FindMultipleMatches(ctx, observation, taskName, topK)
	return jsonResult(map[string]interface{}{
		"matches": results,
	})
}

// GetStepDetails handles the get_step_details tool
func (h *Handlers) GetStepDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskName, err := request.RequireString("task_name")
	if err != nil {
		return mcp.NewToolResultError("task_name argument is required and must be a string"), nil
	}
	stepID := request.GetInt("step_id", 0)

	step := h.kb.GetStepDetails(taskName, stepID)
	if step == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no step %d in task %q", stepID, taskName)), nil
	}
	return jsonResult(step)
}

// GetNextStepInfo handles the get_next_step_info tool
func (h *Handlers) GetNextStepInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskName, err := request.RequireString("task_name")
	if err != nil {
		return mcp.NewToolResultError("task_name argument is required and must be a string"), nil
	}
	stepID := request.GetInt("step_id", 0)

	info := h.kb.GetNextStepInfo(taskName, stepID)
	if info == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no step %d in task %q", stepID, taskName)), nil
	}
	return jsonResult(info)
}

// GetTaskSummary handles the get_task_summary tool
func (h *Handlers) GetTaskSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskName, err := request.RequireString("task_name")
	if err != nil {
		return mcp.NewToolResultError("task_name argument is required and must be a string"), nil
	}

	summary := h.kb.GetTaskSummary(taskName)
	if summary == nil {
		return mcp.NewToolResultError(fmt.Sprintf("task %q is not loaded", taskName)), nil
	}
	return jsonResult(summary)
}

// GetAllTasks handles the get_all_tasks tool
func (h *Handlers) GetAllTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{
		"tasks": h.kb.GetAllTasks(),
	})
}

// HealthCheck handles the health_check tool
func (h *Handlers) HealthCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.kb.HealthCheck())
}

// GetSystemStats handles the get_system_stats tool
func (h *Handlers) GetSystemStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.kb.GetSystemStats())
}

// jsonResult marshals a response payload into an MCP text result
func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
