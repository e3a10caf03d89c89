// ABOUTME: MCP tool definitions and registration for the step matching server
// ABOUTME: Exposes the knowledge base query operations to a downstream agent
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tasklens/stepmatch/internal/knowledge"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, kb *knowledge.KnowledgeBase) *Handlers {
	handlers := &Handlers{kb: kb}

	// 1. find_matching_step - Match an observation to the single best step
	server.AddTool(mcp.Tool{
		Name:        "find_matching_step",
		Description: "Match a free-text observation of the user's activity to the single best task step. Returns the no-match sentinel (step_id 0) when nothing matches.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"observation": map[string]interface{}{
					"type":        "string",
					"description": "Free-text observation from the vision model",
				},
				"task_name": map[string]interface{}{
					"type":        "string",
					"description": "Optional task name to restrict matching to",
				},
			},
			Required: []string{"observation"},
		},
	}, handlers.FindMatchingStep)

	// 2. find_multiple_matches - Top-K candidate steps for an observation
	server.AddTool(mcp.Tool{
		Name:        "find_multiple_matches",
		Description: "Match an observation against the step library and return up to top_k candidate steps with similarity and confidence.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"observation": map[string]interface{}{
					"type":        "string",
					"description": "Free-text observation from the vision model",
				},
				"task_name": map[string]interface{}{
					"type":        "string",
					"description": "Optional task name to restrict matching to",
				},
				"top_k": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of candidates to return (default: 3)",
					"default":     3,
				},
			},
			Required: []string{"observation"},
		},
	}, handlers.FindMultipleMatches)

	// 3. get_step_details - Full definition of one step
	server.AddTool(mcp.Tool{
		Name:        "get_step_details",
		Description: "Get the full definition of one step of a task: tools, visual cues, completion indicators, and safety notes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"task_name": map[string]interface{}{
					"type":        "string",
					"description": "Task the step belongs to",
				},
				"step_id": map[string]interface{}{
					"type":        "number",
					"description": "Step id within the task",
				},
			},
			Required: []string{"task_name", "step_id"},
		},
	}, handlers.GetStepDetails)

	// 4. get_next_step_info - What follows a given step
	server.AddTool(mcp.Tool{
		Name:        "get_next_step_info",
		Description: "Get the step following a given step, whether the given step is the last one, and the task's total step count.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"task_name": map[string]interface{}{
					"type":        "string",
					"description": "Task the step belongs to",
				},
				"step_id": map[string]interface{}{
					"type":        "number",
					"description": "Current step id",
				},
			},
			Required: []string{"task_name", "step_id"},
		},
	}, handlers.GetNextStepInfo)

	// 5. get_task_summary - Summary of one loaded task
	server.AddTool(mcp.Tool{
		Name:        "get_task_summary",
		Description: "Get a summary of one loaded task: display name, description, step count, difficulty, and tools.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"task_name": map[string]interface{}{
					"type":        "string",
					"description": "Task to summarize",
				},
			},
			Required: []string{"task_name"},
		},
	}, handlers.GetTaskSummary)

	// 6. get_all_tasks - Names of all loaded tasks
	server.AddTool(mcp.Tool{
		Name:        "get_all_tasks",
		Description: "List the names of all loaded tasks.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetAllTasks)

	// 7. health_check - Engine health
	server.AddTool(mcp.Tool{
		Name:        "health_check",
		Description: "Report knowledge base health (healthy, warning, or unhealthy) with explicit issues.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.HealthCheck)

	// 8. get_system_stats - Load and cache statistics
	server.AddTool(mcp.Tool{
		Name:        "get_system_stats",
		Description: "Get task/step counts and embedding cache statistics.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetSystemStats)

	return handlers
}
