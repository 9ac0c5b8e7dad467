package modules

import (
	"context"
	"fmt"
	"time"

	"ghbridge/server/internal/observability"
	"ghbridge/server/internal/transport"
)

// registry holds all registered modules
var registry = make(map[string]Module)

// RegisterModule adds a module to the registry
func RegisterModule(m Module) {
	registry[m.Name()] = m
}

// GetModule returns a module by name
func GetModule(name string) (Module, bool) {
	m, ok := registry[name]
	return m, ok
}

// ListModules returns all registered module names
func ListModules() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// Reset clears the registry. Test use only.
func Reset() {
	registry = make(map[string]Module)
}

// AllTools returns every tool across all registered modules, in the
// form served by tools/list.
func AllTools() []Tool {
	var tools []Tool
	for _, m := range registry {
		tools = append(tools, m.Tools()...)
	}
	if tools == nil {
		tools = []Tool{}
	}
	return tools
}

// moduleForTool finds the module that owns the named tool. Tool names
// are unprefixed, so they must be unique across modules.
func moduleForTool(toolName string) (Module, Tool, bool) {
	for _, m := range registry {
		if t, ok := findTool(m.Tools(), toolName); ok {
			return m, t, true
		}
	}
	return nil, Tool{}, false
}

// toolTimeout is the maximum duration for a single tool execution.
const toolTimeout = 30 * time.Second

// Run executes one tool: look up its module, validate params against
// the input schema, execute under a timeout, and wrap the outcome as a
// tool result. Failures come back as isError results, never as panics.
func Run(ctx context.Context, toolName string, params map[string]interface{}) (*ToolCallResult, error) {
	start := time.Now()

	m, tool, ok := moduleForTool(toolName)
	if !ok {
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("Unknown tool: %s", toolName)}},
			IsError: true,
		}, nil
	}

	validated, err := ValidateParams(tool.InputSchema, params)
	if err != nil {
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}, nil
	}
	params = validated

	// Apply timeout to prevent upstream calls from hanging indefinitely
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()

	result, err := m.ExecuteTool(ctx, toolName, params)
	durationMs := time.Since(start).Milliseconds()
	requestID := transport.GetRequestID(ctx)

	if err != nil {
		errMsg := err.Error()
		if ctx.Err() == context.DeadlineExceeded {
			errMsg = fmt.Sprintf("Request to %s timed out after %s. The upstream service did not respond in time.", m.Name(), toolTimeout)
		}
		observability.LogToolCall(requestID, m.Name(), toolName, durationMs, "error", errMsg)
		return &ToolCallResult{
			Content: []ContentBlock{{Type: "text", Text: errMsg}},
			IsError: true,
		}, nil
	}

	// Responses pass through as upstream JSON; compact rendering is
	// opt-in via format: "compact".
	if f, _ := params["format"].(string); f == "compact" {
		result = applyCompact(m, toolName, result)
	}

	observability.LogToolCall(requestID, m.Name(), toolName, durationMs, "success", "")
	return &ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: result}},
	}, nil
}

// applyCompact converts a JSON result to markdown when the module
// supports it. Returns the original JSON otherwise.
func applyCompact(m Module, toolName, jsonResult string) string {
	if converter, ok := m.(CompactConverter); ok {
		return converter.ToCompact(toolName, jsonResult)
	}
	return jsonResult
}
