package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"ghbridge/server/internal/jsonrpc"
	"ghbridge/server/internal/modules"
)

const (
	protocolVersion = "2025-03-26"
	serverName      = "ghbridge"
	serverVersion   = "0.1.0"
)

// Handler routes JSON-RPC requests to MCP method handlers. It is
// transport-agnostic and used by both the stdio and HTTP transports.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// ProcessRequest routes a JSON-RPC request to the appropriate handler.
// Called by the transport layer.
func (h *Handler) ProcessRequest(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error) {
	switch req.Method {
	case "initialize":
		return h.handleInitialize(req), nil
	case "initialized", "notifications/initialized":
		return nil, nil
	case "tools/list":
		return h.handleToolsList(ctx)
	case "tools/call":
		return h.handleToolCall(ctx, req)
	case "resources/list":
		return &ResourcesListResult{Resources: []modules.Resource{}}, nil
	case "resources/templates/list":
		return &ResourceTemplatesListResult{ResourceTemplates: []ResourceTemplate{}}, nil
	case "resources/read":
		return h.handleResourcesRead(ctx, req)
	default:
		return nil, &jsonrpc.Error{Code: MethodNotFound, Message: "Method not found"}
	}
}

func (h *Handler) handleInitialize(req *jsonrpc.Request) *InitializeResult {
	return &InitializeResult{
		ProtocolVersion: protocolVersion,
		Capabilities: ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
		},
		ServerInfo: ServerInfo{
			Name:    serverName,
			Version: serverVersion,
		},
	}
}

func (h *Handler) handleToolsList(ctx context.Context) (*ToolsListResult, *jsonrpc.Error) {
	return &ToolsListResult{Tools: modules.AllTools()}, nil
}

func (h *Handler) handleToolCall(ctx context.Context, req *jsonrpc.Request) (*ToolCallResult, *jsonrpc.Error) {
	paramsBytes, err := json.Marshal(req.Params)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params"}
	}

	var params ToolCallParams
	if err := json.Unmarshal(paramsBytes, &params); err != nil {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "Invalid params structure"}
	}

	if params.Name == "" {
		return nil, &jsonrpc.Error{Code: InvalidParams, Message: "name is required"}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]interface{}{}
	}

	result, err := modules.Run(ctx, params.Name, params.Arguments)
	if err != nil {
		return nil, &jsonrpc.Error{Code: InternalError, Message: fmt.Sprintf("tool execution failed: %v", err)}
	}
	return result, nil
}

func (h *Handler) handleResourcesRead(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error) {
	// No resources are exposed, so every URI is unknown.
	return nil, &jsonrpc.Error{Code: MethodNotFound, Message: "Resource not found"}
}
