package mcp

import (
	"context"
	"fmt"
	"testing"

	"ghbridge/server/internal/jsonrpc"
	"ghbridge/server/internal/modules"
)

type stubModule struct{}

func (m *stubModule) Name() string        { return "stub" }
func (m *stubModule) Description() string { return "stub module" }
func (m *stubModule) APIVersion() string  { return "v1" }
func (m *stubModule) Tools() []modules.Tool {
	return []modules.Tool{
		{
			Name: "echo",
			InputSchema: modules.InputSchema{
				Type: "object",
				Properties: map[string]modules.Property{
					"text": {Type: "string"},
				},
				Required: []string{"text"},
			},
		},
	}
}

func (m *stubModule) ExecuteTool(ctx context.Context, name string, params map[string]any) (string, error) {
	return fmt.Sprintf(`{"echo":%q}`, params["text"]), nil
}

func (m *stubModule) Resources() []modules.Resource { return nil }
func (m *stubModule) ReadResource(ctx context.Context, uri string) (string, error) {
	return "", fmt.Errorf("resources not supported")
}

func TestHandleInitialize(t *testing.T) {
	h := NewHandler()

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 1, Method: "initialize",
	})
	if rpcErr != nil {
		t.Fatalf("rpc error: %v", rpcErr)
	}

	init, ok := result.(*InitializeResult)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if init.ServerInfo.Name != "ghbridge" {
		t.Errorf("server name = %s", init.ServerInfo.Name)
	}
	if init.ProtocolVersion == "" {
		t.Error("protocol version missing")
	}
	if init.Capabilities.Tools == nil {
		t.Error("tools capability missing")
	}
}

func TestHandleInitializedNotification(t *testing.T) {
	h := NewHandler()

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", Method: "initialized",
	})
	if rpcErr != nil || result != nil {
		t.Errorf("initialized should be a silent ack, got result=%v err=%v", result, rpcErr)
	}
}

func TestHandleToolsList(t *testing.T) {
	modules.Reset()
	defer modules.Reset()
	modules.RegisterModule(&stubModule{})

	h := NewHandler()
	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 2, Method: "tools/list",
	})
	if rpcErr != nil {
		t.Fatalf("rpc error: %v", rpcErr)
	}

	list, ok := result.(*ToolsListResult)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if len(list.Tools) != 1 || list.Tools[0].Name != "echo" {
		t.Errorf("tools = %v", list.Tools)
	}
}

func TestHandleToolCall(t *testing.T) {
	modules.Reset()
	defer modules.Reset()
	modules.RegisterModule(&stubModule{})

	h := NewHandler()
	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 3, Method: "tools/call",
		Params: map[string]interface{}{
			"name":      "echo",
			"arguments": map[string]interface{}{"text": "hi"},
		},
	})
	if rpcErr != nil {
		t.Fatalf("rpc error: %v", rpcErr)
	}

	call, ok := result.(*ToolCallResult)
	if !ok {
		t.Fatalf("result type = %T", result)
	}
	if call.IsError {
		t.Errorf("unexpected error result: %s", call.Content[0].Text)
	}
	if call.Content[0].Text != `{"echo":"hi"}` {
		t.Errorf("content = %s", call.Content[0].Text)
	}
}

func TestHandleToolCallUnknownTool(t *testing.T) {
	modules.Reset()
	defer modules.Reset()

	h := NewHandler()
	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 4, Method: "tools/call",
		Params: map[string]interface{}{"name": "bogus"},
	})
	if rpcErr != nil {
		t.Fatalf("rpc error: %v", rpcErr)
	}

	call := result.(*ToolCallResult)
	if !call.IsError {
		t.Error("unknown tool should produce an isError result, not a protocol error")
	}
}

func TestHandleToolCallMissingName(t *testing.T) {
	h := NewHandler()
	_, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 5, Method: "tools/call",
		Params: map[string]interface{}{},
	})
	if rpcErr == nil || rpcErr.Code != InvalidParams {
		t.Errorf("rpcErr = %v, want invalid params", rpcErr)
	}
}

func TestHandleResources(t *testing.T) {
	h := NewHandler()

	result, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 6, Method: "resources/list",
	})
	if rpcErr != nil {
		t.Fatalf("rpc error: %v", rpcErr)
	}
	list := result.(*ResourcesListResult)
	if list.Resources == nil || len(list.Resources) != 0 {
		t.Errorf("resources = %v, want empty slice", list.Resources)
	}

	result, rpcErr = h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 7, Method: "resources/templates/list",
	})
	if rpcErr != nil {
		t.Fatalf("rpc error: %v", rpcErr)
	}
	tmpl := result.(*ResourceTemplatesListResult)
	if tmpl.ResourceTemplates == nil || len(tmpl.ResourceTemplates) != 0 {
		t.Errorf("templates = %v, want empty slice", tmpl.ResourceTemplates)
	}

	_, rpcErr = h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 8, Method: "resources/read",
		Params: map[string]interface{}{"uri": "file:///anything"},
	})
	if rpcErr == nil || rpcErr.Code != MethodNotFound {
		t.Errorf("resources/read rpcErr = %v, want method not found", rpcErr)
	}
}

func TestHandleUnknownMethod(t *testing.T) {
	h := NewHandler()
	_, rpcErr := h.ProcessRequest(context.Background(), &jsonrpc.Request{
		JSONRPC: "2.0", ID: 9, Method: "prompts/list",
	})
	if rpcErr == nil || rpcErr.Code != MethodNotFound {
		t.Errorf("rpcErr = %v, want method not found", rpcErr)
	}
}
