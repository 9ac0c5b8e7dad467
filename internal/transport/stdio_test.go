package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"ghbridge/server/internal/jsonrpc"
)

// echoProcessor answers every request with its method name.
type echoProcessor struct {
	seen []string
}

func (p *echoProcessor) ProcessRequest(ctx context.Context, req *jsonrpc.Request) (interface{}, *jsonrpc.Error) {
	p.seen = append(p.seen, req.Method)
	if req.Method == "fail" {
		return nil, &jsonrpc.Error{Code: jsonrpc.InternalError, Message: "boom"}
	}
	return map[string]string{"method": req.Method}, nil
}

func runStdio(t *testing.T, input string) ([]jsonrpc.Response, *echoProcessor) {
	t.Helper()
	p := &echoProcessor{}
	var out bytes.Buffer

	s := NewStdio(p)
	if err := s.Run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var responses []jsonrpc.Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp jsonrpc.Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("response not valid JSON: %v (line %q)", err, scanner.Text())
		}
		responses = append(responses, resp)
	}
	return responses, p
}

func TestStdioRoundTrip(t *testing.T) {
	responses, p := runStdio(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`+"\n")

	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].Error != nil {
		t.Errorf("unexpected error: %v", responses[0].Error)
	}
	if responses[0].ID != float64(1) {
		t.Errorf("id = %v", responses[0].ID)
	}
	if len(p.seen) != 1 || p.seen[0] != "tools/list" {
		t.Errorf("seen = %v", p.seen)
	}
}

func TestStdioParseError(t *testing.T) {
	responses, p := runStdio(t, "this is not json\n")

	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].Error == nil || responses[0].Error.Code != jsonrpc.ParseError {
		t.Errorf("error = %v, want parse error", responses[0].Error)
	}
	if len(p.seen) != 0 {
		t.Error("processor must not run on unparseable input")
	}
}

func TestStdioNotificationsSilent(t *testing.T) {
	input := `{"jsonrpc":"2.0","method":"initialized"}` + "\n" +
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n"
	responses, p := runStdio(t, input)

	// The notification gets no response line; the request gets one.
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].ID != float64(2) {
		t.Errorf("id = %v", responses[0].ID)
	}
	if len(p.seen) != 2 {
		t.Errorf("seen = %v, notification should still be processed", p.seen)
	}
}

func TestStdioProcessorError(t *testing.T) {
	responses, _ := runStdio(t, `{"jsonrpc":"2.0","id":3,"method":"fail"}`+"\n")

	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if responses[0].Error == nil || responses[0].Error.Message != "boom" {
		t.Errorf("error = %v", responses[0].Error)
	}
}

func TestStdioSkipsEmptyLines(t *testing.T) {
	input := "\n\n" + `{"jsonrpc":"2.0","id":4,"method":"tools/list"}` + "\n\n"
	responses, _ := runStdio(t, input)
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
}
