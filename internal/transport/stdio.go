package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"

	"ghbridge/server/internal/jsonrpc"
)

// maxLineBytes bounds a single stdin request line (1 MiB).
const maxLineBytes = 1 << 20

// Stdio reads line-delimited JSON-RPC requests from r and writes
// responses to w. Diagnostics go to the standard logger (stderr), never
// to w: stdout belongs to the protocol.
type Stdio struct {
	processor RequestProcessor

	mu sync.Mutex // serializes writes to w
}

// NewStdio creates a stdio transport backed by the given processor.
func NewStdio(processor RequestProcessor) *Stdio {
	return &Stdio{processor: processor}
}

// Run processes requests until r reaches EOF or ctx is canceled.
// Each input line is one request; each response is one output line.
func (s *Stdio) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req jsonrpc.Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(w, jsonrpc.Response{
				JSONRPC: "2.0",
				Error:   &jsonrpc.Error{Code: jsonrpc.ParseError, Message: "Parse error"},
			})
			continue
		}

		reqCtx := WithRequestID(ctx)
		result, rpcErr := s.processor.ProcessRequest(reqCtx, &req)

		switch {
		case rpcErr != nil:
			s.write(w, jsonrpc.Response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
		case req.ID != nil:
			s.write(w, jsonrpc.Response{JSONRPC: "2.0", ID: req.ID, Result: result})
			// Notifications (no ID) get no response.
		}
	}
	return scanner.Err()
}

func (s *Stdio) write(w io.Writer, resp jsonrpc.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("stdio: marshal response: %v", err)
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		log.Printf("stdio: write response: %v", err)
	}
}
