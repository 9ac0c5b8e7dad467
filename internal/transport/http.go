package transport

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"ghbridge/server/internal/jsonrpc"
	"ghbridge/server/internal/observability"
)

// statusRecorder captures the status code written to a ResponseWriter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// session represents an SSE connection session.
type session struct {
	id       string
	writer   http.ResponseWriter
	flusher  http.Flusher
	done     chan struct{}
	messages chan []byte
}

// httpTransport manages SSE/Inline transport for MCP.
type httpTransport struct {
	processor RequestProcessor
	sessions  map[string]*session
	mu        sync.RWMutex
}

// NewHTTP creates an http.Handler that manages SSE and inline JSON-RPC
// transport. It delegates request processing to the given
// RequestProcessor.
func NewHTTP(processor RequestProcessor) http.Handler {
	return &httpTransport{
		processor: processor,
		sessions:  make(map[string]*session),
	}
}

func (t *httpTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		t.handleSSE(w, r)
	case http.MethodPost:
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		t.handleMessage(rec, r)
		observability.LogRequest(r.Method, r.URL.Path, rec.status, time.Since(start).Milliseconds())
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (t *httpTransport) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	// SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sessionID := generateRequestID()

	s := &session{
		id:       sessionID,
		writer:   w,
		flusher:  flusher,
		done:     make(chan struct{}),
		messages: make(chan []byte, 100),
	}

	t.mu.Lock()
	t.sessions[sessionID] = s
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.sessions, sessionID)
		t.mu.Unlock()
		close(s.done)
	}()

	// Send endpoint event (MCP SSE protocol)
	fmt.Fprintf(w, "event: endpoint\ndata: /mcp?sessionId=%s\n\n", sessionID)
	flusher.Flush()
	log.Printf("SSE connection established, session=%s", sessionID)

	for {
		select {
		case msg := <-s.messages:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		case <-r.Context().Done():
			log.Printf("SSE connection closed, session=%s", sessionID)
			return
		}
	}
}

func (t *httpTransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		t.handleInlineMessage(w, r)
		return
	}

	t.mu.RLock()
	s, ok := t.sessions[sessionID]
	t.mu.RUnlock()

	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		t.sendToSession(s, nil, &jsonrpc.Error{Code: jsonrpc.ParseError, Message: "Parse error"})
		w.WriteHeader(http.StatusAccepted)
		return
	}

	log.Printf("Received request: method=%s id=%v session=%s", req.Method, req.ID, sessionID)

	ctx := WithRequestID(r.Context())
	result, rpcErr := t.processor.ProcessRequest(ctx, &req)
	if rpcErr != nil {
		t.sendToSession(s, req.ID, rpcErr)
	} else if req.ID != nil {
		t.sendResultToSession(s, req.ID, result)
	}

	w.WriteHeader(http.StatusAccepted)
}

func (t *httpTransport) handleInlineMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		resp := jsonrpc.Response{JSONRPC: "2.0", Error: &jsonrpc.Error{Code: jsonrpc.ParseError, Message: "Parse error"}}
		json.NewEncoder(w).Encode(resp)
		return
	}

	log.Printf("Received inline request: method=%s id=%v", req.Method, req.ID)

	ctx := WithRequestID(r.Context())
	result, rpcErr := t.processor.ProcessRequest(ctx, &req)

	w.Header().Set("Content-Type", "application/json")
	var resp jsonrpc.Response
	if rpcErr != nil {
		resp = jsonrpc.Response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
	} else {
		resp = jsonrpc.Response{JSONRPC: "2.0", ID: req.ID, Result: result}
	}
	json.NewEncoder(w).Encode(resp)
}

func (t *httpTransport) sendToSession(s *session, id interface{}, err *jsonrpc.Error) {
	resp := jsonrpc.Response{JSONRPC: "2.0", ID: id, Error: err}
	data, _ := json.Marshal(resp)
	select {
	case s.messages <- data:
	default:
		log.Printf("Session message buffer full")
	}
}

func (t *httpTransport) sendResultToSession(s *session, id interface{}, result interface{}) {
	resp := jsonrpc.Response{JSONRPC: "2.0", ID: id, Result: result}
	data, _ := json.Marshal(resp)
	select {
	case s.messages <- data:
	default:
		log.Printf("Session message buffer full")
	}
}
