package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/emiliancristea/xeno-ai/pkg/dispatch"
	"github.com/emiliancristea/xeno-ai/pkg/ledger"
	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/provider"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// stubAdapter serves canned provider responses for tool tests.
type stubAdapter struct {
	id      string
	content string
}

func (s *stubAdapter) ID() string { return s.id }

func (s *stubAdapter) Invoke(context.Context, models.AIRequest) (*models.ProviderResult, error) {
	return &models.ProviderResult{Content: s.content}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	led, err := ledger.New(100, ledger.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}

	reg := registry.New()
	reg.Configure("ollama", registry.ProviderConfig{Endpoint: "http://localhost:11434"})
	adapters := map[string]provider.Adapter{
		"ollama": &stubAdapter{id: "ollama", content: "stub reply"},
	}

	logger := log.New(io.Discard)
	d := dispatch.New(logger, led, reg, adapters, nil)
	return New(logger, led, reg, d, nil, "test")
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	line = append(line, '\n')

	var out bytes.Buffer
	if err := srv.Run(context.Background(), bytes.NewReader(line), &out); err != nil {
		t.Fatal(err)
	}

	var resp Response
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v\nraw: %s", err, out.String())
	}
	return resp
}

func toolCall(t *testing.T, srv *Server, name, args string) ToolCallResult {
	t.Helper()

	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: json.RawMessage(args)})
	if err != nil {
		t.Fatal(err)
	}
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/call",
		Params:  params,
	})
	if resp.Error != nil {
		t.Fatalf("unexpected rpc error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolCallResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	return result
}

func resultText(t *testing.T, result ToolCallResult) string {
	t.Helper()
	if len(result.Content) != 1 || result.Content[0].Type != "text" {
		t.Fatalf("content = %+v, want single text block", result.Content)
	}
	return result.Content[0].Text
}

func TestInitialize(t *testing.T) {
	srv := newTestServer(t)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result InitializeResult
	json.Unmarshal(data, &result)

	if result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocol version = %s, want 2024-11-05", result.ProtocolVersion)
	}
	if result.ServerInfo.Name != "xenoai" {
		t.Errorf("server name = %s, want xenoai", result.ServerInfo.Name)
	}
}

func TestToolsList(t *testing.T) {
	srv := newTestServer(t)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`2`),
		Method:  "tools/list",
	})

	if resp.Error != nil {
		t.Fatalf("unexpected error: %v", resp.Error)
	}

	data, _ := json.Marshal(resp.Result)
	var result ToolsListResult
	json.Unmarshal(data, &result)

	if len(result.Tools) != 6 {
		t.Errorf("got %d tools, want 6", len(result.Tools))
	}

	names := make(map[string]bool)
	for _, tool := range result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"xeno_balance", "xeno_history", "xeno_grant", "xeno_dispatch", "xeno_providers", "xeno_audit_search"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

func TestUnknownMethod(t *testing.T) {
	srv := newTestServer(t)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`3`),
		Method:  "resources/list",
	})

	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("error = %v, want method not found", resp.Error)
	}
}

func TestBalanceTool(t *testing.T) {
	srv := newTestServer(t)

	result := toolCall(t, srv, "xeno_balance", `{}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	if got := resultText(t, result); got != "Credit balance: 100" {
		t.Errorf("text = %q", got)
	}
}

func TestGrantTool(t *testing.T) {
	srv := newTestServer(t)

	result := toolCall(t, srv, "xeno_grant", `{"amount": 25}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "New balance: 125") {
		t.Errorf("text = %q, want new balance 125", text)
	}

	result = toolCall(t, srv, "xeno_grant", `{"amount": -1}`)
	if !result.IsError {
		t.Error("expected tool error for negative amount")
	}
}

func TestHistoryTool(t *testing.T) {
	srv := newTestServer(t)

	result := toolCall(t, srv, "xeno_history", `{}`)
	if got := resultText(t, result); got != "No transactions recorded." {
		t.Errorf("text = %q", got)
	}

	srv.ledger.AddCredits(context.Background(), 10, "topup")
	result = toolCall(t, srv, "xeno_history", `{"limit": 5}`)
	if got := resultText(t, result); !strings.Contains(got, "topup") {
		t.Errorf("text = %q, want topup entry", got)
	}
}

func TestDispatchTool(t *testing.T) {
	srv := newTestServer(t)

	result := toolCall(t, srv, "xeno_dispatch",
		`{"operation_type": "chat", "prompt": "hi", "chain": ["ollama"]}`)
	if result.IsError {
		t.Fatalf("unexpected tool error: %+v", result)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "ollama") || !strings.Contains(text, "stub reply") {
		t.Errorf("text = %q", text)
	}

	result = toolCall(t, srv, "xeno_dispatch", `{"prompt": "hi"}`)
	if !result.IsError {
		t.Error("expected tool error for missing operation_type")
	}

	result = toolCall(t, srv, "xeno_dispatch",
		`{"operation_type": "chat", "prompt": "hi", "chain": ["ghost"]}`)
	if !result.IsError {
		t.Error("expected tool error when no provider can serve")
	}
}

func TestProvidersTool(t *testing.T) {
	srv := newTestServer(t)

	result := toolCall(t, srv, "xeno_providers", `{}`)
	text := resultText(t, result)
	if !strings.Contains(text, "ollama") || !strings.Contains(text, "free") {
		t.Errorf("text = %q", text)
	}
}

func TestAuditSearchToolUnconfigured(t *testing.T) {
	srv := newTestServer(t)

	result := toolCall(t, srv, "xeno_audit_search", `{}`)
	if got := resultText(t, result); got != "Audit logging is not configured." {
		t.Errorf("text = %q", got)
	}
}

func TestUnknownTool(t *testing.T) {
	srv := newTestServer(t)

	result := toolCall(t, srv, "xeno_teleport", `{}`)
	if !result.IsError {
		t.Error("expected tool error for unknown tool")
	}
}
