// Package mcp exposes the credit ledger and dispatcher as MCP tools over a
// stdio JSON-RPC 2.0 transport, so editor assistants and launcher processes
// can share the same authoritative ledger as the HTTP service.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/emiliancristea/xeno-ai/pkg/audit"
	"github.com/emiliancristea/xeno-ai/pkg/dispatch"
	"github.com/emiliancristea/xeno-ai/pkg/ledger"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// Server is a minimal MCP server over stdio.
type Server struct {
	logger     *log.Logger
	ledger     *ledger.Ledger
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	auditor    *audit.Logger
	version    string
}

// New creates an MCP Server. The auditor may be nil.
func New(logger *log.Logger, led *ledger.Ledger, reg *registry.Registry, d *dispatch.Dispatcher, a *audit.Logger, version string) *Server {
	return &Server{
		logger:     logger,
		ledger:     led,
		registry:   reg,
		dispatcher: d,
		auditor:    a,
		version:    version,
	}
}

// Run reads JSON-RPC requests from r line-by-line and writes responses to w.
// It blocks until r is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(w, Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: CodeParseError, Message: "parse error"},
			})
			continue
		}

		resp := s.dispatch(ctx, &req)
		if resp == nil {
			// notification — no response
			continue
		}
		s.writeResponse(w, *resp)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: InitializeResult{
				ProtocolVersion: "2024-11-05",
				ServerInfo:      ServerInfo{Name: "xenoai", Version: s.version},
				Capabilities:    map[string]any{"tools": map[string]any{}},
			},
		}
	case "notifications/initialized":
		return nil
	case "tools/list":
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  ToolsListResult{Tools: allTools},
		}
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidParams, Message: "invalid params"},
		}
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result: ToolCallResult{
				Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("unknown tool: %s", params.Name)}},
				IsError: true,
			},
		}
	}

	result := handler(ctx, s, params.Arguments)
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

func (s *Server) writeResponse(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Warn("mcp marshal error", "err", err)
		return
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("mcp write error", "err", err)
	}
}
