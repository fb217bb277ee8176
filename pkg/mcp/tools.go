package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emiliancristea/xeno-ai/pkg/models"
)

// toolHandler handles one tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

var toolHandlers = map[string]toolHandler{
	"xeno_balance":      handleBalance,
	"xeno_history":      handleHistory,
	"xeno_grant":        handleGrant,
	"xeno_dispatch":     handleDispatch,
	"xeno_providers":    handleProviders,
	"xeno_audit_search": handleAuditSearch,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "xeno_balance",
		Description: "Show the current credit balance.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "xeno_history",
		Description: "Show the most recent credit transactions, newest first.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of transactions to return (default 50)",
				},
			},
		},
	},
	{
		Name:        "xeno_grant",
		Description: "Add credits to the balance.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"amount"},
			"properties": map[string]any{
				"amount": map[string]any{
					"type":        "integer",
					"description": "Number of credits to add (must be positive)",
				},
				"reason": map[string]any{
					"type":        "string",
					"description": "Reason tag recorded on the transaction (default credit_purchase)",
				},
			},
		},
	},
	{
		Name:        "xeno_dispatch",
		Description: "Dispatch an AI request through the provider chain, settling its credit cost on success.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"operation_type", "prompt"},
			"properties": map[string]any{
				"operation_type": map[string]any{
					"type":        "string",
					"description": "Operation type, e.g. code_completion, chat, image_generate",
				},
				"prompt": map[string]any{
					"type":        "string",
					"description": "The prompt to send to the provider",
				},
				"model": map[string]any{
					"type":        "string",
					"description": "Model hint passed through to the provider (optional)",
				},
				"chain": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Ordered provider IDs to try (optional, defaults to the configured chain)",
				},
			},
		},
	},
	{
		Name:        "xeno_providers",
		Description: "List configured providers with availability and billing policy.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
	{
		Name:        "xeno_audit_search",
		Description: "Search the dispatch audit trail with optional filters.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"provider": map[string]any{
					"type":        "string",
					"description": "Filter by provider ID (optional)",
				},
				"outcome": map[string]any{
					"type":        "string",
					"description": "Filter by outcome: success, provider_failed, insufficient_credits, settlement_failed (optional)",
				},
				"since": map[string]any{
					"type":        "string",
					"description": "Start date in YYYY-MM-DD format (optional)",
				},
			},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

func handleBalance(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatBalance(s.ledger.Balance()))
}

type historyArgs struct {
	Limit int `json:"limit"`
}

func handleHistory(_ context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	args := historyArgs{Limit: 50}
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	return textResult(formatTransactions(s.ledger.History(args.Limit)))
}

type grantArgs struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

func handleGrant(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args grantArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Reason == "" {
		args.Reason = "credit_purchase"
	}

	tx, err := s.ledger.AddCredits(ctx, args.Amount, args.Reason)
	if err != nil {
		return errorResult("Error adding credits: " + err.Error())
	}
	return textResult(formatGrant(tx, s.ledger.Balance()))
}

type dispatchArgs struct {
	OperationType string   `json:"operation_type"`
	Prompt        string   `json:"prompt"`
	Model         string   `json:"model"`
	Chain         []string `json:"chain"`
}

func handleDispatch(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args dispatchArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.OperationType == "" {
		return errorResult("operation_type is required")
	}

	resp := s.dispatcher.Dispatch(ctx, models.AIRequest{
		Prompt:        args.Prompt,
		OperationType: args.OperationType,
		Model:         args.Model,
	}, args.Chain)

	if !resp.Success {
		return errorResult(formatDispatch(resp, s.ledger.Balance()))
	}
	return textResult(formatDispatch(resp, s.ledger.Balance()))
}

func handleProviders(_ context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	return textResult(formatProviders(s.registry))
}

type auditSearchArgs struct {
	Provider string `json:"provider"`
	Outcome  string `json:"outcome"`
	Since    string `json:"since"`
}

func handleAuditSearch(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	if s.auditor == nil {
		return textResult("Audit logging is not configured.")
	}
	var args auditSearchArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}

	opts := models.AuditQueryOpts{
		Provider: args.Provider,
		Outcome:  args.Outcome,
		Limit:    50,
	}
	if args.Since != "" {
		t, err := time.Parse("2006-01-02", args.Since)
		if err != nil {
			return errorResult("Invalid since date (use YYYY-MM-DD): " + err.Error())
		}
		opts.Since = t
	}

	entries, err := s.auditor.Query(ctx, opts)
	if err != nil {
		return errorResult("Error searching audit trail: " + err.Error())
	}
	return textResult(formatAuditEntries(entries))
}
