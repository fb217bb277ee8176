package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

// invokePayload is the JSON body POSTed to a provider endpoint.
type invokePayload struct {
	Prompt        string         `json:"prompt"`
	Model         string         `json:"model,omitempty"`
	OperationType string         `json:"operation_type"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// invokeReply is the JSON body a provider endpoint answers with.
type invokeReply struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// invoke sends one request to a provider endpoint within the given timeout.
// Transport errors, timeouts, and non-200 responses all come back as
// *Failure so the dispatcher can fall through to the next provider.
func invoke(ctx context.Context, client *http.Client, cfg registry.ProviderConfig, timeout time.Duration, req models.AIRequest) (*models.ProviderResult, error) {
	body, err := json.Marshal(invokePayload{
		Prompt:        req.Prompt,
		Model:         req.Model,
		OperationType: req.OperationType,
		Parameters:    req.Parameters,
	})
	if err != nil {
		return nil, &Failure{Provider: cfg.ID, Reason: "encode request", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Failure{Provider: cfg.ID, Reason: "create request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	for k, v := range cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &Failure{Provider: cfg.ID, Reason: "call provider", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Failure{Provider: cfg.ID, Reason: "read response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Failure{Provider: cfg.ID, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var reply invokeReply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, &Failure{Provider: cfg.ID, Reason: "decode response", Err: err}
	}
	return &models.ProviderResult{Content: reply.Content, Metadata: reply.Metadata}, nil
}
