package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emiliancristea/xeno-ai/pkg/models"
	"github.com/emiliancristea/xeno-ai/pkg/registry"
)

func TestCloudAdapterInvoke(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q, want provider API key", got)
		}
		if got := r.Header.Get("X-Region"); got != "eu" {
			t.Errorf("x-region = %q, want extra header forwarded", got)
		}

		var payload struct {
			Prompt        string `json:"prompt"`
			OperationType string `json:"operation_type"`
			Model         string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Prompt != "a sunset" || payload.OperationType != models.OpImageGenerate {
			t.Errorf("payload = %+v", payload)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"content":  "https://cdn.example/img.png",
			"metadata": map[string]any{"width": 1024},
		})
	}))
	defer upstream.Close()

	adapter := NewCloud(registry.ProviderConfig{
		ID:       "xeno_cloud",
		Endpoint: upstream.URL,
		APIKey:   "sk-test",
		Headers:  map[string]string{"X-Region": "eu"},
		Billed:   true,
	})

	result, err := adapter.Invoke(context.Background(), models.AIRequest{
		Prompt:        "a sunset",
		OperationType: models.OpImageGenerate,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "https://cdn.example/img.png" {
		t.Errorf("content = %s", result.Content)
	}
	if result.Metadata["width"] != float64(1024) {
		t.Errorf("metadata = %v", result.Metadata)
	}
}

func TestCloudAdapterServerError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	adapter := NewCloud(registry.ProviderConfig{ID: "xeno_cloud", Endpoint: upstream.URL})

	_, err := adapter.Invoke(context.Background(), models.AIRequest{Prompt: "hi", OperationType: models.OpChat})
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want *Failure", err)
	}
	if failure.Provider != "xeno_cloud" {
		t.Errorf("failure provider = %s, want xeno_cloud", failure.Provider)
	}
}

func TestCloudAdapterMalformedResponse(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer upstream.Close()

	adapter := NewCloud(registry.ProviderConfig{ID: "xeno_cloud", Endpoint: upstream.URL})

	_, err := adapter.Invoke(context.Background(), models.AIRequest{Prompt: "hi", OperationType: models.OpChat})
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want *Failure", err)
	}
}

func TestCloudAdapterCancelledContext(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"content": "late"})
	}))
	defer upstream.Close()

	adapter := NewCloud(registry.ProviderConfig{ID: "xeno_cloud", Endpoint: upstream.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Invoke(ctx, models.AIRequest{Prompt: "hi", OperationType: models.OpChat})
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want *Failure for cancelled context", err)
	}
}

func TestLocalAdapterNoAuthHeader(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("authorization = %q, want none for a local provider", got)
		}
		json.NewEncoder(w).Encode(map[string]any{"content": "local reply"})
	}))
	defer upstream.Close()

	adapter := NewLocal(registry.ProviderConfig{ID: "ollama", Endpoint: upstream.URL})

	result, err := adapter.Invoke(context.Background(), models.AIRequest{Prompt: "hi", OperationType: models.OpChat})
	if err != nil {
		t.Fatal(err)
	}
	if result.Content != "local reply" {
		t.Errorf("content = %s", result.Content)
	}
}

func TestBuild(t *testing.T) {
	reg := registry.New()
	reg.Configure("xeno_cloud", registry.ProviderConfig{Endpoint: "https://cloud.example", Billed: true})
	reg.Configure("ollama", registry.ProviderConfig{Endpoint: "http://localhost:11434"})

	adapters := Build(reg)
	if len(adapters) != 2 {
		t.Fatalf("built %d adapters, want 2", len(adapters))
	}
	if _, ok := adapters["xeno_cloud"].(*CloudAdapter); !ok {
		t.Errorf("xeno_cloud adapter is %T, want *CloudAdapter", adapters["xeno_cloud"])
	}
	if _, ok := adapters["ollama"].(*LocalAdapter); !ok {
		t.Errorf("ollama adapter is %T, want *LocalAdapter", adapters["ollama"])
	}
	if got := adapters["xeno_cloud"].ID(); got != "xeno_cloud" {
		t.Errorf("adapter id = %s, want xeno_cloud", got)
	}
}
