package models

// Operation types with a fixed credit cost. Unknown types are billed the
// minimum cost rather than dispatched for free.
const (
	OpCodeCompletion = "code_completion"
	OpChat           = "chat"
	OpImageGenerate  = "image_generate"
	OpImageEnhance   = "image_enhance"
	OpObjectRemoval  = "object_removal"
	OpAudioProcess   = "audio_process"
	OpVoiceClone     = "voice_clone"
	OpVideoStabilize = "video_stabilize"
	OpVideoAutoedit  = "video_autoedit"
)

// AIRequest describes one AI operation. It is created by the caller and
// never mutated once dispatch begins.
type AIRequest struct {
	Prompt        string         `json:"prompt"`
	OperationType string         `json:"operation_type"`
	Model         string         `json:"model,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
}

// ProviderResult is the raw output of a single provider invocation, before
// any billing has happened.
type ProviderResult struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AIResponse is the terminal result of a dispatch. Immutable once returned.
type AIResponse struct {
	Success     bool           `json:"success"`
	Content     string         `json:"content,omitempty"`
	CreditsUsed int64          `json:"credits_used"`
	Error       string         `json:"error,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	RequestID   string         `json:"request_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
