package verbalizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// AnthropicHandler is a minimal hand-rolled REST client implementing
// Handler against Anthropic's messages API. It never sends bbox
// coordinates, fingerprints, or images — only the structured Context
// fields.
type AnthropicHandler struct {
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
	baseURL   string
}

// NewAnthropicHandler constructs an AnthropicHandler.
func NewAnthropicHandler(apiKey, model string, maxTokens int) *AnthropicHandler {
	return &AnthropicHandler{
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   "https://api.anthropic.com/v1",
	}
}

type anthropicRequest struct {
	Model     string         `json:"model"`
	Messages  []anthropicMsg `json:"messages"`
	MaxTokens int            `json:"max_tokens"`
	System    string         `json:"system,omitempty"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

const systemPrompt = "You announce visual changes in a video call for a screen-reader user. " +
	"Describe only the structured event you are given: its type, its position on a 3x3 grid, and layout changes. " +
	"Never mention appearance, gender, age, emotion, race, or any identifying detail. " +
	"Reply with one short sentence and nothing else."

// Verbalize implements Handler.
func (h *AnthropicHandler) Verbalize(ctx context.Context, llmCtx Context) (string, error) {
	userMsg := fmt.Sprintf(
		"event_type=%s position=%q kind=%s from_layout=%s to_layout=%s participant_count=%d hand_raised_count=%d screen_share_active=%t layout=%s verbosity=%s",
		llmCtx.EventType, llmCtx.Position, llmCtx.Kind, llmCtx.FromLayout, llmCtx.ToLayout,
		llmCtx.ParticipantCount, llmCtx.HandRaisedCount, llmCtx.ScreenShareActive, llmCtx.Layout, llmCtx.Verbosity,
	)

	apiReq := anthropicRequest{
		Model:     h.model,
		MaxTokens: h.maxTokens,
		System:    systemPrompt,
		Messages:  []anthropicMsg{{Role: "user", Content: userMsg}},
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", h.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := h.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	var text string
	for _, c := range apiResp.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	return text, nil
}
