// Package ai holds the Anthropic messages-API client used for coach replies
// and conversation titles.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/joewaine/best-self-ai/internal"
)

const (
	DefaultBaseURL   = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
	coachMaxTokens   = 300
	titleMaxTokens   = 30
	defaultTitle     = "New conversation"
)

type Client struct {
	BaseURL    string
	APIKey     string
	Model      string
	HTTPClient *http.Client
	logger     internal.Logger
}

func NewClient(apiKey, model string, logger internal.Logger) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		Model:      model,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

type CoachInput struct {
	Transcript  string
	OuraContext interface{}
	History     []internal.Message
	Username    string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system"`
	Messages  []chatMessage `json:"messages"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// Coach sends the transcript plus conversation history to Claude with a
// system prompt embedding the user's Oura context.
func (c *Client) Coach(ctx context.Context, in CoachInput) (string, error) {
	username := in.Username
	if username == "" {
		username = "friend"
	}
	ouraJSON, err := json.MarshalIndent(in.OuraContext, "", "  ")
	if err != nil || in.OuraContext == nil {
		ouraJSON = []byte("{}")
	}

	system := fmt.Sprintf(`You are %s's voice coach. Speak in short, audio-friendly sentences.
Use the provided Oura context to give actionable guidance.
No medical advice. If data is missing, say what you assumed.

Oura context (JSON):
%s

If the user says "morning briefing", respond with:
- 1 headline
- sleep score and readiness score
- training recommendation (recover/easy/moderate/hard)
- 2 recovery actions
- 1 nutrition focus
Keep it under 20 seconds.`, username, ouraJSON)

	messages := make([]chatMessage, 0, len(in.History)+1)
	for _, msg := range in.History {
		// System messages from the store are not replayed to the model.
		if msg.Role == internal.RoleUser || msg.Role == internal.RoleAssistant {
			messages = append(messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
		}
	}
	messages = append(messages, chatMessage{Role: "user", Content: in.Transcript})

	text, err := c.send(ctx, messagesRequest{
		Model:     c.Model,
		MaxTokens: coachMaxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// GenerateTitle asks for a 2-5 word title for a fresh conversation. Any API
// failure degrades to the default title rather than an error.
func (c *Client) GenerateTitle(ctx context.Context, userMessage, assistantReply string) (string, error) {
	text, err := c.send(ctx, messagesRequest{
		Model:     c.Model,
		MaxTokens: titleMaxTokens,
		System:    "Generate a very short title (2-5 words) for this conversation. No quotes, no punctuation at the end. Just the title.",
		Messages: []chatMessage{{
			Role:    "user",
			Content: fmt.Sprintf("User said: %q\n\nAssistant replied: %q\n\nTitle:", userMessage, assistantReply),
		}},
	})
	if err != nil {
		c.logger.Warnf("failed to generate title, using default: %v", err)
		return defaultTitle, nil
	}
	title := strings.TrimSpace(text)
	if title == "" {
		return defaultTitle, nil
	}
	if len(title) > 50 {
		title = title[:47] + "..."
	}
	return title, nil
}

func (c *Client) send(ctx context.Context, reqBody messagesRequest) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("missing ANTHROPIC_API_KEY")
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("claude error %d: %s", resp.StatusCode, body)
	}

	var out messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	for _, block := range out.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
