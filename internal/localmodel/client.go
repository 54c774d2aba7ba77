// Package localmodel talks to the on-box model endpoint (e.g. an Ollama
// server) used for semantic classification (C2) and PII extraction (C4).
// Nothing sent through this client ever reaches the cloud model.
package localmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/neurorouter"
)

// Config holds the local model endpoint parameters.
type Config struct {
	Endpoint    string // base URL, e.g. http://localhost:11434
	Model       string
	Timeout     time.Duration
	Temperature float64
	NumPredict  int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	if c.NumPredict <= 0 {
		c.NumPredict = 512
	}
	return c
}

// Client is a thin HTTP client over a local completion/chat endpoint.
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a Client for the given config.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64  `json:"temperature"`
	NumPredict  int      `json:"num_predict"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Complete issues a single-shot completion request against /api/generate.
// stop are optional stop sequences (used by the PII extractor's
// completion-style prompt).
func (c *Client) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			NumPredict:  c.cfg.NumPredict,
			Stop:        stop,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	resp, err := c.post(ctx, "/api/generate", body)
	if err != nil {
		return "", err
	}
	var gr generateResponse
	if err := json.Unmarshal(resp, &gr); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	return gr.Response, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  generateOptions `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Chat issues a chat-style request against /api/chat with a system prompt
// and a single user turn — used by the semantic detector and the
// ResolveModel S3 direct-response path.
func (c *Client) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			NumPredict:  c.cfg.NumPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	resp, err := c.post(ctx, "/api/chat", body)
	if err != nil {
		return "", err
	}
	var cr chatResponse
	if err := json.Unmarshal(resp, &cr); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	return cr.Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.Endpoint, "/")+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("local model call timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("local model request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, neurorouter.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("local model HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// StripThink removes any <think>...</think> reasoning blocks a small model
// may prepend. If only a closing </think> is present (the opening tag was
// truncated by the model's own context window), truncates to the text
// after the last occurrence.
func StripThink(s string) string {
	for {
		start := strings.Index(s, "<think>")
		if start == -1 {
			break
		}
		end := strings.Index(s[start:], "</think>")
		if end == -1 {
			s = s[:start]
			break
		}
		s = s[:start] + s[start+end+len("</think>"):]
	}
	if idx := strings.LastIndex(s, "</think>"); idx != -1 {
		s = s[idx+len("</think>"):]
	}
	return strings.TrimSpace(s)
}
