package assessment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"github.com/example/bridgetwin/internal/telemetry"
)

// SystemInstruction is sent with every chat-completion request.
const SystemInstruction = "You are a structural engineering AI expert. " +
	"Give a domain-expert structural assessment that is concise, professional and actionable. " +
	"Escalate to a critical warning if vibration exceeds 0.3g or tilt exceeds 2 degrees."

const maxErrorBody = 512

// ChatClient sends a record to a language model and returns its free-text assessment.
type ChatClient interface {
	Complete(ctx context.Context, credential string, record telemetry.TelemetryRecord) (string, error)
}

// OpenAIClient talks to an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	baseURL string
	model   string
	timeout time.Duration
	client  *http.Client
	parser  fastjson.ParserPool
}

// NewOpenAIClient creates a client. timeout bounds each call; zero disables it.
func NewOpenAIClient(baseURL, model string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// UserPrompt renders the per-record instructions sent as the user message.
func UserPrompt(record telemetry.TelemetryRecord) (string, error) {
	data, err := telemetry.Marshal(record)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Analyze the following bridge sensor data and provide a safety assessment.\n"+
		"Data: %s\n\n"+
		"If values are high (Vibration > %.1fg, Tilt > %.0f degrees), issue a critical warning.\n"+
		"Otherwise, confirm safety. Keep it concise, professional, and actionable.",
		data, VibrationLimitG, TiltLimitDegrees), nil
}

// Complete performs one chat-completion call. Every failure is an *ExternalCallError.
func (c *OpenAIClient) Complete(ctx context.Context, credential string, record telemetry.TelemetryRecord) (string, error) {
	prompt, err := UserPrompt(record)
	if err != nil {
		return "", &ExternalCallError{Err: fmt.Errorf("encode record: %w", err)}
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemInstruction},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", &ExternalCallError{Err: fmt.Errorf("encode request: %w", err)}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ExternalCallError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ExternalCallError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ExternalCallError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	p := c.parser.Get()
	defer c.parser.Put(p)

	if resp.StatusCode != http.StatusOK {
		msg := ""
		if v, perr := p.ParseBytes(raw); perr == nil {
			msg = string(v.GetStringBytes("error", "message"))
		}
		if msg == "" {
			msg = truncate(string(raw), maxErrorBody)
		}
		return "", &ExternalCallError{StatusCode: resp.StatusCode, Err: errors.New(msg)}
	}

	v, err := p.ParseBytes(raw)
	if err != nil {
		return "", &ExternalCallError{StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	content := strings.TrimSpace(string(v.GetStringBytes("choices", "0", "message", "content")))
	if content == "" {
		return "", &ExternalCallError{StatusCode: resp.StatusCode, Err: errors.New("malformed response: no message content")}
	}
	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
