// Package ai talks to the Anthropic messages API to propose a reorganization
// of a library or turn a free-text command into folder actions.
package ai

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

	"github.com/nikbrunner/bmsort/internal/logger"
	"github.com/nikbrunner/bmsort/internal/model"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	betaHeader     = "structured-outputs-2025-11-13"
	defaultModel   = "claude-sonnet-4-20250514"

	suggestMaxTokens = 8192
	commandMaxTokens = 1024

	// maxCommandTurns bounds the tool-use conversation of one command.
	maxCommandTurns = 8
)

var (
	ErrNoAPIKey        = errors.New("no Anthropic API key configured")
	ErrAPIRequest      = errors.New("API request failed")
	ErrInvalidResponse = errors.New("invalid API response")
)

// Client handles communication with the Anthropic API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	log        logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel selects the model. An empty name keeps the default.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a new AI client.
// Returns ErrNoAPIKey if apiKey is empty.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Nop()
	}
	return c, nil
}

// SuggestStructure asks for a complete reorganization of lib. userPrompt is
// optional guidance from the user. The returned proposal has passed boundary
// validation; individual assignments may still fail to apply.
func (c *Client) SuggestStructure(ctx context.Context, lib *model.Library, userPrompt string) (*model.Proposal, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: suggestMaxTokens,
		Messages: []apiMessage{
			{Role: "user", Content: buildSuggestPrompt(BuildContext(lib), userPrompt)},
		},
		OutputFormat: &outputFormat{
			Type:   "json_schema",
			Schema: proposalSchema,
		},
	}

	apiResp, err := c.send(ctx, reqBody)
	if err != nil {
		return nil, err
	}

	text := textOf(apiResp.Content)
	if text == "" {
		return nil, fmt.Errorf("%w: no text content", ErrInvalidResponse)
	}

	var proposal model.Proposal
	if err := json.Unmarshal([]byte(text), &proposal); err != nil {
		return nil, fmt.Errorf("%w: unmarshal proposal: %v", ErrInvalidResponse, err)
	}
	if err := proposal.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.log.Debug("proposal received",
		logger.Int("folders", len(proposal.Folders)),
		logger.Int("assignments", len(proposal.Assignments)),
	)
	return &proposal, nil
}

// ProcessCommand turns a free-text command into actions. onAction is called
// once per decoded tool call, in order, before the next call is decoded; it
// may be called zero times. The returned string is the model's final text
// acknowledgement. Tool calls that fail to decode are reported back to the
// model as errors and never reach onAction.
func (c *Client) ProcessCommand(ctx context.Context, lib *model.Library, text string, onAction func(model.Action)) (string, error) {
	messages := []apiMessage{{Role: "user", Content: text}}
	system := buildCommandSystem(BuildContext(lib))

	var reply string
	for turn := 0; turn < maxCommandTurns; turn++ {
		apiResp, err := c.send(ctx, apiRequest{
			Model:     c.model,
			MaxTokens: commandMaxTokens,
			System:    system,
			Messages:  messages,
			Tools:     commandTools,
		})
		if err != nil {
			return "", err
		}
		reply = textOf(apiResp.Content)

		var results []contentBlock
		for _, block := range apiResp.Content {
			if block.Type != "tool_use" {
				continue
			}
			results = append(results, c.dispatch(block, onAction))
		}

		if apiResp.StopReason != "tool_use" || len(results) == 0 {
			return reply, nil
		}

		messages = append(messages,
			apiMessage{Role: "assistant", Content: apiResp.Content},
			apiMessage{Role: "user", Content: results},
		)
	}

	c.log.Warn("command stopped after too many tool turns", logger.Int("turns", maxCommandTurns))
	return reply, nil
}

func (c *Client) dispatch(block contentBlock, onAction func(model.Action)) contentBlock {
	result := contentBlock{Type: "tool_result", ToolUseID: block.ID}

	action, err := model.DecodeToolCall(block.Name, block.Input)
	if err != nil {
		c.log.Warn("ignoring tool call",
			logger.String("tool", block.Name),
			logger.Error(err),
		)
		result.Content = err.Error()
		result.IsError = true
		return result
	}

	if onAction != nil {
		onAction(action)
	}
	result.Content = "ok"
	return result
}

// send posts one request and decodes the response envelope.
func (c *Client) send(ctx context.Context, reqBody apiRequest) (*apiResponse, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	if reqBody.OutputFormat != nil {
		req.Header.Set("anthropic-beta", betaHeader)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAPIRequest, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrAPIRequest, resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("%w: unmarshal response: %v", ErrInvalidResponse, err)
	}
	return &apiResp, nil
}

func textOf(blocks []contentBlock) string {
	var parts []string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			parts = append(parts, b.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func buildSuggestPrompt(context, userPrompt string) string {
	guidance := ""
	if strings.TrimSpace(userPrompt) != "" {
		guidance = fmt.Sprintf("\nUser guidance: %s\n", userPrompt)
	}

	return fmt.Sprintf(`Propose a complete folder structure for these bookmarks.

%s%s
Instructions:
- List every folder of the new structure as a root-relative path such as "Work/Projects/AI"
- List parent folders before their children
- Assign every bookmark by its id to exactly one folder path from your list
- Prefer a few well-named folders over many tiny ones
- Explain the structure briefly in reasoning`, context, guidance)
}

func buildCommandSystem(context string) string {
	return fmt.Sprintf(`You organize the user's bookmarks. Use the create_folder and move_bookmarks
tools to carry out their request, then reply with one short sentence describing what you did.

- Refer to bookmarks by their id
- A folder may be targeted by id or by name; folders you create can be targeted by their name
- Create a folder before moving bookmarks into it
- If nothing needs to change, do not call any tool

%s`, context)
}
