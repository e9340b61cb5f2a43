package ai

import "encoding/json"

// apiRequest represents the Anthropic API request body.
type apiRequest struct {
	Model        string        `json:"model"`
	MaxTokens    int           `json:"max_tokens"`
	System       string        `json:"system,omitempty"`
	Messages     []apiMessage  `json:"messages"`
	Tools        []tool        `json:"tools,omitempty"`
	OutputFormat *outputFormat `json:"output_format,omitempty"`
}

// apiMessage content is either a plain string or a list of content blocks.
type apiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type outputFormat struct {
	Type   string     `json:"type"`
	Schema schemaProp `json:"schema"`
}

type schemaProp struct {
	Type                 string                `json:"type"`
	Description          string                `json:"description,omitempty"`
	Items                *schemaProp           `json:"items,omitempty"`
	Properties           map[string]schemaProp `json:"properties,omitempty"`
	Required             []string              `json:"required,omitempty"`
	AdditionalProperties *bool                 `json:"additionalProperties,omitempty"`
}

type tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema schemaProp `json:"input_schema"`
}

// apiResponse represents the Anthropic API response body.
type apiResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// tool_use
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`

	// tool_result
	ToolUseID string `json:"tool_use_id,omitempty"`
	Content   string `json:"content,omitempty"`
	IsError   bool   `json:"is_error,omitempty"`
}

func object(props map[string]schemaProp, required ...string) schemaProp {
	closed := false
	return schemaProp{
		Type:                 "object",
		Properties:           props,
		Required:             required,
		AdditionalProperties: &closed,
	}
}

func arrayOf(item schemaProp) schemaProp {
	return schemaProp{Type: "array", Items: &item}
}

// proposalSchema mirrors model.Proposal.
var proposalSchema = object(map[string]schemaProp{
	"folders": arrayOf(object(map[string]schemaProp{
		"path":        {Type: "string", Description: `Root-relative folder path such as "Work/Projects/AI"`},
		"description": {Type: "string"},
	}, "path", "description")),
	"assignments": arrayOf(object(map[string]schemaProp{
		"bookmarkId": {Type: "string"},
		"folderPath": {Type: "string"},
	}, "bookmarkId", "folderPath")),
	"reasoning": {Type: "string"},
}, "folders", "assignments", "reasoning")

// commandTools mirror model.CreateFolder and model.MoveBookmarks.
var commandTools = []tool{
	{
		Name:        "create_folder",
		Description: "Create a new bookmark folder. parentId may be a folder id or the name of an existing folder; omit it for the top level.",
		InputSchema: object(map[string]schemaProp{
			"name":     {Type: "string"},
			"parentId": {Type: "string"},
		}, "name"),
	},
	{
		Name:        "move_bookmarks",
		Description: "Move bookmarks into a folder. targetFolderId may be a folder id, a folder name, or the name of a folder created earlier in this command.",
		InputSchema: object(map[string]schemaProp{
			"bookmarkIds":    arrayOf(schemaProp{Type: "string"}),
			"targetFolderId": {Type: "string"},
		}, "bookmarkIds", "targetFolderId"),
	},
}
