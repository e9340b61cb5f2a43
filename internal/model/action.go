package model

import (
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ActionType tags the incremental instructions issued by the command service.
type ActionType string

const (
	ActionCreateFolder  ActionType = "CREATE_FOLDER"
	ActionMoveBookmarks ActionType = "MOVE_BOOKMARKS"
)

// ErrUnknownAction is returned when an action payload carries an unrecognized type tag.
var ErrUnknownAction = errors.New("unknown action type")

// Action is one incremental instruction. The set of implementations is closed:
// CreateFolder and MoveBookmarks.
type Action interface {
	Type() ActionType
	isAction()
}

// CreateFolder asks for a new folder named Name under ParentID (nil = root).
// ParentID may hold a folder ID or a folder name.
type CreateFolder struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
}

// MoveBookmarks moves the listed bookmarks into TargetFolderID, which may be a
// folder ID, a folder name, or the name of a folder created earlier in the
// same batch.
type MoveBookmarks struct {
	BookmarkIDs    []string `json:"bookmarkIds"`
	TargetFolderID string   `json:"targetFolderId"`
}

func (CreateFolder) Type() ActionType  { return ActionCreateFolder }
func (MoveBookmarks) Type() ActionType { return ActionMoveBookmarks }

func (CreateFolder) isAction()  {}
func (MoveBookmarks) isAction() {}

// Validate checks the folder has a name.
func (a CreateFolder) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
	)
}

// Validate checks every listed bookmark ID is non-empty. An empty target is
// left for the reconciler to report.
func (a MoveBookmarks) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.BookmarkIDs, validation.Each(validation.Required)),
	)
}

// envelope is the untyped wire shape: {"type": "...", ...fields}.
type envelope struct {
	Type ActionType `json:"type"`
}

// DecodeAction turns an untyped action payload into a typed Action.
// Unrecognized tags yield ErrUnknownAction; invalid payloads a validation error.
func DecodeAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}
	return decodeAs(env.Type, data)
}

// DecodeToolCall decodes a tool invocation whose tool name maps to an action type.
func DecodeToolCall(name string, input []byte) (Action, error) {
	switch name {
	case "create_folder":
		return decodeAs(ActionCreateFolder, input)
	case "move_bookmarks":
		return decodeAs(ActionMoveBookmarks, input)
	default:
		return nil, fmt.Errorf("%w: tool %q", ErrUnknownAction, name)
	}
}

func decodeAs(t ActionType, data []byte) (Action, error) {
	switch t {
	case ActionCreateFolder:
		var a CreateFolder
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", t, err)
		}
		return a, nil
	case ActionMoveBookmarks:
		var a MoveBookmarks
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", t, err)
		}
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", t, err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, t)
	}
}

// EncodeAction renders an Action in the tagged wire shape accepted by DecodeAction.
func EncodeAction(a Action) ([]byte, error) {
	switch v := a.(type) {
	case CreateFolder:
		return json.Marshal(struct {
			Type ActionType `json:"type"`
			CreateFolder
		}{v.Type(), v})
	case MoveBookmarks:
		return json.Marshal(struct {
			Type ActionType `json:"type"`
			MoveBookmarks
		}{v.Type(), v})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownAction, a)
	}
}
