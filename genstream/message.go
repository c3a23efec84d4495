package genstream

import "encoding/json"

// MessageType is the tag discriminating generation stream records
type MessageType string

const (
	MessageTypeStatus            MessageType = "status"
	MessageTypeToolStarted       MessageType = "tool_started"
	MessageTypeToolCompleted     MessageType = "tool_completed"
	MessageTypeRecipeStart       MessageType = "recipe_start"
	MessageTypeRecipeName        MessageType = "recipe_name"
	MessageTypeRecipeDescription MessageType = "recipe_description"
	MessageTypeRecipeMetadata    MessageType = "recipe_metadata"
	MessageTypeIngredientsStart  MessageType = "ingredients_start"
	MessageTypeIngredient        MessageType = "ingredient"
	MessageTypeInstructionsStart MessageType = "instructions_start"
	MessageTypeInstruction       MessageType = "instruction"
	MessageTypeNutrition         MessageType = "nutrition"
	MessageTypeComplete          MessageType = "complete"
	MessageTypeError             MessageType = "error"
)

// RecordPrefix tags meaningful lines on the wire. Lines without it (blank
// keep-alives included) are valid filler. Producers frame records with it;
// the dispatcher strips it.
const RecordPrefix = "data: "

// envelope is the superset of fields a record payload may carry. Content is
// kept raw because its shape depends on the tag.
type envelope struct {
	Type        MessageType     `json:"type"`
	Message     string          `json:"message,omitempty"`
	Tool        string          `json:"tool,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	Step        int             `json:"step,omitempty"`
	Content     json.RawMessage `json:"content,omitempty"`
	RecipeID    int64           `json:"recipe_id,omitempty"`
	Length      *int            `json:"length,omitempty"`
}

// ToolEvent describes a producer-side tool run surfaced to the UI
type ToolEvent struct {
	Name        string `json:"name"`
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// CompleteEvent carries the terminal success payload
type CompleteEvent struct {
	RecipeID int64  `json:"recipe_id"`
	Message  string `json:"message"`
	Length   int    `json:"length,omitempty"`
}

// contentString extracts the content field when it is a JSON string,
// returning "" for anything else.
func (e *envelope) contentString() string {
	var s string
	if err := json.Unmarshal(e.Content, &s); err != nil {
		return ""
	}
	return s
}

// contentInto decodes a structured content value into dst. It reports false
// when content is absent or is a plain string, in which case the record is
// skipped.
func (e *envelope) contentInto(dst any) bool {
	if len(e.Content) == 0 {
		return false
	}
	var s string
	if json.Unmarshal(e.Content, &s) == nil {
		return false
	}
	return json.Unmarshal(e.Content, dst) == nil
}
