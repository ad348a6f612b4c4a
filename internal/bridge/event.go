// Package bridge exposes a live agent session to external peers over a
// null-byte-framed websocket and a server-sent-event HTTP stream. Every
// participant — the terminal and every connected peer — sees the same
// event feed and can inject prompts or answer tool confirmations.
package bridge

// Kind tags a canonical event.
type Kind string

const (
	KindThought        Kind = "THOUGHT"
	KindTextContent    Kind = "TEXT_CONTENT"
	KindToolCallUpdate Kind = "TOOL_CALL_UPDATE"
	KindConsoleLog     Kind = "CONSOLE_LOG"
	KindHook           Kind = "HOOK"
)

// Status is the peer-facing lifecycle state of a tool call.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusExecuting Status = "EXECUTING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

// Event is the canonical record fanned out to peers. Kind selects which
// fields beyond TaskID are populated; the wire form is the JSON encoding
// of this struct.
type Event struct {
	Kind   Kind   `json:"kind"`
	TaskID string `json:"taskId"`

	// KindThought
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`

	// KindTextContent
	Text     string `json:"text,omitempty"`
	IsStderr bool   `json:"isStderr,omitempty"`

	// KindToolCallUpdate
	ToolCallID      string               `json:"tool_call_id,omitempty"`
	ToolName        string               `json:"tool_name,omitempty"`
	Status          Status               `json:"status,omitempty"`
	InputParameters map[string]any       `json:"input_parameters,omitempty"`
	LiveContent     string               `json:"live_content,omitempty"`
	Result          *Result              `json:"result,omitempty"`
	Confirmation    *ConfirmationRequest `json:"confirmation_request,omitempty"`

	// KindConsoleLog
	LogType string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`

	// KindHook
	HookName string `json:"hookName,omitempty"`
	Phase    string `json:"phase,omitempty"`
	Success  *bool  `json:"success,omitempty"`
}

// Result carries the terminal outcome of a tool call: exactly one of
// Output or Error is set.
type Result struct {
	Output *ResultOutput `json:"output,omitempty"`
	Error  *ResultError  `json:"error,omitempty"`
}

type ResultOutput struct {
	Text string `json:"text"`
}

type ResultError struct {
	Message string `json:"message"`
}

// ConfirmationRequest is the peer-facing form of a pending tool approval.
type ConfirmationRequest struct {
	Options []ConfirmationOption `json:"options"`
	Details ConfirmationDetails  `json:"details"`
}

type ConfirmationOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConfirmationDetails holds exactly one populated variant.
type ConfirmationDetails struct {
	Execute  *ExecuteDetails  `json:"execute_details,omitempty"`
	FileEdit *FileEditDetails `json:"file_edit_details,omitempty"`
	MCP      *MCPDetails      `json:"mcp_details,omitempty"`
	Generic  *GenericDetails  `json:"generic_details,omitempty"`
}

type ExecuteDetails struct {
	Command string `json:"command"`
}

type FileEditDetails struct {
	FileName      string `json:"file_name"`
	FilePath      string `json:"file_path"`
	OldContent    string `json:"old_content"`
	NewContent    string `json:"new_content"`
	FormattedDiff string `json:"formatted_diff"`
}

type MCPDetails struct {
	ServerName string `json:"server_name"`
	ToolName   string `json:"tool_name"`
}

type GenericDetails struct {
	Description string `json:"description"`
}

// Option ids peers may select. OptionProceedOnce is the only affirmative
// answer; anything else, known or not, counts as cancel.
const (
	OptionProceedOnce = "proceed_once"
	OptionCancel      = "cancel"
)

// confirmationOptions is the fixed option set attached to every request.
func confirmationOptions() []ConfirmationOption {
	return []ConfirmationOption{
		{ID: OptionProceedOnce, Name: "Allow Once"},
		{ID: OptionCancel, Name: "Cancel"},
	}
}
