// Package host defines the narrow surface the bridge consumes from the
// embedding agent: its event stream, its message bus, its input-injection
// hook, and the session identity. Runtime is a concrete in-process
// implementation used by the demo host and by tests.
package host

// EventKind tags a host event.
type EventKind string

const (
	EventThought         EventKind = "thought"
	EventContent         EventKind = "content"
	EventToolCallRequest EventKind = "tool_call_request"
	EventOutput          EventKind = "output"
	EventConsoleLog      EventKind = "console_log"
	EventHookStart       EventKind = "hook_start"
	EventHookEnd         EventKind = "hook_end"
)

// Event is one item on the host's activity stream. Exactly the fields for
// its Kind are populated.
type Event struct {
	Kind EventKind

	// EventThought
	Subject     string
	Description string

	// EventContent
	Content string

	// EventToolCallRequest
	ToolCall *ToolCallRequest

	// EventOutput
	Chunk    []byte
	IsStderr bool

	// EventConsoleLog
	LogLevel   string // info, warn, error, debug
	LogContent string

	// EventHookStart / EventHookEnd
	HookName    string
	HookSuccess bool // EventHookEnd only
}

// ToolCallRequest is the model asking for a tool invocation, before any
// approval has happened.
type ToolCallRequest struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolStatus is the executor-side lifecycle state of a tool call.
type ToolStatus string

const (
	StatusAwaitingApproval ToolStatus = "AwaitingApproval"
	StatusExecuting        ToolStatus = "Executing"
	StatusSuccess          ToolStatus = "Success"
	StatusError            ToolStatus = "Error"
	StatusCancelled        ToolStatus = "Cancelled"
)

// ToolCall is one entry of a TOOL_CALLS_UPDATE batch.
type ToolCall struct {
	ID            string
	Name          string
	Status        ToolStatus
	Args          map[string]any
	LiveOutput    string
	DisplayResult string
	Error         string
}

// ConfirmationKind selects which detail variant a confirmation carries.
type ConfirmationKind string

const (
	ConfirmExec ConfirmationKind = "exec"
	ConfirmEdit ConfirmationKind = "edit"
	ConfirmMCP  ConfirmationKind = "mcp"
)

// ConfirmationRequest is the executor asking for approval of a tool call.
// CorrelationID doubles as the tool call id on the wire.
type ConfirmationRequest struct {
	CorrelationID string
	ToolName      string
	Kind          ConfirmationKind
	Title         string

	// ConfirmExec
	Command string

	// ConfirmEdit
	FileName   string
	FilePath   string
	OldContent string
	NewContent string
	Diff       string

	// ConfirmMCP
	ServerName string
}

// ConfirmationResponse resolves a pending confirmation on the bus.
type ConfirmationResponse struct {
	CorrelationID string
	Confirmed     bool
}

// Bus topics the bridge knows about.
const (
	TopicToolConfirmationRequest  = "TOOL_CONFIRMATION_REQUEST"
	TopicToolCallsUpdate          = "TOOL_CALLS_UPDATE"
	TopicToolConfirmationResponse = "TOOL_CONFIRMATION_RESPONSE"
)
