package bridge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sessionbridge/internal/jsonrpc"
)

// frameDelimiter terminates every record on the framed-socket transport.
const frameDelimiter byte = 0x00

// EncodeSocketFrame serializes an event for the framed-socket transport:
// the JSON object followed by a single null byte.
func EncodeSocketFrame(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return append(data, frameDelimiter), nil
}

// DecodeSocketFrame strips the record terminator and parses the event.
func DecodeSocketFrame(frame []byte) (Event, error) {
	frame = bytes.TrimSuffix(frame, []byte{frameDelimiter})
	var ev Event
	if err := json.Unmarshal(frame, &ev); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return ev, nil
}

// EncodeSSEFrame serializes an event for the SSE transport: the event in a
// JSON-RPC envelope keyed by its task id, wrapped as one SSE data record.
func EncodeSSEFrame(ev Event) ([]byte, error) {
	envelope := jsonrpc.Response{JSONRPC: "2.0", ID: ev.TaskID, Result: ev}
	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(data) + 8)
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// DecodeInbound parses a peer message. A trailing record terminator is
// tolerated so framed-socket clients can reuse their outbound framing.
func DecodeInbound(raw []byte) (jsonrpc.Request, error) {
	raw = bytes.TrimSuffix(raw, []byte{frameDelimiter})
	var req jsonrpc.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return jsonrpc.Request{}, fmt.Errorf("unmarshal request: %w", err)
	}
	return req, nil
}

// streamParams is the params shape of a "message/stream" request. Text is
// left raw: only a JSON string counts as a prompt.
type streamParams struct {
	Message struct {
		Content struct {
			Text json.RawMessage `json:"text"`
			Data struct {
				Kind             string `json:"kind"`
				ToolCallID       string `json:"tool_call_id"`
				SelectedOptionID string `json:"selected_option_id"`
			} `json:"data"`
		} `json:"content"`
	} `json:"message"`
}

// promptText returns the prompt string when content.text is a JSON string.
func (p streamParams) promptText() (string, bool) {
	raw := p.Message.Content.Text
	if len(raw) == 0 {
		return "", false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false
	}
	return text, true
}
