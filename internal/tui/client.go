package tui

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"

	"sessionbridge/internal/bridge"
	"sessionbridge/internal/jsonrpc"
)

// Client is the watch UI's connection to the bridge's framed-socket
// endpoint.
type Client struct {
	conn   *websocket.Conn
	events chan bridge.Event
	errs   chan error
}

// Dial connects to ws://addr/ws and starts reading the event feed.
func Dial(addr string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	if err != nil {
		return nil, fmt.Errorf("dial bridge: %w", err)
	}
	c := &Client{
		conn:   conn,
		events: make(chan bridge.Event, 64),
		errs:   make(chan error, 1),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			c.errs <- err
			return
		}
		ev, err := bridge.DecodeSocketFrame(msg)
		if err != nil {
			continue
		}
		c.events <- ev
	}
}

// Events is the inbound feed; closed when the connection drops.
func (c *Client) Events() <-chan bridge.Event { return c.events }

// Errs delivers the terminal read error, if any.
func (c *Client) Errs() <-chan error { return c.errs }

// SendPrompt injects a prompt into the shared session.
func (c *Client) SendPrompt(text string) error {
	return c.send(map[string]any{
		"message": map[string]any{
			"content": map[string]any{"text": text},
		},
	})
}

// SendConfirmation answers a pending tool confirmation.
func (c *Client) SendConfirmation(toolCallID, optionID string) error {
	return c.send(map[string]any{
		"message": map[string]any{
			"content": map[string]any{
				"data": map[string]any{
					"kind":               "TOOL_CALL_CONFIRMATION",
					"tool_call_id":       toolCallID,
					"selected_option_id": optionID,
				},
			},
		},
	})
}

func (c *Client) send(params any) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	req := jsonrpc.Request{JSONRPC: "2.0", Method: "message/stream", Params: raw}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}
