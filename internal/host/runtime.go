package host

import (
	"sync"

	"github.com/google/uuid"
)

// Host is what the bridge requires from the embedding agent.
type Host interface {
	// SessionID is the opaque identifier assigned at startup; immutable
	// for the process lifetime.
	SessionID() string
	// SubscribeEvents attaches fn to the activity stream.
	SubscribeEvents(fn func(Event)) (cancel func(), err error)
	// SubscribeBus attaches fn to a message-bus topic.
	SubscribeBus(topic string, fn func(any)) (cancel func(), err error)
	// PublishBus publishes payload on a message-bus topic.
	PublishBus(topic string, payload any) error
	// InjectInput feeds text to the agent as if typed at the terminal.
	InjectInput(text string)
}

var _ Host = (*Runtime)(nil)

// Runtime is an in-process Host. The demo host drives it from a pty child
// process; tests drive it directly.
type Runtime struct {
	id     string
	events *Stream
	bus    *Bus

	mu      sync.RWMutex
	onInput func(string)
}

// NewRuntime creates a Runtime with the given session id; an empty id gets
// a generated one.
func NewRuntime(id string) *Runtime {
	if id == "" {
		id = uuid.NewString()
	}
	return &Runtime{id: id, events: NewStream(), bus: NewBus()}
}

func (r *Runtime) SessionID() string { return r.id }

func (r *Runtime) SubscribeEvents(fn func(Event)) (func(), error) {
	return r.events.Subscribe(fn), nil
}

func (r *Runtime) SubscribeBus(topic string, fn func(any)) (func(), error) {
	return r.bus.Subscribe(topic, fn), nil
}

func (r *Runtime) PublishBus(topic string, payload any) error {
	r.bus.Publish(topic, payload)
	return nil
}

// InjectInput hands text to the handler registered with OnInput. Input from
// remote peers and from the terminal arrive through the same path, so the
// handler cannot tell them apart.
func (r *Runtime) InjectInput(text string) {
	r.mu.RLock()
	fn := r.onInput
	r.mu.RUnlock()
	if fn != nil {
		fn(text)
	}
}

// OnInput registers the consumer of injected input.
func (r *Runtime) OnInput(fn func(string)) {
	r.mu.Lock()
	r.onInput = fn
	r.mu.Unlock()
}

// Events exposes the activity stream to the host side for publishing.
func (r *Runtime) Events() *Stream { return r.events }

// Bus exposes the message bus to the host side.
func (r *Runtime) Bus() *Bus { return r.bus }

// Emit helpers for the host side of the contract.

func (r *Runtime) EmitThought(subject, description string) {
	r.events.Publish(Event{Kind: EventThought, Subject: subject, Description: description})
}

func (r *Runtime) EmitContent(text string) {
	r.events.Publish(Event{Kind: EventContent, Content: text})
}

func (r *Runtime) EmitToolCallRequest(id, name string, args map[string]any) {
	r.events.Publish(Event{Kind: EventToolCallRequest, ToolCall: &ToolCallRequest{ID: id, Name: name, Args: args}})
}

func (r *Runtime) EmitOutput(chunk []byte, isStderr bool) {
	r.events.Publish(Event{Kind: EventOutput, Chunk: chunk, IsStderr: isStderr})
}

func (r *Runtime) EmitConsoleLog(level, content string) {
	r.events.Publish(Event{Kind: EventConsoleLog, LogLevel: level, LogContent: content})
}

func (r *Runtime) EmitHookStart(name string) {
	r.events.Publish(Event{Kind: EventHookStart, HookName: name})
}

func (r *Runtime) EmitHookEnd(name string, success bool) {
	r.events.Publish(Event{Kind: EventHookEnd, HookName: name, HookSuccess: success})
}
