package bridge

import (
	"fmt"

	"sessionbridge/internal/host"
	"sessionbridge/internal/logging"
)

// busAdapter subscribes to the host's activity stream and message bus and
// turns everything into canonical events for the broadcaster. Host
// callbacks may arrive on any goroutine; the adapter only classifies and
// enqueues, it never blocks the host.
type busAdapter struct {
	h   host.Host
	bc  *broadcaster
	arb *arbiter
	log logging.Logger

	cancels []func()
}

func newBusAdapter(h host.Host, bc *broadcaster, arb *arbiter, log logging.Logger) *busAdapter {
	return &busAdapter{h: h, bc: bc, arb: arb, log: log}
}

// start attaches all subscriptions. Partial failure keeps whatever
// succeeded: the bridge degrades rather than refusing to run.
func (a *busAdapter) start() error {
	cancel, err := a.h.SubscribeEvents(a.handleHostEvent)
	if err != nil {
		a.log.Error("subscribe host events", "error", err)
	} else {
		a.cancels = append(a.cancels, cancel)
	}

	cancel, err = a.h.SubscribeBus(host.TopicToolConfirmationRequest, a.handleConfirmationRequest)
	if err != nil {
		a.log.Error("subscribe confirmation requests", "error", err)
	} else {
		a.cancels = append(a.cancels, cancel)
	}

	cancel, err = a.h.SubscribeBus(host.TopicToolCallsUpdate, a.handleToolCallsUpdate)
	if err != nil {
		a.log.Error("subscribe tool call updates", "error", err)
	} else {
		a.cancels = append(a.cancels, cancel)
	}

	if len(a.cancels) == 0 {
		return fmt.Errorf("no host subscriptions established")
	}
	return nil
}

// stop detaches every live subscription.
func (a *busAdapter) stop() {
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
}

func (a *busAdapter) handleHostEvent(ev host.Event) {
	switch ev.Kind {
	case host.EventThought:
		a.bc.broadcast(Event{Kind: KindThought, Subject: ev.Subject, Description: ev.Description})
	case host.EventContent:
		a.bc.broadcast(Event{Kind: KindTextContent, Text: ev.Content})
	case host.EventToolCallRequest:
		if ev.ToolCall == nil {
			return
		}
		a.bc.broadcast(Event{
			Kind:            KindToolCallUpdate,
			ToolCallID:      ev.ToolCall.ID,
			ToolName:        ev.ToolCall.Name,
			Status:          StatusPending,
			InputParameters: ev.ToolCall.Args,
		})
	case host.EventOutput:
		a.bc.broadcast(Event{Kind: KindTextContent, Text: string(ev.Chunk), IsStderr: ev.IsStderr})
	case host.EventConsoleLog:
		a.bc.broadcast(Event{Kind: KindConsoleLog, LogType: ev.LogLevel, Content: ev.LogContent})
	case host.EventHookStart:
		a.bc.broadcast(Event{Kind: KindHook, HookName: ev.HookName, Phase: "start"})
	case host.EventHookEnd:
		success := ev.HookSuccess
		a.bc.broadcast(Event{Kind: KindHook, HookName: ev.HookName, Phase: "end", Success: &success})
	default:
		a.log.Debug("unknown host event kind", "kind", string(ev.Kind))
	}
}

// handleConfirmationRequest tracks the pending approval and announces it to
// peers as a PENDING tool call carrying the confirmation payload.
func (a *busAdapter) handleConfirmationRequest(payload any) {
	req, ok := payload.(*host.ConfirmationRequest)
	if !ok {
		a.log.Debug("unexpected confirmation request payload", "payload", fmt.Sprintf("%T", payload))
		return
	}
	a.arb.track(req.CorrelationID)
	a.bc.broadcast(Event{
		Kind:       KindToolCallUpdate,
		ToolCallID: req.CorrelationID,
		ToolName:   req.ToolName,
		Status:     StatusPending,
		Confirmation: &ConfirmationRequest{
			Options: confirmationOptions(),
			Details: confirmationDetails(req),
		},
	})
}

// handleToolCallsUpdate relays an executor batch, one event per tool call.
// A call whose status no longer maps to PENDING needs no arbitration; its
// pending entry (if any) is discarded so late answers become no-ops.
func (a *busAdapter) handleToolCallsUpdate(payload any) {
	calls, ok := payload.([]host.ToolCall)
	if !ok {
		a.log.Debug("unexpected tool calls payload", "payload", fmt.Sprintf("%T", payload))
		return
	}
	for _, call := range calls {
		status := mapStatus(call.Status)
		if status != StatusPending {
			a.arb.discard(call.ID)
		}
		ev := Event{
			Kind:            KindToolCallUpdate,
			ToolCallID:      call.ID,
			ToolName:        call.Name,
			Status:          status,
			InputParameters: call.Args,
			LiveContent:     call.LiveOutput,
		}
		switch status {
		case StatusSucceeded:
			text := call.DisplayResult
			if text == "" {
				text = "Success"
			}
			ev.Result = &Result{Output: &ResultOutput{Text: text}}
		case StatusFailed:
			msg := call.Error
			if msg == "" {
				msg = "Unknown error"
			}
			ev.Result = &Result{Error: &ResultError{Message: msg}}
		}
		a.bc.broadcast(ev)
	}
}

// mapStatus translates executor states to the peer-facing set. Anything
// unrecognized reads as still pending.
func mapStatus(s host.ToolStatus) Status {
	switch s {
	case host.StatusAwaitingApproval:
		return StatusPending
	case host.StatusExecuting:
		return StatusExecuting
	case host.StatusSuccess:
		return StatusSucceeded
	case host.StatusError:
		return StatusFailed
	case host.StatusCancelled:
		return StatusCancelled
	default:
		return StatusPending
	}
}

// confirmationDetails maps the host's confirmation record to the wire
// detail variant.
func confirmationDetails(req *host.ConfirmationRequest) ConfirmationDetails {
	switch req.Kind {
	case host.ConfirmExec:
		return ConfirmationDetails{Execute: &ExecuteDetails{Command: req.Command}}
	case host.ConfirmEdit:
		return ConfirmationDetails{FileEdit: &FileEditDetails{
			FileName:      req.FileName,
			FilePath:      req.FilePath,
			OldContent:    req.OldContent,
			NewContent:    req.NewContent,
			FormattedDiff: req.Diff,
		}}
	case host.ConfirmMCP:
		return ConfirmationDetails{MCP: &MCPDetails{ServerName: req.ServerName, ToolName: req.ToolName}}
	default:
		title := req.Title
		if title == "" {
			title = "Tool confirmation required"
		}
		return ConfirmationDetails{Generic: &GenericDetails{Description: title}}
	}
}
