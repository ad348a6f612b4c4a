package bridge

import (
	"testing"

	"sessionbridge/internal/host"
	"sessionbridge/internal/logging"
)

// adapterHarness wires a busAdapter to a registry with one socket peer
// whose queued frames are decoded back into events.
type adapterHarness struct {
	rt  *host.Runtime
	arb *arbiter
	reg *registry
	p   *peer
}

func newAdapterHarness(t *testing.T) *adapterHarness {
	t.Helper()
	rt := host.NewRuntime("sess")
	reg := newRegistry()
	p := newTestPeer(TransportSocket)
	reg.add(p)
	bc := newBroadcaster("sess", reg, logging.Discard())
	arb := newArbiter(rt, logging.Discard())
	adapter := newBusAdapter(rt, bc, arb, logging.Discard())
	if err := adapter.start(); err != nil {
		t.Fatalf("adapter start: %v", err)
	}
	t.Cleanup(adapter.stop)
	return &adapterHarness{rt: rt, arb: arb, reg: reg, p: p}
}

// drain decodes every queued frame on the capture peer.
func (h *adapterHarness) drain(t *testing.T) []Event {
	t.Helper()
	var events []Event
	for h.p.queue.len() > 0 {
		frame, ok := h.p.queue.pop()
		if !ok {
			break
		}
		ev, err := DecodeSocketFrame(frame)
		if err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		events = append(events, ev)
	}
	return events
}

func TestAdapter_MapsHostEvents(t *testing.T) {
	h := newAdapterHarness(t)

	h.rt.EmitThought("plan", "look around")
	h.rt.EmitContent("hello")
	h.rt.EmitToolCallRequest("t1", "run_shell_command", map[string]any{"command": "ls"})
	h.rt.EmitOutput([]byte("stderr text"), true)
	h.rt.EmitConsoleLog("warn", "careful")
	h.rt.EmitHookStart("pre_prompt")
	h.rt.EmitHookEnd("pre_prompt", true)

	events := h.drain(t)
	if len(events) != 7 {
		t.Fatalf("expected 7 events, got %d", len(events))
	}

	if events[0].Kind != KindThought || events[0].Subject != "plan" {
		t.Errorf("thought mapping: %+v", events[0])
	}
	if events[1].Kind != KindTextContent || events[1].Text != "hello" || events[1].IsStderr {
		t.Errorf("content mapping: %+v", events[1])
	}
	if events[2].Kind != KindToolCallUpdate || events[2].Status != StatusPending || events[2].ToolCallID != "t1" {
		t.Errorf("tool call request mapping: %+v", events[2])
	}
	if events[2].InputParameters["command"] != "ls" {
		t.Errorf("input parameters lost: %+v", events[2].InputParameters)
	}
	if events[3].Kind != KindTextContent || !events[3].IsStderr || events[3].Text != "stderr text" {
		t.Errorf("output mapping: %+v", events[3])
	}
	if events[4].Kind != KindConsoleLog || events[4].LogType != "warn" || events[4].Content != "careful" {
		t.Errorf("console log mapping: %+v", events[4])
	}
	if events[5].Kind != KindHook || events[5].Phase != "start" || events[5].Success != nil {
		t.Errorf("hook start mapping: %+v", events[5])
	}
	if events[6].Kind != KindHook || events[6].Phase != "end" || events[6].Success == nil || !*events[6].Success {
		t.Errorf("hook end mapping: %+v", events[6])
	}

	for i, ev := range events {
		if ev.TaskID != "sess" {
			t.Errorf("event %d missing session stamp: %q", i, ev.TaskID)
		}
	}
}

func TestAdapter_ConfirmationRequestTracksAndAnnounces(t *testing.T) {
	h := newAdapterHarness(t)

	h.rt.Bus().Publish(host.TopicToolConfirmationRequest, &host.ConfirmationRequest{
		CorrelationID: "c1",
		ToolName:      "run_shell_command",
		Kind:          host.ConfirmExec,
		Command:       "rm -rf build",
	})

	if h.arb.pendingCount() != 1 {
		t.Fatalf("expected 1 pending confirmation, got %d", h.arb.pendingCount())
	}

	events := h.drain(t)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Status != StatusPending || ev.ToolCallID != "c1" {
		t.Errorf("unexpected event: %+v", ev)
	}
	if ev.Confirmation == nil {
		t.Fatal("expected confirmation payload")
	}
	if len(ev.Confirmation.Options) != 2 ||
		ev.Confirmation.Options[0].ID != "proceed_once" ||
		ev.Confirmation.Options[1].ID != "cancel" {
		t.Errorf("unexpected options: %+v", ev.Confirmation.Options)
	}
	if ev.Confirmation.Details.Execute == nil || ev.Confirmation.Details.Execute.Command != "rm -rf build" {
		t.Errorf("unexpected details: %+v", ev.Confirmation.Details)
	}
}

func TestAdapter_ToolCallsUpdateBatch(t *testing.T) {
	h := newAdapterHarness(t)

	h.rt.Bus().Publish(host.TopicToolCallsUpdate, []host.ToolCall{
		{ID: "t1", Name: "read_file", Status: host.StatusSuccess, DisplayResult: "contents"},
		{ID: "t2", Name: "run_shell_command", Status: host.StatusError},
		{ID: "t3", Name: "run_shell_command", Status: host.StatusExecuting, LiveOutput: "building..."},
		{ID: "t4", Name: "read_file", Status: host.StatusSuccess},
		{ID: "t5", Name: "weird", Status: host.ToolStatus("Mystery")},
	})

	events := h.drain(t)
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}

	if events[0].Status != StatusSucceeded || events[0].Result.Output.Text != "contents" {
		t.Errorf("success mapping: %+v", events[0])
	}
	if events[1].Status != StatusFailed || events[1].Result.Error.Message != "Unknown error" {
		t.Errorf("error default mapping: %+v", events[1])
	}
	if events[2].Status != StatusExecuting || events[2].LiveContent != "building..." {
		t.Errorf("executing mapping: %+v", events[2])
	}
	if events[3].Result.Output.Text != "Success" {
		t.Errorf("success default mapping: %+v", events[3])
	}
	if events[4].Status != StatusPending {
		t.Errorf("unknown status must map to PENDING: %+v", events[4])
	}
}

func TestAdapter_UpdateDiscardsResolvedConfirmation(t *testing.T) {
	h := newAdapterHarness(t)

	h.rt.Bus().Publish(host.TopicToolConfirmationRequest, &host.ConfirmationRequest{
		CorrelationID: "c1",
		Kind:          host.ConfirmExec,
	})
	if h.arb.pendingCount() != 1 {
		t.Fatal("expected pending confirmation")
	}

	// Terminal answered: executor reports the call moving on.
	h.rt.Bus().Publish(host.TopicToolCallsUpdate, []host.ToolCall{
		{ID: "c1", Status: host.StatusExecuting},
	})

	if h.arb.pendingCount() != 0 {
		t.Error("expected pending entry discarded after status change")
	}
	if h.arb.resolve("c1", OptionProceedOnce, "peer") {
		t.Error("late peer answer must be a no-op")
	}
}

func TestMapStatus(t *testing.T) {
	cases := map[host.ToolStatus]Status{
		host.StatusAwaitingApproval: StatusPending,
		host.StatusExecuting:        StatusExecuting,
		host.StatusSuccess:          StatusSucceeded,
		host.StatusError:            StatusFailed,
		host.StatusCancelled:        StatusCancelled,
		host.ToolStatus("other"):    StatusPending,
	}
	for in, want := range cases {
		if got := mapStatus(in); got != want {
			t.Errorf("mapStatus(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestConfirmationDetails_Variants(t *testing.T) {
	edit := confirmationDetails(&host.ConfirmationRequest{
		Kind:       host.ConfirmEdit,
		FileName:   "main.go",
		FilePath:   "/src/main.go",
		OldContent: "a",
		NewContent: "b",
		Diff:       "-a\n+b",
	})
	if edit.FileEdit == nil || edit.FileEdit.FilePath != "/src/main.go" || edit.FileEdit.FormattedDiff != "-a\n+b" {
		t.Errorf("edit details: %+v", edit)
	}

	mcp := confirmationDetails(&host.ConfirmationRequest{
		Kind:       host.ConfirmMCP,
		ServerName: "files",
		ToolName:   "read",
	})
	if mcp.MCP == nil || mcp.MCP.ServerName != "files" || mcp.MCP.ToolName != "read" {
		t.Errorf("mcp details: %+v", mcp)
	}

	generic := confirmationDetails(&host.ConfirmationRequest{Kind: host.ConfirmationKind("??"), Title: "Dangerous"})
	if generic.Generic == nil || generic.Generic.Description != "Dangerous" {
		t.Errorf("generic details: %+v", generic)
	}

	fallback := confirmationDetails(&host.ConfirmationRequest{})
	if fallback.Generic == nil || fallback.Generic.Description != "Tool confirmation required" {
		t.Errorf("generic fallback: %+v", fallback)
	}
}
