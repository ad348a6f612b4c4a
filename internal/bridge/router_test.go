package bridge

import (
	"testing"

	"sessionbridge/internal/host"
	"sessionbridge/internal/logging"
)

func newTestRouter(t *testing.T) (*inputRouter, *host.Runtime, *[]string) {
	t.Helper()
	rt := host.NewRuntime("s")
	prompts := &[]string{}
	rt.OnInput(func(text string) { *prompts = append(*prompts, text) })
	arb := newArbiter(rt, logging.Discard())
	return newInputRouter(rt, arb, logging.Discard()), rt, prompts
}

func TestRouter_PromptInjection(t *testing.T) {
	r, _, prompts := newTestRouter(t)

	r.handleRaw([]byte(`{"jsonrpc":"2.0","method":"message/stream","params":{"message":{"content":{"text":"list files"}}}}`), "peer-1")

	if len(*prompts) != 1 || (*prompts)[0] != "list files" {
		t.Errorf("expected [list files], got %v", *prompts)
	}
}

func TestRouter_ConfirmationResponse(t *testing.T) {
	r, rt, _ := newTestRouter(t)

	var responses []host.ConfirmationResponse
	_, err := rt.SubscribeBus(host.TopicToolConfirmationResponse, func(p any) {
		responses = append(responses, p.(host.ConfirmationResponse))
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	r.arb.track("c9")

	r.handleRaw([]byte(`{"jsonrpc":"2.0","method":"message/stream","params":{"message":{"content":{"data":{"kind":"TOOL_CALL_CONFIRMATION","tool_call_id":"c9","selected_option_id":"proceed_once"}}}}}`), "peer-1")

	if len(responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(responses))
	}
	if responses[0].CorrelationID != "c9" || !responses[0].Confirmed {
		t.Errorf("unexpected response: %+v", responses[0])
	}
}

func TestRouter_Drops(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"malformed", `{{{`},
		{"wrong method", `{"jsonrpc":"2.0","method":"tasks/cancel","params":{}}`},
		{"no content", `{"jsonrpc":"2.0","method":"message/stream","params":{"message":{}}}`},
		{"unknown data kind", `{"jsonrpc":"2.0","method":"message/stream","params":{"message":{"content":{"data":{"kind":"SOMETHING_ELSE"}}}}}`},
		{"non-string text", `{"jsonrpc":"2.0","method":"message/stream","params":{"message":{"content":{"text":{"nested":true}}}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _, prompts := newTestRouter(t)
			r.handleRaw([]byte(tc.raw), "peer-1")
			if len(*prompts) != 0 {
				t.Errorf("expected no injected prompts, got %v", *prompts)
			}
		})
	}
}
