package bridge

import (
	"encoding/json"

	"sessionbridge/internal/host"
	"sessionbridge/internal/logging"
)

// methodMessageStream is the only inbound method peers may call.
const methodMessageStream = "message/stream"

// dataKindConfirmation marks a confirmation response in content.data.
const dataKindConfirmation = "TOOL_CALL_CONFIRMATION"

// inputRouter classifies inbound peer messages. A text prompt goes to the
// host's input hook; a confirmation response goes to the arbiter; anything
// else is dropped. Bad frames never cost the peer its connection.
type inputRouter struct {
	h   host.Host
	arb *arbiter
	log logging.Logger
}

func newInputRouter(h host.Host, arb *arbiter, log logging.Logger) *inputRouter {
	return &inputRouter{h: h, arb: arb, log: log}
}

// handleRaw parses and routes one inbound frame from the given peer.
func (r *inputRouter) handleRaw(raw []byte, source string) {
	req, err := DecodeInbound(raw)
	if err != nil {
		r.log.Debug("dropping malformed frame", "source", source, "error", err)
		return
	}
	if req.Method != methodMessageStream {
		r.log.Debug("dropping unsupported method", "source", source, "method", req.Method)
		return
	}

	var params streamParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		r.log.Debug("dropping unparseable params", "source", source, "error", err)
		return
	}

	if text, ok := params.promptText(); ok {
		r.h.InjectInput(text)
		return
	}

	data := params.Message.Content.Data
	if data.Kind == dataKindConfirmation {
		r.arb.resolve(data.ToolCallID, data.SelectedOptionID, source)
		return
	}

	r.log.Debug("dropping unrecognized content", "source", source)
}
