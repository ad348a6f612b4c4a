package bridge

import (
	"github.com/a2aproject/a2a-go/a2a"
)

// ProtocolVersion is the agent-to-agent protocol revision the bridge speaks.
const ProtocolVersion = "0.3.0"

// extensionURI identifies the interactive-session extension this server
// requires from its clients.
const extensionURI = "urn:sessionbridge:extension:interactive-session:v1"

// agentCard describes the bridged session to discovering clients.
func agentCard(baseURL string) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:            "Session Bridge",
		Description:     "Live bridge into an interactive agent session: streams model output, tool activity and logs, and accepts prompts and tool confirmations from connected peers.",
		URL:             baseURL + "/",
		Version:         "1.0.0",
		ProtocolVersion: ProtocolVersion,
		Capabilities: a2a.AgentCapabilities{
			Streaming: true,
			Extensions: []a2a.AgentExtension{
				{
					URI:         extensionURI,
					Description: "Shared interactive session: every peer observes the full event feed and may inject input or resolve tool confirmations.",
					Required:    true,
				},
			},
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []a2a.AgentSkill{
			{
				ID:          "interactive-session",
				Name:        "Interactive Session",
				Description: "Observe and drive the host's live conversational session.",
				Tags:        []string{"session", "streaming"},
				InputModes:  []string{"text"},
				OutputModes: []string{"text"},
			},
		},
	}
}
