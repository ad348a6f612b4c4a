package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sessionbridge/internal/tui"
)

// NewWatchCmd attaches the TUI client to a running bridge.
func NewWatchCmd() *cobra.Command {
	var port int

	c := &cobra.Command{
		Use:   "watch",
		Short: "Attach a terminal client to a bridged session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = viper.GetInt("port")
			}
			if port == 0 {
				return fmt.Errorf("a port is required")
			}
			return tui.Run(fmt.Sprintf("127.0.0.1:%d", port))
		},
	}

	c.Flags().IntVar(&port, "port", 41243, "bridge port to connect to")
	return c
}
