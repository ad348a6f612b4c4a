package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sessionbridge/internal/bridge"
	"sessionbridge/internal/logging"
	"sessionbridge/internal/shellhost"
)

// NewServeCmd runs the demonstration host: a child command under a pty,
// its session exposed through the bridge.
func NewServeCmd() *cobra.Command {
	var port int
	var queueCapacity int
	var sessionID string

	c := &cobra.Command{
		Use:   "serve [-- command args...]",
		Short: "Run a pty-hosted session and serve it to peers",
		Long: "Runs a command (default: $SHELL) under a pseudo-terminal and exposes the\n" +
			"session on the loopback interface. Peers connect over /ws or the SSE\n" +
			"endpoints, observe all output, and may inject input.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger := logging.FromContext(ctx)

			if !cmd.Flags().Changed("port") {
				port = viper.GetInt("port")
			}
			if !cmd.Flags().Changed("queue-capacity") {
				queueCapacity = viper.GetInt("queueCapacity")
			}

			h := shellhost.New(sessionID, args, logger)
			if err := h.Start(); err != nil {
				return err
			}
			defer h.Stop()

			if port == 0 {
				logger.Info("no port configured, bridge disabled")
				select {
				case <-ctx.Done():
				case <-h.Done():
				}
				return nil
			}

			srv := bridge.NewServer(bridge.Config{Port: port, QueueCapacity: queueCapacity}, h.Runtime(), logger)
			if err := srv.Start(); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
			case <-h.Done():
			}

			stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			return srv.Stop(stopCtx)
		},
	}

	c.Flags().IntVar(&port, "port", 41243, "loopback port to serve on (0 disables the bridge)")
	c.Flags().IntVar(&queueCapacity, "queue-capacity", 1024, "outbound frames buffered per peer")
	c.Flags().StringVar(&sessionID, "session-id", "", "session identifier (default: generated)")
	return c
}
