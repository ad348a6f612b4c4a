package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sessionbridge/internal/logging"
)

var (
	globalConfigFile string
	globalLogFormat  string
	globalLogLevel   string
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sessionbridge",
		Short:         "Bridge a live agent session to local network peers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(); err != nil {
				return err
			}
			logger, err := logging.New(logging.Options{
				Level:  globalLogLevel,
				Format: globalLogFormat,
			})
			if err != nil {
				return err
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&globalConfigFile, "config", "", "config file (default: ./sessionbridge.yaml, fallback: ~/.sessionbridge/sessionbridge.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalLogFormat, "log-format", "text", "log format: text|json")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "info", "log level: debug|info|warn|error")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewWatchCmd())

	return rootCmd
}

// loadConfig wires viper: explicit file, else the conventional locations,
// plus SESSIONBRIDGE_* environment overrides. A missing file is fine.
func loadConfig() error {
	viper.SetDefault("port", 41243)
	viper.SetDefault("queueCapacity", 1024)

	viper.SetEnvPrefix("sessionbridge")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if globalConfigFile != "" {
		viper.SetConfigFile(globalConfigFile)
	} else {
		viper.SetConfigName("sessionbridge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.sessionbridge")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if globalConfigFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
