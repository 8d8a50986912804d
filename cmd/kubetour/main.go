package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kode4food/kubetour"
	"github.com/kode4food/kubetour/internal/config"
	"github.com/kode4food/kubetour/pkg/log"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMsg("%v", err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := config.NewDefaultConfig()
	var debug bool

	root := &cobra.Command{
		Use:           kubetour.Name,
		Short:         "Interactive tour of Kubernetes internals",
		Version:       kubetour.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadFromEnv(); err != nil {
				return err
			}
			if debug {
				cfg.LogLevel = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			setupLogging(cfg, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")

	root.AddCommand(serveCmd(cfg))
	root.AddCommand(playCmd())
	root.AddCommand(explainCmd(cfg))
	root.AddCommand(toursCmd())
	return root
}

// setupLogging installs the default logger. Terminal commands log to w so
// rendered output stays on stdout
func setupLogging(cfg *config.Config, w io.Writer) {
	level, _ := log.ParseLevel(cfg.LogLevel)
	env := os.Getenv("ENV")
	logger := log.NewWithWriter(w, kubetour.Name, env, kubetour.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)
}
