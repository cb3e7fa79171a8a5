package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	baseURL    string
	locale     string
	ui         string
	logLevel   string
	logFile    string
	timeout    string
	noMarkdown bool
	noColor    bool
}

func main() {
	// Initialize context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
	}()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "ragchat",
		Short:         "Chat with a document assistant backend from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()
			return a.runInteractive(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML config file")
	pf.StringVar(&flags.baseURL, "base-url", "", "Backend base URL (default http://localhost:5000)")
	pf.StringVar(&flags.locale, "locale", "", "Language of widget messages: am or en")
	pf.StringVar(&flags.ui, "ui", "", "Interface: auto, tui or console")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flags.logFile, "log-file", "", "Write logs to this file")
	pf.StringVar(&flags.timeout, "timeout", "", "Per-request timeout, e.g. 30s (default none)")
	pf.BoolVar(&flags.noMarkdown, "no-markdown", false, "Show bot replies as plain text")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newSendCmd(flags), newClearCmd(flags))
	return root
}

func newSendCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send <message>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()
			return a.runSend(cmd.Context(), args)
		},
	}
}

func newClearCmd(flags *rootFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear-db",
		Short: "Clear the backend's document database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.close()
			return a.runClear(cmd.Context(), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
