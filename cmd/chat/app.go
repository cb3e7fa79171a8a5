package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/andrew/ragchat/pkg/backend"
	"github.com/andrew/ragchat/pkg/config"
	"github.com/andrew/ragchat/pkg/console"
	"github.com/andrew/ragchat/pkg/locale"
	"github.com/andrew/ragchat/pkg/logging"
	"github.com/andrew/ragchat/pkg/transcript"
	"github.com/andrew/ragchat/pkg/tui"
	"github.com/andrew/ragchat/pkg/widget"
)

type app struct {
	cfg      config.Config
	ui       string
	logger   zerolog.Logger
	closeLog func() error
	text     *locale.Catalog
	client   *backend.HTTPClient

	stdin  io.Reader
	stdout io.Writer
}

func newApp(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, flags, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		ui:     config.UIConsole,
		stdin:  cmd.InOrStdin(),
		stdout: cmd.OutOrStdout(),
	}
	// Subcommands are one-shot and always print to the console
	if !cmd.HasParent() {
		a.ui = resolveUI(cfg.UI)
	}

	// The TUI owns the terminal, so it only logs to a file
	stderr := cmd.ErrOrStderr()
	if a.ui == config.UITUI {
		stderr = io.Discard
	}
	a.logger, a.closeLog, err = logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: true,
	}, stderr)
	if err != nil {
		return nil, err
	}

	a.text, err = locale.New(cfg.Locale)
	if err != nil {
		a.closeLog()
		return nil, err
	}

	a.client = backend.NewHTTPClient(cfg.BaseURL,
		backend.WithTimeout(cfg.Timeout),
		backend.WithLogger(a.logger.With().Str("component", "backend").Logger()),
	)

	a.logger.Debug().
		Str("base_url", a.client.BaseURL()).
		Str("locale", a.text.Language().String()).
		Str("ui", a.ui).
		Msg("widget configured")
	return a, nil
}

func applyFlags(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) error {
	changed := cmd.Flags().Changed

	if changed("base-url") {
		cfg.BaseURL = flags.baseURL
	}
	if changed("locale") {
		cfg.Locale = flags.locale
	}
	if changed("ui") {
		cfg.UI = flags.ui
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = flags.logFile
	}
	if changed("timeout") {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if flags.noMarkdown {
		cfg.Markdown = false
	}
	if flags.noColor {
		cfg.NoColor = true
	}
	return nil
}

func resolveUI(ui string) string {
	ui = strings.ToLower(ui)
	if ui != config.UIAuto {
		return ui
	}
	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return config.UITUI
	}
	return config.UIConsole
}

func (a *app) close() {
	if err := a.closeLog(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log: %v\n", err)
	}
}

func (a *app) mount(input widget.Input, messages widget.Messages, dialogs widget.Dialogs) (*widget.Controller, *widget.Bus, error) {
	ctrl, err := widget.New(input, messages, a.client, dialogs,
		widget.WithCatalog(a.text),
		widget.WithLogger(a.logger.With().Str("component", "widget").Logger()),
	)
	if err != nil {
		return nil, nil, err
	}

	bus := widget.NewBus()
	ctrl.Bind(bus)
	return ctrl, bus, nil
}

func (a *app) newConsole(opts console.Options) *console.Console {
	opts.NoColor = opts.NoColor || a.cfg.NoColor
	return console.New(a.stdin, a.stdout, transcript.New(), a.text, opts)
}

func (a *app) runInteractive(ctx context.Context) error {
	if a.ui == config.UITUI {
		tr := transcript.New()
		host := tui.NewHost(tr, a.text, tui.Options{Markdown: a.cfg.Markdown})
		_, bus, err := a.mount(host, tr, host)
		if err != nil {
			return err
		}
		return host.Run(ctx, bus)
	}

	con := a.newConsole(console.Options{})
	_, bus, err := a.mount(con, con, con)
	if err != nil {
		return err
	}
	if err := con.Run(ctx, bus); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *app) runSend(ctx context.Context, args []string) error {
	con := a.newConsole(console.Options{EchoUser: true})
	ctrl, _, err := a.mount(con, con, con)
	if err != nil {
		return err
	}

	con.SetInput(strings.Join(args, " "))
	return ctrl.SendMessage(ctx)
}

func (a *app) runClear(ctx context.Context, yes bool) error {
	con := a.newConsole(console.Options{AssumeYes: yes})
	ctrl, _, err := a.mount(con, con, con)
	if err != nil {
		return err
	}
	return ctrl.ClearDatabase(ctx)
}
