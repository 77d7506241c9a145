package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intent-resolver/internal/application/port/output"
	"intent-resolver/internal/di"
	"intent-resolver/internal/infrastructure/console"
	"intent-resolver/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

// pageFlags are shared by every command that needs a page.
type pageFlags struct {
	html       string
	url        string
	configPath string
	headed     bool
	logLevel   string
	logStderr  bool
	quiet      bool
	timeout    time.Duration
}

func (f *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.html, "html", "", "static HTML file to resolve against (dry run)")
	cmd.Flags().StringVar(&f.url, "url", "", "page to open in a browser")
	cmd.Flags().StringVar(&f.configPath, "config", "", "resolver YAML config (default $"+env.EnvConfigPath+")")
	cmd.Flags().BoolVar(&f.headed, "headed", false, "show the browser window")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().BoolVar(&f.logStderr, "log-stderr", false, "also write logs to stderr")
	cmd.Flags().BoolVar(&f.quiet, "quiet", false, "do not write a log file")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 2*time.Minute, "overall command timeout")
	cmd.MarkFlagsMutuallyExclusive("html", "url")
	cmd.MarkFlagsOneRequired("html", "url")
}

func (f *pageFlags) container(ctx context.Context, conf output.ConfigPort) (*di.Container, error) {
	return di.NewContainer(ctx, di.Config{
		ConfigPath: f.configPath,
		HTMLPath:   f.html,
		URL:        f.url,
		Headless:   !f.headed,
		LogLevel:   f.logLevel,
		LogStderr:  f.logStderr,
		Quiet:      f.quiet,
	}, conf)
}

type app struct {
	conf output.ConfigPort
	out  io.Writer
}

func (a *app) presenter() *console.Presenter {
	return console.NewPresenterWriter(a.out)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "resolver",
		Short:         "Resolve natural-language UI instructions to page elements and actions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)

	root.AddCommand(
		newParseCmd(a),
		newSearchCmd(a),
		newExecCmd(a),
		newInspectCmd(a),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{conf: env.NewEnvService(), out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}
