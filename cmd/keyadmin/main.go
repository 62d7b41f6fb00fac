package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/gravitrone/keyadmin/internal/cmd"
	"github.com/gravitrone/keyadmin/internal/session"
	"github.com/gravitrone/keyadmin/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "keyadmin",
		Short: "keyadmin - API key administration",
		Long:  "keyadmin: search, filter, create and edit API keys from the terminal.",
		RunE: func(c *cobra.Command, _ []string) error {
			return runTUI(c.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.LogoutCmd())
	root.AddCommand(cmd.StatusCmd())
	root.AddCommand(cmd.KeysCmd())
	return root
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI(ctx context.Context) error {
	if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
		return fmt.Errorf("the console needs a terminal; use 'keyadmin keys search' for scripts")
	}

	env, err := cmd.OpenEnv(false)
	if err != nil {
		return err
	}
	defer env.Close()

	sess := session.New(env.Config.Token, env.Config)
	console := env.Console(ctx)
	defer console.Close()

	env.Log.Info().Str("base_url", env.Config.BaseURL).Bool("signed_in", sess.Authenticated()).Msg("console starting")
	app := ui.NewApp(env.Client, sess, console, env.Log)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
