package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gravitrone/keyadmin/internal/api"
	"github.com/gravitrone/keyadmin/internal/config"
	"github.com/gravitrone/keyadmin/internal/keys"
	"github.com/gravitrone/keyadmin/internal/session"
)

const loginTimeout = 10 * time.Second

// RunInteractiveLogin prompts for a token, checks it against the server and
// persists it to the config.
func RunInteractiveLogin(in io.Reader, out io.Writer, baseURL string) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "token: ")
	token, _ := reader.ReadString('\n')
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required")
	}

	cfg, err := config.LoadOrDefault()
	if err != nil {
		return err
	}
	if strings.TrimSpace(baseURL) != "" {
		cfg.BaseURL = strings.TrimSpace(baseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()
	client := api.NewClient(cfg.BaseURL, token)
	if _, err := client.SearchAPIKeys(ctx, keys.Translate(keys.FilterState{})); err != nil {
		if errors.Is(err, keys.ErrUnauthorized) {
			return fmt.Errorf("login failed: token rejected: %w", err)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := session.New("", cfg).Issue(token); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in to %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// RunLogout clears the stored token.
func RunLogout(out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(out, "not logged in")
			return nil
		}
		return err
	}
	sess := session.New(cfg.Token, cfg)
	if !sess.Authenticated() {
		fmt.Fprintln(out, "not logged in")
		return nil
	}
	if err := sess.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(out, "logged out")
	return nil
}

// LoginCmd returns the `keyadmin login` command.
func LoginCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token for the key admin API",
		RunE: func(c *cobra.Command, _ []string) error {
			return RunInteractiveLogin(c.InOrStdin(), c.OutOrStdout(), baseURL)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL to store with the token")
	return cmd
}

// LogoutCmd returns the `keyadmin logout` command.
func LogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(c *cobra.Command, _ []string) error {
			return RunLogout(c.OutOrStdout())
		},
	}
}
