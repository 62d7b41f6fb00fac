package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const statusTimeout = 3 * time.Second

// StatusCmd returns the `keyadmin status` command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show API reachability and login state",
		RunE: func(c *cobra.Command, _ []string) error {
			env, err := OpenEnv(false)
			if err != nil {
				return err
			}
			defer env.Close()

			out := c.OutOrStdout()
			fmt.Fprintf(out, "api:   %s\n", env.Config.BaseURL)

			ctx, cancel := context.WithTimeout(c.Context(), statusTimeout)
			defer cancel()
			status, err := env.Client.Health(ctx)
			switch {
			case err != nil:
				fmt.Fprintf(out, "health: unreachable (%v)\n", err)
			case status == "":
				fmt.Fprintln(out, "health: ok")
			default:
				fmt.Fprintf(out, "health: %s\n", status)
			}

			switch {
			case env.Config.Token == "":
				fmt.Fprintln(out, "auth:  signed out")
			case env.Config.Username != "":
				fmt.Fprintf(out, "auth:  signed in as %s\n", env.Config.Username)
			default:
				fmt.Fprintln(out, "auth:  signed in")
			}
			return nil
		},
	}
}
