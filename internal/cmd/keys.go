package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/keyadmin/internal/keys"
)

// KeysCmd returns the `keyadmin keys` command group.
func KeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Search and save API keys",
	}
	cmd.AddCommand(keysSearchCmd())
	cmd.AddCommand(keysSaveCmd())
	return cmd
}

// attributeFlags binds one --<flag> per key attribute.
type attributeFlags map[keys.Attribute]*bool

func bindAttributeFlags(cmd *cobra.Command, usage string) attributeFlags {
	flags := attributeFlags{}
	for _, a := range keys.Attributes {
		v := false
		flags[a] = &v
		cmd.Flags().BoolVar(&v, attributeFlagName(a), false, fmt.Sprintf(usage, strings.ToLower(a.Label())))
	}
	return flags
}

// attributeFlagName maps "IP Check" to "ip-check".
func attributeFlagName(a keys.Attribute) string {
	return strings.ReplaceAll(strings.ToLower(a.Label()), " ", "-")
}

func keysSearchCmd() *cobra.Command {
	var page int
	var flags attributeFlags
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search API keys by client name and attributes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			env, err := OpenEnv(true)
			if err != nil {
				return err
			}
			defer env.Close()

			console := env.Console(c.Context())
			defer console.Close()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return runSearch(console, query, flags, page, c.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page of results to show")
	flags = bindAttributeFlags(cmd, "only keys with %s enabled")
	return cmd
}

func runSearch(console *keys.Console, query string, flags attributeFlags, page int, out io.Writer) error {
	console.SetQuery(query)
	for a, on := range flags {
		console.SetFilter(a, *on)
	}
	console.ApplySearch(console.Refetch().Run())
	if err := console.LastError(); err != nil {
		return friendlyError("search keys", err)
	}

	for console.Page() < page && console.Page() < console.TotalPages() {
		console.NextPage()
	}

	visible := console.Visible()
	if len(visible) == 0 {
		fmt.Fprintln(out, "no keys found")
		return nil
	}
	for _, r := range visible {
		fmt.Fprintln(out, formatRecord(r))
	}
	fmt.Fprintf(out, "page %d of %d (%d keys)\n", console.Page(), console.TotalPages(), len(console.Projected()))
	return nil
}

func formatRecord(r keys.Record) string {
	key := "pending"
	if r.Confirmed() {
		key = *r.APIKey
	}
	var on []string
	for _, a := range keys.Attributes {
		if a.Of(r) {
			on = append(on, attributeFlagName(a))
		}
	}
	attrs := "-"
	if len(on) > 0 {
		attrs = strings.Join(on, ",")
	}
	return fmt.Sprintf("  %-24s  %-20s  %s", r.ClientName, key, attrs)
}

func keysSaveCmd() *cobra.Command {
	var name, id string
	var flags attributeFlags
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Create an API key, or replace one with --id",
		Long:  "Create an API key, or replace one with --id. Attribute flags describe the full state of the key; omitted flags are saved as off.",
		RunE: func(c *cobra.Command, _ []string) error {
			env, err := OpenEnv(true)
			if err != nil {
				return err
			}
			defer env.Close()

			console := env.Console(c.Context())
			defer console.Close()

			return runSave(console, id, name, flags, c.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "client name")
	cmd.Flags().StringVar(&id, "id", "", "API key to replace")
	flags = bindAttributeFlags(cmd, "enable %s")
	return cmd
}

func runSave(console *keys.Console, id, name string, flags attributeFlags, out io.Writer) error {
	form := console.Form()
	if id != "" {
		form.OpenEdit(keys.Record{APIKey: keys.StringPtr(id)})
	} else {
		console.OpenCreate()
	}
	form.SetClientName(name)
	for a, on := range flags {
		form.SetFlag(a, *on)
	}

	req, ok := console.Submit()
	if !ok {
		return form.Errors()
	}
	res := req.Run()
	if _, ok := console.ApplySave(res); !ok {
		return friendlyError("save key", console.LastError())
	}

	saved := res.Payload
	if res.Canonical != nil && res.Canonical.Confirmed() {
		saved = *res.Canonical
	}
	fmt.Fprintln(out, "saved:")
	fmt.Fprintln(out, formatRecord(saved))
	return nil
}
