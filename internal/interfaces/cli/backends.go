package cli

import (
	"fmt"
	"strings"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/dns"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newBackendsCommand(factory *dns.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List DNS backends and the credentials they read",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printBackends(cmd, factory)
		},
	}
}

func printBackends(cmd *cobra.Command, factory *dns.Factory) {
	out := cmd.OutOrStdout()
	title := cases.Title(language.English)

	for _, desc := range factory.Descriptors() {
		name := desc.Name
		if name == constants.DefaultBackend {
			name += "*"
		}
		fmt.Fprintln(out, NameStyle.Render(name), desc.Description)

		for _, c := range desc.Credentials {
			line := fmt.Sprintf("  %s: $%s", title.String(strings.ReplaceAll(c.Key, "_", " ")), c.Env)
			if c.Optional {
				line += " (optional)"
			}
			fmt.Fprintln(out, HelpStyle.Render(line))
		}
	}
	fmt.Fprintln(out, HelpStyle.Render("* default"))
}
