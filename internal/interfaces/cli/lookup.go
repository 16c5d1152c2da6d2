package cli

import (
	"fmt"
	"time"

	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/challenge"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/resolver"
	"github.com/spf13/cobra"
)

type lookupOptions struct {
	domain  string
	proof   string
	server  string
	timeout time.Duration
}

func newLookupCommand() *cobra.Command {
	opts := &lookupOptions{}

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show the TXT values published for a domain's challenge",
		Long: "Queries a nameserver for the _acme-challenge TXT record of --domain.\n" +
			"With --proof, exits non-zero unless that value is visible.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.domain, "domain", "d", "", "Domain under validation")
	cmd.Flags().StringVarP(&opts.proof, "proof", "p", "", "Expected proof value")
	cmd.Flags().StringVarP(&opts.server, "server", "s", constants.DefaultNameserver, "Nameserver to query (host:port)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 5*time.Second, "Query timeout")
	return cmd
}

func runLookup(cmd *cobra.Command, opts *lookupOptions) error {
	if opts.domain == "" {
		return domain.RequiredField("domain")
	}
	domainName, err := challenge.Normalize(opts.domain)
	if err != nil {
		return err
	}
	fqdn := challenge.Decompose(domainName).FQDN()

	r := resolver.New(opts.server, opts.timeout)
	values, err := r.LookupTXT(cmd.Context(), fqdn)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, TitleStyle.Render(fqdn), HelpStyle.Render("via "+r.Server()))
	if len(values) == 0 {
		fmt.Fprintln(out, WarningStyle.Render("  no TXT records"))
	}

	found := false
	for _, v := range values {
		switch {
		case opts.proof != "" && v == opts.proof:
			found = true
			fmt.Fprintln(out, SuccessStyle.Render("  ✓ "+v))
		case opts.proof != "":
			fmt.Fprintln(out, HelpStyle.Render("  - "+v))
		default:
			fmt.Fprintln(out, "  "+v)
		}
	}

	if opts.proof != "" && !found {
		fmt.Fprintln(out, ErrorStyle.Render("  ✗ proof not visible"))
		return fmt.Errorf("%w: proof at %s via %s", domain.ErrRecordNotFound, fqdn, r.Server())
	}
	return nil
}
