package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lite-lake/acme-dns-helper/internal/config"
	"github.com/lite-lake/acme-dns-helper/internal/constants"
	"github.com/lite-lake/acme-dns-helper/internal/domain"
	"github.com/lite-lake/acme-dns-helper/internal/domain/challenge"
	"github.com/lite-lake/acme-dns-helper/internal/domain/service"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/acme"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/dns"
	"github.com/lite-lake/acme-dns-helper/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

var Version = "dev"

type hookOptions struct {
	domain      string
	proof       string
	keyAuth     string
	clean       bool
	backend     string
	configPath  string
	settleDelay time.Duration
	onStale     string
}

// NewRootCommand builds the hook command. Without a subcommand it provisions
// the proof for --domain, or removes it with --clean.
func NewRootCommand() *cobra.Command {
	opts := &hookOptions{}

	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "DNS-01 challenge hook for ACME clients",
		Long: "Publishes or removes the _acme-challenge TXT record that proves control of a domain.\n" +
			"Run it from an ACME client's DNS hook with --domain and --proof, adding --clean after validation.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHook(cmd, opts)
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.domain, "domain", "d", "", "Domain under validation")
	flags.StringVarP(&opts.proof, "proof", "p", "", "Proof token to publish (may begin with '-')")
	flags.StringVar(&opts.keyAuth, "key-auth", "", "Key authorization to derive the proof from, as lego passes it")
	flags.BoolVar(&opts.clean, "clean", false, "Remove the proof instead of publishing it")
	flags.StringVarP(&opts.backend, "backend", "b", "", "DNS backend (dnspod, aliyun, cloudflare, file)")
	flags.DurationVar(&opts.settleDelay, "settle-delay", constants.DefaultSettleDelay, "Wait after creating a record")
	flags.StringVar(&opts.onStale, "on-stale", "", "Records holding another proof: replace, append or fail")
	rootCmd.MarkFlagsMutuallyExclusive("proof", "key-auth")
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Optional YAML config file")

	rootCmd.AddCommand(newLookupCommand())
	rootCmd.AddCommand(newBackendsCommand(dns.NewFactory()))
	return rootCmd
}

func Execute() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		logFailure(err)
		os.Exit(1)
	}
}

func logFailure(err error) {
	fields := []any{"error", err}
	var be *domain.BackendError
	if errors.As(err, &be) {
		fields = append(fields, "backend", be.Backend, "step", be.Op)
		if be.Code != "" {
			fields = append(fields, "code", be.Code)
		}
	}
	logger.Error("operation failed", fields...)
}

// loadHookConfig merges the config file with the flags the user set.
func loadHookConfig(cmd *cobra.Command, opts *hookOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("settle-delay") {
		cfg.SettleDelay = opts.settleDelay.String()
	}
	if flags.Changed("on-stale") {
		cfg.StalePolicy = opts.onStale
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runHook(cmd *cobra.Command, opts *hookOptions) error {
	domainName, err := challenge.Normalize(opts.domain)
	if err != nil {
		if opts.domain == "" {
			return domain.RequiredField("domain")
		}
		return err
	}
	if opts.proof == "" && opts.keyAuth == "" {
		return domain.RequiredField("proof")
	}

	cfg, err := loadHookConfig(cmd, opts)
	if err != nil {
		return err
	}

	reconciler, err := newReconciler(cfg, dns.NewFactory())
	if err != nil {
		return err
	}

	solver := acme.NewSolver(reconciler)
	ctx := cmd.Context()
	switch {
	case opts.keyAuth != "" && opts.clean:
		err = solver.CleanUp(domainName, "", opts.keyAuth)
	case opts.keyAuth != "":
		err = solver.Present(domainName, "", opts.keyAuth)
	case opts.clean:
		err = reconciler.Clean(ctx, domainName, opts.proof)
	default:
		err = reconciler.Provision(ctx, domainName, opts.proof)
	}
	logMetrics()
	return err
}

func newReconciler(cfg *config.Config, factory *dns.Factory) (*service.Reconciler, error) {
	desc, ok := factory.Describe(cfg.Backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedBackend, cfg.Backend)
	}
	creds, err := cfg.ResolveCredentials(desc)
	if err != nil {
		return nil, err
	}
	backend, err := factory.Create(cfg.Backend, creds)
	if err != nil {
		return nil, err
	}

	delay, err := cfg.Delay()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	return service.NewReconciler(backend,
		service.WithSettleDelay(delay),
		service.WithStalePolicy(policy),
		service.WithTTL(cfg.TTL),
	), nil
}

func logMetrics() {
	metrics := logger.GetMetrics()
	for _, name := range logger.OperationNames() {
		m := metrics[name]
		logger.Debug("backend calls", "step", name, "total", m.Total, "failed", m.Failed, "avg_ms", m.AvgLatencyMs)
	}
}
