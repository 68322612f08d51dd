// Package cli implements the mailctl command tree.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mail-hub/internal/cli/config"
	"mail-hub/internal/cli/output"
	"mail-hub/internal/domain"
	"mail-hub/internal/infrastructure/accountstore"
	"mail-hub/internal/usecase"
	"mail-hub/utils/logger"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// app carries state shared by every command of one invocation.
type app struct {
	build   BuildInfo
	v       *viper.Viper
	cfgFile string
	verbose bool
	quiet   bool
	color   string

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer

	store      domain.AccountStore
	closeStore func() error
}

// NewRootCommand builds a fresh mailctl command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{build: build, v: viper.New()}

	root := &cobra.Command{
		Use:   "mailctl",
		Short: "Mailbox account switcher and routing debugger",
		Long: `mailctl manages the list of mailboxes you are signed into and shows how
the edge server routes a request.

Example usage:
  mailctl accounts add alice@example.com --name Alice
  mailctl accounts list
  mailctl accounts switch bob@example.com
  mailctl route --host alice.example.com --path /inbox --session`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ~/.config/mailctl/config.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "print only values")
	flags.StringVar(&a.color, "color", "auto", "color output: auto, always, never")
	flags.String("root-domain", "", "root domain mailboxes are served under")
	flags.String("store", "", "account store backend: file or redis")
	flags.String("store-path", "", "directory of the file account store")
	flags.String("redis-url", "", "redis:// URL of the redis account store")

	_ = a.v.BindPFlag("root_domain", flags.Lookup("root-domain"))
	_ = a.v.BindPFlag("store.backend", flags.Lookup("store"))
	_ = a.v.BindPFlag("store.path", flags.Lookup("store-path"))
	_ = a.v.BindPFlag("store.redis_url", flags.Lookup("redis-url"))

	root.AddCommand(
		newAccountsCommand(a),
		newRouteCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs mailctl with the process arguments and returns the exit code.
func Execute(build BuildInfo) int {
	return run(NewRootCommand(build), os.Args[1:], os.Stdout, os.Stderr)
}

func run(root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return output.ExitSuccess
	}

	p := output.NewPrinter(output.PrinterOptions{ColorMode: output.ColorNever, Out: stdout, Err: stderr})
	var cliErr *output.CLIError
	if errors.As(err, &cliErr) {
		p.FormatError(cliErr)
		return cliErr.ExitCode
	}
	p.Error("%s", err)
	return output.ExitGeneral
}

func (a *app) init(cmd *cobra.Command) error {
	mode, err := output.ParseColorMode(a.color)
	if err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "invalid configuration",
			Detail:     err.Error(),
			Suggestion: "Check ~/.config/mailctl/config.yaml, MAILCTL_* variables or use --config",
			ExitCode:   output.ExitConfigError,
		}
	}
	a.cfg = cfg

	a.logger = logger.NewCLI(cmd.ErrOrStderr(), a.verbose || cfg.Logging.Level == "debug")
	a.printer = output.NewPrinter(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: cfg.Output.Colors,
		Quiet:        a.quiet,
		Out:          cmd.OutOrStdout(),
		Err:          cmd.ErrOrStderr(),
	})

	a.logger.Debug("configuration loaded",
		"root_domain", cfg.RootDomain,
		"store", cfg.Store.Backend,
		"config_file", a.v.ConfigFileUsed(),
	)
	return nil
}

// openStore connects the configured account store on first use.
func (a *app) openStore() (domain.AccountStore, error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.cfg.Store.Backend {
	case config.BackendRedis:
		s, err := accountstore.NewRedisStore(a.cfg.Store.RedisURL,
			accountstore.WithPrefix(a.cfg.Store.RedisPrefix),
			accountstore.WithTTL(a.cfg.Store.RedisTTL),
		)
		if err != nil {
			return nil, storeError(err, "Check store.redis_url or --redis-url")
		}
		a.store, a.closeStore = s, s.Close
	default:
		s, err := accountstore.NewFileStore(a.cfg.Store.Path)
		if err != nil {
			return nil, storeError(err, "Check store.path or --store-path")
		}
		a.store = s
	}
	a.logger.Debug("account store opened", "backend", a.cfg.Store.Backend)
	return a.store, nil
}

func (a *app) registry() (*usecase.AccountRegistry, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	return usecase.NewAccountRegistry(store, usecase.RegistryConfig{
		RootDomain:  a.cfg.RootDomain,
		Key:         a.cfg.Store.Key,
		MaxAccounts: a.cfg.Store.MaxAccounts,
	}, a.logger), nil
}

func (a *app) close() error {
	if a.closeStore == nil {
		return nil
	}
	err := a.closeStore()
	a.closeStore, a.store = nil, nil
	if err != nil {
		return fmt.Errorf("closing account store: %w", err)
	}
	return nil
}

func storeError(err error, suggestion string) *output.CLIError {
	return &output.CLIError{
		Summary:    "cannot open account store",
		Detail:     err.Error(),
		Suggestion: suggestion,
		ExitCode:   output.ExitStoreError,
	}
}
