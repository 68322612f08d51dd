package cli

import (
	"encoding/json"
	"net/mail"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mail-hub/internal/cli/output"
	"mail-hub/internal/domain"
	"mail-hub/internal/infrastructure/avatar"
)

// accountView is the JSON shape of an account in --json output.
type accountView struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	AvatarRef   string    `json:"avatarRef,omitempty"`
	LastUsedAt  time.Time `json:"lastUsedAt"`
	URL         string    `json:"url"`
}

func newAccountsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "Manage the mailboxes you are signed into",
	}
	cmd.AddCommand(
		newAccountsListCommand(a),
		newAccountsAddCommand(a),
		newAccountsRemoveCommand(a),
		newAccountsOthersCommand(a),
		newAccountsURLCommand(a),
		newAccountsSwitchCommand(a),
	)
	return cmd
}

func newAccountsListCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts, most recently used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			if err := a.printAccounts(reg.Accounts(), reg.URLFor, asJSON); err != nil {
				return err
			}
			if !asJSON {
				a.printer.PrintHints("accounts list")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newAccountsAddCommand(a *app) *cobra.Command {
	var name, avatarRef string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Record a sign-in and move the account to the front",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := parseEmail(args[0])
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			if name == "" {
				name = domain.MailboxOf(email)
			}
			if avatarRef == "" {
				avatarRef = avatar.NewGlass(0).Generate(email)
			}
			reg.Add(email, name, avatarRef)
			a.printer.Success("Added %s", email)
			a.printer.PrintHints("accounts add")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (default: mailbox name)")
	cmd.Flags().StringVar(&avatarRef, "avatar", "", "avatar URL or data URI (default: generated)")
	return cmd
}

func newAccountsRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <email>",
		Aliases: []string{"rm"},
		Short:   "Forget an account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			if _, ok := findAccount(reg.Accounts(), args[0]); !ok {
				a.printer.Warning("%s is not registered", args[0])
				return nil
			}
			reg.Remove(args[0])
			a.printer.Success("Removed %s", args[0])
			a.printer.PrintHints("accounts remove")
			return nil
		},
	}
}

func newAccountsOthersCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "others <current-email>",
		Short: "List the accounts you can switch to from current-email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			return a.printAccounts(reg.ListOthers(args[0]), reg.URLFor, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newAccountsURLCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "url <email>",
		Short: "Print the mailbox URL of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, err := parseEmail(args[0])
			if err != nil {
				return err
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}
			a.printer.Print("%s", reg.URLFor(email))
			return nil
		},
	}
}

func newAccountsSwitchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <email>",
		Short: "Make a registered account the current one and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			acct, ok := findAccount(reg.Accounts(), args[0])
			if !ok {
				return &output.CLIError{
					Summary:    "account not registered: " + args[0],
					Suggestion: "Run 'mailctl accounts add " + args[0] + "' first",
					ExitCode:   output.ExitUsageError,
				}
			}
			reg.Add(acct.Email, acct.DisplayName, acct.AvatarRef)
			a.printer.Info("Switched to %s", acct.Email)
			a.printer.Print("%s", reg.URLFor(acct.Email))
			return nil
		},
	}
}

func (a *app) printAccounts(accounts []domain.StoredAccount, urlFor func(string) string, asJSON bool) error {
	if asJSON {
		views := make([]accountView, 0, len(accounts))
		for _, acct := range accounts {
			views = append(views, accountView{
				Email:       acct.Email,
				DisplayName: acct.DisplayName,
				AvatarRef:   acct.AvatarRef,
				LastUsedAt:  acct.LastUsedAt,
				URL:         urlFor(acct.Email),
			})
		}
		enc := json.NewEncoder(a.printer.Out())
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	if len(accounts) == 0 {
		a.printer.Info("No accounts registered")
		return nil
	}

	table := a.printer.NewTable([]string{"Email", "Name", "URL", "Last used"})
	for _, acct := range accounts {
		table.AddRow([]string{
			acct.Email,
			acct.DisplayName,
			urlFor(acct.Email),
			a.printer.Dim(acct.LastUsedAt.Local().Format(time.DateTime)),
		})
	}
	return table.Render()
}

func findAccount(accounts []domain.StoredAccount, email string) (domain.StoredAccount, bool) {
	key := strings.ToLower(strings.TrimSpace(email))
	for _, acct := range accounts {
		if acct.Email == key {
			return acct, true
		}
	}
	return domain.StoredAccount{}, false
}

func parseEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil || addr.Name != "" {
		return "", &output.CLIError{
			Summary:    "invalid email address: " + raw,
			Suggestion: "Pass a bare address such as alice@example.com",
			ExitCode:   output.ExitUsageError,
		}
	}
	return strings.ToLower(addr.Address), nil
}
