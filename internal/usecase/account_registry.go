package usecase

import (
	"encoding/json"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"mail-hub/internal/domain"
)

// DefaultAccountsKey is the storage key the registry persists under.
const DefaultAccountsKey = "mailhub_accounts"

// RegistryConfig configures an AccountRegistry.
type RegistryConfig struct {
	RootDomain string
	Key        string
	// MaxAccounts bounds the registry; 0 keeps every account.
	MaxAccounts int
	Now         func() time.Time
}

// AccountRegistry keeps the most-recently-used list of mailboxes a user has
// signed into. The durable store is read once on first use; afterwards the
// in-memory list is the source of truth and every mutation is written
// through on a best-effort basis.
type AccountRegistry struct {
	store  domain.AccountStore
	logger *slog.Logger
	root   string
	key    string
	max    int
	now    func() time.Time

	mu       sync.Mutex
	loaded   bool
	accounts []domain.StoredAccount
}

// NewAccountRegistry creates a registry backed by store.
func NewAccountRegistry(store domain.AccountStore, cfg RegistryConfig, l *slog.Logger) *AccountRegistry {
	r := &AccountRegistry{
		store:  store,
		logger: l,
		root:   SiteRoot(cfg.RootDomain),
		key:    cfg.Key,
		max:    cfg.MaxAccounts,
		now:    cfg.Now,
	}
	if r.key == "" {
		r.key = DefaultAccountsKey
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Add records a sign-in: the entry for email moves to the front with a fresh
// timestamp, replacing any previous entry for the same address.
func (r *AccountRegistry) Add(email, displayName, avatarRef string) {
	key := normalizeEmail(email)
	if key == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	entry := domain.StoredAccount{
		Email:       key,
		DisplayName: displayName,
		AvatarRef:   avatarRef,
		LastUsedAt:  r.now().UTC(),
	}
	updated := make([]domain.StoredAccount, 0, len(r.accounts)+1)
	updated = append(updated, entry)
	for _, a := range r.accounts {
		if a.Email != key {
			updated = append(updated, a)
		}
	}
	if r.max > 0 && len(updated) > r.max {
		updated = updated[:r.max]
	}
	r.accounts = updated
	r.persist()
}

// Remove deletes the entry for email if there is one.
func (r *AccountRegistry) Remove(email string) {
	key := normalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	updated := make([]domain.StoredAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		if a.Email != key {
			updated = append(updated, a)
		}
	}
	if len(updated) == len(r.accounts) {
		return
	}
	r.accounts = updated
	r.persist()
}

// Accounts returns a copy of the registry, most recently used first.
func (r *AccountRegistry) Accounts() []domain.StoredAccount {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	out := make([]domain.StoredAccount, len(r.accounts))
	copy(out, r.accounts)
	return out
}

// ListOthers returns every account except currentEmail, in registry order.
func (r *AccountRegistry) ListOthers(currentEmail string) []domain.StoredAccount {
	current := normalizeEmail(currentEmail)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	others := make([]domain.StoredAccount, 0, len(r.accounts))
	for _, a := range r.accounts {
		if a.Email != current {
			others = append(others, a)
		}
	}
	return others
}

// URLFor returns the mailbox URL for an address.
func (r *AccountRegistry) URLFor(email string) string {
	return MailboxURL(email, r.root)
}

// MailboxURL derives https://<local part>.<rootDomain> from an address.
// The root keeps its port.
func MailboxURL(email, rootDomain string) string {
	return "https://" + domain.MailboxOf(email) + "." + SiteRoot(rootDomain)
}

// SiteRoot trims and lower-cases a configured root domain and drops a
// trailing dot, keeping any port.
func SiteRoot(root string) string {
	root = strings.ToLower(strings.TrimSpace(root))
	if host, port, err := net.SplitHostPort(root); err == nil {
		return net.JoinHostPort(strings.TrimSuffix(host, "."), port)
	}
	return strings.TrimSuffix(root, ".")
}

func (r *AccountRegistry) ensureLoaded() {
	if r.loaded {
		return
	}
	r.loaded = true

	data, err := r.store.Load(r.key)
	if err != nil {
		r.logger.Warn("account registry unreadable, starting empty", "key", r.key, "error", err)
		return
	}
	if len(data) == 0 {
		return
	}

	var accounts []domain.StoredAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		r.logger.Warn("account registry corrupt, starting empty", "key", r.key, "error", err)
		return
	}

	seen := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		a.Email = normalizeEmail(a.Email)
		if a.Email == "" || seen[a.Email] {
			continue
		}
		seen[a.Email] = true
		r.accounts = append(r.accounts, a)
	}
}

// persist must be called with r.mu held.
func (r *AccountRegistry) persist() {
	accounts := r.accounts
	if accounts == nil {
		accounts = []domain.StoredAccount{}
	}
	data, err := json.Marshal(accounts)
	if err != nil {
		r.logger.Warn("failed to encode account registry", "error", err)
		return
	}
	if err := r.store.Save(r.key, data); err != nil {
		r.logger.Warn("failed to persist account registry", "key", r.key, "error", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
