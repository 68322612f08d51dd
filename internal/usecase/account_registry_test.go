package usecase

import (
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"mail-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAccountStore implements domain.AccountStore for testing.
type mockAccountStore struct {
	data    map[string][]byte
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{data: make(map[string][]byte)}
}

func (m *mockAccountStore) Load(key string) ([]byte, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data[key], nil
}

func (m *mockAccountStore) Save(key string, data []byte) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = data
	return nil
}

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newTestRegistry(store domain.AccountStore) *AccountRegistry {
	clock := &stepClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewAccountRegistry(store, RegistryConfig{
		RootDomain: "example.com",
		Now:        clock.Now,
	}, slog.Default())
}

func emails(accounts []domain.StoredAccount) []string {
	out := make([]string, len(accounts))
	for i, a := range accounts {
		out[i] = a.Email
	}
	return out
}

func TestAccountRegistry_AddFrontInserts(t *testing.T) {
	store := newMockAccountStore()
	r := newTestRegistry(store)

	r.Add("alice@example.com", "Alice", "")
	r.Add("bob@example.com", "Bob", "data:image/svg+xml;base64,xyz")

	got := r.Accounts()
	assert.Equal(t, []string{"bob@example.com", "alice@example.com"}, emails(got))
	assert.Equal(t, "Bob", got[0].DisplayName)
	assert.Equal(t, "data:image/svg+xml;base64,xyz", got[0].AvatarRef)
	assert.True(t, got[0].LastUsedAt.After(got[1].LastUsedAt))
	assert.Equal(t, 2, store.saves)
}

func TestAccountRegistry_AddSameEmailMovesToFront(t *testing.T) {
	r := newTestRegistry(newMockAccountStore())

	r.Add("alice@example.com", "Alice", "")
	r.Add("bob@example.com", "Bob", "")
	firstSeen := r.Accounts()[1].LastUsedAt

	r.Add("alice@example.com", "Alice Again", "")
	r.Add("Alice@Example.com", "Alice Again", "")

	got := r.Accounts()
	require.Len(t, got, 2)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, emails(got))
	assert.Equal(t, "Alice Again", got[0].DisplayName)
	assert.True(t, got[0].LastUsedAt.After(firstSeen))
}

func TestAccountRegistry_Remove(t *testing.T) {
	store := newMockAccountStore()
	r := newTestRegistry(store)

	r.Add("alice@example.com", "Alice", "")
	r.Add("bob@example.com", "Bob", "")

	r.Remove("alice@example.com")
	assert.Equal(t, []string{"bob@example.com"}, emails(r.Accounts()))
	saves := store.saves

	r.Remove("alice@example.com")
	r.Remove("nobody@example.com")
	assert.Equal(t, []string{"bob@example.com"}, emails(r.Accounts()))
	assert.Equal(t, saves, store.saves, "removing a missing entry should not write")
}

func TestAccountRegistry_ListOthers(t *testing.T) {
	r := newTestRegistry(newMockAccountStore())

	r.Add("carol@example.com", "Carol", "")
	r.Add("bob@example.com", "Bob", "")
	r.Add("alice@example.com", "Alice", "")

	assert.Equal(t, []string{"alice@example.com", "carol@example.com"}, emails(r.ListOthers("bob@example.com")))
	assert.Equal(t, []string{"bob@example.com", "carol@example.com"}, emails(r.ListOthers("ALICE@example.com")))
	assert.Len(t, r.ListOthers("nobody@example.com"), 3)
	assert.Len(t, r.Accounts(), 3, "ListOthers must not mutate the registry")
}

func TestAccountRegistry_URLFor(t *testing.T) {
	r := newTestRegistry(newMockAccountStore())

	assert.Equal(t, "https://alice.example.com", r.URLFor("alice@example.com"))
	assert.Equal(t, "https://bob.example.com", r.URLFor("Bob@example.com"))
	assert.Equal(t, "https://alice.mail.test", MailboxURL("alice@example.com", "mail.test"))
}

func TestAccountRegistry_URLForKeepsRootPort(t *testing.T) {
	r := NewAccountRegistry(newMockAccountStore(), RegistryConfig{RootDomain: "localhost:3000"}, slog.Default())

	assert.Equal(t, "https://bob.localhost:3000", r.URLFor("bob@localhost"))
	assert.Equal(t, MailboxURL("bob@localhost", "localhost:3000"), r.URLFor("bob@localhost"))
}

func TestSiteRoot(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{" Example.COM. ", "example.com"},
		{"localhost:3000", "localhost:3000"},
		{"Mail.Test.:8443", "mail.test:8443"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SiteRoot(tt.in), tt.in)
	}
}

func TestAccountRegistry_LoadsOnceFromStore(t *testing.T) {
	store := newMockAccountStore()
	seed := []domain.StoredAccount{
		{Email: "bob@example.com", DisplayName: "Bob"},
		{Email: "alice@example.com", DisplayName: "Alice"},
		{Email: "BOB@example.com", DisplayName: "Duplicate"},
	}
	data, err := json.Marshal(seed)
	require.NoError(t, err)
	store.data[DefaultAccountsKey] = data

	r := newTestRegistry(store)
	assert.Equal(t, 0, store.loads, "load is lazy")

	assert.Equal(t, []string{"bob@example.com", "alice@example.com"}, emails(r.Accounts()))
	r.ListOthers("bob@example.com")
	r.Add("carol@example.com", "Carol", "")
	assert.Equal(t, 1, store.loads)
}

func TestAccountRegistry_CorruptStorageIsEmpty(t *testing.T) {
	store := newMockAccountStore()
	store.data[DefaultAccountsKey] = []byte("{not json")

	r := newTestRegistry(store)
	assert.Empty(t, r.Accounts())

	r.Add("alice@example.com", "Alice", "")
	assert.Equal(t, []string{"alice@example.com"}, emails(r.Accounts()))

	var persisted []domain.StoredAccount
	require.NoError(t, json.Unmarshal(store.data[DefaultAccountsKey], &persisted))
	assert.Equal(t, []string{"alice@example.com"}, emails(persisted))
}

func TestAccountRegistry_StorageFailuresAreSwallowed(t *testing.T) {
	store := newMockAccountStore()
	store.loadErr = errors.New("storage disabled")
	store.saveErr = errors.New("quota exceeded")

	r := newTestRegistry(store)
	assert.Empty(t, r.Accounts())

	r.Add("alice@example.com", "Alice", "")
	r.Add("bob@example.com", "Bob", "")
	r.Remove("alice@example.com")

	assert.Equal(t, []string{"bob@example.com"}, emails(r.Accounts()))
}

func TestAccountRegistry_MaxAccounts(t *testing.T) {
	r := NewAccountRegistry(newMockAccountStore(), RegistryConfig{
		RootDomain:  "example.com",
		MaxAccounts: 2,
	}, slog.Default())

	r.Add("a@example.com", "A", "")
	r.Add("b@example.com", "B", "")
	r.Add("c@example.com", "C", "")

	assert.Equal(t, []string{"c@example.com", "b@example.com"}, emails(r.Accounts()))
}

func TestAccountRegistry_IgnoresBlankEmail(t *testing.T) {
	store := newMockAccountStore()
	r := newTestRegistry(store)

	r.Add("  ", "Nobody", "")
	assert.Empty(t, r.Accounts())
	assert.Equal(t, 0, store.saves)
}
