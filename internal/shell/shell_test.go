package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/PassKeeper/internal/crypto"
	"github.com/atinyakov/PassKeeper/internal/keymanager"
	"github.com/atinyakov/PassKeeper/internal/repository"
	"github.com/atinyakov/PassKeeper/internal/service"
)

func newCore(t *testing.T) (*service.AuthService, *repository.SQLiteStore) {
	t.Helper()
	dir := t.TempDir()
	key, err := keymanager.LoadOrCreateKey(filepath.Join(dir, "secret.key"))
	require.NoError(t, err)
	c, err := crypto.NewCipher(key)
	require.NoError(t, err)
	store, err := repository.Open(filepath.Join(dir, "userData.sqlite"), c, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return service.NewAuthService(store, nil), store
}

func run(t *testing.T, auth *service.AuthService, store *repository.SQLiteStore, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	sh := New(auth, store, strings.NewReader(strings.Join(script, "\n")+"\n"), &out, nil)
	require.NoError(t, sh.Run(context.Background()))
	return out.String()
}

func TestShell_FullSession(t *testing.T) {
	auth, store := newCore(t)

	out := run(t, auth, store,
		"register", "bob", "abcdef1",
		"login", "bob", "wrong",
		"login", "bob", "abcdef1",
		"whoami",
		"add", "bank", "bob2", "p@ss",
		"list",
		"show bank",
		"delete bank",
		"list",
		"exit",
	)

	assert.Contains(t, out, "User created")
	assert.Contains(t, out, "Incorrect username or password")
	assert.Contains(t, out, "Welcome, bob")
	assert.Contains(t, out, "Item saved")
	assert.Contains(t, out, "  bank\n")
	assert.Contains(t, out, "Name: bank\nLogin: bob2\nPassword: p@ss\n")
	assert.Contains(t, out, "Item deleted")
	assert.Contains(t, out, "No items stored")
	assert.True(t, strings.HasSuffix(out, "Bye\n"))
}

func TestShell_RequiresLogin(t *testing.T) {
	auth, store := newCore(t)

	out := run(t, auth, store, "list", "add", "show x", "exit")
	assert.Equal(t, 3, strings.Count(out, "Please log in first"))
}

func TestShell_RegisterValidation(t *testing.T) {
	auth, store := newCore(t)

	out := run(t, auth, store,
		"register", "bob", "abc",
		"register", "bob", "abcdef",
		"register", "bob", "abcdefg",
		"exit",
	)
	assert.Contains(t, out, service.ErrPasswordTooShort.Error())
	assert.Contains(t, out, "User already exists")
}

func TestShell_ItemsAreScopedToUser(t *testing.T) {
	auth, store := newCore(t)
	ctx := context.Background()

	aliceID, err := auth.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	_, err = store.AddItem(ctx, aliceID, "bank", "alice-login", "alice-pass")
	require.NoError(t, err)
	_, err = auth.Register(ctx, "bob", "secret2")
	require.NoError(t, err)

	out := run(t, auth, store,
		"login", "bob", "secret2",
		"show bank",
		"add", "bank", "bob-login", "bob-pass",
		"show bank",
		"exit",
	)
	assert.Contains(t, out, "Item not found")
	assert.Contains(t, out, "Login: bob-login")
	assert.NotContains(t, out, "alice-pass")
}

func TestShell_DeleteAccount(t *testing.T) {
	auth, store := newCore(t)
	ctx := context.Background()

	id, err := auth.Register(ctx, "carol", "secret1")
	require.NoError(t, err)
	_, err = store.AddItem(ctx, id, "mail", "c", "p")
	require.NoError(t, err)

	out := run(t, auth, store,
		"login", "carol", "secret1",
		"delete-account", "no",
		"delete-account", "yes",
		"list",
		"exit",
	)
	assert.Contains(t, out, "Cancelled")
	assert.Contains(t, out, "Account deleted")
	assert.Contains(t, out, "Please log in first")

	items, err := store.GetAllItems(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestShell_EndOfInput(t *testing.T) {
	auth, store := newCore(t)

	var out bytes.Buffer
	sh := New(auth, store, strings.NewReader("help\nlogin\nbob\n"), &out, nil)
	require.NoError(t, sh.Run(context.Background()))
	assert.Contains(t, out.String(), "Available commands")
}

func TestShell_UnknownCommand(t *testing.T) {
	auth, store := newCore(t)

	out := run(t, auth, store, "frobnicate", "exit")
	assert.Contains(t, out, "Unknown command")
}
