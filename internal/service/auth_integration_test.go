package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/PassKeeper/internal/crypto"
	"github.com/atinyakov/PassKeeper/internal/keymanager"
	"github.com/atinyakov/PassKeeper/internal/repository"
	"github.com/atinyakov/PassKeeper/internal/service"
)

func TestAuthService_AgainstSQLiteStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	key, err := keymanager.LoadOrCreateKey(filepath.Join(dir, "secret.key"))
	require.NoError(t, err)
	c, err := crypto.NewCipher(key)
	require.NoError(t, err)
	store, err := repository.Open(filepath.Join(dir, "userData.sqlite"), c, nil)
	require.NoError(t, err)
	defer store.Close()

	auth := service.NewAuthService(store, nil)

	id, err := auth.Register(ctx, "bob", "abcdef1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	sess, ok, err := auth.Authenticate(ctx, "bob", "abcdef1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(1), sess.UserID)

	_, ok, err = auth.Authenticate(ctx, "bob", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.AddItem(ctx, sess.UserID, "bank", "bob2", "p@ss")
	require.NoError(t, err)

	require.NoError(t, auth.DeleteAccount(ctx, sess))

	items, err := store.GetAllItems(ctx, sess.UserID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, ok, err = auth.Authenticate(ctx, "bob", "abcdef1")
	require.NoError(t, err)
	assert.False(t, ok)
}
