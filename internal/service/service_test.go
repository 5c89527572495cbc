package service

import (
	"context"
	"testing"

	"go-wiki-store/internal/auth"
	"go-wiki-store/internal/config"
	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// newTestStore creates a store over a private in-memory database with all
// wiki tables created.
func newTestStore(t *testing.T) *data.Store {
	t.Helper()
	db, err := data.NewDB(config.DBConfig{Driver: "sqlite3", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := data.NewStore(db)
	require.NoError(t, store.CreateAll(context.Background(), false))
	return store
}

func newTestServices(t *testing.T) (*PageService, *UserService, *data.Store) {
	t.Helper()
	store := newTestStore(t)
	log := logger.Nop()
	return NewPageService(store, log),
		NewUserService(store, auth.NewBcryptHasher(bcrypt.MinCost), log),
		store
}
