package test_utils

import (
	"context"
	"testing"

	"github.com/finpro/finpro/pkg/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// InsertUser stores a fresh user row and returns a context carrying it.
func InsertUser(t *testing.T, db *pgxpool.Pool, username string) context.Context {
	t.Helper()
	u := user.User{Uid: uuid.NewString(), Username: username, DisplayName: username, Currency: user.DefaultCurrency}
	id, err := user.NewUserRepo(db).CreateUser(context.Background(), u)
	require.NoError(t, err)
	u.Id = id
	return user.WithUser(context.Background(), u)
}
