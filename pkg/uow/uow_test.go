package uow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRepo struct {
	db DBTX
}

func newTestRepo(db DBTX) Repository {
	return &testRepo{db: db}
}

func TestUnitOfWork_Register(t *testing.T) {
	u := NewUnitOfWork(nil)

	require.NoError(t, u.Register("repo", newTestRepo))
	require.ErrorIs(t, u.Register("repo", newTestRepo), ErrRepositoryAlreadyRegistered)
	require.ErrorIs(t, u.Register("nil", nil), ErrNilFactory)
}

func TestGetRepositoryAs(t *testing.T) {
	u := NewUnitOfWork(nil)
	require.NoError(t, u.Register("repo", newTestRepo))

	repo, err := GetRepositoryAs[*testRepo](u, "repo")
	require.NoError(t, err)
	assert.NotNil(t, repo)

	_, err = GetRepositoryAs[*testRepo](u, "missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)

	_, err = GetRepositoryAs[string](u, "repo")
	require.ErrorIs(t, err, ErrInvalidRepositoryType)
}

// TestTransaction_Get репозиторий транзакции создается один раз.
func TestTransaction_Get(t *testing.T) {
	var created int
	factories := map[RepositoryName]RepositoryFactory{
		"repo": func(db DBTX) Repository {
			created++
			return newTestRepo(db)
		},
	}
	tx := NewTransaction(nil, factories)

	first, err := GetAs[*testRepo](tx, "repo")
	require.NoError(t, err)
	second, err := GetAs[*testRepo](tx, "repo")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, created)

	_, err = tx.Get("missing")
	require.ErrorIs(t, err, ErrRepositoryNotRegistered)
}
