package pgrepo

import (
	"errors"
	"testing"

	"github.com/fsdevblog/groph-grocer/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertErr(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "no rows", err: pgx.ErrNoRows, wantErr: domain.ErrRecordNotFound},
		{name: "unique", err: &pgconn.PgError{Code: uniqueViolationCode}, wantErr: domain.ErrDuplicateKey},
		{name: "check", err: &pgconn.PgError{Code: checkViolationCode}, wantErr: domain.ErrConstraint},
		{name: "foreign key", err: &pgconn.PgError{Code: fkViolationCode}, wantErr: domain.ErrConstraint},
		{name: "other pg error", err: &pgconn.PgError{Code: "40001"}, wantErr: domain.ErrUnknown},
		{name: "plain error", err: errors.New("conn closed"), wantErr: domain.ErrUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := convertErr(tc.err, "finding order %d", 7)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), "[repository/finding order 7]")
		})
	}

	require.NoError(t, convertErr(nil, "noop"))
}
